package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bstardust/exif-editor/internal/exif"
)

func newLocateCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Print the current location and the GPS tags it encodes to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coords, err := a.locator().Locate(cmd.Context())
			if err != nil {
				return err
			}

			gps := exif.EncodeGPS(coords.Latitude, coords.Longitude)
			w := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(w).Encode(coords)
			}

			fmt.Fprintf(w, "Latitude:  %f\n", coords.Latitude)
			fmt.Fprintf(w, "Longitude: %f\n", coords.Longitude)
			for _, id := range gps.IFD().SortedTags() {
				fmt.Fprintf(w, "  GPS_%d = %s\n", id, gps.IFD()[id])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the coordinates as JSON")

	return cmd
}
