package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bstardust/exif-editor/internal/editor"
	"github.com/bstardust/exif-editor/internal/location"
	"github.com/bstardust/exif-editor/internal/logger"
)

type editOptions struct {
	sets   []string
	gps    bool
	lat    float64
	lng    float64
	output string
}

func newEditCommand(a *app) *cobra.Command {
	opts := &editOptions{}

	cmd := &cobra.Command{
		Use:   "edit [flags] <image.jpg> | <s3://bucket/key>",
		Short: "Edit the EXIF tags of an image",
		Long: `Edit the EXIF tags of an image and write the result to a new file.

Tags are addressed by their field key, the IFD category and the decimal tag
id joined by an underscore, as printed by "show":

  exif-editor edit photo.jpg --set 0th_271=Acme --set "0th_282=(300,1)"

--gps sets the GPS latitude and longitude tags from the current location,
looked up from the public IP address unless --lat and --lng are given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("lat") != cmd.Flags().Changed("lng") {
				return fmt.Errorf("--lat and --lng must be given together")
			}
			if cmd.Flags().Changed("lat") {
				opts.gps = true
			}
			return runEdit(cmd.Context(), cmd, a, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Set a tag, as KEY=TEXT (repeatable)")
	cmd.Flags().BoolVar(&opts.gps, "gps", false, "Set the GPS tags from the current location")
	cmd.Flags().Float64Var(&opts.lat, "lat", 0, "Latitude used for the GPS tags instead of the IP lookup")
	cmd.Flags().Float64Var(&opts.lng, "lng", 0, "Longitude used for the GPS tags instead of the IP lookup")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output path or s3:// URI (default: <input>_edited.jpg)")

	return cmd
}

func runEdit(ctx context.Context, cmd *cobra.Command, a *app, src string, opts *editOptions) error {
	submitted, err := parseSets(opts.sets)
	if err != nil {
		return err
	}

	dst := opts.output
	if dst == "" {
		if dst, err = outputPath(src); err != nil {
			return err
		}
	}

	var locator location.Provider
	if cmd.Flags().Changed("lat") {
		coords := location.Coordinates{Latitude: opts.lat, Longitude: opts.lng}
		if err := location.Validate(coords); err != nil {
			return err
		}
		locator = location.Static(coords)
	} else {
		locator = a.locator()
	}

	ed, err := a.newEditor(locator)
	if err != nil {
		return err
	}

	image, err := a.readImage(ctx, src)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	edits := editor.NewEditSet()
	if opts.gps {
		_, coords, err := ed.UpdateGPS(ctx, edits)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "GPS set to %s\n", coords)
	}

	result, err := ed.CoerceAndWrite(image, edits, submitted)
	if err != nil {
		return err
	}

	// Fields that could not be converted keep their previous value; the
	// image is still written and the command reports the failure.
	for _, f := range result.Errors() {
		logger.Warn("%s kept its previous value: %v", f.Key, f.Err)
	}

	if err := a.writeImage(ctx, dst, result.Image); err != nil {
		return err
	}

	changed := 0
	for _, f := range result.Fields {
		if f.Changed {
			changed++
		}
	}
	fmt.Fprintf(out, "Wrote %s (%d tags changed, %d rejected)\n", dst, changed, len(result.Errors()))

	if n := len(result.Errors()); n > 0 {
		return fmt.Errorf("%d field(s) could not be converted", n)
	}
	return nil
}

// parseSets turns KEY=TEXT arguments into submitted field text. The text
// may itself contain '='; a later setting of the same key wins.
func parseSets(sets []string) (map[string]string, error) {
	submitted := make(map[string]string, len(sets))
	for _, s := range sets {
		key, text, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected KEY=TEXT", s)
		}
		submitted[key] = text
	}
	return submitted, nil
}
