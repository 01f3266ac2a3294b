package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bstardust/exif-editor/internal/metadata"
	"github.com/bstardust/exif-editor/pkg/models"
)

type showOutput struct {
	Source  string            `json:"source"`
	Summary *metadata.Summary `json:"summary,omitempty"`
	Fields  []models.Field    `json:"fields"`
	Notices []string          `json:"notices,omitempty"`
}

func newShowCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [flags] <image.jpg> | <s3://bucket/key>",
		Short: "Show the EXIF tags of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, a, args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tags as JSON")

	return cmd
}

func runShow(cmd *cobra.Command, a *app, src string, asJSON bool) error {
	image, err := a.readImage(cmd.Context(), src)
	if err != nil {
		return err
	}

	ed, err := a.newEditor(nil)
	if err != nil {
		return err
	}

	form, err := ed.ReadAndRender(image)
	if err != nil {
		return err
	}

	out := showOutput{
		Source:  src,
		Fields:  form.Fields,
		Notices: form.Notices,
	}
	if summary, err := metadata.SummarizeBytes(image); err == nil {
		out.Summary = summary
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printShow(cmd.OutOrStdout(), out)
	return nil
}

func printShow(w io.Writer, out showOutput) {
	fmt.Fprintln(w, out.Source)
	if out.Summary != nil {
		fmt.Fprintf(w, "  %s\n", out.Summary)
	}
	for _, notice := range out.Notices {
		fmt.Fprintf(w, "  ! %s\n", notice)
	}

	for _, group := range models.GroupFields(out.Fields) {
		fmt.Fprintf(w, "\n[%s]\n", group.Category)
		for _, f := range group.Fields {
			fmt.Fprintf(w, "  %-40s %s\n", f.Label, f.Value)
		}
	}
}
