package cli

import (
	"countdown-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var (
		to  string
		opt publish.WriteOptions
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write events as markdown pages (index.md + one page per event)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			es, err := openEvents(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := publish.WriteAll(es.Events(), to, app.now(), opt)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&opt.Overwrite, "overwrite", false, "Replace existing files")
	cmd.Flags().BoolVar(&opt.IncludeImages, "images", false, "Copy event images next to their pages")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
