package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"countdown-cli/internal/ics"
	"countdown-cli/internal/lib/logger/sl"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export events as iCalendar",
		Example: strings.TrimSpace(`
  countdown export --ics countdowns.ics
  countdown export --ics - > countdowns.ics
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			es, err := openEvents(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if path != "" && path != "-" {
				f, err := os.Create(path)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				w = f
			}

			if err := ics.Export(w, es.Events(), app.now()); err != nil {
				return writeErr(cmd, fmt.Errorf("export: %w", err))
			}
			app.log.Debug("events exported", slog.Int("count", es.Len()), slog.String("path", path))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "ics", "-", "Output .ics file (- for stdout)")

	return cmd
}

type importResult struct {
	Added   int      `json:"added"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

func newImportCmd(app *App) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import events from iCalendar (matching ids are replaced)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(path) == "" {
				return writeErr(cmd, errors.New("missing --ics <file>"))
			}

			var r io.Reader = cmd.InOrStdin()
			if path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				r = f
			}

			parsed, skipped, err := ics.Import(r, app.cfg.DefaultColorHex())
			if err != nil {
				return writeErr(cmd, fmt.Errorf("import: %w", err))
			}

			es, err := openEvents(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}

			res := importResult{Skipped: skipped}
			for _, e := range parsed {
				if existing, exists := es.Get(e.ID); exists {
					// Images are not part of the calendar; keep the local one.
					e.ImageData = existing.ImageData
					err = es.Update(cmd.Context(), e)
					if err == nil {
						res.Updated++
					}
				} else {
					_, err = es.Add(cmd.Context(), e)
					if err == nil {
						res.Added++
					}
				}
				if err != nil {
					res.Skipped++
					res.Errors = append(res.Errors, fmt.Sprintf("%s (%s): %v", e.ID, e.DisplayTitle(), err))
					app.log.Warn("skipping imported event", slog.String("id", e.ID), sl.Err(err))
				}
			}

			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&path, "ics", "", "Input .ics file (- for stdin)")

	return cmd
}
