package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"countdown-cli/internal/format"
	"countdown-cli/internal/lib/logger/handlers/slogpretty"
	"countdown-cli/internal/lib/logger/sl"
	"countdown-cli/internal/store"
	"countdown-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg *store.GlobalConfig
	log *slog.Logger
	now func() time.Time
}

func NewRootCmd() *cobra.Command {
	app := &App{now: time.Now}

	cmd := &cobra.Command{
		Use:           "countdown",
		Short:         "Countdown (local-first) CLI + TUI",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  countdown

  # Scriptable commands
  countdown events list
  countdown events add --title "Launch" --at "2026-12-01 09:00" --color green

  # Direct event lookup (shortcut for: countdown events show <event-id>)
  countdown 0b6f3c1e-8d2a-4b7e-9a55-2f1c7d9e4a10
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd.Context(), app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := store.LoadConfig()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		if strings.TrimSpace(app.Format) == "" {
			app.Format = cfg.Format
		}
		if strings.TrimSpace(app.LogLevel) == "" {
			app.LogLevel = cfg.LogLevel
		}
		app.log = setupLogger(cmd, app.LogLevel)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("COUNTDOWN_DIR", ""), "Path to data dir (default: <config dir>/data)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("COUNTDOWN_FORMAT", ""), "Output format (json|edn|yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("COUNTDOWN_LOG_LEVEL", ""), "Log level (debug|info|warn|error)")

	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// setupLogger logs to stderr with the colored handler; stdout stays reserved for
// command output.
func setupLogger(cmd *cobra.Command, level string) *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{Level: sl.ParseLevel(level)},
	}
	return slog.New(opts.NewPrettyHandler(cmd.ErrOrStderr()))
}

func runTUI(ctx context.Context, app *App) error {
	dir, err := resolveDir(app)
	if err != nil {
		return err
	}
	return tui.Run(ctx, tui.Options{
		Dir:          dir,
		SeedSamples:  app.cfg.SeedSamples,
		DefaultColor: app.cfg.DefaultColorHex(),
		Theme:        app.cfg.Theme,
		LogLevel:     app.LogLevel,
	})
}

func resolveDir(app *App) (string, error) {
	if strings.TrimSpace(app.Dir) != "" {
		return app.Dir, nil
	}
	dir, err := store.DefaultDir()
	if err != nil {
		return "", err
	}
	app.Dir = dir
	return dir, nil
}

func openEvents(ctx context.Context, app *App) (*store.EventStore, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, dir,
		store.WithLogger(app.log),
		store.WithSampleSeed(app.cfg.SeedSamples),
		store.WithClock(app.now),
	)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return reportedError{err: err}
}
