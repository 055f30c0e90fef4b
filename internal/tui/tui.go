package tui

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"countdown-cli/internal/lib/logger/handlers/slogdiscard"
	"countdown-cli/internal/lib/logger/sl"
	"countdown-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

const logFileName = "countdown.log"

type Options struct {
	Dir          string
	SeedSamples  bool
	DefaultColor string
	Theme        string
	LogLevel     string
}

func Run(ctx context.Context, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)

	log, closeLog := openLog(opts.LogLevel)
	defer closeLog()

	es, err := store.Open(ctx, opts.Dir,
		store.WithLogger(log),
		store.WithSampleSeed(opts.SeedSamples),
	)
	if err != nil {
		return err
	}

	m := newAppModel(ctx, store.Store{Dir: opts.Dir}, es, log, opts.DefaultColor)
	log.Info("tui started", slog.String("dir", opts.Dir), slog.Int("events", es.Len()))
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		log.Error("tui stopped", sl.Err(err))
	}
	return err
}

// openLog writes JSON records to <config dir>/countdown.log; the terminal belongs to
// the TUI. Logging is dropped when the file cannot be opened.
func openLog(level string) (*slog.Logger, func()) {
	dir, err := store.ConfigDir()
	if err != nil {
		return slogdiscard.NewDiscardLogger(), func() {}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return slogdiscard.NewDiscardLogger(), func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return slogdiscard.NewDiscardLogger(), func() {}
	}
	h := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: sl.ParseLevel(level)})
	return slog.New(h), func() { _ = f.Close() }
}
