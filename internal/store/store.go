package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	sqliteFileName     = "countdown.sqlite"
	legacyEventsFile   = "events.json"
	eventsSlotKey      = "countdown.events"
	defaultDataDirName = "data"
)

// Store is a countdown data directory. It owns the SQLite file that holds the
// persisted event blob and a few best-effort side files.
type Store struct {
	Dir string
}

// DefaultDir resolves the data directory: COUNTDOWN_DIR, the config file's dir,
// then <config dir>/data.
func DefaultDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("COUNTDOWN_DIR")); v != "" {
		return v, nil
	}
	if cfg, err := LoadConfig(); err == nil && strings.TrimSpace(cfg.Dir) != "" {
		return cfg.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultDataDirName), nil
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store: missing dir")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

func (s Store) legacyEventsPath() string {
	return filepath.Join(s.Dir, legacyEventsFile)
}

// EventsSlot returns the key-value slot holding the serialized event list.
func (s Store) EventsSlot() *SQLiteSlot {
	return &SQLiteSlot{store: s, key: eventsSlotKey}
}
