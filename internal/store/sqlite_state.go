package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrCorruptSlot marks a slot whose backing file cannot be read as a database.
var ErrCorruptSlot = errors.New("persistence slot corrupt")

// Slot is a single key-value persistence slot. Read returns (nil, nil) when nothing
// has been written yet.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, blob []byte) error
}

// SQLiteSlot stores one blob under a fixed key in the store's kv table.
type SQLiteSlot struct {
	store Store
	key   string
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps a CLI run while the TUI is open.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			k TEXT PRIMARY KEY,
			v BLOB NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (sl *SQLiteSlot) Read(ctx context.Context) ([]byte, error) {
	db, err := sl.store.openSQLite(ctx)
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	defer db.Close()

	blob, ok, err := readKV(ctx, db, sl.key)
	if err != nil {
		return nil, classifySQLiteErr(err)
	}
	if ok {
		return blob, nil
	}

	// One-time import from a legacy events.json written next to the database.
	legacy, err := os.ReadFile(sl.store.legacyEventsPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	events, ok := decodeLegacyEvents(legacy)
	if !ok {
		return nil, nil
	}
	blob, err = EncodeEvents(events)
	if err != nil {
		return nil, err
	}
	if err := writeKV(ctx, db, sl.key, blob); err != nil {
		return nil, err
	}
	return blob, nil
}

func (sl *SQLiteSlot) Write(ctx context.Context, blob []byte) error {
	if blob == nil {
		return errors.New("store: nil blob")
	}
	db, err := sl.store.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return writeKV(ctx, db, sl.key, blob)
}

func classifySQLiteErr(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
			return fmt.Errorf("%w: %w", ErrCorruptSlot, err)
		}
	}
	return err
}

func readKV(ctx context.Context, db *sql.DB, key string) ([]byte, bool, error) {
	var v []byte
	err := db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return v, true, nil
}

func writeKV(ctx context.Context, db *sql.DB, key string, blob []byte) error {
	nowMs := time.Now().UTC().UnixMilli()
	if _, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO kv(k, v, updated_at_unixms) VALUES(?, ?, ?)`, key, blob, nowMs); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
