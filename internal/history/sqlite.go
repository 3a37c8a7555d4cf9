package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Current schema version
const SchemaVersion = "1"

// SQLite is a SQLite-backed history store.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tokens TEXT NOT NULL,
			display TEXT NOT NULL,
			payload TEXT NOT NULL,
			re REAL NOT NULL,
			im REAL,
			answer TEXT NOT NULL,
			is_error INTEGER NOT NULL,
			err TEXT NOT NULL,
			latex TEXT NOT NULL,
			rounded INTEGER NOT NULL,
			at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db}

	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}
	if version == "" {
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	} else if version != SchemaVersion {
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// Append adds an entry to the log.
func (s *SQLite) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	toks, err := json.Marshal(e.Tokens)
	if err != nil {
		return err
	}

	var im any
	if e.Imag != nil {
		im = *e.Imag
	}

	_, err = s.db.Exec(`
		INSERT INTO history (tokens, display, payload, re, im, answer, is_error, err, latex, rounded, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, string(toks), e.Display, e.Payload, e.Real, im, e.Answer,
		boolToInt(e.IsError), e.ErrText, e.LaTeX, boolToInt(e.Rounded),
		e.When.UTC().Format(time.RFC3339Nano))
	return err
}

// All returns the log oldest-first.
func (s *SQLite) All() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT tokens, display, payload, re, im, answer, is_error, err, latex, rounded, at
		FROM history ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Last returns the most recent entry.
func (s *SQLite) Last() (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`
		SELECT tokens, display, payload, re, im, answer, is_error, err, latex, rounded, at
		FROM history ORDER BY id DESC LIMIT 1
	`)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Len returns the number of entries.
func (s *SQLite) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Reset discards every entry.
func (s *SQLite) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM history")
	return err
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e       Entry
		toks    string
		im      sql.NullFloat64
		isErr   int
		rounded int
		at      string
	)
	err := row.Scan(&toks, &e.Display, &e.Payload, &e.Real, &im, &e.Answer,
		&isErr, &e.ErrText, &e.LaTeX, &rounded, &at)
	if err != nil {
		return Entry{}, err
	}
	if err := json.Unmarshal([]byte(toks), &e.Tokens); err != nil {
		return Entry{}, err
	}
	if im.Valid {
		v := im.Float64
		e.Imag = &v
	}
	e.IsError = isErr != 0
	e.Rounded = rounded != 0
	if t, err := time.Parse(time.RFC3339Nano, at); err == nil {
		e.When = t
	}
	return e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
