// Package state provides SQLite-backed persistence for the small
// mutable run state: the cached access credential and the monotonically
// increasing transaction counter required by the price API. Keeping
// this in a single-writer database makes the read-modify-write of both
// records atomic even if two runs ever overlap.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding the run state.
type Store struct {
	db *sql.DB
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/fueltrends/state.db.
func New(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "fueltrends", "state.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS credential (
			id           INTEGER PRIMARY KEY CHECK (id = 1),
			access_token TEXT NOT NULL,
			expires_at   INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS counters (
			name  TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Credential returns the cached access token and its expiry instant.
// A missing credential is reported with ok=false, not an error.
func (s *Store) Credential() (token string, expiresAt time.Time, ok bool, err error) {
	row := s.db.QueryRow(`SELECT access_token, expires_at FROM credential WHERE id = 1`)
	var expiresUnix int64
	if err := row.Scan(&token, &expiresUnix); err == sql.ErrNoRows {
		return "", time.Time{}, false, nil
	} else if err != nil {
		return "", time.Time{}, false, fmt.Errorf("failed to load credential: %w", err)
	}
	return token, time.Unix(expiresUnix, 0), true, nil
}

// SaveCredential stores the access token and expiry, replacing any
// previous credential.
func (s *Store) SaveCredential(token string, expiresAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO credential (id, access_token, expires_at)
		VALUES (1, ?, ?)`,
		token, expiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

// NextTransactionID atomically increments and returns the transaction
// counter as the decimal string the price API expects.
func (s *Store) NextTransactionID() (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`
		INSERT INTO counters (name, value) VALUES ('transaction_id', 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1`); err != nil {
		return "", fmt.Errorf("failed to increment transaction id: %w", err)
	}

	var value int64
	row := tx.QueryRow(`SELECT value FROM counters WHERE name = 'transaction_id'`)
	if err := row.Scan(&value); err != nil {
		return "", fmt.Errorf("failed to read transaction id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction id: %w", err)
	}
	return fmt.Sprintf("%d", value), nil
}
