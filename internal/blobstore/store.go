package blobstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound reports a Get for a name with no stored blob.
var ErrNotFound = errors.New("blob not found")

// Store persists named blobs in a SQLite database. Writes are wrapped in a
// busy-retry so concurrent readers do not fail a put outright.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path and applies any
// pending schema migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("blobstore migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return err
	}
	// Not closing m: that would close the underlying DB connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Put stores data under name, replacing any previous blob with that name.
// Each write gets a fresh revision id.
func (s *Store) Put(name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("empty blob name")
	}
	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO blobs (blob_id, name, data, size_bytes, created_unix_nanos)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				blob_id = excluded.blob_id,
				data = excluded.data,
				size_bytes = excluded.size_bytes,
				created_unix_nanos = excluded.created_unix_nanos`,
			uuid.New().String(), name, data, len(data), time.Now().UnixNano())
		return err
	})
}

// Get returns the blob stored under name.
func (s *Store) Get(name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM blobs WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// List returns the stored blob names, newest first.
func (s *Store) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM blobs ORDER BY created_unix_nanos DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Delete removes the blob stored under name, if present.
func (s *Store) Delete(name string) error {
	return retryOnBusy(func() error {
		_, err := s.db.Exec(`DELETE FROM blobs WHERE name = ?`, name)
		return err
	})
}

const maxBusyRetries = 5

// retryOnBusy retries fn while SQLite reports the database locked, backing
// off between attempts. Non-busy errors fail immediately.
func retryOnBusy(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxBusyRetries; attempt++ {
		err = fn()
		if err == nil || !isBusyErr(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}
	return err
}

func isBusyErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
