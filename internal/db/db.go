// Package db provides the durable partitioned key-value store every
// repository and queue in the core is built on. It is the only package that
// touches persistent storage.
package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tapresto/possync/internal/errors"
)

// Partition names. Partitions never share keys; clearing one never affects
// another.
const (
	PartStoreProfile  = "storeProfile"
	PartStoreItems    = "storeItems"
	PartStoreTables   = "storeTables"
	PartPendingOrders = "pendingOrders"
	PartDeadOrders    = "deadOrders"
	PartSession       = "session"
)

// ErrNotFound signals an absent key, distinguishable from an I/O failure.
var ErrNotFound = errors.New(errors.ErrNotFound, "record not found")

// Store wraps the sql.DB behind partition-scoped single-key operations.
// The handle is opened once per process and shared; it is safe for
// concurrent use.
type Store struct {
	db *sql.DB
}

// Record is one stored key/value pair within a partition.
type Record struct {
	Key   string
	Value []byte
}

// Open opens the SQLite-backed store under dataDir, creating the schema
// idempotently. The database is opened with:
// - WAL mode for concurrent reads/writes
// - foreign key constraints enabled
// - a single writer connection (SQLite does not support multiple writers)
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "failed to create data directory", err)
	}

	dbPath := filepath.Join(dataDir, "tapresto.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "failed to open database", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrStorage, "failed to enable WAL mode", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrStorage, "failed to enable foreign keys", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// migrate creates the records table if missing. Adding a new partition needs
// no schema change, so upgrades never touch existing partitions' data.
func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS records (
		partition  TEXT NOT NULL CHECK(length(partition) > 0),
		key        TEXT NOT NULL CHECK(length(key) > 0),
		value      BLOB NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (partition, key)
	);`
	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrap(errors.ErrMigration, "failed to create records table", err)
	}
	return nil
}

// Get returns the value stored under (partition, key), or ErrNotFound.
func (s *Store) Get(ctx context.Context, partition, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM records WHERE partition = ? AND key = ?",
		partition, key).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorage, fmt.Sprintf("failed to read %s/%s", partition, key), err)
	}
	return value, nil
}

// Put upserts value under (partition, key), replacing any existing value.
func (s *Store) Put(ctx context.Context, partition, key string, value []byte) error {
	query := `
	INSERT INTO records (partition, key, value, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(partition, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, partition, key, value, time.Now().Unix()); err != nil {
		return errors.Wrap(errors.ErrStorage, fmt.Sprintf("failed to write %s/%s", partition, key), err)
	}
	return nil
}

// Delete removes the value under (partition, key). Deleting an absent key is
// a no-op.
func (s *Store) Delete(ctx context.Context, partition, key string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM records WHERE partition = ? AND key = ?",
		partition, key); err != nil {
		return errors.Wrap(errors.ErrStorage, fmt.Sprintf("failed to delete %s/%s", partition, key), err)
	}
	return nil
}

// List returns every record in a partition, ordered ascending by key.
func (s *Store) List(ctx context.Context, partition string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value FROM records WHERE partition = ? ORDER BY key ASC",
		partition)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorage, fmt.Sprintf("failed to list %s", partition), err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Key, &r.Value); err != nil {
			return nil, errors.Wrap(errors.ErrStorage, fmt.Sprintf("failed to scan %s record", partition), err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrStorage, fmt.Sprintf("failed to list %s", partition), err)
	}

	return records, nil
}

// Count returns the number of records in a partition.
func (s *Store) Count(ctx context.Context, partition string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE partition = ?", partition).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(errors.ErrStorage, fmt.Sprintf("failed to count %s", partition), err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
