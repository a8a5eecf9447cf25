package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_blobs (
    key TEXT PRIMARY KEY,
    value BYTEA NOT NULL
);
`

// PostgresBlobStore implements BlobStore on a single key-value table.
type PostgresBlobStore struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresBlobStore returns a PostgresBlobStore using the given
// database connection. db must be a valid *sql.DB connected to a
// PostgreSQL instance.
func NewPostgresBlobStore(db *sql.DB) *PostgresBlobStore {
	return &PostgresBlobStore{DB: db}
}

// InitPostgres opens a PostgreSQL connection, verifies it and creates
// the blob schema if it does not exist.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

// Get returns the blob stored under key, or ErrNotFound.
func (s *PostgresBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.DB.QueryRowContext(
		ctx,
		`SELECT value FROM kv_blobs WHERE key = $1`,
		key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return value, err
}

// Put upserts the blob stored under key.
func (s *PostgresBlobStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.DB.ExecContext(
		ctx,
		`INSERT INTO kv_blobs (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value,
	)
	return err
}
