// Package store provides the persistence boundary: a key-value blob
// store with file and PostgreSQL backends, and typed stores for the
// session state and the admin ledger built on top of it.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Get when no blob exists under the key.
var ErrNotFound = errors.New("blob not found")

// BlobStore is a durable key-value store for serialized snapshots.
// It offers no transactional guarantees beyond whole-value replacement.
type BlobStore interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the blob stored under key.
	Put(ctx context.Context, key string, value []byte) error
}

// FileBlobStore keeps each blob in its own JSON file inside a directory.
type FileBlobStore struct {
	// Dir is the directory holding the blob files.
	Dir string
}

// NewFileBlobStore returns a FileBlobStore rooted at dir, creating the
// directory if needed.
func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &FileBlobStore{Dir: dir}, nil
}

func (s *FileBlobStore) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

// Get reads the blob file for key.
func (s *FileBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put writes the blob file for key, replacing any previous content.
func (s *FileBlobStore) Put(_ context.Context, key string, value []byte) error {
	return os.WriteFile(s.path(key), value, 0o644)
}
