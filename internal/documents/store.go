// Package documents stores the knowledge files operators attach to an
// agent. Files live on disk under opaque keys; metadata lives in the
// documents table.
package documents

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir %s: %w", dir, err)
	}
	return &Store{Dir: dir}, nil
}

// NewKey produces the storage key for an uploaded file. The original
// filename only contributes its extension; the rest is random so
// uploads can never collide or traverse paths.
func (s *Store) NewKey(filename string) string {
	return uuid.NewString() + filepath.Ext(filename)
}

// Path returns the on-disk location for a storage key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.Dir, filepath.Base(key))
}

// Remove deletes the stored file. A file already gone is not an error:
// the row is what matters.
func (s *Store) Remove(key string) error {
	err := os.Remove(s.Path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
