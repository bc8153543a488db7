// Package blob stores binary artifacts (meeting audio, attachments) on the
// local filesystem. Object storage is an external collaborator; swapping the
// backend only requires another implementation of core.BlobStore.
package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes blobs under a single root directory.
type Store struct {
	root string
}

// NewStore creates a blob store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, dir[1:])
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}

	return &Store{root: dir}, nil
}

// Save writes the reader to a new blob. The stored path embeds a UUID so
// names never collide; the original name is kept as a suffix for debugging.
func (s *Store) Save(name string, r io.Reader) (string, int64, error) {
	// Keep only the base name; callers may pass client-supplied paths.
	name = filepath.Base(name)
	path := filepath.Join(s.root, uuid.New().String()+"_"+name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create blob: %w", err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("write blob: %w", err)
	}

	return path, n, nil
}

// Open opens a stored blob for reading.
func (s *Store) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Delete removes a stored blob. Deleting a missing blob is not an error.
func (s *Store) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
