package keyring

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps tokens in plain files, one per key. It exists for tests
// and must never be used in production.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates a file-based store rooted at dir, creating it if
// needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("directory path is required")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create keyring directory: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

// Dir returns the directory tokens are stored in.
func (f *FileStore) Dir() string {
	return f.dir
}

// IsAvailable implements Store.
func (f *FileStore) IsAvailable() error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("%w: directory not accessible: %v", ErrKeyringUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: path is not a directory", ErrKeyringUnavailable)
	}
	return nil
}

// keyPath maps key to a file inside the store directory. Keys are hex
// encoded so that no key can escape the directory.
func (f *FileStore) keyPath(key string) string {
	return filepath.Join(f.dir, "token-"+hex.EncodeToString([]byte(key)))
}

// Set implements Store.
func (f *FileStore) Set(key, token string) error {
	if key == "" {
		return ErrEmptyKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.keyPath(key)

	// Replace rather than follow an existing entry.
	_ = os.Remove(path)

	// #nosec G304 - path is derived from the store directory and a hex key
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(token); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// Get implements Store.
func (f *FileStore) Get(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// #nosec G304 - path is derived from the store directory and a hex key
	data, err := os.ReadFile(f.keyPath(key))
	if os.IsNotExist(err) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return string(data), nil
}

// Delete implements Store.
func (f *FileStore) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.keyPath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
