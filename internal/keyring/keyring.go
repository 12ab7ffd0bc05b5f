// Package keyring keeps profile access tokens in the OS keyring.
package keyring

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/xabinapal/mtcli/internal/utils"
)

const (
	// Service is the keyring service every entry is stored under. The
	// account is the profile name.
	Service = "mtcli"

	// TestKeyringEnvVar, when set to a directory path, makes DefaultStore
	// return a file-based store. It is meant for tests only.
	TestKeyringEnvVar = "MTCLI_TEST_KEYRING_DIR"

	probeAccount = "__availability_check__"
)

var (
	// ErrKeyringUnavailable is returned when no secure keyring is available.
	ErrKeyringUnavailable = errors.New("secure keyring is not available on this system")
	// ErrTokenNotFound is returned when no token is stored for a key.
	ErrTokenNotFound = errors.New("token not found in keyring")
	// ErrKeyringAccessDenied is returned when access to the keyring is denied.
	ErrKeyringAccessDenied = errors.New("access to keyring denied")
	// ErrEmptyKey is returned for operations on an empty key.
	ErrEmptyKey = errors.New("key cannot be empty")
)

// Store represents a secure token storage backend.
type Store interface {
	// Set stores a token for the given key.
	Set(key, token string) error
	// Get retrieves a token for the given key.
	Get(key string) (string, error)
	// Delete removes a token for the given key. Missing keys are not an error.
	Delete(key string) error
	// IsAvailable checks if the keyring is available.
	IsAvailable() error
}

// DefaultStore returns the OS keyring, or a FileStore when
// MTCLI_TEST_KEYRING_DIR is set.
func DefaultStore() Store {
	if testDir := os.Getenv(TestKeyringEnvVar); testDir != "" {
		fileStore, err := NewFileStore(testDir)
		if err == nil {
			return fileStore
		}
	}
	return &osKeyring{}
}

// Move transfers the token stored under from to to. A missing source is not
// an error.
func Move(s Store, from, to string) error {
	token, err := s.Get(from)
	if errors.Is(err, ErrTokenNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.Set(to, token); err != nil {
		return err
	}
	return s.Delete(from)
}

// unavailableHints lists, per platform, error fragments that mean the
// keyring backend itself is missing.
var unavailableHints = map[string]struct {
	fragments []string
	message   string
}{
	"linux": {
		fragments: []string{"secret service", "dbus", "org.freedesktop.secrets"},
		message:   "D-Bus secret service not available - please install and start gnome-keyring, kwallet, or another secret service provider",
	},
	"darwin": {
		fragments: []string{"keychain", "security"},
		message:   "macOS Keychain not accessible",
	},
	"windows": {
		fragments: []string{"credential", "wincred"},
		message:   "Windows Credential Manager not accessible",
	},
}

// osKeyring implements Store using the OS keyring.
type osKeyring struct{}

// IsAvailable probes the keyring with a lookup that is expected to miss.
func (k *osKeyring) IsAvailable() error {
	_, err := gokeyring.Get(Service, probeAccount)
	if err == nil || errors.Is(err, gokeyring.ErrNotFound) {
		return nil
	}

	if hint, ok := unavailableHints[runtime.GOOS]; ok && utils.ContainsAny(err.Error(), hint.fragments...) {
		return fmt.Errorf("%w: %s", ErrKeyringUnavailable, hint.message)
	}

	// Let the real operation report anything else.
	return nil
}

// Set stores a token in the keyring.
func (k *osKeyring) Set(key, token string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := k.IsAvailable(); err != nil {
		return err
	}

	if err := gokeyring.Set(Service, key, token); err != nil {
		return wrapKeyringError(err, "failed to store token")
	}
	return nil
}

// Get retrieves a token from the keyring.
func (k *osKeyring) Get(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	if err := k.IsAvailable(); err != nil {
		return "", err
	}

	token, err := gokeyring.Get(Service, key)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", wrapKeyringError(err, "failed to retrieve token")
	}
	return token, nil
}

// Delete removes a token from the keyring.
func (k *osKeyring) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := k.IsAvailable(); err != nil {
		return err
	}

	err := gokeyring.Delete(Service, key)
	if err != nil && !errors.Is(err, gokeyring.ErrNotFound) {
		return wrapKeyringError(err, "failed to delete token")
	}
	return nil
}

// wrapKeyringError classifies a keyring error and adds context.
func wrapKeyringError(err error, context string) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()
	switch {
	case utils.ContainsAny(errStr, "denied", "permission", "not allowed", "unauthorized"):
		return fmt.Errorf("%w: %s: %v", ErrKeyringAccessDenied, context, err)
	case utils.ContainsAny(errStr, "no keyring", "unavailable", "secret service"):
		return fmt.Errorf("%w: %s: %v", ErrKeyringUnavailable, context, err)
	default:
		return fmt.Errorf("%s: %w", context, err)
	}
}
