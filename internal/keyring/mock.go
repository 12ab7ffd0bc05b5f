package keyring

import (
	"sort"
	"sync"
)

// MockStore is an in-memory Store for tests.
type MockStore struct {
	mu      sync.RWMutex
	data    map[string]string
	failing bool
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]string),
	}
}

// SetFailing makes every operation fail with ErrKeyringUnavailable.
func (m *MockStore) SetFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

// IsAvailable implements Store.
func (m *MockStore) IsAvailable() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing {
		return ErrKeyringUnavailable
	}
	return nil
}

// Set implements Store.
func (m *MockStore) Set(key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return ErrKeyringUnavailable
	}
	if key == "" {
		return ErrEmptyKey
	}

	m.data[key] = token
	return nil
}

// Get implements Store.
func (m *MockStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.failing {
		return "", ErrKeyringUnavailable
	}

	token, ok := m.data[key]
	if !ok {
		return "", ErrTokenNotFound
	}
	return token, nil
}

// Delete implements Store.
func (m *MockStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return ErrKeyringUnavailable
	}

	delete(m.data, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MockStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
