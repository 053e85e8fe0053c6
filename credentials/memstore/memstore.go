// Package memstore is an in-memory credential backend. Credentials do not
// survive a process restart, so it serves as the last-resort fallback and as
// the backend of choice in tests.
package memstore

import (
	"sync"

	"github.com/jrsteele09/go-afazer-client/credentials"
)

type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ credentials.Backend = (*Store)(nil)

func New() *Store {
	return &Store{values: make(map[string]string)}
}

func (s *Store) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", credentials.ErrNotFound
	}
	return value, nil
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
