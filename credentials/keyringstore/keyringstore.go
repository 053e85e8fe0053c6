// Package keyringstore stores credentials in the operating system keyring
// (Keychain on macOS, libsecret on Linux, Credential Manager on Windows).
// It is the preferred backend on native platforms; pair it with a fallback
// store, since keyrings can fail at call time on headless machines.
package keyringstore

import (
	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"

	"github.com/jrsteele09/go-afazer-client/credentials"
)

const defaultService = "afazer"

type Store struct {
	service string
}

var _ credentials.Backend = (*Store)(nil)

// New creates a keyring store scoped to service. An empty service uses the
// application default.
func New(service string) *Store {
	if service == "" {
		service = defaultService
	}
	return &Store{service: service}
}

func (s *Store) Get(key string) (string, error) {
	value, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", credentials.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "[keyringstore.Get]")
	}
	return value, nil
}

func (s *Store) Set(key, value string) error {
	if err := keyring.Set(s.service, key, value); err != nil {
		return errors.Wrap(err, "[keyringstore.Set]")
	}
	return nil
}

func (s *Store) Delete(key string) error {
	err := keyring.Delete(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "[keyringstore.Delete]")
	}
	return nil
}
