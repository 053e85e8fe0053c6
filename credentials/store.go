// Package credentials persists the access/refresh token pair across process
// restarts, preferring the most secure backend available and degrading to a
// fallback when the preferred one fails at call time.
package credentials

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-afazer-client/authmodel"
)

// Store owns the credential persistence contract. All writes go through
// StoreTokens/ClearTokens, each of which fully supersedes prior state, so a
// reader never observes a half-updated pair.
type Store struct {
	mu       sync.Mutex
	primary  Backend
	fallback Backend
	log      zerolog.Logger
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithFallback sets the backend used when the primary backend fails at call
// time (not merely "key not found").
func WithFallback(b Backend) StoreOption {
	return func(s *Store) {
		s.fallback = b
	}
}

// WithLogger sets the logger used for degradation warnings.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// New creates a Store backed by primary. Without a fallback, primary failures
// surface according to each operation's contract.
func New(primary Backend, options ...StoreOption) (*Store, error) {
	if primary == nil {
		return nil, errors.New("[credentials.New] primary backend is required")
	}

	store := &Store{
		primary: primary,
		log:     zerolog.Nop(),
	}

	for _, opt := range options {
		opt(store)
	}

	return store, nil
}

// StoreTokens validates and persists a token pair. The access token is
// written unconditionally; the refresh token is written when present and
// actively deleted when absent, so a stale refresh token is never left
// associated with a new access token.
func (s *Store) StoreTokens(pair authmodel.TokenResponse) error {
	if err := pair.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.set(AccessTokenKey, pair.AccessToken); err != nil {
		return errors.Wrap(err, "[Store.StoreTokens] access token")
	}

	if pair.HasRefreshToken() {
		if err := s.set(RefreshTokenKey, pair.RefreshToken); err != nil {
			return errors.Wrap(err, "[Store.StoreTokens] refresh token")
		}
		return nil
	}

	if err := s.delete(RefreshTokenKey); err != nil {
		return errors.Wrap(err, "[Store.StoreTokens] clear stale refresh token")
	}
	return nil
}

// AccessToken returns the stored access token, or "" when never set, cleared,
// or the store is unavailable. Storage errors degrade to absent with a logged
// warning: absence simply forces a re-login, it never grants access.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(AccessTokenKey)
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(RefreshTokenKey)
}

// ClearTokens removes both tokens. Idempotent: clearing an empty store
// succeeds silently. Fails only when the underlying deletion itself fails
// unrecoverably on every available backend.
func (s *Store) ClearTokens() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.delete(AccessTokenKey); err != nil {
		return errors.Wrapf(authmodel.StorageErr, "[Store.ClearTokens] access token: %v", err)
	}
	if err := s.delete(RefreshTokenKey); err != nil {
		return errors.Wrapf(authmodel.StorageErr, "[Store.ClearTokens] refresh token: %v", err)
	}
	return nil
}

// HasValidTokens reports whether both tokens are currently retrievable.
// "Valid" means present: no signature or expiry checking happens here.
func (s *Store) HasValidTokens() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(AccessTokenKey) != "" && s.get(RefreshTokenKey) != ""
}

func (s *Store) get(key string) string {
	value, err := s.primary.Get(key)
	if err == nil {
		return value
	}
	if !errors.Is(err, ErrNotFound) {
		s.log.Warn().Err(err).Str("key", key).Msg("primary credential backend read failed")
		if s.fallback != nil {
			if value, err := s.fallback.Get(key); err == nil {
				return value
			} else if !errors.Is(err, ErrNotFound) {
				s.log.Warn().Err(err).Str("key", key).Msg("fallback credential backend read failed")
			}
		}
	}
	return ""
}

func (s *Store) set(key, value string) error {
	err := s.primary.Set(key, value)
	if err == nil {
		return nil
	}
	if s.fallback == nil {
		return err
	}
	s.log.Warn().Err(err).Str("key", key).Msg("primary credential backend write failed, using fallback")
	return s.fallback.Set(key, value)
}

func (s *Store) delete(key string) error {
	err := s.primary.Delete(key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		if s.fallback == nil {
			return err
		}
		s.log.Warn().Err(err).Str("key", key).Msg("primary credential backend delete failed, using fallback")
		err = s.fallback.Delete(key)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		return nil
	}
	// Deleting from the backend that succeeded is not enough when a previous
	// degraded write landed on the fallback.
	if s.fallback != nil {
		if err := s.fallback.Delete(key); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}
