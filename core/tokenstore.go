package core

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Fixed storage keys. Tokens and the cached profile live side by side so
// a restart can restore both without a network round trip.
const (
	KeyAuthTokens = "auth_tokens"
	KeyUserData   = "user_data"
)

// TokenStore persists the access/refresh token pair and the last-known
// user profile. Pure storage, no policy: it never decides when to refresh
// or log out.
type TokenStore struct {
	mu     sync.RWMutex
	store  KeyValueStore
	logger *zap.Logger
}

func NewTokenStore(store KeyValueStore, logger *zap.Logger) *TokenStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenStore{store: store, logger: logger}
}

// Tokens returns the stored pair. A missing or corrupt record reads as an
// empty pair, never as an error.
func (t *TokenStore) Tokens() TokenPair {
	t.mu.RLock()
	defer t.mu.RUnlock()

	raw, ok := t.store.Get(KeyAuthTokens)
	if !ok {
		return TokenPair{}
	}
	var pair TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		t.logger.Warn("corrupt token record, treating as absent", zap.Error(err))
		return TokenPair{}
	}
	return pair
}

// AccessToken is a non-blocking read of the current access token.
// Returns "" when none is stored.
func (t *TokenStore) AccessToken() string {
	return t.Tokens().AccessToken
}

// RefreshToken returns the stored refresh token, or "".
func (t *TokenStore) RefreshToken() string {
	return t.Tokens().RefreshToken
}

// SetTokens atomically replaces the stored pair. Used by login,
// registration and refresh.
func (t *TokenStore) SetTokens(pair TokenPair) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	raw, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("failed to encode token pair: %w", err)
	}
	if err := t.store.Set(KeyAuthTokens, raw); err != nil {
		return fmt.Errorf("failed to persist token pair: %w", err)
	}
	return nil
}

// User returns the last-known persisted profile, or nil when absent or
// unreadable.
func (t *TokenStore) User() *User {
	t.mu.RLock()
	defer t.mu.RUnlock()

	raw, ok := t.store.Get(KeyUserData)
	if !ok {
		return nil
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		t.logger.Warn("corrupt user record, treating as absent", zap.Error(err))
		return nil
	}
	return &u
}

// SetUser persists the profile alongside the tokens.
func (t *TokenStore) SetUser(u *User) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := t.store.Set(KeyUserData, raw); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	return nil
}

// Clear wipes tokens and the cached profile. Used on logout and on
// irrecoverable refresh failure.
func (t *TokenStore) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Delete(KeyAuthTokens); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	if err := t.store.Delete(KeyUserData); err != nil {
		return fmt.Errorf("failed to clear user: %w", err)
	}
	return nil
}

// HasValidToken reports whether a stored access token exists and its
// embedded expiry is still in the future.
func (t *TokenStore) HasValidToken(now time.Time) bool {
	return t.Tokens().Valid(now)
}
