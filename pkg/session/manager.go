package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Manager issues, resolves, and revokes sessions against a Store.
type Manager struct {
	store     Store
	transport *CookieTransport
	config    Config
}

// Option configures the Manager.
type Option func(*Manager)

// WithStore sets the session store.
func WithStore(store Store) Option {
	return func(m *Manager) { m.store = store }
}

// WithConfig sets the session configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.config = cfg }
}

// NewManager creates a session manager. Without an explicit store it falls
// back to the in-memory store, which is only suitable for development.
func NewManager(opts ...Option) *Manager {
	m := &Manager{config: DefaultConfig()}
	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}
	m.transport = NewCookieTransport(m.config.CookieName, m.config.SecureCookies)

	return m
}

// Transport returns the cookie transport bound to this manager's config.
func (m *Manager) Transport() *CookieTransport {
	return m.transport
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.config.TTL
}

// Issue creates and stores a session for the given user.
func (m *Manager) Issue(ctx context.Context, userID uuid.UUID, email string) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	session := New(token, userID, email, m.config.TTL)
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Resolve returns the session for a token. Expired sessions are removed from
// the store and reported as ErrSessionExpired.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	session, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		_ = m.store.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	return session, nil
}

// Revoke removes a session. Revoking an unknown token is a no-op.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}

// RevokeUser removes every session belonging to a user.
func (m *Manager) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	return m.store.DeleteByUserID(ctx, userID)
}

// generateToken creates a cryptographically secure token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
