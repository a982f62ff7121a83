// Package auth owns the session lifecycle: it is the only caller of the login
// endpoint and the only writer of the session store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fleetpass/fleetctl/internal/api"
	"github.com/fleetpass/fleetctl/internal/session"
)

// ErrInvalidCredentials is returned for every failed login regardless of
// cause, so callers cannot tell which of email or password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrNotAuthenticated is returned by operations that need a session
var ErrNotAuthenticated = errors.New("not logged in")

// Authenticator is the subset of the API client the manager needs
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.LoginResponse, error)
	Profile(ctx context.Context) (session.Principal, error)
}

// Manager drives login and logout against a session store
type Manager struct {
	client Authenticator
	store  *session.Store
	logger *slog.Logger
}

// NewManager creates a manager
func NewManager(client Authenticator, store *session.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{client: client, store: store, logger: logger}
}

// Login authenticates and activates the returned session.
// On any failure the store is left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrInvalidCredentials
	}

	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		m.logger.Debug("login rejected", "email", email, "error", err)
		return ErrInvalidCredentials
	}
	if resp.Token == "" {
		m.logger.Debug("login response without token", "email", email)
		return ErrInvalidCredentials
	}

	if err := m.store.Set(resp.Token, resp.User); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	m.logger.Debug("logged in", "user_id", resp.User.ID, "email", resp.User.Email)
	return nil
}

// Logout clears the local session. It makes no network call.
func (m *Manager) Logout() error {
	return m.store.Clear()
}

// Refresh re-fetches the principal for the held token and replaces it
// wholesale. API errors are returned unchanged and leave the session as is.
func (m *Manager) Refresh(ctx context.Context) (session.Principal, error) {
	token := m.store.Token()
	if token == "" {
		return session.Principal{}, ErrNotAuthenticated
	}
	p, err := m.client.Profile(ctx)
	if err != nil {
		return session.Principal{}, err
	}
	if err := m.store.Set(token, p); err != nil {
		return session.Principal{}, fmt.Errorf("saving session: %w", err)
	}
	return p, nil
}

// IsAuthenticated reports whether a session is active
func (m *Manager) IsAuthenticated() bool {
	return m.store.IsAuthenticated()
}

// Principal returns the active principal
func (m *Manager) Principal() (session.Principal, bool) {
	snap := m.store.Snapshot()
	if snap.Principal == nil {
		return session.Principal{}, false
	}
	return *snap.Principal, true
}

// Session returns the active session
func (m *Manager) Session() session.Session {
	return m.store.Snapshot()
}

// Subscribe observes session changes
func (m *Manager) Subscribe(fn func(session.Session)) func() {
	return m.store.Subscribe(fn)
}
