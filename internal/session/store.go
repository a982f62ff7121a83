// Package session holds the process-wide credential and principal.
//
// A Store restores the persisted pair at start-up without contacting the API.
// An expired or revoked token is only discovered when the next API call is
// rejected; that error reaches the caller like any other API error.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session pairs the bearer token with the principal it was issued for
type Session struct {
	Token     string
	Principal *Principal
}

// IsAuthenticated reports whether a token is present
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// Expiry decodes the exp claim of a JWT token without verifying it.
// ok is false for opaque tokens or tokens without exp.
func (s Session) Expiry() (exp time.Time, ok bool) {
	if s.Token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return time.Time{}, false
	}
	date, err := claims.GetExpirationTime()
	if err != nil || date == nil {
		return time.Time{}, false
	}
	return date.Time, true
}

// Store is the single holder of the current Session
type Store struct {
	backend Backend
	logger  *slog.Logger

	mu      sync.RWMutex
	current Session

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Session)
}

// NewStore creates an empty store over backend; call Restore to load state
func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		logger:  logger,
		subs:    make(map[int]func(Session)),
	}
}

// Restore loads the persisted pair. The session becomes active only when both
// halves are present and the principal decodes; otherwise it stays empty.
func (s *Store) Restore() Session {
	restored := s.readPersisted()

	s.mu.Lock()
	s.current = restored
	s.mu.Unlock()

	s.notify(restored)
	return restored
}

func (s *Store) readPersisted() Session {
	token, ok, err := s.backend.Get(KeyToken)
	if err != nil {
		s.logger.Debug("session restore failed", "error", err)
		return Session{}
	}
	if !ok || token == "" {
		return Session{}
	}

	raw, ok, err := s.backend.Get(KeyUser)
	if err != nil || !ok || raw == "" {
		s.logger.Debug("session restore: principal missing", "error", err)
		return Session{}
	}

	var p Principal
	if err := json.Unmarshal([]byte(raw), &p); err != nil || !p.valid() {
		s.logger.Debug("session restore: principal unreadable", "error", err)
		return Session{}
	}
	return Session{Token: token, Principal: &p}
}

// Set persists and activates both halves
func (s *Store) Set(token string, p Principal) error {
	if token == "" {
		return fmt.Errorf("set session: empty token")
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode principal: %w", err)
	}
	if err := s.backend.Set(map[string]string{KeyToken: token, KeyUser: string(raw)}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	next := Session{Token: token, Principal: &p}
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	s.notify(next)
	return nil
}

// Clear removes both halves from storage and memory. Memory is cleared even
// when the backend fails so the process never keeps a half-removed session.
func (s *Store) Clear() error {
	err := s.backend.Remove(KeyToken, KeyUser)

	s.mu.Lock()
	s.current = Session{}
	s.mu.Unlock()

	s.notify(Session{})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur := s.current
	if cur.Principal != nil {
		p := *cur.Principal
		cur.Principal = &p
	}
	return cur
}

// Token returns the current bearer token or ""
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// IsAuthenticated reports whether a token is held
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Subscribe registers fn to be called after every change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(sess Session) {
	s.subMu.Lock()
	fns := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(sess)
	}
}
