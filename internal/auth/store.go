// Package auth owns the panel's notion of whether the operator is logged in
// and reacts to authentication failures anywhere in the transport.
package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/masquevpn/panel/internal/backend"
)

// API is the subset of the admin API the store drives.
type API interface {
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	AuthCheck(ctx context.Context) (backend.AuthStatus, error)
}

// Session is the local view of the server session. Username is empty
// whenever Authenticated is false.
type Session struct {
	Username      string
	Authenticated bool
}

// Store is the single source of truth for Session. Construct one per process
// and pass it to whatever needs it.
type Store struct {
	api    API
	logger *slog.Logger

	mu       sync.RWMutex
	session  Session
	onChange func(Session)
}

// NewStore returns an unauthenticated store.
func NewStore(api API, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{api: api, logger: logger}
}

// OnChange registers fn to be called, outside the lock, after every
// transition that altered the session.
func (s *Store) OnChange(fn func(Session)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Authenticated reports whether the session is authenticated.
func (s *Store) Authenticated() bool {
	return s.Snapshot().Authenticated
}

// Login posts the credentials and records the session only on success.
func (s *Store) Login(ctx context.Context, username, password string) error {
	if err := s.api.Login(ctx, username, password); err != nil {
		return err
	}
	s.LoginSuccess(username)
	return nil
}

// LoginSuccess records a session after the server accepted a login.
func (s *Store) LoginSuccess(username string) {
	s.set(Session{Username: username, Authenticated: true})
}

// Logout tells the server to drop the session and then clears local state
// regardless of the outcome.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("logout request failed", "error", err)
	}
	s.set(Session{})
}

// CheckAuthStatus asks the server whether the ambient session is valid. Any
// failure, or a missing loggedIn, leaves the store logged out.
func (s *Store) CheckAuthStatus(ctx context.Context) Session {
	status, err := s.api.AuthCheck(ctx)
	if err != nil {
		s.logger.Debug("auth check failed", "error", err)
		s.set(Session{})
		return Session{}
	}
	next := Session{}
	if status.LoggedIn {
		next = Session{Username: status.Username, Authenticated: true}
	}
	s.set(next)
	return next
}

func (s *Store) set(next Session) {
	if !next.Authenticated {
		next.Username = ""
	}
	s.mu.Lock()
	changed := s.session != next
	s.session = next
	fn := s.onChange
	s.mu.Unlock()

	if changed && fn != nil {
		fn(next)
	}
}
