// Package session holds the client-side authentication state: the bearer
// token (owned by the token store), the identity fetched for it, and the
// loading and error flags the UI renders.
//
// A Session is built explicitly with New, bound to the request dispatcher
// with Bind, and released with Close. Its operations never return errors:
// failures are recorded as a displayable message in Error and reported as a
// false or nil result.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/client/storage"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"golang.org/x/sync/singleflight"
)

// State is the derived lifecycle position of a Session.
type State int

const (
	// Anonymous: no token.
	Anonymous State = iota
	// Pending: token present, identity not loaded yet.
	Pending
	// Authenticated: token and identity present.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Pending:
		return "pending"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// HookRegistrar is the part of the dispatcher a Session binds to.
type HookRegistrar interface {
	OnUnauthorized(h client.UnauthorizedHook) (remove func())
}

// Session is safe for concurrent use. Its mutex is never held across a
// network call; token writes go to the local store only.
type Session struct {
	api    client.AuthAPI
	tokens storage.TokenStore
	log    logging.Logger
	now    func() time.Time

	flight singleflight.Group

	mu        sync.RWMutex
	user      *models.User
	loading   int
	errMsg    string
	expiresAt time.Time
	unbind    []func()
}

// New creates a Session over api and the persisted token in tokens. It does
// not contact the server; call Initialize for that.
func New(api client.AuthAPI, tokens storage.TokenStore, log logging.Logger) *Session {
	return &Session{
		api:    api,
		tokens: tokens,
		log:    log.With("component", "session"),
		now:    time.Now,
	}
}

// Bind registers the session with the dispatcher so that any 401 response
// clears it locally. afterInvalidate, when non-nil, runs right after the
// clear; the CLI uses it for the hard redirect to the login page.
func (s *Session) Bind(d HookRegistrar, afterInvalidate func(ctx context.Context)) {
	remove := d.OnUnauthorized(func(ctx context.Context) {
		s.Invalidate(ctx)
		if afterInvalidate != nil {
			afterInvalidate(ctx)
		}
	})

	s.mu.Lock()
	s.unbind = append(s.unbind, remove)
	s.mu.Unlock()
}

// Close detaches the session from every dispatcher it was bound to. The
// persisted token is left in place.
func (s *Session) Close() {
	s.mu.Lock()
	unbind := s.unbind
	s.unbind = nil
	s.mu.Unlock()

	for _, remove := range unbind {
		remove()
	}
}

// Token returns the current bearer token, or "".
func (s *Session) Token() string {
	return s.tokens.Token()
}

// User returns the loaded identity, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Loading reports whether a login or registration is in progress.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Error returns the last failure message, or "".
func (s *Session) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// ClearError drops the failure message and nothing else.
func (s *Session) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

// IsAuthenticated is true iff a token is present and an identity is loaded.
func (s *Session) IsAuthenticated() bool {
	return s.State() == Authenticated
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case s.tokens.Token() == "":
		return Anonymous
	case s.user == nil:
		return Pending
	default:
		return Authenticated
	}
}

// begin marks the start of a user-initiated operation: the previous error is
// dropped and the loading flag raised until the returned func runs.
func (s *Session) begin() (end func()) {
	s.mu.Lock()
	s.errMsg = ""
	s.loading++
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
	}
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}

// setToken stores a freshly issued token. The identity is kept: a refreshed
// token belongs to the same user.
func (s *Session) setToken(ctx context.Context, resp *models.LoginResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tokens.SetToken(ctx, resp.AccessToken); err != nil {
		return err
	}
	s.expiresAt = resp.ExpiresAt(s.now())
	return nil
}

// clearLocked drops token and identity. The error message is untouched.
func (s *Session) clearLocked(ctx context.Context) {
	if err := s.tokens.ClearToken(ctx); err != nil {
		s.log.Warn(ctx, "token clear failed", "error", err)
	}
	s.user = nil
	s.expiresAt = time.Time{}
}
