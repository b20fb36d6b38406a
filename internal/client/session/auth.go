package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
)

// meKey scopes a shared identity fetch to the token it is sent with, so a
// caller holding a new token never joins a fetch made with an old one.
func meKey(token string) string {
	return "me:" + token
}

// Login exchanges credentials for a token and loads the identity behind it.
// It reports true only when the session ends up Authenticated.
func (s *Session) Login(ctx context.Context, in models.UserLogin) bool {
	end := s.begin()
	defer end()

	return s.login(ctx, in)
}

func (s *Session) login(ctx context.Context, in models.UserLogin) bool {
	resp, err := s.api.Login(ctx, in)
	if err != nil {
		s.log.Info(ctx, "login rejected", "email", in.Email, "error", err)
		s.setError(loginMessage(err))
		return false
	}
	return s.acceptToken(ctx, resp, loginMessage)
}

// Register creates the account and then logs in with the same credentials.
// No login is attempted when registration fails.
func (s *Session) Register(ctx context.Context, in models.UserRegister) bool {
	end := s.begin()
	defer end()

	if _, err := s.api.Register(ctx, in); err != nil {
		s.log.Info(ctx, "registration rejected", "email", in.Email, "error", err)
		s.setError(registerMessage(err))
		return false
	}
	return s.login(ctx, models.UserLogin{Email: in.Email, Password: in.Password})
}

// GoogleLogin exchanges a Google id token for an API token.
func (s *Session) GoogleLogin(ctx context.Context, idToken string) bool {
	end := s.begin()
	defer end()

	resp, err := s.api.GoogleLogin(ctx, idToken)
	if err != nil {
		s.log.Info(ctx, "google login rejected", "error", err)
		s.setError(googleMessage(err))
		return false
	}
	return s.acceptToken(ctx, resp, googleMessage)
}

// acceptToken stores a newly issued token and loads its identity.
func (s *Session) acceptToken(ctx context.Context, resp *models.LoginResponse, message func(error) string) bool {
	if err := s.setToken(ctx, resp); err != nil {
		s.log.Warn(ctx, "token persist failed", "error", err)
		s.setError(message(err))
		return false
	}

	u, err := s.fetchUser(ctx)
	if u == nil {
		if err == nil {
			// token vanished between store and fetch (logout or 401 elsewhere)
			err = client.ErrUnauthorized
		}
		s.setError(message(err))
		return false
	}
	return true
}

// Logout asks the server to drop the token, then clears the local session
// whatever the outcome. The remote call is skipped when there is no token.
func (s *Session) Logout(ctx context.Context) {
	if s.tokens.Token() != "" {
		if err := s.api.Logout(ctx); err != nil {
			s.log.Warn(ctx, "remote logout failed", "error", err)
		}
	}

	s.mu.Lock()
	s.clearLocked(ctx)
	s.errMsg = ""
	s.mu.Unlock()

	s.log.Info(ctx, "logged out")
}

// Invalidate clears token and identity without contacting the server. The
// dispatcher calls it on every 401.
func (s *Session) Invalidate(ctx context.Context) {
	s.mu.Lock()
	s.clearLocked(ctx)
	s.mu.Unlock()
}

// CurrentUser fetches the identity for the current token and stores it. It
// returns nil when there is no token or the fetch fails; a 401 also clears
// the token and identity.
//
// Overlapping calls share one request. A result is stored only if the token
// it was fetched with is still current.
func (s *Session) CurrentUser(ctx context.Context) *models.User {
	u, _ := s.fetchUser(ctx)
	return u
}

func (s *Session) fetchUser(ctx context.Context) (*models.User, error) {
	token := s.tokens.Token()
	if token == "" {
		return nil, nil
	}

	ch := s.flight.DoChan(meKey(token), func() (any, error) {
		return s.me(context.WithoutCancel(ctx), token)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.User), nil
	}
}

func (s *Session) me(ctx context.Context, token string) (*models.User, error) {
	u, err := s.api.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.tokens.Token() == token

	if err != nil {
		s.log.Warn(ctx, "identity fetch failed", "error", err)
		if errors.Is(err, client.ErrUnauthorized) && current {
			s.clearLocked(ctx)
		}
		return nil, err
	}
	if !current {
		s.log.Debug(ctx, "discarding identity fetched for a replaced token")
		return nil, client.ErrUnauthorized
	}

	s.user = u
	return u, nil
}

// RefreshToken swaps the token for a new one. Any failure logs the session
// out completely.
func (s *Session) RefreshToken(ctx context.Context) bool {
	resp, err := s.api.Refresh(ctx)
	if err == nil {
		err = s.setToken(ctx, resp)
	}
	if err != nil {
		s.log.Warn(ctx, "token refresh failed", "error", err)
		s.Logout(ctx)
		return false
	}
	s.log.Debug(ctx, "token refreshed")
	return true
}

// Initialize reconciles a persisted token with the server at start-up by
// loading its identity. It does nothing when no token is persisted.
func (s *Session) Initialize(ctx context.Context) {
	if s.tokens.Token() == "" {
		return
	}
	if u := s.CurrentUser(ctx); u != nil {
		s.log.Info(ctx, "session restored", "user", u.Email)
	}
}
