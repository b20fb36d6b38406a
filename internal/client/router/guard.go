package router

import (
	"context"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
)

// SessionView is what AuthGuard needs from the session.
type SessionView interface {
	Token() string
	User() *models.User
	IsAuthenticated() bool
	CurrentUser(ctx context.Context) *models.User
}

// AuthGuard gates pages on the session. A token without a loaded identity is
// validated first, so the decision never rests on an unverified token; pages
// that need a login send anonymous users to LoginPath, and guest-only pages
// send authenticated users to LandingPath.
func AuthGuard(s SessionView) Guard {
	return func(ctx context.Context, to, _ Location) (string, error) {
		if s.Token() != "" && s.User() == nil {
			s.CurrentUser(ctx)
		}

		authenticated := s.IsAuthenticated()
		switch {
		case to.Route.RequiresAuth && !authenticated:
			return LoginPath, nil
		case to.Route.RequiresGuest && authenticated:
			return LandingPath, nil
		default:
			return "", nil
		}
	}
}
