package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/router"
)

// defaultRefreshWindow is how long before expiry the token gets refreshed.
const defaultRefreshWindow = 2 * time.Minute

// StartTokenRefresher checks the token every interval and refreshes it once
// it is within window of expiring. A failed refresh logs the session out.
// It returns when ctx is done.
func (a *App) StartTokenRefresher(ctx context.Context, interval, window time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.refreshIfDue(ctx, time.Now(), window)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) refreshIfDue(ctx context.Context, now time.Time, window time.Duration) bool {
	if !a.session.IsAuthenticated() || !a.session.NeedsRefresh(now, window) {
		return false
	}

	if a.session.RefreshToken(ctx) {
		a.log.Info(ctx, "token refreshed ahead of expiry")
		return true
	}

	a.println("Could not refresh your session. Please log in again.")
	if err := a.router.Redirect(ctx, router.LoginPath); err != nil {
		a.log.Warn(ctx, "redirect to login failed", "error", err)
	}
	return false
}
