package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophtodo/internal/client/router"
)

// Go navigates to an arbitrary path. The guard may land the user elsewhere.
func (a *App) Go(ctx context.Context, path string) error {
	loc, err := a.router.Push(ctx, path)
	if err != nil {
		if errors.Is(err, router.ErrRouteNotFound) {
			a.println("No such page:", path)
		} else {
			a.println("Navigation failed:", err)
		}
		return err
	}
	if want, rerr := a.router.Resolve(path); rerr == nil && want.Path != loc.Path {
		a.println("Redirected to", loc.Path)
	}
	return nil
}
