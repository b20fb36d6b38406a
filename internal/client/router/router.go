package router

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophtodo/internal/logging"
)

var (
	ErrRouteNotFound    = errors.New("route not found")
	ErrTooManyRedirects = errors.New("too many redirects")
)

// MaxRedirects bounds how many guard or hard redirects one navigation follows.
const MaxRedirects = 8

// Guard runs before every navigation. A non-empty redirect aborts the
// navigation to `to` and starts one to redirect instead.
type Guard func(ctx context.Context, to, from Location) (redirect string, err error)

// AfterHook runs once a navigation has been committed. It must not call Push;
// hard redirects via Redirect are fine.
type AfterHook func(ctx context.Context, to, from Location)

// Router resolves paths against a route table and serializes navigations.
// No navigation commits while one of its guards is still running.
type Router struct {
	routes []Route
	log    logging.Logger

	nav sync.Mutex // held for the whole of a navigation

	mu         sync.RWMutex
	current    Location
	navigating bool
	pending    string
	guards     []Guard
	after      []AfterHook
}

func New(routes []Route, log logging.Logger) *Router {
	return &Router{
		routes: routes,
		log:    log.With("component", "router"),
	}
}

// BeforeEach appends a guard. Guards run in registration order; the first
// redirect or error stops the chain.
func (r *Router) BeforeEach(g Guard) {
	r.mu.Lock()
	r.guards = append(r.guards, g)
	r.mu.Unlock()
}

func (r *Router) AfterEach(h AfterHook) {
	r.mu.Lock()
	r.after = append(r.after, h)
	r.mu.Unlock()
}

// Current returns the committed location.
func (r *Router) Current() Location {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Resolve matches raw (a path with optional query) against the route table.
func (r *Router) Resolve(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q", ErrRouteNotFound, raw)
	}

	segments := splitPath(u.Path)
	for _, route := range r.routes {
		if params, ok := route.match(segments); ok {
			return Location{
				Path:   "/" + strings.Join(segments, "/"),
				Query:  u.Query(),
				Params: params,
				Route:  route,
			}, nil
		}
	}
	return Location{}, fmt.Errorf("%w: %q", ErrRouteNotFound, u.Path)
}

// Push navigates to path, following guard redirects, and returns the
// location that was finally committed.
func (r *Router) Push(ctx context.Context, path string) (Location, error) {
	r.nav.Lock()
	defer r.nav.Unlock()

	r.mu.Lock()
	r.navigating = true
	r.mu.Unlock()

	return r.navigate(ctx, path)
}

// Redirect is a hard navigation that cannot be vetoed by the caller. When a
// navigation is already running (for example a guard whose request came back
// 401), the redirect replaces whatever that navigation would have committed.
func (r *Router) Redirect(ctx context.Context, path string) error {
	r.mu.Lock()
	if r.navigating {
		r.pending = path
		r.mu.Unlock()
		r.log.Debug(ctx, "redirect queued", "path", path)
		return nil
	}
	r.mu.Unlock()

	_, err := r.Push(ctx, path)
	return err
}

// navigate expects navigating to be set and clears it before returning.
func (r *Router) navigate(ctx context.Context, target string) (Location, error) {
	from := r.Current()

	for hops := 0; ; hops++ {
		if hops > MaxRedirects {
			r.stop()
			return Location{}, fmt.Errorf("%w: last target %q", ErrTooManyRedirects, target)
		}
		if err := ctx.Err(); err != nil {
			r.stop()
			return Location{}, err
		}

		to, err := r.Resolve(target)
		var redirect string
		if err == nil {
			redirect, err = r.runGuards(ctx, to, from)
		}

		if p := r.takePending(); p != "" {
			target = p
			continue
		}
		if err != nil {
			r.stop()
			return Location{}, err
		}
		if redirect != "" && redirect != to.Path {
			r.log.Debug(ctx, "guard redirect", "from", to.Path, "to", redirect)
			target = redirect
			continue
		}

		r.commit(ctx, to, from)
		from = to

		next, more := r.finish(to.Path)
		if !more {
			return to, nil
		}
		target = next
	}
}

func (r *Router) runGuards(ctx context.Context, to, from Location) (string, error) {
	r.mu.RLock()
	guards := append([]Guard(nil), r.guards...)
	r.mu.RUnlock()

	for _, g := range guards {
		redirect, err := g(ctx, to, from)
		if err != nil {
			return "", err
		}
		if redirect != "" {
			return redirect, nil
		}
	}
	return "", nil
}

func (r *Router) commit(ctx context.Context, to, from Location) {
	r.mu.Lock()
	r.current = to
	after := append([]AfterHook(nil), r.after...)
	r.mu.Unlock()

	r.log.Info(ctx, "navigated", "path", to.Path, "route", to.Route.Name)

	for _, h := range after {
		h(ctx, to, from)
	}
}

func (r *Router) takePending() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.pending
	r.pending = ""
	return p
}

// finish ends the navigation unless a hard redirect to somewhere other than
// committed arrived meanwhile; checking and clearing navigating happen under
// one lock so no redirect is lost.
func (r *Router) finish(committed string) (next string, more bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.pending
	r.pending = ""
	if p != "" && p != committed {
		return p, true
	}
	r.navigating = false
	return "", false
}

func (r *Router) stop() {
	r.mu.Lock()
	r.navigating = false
	r.pending = ""
	r.mu.Unlock()
}
