package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/config"
	"github.com/dmitrijs2005/gophtodo/internal/client/router"
	"github.com/dmitrijs2005/gophtodo/internal/client/session"
	"github.com/dmitrijs2005/gophtodo/internal/client/storage"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
)

var (
	ErrInvalidChoice = errors.New("invalid choice")
	ErrNotAllowed    = errors.New("page not available")
)

// App is the running client: one session, one router, one API client.
type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	api     client.Client
	session *session.Session
	router  *router.Router
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp opens the local database, restores the persisted token store and
// wires the rest of the client on top of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.OpenDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	tokens, err := storage.NewSQLiteTokenStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a, err := newApp(c, log, tokens, bufio.NewReader(os.Stdin), os.Stdout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a.db = db
	return a, nil
}

func newApp(c *config.Config, log logging.Logger, tokens storage.TokenStore, reader *bufio.Reader, out io.Writer) (*App, error) {
	d, err := client.NewDispatcher(c.APIBaseURL, c.RequestTimeout, tokens, log)
	if err != nil {
		return nil, err
	}
	api := client.NewHTTPClient(d)

	a := &App{
		config:  c,
		log:     log.With("component", "cli"),
		api:     api,
		session: session.New(api, tokens, log),
		router:  router.New(router.DefaultRoutes(), log),
		reader:  reader,
		out:     out,
	}

	a.router.BeforeEach(router.AuthGuard(a.session))
	a.router.AfterEach(a.render)
	a.session.Bind(d, a.onUnauthorized)
	return a, nil
}

// onUnauthorized runs after the session was cleared because of a 401. On the
// login page itself (a rejected password) there is nowhere to redirect to.
func (a *App) onUnauthorized(ctx context.Context) {
	if a.router.Current().Path == router.LoginPath {
		return
	}
	a.println("Your session has expired. Please log in again.")
	if err := a.router.Redirect(ctx, router.LoginPath); err != nil {
		a.log.Warn(ctx, "redirect to login failed", "error", err)
	}
}

// Close detaches the session and closes the local database.
func (a *App) Close() error {
	a.session.Close()
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Run restores the session, starts the token refresher and runs the REPL
// until the user quits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Welcome to GophTodo CLI (type 'help' for commands)")

	a.session.Initialize(ctx)

	go a.StartTokenRefresher(ctx, a.config.RefreshCheckInterval, defaultRefreshWindow)

	// A persisted token rejected during Initialize has already redirected
	// to the login page.
	if a.router.Current().IsZero() {
		start := "/"
		if a.session.IsAuthenticated() {
			start = router.LandingPath
		}
		if _, err := a.router.Push(ctx, start); err != nil {
			return fmt.Errorf("initial navigation: %w", err)
		}
	}

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// getStatus renders the prompt prefix: "(user /path)".
func (a *App) getStatus() string {
	s := a.router.Current().Path
	if u := a.session.User(); u != nil {
		s = u.Username + " " + s
	}
	if s == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// enter navigates to path and reports an error unless the router committed
// the page that was asked for (the guard may have sent the user elsewhere).
func (a *App) enter(ctx context.Context, path string) (router.Location, error) {
	loc, err := a.router.Push(ctx, path)
	if err != nil {
		a.println("Navigation failed:", err)
		return loc, err
	}
	want, err := a.router.Resolve(path)
	if err != nil {
		return loc, err
	}
	if loc.Path != want.Path {
		a.println("Redirected to", loc.Path)
		return loc, fmt.Errorf("%w: %s", ErrNotAllowed, want.Path)
	}
	return loc, nil
}
