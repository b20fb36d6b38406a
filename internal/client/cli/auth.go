package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/client/router"
	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// getSimpleText and getPassword are indirections swapped out in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// errAuthFailed wraps the session's message for the caller.
var errAuthFailed = errors.New("authentication failed")

// Register opens the register page, asks for email, username and password,
// and creates the account. A successful registration also logs in.
func (a *App) Register(ctx context.Context) error {
	if _, err := a.enter(ctx, "/register"); err != nil {
		if errors.Is(err, ErrNotAllowed) {
			a.println("You are already logged in.")
		}
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ok := a.session.Register(ctx, models.UserRegister{Email: email, Username: username, Password: string(password)})
	return a.afterAuth(ctx, ok)
}

// Login opens the login page and authenticates with email and password.
func (a *App) Login(ctx context.Context) error {
	if _, err := a.enter(ctx, router.LoginPath); err != nil {
		if errors.Is(err, ErrNotAllowed) {
			a.println("You are already logged in.")
		}
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ok := a.session.Login(ctx, models.UserLogin{Email: email, Password: string(password)})
	return a.afterAuth(ctx, ok)
}

// GoogleLogin signs in with a Google id token pasted by the user.
func (a *App) GoogleLogin(ctx context.Context) error {
	if _, err := a.enter(ctx, router.LoginPath); err != nil {
		if errors.Is(err, ErrNotAllowed) {
			a.println("You are already logged in.")
		}
		return err
	}

	idToken, err := getSimpleText(a.reader, "Paste Google id token", a.out)
	if err != nil {
		return err
	}

	return a.afterAuth(ctx, a.session.GoogleLogin(ctx, idToken))
}

// afterAuth reports the outcome of a login-like operation and moves an
// authenticated user to the landing page.
func (a *App) afterAuth(ctx context.Context, ok bool) error {
	if !ok {
		msg := a.session.Error()
		a.println("Error:", msg)
		a.session.ClearError()
		return fmt.Errorf("%w: %s", errAuthFailed, msg)
	}

	a.printf("Welcome, %s!\n", a.session.User().Username)
	_, err := a.router.Push(ctx, router.LandingPath)
	return err
}

// Logout ends the session locally (and remotely when possible) and returns
// to the login page.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.println("Logged out.")
	_, err := a.router.Push(ctx, router.LoginPath)
	return err
}

// WhoAmI re-fetches and prints the current identity.
func (a *App) WhoAmI(ctx context.Context) error {
	if a.session.Token() == "" {
		a.println("Not logged in.")
		return nil
	}

	u := a.session.CurrentUser(ctx)
	if u == nil {
		a.println("Could not load your profile.")
		return errAuthFailed
	}

	a.printf("%s <%s>, member since %s\n", u.Username, u.Email, u.CreatedAt.Format("2006-01-02"))
	if exp, ok := a.session.TokenExpiry(); ok {
		a.printf("Session expires at %s\n", exp.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

// Refresh swaps the token for a fresh one. A failure logs out.
func (a *App) Refresh(ctx context.Context) error {
	if a.session.RefreshToken(ctx) {
		a.println("Session refreshed.")
		return nil
	}

	a.println("Could not refresh your session. Please log in again.")
	if _, err := a.router.Push(ctx, router.LoginPath); err != nil {
		return err
	}
	return errAuthFailed
}
