package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/skillswap/internal/client/models"
	"github.com/dmitrijs2005/skillswap/internal/client/services"
)

// Input indirections, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Register prompts for username, email and password and creates the account.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	reg := models.Registration{Username: username, Email: email, Password: password}
	if err := a.session.Register(ctx, reg); err != nil {
		a.println("Error:", a.session.Snapshot().LastError)
		a.session.ClearError()
		return err
	}

	a.println("Registered. You can log in now.")
	return nil
}

// Login prompts for credentials and authenticates. The outcome is printed
// from the session state.
func (a *App) Login(ctx context.Context) error {
	if u := a.session.Snapshot().CurrentUser; u != nil {
		a.printf("Already logged in as %s. Log out first.\n", u.Username)
		return nil
	}

	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, models.Credentials{Username: username, Password: password}); err != nil {
		a.println("Error:", a.session.Snapshot().LastError)
		a.session.ClearError()
		return err
	}

	a.printf("Logged in as %s\n", a.session.Snapshot().CurrentUser.Username)
	return nil
}

// Logout forgets the token and discards the skills view.
func (a *App) Logout(ctx context.Context) error {
	err := a.session.Logout(ctx)
	a.skills = services.NewSkillCollectionController(a.api, a.log)
	if err != nil {
		a.println("Error:", err)
		return err
	}
	a.println("Logged out.")
	return nil
}

// Status prints the session, connectivity and token expiry.
func (a *App) Status(ctx context.Context) error {
	snap := a.session.Snapshot()
	if snap.CurrentUser != nil {
		a.printf("User:    %s (id %d, %s)\n", snap.CurrentUser.Username, snap.CurrentUser.ID, snap.CurrentUser.Email)
	} else {
		a.println("User:    not logged in")
	}
	a.printf("Server:  %s (%s)\n", a.config.ServerBaseURL, a.Mode())

	exp, ok, err := a.session.TokenExpiry(ctx)
	switch {
	case err != nil:
		a.println("Token:   unreadable:", err)
	case ok && exp.Before(time.Now()):
		a.printf("Token:   expired at %s\n", exp.Local().Format(time.DateTime))
	case ok:
		a.printf("Token:   expires at %s\n", exp.Local().Format(time.DateTime))
	case snap.CurrentUser != nil:
		a.println("Token:   no expiry")
	}
	return err
}
