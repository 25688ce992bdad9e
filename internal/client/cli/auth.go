package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
)

// getSimpleText, getMultiline and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getMultiline = GetMultiline
var getPassword = GetPassword

// Register prompts for a username, an optional email and a password, then
// creates the account. The server starts a session right away.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email (optional)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.api.Register(ctx, userName, email, password)
	if err != nil {
		return err
	}

	a.setUser(u.Username)
	printlnFn("Success! Logged in as", u.Username)
	return nil
}

// Login prompts for credentials and starts a session. The prompt shows the
// name the server reports for the new session.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.api.Login(ctx, userName, password); err != nil {
		return err
	}

	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}

	a.setUser(u.Username)
	a.setMode(ModeOnline)
	printlnFn("Login successful, logged in as", u.Username)
	return nil
}

// Logout ends the current session. The local session is dropped even if
// the server call fails.
func (a *App) Logout(ctx context.Context) error {
	defer a.setUser("")
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out")
	return nil
}

func (a *App) LogoutAll(ctx context.Context) error {
	defer a.setUser("")
	n, err := a.api.LogoutAll(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Logged out everywhere (%d sessions revoked)", n))
	return nil
}

func (a *App) Me(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}

	printlnFn("ID:      ", u.ID)
	printlnFn("Username:", u.Username)
	if u.Email != nil {
		printlnFn("Email:   ", *u.Email)
	}
	printlnFn("Status:  ", u.Status)
	printlnFn("Since:   ", u.CreatedAt.Format(time.DateOnly))
	return nil
}
