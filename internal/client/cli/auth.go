package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/codeforge/internal/client/session"
	"github.com/dmitrijs2005/codeforge/internal/common"
)

// getSimpleText, getPassword, getMultiline and getCode are indirections used
// to facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline
var getCode = GetCode

// Register prompts for a username, an optional email and a password, then
// creates the account and signs in.
//
// Rejected credentials are printed and swallowed so the REPL does not
// mistake them for an expired session. The password is wiped before
// returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.auth.Register(ctx, userName, password, email)
	if err != nil {
		var aerr *session.AuthError
		if errors.As(err, &aerr) {
			fmt.Fprintln(a.out, "Registration unsuccessful:", aerr.Error())
			return nil
		}
		return err
	}

	a.resetState()
	fmt.Fprintf(a.out, "Welcome, %s!\n", u.Name())
	return nil
}

// Login prompts for credentials and starts a session. As with Register,
// a rejected login is reported in place.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.auth.Login(ctx, userName, password)
	if err != nil {
		var aerr *session.AuthError
		if errors.As(err, &aerr) {
			a.log.Info(ctx, "login unsuccessful", "user", userName)
			fmt.Fprintln(a.out, "Login unsuccessful:", aerr.Error())
			return nil
		}
		return err
	}

	a.resetState()
	a.log.Info(ctx, "login successful", "user", u.Name())
	fmt.Fprintf(a.out, "Logged in as %s\n", u.Name())
	return nil
}

// Logout ends the session locally. Drafts stay on disk under the user's key.
func (a *App) Logout(ctx context.Context) error {
	a.drafts.Flush()
	a.auth.Logout(ctx)
	a.resetState()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI refreshes the profile from the server and prints it.
func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	u, err := a.auth.LoadProfile(ctx)
	if err != nil {
		if session.IsAuth(err) {
			return err
		}
		a.log.Warn(ctx, "profile refresh failed, showing cached user", "error", err)
		u = a.auth.CurrentUser()
	}
	if u == nil {
		return nil
	}

	fmt.Fprintf(a.out, "User:  %s\n", u.Name())
	if u.Email != "" {
		fmt.Fprintf(a.out, "Email: %s\n", u.Email)
	}
	if u.IsAdmin {
		fmt.Fprintln(a.out, "Role:  admin")
	}
	if a.tokens != nil {
		if exp, ok := a.tokens.AccessExpiry(); ok {
			fmt.Fprintf(a.out, "Token: valid until %s\n", exp.Local().Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}
