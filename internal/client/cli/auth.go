package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/agentdeck/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline
var getKeyValues = GetKeyValues

// Register prompts for email, optional full name and password and creates
// an account. On success the new session is active immediately. The
// password buffer is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Enter full name (optional)", a.out)
	if err != nil {
		return err
	}
	var fullName *string
	if name != "" {
		fullName = &name
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.auth.Register(ctx, email, string(password), fullName)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", sess.User.Email)
	return nil
}

// Login prompts for credentials and signs in. A rejection is returned as
// *client.AuthRejectedError with the backend's message.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		a.logger.Info(ctx, "login failed", "email", email, "error", err)
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", sess.User.Email)
	return nil
}

// Logout drops the session locally; the backend is not contacted.
func (a *App) Logout(ctx context.Context) error {
	a.auth.SignOut(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	s := a.auth.State()
	if s.User == nil {
		fmt.Fprintf(a.out, "Not logged in (%s)\n", s.Status)
		return nil
	}

	name := ""
	if s.User.FullName != nil {
		name = " (" + *s.User.FullName + ")"
	}
	fmt.Fprintf(a.out, "%s%s id=%s\n", s.User.Email, name, s.User.ID)
	return nil
}
