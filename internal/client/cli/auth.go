package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
)

// Prompt hooks; tests swap them for scripted answers.
var (
	promptLine      = ReadLine
	promptSecret    = ReadSecret
	promptParagraph = ReadParagraph
)

func (a *App) readCredentials() (string, []byte, error) {
	email, err := promptLine(a.reader, a.out, "Email")
	if err != nil {
		return "", nil, err
	}
	password, err := promptSecret(a.reader, a.out, "Password")
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Register prompts for an email and password, creates the account on the
// server and starts an online session for it.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.auth.Register(ctx, email, string(password))
	if err != nil {
		return a.fail(err)
	}
	a.coord.Start(ctx, s)

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials. The coordinator falls back to the cached
// verifier when the server cannot be reached.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.coord.Login(ctx, email, string(password))
	if err != nil {
		return a.fail(err)
	}
	if s.Offline {
		fmt.Fprintln(a.out, "Signed in offline; changes will sync when the server is reachable")
	} else {
		fmt.Fprintln(a.out, "Signed in")
	}
	return nil
}

// FaceLogin identifies the user with the camera and starts a session.
func (a *App) FaceLogin(ctx context.Context) error {
	fmt.Fprintln(a.out, "Look at the camera and move your head slightly...")
	m, err := a.bio.Identify(ctx)
	if err != nil {
		return a.fail(err)
	}

	s, err := a.coord.LoginWithFace(ctx, m)
	if err != nil {
		return a.fail(err)
	}

	if !s.Offline {
		if _, err := a.bio.PushDescriptor(ctx, s.UserID); err != nil {
			a.logger.Warn(ctx, "descriptor upload failed", "user_id", s.UserID, "error", err)
		}
	}

	mode := "online"
	if s.Offline {
		mode = "offline"
	}
	fmt.Fprintf(a.out, "Welcome back, %s (%s)\n", s.Email, mode)
	return nil
}

// Reauth asks for the password of the current account so syncing can resume.
func (a *App) Reauth(ctx context.Context) error {
	s, err := a.currentSession()
	if err != nil {
		return a.fail(err)
	}
	password, err := promptSecret(a.reader, a.out, "Password for "+s.Email)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.coord.Reauthenticate(ctx, string(password)); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "Reauthenticated")
	return nil
}

// Logout ends the session. The cached verifier stays so the next login
// works offline.
func (a *App) Logout(ctx context.Context) error {
	if err := a.coord.Logout(ctx); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
