package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/client/session"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
)

// Profile prints the profile of the current user. When online the remote
// copy is pulled first unless a local edit is pending.
func (a *App) Profile(ctx context.Context) error {
	s, err := a.currentSession()
	if err != nil {
		return a.fail(err)
	}

	if a.conn.Online() && !s.Offline {
		if _, err := a.profiles.Pull(ctx, s.UserID); err != nil {
			a.logger.Warn(ctx, "profile pull failed", "user_id", s.UserID, "error", err)
		}
	}

	p, err := a.profiles.Get(ctx, s.UserID)
	if errors.Is(err, common.ErrorNotFound) {
		fmt.Fprintln(a.out, "No profile yet; use 'edit' to create one")
		return nil
	}
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "Name:     %s\n", p.Fields.FullName)
	fmt.Fprintf(a.out, "Phone:    %s\n", p.Fields.Phone)
	fmt.Fprintf(a.out, "Location: %s\n", p.Fields.Location)
	fmt.Fprintf(a.out, "Bio:      %s\n", p.Fields.Bio)
	updated := time.UnixMilli(p.UpdatedAt).Local().Format(time.DateTime)
	if p.PendingSync {
		fmt.Fprintf(a.out, "Updated:  %s (not synced)\n", updated)
	} else {
		fmt.Fprintf(a.out, "Updated:  %s\n", updated)
	}
	return nil
}

// prompt reads a field; an empty answer keeps current.
func (a *App) prompt(label, current string) (string, error) {
	v, err := promptLine(a.reader, a.out, fmt.Sprintf("%s [%s]", label, current))
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

// Edit prompts for each profile field and saves the result locally. The
// edit is pushed right away when possible.
func (a *App) Edit(ctx context.Context) error {
	s, err := a.currentSession()
	if err != nil {
		return a.fail(err)
	}

	var fields models.ProfileFields
	switch p, err := a.profiles.Get(ctx, s.UserID); {
	case err == nil:
		fields = p.Fields
	case errors.Is(err, common.ErrorNotFound):
	default:
		return a.fail(err)
	}

	if fields.FullName, err = a.prompt("Full name", fields.FullName); err != nil {
		return err
	}
	if fields.Phone, err = a.prompt("Phone", fields.Phone); err != nil {
		return err
	}
	if fields.Location, err = a.prompt("Location", fields.Location); err != nil {
		return err
	}
	if fields.Bio, err = promptParagraph(a.reader, a.out, "Bio", fields.Bio); err != nil {
		return err
	}

	if _, err := a.profiles.Save(ctx, s.UserID, fields); err != nil {
		return a.fail(err)
	}

	if !a.conn.Online() {
		fmt.Fprintln(a.out, "Saved locally; it will sync when the server is reachable")
		return nil
	}
	if err := a.coord.Sync(ctx); err != nil {
		fmt.Fprintln(a.out, "Saved locally; sync postponed:", session.Describe(err))
		return nil
	}
	// a sync already in flight may have read the pending set before this save
	if p, err := a.profiles.Get(ctx, s.UserID); err != nil || p.PendingSync {
		fmt.Fprintln(a.out, "Saved locally; sync in progress")
		return nil
	}
	fmt.Fprintln(a.out, "Saved and synced")
	return nil
}

// Enroll captures the user's face and stores it for facelogin.
func (a *App) Enroll(ctx context.Context) error {
	s, err := a.currentSession()
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "Look at the camera and move your head slightly...")
	if _, err := a.bio.Enroll(ctx, s.UserID, s.Email); err != nil {
		return a.fail(err)
	}
	if a.conn.Online() {
		fmt.Fprintln(a.out, "Face enrolled")
	} else {
		fmt.Fprintln(a.out, "Face enrolled on this device; run enroll again online to use it elsewhere")
	}
	return nil
}

// Sync pushes pending edits now.
func (a *App) Sync(ctx context.Context) error {
	if err := a.coord.Sync(ctx); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "Synced")
	return nil
}

// Status prints connectivity, session and sync state.
func (a *App) Status(ctx context.Context) error {
	snap := a.coord.Snapshot()
	st := a.status.Status()

	conn := "offline"
	if a.conn.Online() {
		conn = "online"
	}
	fmt.Fprintf(a.out, "Server:       %s\n", conn)
	fmt.Fprintf(a.out, "Session:      %s\n", snap.State)
	if snap.Session != nil {
		fmt.Fprintf(a.out, "Account:      %s (%s)\n", snap.Session.Email, snap.Session.Method)
	}
	if snap.ReauthPending {
		fmt.Fprintln(a.out, "Reauth:       required, run 'reauth'")
	}
	fmt.Fprintf(a.out, "Pending:      %d\n", st.PendingCount)
	if st.LastSyncTime != nil {
		fmt.Fprintf(a.out, "Last sync:    %s\n", st.LastSyncTime.Local().Format(time.DateTime))
	} else {
		fmt.Fprintln(a.out, "Last sync:    never")
	}
	if st.IsSyncing {
		fmt.Fprintln(a.out, "Sync:         running")
	}
	if st.Err != nil {
		fmt.Fprintf(a.out, "Last error:   %s\n", session.Describe(st.Err))
	}
	return nil
}
