// Package session owns the signed-in session and sequences re-authentication
// and sync around connectivity changes.
//
// Rules:
//   - an offline session with pending edits must be re-authenticated before
//     any sync runs; silent re-authentication is tried first and its failure
//     is not reported to the user;
//   - an online session, or an offline one with nothing pending, syncs as
//     soon as the remote store becomes reachable;
//   - a sync failing with client.ErrUnauthorized puts the session back into
//     the reauth-pending state;
//   - logout always clears local state, whatever the remote says.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/profilekeeper/internal/client/client"
	"github.com/dmitrijs2005/profilekeeper/internal/client/identity"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/pubsub"
)

// Auth is the subset of *services.AuthService the coordinator uses.
type Auth interface {
	OnlineLogin(ctx context.Context, email, password string) (*models.Session, error)
	VerifyOffline(ctx context.Context, email, password string) (*models.CachedCredential, error)
	OfflineSession(c *models.CachedCredential, method models.AuthMethod) *models.Session
	SilentReauth(ctx context.Context, userID string) (*models.Session, error)
	Reauthenticate(ctx context.Context, email, password string) (*models.Session, error)
	Credential(ctx context.Context, userID string) (*models.CachedCredential, error)
	ForgetSecret(ctx context.Context, userID string) error
	SignOut(ctx context.Context) error
}

// Syncer is the subset of *syncer.Engine the coordinator uses.
type Syncer interface {
	Run(ctx context.Context) error
	PendingCount(ctx context.Context) (int, error)
	Subscribe() *pubsub.Subscription[models.SyncStatus]
	Unsubscribe(s *pubsub.Subscription[models.SyncStatus])
}

// Connectivity is the subset of *connectivity.Monitor the coordinator uses.
type Connectivity interface {
	Online() bool
	Subscribe() *pubsub.Subscription[bool]
	Unsubscribe(s *pubsub.Subscription[bool])
}

// Prompter asks the user for their password. It may block until the user
// answers.
type Prompter interface {
	PromptPassword(ctx context.Context, email string) (string, error)
}

type Coordinator struct {
	auth     Auth
	syncer   Syncer
	conn     Connectivity
	prompter Prompter
	logger   logging.Logger

	mu            sync.Mutex
	state         State
	session       *models.Session
	reauthPending bool

	topic *pubsub.Topic[Snapshot]
	wake  chan struct{}
}

func NewCoordinator(auth Auth, s Syncer, conn Connectivity, logger logging.Logger) *Coordinator {
	return &Coordinator{
		auth:   auth,
		syncer: s,
		conn:   conn,
		logger: logging.OrDiscard(logger).With("module", "session"),
		topic:  pubsub.NewTopic(Snapshot{State: StateLoggedOut}),
		wake:   make(chan struct{}, 1),
	}
}

// SetPrompter enables the interactive reauth path. Without a prompter a
// failed silent reauth leaves the session reauth-pending until
// Reauthenticate is called.
func (c *Coordinator) SetPrompter(p Prompter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompter = p
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	snap := Snapshot{State: c.state, ReauthPending: c.reauthPending}
	if c.session != nil {
		s := *c.session
		snap.Session = &s
	}
	return snap
}

func (c *Coordinator) Subscribe() *pubsub.Subscription[Snapshot] {
	return c.topic.Subscribe()
}

func (c *Coordinator) Unsubscribe(s *pubsub.Subscription[Snapshot]) {
	c.topic.Unsubscribe(s)
}

// update applies fn under the lock and broadcasts the result.
func (c *Coordinator) update(fn func()) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
	snap := c.snapshotLocked()
	c.topic.Publish(snap)
	return snap
}

func (c *Coordinator) enter(s *models.Session) {
	state := StateOnline
	if s.Offline {
		state = StateOffline
	}
	c.update(func() {
		c.state = state
		c.session = s
		c.reauthPending = false
	})
}

// Login signs in with a password. When the remote store is reachable the
// password is checked remotely; if that fails for transport reasons, or the
// store is known to be offline, the cached verifier is used instead.
func (c *Coordinator) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if c.conn.Online() {
		s, err := c.auth.OnlineLogin(ctx, email, password)
		if err == nil {
			c.enter(s)
			c.logger.Info(ctx, "signed in online", "user_id", s.UserID)
			c.poke()
			return s, nil
		}
		if !errors.Is(err, client.ErrUnavailable) {
			return nil, err
		}
		c.logger.Warn(ctx, "remote sign-in unavailable; trying offline", "error", err)
	}

	cred, err := c.auth.VerifyOffline(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s := c.auth.OfflineSession(cred, models.AuthPassword)
	c.enter(s)
	c.logger.Info(ctx, "signed in offline", "user_id", s.UserID)
	return s, nil
}

// Start enters an already established online session, e.g. right after
// registration.
func (c *Coordinator) Start(ctx context.Context, s *models.Session) {
	c.enter(s)
	c.logger.Info(ctx, "session started", "user_id", s.UserID, "offline", s.Offline)
	if !s.Offline {
		c.poke()
	}
}

// LoginWithFace starts a session for a resolved face match. The session is
// online only if a silent credential sign-in succeeds; otherwise it is
// offline and needs a cached credential or an email carried by the match.
func (c *Coordinator) LoginWithFace(ctx context.Context, m identity.Match) (*models.Session, error) {
	if c.conn.Online() {
		s, err := c.auth.SilentReauth(ctx, m.UserID)
		if err == nil {
			s.Method = models.AuthFace
			c.enter(s)
			c.logger.Info(ctx, "face sign-in online", "user_id", s.UserID)
			c.poke()
			return s, nil
		}
		c.logger.Debug(ctx, "silent sign-in after face match failed", "user_id", m.UserID, "error", err)
	}

	var s *models.Session
	cred, err := c.auth.Credential(ctx, m.UserID)
	switch {
	case err == nil:
		s = c.auth.OfflineSession(cred, models.AuthFace)
	case errors.Is(err, common.ErrorNotFound) && m.Email != "":
		s = c.auth.OfflineSession(&models.CachedCredential{UserID: m.UserID, Email: m.Email}, models.AuthFace)
	case errors.Is(err, common.ErrorNotFound):
		return nil, client.ErrLocalDataNotAvailable
	default:
		return nil, err
	}
	c.enter(s)
	c.logger.Info(ctx, "face sign-in offline", "user_id", s.UserID)
	if c.conn.Online() {
		c.poke()
	}
	return s, nil
}

// Logout ends the session. Remote sign-out is best effort.
func (c *Coordinator) Logout(ctx context.Context) error {
	snap := c.Snapshot()
	if snap.State == StateLoggedOut {
		return ErrNotLoggedIn
	}

	if snap.State == StateOnline {
		if err := c.auth.SignOut(ctx); err != nil {
			c.logger.Warn(ctx, "remote sign-out failed", "error", err)
		}
	}
	if err := c.auth.ForgetSecret(ctx, snap.Session.UserID); err != nil {
		c.logger.Warn(ctx, "dropping sealed secret failed", "error", err)
	}

	c.update(func() {
		c.state = StateLoggedOut
		c.session = nil
		c.reauthPending = false
	})
	c.logger.Info(ctx, "logged out", "user_id", snap.Session.UserID)
	return nil
}

// Reauthenticate validates password remotely for the current session,
// makes the session online and runs a sync.
func (c *Coordinator) Reauthenticate(ctx context.Context, password string) error {
	snap := c.Snapshot()
	if snap.State == StateLoggedOut {
		return ErrNotLoggedIn
	}

	s, err := c.auth.Reauthenticate(ctx, snap.Session.Email, password)
	if err != nil {
		return err
	}
	if s.UserID != snap.Session.UserID {
		return ErrAccountChanged
	}
	s.Method = snap.Session.Method
	c.enter(s)
	c.logger.Info(ctx, "reauthenticated", "user_id", s.UserID)
	return c.Sync(ctx)
}

// Sync runs the sync engine unless reauthentication is outstanding. An
// offline session with pending edits is reauthenticated first, exactly as on
// reconnect.
func (c *Coordinator) Sync(ctx context.Context) error {
	snap := c.Snapshot()
	switch {
	case snap.State == StateLoggedOut:
		return ErrNotLoggedIn
	case snap.ReauthPending:
		return ErrReauthRequired
	case !c.conn.Online():
		return client.ErrUnavailable
	}

	if snap.State == StateOffline {
		n, err := c.syncer.PendingCount(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return c.reauthThenSync(ctx, snap)
		}
	}

	return c.run(ctx)
}

func (c *Coordinator) run(ctx context.Context) error {
	err := c.syncer.Run(ctx)
	if errors.Is(err, client.ErrUnauthorized) {
		c.markReauthPending(ctx)
		return errors.Join(ErrReauthRequired, err)
	}
	return err
}

func (c *Coordinator) markReauthPending(ctx context.Context) {
	snap := c.Snapshot()
	if snap.State == StateLoggedOut || snap.ReauthPending {
		return
	}
	c.update(func() { c.reauthPending = true })
	c.logger.Warn(ctx, "reauthentication required")
}

// HandleOnline runs the reauth-then-sync sequence for the current session.
// It is what Run does on every offline to online transition.
func (c *Coordinator) HandleOnline(ctx context.Context) error {
	snap := c.Snapshot()
	switch snap.State {
	case StateLoggedOut:
		return nil
	case StateOnline:
		return c.Sync(ctx)
	}

	n, err := c.syncer.PendingCount(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return c.Sync(ctx)
	}
	return c.reauthThenSync(ctx, snap)
}

// reauthThenSync tries the sealed secret, then the prompter. Only a failure
// of the prompt path is reported.
func (c *Coordinator) reauthThenSync(ctx context.Context, snap Snapshot) error {
	s, err := c.auth.SilentReauth(ctx, snap.Session.UserID)
	if err == nil && s.UserID == snap.Session.UserID {
		s.Method = snap.Session.Method
		c.enter(s)
		c.logger.Info(ctx, "silently reauthenticated", "user_id", s.UserID)
		return c.run(ctx)
	}
	c.logger.Debug(ctx, "silent reauth unavailable", "error", err)

	c.update(func() { c.reauthPending = true })

	c.mu.Lock()
	p := c.prompter
	c.mu.Unlock()
	if p == nil {
		return ErrReauthRequired
	}

	password, err := p.PromptPassword(ctx, snap.Session.Email)
	if err != nil {
		return errors.Join(ErrReauthRequired, err)
	}
	return c.Reauthenticate(ctx, password)
}

// poke asks Run to re-evaluate; it never blocks.
func (c *Coordinator) poke() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Run reacts to connectivity changes and sync results until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	connSub := c.conn.Subscribe()
	defer c.conn.Unsubscribe(connSub)
	statusSub := c.syncer.Subscribe()
	defer c.syncer.Unsubscribe(statusSub)

	online := <-connSub.C

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case v, ok := <-connSub.C:
			if !ok {
				return nil
			}
			wasOnline := online
			online = v
			if v && !wasOnline {
				c.logger.Info(ctx, "connectivity restored")
				c.report(ctx, c.HandleOnline(ctx))
			}

		case st, ok := <-statusSub.C:
			if !ok {
				return nil
			}
			if st.Err != nil && errors.Is(st.Err, client.ErrUnauthorized) {
				c.markReauthPending(ctx)
			}

		case <-c.wake:
			if c.conn.Online() {
				c.report(ctx, c.HandleOnline(ctx))
			}
		}
	}
}

func (c *Coordinator) report(ctx context.Context, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrReauthRequired):
		c.logger.Info(ctx, "sync waits for reauthentication")
	default:
		c.logger.Warn(ctx, "background sync failed", "error", err)
	}
}
