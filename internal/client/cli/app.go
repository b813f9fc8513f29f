package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/profilekeeper/internal/client/camera"
	"github.com/dmitrijs2005/profilekeeper/internal/client/client"
	"github.com/dmitrijs2005/profilekeeper/internal/client/config"
	"github.com/dmitrijs2005/profilekeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/profilekeeper/internal/client/face"
	"github.com/dmitrijs2005/profilekeeper/internal/client/face/embedder"
	"github.com/dmitrijs2005/profilekeeper/internal/client/identity"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories"
	"github.com/dmitrijs2005/profilekeeper/internal/client/services"
	"github.com/dmitrijs2005/profilekeeper/internal/client/session"
	"github.com/dmitrijs2005/profilekeeper/internal/client/syncer"
	"github.com/dmitrijs2005/profilekeeper/internal/clock"
	"github.com/dmitrijs2005/profilekeeper/internal/cryptox"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
)

// coordinator is the part of *session.Coordinator the commands drive.
type coordinator interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Start(ctx context.Context, s *models.Session)
	LoginWithFace(ctx context.Context, m identity.Match) (*models.Session, error)
	Logout(ctx context.Context) error
	Reauthenticate(ctx context.Context, password string) error
	Sync(ctx context.Context) error
	Snapshot() session.Snapshot
}

type registrar interface {
	Register(ctx context.Context, email, password string) (*models.Session, error)
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*models.ProfileRecord, error)
	Save(ctx context.Context, userID string, fields models.ProfileFields) (*models.ProfileRecord, error)
	Pull(ctx context.Context, userID string) (bool, error)
}

type biometrics interface {
	Identify(ctx context.Context) (identity.Match, error)
	Enroll(ctx context.Context, userID, email string) (*models.EnrolledDescriptor, error)
	PushDescriptor(ctx context.Context, userID string) (bool, error)
}

type syncStatus interface {
	Status() models.SyncStatus
}

type onlineChecker interface {
	Online() bool
}

// App is the interactive client. Commands talk to the interfaces above; the
// concrete components are kept for the background loops started by Run.
type App struct {
	config *config.Config
	logger logging.Logger

	coord    coordinator
	auth     registrar
	profiles profileStore
	bio      biometrics
	status   syncStatus
	conn     onlineChecker

	repos       *repositories.Repositories
	remote      *client.GRPCClient
	monitor     *connectivity.Monitor
	engine      *syncer.Engine
	coordinator *session.Coordinator

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local store, connects the remote client and wires every
// client service.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	// stderr keeps log lines out of the prompt on stdout.
	logger := logging.New(os.Stderr, logging.FormatText, c.LogLevel)
	clk := clock.Real()

	repos, err := repositories.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	remote, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	var sealer *cryptox.Sealer
	if c.AllowSilentReauth {
		sealer, err = cryptox.LoadOrCreateSealer(c.DeviceKeyPath())
		if err != nil {
			_ = remote.Close()
			_ = repos.Close()
			return nil, fmt.Errorf("device key: %w", err)
		}
		logger.Warn(ctx, "silent reauthentication enabled; the password is stored sealed to the device key", "key", c.DeviceKeyPath())
	}

	monitor := connectivity.NewMonitor(false, clk, logger)
	monitor.Probe(ctx, remote)

	engine := syncer.NewEngine(repos.Profiles, repos.Metadata, remote, clk, logger)
	auth := services.NewAuthService(remote, repos.Credentials, sealer, clk, logger)
	coord := session.NewCoordinator(auth, engine, monitor, logger)
	profiles := services.NewProfileService(repos.Profiles, remote, clk, logger)

	cam := camera.NewManager(camera.DirOpener{Dir: c.FrameDir}, clk, camera.DefaultOptions(), logger)
	extractor := face.NewExtractor(embedder.Loader(c.EmbeddingURL), logger)
	opts := services.DefaultBiometricOptions()
	if c.MatchThreshold > 0 {
		opts.Threshold = c.MatchThreshold
	}
	if c.LivenessDuration > 0 {
		opts.Liveness.Duration = c.LivenessDuration
	}
	bio := services.NewBiometricService(cam, extractor, repos.Descriptors, remote, monitor, opts, clk, logger)

	return &App{
		config:      c,
		logger:      logger,
		coord:       coord,
		auth:        auth,
		profiles:    profiles,
		bio:         bio,
		status:      engine,
		conn:        monitor,
		repos:       repos,
		remote:      remote,
		monitor:     monitor,
		engine:      engine,
		coordinator: coord,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

// Run starts the connectivity watcher and the session loop, then blocks in
// the REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.engine.Refresh(ctx); err != nil {
		a.logger.Warn(ctx, "failed to load sync status", "error", err)
	}

	bgCtx, cancel := context.WithCancel(ctx)
	g, bgCtx := errgroup.WithContext(bgCtx)
	g.Go(func() error {
		return a.monitor.Watch(bgCtx, a.remote, a.config.OnlineCheckInterval)
	})
	g.Go(func() error {
		return a.coordinator.Run(bgCtx)
	})

	a.Root(ctx)

	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close releases the remote connection and the local store.
func (a *App) Close() {
	if a.remote != nil {
		_ = a.remote.Close()
	}
	if a.repos != nil {
		_ = a.repos.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.coord.Snapshot().State != session.StateLoggedOut
}

// currentSession returns the active session or session.ErrNotLoggedIn.
func (a *App) currentSession() (*models.Session, error) {
	snap := a.coord.Snapshot()
	if snap.Session == nil {
		return nil, session.ErrNotLoggedIn
	}
	return snap.Session, nil
}

func (a *App) getStatus() string {
	var parts []string
	snap := a.coord.Snapshot()
	if snap.Session != nil {
		parts = append(parts, snap.Session.Email)
	}
	if a.conn.Online() {
		parts = append(parts, "online")
	} else {
		parts = append(parts, "offline")
	}
	if snap.ReauthPending {
		parts = append(parts, "reauth needed")
	}
	if n := a.status.Status().PendingCount; n > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", n))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// fail prints the user-facing reason for err and returns it.
func (a *App) fail(err error) error {
	fmt.Fprintln(a.out, "Error:", session.Describe(err))
	return err
}
