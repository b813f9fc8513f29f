package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/client/camera"
	"github.com/dmitrijs2005/profilekeeper/internal/client/client"
	"github.com/dmitrijs2005/profilekeeper/internal/client/face"
	"github.com/dmitrijs2005/profilekeeper/internal/client/identity"
	"github.com/dmitrijs2005/profilekeeper/internal/client/liveness"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/descriptors"
	"github.com/dmitrijs2005/profilekeeper/internal/clock"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
)

// Connectivity is the subset of *connectivity.Monitor services read.
type Connectivity interface {
	Online() bool
}

type BiometricOptions struct {
	Liveness  liveness.Options
	Capture   identity.CaptureOptions
	Threshold float64
	// PresenceAttempts bounds how many frames are checked for a face before
	// the liveness check starts.
	PresenceAttempts int
}

func DefaultBiometricOptions() BiometricOptions {
	return BiometricOptions{
		Liveness:         liveness.DefaultOptions(),
		Capture:          identity.DefaultCaptureOptions(),
		Threshold:        identity.DefaultThreshold,
		PresenceAttempts: 10,
	}
}

// BiometricService runs the camera pipeline: presence, liveness, averaged
// capture, then either enrollment or identity resolution.
type BiometricService struct {
	camera      *camera.Manager
	extractor   *face.Extractor
	analyzer    *liveness.Analyzer
	resolver    *identity.Resolver
	descriptors descriptors.Repository
	remote      client.RemoteStore
	conn        Connectivity
	clock       clock.Clock
	opts        BiometricOptions
	logger      logging.Logger
}

func NewBiometricService(
	cam *camera.Manager,
	ex *face.Extractor,
	descs descriptors.Repository,
	remote client.RemoteStore,
	conn Connectivity,
	opts BiometricOptions,
	clk clock.Clock,
	logger logging.Logger,
) *BiometricService {
	if clk == nil {
		clk = clock.Real()
	}
	logger = logging.OrDiscard(logger)
	return &BiometricService{
		camera:      cam,
		extractor:   ex,
		analyzer:    liveness.NewAnalyzer(ex, clk, logger),
		resolver:    identity.NewResolver(descs, opts.Threshold, logger),
		descriptors: descs,
		remote:      remote,
		conn:        conn,
		clock:       clk,
		opts:        opts,
		logger:      logger.With("module", "biometric"),
	}
}

// capture acquires the camera and returns a liveness-checked mean
// descriptor. The camera is released before returning.
func (s *BiometricService) capture(ctx context.Context) (face.Descriptor, error) {
	stream, err := s.camera.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.camera.Release(ctx, stream)

	if err := s.awaitFace(ctx, stream); err != nil {
		return nil, err
	}

	res, err := s.analyzer.Check(ctx, stream, s.opts.Liveness)
	if err != nil {
		return nil, err
	}
	if !res.Live {
		return nil, fmt.Errorf("%w: %s (%s)", ErrLivenessFailed, res.Verdict, res.Reason)
	}

	return identity.CaptureMean(ctx, s.extractor, stream, s.opts.Capture)
}

func (s *BiometricService) awaitFace(ctx context.Context, stream *camera.Stream) error {
	attempts := max(s.opts.PresenceAttempts, 1)
	var lastErr error = face.ErrNoFace

	for i := 0; i < attempts; i++ {
		frame, err := stream.Frame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}
		ok, err := s.extractor.Detect(ctx, frame)
		if err != nil {
			// A model that failed to load will not recover on retry.
			return err
		}
		if ok {
			return nil
		}
	}
	return lastErr
}

// Identify captures a face and resolves it against the local gallery, then
// the remote gallery when online.
func (s *BiometricService) Identify(ctx context.Context) (identity.Match, error) {
	desc, err := s.capture(ctx)
	if err != nil {
		return identity.Match{}, err
	}

	local, err := s.descriptors.GetAll(ctx)
	if err != nil {
		return identity.Match{}, fmt.Errorf("load local gallery: %w", err)
	}

	var remote identity.GalleryFunc
	if s.conn.Online() {
		remote = s.remote.ListDescriptors
	}
	return s.resolver.Resolve(ctx, desc, local, remote)
}

// Enroll captures a face and stores it as userID's descriptor, replacing
// any previous one. When online the descriptor is also pushed remotely; a
// failed push is logged and retried by PushDescriptor later.
func (s *BiometricService) Enroll(ctx context.Context, userID, email string) (*models.EnrolledDescriptor, error) {
	desc, err := s.capture(ctx)
	if err != nil {
		return nil, err
	}

	d := &models.EnrolledDescriptor{
		UserID:     userID,
		Email:      email,
		Descriptor: desc,
		UpdatedAt:  s.clock.Now().UnixMilli(),
	}
	if err := s.descriptors.Upsert(ctx, d); err != nil {
		return nil, fmt.Errorf("store descriptor: %w", err)
	}
	s.logger.Info(ctx, "descriptor enrolled", "user_id", userID)

	if s.conn.Online() {
		if _, err := s.PushDescriptor(ctx, userID); err != nil {
			s.logger.Warn(ctx, "descriptor kept local only", "user_id", userID, "error", err)
		}
	}
	return d, nil
}

// PushDescriptor uploads userID's local descriptor when the remote copy is
// missing or older. It reports whether an upload happened.
func (s *BiometricService) PushDescriptor(ctx context.Context, userID string) (bool, error) {
	local, err := s.descriptors.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}

	remote, err := s.remote.GetDescriptor(ctx, userID)
	switch {
	case err == nil:
		if remote.UpdatedAt >= local.UpdatedAt {
			return false, nil
		}
	case errors.Is(err, common.ErrorNotFound):
	default:
		return false, err
	}

	if err := s.remote.UpsertDescriptor(ctx, local); err != nil {
		return false, err
	}
	s.logger.Info(ctx, "descriptor pushed", "user_id", userID)
	return true, nil
}
