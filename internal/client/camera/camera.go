// Package camera owns the single capture device used for face login and
// enrollment.
//
// Only one Stream is open at a time. Acquire releases whatever stream is
// active, waits for the device to settle and only then opens it again, so a
// second capture never races the teardown of the first.
package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/clock"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
)

var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrBusy             = errors.New("camera is in use")
	ErrInsecureContext  = errors.New("camera source is not trusted")
	ErrUnavailable      = errors.New("no camera available")
	ErrCaptureTimeout   = errors.New("frame capture timed out")
	ErrReleased         = errors.New("camera stream released")
)

// Device is an opened capture device.
type Device interface {
	ReadFrame(ctx context.Context) (image.Image, error)
	Close() error
}

// Opener opens the capture device. Implementations should return one of the
// package errors to classify failures.
type Opener interface {
	Open(ctx context.Context) (Device, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context) (Device, error)

func (f OpenerFunc) Open(ctx context.Context) (Device, error) { return f(ctx) }

type Options struct {
	SettleDelay    time.Duration
	CaptureTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		SettleDelay:    300 * time.Millisecond,
		CaptureTimeout: 3 * time.Second,
	}
}

// Manager hands out the camera to one holder at a time.
type Manager struct {
	opener Opener
	clock  clock.Clock
	opts   Options
	logger logging.Logger

	mu           sync.Mutex
	active       *Stream
	lastReleased time.Time
}

func NewManager(opener Opener, clk clock.Clock, opts Options, logger logging.Logger) *Manager {
	if clk == nil {
		clk = clock.Real()
	}
	return &Manager{
		opener: opener,
		clock:  clk,
		opts:   opts,
		logger: logging.OrDiscard(logger).With("module", "camera"),
	}
}

// Acquire returns a fresh stream, releasing the current one first.
func (m *Manager) Acquire(ctx context.Context) (*Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		m.logger.Debug(ctx, "releasing active stream before reacquire")
		m.releaseLocked(ctx, m.active)
	}

	if !m.lastReleased.IsZero() {
		wait := m.opts.SettleDelay - m.clock.Now().Sub(m.lastReleased)
		if err := clock.Sleep(ctx, m.clock, wait); err != nil {
			return nil, err
		}
	}

	dev, err := m.opener.Open(ctx)
	if err != nil {
		return nil, classify(err)
	}

	s := &Stream{manager: m, device: dev, timeout: m.opts.CaptureTimeout}
	m.active = s
	m.logger.Info(ctx, "camera acquired")
	return s, nil
}

// Active reports whether a stream is currently held.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != nil
}

// Release stops s. Releasing a stream that is no longer active is a no-op.
func (m *Manager) Release(ctx context.Context, s *Stream) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == s {
		m.releaseLocked(ctx, s)
	}
}

func (m *Manager) releaseLocked(ctx context.Context, s *Stream) {
	s.detach()
	if err := s.device.Close(); err != nil {
		m.logger.Warn(ctx, "camera close failed", "error", err)
	}
	m.active = nil
	m.lastReleased = m.clock.Now()
}

func classify(err error) error {
	for _, known := range []error{ErrPermissionDenied, ErrBusy, ErrInsecureContext, ErrUnavailable, context.Canceled, context.DeadlineExceeded} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Stream is a held camera.
type Stream struct {
	manager *Manager
	device  Device
	timeout time.Duration

	mu       sync.Mutex
	released bool
}

func (s *Stream) detach() {
	s.mu.Lock()
	s.released = true
	s.mu.Unlock()
}

// Frame captures one frame, bounded by the capture timeout.
func (s *Stream) Frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	released := s.released
	s.mu.Unlock()
	if released {
		return nil, ErrReleased
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	type result struct {
		img image.Image
		err error
	}
	ch := make(chan result, 1)
	go func() {
		img, err := s.device.ReadFrame(ctx)
		ch <- result{img, err}
	}()

	select {
	case r := <-ch:
		if errors.Is(r.err, context.DeadlineExceeded) {
			return nil, ErrCaptureTimeout
		}
		return r.img, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrCaptureTimeout
		}
		return nil, ctx.Err()
	}
}

// Close releases the stream back to the manager.
func (s *Stream) Close() error {
	s.manager.Release(context.Background(), s)
	return nil
}

// Describe returns a short user-facing message for a camera error.
func Describe(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "camera access was denied; grant permission and try again"
	case errors.Is(err, ErrBusy):
		return "the camera is being used by another application"
	case errors.Is(err, ErrInsecureContext):
		return "the camera source is not trusted; check its permissions"
	case errors.Is(err, ErrUnavailable):
		return "no camera was found"
	case errors.Is(err, ErrCaptureTimeout):
		return "the camera did not deliver a frame in time"
	default:
		return "camera error"
	}
}
