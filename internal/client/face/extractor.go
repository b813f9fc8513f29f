package face

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
)

var (
	// ErrNoFace means the frame contained no detectable face. Callers may retry.
	ErrNoFace = errors.New("no face detected")
	// ErrModelUnavailable means the recognition model could not be loaded.
	ErrModelUnavailable = errors.New("biometric subsystem unavailable")
)

// Model is a loaded face detection + recognition network.
type Model interface {
	Detect(ctx context.Context, frame image.Image) ([]Detection, error)
}

// Loader produces a Model. It is called at most once per Extractor.
type Loader func(ctx context.Context) (Model, error)

// Extractor finds faces in frames and computes their descriptors.
// The model is loaded on first use; concurrent first callers share the load
// and a failed load is remembered.
type Extractor struct {
	loader Loader
	logger logging.Logger

	once  sync.Once
	model Model
	err   error
}

func NewExtractor(loader Loader, logger logging.Logger) *Extractor {
	return &Extractor{
		loader: loader,
		logger: logging.OrDiscard(logger).With("module", "face"),
	}
}

func (e *Extractor) ensureModel(ctx context.Context) (Model, error) {
	e.once.Do(func() {
		// The load outlives the caller that happened to trigger it.
		m, err := e.loader(context.WithoutCancel(ctx))
		if err == nil && m == nil {
			err = errors.New("loader returned nil model")
		}
		if err != nil {
			e.logger.Error(ctx, "face model load failed", "error", err)
			e.err = fmt.Errorf("%w: %v", ErrModelUnavailable, err)
			return
		}
		e.logger.Info(ctx, "face model loaded")
		e.model = m
	})
	return e.model, e.err
}

// Detect reports whether frame contains at least one face.
func (e *Extractor) Detect(ctx context.Context, frame image.Image) (bool, error) {
	dets, err := e.detect(ctx, frame)
	if err != nil {
		return false, err
	}
	return len(dets) > 0, nil
}

// Extract returns the most confident detection in frame, or ErrNoFace.
func (e *Extractor) Extract(ctx context.Context, frame image.Image) (*Detection, error) {
	dets, err := e.detect(ctx, frame)
	if err != nil {
		return nil, err
	}
	if len(dets) == 0 {
		return nil, ErrNoFace
	}

	best := dets[0]
	for _, d := range dets[1:] {
		if d.Score > best.Score || (d.Score == best.Score && d.Box.Area() > best.Box.Area()) {
			best = d
		}
	}
	if err := best.Descriptor.Validate(); err != nil {
		return nil, fmt.Errorf("model output: %w", err)
	}
	return &best, nil
}

func (e *Extractor) detect(ctx context.Context, frame image.Image) ([]Detection, error) {
	if frame == nil {
		return nil, ErrNoFace
	}
	m, err := e.ensureModel(ctx)
	if err != nil {
		return nil, err
	}
	dets, err := m.Detect(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("face detection: %w", err)
	}
	return dets, nil
}
