// Package liveness implements a heuristic gate that tells a live, moving
// face apart from a photo held in front of the camera.
//
// It samples a short burst of frames and looks at three signals: how much
// the face bounding box changes size, how much the inter-eye distance
// changes between consecutive frames, and how far consecutive descriptors
// drift. A live subject moves a little in all three; a print barely moves in
// any, and a very large drift means the subject changed mid-capture.
//
// This is not a presentation-attack defence. A video replay will pass.
package liveness

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/client/face"
	"github.com/dmitrijs2005/profilekeeper/internal/clock"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
)

// ErrInsufficientSamples means too few frames yielded a face to judge
// liveness at all. It is a capture-quality problem, not a liveness failure.
var ErrInsufficientSamples = errors.New("capture quality too low")

// FrameSource yields camera frames. *camera.Stream implements it.
type FrameSource interface {
	Frame(ctx context.Context) (image.Image, error)
}

// Extractor is the subset of *face.Extractor the analyzer needs.
type Extractor interface {
	Extract(ctx context.Context, frame image.Image) (*face.Detection, error)
}

type Options struct {
	// Duration is the span over which Samples frames are evenly spread.
	Duration       time.Duration
	Samples        int
	MinSamples     int
	CaptureTimeout time.Duration
	Retries        int

	SizeDeviationMin  float64
	LandmarkChangeMin float64
	DriftMin          float64
	DriftMax          float64
}

func DefaultOptions() Options {
	return Options{
		Duration:          2 * time.Second,
		Samples:           6,
		MinSamples:        4,
		CaptureTimeout:    3 * time.Second,
		Retries:           2,
		SizeDeviationMin:  0.005,
		LandmarkChangeMin: 0.002,
		DriftMin:          0.008,
		DriftMax:          0.3,
	}
}

type Verdict string

const (
	VerdictLive     Verdict = "live"
	VerdictStatic   Verdict = "photo detected"
	VerdictUnstable Verdict = "subject changed during capture"
)

// Metrics are the raw signals behind a verdict.
type Metrics struct {
	Samples        int
	SizeDeviation  float64
	LandmarkChange float64
	Drift          float64
}

type Result struct {
	Live    bool
	Verdict Verdict
	Reason  string
	Metrics Metrics
	// Detections are the samples used, in capture order.
	Detections []face.Detection
}

type Analyzer struct {
	extractor Extractor
	clock     clock.Clock
	logger    logging.Logger
}

func NewAnalyzer(ex Extractor, clk clock.Clock, logger logging.Logger) *Analyzer {
	if clk == nil {
		clk = clock.Real()
	}
	return &Analyzer{
		extractor: ex,
		clock:     clk,
		logger:    logging.OrDiscard(logger).With("module", "liveness"),
	}
}

// Check samples src and returns the verdict. A non-nil error means no
// verdict could be reached (cancellation or ErrInsufficientSamples).
func (a *Analyzer) Check(ctx context.Context, src FrameSource, opts Options) (Result, error) {
	if opts.Samples < 2 {
		opts.Samples = 2
	}
	if opts.MinSamples < 2 {
		opts.MinSamples = 2
	}

	var interval time.Duration
	if opts.Duration > 0 {
		interval = opts.Duration / time.Duration(opts.Samples-1)
	}

	samples := make([]face.Detection, 0, opts.Samples)
	for i := 0; i < opts.Samples; i++ {
		if i > 0 {
			if err := clock.Sleep(ctx, a.clock, interval); err != nil {
				return Result{}, err
			}
		}
		det, err := a.capture(ctx, src, opts)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			a.logger.Debug(ctx, "sample dropped", "index", i, "error", err)
			continue
		}
		samples = append(samples, *det)
	}

	if len(samples) < opts.MinSamples {
		return Result{}, fmt.Errorf("%w: %d of %d samples", ErrInsufficientSamples, len(samples), opts.MinSamples)
	}

	res := Evaluate(samples, opts)
	a.logger.Info(ctx, "liveness evaluated",
		"verdict", res.Verdict,
		"samples", res.Metrics.Samples,
		"size_dev", res.Metrics.SizeDeviation,
		"landmark_change", res.Metrics.LandmarkChange,
		"drift", res.Metrics.Drift,
	)
	return res, nil
}

func (a *Analyzer) capture(ctx context.Context, src FrameSource, opts Options) (*face.Detection, error) {
	var lastErr error
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		det, err := a.captureOnce(ctx, src, opts.CaptureTimeout)
		if err == nil {
			return det, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, lastErr
}

func (a *Analyzer) captureOnce(ctx context.Context, src FrameSource, timeout time.Duration) (*face.Detection, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	frame, err := src.Frame(ctx)
	if err != nil {
		return nil, err
	}
	return a.extractor.Extract(ctx, frame)
}

// Evaluate computes the signals over samples and applies the thresholds.
// samples must hold at least two detections.
func Evaluate(samples []face.Detection, opts Options) Result {
	m := Metrics{
		Samples:        len(samples),
		SizeDeviation:  sizeDeviation(samples),
		LandmarkChange: landmarkChange(samples),
		Drift:          drift(samples),
	}
	res := Result{Metrics: m, Detections: samples}

	switch {
	case m.Drift >= opts.DriftMax:
		res.Verdict = VerdictUnstable
		res.Reason = fmt.Sprintf("descriptor drift %.4f is too large", m.Drift)
	case m.SizeDeviation < opts.SizeDeviationMin:
		res.Verdict = VerdictStatic
		res.Reason = fmt.Sprintf("face size did not change (%.4f)", m.SizeDeviation)
	case m.LandmarkChange < opts.LandmarkChangeMin:
		res.Verdict = VerdictStatic
		res.Reason = fmt.Sprintf("face geometry did not change (%.4f)", m.LandmarkChange)
	case m.Drift < opts.DriftMin:
		res.Verdict = VerdictStatic
		res.Reason = fmt.Sprintf("descriptor did not drift (%.4f)", m.Drift)
	default:
		res.Live = true
		res.Verdict = VerdictLive
		res.Reason = "live subject"
	}
	return res
}

// sizeDeviation is max |area - mean| / mean over the samples.
func sizeDeviation(samples []face.Detection) float64 {
	var mean float64
	for _, s := range samples {
		mean += s.Box.Area()
	}
	mean /= float64(len(samples))
	if mean == 0 {
		return 0
	}
	var maxDev float64
	for _, s := range samples {
		maxDev = math.Max(maxDev, math.Abs(s.Box.Area()-mean)/mean)
	}
	return maxDev
}

// landmarkChange is the largest relative change of the inter-eye distance
// between consecutive samples.
func landmarkChange(samples []face.Detection) float64 {
	var maxChange float64
	for i := 1; i < len(samples); i++ {
		prev := samples[i-1].Landmarks.InterEyeDistance()
		if prev == 0 {
			continue
		}
		cur := samples[i].Landmarks.InterEyeDistance()
		maxChange = math.Max(maxChange, math.Abs(cur-prev)/prev)
	}
	return maxChange
}

// drift is the mean Euclidean distance between consecutive descriptors.
func drift(samples []face.Detection) float64 {
	if len(samples) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(samples); i++ {
		sum += face.Euclidean(samples[i-1].Descriptor, samples[i].Descriptor)
	}
	return sum / float64(len(samples)-1)
}
