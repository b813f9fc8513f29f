package identity

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/client/face"
)

var ErrInsufficientCaptures = errors.New("not enough successful face captures")

type FrameSource interface {
	Frame(ctx context.Context) (image.Image, error)
}

type Extractor interface {
	Extract(ctx context.Context, frame image.Image) (*face.Detection, error)
}

type CaptureOptions struct {
	Attempts int
	Required int
	Timeout  time.Duration
}

func DefaultCaptureOptions() CaptureOptions {
	return CaptureOptions{Attempts: 5, Required: 3, Timeout: 3 * time.Second}
}

// CaptureMean averages several independent extractions to reduce capture
// noise before matching. It stops as soon as Required captures succeed.
func CaptureMean(ctx context.Context, ex Extractor, src FrameSource, opts CaptureOptions) (face.Descriptor, error) {
	var got []face.Descriptor
	var lastErr error

	for attempt := 0; attempt < opts.Attempts && len(got) < opts.Required; attempt++ {
		d, err := captureOne(ctx, ex, src, opts.Timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		got = append(got, d)
	}

	if len(got) < opts.Required {
		if lastErr != nil {
			return nil, fmt.Errorf("%w (%d of %d): %w", ErrInsufficientCaptures, len(got), opts.Required, lastErr)
		}
		return nil, fmt.Errorf("%w (%d of %d)", ErrInsufficientCaptures, len(got), opts.Required)
	}
	return face.Mean(got...)
}

func captureOne(ctx context.Context, ex Extractor, src FrameSource, timeout time.Duration) (face.Descriptor, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	frame, err := src.Frame(ctx)
	if err != nil {
		return nil, err
	}
	det, err := ex.Extract(ctx, frame)
	if err != nil {
		return nil, err
	}
	return det.Descriptor, nil
}
