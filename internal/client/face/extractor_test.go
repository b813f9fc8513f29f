package face_test

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/profilekeeper/internal/client/face"
	"github.com/dmitrijs2005/profilekeeper/internal/client/face/facetest"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
)

func TestExtractor_LoadsModelOnce(t *testing.T) {
	var loads atomic.Int32
	loader := func(ctx context.Context) (face.Model, error) {
		loads.Add(1)
		return facetest.Model{}, nil
	}
	ex := face.NewExtractor(loader, logging.NewDiscard())
	frame := facetest.NewFrame(facetest.Detection(facetest.Vector(1), 50, 50, 40, 16))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := ex.Detect(context.Background(), frame)
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
}

func TestExtractor_LoadFailureIsMemoized(t *testing.T) {
	var loads atomic.Int32
	loader := func(ctx context.Context) (face.Model, error) {
		loads.Add(1)
		return nil, errors.New("weights missing")
	}
	ex := face.NewExtractor(loader, nil)

	for i := 0; i < 3; i++ {
		_, err := ex.Extract(context.Background(), facetest.NewFrame())
		require.ErrorIs(t, err, face.ErrModelUnavailable)
	}
	assert.Equal(t, int32(1), loads.Load())
}

func TestExtractor_LoadSurvivesCallerCancel(t *testing.T) {
	loader := func(ctx context.Context) (face.Model, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return facetest.Model{}, nil
	}
	ex := face.NewExtractor(loader, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = ex.Detect(ctx, facetest.NewFrame())

	ok, err := ex.Detect(context.Background(), facetest.NewFrame(facetest.Detection(facetest.Vector(2), 10, 10, 8, 3)))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExtractor_NoFace(t *testing.T) {
	ex := face.NewExtractor(facetest.Loader, nil)

	_, err := ex.Extract(context.Background(), facetest.NewFrame())
	assert.ErrorIs(t, err, face.ErrNoFace)

	_, err = ex.Extract(context.Background(), image.NewGray(image.Rect(0, 0, 2, 2)))
	assert.ErrorIs(t, err, face.ErrNoFace)

	_, err = ex.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, face.ErrNoFace)

	ok, err := ex.Detect(context.Background(), facetest.NewFrame())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExtractor_PicksMostConfident(t *testing.T) {
	weak := facetest.Detection(facetest.Vector(1), 20, 20, 30, 10)
	weak.Score = 0.6
	strong := facetest.Detection(facetest.Vector(2), 80, 80, 10, 4)
	strong.Score = 0.95

	ex := face.NewExtractor(facetest.Loader, nil)
	det, err := ex.Extract(context.Background(), facetest.NewFrame(weak, strong))
	require.NoError(t, err)
	assert.Equal(t, strong.Box, det.Box)
}

func TestExtractor_RejectsBadModelOutput(t *testing.T) {
	bad := facetest.Detection(face.Descriptor{1, 2, 3}, 20, 20, 30, 10)

	ex := face.NewExtractor(facetest.Loader, nil)
	_, err := ex.Extract(context.Background(), facetest.NewFrame(bad))
	assert.ErrorIs(t, err, face.ErrDescriptorSize)
}
