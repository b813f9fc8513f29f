package services

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/profilekeeper/internal/client/camera"
	"github.com/dmitrijs2005/profilekeeper/internal/client/client/clienttest"
	"github.com/dmitrijs2005/profilekeeper/internal/client/face"
	"github.com/dmitrijs2005/profilekeeper/internal/client/face/facetest"
	"github.com/dmitrijs2005/profilekeeper/internal/client/identity"
	"github.com/dmitrijs2005/profilekeeper/internal/client/liveness"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/descriptors"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/repotest"
	"github.com/dmitrijs2005/profilekeeper/internal/clock"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
)

// loopDevice replays frames cyclically.
type loopDevice struct {
	mu     sync.Mutex
	frames []image.Image
	next   int
}

func (d *loopDevice) ReadFrame(context.Context) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f := d.frames[d.next%len(d.frames)]
	d.next++
	return f, nil
}

func (d *loopDevice) Close() error { return nil }

func liveFramesOf(base face.Descriptor) []image.Image {
	sizes := []float64{100, 104, 98, 102, 100, 106}
	eyes := []float64{30, 30.6, 29.8, 30.3, 30.0, 30.9}
	out := make([]image.Image, len(sizes))
	for i := range sizes {
		out[i] = facetest.NewFrame(facetest.Detection(facetest.Offset(base, 0.02*float64(i)), 200, 200, sizes[i], eyes[i]))
	}
	return out
}

func photoFrames(base face.Descriptor) []image.Image {
	return []image.Image{facetest.NewFrame(facetest.Detection(base, 200, 200, 100, 30))}
}

type online bool

func (o online) Online() bool { return bool(o) }

type biometricFixture struct {
	svc    *BiometricService
	remote *clienttest.Remote
	descs  descriptors.Repository
}

func newBiometric(t *testing.T, frames []image.Image, isOnline bool) biometricFixture {
	t.Helper()
	opener := camera.OpenerFunc(func(context.Context) (camera.Device, error) {
		return &loopDevice{frames: frames}, nil
	})
	cam := camera.NewManager(opener, clock.Real(), camera.Options{CaptureTimeout: time.Second}, nil)
	ex := face.NewExtractor(facetest.Loader, nil)
	descs := descriptors.NewSQLiteRepository(repotest.NewDB(t))
	remote := clienttest.NewRemote()

	opts := DefaultBiometricOptions()
	opts.Liveness.Duration = 0

	svc := NewBiometricService(cam, ex, descs, remote, online(isOnline), opts, clock.Fake(epoch), nil)
	return biometricFixture{svc: svc, remote: remote, descs: descs}
}

func TestEnroll_StoresLocallyAndPushesWhenOnline(t *testing.T) {
	f := newBiometric(t, liveFramesOf(facetest.Vector(1)), true)
	ctx := context.Background()

	d, err := f.svc.Enroll(ctx, "u1", "alice@example.com")
	require.NoError(t, err)
	assert.Len(t, d.Descriptor, face.DescriptorSize)

	local, err := f.descs.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, epoch.UnixMilli(), local.UpdatedAt)

	remote, err := f.remote.GetDescriptor(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, local.UpdatedAt, remote.UpdatedAt)
}

func TestEnroll_OfflineKeepsLocalOnly(t *testing.T) {
	f := newBiometric(t, liveFramesOf(facetest.Vector(1)), false)
	ctx := context.Background()

	_, err := f.svc.Enroll(ctx, "u1", "alice@example.com")
	require.NoError(t, err)

	_, err = f.remote.GetDescriptor(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	pushed, err := f.svc.PushDescriptor(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, pushed)

	pushed, err = f.svc.PushDescriptor(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, pushed, "remote already current")
}

func TestEnroll_PhotoRejected(t *testing.T) {
	f := newBiometric(t, photoFrames(facetest.Vector(1)), true)

	_, err := f.svc.Enroll(context.Background(), "u1", "alice@example.com")
	assert.ErrorIs(t, err, ErrLivenessFailed)
	assert.Contains(t, err.Error(), string(liveness.VerdictStatic))

	_, err = f.descs.GetByUserID(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestIdentify_NoFace(t *testing.T) {
	f := newBiometric(t, []image.Image{facetest.NewFrame()}, true)

	_, err := f.svc.Identify(context.Background())
	assert.ErrorIs(t, err, face.ErrNoFace)
}

func TestIdentify_LocalThenRemoteCacheFill(t *testing.T) {
	base := facetest.Vector(3)
	f := newBiometric(t, liveFramesOf(base), true)
	ctx := context.Background()

	f.remote.PutDescriptor(models.EnrolledDescriptor{UserID: "u3", Email: "carol@example.com", Descriptor: base, UpdatedAt: 1})

	m, err := f.svc.Identify(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u3", m.UserID)
	assert.Equal(t, identity.SourceRemote, m.Source)

	f.remote.SetDown(true)
	m, err = f.svc.Identify(ctx)
	require.NoError(t, err)
	assert.Equal(t, identity.SourceLocal, m.Source)
}

func TestIdentify_OfflineSkipsRemote(t *testing.T) {
	base := facetest.Vector(3)
	f := newBiometric(t, liveFramesOf(base), false)
	f.remote.PutDescriptor(models.EnrolledDescriptor{UserID: "u3", Descriptor: base, UpdatedAt: 1})

	_, err := f.svc.Identify(context.Background())
	assert.ErrorIs(t, err, identity.ErrNoMatch)
	assert.Zero(t, f.remote.Galleries)
}

func TestIdentify_ModelUnavailable(t *testing.T) {
	f := newBiometric(t, liveFramesOf(facetest.Vector(1)), true)
	f.svc.extractor = face.NewExtractor(func(context.Context) (face.Model, error) {
		return nil, errors.New("weights missing")
	}, nil)

	_, err := f.svc.Identify(context.Background())
	assert.ErrorIs(t, err, face.ErrModelUnavailable)
}
