package face

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(v float32) Descriptor {
	d := make(Descriptor, DescriptorSize)
	for i := range d {
		d[i] = v
	}
	return d
}

func TestEuclidean(t *testing.T) {
	a := filled(0)
	b := filled(0)
	b[3] = 3
	b[7] = 4

	assert.InDelta(t, 5.0, Euclidean(a, b), 1e-9)
	assert.InDelta(t, 0.0, Euclidean(a, a), 1e-9)
	assert.True(t, math.IsInf(Euclidean(a, Descriptor{1}), 1))
}

func TestMean(t *testing.T) {
	m, err := Mean(filled(1), filled(2), filled(6))
	require.NoError(t, err)
	require.Len(t, m, DescriptorSize)
	assert.InDelta(t, 3.0, float64(m[10]), 1e-6)

	_, err = Mean()
	assert.Error(t, err)

	_, err = Mean(filled(1), Descriptor{1, 2})
	assert.ErrorIs(t, err, ErrDescriptorSize)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, filled(0.1).Validate())
	assert.ErrorIs(t, Descriptor{1, 2, 3}.Validate(), ErrDescriptorSize)

	bad := filled(0)
	bad[5] = float32(math.NaN())
	assert.Error(t, bad.Validate())
}

func TestBoxAndLandmarks(t *testing.T) {
	b := Box{X1: 10, Y1: 20, X2: 30, Y2: 60}
	assert.Equal(t, 800.0, b.Area())
	assert.Equal(t, 0.0, Box{X1: 5, X2: 1, Y1: 0, Y2: 10}.Area())

	var lm Landmarks
	lm[LeftEye] = Point{X: 0, Y: 0}
	lm[RightEye] = Point{X: 6, Y: 8}
	assert.Equal(t, 10.0, lm.InterEyeDistance())
}

func TestClone(t *testing.T) {
	a := filled(1)
	b := a.Clone()
	b[0] = 9
	assert.Equal(t, float32(1), a[0])
	assert.Nil(t, Descriptor(nil).Clone())
}
