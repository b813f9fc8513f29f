// Package face holds the descriptor math and the extraction pipeline that
// turns a camera frame into a 128-dimensional facial descriptor.
//
// The pretrained model itself is opaque: it is reached through the Model
// interface and loaded lazily by Extractor.
package face

import (
	"errors"
	"fmt"
	"math"
)

// DescriptorSize is the fixed dimension of every descriptor.
const DescriptorSize = 128

// ErrDescriptorSize is returned for descriptors that are not DescriptorSize long.
var ErrDescriptorSize = errors.New("descriptor has wrong dimension")

// Descriptor is a fixed-length embedding of a face.
type Descriptor []float32

// Validate checks the descriptor dimension and rejects NaN/Inf components.
func (d Descriptor) Validate() error {
	if len(d) != DescriptorSize {
		return fmt.Errorf("%w: got %d, want %d", ErrDescriptorSize, len(d), DescriptorSize)
	}
	for i, v := range d {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("descriptor component %d is not finite", i)
		}
	}
	return nil
}

// Clone returns an independent copy of d.
func (d Descriptor) Clone() Descriptor {
	if d == nil {
		return nil
	}
	out := make(Descriptor, len(d))
	copy(out, d)
	return out
}

// Euclidean returns the L2 distance between a and b. Descriptors of
// different length are infinitely far apart.
func Euclidean(a, b Descriptor) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// Mean returns the component-wise average of ds.
func Mean(ds ...Descriptor) (Descriptor, error) {
	if len(ds) == 0 {
		return nil, errors.New("mean of zero descriptors")
	}
	n := len(ds[0])
	acc := make([]float64, n)
	for _, d := range ds {
		if len(d) != n {
			return nil, fmt.Errorf("%w: mixed lengths %d and %d", ErrDescriptorSize, n, len(d))
		}
		for i, v := range d {
			acc[i] += float64(v)
		}
	}
	out := make(Descriptor, n)
	for i := range acc {
		out[i] = float32(acc[i] / float64(len(ds)))
	}
	return out, nil
}

// Point is a pixel coordinate.
type Point struct {
	X, Y float64
}

// Box is a face bounding box in pixel coordinates.
type Box struct {
	X1, Y1, X2, Y2 float64
}

func (b Box) Width() float64  { return math.Max(0, b.X2-b.X1) }
func (b Box) Height() float64 { return math.Max(0, b.Y2-b.Y1) }
func (b Box) Area() float64   { return b.Width() * b.Height() }

// Landmark indexes into Landmarks.
const (
	LeftEye = iota
	RightEye
	Nose
	MouthLeft
	MouthRight
)

// Landmarks are the five facial keypoints reported by the detector.
type Landmarks [5]Point

// InterEyeDistance is the pixel distance between the two eye centres.
func (l Landmarks) InterEyeDistance() float64 {
	return math.Hypot(l[RightEye].X-l[LeftEye].X, l[RightEye].Y-l[LeftEye].Y)
}

// Detection is one face found in a frame.
type Detection struct {
	Descriptor Descriptor
	Box        Box
	Landmarks  Landmarks
	Score      float64
}
