// Package facetest provides deterministic stand-ins for the face model, for
// use in tests of packages built on top of face.Extractor.
package facetest

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/dmitrijs2005/profilekeeper/internal/client/face"
)

// Frame is an image that carries the detections Model should report for it.
type Frame struct {
	image.Image
	Detections []face.Detection
}

// NewFrame returns a 1x1 frame with the given detections.
func NewFrame(dets ...face.Detection) *Frame {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	img.SetGray(0, 0, color.Gray{Y: 128})
	return &Frame{Image: img, Detections: dets}
}

// Model returns the detections embedded in *Frame values and nothing for any
// other image.
type Model struct{}

func (Model) Detect(_ context.Context, img image.Image) ([]face.Detection, error) {
	f, ok := img.(*Frame)
	if !ok {
		return nil, nil
	}
	out := make([]face.Detection, len(f.Detections))
	copy(out, f.Detections)
	return out, nil
}

// Loader loads Model.
func Loader(context.Context) (face.Model, error) {
	return Model{}, nil
}

// Vector returns a unit-ish descriptor derived from seed. Different seeds
// give descriptors far apart; nearby seeds are not guaranteed to be close.
func Vector(seed float64) face.Descriptor {
	d := make(face.Descriptor, face.DescriptorSize)
	for i := range d {
		d[i] = float32(math.Sin(seed*float64(i+1)) / math.Sqrt(face.DescriptorSize/2))
	}
	return d
}

// Offset returns a copy of d moved by exactly dist along the first axis.
func Offset(d face.Descriptor, dist float64) face.Descriptor {
	out := d.Clone()
	out[0] += float32(dist)
	return out
}

// Detection builds a detection with a square box of side size centred at
// (cx, cy) and eyes eye pixels apart.
func Detection(desc face.Descriptor, cx, cy, size, eye float64) face.Detection {
	half := size / 2
	var lm face.Landmarks
	lm[face.LeftEye] = face.Point{X: cx - eye/2, Y: cy - size/6}
	lm[face.RightEye] = face.Point{X: cx + eye/2, Y: cy - size/6}
	lm[face.Nose] = face.Point{X: cx, Y: cy}
	lm[face.MouthLeft] = face.Point{X: cx - eye/3, Y: cy + size/5}
	lm[face.MouthRight] = face.Point{X: cx + eye/3, Y: cy + size/5}
	return face.Detection{
		Descriptor: desc,
		Box:        face.Box{X1: cx - half, Y1: cy - half, X2: cx + half, Y2: cy + half},
		Landmarks:  lm,
		Score:      0.99,
	}
}
