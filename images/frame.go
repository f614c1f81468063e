// Package images - Frame preparation and coordinate mapping between frame scales.
package images

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrEmptyFrame is returned when an operation is given a frame with no pixels.
var ErrEmptyFrame = errors.New("empty frame")

// Downsample writes a copy of src scaled by factor on both axes into dst.
//
// Arguments:
//   - src: The full-resolution frame.
//   - dst: The destination Mat, reallocated by OpenCV as needed.
//   - factor: The scale to apply, e.g. 0.5.
//
// Returns:
//   - error: ErrEmptyFrame when src has no pixels, or an error for a non-positive factor.
func Downsample(src gocv.Mat, dst *gocv.Mat, factor float64) error {
	if src.Empty() {
		return ErrEmptyFrame
	}
	if factor <= 0 {
		return errors.Errorf("downsample factor must be positive, got %v", factor)
	}
	if factor == 1 {
		src.CopyTo(dst)
		return nil
	}
	gocv.Resize(src, dst, image.Point{}, factor, factor, gocv.InterpolationLinear)
	return nil
}

// Grayscale converts a BGR frame to a single intensity channel.
//
// Frames that already have one channel are copied as-is.
func Grayscale(src gocv.Mat, dst *gocv.Mat) error {
	if src.Empty() {
		return ErrEmptyFrame
	}
	if src.Channels() == 1 {
		src.CopyTo(dst)
		return nil
	}
	gocv.CvtColor(src, dst, gocv.ColorBGRToGray)
	return nil
}

// ScaleRect multiplies the origin, width and height of r by factor.
//
// For a factor of 2 this maps a rectangle (x, y, w, h) found on a half-size frame
// to (2x, 2y, 2w, 2h) on the full-size frame.
func ScaleRect(r image.Rectangle, factor float64) image.Rectangle {
	x := scale(r.Min.X, factor)
	y := scale(r.Min.Y, factor)
	w := scale(r.Dx(), factor)
	h := scale(r.Dy(), factor)
	return image.Rect(x, y, x+w, y+h)
}

// ScaleRects applies ScaleRect to every rectangle and returns a new slice.
func ScaleRects(rects []image.Rectangle, factor float64) []image.Rectangle {
	if len(rects) == 0 {
		return nil
	}
	out := make([]image.Rectangle, len(rects))
	for i, r := range rects {
		out[i] = ScaleRect(r, factor)
	}
	return out
}

func scale(v int, factor float64) int {
	return int(math.Round(float64(v) * factor))
}

// ToImage converts a BGR or greyscale Mat to a Go image.
//
// Returns:
//   - image.Image: The converted image.
//   - error: ErrEmptyFrame for an empty Mat, or the conversion error.
func ToImage(m gocv.Mat) (image.Image, error) {
	if m.Empty() {
		return nil, ErrEmptyFrame
	}
	img, err := m.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "convert frame to image")
	}
	return img, nil
}
