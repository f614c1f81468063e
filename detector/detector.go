// Package detector - Face region detection on single-channel frames.
package detector

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// FaceDetector finds face regions in a greyscale image.
//
// Rectangles are returned in the coordinate space of the image passed in; their
// order carries no meaning.
type FaceDetector interface {
	Detect(gray gocv.Mat) []image.Rectangle
	Close() error
}

// Config represents the tuning of a cascade detector.
type Config struct {
	// Path is the Haar cascade XML file.
	Path string
	// ScaleFactor is the image pyramid step between detection scales.
	ScaleFactor float64
	// MinNeighbors is the number of overlapping hits required to keep a candidate.
	MinNeighbors int
	// MinSize and MaxSize bound the face size; zero values leave the bound open.
	MinSize image.Point
	MaxSize image.Point
}

// Cascade is a Haar cascade face detector backed by OpenCV.
type Cascade struct {
	classifier   gocv.CascadeClassifier
	scaleFactor  float64
	minNeighbors int
	minSize      image.Point
	maxSize      image.Point
}

// NewCascade loads the cascade described by cfg.
//
// Arguments:
//   - cfg: The cascade configuration.
//
// Returns:
//   - *Cascade: The loaded detector; the caller must Close it.
//   - error: An error if the cascade file cannot be loaded.
func NewCascade(cfg Config) (*Cascade, error) {
	if cfg.ScaleFactor <= 1 {
		return nil, errors.Errorf("cascade scale factor must be greater than 1, got %v", cfg.ScaleFactor)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cfg.Path) {
		classifier.Close()
		return nil, errors.Errorf("error reading cascade file: %s", cfg.Path)
	}

	return &Cascade{
		classifier:   classifier,
		scaleFactor:  cfg.ScaleFactor,
		minNeighbors: cfg.MinNeighbors,
		minSize:      cfg.MinSize,
		maxSize:      cfg.MaxSize,
	}, nil
}

// Detect runs the cascade over gray.
func (c *Cascade) Detect(gray gocv.Mat) []image.Rectangle {
	if gray.Empty() {
		return nil
	}
	return c.classifier.DetectMultiScaleWithParams(gray, c.scaleFactor, c.minNeighbors, 0, c.minSize, c.maxSize)
}

// Close releases the native classifier.
func (c *Cascade) Close() error {
	return c.classifier.Close()
}

// Largest returns the rectangle with the biggest area, and false when rects is empty.
func Largest(rects []image.Rectangle) (image.Rectangle, bool) {
	if len(rects) == 0 {
		return image.Rectangle{}, false
	}
	best := rects[0]
	for _, r := range rects[1:] {
		if area(r) > area(best) {
			best = r
		}
	}
	return best, true
}

func area(r image.Rectangle) int {
	s := r.Size()
	return s.X * s.Y
}
