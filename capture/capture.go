// Package capture - Camera acquisition with device index fallback.
package capture

import (
	"log"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrNoCamera is returned when none of the requested device indices could be opened.
var ErrNoCamera = errors.New("camera unable to open")

// Camera is an opened capture device that yields frames.
type Camera interface {
	// Read fills dst with the next frame and reports whether a frame was produced.
	Read(dst *gocv.Mat) bool
	// Close releases the device.
	Close() error
}

// Opener opens the capture device bound to index.
type Opener func(index int) (Camera, error)

// Device is a Camera opened at a specific index.
type Device struct {
	Camera
	Index int
}

// videoCapture adapts *gocv.VideoCapture to Camera.
type videoCapture struct {
	vc *gocv.VideoCapture
}

func (v *videoCapture) Read(dst *gocv.Mat) bool {
	return v.vc.Read(dst)
}

func (v *videoCapture) Close() error {
	return v.vc.Close()
}

// OpenVideoCapture opens a local camera through OpenCV.
//
// A handle that OpenCV creates but cannot open is closed and reported as an error.
//
// Arguments:
//   - index: The camera device index.
//
// Returns:
//   - Camera: The opened camera.
//   - error: An error if the device could not be opened.
func OpenVideoCapture(index int) (Camera, error) {
	vc, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, errors.Wrapf(err, "open video capture device %d", index)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, errors.Errorf("video capture device %d is not opened", index)
	}
	return &videoCapture{vc: vc}, nil
}

// Open tries each device index in order and returns the first camera that opens.
//
// Arguments:
//   - open: The function used to open a single index.
//   - indices: Device indices in fallback order, e.g. 1 then 0.
//
// Returns:
//   - *Device: The opened camera together with the index it was bound to.
//   - error: ErrNoCamera wrapped with the last failure if no index opens.
func Open(open Opener, indices ...int) (*Device, error) {
	if len(indices) == 0 {
		return nil, errors.Wrap(ErrNoCamera, "no device indices given")
	}

	var lastErr error
	for i, index := range indices {
		cam, err := open(index)
		if err == nil {
			if i > 0 {
				log.Printf("camera device %d unavailable, using device %d", indices[i-1], index)
			}
			return &Device{Camera: cam, Index: index}, nil
		}
		lastErr = err
	}

	return nil, errors.Wrapf(ErrNoCamera, "tried devices %v: %v", indices, lastErr)
}
