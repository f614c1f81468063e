// Package config - Tuning constants and runtime configuration for the emotion overlay loop.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DownsampleFactor is the scale applied to each frame before face detection.
	DownsampleFactor = 0.5
	// ScaleFactor is the cascade image-pyramid step used by the face detector.
	ScaleFactor = 1.1
	// MinNeighbors is the number of neighbouring hits a face candidate needs to be kept.
	MinNeighbors = 4
	// AnalyzeEvery is the frame-skip cadence for emotion classification.
	AnalyzeEvery = 5
	// PollTimeout is the key poll wait in milliseconds.
	PollTimeout = 1
	// QuitKey ends the loop when pressed in the display window.
	QuitKey = 'q'
	// WindowTitle is the name of the display window.
	WindowTitle = "Emotion Detection"
	// DefaultCascadePath is the Haar cascade used for face detection.
	DefaultCascadePath = "haarcascade_frontalface_default.xml"
	// DefaultEmotionModelPath is the FER-style ONNX emotion model.
	DefaultEmotionModelPath = "facial_expression_model.onnx"
	// DefaultProfileInterval is how often stage timings are reported when profiling.
	DefaultProfileInterval = 5 * time.Second
)

// DefaultDevices is the camera index fallback order.
var DefaultDevices = []int{1, 0}

// Config holds everything the loop and its collaborators are built from.
type Config struct {
	// Devices are camera indices tried in order.
	Devices []int
	// CascadePath is the Haar cascade XML file for the face detector.
	CascadePath string
	// EmotionModelPath is the ONNX emotion classifier.
	EmotionModelPath string
	// ONNXLibPath overrides the onnxruntime shared library location.
	ONNXLibPath string

	DownsampleFactor float64
	ScaleFactor      float64
	MinNeighbors     int
	AnalyzeEvery     int
	PollTimeout      int
	QuitKey          int

	// Headless disables the display window and key polling.
	Headless bool
	// Profile enables per-stage timing reports.
	Profile         bool
	ProfileInterval time.Duration
}

// Default returns the configuration matching the fixed tuning constants.
//
// Returns:
//   - Config: The default configuration.
func Default() Config {
	return Config{
		Devices:          append([]int(nil), DefaultDevices...),
		CascadePath:      DefaultCascadePath,
		EmotionModelPath: DefaultEmotionModelPath,
		DownsampleFactor: DownsampleFactor,
		ScaleFactor:      ScaleFactor,
		MinNeighbors:     MinNeighbors,
		AnalyzeEvery:     AnalyzeEvery,
		PollTimeout:      PollTimeout,
		QuitKey:          QuitKey,
		ProfileInterval:  DefaultProfileInterval,
	}
}

// UpscaleFactor is the inverse of the downsample factor, used to map detector
// rectangles back to full-resolution coordinates.
func (c Config) UpscaleFactor() float64 {
	return 1 / c.DownsampleFactor
}

// Validate checks that the configuration can drive the loop.
//
// Returns:
//   - error: The first invalid field, if any.
func (c Config) Validate() error {
	if len(c.Devices) == 0 {
		return errors.New("at least one camera device index is required")
	}
	for _, d := range c.Devices {
		if d < 0 {
			return errors.Errorf("invalid camera device index %d", d)
		}
	}
	if c.DownsampleFactor <= 0 || c.DownsampleFactor > 1 {
		return errors.Errorf("downsample factor must be in (0, 1], got %v", c.DownsampleFactor)
	}
	if c.ScaleFactor <= 1 {
		return errors.Errorf("scale factor must be greater than 1, got %v", c.ScaleFactor)
	}
	if c.MinNeighbors < 0 {
		return errors.Errorf("min neighbors must not be negative, got %d", c.MinNeighbors)
	}
	if c.AnalyzeEvery <= 0 {
		return errors.Errorf("analyze cadence must be positive, got %d", c.AnalyzeEvery)
	}
	if c.PollTimeout <= 0 {
		return errors.Errorf("poll timeout must be positive, got %d", c.PollTimeout)
	}
	if c.CascadePath == "" {
		return errors.New("cascade path is required")
	}
	if c.EmotionModelPath == "" {
		return errors.New("emotion model path is required")
	}
	if c.Profile && c.ProfileInterval <= 0 {
		return errors.Errorf("profile interval must be positive, got %v", c.ProfileInterval)
	}
	return nil
}

// ParseDevices parses a comma separated list of camera indices, e.g. "1,0".
//
// Arguments:
//   - s: The device list.
//
// Returns:
//   - []int: The indices in the order given.
//   - error: An error if any entry is not a non-negative integer.
func ParseDevices(s string) ([]int, error) {
	var devices []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		d, err := strconv.Atoi(field)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid device index %q", field)
		}
		if d < 0 {
			return nil, errors.Errorf("invalid device index %d", d)
		}
		devices = append(devices, d)
	}
	if len(devices) == 0 {
		return nil, errors.Errorf("no device indices in %q", s)
	}
	return devices, nil
}
