package pipeline

import (
	"context"
	"image"
	"log"
	"time"

	"github.com/nvr-ai/emotioncam/capture"
	"github.com/nvr-ai/emotioncam/config"
	"github.com/nvr-ai/emotioncam/detector"
	"github.com/nvr-ai/emotioncam/emotion"
	"github.com/nvr-ai/emotioncam/images"
	"github.com/nvr-ai/emotioncam/overlay"
	"github.com/nvr-ai/emotioncam/profiler"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Stage names reported by the profiler.
const (
	StageDetect   = "detect"
	StageClassify = "classify"
	StageRender   = "render"
)

// Loop drives acquisition, detection, periodic classification, annotation and display.
//
// The loop owns the camera and the display: both are released exactly once when
// Run returns, whatever the exit path. The face detector and the analyzer are
// borrowed and must be closed by the caller.
type Loop struct {
	cfg      config.Config
	camera   capture.Camera
	faces    detector.FaceDetector
	emotions emotion.Analyzer
	display  Display
	profiler *profiler.StageProfiler
	now      func() time.Time

	state    *State
	small    gocv.Mat
	gray     gocv.Mat
	released bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock overrides the wall clock used for the frame rate.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
	}
}

// WithProfiler times the loop stages and reports them periodically.
func WithProfiler(p *profiler.StageProfiler) Option {
	return func(l *Loop) {
		l.profiler = p
	}
}

// StepResult describes what a single iteration did.
type StepResult struct {
	// Faces are the detected regions in full-resolution coordinates, as drawn.
	Faces []image.Rectangle
	// Analyzed is true when the label was recomputed on this iteration.
	Analyzed bool
	// Outcome is the classification outcome when Analyzed is true.
	Outcome Outcome
}

// New creates a loop over the given collaborators.
//
// Arguments:
//   - cfg: Tuning constants.
//   - camera: The opened camera, owned by the loop from now on.
//   - faces: The face detector run on the downsampled greyscale frame.
//   - emotions: The emotion classifier run on the full-resolution frame.
//   - display: The display surface, owned by the loop from now on.
//   - opts: Optional clock and profiler.
//
// Returns:
//   - *Loop: The loop, ready to Run.
func New(cfg config.Config, camera capture.Camera, faces detector.FaceDetector, emotions emotion.Analyzer, display Display, opts ...Option) *Loop {
	l := &Loop{
		cfg:      cfg,
		camera:   camera,
		faces:    faces,
		emotions: emotions,
		display:  display,
		now:      time.Now,
		small:    gocv.NewMat(),
		gray:     gocv.NewMat(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run processes frames until the quit key is pressed, a frame cannot be read or
// ctx is cancelled. A failed read ends the loop normally.
//
// Returns:
//   - error: nil on a normal exit, or the error of an iteration that failed
//     outside the classification step (including a recovered panic).
func (l *Loop) Run(ctx context.Context) (err error) {
	defer l.release()
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("frame loop panic: %v", r)
		}
	}()

	frame := gocv.NewMat()
	defer frame.Close()

	state := NewState(l.now())
	l.state = state
	for {
		if ctx.Err() != nil {
			log.Printf("frame loop cancelled after %d frames", state.FrameCount)
			return nil
		}

		if ok := l.camera.Read(&frame); !ok || frame.Empty() {
			log.Printf("failed to capture frame from camera after %d frames, exiting", state.FrameCount)
			return nil
		}

		if _, err := l.Step(ctx, state, &frame); err != nil {
			return errors.Wrapf(err, "frame %d", state.FrameCount)
		}

		l.display.Show(frame)
		l.profiler.MaybeReport()

		if key := l.display.WaitKey(l.cfg.PollTimeout); key >= 0 && key&0xFF == l.cfg.QuitKey {
			log.Printf("quit requested after %d frames", state.FrameCount)
			return nil
		}
	}
}

// Step runs one iteration on frame: detection on a downsampled greyscale copy,
// classification when the frame is due, and annotation of frame in place.
//
// Arguments:
//   - ctx: Passed to the classifier.
//   - state: The loop state, updated in place.
//   - frame: The full-resolution frame to analyse and annotate.
//
// Returns:
//   - StepResult: The drawn face regions and the classification outcome.
//   - error: An error if the frame could not be prepared for detection.
func (l *Loop) Step(ctx context.Context, state *State, frame *gocv.Mat) (StepResult, error) {
	var result StepResult

	stop := l.profiler.Start(StageDetect)
	if err := images.Downsample(*frame, &l.small, l.cfg.DownsampleFactor); err != nil {
		return result, errors.Wrap(err, "downsample")
	}
	if err := images.Grayscale(l.small, &l.gray); err != nil {
		return result, errors.Wrap(err, "grayscale")
	}
	detected := l.faces.Detect(l.gray)
	stop()

	if state.Due(l.cfg.AnalyzeEvery) {
		stop = l.profiler.Start(StageClassify)
		result.Outcome = Classify(ctx, l.emotions, *frame, len(detected))
		stop()

		result.Analyzed = true
		if result.Outcome.Failed() {
			log.Printf("error in emotion analysis: %v", result.Outcome.Err)
		}
		state.Label = result.Outcome.Label
	}

	stop = l.profiler.Start(StageRender)
	result.Faces = images.ScaleRects(detected, l.cfg.UpscaleFactor())
	overlay.Faces(frame, result.Faces)
	overlay.Label(frame, state.Label)
	overlay.FPS(frame, state.Tick(l.now()))
	stop()

	return result, nil
}

// State returns a copy of the state of the last Run, or the zero State before Run.
func (l *Loop) State() State {
	if l.state == nil {
		return State{}
	}
	return *l.state
}

// release closes the camera, the display and the scratch buffers once.
func (l *Loop) release() {
	if l.released {
		return
	}
	l.released = true

	if err := l.camera.Close(); err != nil {
		log.Printf("error releasing camera: %v", err)
	}
	if err := l.display.Close(); err != nil {
		log.Printf("error closing display: %v", err)
	}
	l.small.Close()
	l.gray.Close()
}
