package emotion

import (
	"context"
	"image"
	"sort"

	"github.com/nvr-ai/emotioncam/detector"
	"github.com/nvr-ai/emotioncam/images"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// InputSize is the square side of the model input in pixels.
const InputSize = 48

var (
	// ErrFaceNotDetected is returned when detection is enforced and no face is found.
	ErrFaceNotDetected = errors.New("face could not be detected")
	// ErrEmptyFrame is returned for frames without pixels.
	ErrEmptyFrame = images.ErrEmptyFrame
)

// Options controls a single analysis call.
type Options struct {
	// EnforceDetection makes Analyze fail when its own face locator finds no face.
	// When false the whole frame is classified instead.
	EnforceDetection bool
}

// Analysis is the emotion result for one face region.
type Analysis struct {
	// Region is the analysed area in frame coordinates.
	Region image.Rectangle
	// Emotion maps each class to its score in percent.
	Emotion map[string]float32
	// DominantEmotion is the highest scoring class.
	DominantEmotion string
}

// Analyzer classifies the emotions of faces in a full-resolution color frame.
type Analyzer interface {
	Analyze(ctx context.Context, frame gocv.Mat, opts Options) ([]Analysis, error)
}

// Model maps a preprocessed InputSize x InputSize greyscale face to one score per label.
type Model interface {
	Predict(input []float32) ([]float32, error)
	Close() error
}

// Classifier is the default Analyzer. It locates faces with its own detector and
// runs the model on each of them.
type Classifier struct {
	model   Model
	locator detector.FaceDetector
}

// NewClassifier creates a classifier.
//
// Arguments:
//   - model: The emotion model.
//   - locator: The face detector used inside Analyze; nil classifies the whole frame.
//
// Returns:
//   - *Classifier: The classifier.
func NewClassifier(model Model, locator detector.FaceDetector) *Classifier {
	return &Classifier{model: model, locator: locator}
}

// Analyze classifies every face found in frame, largest face first.
//
// Arguments:
//   - ctx: Checked before any work starts.
//   - frame: The BGR frame.
//   - opts: Analysis options.
//
// Returns:
//   - []Analysis: At least one entry on success.
//   - error: ErrEmptyFrame, ErrFaceNotDetected or a model error.
func (c *Classifier) Analyze(ctx context.Context, frame gocv.Mat, opts Options) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frame.Empty() {
		return nil, ErrEmptyFrame
	}

	regions, err := c.locate(frame)
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		if opts.EnforceDetection {
			return nil, ErrFaceNotDetected
		}
		regions = []image.Rectangle{image.Rect(0, 0, frame.Cols(), frame.Rows())}
	}

	img, err := images.ToImage(frame)
	if err != nil {
		return nil, err
	}

	results := make([]Analysis, 0, len(regions))
	for _, region := range regions {
		input, err := Preprocess(img, region)
		if err != nil {
			return nil, errors.Wrapf(err, "preprocess region %v", region)
		}
		scores, err := c.model.Predict(input)
		if err != nil {
			return nil, errors.Wrap(err, "emotion model inference")
		}
		percent, dominant, err := Summarize(scores)
		if err != nil {
			return nil, err
		}
		results = append(results, Analysis{
			Region:          region,
			Emotion:         percent,
			DominantEmotion: dominant,
		})
	}

	return results, nil
}

// Close releases the model and the locator.
func (c *Classifier) Close() error {
	var err error
	if c.locator != nil {
		err = c.locator.Close()
	}
	if cerr := c.model.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// locate returns the face regions of frame clipped to its bounds, largest first.
func (c *Classifier) locate(frame gocv.Mat) ([]image.Rectangle, error) {
	if c.locator == nil {
		return nil, nil
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if err := images.Grayscale(frame, &gray); err != nil {
		return nil, err
	}

	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())
	var regions []image.Rectangle
	for _, r := range c.locator.Detect(gray) {
		r = r.Intersect(bounds)
		if !r.Empty() {
			regions = append(regions, r)
		}
	}

	sort.SliceStable(regions, func(i, j int) bool {
		a, b := regions[i].Size(), regions[j].Size()
		return a.X*a.Y > b.X*b.Y
	})
	return regions, nil
}
