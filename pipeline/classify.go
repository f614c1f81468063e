package pipeline

import (
	"context"

	"github.com/nvr-ai/emotioncam/emotion"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Outcome is the result of the classification step: the label to show, and the
// reason when the label is the analysis error placeholder.
type Outcome struct {
	Label string
	Err   error
}

// Failed reports whether classification failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Classify picks the label for an analysed frame.
//
// With no detected faces the classifier is not called and the label is
// emotion.NoFaceDetected. Otherwise the full-resolution frame is analysed with
// detection enforcement disabled and the dominant emotion of the first result
// is used. Any classifier error, including a panic, yields emotion.AnalysisError.
//
// Arguments:
//   - ctx: Passed to the analyzer.
//   - analyzer: The emotion classifier.
//   - frame: The original, non-downsampled frame.
//   - faces: The number of faces found by the loop's detector.
//
// Returns:
//   - Outcome: The label and, on failure, the cause.
func Classify(ctx context.Context, analyzer emotion.Analyzer, frame gocv.Mat, faces int) (out Outcome) {
	if faces == 0 {
		return Outcome{Label: emotion.NoFaceDetected}
	}

	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Label: emotion.AnalysisError, Err: errors.Errorf("emotion analysis panic: %v", r)}
		}
	}()

	results, err := analyzer.Analyze(ctx, frame, emotion.Options{EnforceDetection: false})
	if err != nil {
		return Outcome{Label: emotion.AnalysisError, Err: err}
	}
	if len(results) == 0 {
		return Outcome{Label: emotion.AnalysisError, Err: errors.New("emotion analysis returned no results")}
	}

	return Outcome{Label: results[0].DominantEmotion}
}
