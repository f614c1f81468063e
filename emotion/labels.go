// Package emotion - Facial emotion classification of video frames.
package emotion

// Emotion classes in the order the model emits its scores.
const (
	Angry    = "angry"
	Disgust  = "disgust"
	Fear     = "fear"
	Happy    = "happy"
	Sad      = "sad"
	Surprise = "surprise"
	Neutral  = "neutral"
)

// Placeholder labels shown instead of a classified emotion.
const (
	// NoFaceDetected is shown when the face detector found nothing on an analysed frame.
	NoFaceDetected = "No Face Detected"
	// AnalysisError is shown when the classifier failed on an analysed frame.
	AnalysisError = "Analysis Error"
)

// Labels is the classifier vocabulary indexed by model output position.
var Labels = []string{Angry, Disgust, Fear, Happy, Sad, Surprise, Neutral}

// IsSentinel reports whether label is one of the placeholder labels.
func IsSentinel(label string) bool {
	return label == NoFaceDetected || label == AnalysisError
}
