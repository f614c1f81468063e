package emotion

import (
	"log"
	"os"
	"runtime"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig represents the configuration of the ONNX Runtime emotion model.
type ONNXConfig struct {
	// ModelPath is the ONNX model file.
	ModelPath string
	// LibPath is the onnxruntime shared library; empty selects the platform default.
	LibPath string
}

// ONNXModel runs a FER-style emotion model through ONNX Runtime.
//
// The model takes a [1, 1, 48, 48] float tensor and produces [1, len(Labels)] scores.
type ONNXModel struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// NewONNXModel loads the model and preallocates its input and output tensors.
//
// Order of operations:
//  1. Library and model checks, so a missing file fails before native init.
//  2. Environment setup, once per process.
//  3. Tensor allocation for the fixed input and output shapes.
//  4. Session creation bound to the first input and output names of the graph.
//
// Arguments:
//   - cfg: The model configuration.
//
// Returns:
//   - *ONNXModel: The loaded model; the caller must Close it.
//   - error: An error if any step fails. Partially created resources are released.
func NewONNXModel(cfg ONNXConfig) (*ONNXModel, error) {
	libPath := cfg.LibPath
	if libPath == "" {
		var err error
		libPath, err = SharedLibPath()
		if err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(libPath); err != nil {
		return nil, errors.Wrapf(err, "ONNX Runtime library not found at %s", libPath)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "emotion model not found at %s", cfg.ModelPath)
	}

	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "error initializing ORT environment")
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading model inputs and outputs")
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, errors.Errorf("model %s has no inputs or outputs", cfg.ModelPath)
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, InputSize, InputSize))
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(Labels))))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "error creating output tensor")
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		[]ort.Value{input},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session")
	}

	log.Printf("emotion model loaded: %s (input %s, output %s)", cfg.ModelPath, inputs[0].Name, outputs[0].Name)

	return &ONNXModel{session: session, input: input, output: output}, nil
}

// Predict copies input into the session tensor, runs the graph and returns a copy of the scores.
func (m *ONNXModel) Predict(input []float32) ([]float32, error) {
	if m.session == nil {
		return nil, errors.New("emotion model is closed")
	}

	data := m.input.GetData()
	if len(input) != len(data) {
		return nil, errors.Errorf("expected %d input values, got %d", len(data), len(input))
	}
	copy(data, input)

	if err := m.session.Run(); err != nil {
		return nil, errors.Wrap(err, "error running emotion model")
	}

	return append([]float32(nil), m.output.GetData()...), nil
}

// Close releases the session and its tensors.
func (m *ONNXModel) Close() error {
	if m.input != nil {
		m.input.Destroy()
		m.input = nil
	}
	if m.output != nil {
		m.output.Destroy()
		m.output = nil
	}
	if m.session != nil {
		err := m.session.Destroy()
		m.session = nil
		if err != nil {
			return errors.Wrap(err, "error destroying ORT session")
		}
	}
	return nil
}

// SharedLibPath returns the onnxruntime library location for the current platform.
func SharedLibPath() (string, error) {
	switch runtime.GOOS {
	case "windows":
		return "./third_party/onnxruntime.dll", nil
	case "darwin":
		return "./third_party/libonnxruntime.dylib", nil
	case "linux":
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so", nil
		}
		return "./third_party/onnxruntime.so", nil
	}
	return "", errors.Errorf("no onnxruntime library for %s/%s", runtime.GOOS, runtime.GOARCH)
}
