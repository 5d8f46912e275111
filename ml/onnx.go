package ml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once    sync.Once
	libPath string
	err     error
}

// SetONNXLibrary overrides the ONNX Runtime shared library location. It only
// has an effect before the first ONNX artifact is loaded.
func SetONNXLibrary(path string) {
	ortEnv.libPath = path
}

// ONNXLibrary reports the configured ONNX Runtime library, empty when the
// default location next to the model is used.
func ONNXLibrary() string {
	return ortEnv.libPath
}

func initORT(modelPath string) error {
	ortEnv.once.Do(func() {
		libPath := ortEnv.libPath
		if libPath == "" {
			// shipped alongside the model files by default
			libPath = filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
		}
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// onnxModel wraps a single-input ONNX graph such as a converted scikit-learn
// scaler or classifier. The graph is executed as-is.
type onnxModel struct {
	session     *ort.DynamicAdvancedSession
	inputType   ort.TensorElementDataType
	width       int64
	outputNames []string
}

func newONNXModel(modelPath string, minOutputs int) (*onnxModel, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("onnx: %w", err)
	}
	if err := initORT(modelPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("onnx: expected 1 input tensor, got %d", len(inputs))
	}
	if len(outputs) < minOutputs {
		return nil, fmt.Errorf("onnx: expected at least %d outputs, got %d", minOutputs, len(outputs))
	}

	input := inputs[0]
	switch input.DataType {
	case ort.TensorElementDataTypeFloat, ort.TensorElementDataTypeDouble:
	default:
		return nil, fmt.Errorf("onnx: unsupported input element type %v", input.DataType)
	}
	var width int64
	if dims := input.Dimensions; len(dims) == 2 && dims[1] > 0 {
		width = dims[1]
	}

	outputNames := make([]string, minOutputs)
	for i := range outputNames {
		outputNames[i] = outputs[i].Name
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(1)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(modelPath, []string{input.Name}, outputNames, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &onnxModel{
		session:     session,
		inputType:   input.DataType,
		width:       width,
		outputNames: outputNames,
	}, nil
}

// run executes the graph on a single row. Output values are allocated by the
// runtime and must be released with destroyAll.
func (m *onnxModel) run(features []float64) ([]ort.Value, error) {
	if m.width > 0 && int64(len(features)) != m.width {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(features), m.width)
	}
	shape := ort.NewShape(1, int64(len(features)))

	var input ort.Value
	var err error
	if m.inputType == ort.TensorElementDataTypeDouble {
		input, err = ort.NewTensor(shape, append([]float64(nil), features...))
	} else {
		row := make([]float32, len(features))
		for i, v := range features {
			row[i] = float32(v)
		}
		input, err = ort.NewTensor(shape, row)
	}
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := make([]ort.Value, len(m.outputNames))
	if err := m.session.Run([]ort.Value{input}, outputs); err != nil {
		destroyAll(outputs)
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}
	return outputs, nil
}

func (m *onnxModel) Close() error {
	return m.session.Destroy()
}

func destroyAll(values []ort.Value) {
	for _, v := range values {
		if v != nil {
			v.Destroy()
		}
	}
}

func floatsOf(v ort.Value) ([]float64, error) {
	switch t := v.(type) {
	case *ort.Tensor[float32]:
		data := t.GetData()
		out := make([]float64, len(data))
		for i, f := range data {
			out[i] = float64(f)
		}
		return out, nil
	case *ort.Tensor[float64]:
		return append([]float64(nil), t.GetData()...), nil
	default:
		// a ZipMap output arrives as a sequence of maps
		return nil, errors.New("onnx: output is not a float tensor (export the classifier without zipmap)")
	}
}

func labelOf(v ort.Value) (int, error) {
	switch t := v.(type) {
	case *ort.Tensor[int64]:
		if data := t.GetData(); len(data) > 0 {
			return int(data[0]), nil
		}
	case *ort.Tensor[int32]:
		if data := t.GetData(); len(data) > 0 {
			return int(data[0]), nil
		}
	default:
		return 0, errors.New("onnx: label output is not an integer tensor")
	}
	return 0, errors.New("onnx: empty label output")
}

// ONNXScaler runs a converted scaler graph.
type ONNXScaler struct {
	model *onnxModel
}

func NewONNXScaler(path string) (*ONNXScaler, error) {
	model, err := newONNXModel(path, 1)
	if err != nil {
		return nil, err
	}
	return &ONNXScaler{model: model}, nil
}

func (s *ONNXScaler) Transform(features []float64) ([]float64, error) {
	outputs, err := s.model.run(features)
	if err != nil {
		return nil, err
	}
	defer destroyAll(outputs)
	return floatsOf(outputs[0])
}

func (s *ONNXScaler) Close() error {
	return s.model.Close()
}

// ONNXClassifier runs a converted classifier graph whose first output is
// the label and second output the class probabilities.
type ONNXClassifier struct {
	model *onnxModel
}

func NewONNXClassifier(path string) (*ONNXClassifier, error) {
	model, err := newONNXModel(path, 2)
	if err != nil {
		return nil, err
	}
	return &ONNXClassifier{model: model}, nil
}

func (c *ONNXClassifier) Predict(features []float64) (int, error) {
	outputs, err := c.model.run(features)
	if err != nil {
		return 0, err
	}
	defer destroyAll(outputs)
	return labelOf(outputs[0])
}

func (c *ONNXClassifier) PredictProba(features []float64) ([]float64, error) {
	outputs, err := c.model.run(features)
	if err != nil {
		return nil, err
	}
	defer destroyAll(outputs)
	return floatsOf(outputs[1])
}

// Classify evaluates the graph once and reads both outputs.
func (c *ONNXClassifier) Classify(features []float64) (int, []float64, error) {
	outputs, err := c.model.run(features)
	if err != nil {
		return 0, nil, err
	}
	defer destroyAll(outputs)
	label, err := labelOf(outputs[0])
	if err != nil {
		return 0, nil, err
	}
	proba, err := floatsOf(outputs[1])
	if err != nil {
		return 0, nil, err
	}
	return label, proba, nil
}

func (c *ONNXClassifier) Close() error {
	return c.model.Close()
}
