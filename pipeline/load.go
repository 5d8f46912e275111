package pipeline

import (
	"errors"
	"fmt"

	"custseg/config"
	"custseg/ml"
)

// Open loads both artifacts and builds a pipeline over them. The caller owns
// the result and must Close it to release ONNX sessions.
func Open(artifacts config.Artifacts, opts ...Option) (*Pipeline, error) {
	if artifacts.ONNXLibrary != "" {
		ml.SetONNXLibrary(artifacts.ONNXLibrary)
	}
	s, err := ml.LoadScaler(artifacts.Scaler.Format, artifacts.Scaler.Path)
	if err != nil {
		return nil, fmt.Errorf("load scaler %s: %w", artifacts.Scaler.Path, err)
	}
	c, err := ml.LoadClassifier(artifacts.Classifier.Format, artifacts.Classifier.Path)
	if err != nil {
		ml.Close(s)
		return nil, fmt.Errorf("load classifier %s: %w", artifacts.Classifier.Path, err)
	}
	return New(s, c, opts...), nil
}

// Close releases the artifacts' native resources.
func (p *Pipeline) Close() error {
	return errors.Join(ml.Close(p.scaler), ml.Close(p.classifier))
}
