package ml

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported artifact format")
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
	ErrEmptyArtifact     = errors.New("artifact has no parameters")
)

// Scaler is a pre-fitted feature normalization. Implementations are
// read-only after loading and safe for concurrent use.
type Scaler interface {
	Transform(features []float64) ([]float64, error)
}

// Classifier is a pre-trained model producing a cluster label and a
// probability per cluster. Implementations are read-only after loading and
// safe for concurrent use.
type Classifier interface {
	Predict(features []float64) (int, error)
	PredictProba(features []float64) ([]float64, error)
}

// Classify returns the label and the per-cluster probabilities for one
// input. Classifiers that can produce both from a single evaluation do so.
func Classify(c Classifier, features []float64) (int, []float64, error) {
	if joint, ok := c.(interface {
		Classify(features []float64) (int, []float64, error)
	}); ok {
		return joint.Classify(features)
	}
	label, err := c.Predict(features)
	if err != nil {
		return 0, nil, fmt.Errorf("predict cluster: %w", err)
	}
	proba, err := c.PredictProba(features)
	if err != nil {
		return 0, nil, fmt.Errorf("predict probabilities: %w", err)
	}
	return label, proba, nil
}
