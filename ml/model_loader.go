package ml

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const (
	FormatJSON = "json"
	FormatONNX = "onnx"
)

// LoadScaler reads a scaler artifact in the given format.
func LoadScaler(format, path string) (Scaler, error) {
	switch format {
	case FormatJSON, "":
		var artifact scalerArtifact
		if err := readJSON(path, &artifact); err != nil {
			return nil, err
		}
		return artifact.build()
	case FormatONNX:
		return NewONNXScaler(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// LoadClassifier reads a classifier artifact in the given format.
func LoadClassifier(format, path string) (Classifier, error) {
	switch format {
	case FormatJSON, "":
		var artifact classifierArtifact
		if err := readJSON(path, &artifact); err != nil {
			return nil, err
		}
		return artifact.build()
	case FormatONNX:
		return NewONNXClassifier(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Close releases native resources held by an artifact, if any.
func Close(artifact any) error {
	if c, ok := artifact.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type scalerArtifact struct {
	Type  string    `json:"type"`
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
	Min   []float64 `json:"min"`
	Max   []float64 `json:"max"`
}

func (a scalerArtifact) build() (Scaler, error) {
	switch a.Type {
	case "standard":
		return NewStandardScaler(a.Mean, a.Scale)
	case "minmax":
		return NewMinMaxScaler(a.Min, a.Max)
	default:
		return nil, fmt.Errorf("%w: scaler type %q", ErrUnsupportedFormat, a.Type)
	}
}

type classifierArtifact struct {
	Type       string      `json:"type"`
	Classes    []int       `json:"classes"`
	Coef       [][]float64 `json:"coef"`
	Intercept  []float64   `json:"intercept"`
	MultiClass string      `json:"multi_class"`
	Nodes      []TreeNode  `json:"nodes"`
}

func (a classifierArtifact) build() (Classifier, error) {
	switch a.Type {
	case "logistic_regression":
		return NewLogisticRegression(a.Classes, a.Coef, a.Intercept, a.MultiClass)
	case "decision_tree":
		return NewDecisionTree(a.Classes, a.Nodes)
	default:
		return nil, fmt.Errorf("%w: classifier type %q", ErrUnsupportedFormat, a.Type)
	}
}

func readJSON(path string, v any) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode artifact %s: %w", path, err)
	}
	return nil
}
