package ml

import (
	"fmt"
	"math"
)

// LogisticRegression evaluates a fitted linear classifier from its exported
// coefficients. A single coefficient row describes a binary model.
type LogisticRegression struct {
	classes    []int
	coef       [][]float64
	intercept  []float64
	multiClass string
}

func NewLogisticRegression(classes []int, coef [][]float64, intercept []float64, multiClass string) (*LogisticRegression, error) {
	if len(coef) == 0 || len(coef[0]) == 0 {
		return nil, ErrEmptyArtifact
	}
	if len(intercept) != len(coef) {
		return nil, fmt.Errorf("%w: %d coefficient rows, %d intercepts", ErrDimensionMismatch, len(coef), len(intercept))
	}
	width := len(coef[0])
	for i, row := range coef {
		if len(row) != width {
			return nil, fmt.Errorf("%w: coefficient row %d has %d entries, want %d", ErrDimensionMismatch, i, len(row), width)
		}
	}

	outputs := len(coef)
	if outputs == 1 {
		outputs = 2
	}
	if len(classes) == 0 {
		classes = make([]int, outputs)
		for i := range classes {
			classes[i] = i
		}
	}
	if len(classes) != outputs {
		return nil, fmt.Errorf("%w: %d classes for %d outputs", ErrDimensionMismatch, len(classes), outputs)
	}

	switch multiClass {
	case "", "auto", "multinomial":
		multiClass = "multinomial"
	case "ovr":
	default:
		return nil, fmt.Errorf("%w: multi_class %q", ErrUnsupportedFormat, multiClass)
	}

	rows := make([][]float64, len(coef))
	for i, row := range coef {
		rows[i] = append([]float64(nil), row...)
	}

	return &LogisticRegression{
		classes:    append([]int(nil), classes...),
		coef:       rows,
		intercept:  append([]float64(nil), intercept...),
		multiClass: multiClass,
	}, nil
}

func (m *LogisticRegression) Predict(features []float64) (int, error) {
	proba, err := m.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return m.classes[argmax(proba)], nil
}

func (m *LogisticRegression) PredictProba(features []float64) ([]float64, error) {
	scores, err := m.decision(features)
	if err != nil {
		return nil, err
	}

	if len(scores) == 1 {
		p := sigmoid(scores[0])
		return []float64{1 - p, p}, nil
	}
	if m.multiClass == "ovr" {
		for i, s := range scores {
			scores[i] = sigmoid(s)
		}
		return normalize(scores), nil
	}
	return softmax(scores), nil
}

func (m *LogisticRegression) decision(features []float64) ([]float64, error) {
	if len(features) != len(m.coef[0]) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(features), len(m.coef[0]))
	}
	scores := make([]float64, len(m.coef))
	for i, row := range m.coef {
		sum := m.intercept[i]
		for j, w := range row {
			sum += w * features[j]
		}
		scores[i] = sum
	}
	return scores, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func softmax(scores []float64) []float64 {
	peak := scores[argmax(scores)]
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func normalize(values []float64) []float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	out := make([]float64, len(values))
	if sum == 0 {
		for i := range out {
			out[i] = 1 / float64(len(out))
		}
		return out
	}
	for i, v := range values {
		out[i] = v / sum
	}
	return out
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
