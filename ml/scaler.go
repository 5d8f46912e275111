package ml

import "fmt"

// StandardScaler centers each feature on its fitted mean and divides by the
// fitted scale.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, ErrEmptyArtifact
	}
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("%w: mean has %d entries, scale has %d", ErrDimensionMismatch, len(mean), len(scale))
	}
	return &StandardScaler{
		mean:  append([]float64(nil), mean...),
		scale: append([]float64(nil), scale...),
	}, nil
}

func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.mean) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(features), len(s.mean))
	}
	result := make([]float64, len(features))
	for i, v := range features {
		scale := s.scale[i]
		// zero-variance features are only centered
		if scale == 0 {
			scale = 1
		}
		result[i] = (v - s.mean[i]) / scale
	}
	return result, nil
}

// MinMaxScaler maps each feature onto [0, 1] using the fitted bounds.
type MinMaxScaler struct {
	mins []float64
	maxs []float64
}

func NewMinMaxScaler(mins, maxs []float64) (*MinMaxScaler, error) {
	if len(mins) == 0 {
		return nil, ErrEmptyArtifact
	}
	if len(mins) != len(maxs) {
		return nil, fmt.Errorf("%w: min has %d entries, max has %d", ErrDimensionMismatch, len(mins), len(maxs))
	}
	return &MinMaxScaler{
		mins: append([]float64(nil), mins...),
		maxs: append([]float64(nil), maxs...),
	}, nil
}

func (s *MinMaxScaler) Transform(features []float64) ([]float64, error) {
	return NormalizeVector(features, s.mins, s.maxs)
}

func NormalizeFeature(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (value - min) / (max - min)
}

func NormalizeVector(values []float64, mins []float64, maxs []float64) ([]float64, error) {
	if len(values) != len(mins) || len(values) != len(maxs) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(values), len(mins))
	}
	result := make([]float64, len(values))
	for i := range values {
		result[i] = NormalizeFeature(values[i], mins[i], maxs[i])
	}
	return result, nil
}
