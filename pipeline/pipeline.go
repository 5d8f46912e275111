// Package pipeline turns a customer submission into a cluster prediction:
// validate, encode, scale, classify and format.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"custseg/ml"
)

// ValidationError reports the first field holding a negative value.
type ValidationError struct {
	Field string
	Value int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s cannot be negative!", e.Field)
}

// Validate checks the numeric fields in a fixed order and reports the first
// negative one. Education cannot fail here since it comes from a closed menu.
func Validate(c Customer) error {
	checks := []struct {
		field string
		value int
	}{
		{FieldAge, c.Age},
		{FieldAnnualIncome, c.AnnualIncome},
		{FieldFamilySize, c.FamilySize},
		{FieldAcceptedCampaigns, c.AcceptedCampaigns},
		{FieldPurchases, c.Purchases},
		{FieldTotalSpending, c.TotalSpending},
		{FieldDaysActive, c.DaysActive},
	}
	for _, check := range checks {
		if check.value < 0 {
			return &ValidationError{Field: check.field, Value: check.value}
		}
	}
	return nil
}

// Prediction is the classifier output for one submission.
type Prediction struct {
	Label         int       `json:"label"`
	Probabilities []float64 `json:"probabilities"`
}

func (p *Prediction) Headline() string {
	return fmt.Sprintf("Predicted Cluster: %d", p.Label)
}

// FormatProbabilities renders "Cluster i: p" per class, two decimals,
// comma separated. i is the position in the probability vector.
func (p *Prediction) FormatProbabilities() string {
	parts := make([]string, len(p.Probabilities))
	for i, prob := range p.Probabilities {
		parts[i] = fmt.Sprintf("Cluster %d: %.2f", i, prob)
	}
	return strings.Join(parts, ", ")
}

// Recorder observes pipeline outcomes.
type Recorder interface {
	ObservePrediction(label int, elapsed time.Duration, cached bool)
	ObserveRejection(field string)
}

type Option func(*Pipeline)

func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// Pipeline holds the loaded artifacts. It never mutates them and is safe for
// concurrent use.
type Pipeline struct {
	scaler     ml.Scaler
	classifier ml.Classifier
	cache      *lru.Cache[Customer, *Prediction]
	recorder   Recorder
}

func New(scaler ml.Scaler, classifier ml.Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		scaler:     scaler,
		classifier: classifier,
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Predict runs one submission through the pipeline. A negative field yields
// a *ValidationError and the models are not consulted.
func (p *Pipeline) Predict(c Customer) (*Prediction, error) {
	start := time.Now()

	if err := Validate(c); err != nil {
		if verr, ok := err.(*ValidationError); ok {
			p.recorder.ObserveRejection(verr.Field)
		}
		return nil, err
	}
	if _, err := EducationCode(c.Education); err != nil {
		p.recorder.ObserveRejection(FieldEducation)
		return nil, err
	}

	if cached, ok := p.lookup(c); ok {
		p.recorder.ObservePrediction(cached.Label, time.Since(start), true)
		return cached, nil
	}

	scaled, err := p.scaler.Transform(FeatureVector(c))
	if err != nil {
		return nil, fmt.Errorf("scale features: %w", err)
	}
	label, proba, err := ml.Classify(p.classifier, scaled)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	result := &Prediction{Label: label, Probabilities: proba}
	p.store(c, result)
	p.recorder.ObservePrediction(label, time.Since(start), false)
	return result, nil
}

type nopRecorder struct{}

func (nopRecorder) ObservePrediction(int, time.Duration, bool) {}
func (nopRecorder) ObserveRejection(string)                    {}
