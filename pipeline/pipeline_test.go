package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custseg/ml"
)

type recordingScaler struct {
	calls int
	last  []float64
}

func (s *recordingScaler) Transform(features []float64) ([]float64, error) {
	s.calls++
	s.last = append([]float64(nil), features...)
	return features, nil
}

type failingScaler struct{}

func (failingScaler) Transform([]float64) ([]float64, error) {
	return nil, ml.ErrDimensionMismatch
}

type fakeRecorder struct {
	predictions []int
	cached      []bool
	rejections  []string
}

func (r *fakeRecorder) ObservePrediction(label int, _ time.Duration, cached bool) {
	r.predictions = append(r.predictions, label)
	r.cached = append(r.cached, cached)
}

func (r *fakeRecorder) ObserveRejection(field string) {
	r.rejections = append(r.rejections, field)
}

// testArtifacts returns a standard scaler and a 4-cluster softmax model so
// the pipeline runs against real implementations.
func testArtifacts(t *testing.T) (ml.Scaler, ml.Classifier) {
	t.Helper()
	scaler, err := ml.NewStandardScaler(
		[]float64{45, 1.5, 50000, 2.5, 0.5, 12, 600, 350},
		[]float64{12, 1, 20000, 1, 1, 7, 550, 200},
	)
	require.NoError(t, err)
	classifier, err := ml.NewLogisticRegression(nil,
		[][]float64{
			{0.2, -0.3, -1.5, 0.4, -0.6, -1.1, -1.8, -0.2},
			{-0.1, 0.4, 0.9, -0.2, 0.3, 0.8, 1.2, 0.1},
			{0.6, 0.1, 0.2, 0.7, -0.2, 0.1, -0.1, 0.9},
			{-0.7, -0.2, 0.4, -0.9, 0.5, 0.2, 0.7, -0.8},
		},
		[]float64{0.1, -0.2, 0.05, 0.05}, "multinomial")
	require.NoError(t, err)
	return scaler, classifier
}

func defaultCustomer() Customer {
	return Customer{
		Age:               30,
		Education:         BSc,
		FamilySize:        3,
		AnnualIncome:      50000,
		AcceptedCampaigns: 0,
		Purchases:         5,
		TotalSpending:     1000,
		DaysActive:        100,
	}
}

func TestEducationCode(t *testing.T) {
	want := map[Education]int{Basic: 0, BSc: 1, MSc: 2, PhD: 3}
	for edu, code := range want {
		got, err := EducationCode(edu)
		require.NoError(t, err)
		assert.Equal(t, code, got, string(edu))
	}
	for i, edu := range EducationLevels {
		got, _ := EducationCode(edu)
		assert.Equal(t, i, got)
	}

	_, err := ParseEducation("Diploma")
	assert.Error(t, err)

	edu, err := ParseEducation("MSc")
	require.NoError(t, err)
	assert.Equal(t, MSc, edu)
}

func TestFeatureVectorOrder(t *testing.T) {
	got := FeatureVector(defaultCustomer())
	assert.Equal(t, []float64{30, 1, 50000, 3, 0, 5, 1000, 100}, got)
	assert.Len(t, FeatureNames(), len(got))
}

func TestPredictPassesVectorToScaler(t *testing.T) {
	_, classifier := testArtifacts(t)
	scaler := &recordingScaler{}
	p := New(scaler, classifier)

	_, err := p.Predict(defaultCustomer())
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 1, 50000, 3, 0, 5, 1000, 100}, scaler.last)
}

func TestValidateReportsFirstNegativeField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Customer)
		field  string
	}{
		{"age", func(c *Customer) { c.Age = -1 }, FieldAge},
		{"income", func(c *Customer) { c.AnnualIncome = -5 }, FieldAnnualIncome},
		{"family", func(c *Customer) { c.FamilySize = -1 }, FieldFamilySize},
		{"campaigns", func(c *Customer) { c.AcceptedCampaigns = -2 }, FieldAcceptedCampaigns},
		{"purchases", func(c *Customer) { c.Purchases = -1 }, FieldPurchases},
		{"spending", func(c *Customer) { c.TotalSpending = -100 }, FieldTotalSpending},
		{"days", func(c *Customer) { c.DaysActive = -1 }, FieldDaysActive},
		{"income before family", func(c *Customer) { c.FamilySize = -1; c.AnnualIncome = -1 }, FieldAnnualIncome},
		{"age before everything", func(c *Customer) { c.DaysActive = -1; c.Age = -3 }, FieldAge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaultCustomer()
			tt.mutate(&c)
			err := Validate(c)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.field+" cannot be negative!", err.Error())
		})
	}
}

func TestPredictRejectsNegativeWithoutCallingModels(t *testing.T) {
	_, classifier := testArtifacts(t)
	scaler := &recordingScaler{}
	recorder := &fakeRecorder{}
	p := New(scaler, classifier, WithRecorder(recorder))

	c := defaultCustomer()
	c.TotalSpending = -1
	result, err := p.Predict(c)
	assert.Nil(t, result)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, FieldTotalSpending, verr.Field)
	assert.Zero(t, scaler.calls)
	assert.Equal(t, []string{FieldTotalSpending}, recorder.rejections)
}

func TestPredictAgeBoundaries(t *testing.T) {
	scaler, classifier := testArtifacts(t)
	p := New(scaler, classifier)

	for _, age := range []int{0, 90} {
		c := defaultCustomer()
		c.Age = age
		_, err := p.Predict(c)
		assert.NoError(t, err, "age %d", age)
	}

	c := defaultCustomer()
	c.Age = -1
	_, err := p.Predict(c)
	assert.Error(t, err)
}

func TestPredictDistribution(t *testing.T) {
	scaler, classifier := testArtifacts(t)
	p := New(scaler, classifier)

	customers := []Customer{defaultCustomer()}
	for _, edu := range EducationLevels {
		customers = append(customers, Customer{Education: edu, FamilySize: 1})
		customers = append(customers, Customer{
			Age: 90, Education: edu, FamilySize: 9, AnnualIncome: 250000,
			AcceptedCampaigns: 5, Purchases: 80, TotalSpending: 9000, DaysActive: 1200,
		})
	}

	for _, c := range customers {
		result, err := p.Predict(c)
		require.NoError(t, err)
		require.Len(t, result.Probabilities, 4)
		var total float64
		for _, prob := range result.Probabilities {
			assert.GreaterOrEqual(t, prob, 0.0)
			total += prob
		}
		assert.InDelta(t, 1.0, total, 1e-6)
		assert.GreaterOrEqual(t, result.Label, 0)
		assert.Less(t, result.Label, 4)
	}
}

func TestPredictIdempotent(t *testing.T) {
	scaler, classifier := testArtifacts(t)

	for _, p := range []*Pipeline{New(scaler, classifier), New(scaler, classifier, WithCache(8))} {
		first, err := p.Predict(defaultCustomer())
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			again, err := p.Predict(defaultCustomer())
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestPredictCacheHit(t *testing.T) {
	_, classifier := testArtifacts(t)
	scaler := &recordingScaler{}
	recorder := &fakeRecorder{}
	p := New(scaler, classifier, WithCache(4), WithRecorder(recorder))

	first, err := p.Predict(defaultCustomer())
	require.NoError(t, err)
	first.Probabilities[0] = 42

	second, err := p.Predict(defaultCustomer())
	require.NoError(t, err)
	assert.Equal(t, 1, scaler.calls)
	assert.NotEqual(t, 42.0, second.Probabilities[0])
	assert.Equal(t, []bool{false, true}, recorder.cached)
}

func TestPredictWrapsScalerError(t *testing.T) {
	_, classifier := testArtifacts(t)
	p := New(failingScaler{}, classifier)

	_, err := p.Predict(defaultCustomer())
	assert.ErrorIs(t, err, ml.ErrDimensionMismatch)
}

func TestPredictUnknownEducation(t *testing.T) {
	scaler, classifier := testArtifacts(t)
	p := New(scaler, classifier)

	c := defaultCustomer()
	c.Education = "Diploma"
	_, err := p.Predict(c)
	assert.Error(t, err)
}

func TestPredictionFormatting(t *testing.T) {
	p := &Prediction{Label: 2, Probabilities: []float64{0.104, 0.2, 0.694, 0.001}}
	assert.Equal(t, "Predicted Cluster: 2", p.Headline())
	assert.Equal(t, "Cluster 0: 0.10, Cluster 1: 0.20, Cluster 2: 0.69, Cluster 3: 0.00", p.FormatProbabilities())
}

type singleRunClassifier struct {
	runs int
}

func (c *singleRunClassifier) Predict([]float64) (int, error) {
	return 0, errors.New("evaluated separately")
}

func (c *singleRunClassifier) PredictProba([]float64) ([]float64, error) {
	return nil, errors.New("evaluated separately")
}

func (c *singleRunClassifier) Classify([]float64) (int, []float64, error) {
	c.runs++
	return 3, []float64{0.1, 0.1, 0.1, 0.7}, nil
}

func TestPredictEvaluatesClassifierOnce(t *testing.T) {
	classifier := &singleRunClassifier{}
	p := New(&recordingScaler{}, classifier)

	result, err := p.Predict(defaultCustomer())
	require.NoError(t, err)
	assert.Equal(t, 1, classifier.runs)
	assert.Equal(t, 3, result.Label)
	assert.Equal(t, "Cluster 0: 0.10, Cluster 1: 0.10, Cluster 2: 0.10, Cluster 3: 0.70", result.FormatProbabilities())
}
