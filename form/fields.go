// Package form describes the input widgets of the predictor page and turns
// submitted values into a pipeline.Customer.
package form

import (
	"fmt"
	"strconv"

	"custseg/pipeline"
)

const (
	KindNumber = "number"
	KindChoice = "choice"
)

// Field is one input widget.
type Field struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Column  int      `json:"column"`
	Kind    string   `json:"kind"`
	Min     int      `json:"min"`
	Max     *int     `json:"max,omitempty"`
	Default int      `json:"default"`
	Step    int      `json:"step,omitempty"`
	Options []string `json:"options,omitempty"`

	get func(pipeline.Customer) int
	set func(*pipeline.Customer, int)
}

func bound(v int) *int { return &v }

var educationOptions = func() []string {
	opts := make([]string, len(pipeline.EducationLevels))
	for i, e := range pipeline.EducationLevels {
		opts[i] = string(e)
	}
	return opts
}()

var fields = []Field{
	{
		Key: "age", Name: pipeline.FieldAge, Label: "🧑 Age (0-90)", Column: 1, Kind: KindNumber,
		Min: 0, Max: bound(90), Default: 30, Step: 1,
		get: func(c pipeline.Customer) int { return c.Age },
		set: func(c *pipeline.Customer, v int) { c.Age = v },
	},
	{
		Key: "education", Name: pipeline.FieldEducation, Label: "🎓 Education Level", Column: 1, Kind: KindChoice,
		Options: educationOptions,
	},
	{
		Key: "family_size", Name: pipeline.FieldFamilySize, Label: "👪 Family Size", Column: 1, Kind: KindNumber,
		Min: 1, Default: 3, Step: 1,
		get: func(c pipeline.Customer) int { return c.FamilySize },
		set: func(c *pipeline.Customer, v int) { c.FamilySize = v },
	},
	{
		Key: "annual_income", Name: pipeline.FieldAnnualIncome, Label: "💰 Annual Income", Column: 2, Kind: KindNumber,
		Min: 0, Default: 50000, Step: 1000,
		get: func(c pipeline.Customer) int { return c.AnnualIncome },
		set: func(c *pipeline.Customer, v int) { c.AnnualIncome = v },
	},
	{
		Key: "accepted_campaigns", Name: pipeline.FieldAcceptedCampaigns, Label: "📊 Accepted Campaign Count (0-5)", Column: 2, Kind: KindNumber,
		Min: 0, Max: bound(5), Default: 0, Step: 1,
		get: func(c pipeline.Customer) int { return c.AcceptedCampaigns },
		set: func(c *pipeline.Customer, v int) { c.AcceptedCampaigns = v },
	},
	{
		Key: "purchases", Name: pipeline.FieldPurchases, Label: "🛍️ Number of Purchases", Column: 2, Kind: KindNumber,
		Min: 0, Default: 5, Step: 1,
		get: func(c pipeline.Customer) int { return c.Purchases },
		set: func(c *pipeline.Customer, v int) { c.Purchases = v },
	},
	{
		Key: "total_spending", Name: pipeline.FieldTotalSpending, Label: "💵 Total Spending", Column: 3, Kind: KindNumber,
		Min: 0, Default: 1000, Step: 100,
		get: func(c pipeline.Customer) int { return c.TotalSpending },
		set: func(c *pipeline.Customer, v int) { c.TotalSpending = v },
	},
	{
		Key: "days_active", Name: pipeline.FieldDaysActive, Label: "📅 Customer Days Active", Column: 3, Kind: KindNumber,
		Min: 0, Default: 100, Step: 1,
		get: func(c pipeline.Customer) int { return c.DaysActive },
		set: func(c *pipeline.Customer, v int) { c.DaysActive = v },
	},
}

// Fields returns the widgets in display order.
func Fields() []Field {
	return append([]Field(nil), fields...)
}

// Defaults is the record the page shows before any interaction.
func Defaults() pipeline.Customer {
	var c pipeline.Customer
	for _, f := range fields {
		if f.Kind == KindChoice {
			c.Education = pipeline.Education(f.Options[0])
			continue
		}
		f.set(&c, f.Default)
	}
	return c
}

// Value renders the field's current value for an input element.
func (f Field) Value(c pipeline.Customer) string {
	if f.Kind == KindChoice {
		return string(c.Education)
	}
	return strconv.Itoa(f.get(c))
}

// BoundsError is a widget limit violation, the server-side twin of the
// browser's min/max enforcement.
type BoundsError struct {
	Field string
	Value int
	Min   int
	Max   *int
}

func (e *BoundsError) Error() string {
	if e.Max != nil {
		return fmt.Sprintf("%s must be between %d and %d", e.Field, e.Min, *e.Max)
	}
	return fmt.Sprintf("%s must be at least %d", e.Field, e.Min)
}

// ParseError is a value that could not be read as the field's type.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: invalid value %q", e.Field, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CheckBounds applies the widget limits. A record with any negative field is
// left for the pipeline, which names the first negative field in its own
// check order.
func CheckBounds(c pipeline.Customer) error {
	if pipeline.Validate(c) != nil {
		return nil
	}
	for _, f := range fields {
		if f.Kind != KindNumber {
			continue
		}
		v := f.get(c)
		if v < f.Min || (f.Max != nil && v > *f.Max) {
			return &BoundsError{Field: f.Name, Value: v, Min: f.Min, Max: f.Max}
		}
	}
	return nil
}
