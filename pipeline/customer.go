package pipeline

import "fmt"

// Education is the customer's highest education level as offered by the
// form's closed menu.
type Education string

const (
	Basic Education = "Basic"
	BSc   Education = "BSc"
	MSc   Education = "MSc"
	PhD   Education = "PhD"
)

// EducationLevels lists the menu entries in ordinal order.
var EducationLevels = []Education{Basic, BSc, MSc, PhD}

var educationCodes = map[Education]int{
	Basic: 0,
	BSc:   1,
	MSc:   2,
	PhD:   3,
}

// EducationCode returns the ordinal the models were fitted with.
func EducationCode(e Education) (int, error) {
	code, ok := educationCodes[e]
	if !ok {
		return 0, fmt.Errorf("unknown education level %q", string(e))
	}
	return code, nil
}

func ParseEducation(s string) (Education, error) {
	e := Education(s)
	if _, err := EducationCode(e); err != nil {
		return "", err
	}
	return e, nil
}

// Customer is one form submission. It is comparable so it can key the
// prediction cache.
type Customer struct {
	Age               int       `json:"age"`
	Education         Education `json:"education"`
	FamilySize        int       `json:"family_size"`
	AnnualIncome      int       `json:"annual_income"`
	AcceptedCampaigns int       `json:"accepted_campaigns"`
	Purchases         int       `json:"purchases"`
	TotalSpending     int       `json:"total_spending"`
	DaysActive        int       `json:"days_active"`
}

// Field display names, also used in validation messages.
const (
	FieldAge               = "Age"
	FieldEducation         = "Education Level"
	FieldFamilySize        = "Family Size"
	FieldAnnualIncome      = "Annual Income"
	FieldAcceptedCampaigns = "Accepted Campaign Count"
	FieldPurchases         = "Number of Purchases"
	FieldTotalSpending     = "Total Spending"
	FieldDaysActive        = "Customer Days Active"
)

// FeatureNames is the column order of FeatureVector.
func FeatureNames() []string {
	return []string{
		FieldAge,
		FieldEducation,
		FieldAnnualIncome,
		FieldFamilySize,
		FieldAcceptedCampaigns,
		FieldPurchases,
		FieldTotalSpending,
		FieldDaysActive,
	}
}

// FeatureVector lays the customer out in the order the scaler and
// classifier were fitted on. The education level must already be valid.
func FeatureVector(c Customer) []float64 {
	edu := educationCodes[c.Education]
	return []float64{
		float64(c.Age),
		float64(edu),
		float64(c.AnnualIncome),
		float64(c.FamilySize),
		float64(c.AcceptedCampaigns),
		float64(c.Purchases),
		float64(c.TotalSpending),
		float64(c.DaysActive),
	}
}
