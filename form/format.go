package form

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"custseg/pipeline"
)

var printer = message.NewPrinter(language.English)

// Summary describes a submission in one line with grouped thousands, e.g.
// "Age 30 · BSc · family of 3 · income 50,000 · ...".
func Summary(c pipeline.Customer) string {
	return printer.Sprintf("Age %d · %s · family of %d · income %d · %d campaigns accepted · %d purchases · spending %d · %d days active",
		c.Age, string(c.Education), c.FamilySize, c.AnnualIncome, c.AcceptedCampaigns, c.Purchases, c.TotalSpending, c.DaysActive)
}

// FormatNumber groups thousands for display.
func FormatNumber(v int) string {
	return printer.Sprintf("%d", v)
}
