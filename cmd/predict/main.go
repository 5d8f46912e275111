// Command predict segments a single customer from the command line using the
// same artifacts and checks as the web server.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"custseg/config"
	"custseg/form"
	"custseg/pipeline"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("predict", flag.ContinueOnError)
	configPath := flags.String("config", config.DefaultPath, "path to config.yaml")
	defaults := form.Defaults()
	age := flags.Int("age", defaults.Age, "age in years")
	education := flags.String("education", string(defaults.Education), "education level: Basic, BSc, MSc or PhD")
	familySize := flags.Int("family_size", defaults.FamilySize, "number of household members")
	income := flags.Int("income", defaults.AnnualIncome, "annual income")
	campaigns := flags.Int("campaigns", defaults.AcceptedCampaigns, "accepted campaign count")
	purchases := flags.Int("purchases", defaults.Purchases, "number of purchases")
	spending := flags.Int("spending", defaults.TotalSpending, "total spending")
	days := flags.Int("days", defaults.DaysActive, "customer days active")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	edu, err := pipeline.ParseEducation(*education)
	if err != nil {
		return fmt.Errorf("invalid education: %w", err)
	}
	customer := pipeline.Customer{
		Age:               *age,
		Education:         edu,
		FamilySize:        *familySize,
		AnnualIncome:      *income,
		AcceptedCampaigns: *campaigns,
		Purchases:         *purchases,
		TotalSpending:     *spending,
		DaysActive:        *days,
	}
	if err := form.CheckBounds(customer); err != nil {
		return err
	}

	segmentor, err := pipeline.Open(cfg.Artifacts)
	if err != nil {
		return fmt.Errorf("failed to load model artifacts: %w", err)
	}
	defer segmentor.Close()

	prediction, err := segmentor.Predict(customer)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, form.Summary(customer))
	fmt.Fprintln(out, prediction.Headline())
	fmt.Fprintf(out, "Probabilities: %s\n", prediction.FormatProbabilities())
	return nil
}
