package config_test

import (
	"fmt"

	"github.com/ajitpratap0/pairscan/pkg/config"
)

// ExampleDefault shows the stock thresholds.
func ExampleDefault() {
	cfg := config.Default()

	fmt.Printf("Method: %s\n", cfg.Correlation.Method)
	fmt.Printf("Cutoff: %g\n", cfg.Correlation.Cutoff)
	fmt.Printf("Ratio: %g\n", cfg.Stable.Ratio)
	fmt.Printf("Output: %s\n", cfg.Output.Path)

	// Output:
	// Method: pearson
	// Cutoff: 0.3
	// Ratio: 0.9
	// Output: output.csv
}

// ExampleScanConfig_Validate shows a validation failure.
func ExampleScanConfig_Validate() {
	cfg := config.Default()
	cfg.Input.Source = "expr.tsv"
	cfg.Correlation.Method = "distance"

	fmt.Println(cfg.Validate())

	// Output:
	// config: invalid configuration: Correlation.Method must be one of [pearson spearman kendall], got distance
}
