// Package config provides the configuration surface for pairscan scans.
// A single ScanConfig value carries everything a scan needs, organized into
// sections:
//   - Input: source and target tables and how to parse them
//   - Output: result path and encoding
//   - Correlation: mode, method, operator and cutoff for correlation scans
//   - Stable: forward and reverse ratio thresholds for stable scans
//   - Performance: worker count and block size
//   - Observability: logging, metrics and tracing
//
// Example usage:
//
//	cfg := config.Default()
//	cfg.Input.Source = "expr.tsv"
//	cfg.Correlation.Cutoff = 0.8
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ajitpratap0/pairscan/pkg/errors"
)

// ScanConfig is the complete configuration of one scan. It is loaded once,
// validated, and then treated as immutable.
type ScanConfig struct {
	// Name labels the scan in logs and metrics
	Name string `yaml:"name" json:"name"`

	Input         InputConfig         `yaml:"input" json:"input"`
	Output        OutputConfig        `yaml:"output" json:"output"`
	Correlation   CorrelationConfig   `yaml:"correlation" json:"correlation"`
	Stable        StableConfig        `yaml:"stable" json:"stable"`
	Performance   PerformanceConfig   `yaml:"performance" json:"performance"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// InputConfig names the input tables.
type InputConfig struct {
	// Source is the primary feature table
	Source string `yaml:"source" json:"source" validate:"required"`
	// Target is the optional second table (cross/combination modes, reverse validation)
	Target string `yaml:"target" json:"target"`
	// NoHeader treats the first row as data
	NoHeader bool `yaml:"no_header" json:"no_header"`
	// NoIndex treats the first column as data
	NoIndex bool `yaml:"no_index" json:"no_index"`
	// Sheet selects the worksheet of .xlsx inputs
	Sheet string `yaml:"sheet" json:"sheet"`
}

// OutputConfig controls where results go.
type OutputConfig struct {
	// Path of the result table; its extension selects the encoding
	Path string `yaml:"path" json:"path" validate:"required"`
	// CompressionLevel applies when Path ends in a compression suffix
	CompressionLevel string `yaml:"compression_level" json:"compression_level" validate:"omitempty,oneof=fastest default better best"`
}

// CorrelationConfig holds the correlation scan settings.
type CorrelationConfig struct {
	// Mode is within, cross or combination; empty picks from the inputs
	Mode string `yaml:"mode" json:"mode" validate:"omitempty,oneof=within cross combination"`
	// Method is pearson, spearman or kendall
	Method string `yaml:"method" json:"method" validate:"oneof=pearson spearman kendall"`
	// Operation combines source pairs in combination mode
	Operation string `yaml:"operation" json:"operation" validate:"oneof=add subtract multiply divide"`
	// Cutoff is the absolute correlation a pair must exceed
	Cutoff float64 `yaml:"cutoff" json:"cutoff" validate:"gte=-1,lte=1"`
	// SkipNaN makes pearson ignore samples where either value is missing
	SkipNaN bool `yaml:"skip_nan" json:"skip_nan"`
}

// StableConfig holds the stable-order scan thresholds.
type StableConfig struct {
	// Ratio is the fraction of samples in which one feature must exceed the other
	Ratio float64 `yaml:"ratio" json:"ratio" validate:"gte=0,lte=1"`
	// ReverseRatio is the fraction required in the target table, reversed
	ReverseRatio float64 `yaml:"reverse_ratio" json:"reverse_ratio" validate:"gte=0,lte=1"`
}

// PerformanceConfig controls scan parallelism.
type PerformanceConfig struct {
	// Workers is the number of scan goroutines (0 = NumCPU)
	Workers int `yaml:"workers" json:"workers" validate:"gte=0"`
	// BlockSize is the number of outer indices per work unit
	BlockSize int `yaml:"block_size" json:"block_size" validate:"gte=0"`
	// MemoryCheck compares the input footprint against host memory before scanning
	MemoryCheck bool `yaml:"memory_check" json:"memory_check"`
}

// ObservabilityConfig contains logging, metrics and tracing settings.
type ObservabilityConfig struct {
	// LogLevel is debug, info, warn or error
	LogLevel string `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
	// LogEncoding is console or json
	LogEncoding string `yaml:"log_encoding" json:"log_encoding" validate:"oneof=console json"`
	// MetricsFile receives the prometheus text exposition after the scan
	MetricsFile string `yaml:"metrics_file" json:"metrics_file"`
	// EnableTracing exports spans as JSON to stderr
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing"`
	// TracingSampleRate is the fraction of traces kept
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate" validate:"gte=0,lte=1"`
}

// Default returns a ScanConfig with the stock thresholds: cutoff 0.3,
// ratio and reverse ratio 0.9, pearson, subtract, output.csv.
func Default() *ScanConfig {
	return &ScanConfig{
		Name: "pairscan",
		Output: OutputConfig{
			Path:             "output.csv",
			CompressionLevel: "default",
		},
		Correlation: CorrelationConfig{
			Method:    "pearson",
			Operation: "subtract",
			Cutoff:    0.3,
		},
		Stable: StableConfig{
			Ratio:        0.9,
			ReverseRatio: 0.9,
		},
		Performance: PerformanceConfig{
			Workers:     runtime.NumCPU(),
			BlockSize:   32,
			MemoryCheck: true,
		},
		Observability: ObservabilityConfig{
			LogLevel:          "info",
			LogEncoding:       "console",
			TracingSampleRate: 1.0,
		},
	}
}

var validate = validator.New()

// Validate checks the configuration and returns an ErrorTypeConfig error
// naming every offending field.
func (c *ScanConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid configuration")
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(errors.ErrorTypeConfig, "invalid configuration: "+strings.Join(msgs, "; ")).
		WithDetail("fields", len(verrs))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "ScanConfig.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s, got %v", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// GetWorkers returns the number of workers, ensuring it's at least 1
func (p *PerformanceConfig) GetWorkers() int {
	if p.Workers <= 0 {
		return runtime.NumCPU()
	}
	return p.Workers
}

// HasTarget reports whether a second table was configured
func (i *InputConfig) HasTarget() bool {
	return i.Target != ""
}
