package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. PAIRSCAN_WORKERS
const EnvPrefix = "PAIRSCAN"

// NewViper returns a viper instance reading PAIRSCAN_* environment variables.
// Flag names map to variables by upper-casing and replacing '-' with '_'.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// FromViper overlays every key that was explicitly set, by flag or by
// environment, onto cfg. Flag defaults are not applied, so values from a
// config file survive unless overridden.
func FromViper(v *viper.Viper, cfg *ScanConfig) {
	setString(v, "input", &cfg.Input.Source)
	setString(v, "target", &cfg.Input.Target)
	setBool(v, "no-header", &cfg.Input.NoHeader)
	setBool(v, "no-index", &cfg.Input.NoIndex)
	setString(v, "sheet", &cfg.Input.Sheet)

	setString(v, "output", &cfg.Output.Path)
	setString(v, "compression-level", &cfg.Output.CompressionLevel)

	setString(v, "mode", &cfg.Correlation.Mode)
	setString(v, "method", &cfg.Correlation.Method)
	setString(v, "operation", &cfg.Correlation.Operation)
	setFloat(v, "cutoff", &cfg.Correlation.Cutoff)
	setBool(v, "skip-nan", &cfg.Correlation.SkipNaN)

	setFloat(v, "ratio", &cfg.Stable.Ratio)
	setFloat(v, "reverse-ratio", &cfg.Stable.ReverseRatio)

	setInt(v, "workers", &cfg.Performance.Workers)
	setInt(v, "block-size", &cfg.Performance.BlockSize)
	setBool(v, "memory-check", &cfg.Performance.MemoryCheck)

	setString(v, "log-level", &cfg.Observability.LogLevel)
	setString(v, "log-encoding", &cfg.Observability.LogEncoding)
	setString(v, "metrics-file", &cfg.Observability.MetricsFile)
	setBool(v, "trace", &cfg.Observability.EnableTracing)
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setBool(v *viper.Viper, key string, dst *bool) {
	if v.IsSet(key) {
		*dst = v.GetBool(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func setFloat(v *viper.Viper, key string, dst *float64) {
	if v.IsSet(key) {
		*dst = v.GetFloat64(key)
	}
}
