package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/pairscan/pkg/errors"
)

func validConfig() *ScanConfig {
	cfg := Default()
	cfg.Input.Source = "expr.tsv"
	return cfg
}

func TestDefaultIsValidOnceSourceIsSet(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfig, errors.TypeOf(err))
	assert.Contains(t, err.Error(), "Input.Source is required")

	assert.NoError(t, validConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ScanConfig)
		wantErr string
	}{
		{"bad mode", func(c *ScanConfig) { c.Correlation.Mode = "diagonal" }, "Correlation.Mode"},
		{"bad operation", func(c *ScanConfig) { c.Correlation.Operation = "modulo" }, "Correlation.Operation"},
		{"cutoff above one", func(c *ScanConfig) { c.Correlation.Cutoff = 1.5 }, "Correlation.Cutoff"},
		{"negative ratio", func(c *ScanConfig) { c.Stable.Ratio = -0.1 }, "Stable.Ratio"},
		{"negative workers", func(c *ScanConfig) { c.Performance.Workers = -2 }, "Performance.Workers"},
		{"bad encoding", func(c *ScanConfig) { c.Observability.LogEncoding = "xml" }, "Observability.LogEncoding"},
		{"no output", func(c *ScanConfig) { c.Output.Path = "" }, "Output.Path is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("PAIRSCAN_TEST_DIR", "/data")

	path := filepath.Join(t.TempDir(), "scan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input:
  source: ${PAIRSCAN_TEST_DIR}/expr.tsv
correlation:
  method: kendall
  cutoff: 0.75
performance:
  workers: 3
`), 0o600))

	cfg := Default()
	require.NoError(t, Load(path, cfg))

	assert.Equal(t, "/data/expr.tsv", cfg.Input.Source)
	assert.Equal(t, "kendall", cfg.Correlation.Method)
	assert.Equal(t, 0.75, cfg.Correlation.Cutoff)
	assert.Equal(t, 3, cfg.Performance.Workers)
	// untouched sections keep defaults
	assert.Equal(t, "subtract", cfg.Correlation.Operation)
	assert.Equal(t, 0.9, cfg.Stable.Ratio)
}

func TestLoadErrors(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "missing.yaml"), Default())
	assert.Equal(t, errors.ErrorTypeConfig, errors.TypeOf(err))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input: [unterminated"), 0o600))
	err = Load(path, Default())
	assert.Equal(t, errors.ErrorTypeConfig, errors.TypeOf(err))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := validConfig()
	cfg.Stable.ReverseRatio = 0.8
	require.NoError(t, Save(path, cfg))

	loaded := &ScanConfig{}
	require.NoError(t, Load(path, loaded))
	assert.Equal(t, cfg, loaded)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("A", "x")
	assert.Equal(t, "x/y/", substituteEnvVars("${A}/y/${PAIRSCAN_UNSET_VAR}"))
	assert.Equal(t, "keep ${open", substituteEnvVars("keep ${open"))
}

func TestFromViper(t *testing.T) {
	t.Setenv("PAIRSCAN_WORKERS", "7")
	t.Setenv("PAIRSCAN_REVERSE_RATIO", "0.65")

	v := NewViper()
	v.Set("method", "spearman")

	cfg := validConfig()
	cfg.Correlation.Cutoff = 0.5
	FromViper(v, cfg)

	assert.Equal(t, 7, cfg.Performance.Workers)
	assert.Equal(t, 0.65, cfg.Stable.ReverseRatio)
	assert.Equal(t, "spearman", cfg.Correlation.Method)
	assert.Equal(t, 0.5, cfg.Correlation.Cutoff, "unset keys keep their value")
}
