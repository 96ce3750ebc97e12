// Package config provides configuration management for pairscan.
//
// # Key Features
//
// - ScanConfig: one structure covering input, output, both scanners, performance and observability
// - YAML files with ${VAR_NAME} environment substitution
// - PAIRSCAN_* environment variables and command-line flags layered through viper
// - Struct-tag validation with go-playground/validator
//
// # Usage
//
// ## Resolution Order
//
// Defaults come first, then the YAML file, then environment variables and
// flags that were explicitly set:
//
//	cfg := config.Default()
//	if path != "" {
//		if err := config.Load(path, cfg); err != nil {
//			return err
//		}
//	}
//	config.FromViper(v, cfg)
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
//
// ## Environment Variable Substitution
//
//	# scan.yaml
//	input:
//	  source: ${DATA_DIR}/expression.tsv
//	  target: ${DATA_DIR}/phenotype.tsv
//	correlation:
//	  method: spearman
//	  cutoff: 0.8
//
// ## Environment Overrides
//
//	PAIRSCAN_WORKERS=16 PAIRSCAN_CUTOFF=0.75 pairscan corr -i expr.tsv
package config
