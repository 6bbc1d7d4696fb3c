// Package config loads the application configuration.
//
// Values come from three layers, highest priority first:
//
//	1. KOVAAK_* environment variables (envconfig), e.g. KOVAAK_EXTRACTION_STATS_DIR
//	2. a YAML file (kovaakstats.yaml in the working directory unless another is given)
//	3. defaults from struct tags, plus the built-in Voltaic scenario list
//
// Load never validates; call Validate after applying command line overrides.
//
// Example kovaakstats.yaml:
//
//	extraction:
//	  stats_dir: "C:/Program Files (x86)/Steam/steamapps/common/FPSAimTrainer/FPSAimTrainer/stats"
//	  failure_policy: partial
//	  scenarios:
//	    - Air Voltaic Easy
//	    - Pasu Voltaic Easy
//	paths:
//	  output_file: data.json
//	  xlsx_file: data.xlsx
package config
