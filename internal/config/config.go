package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"txreport"`
	}

	Paths struct {
		// Logs is the directory scanned recursively for .gz archives.
		Logs string `envconfig:"LOGS_DIR" default:"logs"`
		// Extracted receives the flattened plain-text log files.
		Extracted string `envconfig:"EXTRACTED_DIR" default:"logs_extracted"`
		// Reports receives the six generated CSV reports.
		Reports string `envconfig:"REPORTS_DIR" default:"reports"`
	}

	Schema struct {
		// File optionally overrides the built-in log-line schema (YAML).
		File string `envconfig:"SCHEMA_FILE"`
	}

	Metrics struct {
		// File, when set, receives a Prometheus textfile dump after each run.
		File string `envconfig:"METRICS_FILE"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
