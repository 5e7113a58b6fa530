package app

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PipelinePath string // hcl file or directory
	LogDir       string // portfolio logs are written to LogDir/<run id>

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	S3Bucket string
	S3Prefix string

	// Reuse skips nodes that already hold results when a method is re-run.
	Reuse bool

	// Report names a portfolio log directory to print instead of running a
	// pipeline.
	Report string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" && cfg.Report == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	if cfg.S3Bucket != "" && cfg.LogDir == "" {
		return nil, errors.New("publishing to S3 requires a log directory")
	}

	return &cfg, nil
}
