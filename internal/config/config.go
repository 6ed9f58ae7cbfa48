// Package config provides configuration loading for planforged.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the daemon.
type Config struct {
	Server        ServerConfig        `koanf:"server" json:"server"`
	Logging       LoggingConfig       `koanf:"logging" json:"logging"`
	Observability ObservabilityConfig `koanf:"observability" json:"observability"`
	Evaluation    EvaluationConfig    `koanf:"evaluation" json:"evaluation"`
	Refine        RefineConfig        `koanf:"refine" json:"refine"`
	Generator     GeneratorConfig     `koanf:"generator" json:"generator"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Port is the HTTP listen port (default: 8640).
	Port int `koanf:"port" json:"port"`

	// ShutdownTimeout bounds graceful shutdown (default: 10s).
	ShutdownTimeout Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default: info).
	Level string `koanf:"level" json:"level"`

	// Format is json or console (default: json).
	Format string `koanf:"format" json:"format"`
}

// ObservabilityConfig configures OpenTelemetry export.
type ObservabilityConfig struct {
	// ServiceName identifies this process in traces and metrics
	// (default: planforged).
	ServiceName string `koanf:"service_name" json:"service_name"`

	// Endpoint is the OTLP collector endpoint; empty disables export.
	Endpoint string `koanf:"endpoint" json:"endpoint"`

	// Protocol is grpc or http (default: grpc).
	Protocol string `koanf:"protocol" json:"protocol"`

	// Insecure disables TLS on the exporter connection.
	Insecure bool `koanf:"insecure" json:"insecure"`
}

// EvaluationConfig configures the evaluation pipeline.
type EvaluationConfig struct {
	// ExpectedPhases is the required phase count (default: 5).
	ExpectedPhases int `koanf:"expected_phases" json:"expected_phases"`
}

// RefineConfig configures the refinement loop.
type RefineConfig struct {
	// MaxIterations bounds draft attempts (default: 3).
	MaxIterations int `koanf:"max_iterations" json:"max_iterations"`

	// DraftTimeout bounds one generator call (default: 2m).
	DraftTimeout Duration `koanf:"draft_timeout" json:"draft_timeout"`

	// RequestsPerMinute throttles generator calls; zero disables.
	RequestsPerMinute int `koanf:"requests_per_minute" json:"requests_per_minute"`

	// AcceptBestEffort returns the final rejected plan instead of an
	// error when the budget runs out.
	AcceptBestEffort bool `koanf:"accept_best_effort" json:"accept_best_effort"`
}

// GeneratorConfig configures the Anthropic-backed draft generator.
type GeneratorConfig struct {
	// APIKey authenticates against the Anthropic API. Refinement
	// endpoints are disabled when unset.
	APIKey Secret `koanf:"api_key" json:"api_key"`

	// BaseURL overrides the API endpoint (default: https://api.anthropic.com).
	BaseURL string `koanf:"base_url" json:"base_url"`

	// Model selects the model for drafting.
	Model string `koanf:"model" json:"model"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8640
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "planforged"
	}
	if cfg.Observability.Protocol == "" {
		cfg.Observability.Protocol = "grpc"
	}

	if cfg.Evaluation.ExpectedPhases == 0 {
		cfg.Evaluation.ExpectedPhases = 5
	}

	if cfg.Refine.MaxIterations == 0 {
		cfg.Refine.MaxIterations = 3
	}
	if cfg.Refine.DraftTimeout == 0 {
		cfg.Refine.DraftTimeout = Duration(2 * time.Minute)
	}

	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "claude-3-5-sonnet-20241022"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	switch c.Observability.Protocol {
	case "grpc", "http":
	default:
		return fmt.Errorf("observability.protocol must be grpc or http, got %q", c.Observability.Protocol)
	}

	if c.Evaluation.ExpectedPhases < 1 {
		return fmt.Errorf("evaluation.expected_phases must be positive, got %d", c.Evaluation.ExpectedPhases)
	}

	if c.Refine.MaxIterations < 1 {
		return fmt.Errorf("refine.max_iterations must be positive, got %d", c.Refine.MaxIterations)
	}
	if c.Refine.RequestsPerMinute < 0 {
		return fmt.Errorf("refine.requests_per_minute cannot be negative, got %d", c.Refine.RequestsPerMinute)
	}

	return nil
}
