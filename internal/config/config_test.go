package config

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	assert.Equal(t, 8640, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "planforged", cfg.Observability.ServiceName)
	assert.Equal(t, "grpc", cfg.Observability.Protocol)
	assert.Equal(t, 5, cfg.Evaluation.ExpectedPhases)
	assert.Equal(t, 3, cfg.Refine.MaxIterations)
	assert.Equal(t, 2*time.Minute, cfg.Refine.DraftTimeout.Duration())
	assert.Equal(t, "https://api.anthropic.com", cfg.Generator.BaseURL)
	assert.NotEmpty(t, cfg.Generator.Model)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.Server.Port = 9000
	cfg.Logging.Level = "debug"
	cfg.Evaluation.ExpectedPhases = 7

	applyDefaults(&cfg)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 7, cfg.Evaluation.ExpectedPhases)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		var cfg Config
		applyDefaults(&cfg)
		return &cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "bad otlp protocol",
			mutate:  func(c *Config) { c.Observability.Protocol = "carrier-pigeon" },
			wantErr: "observability.protocol",
		},
		{
			name:    "non-positive phases",
			mutate:  func(c *Config) { c.Evaluation.ExpectedPhases = 0 },
			wantErr: "evaluation.expected_phases",
		},
		{
			name:    "non-positive iterations",
			mutate:  func(c *Config) { c.Refine.MaxIterations = 0 },
			wantErr: "refine.max_iterations",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.Refine.RequestsPerMinute = -1 },
			wantErr: "refine.requests_per_minute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-5s")), "negative durations rejected")
	assert.Error(t, d.UnmarshalText([]byte("soon")))

	out, err := Duration(time.Minute).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m0s"`, string(out))
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("sk-ant-very-secret")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "sk-ant-very-secret", s.Value())
	assert.True(t, s.IsSet())

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"[REDACTED]"`, string(out))

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())

	var parsed Secret
	require.NoError(t, json.Unmarshal([]byte(`"raw-value"`), &parsed))
	assert.Equal(t, "raw-value", parsed.Value())
}
