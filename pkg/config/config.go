// Package config provides configuration structures and loading logic for the
// tonedown service.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultScoringEndpoint is the toxicity-scoring API used when none is
// configured.
const DefaultScoringEndpoint = "https://api.toxiscore.io/v1/score"

// Config holds the global configuration for the service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Moderation ModerationConfig `yaml:"moderation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// ModerationConfig holds configuration for the scoring service client.
type ModerationConfig struct {
	// Endpoint is the scoring API URL.
	Endpoint string `yaml:"endpoint"`
	// APIKey is the scoring credential. It is deliberately not required at
	// startup: the server runs without it and moderation requests fail with
	// a configuration error until it is provided.
	APIKey string `yaml:"api_key"`
	// Timeout bounds a single upstream scoring call.
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig holds configuration for logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig holds configuration for OpenTelemetry tracing.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
}

// Load reads configuration from a file and applies environment variable
// overrides. An empty path skips the file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := &Config{
		// Defaults
		Server: ServerConfig{
			Addr:         ":3000",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Moderation: ModerationConfig{
			Endpoint: DefaultScoringEndpoint,
			Timeout:  10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		//nolint:gosec // Config file path is controlled by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("TONEDOWN_ADDR"); val != "" {
		cfg.Server.Addr = val
	}
	if val := os.Getenv("TONEDOWN_PORT"); val != "" {
		cfg.Server.Addr = ":" + val
	}

	if val := os.Getenv("TOXICITY_API_KEY"); val != "" {
		cfg.Moderation.APIKey = val
	}
	if val := os.Getenv("TONEDOWN_SCORING_ENDPOINT"); val != "" {
		cfg.Moderation.Endpoint = val
	}

	if val := os.Getenv("TONEDOWN_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("TONEDOWN_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	if val := os.Getenv("TONEDOWN_OTLP_ENDPOINT"); val != "" {
		cfg.Telemetry.OTLPEndpoint = val
	}
	if val := os.Getenv("TONEDOWN_OTLP_INSECURE"); val == "true" {
		cfg.Telemetry.Insecure = true
	}
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Moderation.Endpoint == "" {
		return fmt.Errorf("moderation.endpoint is required")
	}
	if c.Moderation.Timeout < 0 {
		return fmt.Errorf("moderation.timeout must not be negative")
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}
