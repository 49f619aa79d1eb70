// Package config provides configuration types and helpers for recase.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/bimmerbailey/recase/internal/preserve"
)

// Config holds the application-wide configuration.
type Config struct {
	Format       string             `mapstructure:"format"`
	Verbose      bool               `mapstructure:"verbose"`
	Log          LogConfig          `mapstructure:"log"`
	Limits       LimitsConfig       `mapstructure:"limits"`
	Preservation PreservationConfig `mapstructure:"preservation"`
	Style        StyleConfig        `mapstructure:"style"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Server       ServerConfig       `mapstructure:"server"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	JSON  bool   `mapstructure:"json"`
}

// LimitsConfig holds the size policy. Values accept units ("100KB", "5MB").
type LimitsConfig struct {
	LargeBytes string `mapstructure:"large_bytes"`
	MaxBytes   string `mapstructure:"max_bytes"`
}

// Large returns the large-tier threshold in bytes.
func (l LimitsConfig) Large() (int, error) {
	return ParseByteSize(l.LargeBytes)
}

// Max returns the hard ceiling in bytes.
func (l LimitsConfig) Max() (int, error) {
	return ParseByteSize(l.MaxBytes)
}

// PreservationConfig holds the default categories to protect and the brand
// list used for brand detection.
type PreservationConfig struct {
	preserve.Config `mapstructure:",squash"`

	// BrandNames replaces the built-in brand list when non-empty. The
	// Brands flag of the embedded Config switches brand detection on.
	BrandNames []string `mapstructure:"brand_names"`
}

// BrandList returns the configured brands or the built-in list.
func (p PreservationConfig) BrandList() []string {
	if len(p.BrandNames) == 0 {
		return preserve.DefaultBrands
	}
	return p.BrandNames
}

// StyleConfig selects the style guide provider.
type StyleConfig struct {
	// Provider is "builtin" or "ollama".
	Provider string `mapstructure:"provider"`

	// Fallback makes the ollama provider fall back to the builtin rules
	// when the model fails or its answer is rejected.
	Fallback bool `mapstructure:"fallback"`
}

// LLMConfig holds configuration for LLM providers.
type LLMConfig struct {
	// Global settings applied to all providers
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`

	Ollama OllamaConfig `mapstructure:"ollama"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host      string `mapstructure:"host"`       // API endpoint
	Model     string `mapstructure:"model"`      // Default model name
	KeepAlive string `mapstructure:"keep_alive"` // e.g., "5m"
	NumCtx    int    `mapstructure:"num_ctx"`    // Context window size
}

// ServerConfig holds HTTP server settings for `recase serve`.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Workers      int           `mapstructure:"workers"`
}

// KafkaConfig controls the job completion notifier.
type KafkaConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	Topic    string   `mapstructure:"topic"`
	ClientID string   `mapstructure:"client_id"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Format: "text",
		Log:    LogConfig{Level: "info"},
		Limits: LimitsConfig{
			LargeBytes: "100KB",
			MaxBytes:   "5MB",
		},
		Preservation: PreservationConfig{
			Config: preserve.Config{
				URLs:       true,
				Emails:     true,
				Hashtags:   true,
				Mentions:   true,
				CodeBlocks: true,
			},
		},
		Style: StyleConfig{Provider: "builtin"},
		LLM: LLMConfig{
			Ollama: OllamaConfig{
				Host:  "http://localhost:11434",
				Model: "llama3.2",
			},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			Workers:      4,
		},
		Kafka: KafkaConfig{
			Topic:    "recase.completions",
			ClientID: "recase",
		},
	}
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks values that cannot be caught by decoding alone.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Format, validation.In("text", "json", "table", "yaml")),
		validation.Field(&c.Style, validation.By(func(any) error {
			return validation.Validate(strings.ToLower(c.Style.Provider), validation.In("builtin", "ollama"))
		})),
		validation.Field(&c.Limits, validation.By(func(any) error {
			return c.Limits.validate()
		})),
		validation.Field(&c.Server, validation.By(func(any) error {
			return validation.ValidateStruct(&c.Server,
				validation.Field(&c.Server.Addr, validation.Required),
				validation.Field(&c.Server.Workers, validation.Required, validation.Min(1)),
			)
		})),
		validation.Field(&c.Kafka, validation.By(func(any) error {
			return validation.ValidateStruct(&c.Kafka,
				validation.Field(&c.Kafka.Brokers, validation.When(c.Kafka.Enabled, validation.Required)),
				validation.Field(&c.Kafka.Topic, validation.When(c.Kafka.Enabled, validation.Required)),
			)
		})),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (l LimitsConfig) validate() error {
	large, err := l.Large()
	if err != nil {
		return fmt.Errorf("large_bytes: %w", err)
	}
	maxBytes, err := l.Max()
	if err != nil {
		return fmt.Errorf("max_bytes: %w", err)
	}
	if large > maxBytes {
		return fmt.Errorf("large_bytes (%d) exceeds max_bytes (%d)", large, maxBytes)
	}
	return nil
}
