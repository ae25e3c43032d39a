// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Generator providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr                string `koanf:"addr"`
	HTTPReadTimeoutSec  int    `koanf:"http_read_timeout_sec"`
	HTTPWriteTimeoutSec int    `koanf:"http_write_timeout_sec"`

	// SearchAPI settings. The query templates take the subject via %s.
	SearchURL          string `koanf:"search_url"`
	SearchAPIKey       string `koanf:"search_api_key"`
	SearchEngine       string `koanf:"search_engine"`
	SearchNumResults   int    `koanf:"search_num_results"`
	SearchGeneralQuery string `koanf:"search_general_query"`
	SearchNewsQuery    string `koanf:"search_news_query"`

	// Generator settings. BaseURL applies to the openai provider only.
	GeneratorProvider    string  `koanf:"generator_provider"`
	GeneratorBaseURL     string  `koanf:"generator_base_url"`
	GeneratorAPIKey      string  `koanf:"generator_api_key"`
	GeneratorModel       string  `koanf:"generator_model"`
	GeneratorTemperature float32 `koanf:"generator_temperature"`
	// GeneratorTimeoutSec of 0 leaves the call bounded by the request context only.
	GeneratorTimeoutSec int `koanf:"generator_timeout_sec"`

	// DefaultStyle is used when a report request names none.
	DefaultStyle string `koanf:"default_style"`

	// Static dashboard credentials.
	AuthUsername  string `koanf:"auth_username"`
	AuthPassword  string `koanf:"auth_password"`
	SessionTTLMin int    `koanf:"session_ttl_min"`

	// Per-IP login rate limit.
	LoginRatePerMinute int `koanf:"login_rate_per_minute"`
	LoginBurst         int `koanf:"login_burst"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8080",
		HTTPReadTimeoutSec:   15,
		HTTPWriteTimeoutSec:  180,
		SearchURL:            "https://www.searchapi.io/api/v1/search",
		SearchEngine:         "google",
		SearchNumResults:     5,
		SearchGeneralQuery:   "%s nfl player stats career info",
		SearchNewsQuery:      "%s nfl news recent",
		GeneratorProvider:    ProviderOpenAI,
		GeneratorBaseURL:     "https://api.openai.com/v1",
		GeneratorModel:       "gpt-3.5-turbo",
		GeneratorTemperature: 0.5,
		DefaultStyle:         "character",
		AuthUsername:         "admin",
		AuthPassword:         "password",
		SessionTTLMin:        12 * 60,
		LoginRatePerMinute:   10,
		LoginBurst:           5,
	}
}

// GeneratorTimeout returns the generator timeout, zero meaning none.
func (c *Config) GeneratorTimeout() time.Duration {
	return time.Duration(c.GeneratorTimeoutSec) * time.Second
}

// SessionTTL returns how long a dashboard session stays valid.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

// UsesDefaultCredentials reports whether the built-in development login is active.
func (c *Config) UsesDefaultCredentials() bool {
	d := New()
	return c.AuthUsername == d.AuthUsername && c.AuthPassword == d.AuthPassword
}

// Validate checks invariants that loading cannot express.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SearchURL == "":
		return fmt.Errorf("%w: search_url must not be empty", ErrInvalidConfig)
	case c.SearchNumResults < 1:
		return fmt.Errorf("%w: search_num_results must be positive", ErrInvalidConfig)
	case strings.Count(c.SearchGeneralQuery, "%s") != 1 || strings.Count(c.SearchNewsQuery, "%s") != 1:
		return fmt.Errorf("%w: search queries must contain exactly one %%s", ErrInvalidConfig)
	case c.GeneratorTemperature < 0 || c.GeneratorTemperature > 2:
		return fmt.Errorf("%w: generator_temperature must be within [0,2]", ErrInvalidConfig)
	case c.GeneratorTimeoutSec < 0:
		return fmt.Errorf("%w: generator_timeout_sec must not be negative", ErrInvalidConfig)
	case c.AuthUsername == "" || c.AuthPassword == "":
		return fmt.Errorf("%w: auth credentials must not be empty", ErrInvalidConfig)
	case c.SessionTTLMin < 1:
		return fmt.Errorf("%w: session_ttl_min must be positive", ErrInvalidConfig)
	case c.LoginRatePerMinute < 1 || c.LoginBurst < 1:
		return fmt.Errorf("%w: login rate limit must be positive", ErrInvalidConfig)
	}

	switch c.GeneratorProvider {
	case ProviderOpenAI:
		if c.GeneratorBaseURL == "" {
			return fmt.Errorf("%w: generator_base_url must not be empty", ErrInvalidConfig)
		}
	case ProviderGemini:
	default:
		return fmt.Errorf("%w: unknown generator_provider %q", ErrInvalidConfig, c.GeneratorProvider)
	}
	if c.GeneratorModel == "" {
		return fmt.Errorf("%w: generator_model must not be empty", ErrInvalidConfig)
	}
	return nil
}
