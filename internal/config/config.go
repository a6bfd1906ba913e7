// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.scout/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// API keys are deliberately absent: they are per-session secrets supplied
// through the API, never through configuration.
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel errors for configuration validation.
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidAddr indicates the listen address is malformed.
	ErrInvalidAddr = errors.New("invalid listen address")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidMaxTurns indicates the max turns value is out of range.
	ErrInvalidMaxTurns = errors.New("invalid max turns")

	// ErrInvalidTurnTimeout indicates the turn timeout is out of range.
	ErrInvalidTurnTimeout = errors.New("invalid turn timeout")

	// ErrInvalidSessionTTL indicates the session idle TTL is out of range.
	ErrInvalidSessionTTL = errors.New("invalid session idle TTL")

	// ErrInvalidRateLimit indicates a rate limit value is out of range.
	ErrInvalidRateLimit = errors.New("invalid rate limit")

	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Limits for validated fields.
const (
	// MaxTurnsLimit is the absolute maximum for the tool-calling loop.
	MaxTurnsLimit = 25

	// MaxTurnTimeout is the absolute maximum per-turn budget.
	MaxTurnTimeout = 10 * time.Minute
)

// Config stores application configuration.
type Config struct {
	// HTTP server
	Addr        string   `mapstructure:"addr" json:"addr"`
	TrustProxy  bool     `mapstructure:"trust_proxy" json:"trust_proxy"` // Trust X-Real-IP/X-Forwarded-For (set true behind reverse proxy)
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`

	// Agent
	ModelName       string `mapstructure:"model_name" json:"model_name"` // Provider-qualified model (e.g. "openai/gpt-4o-mini")
	MaxTurns        int    `mapstructure:"max_turns" json:"max_turns"`
	TurnTimeoutSecs int    `mapstructure:"turn_timeout_seconds" json:"turn_timeout_seconds"`

	// Sessions
	SessionIdleMins int `mapstructure:"session_idle_minutes" json:"session_idle_minutes"`

	// Rate limiting (per client IP)
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" json:"rate_limit_burst"`

	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"` // debug, info, warn, error
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`

	// Observability (see observability.go)
	Otel OtelConfig `mapstructure:"otel" json:"otel"`
}

// TurnTimeout returns the per-turn budget as a duration.
func (c *Config) TurnTimeout() time.Duration {
	return time.Duration(c.TurnTimeoutSecs) * time.Second
}

// SessionIdleTTL returns the idle eviction TTL as a duration.
func (c *Config) SessionIdleTTL() time.Duration {
	return time.Duration(c.SessionIdleMins) * time.Minute
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".scout")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)

	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// HTTP defaults
	v.SetDefault("addr", ":8080")
	v.SetDefault("trust_proxy", false)
	v.SetDefault("cors_origins", []string{})

	// Agent defaults
	v.SetDefault("model_name", "openai/gpt-4o-mini")
	v.SetDefault("max_turns", 5)
	v.SetDefault("turn_timeout_seconds", 120)

	// Session defaults
	v.SetDefault("session_idle_minutes", 30)

	// Rate limit defaults: sustained 5 req/s per IP, burst of 20
	v.SetDefault("rate_limit_rps", 5.0)
	v.SetDefault("rate_limit_burst", 20)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", true)

	// Observability defaults
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.agent_host", "localhost:4318")
	v.SetDefault("otel.service_name", "scout")
	v.SetDefault("otel.environment", "dev")
}

// Validate checks all configuration values. Fail-fast at startup.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}
	if c.Addr == "" || !strings.Contains(c.Addr, ":") {
		return fmt.Errorf("%w: %q must contain a port", ErrInvalidAddr, c.Addr)
	}
	if c.ModelName == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidModelName)
	}
	if !strings.Contains(c.ModelName, "/") {
		return fmt.Errorf("%w: %q must be provider-qualified (e.g. \"openai/gpt-4o-mini\")",
			ErrInvalidModelName, c.ModelName)
	}
	if c.MaxTurns < 1 || c.MaxTurns > MaxTurnsLimit {
		return fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidMaxTurns, MaxTurnsLimit, c.MaxTurns)
	}
	if c.TurnTimeoutSecs < 1 || c.TurnTimeout() > MaxTurnTimeout {
		return fmt.Errorf("%w: must be between 1s and %s, got %ds",
			ErrInvalidTurnTimeout, MaxTurnTimeout, c.TurnTimeoutSecs)
	}
	if c.SessionIdleMins < 1 {
		return fmt.Errorf("%w: must be at least 1 minute, got %d", ErrInvalidSessionTTL, c.SessionIdleMins)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("%w: rps must be positive, got %g", ErrInvalidRateLimit, c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("%w: burst must be at least 1, got %d", ErrInvalidRateLimit, c.RateLimitBurst)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}
