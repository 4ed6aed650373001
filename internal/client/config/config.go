package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the SkillSwap CLI.
type Config struct {
	// ServerBaseURL is the backend base URL, optionally with a path prefix.
	ServerBaseURL string
	// TokenDBPath is the SQLite file holding the persisted session token.
	TokenDBPath string
	// RequestTimeout bounds a single backend request.
	RequestTimeout time.Duration
	// OnlineCheckInterval is how often the CLI probes GET /health.
	OnlineCheckInterval time.Duration
	// RateLimit caps outgoing requests per second; 0 disables it.
	RateLimit float64
	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000"
	c.TokenDBPath = "skillswap.db"
	c.RequestTimeout = 15 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.RateLimit = 0
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// LoadConfig builds a Config from defaults, then the config file (if any),
// then the environment (including a .env file in the working directory),
// then command-line flags. Later sources win.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("dotenv: %w", err)
	}
	if err := parseEnv(cfg, osLookup); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerBaseURL == "" {
		return errors.New("server base URL is empty")
	}
	if c.TokenDBPath == "" {
		return errors.New("token database path is empty")
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %v", c.RateLimit)
	}
	return nil
}
