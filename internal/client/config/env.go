package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "SKILLSWAP_"

type lookupFunc func(key string) (string, bool)

var osLookup lookupFunc = os.LookupEnv

// loadDotEnv exports the variables of path into the process environment.
// Variables that are already set win; a missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// parseEnv overlays cfg with SKILLSWAP_* variables.
func parseEnv(cfg *Config, lookup lookupFunc) error {
	if v, ok := lookup(envPrefix + "SERVER_URL"); ok && v != "" {
		cfg.ServerBaseURL = v
	}
	if v, ok := lookup(envPrefix + "DB_PATH"); ok && v != "" {
		cfg.TokenDBPath = v
	}
	if v, ok := lookup(envPrefix + "LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(envPrefix + "LOG_FORMAT"); ok && v != "" {
		cfg.LogFormat = v
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{envPrefix + "REQUEST_TIMEOUT", &cfg.RequestTimeout},
		{envPrefix + "ONLINE_CHECK_INTERVAL", &cfg.OnlineCheckInterval},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if v, ok := lookup(envPrefix + "RATE_LIMIT"); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT: %w", envPrefix, err)
		}
		cfg.RateLimit = rps
	}
	return nil
}
