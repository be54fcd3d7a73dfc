// Package config loads runtime settings from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ironsheep/image-blockhash-mcp/internal/blockhash"
)

// Environment variable names.
const (
	EnvLogLevel      = "BLOCKHASH_LOG_LEVEL"
	EnvCacheDB       = "BLOCKHASH_CACHE_DB"
	EnvDefaultBits   = "BLOCKHASH_DEFAULT_BITS"
	EnvDefaultMethod = "BLOCKHASH_DEFAULT_METHOD"
	EnvHTTPAddr      = "BLOCKHASH_HTTP_ADDR"
	EnvFetchTimeout  = "BLOCKHASH_FETCH_TIMEOUT"
	EnvWorkers       = "BLOCKHASH_WORKERS"
)

// Config holds the service settings.
type Config struct {
	// LogLevel is "info" or "debug".
	LogLevel string

	// CacheDB is the SQLite hash cache path. "off" disables the cache and
	// "default" selects store.DefaultPath.
	CacheDB string

	DefaultBits   int
	DefaultMethod blockhash.Method

	// HTTPAddr is the listen address for the HTTP API, e.g. ":8080".
	HTTPAddr string

	FetchTimeout time.Duration
	Workers      int
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		DefaultBits:   64,
		DefaultMethod: blockhash.Quick,
		HTTPAddr:      ":8080",
		FetchTimeout:  30 * time.Second,
		Workers:       4,
	}
}

// Load reads settings from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads settings through getenv, starting from Default.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := Default()

	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	cfg.CacheDB = getenv(EnvCacheDB)

	if v := getenv(EnvDefaultBits); v != "" {
		bits, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvDefaultBits, err)
		}
		if err := blockhash.ValidateBits(bits); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvDefaultBits, err)
		}
		cfg.DefaultBits = bits
	}

	if v := getenv(EnvDefaultMethod); v != "" {
		m, err := blockhash.ParseMethod(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvDefaultMethod, err)
		}
		cfg.DefaultMethod = m
	}

	if v := getenv(EnvHTTPAddr); v != "" {
		cfg.HTTPAddr = v
	}

	if v := getenv(EnvFetchTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvFetchTimeout, err)
		}
		cfg.FetchTimeout = d
	}

	if v := getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s: must be a positive integer, got %q", EnvWorkers, v)
		}
		cfg.Workers = n
	}

	return cfg, nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// CacheEnabled reports whether the persistent hash cache should be opened.
func (c *Config) CacheEnabled() bool {
	return c.CacheDB != "" && c.CacheDB != "off"
}
