// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, environment variables or CLI flags.
type Config struct {
	// Backend
	APIURL         string `json:"api_url,omitempty"`         // Recommendation backend base URL
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"` // Per-call backend timeout

	// Persistence
	Store           string `json:"store,omitempty"`             // memory, file, redis or postgres
	StatePath       string `json:"state_path,omitempty"`        // JSON state file for the file store
	Namespace       string `json:"namespace,omitempty"`         // Per-user key prefix for shared stores
	DatabaseURL     string `json:"database_url,omitempty"`      // PostgreSQL connection URL
	RedisAddr       string `json:"redis_addr,omitempty"`        // host:port
	RedisPassword   string `json:"redis_password,omitempty"`    // Redis AUTH password
	RedisDB         int    `json:"redis_db,omitempty"`          // Redis logical database
	RedisTTLSeconds int    `json:"redis_ttl_seconds,omitempty"` // 0 keeps values forever

	// Behavior
	OLevelCap float64 `json:"olevel_cap,omitempty"` // Ceiling for O-level derived levels
	TopJobs   int     `json:"top_jobs,omitempty"`   // Jobs requested per recommendation
	LogMode   string  `json:"log_mode,omitempty"`   // dev or prod
	Verbose   bool    `json:"verbose,omitempty"`    // Print detailed debug information
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		APIURL:         "http://localhost:8000",
		TimeoutSeconds: 15,
		Store:          StoreFile,
		StatePath:      filepath.Join(".pathway", "state.json"),
		Namespace:      "default",
		OLevelCap:      8,
		TopJobs:        5,
		LogMode:        "dev",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables. Unset variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*dst = v
		}
	}
	str("PATHWAY_API_URL", &c.APIURL)
	str("PATHWAY_STORE", &c.Store)
	str("PATHWAY_STATE_PATH", &c.StatePath)
	str("PATHWAY_NAMESPACE", &c.Namespace)
	str("DATABASE_URL", &c.DatabaseURL)
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	str("LOG_MODE", &c.LogMode)

	if v := strings.TrimSpace(getenv("OLEVEL_CAP")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config error: OLEVEL_CAP must be a number: %w", err)
		}
		c.OLevelCap = f
	}
	if v := strings.TrimSpace(getenv("REDIS_TTL")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: REDIS_TTL must be whole seconds: %w", err)
		}
		c.RedisTTLSeconds = n
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	switch c.Store {
	case "", StoreMemory, StoreFile, StoreRedis, StorePostgres:
	default:
		return fmt.Errorf("config error: unknown store %q", c.Store)
	}
	if c.Store == StorePostgres && c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required for the postgres store")
	}
	if c.Store == StoreRedis && c.RedisAddr == "" {
		return fmt.Errorf("config error: 'redis_addr' is required for the redis store")
	}

	// Validate numeric ranges
	if c.OLevelCap < 0 || c.OLevelCap > 10 {
		return fmt.Errorf("config error: 'olevel_cap' must be within 0-10")
	}
	if c.TopJobs < 0 || c.TopJobs > 50 {
		return fmt.Errorf("config error: 'top_jobs' must be within 1-50")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'timeout_seconds' must be non-negative")
	}
	if c.RedisTTLSeconds < 0 {
		return fmt.Errorf("config error: 'redis_ttl_seconds' must be non-negative")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.Store == "" {
		result.Store = defaults.Store
	}
	if result.StatePath == "" {
		result.StatePath = defaults.StatePath
	}
	if result.Namespace == "" {
		result.Namespace = defaults.Namespace
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
	}
	if result.RedisPassword == "" {
		result.RedisPassword = defaults.RedisPassword
	}
	if result.LogMode == "" {
		result.LogMode = defaults.LogMode
	}

	// Numeric fields: use default if zero
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.TopJobs == 0 {
		result.TopJobs = defaults.TopJobs
	}
	if result.OLevelCap == 0 {
		result.OLevelCap = defaults.OLevelCap
	}
	if result.RedisDB == 0 {
		result.RedisDB = defaults.RedisDB
	}
	if result.RedisTTLSeconds == 0 {
		result.RedisTTLSeconds = defaults.RedisTTLSeconds
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Timeout returns the backend timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RedisTTL returns the redis value lifetime as a duration.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.RedisTTLSeconds) * time.Second
}
