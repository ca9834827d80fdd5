// Package config loads runtime settings: built-in defaults, then an optional
// YAML file, then ROSTER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration for the roster server.
type Config struct {
	Port     string `yaml:"port"`
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`

	// RateLimit caps mutating requests per client IP per minute. 0 disables it.
	RateLimit int `yaml:"rate_limit"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Port:      "10000",
		DBPath:    "roster.db",
		LogLevel:  "info",
		RateLimit: 60,
	}
}

// Load builds a Config. path may be empty, in which case no file is read.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("ROSTER_PORT"); ok && v != "" {
		c.Port = v
	}
	if v, ok := lookup("ROSTER_DB_PATH"); ok && v != "" {
		c.DBPath = v
	}
	if v, ok := lookup("ROSTER_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("ROSTER_RATE_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("ROSTER_RATE_LIMIT: %w", err)
		}
		c.RateLimit = n
	}
	return nil
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate_limit must be >= 0, got %d", c.RateLimit))
	}
	return errors.Join(errs...)
}
