// Package config loads the shp2geojson configuration file.
//
// Configuration comes from a single YAML file named by the --config flag or
// the SHP2GEOJSON_CONFIG environment variable. Without either, defaults apply.
// Command-line flags override file values.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "SHP2GEOJSON_CONFIG"

// Config is the shp2geojson configuration.
type Config struct {
	// CacheSize is the number of results kept in the reader's LRU cache.
	CacheSize int `yaml:"cache_size"`

	// Whitelist lists extra archive member extensions returned as raw layers.
	Whitelist []string `yaml:"whitelist"`

	// EPSG forces the spatial reference of every layer.
	EPSG string `yaml:"epsg"`

	HTTP HTTPConfig `yaml:"http"`
	Log  LogConfig  `yaml:"log"`
}

// HTTPConfig configures remote fetches.
type HTTPConfig struct {
	// Timeout bounds each request. Zero disables the timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		CacheSize: 20,
		HTTP:      HTTPConfig{Timeout: 30 * time.Second},
		Log:       LogConfig{Level: "warn", Format: "text"},
	}
}

// Load loads the file named by SHP2GEOJSON_CONFIG, or returns defaults when
// the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path over the defaults and validates it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize))
	}
	if c.HTTP.Timeout < 0 {
		errs = append(errs, fmt.Errorf("http.timeout must not be negative, got %s", c.HTTP.Timeout))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ParseLevel converts a level name to a slog.Level. An empty name is warn.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// Logger builds a logger writing to w with the configured level and format.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
