// Package config loads cardlink settings from YAML over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

var validate = validator.New()

// Config is the full cardlink configuration.
type Config struct {
	Routing RoutingConfig `yaml:"routing"`
	Debug   DebugConfig   `yaml:"debug"`
	Storage StorageConfig `yaml:"storage"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type RoutingConfig struct {
	// Margin is the clearance kept around obstacles by bent shapes.
	Margin float64 `yaml:"margin" validate:"gt=0"`
	// CacheSize bounds the result cache. Zero disables caching.
	CacheSize int `yaml:"cacheSize" validate:"gte=0"`
}

type DebugConfig struct {
	MaxSessions int `yaml:"maxSessions" validate:"gte=1"`
}

type StorageConfig struct {
	Dir      string `yaml:"dir" validate:"required_unless=InMemory true"`
	InMemory bool   `yaml:"inMemory"`
}

type ViewerConfig struct {
	PollInterval time.Duration `yaml:"pollInterval" validate:"gte=100ms"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

type MetricsConfig struct {
	Namespace string `yaml:"namespace" validate:"omitempty,max=64,excludesall= -."`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Routing: RoutingConfig{Margin: 20, CacheSize: 256},
		Debug:   DebugConfig{MaxSessions: 50},
		Storage: StorageConfig{Dir: DefaultStoreDir()},
		Viewer:  ViewerConfig{PollInterval: time.Second},
		Log:     LogConfig{Level: "info"},
		Metrics: MetricsConfig{Namespace: "cardlink"},
	}
}

// DefaultStoreDir returns the per-user directory for the debug store.
func DefaultStoreDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "cardlink")
	}
	return ".cardlink"
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field constraint.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
}

// SlogLevel maps the configured level name to a slog.Level.
func (c LogConfig) SlogLevel() slog.Level {
	return ParseLevel(c.Level)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
