// Package config loads fskit settings from defaults, an optional YAML file and
// FSKIT_* environment variables, in that order.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/taigrr/fskit/internal/logging"
	"github.com/taigrr/fskit/internal/parentsearch"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FileName is the config file searched for upward from the working directory.
const FileName = ".fskit.yaml"

// EnvPrefix prefixes every environment override, e.g. FSKIT_LOG_LEVEL.
const EnvPrefix = "FSKIT"

// Config holds all fskit settings.
type Config struct {
	Log     logging.Config `yaml:"log"`
	Listing ListingConfig  `yaml:"listing"`
	Deltree DeltreeConfig  `yaml:"deltree"`
	Copy    CopyConfig     `yaml:"copy"`

	// Source is the file the config was read from, empty when none was found.
	Source string `yaml:"-" ignored:"true"`
}

// ListingConfig holds directory listing settings.
type ListingConfig struct {
	// ProbeTimeout bounds each metadata probe. Zero disables the bound.
	ProbeTimeout time.Duration `yaml:"probe_timeout" split_words:"true"`
}

// DeltreeConfig holds recursive delete settings.
type DeltreeConfig struct {
	MaxBusyTries int           `yaml:"max_busy_tries" split_words:"true"`
	EMFILEWait   time.Duration `yaml:"emfile_wait" split_words:"true"`
}

// CopyConfig holds copy settings.
type CopyConfig struct {
	Clobber     bool `yaml:"clobber"`
	Dereference bool `yaml:"dereference"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Log: logging.DefaultConfig(),
		Deltree: DeltreeConfig{
			MaxBusyTries: 3,
			EMFILEWait:   time.Second,
		},
		Copy: CopyConfig{
			Clobber: true,
		},
	}
}

// Load reads path, or the nearest FileName above the working directory when
// path is empty, and applies environment overrides.
func Load(ctx context.Context, path string) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return LoadFrom(ctx, path, cwd)
}

// LoadFrom is Load with the config file searched for from dir.
func LoadFrom(ctx context.Context, path, dir string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		found, err := parentsearch.New().Search(ctx, dir, FileName)
		switch {
		case err == nil:
			path = found
		case errors.Is(err, parentsearch.ErrNotFound):
		default:
			return nil, fmt.Errorf("failed to locate %s: %w", FileName, err)
		}
	}

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %s - %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %s - %w", path, err)
	}
	c.Source = path
	return nil
}

// Validate rejects settings no operation can honor.
func (c *Config) Validate() error {
	if c.Listing.ProbeTimeout < 0 {
		return fmt.Errorf("listing.probe_timeout must not be negative: %s", c.Listing.ProbeTimeout)
	}
	if err := logging.ValidateLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Logger builds the logger described by c.Log.
func (c *Config) Logger() (*zap.Logger, error) {
	return logging.New(c.Log)
}
