// Package config loads the flateralus run configuration: canvas settings,
// logging, the animation to run and its control overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bracketbear/flateralus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvDebug    = "FLATERALUS_DEBUG"
	EnvLogLevel = "FLATERALUS_LOG_LEVEL"
	EnvFPS      = "FLATERALUS_FPS"
)

// Config is the on-disk run configuration.
type Config struct {
	Animation       string  `yaml:"animation"`
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	Background      string  `yaml:"background"`
	BackgroundAlpha float64 `yaml:"backgroundAlpha"`
	Antialias       bool    `yaml:"antialias"`
	Resolution      float64 `yaml:"resolution"`
	AutoResize      bool    `yaml:"autoResize"`
	ResetOnResize   bool    `yaml:"resetOnResize"`
	FPS             int     `yaml:"fps"`
	Debug           bool    `yaml:"debug"`

	Log LogConfig `yaml:"log"`

	// Controls holds per-animation control overrides keyed by manifest id.
	Controls map[string]map[string]any `yaml:"controls,omitempty"`
	// ControlsFile, when set, is a YAML file of overrides for the running
	// animation that is watched for changes.
	ControlsFile string `yaml:"controlsFile,omitempty"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the default configuration.
func Default() *Config {
	d := flateralus.DefaultConfig()
	return &Config{
		Animation:       "spiral",
		Width:           d.Width,
		Height:          d.Height,
		Background:      d.Background.Hex(),
		BackgroundAlpha: d.BackgroundAlpha,
		Antialias:       d.Antialias,
		Resolution:      d.Resolution,
		AutoResize:      d.AutoResize,
		FPS:             60,
		Log:             LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvDebug); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebug, err)
		}
		c.Debug = b
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvFPS); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFPS, err)
		}
		c.FPS = n
	}
	return nil
}

// Validate checks ranges and formats. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.Resolution <= 0 {
		errs = append(errs, fmt.Errorf("resolution must be positive, got %v", c.Resolution))
	}
	if c.BackgroundAlpha < 0 || c.BackgroundAlpha > 1 {
		errs = append(errs, fmt.Errorf("backgroundAlpha must be in [0, 1], got %v", c.BackgroundAlpha))
	}
	if _, err := flateralus.ParseColor(c.Background); err != nil {
		errs = append(errs, fmt.Errorf("background: %w", err))
	}
	if c.FPS <= 0 || c.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps must be in [1, 240], got %d", c.FPS))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// AppConfig converts the configuration to an Application config.
func (c *Config) AppConfig(logger *zap.Logger) (flateralus.Config, error) {
	bg, err := flateralus.ParseColor(c.Background)
	if err != nil {
		return flateralus.Config{}, fmt.Errorf("background: %w", err)
	}
	return flateralus.Config{
		Width:           c.Width,
		Height:          c.Height,
		Background:      bg,
		BackgroundAlpha: c.BackgroundAlpha,
		Antialias:       c.Antialias,
		Resolution:      c.Resolution,
		AutoResize:      c.AutoResize,
		ResetOnResize:   c.ResetOnResize,
		Logger:          logger,
		Debug:           c.Debug,
	}, nil
}

// ControlValues returns the defaults of m overlaid with the overrides
// configured for m's id.
func (c *Config) ControlValues(m *flateralus.Manifest) (flateralus.ControlValues, error) {
	v := m.Defaults()
	if raw := c.Controls[m.ID()]; len(raw) > 0 {
		if err := v.ApplyMap(raw); err != nil {
			return v, fmt.Errorf("controls for %s: %w", m.ID(), err)
		}
	}
	return v, nil
}
