// Package config loads and validates the daemon's YAML configuration. Only
// numeric engine parameters live here; tiling state persistence is the store
// package's concern.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/accordwm/accordwm/internal/tiling"
)

// Animation configures placement animation.
type Animation struct {
	// DurationMs is the batch animation length. 0 disables animation.
	DurationMs int `yaml:"duration_ms"`
	// FPS is the interpolation frame rate.
	FPS int `yaml:"fps"`
	// AnimateFirstTile animates the very first tile after startup.
	AnimateFirstTile bool `yaml:"animate_first_tile"`
}

// Config is the daemon configuration.
type Config struct {
	// Margin insets the monitor work area on all sides.
	Margin int `yaml:"margin"`
	// Padding separates adjacent containers.
	Padding int `yaml:"padding"`
	// AccordionOffset is the peek width of non-focused accordion windows.
	AccordionOffset int `yaml:"accordion_offset"`
	// DebounceMs is the quiet period before a retile runs.
	DebounceMs int `yaml:"debounce_ms"`
	// ZOrderGuardMs suppresses redundant re-raising after a retile.
	ZOrderGuardMs int `yaml:"z_order_guard_ms"`
	// DefaultLayout seeds monitors that have no persisted layout (1 = monocle).
	DefaultLayout int `yaml:"default_layout"`

	Animation Animation `yaml:"animation"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Margin:          10,
		Padding:         8,
		AccordionOffset: 50,
		DebounceMs:      120,
		ZOrderGuardMs:   250,
		DefaultLayout:   int(tiling.LayoutMonocle),
		Animation: Animation{
			DurationMs:       180,
			FPS:              60,
			AnimateFirstTile: false,
		},
		LogLevel: "info",
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "accordwm", "config.yaml"), nil
}

// Load reads the config file at path, layering it over defaults. A missing
// file yields the defaults without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks parameter ranges.
func (c *Config) Validate() error {
	if c.Margin < 0 {
		return fmt.Errorf("margin must be >= 0, got %d", c.Margin)
	}
	if c.Padding < 0 {
		return fmt.Errorf("padding must be >= 0, got %d", c.Padding)
	}
	if c.AccordionOffset < 1 {
		return fmt.Errorf("accordion_offset must be >= 1, got %d", c.AccordionOffset)
	}
	if c.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must be >= 0, got %d", c.DebounceMs)
	}
	if c.ZOrderGuardMs < 0 {
		return fmt.Errorf("z_order_guard_ms must be >= 0, got %d", c.ZOrderGuardMs)
	}
	if !tiling.LayoutID(c.DefaultLayout).Valid() {
		return fmt.Errorf("default_layout must name a built-in layout (1-9), got %d", c.DefaultLayout)
	}
	if c.Animation.DurationMs < 0 {
		return fmt.Errorf("animation.duration_ms must be >= 0, got %d", c.Animation.DurationMs)
	}
	if c.Animation.FPS < 1 || c.Animation.FPS > 240 {
		return fmt.Errorf("animation.fps must be between 1 and 240, got %d", c.Animation.FPS)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}

// DebounceDelay returns the debounce as a duration.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// ZOrderGuard returns the z-order guard as a duration.
func (c *Config) ZOrderGuard() time.Duration {
	return time.Duration(c.ZOrderGuardMs) * time.Millisecond
}

// AnimationDuration returns the animation length as a duration.
func (c *Config) AnimationDuration() time.Duration {
	return time.Duration(c.Animation.DurationMs) * time.Millisecond
}

// Marshal renders the config as YAML, used by `accordwm config print`.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
