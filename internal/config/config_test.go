package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileLayersOverDefaults(t *testing.T) {
	path := writeConfig(t, "margin: 20\naccordion_offset: 80\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 20, cfg.Margin)
	require.Equal(t, 80, cfg.AccordionOffset)
	// Untouched keys keep their defaults.
	require.Equal(t, 8, cfg.Padding)
	require.Equal(t, 120, cfg.DebounceMs)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	path := writeConfig(t, "margin: [not a number\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative margin", func(c *Config) { c.Margin = -1 }},
		{"negative padding", func(c *Config) { c.Padding = -1 }},
		{"zero offset", func(c *Config) { c.AccordionOffset = 0 }},
		{"negative debounce", func(c *Config) { c.DebounceMs = -1 }},
		{"negative guard", func(c *Config) { c.ZOrderGuardMs = -1 }},
		{"dynamic default layout", func(c *Config) { c.DefaultLayout = 0 }},
		{"out-of-range layout", func(c *Config) { c.DefaultLayout = 10 }},
		{"negative animation", func(c *Config) { c.Animation.DurationMs = -1 }},
		{"zero fps", func(c *Config) { c.Animation.FPS = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDurationAccessors(t *testing.T) {
	cfg := Default()
	cfg.DebounceMs = 150
	cfg.ZOrderGuardMs = 300
	cfg.Animation.DurationMs = 200

	require.Equal(t, 150*time.Millisecond, cfg.DebounceDelay())
	require.Equal(t, 300*time.Millisecond, cfg.ZOrderGuard())
	require.Equal(t, 200*time.Millisecond, cfg.AnimationDuration())
}
