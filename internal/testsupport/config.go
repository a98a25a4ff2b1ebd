package testsupport

import (
	"path/filepath"
	"testing"

	"unveil/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Recognition.APIKey = "test"
	cfg.Paths.HandsDir = filepath.Join(base, "hands")
	cfg.Paths.ScreenshotsDir = filepath.Join(base, "screenshots")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.DumpDir = filepath.Join(base, "dumps")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Cache.Enabled = false
	cfg.Cache.Path = filepath.Join(base, "cache", "recognition.db")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithCacheEnabled turns the recognition cache on for the test config.
func WithCacheEnabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Cache.Enabled = true
	}
}
