package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRecognition()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.HandsDir, err = expandPath(c.Paths.HandsDir); err != nil {
		return fmt.Errorf("paths.hands_dir: %w", err)
	}
	if c.Paths.ScreenshotsDir, err = expandPath(c.Paths.ScreenshotsDir); err != nil {
		return fmt.Errorf("paths.screenshots_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.DumpDir, err = expandPath(c.Paths.DumpDir); err != nil {
		return fmt.Errorf("paths.dump_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SeatMapping) != "" {
		if c.Paths.SeatMapping, err = expandPath(c.Paths.SeatMapping); err != nil {
			return fmt.Errorf("paths.seat_mapping: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeRecognition() {
	if c.Recognition.APIKey == "" {
		for _, name := range []string{"UNVEIL_API_KEY", "ANTHROPIC_API_KEY"} {
			if value, ok := os.LookupEnv(name); ok && strings.TrimSpace(value) != "" {
				c.Recognition.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
	c.Recognition.BaseURL = strings.TrimSpace(c.Recognition.BaseURL)
	if c.Recognition.BaseURL == "" {
		c.Recognition.BaseURL = defaultBaseURL
	}
	c.Recognition.Model = strings.TrimSpace(c.Recognition.Model)
	if c.Recognition.Model == "" {
		c.Recognition.Model = defaultModel
	}
	if c.Recognition.TimeoutSeconds <= 0 {
		c.Recognition.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Recognition.MaxConcurrency <= 0 {
		c.Recognition.MaxConcurrency = defaultMaxConcurrency
	}
	if c.Recognition.CallsPerMinute <= 0 {
		c.Recognition.CallsPerMinute = defaultCallsPerMinute
	}
	if c.Recognition.Tolerance <= 0 {
		c.Recognition.Tolerance = defaultTolerance
	}
}

func (c *Config) normalizeCache() error {
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = defaultCachePath
	}
	expanded, err := expandPath(c.Cache.Path)
	if err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	c.Cache.Path = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
