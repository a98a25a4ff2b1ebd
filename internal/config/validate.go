package config

import (
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}

	if c.Recognition.MaxConcurrency > 64 {
		return fmt.Errorf("recognition.max_concurrency: %d exceeds the sane ceiling of 64", c.Recognition.MaxConcurrency)
	}
	if c.Recognition.CallsPerMinute > 10000 {
		return fmt.Errorf("recognition.calls_per_minute: %d exceeds the sane ceiling of 10000", c.Recognition.CallsPerMinute)
	}
	return nil
}
