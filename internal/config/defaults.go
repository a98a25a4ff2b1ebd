package config

const (
	defaultHandsDir       = "~/unveil/hands"
	defaultScreenshotsDir = "~/unveil/screenshots"
	defaultOutputDir      = "~/unveil/output"
	defaultDumpDir        = "~/unveil/dumps"
	defaultLogDir         = "~/.local/share/unveil/logs"
	defaultCachePath      = "~/.cache/unveil/recognition.db"

	defaultBaseURL        = "https://api.anthropic.com/v1/messages"
	defaultModel          = "claude-sonnet-4-20250514"
	defaultTimeoutSeconds = 60
	defaultMaxConcurrency = 5
	defaultCallsPerMinute = 50
	defaultTolerance      = 30

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			HandsDir:       defaultHandsDir,
			ScreenshotsDir: defaultScreenshotsDir,
			OutputDir:      defaultOutputDir,
			DumpDir:        defaultDumpDir,
			LogDir:         defaultLogDir,
		},
		Recognition: Recognition{
			BaseURL:        defaultBaseURL,
			Model:          defaultModel,
			TimeoutSeconds: defaultTimeoutSeconds,
			MaxConcurrency: defaultMaxConcurrency,
			CallsPerMinute: defaultCallsPerMinute,
			Tolerance:      defaultTolerance,
		},
		Cache: Cache{
			Enabled: true,
			Path:    defaultCachePath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
