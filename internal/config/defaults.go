package config

import "time"

const (
	DefaultLogLevel      = "info"
	DefaultServeHost     = "localhost"
	DefaultServePort     = 8099
	DefaultWatchDebounce = 200 * time.Millisecond
)

// GetDefaultConfig returns the configuration used when no config.yaml exists.
func GetDefaultConfig() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		Serve: ServeConfig{
			Host: DefaultServeHost,
			Port: DefaultServePort,
		},
		Watch: WatchConfig{
			Debounce: DefaultWatchDebounce,
		},
	}
}
