package config

import "time"

// Config is the top-level configuration of the actionmock CLI.
type Config struct {
	LogLevel string      `yaml:"logLevel,omitempty"`
	Serve    ServeConfig `yaml:"serve"`
	Watch    WatchConfig `yaml:"watch"`
}

// ServeConfig configures the standalone mock API server.
type ServeConfig struct {
	Host string `yaml:"host,omitempty"` // Host to bind to (default: localhost)
	Port int    `yaml:"port,omitempty"` // Port to listen on, 0 picks a free one (default: 8099)
}

// WatchConfig configures reloading of mocks files.
type WatchConfig struct {
	// Debounce is how long changes must settle before a reload.
	Debounce time.Duration `yaml:"debounce,omitempty"`
}
