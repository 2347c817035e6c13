package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/actionmock/pkg/logging"
)

const (
	userConfigDir  = ".config/actionmock"
	configFileName = "config.yaml"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads config.yaml from configPath on top of the defaults.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return Config{}, NewConfigurationError(SourceUser, configFileName, "", KindIO, "cannot read config.yaml", err).
			WithFile(configFilePath, configFileName)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, NewConfigurationError(SourceUser, configFileName, "", KindParse, "malformed config.yaml", err).
			WithFile(configFilePath, configFileName)
	}

	if err := config.Validate(); err != nil {
		var cfgErr ConfigurationError
		if errors.As(err, &cfgErr) {
			return Config{}, cfgErr.WithFile(configFilePath, configFileName)
		}
		return Config{}, err
	}

	logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, ok := logging.LookupLevel(c.LogLevel); !ok {
		return NewConfigurationError(SourceUser, "", "", KindValidation,
			fmt.Sprintf("unknown log level %q", c.LogLevel), nil).
			WithSuggestions("use one of " + strings.Join(logging.LevelNames(), ", "))
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return NewConfigurationError(SourceUser, "", "", KindValidation,
			fmt.Sprintf("serve.port %d is out of range", c.Serve.Port), nil)
	}
	if c.Watch.Debounce < 0 {
		return NewConfigurationError(SourceUser, "", "", KindValidation,
			"watch.debounce must not be negative", nil)
	}
	return nil
}
