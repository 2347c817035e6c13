package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Helper function to create a temporary config file
func createTempConfigFile(t *testing.T, dir string, content string) string {
	t.Helper()
	path := filepath.Join(dir, configFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoadConfig_Override(t *testing.T) {
	dir := t.TempDir()
	createTempConfigFile(t, dir, `
logLevel: debug
serve:
  port: 9000
watch:
  debounce: 1s
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9000, cfg.Serve.Port)
	assert.Equal(t, DefaultServeHost, cfg.Serve.Host, "unset fields keep their defaults")
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
}

func TestLoadConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := GetDefaultConfig()
	want.Serve.Host = "0.0.0.0"

	data, err := yaml.Marshal(&want)
	require.NoError(t, err)
	createTempConfigFile(t, dir, string(data))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, want, cfg)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		kind    Kind
		message string
	}{
		{"malformed", "serve: [", KindParse, "malformed config.yaml"},
		{"bad level", "logLevel: loud", KindValidation, `unknown log level "loud"`},
		{"bad port", "serve:\n  port: 70000", KindValidation, "serve.port 70000 is out of range"},
		{"negative debounce", "watch:\n  debounce: -1s", KindValidation, "watch.debounce must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := createTempConfigFile(t, dir, tt.content)

			_, err := LoadConfig(dir)
			var cfgErr ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %v", err)
			assert.Equal(t, tt.kind, cfgErr.Kind)
			assert.Equal(t, tt.message, cfgErr.Message)
			assert.Equal(t, path, cfgErr.Path)
			assert.Equal(t, SourceUser, cfgErr.Source)
		})
	}
}

func TestGetDefaultConfigPathOrPanic(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	assert.Equal(t, filepath.Join(home, ".config", "actionmock"), GetDefaultConfigPathOrPanic())
}
