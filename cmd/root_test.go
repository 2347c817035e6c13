package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/actionmock/internal/config"
	"github.com/giantswarm/actionmock/pkg/action"
	"github.com/giantswarm/actionmock/pkg/command"
	"github.com/giantswarm/actionmock/pkg/harness"
	"github.com/giantswarm/actionmock/pkg/logging"
)

func TestMain(m *testing.M) {
	harness.RunMain(m)
}

func init() {
	action.Register("cmd-hello", func(ctx context.Context, tk *action.Toolkit) error {
		code, _ := tk.Exec.Exec(ctx, "git", []string{"describe"}, &command.Options{
			IgnoreReturnCode: true,
			OutStream:        tk.Stdout,
		})
		tk.Printf("git exited with %d, greeting %s", code, tk.Env("GREETING"))
		return nil
	})

	action.Register("cmd-fail", func(_ context.Context, tk *action.Toolkit) error {
		tk.SetFailed("cmd failure")
		return nil
	})
}

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", rootCmd.Version)
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "actionmock", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "actionmock version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	require.NoError(t, testCmd.Execute())

	assert.Equal(t, "actionmock version 1.0.0\n", buf.String())
}

func TestSubcommands(t *testing.T) {
	found := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		found[cmd.Name()] = true
	}

	for _, expected := range []string{"version", "run", "serve", "validate", "self-update"} {
		assert.True(t, found[expected], "expected subcommand %s to be registered", expected)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"generic", errors.New("boom"), ExitCodeError},
		{"run status", &RunStatusError{Action: "a", Status: 42}, 42},
		{"wrapped run status", fmt.Errorf("wrapped: %w", &RunStatusError{Status: 3}), 3},
		{"configuration error", config.NewConfigurationError(config.SourceMocks, "f", "exec", config.KindParse, "bad", nil), ExitCodeConfigError},
		{"configuration collection", config.ConfigurationErrorCollection{Errors: []config.ConfigurationError{{}}}, ExitCodeConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestInitLogging(t *testing.T) {
	original := logLevel
	defer func() { logLevel = original }()
	defer logging.Reset()

	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetErr(&buf)

	logLevel = "debug"
	assert.NoError(t, initLogging(cmd, nil))

	logLevel = "chatty"
	err := initLogging(cmd, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), `unknown log level "chatty"`))
}

func TestInitLogging_FromConfig(t *testing.T) {
	originalPath, originalLevel := configPath, logLevel
	defer func() { configPath, logLevel = originalPath, originalLevel }()

	configPath = t.TempDir()
	logLevel = ""
	defer logging.Reset()

	cmd := &cobra.Command{}
	cmd.SetErr(&bytes.Buffer{})
	assert.NoError(t, initLogging(cmd, nil))
}
