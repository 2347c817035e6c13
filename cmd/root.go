package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/giantswarm/actionmock/internal/config"
	"github.com/giantswarm/actionmock/pkg/logging"
)

// Exit codes for CLI commands. The run command exits with the status of the
// action instead.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfigError indicates an invalid config or mocks file.
	ExitCodeConfigError = 2
)

var (
	configPath string
	logLevel   string
)

// rootCmd represents the base command for the actionmock application.
var rootCmd = &cobra.Command{
	Use:   "actionmock",
	Short: "Run actions against mocked commands and GitHub API",
	Long: `actionmock runs actions in a child process where command execution and
GitHub API calls are answered by declarative mock rules instead of the real
world, and reports what the action printed and how it exited.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage:      true,
	PersistentPreRunE: initLogging,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "actionmock version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// RunStatusError carries a nonzero action status out of the run command.
type RunStatusError struct {
	Action string
	Status int
}

func (e *RunStatusError) Error() string {
	return fmt.Sprintf("action %s exited with status %d", e.Action, e.Status)
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var statusErr *RunStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}

	if _, ok := config.AsConfigurationError(err); ok {
		return ExitCodeConfigError
	}

	return ExitCodeError
}

// loadAppConfig loads config.yaml from --config-path.
func loadAppConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.GetDefaultConfigPathOrPanic()
	}
	return config.LoadConfig(path)
}

// initLogging sets up diagnostics on stderr. --log-level wins over config.yaml.
func initLogging(cmd *cobra.Command, args []string) error {
	level := logLevel
	if level == "" {
		cfg, err := loadAppConfig()
		if err != nil {
			return err
		}
		level = cfg.LogLevel
	}

	parsed, ok := logging.LookupLevel(level)
	if !ok {
		return fmt.Errorf("unknown log level %q", level)
	}
	logging.InitForCLI(parsed, cmd.ErrOrStderr())
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "", "Configuration directory (default is $HOME/.config/actionmock)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Diagnostic log level: debug, info, warn or error")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
