package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/giantswarm/actionmock/internal/config"
	"github.com/giantswarm/actionmock/pkg/harness"
)

type runOptions struct {
	mocksFile  string
	env        []string
	envFiles   []string
	dir        string
	jsonOutput bool
	quiet      bool
}

// runReport is the --json form of one action run.
type runReport struct {
	Action string `json:"action"`
	Status int    `json:"status"`
	Out    string `json:"out"`
	Err    string `json:"err"`
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run BINARY ACTION [ACTION...]",
		Short: "Run actions of a harness-enabled binary with mocks",
		Long: `Run executes each ACTION in its own child process of BINARY, a program
whose main calls harness.Main. Command executions and GitHub API calls made by
the action are answered by the rules of the mocks file.

Actions run in order and the first nonzero status stops the run; it becomes
the exit code of this command.`,
		Example: `  actionmock run ./bin/actions release --mocks mocks.yaml
  actionmock run ./bin/actions lint test --env CI=true --json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActions(cmd, opts, args[0], args[1:])
		},
	}

	cmd.Flags().StringVarP(&opts.mocksFile, "mocks", "m", "", "Mocks file (YAML or JSON)")
	cmd.Flags().StringArrayVarP(&opts.env, "env", "e", nil, "Environment override KEY=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&opts.envFiles, "env-file", nil, "Dotenv file applied below --env (repeatable)")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "Working directory of the action")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print captured output and status as JSON")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress the spinner and status lines")

	return cmd
}

func runActions(cmd *cobra.Command, opts *runOptions, binary string, actions []string) error {
	runOpts, err := buildRunOptions(opts, binary)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	var reports []runReport
	var failed *RunStatusError

	for _, name := range actions {
		var s *spinner.Spinner
		if !opts.quiet && !opts.jsonOutput {
			s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(stderr))
			s.Suffix = fmt.Sprintf(" Running %s...", name)
			s.Start()
		}

		res := harness.Run(ctx, name, runOpts)

		if s != nil {
			s.Stop()
		}

		if opts.jsonOutput {
			reports = append(reports, runReport{Action: name, Status: res.Status, Out: res.Out, Err: res.Err})
		} else {
			io.WriteString(stdout, res.Out)
			io.WriteString(stderr, res.Err)
			if !opts.quiet {
				printStatus(stderr, name, res.Status)
			}
		}

		if res.Status != 0 {
			failed = &RunStatusError{Action: name, Status: res.Status}
			break
		}
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	}

	if failed != nil {
		return failed
	}
	return nil
}

// buildRunOptions turns flags and the mocks file into runner options.
// Flags win over the file.
func buildRunOptions(opts *runOptions, binary string) (harness.Options, error) {
	executable, err := filepath.Abs(binary)
	if err != nil {
		return harness.Options{}, err
	}

	runOpts := harness.Options{
		Executable: executable,
		Dir:        opts.dir,
		Env:        map[string]string{},
	}

	if opts.mocksFile != "" {
		f, err := config.LoadMocksFile(opts.mocksFile)
		if err != nil {
			return harness.Options{}, err
		}
		runOpts.Mocks = f.RunMocks()
		runOpts.EnvFiles = append(runOpts.EnvFiles, f.EnvFiles...)
		for key, value := range f.Env {
			runOpts.Env[key] = value
		}
	}

	runOpts.EnvFiles = append(runOpts.EnvFiles, opts.envFiles...)

	for _, kv := range opts.env {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return harness.Options{}, fmt.Errorf("invalid --env %q: expected KEY=VALUE", kv)
		}
		runOpts.Env[key] = value
	}

	return runOpts, nil
}

func printStatus(w io.Writer, name string, status int) {
	if status == 0 {
		color.New(color.FgGreen).Fprintf(w, "✓ %s passed\n", name)
		return
	}
	color.New(color.FgRed).Fprintf(w, "✗ %s exited with status %d\n", name, status)
}
