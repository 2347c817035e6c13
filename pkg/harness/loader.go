package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"github.com/giantswarm/actionmock/internal/config"
	"github.com/giantswarm/actionmock/pkg/action"
	"github.com/giantswarm/actionmock/pkg/command"
	"github.com/giantswarm/actionmock/pkg/github"
	"github.com/giantswarm/actionmock/pkg/logging"
	"github.com/giantswarm/actionmock/pkg/mock"
	"github.com/giantswarm/actionmock/pkg/mock/execmock"
	"github.com/giantswarm/actionmock/pkg/mock/gate"
	"github.com/giantswarm/actionmock/pkg/mock/githubmock"
)

const (
	// LoaderEnvVar set to "1" switches a harness-enabled binary into loader mode.
	LoaderEnvVar = "ACTIONMOCK_LOADER"
	// RunIDEnvVar identifies the run that spawned the loader.
	RunIDEnvVar = "ACTIONMOCK_RUN_ID"
	// LogLevelEnvVar enables loader diagnostics on stderr, e.g. "debug".
	LogLevelEnvVar = "ACTIONMOCK_LOG_LEVEL"
)

// Exit codes of the loader.
const (
	ExitOK          = 0
	ExitActionError = 1
	ExitConfigError = 2
)

// M is the subset of *testing.M used by RunMain.
type M interface {
	Run() int
}

// IsLoader reports whether the current process was spawned by Run.
func IsLoader() bool {
	return os.Getenv(LoaderEnvVar) == "1"
}

// RunMain runs the loader when the process was spawned by Run and the tests
// otherwise. It does not return.
func RunMain(m M) {
	if IsLoader() {
		os.Exit(runLoader(os.Args[1:]))
	}
	os.Exit(m.Run())
}

// Main runs the loader when the process was spawned by Run. Otherwise every
// argument is run as an action with the real capabilities. It does not return.
func Main() {
	if IsLoader() {
		os.Exit(runLoader(os.Args[1:]))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := runActions(ctx, action.NewToolkit(), os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func runLoader(args []string) int {
	if level := os.Getenv(LogLevelEnvVar); level != "" {
		logging.InitForCLI(logging.ParseLevel(level), os.Stderr)
		if runID := os.Getenv(RunIDEnvVar); runID != "" {
			logging.With("run", runID)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	l := newLoader(os.Getenv, http.DefaultTransport)
	return l.run(ctx, args, os.Stdout, os.Stderr)
}

// loader wires the interceptors into a toolkit.
type loader struct {
	getenv       func(string) string
	gate         *gate.Gate
	interceptors []mock.Interceptor
	toolkit      *action.Toolkit
}

func newLoader(getenv func(string) string, next http.RoundTripper) *loader {
	g, err := gate.New(github.DefaultBaseURL, next)
	if err != nil {
		// DefaultBaseURL is a constant and always valid
		panic(err)
	}

	execInterceptor := execmock.New(command.Default)
	githubInterceptor := githubmock.New(g)

	return &loader{
		getenv:       getenv,
		gate:         g,
		interceptors: []mock.Interceptor{execInterceptor, githubInterceptor},
		toolkit: &action.Toolkit{
			Exec:    execInterceptor,
			GitHub:  github.NewClient(getenv(action.TokenEnvVar), github.WithTransport(g)),
			Getenv:  getenv,
			Environ: os.Environ,
		},
	}
}

// register installs the rules found in the environment, in interceptor order.
func (l *loader) register() error {
	for _, i := range l.interceptors {
		name := mock.EnvVar(i.ID())
		data := l.getenv(name)
		if data == "" {
			continue
		}

		if err := i.RegisterJSON([]byte(data)); err != nil {
			return config.NewConfigurationError(config.SourceEnvironment, name, i.ID(), config.KindParse,
				"malformed mock rules", err).
				WithSuggestions(fmt.Sprintf("%s must hold a JSON rule object or an array of rule objects", name))
		}
		logging.Debug("Loader", "Registered %s rules from %s", i.ID(), name)
	}
	return nil
}

func (l *loader) run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := l.register(); err != nil {
		var cfgErr config.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Fprintln(stderr, cfgErr.DetailedError())
		} else {
			fmt.Fprintf(stderr, "Error: %s\n", err)
		}
		return ExitConfigError
	}

	l.toolkit.Stdout = stdout
	l.toolkit.Stderr = stderr
	return runActions(ctx, l.toolkit, args, stderr)
}

// runActions runs each named action in order and stops at the first failure.
func runActions(ctx context.Context, tk *action.Toolkit, names []string, stderr io.Writer) int {
	for _, name := range names {
		logging.Debug("Loader", "Running action %s", name)
		if err := action.Run(ctx, name, tk); err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			return ExitActionError
		}
	}
	return tk.ExitCode()
}
