package action

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/giantswarm/actionmock/pkg/command"
	"github.com/giantswarm/actionmock/pkg/github"
)

// TokenEnvVar holds the token NewToolkit authenticates the GitHub client with.
const TokenEnvVar = "GITHUB_TOKEN"

// Toolkit carries the capabilities an action may use.
type Toolkit struct {
	Exec   command.Execer
	GitHub *github.Client

	Stdout io.Writer
	Stderr io.Writer

	Getenv  func(key string) string
	Environ func() []string

	mu       sync.Mutex
	exitCode int
}

// NewToolkit binds the real capabilities of the current process.
func NewToolkit() *Toolkit {
	return &Toolkit{
		Exec:    command.Default,
		GitHub:  github.NewClient(os.Getenv(TokenEnvVar)),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
	}
}

// Printf writes a formatted line to Stdout. A missing trailing newline is added.
func (t *Toolkit) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(t.stdout(), msg)
}

// SetFailed reports msg as an error annotation and marks the run as failed.
func (t *Toolkit) SetFailed(msg string) {
	fmt.Fprintf(t.stderr(), "::error::%s\n", msg)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.exitCode = 1
}

// ExitCode is 1 once SetFailed was called, 0 otherwise.
func (t *Toolkit) ExitCode() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exitCode
}

// Env returns the value of key through Getenv.
func (t *Toolkit) Env(key string) string {
	if t.Getenv == nil {
		return os.Getenv(key)
	}
	return t.Getenv(key)
}

func (t *Toolkit) stdout() io.Writer {
	if t.Stdout == nil {
		return os.Stdout
	}
	return t.Stdout
}

func (t *Toolkit) stderr() io.Writer {
	if t.Stderr == nil {
		return os.Stderr
	}
	return t.Stderr
}
