package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/giantswarm/actionmock/pkg/command"
	"github.com/giantswarm/actionmock/pkg/logging"
	"github.com/giantswarm/actionmock/pkg/mock"
)

// Exit statuses reported when the child could not be spawned.
const (
	StatusNotExecutable = 126
	StatusNotFound      = 127
)

// Options configures one Run.
type Options struct {
	// Mocks maps an interceptor id ("exec", "github") to its rules. Each value
	// is sent to the child as JSON.
	Mocks map[string]any
	// Env overrides the parent environment.
	Env map[string]string
	// EnvFiles are dotenv files applied on top of the parent environment and
	// below Env. Later files win.
	EnvFiles []string
	// Executable is the harness-enabled binary; the running binary by default.
	Executable string
	// Dir is the child's working directory.
	Dir string
}

// Result is what the child wrote and how it exited. Every captured line ends
// with the platform line terminator.
type Result struct {
	Out    string
	Err    string
	Status int
}

// Run spawns the loader with target as the action to run and waits for it.
// Failures of any kind are reported through Result.Status and Result.Err,
// never as a Go error.
func Run(ctx context.Context, target string, opts Options) Result {
	var out, errOut capture

	fail := func(status int, format string, args ...any) Result {
		msg := fmt.Sprintf(format, args...)
		logging.Warn("Runner", "%s", msg)
		errOut.line("Error: " + msg)
		return Result{Out: out.String(), Err: errOut.String(), Status: status}
	}

	executable := opts.Executable
	if executable == "" {
		self, err := os.Executable()
		if err != nil {
			return fail(StatusNotFound, "failed to locate harness binary: %v", err)
		}
		executable = self
	}

	runID := uuid.NewString()
	env, err := buildEnv(opts, runID)
	if err != nil {
		return fail(ExitConfigError, "%v", err)
	}

	logging.Debug("Runner", "Starting run %s: %s %s", runID, executable, target)

	execOpts := &command.Options{
		Cwd:              opts.Dir,
		Env:              env,
		IgnoreReturnCode: true,
		Listeners: command.Listeners{
			Stdout: out.line,
			Stderr: errOut.line,
		},
		// Options.Emit prefers listeners, so command.Default never writes to
		// these. They catch output from an Execer that only honours streams.
		OutStream: &out,
		ErrStream: &errOut,
	}

	status, err := command.Default.Exec(ctx, executable, []string{target}, execOpts)
	if err != nil {
		return fail(spawnStatus(err), "%v", err)
	}

	logging.Debug("Runner", "Run %s exited with status %d", runID, status)
	return Result{Out: out.String(), Err: errOut.String(), Status: status}
}

func spawnStatus(err error) int {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return StatusNotFound
	}
	return StatusNotExecutable
}

// buildEnv layers the parent environment, env files, overrides, the mock
// rules and the loader variables, later layers winning.
func buildEnv(opts Options, runID string) ([]string, error) {
	env := newEnvList(os.Environ())

	if len(opts.EnvFiles) > 0 {
		fromFiles, err := godotenv.Read(opts.EnvFiles...)
		if err != nil {
			return nil, fmt.Errorf("failed to read env files: %w", err)
		}
		env.setMap(fromFiles)
	}

	env.setMap(opts.Env)

	ids := make([]string, 0, len(opts.Mocks))
	for id := range opts.Mocks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		data, err := json.Marshal(opts.Mocks[id])
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s mocks: %w", id, err)
		}
		env.set(mock.EnvVar(id), string(data))
	}

	env.set(LoaderEnvVar, "1")
	env.set(RunIDEnvVar, runID)
	return env.entries, nil
}

// envList is an ordered KEY=VALUE list where setting a key replaces it in place.
type envList struct {
	entries []string
	index   map[string]int
}

func newEnvList(base []string) *envList {
	l := &envList{index: make(map[string]int, len(base))}
	for _, kv := range base {
		key, value, _ := strings.Cut(kv, "=")
		l.set(key, value)
	}
	return l
}

func (l *envList) set(key, value string) {
	kv := key + "=" + value
	if i, ok := l.index[key]; ok {
		l.entries[i] = kv
		return
	}
	l.index[key] = len(l.entries)
	l.entries = append(l.entries, kv)
}

func (l *envList) setMap(m map[string]string) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		l.set(key, m[key])
	}
}

// capture collects one output channel of the child, each line stored once
// followed by the platform line terminator. With command.Default every line
// arrives through the listener; Write only serves executors that emit raw
// bytes to the stream instead.
type capture struct {
	mu      sync.Mutex
	buf     strings.Builder
	partial string
}

func (c *capture) line(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.WriteString(s)
	c.buf.WriteString(eol)
}

// Write implements io.Writer for the raw stream channel.
func (c *capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := c.partial + string(p)
	for {
		i := strings.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		c.buf.WriteString(strings.TrimSuffix(data[:i], "\r"))
		c.buf.WriteString(eol)
		data = data[i+1:]
	}
	c.partial = data
	return len(p), nil
}

func (c *capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.partial == "" {
		return c.buf.String()
	}
	return c.buf.String() + c.partial + eol
}
