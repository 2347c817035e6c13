// Package command is the command-execution capability handed to actions.
//
// Actions never call os/exec directly. They receive an Execer, which is the
// real implementation in production and the exec interceptor (package
// execmock) under the harness. Both route output through Options.Emit, so
// whatever an action wires up to observe output sees mocked and real output
// the same way.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Execer runs a program and reports its exit code. When the code is nonzero
// and Options.IgnoreReturnCode is not set, the error is an *ExitCodeError
// carrying the code.
type Execer interface {
	Exec(ctx context.Context, name string, args []string, opts *Options) (int, error)
}

// Stream identifies one of the two output channels.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Listeners receive output one line at a time, without the line terminator.
type Listeners struct {
	Stdout func(line string)
	Stderr func(line string)
}

// Options controls a single execution.
//
// Output of each channel goes to exactly one place: the line listener when
// set, otherwise the raw stream when set, otherwise the current process's own
// stdout or stderr unless Silent is set.
type Options struct {
	// Cwd is the working directory; empty means the current one.
	Cwd string
	// Env replaces the environment when non-nil.
	Env []string
	// Input is fed to the program's stdin.
	Input []byte
	// Silent suppresses output that would otherwise go to the process's own streams.
	Silent bool
	// IgnoreReturnCode turns a nonzero exit into a successful result.
	IgnoreReturnCode bool

	Listeners Listeners
	OutStream io.Writer
	ErrStream io.Writer
}

// ExitCodeError reports a nonzero exit code that was not ignored.
type ExitCodeError struct {
	Command string
	Code    int
}

func (e *ExitCodeError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("failed with exit code %d", e.Code)
	}
	return fmt.Sprintf("%s failed with exit code %d", e.Command, e.Code)
}

// ExitCode extracts the exit code from an error returned by an Execer.
func ExitCode(err error) (int, bool) {
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// Result applies the IgnoreReturnCode contract to code.
func (o *Options) Result(name string, code int) (int, error) {
	if code != 0 && (o == nil || !o.IgnoreReturnCode) {
		return code, &ExitCodeError{Command: name, Code: code}
	}
	return code, nil
}

// Emit writes text to the given channel, one line at a time. A trailing
// newline does not produce an extra empty line.
func (o *Options) Emit(stream Stream, text string) {
	if text == "" {
		return
	}
	text = strings.TrimSuffix(text, "\n")
	for _, line := range strings.Split(text, "\n") {
		o.emitLine(stream, strings.TrimSuffix(line, "\r"))
	}
}

func (o *Options) emitLine(stream Stream, line string) {
	if o == nil {
		fmt.Fprintln(processStream(stream), line)
		return
	}

	listener, w := o.Listeners.Stdout, o.OutStream
	if stream == Stderr {
		listener, w = o.Listeners.Stderr, o.ErrStream
	}

	switch {
	case listener != nil:
		listener(line)
	case w != nil:
		fmt.Fprintln(w, line)
	case !o.Silent:
		fmt.Fprintln(processStream(stream), line)
	}
}

func processStream(stream Stream) io.Writer {
	if stream == Stderr {
		return os.Stderr
	}
	return os.Stdout
}
