package command

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Real runs programs with os/exec.
type Real struct{}

// Default is the Execer used when nothing else is bound.
var Default Execer = Real{}

// Exec starts name with args and waits for it. Stdout and stderr are drained
// concurrently; order is preserved within each channel only.
func (Real) Exec(ctx context.Context, name string, args []string, opts *Options) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if opts != nil {
		cmd.Dir = opts.Cwd
		if opts.Env != nil {
			cmd.Env = opts.Env
		}
		if opts.Input != nil {
			cmd.Stdin = bytes.NewReader(opts.Input)
		}
	}

	// Run in our own process group so cancellation takes the whole tree down
	configureProcAttr(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to attach stdout of %s: %w", name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to attach stderr of %s: %w", name, err)
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", name, err)
	}

	var g errgroup.Group
	g.Go(func() error { return pump(stdout, func(line string) { opts.emitLine(Stdout, line) }) })
	g.Go(func() error { return pump(stderr, func(line string) { opts.emitLine(Stderr, line) }) })
	pumpErr := g.Wait()

	waitErr := cmd.Wait()
	if cmd.ProcessState == nil {
		return 0, fmt.Errorf("failed to wait for %s: %w", name, waitErr)
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return 0, fmt.Errorf("failed to wait for %s: %w", name, waitErr)
	}
	if pumpErr != nil {
		return 0, fmt.Errorf("failed to read output of %s: %w", name, pumpErr)
	}

	return opts.Result(name, exitCode(cmd))
}

// pump reads r line by line until EOF. A final line without a terminator is
// still delivered.
func pump(r io.Reader, emit func(line string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			emit(strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
