// Package execmock fakes command execution for actions under test.
package execmock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/giantswarm/actionmock/internal/matcher"
	"github.com/giantswarm/actionmock/pkg/command"
	"github.com/giantswarm/actionmock/pkg/mock"
)

// ID is the interceptor identifier; rules arrive in EXEC_MOCKS.
const ID = "exec"

// NotFoundExitCode is reported for commands no rule matches.
const NotFoundExitCode = 127

// Rule fakes every command whose signature matches Command.
type Rule struct {
	// Command is searched in "<command> <args...> <option:value...>".
	Command mock.Pattern `json:"command"`
	// ExitCode is the faked exit code.
	ExitCode int `json:"exitCode,omitempty"`
	// Stdout and Stderr are written through the caller's output options.
	Stdout mock.Output `json:"stdout,omitempty"`
	Stderr mock.Output `json:"stderr,omitempty"`
	// CallOriginal runs the real command and reports its exit code instead of ExitCode.
	CallOriginal bool `json:"callOriginal,omitempty"`
	// Count is how many calls the rule answers before it is removed; 0 means unlimited.
	Count int `json:"count,omitempty"`
}

// Limit implements matcher.Rule.
func (r Rule) Limit() int {
	return r.Count
}

// Interceptor is a command.Execer answering from rules.
type Interceptor struct {
	rules matcher.List[Rule]
	real  command.Execer
	log   mock.SinkSlot
}

var _ command.Execer = (*Interceptor)(nil)
var _ mock.Interceptor = (*Interceptor)(nil)

// New creates an interceptor that delegates callOriginal rules to real.
func New(real command.Execer) *Interceptor {
	if real == nil {
		real = command.Default
	}
	return &Interceptor{real: real}
}

// ID implements mock.Interceptor.
func (i *Interceptor) ID() string {
	return ID
}

// Register places rules ahead of all existing rules.
func (i *Interceptor) Register(rules ...Rule) {
	i.rules.Register(rules...)
}

// RegisterJSON implements mock.Interceptor.
func (i *Interceptor) RegisterJSON(data []byte) error {
	rules, err := mock.DecodeRules[Rule](data)
	if err != nil {
		return fmt.Errorf("invalid %s rules: %w", ID, err)
	}
	i.Register(rules...)
	return nil
}

// Rules returns the active rules in match order.
func (i *Interceptor) Rules() []Rule {
	return i.rules.Rules()
}

// Clear drops all rules.
func (i *Interceptor) Clear() {
	i.rules.Clear()
}

// Restore drops all rules and restores the default log sink.
func (i *Interceptor) Restore() {
	i.Clear()
	i.log.Reset()
}

// SetLog replaces the log sink.
func (i *Interceptor) SetLog(sink mock.Sink) {
	i.log.Set(sink)
}

// Exec answers a command from the first matching rule.
func (i *Interceptor) Exec(ctx context.Context, name string, args []string, opts *command.Options) (int, error) {
	signature := Signature(name, args, opts)
	i.log.Log(signature)

	rule, ok := i.rules.Dispatch(func(r Rule) bool {
		return r.Command.Match(signature)
	})
	if !ok {
		return opts.Result(name, NotFoundExitCode)
	}

	if text := rule.Stdout.String(); text != "" {
		opts.Emit(command.Stdout, text)
	}
	if text := rule.Stderr.String(); text != "" {
		opts.Emit(command.Stderr, text)
	}

	code := rule.ExitCode
	if rule.CallOriginal {
		through := command.Options{}
		if opts != nil {
			through = *opts
		}
		through.IgnoreReturnCode = true

		var err error
		code, err = i.real.Exec(ctx, name, args, &through)
		if err != nil {
			return code, err
		}
	}

	return opts.Result(name, code)
}

// Signature renders the text rules are matched against: the command, each
// argument, then each set option as key:json(value) in a fixed order.
func Signature(name string, args []string, opts *command.Options) string {
	parts := make([]string, 0, 1+len(args)+5)
	parts = append(parts, name)
	parts = append(parts, args...)

	if opts != nil {
		if opts.Cwd != "" {
			parts = append(parts, option("cwd", opts.Cwd))
		}
		if opts.Env != nil {
			parts = append(parts, option("env", opts.Env))
		}
		if opts.Input != nil {
			parts = append(parts, option("input", string(opts.Input)))
		}
		if opts.Silent {
			parts = append(parts, option("silent", true))
		}
		if opts.IgnoreReturnCode {
			parts = append(parts, option("ignoreReturnCode", true))
		}
	}

	return strings.Join(parts, " ")
}

func option(key string, value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return key + ":null"
	}
	return key + ":" + string(data)
}
