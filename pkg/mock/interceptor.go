package mock

import (
	"bytes"
	"encoding/json"
	"strings"
)

// EnvSuffix is appended to the upper-cased interceptor identifier to name the
// environment variable carrying its rules.
const EnvSuffix = "_MOCKS"

// EnvVar returns the environment variable name for the interceptor id.
func EnvVar(id string) string {
	return strings.ToUpper(id) + EnvSuffix
}

// Interceptor is the lifecycle every interceptor exposes to the loader and to
// tests that drive it in-process.
type Interceptor interface {
	// ID is the identifier used for the environment protocol ("exec", "github").
	ID() string
	// RegisterJSON decodes a rule or a list of rules and registers them ahead
	// of every existing rule.
	RegisterJSON(data []byte) error
	// Clear drops all rules.
	Clear()
	// Restore drops all rules, restores the default log sink and undoes any
	// interception the interceptor installed.
	Restore()
	// SetLog replaces the log sink.
	SetLog(sink Sink)
}

// DecodeRules decodes either a JSON array of rules or a single rule object.
// Empty input and null decode to no rules.
func DecodeRules[R any](data []byte) ([]R, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var rules []R
		if err := json.Unmarshal(trimmed, &rules); err != nil {
			return nil, err
		}
		return rules, nil
	}

	var rule R
	if err := json.Unmarshal(trimmed, &rule); err != nil {
		return nil, err
	}
	return []R{rule}, nil
}
