package config

import (
	"errors"
	"fmt"
	"strings"
)

// Source says where a broken setting came from.
type Source string

const (
	SourceUser        Source = "user"
	SourceMocks       Source = "mocks"
	SourceEnvironment Source = "environment"
)

// Kind classifies a configuration problem.
type Kind string

const (
	KindIO         Kind = "io"
	KindTemplate   Kind = "template"
	KindParse      Kind = "parse"
	KindValidation Kind = "validation"
)

// ConfigurationError describes a problem with a config file, a mocks file,
// or mock rules handed over through the environment.
type ConfigurationError struct {
	Path        string `json:"path,omitempty"`
	Name        string `json:"name"` // file base name or environment variable
	Source      Source `json:"source"`
	Interceptor string `json:"interceptor,omitempty"` // empty for file-level problems
	Kind        Kind   `json:"kind"`
	Rule        int    `json:"rule,omitempty"` // 1-based, 0 when not about one rule
	Message     string `json:"message"`
	Cause       error  `json:"-"`

	Suggestions []string `json:"suggestions,omitempty"`
}

// NewConfigurationError returns an error without file or rule position.
// Use the With* methods to add them.
func NewConfigurationError(source Source, name, interceptor string, kind Kind, message string, cause error) ConfigurationError {
	return ConfigurationError{
		Name:        name,
		Source:      source,
		Interceptor: interceptor,
		Kind:        kind,
		Message:     message,
		Cause:       cause,
	}
}

// WithFile returns a copy located in the file at path.
func (ce ConfigurationError) WithFile(path, name string) ConfigurationError {
	ce.Path = path
	ce.Name = name
	return ce
}

// WithRule returns a copy pointing at the n-th rule (1-based).
func (ce ConfigurationError) WithRule(n int) ConfigurationError {
	ce.Rule = n
	return ce
}

// WithSuggestions returns a copy carrying hints for the user.
func (ce ConfigurationError) WithSuggestions(suggestions ...string) ConfigurationError {
	ce.Suggestions = append([]string(nil), suggestions...)
	return ce
}

func (ce ConfigurationError) scope() string {
	if ce.Interceptor == "" {
		return string(ce.Source)
	}
	return string(ce.Source) + "/" + ce.Interceptor
}

func (ce ConfigurationError) Error() string {
	where := ce.Name
	if ce.Rule > 0 {
		where = fmt.Sprintf("%s rule %d", where, ce.Rule)
	}
	msg := fmt.Sprintf("[%s] %s: %s", ce.scope(), where, ce.Message)
	if ce.Cause != nil {
		msg += ": " + ce.Cause.Error()
	}
	return msg
}

func (ce ConfigurationError) Unwrap() error {
	return ce.Cause
}

// DetailedError renders the error over several indented lines.
func (ce ConfigurationError) DetailedError() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Configuration error in %s (%s)\n", ce.Name, ce.scope())
	if ce.Path != "" {
		fmt.Fprintf(&b, "  File: %s\n", ce.Path)
	}
	if ce.Rule > 0 {
		fmt.Fprintf(&b, "  Rule: %d\n", ce.Rule)
	}
	fmt.Fprintf(&b, "  Kind: %s\n", ce.Kind)
	fmt.Fprintf(&b, "  Error: %s", ce.Message)
	if ce.Cause != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", ce.Cause)
	}
	if len(ce.Suggestions) > 0 {
		b.WriteString("\n  Suggestions:")
		for _, s := range ce.Suggestions {
			fmt.Fprintf(&b, "\n    - %s", s)
		}
	}
	return b.String()
}

// ConfigurationErrorCollection holds every problem found in one file.
type ConfigurationErrorCollection struct {
	Errors []ConfigurationError `json:"errors"`
}

func (cec ConfigurationErrorCollection) Error() string {
	switch len(cec.Errors) {
	case 0:
		return "no configuration errors"
	case 1:
		return cec.Errors[0].Error()
	}
	return fmt.Sprintf("%d configuration errors: %s (and %d more)",
		len(cec.Errors), cec.Errors[0].Error(), len(cec.Errors)-1)
}

// Unwrap exposes the members to errors.Is and errors.As.
func (cec ConfigurationErrorCollection) Unwrap() []error {
	errs := make([]error, len(cec.Errors))
	for i, err := range cec.Errors {
		errs[i] = err
	}
	return errs
}

func (cec *ConfigurationErrorCollection) HasErrors() bool {
	return len(cec.Errors) > 0
}

func (cec *ConfigurationErrorCollection) Count() int {
	return len(cec.Errors)
}

func (cec *ConfigurationErrorCollection) Add(err ConfigurationError) {
	cec.Errors = append(cec.Errors, err)
}

// InFile stamps every member with the file it was found in.
func (cec *ConfigurationErrorCollection) InFile(path, name string) {
	for i := range cec.Errors {
		cec.Errors[i] = cec.Errors[i].WithFile(path, name)
	}
}

// ForInterceptor returns the members about one interceptor's rules.
func (cec *ConfigurationErrorCollection) ForInterceptor(id string) []ConfigurationError {
	var out []ConfigurationError
	for _, err := range cec.Errors {
		if err.Interceptor == id {
			out = append(out, err)
		}
	}
	return out
}

// Report renders all members for a terminal.
func (cec *ConfigurationErrorCollection) Report() string {
	if len(cec.Errors) == 0 {
		return "No configuration errors to report"
	}

	parts := []string{fmt.Sprintf("%d configuration error(s):", len(cec.Errors))}
	for i, err := range cec.Errors {
		parts = append(parts, fmt.Sprintf("\n#%d %s", i+1, err.DetailedError()))
	}
	return strings.Join(parts, "\n")
}

// AsConfigurationError reports whether err is, or wraps, configuration
// problems and returns them as a collection.
func AsConfigurationError(err error) (ConfigurationErrorCollection, bool) {
	var coll ConfigurationErrorCollection
	if errors.As(err, &coll) {
		return coll, coll.HasErrors()
	}
	var ce ConfigurationError
	if errors.As(err, &ce) {
		return ConfigurationErrorCollection{Errors: []ConfigurationError{ce}}, true
	}
	return coll, false
}
