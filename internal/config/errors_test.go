package config

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := NewConfigurationError(SourceMocks, "", "exec", KindParse, "malformed rules", cause).
		WithFile("/tmp/mocks.yaml", "mocks.yaml").
		WithSuggestions("check the rule list")

	assert.Equal(t, "[mocks/exec] mocks.yaml: malformed rules: unexpected end of JSON input", err.Error())
	assert.ErrorIs(t, err, cause)

	detailed := err.DetailedError()
	assert.Contains(t, detailed, "Configuration error in mocks.yaml (mocks/exec)")
	assert.Contains(t, detailed, "File: /tmp/mocks.yaml")
	assert.Contains(t, detailed, "Kind: parse")
	assert.Contains(t, detailed, "Cause: unexpected end of JSON input")
	assert.Contains(t, detailed, "- check the rule list")
	assert.NotContains(t, detailed, "Rule:")
}

func TestConfigurationError_Environment(t *testing.T) {
	err := NewConfigurationError(SourceEnvironment, "EXEC_MOCKS", "exec", KindParse, "malformed mock rules", nil)

	assert.Equal(t, "[environment/exec] EXEC_MOCKS: malformed mock rules", err.Error())
	assert.NotContains(t, err.DetailedError(), "File:")
	assert.NotContains(t, err.DetailedError(), "Cause:")
}

func TestConfigurationError_WithRule(t *testing.T) {
	err := NewConfigurationError(SourceMocks, "m.yaml", "github", KindValidation, "bad method", nil).WithRule(3)

	assert.Equal(t, "[mocks/github] m.yaml rule 3: bad method", err.Error())
	assert.Contains(t, err.DetailedError(), "Rule: 3")
}

func TestConfigurationError_WithSuggestionsCopies(t *testing.T) {
	hints := []string{"a"}
	err := NewConfigurationError(SourceUser, "", "", KindValidation, "x", nil).WithSuggestions(hints...)
	hints[0] = "b"
	assert.Equal(t, []string{"a"}, err.Suggestions)
}

func TestConfigurationErrorCollection(t *testing.T) {
	var errs ConfigurationErrorCollection
	assert.False(t, errs.HasErrors())
	assert.Equal(t, "no configuration errors", errs.Error())
	assert.Equal(t, "No configuration errors to report", errs.Report())

	errs.Add(NewConfigurationError(SourceMocks, "", "exec", KindParse, "first", nil))
	errs.Add(NewConfigurationError(SourceMocks, "", "github", KindValidation, "second", fs.ErrInvalid))
	errs.InFile("/tmp/a.yaml", "a.yaml")

	assert.True(t, errs.HasErrors())
	assert.Equal(t, 2, errs.Count())
	assert.Equal(t, "2 configuration errors: [mocks/exec] a.yaml: first (and 1 more)", errs.Error())
	require.Len(t, errs.ForInterceptor("github"), 1)
	assert.Equal(t, "/tmp/a.yaml", errs.ForInterceptor("github")[0].Path)
	assert.Empty(t, errs.ForInterceptor("gitlab"))
	assert.ErrorIs(t, errs, fs.ErrInvalid)

	report := errs.Report()
	assert.Contains(t, report, "2 configuration error(s):")
	assert.Contains(t, report, "#2 Configuration error in a.yaml (mocks/github)")
}

func TestAsConfigurationError(t *testing.T) {
	single := NewConfigurationError(SourceUser, "config.yaml", "", KindIO, "cannot read", nil)
	coll := ConfigurationErrorCollection{Errors: []ConfigurationError{single, single}}

	tests := []struct {
		name  string
		err   error
		ok    bool
		count int
	}{
		{"nil", nil, false, 0},
		{"plain", errors.New("boom"), false, 0},
		{"single", single, true, 1},
		{"wrapped single", fmt.Errorf("load: %w", single), true, 1},
		{"collection", coll, true, 2},
		{"empty collection", ConfigurationErrorCollection{}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsConfigurationError(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.count, got.Count())
		})
	}
}
