package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"sigs.k8s.io/yaml"

	"github.com/giantswarm/actionmock/pkg/mock"
	"github.com/giantswarm/actionmock/pkg/mock/execmock"
	"github.com/giantswarm/actionmock/pkg/mock/gate"
	"github.com/giantswarm/actionmock/pkg/mock/githubmock"
)

// MocksFile is a parsed mocks file. Rules stay in their JSON form so they
// reach the child exactly as written.
type MocksFile struct {
	Path     string                     `json:"-"`
	Mocks    map[string]json.RawMessage `json:"mocks,omitempty"`
	Env      map[string]string          `json:"env,omitempty"`
	EnvFiles []string                   `json:"envFiles,omitempty"`
}

// LoadMocksFile reads, renders and validates a YAML or JSON mocks file.
// Relative envFiles are resolved against the file's directory.
func LoadMocksFile(path string) (*MocksFile, error) {
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigurationError(SourceMocks, name, "", KindIO, "cannot read mocks file", err).WithFile(path, name)
	}

	dir := filepath.Dir(path)
	rendered, err := RenderMocks(data, dir)
	if err != nil {
		return nil, NewConfigurationError(SourceMocks, name, "", KindTemplate, "failed to render mocks file", err).
			WithFile(path, name).
			WithSuggestions(`mocks files are Go templates; escape literal braces as {{ "{{" }}`)
	}

	f, err := ParseMocks(rendered)
	if err != nil {
		return nil, NewConfigurationError(SourceMocks, name, "", KindParse, "malformed mocks file", err).WithFile(path, name)
	}
	f.Path = path

	for i, envFile := range f.EnvFiles {
		if !filepath.IsAbs(envFile) {
			f.EnvFiles[i] = filepath.Join(dir, envFile)
		}
	}

	if errs := f.Validate(); errs.HasErrors() {
		errs.InFile(path, name)
		return f, errs
	}
	return f, nil
}

// templateData is what a mocks file template can refer to.
type templateData struct {
	// Dir is the directory of the mocks file, for fixture paths.
	Dir string
}

// RenderMocks executes a mocks document as a text/template with the sprig
// function library, so rules can refer to {{ .Dir }}, {{ env "HOME" }} and
// similar.
func RenderMocks(data []byte, dir string) ([]byte, error) {
	tmpl, err := template.New("mocks").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(string(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{Dir: dir}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseMocks decodes a mocks document without validating its rules.
func ParseMocks(data []byte) (*MocksFile, error) {
	var f MocksFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate decodes the rules of every interceptor and reports all problems.
func (f *MocksFile) Validate() ConfigurationErrorCollection {
	var errs ConfigurationErrorCollection

	for _, id := range f.IDs() {
		var err error
		switch id {
		case execmock.ID:
			_, err = f.ExecRules()
		case githubmock.ID:
			var rules []githubmock.Rule
			rules, err = f.GitHubRules()
			for i, rule := range rules {
				if !isInterceptedMethod(rule.Method) {
					errs.Add(NewConfigurationError(SourceMocks, "", id, KindValidation,
						fmt.Sprintf("method %q is never intercepted", rule.Method), nil).
						WithRule(i + 1).
						WithSuggestions(fmt.Sprintf("use one of %v", gate.InterceptedMethods)))
				}
			}
		default:
			errs.Add(NewConfigurationError(SourceMocks, "", id, KindValidation,
				fmt.Sprintf("unknown interceptor %q", id), nil).
				WithSuggestions(fmt.Sprintf("known interceptors are %q and %q", execmock.ID, githubmock.ID)))
			continue
		}
		if err != nil {
			errs.Add(NewConfigurationError(SourceMocks, "", id, KindParse, "malformed rules", err))
		}
	}

	return errs
}

// IDs returns the interceptor ids that have rules, sorted.
func (f *MocksFile) IDs() []string {
	ids := make([]string, 0, len(f.Mocks))
	for id := range f.Mocks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ExecRules decodes the exec rules.
func (f *MocksFile) ExecRules() ([]execmock.Rule, error) {
	return mock.DecodeRules[execmock.Rule](f.Mocks[execmock.ID])
}

// GitHubRules decodes the github rules.
func (f *MocksFile) GitHubRules() ([]githubmock.Rule, error) {
	return mock.DecodeRules[githubmock.Rule](f.Mocks[githubmock.ID])
}

// RunMocks returns the rules in the form harness.Options.Mocks expects.
func (f *MocksFile) RunMocks() map[string]any {
	out := make(map[string]any, len(f.Mocks))
	for id, raw := range f.Mocks {
		out[id] = raw
	}
	return out
}

func isInterceptedMethod(method string) bool {
	for _, m := range gate.InterceptedMethods {
		if m == method {
			return true
		}
	}
	return false
}
