// Package githubmock fakes the GitHub REST API for actions under test.
//
// The interceptor is the responder of a gate.Gate, so every request to the
// API root is either answered by a rule or fails closed with a 404.
package githubmock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/tidwall/gjson"

	"github.com/giantswarm/actionmock/internal/matcher"
	"github.com/giantswarm/actionmock/pkg/mock"
	"github.com/giantswarm/actionmock/pkg/mock/gate"
)

// ID is the interceptor identifier; rules arrive in GITHUB_MOCKS.
const ID = "github"

// NotMockedBody is the body of the 404 sent for unmatched requests.
const NotMockedBody = "Route not mocked"

// Rule fakes every request with Method whose URI matches URI.
type Rule struct {
	// Method must equal the request verb exactly.
	Method string `json:"method"`
	// URI is searched in the path and query relative to the API root.
	URI mock.Pattern `json:"uri"`
	// ResponseCode defaults to 200.
	ResponseCode int `json:"responseCode,omitempty"`
	// Response is the body. A JSON string is sent as-is, anything else as JSON.
	Response json.RawMessage `json:"response,omitempty"`
	// ResponseFixture is a JSON file sent as the body when Response is unset.
	ResponseFixture string `json:"responseFixture,omitempty"`
	// File is streamed raw as the body when neither Response nor ResponseFixture is set.
	File    string            `json:"file,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	// Count is how many requests the rule answers before it is removed; 0 means unlimited.
	Count int `json:"count,omitempty"`
}

// Limit implements matcher.Rule.
func (r Rule) Limit() int {
	return r.Count
}

// Interceptor answers gated GitHub API requests from rules.
type Interceptor struct {
	gate  *gate.Gate
	rules matcher.List[Rule]
	log   mock.SinkSlot
}

var _ gate.Responder = (*Interceptor)(nil)
var _ mock.Interceptor = (*Interceptor)(nil)

// New creates an interceptor and installs it as the responder of g.
// A nil gate leaves installation to the caller.
func New(g *gate.Gate) *Interceptor {
	i := &Interceptor{gate: g}
	if g != nil {
		g.Intercept(i)
	}
	return i
}

// ID implements mock.Interceptor.
func (i *Interceptor) ID() string {
	return ID
}

// Register places rules ahead of all existing rules.
func (i *Interceptor) Register(rules ...Rule) {
	i.rules.Register(rules...)
}

// Replace swaps all rules for rules atomically.
func (i *Interceptor) Replace(rules ...Rule) {
	i.rules.Replace(rules...)
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

// Restore drops all rules, restores the default log sink and detaches from
// the gate. The API root stays blocked afterwards.
func (i *Interceptor) Restore() {
	i.Clear()
	i.log.Reset()
	if i.gate != nil {
		i.gate.Close()
	}
}

// SetLog replaces the log sink.
func (i *Interceptor) SetLog(sink mock.Sink) {
	i.log.Set(sink)
}

// Respond implements gate.Responder.
func (i *Interceptor) Respond(req *gate.Request) (*gate.Reply, error) {
	i.log.Log(fmt.Sprintf("%s %s : %s", req.Method, req.URI, logBody(req.Body)))

	// The body is loaded before the call is charged, so a rule whose
	// fixture cannot be read keeps its count.
	var reply *gate.Reply
	_, ok, err := i.rules.Resolve(
		func(r Rule) bool { return r.Method == req.Method && r.URI.Match(req.URI) },
		func(r Rule) (err error) {
			reply, err = r.reply()
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &gate.Reply{
			Status: http.StatusNotFound,
			Header: http.Header{"Content-Type": {"text/plain; charset=utf-8"}},
			Body:   gate.BytesBody([]byte(NotMockedBody)),
		}, nil
	}
	return reply, nil
}

func (r Rule) reply() (*gate.Reply, error) {
	status := r.ResponseCode
	if status == 0 {
		status = http.StatusOK
	}

	header := http.Header{}
	for name, value := range r.Headers {
		header.Set(name, value)
	}

	reply := &gate.Reply{Status: status, Header: header}

	switch {
	case hasValue(r.Response):
		result := gjson.ParseBytes(r.Response)
		if result.Type == gjson.String {
			reply.Body = gate.BytesBody([]byte(result.Str))
			break
		}
		reply.Body = gate.BytesBody([]byte(compact(r.Response)))
		setJSONContentType(header)

	case r.ResponseFixture != "":
		data, err := os.ReadFile(r.ResponseFixture)
		if err != nil {
			return nil, fmt.Errorf("failed to read response fixture: %w", err)
		}
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("response fixture %s is not valid JSON", r.ResponseFixture)
		}
		reply.Body = gate.BytesBody([]byte(compact(data)))
		setJSONContentType(header)

	case r.File != "":
		f, err := os.Open(r.File)
		if err != nil {
			return nil, fmt.Errorf("failed to open response file: %w", err)
		}
		reply.Body = f
	}

	return reply, nil
}

// logBody renders a request body for the log line: JSON compacted, anything
// else as a JSON string.
func logBody(body []byte) string {
	if len(body) > 0 && gjson.ValidBytes(body) {
		return compact(body)
	}
	quoted, _ := json.Marshal(string(body))
	return string(quoted)
}

func compact(data []byte) string {
	return gjson.GetBytes(data, "@ugly").Raw
}

func hasValue(raw json.RawMessage) bool {
	result := gjson.ParseBytes(raw)
	return result.Exists() && result.Type != gjson.Null
}

func setJSONContentType(header http.Header) {
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}
}
