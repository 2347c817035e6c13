package githubmock

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/actionmock/pkg/github"
	"github.com/giantswarm/actionmock/pkg/mock"
	"github.com/giantswarm/actionmock/pkg/mock/gate"
)

var reposFixture = filepath.Join("testdata", "repos.json")

type setup struct {
	interceptor *Interceptor
	client      *github.Client
	logged      *[]string
}

func newSetup(t *testing.T) setup {
	t.Helper()

	g, err := gate.New(github.DefaultBaseURL, nil)
	require.NoError(t, err)

	var logged []string
	i := New(g)
	i.SetLog(func(line string) { logged = append(logged, line) })
	t.Cleanup(i.Restore)

	return setup{
		interceptor: i,
		client:      github.NewClient("token", github.WithTransport(g)),
		logged:      &logged,
	}
}

func statusOf(t *testing.T, resp *github.Response, err error) int {
	t.Helper()
	if err != nil {
		var statusErr *github.StatusError
		require.True(t, errors.As(err, &statusErr), "unexpected error: %v", err)
		return statusErr.Status
	}
	return resp.Status
}

func TestRespond_UsesFirstFoundRule(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(
		Rule{Method: "GET", ResponseCode: 400},
		Rule{Method: "GET", ResponseCode: 500},
	)

	resp, err := s.client.ListIssues(context.Background())
	assert.Equal(t, 400, statusOf(t, resp, err))
}

func TestRespond_LogsRequest(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{Method: "GET"})

	_, err := s.client.ListIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{`GET /issues : ""`}, *s.logged)
}

func TestRespond_LogsCompactJSONBody(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{Method: "PATCH", URI: mock.Compile("/orgs/test")})

	_, err := s.client.UpdateOrg(context.Background(), "test", map[string]any{"company": "company"})
	require.NoError(t, err)
	assert.Equal(t, []string{`PATCH /orgs/test : {"company":"company"}`}, *s.logged)
}

func TestLogBody(t *testing.T) {
	assert.Equal(t, `""`, logBody(nil))
	assert.Equal(t, `{"a":[1,2]}`, logBody([]byte("{ \"a\": [1, 2] }\n")))
	assert.Equal(t, `"plain text"`, logBody([]byte("plain text")))
}

func TestRespond_RejectsUnsuccessfulStatus(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{Method: "GET", ResponseCode: 404})

	_, err := s.client.ListIssues(context.Background())
	var statusErr *github.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 404, statusErr.Status)
}

func TestRespond_RouteNotMocked(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{Method: "POST"})

	_, err := s.client.ListIssues(context.Background())
	var statusErr *github.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
	assert.Equal(t, NotMockedBody, string(statusErr.Response.Body))
}

func TestRegister_Prepends(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{Method: "GET", URI: mock.Compile("/issues"), ResponseCode: 200})
	s.interceptor.Register(Rule{Method: "GET", URI: mock.Compile("/issues"), ResponseCode: 202})

	resp, err := s.client.ListIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 202, resp.Status)
}

func TestRegister_Batch(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(
		Rule{Method: "GET", URI: mock.Compile("/issues"), ResponseCode: 201},
		Rule{Method: "GET", URI: mock.Compile("/users"), ResponseCode: 202},
	)

	resp, err := s.client.ListIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 201, resp.Status)

	resp, err = s.client.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 202, resp.Status)
}

func TestRespond_StringResponse(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{Method: "GET", Response: []byte(`"response"`)})

	resp, err := s.client.ListIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "response", string(resp.Body))
	assert.False(t, resp.IsJSON())
}

func TestRespond_JSONResponse(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{Method: "GET", Response: []byte(`{ "login": "octocat" }`)})

	resp, err := s.client.ListUsers(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"login":"octocat"}`, string(resp.Body))
	assert.True(t, resp.IsJSON())
}

func TestRespond_ResponseFixture(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{Method: "GET", ResponseFixture: reposFixture})

	resp, err := s.client.ListIssues(context.Background())
	require.NoError(t, err)

	want, err := os.ReadFile(reposFixture)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(resp.Body))

	data, err := resp.Data()
	require.NoError(t, err)
	assert.IsType(t, []any{}, data)
}

func TestRespond_File(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{Method: "GET", File: reposFixture})

	resp, err := s.client.ListIssues(context.Background())
	require.NoError(t, err)

	want, err := os.ReadFile(reposFixture)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(resp.Body))

	data, err := resp.Data()
	require.NoError(t, err)
	assert.IsType(t, "", data, "file bodies without a content type are text")
}

func TestRespond_Headers(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{
		Method:  "GET",
		File:    reposFixture,
		Headers: map[string]string{"content-type": "application/json", "x-ratelimit-remaining": "0"},
	})

	resp, err := s.client.ListIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "0", resp.Header.Get("X-Ratelimit-Remaining"))

	data, err := resp.Data()
	require.NoError(t, err)
	assert.IsType(t, []any{}, data)
}

func TestRespond_RuleContentTypeWins(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{
		Method:   "GET",
		Response: []byte(`{"a":1}`),
		Headers:  map[string]string{"Content-Type": "application/vnd.github+json"},
	})

	resp, err := s.client.ListIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.github+json", resp.Header.Get("Content-Type"))
}

func TestRespond_BodyPrecedence(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{
		Method:          "GET",
		Response:        []byte(`"inline"`),
		ResponseFixture: reposFixture,
		File:            reposFixture,
	})

	resp, err := s.client.ListIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inline", string(resp.Body))
}

func TestRespond_MissingFileFailsTransport(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{Method: "GET", ResponseFixture: filepath.Join(t.TempDir(), "missing.json")})

	_, err := s.client.ListIssues(context.Background())
	require.Error(t, err)
	var statusErr *github.StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestRespond_InvalidFixtureFailsTransport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := newSetup(t)
	s.interceptor.Register(Rule{Method: "GET", ResponseFixture: path})

	_, err := s.client.ListIssues(context.Background())
	assert.ErrorContains(t, err, "not valid JSON")
}

func TestRespond_CountExpiry(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(
		Rule{Method: "GET", ResponseCode: 201, Count: 1},
		Rule{Method: "GET", ResponseCode: 202},
	)

	resp, err := s.client.ListIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 201, resp.Status)

	resp, err = s.client.ListIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 202, resp.Status)
}

func TestRespond_UnreadableFixtureKeepsCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.json")

	s := newSetup(t)
	s.interceptor.Register(
		Rule{Method: "GET", ResponseFixture: path, Count: 1},
		Rule{Method: "GET", ResponseCode: 202},
	)

	_, err := s.client.ListIssues(context.Background())
	require.ErrorContains(t, err, "failed to read response fixture")
	require.Len(t, s.interceptor.Rules(), 2)

	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1}]`), 0o600))

	resp, err := s.client.ListIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Len(t, s.interceptor.Rules(), 1)

	resp, err = s.client.ListIssues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 202, resp.Status)
}

func TestRespond_MethodMustMatchExactly(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{Method: "get"})

	_, err := s.client.ListIssues(context.Background())
	var statusErr *github.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
}

func TestClear(t *testing.T) {
	s := newSetup(t)
	s.interceptor.Register(Rule{Method: "GET", ResponseCode: 200})
	s.interceptor.Clear()

	_, err := s.client.ListIssues(context.Background())
	var statusErr *github.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
}

func TestRestore(t *testing.T) {
	g, err := gate.New(github.DefaultBaseURL, nil)
	require.NoError(t, err)
	client := github.NewClient("", github.WithTransport(g))

	var logged []string
	i := New(g)
	i.SetLog(func(line string) { logged = append(logged, line) })
	i.Register(Rule{Method: "GET"})
	require.True(t, g.Active())

	i.Restore()
	assert.Empty(t, i.Rules())
	assert.False(t, g.Active())

	_, err = client.ListIssues(context.Background())
	assert.ErrorIs(t, err, gate.ErrNotIntercepted)
	assert.Empty(t, logged)
}

func TestRegisterJSON(t *testing.T) {
	s := newSetup(t)

	require.NoError(t, s.interceptor.RegisterJSON([]byte(`{"method":"GET","uri":"/users","responseCode":202}`)))
	require.NoError(t, s.interceptor.RegisterJSON([]byte(`[
		{"method":"GET","uri":"^/issues","response":{"total":1},"count":1},
		{"method":"PATCH","uri":"/orgs/.*","headers":{"x-test":"1"}}
	]`)))

	rules := s.interceptor.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, "^/issues", rules[0].URI.String())
	assert.JSONEq(t, `{"total":1}`, string(rules[0].Response))
	assert.Equal(t, "1", rules[1].Headers["x-test"])
	assert.Equal(t, 202, rules[2].ResponseCode)

	resp, err := s.client.ListIssues(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":1}`, string(resp.Body))

	assert.Error(t, s.interceptor.RegisterJSON([]byte(`{"method":`)))
	assert.Equal(t, ID, s.interceptor.ID())
}

func TestRespond_ServedOverHTTP(t *testing.T) {
	i := New(nil)
	i.SetLog(mock.Discard)
	i.Register(Rule{Method: "GET", URI: mock.Compile("/user/repos"), ResponseFixture: reposFixture})

	server := gate.NewServer(gate.Handler(i), "127.0.0.1")
	port, err := server.Listen(0)
	require.NoError(t, err)
	defer server.Shutdown(context.Background())
	require.NotZero(t, port)

	client := github.NewClient("", github.WithBaseURL(server.Endpoint()))
	resp, err := client.ListRepos(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.IsJSON())
}
