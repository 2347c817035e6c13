// Package gate intercepts HTTP traffic to one fixed API root.
//
// A Gate is an http.RoundTripper. Requests for its base URL are answered by
// the registered Responder and never reach the network, with or without a
// responder. Requests for any other host go to the wrapped transport.
package gate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

var (
	// ErrNotIntercepted is returned for requests to the API root while no
	// responder is registered.
	ErrNotIntercepted = errors.New("request to intercepted API root has no responder")

	// ErrMethodNotIntercepted is returned for verbs outside InterceptedMethods.
	ErrMethodNotIntercepted = errors.New("method is not intercepted")
)

// InterceptedMethods are the verbs answered by the responder.
var InterceptedMethods = []string{
	http.MethodGet,
	http.MethodPut,
	http.MethodPost,
	http.MethodPatch,
	http.MethodDelete,
}

// Request is an intercepted request. URI is the path and query relative to
// the API root.
type Request struct {
	Method string
	URI    string
	Header http.Header
	Body   []byte
}

// Reply is the synthesized response. A nil Body sends no content.
type Reply struct {
	Status int
	Header http.Header
	Body   io.ReadCloser
}

// Responder answers intercepted requests. A returned error fails the request
// at the transport level.
type Responder interface {
	Respond(req *Request) (*Reply, error)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(req *Request) (*Reply, error)

// Respond calls f.
func (f ResponderFunc) Respond(req *Request) (*Reply, error) {
	return f(req)
}

// Gate routes requests for one API root to a Responder.
type Gate struct {
	base     *url.URL
	baseHost string
	basePort string
	next     http.RoundTripper

	mu        sync.RWMutex
	responder Responder
}

// New creates a gate for baseURL. Requests for other hosts are sent through
// next, or http.DefaultTransport when next is nil.
func New(baseURL string, next http.RoundTripper) (*Gate, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}
	if next == nil {
		next = http.DefaultTransport
	}
	host, port := hostPort(base)
	return &Gate{base: base, baseHost: host, basePort: port, next: next}, nil
}

// hostPort returns the lower-cased host without a trailing root dot and the
// port, defaulted from the scheme, so every spelling of one endpoint compares
// equal.
func hostPort(u *url.URL) (string, string) {
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	port := u.Port()
	if port == "" {
		switch strings.ToLower(u.Scheme) {
		case "https":
			port = "443"
		case "http":
			port = "80"
		}
	}
	return host, port
}

// BaseURL returns the intercepted API root.
func (g *Gate) BaseURL() string {
	return g.base.String()
}

// Intercept makes r answer every request for the API root.
func (g *Gate) Intercept(r Responder) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responder = r
}

// Close removes the responder. The API root stays blocked.
func (g *Gate) Close() {
	g.Intercept(nil)
}

// Active reports whether a responder is registered.
func (g *Gate) Active() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.responder != nil
}

// RoundTrip implements http.RoundTripper.
func (g *Gate) RoundTrip(req *http.Request) (*http.Response, error) {
	uri, ok := g.relativeURI(req.URL)
	if !ok {
		return g.next.RoundTrip(req)
	}

	body, err := readBody(req)
	if err != nil {
		return nil, err
	}

	if !isIntercepted(req.Method) {
		return nil, fmt.Errorf("%s %s: %w", req.Method, uri, ErrMethodNotIntercepted)
	}

	g.mu.RLock()
	responder := g.responder
	g.mu.RUnlock()
	if responder == nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, uri, ErrNotIntercepted)
	}

	reply, err := responder.Respond(&Request{
		Method: req.Method,
		URI:    uri,
		Header: req.Header.Clone(),
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, uri, err)
	}

	return reply.toResponse(req), nil
}

// relativeURI returns the request path and query below the API root, and
// whether the URL belongs to the API root at all.
func (g *Gate) relativeURI(u *url.URL) (string, bool) {
	if !strings.EqualFold(u.Scheme, g.base.Scheme) {
		return "", false
	}
	if host, port := hostPort(u); host != g.baseHost || port != g.basePort {
		return "", false
	}

	uri := u.RequestURI()
	if g.base.Path == "" {
		return uri, true
	}
	if uri != g.base.Path && !strings.HasPrefix(uri, g.base.Path+"/") && !strings.HasPrefix(uri, g.base.Path+"?") {
		return "", false
	}
	uri = strings.TrimPrefix(uri, g.base.Path)
	if uri == "" || uri[0] == '?' {
		uri = "/" + uri
	}
	return uri, true
}

func (r *Reply) toResponse(req *http.Request) *http.Response {
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	header := r.Header
	if header == nil {
		header = http.Header{}
	}
	body := r.Body
	if body == nil {
		body = http.NoBody
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          body,
		ContentLength: -1,
		Request:       req,
	}
}

func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()

	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return data, nil
}

func isIntercepted(method string) bool {
	for _, m := range InterceptedMethods {
		if m == method {
			return true
		}
	}
	return false
}

// BytesBody wraps data as a reply body.
func BytesBody(data []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(data))
}
