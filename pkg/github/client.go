// Package github is a small client for the GitHub REST API used by actions.
//
// Actions reach the API only through a Client, so the harness can bind one
// whose transport is the network gate instead of the real network.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// DefaultBaseURL is the API root every request is sent to.
const DefaultBaseURL = "https://api.github.com"

const userAgent = "actionmock"

// Client issues requests against the API root.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTransport sets only the transport, keeping the other client defaults.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Transport: rt}
	}
}

// WithBaseURL points the client at a different API root, such as a local
// mock server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewClient creates a client authenticating with token. An empty token sends
// anonymous requests.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root of the client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is a completed API response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// IsJSON reports whether the response declares a JSON content type.
func (r *Response) IsJSON() bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Data returns the decoded JSON body when the response is JSON, and the body
// text otherwise.
func (r *Response) Data() (any, error) {
	if !r.IsJSON() {
		return string(r.Body), nil
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return v, nil
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	Method   string
	Path     string
	Status   int
	Response *Response
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(string(e.Response.Body))
	if msg == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, msg)
}

// Do sends a request. A non-nil body is encoded as JSON. Responses outside
// the 2xx range are returned together with a *StatusError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}

	resp := &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   data,
	}
	if resp.Status < 200 || resp.Status > 299 {
		return resp, &StatusError{Method: method, Path: path, Status: resp.Status, Response: resp}
	}
	return resp, nil
}
