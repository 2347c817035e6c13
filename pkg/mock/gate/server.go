package gate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/giantswarm/actionmock/pkg/logging"
)

// Server exposes a handler on a local TCP listener, for tools that talk to
// the API over the network instead of through a custom transport.
type Server struct {
	handler http.Handler
	host    string

	mu   sync.Mutex
	srv  *http.Server
	port int
	done chan struct{}
	err  error
}

// NewServer returns a stopped server for handler. An empty host listens on
// all interfaces.
func NewServer(handler http.Handler, host string) *Server {
	return &Server{handler: handler, host: host}
}

// Listen binds the port (0 picks a free one) and starts serving. The server
// accepts connections as soon as Listen returns. Listening again is a no-op
// unless a different, nonzero port is requested.
func (s *Server) Listen(port int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		if port == 0 || port == s.port {
			return s.port, nil
		}
		return 0, fmt.Errorf("mock API server already listening on port %d", s.port)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(port)))
	if err != nil {
		return 0, fmt.Errorf("listen on port %d: %w", port, err)
	}

	srv := &http.Server{Handler: s.handler, ReadHeaderTimeout: 10 * time.Second}
	done := make(chan struct{})
	s.srv, s.done, s.err = srv, done, nil
	s.port = ln.Addr().(*net.TCPAddr).Port

	go func() {
		defer close(done)
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			logging.Error("GateServer", err, "Mock API server stopped unexpectedly")
		}
	}()

	logging.Info("GateServer", "Mock API server listening on %s", ln.Addr())
	return s.port, nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Without a deadline on ctx it waits at most five seconds before closing
// connections forcibly.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.srv, s.done
	s.srv = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("GateServer", "Force closing mock API server: %v", err)
		_ = srv.Close()
	}
	<-done

	logging.Info("GateServer", "Mock API server on port %d stopped", s.Port())
	return s.Err()
}

// Port returns the bound port, or the last one after Shutdown.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Endpoint returns the base URL while listening, "" otherwise.
func (s *Server) Endpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv == nil {
		return ""
	}
	host := s.host
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.port))
}

// Err reports why serving stopped, if not through Shutdown.
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
