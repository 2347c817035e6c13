package gate

import (
	"errors"
	"io"
	"net/http"

	"github.com/giantswarm/actionmock/pkg/logging"
)

// Handler serves a Responder over plain HTTP, for use outside the gate.
// Transport-level responder errors become 502 responses.
func Handler(r Responder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !isIntercepted(req.Method) {
			http.Error(w, ErrMethodNotIntercepted.Error(), http.StatusMethodNotAllowed)
			return
		}

		body, err := readBody(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		reply, err := r.Respond(&Request{
			Method: req.Method,
			URI:    req.URL.RequestURI(),
			Header: req.Header.Clone(),
			Body:   body,
		})
		if err != nil {
			logging.Warn("Gate", "Responder failed for %s %s: %v", req.Method, req.URL.RequestURI(), err)
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		for name, values := range reply.Header {
			for _, v := range values {
				w.Header().Add(name, v)
			}
		}
		status := reply.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)

		if reply.Body == nil {
			return
		}
		defer reply.Body.Close()
		if _, err := io.Copy(w, reply.Body); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
			logging.Debug("Gate", "Failed to stream reply for %s %s: %v", req.Method, req.URL.RequestURI(), err)
		}
	})
}
