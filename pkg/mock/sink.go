package mock

import (
	"fmt"
	"os"
	"sync"
)

// Sink receives one log line per intercepted call. Tests swap it to capture
// or silence what the interceptors report.
type Sink func(line string)

// DefaultSink writes the line to the process's standard error.
func DefaultSink(line string) {
	fmt.Fprintln(os.Stderr, line)
}

// Discard drops every line.
func Discard(string) {}

// SinkSlot holds the current sink of one interceptor.
// The zero value logs through DefaultSink.
type SinkSlot struct {
	mu   sync.RWMutex
	sink Sink
}

// Set replaces the sink. A nil sink restores the default.
func (s *SinkSlot) Set(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// Reset restores DefaultSink.
func (s *SinkSlot) Reset() {
	s.Set(nil)
}

// Log sends line to the current sink.
func (s *SinkSlot) Log(line string) {
	s.mu.RLock()
	sink := s.sink
	s.mu.RUnlock()

	if sink == nil {
		sink = DefaultSink
	}
	sink(line)
}
