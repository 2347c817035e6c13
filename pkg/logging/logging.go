package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

type levelInfo struct {
	name  string
	label string
	slog  slog.Level
}

var levels = [...]levelInfo{
	LevelDebug: {"debug", "DEBUG", slog.LevelDebug},
	LevelInfo:  {"info", "INFO", slog.LevelInfo},
	LevelWarn:  {"warn", "WARN", slog.LevelWarn},
	LevelError: {"error", "ERROR", slog.LevelError},
}

func (l LogLevel) valid() bool {
	return l >= 0 && int(l) < len(levels)
}

func (l LogLevel) String() string {
	if !l.valid() {
		return "UNKNOWN"
	}
	return levels[l].label
}

// SlogLevel maps l onto slog. Unknown levels map to info.
func (l LogLevel) SlogLevel() slog.Level {
	if !l.valid() {
		return slog.LevelInfo
	}
	return levels[l].slog
}

// ParseLevel converts a level name from configuration, flags or the
// environment into a LogLevel. Unknown names fall back to LevelInfo.
func ParseLevel(name string) LogLevel {
	level, _ := LookupLevel(name)
	return level
}

// LookupLevel is ParseLevel reporting whether the name was known. The empty
// name is known and means LevelInfo.
func LookupLevel(name string) (LogLevel, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return LevelInfo, true
	case "warning":
		return LevelWarn, true
	}
	for l, info := range levels {
		if info.name == name {
			return LogLevel(l), true
		}
	}
	return LevelInfo, false
}

// LevelNames lists the canonical names LookupLevel accepts, lowest first.
func LevelNames() []string {
	names := make([]string, len(levels))
	for l, info := range levels {
		names[l] = info.name
	}
	return names
}

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

// InitForCLI installs a text handler writing to output. Until it is called,
// all log calls are dropped, which keeps test binaries and actions free of
// harness diagnostics.
func InitForCLI(filterLevel LogLevel, output io.Writer) {
	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: filterLevel.SlogLevel(),
	}))

	mu.Lock()
	defaultLogger = logger
	mu.Unlock()
}

// With tags every later entry with key=value, e.g. the id of the run a
// loader process belongs to. It is a no-op before InitForCLI.
func With(key, value string) {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger != nil {
		defaultLogger = defaultLogger.With(slog.String(key, value))
	}
}

// Reset drops the configured logger so subsequent log calls are discarded.
func Reset() {
	mu.Lock()
	defaultLogger = nil
	mu.Unlock()
}

func logf(level LogLevel, subsystem string, err error, format string, args ...any) {
	mu.RLock()
	logger := defaultLogger
	mu.RUnlock()

	ctx := context.Background()
	if logger == nil || !logger.Enabled(ctx, level.SlogLevel()) {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.LogAttrs(ctx, level.SlogLevel(), msg, attrs...)
}

func Debug(subsystem string, format string, args ...any) {
	logf(LevelDebug, subsystem, nil, format, args...)
}

func Info(subsystem string, format string, args ...any) {
	logf(LevelInfo, subsystem, nil, format, args...)
}

func Warn(subsystem string, format string, args ...any) {
	logf(LevelWarn, subsystem, nil, format, args...)
}

// Error logs at error level with err attached as an attribute.
func Error(subsystem string, err error, format string, args ...any) {
	logf(LevelError, subsystem, err, format, args...)
}
