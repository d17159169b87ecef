package log

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Logger defines minimal logging interface used across the project.
type Logger interface {
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
	Debug(msg string, kv ...interface{})
}

// Level represents log verbosity.
type Level int

const (
	ErrorLevel Level = iota
	WarnLevel
	InfoLevel
	DebugLevel
)

// String returns canonical lower-case representation.
func (l Level) String() string {
	switch l {
	case ErrorLevel:
		return "error"
	case WarnLevel:
		return "warn"
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel parses a string into a Level. Accepts a few common aliases.
func ParseLevel(s string) (Level, error) {
	normalized := strings.TrimSpace(strings.ToLower(s))
	switch normalized {
	case "", "info":
		return InfoLevel, nil
	case "error", "err":
		return ErrorLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "debug", "dbg":
		return DebugLevel, nil
	default:
		return InfoLevel, errors.New("unknown log level: " + s)
	}
}

// SimpleLogger writes one key=value line per event.
type SimpleLogger struct {
	mu    sync.Mutex
	lvl   Level
	out   *log.Logger
	clock func() time.Time
}

// NewSimple creates a new SimpleLogger writing to stderr with given level.
// Stdout stays free for command output such as the validate plan.
func NewSimple(l Level) *SimpleLogger {
	return NewWriter(l, os.Stderr)
}

// NewWriter creates a SimpleLogger writing to w.
func NewWriter(l Level, w io.Writer) *SimpleLogger {
	return &SimpleLogger{
		lvl:   l,
		out:   log.New(w, "", 0),
		clock: time.Now,
	}
}

func (s *SimpleLogger) log(level Level, tag, msg string, kv []interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if level > s.lvl {
		return
	}
	ts := s.clock().Format(time.RFC3339Nano)
	if len(kv)%2 != 0 { // ensure even pairs
		kv = append(kv, "_odd")
	}
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprint(kv[i]))
		b.WriteByte('=')
		b.WriteString(formatValue(kv[i+1]))
	}
	s.out.Printf("%s [%s] %s%s", ts, tag, msg, b.String())
}

// formatValue quotes values containing whitespace or quotes so a multi-line
// statement stays on a single log line.
func formatValue(v interface{}) string {
	str := fmt.Sprint(v)
	if str == "" || strings.ContainsAny(str, " \t\r\n\"=") {
		return strconv.Quote(str)
	}
	return str
}

func (s *SimpleLogger) Info(msg string, kv ...interface{})  { s.log(InfoLevel, "INFO", msg, kv) }
func (s *SimpleLogger) Warn(msg string, kv ...interface{})  { s.log(WarnLevel, "WARN", msg, kv) }
func (s *SimpleLogger) Error(msg string, kv ...interface{}) { s.log(ErrorLevel, "ERROR", msg, kv) }
func (s *SimpleLogger) Debug(msg string, kv ...interface{}) { s.log(DebugLevel, "DEBUG", msg, kv) }

// SetLevel changes the logger verbosity at runtime.
func (s *SimpleLogger) SetLevel(l Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lvl = l
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

var (
	globalMu     sync.RWMutex
	globalLogger Logger = NewSimple(InfoLevel)
)

// SetGlobal sets the process-wide logger.
func SetGlobal(l Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// Global returns the process-wide logger.
func Global() Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	return l
}
