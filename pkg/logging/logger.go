// Package logging provides the small structured logger cmd/supervisor
// uses for boot, shutdown, and metrics-endpoint events.
//
// Grounded on the teacher's pkg/core.Logger (pkg/core/logger.go),
// trimmed from its four-level WithFields/WithContext interface down to
// the plain, JSON-optional leveled logger the supervisor binary needs;
// the request-ID/context plumbing doesn't apply to a process with no
// HTTP request scope, so it's dropped rather than carried unused.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// Logger is the leveled logger cmd/supervisor logs through.
type Logger interface {
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

type jsonLogger struct {
	out *log.Logger
}

// New returns a Logger that writes one JSON object per line to stderr,
// or a plain-text logger when jsonOutput is false.
func New(jsonOutput bool) Logger {
	out := log.New(os.Stderr, "", 0)
	if jsonOutput {
		return &jsonLogger{out: out}
	}
	return &textLogger{out: out}
}

type logLine struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

func (l *jsonLogger) emit(level, msg string) {
	line := logLine{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Message:   msg,
	}
	data, err := json.Marshal(line)
	if err != nil {
		l.out.Printf("{\"level\":%q,\"message\":%q}", level, msg)
		return
	}
	l.out.Println(string(data))
}

func (l *jsonLogger) Info(args ...interface{})  { l.emit("info", fmt.Sprint(args...)) }
func (l *jsonLogger) Warn(args ...interface{})  { l.emit("warn", fmt.Sprint(args...)) }
func (l *jsonLogger) Error(args ...interface{}) { l.emit("error", fmt.Sprint(args...)) }

func (l *jsonLogger) Infof(format string, args ...interface{}) {
	l.emit("info", fmt.Sprintf(format, args...))
}
func (l *jsonLogger) Warnf(format string, args ...interface{}) {
	l.emit("warn", fmt.Sprintf(format, args...))
}
func (l *jsonLogger) Errorf(format string, args ...interface{}) {
	l.emit("error", fmt.Sprintf(format, args...))
}

type textLogger struct {
	out *log.Logger
}

func (l *textLogger) emit(level, msg string) {
	l.out.Printf("[%s] %s %s", level, time.Now().UTC().Format(time.RFC3339), msg)
}

func (l *textLogger) Info(args ...interface{})  { l.emit("INFO", fmt.Sprint(args...)) }
func (l *textLogger) Warn(args ...interface{})  { l.emit("WARN", fmt.Sprint(args...)) }
func (l *textLogger) Error(args ...interface{}) { l.emit("ERROR", fmt.Sprint(args...)) }

func (l *textLogger) Infof(format string, args ...interface{}) {
	l.emit("INFO", fmt.Sprintf(format, args...))
}
func (l *textLogger) Warnf(format string, args ...interface{}) {
	l.emit("WARN", fmt.Sprintf(format, args...))
}
func (l *textLogger) Errorf(format string, args ...interface{}) {
	l.emit("ERROR", fmt.Sprintf(format, args...))
}
