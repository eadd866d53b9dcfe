package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"
)

// Logger is a leveled printf-style logger. Errors go to their own writer
// (stderr by default); every line carries a timestamp and the component name.
type Logger struct {
	component string
	out       *log.Logger
	err       *log.Logger
	debug     atomic.Bool
	now       func() time.Time
}

// NewLogger returns a Logger writing to stdout and stderr.
func NewLogger(component string) *Logger {
	return New(os.Stdout, os.Stderr, component)
}

// New returns a Logger writing info, warn and debug lines to out and error
// lines to errOut.
func New(out, errOut io.Writer, component string) *Logger {
	return &Logger{
		component: component,
		out:       log.New(out, "", 0),
		err:       log.New(errOut, "", 0),
		now:       time.Now,
	}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, io.Discard, "")
}

// SetDebug enables or disables Debug output.
func (l *Logger) SetDebug(enabled bool) {
	l.debug.Store(enabled)
}

// With returns a Logger for a sub-component sharing the same writers.
func (l *Logger) With(component string) *Logger {
	child := &Logger{
		component: component,
		out:       l.out,
		err:       l.err,
		now:       l.now,
	}
	if l.component != "" {
		child.component = l.component + "." + component
	}
	child.debug.Store(l.debug.Load())
	return child
}

func (l *Logger) line(level, format string, args []any) string {
	msg := fmt.Sprintf(format, args...)
	ts := l.now().Format("2006-01-02 15:04:05")
	if l.component == "" {
		return fmt.Sprintf("[%s] %-5s %s", ts, level, msg)
	}
	return fmt.Sprintf("[%s] %-5s [%s] %s", ts, level, l.component, msg)
}

func (l *Logger) Info(format string, args ...any) {
	l.out.Println(l.line("INFO", format, args))
}

func (l *Logger) Warn(format string, args ...any) {
	l.out.Println(l.line("WARN", format, args))
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Println(l.line("ERROR", format, args))
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.debug.Load() {
		return
	}
	l.out.Println(l.line("DEBUG", format, args))
}
