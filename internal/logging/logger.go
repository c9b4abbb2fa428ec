// Package logging is the process-wide logger façade (§4.2). One sink per
// process, chosen by log.filename ("stdout", "stderr", or a file path).
// All six severities from trace to critical are supported; critical does
// not terminate the process — a misconfigured reader is skipped, not
// fatal to the run (§7).
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Level enumerates the six severities the spec names (§4.2).
type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
	Critical
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "CRITICAL"}

func (l Level) String() string {
	if int(l) >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel maps the config's integer log.level (0=trace .. 5=critical)
// onto a Level, clamping out-of-range values to the nearest valid one.
func ParseLevel(n int) Level {
	switch {
	case n < int(Trace):
		return Trace
	case n > int(Critical):
		return Critical
	default:
		return Level(n)
	}
}

// Logger is the concurrency-safe, levelled sink used across the pipeline.
// Guarded against use before Init / after Close: both L() and every
// logging method are no-ops on a nil receiver.
type Logger struct {
	mu      sync.Mutex
	level   Level
	pattern string
	inner   *log.Logger
	file    *os.File
}

var (
	global  *Logger
	initMu  sync.Mutex
	started bool
)

// Init creates the singleton logger. Safe to call once at startup; a
// second call is a no-op and returns the existing logger, matching the
// "loaded once at startup" invariant of the process context (§9).
func Init(minLevel Level, dest, pattern string) *Logger {
	initMu.Lock()
	defer initMu.Unlock()
	if started {
		return global
	}
	started = true

	var writers []io.Writer
	var f *os.File

	switch dest {
	case "", "stdout":
		writers = append(writers, os.Stdout)
	case "stderr":
		writers = append(writers, os.Stderr)
	default:
		var err error
		f, err = os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Printf("[WARN] could not open log file %s: %v, falling back to stdout", dest, err)
			writers = append(writers, os.Stdout)
		} else {
			writers = append(writers, f)
		}
	}

	mw := io.MultiWriter(writers...)
	global = &Logger{
		level:   minLevel,
		pattern: pattern,
		inner:   log.New(mw, "", 0),
		file:    f,
	}
	return global
}

// L returns the global logger. Before Init it returns a no-op logger
// rather than nil, so every call site can log unconditionally.
func L() *Logger {
	initMu.Lock()
	defer initMu.Unlock()
	if global == nil {
		return &Logger{level: Info, inner: log.New(io.Discard, "", 0)}
	}
	return global
}

// Close flushes and releases the log file, if any, and lets a future
// Init start a fresh sink. main calls it on exit; tests call it to build
// a fresh logger per case per the "process context" design note (§9).
func Close() {
	initMu.Lock()
	defer initMu.Unlock()
	if global != nil && global.file != nil {
		_ = global.file.Close()
	}
	global = nil
	started = false
}

func (l *Logger) log(lvl Level, format string, args ...any) {
	if l == nil || l.inner == nil || lvl < l.level {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	l.inner.Printf("[%s] %s  %s", lvl, ts, msg)
	l.mu.Unlock()
}

func (l *Logger) Trace(f string, a ...any)    { l.log(Trace, f, a...) }
func (l *Logger) Debug(f string, a ...any)    { l.log(Debug, f, a...) }
func (l *Logger) Info(f string, a ...any)     { l.log(Info, f, a...) }
func (l *Logger) Warn(f string, a ...any)     { l.log(Warn, f, a...) }
func (l *Logger) Error(f string, a ...any)    { l.log(Error, f, a...) }
func (l *Logger) Critical(f string, a ...any) { l.log(Critical, f, a...) }
