// Package logging provides the shared logging system for cull. Loggers
// are obtained per component and write structured records to a log file
// under the XDG state directory, optionally mirrored to stderr when not
// running the TUI (which owns the screen).
//
// Basic usage:
//
//	cfg := logging.Config{Level: "info", Path: logging.DefaultLogPath()}
//	if err := logging.Init(cfg); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("scanner")
//	logger.Info("scan started", "root", root)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// toCharmLevel converts our Level to a charmbracelet/log level.
func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	// Components maps component names to level overrides.
	Components map[string]string

	// TUIMode disables console output; the TUI owns the screen.
	TUIMode bool
}

// Logger writes structured records for one component.
type Logger struct {
	file    *log.Logger // file sink, io.Discard before Init
	console *log.Logger // optional stderr sink
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.file.Debug(msg, args...)
	l.mirror(LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.file.Info(msg, args...)
	l.mirror(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.file.Warn(msg, args...)
	l.mirror(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.file.Error(msg, args...)
	l.mirror(LevelError, msg, args...)
}

// With returns a logger with additional context fields.
func (l *Logger) With(args ...interface{}) *Logger {
	out := &Logger{file: l.file.With(args...)}
	if l.console != nil {
		out.console = l.console.With(args...)
	}
	return out
}

func (l *Logger) mirror(level Level, msg string, args ...interface{}) {
	if l.console == nil {
		return
	}
	switch level {
	case LevelDebug:
		l.console.Debug(msg, args...)
	case LevelInfo:
		l.console.Info(msg, args...)
	case LevelWarn:
		l.console.Warn(msg, args...)
	case LevelError:
		l.console.Error(msg, args...)
	}
}

// state holds the global logging state.
type state struct {
	mu          sync.Mutex
	initialized bool
	file        *os.File
	level       Level
	components  map[string]Level
	loggers     map[string]*Logger
	tuiMode     bool
}

var globalState = &state{
	components: make(map[string]Level),
	loggers:    make(map[string]*Logger),
}

// Init initializes the logging system. Before Init, all loggers are
// silent.
func Init(cfg Config) error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.initialized && globalState.file != nil {
		_ = globalState.file.Close()
		globalState.file = nil
	}
	globalState.loggers = make(map[string]*Logger)
	globalState.components = make(map[string]Level)

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	globalState.level = level

	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %q: %w", comp, err)
		}
		globalState.components[comp] = parsed
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	globalState.file = f
	globalState.tuiMode = cfg.TUIMode
	globalState.initialized = true
	return nil
}

// Get returns the logger for a component, creating it on first use.
func Get(component string) *Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if l, ok := globalState.loggers[component]; ok {
		return l
	}

	level := globalState.level
	if override, ok := globalState.components[component]; ok {
		level = override
	}

	var sink io.Writer = io.Discard
	if globalState.file != nil {
		sink = globalState.file
	}

	fileLogger := log.NewWithOptions(sink, log.Options{
		ReportTimestamp: true,
		Level:           level.toCharmLevel(),
		Prefix:          component,
	})

	l := &Logger{file: fileLogger}
	if globalState.initialized && !globalState.tuiMode {
		l.console = log.NewWithOptions(os.Stderr, log.Options{
			Level:  level.toCharmLevel(),
			Prefix: component,
		})
	}

	globalState.loggers[component] = l
	return l
}

// Close flushes and closes the log file.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.file != nil {
		err := globalState.file.Close()
		globalState.file = nil
		globalState.initialized = false
		globalState.loggers = make(map[string]*Logger)
		return err
	}
	return nil
}

// DefaultLogPath returns $XDG_STATE_HOME/cull/cull.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "cull", "cull.log")
}
