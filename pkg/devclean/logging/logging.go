// Package logging provides component loggers for devclean, backed by
// charmbracelet/log and a rotating log file.
//
// Until Init is called every logger discards its output, so library packages
// can log freely from tests.
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	logging.Get("scanner").Debug("skipping entry", "path", p, "err", err)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// ErrInvalidLevel is returned when a level name is not recognized.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel maps a level name to a charmbracelet/log level.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
}

// Config configures Init.
type Config struct {
	// Level is the file log level.
	Level string

	// Path is the log file. Empty uses DefaultLogPath.
	Path string

	// Rotation controls when the log file is rotated.
	Rotation RotationConfig

	// Components overrides Level for named components.
	Components map[string]string

	// ConsoleLevel, when set, mirrors records at or above this level to
	// stderr. Prompts and progress bars suppress it by leaving it empty.
	ConsoleLevel string
}

// DefaultLogPath returns $XDG_STATE_HOME/devclean/devclean.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "devclean", "devclean.log")
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Path:     DefaultLogPath(),
		Rotation: DefaultRotationConfig(),
	}
}

// Logger is a named logger that writes to the log file and, optionally, to
// the console.
type Logger struct {
	component string
	sinks     []*log.Logger
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, keyvals ...any) {
	for _, s := range l.sinks {
		s.Debug(msg, keyvals...)
	}
}

// Info logs at info level.
func (l *Logger) Info(msg string, keyvals ...any) {
	for _, s := range l.sinks {
		s.Info(msg, keyvals...)
	}
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, keyvals ...any) {
	for _, s := range l.sinks {
		s.Warn(msg, keyvals...)
	}
}

// Error logs at error level.
func (l *Logger) Error(msg string, keyvals ...any) {
	for _, s := range l.sinks {
		s.Error(msg, keyvals...)
	}
}

// With returns a logger that adds keyvals to every record.
func (l *Logger) With(keyvals ...any) *Logger {
	out := &Logger{component: l.component, sinks: make([]*log.Logger, len(l.sinks))}
	for i, s := range l.sinks {
		out.sinks[i] = s.With(keyvals...)
	}
	return out
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}

type registry struct {
	mu         sync.Mutex
	active     bool
	writer     *RotatingWriter
	level      log.Level
	overrides  map[string]log.Level
	console    bool
	consoleLvl log.Level
	loggers    map[string]*Logger
}

var reg = &registry{
	loggers:   make(map[string]*Logger),
	overrides: make(map[string]log.Level),
}

// Init opens the log file and rebuilds every logger handed out so far.
// Calling Init again replaces the previous configuration.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	overrides := make(map[string]log.Level, len(cfg.Components))
	for comp, name := range cfg.Components {
		lvl, err := ParseLevel(name)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		overrides[comp] = lvl
	}

	var consoleLvl log.Level
	if cfg.ConsoleLevel != "" {
		consoleLvl, err = ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	writer, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.writer != nil {
		_ = reg.writer.Close()
	}
	reg.active = true
	reg.writer = writer
	reg.level = level
	reg.overrides = overrides
	reg.console = cfg.ConsoleLevel != ""
	reg.consoleLvl = consoleLvl

	for name, l := range reg.loggers {
		l.sinks = reg.build(name).sinks
	}
	return nil
}

// Get returns the logger for component, creating it on first use.
func Get(component string) *Logger {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if l, ok := reg.loggers[component]; ok {
		return l
	}
	l := reg.build(component)
	reg.loggers[component] = l
	return l
}

// build creates a logger for component. Callers hold reg.mu.
func (r *registry) build(component string) *Logger {
	if !r.active {
		return &Logger{
			component: component,
			sinks:     []*log.Logger{log.NewWithOptions(io.Discard, log.Options{Prefix: component})},
		}
	}

	level := r.level
	if lvl, ok := r.overrides[component]; ok {
		level = lvl
	}

	sinks := []*log.Logger{
		log.NewWithOptions(r.writer, log.Options{
			Level:           level,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		}),
	}
	if r.console {
		sinks = append(sinks, log.NewWithOptions(os.Stderr, log.Options{
			Level:           r.consoleLvl,
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Prefix:          component,
		}))
	}
	return &Logger{component: component, sinks: sinks}
}

// Close flushes the log file and returns every logger to discard mode.
func Close() error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if !reg.active {
		return nil
	}

	var err error
	if reg.writer != nil {
		err = reg.writer.Close()
		reg.writer = nil
	}
	reg.active = false
	for name, l := range reg.loggers {
		l.sinks = reg.build(name).sinks
	}
	if err != nil {
		return fmt.Errorf("closing log writer: %w", err)
	}
	return nil
}
