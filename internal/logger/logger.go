package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel defines log level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zerologLevel() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case INFO:
		return zerolog.InfoLevel
	case WARN:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ParseLevel parses a level name such as "info" or "WARN"
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level: %s", name)
	}
}

const (
	filePrefix = "reagent-"
	fileDate   = "2006-01-02"
)

// Config logger configuration
type Config struct {
	LogDir     string   // Log directory
	Level      LogLevel // Log level
	MaxDays    int      // Files dated older than this many days are removed
	ConsoleOut bool     // Output to stderr as well
}

// Logger writes JSON lines to one file per day
type Logger struct {
	mu   sync.Mutex
	cfg  Config
	file *os.File
	date string
	zl   zerolog.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the default logger
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		defaultLogger, err = NewLogger(cfg)
	})
	return err
}

// NewLogger creates a new logger instance
func NewLogger(cfg Config) (*Logger, error) {
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = 7
	}
	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{cfg: cfg}
	if err := l.openFor(time.Now()); err != nil {
		return nil, err
	}
	return l, nil
}

func fileName(dir string, day time.Time) string {
	return filepath.Join(dir, filePrefix+day.Format(fileDate)+".log")
}

// openFor switches output to the file for now's date. Caller holds mu
// or owns l exclusively.
func (l *Logger) openFor(now time.Time) error {
	date := now.Format(fileDate)
	if l.file != nil && l.date == date {
		return nil
	}

	f, err := os.OpenFile(fileName(l.cfg.LogDir, now), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if l.file != nil {
		l.file.Close()
	}

	var out io.Writer = f
	if l.cfg.ConsoleOut {
		out = zerolog.MultiLevelWriter(f, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}

	l.file = f
	l.date = date
	l.zl = zerolog.New(out).Level(l.cfg.Level.zerologLevel()).With().Timestamp().Logger()

	go pruneOld(l.cfg.LogDir, l.cfg.MaxDays, now)
	return nil
}

// pruneOld removes log files dated more than maxDays before now
func pruneOld(dir string, maxDays int, now time.Time) {
	files, err := filepath.Glob(filepath.Join(dir, filePrefix+"*.log"))
	if err != nil {
		return
	}

	cutoff := now.AddDate(0, 0, -maxDays).Format(fileDate)
	for _, f := range files {
		date := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(f), filePrefix), ".log")
		if _, err := time.Parse(fileDate, date); err != nil {
			continue
		}
		if date < cutoff {
			os.Remove(f)
		}
	}
}

func (l *Logger) write(level LogLevel, fields []string, format string, args ...interface{}) {
	if level < l.cfg.Level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.openFor(time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Logger rotation error: %v\n", err)
		return
	}

	ev := l.zl.WithLevel(level.zerologLevel())
	for i := 0; i+1 < len(fields); i += 2 {
		ev = ev.Str(fields[i], fields[i+1])
	}
	ev.Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) { l.write(DEBUG, nil, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.write(INFO, nil, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.write(WARN, nil, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.write(ERROR, nil, format, args...) }

// Close closes the logger
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Scope attaches string fields to every entry it writes
type Scope struct {
	logger *Logger
	fields []string
}

// With returns a scope of the default logger carrying key=value
func With(key, value string) *Scope {
	return &Scope{fields: []string{key, value}}
}

// With returns a copy of s with one more field
func (s *Scope) With(key, value string) *Scope {
	fields := make([]string, 0, len(s.fields)+2)
	fields = append(fields, s.fields...)
	return &Scope{logger: s.logger, fields: append(fields, key, value)}
}

func (s *Scope) target() *Logger {
	if s.logger != nil {
		return s.logger
	}
	return defaultLogger
}

func (s *Scope) log(level LogLevel, format string, args ...interface{}) {
	if l := s.target(); l != nil {
		l.write(level, s.fields, format, args...)
	}
}

func (s *Scope) Debug(format string, args ...interface{}) { s.log(DEBUG, format, args...) }
func (s *Scope) Info(format string, args ...interface{})  { s.log(INFO, format, args...) }
func (s *Scope) Warn(format string, args ...interface{})  { s.log(WARN, format, args...) }
func (s *Scope) Error(format string, args ...interface{}) { s.log(ERROR, format, args...) }

// With returns a scope of l carrying key=value
func (l *Logger) With(key, value string) *Scope {
	return &Scope{logger: l, fields: []string{key, value}}
}

// Package-level functions using the default logger

func Debug(format string, args ...interface{}) { logDefault(DEBUG, format, args...) }
func Info(format string, args ...interface{})  { logDefault(INFO, format, args...) }
func Warn(format string, args ...interface{})  { logDefault(WARN, format, args...) }
func Error(format string, args ...interface{}) { logDefault(ERROR, format, args...) }

func logDefault(level LogLevel, format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.write(level, nil, format, args...)
	}
}

// Close closes the default logger
func Close() error {
	if defaultLogger != nil {
		return defaultLogger.Close()
	}
	return nil
}
