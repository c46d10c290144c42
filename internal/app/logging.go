package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dshills/codemate/internal/config"
)

// LoggerConfig configures the logger.
type LoggerConfig struct {
	// Level is the minimum log level to output.
	Level slog.Level
	// Path is the log file. Ignored when Output is set.
	Path string
	// MaxSizeMB and MaxBackups control rotation of Path.
	MaxSizeMB  int
	MaxBackups int
	// Output replaces the log file, e.g. for tests or --log-stderr.
	Output io.Writer
}

// LoggerConfigFrom builds a LoggerConfig from the log settings.
func LoggerConfigFrom(cfg *config.Config) LoggerConfig {
	level, _ := config.ParseLevel(cfg.Log.Level)
	return LoggerConfig{
		Level:      level,
		Path:       cfg.LogPath(),
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}
}

// Logger provides structured logging for the application.
type Logger struct {
	*slog.Logger
	level  *slog.LevelVar
	closer io.Closer
}

// NewLogger creates a logger writing JSON lines to cfg.Output, or to a
// rotating file at cfg.Path.
func NewLogger(cfg LoggerConfig) *Logger {
	level := new(slog.LevelVar)
	level.Set(cfg.Level)

	l := &Logger{level: level}
	w := cfg.Output
	if w == nil {
		if cfg.Path == "" {
			w = io.Discard
		} else {
			_ = os.MkdirAll(filepath.Dir(cfg.Path), 0o755)
			lj := &lumberjack.Logger{
				Filename:   cfg.Path,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     7,
				Compress:   true,
			}
			w = lj
			l.closer = lj
		}
	}

	l.Logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	return l
}

// NopLogger returns a logger that discards everything.
func NopLogger() *Logger {
	return NewLogger(LoggerConfig{Output: io.Discard})
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{Logger: l.Logger.With(key, value), level: l.level}
}

// WithComponent returns a new logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// WithRequestID returns a logger tagged with a fresh request id, and the id.
func (l *Logger) WithRequestID() (*Logger, string) {
	id := uuid.NewString()
	return l.WithField("request_id", id), id
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Level returns the minimum log level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Close closes the log file. Loggers derived with WithField share the file
// and must not be used afterwards.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
