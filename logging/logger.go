package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds logging configuration
type Config struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"json"`
	Output string `env:"LOG_OUTPUT" default:"stderr"`
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}
}

// Logger wraps slog.Logger with additional context methods
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new structured logger from configuration
func NewLogger(cfg *Config) *Logger {
	var writer io.Writer = os.Stderr

	// Configure output destination. Record output (NDJSON) goes to stdout,
	// so logs default to stderr.
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		writer = os.Stdout
	case "stderr", "":
		writer = os.Stderr
	default:
		writer = os.Stderr
	}

	// Configure log level
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Configure handler based on format
	var handler slog.Handler
	handlerOpts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize timestamp format
			if a.Key == slog.TimeKey {
				return slog.String("timestamp", a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		handler = slog.NewTextHandler(writer, handlerOpts)
	case "json", "":
		handler = slog.NewJSONHandler(writer, handlerOpts)
	default:
		handler = slog.NewJSONHandler(writer, handlerOpts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithComponent adds component context to logger
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", component),
	}
}

// SharePoint logs SharePoint REST events
func (l *Logger) SharePoint(msg string, args ...any) {
	finalArgs := []any{"subsystem", "sharepoint"}
	finalArgs = append(finalArgs, args...)
	l.Logger.Debug(msg, finalArgs...)
}

// Graph logs Microsoft Graph events
func (l *Logger) Graph(msg string, args ...any) {
	finalArgs := []any{"subsystem", "graph"}
	finalArgs = append(finalArgs, args...)
	l.Logger.Debug(msg, finalArgs...)
}

// Indexing logs enumeration events with the site URL attached
func (l *Logger) Indexing(msg string, siteURL string, args ...any) {
	finalArgs := []any{"site_url", siteURL}
	finalArgs = append(finalArgs, args...)
	l.Logger.Info(msg, finalArgs...)
}

var defaultLogger *Logger

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the default logger instance
func Default() *Logger {
	if defaultLogger == nil {
		defaultLogger = NewLogger(DefaultConfig())
	}
	return defaultLogger
}

// Convenience functions using default logger
func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}
