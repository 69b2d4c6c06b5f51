// Package observability provides structured logging for the pipeline.
package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger wraps zerolog with pipeline-specific conventions.
type Logger struct {
	zl zerolog.Logger
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level       string
	Format      string // json or console
	Output      io.Writer
	ServiceName string
}

// NewLogger creates a new Logger with the given configuration.
func NewLogger(cfg LogConfig) *Logger {
	// Enable stack traces in errors
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	var zl zerolog.Logger
	if cfg.Format == "console" {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		})
	} else {
		zl = zerolog.New(output)
	}

	zl = zl.With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Logger().
		Level(parseLevel(cfg.Level))

	return &Logger{zl: zl}
}

// DefaultLogger returns a logger with default development settings.
func DefaultLogger() *Logger {
	return NewLogger(LogConfig{
		Level:       "info",
		Format:      "console",
		ServiceName: "pagelingo",
	})
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

// WithSession returns a logger tagged with a session ID.
func (l *Logger) WithSession(id string) *Logger {
	return &Logger{zl: l.zl.With().Str("session_id", id).Logger()}
}

// Debug starts a debug-level event.
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }

// Info starts an info-level event.
func (l *Logger) Info() *zerolog.Event { return l.zl.Info() }

// Warn starts a warn-level event.
func (l *Logger) Warn() *zerolog.Event { return l.zl.Warn() }

// Error starts an error-level event.
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// Fatal starts a fatal-level event; sending it exits the process.
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// parseLevel converts a string level to zerolog.Level.
func parseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
