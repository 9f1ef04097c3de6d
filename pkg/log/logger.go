// Package log provides structured logging for the sensorbench pipeline.
//
// The package is built on Go's log/slog with a handler that extracts
// cockroachdb/errors stack traces, plus a zerolog console writer for
// interactive CLI runs. Pipeline stages log through slog with the standard
// attribute keys defined in attributes.go so runs can be compared and
// diagnosed from their logs alone.
package log

import (
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"

	sberrors "github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// SetupLogger configures the process-wide slog default logger. Structured
// JSON output goes to stderr so report rendering on stdout stays clean.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stderr, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
	installWarningLogger(os.Stderr)
}

// SetupConsoleLogger configures human-readable output for interactive runs.
func SetupConsoleLogger(loglevel string) {
	ops := slog.HandlerOptions{
		Level: ToLogLevel(loglevel),
	}
	handler := slog.NewTextHandler(os.Stderr, &ops)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
	installWarningLogger(zerolog.ConsoleWriter{Out: os.Stderr})
}

// ToLogLevel converts a level name to a slog.Level, defaulting to Info.
func ToLogLevel(loglevel string) slog.Level {
	switch loglevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// installWarningLogger routes pkg/errors warnings through zerolog. Warning
// types implementing zerolog.LogObjectMarshaler are logged with their
// structured fields, others with the plain message.
func installWarningLogger(w io.Writer) {
	logger := zerolog.New(w).With().Timestamp().Logger()
	sberrors.SetZerologWarnFunc(func(warning error) {
		ev := logger.Warn()
		if marshaler, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev.Object("warning", marshaler)
		}
		ev.Msg(warning.Error())
	})
}
