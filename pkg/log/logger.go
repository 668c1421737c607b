// Package log configures structured logging for the rule-list classifier.
//
// Logging is built on the standard log/slog JSON handler, wrapped so that
// errors carrying a cockroachdb/errors stack trace are emitted with a
// separate "stacktrace" attribute. Attribute keys for common ML fields are
// defined in attributes.go.
package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger installs the default slog logger at the given level.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
}

// ToLogLevel converts a level name to a slog.Level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr wraps an error for structured logging.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
