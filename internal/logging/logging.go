// Package logging provides structured logging for the tag engine and its
// cache store.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel represents different logging levels
type LogLevel int

// LogLevelDebug represents debug logging level
const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger provides structured logging with consistent field handling.
// The zero value and a nil *Logger discard everything.
type Logger struct {
	impl loggerImpl
}

// loggerImpl defines the internal interface for logger implementations.
type loggerImpl interface {
	log(ctx context.Context, level slog.Level, msg string, args ...any)
	with(args ...any) loggerImpl
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if l == nil || l.impl == nil {
		return
	}
	l.impl.log(ctx, level, msg, args...)
}

// Debug logs debug-level messages
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, args...)
}

// Info logs info-level messages
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs warning-level messages
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, args...)
}

// Error logs error-level messages
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelError, msg, args...)
}

// With returns a logger with additional context fields
func (l *Logger) With(args ...any) *Logger {
	if l == nil || l.impl == nil {
		return l
	}
	if _, ok := l.impl.(nopLogger); ok {
		return l
	}
	return &Logger{impl: l.impl.with(args...)}
}

// WithOperation returns a logger with operation context
func (l *Logger) WithOperation(operation Operation) *Logger {
	return l.With("operation", string(operation))
}

// LogConfig holds configuration for the logger.
type LogConfig struct {
	// Level sets the minimum log level (debug, info, warn, error)
	Level LogLevel
	// EnableCallerInfo includes file and line number in logs
	EnableCallerInfo bool
	// Output receives the log lines. Defaults to os.Stderr.
	Output io.Writer
}

// DefaultLogConfig returns a default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            LogLevelWarn,
		EnableCallerInfo: false,
		Output:           os.Stderr,
	}
}

// slogLogger implements loggerImpl using slog.
type slogLogger struct {
	logger *slog.Logger
	fields []any
}

// NewLogger creates a new structured logger with the given configuration.
func NewLogger(config LogConfig) *Logger {
	return NewLoggerWithHandler(NewHandler(config))
}

// NewHandler returns the text handler NewLogger writes through.
func NewHandler(config LogConfig) slog.Handler {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	return slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:     config.Level.slogLevel(),
		AddSource: config.EnableCallerInfo,
	})
}

// NewLoggerWithHandler creates a logger that sends every record to handler.
// Level filtering is left to the handler.
func NewLoggerWithHandler(handler slog.Handler) *Logger {
	return &Logger{
		impl: &slogLogger{
			logger: slog.New(handler),
			fields: make([]any, 0),
		},
	}
}

// NewNopLogger creates a no-op logger that discards all log messages.
func NewNopLogger() *Logger {
	return &Logger{impl: nopLogger{}}
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	allArgs := make([]any, len(l.fields)+len(args))
	copy(allArgs, l.fields)
	copy(allArgs[len(l.fields):], args)
	l.logger.Log(ctx, level, msg, allArgs...)
}

func (l *slogLogger) with(args ...any) loggerImpl {
	newFields := make([]any, len(l.fields)+len(args))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], args)

	return &slogLogger{logger: l.logger, fields: newFields}
}

// nopLogger is a no-op logger implementation that discards all messages.
type nopLogger struct{}

func (nopLogger) log(context.Context, slog.Level, string, ...any) {}
func (n nopLogger) with(...any) loggerImpl                        { return n }

// Operation names the command a query belongs to.
type Operation string

// Operation constants
const (
	OpTags        Operation = "tags"
	OpHeads       Operation = "heads"
	OpCacheStats  Operation = "cache-stats"
	OpCacheClear  Operation = "cache-clear"
	OpObsolete    Operation = "obsolete"
	OpCleanupTemp Operation = "cleanup-temp"
)

// Event messages. Tests and tooling match on these.
const (
	EventCommand            = "command"
	EventCommandExited      = "command exited"
	EventCacheRead          = "cache read"
	EventCacheWrite         = "cache write"
	EventUnresolvedRevision = "unresolved revision"
	EventSkippedLines       = "skipped lines"
	EventInvalidConfig      = "invalid config"
)

// Cache read results
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultAbsent  = "absent"
	ResultCorrupt = "corrupt"
)

// LogCommand logs the start of a command.
func LogCommand(ctx context.Context, logger *Logger, operation Operation) {
	logger.Debug(ctx, EventCommand, "operation", string(operation))
}

// LogCommandExited logs the end of a command with its exit status.
func LogCommandExited(ctx context.Context, logger *Logger, operation Operation, status int, duration time.Duration) {
	logger.Debug(ctx, EventCommandExited,
		"operation", string(operation),
		"status", status,
		"duration", duration)
}

// LogCacheRead logs a read of a cache artifact.
func LogCacheRead(ctx context.Context, logger *Logger, artifact, result string) {
	logger.Debug(ctx, EventCacheRead,
		"artifact", artifact,
		"result", result)
}

// LogCacheWrite logs a write of a cache artifact. Extra key/value pairs are
// appended to the record.
func LogCacheWrite(ctx context.Context, logger *Logger, artifact string, bytes int, extra ...any) {
	fields := []any{
		"artifact", artifact,
		"bytes", bytes,
	}
	fields = append(fields, extra...)

	logger.Debug(ctx, EventCacheWrite, fields...)
}

// LogUnresolvedRevision logs a revision whose tags file could not be read.
func LogUnresolvedRevision(ctx context.Context, logger *Logger, revision string, err error) {
	logger.Warn(ctx, EventUnresolvedRevision,
		"revision", revision,
		"error", err.Error())
}

// LogSkippedLines logs malformed lines found in a tags file.
func LogSkippedLines(ctx context.Context, logger *Logger, fileNode string, count int) {
	logger.Warn(ctx, EventSkippedLines,
		"filenode", fileNode,
		"count", count)
}

// LogInvalidConfig logs a configuration value that was ignored in favor of
// its default.
func LogInvalidConfig(ctx context.Context, logger *Logger, key string, err error) {
	logger.Warn(ctx, EventInvalidConfig,
		"key", key,
		"error", err.Error())
}

// ParseLogLevel parses a string log level into a LogLevel.
func ParseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LogLevelDebug, nil
	case "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}
