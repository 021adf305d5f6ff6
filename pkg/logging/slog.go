package logging

import (
	"context"
	"io"
	"log/slog"
	"sort"
)

// handlerLogger adapts a slog.Handler to the Logger interface.
// The console and file loggers are both built on it.
type handlerLogger struct {
	logger *slog.Logger
	closer io.Closer
}

func newHandlerLogger(h slog.Handler, closer io.Closer) *handlerLogger {
	return &handlerLogger{logger: slog.New(h), closer: closer}
}

// Debug logs a debug message
func (l *handlerLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, slog.LevelDebug, msg, nil, fields)
}

// Info logs an info message
func (l *handlerLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, slog.LevelInfo, msg, nil, fields)
}

// Warn logs a warning message
func (l *handlerLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, slog.LevelWarn, msg, nil, fields)
}

// Error logs an error message
func (l *handlerLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ctx, slog.LevelError, msg, err, fields)
}

// WithFields returns a logger with additional fields.
// The returned logger shares the underlying writer; closing it is a no-op.
func (l *handlerLogger) WithFields(fields Fields) Logger {
	return &handlerLogger{logger: l.logger.With(attrs(nil, fields)...)}
}

// Close closes the underlying writer, if this logger owns one
func (l *handlerLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func (l *handlerLogger) log(ctx context.Context, level slog.Level, msg string, err error, fields Fields) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, msg, attrs(err, fields)...)
}

// attrs flattens fields into slog key/value pairs with a stable key order
func attrs(err error, fields Fields) []any {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, 2*len(keys)+2)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	for _, k := range keys {
		args = append(args, slog.Any(k, fields[k]))
	}
	return args
}
