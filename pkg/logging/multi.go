package logging

import (
	"context"
	"errors"
)

// multiLogger fans every record out to several loggers
type multiLogger []Logger

// Multi returns a Logger writing to all non-nil loggers
func Multi(loggers ...Logger) Logger {
	var m multiLogger
	for _, l := range loggers {
		if l != nil {
			m = append(m, l)
		}
	}
	switch len(m) {
	case 0:
		return NewNullLogger()
	case 1:
		return m[0]
	}
	return m
}

func (m multiLogger) Debug(ctx context.Context, msg string, fields Fields) {
	for _, l := range m {
		l.Debug(ctx, msg, fields)
	}
}

func (m multiLogger) Info(ctx context.Context, msg string, fields Fields) {
	for _, l := range m {
		l.Info(ctx, msg, fields)
	}
}

func (m multiLogger) Warn(ctx context.Context, msg string, fields Fields) {
	for _, l := range m {
		l.Warn(ctx, msg, fields)
	}
}

func (m multiLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	for _, l := range m {
		l.Error(ctx, msg, err, fields)
	}
}

func (m multiLogger) WithFields(fields Fields) Logger {
	out := make(multiLogger, len(m))
	for i, l := range m {
		out[i] = l.WithFields(fields)
	}
	return out
}

func (m multiLogger) Close() error {
	var errs []error
	for _, l := range m {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
