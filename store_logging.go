package store

import (
	"context"
	"log/slog"
	"time"
)

// Write operations reported in WriteLogEvent.Op.
const (
	OpOf   = "of"
	OpSet  = "set"
	OpSwap = "swap"
)

// WriteLogEvent describes one write attempt.
type WriteLogEvent struct {
	Store     string
	Op        string
	Duration  time.Duration
	Committed bool
	Notified  int
	Err       error

	// ActivityErr is set when an activity hook failed. It never fails the write.
	ActivityErr error

	// Context is the store context set with WithContext.
	Context context.Context
}

// Logger records store writes.
type Logger interface {
	LogWrite(WriteLogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(WriteLogEvent)

// LogWrite implements Logger.
func (f LoggerFunc) LogWrite(event WriteLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogWrite(WriteLogEvent) {}

// WithLogger attaches a write logger to the store.
func WithLogger(logger Logger) Option {
	return func(cfg *storeConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// SlogLogger writes store events to a slog.Logger. Successful writes log at
// debug level, failed ones at warn.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps logger, falling back to slog.Default when nil.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

// LogWrite implements Logger.
func (l *SlogLogger) LogWrite(event WriteLogEvent) {
	level := slog.LevelDebug
	attrs := []slog.Attr{
		slog.String("store", event.Store),
		slog.String("op", event.Op),
		slog.Duration("duration", event.Duration),
		slog.Bool("committed", event.Committed),
		slog.Int("notified", event.Notified),
	}
	if event.Err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	if event.ActivityErr != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("activity_error", event.ActivityErr.Error()))
	}
	ctx := event.Context
	if ctx == nil {
		ctx = context.Background()
	}
	l.logger.LogAttrs(ctx, level, "store.write", attrs...)
}
