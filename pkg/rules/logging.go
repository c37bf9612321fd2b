package rules

import "time"

// LogEvent describes one rule evaluation.
type LogEvent struct {
	Engine   string
	Expr     string
	Store    string
	Duration time.Duration
	Err      error
}

// Logger records rule evaluations.
type Logger interface {
	LogEvaluation(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogEvaluation implements Logger.
func (f LoggerFunc) LogEvaluation(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvaluation(LogEvent) {}

func logEvaluation(logger Logger, engine, expr, store string, start time.Time, err error) {
	logger.LogEvaluation(LogEvent{
		Engine:   engine,
		Expr:     expr,
		Store:    store,
		Duration: time.Since(start),
		Err:      err,
	})
}
