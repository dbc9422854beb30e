package settings

import (
	"log/slog"
	"time"
)

// EvaluatorLogEvent describes one evaluation.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Store    string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

// slogEvaluatorLogger writes evaluations to the store logger.
type slogEvaluatorLogger struct {
	logger *slog.Logger
}

func (l slogEvaluatorLogger) LogEvaluation(event EvaluatorLogEvent) {
	attrs := []any{"engine", event.Engine, "expr", event.Expr, "duration", event.Duration}
	if event.Err != nil {
		l.logger.Debug("settings evaluation failed", append(attrs, "error", event.Err)...)
		return
	}
	l.logger.Debug("settings evaluated", attrs...)
}

// WithEvaluatorLogger replaces the default slog-backed evaluation log.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *config) {
		cfg.evalLogger = logger
	}
}
