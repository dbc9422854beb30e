package settings

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyExpression is returned for blank expressions.
var ErrEmptyExpression = errors.New("settings: expression must not be empty")

// WithEvaluator selects the rule engine used by Evaluate. The default is
// expr-lang.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *config) {
		cfg.evaluator = e
	}
}

// Evaluate runs expr against the resolved view of the store.
func (s *Store) Evaluate(expr string) (any, error) {
	return s.EvaluateWith(RuleContext{}, expr)
}

// EvaluateWith runs expr with ctx. A nil snapshot is replaced by the
// resolved view of the store.
func (s *Store) EvaluateWith(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, ErrEmptyExpression
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = s.Snapshot()
	}
	if ctx.Store == "" {
		ctx.Store = s.name
	}
	ctx = ctx.withDefaults()

	engine := engineName(s.evaluator)
	start := time.Now()
	value, err := s.evaluator.Evaluate(ctx, expr)
	err = wrapEvaluationError(engine, expr, ctx.label(), err)
	s.evalLogger.LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		Store:    ctx.label(),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func resolveEvaluator(cfg config) Evaluator {
	if cfg.evaluator != nil {
		return cfg.evaluator
	}
	var opts []ExprEvaluatorOption
	if cfg.programCache != nil {
		opts = append(opts, ExprWithProgramCache(cfg.programCache))
	}
	if cfg.functions != nil {
		opts = append(opts, ExprWithFunctionRegistry(cfg.functions))
	}
	return NewExprEvaluator(opts...)
}

func engineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	}
	if named, ok := e.(interface{ Engine() string }); ok {
		return named.Engine()
	}
	return "custom"
}

func requireExpression(engine, expr string) error {
	if expr == "" {
		return fmt.Errorf("settings: %s evaluator: %w", engine, ErrEmptyExpression)
	}
	return nil
}
