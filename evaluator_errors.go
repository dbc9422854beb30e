package settings

import (
	"errors"
	"fmt"
)

// EvaluationError carries evaluator metadata alongside the failure.
type EvaluationError struct {
	Engine string
	Expr   string
	Store  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("settings: %s evaluator %s store=%s: %v", e.Engine, describeExpression(e.Expr), e.Store, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

// wrapEvaluationError fills in missing metadata on an existing
// EvaluationError or wraps err in a new one.
func wrapEvaluationError(engine, expr, store string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Store == "" {
			evalErr.Store = store
		}
		return err
	}
	return &EvaluationError{Engine: engine, Expr: expr, Store: store, Err: err}
}
