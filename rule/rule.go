// Package rule evaluates admin-authored page suppression expressions against
// a page context. The default engine is expr-lang/expr; CEL and JavaScript
// (behind the js_eval build tag) engines are available for applications that
// standardize on those languages. Rules return booleans: true suppresses
// auto-refresh on the page being evaluated.
package rule

import (
	"errors"
	"fmt"
	"time"
)

// Context carries the inputs bound into an engine environment when a page
// rule runs.
type Context struct {
	// Page is the identifier of the page being evaluated.
	Page string
	// UserID identifies the current user, when known.
	UserID string
	// EffectiveSeconds is the currently effective refresh interval.
	EffectiveSeconds int
	// Now pins the evaluation timestamp; defaults to time.Now.
	Now *time.Time
	// Metadata carries arbitrary extra bindings.
	Metadata map[string]any
}

func (c Context) timestamp() time.Time {
	if c.Now != nil {
		return *c.Now
	}
	return time.Now()
}

func (c Context) withDefaults() Context {
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	return c
}

// environment flattens the context into the bindings every engine exposes.
func (c Context) environment() map[string]any {
	return map[string]any{
		"page":      c.Page,
		"user":      c.UserID,
		"effective": c.EffectiveSeconds,
		"now":       c.timestamp(),
		"metadata":  c.Metadata,
	}
}

// Evaluator executes expressions against a page context.
type Evaluator interface {
	Evaluate(ctx Context, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx Context) (any, error)
}

var errEmptyExpression = errors.New("expression must not be empty")

// EvaluateBool runs expr through e and coerces the result to a boolean.
// A nil result counts as false; any other non-boolean result is an error.
func EvaluateBool(e Evaluator, ctx Context, expr string) (bool, error) {
	if e == nil {
		return false, errors.New("rule: evaluator is required")
	}
	value, err := e.Evaluate(ctx, expr)
	if err != nil {
		return false, err
	}
	switch v := value.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	default:
		return false, &EvaluationError{Expr: expr, Err: fmt.Errorf("expected boolean result, got %T", value)}
	}
}
