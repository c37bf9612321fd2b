// Package rules compiles boolean and value expressions over store snapshots
// using expr, CEL or JavaScript (goja, behind the js_eval build tag).
//
// Expressions see the snapshot in two ways: the whole value under "state" and,
// when the snapshot is a JSON object, each top-level key as its own variable.
// "now", "vars" and "store" are always bound.
package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Engine names.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

var (
	// ErrEmptyExpression is returned when compiling an empty expression.
	ErrEmptyExpression = errors.New("rules: expression must not be empty")
	// ErrNotBoolean is returned by Check when a rule yields a non-bool value.
	ErrNotBoolean = errors.New("rules: result is not a boolean")
	// ErrEngineUnavailable is returned when an engine was not compiled in.
	ErrEngineUnavailable = errors.New("rules: engine unavailable")
	// ErrInvalidFunction is returned by Compile when WithFunction could not
	// register its function.
	ErrInvalidFunction = errors.New("rules: invalid function")
)

// Context carries the inputs of one evaluation.
type Context struct {
	// State is the snapshot, usually produced by Snapshot.
	State any
	// Vars holds caller supplied variables bound as "vars".
	Vars map[string]any
	// Store labels the evaluation in errors and logs.
	Store string
	// Now defaults to time.Now when zero.
	Now time.Time
}

func (ctx Context) withDefaults() Context {
	if ctx.Now.IsZero() {
		ctx.Now = time.Now()
	}
	if ctx.Vars == nil {
		ctx.Vars = map[string]any{}
	}
	return ctx
}

// bindings returns the variables visible to an expression.
func (ctx Context) bindings() map[string]any {
	out := map[string]any{}
	if object, ok := ctx.State.(map[string]any); ok {
		for key, value := range object {
			out[key] = value
		}
	}
	out["state"] = ctx.State
	out["now"] = ctx.Now
	out["vars"] = ctx.Vars
	out["store"] = ctx.Store
	return out
}

// Engine compiles expressions into reusable rules.
type Engine interface {
	Name() string
	Compile(expression string) (Rule, error)
}

// Rule is a compiled expression.
type Rule interface {
	Expression() string
	Evaluate(ctx Context) (any, error)
}

// Check evaluates rule and requires a boolean result.
func Check(rule Rule, ctx Context) (bool, error) {
	value, err := rule.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	ok, isBool := value.(bool)
	if !isBool {
		return false, wrapEvaluationError("", rule.Expression(), ctx.Store, fmt.Errorf("%w: got %T", ErrNotBoolean, value))
	}
	return ok, nil
}

// Snapshot converts value into its JSON form so expressions can address
// fields by their JSON names. Objects become map[string]any.
func Snapshot(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("rules: snapshot: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("rules: snapshot: %w", err)
	}
	return out, nil
}
