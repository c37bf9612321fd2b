package validate

import (
	"fmt"

	"github.com/goliatone/go-store/pkg/rules"
)

type funcValidator[S any] struct {
	name string
	fn   func(S) bool
}

// Func wraps a predicate.
func Func[S any](name string, fn func(state S) bool) Validator[S] {
	if fn == nil {
		return nil
	}
	if name == "" {
		name = "func"
	}
	return funcValidator[S]{name: name, fn: fn}
}

func (v funcValidator[S]) Name() string { return v.name }

func (v funcValidator[S]) Validate(state S) (bool, error) {
	return v.fn(state), nil
}

type ruleValidator[S any] struct {
	name string
	rule rules.Rule
}

// Rule compiles expression with engine. The pending state is converted to its
// JSON form so expressions address fields by their JSON names.
func Rule[S any](engine rules.Engine, expression string) (Validator[S], error) {
	if engine == nil {
		return nil, fmt.Errorf("validate: engine is nil")
	}
	rule, err := engine.Compile(expression)
	if err != nil {
		return nil, err
	}
	return ruleValidator[S]{name: engine.Name() + ": " + expression, rule: rule}, nil
}

// Expr compiles an expr-lang expression.
func Expr[S any](expression string, opts ...rules.Option) (Validator[S], error) {
	return Rule[S](rules.NewExpr(opts...), expression)
}

// CEL compiles a CEL expression.
func CEL[S any](expression string, opts ...rules.Option) (Validator[S], error) {
	return Rule[S](rules.NewCEL(opts...), expression)
}

// JS compiles a JavaScript expression. It requires the js_eval build tag.
func JS[S any](expression string, opts ...rules.Option) (Validator[S], error) {
	engine, err := rules.NewJS(opts...)
	if err != nil {
		return nil, err
	}
	return Rule[S](engine, expression)
}

func (v ruleValidator[S]) Name() string { return v.name }

func (v ruleValidator[S]) Validate(state S) (bool, error) {
	snapshot, err := rules.Snapshot(state)
	if err != nil {
		return false, err
	}
	return rules.Check(v.rule, rules.Context{State: snapshot})
}
