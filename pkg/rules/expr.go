package rules

import (
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEngine runs expressions with github.com/expr-lang/expr.
type ExprEngine struct {
	cfg config
}

// NewExpr builds an ExprEngine.
func NewExpr(opts ...Option) *ExprEngine {
	return &ExprEngine{cfg: applyOptions(opts)}
}

// Name implements Engine.
func (e *ExprEngine) Name() string {
	return EngineExpr
}

// Compile implements Engine. Undefined variables evaluate to nil.
func (e *ExprEngine) Compile(expression string) (Rule, error) {
	if e.cfg.err != nil {
		return nil, wrapEvaluationError(EngineExpr, expression, "", e.cfg.err)
	}
	if expression == "" {
		return nil, wrapEvaluationError(EngineExpr, "", "", ErrEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &exprRule{engine: e, expression: expression, program: program}, nil
}

func (e *ExprEngine) loadOrCompile(expression string) (*exprvm.Program, error) {
	key := EngineExpr + ":" + expression
	if cached, ok := e.cfg.cached(key); ok {
		if program, ok := cached.(*exprvm.Program); ok {
			return program, nil
		}
	}

	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range e.cfg.registry.Names() {
		options = append(options, exprlang.Function(name, e.cfg.registry.bound(name)))
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, wrapEvaluationError(EngineExpr, expression, "", err)
	}
	e.cfg.store(key, program)
	return program, nil
}

type exprRule struct {
	engine     *ExprEngine
	expression string
	program    *exprvm.Program
}

func (r *exprRule) Expression() string {
	return r.expression
}

func (r *exprRule) Evaluate(ctx Context) (any, error) {
	ctx = ctx.withDefaults()
	start := time.Now()
	result, err := exprlang.Run(r.program, ctx.bindings())
	err = wrapEvaluationError(EngineExpr, r.expression, ctx.Store, err)
	logEvaluation(r.engine.cfg.logger, EngineExpr, r.expression, ctx.Store, start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}
