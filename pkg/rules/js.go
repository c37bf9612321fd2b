//go:build js_eval

package rules

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// JSEngine runs JavaScript expressions with github.com/dop251/goja. Each
// evaluation gets a fresh runtime.
type JSEngine struct {
	cfg config
}

// NewJS builds a JSEngine.
func NewJS(opts ...Option) (*JSEngine, error) {
	return &JSEngine{cfg: applyOptions(opts)}, nil
}

// JSAvailable reports whether the JavaScript engine was compiled in.
func JSAvailable() bool {
	return true
}

// Name implements Engine.
func (e *JSEngine) Name() string {
	return EngineJS
}

// Compile implements Engine.
func (e *JSEngine) Compile(expression string) (Rule, error) {
	if e.cfg.err != nil {
		return nil, wrapEvaluationError(EngineJS, expression, "", e.cfg.err)
	}
	if expression == "" {
		return nil, wrapEvaluationError(EngineJS, "", "", ErrEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, wrapEvaluationError(EngineJS, expression, "", err)
	}
	return &jsRule{engine: e, expression: expression, program: program}, nil
}

func (e *JSEngine) loadOrCompile(expression string) (*goja.Program, error) {
	key := EngineJS + ":" + expression
	if cached, ok := e.cfg.cached(key); ok {
		if program, ok := cached.(*goja.Program); ok {
			return program, nil
		}
	}
	program, err := goja.Compile("", fmt.Sprintf("(function(){ return (%s); })()", expression), false)
	if err != nil {
		return nil, err
	}
	e.cfg.store(key, program)
	return program, nil
}

type jsRule struct {
	engine     *JSEngine
	expression string
	program    *goja.Program
}

func (r *jsRule) Expression() string {
	return r.expression
}

func (r *jsRule) Evaluate(ctx Context) (any, error) {
	ctx = ctx.withDefaults()
	start := time.Now()
	result, err := r.run(ctx)
	err = wrapEvaluationError(EngineJS, r.expression, ctx.Store, err)
	logEvaluation(r.engine.cfg.logger, EngineJS, r.expression, ctx.Store, start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *jsRule) run(ctx Context) (any, error) {
	vm := goja.New()
	for key, value := range ctx.bindings() {
		if err := vm.Set(key, value); err != nil {
			return nil, err
		}
	}
	registry := r.engine.cfg.registry
	for _, name := range registry.Names() {
		if err := vm.Set(name, registry.bound(name)); err != nil {
			return nil, err
		}
	}
	value, err := vm.RunProgram(r.program)
	if err != nil {
		return nil, err
	}
	return value.Export(), nil
}
