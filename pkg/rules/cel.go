package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// maxCELArity bounds the overloads generated for registry functions.
const maxCELArity = 4

var celIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CELEngine runs expressions with github.com/google/cel-go.
type CELEngine struct {
	cfg config
}

// NewCEL builds a CELEngine.
func NewCEL(opts ...Option) *CELEngine {
	return &CELEngine{cfg: applyOptions(opts)}
}

// Name implements Engine.
func (e *CELEngine) Name() string {
	return EngineCEL
}

// Compile implements Engine. The expression is parsed immediately; type
// checking happens on first evaluation, once the snapshot keys are known.
func (e *CELEngine) Compile(expression string) (Rule, error) {
	if e.cfg.err != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, "", e.cfg.err)
	}
	if expression == "" {
		return nil, wrapEvaluationError(EngineCEL, "", "", ErrEmptyExpression)
	}
	env, err := e.buildEnv(nil)
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, "", err)
	}
	if _, issues := env.Parse(expression); issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, "", issues.Err())
	}
	return &celRule{engine: e, expression: expression}, nil
}

func (e *CELEngine) loadOrCompile(expression string, keys []string) (celgo.Program, error) {
	key := EngineCEL + ":" + expression + "|" + strings.Join(keys, ",")
	if cached, ok := e.cfg.cached(key); ok {
		if program, ok := cached.(celgo.Program); ok {
			return program, nil
		}
	}

	env, err := e.buildEnv(keys)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	e.cfg.store(key, program)
	return program, nil
}

func (e *CELEngine) buildEnv(keys []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.CrossTypeNumericComparisons(true),
		celgo.Variable("state", celgo.DynType),
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("vars", celgo.DynType),
		celgo.Variable("store", celgo.StringType),
	}
	for _, key := range keys {
		switch key {
		case "state", "now", "vars", "store":
			continue
		}
		if !celIdentifier.MatchString(key) {
			continue
		}
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	for _, name := range e.cfg.registry.Names() {
		opts = append(opts, celgo.Function(name, e.overloads(name)...))
	}
	return celgo.NewEnv(opts...)
}

func (e *CELEngine) overloads(name string) []celgo.FunctionOpt {
	out := make([]celgo.FunctionOpt, 0, maxCELArity)
	for arity := 1; arity <= maxCELArity; arity++ {
		args := make([]*celgo.Type, arity)
		for i := range args {
			args[i] = celgo.DynType
		}
		out = append(out, celgo.Overload(
			fmt.Sprintf("%s_dyn_%d", name, arity),
			args,
			celgo.DynType,
			celgo.FunctionBinding(e.binding(name)),
		))
	}
	return out
}

func (e *CELEngine) binding(name string) func(values ...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		args := make([]any, 0, len(values))
		for _, value := range values {
			args = append(args, value.Value())
		}
		result, err := e.cfg.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}

type celRule struct {
	engine     *CELEngine
	expression string
}

func (r *celRule) Expression() string {
	return r.expression
}

func (r *celRule) Evaluate(ctx Context) (any, error) {
	ctx = ctx.withDefaults()
	start := time.Now()
	result, err := r.run(ctx)
	err = wrapEvaluationError(EngineCEL, r.expression, ctx.Store, err)
	logEvaluation(r.engine.cfg.logger, EngineCEL, r.expression, ctx.Store, start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *celRule) run(ctx Context) (any, error) {
	bindings := ctx.bindings()
	keys := make([]string, 0, len(bindings))
	for key := range bindings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	program, err := r.engine.loadOrCompile(r.expression, keys)
	if err != nil {
		return nil, err
	}
	out, _, err := program.Eval(bindings)
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}
