//go:build !js_eval

package rules

// JSEngine is unavailable without the js_eval build tag.
type JSEngine struct{}

// NewJS fails with ErrEngineUnavailable without the js_eval build tag.
func NewJS(opts ...Option) (*JSEngine, error) {
	_ = applyOptions(opts)
	return nil, wrapEvaluationError(EngineJS, "", "", ErrEngineUnavailable)
}

// JSAvailable reports whether the JavaScript engine was compiled in.
func JSAvailable() bool {
	return false
}

// Name implements Engine.
func (e *JSEngine) Name() string {
	return EngineJS
}

// Compile implements Engine.
func (e *JSEngine) Compile(expression string) (Rule, error) {
	return nil, wrapEvaluationError(EngineJS, expression, "", ErrEngineUnavailable)
}
