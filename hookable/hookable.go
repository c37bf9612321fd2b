// Package hookable wraps a function with four ordered extension points that
// can observe or transform every invocation without touching the function.
//
// A call to a wrapped function runs, in order:
//
//	transformInput  fold over the argument
//	enter           taps with the transformed argument
//	fn              the wrapped function
//	transformOutput fold over the result
//	leave           taps with the transformed result
//
// Handlers are registered through a two-level factory (Hook) that receives the
// unsubscribe callback for its own registration before returning the handler,
// so a handler can remove itself while it runs. Each stage iterates a snapshot
// of its registry taken when the stage starts.
//
// Func is not safe for concurrent use.
package hookable

// Transform replaces a value flowing through a stage.
type Transform[T any] func(T) (T, error)

// Tap observes a value flowing through a stage.
type Tap[T any] func(T) error

// Hook builds the handler for one registration. It is invoked synchronously at
// registration time with the unsubscribe callback bound to that registration.
type Hook[H any] func(unsubscribe func()) H

// Stage identifies one of the four extension points.
type Stage int

const (
	StageTransformInput Stage = iota
	StageEnter
	StageTransformOutput
	StageLeave
)

func (s Stage) String() string {
	switch s {
	case StageTransformInput:
		return "transformInput"
	case StageEnter:
		return "enter"
	case StageTransformOutput:
		return "transformOutput"
	case StageLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// Func is a hookable wrapper around fn. A is the argument tuple; use a struct
// when the wrapped function needs several arguments.
type Func[A, R any] struct {
	fn              func(A) (R, error)
	transformInput  registry[Transform[A]]
	enter           registry[Tap[A]]
	transformOutput registry[Transform[R]]
	leave           registry[Tap[R]]
}

// New wraps fn. A nil fn behaves as the identity on the zero result.
func New[A, R any](fn func(A) (R, error)) *Func[A, R] {
	return &Func[A, R]{fn: fn}
}

// Call invokes the wrapped function through every stage. The first error
// returned by a handler or by fn stops the call and is returned as is.
func (f *Func[A, R]) Call(arg A) (R, error) {
	var zero R

	args := arg
	for _, transform := range f.transformInput.snapshot() {
		next, err := transform(args)
		if err != nil {
			return zero, err
		}
		args = next
	}

	for _, tap := range f.enter.snapshot() {
		if err := tap(args); err != nil {
			return zero, err
		}
	}

	var result R
	if f.fn != nil {
		out, err := f.fn(args)
		if err != nil {
			return zero, err
		}
		result = out
	}

	for _, transform := range f.transformOutput.snapshot() {
		next, err := transform(result)
		if err != nil {
			return zero, err
		}
		result = next
	}

	for _, tap := range f.leave.snapshot() {
		if err := tap(result); err != nil {
			return result, err
		}
	}

	return result, nil
}

// TransformInput registers a handler that rewrites the argument before enter.
func (f *Func[A, R]) TransformInput(hook Hook[Transform[A]]) *Subscription {
	return subscribe(&f.transformInput, hook)
}

// Enter registers a tap that observes the transformed argument before fn runs.
func (f *Func[A, R]) Enter(hook Hook[Tap[A]]) *Subscription {
	return subscribe(&f.enter, hook)
}

// TransformOutput registers a handler that rewrites the result of fn.
func (f *Func[A, R]) TransformOutput(hook Hook[Transform[R]]) *Subscription {
	return subscribe(&f.transformOutput, hook)
}

// Leave registers a tap that observes the transformed result.
func (f *Func[A, R]) Leave(hook Hook[Tap[R]]) *Subscription {
	return subscribe(&f.leave, hook)
}

// Subscribers reports how many handlers are registered on stage.
func (f *Func[A, R]) Subscribers(stage Stage) int {
	switch stage {
	case StageTransformInput:
		return f.transformInput.len()
	case StageEnter:
		return f.enter.len()
	case StageTransformOutput:
		return f.transformOutput.len()
	case StageLeave:
		return f.leave.len()
	default:
		return 0
	}
}
