package hookable

// EveryTransform lifts a plain transform into a Hook that stays registered.
func EveryTransform[T any](fn Transform[T]) Hook[Transform[T]] {
	if fn == nil {
		return nil
	}
	return func(func()) Transform[T] {
		return fn
	}
}

// EveryTap lifts a plain tap into a Hook that stays registered.
func EveryTap[T any](fn Tap[T]) Hook[Tap[T]] {
	if fn == nil {
		return nil
	}
	return func(func()) Tap[T] {
		return fn
	}
}

// OnceTransform returns a Hook whose handler unsubscribes before its first run.
func OnceTransform[T any](fn Transform[T]) Hook[Transform[T]] {
	if fn == nil {
		return nil
	}
	return func(unsubscribe func()) Transform[T] {
		return func(value T) (T, error) {
			unsubscribe()
			return fn(value)
		}
	}
}

// OnceTap returns a Hook whose tap unsubscribes before its first run.
func OnceTap[T any](fn Tap[T]) Hook[Tap[T]] {
	if fn == nil {
		return nil
	}
	return func(unsubscribe func()) Tap[T] {
		return func(value T) error {
			unsubscribe()
			return fn(value)
		}
	}
}
