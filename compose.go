package store

import "slices"

// ComposeMiddlewares returns a middleware that runs each of middlewares once,
// last to first, against the same store and hooks. Nil entries are skipped and
// the first error stops the sequence.
func ComposeMiddlewares[S any](middlewares ...Middleware[S]) Middleware[S] {
	ordered := slices.Clone(middlewares)
	slices.Reverse(ordered)
	return sequence(ordered)
}

// PipeMiddlewares is ComposeMiddlewares in declared order.
func PipeMiddlewares[S any](middlewares ...Middleware[S]) Middleware[S] {
	return sequence(slices.Clone(middlewares))
}

func sequence[S any](middlewares []Middleware[S]) Middleware[S] {
	return func(store *Store[S], hooks Hooks[S]) error {
		for _, middleware := range middlewares {
			if middleware == nil {
				continue
			}
			if err := middleware(store, hooks); err != nil {
				return err
			}
		}
		return nil
	}
}
