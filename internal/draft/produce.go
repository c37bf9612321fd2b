package draft

import "reflect"

// Produce applies recipe to a deep copy of base and returns a value that shares
// every unchanged subtree with base. When the result is deep-equal to base,
// base itself is returned so reference identity is preserved.
//
// Func values never compare equal, so a state holding non-nil funcs always
// produces a fresh top-level value.
func Produce[T any](base T, recipe func(T) T) T {
	if recipe == nil {
		return base
	}
	next := recipe(Clone(base))

	baseValue := reflect.ValueOf(&base).Elem()
	nextValue := reflect.ValueOf(&next).Elem()

	s := sharer{seen: map[ref]reflect.Value{}}
	out := reflect.New(baseValue.Type()).Elem()
	out.Set(s.value(baseValue, nextValue))
	return *(out.Addr().Interface().(*T))
}

type sharer struct {
	seen map[ref]reflect.Value
}

func (s sharer) value(base, next reflect.Value) reflect.Value {
	if !base.IsValid() || !next.IsValid() || base.Type() != next.Type() {
		return next
	}
	if reflect.DeepEqual(base.Interface(), next.Interface()) {
		return base
	}

	switch next.Kind() {
	case reflect.Pointer:
		if base.IsNil() || next.IsNil() {
			return next
		}
		key := refOf(next)
		if done, ok := s.seen[key]; ok {
			return done
		}
		out := reflect.New(next.Type().Elem())
		s.seen[key] = out
		out.Elem().Set(s.value(base.Elem(), next.Elem()))
		return out
	case reflect.Interface:
		if base.IsNil() || next.IsNil() || base.Elem().Type() != next.Elem().Type() {
			return next
		}
		out := reflect.New(next.Type()).Elem()
		out.Set(s.value(base.Elem(), next.Elem()))
		return out
	case reflect.Struct:
		base, next = addressable(base), addressable(next)
		out := reflect.New(next.Type()).Elem()
		for i := 0; i < next.NumField(); i++ {
			field(out, i).Set(s.value(field(base, i), field(next, i)))
		}
		return out
	case reflect.Map:
		if base.IsNil() || next.IsNil() {
			return next
		}
		key := refOf(next)
		if done, ok := s.seen[key]; ok {
			return done
		}
		out := reflect.MakeMapWithSize(next.Type(), next.Len())
		s.seen[key] = out
		iter := next.MapRange()
		for iter.Next() {
			k, v := iter.Key(), iter.Value()
			if previous := base.MapIndex(k); previous.IsValid() {
				out.SetMapIndex(k, s.value(previous, v))
				continue
			}
			out.SetMapIndex(k, v)
		}
		return out
	case reflect.Slice:
		if base.IsNil() || next.IsNil() {
			return next
		}
		key := refOf(next)
		if done, ok := s.seen[key]; ok {
			return done
		}
		out := reflect.MakeSlice(next.Type(), next.Len(), next.Len())
		s.seen[key] = out
		for i := 0; i < next.Len(); i++ {
			if i < base.Len() {
				out.Index(i).Set(s.value(base.Index(i), next.Index(i)))
				continue
			}
			out.Index(i).Set(next.Index(i))
		}
		return out
	case reflect.Array:
		base, next = addressable(base), addressable(next)
		out := reflect.New(next.Type()).Elem()
		for i := 0; i < next.Len(); i++ {
			out.Index(i).Set(s.value(base.Index(i), next.Index(i)))
		}
		return out
	default:
		return next
	}
}
