// Package draft implements the copy-on-write producer behind Store.Swap.
//
// Produce hands a recipe a deep copy of the base value and then rebuilds the
// result so that every subtree the recipe left untouched is the original
// subtree again. A recipe that changes nothing yields the base value itself.
//
// Both passes descend into unexported struct fields and follow pointer, map
// and slice cycles once.
package draft

import (
	"reflect"
	"unsafe"
)

// Clone returns a deep copy of value, unexported struct fields included.
// Shared references inside value stay shared inside the copy.
func Clone[T any](value T) T {
	rv := reflect.ValueOf(&value).Elem()
	out := reflect.New(rv.Type()).Elem()
	c := cloner{seen: map[ref]reflect.Value{}}
	out.Set(c.value(rv))
	return *(out.Addr().Interface().(*T))
}

// ref identifies a reference-typed value already visited in a pass.
type ref struct {
	typ reflect.Type
	ptr uintptr
	len int
}

func refOf(v reflect.Value) ref {
	r := ref{typ: v.Type(), ptr: v.Pointer()}
	if v.Kind() == reflect.Slice {
		r.len = v.Len()
	}
	return r
}

type cloner struct {
	seen map[ref]reflect.Value
}

func (c cloner) value(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		key := refOf(v)
		if done, ok := c.seen[key]; ok {
			return done
		}
		clone := reflect.New(v.Type().Elem())
		c.seen[key] = clone
		clone.Elem().Set(c.value(v.Elem()))
		return clone
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := c.value(v.Elem())
		if !elem.IsValid() {
			return reflect.Zero(v.Type())
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(elem)
		return out
	case reflect.Struct:
		src := addressable(v)
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			field(clone, i).Set(c.value(field(src, i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		key := refOf(v)
		if done, ok := c.seen[key]; ok {
			return done
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		c.seen[key] = clone
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), c.value(iter.Value()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		key := refOf(v)
		if done, ok := c.seen[key]; ok {
			return done
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		c.seen[key] = clone
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(c.value(v.Index(i)))
		}
		return clone
	case reflect.Array:
		src := addressable(v)
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(c.value(src.Index(i)))
		}
		return clone
	default:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		return out
	}
}

// addressable returns v itself when it can be addressed, or an addressable
// copy otherwise, so its fields can be exposed with field.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	out := reflect.New(v.Type()).Elem()
	out.Set(v)
	return out
}

// field returns the i-th field of the addressable struct v, readable and
// settable even when unexported.
func field(v reflect.Value, i int) reflect.Value {
	f := v.Field(i)
	if f.CanSet() {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}
