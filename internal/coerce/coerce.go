// Package coerce normalises loosely typed caller arguments (a scalar, a
// slice, an array or a tuple) into one canonical container before they reach
// the numeric code.
package coerce

import (
	"math"
	"reflect"

	"gonum.org/v1/gonum/mat"
)

// Tuple is an immutable ordered sequence of values.
type Tuple struct {
	items []any
}

// NewTuple returns a tuple holding items in order.
func NewTuple(items ...any) Tuple {
	out := make([]any, len(items))
	copy(out, items)
	return Tuple{items: out}
}

// Len returns the number of elements.
func (t Tuple) Len() int { return len(t.items) }

// At returns the i-th element.
func (t Tuple) At(i int) any { return t.items[i] }

// Items returns a copy of the elements.
func (t Tuple) Items() []any {
	out := make([]any, len(t.items))
	copy(out, t.items)
	return out
}

// Equal reports whether both tuples hold equal elements in the same order.
func (t Tuple) Equal(o Tuple) bool {
	if len(t.items) != len(o.items) {
		return false
	}
	for i := range t.items {
		if !reflect.DeepEqual(t.items[i], o.items[i]) {
			return false
		}
	}
	return true
}

// isSequence reports whether v is a slice or an array. Strings and maps are
// treated as scalars.
func isSequence(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	k := v.Kind()
	return k == reflect.Slice || k == reflect.Array
}

func sequenceItems(v reflect.Value) []any {
	out := make([]any, v.Len())
	for i := range out {
		out[i] = v.Index(i).Interface()
	}
	return out
}

// EnsureTuple returns obj unchanged if it is already a Tuple, converts any
// slice or array into a Tuple with the same elements, and wraps anything
// else (nil included) as a one-element Tuple.
func EnsureTuple(obj any) Tuple {
	switch o := obj.(type) {
	case Tuple:
		return o
	case []any:
		return NewTuple(o...)
	}
	if v := reflect.ValueOf(obj); isSequence(v) {
		return Tuple{items: sequenceItems(v)}
	}
	return Tuple{items: []any{obj}}
}

// EnsureList returns a []any for obj. A nil obj becomes a list holding a
// single nil, a []any is returned as is, other sequences are copied element
// by element and any other value is wrapped as a one-element list.
func EnsureList(obj any) []any {
	switch o := obj.(type) {
	case nil:
		return []any{nil}
	case []any:
		return o
	case Tuple:
		return o.Items()
	}
	if v := reflect.ValueOf(obj); isSequence(v) {
		return sequenceItems(v)
	}
	return []any{obj}
}

// EnsureSlice is the typed form of EnsureList used for "one name or a list of
// names" arguments. Elements of a Tuple or []any that are not a T are
// dropped; a value that is neither T nor a sequence yields nil.
func EnsureSlice[T any](obj any) []T {
	switch o := obj.(type) {
	case nil:
		var zero T
		return []T{zero}
	case T:
		return []T{o}
	case []T:
		return o
	case Tuple:
		return filterItems[T](o.items)
	case []any:
		return filterItems[T](o)
	}
	if v := reflect.ValueOf(obj); isSequence(v) {
		return filterItems[T](sequenceItems(v))
	}
	return nil
}

func filterItems[T any](items []any) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if v, ok := it.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// EnsureArray converts obj into a newly allocated one-dimensional []float64.
//
// Accepted shapes are numeric scalars, a 1x1 mat.Matrix (a zero-dimensional
// array, wrapped to length one), a mat.Vector, any other mat.Matrix
// (flattened row-major), numeric slices and arrays, and Tuples. Input slices
// are always copied so the result never aliases caller memory. Elements that
// are not numeric become NaN.
func EnsureArray(obj any) []float64 {
	switch o := obj.(type) {
	case nil:
		return []float64{math.NaN()}
	case []float64:
		out := make([]float64, len(o))
		copy(out, o)
		return out
	case mat.Vector:
		out := make([]float64, o.Len())
		for i := range out {
			out[i] = o.AtVec(i)
		}
		return out
	case mat.Matrix:
		r, c := o.Dims()
		out := make([]float64, 0, r*c)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				out = append(out, o.At(i, j))
			}
		}
		return out
	case Tuple:
		return toFloats(o.items)
	case []any:
		return toFloats(o)
	}
	v := reflect.ValueOf(obj)
	if isSequence(v) {
		out := make([]float64, v.Len())
		for i := range out {
			out[i] = toFloat(v.Index(i))
		}
		return out
	}
	return []float64{toFloat(v)}
}

func toFloats(items []any) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = toFloat(reflect.ValueOf(it))
	}
	return out
}

func toFloat(v reflect.Value) float64 {
	if !v.IsValid() {
		return math.NaN()
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint())
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return math.NaN()
		}
		return toFloat(v.Elem())
	}
	return math.NaN()
}
