package rowmodel

import "reflect"

// Memo caches one computed value keyed by a dependency list. Dependencies
// compare by identity for slices, maps, pointers and funcs, and by value
// otherwise, so an unchanged input slice reuses the cached result. Inputs
// must be replaced rather than mutated in place for a change to be seen.
//
// A Memo is not safe for concurrent use.
type Memo[T any] struct {
	deps   []any
	value  T
	valid  bool
	misses int
}

// Get returns the cached value when deps match the previous call, and
// otherwise recomputes and caches it.
func (m *Memo[T]) Get(deps []any, compute func() T) T {
	if m.valid && SameDeps(m.deps, deps) {
		return m.value
	}
	m.value = compute()
	m.deps = append(m.deps[:0:0], deps...)
	m.valid = true
	m.misses++
	return m.value
}

// Computations reports how many times the value was computed.
func (m *Memo[T]) Computations() int {
	return m.misses
}

// Reset drops the cached value.
func (m *Memo[T]) Reset() {
	var zero T
	m.value = zero
	m.deps = nil
	m.valid = false
}

// SameDeps compares two dependency lists element-wise.
func SameDeps(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameDep(a[i], b[i]) {
			return false
		}
	}
	return true
}

func sameDep(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Slice:
		if va.Len() != vb.Len() {
			return false
		}
		return va.Len() == 0 || va.Pointer() == vb.Pointer()
	case reflect.Map:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() == vb.IsNil()
		}
		return va.Pointer() == vb.Pointer()
	case reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	return reflect.DeepEqual(a, b)
}
