package value

import (
	"iter"
	"maps"
	"slices"
)

// EntityRecord maps component names to payloads of type T. It is used both
// for parsed expressions and for evaluated values.
//
// Names are unique. Iteration is in ascending name order. The zero value is
// an empty record ready to use.
type EntityRecord[T any] struct {
	components map[string]T
}

// Pair is a single named component of an [EntityRecord].
type Pair[T any] struct {
	Name      string
	Component T
}

// RecordOf returns a record holding a copy of m.
func RecordOf[T any](m map[string]T) EntityRecord[T] {
	return EntityRecord[T]{components: maps.Clone(m)}
}

// Insert adds or replaces the component called name.
func (r *EntityRecord[T]) Insert(name string, component T) {
	if r.components == nil {
		r.components = make(map[string]T)
	}

	r.components[name] = component
}

// Get returns the component called name.
func (r EntityRecord[T]) Get(name string) (T, bool) {
	c, ok := r.components[name]

	return c, ok
}

// Len returns the number of components.
func (r EntityRecord[T]) Len() int { return len(r.components) }

// Names returns the component names in ascending order.
func (r EntityRecord[T]) Names() []string {
	return slices.Sorted(maps.Keys(r.components))
}

// All returns an iterator over (name, component) in ascending name order.
func (r EntityRecord[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for _, name := range r.Names() {
			if !yield(name, r.components[name]) {
				return
			}
		}
	}
}

// Pairs returns the components as ordered pairs.
func (r EntityRecord[T]) Pairs() []Pair[T] {
	pairs := make([]Pair[T], 0, len(r.components))

	for name, c := range r.All() {
		pairs = append(pairs, Pair[T]{Name: name, Component: c})
	}

	return pairs
}

// MapRecord returns a record with the same names whose payloads are f
// applied to the payloads of r.
func MapRecord[T, U any](r EntityRecord[T], f func(name string, c T) U) EntityRecord[U] {
	out := EntityRecord[U]{components: make(map[string]U, r.Len())}

	for name, c := range r.All() {
		out.components[name] = f(name, c)
	}

	return out
}

// TryMapRecord is like [MapRecord] but stops at the first error, in name
// order, and returns no partial record.
func TryMapRecord[T, U any](
	r EntityRecord[T],
	f func(name string, c T) (U, error),
) (EntityRecord[U], error) {
	out := EntityRecord[U]{components: make(map[string]U, r.Len())}

	for name, c := range r.All() {
		u, err := f(name, c)
		if err != nil {
			return EntityRecord[U]{}, err
		}

		out.components[name] = u
	}

	return out, nil
}
