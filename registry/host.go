package registry

import "reflect"

// Target is the entity being materialized into. Components are keyed by
// their dynamic Go type; Insert replaces any component of the same type.
type Target interface {
	Get(t reflect.Type) (any, bool)
	Insert(component any)
}

// Host gives strategies access to shared host state.
type Host interface {
	Resource(t reflect.Type) (any, bool)
}

// Catalog resolves component names to Go types for the reflective
// fallback. Hosts that support the fallback implement it alongside [Host].
type Catalog interface {
	Lookup(name string) (reflect.Type, bool)
}

// Resource returns the host resource of type T.
func Resource[T any](h Host) (T, bool) {
	var zero T

	if h == nil {
		return zero, false
	}

	r, ok := h.Resource(reflect.TypeFor[T]())
	if !ok {
		return zero, false
	}

	t, ok := r.(T)

	return t, ok
}

// Component returns the component of type T attached to target.
func Component[T any](target Target) (T, bool) {
	var zero T

	c, ok := target.Get(reflect.TypeFor[T]())
	if !ok {
		return zero, false
	}

	t, ok := c.(T)

	return t, ok
}

// staged buffers inserts over a base target. Reads see staged components
// first.
type staged struct {
	base  Target
	order []reflect.Type
	comps map[reflect.Type]any
}

func stage(base Target) *staged {
	return &staged{base: base, comps: make(map[reflect.Type]any)}
}

func (s *staged) Get(t reflect.Type) (any, bool) {
	if c, ok := s.comps[t]; ok {
		return c, true
	}

	return s.base.Get(t)
}

func (s *staged) Insert(component any) {
	t := reflect.TypeOf(component)

	if _, ok := s.comps[t]; !ok {
		s.order = append(s.order, t)
	}

	s.comps[t] = component
}

func (s *staged) commit() {
	for _, t := range s.order {
		s.base.Insert(s.comps[t])
	}
}
