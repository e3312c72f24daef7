package registry

import (
	"context"
	"reflect"
	"slices"

	"github.com/robo-corg/prints/value"
)

// Strategy builds one named component from its evaluated value. The set of
// strategies is closed: use [Typed], [Decoded], [Custom] or [MapComponent].
type Strategy interface {
	apply(ctx context.Context, host Host, target Target, v value.Value) error
}

type typed[T any] struct {
	opts []value.DecodeOption
}

// Typed returns a strategy that decodes the value into a T with
// [value.Decode] and attaches it.
func Typed[T any](opts ...value.DecodeOption) Strategy {
	return typed[T]{opts: opts}
}

func (s typed[T]) apply(_ context.Context, _ Host, target Target, v value.Value) error {
	t, err := value.To[T](v, s.opts...)
	if err != nil {
		return err
	}

	target.Insert(t)

	return nil
}

// BuildFunc constructs a component from its evaluated value.
type BuildFunc[T any] func(ctx context.Context, host Host, v value.Value) (T, error)

// Inserter is a strategy that builds a T, attaches it, then attaches its
// dependency defaults in the order they were declared.
//
// Inserters are immutable; chaining methods return a new Inserter.
type Inserter[T any] struct {
	build BuildFunc[T]
	deps  []dependency
}

type dependency struct {
	Dependency
	force bool
}

// Dependency is a component attached alongside another one.
type Dependency struct {
	typ  reflect.Type
	make func() any
}

// Type returns the component type of d.
func (d Dependency) Type() reflect.Type { return d.typ }

// Defaulter is implemented by component types with a non-zero default.
type Defaulter[T any] interface {
	Default() T
}

// Default returns a dependency on a U. The attached value is the result of
// U's Default method if it implements [Defaulter], else the zero U.
func Default[U any]() Dependency {
	return Dependency{
		typ: reflect.TypeFor[U](),
		make: func() any {
			var zero U
			if d, ok := any(zero).(Defaulter[U]); ok {
				return d.Default()
			}

			return zero
		},
	}
}

// DefaultValue returns a dependency that attaches u.
func DefaultValue[U any](u U) Dependency {
	return Dependency{
		typ:  reflect.TypeFor[U](),
		make: func() any { return u },
	}
}

// Custom returns an inserter that builds components with fn.
func Custom[T any](fn BuildFunc[T]) *Inserter[T] {
	return &Inserter[T]{build: fn}
}

// Decoded returns an inserter that decodes the value into a T.
func Decoded[T any](opts ...value.DecodeOption) *Inserter[T] {
	return Custom(func(_ context.Context, _ Host, v value.Value) (T, error) {
		return value.To[T](v, opts...)
	})
}

// MapComponent returns an inserter that builds a T with in, then converts
// it with f before attaching. Dependencies declared on in are kept.
func MapComponent[T, U any](in *Inserter[T], f func(host Host, t T) (U, error)) *Inserter[U] {
	return &Inserter[U]{
		build: func(ctx context.Context, host Host, v value.Value) (U, error) {
			t, err := in.build(ctx, host, v)
			if err != nil {
				var zero U

				return zero, err
			}

			return f(host, t)
		},
		deps: slices.Clone(in.deps),
	}
}

// DependsOn returns a copy of i that always attaches d, replacing any
// existing component of the same type.
func (i *Inserter[T]) DependsOn(d Dependency) *Inserter[T] {
	return i.with(dependency{Dependency: d, force: true})
}

// Ensures returns a copy of i that attaches d only if the entity has no
// component of that type.
func (i *Inserter[T]) Ensures(d Dependency) *Inserter[T] {
	return i.with(dependency{Dependency: d})
}

// Dependencies returns the dependency types of i in declaration order.
func (i *Inserter[T]) Dependencies() []reflect.Type {
	types := make([]reflect.Type, len(i.deps))
	for n, d := range i.deps {
		types[n] = d.typ
	}

	return types
}

func (i *Inserter[T]) with(d dependency) *Inserter[T] {
	return &Inserter[T]{
		build: i.build,
		deps:  append(slices.Clip(i.deps), d),
	}
}

func (i *Inserter[T]) apply(ctx context.Context, host Host, target Target, v value.Value) error {
	t, err := i.build(ctx, host, v)
	if err != nil {
		return err
	}

	target.Insert(t)

	for _, d := range i.deps {
		if !d.force {
			if _, ok := target.Get(d.typ); ok {
				continue
			}
		}

		target.Insert(d.make())
	}

	return nil
}
