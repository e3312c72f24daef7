package env

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/robo-corg/prints/lang"
	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/value"
)

// Func is a function callable from a blueprint.
type Func func(ctx context.Context, args []value.Value) (value.Value, error)

// Lister is implemented by environments that can enumerate the functions
// they define.
type Lister interface {
	Names() []string
}

// Simple is an environment backed by a map of named functions. It is safe
// for concurrent use.
type Simple struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

var (
	_ lang.Environment = (*Simple)(nil)
	_ Lister           = (*Simple)(nil)
)

// NewSimple returns an empty environment.
func NewSimple() *Simple {
	return &Simple{funcs: make(map[string]Func)}
}

// Register defines name, replacing any previous definition.
func (s *Simple) Register(name string, fn Func) *Simple {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.funcs == nil {
		s.funcs = make(map[string]Func)
	}

	s.funcs[name] = fn

	return s
}

// Lookup returns the function defined as name.
func (s *Simple) Lookup(name string) (Func, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fn, ok := s.funcs[name]

	return fn, ok
}

// Names returns the defined function names in ascending order.
func (s *Simple) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.funcs))
}

// EvalFunc implements [lang.Environment].
func (s *Simple) EvalFunc(
	ctx context.Context,
	name string,
	args []value.Value,
) (value.Value, error) {
	fn, ok := s.Lookup(name)
	if !ok {
		return nil, undefined(name, s.Names())
	}

	return fn(ctx, args)
}

func undefined(name string, names []string) error {
	err := pkg.ErrUndefinedFunction.Args(name)

	if sugg := pkg.Suggest(name, names); len(sugg) > 0 {
		err = err.With(slog.Any("suggestions", sugg))
	}

	return err
}

// Chain returns an environment that resolves each call against envs in
// order. An environment that reports [pkg.ErrUndefinedFunction] passes the
// call on to the next one.
func Chain(envs ...lang.Environment) lang.Environment {
	return chain(slices.Clone(envs))
}

type chain []lang.Environment

func (c chain) EvalFunc(
	ctx context.Context,
	name string,
	args []value.Value,
) (value.Value, error) {
	for _, e := range c {
		v, err := e.EvalFunc(ctx, name, args)
		if err == nil || !errors.Is(err, pkg.ErrUndefinedFunction) {
			return v, err
		}
	}

	return nil, undefined(name, c.Names())
}

// Names returns the union of the names of every listable environment in the
// chain.
func (c chain) Names() []string {
	seen := make(map[string]struct{})

	for _, e := range c {
		if l, ok := e.(Lister); ok {
			for _, n := range l.Names() {
				seen[n] = struct{}{}
			}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

// Names returns the functions defined by e, or nil if e cannot enumerate
// them.
func Names(e lang.Environment) []string {
	if l, ok := e.(Lister); ok {
		return l.Names()
	}

	return nil
}
