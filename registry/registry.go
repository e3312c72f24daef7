package registry

import (
	"context"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/robo-corg/prints/log"
	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/value"
)

// Registry maps component names to strategies. It is safe for concurrent
// use, though hosts normally register everything before the first
// materialization.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	logger     log.Logger
}

// Option configures a [Registry].
type Option func(*Registry)

// WithLogger sets the structured logger for trace-level debugging.
func WithLogger(logger log.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register associates name with s. Registering a name twice fails with
// [pkg.ErrDuplicateComponent].
func (r *Registry) Register(name string, s Strategy) error {
	if name == "" || s == nil {
		return pkg.ErrInvalidArgument.With(slog.String("component", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.strategies[name]; dup {
		return pkg.ErrDuplicateComponent.With(slog.String("component", name))
	}

	r.strategies[name] = s

	r.logger.Trace("component registered",
		slog.String("component", name),
		slog.String("strategy", reflect.TypeOf(s).String()))

	return nil
}

// MustRegister is like [Registry.Register] but panics on error. It returns
// r for chaining.
func (r *Registry) MustRegister(name string, s Strategy) *Registry {
	if err := r.Register(name, s); err != nil {
		panic(err)
	}

	return r
}

// RegisterTyped registers [Typed] for T under name.
func RegisterTyped[T any](r *Registry, name string, opts ...value.DecodeOption) error {
	return r.Register(name, Typed[T](opts...))
}

// Resolve returns the strategy registered under name.
func (r *Registry) Resolve(name string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[name]

	return s, ok
}

// Names returns the registered component names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.strategies))
}

// Suggest returns registered names similar to name.
func (r *Registry) Suggest(name string) []string {
	return pkg.Suggest(name, r.Names())
}

// Materialize builds every component of rec and attaches them to target.
//
// Components are built in ascending name order against a staging area, so
// later components observe earlier ones. If any component fails, nothing is
// attached and target is left untouched. Names without a strategy are
// resolved through host's [Catalog], if it has one.
func (r *Registry) Materialize(
	ctx context.Context,
	host Host,
	target Target,
	rec value.EntityRecord[value.Value],
) error {
	st := stage(target)

	for name, v := range rec.All() {
		if err := r.materialize(ctx, host, st, name, v); err != nil {
			r.logger.DebugContext(ctx, "materialize failed",
				slog.String("component", name),
				slog.Any("error", err))

			return err
		}
	}

	st.commit()

	r.logger.DebugContext(ctx, "entity materialized",
		slog.Int("components", rec.Len()),
		slog.Int("attached", len(st.order)))

	return nil
}

func (r *Registry) materialize(
	ctx context.Context,
	host Host,
	target Target,
	name string,
	v value.Value,
) error {
	if s, ok := r.Resolve(name); ok {
		r.logger.TraceContext(ctx, "building component", slog.String("component", name))

		if err := s.apply(ctx, host, target, v); err != nil {
			return pkg.WrapError(err).With(slog.String("component", name))
		}

		return nil
	}

	if cat, ok := host.(Catalog); ok {
		if typ, ok := cat.Lookup(name); ok {
			r.logger.TraceContext(ctx, "reflecting component",
				slog.String("component", name),
				slog.String("type", typ.String()))

			c, err := reflectComponent(typ, target, v)
			if err != nil {
				return pkg.WrapError(err).With(slog.String("component", name))
			}

			target.Insert(c)

			return nil
		}
	}

	err := pkg.ErrUnknownComponent.Args(name)
	if sugg := r.Suggest(name); len(sugg) > 0 {
		err = err.With(slog.Any("suggestions", sugg))
	}

	return err
}
