// Package spawn attaches blueprints to world entities as deferred commands.
//
// A [Spawner] is installed into a [world.World] as a resource. Queued
// [InsertBlueprint] commands look it up when the world's commands are
// flushed, evaluate the blueprint and materialize the result onto the
// entity.
package spawn

import (
	"context"
	"log/slog"

	"github.com/robo-corg/prints/assets"
	"github.com/robo-corg/prints/lang"
	"github.com/robo-corg/prints/log"
	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/registry"
	"github.com/robo-corg/prints/world"
)

var (
	// ErrNoSpawner is returned when an [InsertBlueprint] is applied to a
	// world without an installed [Spawner].
	ErrNoSpawner = pkg.NewError("no spawner installed in world")

	// ErrBlueprintNotLoaded is returned for handles unknown to the asset
	// server.
	ErrBlueprintNotLoaded = pkg.NewError("blueprint %s is not loaded")
)

// Spawner bundles what is needed to turn a blueprint handle into
// components.
type Spawner struct {
	assets   *assets.Server
	registry *registry.Registry
	env      lang.Environment
	opts     []lang.Option
	logger   log.Logger
}

// Option configures a [Spawner].
type Option func(*Spawner)

// WithLogger sets the structured logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Spawner) {
		s.logger = logger
	}
}

// WithEvalOptions sets the options of the evaluation context.
func WithEvalOptions(opts ...lang.Option) Option {
	return func(s *Spawner) {
		s.opts = opts
	}
}

// New returns a spawner evaluating blueprints from srv with env and
// materializing them with reg.
func New(
	srv *assets.Server,
	reg *registry.Registry,
	env lang.Environment,
	opts ...Option,
) *Spawner {
	s := &Spawner{assets: srv, registry: reg, env: env}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Install makes s and its asset server available as resources of w.
func (s *Spawner) Install(w *world.World) {
	if cur, ok := world.Resource[*Spawner](w); ok && cur == s {
		return
	}

	w.InsertResource(s)
	w.InsertResource(s.assets)
}

// Spawn allocates a new entity and queues the blueprint under h for
// insertion on it.
func (s *Spawner) Spawn(ctx context.Context, w *world.World, h assets.Handle) world.Entity {
	e := w.Commands().Spawn()

	s.logger.TraceContext(ctx, "entity spawned",
		slog.String("entity", e.String()),
		slog.String("handle", h.String()))

	s.Insert(w, e, h)

	return e
}

// Insert queues the blueprint under h for insertion on e.
func (s *Spawner) Insert(w *world.World, e world.Entity, h assets.Handle) {
	s.Install(w)

	w.Commands().Push(InsertBlueprint{Entity: e, Handle: h})
}

// InsertBlueprint is a [world.Command] that evaluates a blueprint and
// attaches the resulting components to an entity. Nothing is attached if
// any component fails.
type InsertBlueprint struct {
	Entity world.Entity
	Handle assets.Handle
}

// Apply implements [world.Command].
func (c InsertBlueprint) Apply(ctx context.Context, w *world.World) error {
	s, ok := world.Resource[*Spawner](w)
	if !ok {
		return ErrNoSpawner
	}

	if err := s.insert(ctx, w, c.Entity, c.Handle); err != nil {
		return pkg.WrapError(err).With(
			slog.String("entity", c.Entity.String()),
			slog.String("handle", c.Handle.String()),
		)
	}

	return nil
}

func (s *Spawner) insert(ctx context.Context, w *world.World, e world.Entity, h assets.Handle) error {
	if !w.Alive(e) {
		return world.ErrNoEntity.Args(e)
	}

	bp, ok := s.assets.Get(h)
	if !ok {
		return ErrBlueprintNotLoaded.Args(h)
	}

	rec, err := bp.Eval(ctx, lang.NewContext(s.env, s.opts...))
	if err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "blueprint evaluated",
		slog.String("blueprint", bp.Name),
		slog.Int("components", rec.Len()))

	return s.registry.Materialize(ctx, w, w.Entity(e), rec)
}
