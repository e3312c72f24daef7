// Package world is a minimal entity-component store used as the host for
// blueprint materialization.
//
// A [World] holds entities, each a set of components keyed by Go type, plus
// typed resources and a catalog of named component types. Work that must
// not run mid-iteration is queued as a [Command] and applied with
// [World.Flush]. A World is not safe for concurrent use.
package world

import (
	"cmp"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strconv"

	"github.com/robo-corg/prints/log"
	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/registry"
)

// ErrNoEntity is returned for operations on an entity that does not exist.
var ErrNoEntity = pkg.NewError("entity %s does not exist")

// Entity identifies an entity within a [World]. The zero Entity is never
// allocated.
type Entity uint64

func (e Entity) String() string {
	return "Entity(" + strconv.FormatUint(uint64(e), 10) + ")"
}

// World stores entities, resources and the component type catalog.
type World struct {
	next      Entity
	entities  map[Entity]map[reflect.Type]any
	resources map[reflect.Type]any
	types     map[string]reflect.Type
	commands  *Commands
	logger    log.Logger
}

var (
	_ registry.Host    = (*World)(nil)
	_ registry.Catalog = (*World)(nil)
)

// Option configures a [World].
type Option func(*World)

// WithLogger sets the structured logger for trace-level debugging.
func WithLogger(logger log.Logger) Option {
	return func(w *World) {
		w.logger = logger
	}
}

// New returns an empty world.
func New(opts ...Option) *World {
	w := &World{
		entities:  make(map[Entity]map[reflect.Type]any),
		resources: make(map[reflect.Type]any),
		types:     make(map[string]reflect.Type),
	}

	w.commands = &Commands{world: w}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Spawn creates an entity with the given components.
func (w *World) Spawn(components ...any) Entity {
	w.next++
	e := w.next

	w.entities[e] = make(map[reflect.Type]any, len(components))

	for _, c := range components {
		w.entities[e][reflect.TypeOf(c)] = c
	}

	w.logger.Trace("entity spawned",
		slog.String("entity", e.String()),
		slog.Int("components", len(components)))

	return e
}

// Despawn removes e and all of its components. It reports whether e
// existed.
func (w *World) Despawn(e Entity) bool {
	if _, ok := w.entities[e]; !ok {
		return false
	}

	delete(w.entities, e)

	w.logger.Trace("entity despawned", slog.String("entity", e.String()))

	return true
}

// Alive reports whether e exists.
func (w *World) Alive(e Entity) bool {
	_, ok := w.entities[e]

	return ok
}

// Entities returns all live entities in ascending order.
func (w *World) Entities() []Entity {
	return slices.Sorted(maps.Keys(w.entities))
}

// Insert attaches components to e, replacing components of the same types.
func (w *World) Insert(e Entity, components ...any) error {
	comps, ok := w.entities[e]
	if !ok {
		return ErrNoEntity.Args(e)
	}

	for _, c := range components {
		comps[reflect.TypeOf(c)] = c
	}

	return nil
}

// Remove detaches the component of type t from e and reports whether it
// was present.
func (w *World) Remove(e Entity, t reflect.Type) bool {
	comps, ok := w.entities[e]
	if !ok {
		return false
	}

	if _, ok := comps[t]; !ok {
		return false
	}

	delete(comps, t)

	return true
}

// Has reports whether e has a component of type t.
func (w *World) Has(e Entity, t reflect.Type) bool {
	_, ok := w.entities[e][t]

	return ok
}

// Component returns the component of type t attached to e.
func (w *World) Component(e Entity, t reflect.Type) (any, bool) {
	c, ok := w.entities[e][t]

	return c, ok
}

// Components returns the components of e ordered by type name.
func (w *World) Components(e Entity) []any {
	comps := w.entities[e]

	types := slices.SortedFunc(maps.Keys(comps), func(a, b reflect.Type) int {
		return cmp.Compare(a.String(), b.String())
	})

	out := make([]any, len(types))
	for i, t := range types {
		out[i] = comps[t]
	}

	return out
}

// Get returns the component of type T attached to e.
func Get[T any](w *World, e Entity) (T, bool) {
	c, ok := w.Component(e, reflect.TypeFor[T]())
	if !ok {
		var zero T

		return zero, false
	}

	return c.(T), true
}

// Has reports whether e has a component of type T.
func Has[T any](w *World, e Entity) bool {
	return w.Has(e, reflect.TypeFor[T]())
}

// Remove detaches the component of type T from e.
func Remove[T any](w *World, e Entity) bool {
	return w.Remove(e, reflect.TypeFor[T]())
}

// InsertResource stores r as the resource of its dynamic type.
func (w *World) InsertResource(r any) {
	w.resources[reflect.TypeOf(r)] = r
}

// Resource implements [registry.Host].
func (w *World) Resource(t reflect.Type) (any, bool) {
	r, ok := w.resources[t]

	return r, ok
}

// Resource returns the resource of type T.
func Resource[T any](w *World) (T, bool) {
	return registry.Resource[T](w)
}

// RegisterType adds T to the component catalog under name, or under the
// type's own name if name is empty.
func RegisterType[T any](w *World, name string) {
	t := reflect.TypeFor[T]()
	if name == "" {
		name = t.Name()
	}

	w.types[name] = t
}

// Lookup implements [registry.Catalog].
func (w *World) Lookup(name string) (reflect.Type, bool) {
	t, ok := w.types[name]

	return t, ok
}

// TypeNames returns the catalogued component names in ascending order.
func (w *World) TypeNames() []string {
	return slices.Sorted(maps.Keys(w.types))
}

// Entity returns e as a [registry.Target]. Inserts into a despawned entity
// are dropped.
func (w *World) Entity(e Entity) registry.Target {
	return target{w: w, e: e}
}

type target struct {
	w *World
	e Entity
}

func (t target) Get(typ reflect.Type) (any, bool) {
	return t.w.Component(t.e, typ)
}

func (t target) Insert(c any) {
	if err := t.w.Insert(t.e, c); err != nil {
		t.w.logger.Debug("insert dropped", slog.Any("error", err))
	}
}
