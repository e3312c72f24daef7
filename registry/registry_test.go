package registry

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/value"
)

type (
	Name      string
	Hitpoints float32
	Handle    string

	A struct{ V int32 }
	B struct{ V int32 }

	Position struct{ X, Y float32 }
	Pair     struct{ First, Second int32 }
	Size     float32
)

func (A) Default() A { return A{V: 1} }

type entity map[reflect.Type]any

func (e entity) Get(t reflect.Type) (any, bool) {
	c, ok := e[t]

	return c, ok
}

func (e entity) Insert(c any) { e[reflect.TypeOf(c)] = c }

type host struct {
	resources map[reflect.Type]any
	types     map[string]reflect.Type
}

func (h host) Resource(t reflect.Type) (any, bool) {
	r, ok := h.resources[t]

	return r, ok
}

func (h host) Lookup(name string) (reflect.Type, bool) {
	t, ok := h.types[name]

	return t, ok
}

// bareHost has no catalog.
type bareHost struct{}

func (bareHost) Resource(reflect.Type) (any, bool) { return nil, false }

func record(m map[string]value.Value) value.EntityRecord[value.Value] {
	return value.RecordOf(m)
}

func newRegistry(t *testing.T) *Registry {
	t.Helper()

	r := New()
	require.NoError(t, RegisterTyped[Name](r, "Name"))
	require.NoError(t, RegisterTyped[Hitpoints](r, "Hitpoints"))

	return r
}

func TestMaterialize_Typed(t *testing.T) {
	r := newRegistry(t)
	e := entity{}

	err := r.Materialize(t.Context(), bareHost{}, e, record(map[string]value.Value{
		"Name":      value.String("Rex"),
		"Hitpoints": value.Float32(10.5),
	}))
	require.NoError(t, err)

	assert.Equal(t, entity{
		reflect.TypeFor[Name]():      Name("Rex"),
		reflect.TypeFor[Hitpoints](): Hitpoints(10.5),
	}, e)
}

func TestMaterialize_UnknownComponentIsAtomic(t *testing.T) {
	r := newRegistry(t)
	e := entity{reflect.TypeFor[Name](): Name("Old")}

	err := r.Materialize(t.Context(), bareHost{}, e, record(map[string]value.Value{
		"Name":      value.String("Rex"),
		"Hitpoints": value.Float32(10.5),
		"Zzz":       value.Int32(1),
	}))
	require.ErrorIs(t, err, pkg.ErrUnknownComponent)
	assert.EqualError(t, err, "Unknown component `Zzz`")

	assert.Equal(t, entity{reflect.TypeFor[Name](): Name("Old")}, e)
}

func TestMaterialize_UnknownComponentSuggests(t *testing.T) {
	r := newRegistry(t)

	err := r.Materialize(t.Context(), bareHost{}, entity{}, record(map[string]value.Value{
		"Hitpoint": value.Float32(1),
	}))
	require.ErrorIs(t, err, pkg.ErrUnknownComponent)

	var perr *pkg.Error
	require.ErrorAs(t, err, &perr)
	require.NotEmpty(t, perr.Attrs())
	assert.Equal(t, "suggestions", perr.Attrs()[0].Key)
	assert.Equal(t, []string{"Hitpoints"}, perr.Attrs()[0].Value.Any())
}

func TestMaterialize_DecodeErrorIsAtomic(t *testing.T) {
	r := newRegistry(t)
	e := entity{}

	err := r.Materialize(t.Context(), bareHost{}, e, record(map[string]value.Value{
		"Hitpoints": value.String("lots"),
		"Name":      value.String("Rex"),
	}))
	require.ErrorIs(t, err, pkg.ErrToComponent)
	require.ErrorIs(t, err, value.ErrShapeMismatch)
	assert.Empty(t, e)
}

func marker() *Inserter[Name] {
	return Custom(func(_ context.Context, _ Host, v value.Value) (Name, error) {
		return value.To[Name](v)
	})
}

func TestInserter_DependsOnOverwrites(t *testing.T) {
	r := New().MustRegister("Name", marker().
		DependsOn(Default[A]()).
		DependsOn(DefaultValue(B{V: 2})))

	e := entity{
		reflect.TypeFor[A](): A{V: 7},
		reflect.TypeFor[B](): B{V: 8},
	}

	err := r.Materialize(t.Context(), bareHost{}, e, record(map[string]value.Value{
		"Name": value.String("Rex"),
	}))
	require.NoError(t, err)

	assert.Equal(t, Name("Rex"), e[reflect.TypeFor[Name]()])
	assert.Equal(t, A{V: 1}, e[reflect.TypeFor[A]()])
	assert.Equal(t, B{V: 2}, e[reflect.TypeFor[B]()])
}

func TestInserter_EnsuresKeepsExisting(t *testing.T) {
	r := New().MustRegister("Name", marker().
		Ensures(Default[A]()).
		Ensures(Default[B]()))

	e := entity{reflect.TypeFor[A](): A{V: 7}}

	err := r.Materialize(t.Context(), bareHost{}, e, record(map[string]value.Value{
		"Name": value.String("Rex"),
	}))
	require.NoError(t, err)

	assert.Equal(t, A{V: 7}, e[reflect.TypeFor[A]()])
	assert.Equal(t, B{}, e[reflect.TypeFor[B]()])
}

func TestInserter_IsImmutable(t *testing.T) {
	base := marker().DependsOn(Default[A]())
	withB := base.DependsOn(Default[B]())

	assert.Equal(t, []reflect.Type{reflect.TypeFor[A]()}, base.Dependencies())
	assert.Equal(t, []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()}, withB.Dependencies())
}

func TestMapComponent(t *testing.T) {
	h := host{resources: map[reflect.Type]any{
		reflect.TypeFor[string](): "assets/",
	}}

	scene := MapComponent(Decoded[string](), func(h Host, path string) (Handle, error) {
		root, ok := Resource[string](h)
		if !ok {
			return "", errors.New("no asset root")
		}

		return Handle(root + path), nil
	}).DependsOn(Default[Position]())

	r := New().MustRegister("Scene", scene)
	e := entity{}

	err := r.Materialize(t.Context(), h, e, record(map[string]value.Value{
		"Scene": value.String("lair.glb"),
	}))
	require.NoError(t, err)

	assert.Equal(t, Handle("assets/lair.glb"), e[reflect.TypeFor[Handle]()])
	assert.Equal(t, Position{}, e[reflect.TypeFor[Position]()])

	err = r.Materialize(t.Context(), bareHost{}, entity{}, record(map[string]value.Value{
		"Scene": value.String("lair.glb"),
	}))
	require.EqualError(t, err, "no asset root")
}

func TestMaterialize_StagedReadThrough(t *testing.T) {
	r := New().
		MustRegister("A", Typed[A]()).
		MustRegister("B", Custom(func(_ context.Context, _ Host, _ value.Value) (B, error) {
			return B{}, nil
		}).Ensures(DefaultValue(A{V: 99})))

	e := entity{}

	err := r.Materialize(t.Context(), bareHost{}, e, record(map[string]value.Value{
		"A": value.Mapping{"V": value.Int32(5)},
		"B": value.Mapping{},
	}))
	require.NoError(t, err)

	assert.Equal(t, A{V: 5}, e[reflect.TypeFor[A]()], "B observes the staged A")
}

func TestMaterialize_Fallback(t *testing.T) {
	h := host{types: map[string]reflect.Type{
		"Position": reflect.TypeFor[Position](),
		"Pair":     reflect.TypeFor[Pair](),
		"Size":     reflect.TypeFor[Size](),
	}}

	t.Run("mapping", func(t *testing.T) {
		e := entity{}

		err := New().Materialize(t.Context(), h, e, record(map[string]value.Value{
			"Position": value.Mapping{"x": value.Int32(1), "y": value.Float32(2.5)},
		}))
		require.NoError(t, err)
		assert.Equal(t, Position{X: 1, Y: 2.5}, e[reflect.TypeFor[Position]()])
	})

	t.Run("applies over existing", func(t *testing.T) {
		e := entity{reflect.TypeFor[Position](): Position{X: 5, Y: 6}}

		err := New().Materialize(t.Context(), h, e, record(map[string]value.Value{
			"Position": value.Mapping{"y": value.Int32(9)},
		}))
		require.NoError(t, err)
		assert.Equal(t, Position{X: 5, Y: 9}, e[reflect.TypeFor[Position]()])
	})

	t.Run("sequence", func(t *testing.T) {
		e := entity{}

		err := New().Materialize(t.Context(), h, e, record(map[string]value.Value{
			"Pair": value.Sequence{value.Int32(3), value.Int32(4)},
		}))
		require.NoError(t, err)
		assert.Equal(t, Pair{First: 3, Second: 4}, e[reflect.TypeFor[Pair]()])
	})

	tests := []struct {
		name string
		rec  map[string]value.Value
		want error
	}{
		{
			"nested collection",
			map[string]value.Value{"Position": value.Mapping{"x": value.Sequence{}}},
			pkg.ErrUnsupportedShape,
		},
		{
			"top-level scalar",
			map[string]value.Value{"Position": value.Int32(1)},
			pkg.ErrUnsupportedShape,
		},
		{
			"non-struct type",
			map[string]value.Value{"Size": value.Mapping{}},
			pkg.ErrUnsupportedShape,
		},
		{
			"too many positional fields",
			map[string]value.Value{"Pair": value.Sequence{value.Int32(1), value.Int32(2), value.Int32(3)}},
			value.ErrShapeMismatch,
		},
		{
			"unknown field",
			map[string]value.Value{"Position": value.Mapping{"z": value.Int32(1)}},
			pkg.ErrToComponent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entity{}

			err := New().Materialize(t.Context(), h, e, record(tt.rec))
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, e)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := newRegistry(t)

	err := RegisterTyped[Name](r, "Name")
	require.ErrorIs(t, err, pkg.ErrDuplicateComponent)

	assert.Panics(t, func() { r.MustRegister("Name", Typed[Name]()) })

	require.ErrorIs(t, r.Register("", Typed[Name]()), pkg.ErrInvalidArgument)
}

func TestRegistry_ResolveAndNames(t *testing.T) {
	r := newRegistry(t)

	_, ok := r.Resolve("Name")
	assert.True(t, ok)

	_, ok = r.Resolve("Position")
	assert.False(t, ok)

	assert.Equal(t, []string{"Hitpoints", "Name"}, r.Names())
	assert.Equal(t, []string{"Name"}, r.Suggest("nme"))
}
