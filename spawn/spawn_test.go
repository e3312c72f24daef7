package spawn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robo-corg/prints/assets"
	"github.com/robo-corg/prints/env"
	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/registry"
	"github.com/robo-corg/prints/units"
	"github.com/robo-corg/prints/world"
)

type fixture struct {
	srv     *assets.Server
	spawner *Spawner
	world   *world.World
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	reg := registry.New()
	require.NoError(t, units.Register(reg))

	w := world.New()
	units.RegisterTypes(w)

	srv := assets.New("testdata")

	return fixture{
		srv:     srv,
		spawner: New(srv, reg, env.Builtins()),
		world:   w,
	}
}

func (f fixture) load(t *testing.T, path string) assets.Handle {
	t.Helper()

	h, err := f.srv.Load(t.Context(), path)
	require.NoError(t, err)

	return h
}

func TestSpawner_Rex(t *testing.T) {
	f := newFixture(t)
	h := f.load(t, "rex.bp.json")

	e := f.spawner.Spawn(t.Context(), f.world, h)
	assert.Empty(t, f.world.Components(e), "insertion is deferred until flush")
	assert.Equal(t, 1, f.world.Commands().Len())

	require.NoError(t, f.world.Flush(t.Context()))

	name, ok := world.Get[units.Name](f.world, e)
	require.True(t, ok)
	assert.Equal(t, units.Name("Rex"), name)

	hp, _ := world.Get[units.Hitpoints](f.world, e)
	assert.Equal(t, units.Hitpoints(10.5), hp)

	attacks, _ := world.Get[units.Attacks](f.world, e)
	assert.Equal(t, units.Attacks{units.FireBreath, units.Bark}, attacks)

	scene, ok := world.Get[units.Scene](f.world, e)
	require.True(t, ok)
	assert.Equal(t, "models/rex.glb#Scene0", scene.Path)
	assert.Equal(t, assets.HandleFor("models/rex.glb#Scene0"), scene.Handle)

	tr, ok := world.Get[units.Transform](f.world, e)
	require.True(t, ok, "Scene depends on Transform")
	assert.Equal(t, units.Transform{Scale: 1}, tr)

	vis, ok := world.Get[units.Visibility](f.world, e)
	require.True(t, ok, "Scene depends on Visibility")
	assert.True(t, vis.Visible)

	pos, ok := world.Get[units.Position](f.world, e)
	require.True(t, ok, "Position resolves through the type catalog")
	assert.Equal(t, units.Position{X: 1, Y: 2}, pos)
}

func TestSpawner_Builtins(t *testing.T) {
	f := newFixture(t)
	h := f.load(t, "corgi.bp.yaml")

	e := f.spawner.Spawn(t.Context(), f.world, h)
	require.NoError(t, f.world.Flush(t.Context()))

	name, _ := world.Get[units.Name](f.world, e)
	assert.Equal(t, units.Name("Corgi"), name)

	hp, ok := world.Get[units.Hitpoints](f.world, e)
	require.True(t, ok)
	assert.GreaterOrEqual(t, float32(hp), float32(4))
	assert.LessOrEqual(t, float32(hp), float32(6))
}

func TestSpawner_FailureLeavesEntityUnchanged(t *testing.T) {
	f := newFixture(t)
	h := f.load(t, "wings.bp.yaml")

	e := f.world.Spawn(units.Name("Before"))
	f.spawner.Insert(f.world, e, h)

	err := f.world.Flush(t.Context())
	require.ErrorIs(t, err, pkg.ErrUnknownComponent)

	assert.Equal(t, []any{units.Name("Before")}, f.world.Components(e))
}

func TestSpawner_Errors(t *testing.T) {
	t.Run("not loaded", func(t *testing.T) {
		f := newFixture(t)
		f.spawner.Spawn(t.Context(), f.world, assets.HandleFor("missing.bp.json"))

		require.ErrorIs(t, f.world.Flush(t.Context()), ErrBlueprintNotLoaded)
	})

	t.Run("despawned", func(t *testing.T) {
		f := newFixture(t)
		h := f.load(t, "rex.bp.json")

		e := f.spawner.Spawn(t.Context(), f.world, h)
		f.world.Despawn(e)

		require.ErrorIs(t, f.world.Flush(t.Context()), world.ErrNoEntity)
	})

	t.Run("no spawner", func(t *testing.T) {
		w := world.New()
		w.Commands().Push(InsertBlueprint{Entity: w.Spawn(), Handle: assets.HandleFor("rex.bp.json")})

		require.ErrorIs(t, w.Flush(t.Context()), ErrNoSpawner)
	})
}

func TestSpawner_Install(t *testing.T) {
	f := newFixture(t)
	f.spawner.Install(f.world)

	s, ok := world.Resource[*Spawner](f.world)
	require.True(t, ok)
	assert.Same(t, f.spawner, s)

	srv, ok := world.Resource[*assets.Server](f.world)
	require.True(t, ok)
	assert.Same(t, f.srv, srv)
}
