package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robo-corg/prints/pkg"
)

type attack int

const (
	fireBreath attack = iota
	scratch
	bark
)

var attackNames = []string{"FireBreath", "Scratch", "Bark"}

func (a *attack) UnmarshalText(b []byte) (err error) {
	*a, err = ParseVariant[attack](string(b), attackNames...)

	return err
}

func (a attack) String() string { return VariantName(a, attackNames...) }

type point struct {
	X float32
	Y float32
}

type vec2 struct {
	X float32
	Y float32
}

func (vec2) Positional() {}

type wrapped struct {
	Inner point
}

func (wrapped) Transparent() {}

type stats struct {
	Speed float32 `validate:"required"`
	Armor int32   `prints:",omitempty"`
	MaxHP float32 `prints:"max_hp,omitempty"`
}

type loot struct {
	Gold  int32
	Bonus *int32
	Items []point
}

type (
	name      string
	hitpoints float32
)

func TestDecode_Variant(t *testing.T) {
	got, err := To[attack](String("Scratch"))
	require.NoError(t, err)
	assert.Equal(t, scratch, got)

	_, err = To[attack](String("Unknown"))
	require.ErrorIs(t, err, ErrUnknownVariant)
	require.ErrorIs(t, err, pkg.ErrToComponent)
	assert.Contains(t, err.Error(),
		"unknown variant `Unknown`, expected one of `FireBreath`, `Scratch`, `Bark`")

	_, err = To[attack](String("scratch"))
	require.ErrorIs(t, err, ErrUnknownVariant, "variant names are case-sensitive")

	_, err = To[attack](Int32(1))
	require.ErrorIs(t, err, ErrShapeMismatch, "variants are selected by name only")
}

func TestDecode_VariantSequence(t *testing.T) {
	got, err := To[[]attack](Sequence{String("FireBreath"), String("Bark")})
	require.NoError(t, err)
	assert.Equal(t, []attack{fireBreath, bark}, got)
	assert.Equal(t, "Bark", got[1].String())
}

func TestDecode_MappingIntoStruct(t *testing.T) {
	got, err := To[point](Mapping{"x": Float32(42), "y": Float32(42)})
	require.NoError(t, err)
	assert.Equal(t, point{X: 42, Y: 42}, got)
}

func TestDecode_NumericKinds(t *testing.T) {
	f, err := To[float32](Int32(10))
	require.NoError(t, err, "i32 is accepted by float targets")
	assert.Equal(t, float32(10), f)

	_, err = To[int32](Float32(1.5))
	require.ErrorIs(t, err, ErrShapeMismatch, "f32 is never truncated into integers")

	_, err = To[int8](Int32(300))
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = To[uint16](Int32(-1))
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = To[string](Int32(1))
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestDecode_Newtypes(t *testing.T) {
	n, err := To[name](String("Rex"))
	require.NoError(t, err)
	assert.Equal(t, name("Rex"), n)

	hp, err := To[hitpoints](Float32(10.5))
	require.NoError(t, err)
	assert.Equal(t, hitpoints(10.5), hp)
}

func TestDecode_Positional(t *testing.T) {
	got, err := To[vec2](Sequence{Float32(1.5), Int32(2)})
	require.NoError(t, err)
	assert.Equal(t, vec2{X: 1.5, Y: 2}, got)

	_, err = To[vec2](Sequence{Float32(1.5)})
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = To[vec2](Mapping{"x": Float32(1)})
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestDecode_Transparent(t *testing.T) {
	got, err := To[wrapped](Mapping{"x": Float32(1), "y": Float32(2)})
	require.NoError(t, err)
	assert.Equal(t, wrapped{Inner: point{X: 1, Y: 2}}, got)
}

func TestDecode_RequiredAndTags(t *testing.T) {
	got, err := To[stats](Mapping{"speed": Float32(2), "max_hp": Int32(30)})
	require.NoError(t, err)
	assert.Equal(t, stats{Speed: 2, MaxHP: 30}, got)

	_, err = To[stats](Mapping{"armor": Int32(3)})
	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "Speed")
}

func TestDecode_MissingField(t *testing.T) {
	_, err := To[point](Mapping{"x": Float32(1)})
	require.ErrorIs(t, err, ErrMissingField)
	require.ErrorIs(t, err, pkg.ErrToComponent)
	assert.Contains(t, err.Error(), "missing field `Y`")

	_, err = To[point](Mapping{"x": Float32(1), "why": Float32(2)})
	require.ErrorIs(t, err, ErrMissingField, "a misspelled key leaves its field unset")

	_, err = To[wrapped](Mapping{"x": Float32(1)})
	require.ErrorIs(t, err, ErrMissingField)

	_, err = To[loot](Mapping{
		"gold":  Int32(3),
		"items": Sequence{Mapping{"x": Float32(1), "y": Float32(2)}, Mapping{"x": Float32(3)}},
	})
	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "Items[1].Y")
}

func TestDecode_OptionalFields(t *testing.T) {
	got, err := To[loot](Mapping{"gold": Int32(3), "items": Sequence{}})
	require.NoError(t, err, "pointer fields may be absent")
	assert.Equal(t, int32(3), got.Gold)
	assert.Nil(t, got.Bonus)
	assert.Empty(t, got.Items)

	st, err := To[stats](Mapping{"speed": Float32(1)})
	require.NoError(t, err, "omitempty fields may be absent")
	assert.Equal(t, stats{Speed: 1}, st)

	p := point{X: 5, Y: 6}
	require.NoError(t, Decode(Mapping{"y": Float32(9)}, &p, Partial()))
	assert.Equal(t, point{X: 5, Y: 9}, p)
}

func TestDecode_UnknownKeys(t *testing.T) {
	in := Mapping{"speed": Float32(1), "bogus": Int32(2)}

	_, err := To[stats](in)
	require.NoError(t, err, "unknown keys are ignored by default")

	_, err = To[stats](in, Strict())
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestDecode_NestedEntityFails(t *testing.T) {
	in := Mapping{"child": Entity(RecordOf(map[string]Value{"Name": String("x")}))}

	_, err := To[map[string]any](in)
	require.ErrorIs(t, err, ErrNestedEntity)
	require.ErrorIs(t, err, pkg.ErrToComponent)
}

func TestDecode_IntoMap(t *testing.T) {
	got, err := To[map[string]int32](Mapping{"a": Int32(1), "b": Int32(2)})
	require.NoError(t, err)
	assert.Equal(t, map[string]int32{"a": 1, "b": 2}, got)
}

func TestDecode_NonPointerTarget(t *testing.T) {
	var p point

	err := Decode(Mapping{}, p)
	require.ErrorIs(t, err, pkg.ErrToComponent)
}
