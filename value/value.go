package value

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the shape of a [Value].
type Kind int

const (
	KindString Kind = iota
	KindInt32
	KindFloat32
	KindSequence
	KindMapping
	KindEntity
)

// String returns the short type name of k as used in error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt32:
		return "i32"
	case KindFloat32:
		return "f32"
	case KindSequence:
		return "vec"
	case KindMapping:
		return "map"
	case KindEntity:
		return "entity"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a dynamically-typed runtime value.
//
// The set of implementations is closed: [String], [Int32], [Float32],
// [Sequence], [Mapping] and [Entity].
type Value interface {
	Kind() Kind
	// TypeName returns the short type name (string, i32, f32, vec, map,
	// entity).
	TypeName() string
	// Clone returns a deep copy.
	Clone() Value
	String() string

	isValue()
}

type (
	// String is a text value.
	String string
	// Int32 is a signed 32-bit integer value.
	Int32 int32
	// Float32 is a 32-bit floating point value.
	Float32 float32
	// Sequence is an ordered list of values.
	Sequence []Value
	// Mapping is a keyed collection of values. Key order is not significant.
	Mapping map[string]Value
	// Entity is a mapping from component name to component value. It only
	// appears as the result of evaluating an entity description.
	Entity EntityRecord[Value]
)

func (String) Kind() Kind   { return KindString }
func (Int32) Kind() Kind    { return KindInt32 }
func (Float32) Kind() Kind  { return KindFloat32 }
func (Sequence) Kind() Kind { return KindSequence }
func (Mapping) Kind() Kind  { return KindMapping }
func (Entity) Kind() Kind   { return KindEntity }

func (v String) TypeName() string   { return v.Kind().String() }
func (v Int32) TypeName() string    { return v.Kind().String() }
func (v Float32) TypeName() string  { return v.Kind().String() }
func (v Sequence) TypeName() string { return v.Kind().String() }
func (v Mapping) TypeName() string  { return v.Kind().String() }
func (v Entity) TypeName() string   { return v.Kind().String() }

func (String) isValue()   {}
func (Int32) isValue()    {}
func (Float32) isValue()  {}
func (Sequence) isValue() {}
func (Mapping) isValue()  {}
func (Entity) isValue()   {}

func (v String) Clone() Value  { return v }
func (v Int32) Clone() Value   { return v }
func (v Float32) Clone() Value { return v }

func (v Sequence) Clone() Value {
	if v == nil {
		return Sequence(nil)
	}

	out := make(Sequence, len(v))
	for i, e := range v {
		out[i] = e.Clone()
	}

	return out
}

func (v Mapping) Clone() Value {
	if v == nil {
		return Mapping(nil)
	}

	out := make(Mapping, len(v))
	for k, e := range v {
		out[k] = e.Clone()
	}

	return out
}

func (v Entity) Clone() Value {
	return Entity(MapRecord(v.Record(), func(_ string, c Value) Value {
		return c.Clone()
	}))
}

// Record returns v as an [EntityRecord].
func (v Entity) Record() EntityRecord[Value] { return EntityRecord[Value](v) }

func (v String) String() string  { return strconv.Quote(string(v)) }
func (v Int32) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float32) String() string { return formatFloat(float32(v)) }

func (v Sequence) String() string {
	var sb strings.Builder

	sb.WriteByte('[')

	for i, e := range v {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(e.String())
	}

	sb.WriteByte(']')

	return sb.String()
}

func (v Mapping) String() string {
	return writeKeyed("{", "}", slices.Sorted(maps.Keys(v)), func(k string) Value {
		return v[k]
	})
}

func (v Entity) String() string {
	r := v.Record()

	return writeKeyed("entity{", "}", r.Names(), func(k string) Value {
		c, _ := r.Get(k)

		return c
	})
}

func writeKeyed(open, end string, keys []string, get func(string) Value) string {
	var sb strings.Builder

	sb.WriteString(open)

	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(get(k).String())
	}

	sb.WriteString(end)

	return sb.String()
}

// formatFloat renders f with the shortest representation that round-trips,
// always including a decimal point so it reads back as a float.
func formatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}

	return s
}

// Equal reports whether a and b have the same kind and structurally equal
// contents.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch a := a.(type) {
	case String, Int32, Float32:
		return a == b

	case Sequence:
		return slices.EqualFunc(a, b.(Sequence), Equal)

	case Mapping:
		return maps.EqualFunc(a, b.(Mapping), Equal)

	case Entity:
		return maps.EqualFunc(a.components, b.(Entity).components, Equal)
	}

	return false
}
