package value

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"reflect"
	"slices"

	"github.com/robo-corg/prints/pkg"
)

// Visitor receives the contents of a [Value] according to its kind.
//
// Any number of target representations can be produced from a Value by
// implementing Visitor once per representation; see [Visit].
type Visitor[R any] interface {
	VisitString(s string) (R, error)
	VisitInt32(i int32) (R, error)
	VisitFloat32(f float32) (R, error)
	VisitSequence(s Sequence) (R, error)
	VisitMapping(m Mapping) (R, error)
	VisitEntity(e EntityRecord[Value]) (R, error)
}

// Visit dispatches v to the method of vis matching its kind.
func Visit[R any](v Value, vis Visitor[R]) (R, error) {
	switch v := v.(type) {
	case String:
		return vis.VisitString(string(v))
	case Int32:
		return vis.VisitInt32(int32(v))
	case Float32:
		return vis.VisitFloat32(float32(v))
	case Sequence:
		return vis.VisitSequence(v)
	case Mapping:
		return vis.VisitMapping(v)
	case Entity:
		return vis.VisitEntity(v.Record())
	default:
		var zero R

		return zero, pkg.ErrUnexpectedType.Args(fmt.Sprintf("%T", v), "value")
	}
}

// nativeVisitor converts a Value into plain Go data: string, int32, float32,
// []any and map[string]any.
type nativeVisitor struct {
	// entity converts entity records; nil rejects them.
	entity func(EntityRecord[Value]) (any, error)
}

func (nativeVisitor) VisitString(s string) (any, error)   { return s, nil }
func (nativeVisitor) VisitInt32(i int32) (any, error)     { return i, nil }
func (nativeVisitor) VisitFloat32(f float32) (any, error) { return f, nil }

func (n nativeVisitor) VisitSequence(s Sequence) (any, error) {
	out := make([]any, len(s))

	for i, e := range s {
		v, err := Visit[any](e, n)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

func (n nativeVisitor) VisitMapping(m Mapping) (any, error) {
	out := make(map[string]any, len(m))

	for _, k := range slices.Sorted(maps.Keys(m)) {
		v, err := Visit[any](m[k], n)
		if err != nil {
			return nil, err
		}

		out[k] = v
	}

	return out, nil
}

func (n nativeVisitor) VisitEntity(e EntityRecord[Value]) (any, error) {
	if n.entity == nil {
		return nil, ErrNestedEntity
	}

	return n.entity(e)
}

// Native converts v into plain Go data (string, int32, float32, []any,
// map[string]any). Entity records become maps keyed by component name.
func Native(v Value) (any, error) {
	var n nativeVisitor

	n.entity = func(e EntityRecord[Value]) (any, error) {
		out := make(map[string]any, e.Len())

		for name, c := range e.All() {
			v, err := Visit[any](c, n)
			if err != nil {
				return nil, err
			}

			out[name] = v
		}

		return out, nil
	}

	return Visit[any](v, n)
}

// FromNative converts plain Go data into a Value. It accepts strings, all
// integer and float kinds, slices, arrays and string-keyed maps, and
// existing Values. Integers outside the int32 range become [Float32].
// Anything else (including booleans and nil) is rejected with
// [pkg.ErrUnsupportedShape].
func FromNative(x any) (Value, error) {
	if v, ok := x.(Value); ok {
		return v, nil
	}

	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) (Value, error) {
	for rv.IsValid() && (rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer) {
		if rv.IsNil() {
			return nil, unconvertible("nil")
		}

		rv = rv.Elem()
	}

	if !rv.IsValid() {
		return nil, unconvertible("nil")
	}

	if v, ok := rv.Interface().(Value); ok {
		return v, nil
	}

	switch rv.Kind() {
	case reflect.String:
		return String(rv.String()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i < math.MinInt32 || i > math.MaxInt32 {
			return Float32(float32(i)), nil
		}

		return Int32(int32(i)), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt32 {
			return Float32(float32(u)), nil
		}

		return Int32(int32(u)), nil

	case reflect.Float32, reflect.Float64:
		return Float32(float32(rv.Float())), nil

	case reflect.Slice, reflect.Array:
		out := make(Sequence, rv.Len())

		for i := range rv.Len() {
			e, err := fromReflect(rv.Index(i))
			if err != nil {
				return nil, err
			}

			out[i] = e
		}

		return out, nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, unconvertible(rv.Type().String())
		}

		out := make(Mapping, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			e, err := fromReflect(iter.Value())
			if err != nil {
				return nil, err
			}

			out[iter.Key().String()] = e
		}

		return out, nil

	default:
		return nil, unconvertible(rv.Type().String())
	}
}

func unconvertible(typ string) error {
	return pkg.ErrUnsupportedShape.
		With(slog.String("type", typ)).
		Wrap(fmt.Errorf("cannot convert %s to a value", typ))
}
