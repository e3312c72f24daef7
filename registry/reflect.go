package registry

import (
	"log/slog"
	"maps"
	"reflect"
	"slices"

	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/value"
)

// reflectComponent builds a typ from v, starting from the component of
// that type already on target, or from the zero value. v must be a mapping
// of field names or a sequence of positional fields, and every field value
// must be a scalar.
func reflectComponent(typ reflect.Type, target Target, v value.Value) (any, error) {
	if typ.Kind() != reflect.Struct {
		return nil, unsupported(typ, v, "")
	}

	ptr := reflect.New(typ)

	if existing, ok := target.Get(typ); ok {
		ptr.Elem().Set(reflect.ValueOf(existing))
	}

	switch v := v.(type) {
	case value.Mapping:
		for _, k := range slices.Sorted(maps.Keys(v)) {
			if !scalar(v[k]) {
				return nil, unsupported(typ, v[k], k)
			}
		}

		if err := value.Decode(v, ptr.Interface(), value.Strict(), value.Partial()); err != nil {
			return nil, err
		}

	case value.Sequence:
		fields := exported(typ)
		if len(v) > len(fields) {
			return nil, pkg.ErrToComponent.Wrap(value.ErrShapeMismatch).With(
				slog.String("target", typ.String()),
				slog.Int("fields", len(fields)),
				slog.Int("elements", len(v)),
			)
		}

		for i, e := range v {
			if !scalar(e) {
				return nil, unsupported(typ, e, fields[i].Name)
			}

			field := ptr.Elem().FieldByIndex(fields[i].Index)
			if err := value.Decode(e, field.Addr().Interface()); err != nil {
				return nil, pkg.WrapError(err).With(slog.String("field", fields[i].Name))
			}
		}

	default:
		return nil, unsupported(typ, v, "")
	}

	return ptr.Elem().Interface(), nil
}

func scalar(v value.Value) bool {
	switch v.Kind() {
	case value.KindString, value.KindInt32, value.KindFloat32:
		return true
	}

	return false
}

func exported(typ reflect.Type) []reflect.StructField {
	var fields []reflect.StructField

	for i := range typ.NumField() {
		if f := typ.Field(i); f.IsExported() && !f.Anonymous {
			fields = append(fields, f)
		}
	}

	return fields
}

func unsupported(typ reflect.Type, v value.Value, field string) error {
	attrs := []slog.Attr{
		slog.String("target", typ.String()),
		slog.String("shape", v.TypeName()),
	}

	if field != "" {
		attrs = append(attrs, slog.String("field", field))
	}

	return pkg.ErrUnsupportedShape.With(attrs...)
}
