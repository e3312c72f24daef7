package value

import (
	"encoding"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/robo-corg/prints/pkg"
)

// Decode failure kinds. Every error returned by [Decode] wraps
// [pkg.ErrToComponent] and exactly one of these.
var (
	ErrUnknownVariant = pkg.NewError("unknown variant `%s`, expected %s")
	ErrMissingField   = pkg.NewError("missing field `%s`")
	ErrInvalidField   = pkg.NewError("field `%s` failed constraint `%s`")
	ErrShapeMismatch  = pkg.NewError("invalid type")
	ErrNestedEntity   = pkg.NewError("entity record is not valid component data")
)

// DefaultTagName is the struct tag consulted for field names.
const DefaultTagName = "prints"

// Positional is implemented by structs that decode from a sequence, one
// element per exported field in declaration order.
type Positional interface{ Positional() }

// Transparent is implemented by single-field structs that decode from the
// bare value of their field.
type Transparent interface{ Transparent() }

// DecodeOption configures [Decode].
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	tag     string
	strict  bool
	partial bool
}

// Strict rejects mapping keys that do not correspond to a target field.
func Strict() DecodeOption {
	return func(c *decodeConfig) { c.strict = true }
}

// Partial lets struct fields go unset when the mapping has no key for them.
// Those fields keep whatever value target already holds.
func Partial() DecodeOption {
	return func(c *decodeConfig) { c.partial = true }
}

// WithTagName selects the struct tag used to name fields.
func WithTagName(tag string) DecodeOption {
	return func(c *decodeConfig) { c.tag = tag }
}

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	positionalType      = reflect.TypeFor[Positional]()
	transparentType     = reflect.TypeFor[Transparent]()
)

var validate = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// To decodes v into a new value of type T. See [Decode].
func To[T any](v Value, opts ...DecodeOption) (T, error) {
	var t T

	err := Decode(v, &t, opts...)

	return t, err
}

// Decode populates target, which must be a non-nil pointer, from v.
//
// Struct fields are matched by the "prints" tag, else by field name ignoring
// case. Every field must be present in the mapping unless it is a pointer,
// its tag carries the "omitempty" option, or [Partial] is given. Fields
// tagged `validate:"..."` are checked with go-playground/validator after
// decoding.
func Decode(v Value, target any, opts ...DecodeOption) error {
	cfg := decodeConfig{tag: DefaultTagName}
	for _, opt := range opts {
		opt(&cfg)
	}

	input, err := Visit[any](v, nativeVisitor{})
	if err != nil {
		return decodeError(err, target)
	}

	var md mapstructure.Metadata

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      target,
		TagName:     cfg.tag,
		ErrorUnused: cfg.strict,
		Metadata:    &md,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			numericHook,
			transparentHook(cfg.tag),
			positionalHook(cfg.tag),
			variantHook,
		),
	})
	if err != nil {
		return decodeError(err, target)
	}

	if err := dec.Decode(input); err != nil {
		return decodeError(err, target)
	}

	if !cfg.partial {
		if err := requireFields(reflect.TypeOf(target), md.Unset, cfg.tag); err != nil {
			return decodeError(err, target)
		}
	}

	if err := validateTarget(target); err != nil {
		return decodeError(err, target)
	}

	return nil
}

// decodeError classifies err into one of the decode failure kinds and wraps
// it in [pkg.ErrToComponent].
func decodeError(err error, target any) error {
	known := false

	for _, kind := range []error{
		ErrUnknownVariant,
		ErrMissingField,
		ErrInvalidField,
		ErrShapeMismatch,
		ErrNestedEntity,
	} {
		if errors.Is(err, kind) {
			known = true

			break
		}
	}

	if !known {
		err = ErrShapeMismatch.Wrap(err)
	}

	return pkg.ErrToComponent.
		With(slog.String("target", fmt.Sprintf("%T", target))).
		Wrap(err)
}

var numericHook mapstructure.DecodeHookFuncValue = func(
	from, to reflect.Value,
) (any, error) {
	switch from.Kind() {
	case reflect.Float32, reflect.Float64:
		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return nil, ErrShapeMismatch.Wrap(
				fmt.Errorf("floating point `%v`, expected %s", from.Float(), to.Type()),
			)
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := from.Int()

		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if to.OverflowInt(i) {
				return nil, ErrShapeMismatch.Wrap(
					fmt.Errorf("integer `%d` overflows %s", i, to.Type()),
				)
			}

		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if i < 0 || to.OverflowUint(uint64(i)) {
				return nil, ErrShapeMismatch.Wrap(
					fmt.Errorf("integer `%d` out of range for %s", i, to.Type()),
				)
			}
		}
	}

	return from.Interface(), nil
}

func implements(t, iface reflect.Type) bool {
	return t.Implements(iface) || reflect.PointerTo(t).Implements(iface)
}

// transparentHook feeds the whole input to the single field of a
// [Transparent] struct.
func transparentHook(tag string) mapstructure.DecodeHookFuncValue {
	return func(from, to reflect.Value) (any, error) {
		if to.Kind() != reflect.Struct || !implements(to.Type(), transparentType) {
			return from.Interface(), nil
		}

		fields := exportedFields(to.Type())
		if len(fields) != 1 {
			return nil, ErrShapeMismatch.Wrap(
				fmt.Errorf("transparent %s must have exactly one exported field", to.Type()),
			)
		}

		return map[string]any{fieldKey(fields[0], tag): from.Interface()}, nil
	}
}

// positionalHook turns a sequence into a mapping keyed by the field names of
// a [Positional] struct.
func positionalHook(tag string) mapstructure.DecodeHookFuncValue {
	return func(from, to reflect.Value) (any, error) {
		if to.Kind() != reflect.Struct || !implements(to.Type(), positionalType) {
			return from.Interface(), nil
		}

		if from.Kind() != reflect.Slice {
			return nil, ErrShapeMismatch.Wrap(
				fmt.Errorf("expected sequence for %s, found %s", to.Type(), from.Kind()),
			)
		}

		fields := exportedFields(to.Type())
		if from.Len() != len(fields) {
			return nil, ErrShapeMismatch.Wrap(
				fmt.Errorf("expected %d elements for %s, found %d",
					len(fields), to.Type(), from.Len()),
			)
		}

		m := make(map[string]any, len(fields))
		for i, f := range fields {
			m[fieldKey(f, tag)] = from.Index(i).Interface()
		}

		return m, nil
	}
}

// variantHook decodes variant names into types implementing
// [encoding.TextUnmarshaler].
var variantHook mapstructure.DecodeHookFuncValue = func(
	from, to reflect.Value,
) (any, error) {
	if !reflect.PointerTo(to.Type()).Implements(textUnmarshalerType) {
		return from.Interface(), nil
	}

	if from.Kind() != reflect.String {
		return nil, ErrShapeMismatch.Wrap(
			fmt.Errorf("expected variant name for %s, found %s", to.Type(), from.Kind()),
		)
	}

	out := reflect.New(to.Type())

	u, _ := out.Interface().(encoding.TextUnmarshaler)
	if err := u.UnmarshalText([]byte(from.String())); err != nil {
		return nil, err
	}

	return out.Elem().Interface(), nil
}

func exportedFields(t reflect.Type) []reflect.StructField {
	fields := make([]reflect.StructField, 0, t.NumField())

	for i := range t.NumField() {
		if f := t.Field(i); f.IsExported() {
			fields = append(fields, f)
		}
	}

	return fields
}

// fieldKey returns the mapping key that matches f.
func fieldKey(f reflect.StructField, tag string) string {
	name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
	if name == "" || name == "-" {
		return f.Name
	}

	return name
}

// requireFields reports the first unset field path that is not optional.
func requireFields(typ reflect.Type, unset []string, tag string) error {
	var missing []string

	for _, path := range unset {
		if !optionalField(typ, path, tag) {
			missing = append(missing, path)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	slices.Sort(missing)

	return ErrMissingField.Args(missing[0]).With(slog.Any("missing", missing))
}

// optionalField resolves a mapstructure field path such as "Inner.Y" or
// "Points[0].X" against typ and reports whether the field may be absent.
func optionalField(typ reflect.Type, path, tag string) bool {
	segs := strings.Split(path, ".")

	for i, seg := range segs {
		name, index, _ := strings.Cut(seg, "[")

		if name != "" {
			typ = deref(typ)
			if typ.Kind() != reflect.Struct {
				return false
			}

			f, ok := fieldNamed(typ, name, tag)
			if !ok || !f.IsExported() {
				return true
			}

			if i == len(segs)-1 {
				key, opts, _ := strings.Cut(f.Tag.Get(tag), ",")

				return key == "-" || f.Type.Kind() == reflect.Pointer ||
					slices.Contains(strings.Split(opts, ","), "omitempty")
			}

			typ = f.Type
		}

		for range strings.Count(index, "]") {
			typ = deref(typ)

			switch typ.Kind() {
			case reflect.Slice, reflect.Array, reflect.Map:
				typ = typ.Elem()
			default:
				return false
			}
		}
	}

	return false
}

func fieldNamed(typ reflect.Type, name, tag string) (reflect.StructField, bool) {
	for i := range typ.NumField() {
		f := typ.Field(i)

		key, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if key == "" {
			key = f.Name
		}

		if key == name {
			return f, true
		}
	}

	return reflect.StructField{}, false
}

func deref(typ reflect.Type) reflect.Type {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	return typ
}

func validateTarget(target any) error {
	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := validate().Struct(rv.Interface())
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ErrShapeMismatch.Wrap(err)
	}

	// Report the first violation; the rest are attached for logging.
	attrs := make([]slog.Attr, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		attrs = append(attrs, slog.String(fe.Namespace(), fe.Tag()))
	}

	first := fieldErrs[0]
	if first.Tag() == "required" {
		return ErrMissingField.Args(first.Namespace()).With(attrs...)
	}

	return ErrInvalidField.Args(first.Namespace(), first.Tag()).With(attrs...)
}
