package env

import (
	"context"
	"log/slog"
	"maps"
	"math"
	"math/big"
	"slices"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/value"
)

// CtyEnv is an environment of go-cty functions.
type CtyEnv struct {
	funcs map[string]function.Function
}

// Cty returns an environment of the given go-cty functions. A nil map
// selects [CtyStdlib].
func Cty(funcs map[string]function.Function) *CtyEnv {
	if funcs == nil {
		funcs = CtyStdlib()
	}

	return &CtyEnv{funcs: maps.Clone(funcs)}
}

// CtyStdlib returns a selection of the go-cty standard library.
func CtyStdlib() map[string]function.Function {
	return map[string]function.Function{
		"abs":       stdlib.AbsoluteFunc,
		"ceil":      stdlib.CeilFunc,
		"floor":     stdlib.FloorFunc,
		"format":    stdlib.FormatFunc,
		"join":      stdlib.JoinFunc,
		"length":    stdlib.LengthFunc,
		"lower":     stdlib.LowerFunc,
		"max":       stdlib.MaxFunc,
		"min":       stdlib.MinFunc,
		"split":     stdlib.SplitFunc,
		"strlen":    stdlib.StrlenFunc,
		"substr":    stdlib.SubstrFunc,
		"trimspace": stdlib.TrimSpaceFunc,
		"upper":     stdlib.UpperFunc,
	}
}

// Names returns the defined function names in ascending order.
func (c *CtyEnv) Names() []string {
	return slices.Sorted(maps.Keys(c.funcs))
}

// EvalFunc implements [lang.Environment].
func (c *CtyEnv) EvalFunc(
	_ context.Context,
	name string,
	args []value.Value,
) (value.Value, error) {
	fn, ok := c.funcs[name]
	if !ok {
		return nil, undefined(name, c.Names())
	}

	in, err := ctyArgs(fn, args)
	if err != nil {
		return nil, pkg.ErrInvalidArgument.Wrap(err).With(slog.String("function", name))
	}

	out, err := fn.Call(in)
	if err != nil {
		return nil, pkg.ErrInvalidArgument.Wrap(err).With(slog.String("function", name))
	}

	v, err := fromCty(out)
	if err != nil {
		return nil, pkg.WrapError(err).With(slog.String("function", name))
	}

	return v, nil
}

// ctyArgs converts args to the declared parameter types of fn, so sequences
// reach list- and set-typed parameters as lists and sets.
func ctyArgs(fn function.Function, args []value.Value) ([]cty.Value, error) {
	params := fn.Params()
	variadic := fn.VarParam()

	in := make([]cty.Value, len(args))

	for i, a := range args {
		in[i] = toCty(a)

		var param *function.Parameter

		switch {
		case i < len(params):
			param = &params[i]
		case variadic != nil:
			param = variadic
		default:
			continue
		}

		v, err := convert.Convert(in[i], param.Type)
		if err != nil {
			return nil, function.NewArgError(i, err)
		}

		in[i] = v
	}

	return in, nil
}

func toCty(v value.Value) cty.Value {
	switch v := v.(type) {
	case value.String:
		return cty.StringVal(string(v))

	case value.Int32:
		return cty.NumberIntVal(int64(v))

	case value.Float32:
		return cty.NumberFloatVal(float64(v))

	case value.Sequence:
		if len(v) == 0 {
			return cty.EmptyTupleVal
		}

		elems := make([]cty.Value, len(v))
		for i, e := range v {
			elems[i] = toCty(e)
		}

		return cty.TupleVal(elems)

	case value.Mapping:
		if len(v) == 0 {
			return cty.EmptyObjectVal
		}

		attrs := make(map[string]cty.Value, len(v))
		for k, e := range v {
			attrs[k] = toCty(e)
		}

		return cty.ObjectVal(attrs)

	case value.Entity:
		attrs := make(map[string]cty.Value, v.Record().Len())
		for k, e := range v.Record().All() {
			attrs[k] = toCty(e)
		}

		return cty.ObjectVal(attrs)
	}

	return cty.NilVal
}

func fromCty(v cty.Value) (value.Value, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, pkg.ErrUnsupportedShape.With(slog.String("type", "null"))
	}

	ty := v.Type()

	switch {
	case ty.Equals(cty.String):
		return value.String(v.AsString()), nil

	case ty.Equals(cty.Number):
		bf := v.AsBigFloat()

		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact && i >= math.MinInt32 && i <= math.MaxInt32 {
				return value.Int32(i), nil
			}
		}

		f, _ := bf.Float64()

		return value.Float32(f), nil

	case ty.IsListType(), ty.IsTupleType(), ty.IsSetType():
		seq := value.Sequence{}

		for it := v.ElementIterator(); it.Next(); {
			_, e := it.Element()

			ev, err := fromCty(e)
			if err != nil {
				return nil, err
			}

			seq = append(seq, ev)
		}

		return seq, nil

	case ty.IsMapType(), ty.IsObjectType():
		m := value.Mapping{}

		for it := v.ElementIterator(); it.Next(); {
			k, e := it.Element()

			ev, err := fromCty(e)
			if err != nil {
				return nil, err
			}

			m[k.AsString()] = ev
		}

		return m, nil
	}

	return nil, pkg.ErrUnsupportedShape.With(slog.String("type", ty.FriendlyName()))
}
