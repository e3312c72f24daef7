package env

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"sync"

	"github.com/ardnew/mung"
	"github.com/expr-lang/expr"
	"github.com/google/uuid"

	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/value"
)

// BuiltinOption configures [Builtins].
type BuiltinOption func(*builtins)

type builtins struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// WithRand sets the random source used by rand. The default source is
// seeded randomly.
func WithRand(r *rand.Rand) BuiltinOption {
	return func(b *builtins) {
		b.rand = r
	}
}

// Builtins returns an environment defining the standard functions:
//
//	concat(a, b, ...)      join strings, or concatenate sequences
//	expr(source[, env])    evaluate an expr-lang expression
//	prefix(list, item...)  prepend items to an OS path list, removing duplicates
//	rand(lo, hi)           random i32 in [lo, hi], or f32 in [lo, hi)
//	uuid()                 random UUID string
func Builtins(opts ...BuiltinOption) *Simple {
	b := &builtins{}

	for _, opt := range opts {
		opt(b)
	}

	if b.rand == nil {
		b.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return NewSimple().
		Register("concat", concat).
		Register("expr", evalExpr).
		Register("prefix", prefix).
		Register("rand", b.random).
		Register("uuid", newUUID)
}

func concat(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity("concat", args, 1, -1); err != nil {
		return nil, err
	}

	switch args[0].(type) {
	case value.String:
		var s string

		for i := range args {
			part, err := stringArg("concat", args, i)
			if err != nil {
				return nil, err
			}

			s += part
		}

		return value.String(s), nil

	case value.Sequence:
		var out value.Sequence

		for i, a := range args {
			seq, ok := a.(value.Sequence)
			if !ok {
				return nil, argError("concat", i, "expected vec, got "+a.TypeName())
			}

			for _, v := range seq {
				out = append(out, v.Clone())
			}
		}

		return out, nil
	}

	return nil, argError("concat", 0, "expected string or vec, got "+args[0].TypeName())
}

func evalExpr(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity("expr", args, 1, 2); err != nil {
		return nil, err
	}

	source, err := stringArg("expr", args, 0)
	if err != nil {
		return nil, err
	}

	env := map[string]any{}

	if len(args) == 2 {
		m, ok := args[1].(value.Mapping)
		if !ok {
			return nil, argError("expr", 1, "expected map, got "+args[1].TypeName())
		}

		n, err := value.Native(m)
		if err != nil {
			return nil, err
		}

		env = n.(map[string]any)
	}

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, pkg.ErrInvalidArgument.Wrap(err).With(slog.String("source", source))
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, pkg.ErrInvalidArgument.Wrap(err).With(slog.String("source", source))
	}

	return value.FromNative(out)
}

func prefix(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity("prefix", args, 1, -1); err != nil {
		return nil, err
	}

	items := make([]string, len(args))

	for i := range args {
		s, err := stringArg("prefix", args, i)
		if err != nil {
			return nil, err
		}

		items[i] = s
	}

	return value.String(mung.Make(
		mung.WithSubjectItems(items[0]),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(items[1:]...),
	).String()), nil
}

func (b *builtins) random(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity("rand", args, 2, 2); err != nil {
		return nil, err
	}

	lo, loInt, err := numberArg("rand", args, 0)
	if err != nil {
		return nil, err
	}

	hi, hiInt, err := numberArg("rand", args, 1)
	if err != nil {
		return nil, err
	}

	if lo > hi {
		return nil, argError("rand", 1, "upper bound is less than lower bound")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if loInt && hiInt {
		return value.Int32(int64(lo) + b.rand.Int64N(int64(hi)-int64(lo)+1)), nil
	}

	return value.Float32(uniform32(lo, hi, b.rand.Float64())), nil
}

// uniform32 maps r in [0, 1) onto [lo, hi) in float32 precision.
func uniform32(lo, hi, r float64) float32 {
	f := float32(lo + r*(hi-lo))
	if f >= float32(hi) && lo < hi {
		f = math.Nextafter32(float32(hi), float32(lo))
	}

	return f
}

func newUUID(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity("uuid", args, 0, 0); err != nil {
		return nil, err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, pkg.ErrInvalidArgument.Wrap(err)
	}

	return value.String(id.String()), nil
}
