package env

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"go.starlark.net/starlark"

	"github.com/robo-corg/prints/log"
	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/value"
)

// StarlarkEnv exposes the top-level callables of a Starlark script. Names
// beginning with an underscore are private to the script.
type StarlarkEnv struct {
	name   string
	funcs  map[string]starlark.Callable
	logger log.Logger
}

// Starlark executes src and returns an environment of the functions it
// defines. filename is used in error messages and stack traces. Output of
// the script's print calls is logged at debug level.
func Starlark(ctx context.Context, filename string, src []byte) (*StarlarkEnv, error) {
	s := &StarlarkEnv{
		name:   filename,
		funcs:  make(map[string]starlark.Callable),
		logger: log.FromContext(ctx),
	}

	thread := s.thread(ctx, "load")

	globals, err := starlark.ExecFile(thread, filename, src, nil)
	if err != nil {
		return nil, pkg.ErrLoad.Wrap(err).With(slog.String("path", filename))
	}

	globals.Freeze()

	for name, v := range globals {
		if fn, ok := v.(starlark.Callable); ok && !strings.HasPrefix(name, "_") {
			s.funcs[name] = fn
		}
	}

	s.logger.DebugContext(ctx, "starlark script loaded",
		slog.String("path", filename),
		slog.Int("functions", len(s.funcs)))

	return s, nil
}

// LoadStarlark reads and executes the Starlark script at path.
func LoadStarlark(ctx context.Context, path string) (*StarlarkEnv, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, pkg.ErrLoad.Wrap(err).With(slog.String("path", path))
	}

	return Starlark(ctx, path, src)
}

// Names returns the defined function names in ascending order.
func (s *StarlarkEnv) Names() []string {
	return slices.Sorted(maps.Keys(s.funcs))
}

// EvalFunc implements [lang.Environment]. Each call runs on its own thread,
// which is cancelled when ctx is done.
func (s *StarlarkEnv) EvalFunc(
	ctx context.Context,
	name string,
	args []value.Value,
) (value.Value, error) {
	fn, ok := s.funcs[name]
	if !ok {
		return nil, undefined(name, s.Names())
	}

	in := make(starlark.Tuple, len(args))

	for i, a := range args {
		sv, err := toStarlark(a)
		if err != nil {
			return nil, err
		}

		in[i] = sv
	}

	thread := s.thread(ctx, name)

	stop := context.AfterFunc(ctx, func() { thread.Cancel(context.Cause(ctx).Error()) })
	defer stop()

	out, err := starlark.Call(thread, fn, in, nil)
	if err != nil {
		return nil, pkg.ErrInvalidArgument.Wrap(err).With(
			slog.String("function", name),
			slog.String("script", s.name),
		)
	}

	native, err := fromStarlark(out)
	if err != nil {
		return nil, pkg.WrapError(err).With(slog.String("function", name))
	}

	return value.FromNative(native)
}

func (s *StarlarkEnv) thread(ctx context.Context, name string) *starlark.Thread {
	return &starlark.Thread{
		Name: s.name + ":" + name,
		Print: func(_ *starlark.Thread, msg string) {
			s.logger.DebugContext(ctx, msg, slog.String("script", s.name))
		},
	}
}

func toStarlark(v value.Value) (starlark.Value, error) {
	switch v := v.(type) {
	case value.String:
		return starlark.String(v), nil

	case value.Int32:
		return starlark.MakeInt64(int64(v)), nil

	case value.Float32:
		return starlark.Float(v), nil

	case value.Sequence:
		list := make([]starlark.Value, len(v))

		for i, e := range v {
			sv, err := toStarlark(e)
			if err != nil {
				return nil, err
			}

			list[i] = sv
		}

		return starlark.NewList(list), nil

	case value.Mapping:
		dict := starlark.NewDict(len(v))

		for _, k := range slices.Sorted(maps.Keys(v)) {
			sv, err := toStarlark(v[k])
			if err != nil {
				return nil, err
			}

			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, pkg.ErrUnsupportedShape.Wrap(err)
			}
		}

		return dict, nil
	}

	return nil, pkg.ErrUnsupportedShape.With(slog.String("type", v.TypeName()))
}

// fromStarlark converts a Starlark result into plain Go data accepted by
// [value.FromNative].
func fromStarlark(v starlark.Value) (any, error) {
	switch v := v.(type) {
	case starlark.String:
		return string(v), nil

	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return i, nil
		}

		f, _ := starlark.AsFloat(v)

		return f, nil

	case starlark.Float:
		return float64(v), nil

	case starlark.Indexable:
		out := make([]any, v.Len())

		for i := range v.Len() {
			e, err := fromStarlark(v.Index(i))
			if err != nil {
				return nil, err
			}

			out[i] = e
		}

		return out, nil

	case *starlark.Dict:
		out := make(map[string]any, v.Len())

		for _, item := range v.Items() {
			k, ok := item[0].(starlark.String)
			if !ok {
				return nil, pkg.ErrUnsupportedShape.With(
					slog.String("type", "dict key "+item[0].Type()),
				)
			}

			e, err := fromStarlark(item[1])
			if err != nil {
				return nil, err
			}

			out[string(k)] = e
		}

		return out, nil
	}

	return nil, pkg.ErrUnsupportedShape.With(slog.String("type", v.Type()))
}
