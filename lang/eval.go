package lang

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/robo-corg/prints/log"
	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/value"
)

// Environment resolves function calls during evaluation.
//
// EvalFunc returns an error wrapping [pkg.ErrUndefinedFunction] when name is
// not defined.
type Environment interface {
	EvalFunc(ctx context.Context, name string, args []value.Value) (value.Value, error)
}

// EnvironmentFunc adapts an ordinary function to [Environment].
type EnvironmentFunc func(ctx context.Context, name string, args []value.Value) (value.Value, error)

func (f EnvironmentFunc) EvalFunc(
	ctx context.Context,
	name string,
	args []value.Value,
) (value.Value, error) {
	return f(ctx, name, args)
}

// Context binds an [Environment] to evaluation options. It holds no mutable
// state and may be shared.
type Context struct {
	env      Environment
	maxDepth int
	logger   log.Logger
}

// NewContext returns an evaluation context for env. A nil env defines no
// functions.
func NewContext(env Environment, opts ...Option) *Context {
	o := makeOptions(opts...)

	return &Context{env: env, maxDepth: o.maxDepth, logger: o.logger}
}

// Environment returns the environment bound to c.
func (c *Context) Environment() Environment { return c.env }

// MaxDepth returns the evaluation depth limit.
func (c *Context) MaxDepth() int { return c.maxDepth }

// Eval evaluates e. Children are evaluated in order and the first error
// stops evaluation.
func Eval(ctx context.Context, e Expr, c *Context) (value.Value, error) {
	if c == nil {
		c = NewContext(nil)
	}

	return c.eval(ctx, e, 1)
}

// EvalToEntity evaluates e, which must evaluate to an entity, and returns
// its component record.
func EvalToEntity(
	ctx context.Context,
	e Expr,
	c *Context,
) (value.EntityRecord[value.Value], error) {
	v, err := Eval(ctx, e, c)
	if err != nil {
		return value.EntityRecord[value.Value]{}, err
	}

	ent, ok := v.(value.Entity)
	if !ok {
		return value.EntityRecord[value.Value]{},
			pkg.ErrUnexpectedType.Args(v.TypeName(), value.KindEntity.String())
	}

	return ent.Record(), nil
}

func (c *Context) eval(ctx context.Context, e Expr, depth int) (value.Value, error) {
	if depth > c.maxDepth {
		return nil, pkg.ErrMaxDepthExceeded.With(slog.Int("max_depth", c.maxDepth))
	}

	switch e := e.(type) {
	case Constant:
		return e.Value.Clone(), nil

	case KeyMap:
		m := make(value.Mapping, len(e))

		for _, k := range slices.Sorted(maps.Keys(e)) {
			v, err := c.eval(ctx, e[k], depth+1)
			if err != nil {
				return nil, err
			}

			m[k] = v
		}

		return m, nil

	case Vec:
		s := make(value.Sequence, len(e))

		for i, child := range e {
			v, err := c.eval(ctx, child, depth+1)
			if err != nil {
				return nil, err
			}

			s[i] = v
		}

		return s, nil

	case Entity:
		rec, err := value.TryMapRecord(e.Record(), func(_ string, child Expr) (value.Value, error) {
			return c.eval(ctx, child, depth+1)
		})
		if err != nil {
			return nil, err
		}

		return value.Entity(rec), nil

	case FuncCall:
		return c.call(ctx, e, depth)
	}

	return nil, pkg.ErrUnexpectedType.Args(fmt.Sprintf("%T", e), "expression")
}

func (c *Context) call(ctx context.Context, f FuncCall, depth int) (value.Value, error) {
	args := make([]value.Value, len(f.Args))

	for i, arg := range f.Args {
		v, err := c.eval(ctx, arg, depth+1)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	if c.env == nil {
		return nil, pkg.ErrUndefinedFunction.Args(f.Name).With(
			slog.String("position", f.Pos.String()),
		)
	}

	v, err := c.env.EvalFunc(ctx, f.Name, args)
	if err != nil {
		c.logger.TraceContext(ctx, "function call failed",
			slog.String("function", f.Name),
			slog.String("position", f.Pos.String()),
			slog.Any("error", err))

		return nil, pkg.WrapError(err).With(
			slog.String("function", f.Name),
			slog.String("position", f.Pos.String()),
		)
	}

	if v == nil {
		return nil, pkg.ErrUnexpectedType.Args("nil", "value").With(
			slog.String("function", f.Name),
		)
	}

	c.logger.TraceContext(ctx, "function called",
		slog.String("function", f.Name),
		slog.Int("args", len(args)),
		slog.String("result", v.TypeName()))

	return v, nil
}
