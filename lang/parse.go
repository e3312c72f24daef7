package lang

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/robo-corg/prints/pkg"
	"github.com/robo-corg/prints/value"
)

// EntityKey is the mapping key that opens a nested entity slot.
const EntityKey = "$entity"

// callPrefix marks a mapping key as a function name.
const callPrefix = "$"

// Shape is one of the expression forms a [Node] may be read as.
type Shape int

const (
	ShapeKeyMap Shape = iota
	ShapeString
	ShapeInt32
	ShapeFloat32
	ShapeSequence
	ShapeEntity
	ShapeFuncCall
)

// shapeOrder is the order in which shapes are tried. The first shape that
// accepts a node's outer form wins.
var shapeOrder = [...]Shape{
	ShapeKeyMap,
	ShapeString,
	ShapeInt32,
	ShapeFloat32,
	ShapeSequence,
	ShapeEntity,
	ShapeFuncCall,
}

var shapeName = map[Shape]string{
	ShapeKeyMap:   "map",
	ShapeString:   "string",
	ShapeInt32:    "i32",
	ShapeFloat32:  "f32",
	ShapeSequence: "vec",
	ShapeEntity:   "entity",
	ShapeFuncCall: "call",
}

func (s Shape) String() string {
	if name, ok := shapeName[s]; ok {
		return name
	}

	return "Shape(" + strconv.Itoa(int(s)) + ")"
}

// ShapeOrder returns the shapes in the order the parser tries them.
func ShapeOrder() []Shape {
	return shapeOrder[:]
}

// ParseNode converts n into an expression. n is not an entity slot, so a
// plain mapping becomes a [KeyMap].
func ParseNode(ctx context.Context, n *Node, opts ...Option) (Expr, error) {
	b := &builder{opts: makeOptions(opts...)}

	e, err := b.build(n, false, 1)
	if err != nil {
		return nil, err
	}

	b.opts.logger.TraceContext(ctx, "parsed node",
		slog.String("position", n.Pos.String()),
		slog.String("expr", e.String()))

	return e, nil
}

// ParseEntity converts the document root n into an entity expression.
func ParseEntity(ctx context.Context, n *Node, opts ...Option) (Entity, error) {
	b := &builder{opts: makeOptions(opts...)}

	if n == nil {
		return Entity{}, &ParseError{Msg: "empty document", Source: b.opts.source}
	}

	if n.Kind != NodeMapping {
		return Entity{}, parseErrorAt(b.opts, n,
			"blueprint root must be a mapping of components", nil)
	}

	e, err := b.build(n, true, 1)
	if err != nil {
		return Entity{}, err
	}

	ent := e.(Entity)

	b.opts.logger.TraceContext(ctx, "parsed entity",
		slog.String("position", n.Pos.String()),
		slog.Int("components", ent.Record().Len()))

	return ent, nil
}

type builder struct {
	opts options
}

// build reads n as the first shape in shapeOrder that accepts it. slot
// reports whether n occupies an entity slot.
func (b *builder) build(n *Node, slot bool, depth int) (Expr, error) {
	if depth > b.opts.maxDepth {
		return nil, pkg.ErrMaxDepthExceeded.Wrap(
			parseErrorAt(b.opts, n, "nesting too deep", nil),
		).With(slog.Int("max_depth", b.opts.maxDepth))
	}

	if n.Kind == NodeMapping {
		if err := b.checkKeys(n); err != nil {
			return nil, err
		}
	}

	for _, s := range shapeOrder {
		e, ok, err := b.try(s, n, slot, depth)
		if err != nil {
			return nil, err
		}

		if ok {
			return e, nil
		}
	}

	return nil, parseErrorAt(b.opts, n, "no expression matches "+n.Kind.String(), nil)
}

func (b *builder) try(s Shape, n *Node, slot bool, depth int) (Expr, bool, error) {
	switch s {
	case ShapeKeyMap:
		return b.keyMap(n, slot, depth)
	case ShapeString:
		if n.Kind == NodeScalar && n.Scalar == ScalarString {
			return Constant{Value: value.String(n.Text)}, true, nil
		}
	case ShapeInt32:
		if n.Kind == NodeScalar && n.Scalar == ScalarInt {
			if i, err := strconv.ParseInt(n.Text, 10, 32); err == nil {
				return Constant{Value: value.Int32(i)}, true, nil
			}
		}
	case ShapeFloat32:
		return b.float32(n)
	case ShapeSequence:
		return b.sequence(n, depth)
	case ShapeEntity:
		return b.entity(n, slot, depth)
	case ShapeFuncCall:
		return b.funcCall(n, depth)
	}

	return nil, false, nil
}

func (b *builder) checkKeys(n *Node) error {
	seen := make(map[string]struct{}, len(n.Fields))

	for _, f := range n.Fields {
		if _, dup := seen[f.Key]; dup {
			return &ParseError{
				Pos:      f.Pos,
				Fragment: f.Key,
				Msg:      "duplicate key",
				Source:   b.opts.source,
			}
		}

		seen[f.Key] = struct{}{}
	}

	return nil
}

func (b *builder) keyMap(n *Node, slot bool, depth int) (Expr, bool, error) {
	if slot || n.Kind != NodeMapping {
		return nil, false, nil
	}

	for _, f := range n.Fields {
		if strings.HasPrefix(f.Key, callPrefix) {
			return nil, false, nil
		}
	}

	m := make(KeyMap, len(n.Fields))

	for _, f := range n.Fields {
		e, err := b.build(f.Value, false, depth+1)
		if err != nil {
			return nil, false, err
		}

		m[f.Key] = e
	}

	return m, true, nil
}

func (b *builder) float32(n *Node) (Expr, bool, error) {
	if n.Kind != NodeScalar || (n.Scalar != ScalarInt && n.Scalar != ScalarFloat) {
		return nil, false, nil
	}

	f, err := strconv.ParseFloat(n.Text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, false, parseErrorAt(b.opts, n, "invalid number", err)
	}

	if math.Abs(f) > math.MaxFloat32 {
		return nil, false, parseErrorAt(b.opts, n, "number out of f32 range", nil)
	}

	return Constant{Value: value.Float32(f)}, true, nil
}

func (b *builder) sequence(n *Node, depth int) (Expr, bool, error) {
	if n.Kind != NodeSequence {
		return nil, false, nil
	}

	v, err := b.items(n.Items, depth)
	if err != nil {
		return nil, false, err
	}

	return v, true, nil
}

func (b *builder) items(nodes []*Node, depth int) (Vec, error) {
	v := make(Vec, len(nodes))

	for i, item := range nodes {
		e, err := b.build(item, false, depth+1)
		if err != nil {
			return nil, err
		}

		v[i] = e
	}

	return v, nil
}

func (b *builder) entity(n *Node, slot bool, depth int) (Expr, bool, error) {
	if n.Kind != NodeMapping {
		return nil, false, nil
	}

	if !slot {
		if len(n.Fields) != 1 || n.Fields[0].Key != EntityKey {
			return nil, false, nil
		}

		inner := n.Fields[0].Value
		if inner.Kind != NodeMapping {
			return nil, false, nil
		}

		if depth+1 > b.opts.maxDepth {
			return nil, false, pkg.ErrMaxDepthExceeded.Wrap(
				parseErrorAt(b.opts, inner, "nesting too deep", nil),
			).With(slog.Int("max_depth", b.opts.maxDepth))
		}

		if err := b.checkKeys(inner); err != nil {
			return nil, false, err
		}

		n, depth = inner, depth+1
	}

	var rec value.EntityRecord[Expr]

	for _, f := range n.Fields {
		if f.Key == "" || strings.HasPrefix(f.Key, callPrefix) {
			return nil, false, &ParseError{
				Pos:      f.Pos,
				Fragment: f.Key,
				Msg:      "invalid component name",
				Source:   b.opts.source,
			}
		}

		e, err := b.build(f.Value, false, depth+1)
		if err != nil {
			return nil, false, err
		}

		rec.Insert(f.Key, e)
	}

	return Entity(rec), true, nil
}

func (b *builder) funcCall(n *Node, depth int) (Expr, bool, error) {
	if n.Kind != NodeMapping || len(n.Fields) != 1 {
		return nil, false, nil
	}

	f := n.Fields[0]
	if len(f.Key) <= len(callPrefix) || !strings.HasPrefix(f.Key, callPrefix) {
		return nil, false, nil
	}

	call := FuncCall{Name: f.Key[len(callPrefix):], Pos: f.Pos}

	switch {
	case f.Value.Kind == NodeScalar && f.Value.Scalar == ScalarNull:
	case f.Value.Kind == NodeSequence:
		args, err := b.items(f.Value.Items, depth)
		if err != nil {
			return nil, false, err
		}

		call.Args = args
	default:
		return nil, false, parseErrorAt(b.opts, f.Value,
			"arguments of `"+call.Name+"` must be a sequence or null", nil)
	}

	return call, true, nil
}
