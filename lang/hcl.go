package lang

import (
	"cmp"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// decodeHCL builds a node tree from an HCL native syntax document.
//
// Attributes and unlabelled blocks become mapping keys in source order.
// Function call syntax becomes a call node, so rand(1, 10) is read exactly
// like {"$rand": [1, 10]}.
func decodeHCL(filename string, src []byte) (*Node, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, hclDiagError(filename, src, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, &ParseError{Pos: Position{File: filename}, Msg: "unexpected HCL body"}
	}

	h := hclReader{filename: filename, src: src}

	return h.body(body, hclPos(filename, body.SrcRange.Start))
}

type hclReader struct {
	filename string
	src      []byte
}

func (h hclReader) errorf(r hcl.Range, format string, args ...any) *ParseError {
	return &ParseError{
		Pos:      hclPos(h.filename, r.Start),
		Fragment: h.text(r),
		Msg:      fmt.Sprintf(format, args...),
		Source:   h.src,
	}
}

func (h hclReader) text(r hcl.Range) string {
	if r.Start.Byte < 0 || r.End.Byte > len(h.src) || r.Start.Byte >= r.End.Byte {
		return ""
	}

	s := string(h.src[r.Start.Byte:r.End.Byte])
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + "..."
	}

	return s
}

func (h hclReader) body(b *hclsyntax.Body, pos Position) (*Node, error) {
	type entry struct {
		start int
		field func() (Field, error)
	}

	entries := make([]entry, 0, len(b.Attributes)+len(b.Blocks))

	for _, attr := range b.Attributes {
		entries = append(entries, entry{
			start: attr.SrcRange.Start.Byte,
			field: func() (Field, error) {
				val, err := h.expr(attr.Expr)
				if err != nil {
					return Field{}, err
				}

				return Field{
					Key:   attr.Name,
					Pos:   hclPos(h.filename, attr.NameRange.Start),
					Value: val,
				}, nil
			},
		})
	}

	for _, block := range b.Blocks {
		entries = append(entries, entry{
			start: block.TypeRange.Start.Byte,
			field: func() (Field, error) {
				if len(block.Labels) > 0 {
					return Field{}, h.errorf(block.LabelRanges[0],
						"block labels are not supported")
				}

				val, err := h.body(block.Body, hclPos(h.filename, block.OpenBraceRange.Start))
				if err != nil {
					return Field{}, err
				}

				return Field{
					Key:   block.Type,
					Pos:   hclPos(h.filename, block.TypeRange.Start),
					Value: val,
				}, nil
			},
		})
	}

	slices.SortFunc(entries, func(a, b entry) int { return cmp.Compare(a.start, b.start) })

	fields := make([]Field, 0, len(entries))

	for _, e := range entries {
		f, err := e.field()
		if err != nil {
			return nil, err
		}

		fields = append(fields, f)
	}

	return MappingNode(pos, fields...), nil
}

func (h hclReader) expr(expr hclsyntax.Expression) (*Node, error) {
	r := expr.Range()
	pos := hclPos(h.filename, r.Start)

	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		return h.literal(e.Val, r, false)

	case *hclsyntax.TemplateExpr:
		if !literalTemplate(e) {
			return nil, h.errorf(r, "string interpolation is not supported")
		}

		v, diags := e.Value(nil)
		if diags.HasErrors() {
			return nil, h.errorf(r, "%s", diags.Error())
		}

		return ScalarNode(pos, ScalarString, v.AsString()), nil

	case *hclsyntax.TupleConsExpr:
		items := make([]*Node, 0, len(e.Exprs))

		for _, x := range e.Exprs {
			item, err := h.expr(x)
			if err != nil {
				return nil, err
			}

			items = append(items, item)
		}

		return SequenceNode(pos, items...), nil

	case *hclsyntax.ObjectConsExpr:
		fields := make([]Field, 0, len(e.Items))

		for _, item := range e.Items {
			key, err := h.objectKey(item.KeyExpr)
			if err != nil {
				return nil, err
			}

			val, err := h.expr(item.ValueExpr)
			if err != nil {
				return nil, err
			}

			fields = append(fields, Field{
				Key:   key,
				Pos:   hclPos(h.filename, item.KeyExpr.Range().Start),
				Value: val,
			})
		}

		return MappingNode(pos, fields...), nil

	case *hclsyntax.FunctionCallExpr:
		if e.ExpandFinal {
			return nil, h.errorf(r, "argument expansion is not supported")
		}

		args := make([]*Node, 0, len(e.Args))

		for _, x := range e.Args {
			arg, err := h.expr(x)
			if err != nil {
				return nil, err
			}

			args = append(args, arg)
		}

		return MappingNode(pos, Field{
			Key:   callPrefix + e.Name,
			Pos:   hclPos(h.filename, e.NameRange.Start),
			Value: SequenceNode(hclPos(h.filename, e.OpenParenRange.Start), args...),
		}), nil

	case *hclsyntax.UnaryOpExpr:
		if lit, ok := e.Val.(*hclsyntax.LiteralValueExpr); ok &&
			e.Op == hclsyntax.OpNegate && lit.Val.Type().Equals(cty.Number) {
			return h.literal(lit.Val, r, true)
		}

		return nil, h.errorf(r, "operators are not supported")

	case *hclsyntax.ParenthesesExpr:
		return h.expr(e.Expression)

	case *hclsyntax.ScopeTraversalExpr:
		return nil, h.errorf(r, "variable references are not supported")

	default:
		return nil, h.errorf(r, "unsupported expression")
	}
}

func (h hclReader) literal(v cty.Value, r hcl.Range, negate bool) (*Node, error) {
	pos := hclPos(h.filename, r.Start)

	switch {
	case v.IsNull():
		return ScalarNode(pos, ScalarNull, "null"), nil

	case v.Type().Equals(cty.String):
		return ScalarNode(pos, ScalarString, v.AsString()), nil

	case v.Type().Equals(cty.Bool):
		if v.True() {
			return ScalarNode(pos, ScalarBool, "true"), nil
		}

		return ScalarNode(pos, ScalarBool, "false"), nil

	case v.Type().Equals(cty.Number):
		bf := new(big.Float).Copy(v.AsBigFloat())
		if negate {
			bf.Neg(bf)
		}

		// The source spelling decides integer or float: 10 is an integer,
		// 10.0 and 1e1 are floats.
		if src := h.text(r); !strings.ContainsAny(src, ".eE") && bf.IsInt() {
			i, _ := bf.Int(nil)

			return ScalarNode(pos, ScalarInt, i.String()), nil
		}

		return ScalarNode(pos, ScalarFloat, bf.Text('g', -1)), nil
	}

	return nil, h.errorf(r, "unsupported literal of type %s", v.Type().FriendlyName())
}

func (h hclReader) objectKey(expr hclsyntax.Expression) (string, error) {
	if k, ok := expr.(*hclsyntax.ObjectConsKeyExpr); ok {
		expr = k.Wrapped
	}

	if kw := hcl.ExprAsKeyword(expr); kw != "" {
		return kw, nil
	}

	if t, ok := expr.(*hclsyntax.TemplateExpr); ok && literalTemplate(t) {
		v, diags := t.Value(nil)
		if !diags.HasErrors() {
			return v.AsString(), nil
		}
	}

	return "", h.errorf(expr.Range(), "object keys must be identifiers or string literals")
}

// literalTemplate reports whether t is a quoted string or heredoc with no
// interpolation or directives.
func literalTemplate(t *hclsyntax.TemplateExpr) bool {
	for _, part := range t.Parts {
		if _, ok := part.(*hclsyntax.LiteralValueExpr); !ok {
			return false
		}
	}

	return true
}

func hclPos(filename string, p hcl.Pos) Position {
	return Position{File: filename, Line: p.Line, Column: p.Column}
}

func hclDiagError(filename string, src []byte, diags hcl.Diagnostics) error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}

		pe := &ParseError{
			Pos:    Position{File: filename},
			Msg:    d.Summary,
			Source: src,
			Err:    diags,
		}

		if d.Detail != "" {
			pe.Msg += ": " + d.Detail
		}

		if d.Subject != nil {
			pe.Pos = hclPos(filename, d.Subject.Start)
		}

		return pe
	}

	return &ParseError{Pos: Position{File: filename}, Msg: diags.Error(), Err: diags}
}
