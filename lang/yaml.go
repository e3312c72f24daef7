package lang

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// decodeYAML builds a node tree from a YAML document. JSON documents go
// through the same path, since JSON is a subset of YAML; json additionally
// requires the document to be a single object.
func decodeYAML(filename string, src []byte, json bool) (*Node, error) {
	if json {
		trimmed := bytes.TrimSpace(src)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, &ParseError{
				Pos:    Position{File: filename, Line: 1, Column: 1},
				Msg:    "JSON blueprint must be an object",
				Source: src,
			}
		}
	}

	file, err := parser.ParseBytes(src, 0)
	if err != nil {
		return nil, &ParseError{
			Pos: Position{File: filename},
			Msg: yaml.FormatError(err, false, true),
			Err: err,
		}
	}

	var docs []*ast.DocumentNode

	for _, doc := range file.Docs {
		if doc != nil && doc.Body != nil {
			docs = append(docs, doc)
		}
	}

	switch len(docs) {
	case 0:
		return nil, &ParseError{Pos: Position{File: filename}, Msg: "empty document"}
	case 1:
	default:
		return nil, &ParseError{
			Pos:    yamlPos(filename, docs[1].Body),
			Msg:    "blueprint must contain exactly one document",
			Source: src,
		}
	}

	y := yamlReader{filename: filename, src: src}

	return y.node(docs[0].Body)
}

type yamlReader struct {
	filename string
	src      []byte
}

func (y yamlReader) errorf(n ast.Node, format string, args ...any) *ParseError {
	return &ParseError{
		Pos:      yamlPos(y.filename, n),
		Fragment: n.String(),
		Msg:      fmt.Sprintf(format, args...),
		Source:   y.src,
	}
}

func (y yamlReader) node(n ast.Node) (*Node, error) {
	pos := yamlPos(y.filename, n)

	switch n := n.(type) {
	case *ast.MappingNode:
		fields := make([]Field, 0, len(n.Values))

		for _, mv := range n.Values {
			f, err := y.field(mv)
			if err != nil {
				return nil, err
			}

			fields = append(fields, f)
		}

		return MappingNode(pos, fields...), nil

	case *ast.MappingValueNode:
		f, err := y.field(n)
		if err != nil {
			return nil, err
		}

		return MappingNode(pos, f), nil

	case *ast.SequenceNode:
		items := make([]*Node, 0, len(n.Values))

		for _, v := range n.Values {
			item, err := y.node(v)
			if err != nil {
				return nil, err
			}

			items = append(items, item)
		}

		return SequenceNode(pos, items...), nil

	case *ast.StringNode:
		return ScalarNode(pos, ScalarString, n.Value), nil

	case *ast.LiteralNode:
		return ScalarNode(pos, ScalarString, n.Value.Value), nil

	case *ast.IntegerNode:
		var text string

		switch i := n.Value.(type) {
		case int64:
			text = strconv.FormatInt(i, 10)
		case uint64:
			text = strconv.FormatUint(i, 10)
		case int:
			text = strconv.Itoa(i)
		default:
			return nil, y.errorf(n, "unsupported integer %v", i)
		}

		return ScalarNode(pos, ScalarInt, text), nil

	case *ast.FloatNode:
		return ScalarNode(pos, ScalarFloat, strconv.FormatFloat(n.Value, 'g', -1, 64)), nil

	case *ast.BoolNode:
		return ScalarNode(pos, ScalarBool, strconv.FormatBool(n.Value)), nil

	case *ast.NullNode:
		return ScalarNode(pos, ScalarNull, "null"), nil

	case *ast.AnchorNode:
		return y.node(n.Value)

	case *ast.AliasNode:
		return nil, y.errorf(n, "aliases are not supported")

	case *ast.TagNode:
		return nil, y.errorf(n, "tags are not supported")

	case *ast.InfinityNode, *ast.NanNode:
		return nil, y.errorf(n, "non-finite numbers are not supported")

	default:
		return nil, y.errorf(n, "unsupported YAML node %s", n.Type())
	}
}

func (y yamlReader) field(mv *ast.MappingValueNode) (Field, error) {
	var key string

	switch k := mv.Key.(type) {
	case *ast.StringNode:
		key = k.Value
	case *ast.MergeKeyNode:
		return Field{}, y.errorf(k, "merge keys are not supported")
	case *ast.MappingKeyNode:
		return Field{}, y.errorf(k, "complex keys are not supported")
	default:
		key = k.GetToken().Value
	}

	val, err := y.node(mv.Value)
	if err != nil {
		return Field{}, err
	}

	return Field{Key: key, Pos: yamlPos(y.filename, mv.Key), Value: val}, nil
}

func yamlPos(filename string, n ast.Node) Position {
	pos := Position{File: filename}

	if n == nil {
		return pos
	}

	if tk := n.GetToken(); tk != nil && tk.Position != nil {
		pos.Line = tk.Position.Line
		pos.Column = tk.Position.Column
	}

	return pos
}
