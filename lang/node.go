package lang

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeKind is the structural kind of a [Node].
type NodeKind int

const (
	NodeScalar NodeKind = iota
	NodeMapping
	NodeSequence
)

func (k NodeKind) String() string {
	switch k {
	case NodeScalar:
		return "scalar"
	case NodeMapping:
		return "mapping"
	case NodeSequence:
		return "sequence"
	default:
		return "NodeKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ScalarKind is the lexical class of a scalar [Node] as reported by its
// format frontend.
type ScalarKind int

const (
	ScalarString ScalarKind = iota
	ScalarInt
	ScalarFloat
	ScalarBool
	ScalarNull
)

// Position is a location in a source document. Line and Column are 1-based.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	var sb strings.Builder

	if p.File != "" {
		sb.WriteString(p.File)
		sb.WriteByte(':')
	}

	fmt.Fprintf(&sb, "%d:%d", p.Line, p.Column)

	return sb.String()
}

// Node is an untagged document node: a scalar, a mapping or a sequence.
// Format frontends produce Node trees; [ParseEntity] and [ParseNode]
// turn them into expressions.
type Node struct {
	Kind NodeKind
	Pos  Position

	// Scalar class and text. Integer text is decimal; strings are unquoted.
	Scalar ScalarKind
	Text   string

	// Mapping entries in source order.
	Fields []Field

	// Sequence elements.
	Items []*Node
}

// Field is a single mapping entry.
type Field struct {
	Key   string
	Pos   Position
	Value *Node
}

// ScalarNode returns a scalar node.
func ScalarNode(pos Position, kind ScalarKind, text string) *Node {
	return &Node{Kind: NodeScalar, Pos: pos, Scalar: kind, Text: text}
}

// MappingNode returns a mapping node.
func MappingNode(pos Position, fields ...Field) *Node {
	return &Node{Kind: NodeMapping, Pos: pos, Fields: fields}
}

// SequenceNode returns a sequence node.
func SequenceNode(pos Position, items ...*Node) *Node {
	return &Node{Kind: NodeSequence, Pos: pos, Items: items}
}

// Fragment returns a short rendering of n for error messages.
func (n *Node) Fragment() string {
	switch n.Kind {
	case NodeScalar:
		switch n.Scalar {
		case ScalarString:
			return strconv.Quote(n.Text)
		case ScalarNull:
			return "null"
		default:
			return n.Text
		}

	case NodeMapping:
		keys := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			keys[i] = f.Key
		}

		return "{" + strings.Join(keys, ", ") + "}"

	case NodeSequence:
		return "[" + strconv.Itoa(len(n.Items)) + " items]"
	}

	return "?"
}
