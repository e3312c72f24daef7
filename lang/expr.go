package lang

import (
	"maps"
	"slices"
	"strings"

	"github.com/robo-corg/prints/value"
)

// Expr is a parsed, unevaluated expression.
//
// The set of implementations is closed: [Constant], [KeyMap], [Vec],
// [Entity] and [FuncCall]. Expressions are immutable; evaluation produces a
// fresh [value.Value] tree.
type Expr interface {
	String() string

	isExpr()
}

type (
	// Constant is a literal value.
	Constant struct {
		Value value.Value
	}

	// KeyMap evaluates to a [value.Mapping].
	KeyMap map[string]Expr

	// Vec evaluates to a [value.Sequence].
	Vec []Expr

	// Entity evaluates to a [value.Entity] keyed by component name.
	Entity value.EntityRecord[Expr]

	// FuncCall evaluates its arguments in order and then calls the named
	// function of the evaluation [Environment].
	FuncCall struct {
		Name string
		Args []Expr
		Pos  Position
	}
)

func (Constant) isExpr() {}
func (KeyMap) isExpr()   {}
func (Vec) isExpr()      {}
func (Entity) isExpr()   {}
func (FuncCall) isExpr() {}

// Record returns e as an [value.EntityRecord].
func (e Entity) Record() value.EntityRecord[Expr] {
	return value.EntityRecord[Expr](e)
}

func (c Constant) String() string {
	if c.Value == nil {
		return "<nil>"
	}

	return c.Value.String()
}

func (m KeyMap) String() string {
	keys := slices.Sorted(maps.Keys(m))

	return joinKeyed("{", keys, func(k string) Expr { return m[k] })
}

func (v Vec) String() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.String()
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func (e Entity) String() string {
	r := e.Record()

	return joinKeyed("entity{", r.Names(), func(k string) Expr {
		c, _ := r.Get(k)

		return c
	})
}

func (f FuncCall) String() string {
	return f.Name + Vec(f.Args).String()
}

func joinKeyed(open string, keys []string, get func(string) Expr) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + get(k).String()
	}

	return open + strings.Join(parts, ", ") + "}"
}
