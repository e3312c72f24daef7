// Package lang parses and evaluates blueprint documents.
//
// A blueprint is a document describing one entity as a set of named
// components. Documents are written in JSON (*.bp.json), YAML (*.bp.yaml)
// or HCL (*.bp.hcl). Each format frontend produces the same untagged
// [Node] tree, which is disambiguated into an [Expr] tree by trying the
// shapes of [ShapeOrder] in sequence:
//
//	KeyMap     mapping of field names        {x: 1, y: 2}
//	String     string scalar                 "Rex"
//	Int32      integer that fits in 32 bits  10
//	Float32    any number                    10.5
//	Sequence   ordered list                  [1, 2]
//	Entity     root, or {"$entity": {...}}   {$entity: {Name: Pup}}
//	FuncCall   {"$name": [args...]}          {$rand: [1, 10]}
//
// In HCL, function calls use native syntax: rand(1, 10).
//
// Parsing never resolves function names. Evaluation ([Eval],
// [EvalToEntity], [Blueprint.Eval]) walks the tree and resolves calls
// through an [Environment].
package lang
