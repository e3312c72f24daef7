// Package value defines the dynamically-typed values produced by evaluating
// blueprint expressions, and the bridge that decodes them into ordinary Go
// types.
//
// A [Value] is one of [String], [Int32], [Float32], [Sequence], [Mapping] or
// [Entity]. Values are immutable once produced; use [Value.Clone] before
// handing a value to code that may retain or modify it.
//
// # Decoding
//
// [Decode] and [To] populate any Go shape from a Value without per-type
// code:
//
//	type Stats struct {
//		Speed float32 `validate:"required"`
//		Armor int32   `prints:",omitempty"`
//	}
//
//	stats, err := value.To[Stats](v)
//
// Strings decode into enumerations implementing [encoding.TextUnmarshaler]
// (see [ParseVariant]), sequences decode into slices and [Positional]
// structs, and mappings decode into structs and maps. Every decode failure
// wraps [pkg.ErrToComponent].
package value
