// Package env provides function environments for blueprint evaluation.
//
// [Simple] maps names to Go functions and is the reference runtime.
// [Builtins] returns a Simple populated with the standard blueprint
// functions (concat, expr, prefix, rand, uuid). [Cty] exposes go-cty
// standard library functions, and [Starlark] exposes the top-level functions
// of a Starlark script. [Chain] combines environments so that the first one
// defining a name wins.
package env
