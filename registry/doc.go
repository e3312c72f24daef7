// Package registry turns evaluated entity records into typed components.
//
// A [Registry] maps component names to construction strategies. [Typed]
// decodes a value straight into a Go type; an [Inserter] built with
// [Decoded] or [Custom] may transform the result with [MapComponent] and
// attach dependency defaults with [Inserter.DependsOn] and
// [Inserter.Ensures].
//
// [Registry.Materialize] applies a whole record to a [Target] atomically:
// every component is staged first, and nothing is attached unless all of
// them succeed. Names with no strategy fall back to the host's [Catalog],
// which resolves a name to a Go type that is filled reflectively from a
// flat mapping or sequence.
package registry
