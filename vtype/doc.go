// Package vtype models generic container types and resolves how their type
// parameters map onto the parameters of their supertypes.
//
// The hierarchy is a DAG: a container type may declare several supertype
// edges (diamond shapes included), and each edge instantiates every
// parameter of the supertype with either one of the subtype's own
// parameters, a wildcard, or a concrete Go type. ResolveBindings composes
// these substitutions across the whole hierarchy and answers which root
// parameter supplies which ancestor position.
//
// Types are built single-threaded during bootstrap and immutable
// afterward; every bindings query produces fresh tables, so queries are
// safe from any number of goroutines.
package vtype
