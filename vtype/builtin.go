package vtype

import "reflect"

// ElementIterator is implemented by user containers that expose their
// elements without positional indexes.
type ElementIterator interface {
	// ForEach calls yield once per element, in container order, until
	// yield returns false.
	ForEach(yield func(element any) bool)
}

// ValueWrapper is implemented by single-value containers such as
// optionals.
type ValueWrapper interface {
	// WrappedValue returns the wrapped value, or ok=false if the wrapper
	// is empty.
	WrappedValue() (value any, ok bool)
}

var (
	elementIteratorType = reflect.TypeOf((*ElementIterator)(nil)).Elem()
	valueWrapperType    = reflect.TypeOf((*ValueWrapper)(nil)).Elem()
)

// Built-in container types. Object is the implicit root of the hierarchy;
// it has no type parameters and matches every runtime type.
var (
	Object = MustNew("Object")

	Iterable = MustNew("Iterable",
		WithParameters("E"),
		WithGoType(elementIteratorType))

	// Slice is a subtype of Iterable: a more specific extractor registered
	// for slices shadows one registered for iterables.
	Slice = MustNew("Slice",
		WithParameters("E"),
		WithKind(reflect.Slice),
		WithSuper(Iterable, Param(0)))

	// Array has no type parameter of its own; its components are addressed
	// through the array-component extraction sentinel.
	Array = MustNew("Array",
		WithKind(reflect.Array))

	Map = MustNew("Map",
		WithParameters("K", "V"),
		WithKind(reflect.Map))

	Wrapper = MustNew("Wrapper",
		WithParameters("V"),
		WithGoType(valueWrapperType))
)
