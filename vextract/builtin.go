package vextract

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/vext-go/vext/vtype"
)

// Node names produced by the built-in extractors.
const (
	IterableElementNode = "<iterable element>"
	MapKeyNode          = "<map key>"
	MapValueNode        = "<map value>"
)

// ArrayElement extracts the components of any array, indexed by position.
var ArrayElement = NewDescriptor(vtype.Array, extractArray,
	WithName("ArrayElement"),
	WithExtractedArrayComponent())

// SliceElement extracts the elements of any slice, indexed by position.
var SliceElement = NewDescriptor(vtype.Slice, extractSlice,
	WithName("SliceElement"),
	WithExtractedParam(0),
	WithInIterable())

// IterableElement extracts the elements of a container implementing
// vtype.ElementIterator, without indexes.
var IterableElement = NewDescriptor(vtype.Iterable, extractIterable,
	WithName("IterableElement"),
	WithExtractedParam(0),
	WithInIterable())

// MapKey extracts the keys of any map, keyed by the key itself.
var MapKey = NewDescriptor(vtype.Map, extractMapKeys,
	WithName("MapKey"),
	WithExtractedParam(0),
	WithInIterable())

// MapValue extracts the values of any map, keyed by the corresponding key.
var MapValue = NewDescriptor(vtype.Map, extractMapValues,
	WithName("MapValue"),
	WithExtractedParam(1),
	WithInIterable())

// WrappedElement extracts the value held by a vtype.ValueWrapper. The
// empty node name means no path node is appended: the wrapped value
// occupies the wrapper's own path position.
var WrappedElement = NewDescriptor(vtype.Wrapper, extractWrapper,
	WithName("WrappedElement"),
	WithExtractedParam(0),
	WithUnwrapByDefault())

// ObjectValue passes any value through unchanged, for cascading into plain
// objects. It never appends a path node.
var ObjectValue = NewDescriptor(vtype.Object, extractObject,
	WithName("ObjectValue"),
	WithExtractedValue())

// Builtins returns the built-in extractor descriptors, registered at
// LevelBuiltin during bootstrap.
func Builtins() []*Descriptor {
	return []*Descriptor{
		ArrayElement,
		SliceElement,
		IterableElement,
		MapKey,
		MapValue,
		WrappedElement,
		ObjectValue,
	}
}

func extractArray(value any, receiver ValueReceiver) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Array {
		return fmt.Errorf("%w: expected array, got %T", ErrTypeMismatch, value)
	}
	for i := 0; i < rv.Len(); i++ {
		receiver.IndexedValue(IterableElementNode, i, rv.Index(i).Interface())
	}
	return nil
}

func extractSlice(value any, receiver ValueReceiver) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return fmt.Errorf("%w: expected slice, got %T", ErrTypeMismatch, value)
	}
	for i := 0; i < rv.Len(); i++ {
		receiver.IndexedValue(IterableElementNode, i, rv.Index(i).Interface())
	}
	return nil
}

var extractIterable = Typed(func(container vtype.ElementIterator, receiver ValueReceiver) error {
	container.ForEach(func(element any) bool {
		receiver.IterableValue(IterableElementNode, element)
		return true
	})
	return nil
})

func extractMapKeys(value any, receiver ValueReceiver) error {
	keys, err := sortedMapKeys(value)
	if err != nil {
		return err
	}
	for _, k := range keys {
		receiver.KeyedValue(MapKeyNode, k.Interface(), k.Interface())
	}
	return nil
}

func extractMapValues(value any, receiver ValueReceiver) error {
	keys, err := sortedMapKeys(value)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(value)
	for _, k := range keys {
		receiver.KeyedValue(MapValueNode, k.Interface(), rv.MapIndex(k).Interface())
	}
	return nil
}

// sortedMapKeys returns the map's keys in a stable order. Go randomizes
// map iteration; sorting keeps violation paths reproducible.
func sortedMapKeys(value any) ([]reflect.Value, error) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("%w: expected map, got %T", ErrTypeMismatch, value)
	}
	keys := rv.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	})
	return keys, nil
}

var extractWrapper = Typed(func(container vtype.ValueWrapper, receiver ValueReceiver) error {
	if v, ok := container.WrappedValue(); ok {
		receiver.Value("", v)
	}
	return nil
})

func extractObject(value any, receiver ValueReceiver) error {
	receiver.Value("", value)
	return nil
}
