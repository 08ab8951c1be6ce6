package vextract

import "fmt"

// ValueReceiver receives the values an extractor pulls out of a container.
// An empty name means the extracted value occupies the same path position
// as its container and no path node is appended for it.
type ValueReceiver interface {
	// Value passes a single extracted value.
	Value(name string, value any)
	// IterableValue passes a value from an iterable without a stable
	// index.
	IterableValue(name string, value any)
	// IndexedValue passes a value at a position in an ordered container.
	IndexedValue(name string, index int, value any)
	// KeyedValue passes a value stored under a key.
	KeyedValue(name string, key any, value any)
}

// Extractor obtains element values from a container value and hands them
// to the receiver, one call per value, in container order.
type Extractor func(value any, receiver ValueReceiver) error

// Typed adapts a strongly typed extraction function to an Extractor. The
// extraction fails with ErrTypeMismatch if the container value is not a C.
func Typed[C any](fn func(container C, receiver ValueReceiver) error) Extractor {
	return func(value any, receiver ValueReceiver) error {
		c, ok := value.(C)
		if !ok {
			return fmt.Errorf("%w: expected %T, got %T", ErrTypeMismatch, c, value)
		}
		return fn(c, receiver)
	}
}
