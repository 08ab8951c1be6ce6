// Package vextract defines extractor descriptors, the callback protocol
// extractors use to hand values back, the precedence levels extractors are
// registered at, and the built-in extractors for slices, arrays, maps,
// iterables, single-value wrappers and plain objects.
package vextract
