// Package resolution implements the extractor registry and the resolution
// algorithms: candidate lookup with multi-level precedence shadowing,
// maximal-specificity ordering over the container type hierarchy, and the
// three query modes (type argument, cascade, element).
package resolution
