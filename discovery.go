package vext

import "github.com/vext-go/vext/vextract"

// DiscoverySource supplies extractor descriptors found through service
// discovery. Reading and parsing the underlying discovery format is the
// caller's concern; this package only consumes the resulting descriptors.
type DiscoverySource interface {
	DiscoverExtractors() ([]*vextract.Descriptor, error)
}

// ConfigSource supplies extractor descriptors declared in external
// configuration. Parsing the configuration format is the caller's
// concern.
type ConfigSource interface {
	ConfiguredExtractors() ([]*vextract.Descriptor, error)
}
