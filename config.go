package vext

import (
	"log/slog"

	"github.com/vext-go/vext/vextract"
)

// Option is a function that configures a Context.
type Option func(*Context)

// WithLog sets the logger for the context.
var WithLog = func(log *slog.Logger) Option {
	return func(c *Context) {
		c.log = log
	}
}

// WithExtractors registers extractor descriptors at the factory
// precedence level.
var WithExtractors = func(descriptors ...*vextract.Descriptor) Option {
	return func(c *Context) {
		c.factory = append(c.factory, descriptors...)
	}
}

// WithDiscovery adds a source of service-discovered extractors,
// registered at the discovered precedence level.
var WithDiscovery = func(src DiscoverySource) Option {
	return func(c *Context) {
		c.discovered = append(c.discovered, src)
	}
}

// WithConfigured adds a source of externally configured extractors,
// registered at the configured precedence level.
var WithConfigured = func(src ConfigSource) Option {
	return func(c *Context) {
		c.configured = append(c.configured, src)
	}
}

// NullWriter is a writer that discards all data
type NullWriter struct{}

func (NullWriter) Write([]byte) (int, error) { return 0, nil }

// NullLogger creates a logger that discards all output
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(NullWriter{}, nil))
}
