// Package vext resolves which value extractor applies to a container type
// and drives extraction, producing deterministic violation paths for a
// surrounding validation engine.
package vext

import (
	"fmt"
	"log/slog"
	"reflect"

	"go.uber.org/multierr"

	"github.com/vext-go/vext/internal/engine"
	"github.com/vext-go/vext/internal/resolution"
	"github.com/vext-go/vext/vextract"
	"github.com/vext-go/vext/vpath"
	"github.com/vext-go/vext/vtype"
)

// Errors surfaced by registration and resolution.
var (
	// ErrDefinition is raised at registration time for structurally
	// invalid or conflicting extractor descriptors.
	ErrDefinition = vextract.ErrDefinition
	// ErrAmbiguousExtractor is raised at resolution time when
	// incomparable maximally specific candidates remain.
	ErrAmbiguousExtractor = resolution.ErrAmbiguousExtractor
	// ErrDeclaration is raised at constraint-declaration analysis time.
	ErrDeclaration = resolution.ErrDeclaration
)

// Resolution is the outcome of a successful query: the selected extractor
// descriptor plus the type parameter it was resolved against.
type Resolution = resolution.Resolution

// Directive controls element-level unwrapping.
type Directive = resolution.Directive

// Unwrapping directives consumed by element queries.
const (
	DirectiveDefault     = resolution.DirectiveDefault
	DirectiveForceUnwrap = resolution.DirectiveForceUnwrap
	DirectiveSkip        = resolution.DirectiveSkip
)

// Visitor receives each extracted value together with the path leading to
// it.
type Visitor = engine.Visitor

// Context owns an immutable extractor registry snapshot plus the resolver
// and engine operating on it. Build one with New during bootstrap; it is
// safe for concurrent use afterward. Adding extractors later means
// deriving a new Context with Validator, never mutating a live one.
type Context struct {
	log      *slog.Logger
	resolver *resolution.Resolver
	engine   *engine.Engine

	factory    []*vextract.Descriptor
	discovered []DiscoverySource
	configured []ConfigSource
}

// New creates a resolution context. The built-in extractors are always
// registered at the lowest precedence; discovered, configured and
// factory-level extractors stack on top of them. Returns an error naming
// every rejected descriptor if bootstrap fails.
func New(opts ...Option) (*Context, error) {
	c := &Context{log: NullLogger()}
	for _, opt := range opts {
		opt(c)
	}
	reg, err := c.buildRegistry(nil)
	if err != nil {
		return nil, err
	}
	c.install(reg)
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Context {
	c, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Context) buildRegistry(validator []*vextract.Descriptor) (*resolution.Registry, error) {
	b := resolution.NewBuilder()
	var errs error
	register := func(ds []*vextract.Descriptor, level vextract.PrecedenceLevel) {
		for _, d := range ds {
			if err := b.Register(d, level); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}
	register(vextract.Builtins(), vextract.LevelBuiltin)
	for _, src := range c.discovered {
		ds, err := src.DiscoverExtractors()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("extractor discovery: %w", err))
			continue
		}
		register(ds, vextract.LevelDiscovered)
	}
	for _, src := range c.configured {
		ds, err := src.ConfiguredExtractors()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("configured extractors: %w", err))
			continue
		}
		register(ds, vextract.LevelConfigured)
	}
	register(c.factory, vextract.LevelFactory)
	register(validator, vextract.LevelValidator)
	if errs != nil {
		return nil, errs
	}
	return b.Build(), nil
}

func (c *Context) install(reg *resolution.Registry) {
	c.resolver = resolution.NewResolver(reg, c.log.WithGroup("resolver"))
	c.engine = engine.New(c.log.WithGroup("engine"))
}

// Validator derives a new Context with additional validator-scoped
// extractors layered at the highest precedence. The receiver keeps
// serving its own snapshot untouched, so readers never observe a
// partially updated registry.
func (c *Context) Validator(extractors ...*vextract.Descriptor) (*Context, error) {
	child := &Context{
		log:        c.log,
		factory:    c.factory,
		discovered: c.discovered,
		configured: c.configured,
	}
	reg, err := child.buildRegistry(extractors)
	if err != nil {
		return nil, err
	}
	child.install(reg)
	return child, nil
}

// TypeArgument resolves the extractor for a constraint attached to the
// declared type parameter index of t. A nil resolution with a nil error
// means no extractor applies.
func (c *Context) TypeArgument(t *vtype.ContainerType, index int) (*Resolution, error) {
	return c.resolver.TypeArgument(t, index)
}

// Cascade resolves the extractors supplying the values cascaded
// validation recurses into, from the value's runtime type. A nil value
// yields nothing to recurse into.
func (c *Context) Cascade(value any) ([]*Resolution, error) {
	if value == nil {
		return nil, nil
	}
	return c.resolver.Cascade(reflect.TypeOf(value))
}

// CascadeType is Cascade for an already known runtime type.
func (c *Context) CascadeType(rt reflect.Type) ([]*Resolution, error) {
	return c.resolver.Cascade(rt)
}

// Element resolves implicit element-level unwrapping for a declared type
// per the directive. A nil resolution with a nil error means plain
// validation proceeds on the element itself.
func (c *Context) Element(t *vtype.ContainerType, directive Directive) (*Resolution, error) {
	return c.resolver.Element(t, directive)
}

// Extract runs a resolved extractor over container, appending path nodes
// per the callback protocol and handing each extracted value to visit.
func (c *Context) Extract(res *Resolution, container any, base vpath.Path, visit Visitor) error {
	return c.engine.Extract(res, container, base, visit)
}

// ChainLink names one type-argument pick in a nested extraction chain.
type ChainLink struct {
	Container *vtype.ContainerType
	Param     int
}

// ExtractChain resolves and extracts through a declared chain of nested
// type arguments (container of container), re-entering the engine once
// per level. Depth is bounded by the chain the caller declares, nothing
// else.
func (c *Context) ExtractChain(chain []ChainLink, container any, base vpath.Path, visit Visitor) error {
	if len(chain) == 0 {
		return visit(base, container)
	}
	res, err := c.TypeArgument(chain[0].Container, chain[0].Param)
	if err != nil {
		return err
	}
	return c.Extract(res, container, base, func(p vpath.Path, v any) error {
		return c.ExtractChain(chain[1:], v, p, visit)
	})
}
