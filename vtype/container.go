package vtype

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for container type definitions.
var (
	ErrInvalidType      = errors.New("invalid container type")
	ErrUnknownParameter = errors.New("unknown type parameter")
)

// TypeParameter identifies one declared type parameter of a container type.
// Instances are created once per ContainerType and compared by identity.
type TypeParameter struct {
	owner *ContainerType
	index int
	name  string
}

// Owner returns the container type that declares the parameter.
func (p *TypeParameter) Owner() *ContainerType { return p.owner }

// Index returns the parameter's position in the declaration order.
func (p *TypeParameter) Index() int { return p.index }

// Name returns the declared parameter name.
func (p *TypeParameter) Name() string { return p.name }

func (p *TypeParameter) String() string {
	return fmt.Sprintf("%s.%s", p.owner.name, p.name)
}

type argKind int

const (
	argParam argKind = iota
	argWildcard
	argConcrete
)

// Arg describes how one supertype parameter is instantiated by a subtype.
type Arg struct {
	kind     argKind
	param    int
	concrete reflect.Type
}

// Param binds a supertype parameter to the subtype's own parameter i.
func Param(i int) Arg { return Arg{kind: argParam, param: i} }

// Wildcard leaves a supertype parameter open without tying it to any
// subtype parameter.
func Wildcard() Arg { return Arg{kind: argWildcard} }

// Concrete closes a supertype parameter with a fixed Go type.
func Concrete(t reflect.Type) Arg { return Arg{kind: argConcrete, concrete: t} }

type superEdge struct {
	super *ContainerType
	args  []Arg
}

// ContainerType describes a generic container: its declared type
// parameters, its place in the supertype DAG, and how runtime Go types
// match it. Build once with New, then treat as immutable.
type ContainerType struct {
	name   string
	goType reflect.Type
	kind   reflect.Kind
	params []*TypeParameter
	supers []superEdge
}

// TypeOption configures a ContainerType under construction.
type TypeOption func(*ContainerType)

// WithParameters declares the container's type parameters, in order.
func WithParameters(names ...string) TypeOption {
	return func(c *ContainerType) {
		for i, name := range names {
			c.params = append(c.params, &TypeParameter{owner: c, index: i, name: name})
		}
	}
}

// WithGoType ties the container to a Go type. Interface types match any
// implementation, other types match exactly.
func WithGoType(t reflect.Type) TypeOption {
	return func(c *ContainerType) {
		c.goType = t
	}
}

// WithKind matches runtime types by reflect.Kind. Used by the built-in
// slice, array and map containers.
func WithKind(k reflect.Kind) TypeOption {
	return func(c *ContainerType) {
		c.kind = k
	}
}

// WithSuper declares a supertype edge. args instantiate every parameter of
// super, in super's declaration order.
func WithSuper(super *ContainerType, args ...Arg) TypeOption {
	return func(c *ContainerType) {
		c.supers = append(c.supers, superEdge{super: super, args: args})
	}
}

// New builds a container type descriptor. Supertypes must be fully built
// before they are referenced, which keeps the hierarchy a DAG by
// construction.
func New(name string, opts ...TypeOption) (*ContainerType, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidType)
	}
	c := &ContainerType{name: name}
	for _, opt := range opts {
		opt(c)
	}
	for _, edge := range c.supers {
		if edge.super == nil {
			return nil, fmt.Errorf("%w: %s declares a nil supertype", ErrInvalidType, name)
		}
		if len(edge.args) != len(edge.super.params) {
			return nil, fmt.Errorf("%w: %s supplies %d type arguments to %s, which declares %d parameters",
				ErrInvalidType, name, len(edge.args), edge.super.name, len(edge.super.params))
		}
		for _, arg := range edge.args {
			if arg.kind == argParam && (arg.param < 0 || arg.param >= len(c.params)) {
				return nil, fmt.Errorf("%w: %s binds %s to its parameter %d, but it declares %d parameters",
					ErrInvalidType, name, edge.super.name, arg.param, len(c.params))
			}
			if arg.kind == argConcrete && arg.concrete == nil {
				return nil, fmt.Errorf("%w: %s supplies a nil concrete type argument to %s",
					ErrInvalidType, name, edge.super.name)
			}
		}
	}
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(name string, opts ...TypeOption) *ContainerType {
	c, err := New(name, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the container type's name.
func (c *ContainerType) Name() string { return c.name }

// NumParameters returns the number of declared type parameters.
func (c *ContainerType) NumParameters() int { return len(c.params) }

// Parameter returns the declared parameter at index i, or nil if out of
// range.
func (c *ContainerType) Parameter(i int) *TypeParameter {
	if i < 0 || i >= len(c.params) {
		return nil
	}
	return c.params[i]
}

// Parameters returns the declared parameters in order.
func (c *ContainerType) Parameters() []*TypeParameter {
	out := make([]*TypeParameter, len(c.params))
	copy(out, c.params)
	return out
}

func (c *ContainerType) String() string { return c.name }

// Matches reports whether a runtime Go type is an instance of this
// container. Interface-typed containers accept both value and pointer
// implementations.
func (c *ContainerType) Matches(rt reflect.Type) bool {
	if rt == nil {
		return false
	}
	if c == Object {
		return true
	}
	if c.kind != reflect.Invalid {
		return rt.Kind() == c.kind
	}
	if c.goType == nil {
		return false
	}
	if c.goType.Kind() == reflect.Interface {
		if rt.Implements(c.goType) {
			return true
		}
		if rt.Kind() != reflect.Pointer {
			return reflect.PointerTo(rt).Implements(c.goType)
		}
		return false
	}
	return rt == c.goType
}

// Ancestors returns t, every supertype reachable from it, and Object,
// deduplicated, in deterministic breadth-first order.
func Ancestors(t *ContainerType) []*ContainerType {
	seen := map[*ContainerType]bool{t: true}
	out := []*ContainerType{t}
	queue := []*ContainerType{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, edge := range cur.supers {
			if !seen[edge.super] {
				seen[edge.super] = true
				out = append(out, edge.super)
				queue = append(queue, edge.super)
			}
		}
	}
	if !seen[Object] {
		out = append(out, Object)
	}
	return out
}

// ProperSubtype reports whether sub is a strict subtype of super in the
// declared hierarchy. Object is the implicit root: every other container
// type is a proper subtype of it.
func ProperSubtype(sub, super *ContainerType) bool {
	if sub == super || sub == Object {
		return false
	}
	if super == Object {
		return true
	}
	for _, a := range Ancestors(sub) {
		if a == super {
			return true
		}
	}
	return false
}
