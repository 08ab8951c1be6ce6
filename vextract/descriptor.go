package vextract

import (
	"errors"
	"fmt"

	"github.com/vext-go/vext/vtype"
)

// Sentinel errors for extractor descriptors.
var (
	// ErrDefinition is returned when a descriptor is structurally invalid
	// or clashes with an already registered one.
	ErrDefinition = errors.New("invalid extractor definition")
	// ErrTypeMismatch is returned when an extractor receives a container
	// value of an unexpected type.
	ErrTypeMismatch = errors.New("container value type mismatch")
)

// TargetKind discriminates what part of a container a descriptor extracts.
type TargetKind int

const (
	// TargetParam extracts the values bound to one type parameter.
	TargetParam TargetKind = iota
	// TargetSelf extracts the container value itself.
	TargetSelf
	// TargetArrayComponent extracts the components of an array.
	TargetArrayComponent
)

func (k TargetKind) String() string {
	switch k {
	case TargetParam:
		return "param"
	case TargetSelf:
		return "self"
	case TargetArrayComponent:
		return "array component"
	default:
		return "unknown"
	}
}

// Target is a descriptor's resolved extracted position.
type Target struct {
	Kind  TargetKind
	Param *vtype.TypeParameter // set for TargetParam
}

func (t Target) String() string {
	if t.Kind == TargetParam && t.Param != nil {
		return t.Param.String()
	}
	return t.Kind.String()
}

// marker is an unresolved extracted-position declaration.
type marker struct {
	kind  TargetKind
	super *vtype.ContainerType // nil means the descriptor's own container
	index int
}

// Descriptor describes a registered extractor: the container type it
// applies to, the extracted position, behavioral flags and the extraction
// callback. Descriptors are created once and never mutated.
type Descriptor struct {
	name            string
	container       *vtype.ContainerType
	markers         []marker
	unwrapByDefault bool
	inIterable      bool
	extract         Extractor
}

// DescriptorOption configures a Descriptor under construction.
type DescriptorOption func(*Descriptor)

// WithExtractedParam marks the container's own type parameter i as the
// extracted position.
func WithExtractedParam(i int) DescriptorOption {
	return func(d *Descriptor) {
		d.markers = append(d.markers, marker{kind: TargetParam, index: i})
	}
}

// WithExtractedParamOf marks type parameter i of an ancestor type as the
// extracted position. The position must still be open as seen from the
// descriptor's container.
func WithExtractedParamOf(super *vtype.ContainerType, i int) DescriptorOption {
	return func(d *Descriptor) {
		d.markers = append(d.markers, marker{kind: TargetParam, super: super, index: i})
	}
}

// WithExtractedValue marks the container value itself as the extracted
// position (used for cascade-only pass-through extractors).
func WithExtractedValue() DescriptorOption {
	return func(d *Descriptor) {
		d.markers = append(d.markers, marker{kind: TargetSelf})
	}
}

// WithExtractedArrayComponent marks the array component as the extracted
// position.
func WithExtractedArrayComponent() DescriptorOption {
	return func(d *Descriptor) {
		d.markers = append(d.markers, marker{kind: TargetArrayComponent})
	}
}

// WithUnwrapByDefault lets element-level constraints unwrap through this
// extractor without an explicit directive.
func WithUnwrapByDefault() DescriptorOption {
	return func(d *Descriptor) {
		d.unwrapByDefault = true
	}
}

// WithInIterable marks path nodes produced through this extractor as part
// of an iterable.
func WithInIterable() DescriptorOption {
	return func(d *Descriptor) {
		d.inIterable = true
	}
}

// WithName sets a display name used in error messages.
func WithName(name string) DescriptorOption {
	return func(d *Descriptor) {
		d.name = name
	}
}

// NewDescriptor builds an extractor descriptor for the given container
// type. Structural validation happens at registration time.
func NewDescriptor(container *vtype.ContainerType, extract Extractor, opts ...DescriptorOption) *Descriptor {
	d := &Descriptor{container: container, extract: extract}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Container returns the container type the extractor applies to.
func (d *Descriptor) Container() *vtype.ContainerType { return d.container }

// UnwrapsByDefault reports whether element-level constraints unwrap
// through this extractor without an explicit directive.
func (d *Descriptor) UnwrapsByDefault() bool { return d.unwrapByDefault }

// InIterable reports whether extracted values live inside an iterable.
func (d *Descriptor) InIterable() bool { return d.inIterable }

// Extract returns the extraction callback.
func (d *Descriptor) Extract() Extractor { return d.extract }

func (d *Descriptor) String() string {
	if d.name != "" {
		return d.name
	}
	if len(d.markers) == 1 {
		if t, err := d.Validate(); err == nil {
			return fmt.Sprintf("%s[%s]", d.container.Name(), t)
		}
	}
	return fmt.Sprintf("%s[?]", d.container.Name())
}

// Validate checks the descriptor's structural invariants and resolves its
// extracted position: the container must be set, exactly one extracted
// marker must be declared, and a marker addressing an ancestor parameter
// must point at an open position.
func (d *Descriptor) Validate() (Target, error) {
	if d.container == nil {
		return Target{}, fmt.Errorf("%w: descriptor has no container type", ErrDefinition)
	}
	if d.extract == nil {
		return Target{}, fmt.Errorf("%w: %s declares no extraction callback", ErrDefinition, d.container.Name())
	}
	if len(d.markers) == 0 {
		return Target{}, fmt.Errorf("%w: %s declares no extracted position", ErrDefinition, d.container.Name())
	}
	if len(d.markers) > 1 {
		return Target{}, fmt.Errorf("%w: %s declares %d extracted positions, want exactly one",
			ErrDefinition, d.container.Name(), len(d.markers))
	}
	m := d.markers[0]
	switch m.kind {
	case TargetSelf, TargetArrayComponent:
		return Target{Kind: m.kind}, nil
	default:
		owner := m.super
		if owner == nil {
			owner = d.container
		}
		p := owner.Parameter(m.index)
		if p == nil {
			return Target{}, fmt.Errorf("%w: %s has no type parameter %d",
				ErrDefinition, owner.Name(), m.index)
		}
		if owner != d.container {
			b := vtype.ResolveBindings(d.container)
			if !b.Contains(p) {
				return Target{}, fmt.Errorf("%w: %s is not part of %s's hierarchy",
					ErrDefinition, p, d.container.Name())
			}
			if !b.Open(p) {
				return Target{}, fmt.Errorf("%w: %s is bound to a concrete type argument in %s, not an open position",
					ErrDefinition, p, d.container.Name())
			}
		}
		return Target{Kind: TargetParam, Param: p}, nil
	}
}
