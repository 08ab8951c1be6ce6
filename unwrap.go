package vext

import "fmt"

// Payload is a per-constraint declarative unwrapping marker.
type Payload int

const (
	// Unwrap requests that the constraint apply to the value extracted
	// from the annotated element's container.
	Unwrap Payload = iota
	// SkipUnwrap pins the constraint to the element itself, even when
	// its container unwraps by default.
	SkipUnwrap
)

func (p Payload) String() string {
	switch p {
	case Unwrap:
		return "Unwrap"
	case SkipUnwrap:
		return "SkipUnwrap"
	default:
		return "unknown"
	}
}

// ResolveDirective turns a constraint's unwrapping payload markers into
// the directive consumed by element-level resolution. Declaring both
// markers on one constraint is a declaration error.
func ResolveDirective(payloads ...Payload) (Directive, error) {
	var unwrap, skip bool
	for _, p := range payloads {
		switch p {
		case Unwrap:
			unwrap = true
		case SkipUnwrap:
			skip = true
		default:
			return DirectiveDefault, fmt.Errorf("%w: unknown unwrapping payload %d", ErrDeclaration, int(p))
		}
	}
	switch {
	case unwrap && skip:
		return DirectiveDefault, fmt.Errorf("%w: both Unwrap and SkipUnwrap declared", ErrDeclaration)
	case unwrap:
		return DirectiveForceUnwrap, nil
	case skip:
		return DirectiveSkip, nil
	default:
		return DirectiveDefault, nil
	}
}
