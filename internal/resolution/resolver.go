package resolution

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/vext-go/vext/vextract"
	"github.com/vext-go/vext/vtype"
)

// Sentinel errors for resolution outcomes. A nil resolution with a nil
// error means "no extractor" and is a normal result, never an error.
var (
	// ErrAmbiguousExtractor is returned when two or more incomparable
	// maximally specific candidates remain after filtering.
	ErrAmbiguousExtractor = errors.New("ambiguous extractor")
	// ErrDeclaration is returned for structurally invalid constraint
	// declarations, such as forced unwrapping with no unique type
	// parameter.
	ErrDeclaration = errors.New("invalid constraint declaration")
)

// Directive controls element-level unwrapping.
type Directive int

const (
	// DirectiveDefault unwraps only through extractors marked
	// unwrap-by-default.
	DirectiveDefault Directive = iota
	// DirectiveForceUnwrap requires unwrapping and fails if no unique
	// extractor exists.
	DirectiveForceUnwrap
	// DirectiveSkip never unwraps.
	DirectiveSkip
)

func (d Directive) String() string {
	switch d {
	case DirectiveDefault:
		return "default"
	case DirectiveForceUnwrap:
		return "force-unwrap"
	case DirectiveSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of a successful query: the selected descriptor
// and the type parameter it was resolved against. TypeParameter is nil for
// element-level unwrapping, which names no type argument.
type Resolution struct {
	Descriptor    *vextract.Descriptor
	Target        vextract.Target
	TypeParameter *vtype.TypeParameter
}

// Resolver answers extraction queries against an immutable Registry.
// Static query results are memoized on first use, errors included; a
// Resolver is safe for concurrent use once bootstrap completed.
type Resolver struct {
	registry *Registry
	log      *slog.Logger

	typeArgs sync.Map // typeArgKey -> *cached
	cascades sync.Map // reflect.Type -> *cachedSet
}

type typeArgKey struct {
	container *vtype.ContainerType
	param     int
}

type cached struct {
	res *Resolution
	err error
}

type cachedSet struct {
	res []*Resolution
	err error
}

// NewResolver creates a resolver over the given registry snapshot.
func NewResolver(registry *Registry, log *slog.Logger) *Resolver {
	return &Resolver{registry: registry, log: log}
}

// TypeArgument resolves the extractor for a constraint attached to the
// declared type parameter index of t. A pure function of static type
// information, memoized per (t, index).
func (r *Resolver) TypeArgument(t *vtype.ContainerType, index int) (*Resolution, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: no declared container type", ErrDeclaration)
	}
	k := typeArgKey{container: t, param: index}
	if v, ok := r.typeArgs.Load(k); ok {
		c := v.(*cached)
		return c.res, c.err
	}
	res, err := r.resolveTypeArgument(t, index)
	v, _ := r.typeArgs.LoadOrStore(k, &cached{res: res, err: err})
	c := v.(*cached)
	return c.res, c.err
}

func (r *Resolver) resolveTypeArgument(t *vtype.ContainerType, index int) (*Resolution, error) {
	p := t.Parameter(index)
	if p == nil {
		return nil, fmt.Errorf("%w: %s has no type parameter %d", ErrDeclaration, t.Name(), index)
	}
	b := vtype.ResolveBindings(t)
	var filtered []Candidate
	for _, c := range r.registry.CandidatesFor(t) {
		if c.Target.Kind != vextract.TargetParam {
			continue
		}
		if b.MapsOnto(index, c.Target.Param) {
			filtered = append(filtered, c)
		}
	}
	winners := maximal(filtered)
	switch len(winners) {
	case 0:
		r.log.Debug("no extractor", "container", t.Name(), "param", index)
		return nil, nil
	case 1:
		w := winners[0]
		r.log.Debug("resolved extractor", "container", t.Name(), "param", index, "extractor", w.Desc.String())
		return &Resolution{Descriptor: w.Desc, Target: w.Target, TypeParameter: p}, nil
	default:
		return nil, ambiguityError(t, winners)
	}
}

// Cascade resolves the extractors that supply the values cascaded
// validation recurses into, against the value's runtime type. Every
// maximally specific extractor is returned (a map yields both its key and
// value extractors); two incomparable extractors claiming the same
// extraction position fail with ErrAmbiguousExtractor. Results are
// memoized per exact runtime type, never shared with static queries.
func (r *Resolver) Cascade(rt reflect.Type) ([]*Resolution, error) {
	if rt == nil {
		return nil, fmt.Errorf("%w: no runtime type", ErrDeclaration)
	}
	if v, ok := r.cascades.Load(rt); ok {
		c := v.(*cachedSet)
		return c.res, c.err
	}
	res, err := r.resolveCascade(rt)
	v, _ := r.cascades.LoadOrStore(rt, &cachedSet{res: res, err: err})
	c := v.(*cachedSet)
	return c.res, c.err
}

func (r *Resolver) resolveCascade(rt reflect.Type) ([]*Resolution, error) {
	winners := maximal(r.registry.CandidatesForRuntime(rt))
	byParam := make(map[*vtype.TypeParameter]int)
	for _, w := range winners {
		if w.Target.Kind != vextract.TargetParam {
			continue
		}
		byParam[w.Target.Param]++
		if byParam[w.Target.Param] > 1 {
			return nil, ambiguityErrorRuntime(rt, winners)
		}
	}
	out := make([]*Resolution, 0, len(winners))
	for _, w := range winners {
		out = append(out, &Resolution{Descriptor: w.Desc, Target: w.Target, TypeParameter: w.Target.Param})
	}
	r.log.Debug("resolved cascade extractors", "runtimeType", rt.String(), "count", len(out))
	return out, nil
}

// Element resolves implicit element-level unwrapping for a declared type
// per the directive. A nil resolution with a nil error is the normal "no
// extractor" outcome: plain validation proceeds on the element itself.
func (r *Resolver) Element(t *vtype.ContainerType, directive Directive) (*Resolution, error) {
	if directive == DirectiveSkip {
		return nil, nil
	}
	if t == nil {
		return nil, fmt.Errorf("%w: no declared container type", ErrDeclaration)
	}
	unique := vtype.ResolveBindings(t).UniqueParams()
	switch directive {
	case DirectiveForceUnwrap:
		if len(unique) != 1 {
			return nil, fmt.Errorf("%w: forced unwrapping of %s: %d unwrappable type parameters, want exactly one",
				ErrDeclaration, t.Name(), len(unique))
		}
		res, err := r.TypeArgument(t, unique[0].Index())
		if err != nil {
			return nil, fmt.Errorf("%w: forced unwrapping of %s: %v", ErrDeclaration, t.Name(), err)
		}
		if res == nil {
			return nil, fmt.Errorf("%w: forced unwrapping of %s: no extractor for %s",
				ErrDeclaration, t.Name(), unique[0])
		}
		return &Resolution{Descriptor: res.Descriptor, Target: res.Target}, nil
	case DirectiveDefault:
		if len(unique) != 1 {
			return nil, nil
		}
		res, err := r.TypeArgument(t, unique[0].Index())
		if err != nil {
			return nil, fmt.Errorf("%w: implicit unwrapping of %s: %v", ErrDeclaration, t.Name(), err)
		}
		if res == nil || !res.Descriptor.UnwrapsByDefault() {
			return nil, nil
		}
		return &Resolution{Descriptor: res.Descriptor, Target: res.Target}, nil
	default:
		return nil, fmt.Errorf("%w: unknown unwrapping directive %d", ErrDeclaration, int(directive))
	}
}

// maximal keeps the maximally specific candidates: those no other
// candidate's container type is a proper subtype of. Input order is
// preserved, which keeps results and error messages deterministic.
func maximal(cands []Candidate) []Candidate {
	var out []Candidate
	for i, c := range cands {
		dominated := false
		for j, o := range cands {
			if i == j {
				continue
			}
			if vtype.ProperSubtype(o.Desc.Container(), c.Desc.Container()) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, c)
		}
	}
	return out
}

func ambiguityError(t *vtype.ContainerType, cands []Candidate) error {
	return fmt.Errorf("%w: %s: incomparable candidates: %s",
		ErrAmbiguousExtractor, t.Name(), candidateNames(cands))
}

func ambiguityErrorRuntime(rt reflect.Type, cands []Candidate) error {
	return fmt.Errorf("%w: runtime type %s: incomparable candidates: %s",
		ErrAmbiguousExtractor, rt.String(), candidateNames(cands))
}

func candidateNames(cands []Candidate) string {
	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = c.Desc.String()
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}
