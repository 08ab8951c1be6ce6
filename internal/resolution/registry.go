package resolution

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/vext-go/vext/vextract"
	"github.com/vext-go/vext/vtype"
)

// key identifies one registered extraction position: a container type plus
// the part of it the extractor pulls out.
type key struct {
	container *vtype.ContainerType
	kind      vextract.TargetKind
	param     *vtype.TypeParameter
}

func keyOf(c *vtype.ContainerType, t vextract.Target) key {
	return key{container: c, kind: t.Kind, param: t.Param}
}

func (k key) String() string {
	if k.kind == vextract.TargetParam && k.param != nil {
		return fmt.Sprintf("%s/%s", k.container.Name(), k.param)
	}
	return fmt.Sprintf("%s/%s", k.container.Name(), k.kind)
}

// Candidate pairs a registered descriptor with its resolved target.
type Candidate struct {
	Desc   *vextract.Descriptor
	Target vextract.Target
}

// Builder assembles an immutable Registry.
//
// Builder is NOT safe for concurrent use; registration happens during
// single-threaded bootstrap. The built Registry is immutable and safe to
// share across any number of goroutines.
type Builder struct {
	levels [vextract.NumLevels]map[key]Candidate
}

// NewBuilder creates an empty registry builder.
func NewBuilder() *Builder {
	b := &Builder{}
	for i := range b.levels {
		b.levels[i] = make(map[key]Candidate)
	}
	return b
}

// Register adds a descriptor at the given precedence level. Every
// structural problem is rejected here, at bootstrap, never mid-validation:
// a missing or duplicated extracted marker, a marker on a closed position,
// or a second descriptor claiming the same position at the same level.
func (b *Builder) Register(d *vextract.Descriptor, level vextract.PrecedenceLevel) error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", vextract.ErrDefinition)
	}
	if !level.Valid() {
		return fmt.Errorf("%w: %s: invalid precedence level %d", vextract.ErrDefinition, d, int(level))
	}
	target, err := d.Validate()
	if err != nil {
		return err
	}
	k := keyOf(d.Container(), target)
	if prev, ok := b.levels[level][k]; ok {
		return fmt.Errorf("%w: %s and %s both claim %s at level %s",
			vextract.ErrDefinition, prev.Desc, d, k, level)
	}
	b.levels[level][k] = Candidate{Desc: d, Target: target}
	return nil
}

// MustRegister is like Register but panics on error.
func (b *Builder) MustRegister(d *vextract.Descriptor, level vextract.PrecedenceLevel) {
	if err := b.Register(d, level); err != nil {
		panic(err)
	}
}

// Build freezes the builder into an immutable Registry snapshot. The
// builder can keep registering afterward; later Build calls produce
// independent snapshots.
func (b *Builder) Build() *Registry {
	r := &Registry{}
	seen := make(map[*vtype.ContainerType]bool)
	for i := range b.levels {
		r.levels[i] = maps.Clone(b.levels[i])
		for k := range b.levels[i] {
			for _, anc := range vtype.Ancestors(k.container) {
				if !seen[anc] {
					seen[anc] = true
					r.containers = append(r.containers, anc)
				}
			}
		}
	}
	slices.SortFunc(r.containers, func(a, b *vtype.ContainerType) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return r
}

// Registry is an immutable snapshot of registered extractors, one map per
// precedence level. Lookup stops at the first level containing a key;
// lower levels are fully shadowed, never merged.
type Registry struct {
	levels     [vextract.NumLevels]map[key]Candidate
	containers []*vtype.ContainerType
}

func (r *Registry) lookup(k key) (Candidate, bool) {
	for _, level := range r.levels {
		if c, ok := level[k]; ok {
			return c, true
		}
	}
	return Candidate{}, false
}

// keys returns every registered key in deterministic order.
func (r *Registry) keys() []key {
	set := make(map[key]struct{})
	for _, level := range r.levels {
		for k := range level {
			set[k] = struct{}{}
		}
	}
	ks := maps.Keys(set)
	slices.SortFunc(ks, func(a, b key) int {
		return strings.Compare(a.String(), b.String())
	})
	return ks
}

// CandidatesFor returns, for every extraction position reachable in t's
// hierarchy, the single highest-precedence descriptor registered for it.
// Positions no level claims contribute nothing.
func (r *Registry) CandidatesFor(t *vtype.ContainerType) []Candidate {
	anc := make(map[*vtype.ContainerType]bool)
	for _, a := range vtype.Ancestors(t) {
		anc[a] = true
	}
	return r.candidates(anc)
}

// CandidatesForRuntime returns the candidates applicable to a value of the
// given runtime Go type: every extractor registered for a container type
// the runtime type matches, or for one of its ancestors.
func (r *Registry) CandidatesForRuntime(rt reflect.Type) []Candidate {
	anc := make(map[*vtype.ContainerType]bool)
	for _, c := range r.containers {
		if c.Matches(rt) {
			for _, a := range vtype.Ancestors(c) {
				anc[a] = true
			}
		}
	}
	return r.candidates(anc)
}

func (r *Registry) candidates(containers map[*vtype.ContainerType]bool) []Candidate {
	var out []Candidate
	for _, k := range r.keys() {
		if !containers[k.container] {
			continue
		}
		if c, ok := r.lookup(k); ok {
			out = append(out, c)
		}
	}
	return out
}
