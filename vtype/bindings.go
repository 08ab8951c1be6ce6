package vtype

import "slices"

// binding records how one type parameter position is instantiated as seen
// from the root of a bindings query: the set of root parameters that reach
// it, plus whether any path leaves it open (wildcard) or closes it with a
// concrete type argument.
type binding struct {
	params   map[int]struct{}
	wildcard bool
	concrete bool
}

func newBinding() *binding {
	return &binding{params: make(map[int]struct{})}
}

// Bindings is the result of resolving a container type's parameter
// bindings across its whole supertype hierarchy. Every query builds a
// fresh Bindings and nothing is shared or mutated afterward, so results
// can be used from any goroutine.
type Bindings struct {
	root *ContainerType
	pos  map[*TypeParameter]*binding
}

// ResolveBindings walks root's supertype DAG and computes, for every type
// parameter reachable in the hierarchy (root's own included), the set of
// root parameters that supply its type argument. Fan-out is retained in
// full; fan-in across diamond paths is merged into a single position.
func ResolveBindings(root *ContainerType) *Bindings {
	b := &Bindings{root: root, pos: make(map[*TypeParameter]*binding)}
	subst := make(map[int]*binding, len(root.params))
	for i, p := range root.params {
		own := newBinding()
		own.params[i] = struct{}{}
		b.pos[p] = own
		sub := newBinding()
		sub.params[i] = struct{}{}
		subst[i] = sub
	}
	b.walk(root, subst)
	return b
}

// walk composes substitutions along every supertype edge. subst maps the
// current type's parameter indices to the root parameters that instantiate
// them.
func (b *Bindings) walk(cur *ContainerType, subst map[int]*binding) {
	for _, edge := range cur.supers {
		next := make(map[int]*binding, len(edge.super.params))
		for j, sp := range edge.super.params {
			in := newBinding()
			switch arg := edge.args[j]; arg.kind {
			case argParam:
				if s := subst[arg.param]; s != nil {
					for i := range s.params {
						in.params[i] = struct{}{}
					}
					in.wildcard = s.wildcard
					in.concrete = s.concrete
				}
			case argWildcard:
				in.wildcard = true
			case argConcrete:
				in.concrete = true
			}
			b.merge(sp, in)
			next[j] = in
		}
		b.walk(edge.super, next)
	}
}

func (b *Bindings) merge(p *TypeParameter, in *binding) {
	o := b.pos[p]
	if o == nil {
		o = newBinding()
		b.pos[p] = o
	}
	for i := range in.params {
		o.params[i] = struct{}{}
	}
	o.wildcard = o.wildcard || in.wildcard
	o.concrete = o.concrete || in.concrete
}

// Root returns the container type the bindings were resolved for.
func (b *Bindings) Root() *ContainerType { return b.root }

// Contains reports whether target is a position in root's hierarchy.
func (b *Bindings) Contains(target *TypeParameter) bool {
	return b.pos[target] != nil
}

// Open reports whether target is an open position as seen from root: part
// of root's hierarchy and not closed by a concrete type argument on any
// path.
func (b *Bindings) Open(target *TypeParameter) bool {
	o := b.pos[target]
	return o != nil && !o.concrete
}

// MapsOnto reports whether root parameter i supplies the type argument
// bound to target anywhere in the hierarchy. A single root parameter may
// map onto several ancestor parameters (fan-out).
func (b *Bindings) MapsOnto(i int, target *TypeParameter) bool {
	o := b.pos[target]
	if o == nil {
		return false
	}
	_, ok := o.params[i]
	return ok
}

// OriginOf returns the indices of the root parameters that supply the
// type argument bound to target, in ascending order. Positions closed by
// a concrete type argument or left open only by wildcards have no origin.
func (b *Bindings) OriginOf(target *TypeParameter) []int {
	o := b.pos[target]
	if o == nil || o.concrete {
		return nil
	}
	out := make([]int, 0, len(o.params))
	for i := range o.params {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// UniqueParams returns root's own parameters that can serve as the single
// auto-detected extraction target: parameters none of whose reachable
// positions is also supplied by another root parameter. The result is in
// declaration order.
func (b *Bindings) UniqueParams() []*TypeParameter {
	var out []*TypeParameter
	for _, p := range b.root.params {
		if b.uniquelyMapping(p.index) {
			out = append(out, p)
		}
	}
	return out
}

func (b *Bindings) uniquelyMapping(i int) bool {
	for _, o := range b.pos {
		if _, ok := o.params[i]; ok && len(o.params) > 1 {
			return false
		}
	}
	return true
}
