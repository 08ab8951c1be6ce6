// Package vpath describes the location of a validated value as a sequence
// of path nodes, the way a violation report addresses it.
package vpath

import (
	"fmt"
	"strings"

	"github.com/vext-go/vext/vtype"
)

// Kind discriminates path node flavors.
type Kind int

const (
	KindBean Kind = iota
	KindProperty
	KindTypeArgument
)

func (k Kind) String() string {
	switch k {
	case KindBean:
		return "Bean"
	case KindProperty:
		return "Property"
	case KindTypeArgument:
		return "TypeArgument"
	default:
		return "Unknown"
	}
}

// Node is one segment of a violation's location descriptor. Index and Key
// are set only for values addressed by position or key; TypeParameter
// references the parameter an extractor was resolved against and is nil
// for element-level unwrapping.
type Node struct {
	Kind          Kind
	Name          string
	Index         *int
	Key           any
	InIterable    bool
	TypeParameter *vtype.TypeParameter
}

// Property builds a property node.
func Property(name string) Node {
	return Node{Kind: KindProperty, Name: name}
}

// Bean builds the root node of a validated object graph.
func Bean() Node {
	return Node{Kind: KindBean}
}

// Path is an immutable sequence of nodes. The zero value is the empty
// path. Append copies, so extending a path during extraction never aliases
// the caller's copy.
type Path struct {
	nodes []Node
}

// New builds a path from the given nodes.
func New(nodes ...Node) Path {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return Path{nodes: out}
}

// Append returns a new path with n added as the leaf.
func (p Path) Append(n Node) Path {
	out := make([]Node, len(p.nodes)+1)
	copy(out, p.nodes)
	out[len(p.nodes)] = n
	return Path{nodes: out}
}

// Len returns the number of nodes.
func (p Path) Len() int { return len(p.nodes) }

// Nodes returns a copy of the path's nodes.
func (p Path) Nodes() []Node {
	out := make([]Node, len(p.nodes))
	copy(out, p.nodes)
	return out
}

// Leaf returns the last node, if any.
func (p Path) Leaf() (Node, bool) {
	if len(p.nodes) == 0 {
		return Node{}, false
	}
	return p.nodes[len(p.nodes)-1], true
}

// String renders the path in property-path notation, e.g.
// "orders[2].<map key>". Nodes without a name (bean roots, unwrapped
// wrappers) contribute no segment.
func (p Path) String() string {
	segments := make([]string, 0, len(p.nodes))
	for _, n := range p.nodes {
		s := n.Name
		switch {
		case n.Index != nil:
			s += fmt.Sprintf("[%d]", *n.Index)
		case n.Key != nil:
			s += fmt.Sprintf("[%v]", n.Key)
		}
		if s != "" {
			segments = append(segments, s)
		}
	}
	return strings.Join(segments, ".")
}
