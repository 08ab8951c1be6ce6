package vpath

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestPathAppend(t *testing.T) {
	base := New(Property("orders"))
	two := 2
	extended := base.Append(Node{Kind: KindTypeArgument, Name: "<iterable element>", Index: &two})

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, extended.Len())

	// extending the original again must not alias the first extension
	other := base.Append(Property("total"))
	assert.Equal(t, "orders.total", other.String())
	assert.Equal(t, "orders.<iterable element>[2]", extended.String())
}

func TestPathLeaf(t *testing.T) {
	_, ok := Path{}.Leaf()
	assert.False(t, ok)

	leaf, ok := New(Bean(), Property("name")).Leaf()
	assert.True(t, ok)
	assert.Equal(t, KindProperty, leaf.Kind)
	assert.Equal(t, "name", leaf.Name)
}

func TestPathString(t *testing.T) {
	one := 1
	cases := []struct {
		name string
		path Path
		want string
	}{
		{"empty", Path{}, ""},
		{"single property", New(Property("name")), "name"},
		{"bean root contributes nothing", New(Bean(), Property("name")), "name"},
		{"indexed node", New(Property("items"), Node{Kind: KindTypeArgument, Name: "<iterable element>", Index: &one}), "items.<iterable element>[1]"},
		{"keyed node", New(Property("scores"), Node{Kind: KindTypeArgument, Name: "<map value>", Key: "alice"}), "scores.<map value>[alice]"},
		{"unnamed node contributes nothing", New(Property("opt"), Node{Kind: KindTypeArgument}), "opt"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.path.String())
		})
	}
}

func TestNodesCopies(t *testing.T) {
	p := New(Property("a"), Property("b"))
	nodes := p.Nodes()
	nodes[0].Name = "mutated"
	assert.Equal(t, "a.b", p.String())
}
