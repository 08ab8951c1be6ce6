package engine

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/vext-go/vext/internal/resolution"
	"github.com/vext-go/vext/vextract"
	"github.com/vext-go/vext/vpath"
	"github.com/vext-go/vext/vtype"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func resolve(t *testing.T, container *vtype.ContainerType, index int) *resolution.Resolution {
	t.Helper()
	b := resolution.NewBuilder()
	for _, d := range vextract.Builtins() {
		b.MustRegister(d, vextract.LevelBuiltin)
	}
	res, err := resolution.NewResolver(b.Build(), slog.New(slog.NewTextHandler(io.Discard, nil))).
		TypeArgument(container, index)
	assert.NoError(t, err)
	assert.NotZero(t, res)
	return res
}

type visited struct {
	path  string
	depth int
	value any
}

func record(visits *[]visited) Visitor {
	return func(p vpath.Path, value any) error {
		*visits = append(*visits, visited{path: p.String(), depth: p.Len(), value: value})
		return nil
	}
}

func TestExtractSlice(t *testing.T) {
	var visits []visited
	base := vpath.New(vpath.Property("tags"))
	err := testEngine(t).Extract(resolve(t, vtype.Slice, 0), []string{"a", "b"}, base, record(&visits))
	assert.NoError(t, err)
	assert.Equal(t, []visited{
		{path: "tags.<iterable element>[0]", depth: 2, value: "a"},
		{path: "tags.<iterable element>[1]", depth: 2, value: "b"},
	}, visits)
}

func TestExtractMap(t *testing.T) {
	var visits []visited
	base := vpath.New(vpath.Property("scores"))
	err := testEngine(t).Extract(resolve(t, vtype.Map, 1), map[string]int{"b": 2, "a": 1}, base, record(&visits))
	assert.NoError(t, err)
	assert.Equal(t, []visited{
		{path: "scores.<map value>[a]", depth: 2, value: 1},
		{path: "scores.<map value>[b]", depth: 2, value: 2},
	}, visits)
}

func TestExtractNodeMetadata(t *testing.T) {
	var leaves []vpath.Node
	visit := func(p vpath.Path, value any) error {
		leaf, ok := p.Leaf()
		assert.True(t, ok)
		leaves = append(leaves, leaf)
		return nil
	}
	err := testEngine(t).Extract(resolve(t, vtype.Slice, 0), []int{7}, vpath.Path{}, visit)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(leaves))
	assert.Equal(t, vpath.KindTypeArgument, leaves[0].Kind)
	assert.True(t, leaves[0].InIterable)
	assert.Equal(t, vtype.Slice.Parameter(0), leaves[0].TypeParameter)
}

type option struct{ value any }

func (o option) WrappedValue() (any, bool) { return o.value, o.value != nil }

func TestExtractWrapperKeepsPathLength(t *testing.T) {
	var visits []visited
	base := vpath.New(vpath.Property("nickname"))
	res := resolve(t, vtype.Wrapper, 0)
	err := testEngine(t).Extract(res, option{value: "zeke"}, base, record(&visits))
	assert.NoError(t, err)
	// the wrapped value sits at the wrapper's own position
	assert.Equal(t, []visited{{path: "nickname", depth: 1, value: "zeke"}}, visits)
}

func TestExtractNilResolution(t *testing.T) {
	var visits []visited
	base := vpath.New(vpath.Property("age"))
	err := testEngine(t).Extract(nil, 41, base, record(&visits))
	assert.NoError(t, err)
	assert.Equal(t, []visited{{path: "age", depth: 1, value: 41}}, visits)
}

func TestExtractVisitorError(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	visit := func(p vpath.Path, value any) error {
		calls++
		return boom
	}
	err := testEngine(t).Extract(resolve(t, vtype.Slice, 0), []int{1, 2, 3}, vpath.Path{}, visit)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	// the first error stops reporting
	assert.Equal(t, 1, calls)
}

func TestExtractVisitorAndExtractorError(t *testing.T) {
	boom := errors.New("boom")
	cut := errors.New("iteration cut short")
	pair := vtype.MustNew("ErrPair", vtype.WithParameters("A", "B"))
	d := vextract.NewDescriptor(pair, func(v any, r vextract.ValueReceiver) error {
		r.Value("<first>", 1)
		return cut
	}, vextract.WithExtractedParam(0))
	target, err := d.Validate()
	assert.NoError(t, err)
	res := &resolution.Resolution{Descriptor: d, Target: target, TypeParameter: pair.Parameter(0)}

	err = testEngine(t).Extract(res, struct{}{}, vpath.Path{}, func(vpath.Path, any) error {
		return boom
	})
	assert.Error(t, err)
	// neither failure hides the other
	assert.True(t, errors.Is(err, boom))
	assert.True(t, errors.Is(err, cut))
}

func TestExtractExtractorError(t *testing.T) {
	err := testEngine(t).Extract(resolve(t, vtype.Slice, 0), "not a slice", vpath.Path{}, record(&[]visited{}))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, vextract.ErrTypeMismatch))
}

func TestExtractReentrant(t *testing.T) {
	e := testEngine(t)
	sliceRes := resolve(t, vtype.Slice, 0)

	var leafVisits []visited
	outer := func(p vpath.Path, value any) error {
		if reflect.TypeOf(value).Kind() == reflect.Slice {
			return e.Extract(sliceRes, value, p, record(&leafVisits))
		}
		return nil
	}

	nested := [][]string{{"a"}, {"b", "c"}}
	err := e.Extract(sliceRes, nested, vpath.New(vpath.Property("groups")), outer)
	assert.NoError(t, err)
	assert.Equal(t, []visited{
		{path: "groups.<iterable element>[0].<iterable element>[0]", depth: 3, value: "a"},
		{path: "groups.<iterable element>[1].<iterable element>[0]", depth: 3, value: "b"},
		{path: "groups.<iterable element>[1].<iterable element>[1]", depth: 3, value: "c"},
	}, leafVisits)
}
