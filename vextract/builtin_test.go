package vextract

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

type call struct {
	name  string
	index *int
	key   any
	value any
}

// recorder captures receiver calls in order.
type recorder struct {
	calls []call
}

func (r *recorder) Value(name string, value any) {
	r.calls = append(r.calls, call{name: name, value: value})
}

func (r *recorder) IterableValue(name string, value any) {
	r.calls = append(r.calls, call{name: name, value: value})
}

func (r *recorder) IndexedValue(name string, index int, value any) {
	i := index
	r.calls = append(r.calls, call{name: name, index: &i, value: value})
}

func (r *recorder) KeyedValue(name string, key any, value any) {
	r.calls = append(r.calls, call{name: name, key: key, value: value})
}

func idx(i int) *int { return &i }

type sliceIterator struct{ elements []any }

func (s sliceIterator) ForEach(yield func(any) bool) {
	for _, e := range s.elements {
		if !yield(e) {
			return
		}
	}
}

type box struct{ value any }

func (b box) WrappedValue() (any, bool) { return b.value, b.value != nil }

func TestArrayElement(t *testing.T) {
	rec := &recorder{}
	assert.NoError(t, ArrayElement.Extract()([2]string{"a", "b"}, rec))
	assert.Equal(t, []call{
		{name: IterableElementNode, index: idx(0), value: "a"},
		{name: IterableElementNode, index: idx(1), value: "b"},
	}, rec.calls)
	assert.False(t, ArrayElement.InIterable())

	err := ArrayElement.Extract()("not an array", &recorder{})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestSliceElement(t *testing.T) {
	rec := &recorder{}
	assert.NoError(t, SliceElement.Extract()([]int{7, 8}, rec))
	assert.Equal(t, []call{
		{name: IterableElementNode, index: idx(0), value: 7},
		{name: IterableElementNode, index: idx(1), value: 8},
	}, rec.calls)
	assert.True(t, SliceElement.InIterable())

	err := SliceElement.Extract()(42, &recorder{})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestIterableElement(t *testing.T) {
	rec := &recorder{}
	assert.NoError(t, IterableElement.Extract()(sliceIterator{elements: []any{"x", "y"}}, rec))
	assert.Equal(t, []call{
		{name: IterableElementNode, value: "x"},
		{name: IterableElementNode, value: "y"},
	}, rec.calls)
	assert.True(t, IterableElement.InIterable())
}

func TestMapKey(t *testing.T) {
	rec := &recorder{}
	assert.NoError(t, MapKey.Extract()(map[string]int{"b": 2, "a": 1}, rec))
	// keys come out sorted regardless of map iteration order
	assert.Equal(t, []call{
		{name: MapKeyNode, key: "a", value: "a"},
		{name: MapKeyNode, key: "b", value: "b"},
	}, rec.calls)
}

func TestMapValue(t *testing.T) {
	rec := &recorder{}
	assert.NoError(t, MapValue.Extract()(map[string]int{"b": 2, "a": 1}, rec))
	assert.Equal(t, []call{
		{name: MapValueNode, key: "a", value: 1},
		{name: MapValueNode, key: "b", value: 2},
	}, rec.calls)

	err := MapValue.Extract()([]int{1}, &recorder{})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestWrappedElement(t *testing.T) {
	t.Run("present value occupies the wrapper position", func(t *testing.T) {
		rec := &recorder{}
		assert.NoError(t, WrappedElement.Extract()(box{value: "inner"}, rec))
		assert.Equal(t, []call{{name: "", value: "inner"}}, rec.calls)
	})

	t.Run("absent value produces nothing", func(t *testing.T) {
		rec := &recorder{}
		assert.NoError(t, WrappedElement.Extract()(box{}, rec))
		assert.Equal(t, 0, len(rec.calls))
	})

	assert.True(t, WrappedElement.UnwrapsByDefault())
}

func TestObjectValue(t *testing.T) {
	rec := &recorder{}
	assert.NoError(t, ObjectValue.Extract()("anything", rec))
	assert.Equal(t, []call{{name: "", value: "anything"}}, rec.calls)
}

func TestBuiltinsValidate(t *testing.T) {
	for _, d := range Builtins() {
		t.Run(d.String(), func(t *testing.T) {
			_, err := d.Validate()
			assert.NoError(t, err)
		})
	}
}
