// Package engine drives the extraction callback protocol: it invokes a
// resolved extractor and turns receiver callbacks into path nodes and
// visitor calls.
package engine

import (
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/vext-go/vext/internal/resolution"
	"github.com/vext-go/vext/vpath"
)

// Visitor receives each extracted value together with the path leading to
// it.
type Visitor func(path vpath.Path, value any) error

// Engine holds no per-extraction state and is safe for concurrent and
// re-entrant use: an extracted value that is itself a container can be fed
// straight back into Extract with a fresh resolution.
type Engine struct {
	log *slog.Logger
}

// New creates an extraction engine.
func New(log *slog.Logger) *Engine {
	return &Engine{log: log}
}

// Extract runs the resolved extractor over container. Each value the
// extractor hands back is passed to visit; values announced with an empty
// node name are visited at base itself, no node appended. A nil resolution
// means "no extractor": the container itself is visited at base. The first
// visitor error stops further reporting and is returned once the extractor
// finishes, combined with the extractor's own error if it also failed.
func (e *Engine) Extract(res *resolution.Resolution, container any, base vpath.Path, visit Visitor) error {
	if res == nil {
		return visit(base, container)
	}
	rec := &receiver{res: res, base: base, visit: visit}
	if err := res.Descriptor.Extract()(container, rec); err != nil {
		return multierr.Append(rec.err, fmt.Errorf("extractor %s: %w", res.Descriptor, err))
	}
	return rec.err
}

// receiver adapts the vextract.ValueReceiver callbacks to path
// construction. One receiver serves exactly one extraction.
type receiver struct {
	res   *resolution.Resolution
	base  vpath.Path
	visit Visitor
	err   error
}

func (r *receiver) Value(name string, value any) {
	r.emit(name, nil, nil, value)
}

func (r *receiver) IterableValue(name string, value any) {
	r.emit(name, nil, nil, value)
}

func (r *receiver) IndexedValue(name string, index int, value any) {
	idx := index
	r.emit(name, &idx, nil, value)
}

func (r *receiver) KeyedValue(name string, key any, value any) {
	r.emit(name, nil, key, value)
}

func (r *receiver) emit(name string, index *int, key any, value any) {
	if r.err != nil {
		return
	}
	if name == "" {
		// Pure wrapper unwrap: the value occupies the container's own
		// path position.
		r.err = r.visit(r.base, value)
		return
	}
	node := vpath.Node{
		Kind:          vpath.KindTypeArgument,
		Name:          name,
		Index:         index,
		Key:           key,
		InIterable:    r.res.Descriptor.InIterable(),
		TypeParameter: r.res.TypeParameter,
	}
	r.err = r.visit(r.base.Append(node), value)
}
