// Package extract copies renderable billboard state out of the scene once per
// frame and publishes it to the render side as an immutable batch.
package extract

import (
	"fmt"

	"github.com/Faultbox/midgard-billboard/internal/assets"
	"github.com/Faultbox/midgard-billboard/internal/engine/billboard"
	"github.com/Faultbox/midgard-billboard/internal/engine/orientation"
	"github.com/Faultbox/midgard-billboard/internal/engine/scene"
)

// Kind tells textured and text records apart.
type Kind int

const (
	KindTextured Kind = iota
	KindText
)

func (k Kind) String() string {
	if k == KindText {
		return "text"
	}
	return "textured"
}

// RenderID is the render-side identity of a record. Group is always zero
// unless distinct group identities are enabled.
type RenderID struct {
	Entity scene.Entity
	Kind   Kind
	Group  int
}

func (id RenderID) String() string {
	return fmt.Sprintf("%s/%s/%d", id.Entity, id.Kind, id.Group)
}

// Record describes how to draw one mesh with one texture this frame.
type Record struct {
	ID          RenderID
	Orientation orientation.Descriptor
	Mesh        assets.MeshHandle
	Texture     assets.ImageHandle
	Depth       bool
	Mode        billboard.Mode
}

// Kind returns the record variant.
func (r Record) Kind() Kind { return r.ID.Kind }

// Batch is one frame of records. A published batch is never modified.
type Batch struct {
	Frame   uint64
	records []Record
	index   map[RenderID]int
}

func newBatch(frame uint64, capacity int) *Batch {
	return &Batch{
		Frame:   frame,
		records: make([]Record, 0, capacity),
		index:   make(map[RenderID]int, capacity),
	}
}

// put inserts r, replacing any earlier record with the same identity.
func (b *Batch) put(r Record) {
	if i, ok := b.index[r.ID]; ok {
		b.records[i] = r
		return
	}
	b.index[r.ID] = len(b.records)
	b.records = append(b.records, r)
}

// Len returns the number of records.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.records)
}

// Records returns the records in extraction order. Callers must not modify them.
func (b *Batch) Records() []Record {
	if b == nil {
		return nil
	}
	return b.records
}

// Lookup finds the record for id.
func (b *Batch) Lookup(id RenderID) (Record, bool) {
	if b == nil {
		return Record{}, false
	}
	i, ok := b.index[id]
	if !ok {
		return Record{}, false
	}
	return b.records[i], true
}
