// Package scene is a small entity arena holding the transform hierarchy,
// visibility and billboard components the renderer reads each frame.
package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/midgard-billboard/internal/engine/billboard"
	"github.com/Faultbox/midgard-billboard/internal/engine/text"
	"github.com/Faultbox/midgard-billboard/pkg/math"
)

// ErrNoEntity is returned when an entity id is stale or was never spawned.
var ErrNoEntity = errors.New("no such entity")

// Entity identifies a node in a World. Generations make stale ids detectable
// after their slot is reused. The zero value is never a live entity.
type Entity struct {
	Index      uint32
	Generation uint32
}

func (e Entity) String() string {
	return fmt.Sprintf("%dv%d", e.Index, e.Generation)
}

// Visibility is the user-set visibility of a node.
type Visibility int

const (
	VisibilityInherited Visibility = iota // Same as the parent; visible at the root
	VisibilityVisible
	VisibilityHidden
)

// Change identifies a component whose modification is tracked.
type Change int

const (
	ChangeText Change = iota // Text value, font or colour
	ChangeLayout
	ChangeBounds
	ChangeAnchor
	ChangeSpan
	ChangeTextured
	ChangeTransform
	numChanges
)

// Node is one entity's data. Optional components are nil when absent.
type Node struct {
	Parent   Entity
	Children []Entity

	Local  math.Transform
	Global math.Transform

	Visibility Visibility
	// Culled hides the node from the current view without touching Visibility.
	Culled bool

	Textured *billboard.Textured
	Text     *billboard.Text
	Span     *billboard.TextSpan
	Layout   text.Layout
	Bounds   billboard.TextBounds
	Anchor   billboard.Anchor
	Depth    *billboard.Depth
	LockAxis *billboard.LockAxis

	// OwnsLayout is set on text roots; span dirtiness propagates up to it.
	OwnsLayout bool
	// NeedsRerender asks for a rebuild regardless of change ticks.
	NeedsRerender bool
	// Dirty is set by the change tracker and cleared after a successful rebuild.
	Dirty bool
	Cache billboard.TextMeshCache

	viewVisible bool
	ticks       [numChanges]uint64
}

// ViewVisible reports the computed visibility from the last PropagateVisibility.
func (n *Node) ViewVisible() bool { return n.viewVisible }

// ChangedSince reports whether c was modified after tick.
func (n *Node) ChangedSince(c Change, tick uint64) bool {
	return n.ticks[c] > tick
}

type slot struct {
	gen   uint32
	alive bool
	node  Node
}

// World is an arena of nodes addressed by Entity. Node pointers stay valid
// until the next Spawn. A World is not safe for concurrent mutation; the
// frame pipeline runs mutation and extraction in separate phases.
type World struct {
	slots []slot
	free  []uint32
	roots []Entity
	tick  uint64
}

// NewWorld creates an empty world. Slot 0 is reserved so the zero Entity is invalid.
func NewWorld() *World {
	return &World{slots: make([]slot, 1), tick: 1}
}

// Tick returns the current change tick.
func (w *World) Tick() uint64 { return w.tick }

// Advance starts a new change tick and returns it.
func (w *World) Advance() uint64 {
	w.tick++
	return w.tick
}

// Spawn creates a root entity with an identity transform.
func (w *World) Spawn() Entity {
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		w.slots = append(w.slots, slot{})
		idx = uint32(len(w.slots) - 1)
	}

	s := &w.slots[idx]
	s.gen++
	s.alive = true
	s.node = Node{Local: math.TransformIdentity(), Global: math.TransformIdentity()}

	e := Entity{Index: idx, Generation: s.gen}
	w.roots = append(w.roots, e)
	w.touch(&s.node, ChangeTransform)
	return e
}

// SpawnChild creates an entity parented under parent.
func (w *World) SpawnChild(parent Entity) (Entity, error) {
	if !w.Alive(parent) {
		return Entity{}, fmt.Errorf("%w: parent %s", ErrNoEntity, parent)
	}
	e := w.Spawn()
	if err := w.SetParent(e, parent); err != nil {
		return Entity{}, err
	}
	return e, nil
}

// Despawn removes e and its descendants.
func (w *World) Despawn(e Entity) {
	n, ok := w.Get(e)
	if !ok {
		return
	}
	for _, c := range append([]Entity(nil), n.Children...) {
		w.Despawn(c)
	}
	w.detach(e, n)

	s := &w.slots[e.Index]
	s.alive = false
	s.node = Node{}
	w.free = append(w.free, e.Index)
}

// Alive reports whether e refers to a live node.
func (w *World) Alive(e Entity) bool {
	if e.Index == 0 || int(e.Index) >= len(w.slots) {
		return false
	}
	s := &w.slots[e.Index]
	return s.alive && s.gen == e.Generation
}

// Get returns the node of a live entity.
func (w *World) Get(e Entity) (*Node, bool) {
	if !w.Alive(e) {
		return nil, false
	}
	return &w.slots[e.Index].node, true
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return len(w.slots) - 1 - len(w.free)
}

// Each calls fn for every live entity in index order until fn returns false.
func (w *World) Each(fn func(Entity, *Node) bool) {
	for i := 1; i < len(w.slots); i++ {
		s := &w.slots[i]
		if !s.alive {
			continue
		}
		if !fn(Entity{Index: uint32(i), Generation: s.gen}, &s.node) {
			return
		}
	}
}

// SetParent moves child under parent. A zero parent makes child a root.
func (w *World) SetParent(child, parent Entity) error {
	n, ok := w.Get(child)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoEntity, child)
	}
	var p *Node
	if parent != (Entity{}) {
		if p, ok = w.Get(parent); !ok {
			return fmt.Errorf("%w: parent %s", ErrNoEntity, parent)
		}
		for a := parent; a != (Entity{}); {
			if a == child {
				return fmt.Errorf("parent %s is a descendant of %s", parent, child)
			}
			an, ok := w.Get(a)
			if !ok {
				break
			}
			a = an.Parent
		}
	}

	w.detach(child, n)
	n.Parent = parent
	if p != nil {
		p.Children = append(p.Children, child)
	} else {
		w.roots = append(w.roots, child)
	}
	w.touch(n, ChangeTransform)
	if n.Span != nil {
		w.touch(n, ChangeSpan)
	}
	return nil
}

func (w *World) detach(e Entity, n *Node) {
	if p, ok := w.Get(n.Parent); ok {
		p.Children = remove(p.Children, e)
		// The layout owning a removed span has to be rebuilt.
		if n.Span != nil {
			w.touch(p, ChangeSpan)
		}
	} else {
		w.roots = remove(w.roots, e)
	}
	n.Parent = Entity{}
}

func remove(list []Entity, e Entity) []Entity {
	for i, x := range list {
		if x == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (w *World) touch(n *Node, c Change) {
	n.ticks[c] = w.tick
}

// MarkChanged flags c as modified on e this tick.
func (w *World) MarkChanged(e Entity, c Change) {
	if n, ok := w.Get(e); ok {
		w.touch(n, c)
	}
}
