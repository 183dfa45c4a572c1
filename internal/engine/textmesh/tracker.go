// Package textmesh keeps billboard text geometry in sync with scene state.
//
// A Tracker flags text roots whose layout inputs changed; a Builder lays the
// flagged roots out again and replaces their mesh groups.
package textmesh

import (
	"github.com/Faultbox/midgard-billboard/internal/engine/scene"
)

// Tracker detects stale text roots from component change ticks.
type Tracker struct {
	lastRun uint64
}

// NewTracker returns a tracker that treats everything as changed on its first run.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Run sets Dirty on every text root whose text, colour, layout, bounds or
// anchor changed since the previous run, that requested a rerender, or that
// has a changed span below it. It returns how many roots it newly marked and
// starts a new change tick so later edits are seen by the next run.
func (t *Tracker) Run(w *scene.World) int {
	since := t.lastRun
	marked := 0

	mark := func(n *scene.Node) {
		if !n.Dirty {
			n.Dirty = true
			marked++
		}
	}

	w.Each(func(_ scene.Entity, n *scene.Node) bool {
		if n.Text != nil && n.OwnsLayout && rootChanged(n, since) {
			mark(n)
		}
		if n.Span != nil && n.ChangedSince(scene.ChangeSpan, since) {
			if root, ok := owner(w, n.Parent); ok {
				mark(root)
			}
		}
		return true
	})

	t.lastRun = w.Tick()
	w.Advance()
	return marked
}

func rootChanged(n *scene.Node, since uint64) bool {
	return n.NeedsRerender ||
		n.ChangedSince(scene.ChangeText, since) ||
		n.ChangedSince(scene.ChangeSpan, since) ||
		n.ChangedSince(scene.ChangeLayout, since) ||
		n.ChangedSince(scene.ChangeBounds, since) ||
		n.ChangedSince(scene.ChangeAnchor, since)
}

// owner walks up from e to the node owning the computed layout. The walk
// gives up on a missing ancestor or one that is neither a span nor the owner.
func owner(w *scene.World, e scene.Entity) (*scene.Node, bool) {
	for {
		n, ok := w.Get(e)
		if !ok {
			return nil, false
		}
		if n.OwnsLayout {
			return n, true
		}
		if n.Span == nil {
			return nil, false
		}
		e = n.Parent
	}
}
