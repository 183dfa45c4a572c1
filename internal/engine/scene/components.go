package scene

import (
	"github.com/Faultbox/midgard-billboard/internal/engine/billboard"
	"github.com/Faultbox/midgard-billboard/internal/engine/text"
	"github.com/Faultbox/midgard-billboard/pkg/math"
)

// SetLocal replaces the local transform of e.
func (w *World) SetLocal(e Entity, t math.Transform) {
	if n, ok := w.Get(e); ok {
		n.Local = t
		w.touch(n, ChangeTransform)
	}
}

// SetVisibility sets the user visibility of e.
func (w *World) SetVisibility(e Entity, v Visibility) {
	if n, ok := w.Get(e); ok {
		n.Visibility = v
	}
}

// SetCulled marks e as outside (or inside) the current view.
func (w *World) SetCulled(e Entity, culled bool) {
	if n, ok := w.Get(e); ok {
		n.Culled = culled
	}
}

// SetTextured attaches a textured billboard to e.
func (w *World) SetTextured(e Entity, c billboard.Textured) {
	if n, ok := w.Get(e); ok {
		n.Textured = &c
		w.touch(n, ChangeTextured)
	}
}

// SetText attaches or replaces the text root component of e. The node starts
// owning the computed layout of its span subtree.
func (w *World) SetText(e Entity, c billboard.Text) {
	if n, ok := w.Get(e); ok {
		n.Text = &c
		n.OwnsLayout = true
		w.touch(n, ChangeText)
	}
}

// MutateText edits the text root of e in place and marks it changed.
func (w *World) MutateText(e Entity, fn func(*billboard.Text)) {
	if n, ok := w.Get(e); ok && n.Text != nil {
		fn(n.Text)
		w.touch(n, ChangeText)
	}
}

// SetSpan attaches or replaces a text span on e.
func (w *World) SetSpan(e Entity, c billboard.TextSpan) {
	if n, ok := w.Get(e); ok {
		n.Span = &c
		w.touch(n, ChangeSpan)
	}
}

// MutateSpan edits a span in place and marks it changed.
func (w *World) MutateSpan(e Entity, fn func(*billboard.TextSpan)) {
	if n, ok := w.Get(e); ok && n.Span != nil {
		fn(n.Span)
		w.touch(n, ChangeSpan)
	}
}

// SetLayout sets the justification and line breaking of a text root.
func (w *World) SetLayout(e Entity, l text.Layout) {
	if n, ok := w.Get(e); ok {
		n.Layout = l
		w.touch(n, ChangeLayout)
	}
}

// SetBounds sets the wrapping box of a text root.
func (w *World) SetBounds(e Entity, b billboard.TextBounds) {
	if n, ok := w.Get(e); ok {
		n.Bounds = b
		w.touch(n, ChangeBounds)
	}
}

// SetAnchor sets the pivot of a text root.
func (w *World) SetAnchor(e Entity, a billboard.Anchor) {
	if n, ok := w.Get(e); ok {
		n.Anchor = a
		w.touch(n, ChangeAnchor)
	}
}

// SetDepth attaches a depth test setting.
func (w *World) SetDepth(e Entity, d billboard.Depth) {
	if n, ok := w.Get(e); ok {
		n.Depth = &d
	}
}

// SetLockAxis attaches a lock axis, or removes it when l is nil.
func (w *World) SetLockAxis(e Entity, l *billboard.LockAxis) {
	if n, ok := w.Get(e); ok {
		n.LockAxis = l
	}
}

// RequestRerender forces a rebuild of a text root on the next tracker run.
func (w *World) RequestRerender(e Entity) {
	if n, ok := w.Get(e); ok {
		n.NeedsRerender = true
	}
}

// Spans returns the text runs of the root e in span order: the root value
// first, then TextSpan descendants depth first. A non-span child ends its
// branch.
func (w *World) Spans(e Entity) []billboard.TextSpan {
	n, ok := w.Get(e)
	if !ok || n.Text == nil {
		return nil
	}

	spans := []billboard.TextSpan{{Value: n.Text.Value, Font: n.Text.Font, Color: n.Text.Color}}
	var walk func(children []Entity)
	walk = func(children []Entity) {
		for _, c := range children {
			cn, ok := w.Get(c)
			if !ok || cn.Span == nil {
				continue
			}
			spans = append(spans, *cn.Span)
			walk(cn.Children)
		}
	}
	walk(n.Children)
	return spans
}
