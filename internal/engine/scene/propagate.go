package scene

// PropagateTransforms recomputes the global transform of every node from its
// ancestors' local transforms.
func (w *World) PropagateTransforms() {
	for _, r := range w.roots {
		n, ok := w.Get(r)
		if !ok {
			continue
		}
		n.Global = n.Local
		w.propagateChildren(n)
	}
}

func (w *World) propagateChildren(parent *Node) {
	for _, c := range parent.Children {
		n, ok := w.Get(c)
		if !ok {
			continue
		}
		n.Global = parent.Global.Mul(n.Local)
		w.propagateChildren(n)
	}
}

// PropagateVisibility computes view visibility: a node is visible when its
// own setting (or an inherited one) says so and it is not culled.
func (w *World) PropagateVisibility() {
	for _, r := range w.roots {
		if n, ok := w.Get(r); ok {
			w.propagateVisibility(n, true)
		}
	}
}

func (w *World) propagateVisibility(n *Node, parentVisible bool) {
	var visible bool
	switch n.Visibility {
	case VisibilityVisible:
		visible = true
	case VisibilityHidden:
		visible = false
	default:
		visible = parentVisible
	}
	n.viewVisible = visible && !n.Culled

	for _, c := range n.Children {
		if cn, ok := w.Get(c); ok {
			w.propagateVisibility(cn, visible)
		}
	}
}
