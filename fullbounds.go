package canopy

// Full bounds of a node are its own bounds unioned with the full bounds of
// every child. They are cached and recomputed lazily.
//
// A node whose cache is stale always has stale ancestors, which lets
// invalidation stop at the first ancestor that is already stale and keeps
// repeated edits under the same subtree O(1) after the first.

// Bounds returns the node's own bounds in local coordinates.
func (n *Node) Bounds() Bounds {
	return n.bounds
}

// SetBounds replaces the node's own bounds and reports whether they changed.
// Bounds equal to the current ones within 1e-9 leave all caches untouched.
// Path nodes rescale their points to fit the new bounds.
func (n *Node) SetBounds(b Bounds) bool {
	if b.Equal(n.bounds, boundsEpsilon) {
		return false
	}
	if n.Kind == NodeKindPath {
		n.fitPathPoints(b)
	}
	n.bounds = b
	n.invalidateFullBounds()
	n.InvalidatePaint()
	return true
}

// SetBoundsRect is shorthand for SetBounds(NewBounds(x, y, w, h)).
func (n *Node) SetBoundsRect(x, y, w, h float64) bool {
	return n.SetBounds(NewBounds(x, y, w, h))
}

// ResetBounds makes the node's own bounds empty.
func (n *Node) ResetBounds() bool {
	b := n.bounds
	b.Reset()
	return n.SetBounds(b)
}

// SetHitShape sets the custom hit area and invalidates the full bounds it
// contributes to. nil restores the kind's own-shape test.
func (n *Node) SetHitShape(s HitShape) {
	n.HitShape = s
	n.invalidateFullBounds()
}

// InvalidateFullBounds marks this node's full bounds, and those of every
// ancestor, as needing recomputation.
func (n *Node) InvalidateFullBounds() {
	n.invalidateFullBounds()
}

func (n *Node) invalidateFullBounds() {
	for p := n; p != nil; p = p.parent {
		if p.fullStale {
			return
		}
		p.fullStale = true
		p.invalidations++
	}
}

// FullBoundsStale reports whether the cached full bounds need recomputation.
func (n *Node) FullBoundsStale() bool {
	return n.fullStale
}

// InvalidationCount returns how many times this node's full bounds went from
// valid to stale. Setting bounds equal to the current bounds never bumps it.
func (n *Node) InvalidationCount() uint64 {
	return n.invalidations
}

// ValidateFullBounds recomputes stale full bounds in the subtree and reports
// whether the node's full bounds in parent coordinates changed.
func (n *Node) ValidateFullBounds() bool {
	if !n.fullStale {
		return false
	}
	local := n.bounds
	if n.HitShape != nil {
		local.Add(n.HitShape.Bounds())
	}
	for _, child := range n.children {
		child.ValidateFullBounds()
		local.Add(child.fullParent)
	}
	old := n.fullParent
	n.fullLocal = local
	n.fullParent = n.transform.TransformBounds(local)
	n.fullStale = false
	return !old.Equal(n.fullParent, boundsEpsilon)
}

// FullBounds returns bounds ∪ children's full bounds in the parent's
// coordinate system, validating first if needed.
func (n *Node) FullBounds() Bounds {
	n.ValidateFullBounds()
	return n.fullParent
}

// FullBoundsLocal returns bounds ∪ children's full bounds in this node's
// own coordinate system.
func (n *Node) FullBoundsLocal() Bounds {
	n.ValidateFullBounds()
	return n.fullLocal
}

// GlobalFullBounds returns the full bounds in root coordinates.
func (n *Node) GlobalFullBounds() Bounds {
	return n.LocalToGlobalBounds(n.FullBoundsLocal())
}

// --- Paint invalidation ---

// InvalidatePaint reports that the node's appearance changed. Every camera
// observing a layer on the path to the root is marked for repaint, as is
// every camera on that path.
func (n *Node) InvalidatePaint() {
	for p := n; p != nil; p = p.parent {
		if p.layer != nil {
			p.layer.notifyCameras()
		}
		if p.camera != nil {
			p.camera.markDirty()
		}
	}
}
