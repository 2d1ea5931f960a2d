package canopy

// --- Transform property setters ---

// Transform returns the node's local transform (local → parent).
func (n *Node) Transform() Transform {
	return n.transform
}

// SetTransform replaces the local transform. The node's full bounds in its
// parent and the cached global transforms of the subtree are invalidated.
// A singular transform is accepted; such a subtree is skipped by picking.
func (n *Node) SetTransform(t Transform) {
	if n.transform == t {
		return
	}
	n.transform = t
	n.transformChanged()
}

// transformChanged invalidates everything that depends on the local transform.
func (n *Node) transformChanged() {
	n.invalidateGlobal()
	n.invalidateFullBounds()
	n.InvalidatePaint()
}

// Offset returns the translation component of the local transform.
func (n *Node) Offset() (x, y float64) {
	return n.transform[4], n.transform[5]
}

// SetOffset sets the translation component, keeping scale, rotation and shear.
func (n *Node) SetOffset(x, y float64) {
	t := n.transform
	t[4], t[5] = x, y
	n.SetTransform(t)
}

// Translate moves the node by (dx, dy) in its own local coordinates.
func (n *Node) Translate(dx, dy float64) {
	n.SetTransform(n.transform.Translate(dx, dy))
}

// Scale returns the node's local scale factor.
func (n *Node) Scale() float64 {
	return n.transform.ScaleFactor()
}

// SetScale rescales the local transform about the local origin so that
// Scale returns s. Zero or non-finite scales are rejected.
func (n *Node) SetScale(s float64) error {
	t, err := n.transform.WithScale(s)
	if err != nil {
		return err
	}
	n.SetTransform(t)
	return nil
}

// ScaleAboutPoint multiplies the scale by s about the local point (x, y).
func (n *Node) ScaleAboutPoint(s, x, y float64) {
	n.SetTransform(n.transform.ScaleAbout(s, x, y))
}

// Rotation returns the node's local rotation in radians, in [0, 2π).
func (n *Node) Rotation() float64 {
	return n.transform.Rotation()
}

// SetRotation rotates the node about its local origin so that Rotation
// returns theta.
func (n *Node) SetRotation(theta float64) {
	n.SetTransform(n.transform.WithRotation(theta))
}

// RotateAboutPoint adds theta radians of rotation about the local point (x, y).
func (n *Node) RotateAboutPoint(theta, x, y float64) {
	n.SetTransform(n.transform.RotateAbout(theta, x, y))
}

// --- Global transform cache ---

// invalidateGlobal marks n and its descendants as needing a fresh global
// transform. A stale node always has stale descendants, so an already stale
// node ends the walk.
func (n *Node) invalidateGlobal() {
	if n.globalStale {
		return
	}
	n.globalStale = true
	for _, child := range n.children {
		child.invalidateGlobal()
	}
}

// GlobalTransform returns the transform from this node's local space to the
// space of its root (the root's own transform included).
func (n *Node) GlobalTransform() Transform {
	if n.globalStale {
		if n.parent == nil {
			n.globalTransform = n.transform
		} else {
			n.globalTransform = multiplyAffine(n.parent.GlobalTransform(), n.transform)
		}
		n.globalStale = false
	}
	return n.globalTransform
}

// --- Coordinate conversion ---

// LocalToParent converts a local point to the parent's coordinates.
func (n *Node) LocalToParent(x, y float64) (px, py float64) {
	return n.transform.TransformPoint(x, y)
}

// ParentToLocal converts a parent point to local coordinates.
func (n *Node) ParentToLocal(x, y float64) (lx, ly float64, err error) {
	return n.transform.InverseTransformPoint(x, y)
}

// LocalToParentBounds maps local bounds into the parent's coordinates.
func (n *Node) LocalToParentBounds(b Bounds) Bounds {
	return n.transform.TransformBounds(b)
}

// ParentToLocalBounds maps parent bounds into local coordinates.
func (n *Node) ParentToLocalBounds(b Bounds) (Bounds, error) {
	return n.transform.InverseTransformBounds(b)
}

// LocalToGlobal converts a local point to root coordinates.
func (n *Node) LocalToGlobal(x, y float64) (gx, gy float64) {
	return n.GlobalTransform().TransformPoint(x, y)
}

// GlobalToLocal converts a root point to local coordinates. It fails when
// any transform on the path to the root is singular.
func (n *Node) GlobalToLocal(x, y float64) (lx, ly float64, err error) {
	return n.GlobalTransform().InverseTransformPoint(x, y)
}

// LocalToGlobalBounds maps local bounds into root coordinates.
func (n *Node) LocalToGlobalBounds(b Bounds) Bounds {
	return n.GlobalTransform().TransformBounds(b)
}

// GlobalToLocalBounds maps root bounds into local coordinates.
func (n *Node) GlobalToLocalBounds(b Bounds) (Bounds, error) {
	return n.GlobalTransform().InverseTransformBounds(b)
}
