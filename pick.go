package canopy

// pickEntry is one element of a pick path: a node and the transform from
// its local space to the local space of the camera that was picked.
type pickEntry struct {
	node      *Node
	transform Transform
}

// PickPath is the result of a pick query: the picked node, its ancestors up
// to and including the camera, and the transform to each of them.
//
// NextPickedNode walks to the next node under the point by excluding every
// node returned so far and picking again, so overlapping siblings come back
// topmost first, followed by their ancestors and finally the camera.
type PickPath struct {
	camera     *Camera
	x, y, halo float64

	stack     []pickEntry // picked node first, camera last
	path      []pickEntry // traversal scratch, root first
	excluded  map[*Node]struct{}
	exhausted bool
}

// Pick returns the nodes under the camera-local point (x, y). halo grows the
// point into a square of half-size halo, which makes thin shapes easier to
// hit. The returned path is never nil; PickedNode is nil when nothing,
// not even the camera, is under the point.
func (c *Camera) Pick(x, y, halo float64) *PickPath {
	if halo < 0 {
		halo = 0
	}
	pp := &PickPath{camera: c, x: x, y: y, halo: halo}
	pp.pick()
	return pp
}

// Camera returns the camera the pick was made through.
func (pp *PickPath) Camera() *Camera { return pp.camera }

// Point returns the camera-local pick point.
func (pp *PickPath) Point() (x, y float64) { return pp.x, pp.y }

// Halo returns the pick halo radius.
func (pp *PickPath) Halo() float64 { return pp.halo }

// PickedNode returns the current pick, or nil once exhausted.
func (pp *PickPath) PickedNode() *Node {
	if len(pp.stack) == 0 {
		return nil
	}
	return pp.stack[0].node
}

// NextPickedNode excludes the current pick and returns the next node under
// the point. Once no candidates remain it returns nil, and keeps returning
// nil on every further call.
func (pp *PickPath) NextPickedNode() *Node {
	if pp.exhausted {
		return nil
	}
	if picked := pp.PickedNode(); picked != nil {
		if pp.excluded == nil {
			pp.excluded = make(map[*Node]struct{})
		}
		pp.excluded[picked] = struct{}{}
	}
	pp.pick()
	return pp.PickedNode()
}

// Exhausted reports whether every candidate has been returned.
func (pp *PickPath) Exhausted() bool {
	return pp.exhausted
}

// Nodes returns the current path, picked node first and camera last.
func (pp *PickPath) Nodes() []*Node {
	out := make([]*Node, len(pp.stack))
	for i, e := range pp.stack {
		out[i] = e.node
	}
	return out
}

// Contains reports whether node is on the current path.
func (pp *PickPath) Contains(node *Node) bool {
	_, ok := pp.entry(node)
	return ok
}

// TransformTo returns the transform from node's local space to the camera's
// local space. ok is false when node is not on the current path.
func (pp *PickPath) TransformTo(node *Node) (t Transform, ok bool) {
	e, ok := pp.entry(node)
	return e.transform, ok
}

// CameraToLocal maps a camera-local point into node's local space.
func (pp *PickPath) CameraToLocal(node *Node, x, y float64) (lx, ly float64, err error) {
	e, ok := pp.entry(node)
	if !ok {
		return 0, 0, &StructuralError{Op: "CameraToLocal", Parent: pp.camera.Node, Child: node, Reason: "node is not on the pick path"}
	}
	return e.transform.InverseTransformPoint(x, y)
}

// LocalToCamera maps a point in node's local space into camera-local space.
func (pp *PickPath) LocalToCamera(node *Node, x, y float64) (cx, cy float64, err error) {
	e, ok := pp.entry(node)
	if !ok {
		return 0, 0, &StructuralError{Op: "LocalToCamera", Parent: pp.camera.Node, Child: node, Reason: "node is not on the pick path"}
	}
	cx, cy = e.transform.TransformPoint(x, y)
	return cx, cy, nil
}

func (pp *PickPath) entry(node *Node) (pickEntry, bool) {
	for _, e := range pp.stack {
		if e.node == node {
			return e, true
		}
	}
	return pickEntry{}, false
}

// --- Traversal ---

// pick runs the traversal from the camera and replaces the stack.
func (pp *PickPath) pick() {
	pp.stack = pp.stack[:0]
	pp.path = pp.path[:0]
	c := pp.camera
	r := NewBounds(pp.x-pp.halo, pp.y-pp.halo, 2*pp.halo, 2*pp.halo)
	if c.visible && (c.pickable || c.childrenPickable) && c.FullBoundsLocal().Intersects(r) {
		pp.pickLocal(c.Node, Identity(), r)
	}
	if len(pp.stack) == 0 {
		pp.exhausted = true
	}
}

// pickNode tests n against r, given in n's parent coordinates. parentToCam
// maps n's parent space to camera-local space.
func (pp *PickPath) pickNode(n *Node, parentToCam Transform, r Bounds) bool {
	if !n.visible || !(n.pickable || n.childrenPickable) {
		return false
	}
	if !n.FullBounds().Intersects(r) {
		return false
	}
	inv, err := n.transform.Inverse()
	if err != nil {
		// A collapsed subtree covers no area.
		return false
	}
	return pp.pickLocal(n, parentToCam.Concat(n.transform), inv.TransformBounds(r))
}

// pickLocal tests n with r already in n's local coordinates.
func (pp *PickPath) pickLocal(n *Node, nodeToCam Transform, r Bounds) bool {
	c := n.camera
	if c != nil {
		if c.picking {
			return false
		}
		c.picking = true
		defer func() { c.picking = false }()
	}

	pp.path = append(pp.path, pickEntry{node: n, transform: nodeToCam})

	if n.childrenPickable {
		for i := len(n.children) - 1; i >= 0; i-- {
			if pp.pickNode(n.children[i], nodeToCam, r) {
				return true
			}
		}
		if c != nil && !c.bounds.IsEmpty() {
			if pp.pickLayers(c, nodeToCam, r) {
				return true
			}
		}
	}

	if n.pickable && !pp.isExcluded(n) && n.hitsOwnShape(r) {
		pp.commit()
		return true
	}

	pp.path = pp.path[:len(pp.path)-1]
	return false
}

// pickLayers tests the camera's layers, topmost first, through the view.
// Only the part of r inside the camera's bounds can reach the layers.
func (pp *PickPath) pickLayers(c *Camera, camToOuter Transform, r Bounds) bool {
	visible := r.Intersection(c.bounds)
	if visible.IsEmpty() {
		return false
	}
	viewR := c.invView.TransformBounds(visible)
	layerParentToCam := camToOuter.Concat(c.view)
	for i := len(c.layers) - 1; i >= 0; i-- {
		if pp.pickNode(c.layers[i].Node, layerParentToCam, viewR) {
			return true
		}
	}
	return false
}

// commit copies the traversal path into the stack, deepest node first.
func (pp *PickPath) commit() {
	pp.stack = pp.stack[:0]
	for i := len(pp.path) - 1; i >= 0; i-- {
		pp.stack = append(pp.stack, pp.path[i])
	}
}

func (pp *PickPath) isExcluded(n *Node) bool {
	_, ok := pp.excluded[n]
	return ok
}
