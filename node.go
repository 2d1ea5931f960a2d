package canopy

import (
	"image"
	"sync/atomic"
)

// --- ID counter ---

// nodeIDCounter hands out node IDs. Atomic so that independent scenes may be
// built on different goroutines; a single scene is still single-threaded.
var nodeIDCounter atomic.Uint32

func nextNodeID() uint32 {
	return nodeIDCounter.Add(1)
}

// PaintFunc paints a NodeKindCustom node. The canvas is already positioned in
// the node's local coordinate space.
type PaintFunc func(ctx *PaintContext, n *Node)

// --- Node ---

// Node is the fundamental scene graph element. A single flat struct is used
// for all node kinds; kind-specific data lives in optional fields.
//
// Every geometric mutation goes through a setter so that cached full bounds
// and global transforms are invalidated. Full bounds are recomputed lazily
// on the next read or validation pass.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Kind NodeKind

	// EntityID links this node to an ECS entity. Interaction events on nodes
	// with a non-zero EntityID are forwarded to the scene's EntityStore.
	EntityID uint32

	// HitShape, when set, replaces the kind's own-shape test during picking.
	// Coordinates are local. Its extent counts towards the full bounds; use
	// SetHitShape to change it on a node whose full bounds are already
	// validated.
	HitShape HitShape

	// Hierarchy
	parent   *Node
	children []*Node

	// Transform (local) and cached transform to the root.
	transform       Transform
	globalTransform Transform
	globalStale     bool

	// Geometry. fullLocal is bounds ∪ children's full bounds in local
	// coordinates; fullParent is the same mapped through transform.
	bounds        Bounds
	fullLocal     Bounds
	fullParent    Bounds
	fullStale     bool
	invalidations uint64

	// Style
	paint       Color
	strokePaint Color
	strokeWidth float64
	alpha       float64

	// Visibility & interaction
	visible          bool
	pickable         bool
	childrenPickable bool

	// Kind-specific
	points  []Vec2 // NodeKindPath
	closed  bool
	text    string // NodeKindText
	font    FontMetrics
	image   image.Image // NodeKindImage
	paintFn PaintFunc   // NodeKindCustom
	layer   *Layer      // NodeKindLayer
	camera  *Camera     // NodeKindCamera

	attrs     map[string]any
	listeners handlerRegistry

	// scene is set only on a scene's root node.
	scene *Scene

	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.transform = Identity()
	n.globalTransform = Identity()
	n.globalStale = true
	n.fullStale = true
	n.alpha = 1
	n.visible = true
	n.pickable = true
	n.childrenPickable = true
}

func newNode(name string, kind NodeKind) *Node {
	n := &Node{Name: name, Kind: kind}
	nodeDefaults(n)
	return n
}

// NewNode creates a plain node with empty bounds. It paints its bounds only
// when a non-transparent paint is set.
func NewNode(name string) *Node {
	return newNode(name, NodeKindPlain)
}

// NewRectangle creates a rectangle node filled with white.
// Negative dimensions are rejected with a *ConfigError.
func NewRectangle(name string, x, y, w, h float64) (*Node, error) {
	if err := checkDimensions(w, h); err != nil {
		return nil, err
	}
	n := newNode(name, NodeKindRectangle)
	n.paint = ColorWhite
	n.bounds = NewBounds(x, y, w, h)
	return n, nil
}

// NewEllipse creates an ellipse node inscribed in the given rectangle.
// Negative dimensions are rejected with a *ConfigError.
func NewEllipse(name string, x, y, w, h float64) (*Node, error) {
	if err := checkDimensions(w, h); err != nil {
		return nil, err
	}
	n := newNode(name, NodeKindEllipse)
	n.paint = ColorWhite
	n.bounds = NewBounds(x, y, w, h)
	return n, nil
}

// NewPath creates a polyline node. Closed paths are filled with Paint; every
// path is stroked with StrokePaint when StrokeWidth is positive.
func NewPath(name string, points []Vec2, closed bool) *Node {
	n := newNode(name, NodeKindPath)
	n.paint = ColorWhite
	n.strokePaint = ColorBlack
	n.closed = closed
	n.points = append([]Vec2(nil), points...)
	n.bounds = n.pathBounds()
	return n
}

// NewText creates a text node measured with DefaultFontMetrics.
func NewText(name, text string) *Node {
	n := newNode(name, NodeKindText)
	n.paint = ColorBlack
	n.font = DefaultFontMetrics
	n.text = text
	n.bounds = n.textBounds()
	return n
}

// NewImage creates an image node whose bounds match the image size.
// A nil image yields empty bounds.
func NewImage(name string, img image.Image) *Node {
	n := newNode(name, NodeKindImage)
	n.image = img
	n.bounds = imageBounds(img)
	return n
}

// NewCustom creates a node painted by fn. Its bounds must be set explicitly.
func NewCustom(name string, fn PaintFunc) *Node {
	n := newNode(name, NodeKindCustom)
	n.paintFn = fn
	return n
}

func checkDimensions(w, h float64) error {
	if w < 0 {
		return &ConfigError{Field: "width", Value: w, Reason: "must not be negative"}
	}
	if h < 0 {
		return &ConfigError{Field: "height", Value: h, Reason: "must not be negative"}
	}
	return nil
}

// --- Tree manipulation ---

// Parent returns the node's parent, or nil when detached.
func (n *Node) Parent() *Node {
	return n.parent
}

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Adding a nil child or an ancestor (cycle) returns a *StructuralError and
// leaves the tree unchanged.
func (n *Node) AddChild(child *Node) error {
	index := len(n.children)
	if child != nil && child.parent == n {
		index--
	}
	return n.AddChildAt(child, index)
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild. When child is
// already a child of n, index refers to the list with child removed.
func (n *Node) AddChildAt(child *Node, index int) error {
	if child == nil {
		return &StructuralError{Op: "AddChild", Parent: n, Reason: "nil child"}
	}
	if n.disposed || child.disposed {
		return &StructuralError{Op: "AddChild", Parent: n, Child: child, Reason: "node is disposed"}
	}
	if isAncestor(child, n) {
		return &StructuralError{Op: "AddChild", Parent: n, Child: child, Reason: "would create a cycle"}
	}
	limit := len(n.children)
	if child.parent == n {
		limit--
	}
	if index < 0 || index > limit {
		return &StructuralError{Op: "AddChild", Parent: n, Child: child, Reason: "index out of range"}
	}

	if old := child.parent; old != nil {
		old.removeChildByPtr(child)
		child.parent = nil
		if old != n {
			old.invalidateFullBounds()
			old.InvalidatePaint()
		}
	}
	child.parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child

	child.invalidateGlobal()
	n.invalidateFullBounds()
	n.InvalidatePaint()
	return nil
}

// RemoveChild detaches child from this node.
// Returns a *StructuralError if child is not a child of n.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil || child.parent != n {
		return &StructuralError{Op: "RemoveChild", Parent: n, Child: child, Reason: "not a child of this node"}
	}
	n.removeChildByPtr(child)
	n.detached(child)
	return nil
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) (*Node, error) {
	if index < 0 || index >= len(n.children) {
		return nil, &StructuralError{Op: "RemoveChildAt", Parent: n, Reason: "index out of range"}
	}
	child := n.children[index]
	copy(n.children[index:], n.children[index+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	n.detached(child)
	return child, nil
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.parent == nil {
		return
	}
	_ = n.parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	if len(n.children) == 0 {
		return
	}
	for i, child := range n.children {
		child.parent = nil
		child.invalidateGlobal()
		n.children[i] = nil
	}
	n.children = n.children[:0]
	n.invalidateFullBounds()
	n.InvalidatePaint()
}

// detached finishes a removal once child is out of n.children.
func (n *Node) detached(child *Node) {
	child.parent = nil
	child.invalidateGlobal()
	n.invalidateFullBounds()
	n.InvalidatePaint()
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// IndexOfChild returns the position of child, or -1.
func (n *Node) IndexOfChild(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// SetChildIndex moves child to a new index among its siblings.
func (n *Node) SetChildIndex(child *Node, index int) error {
	if child == nil || child.parent != n {
		return &StructuralError{Op: "SetChildIndex", Parent: n, Child: child, Reason: "not a child of this node"}
	}
	nc := len(n.children)
	if index < 0 || index >= nc {
		return &StructuralError{Op: "SetChildIndex", Parent: n, Child: child, Reason: "index out of range"}
	}
	oldIndex := n.IndexOfChild(child)
	if oldIndex == index {
		return nil
	}
	// Shift elements to fill the gap and open the target slot.
	if oldIndex < index {
		copy(n.children[oldIndex:], n.children[oldIndex+1:index+1])
	} else {
		copy(n.children[index+1:], n.children[index:oldIndex])
	}
	n.children[index] = child
	n.InvalidatePaint()
	return nil
}

// MoveToFront makes n the last-painted (topmost) of its siblings.
func (n *Node) MoveToFront() {
	if n.parent != nil {
		_ = n.parent.SetChildIndex(n, len(n.parent.children)-1)
	}
}

// MoveToBack makes n the first-painted (bottommost) of its siblings.
func (n *Node) MoveToBack() {
	if n.parent != nil {
		_ = n.parent.SetChildIndex(n, 0)
	}
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	return other != nil && other != n && isAncestor(n, other)
}

// IsDescendantOf reports whether n is a strict descendant of other.
func (n *Node) IsDescendantOf(other *Node) bool {
	return other != nil && other.IsAncestorOf(n)
}

// Root returns the topmost ancestor of n (n itself when detached).
func (n *Node) Root() *Node {
	p := n
	for p.parent != nil {
		p = p.parent
	}
	return p
}

// Walk visits n and its descendants depth-first in paint order. Returning
// false from fn skips that node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// --- Flags and style ---

// Visible reports whether the node and its subtree are painted and picked.
func (n *Node) Visible() bool { return n.visible }

// SetVisible shows or hides the node and its subtree.
func (n *Node) SetVisible(v bool) {
	if n.visible == v {
		return
	}
	n.visible = v
	n.InvalidatePaint()
}

// Pickable reports whether the node itself may be the result of a pick.
func (n *Node) Pickable() bool { return n.pickable }

// SetPickable controls whether the node may be a pick result. Descendants
// are still traversed when n is not pickable.
func (n *Node) SetPickable(v bool) { n.pickable = v }

// ChildrenPickable reports whether picking descends into the children.
func (n *Node) ChildrenPickable() bool { return n.childrenPickable }

// SetChildrenPickable prunes (false) or restores (true) the subtree from picking.
func (n *Node) SetChildrenPickable(v bool) { n.childrenPickable = v }

// Paint returns the fill color.
func (n *Node) Paint() Color { return n.paint }

// SetPaint sets the fill color.
func (n *Node) SetPaint(c Color) {
	if n.paint == c {
		return
	}
	n.paint = c
	n.InvalidatePaint()
}

// StrokePaint returns the outline color.
func (n *Node) StrokePaint() Color { return n.strokePaint }

// SetStrokePaint sets the outline color.
func (n *Node) SetStrokePaint(c Color) {
	if n.strokePaint == c {
		return
	}
	n.strokePaint = c
	n.InvalidatePaint()
}

// StrokeWidth returns the outline width in local units.
func (n *Node) StrokeWidth() float64 { return n.strokeWidth }

// SetStrokeWidth sets the outline width. Path bounds grow by half the width.
func (n *Node) SetStrokeWidth(w float64) error {
	if w < 0 {
		return &ConfigError{Field: "stroke width", Value: w, Reason: "must not be negative"}
	}
	n.strokeWidth = w
	if n.Kind == NodeKindPath {
		n.setDerivedBounds(n.pathBounds())
		return nil
	}
	n.InvalidatePaint()
	return nil
}

// Alpha returns the node's own opacity multiplier.
func (n *Node) Alpha() float64 { return n.alpha }

// SetAlpha sets the node's opacity multiplier, clamped to [0, 1]. It applies
// to the whole subtree.
func (n *Node) SetAlpha(a float64) {
	a = clamp01(a)
	if n.alpha == a {
		return
	}
	n.alpha = a
	n.InvalidatePaint()
}

// --- Disposal ---

// Dispose removes this node from its parent, unlinks any camera/layer
// references, and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	if n.camera != nil {
		n.camera.RemoveAllLayers()
	}
	if n.layer != nil {
		for len(n.layer.cameras) > 0 {
			n.layer.cameras[len(n.layer.cameras)-1].RemoveLayer(n.layer)
		}
	}
	for _, child := range n.children {
		child.parent = nil
		child.dispose()
	}
	n.children = nil
	n.parent = nil
	n.HitShape = nil
	n.image = nil
	n.paintFn = nil
	n.attrs = nil
	n.listeners = handlerRegistry{}
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
