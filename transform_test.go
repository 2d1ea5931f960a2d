package canopy

import (
	"errors"
	"math"
	"testing"
)

func TestNodeOffsetAndTranslate(t *testing.T) {
	n := NewNode("n")
	n.SetOffset(10, 20)
	n.Translate(5, 5)
	x, y := n.Offset()
	assertNear(t, "x", x, 15)
	assertNear(t, "y", y, 25)

	// Translate is in local space, so it follows the scale.
	if err := n.SetScale(2); err != nil {
		t.Fatal(err)
	}
	n.Translate(1, 1)
	x, y = n.Offset()
	assertNear(t, "scaled x", x, 17)
	assertNear(t, "scaled y", y, 27)
}

func TestNodeSetScaleKeepsRotation(t *testing.T) {
	n := NewNode("n")
	n.SetRotation(math.Pi / 4)
	if err := n.SetScale(3); err != nil {
		t.Fatal(err)
	}
	assertNear(t, "scale", n.Scale(), 3)
	assertNear(t, "rotation", n.Rotation(), math.Pi/4)
	if err := n.SetScale(0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("SetScale(0) err = %v, want ErrInvalidConfig", err)
	}
}

func TestNodeScaleAboutPoint(t *testing.T) {
	n := NewNode("n")
	n.ScaleAboutPoint(2, 5, 5)
	x, y := n.LocalToParent(5, 5)
	assertNear(t, "fixed x", x, 5)
	assertNear(t, "fixed y", y, 5)
}

func TestNodeRotateAboutPoint(t *testing.T) {
	n := NewNode("n")
	n.RotateAboutPoint(math.Pi/2, 10, 0)
	x, y := n.LocalToParent(10, 0)
	assertNear(t, "pivot x", x, 10)
	assertNear(t, "pivot y", y, 0)
	x, y = n.LocalToParent(20, 0)
	assertNear(t, "rotated x", x, 10)
	assertNear(t, "rotated y", y, 10)
}

func TestGlobalTransformChain(t *testing.T) {
	root := NewNode("root")
	mid := NewNode("mid")
	leaf := NewNode("leaf")
	_ = root.AddChild(mid)
	_ = mid.AddChild(leaf)

	root.SetOffset(100, 0)
	_ = mid.SetScale(2)
	leaf.SetOffset(5, 5)

	gx, gy := leaf.LocalToGlobal(1, 1)
	assertNear(t, "gx", gx, 112)
	assertNear(t, "gy", gy, 12)

	lx, ly, err := leaf.GlobalToLocal(gx, gy)
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "lx", lx, 1)
	assertNear(t, "ly", ly, 1)

	// Changing an ancestor refreshes the cached descendant transform.
	root.SetOffset(0, 0)
	gx, _ = leaf.LocalToGlobal(1, 1)
	assertNear(t, "gx after move", gx, 12)

	// Reparenting does too.
	_ = root.AddChild(leaf)
	gx, _ = leaf.LocalToGlobal(1, 1)
	assertNear(t, "gx after reparent", gx, 6)
}

func TestGlobalToLocalSingular(t *testing.T) {
	p := NewNode("p")
	c := NewNode("c")
	_ = p.AddChild(c)
	p.SetTransform(NewScale(0, 1))
	if _, _, err := c.GlobalToLocal(1, 1); !errors.Is(err, ErrNonInvertible) {
		t.Errorf("err = %v, want ErrNonInvertible", err)
	}
	if _, err := c.GlobalToLocalBounds(NewBounds(0, 0, 1, 1)); !errors.Is(err, ErrNonInvertible) {
		t.Errorf("bounds err = %v, want ErrNonInvertible", err)
	}
}

func TestParentLocalBounds(t *testing.T) {
	n := NewNode("n")
	n.SetTransform(NewTranslation(10, 10).Scale(2))
	pb := n.LocalToParentBounds(NewBounds(0, 0, 5, 5))
	assertBounds(t, "to parent", pb, NewBounds(10, 10, 10, 10))
	lb, err := n.ParentToLocalBounds(pb)
	if err != nil {
		t.Fatal(err)
	}
	assertBounds(t, "to local", lb, NewBounds(0, 0, 5, 5))
}

func TestSetTransformSameIsNoop(t *testing.T) {
	n := mustRect(t, "r", 0, 0, 10, 10)
	n.FullBounds()
	before := n.InvalidationCount()
	n.SetTransform(n.Transform())
	if n.FullBoundsStale() || n.InvalidationCount() != before {
		t.Error("setting an identical transform invalidated full bounds")
	}
}
