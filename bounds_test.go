package canopy

import "testing"

func TestBoundsZeroValueIsEmpty(t *testing.T) {
	var b Bounds
	if !b.IsEmpty() {
		t.Error("zero Bounds should be empty")
	}
	if b.Contains(0, 0) {
		t.Error("empty bounds should contain nothing")
	}
	if !EmptyBounds().IsEmpty() {
		t.Error("EmptyBounds() should be empty")
	}
}

func TestBoundsZeroSizeIsNotEmpty(t *testing.T) {
	b := NewBounds(5, 5, 0, 0)
	if b.IsEmpty() {
		t.Error("zero-size bounds built with NewBounds should not be empty")
	}
	if !b.Contains(5, 5) {
		t.Error("zero-size bounds should contain its own point")
	}
}

func TestBoundsNegativeSizeNormalized(t *testing.T) {
	b := NewBounds(10, 0, -5, 1)
	assertBounds(t, "normalized", b, NewBounds(5, 0, 5, 1))
}

func TestBoundsAdd(t *testing.T) {
	var b Bounds
	b.Add(Bounds{})
	if !b.IsEmpty() {
		t.Fatal("adding empty to empty should stay empty")
	}
	b.Add(NewBounds(0, 0, 10, 10))
	assertBounds(t, "first add", b, NewBounds(0, 0, 10, 10))
	b.Add(NewBounds(20, -5, 5, 5))
	assertBounds(t, "second add", b, NewBounds(0, -5, 25, 15))
	b.Add(Bounds{})
	assertBounds(t, "empty add", b, NewBounds(0, -5, 25, 15))
}

func TestBoundsAddPoint(t *testing.T) {
	var b Bounds
	b.AddPoint(3, 4)
	assertBounds(t, "one point", b, NewBounds(3, 4, 0, 0))
	b.AddPoint(-1, 10)
	assertBounds(t, "two points", b, NewBounds(-1, 4, 4, 6))
}

func TestBoundsResetKeepsRect(t *testing.T) {
	b := NewBounds(1, 2, 3, 4)
	b.Reset()
	if !b.IsEmpty() {
		t.Fatal("Reset should make bounds empty")
	}
	if b.X != 1 || b.Width != 3 {
		t.Errorf("Reset cleared the stored rectangle: %+v", b)
	}
	if !b.Equal(Bounds{}, 0) {
		t.Error("two empty bounds should be equal")
	}
}

func TestBoundsContainsEdges(t *testing.T) {
	b := NewBounds(0, 0, 10, 10)
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 5, 5, true},
		{"top-left", 0, 0, true},
		{"bottom-right", 10, 10, true},
		{"left of", -0.1, 5, false},
		{"below", 5, 10.1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestBoundsIntersection(t *testing.T) {
	a := NewBounds(0, 0, 10, 10)
	b := NewBounds(5, 5, 10, 10)
	if !a.Intersects(b) {
		t.Fatal("overlapping bounds should intersect")
	}
	assertBounds(t, "intersection", a.Intersection(b), NewBounds(5, 5, 5, 5))

	edge := NewBounds(10, 0, 5, 5)
	if !a.Intersects(edge) {
		t.Error("bounds sharing an edge should intersect")
	}
	far := NewBounds(20, 20, 1, 1)
	if a.Intersects(far) {
		t.Error("disjoint bounds should not intersect")
	}
	if !a.Intersection(far).IsEmpty() {
		t.Error("disjoint intersection should be empty")
	}
	if a.Intersects(Bounds{}) {
		t.Error("nothing intersects empty bounds")
	}
}

func TestBoundsExpand(t *testing.T) {
	assertBounds(t, "grow", NewBounds(0, 0, 10, 10).Expand(2), NewBounds(-2, -2, 14, 14))
	assertBounds(t, "shrink past zero", NewBounds(0, 0, 2, 2).Expand(-5), NewBounds(5, 5, 0, 0))
	if !(Bounds{}).Expand(3).IsEmpty() {
		t.Error("expanding empty bounds should stay empty")
	}
}

func TestBoundsCenterAndUnion(t *testing.T) {
	x, y := NewBounds(10, 20, 30, 40).Center()
	assertNear(t, "cx", x, 25)
	assertNear(t, "cy", y, 40)

	u := Union(NewBounds(0, 0, 1, 1), NewBounds(4, 4, 1, 1))
	assertBounds(t, "union", u, NewBounds(0, 0, 5, 5))
}

func TestBoundsString(t *testing.T) {
	if got := (Bounds{}).String(); got != "Bounds{empty}" {
		t.Errorf("String() = %q", got)
	}
	if got := NewBounds(1, 2, 3, 4).String(); got != "Bounds{1, 2, 3, 4}" {
		t.Errorf("String() = %q", got)
	}
}
