package canopy

import (
	"fmt"
	"math"
)

// invertEpsilon is the determinant magnitude below which a transform is
// treated as singular.
const invertEpsilon = 1e-12

// Transform is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
//
// a and d are the scale terms, b the vertical shear, c the horizontal shear.
// The zero value is singular; start from Identity.
type Transform [6]float64

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{1, 0, 0, 1, 0, 0}
}

// NewTranslation returns a pure translation.
func NewTranslation(tx, ty float64) Transform {
	return Transform{1, 0, 0, 1, tx, ty}
}

// NewScale returns a scale about the origin.
func NewScale(sx, sy float64) Transform {
	return Transform{sx, 0, 0, sy, 0, 0}
}

// NewRotation returns a rotation about the origin by theta radians
// (clockwise on screen, since Y grows downward).
func NewRotation(theta float64) Transform {
	sin, cos := math.Sincos(theta)
	return Transform{cos, sin, -sin, cos, 0, 0}
}

// NewShear returns a shear with horizontal factor shx and vertical factor shy.
func NewShear(shx, shy float64) Transform {
	return Transform{1, shy, shx, 1, 0, 0}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
func multiplyAffine(p, c Transform) Transform {
	return Transform{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// Concat returns t * o: o is applied first, then t. This is the order used
// to place a child (o) inside its parent (t).
func (t Transform) Concat(o Transform) Transform {
	return multiplyAffine(t, o)
}

// PreConcat returns o * t: t is applied first, then o.
func (t Transform) PreConcat(o Transform) Transform {
	return multiplyAffine(o, t)
}

// Translate returns t followed by a translation in t's local space.
func (t Transform) Translate(dx, dy float64) Transform {
	return multiplyAffine(t, NewTranslation(dx, dy))
}

// Scale returns t with a local uniform scale applied.
func (t Transform) Scale(s float64) Transform {
	return multiplyAffine(t, NewScale(s, s))
}

// ScaleAbout returns t with a local uniform scale about (x, y).
func (t Transform) ScaleAbout(s, x, y float64) Transform {
	return t.Translate(x, y).Scale(s).Translate(-x, -y)
}

// Rotate returns t with a local rotation applied.
func (t Transform) Rotate(theta float64) Transform {
	return multiplyAffine(t, NewRotation(theta))
}

// RotateAbout returns t with a local rotation about (x, y).
func (t Transform) RotateAbout(theta, x, y float64) Transform {
	return t.Translate(x, y).Rotate(theta).Translate(-x, -y)
}

// Determinant returns a*d - c*b.
func (t Transform) Determinant() float64 {
	return t[0]*t[3] - t[2]*t[1]
}

// IsInvertible reports whether the determinant is safely away from zero.
func (t Transform) IsInvertible() bool {
	return math.Abs(t.Determinant()) >= invertEpsilon
}

// IsIdentity reports whether t is exactly the identity.
func (t Transform) IsIdentity() bool {
	return t == Identity()
}

// Inverse returns the inverse of t, or a *NonInvertibleError when t is
// singular. No fallback matrix is returned on failure.
func (t Transform) Inverse() (Transform, error) {
	det := t.Determinant()
	if math.Abs(det) < invertEpsilon {
		return Transform{}, &NonInvertibleError{Transform: t}
	}
	invDet := 1.0 / det
	a := t[3] * invDet
	b := -t[1] * invDet
	c := -t[2] * invDet
	d := t[0] * invDet
	return Transform{
		a, b, c, d,
		-(a*t[4] + c*t[5]),
		-(b*t[4] + d*t[5]),
	}, nil
}

// TransformPoint applies t to a point.
func (t Transform) TransformPoint(x, y float64) (float64, float64) {
	return t[0]*x + t[2]*y + t[4], t[1]*x + t[3]*y + t[5]
}

// TransformVector applies t to a vector, ignoring translation.
func (t Transform) TransformVector(dx, dy float64) (float64, float64) {
	return t[0]*dx + t[2]*dy, t[1]*dx + t[3]*dy
}

// InverseTransformPoint maps a point through the inverse of t.
func (t Transform) InverseTransformPoint(x, y float64) (float64, float64, error) {
	inv, err := t.Inverse()
	if err != nil {
		return 0, 0, err
	}
	ix, iy := inv.TransformPoint(x, y)
	return ix, iy, nil
}

// TransformBounds returns the axis-aligned box enclosing the four transformed
// corners of b. An empty b stays empty.
func (t Transform) TransformBounds(b Bounds) Bounds {
	if b.IsEmpty() {
		return b
	}
	x0, y0 := t.TransformPoint(b.X, b.Y)
	x1, y1 := t.TransformPoint(b.MaxX(), b.Y)
	x2, y2 := t.TransformPoint(b.MaxX(), b.MaxY())
	x3, y3 := t.TransformPoint(b.X, b.MaxY())

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return NewBounds(minX, minY, maxX-minX, maxY-minY)
}

// InverseTransformBounds maps b through the inverse of t.
func (t Transform) InverseTransformBounds(b Bounds) (Bounds, error) {
	inv, err := t.Inverse()
	if err != nil {
		return Bounds{}, err
	}
	return inv.TransformBounds(b), nil
}

// ScaleFactor returns the length of the transformed unit X vector. For
// transforms built from uniform scales and rotations this is the scale.
func (t Transform) ScaleFactor() float64 {
	return math.Hypot(t[0], t[1])
}

// WithScale returns t rescaled about the origin so that ScaleFactor equals s.
func (t Transform) WithScale(s float64) (Transform, error) {
	if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return t, &ConfigError{Field: "scale", Value: s, Reason: "must be finite and non-zero"}
	}
	cur := t.ScaleFactor()
	if cur == 0 {
		return t, &NonInvertibleError{Transform: t}
	}
	return t.Scale(s / cur), nil
}

// Rotation returns the angle of the transformed unit X vector in [0, 2π).
func (t Transform) Rotation() float64 {
	r := math.Atan2(t[1], t[0])
	if r < 0 {
		r += 2 * math.Pi
	}
	return r
}

// WithRotation returns t rotated about the origin so that Rotation equals theta.
func (t Transform) WithRotation(theta float64) Transform {
	return t.Rotate(theta - t.Rotation())
}

// TranslateX returns the horizontal translation component.
func (t Transform) TranslateX() float64 { return t[4] }

// TranslateY returns the vertical translation component.
func (t Transform) TranslateY() float64 { return t[5] }

// Equal reports whether every coefficient of t and o differs by at most tol.
func (t Transform) Equal(o Transform, tol float64) bool {
	for i := range t {
		if math.Abs(t[i]-o[i]) > tol {
			return false
		}
	}
	return true
}

// lerpTransform interpolates every coefficient linearly.
func lerpTransform(from, to Transform, f float64) Transform {
	var out Transform
	for i := range out {
		out[i] = from[i] + (to[i]-from[i])*f
	}
	return out
}

func (t Transform) String() string {
	return fmt.Sprintf("[%g %g %g %g %g %g]", t[0], t[1], t[2], t[3], t[4], t[5])
}
