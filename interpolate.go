package canopy

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// The Animate helpers build activities that move one property of a node
// towards a target. The source value is read when the activity starts, not
// when it is built, so chained animations pick up where the previous one
// ended. The returned activity is not scheduled; pass it to
// ActivityScheduler.Schedule. A nil easing function means linear.
//
// If the node is disposed while the activity runs, the activity terminates.

func newNodeActivity(n *Node, d time.Duration, fn ease.TweenFunc, begin func(), update func(t float64)) (*Activity, error) {
	if n == nil {
		return nil, &ConfigError{Field: "node", Value: nil, Reason: "must not be nil"}
	}
	var a *Activity
	a, err := NewActivity(d, DefaultStepRate, func(t float64) {
		if n.IsDisposed() {
			a.Terminate()
			return
		}
		update(t)
	})
	if err != nil {
		return nil, err
	}
	a.begin = begin
	a.SetEasing(fn)
	return a, nil
}

// AnimateTransform animates the node's whole transform, coefficient by
// coefficient.
func AnimateTransform(n *Node, to Transform, d time.Duration, fn ease.TweenFunc) (*Activity, error) {
	var from Transform
	return newNodeActivity(n, d, fn,
		func() { from = n.transform },
		func(t float64) { n.SetTransform(lerpTransform(from, to, t)) })
}

// AnimatePosition animates the translation component of the transform.
func AnimatePosition(n *Node, x, y float64, d time.Duration, fn ease.TweenFunc) (*Activity, error) {
	var fx, fy float64
	return newNodeActivity(n, d, fn,
		func() { fx, fy = n.Offset() },
		func(t float64) { n.SetOffset(lerp(fx, x, t), lerp(fy, y, t)) })
}

// AnimateScale animates the scale factor about the local origin.
func AnimateScale(n *Node, s float64, d time.Duration, fn ease.TweenFunc) (*Activity, error) {
	if s <= 0 {
		return nil, &ConfigError{Field: "scale", Value: s, Reason: "must be positive"}
	}
	var from float64
	return newNodeActivity(n, d, fn,
		func() { from = n.Scale() },
		func(t float64) {
			if err := n.SetScale(lerp(from, s, t)); err != nil {
				Logger().Debug("scale step skipped", "node", n.Name, "err", err)
			}
		})
}

// AnimateRotation animates the rotation about the local origin to theta
// radians, taking the shorter way round.
func AnimateRotation(n *Node, theta float64, d time.Duration, fn ease.TweenFunc) (*Activity, error) {
	var from, delta float64
	return newNodeActivity(n, d, fn,
		func() {
			from = n.Rotation()
			delta = shortestTurn(from, theta)
		},
		func(t float64) { n.SetRotation(from + delta*t) })
}

// AnimateBounds animates the node's own bounds. An empty source jumps to the
// target on the first step.
func AnimateBounds(n *Node, to Bounds, d time.Duration, fn ease.TweenFunc) (*Activity, error) {
	var from Bounds
	return newNodeActivity(n, d, fn,
		func() { from = n.bounds },
		func(t float64) {
			if from.IsEmpty() || to.IsEmpty() {
				n.SetBounds(to)
				return
			}
			n.SetBounds(NewBounds(
				lerp(from.X, to.X, t),
				lerp(from.Y, to.Y, t),
				lerp(from.Width, to.Width, t),
				lerp(from.Height, to.Height, t),
			))
		})
}

// AnimatePaint animates the fill color channel by channel.
func AnimatePaint(n *Node, to Color, d time.Duration, fn ease.TweenFunc) (*Activity, error) {
	var tweens [4]*gween.Tween
	return newNodeActivity(n, d, fn,
		func() {
			from := n.paint
			tweens[0] = gween.New(float32(from.R), float32(to.R), 1, ease.Linear)
			tweens[1] = gween.New(float32(from.G), float32(to.G), 1, ease.Linear)
			tweens[2] = gween.New(float32(from.B), float32(to.B), 1, ease.Linear)
			tweens[3] = gween.New(float32(from.A), float32(to.A), 1, ease.Linear)
		},
		func(t float64) {
			var ch [4]float64
			for i, tw := range tweens {
				v, _ := tw.Set(float32(t))
				ch[i] = float64(v)
			}
			if t >= 1 {
				n.SetPaint(to)
				return
			}
			n.SetPaint(Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]})
		})
}

// AnimateAlpha animates the node's opacity.
func AnimateAlpha(n *Node, alpha float64, d time.Duration, fn ease.TweenFunc) (*Activity, error) {
	var tween *gween.Tween
	return newNodeActivity(n, d, fn,
		func() { tween = gween.New(float32(n.alpha), float32(clamp01(alpha)), 1, ease.Linear) },
		func(t float64) {
			if t >= 1 {
				n.SetAlpha(alpha)
				return
			}
			v, _ := tween.Set(float32(t))
			n.SetAlpha(float64(v))
		})
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// shortestTurn returns the signed angle in [-π, π] that turns from onto to.
func shortestTurn(from, to float64) float64 {
	d := math.Mod(to-from, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
