// Package profile defines the generating curves that lathe revolves into
// surfaces. A profile maps t in [0,1] to a point in the (radius, height)
// half-plane; the radius is the distance from the revolution axis.
package profile

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Profile is a total, continuous mapping from t in [0,1] to a 2D point.
// X is the radius component and Y the height component.
type Profile interface {
	At(t float64) mgl64.Vec2
}

// Differentiable is implemented by profiles that know their analytic
// derivative d/dt At(t).
type Differentiable interface {
	Profile
	Tangent(t float64) mgl64.Vec2
}

// Func adapts an ordinary function to the Profile interface.
type Func func(t float64) mgl64.Vec2

// At calls f(t).
func (f Func) At(t float64) mgl64.Vec2 { return f(t) }

// DerivativeStep is the parameter step used for finite-difference tangents.
const DerivativeStep = 1e-5

// Derivative returns d/dt p.At(t). Differentiable profiles answer
// analytically; others use a central difference, one-sided at the ends of
// the parameter range.
func Derivative(p Profile, t float64) mgl64.Vec2 {
	if d, ok := p.(Differentiable); ok {
		return d.Tangent(t)
	}
	t0 := math.Max(0, t-DerivativeStep)
	t1 := math.Min(1, t+DerivativeStep)
	return p.At(t1).Sub(p.At(t0)).Mul(1 / (t1 - t0))
}

// Orientation samples p at n+1 evenly spaced parameters and returns the
// sign of the enclosed area: +1 for counter-clockwise in the
// (radius, height) plane, -1 for clockwise and 0 for a degenerate curve.
// Open profiles are closed by the segment from the last sample back to the
// first, which for profiles that start and end on the axis runs along the
// axis itself.
func Orientation(p Profile, n int) float64 {
	if n < 2 {
		n = 2
	}
	var area float64
	first := p.At(0)
	prev := first
	for k := 1; k <= n; k++ {
		cur := p.At(float64(k) / float64(n))
		area += prev.X()*cur.Y() - cur.X()*prev.Y()
		prev = cur
	}
	area += prev.X()*first.Y() - first.X()*prev.Y()
	switch {
	case area > 0:
		return 1
	case area < 0:
		return -1
	}
	return 0
}
