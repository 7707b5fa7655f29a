package profile

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// HalfCircle is a semicircle of the given radius from the bottom pole
// (0, -R) at t=0, through (R, 0), to the top pole (0, R) at t=1.
// Revolved, it produces a sphere.
type HalfCircle struct {
	Radius float64
}

// UnitHalfCircle is the unit-radius sphere profile.
var UnitHalfCircle = HalfCircle{Radius: 1}

func (h HalfCircle) At(t float64) mgl64.Vec2 {
	s, c := math.Sincos(math.Pi * t)
	return mgl64.Vec2{h.Radius * s, -h.Radius * c}
}

func (h HalfCircle) Tangent(t float64) mgl64.Vec2 {
	s, c := math.Sincos(math.Pi * t)
	k := h.Radius * math.Pi
	return mgl64.Vec2{k * c, k * s}
}

// Circle is a full counter-clockwise circle around Center. With the center
// off the axis (Center.X() > Radius), the revolved surface is a torus ring.
type Circle struct {
	Center mgl64.Vec2
	Radius float64
}

// Ring returns the circle profile of a torus whose tube of radius tube is
// centered ring units from the axis.
func Ring(ring, tube float64) Circle {
	return Circle{Center: mgl64.Vec2{ring, 0}, Radius: tube}
}

func (c Circle) At(t float64) mgl64.Vec2 {
	s, co := math.Sincos(2 * math.Pi * t)
	return mgl64.Vec2{c.Center.X() + c.Radius*co, c.Center.Y() + c.Radius*s}
}

func (c Circle) Tangent(t float64) mgl64.Vec2 {
	s, co := math.Sincos(2 * math.Pi * t)
	k := 2 * math.Pi * c.Radius
	return mgl64.Vec2{-k * s, k * co}
}

// Polyline is a piecewise-linear profile through Points. Each segment gets
// an equal share of the parameter range.
type Polyline struct {
	Points []mgl64.Vec2
}

// NewPolyline returns a polyline profile. It needs at least two points and
// no point may lie on the negative-radius side of the axis.
func NewPolyline(points ...mgl64.Vec2) (Polyline, error) {
	if len(points) < 2 {
		return Polyline{}, fmt.Errorf("profile: polyline needs at least 2 points, got %d", len(points))
	}
	for i, p := range points {
		if p.X() < 0 {
			return Polyline{}, fmt.Errorf("profile: polyline point %d has negative radius %g", i, p.X())
		}
	}
	pts := make([]mgl64.Vec2, len(points))
	copy(pts, points)
	return Polyline{Points: pts}, nil
}

// segment returns the segment index and local parameter for t.
func (p Polyline) segment(t float64) (int, float64) {
	n := len(p.Points) - 1
	x := math.Min(math.Max(t, 0), 1) * float64(n)
	k := int(x)
	if k >= n {
		k = n - 1
	}
	return k, x - float64(k)
}

func (p Polyline) At(t float64) mgl64.Vec2 {
	k, f := p.segment(t)
	a, b := p.Points[k], p.Points[k+1]
	return a.Add(b.Sub(a).Mul(f))
}

// Tangent returns the direction of the segment containing t. At interior
// control points the following segment wins.
func (p Polyline) Tangent(t float64) mgl64.Vec2 {
	k, _ := p.segment(t)
	n := float64(len(p.Points) - 1)
	return p.Points[k+1].Sub(p.Points[k]).Mul(n)
}
