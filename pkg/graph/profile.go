package graph

import (
	"fmt"
	"strings"

	"github.com/chazu/lathe/pkg/profile"
	"github.com/go-gl/mathgl/mgl64"
)

// ProfileKind distinguishes between profile curves.
type ProfileKind int

const (
	ProfileHalfCircle ProfileKind = iota // sphere
	ProfileCircle                        // torus when off the axis
	ProfilePolyline                      // lathe outline
)

func (k ProfileKind) String() string {
	switch k {
	case ProfileHalfCircle:
		return "half-circle"
	case ProfileCircle:
		return "circle"
	case ProfilePolyline:
		return "polyline"
	default:
		return "unknown"
	}
}

// ProfileSpec is the serializable description of a profile curve.
type ProfileSpec struct {
	Kind   ProfileKind `json:"kind"`
	Radius float64     `json:"radius,omitempty"` // half-circle, circle
	Center Vec2        `json:"center"`           // circle
	Points []Vec2      `json:"points,omitempty"` // polyline
}

// Build returns the profile s describes.
func (s ProfileSpec) Build() (profile.Profile, error) {
	switch s.Kind {
	case ProfileHalfCircle:
		return profile.HalfCircle{Radius: s.Radius}, nil
	case ProfileCircle:
		return profile.Circle{Center: s.Center.Mgl(), Radius: s.Radius}, nil
	case ProfilePolyline:
		pts := make([]mgl64.Vec2, len(s.Points))
		for i, p := range s.Points {
			pts[i] = p.Mgl()
		}
		return profile.NewPolyline(pts...)
	}
	return nil, fmt.Errorf("graph: unknown profile kind %d", int(s.Kind))
}

// Key is a canonical text form of s; equal keys build equal
// profiles.
func (s ProfileSpec) Key() string {
	var b strings.Builder
	b.WriteString(s.Kind.String())
	switch s.Kind {
	case ProfileHalfCircle:
		fmt.Fprintf(&b, "(%g)", s.Radius)
	case ProfileCircle:
		fmt.Fprintf(&b, "(%g,%g;%g)", s.Center.X, s.Center.Y, s.Radius)
	case ProfilePolyline:
		b.WriteByte('(')
		for i, p := range s.Points {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%g,%g", p.X, p.Y)
		}
		b.WriteByte(')')
	}
	return b.String()
}
