package parametric

import (
	"math"

	"github.com/chazu/lathe/pkg/profile"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// lattice holds the float64 samples of one generation call. The profile is
// evaluated once per row and the revolution angle once per column; nodes
// are the product of the two.
type lattice struct {
	w, h int

	point   []mgl64.Vec2 // profile point per row j
	tangent []mgl64.Vec2 // profile derivative per row j
	sin     []float64    // sin θ per column i
	cos     []float64    // cos θ per column i
}

// index returns the flat row-major index of node (i, j).
func (l *lattice) index(i, j int) int {
	return j*(l.w+1) + i
}

// sampleGrid evaluates the profile and the revolution angle across the
// lattice.
func sampleGrid(p profile.Profile, w, h int) *lattice {
	l := &lattice{
		w:       w,
		h:       h,
		point:   make([]mgl64.Vec2, h+1),
		tangent: make([]mgl64.Vec2, h+1),
		sin:     make([]float64, w+1),
		cos:     make([]float64, w+1),
	}
	for j := 0; j <= h; j++ {
		v := float64(j) / float64(h)
		l.point[j] = p.At(v)
		l.tangent[j] = profile.Derivative(p, v)
	}
	for i := 0; i <= w; i++ {
		if i == w {
			// θ = 2π closes the loop; reuse θ = 0 so the seam is exact.
			l.sin[i], l.cos[i] = l.sin[0], l.cos[0]
			continue
		}
		theta := 2 * math.Pi * float64(i) / float64(w)
		l.sin[i], l.cos[i] = math.Sincos(theta)
	}
	return l
}

// position returns the surface point of node (i, j).
func (l *lattice) position(i, j int) mgl64.Vec3 {
	r, y := l.point[j].X(), l.point[j].Y()
	return mgl64.Vec3{r * l.cos[i], y, r * l.sin[i]}
}

// positions converts every node position to float32 in lattice order.
func (l *lattice) positions() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, 0, (l.w+1)*(l.h+1))
	for j := 0; j <= l.h; j++ {
		for i := 0; i <= l.w; i++ {
			p := l.position(i, j)
			out = append(out, mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])})
		}
	}
	return out
}
