// Package lattice implements kernel.Kernel with the parametric surface
// generator. It is the default backend: exact seams, analytic normals and
// a vertex count fixed by the segment counts.
package lattice

import (
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/parametric"
	"github.com/chazu/lathe/pkg/profile"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// boundsSamples is the minimum number of profile samples taken to estimate
// a bounding box.
const boundsSamples = 64

// solid remembers what to revolve. Meshing is deferred to ToMesh.
type solid struct {
	p             profile.Profile
	width, height int
	lower, upper  [3]float64
}

// BoundingBox returns the box of the revolved profile samples. Every
// sampled radius sweeps a full circle, so X and Z share the radius bound.
func (s *solid) BoundingBox() (min, max [3]float64) {
	return s.lower, s.upper
}

// Kernel revolves profiles on a regular (W+1)×(H+1) lattice.
type Kernel struct{}

// New returns a lattice kernel.
func New() *Kernel {
	return &Kernel{}
}

// Revolve validates the arguments and records the surface. No vertices are
// produced until ToMesh.
func (k *Kernel) Revolve(p profile.Profile, widthSegments, heightSegments int) (kernel.Solid, error) {
	if p == nil || widthSegments < 1 || heightSegments < 1 {
		return nil, fmt.Errorf("%w: lattice %d×%d", parametric.ErrInvalidArgument, widthSegments, heightSegments)
	}
	s := &solid{p: p, width: widthSegments, height: heightSegments}
	s.lower, s.upper = bounds(p, max(boundsSamples, heightSegments))
	return s, nil
}

// ToMesh runs the generator for a solid made by Revolve.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ls, ok := s.(*solid)
	if !ok {
		return nil, kernel.ErrForeignSolid
	}
	return parametric.Generate(ls.p, ls.width, ls.height)
}

// bounds samples the profile n+1 times. Non-finite samples are skipped.
func bounds(p profile.Profile, n int) (lower, upper [3]float64) {
	radius := 0.0
	lo, hi := math.Inf(1), math.Inf(-1)
	for k := 0; k <= n; k++ {
		pt := p.At(float64(k) / float64(n))
		r, y := math.Abs(pt.X()), pt.Y()
		if math.IsNaN(r) || math.IsInf(r, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		radius = math.Max(radius, r)
		lo, hi = math.Min(lo, y), math.Max(hi, y)
	}
	if lo > hi {
		return
	}
	return [3]float64{-radius, lo, -radius}, [3]float64{radius, hi, radius}
}
