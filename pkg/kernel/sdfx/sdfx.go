// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// The profile is sampled into a closed polygon, revolved as a signed
// distance field and meshed with marching cubes. The output is a
// triangle soup: no lattice, no shared vertices, cylindrical UVs.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/logging"
	"github.com/chazu/lathe/pkg/parametric"
	"github.com/chazu/lathe/pkg/profile"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// minPolygonSamples keeps coarse height hints from producing a polygon
// too crude to mesh.
const minPolygonSamples = 16

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel meshing with the given number of marching
// cubes cells along the longest bounding box axis. Non-positive values
// select DefaultMeshCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// Cells reports the marching cubes resolution.
func (k *SdfxKernel) Cells() int {
	return k.cells
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) (sdf.SDF3, error) {
	ss, ok := s.(*sdfxSolid)
	if !ok {
		return nil, kernel.ErrForeignSolid
	}
	return ss.s, nil
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Polygon samples the profile at heightSegments+1 parameters (at least
// minPolygonSamples) and returns the vertices of the closed outline in
// the (radius, height) plane. Repeated points are dropped; the closing
// edge back to the first vertex is implied.
func Polygon(p profile.Profile, heightSegments int) []v2.Vec {
	n := max(heightSegments, minPolygonSamples)
	pts := make([]v2.Vec, 0, n+1)
	for k := 0; k <= n; k++ {
		at := p.At(float64(k) / float64(n))
		v := v2.Vec{X: math.Max(at.X(), 0), Y: at.Y()}
		if len(pts) > 0 && samePoint(pts[len(pts)-1], v) {
			continue
		}
		pts = append(pts, v)
	}
	if len(pts) > 1 && samePoint(pts[0], pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}
	return pts
}

func samePoint(a, b v2.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-12 && math.Abs(a.Y-b.Y) < 1e-12
}

// Revolve sweeps the profile polygon around the Y axis. widthSegments is
// ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Revolve(p profile.Profile, widthSegments, heightSegments int) (kernel.Solid, error) {
	if p == nil || widthSegments < 1 || heightSegments < 1 {
		return nil, fmt.Errorf("%w: lattice %d×%d", parametric.ErrInvalidArgument, widthSegments, heightSegments)
	}
	pts := Polygon(p, heightSegments)
	if len(pts) < 3 {
		return nil, fmt.Errorf("%w: profile outline has %d distinct points", parametric.ErrInvalidArgument, len(pts))
	}
	for _, v := range pts {
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
			return nil, fmt.Errorf("%w: profile is not finite", parametric.ErrInvalidArgument)
		}
	}

	outline, err := sdf.Polygon2D(pts)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}
	s, err := sdf.Revolve3D(outline)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Revolve3D: %w", err)
	}
	// sdfx revolves about Z with the outline's Y becoming height. Tip Z
	// onto Y.
	return wrap(sdf.Transform3D(s, sdf.RotateX(-math.Pi/2))), nil
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
// Zero-area triangles are dropped.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	bb := sdf3.BoundingBox()
	height := bb.Max.Y - bb.Min.Y

	mesh := &kernel.Mesh{
		Positions: make([]mgl32.Vec3, 0, len(triangles)*3),
		Normals:   make([]mgl32.Vec3, 0, len(triangles)*3),
		UVs:       make([]mgl32.Vec2, 0, len(triangles)*3),
		Indices:   make([]uint32, 0, len(triangles)*3),
	}
	dropped := 0
	for _, tri := range triangles {
		e1, e2 := tri[1].Sub(tri[0]), tri[2].Sub(tri[0])
		if e1.Cross(e2).Length() < 1e-12 {
			dropped++
			continue
		}
		n := tri.Normal()
		normal := mgl32.Vec3{float32(n.X), float32(n.Y), float32(n.Z)}

		for j := 0; j < 3; j++ {
			v := tri[j]
			mesh.Indices = append(mesh.Indices, uint32(len(mesh.Positions)))
			mesh.Positions = append(mesh.Positions, mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)})
			mesh.Normals = append(mesh.Normals, normal)
			mesh.UVs = append(mesh.UVs, cylindricalUV(v.X, v.Y, v.Z, bb.Min.Y, height))
		}
	}
	if dropped > 0 {
		logging.Logger().Debug("sdfx: dropped degenerate triangles", "count", dropped, "kept", mesh.TriangleCount())
	}
	return mesh, nil
}

// cylindricalUV maps the revolution angle to u and the height within the
// bounding box to v, the same parameterization the lattice generator uses.
func cylindricalUV(x, y, z, minY, height float64) mgl32.Vec2 {
	u := math.Atan2(z, x) / (2 * math.Pi)
	if u < 0 {
		u++
	}
	v := 0.0
	if height > 0 {
		v = (y - minY) / height
	}
	return mgl32.Vec2{float32(u), float32(v)}
}
