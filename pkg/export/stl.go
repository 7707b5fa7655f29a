// Package export writes generated meshes to interchange formats.
package export

import (
	"errors"
	"fmt"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNothingToExport is returned when every mesh handed to WriteSTL is
// empty.
var ErrNothingToExport = errors.New("export: no triangles")

// minArea is the cross product length below which a triangle is a pole
// sliver and left out of the file.
const minArea = 1e-10

// Part is one mesh placed in world space. The zero Transform collapses
// the mesh; use mgl32.Ident4 for object space.
type Part struct {
	Mesh      *kernel.Mesh
	Transform mgl32.Mat4
}

// Triangles converts the mesh to sdfx triangles, applying mat to every
// vertex. Zero-area triangles are skipped.
func Triangles(m *kernel.Mesh, mat mgl32.Mat4) []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for k := range m.TriangleCount() {
		a, b, c := m.Triangle(k)
		tri := &sdf.Triangle3{vec(mat, a), vec(mat, b), vec(mat, c)}
		if tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0])).Length() < minArea {
			continue
		}
		out = append(out, tri)
	}
	return out
}

func vec(mat mgl32.Mat4, p mgl32.Vec3) v3.Vec {
	q := mgl32.TransformCoordinate(p, mat)
	return v3.Vec{X: float64(q.X()), Y: float64(q.Y()), Z: float64(q.Z())}
}

// WriteSTL writes all parts into one binary STL file at path and returns
// the number of triangles written.
func WriteSTL(path string, parts ...Part) (int, error) {
	var tris []*sdf.Triangle3
	for _, p := range parts {
		if p.Mesh == nil {
			continue
		}
		tris = append(tris, Triangles(p.Mesh, p.Transform)...)
	}
	if len(tris) == 0 {
		return 0, ErrNothingToExport
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return 0, fmt.Errorf("export: writing %s: %w", path, err)
	}
	return len(tris), nil
}
