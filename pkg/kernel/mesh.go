package kernel

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle mesh suitable for rendering. Positions,
// Normals and UVs are parallel per-vertex arrays; Indices holds three
// vertex indices per triangle, wound clockwise when viewed from outside in
// a left-handed frame.
type Mesh struct {
	Positions []mgl32.Vec3 `json:"positions"`
	Normals   []mgl32.Vec3 `json:"normals"`
	UVs       []mgl32.Vec2 `json:"uvs"`
	Indices   []uint32     `json:"indices"`
	PartName  string       `json:"partName"` // which scene shape this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// ElementCount is the draw count a GPU buffer holding this mesh uses.
func (m *Mesh) ElementCount() int {
	return len(m.Indices)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Positions) == 0
}

// Triangle returns the three corner positions of triangle k.
func (m *Mesh) Triangle(k int) (a, b, c mgl32.Vec3) {
	i := m.Indices[3*k : 3*k+3]
	return m.Positions[i[0]], m.Positions[i[1]], m.Positions[i[2]]
}

// Flatten returns the mesh as flat float32 arrays: 3 floats per position,
// 3 per normal and 2 per uv.
func (m *Mesh) Flatten() (positions, normals, uvs []float32) {
	positions = make([]float32, 0, 3*len(m.Positions))
	for _, p := range m.Positions {
		positions = append(positions, p[0], p[1], p[2])
	}
	normals = make([]float32, 0, 3*len(m.Normals))
	for _, n := range m.Normals {
		normals = append(normals, n[0], n[1], n[2])
	}
	uvs = make([]float32, 0, 2*len(m.UVs))
	for _, uv := range m.UVs {
		uvs = append(uvs, uv[0], uv[1])
	}
	return positions, normals, uvs
}

// InterleavedStride is the number of floats per vertex in Interleave output.
const InterleavedStride = 8

// Interleave packs position, normal and uv per vertex into one array with
// InterleavedStride floats per vertex, the layout of a single vertex buffer
// with attributes at offsets 0, 3 and 6.
func (m *Mesh) Interleave() []float32 {
	out := make([]float32, 0, InterleavedStride*len(m.Positions))
	for i, p := range m.Positions {
		n := m.Normals[i]
		uv := m.UVs[i]
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the positions.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return min, max
	}
	min, max = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			min[k] = math32.Min(min[k], p[k])
			max[k] = math32.Max(max[k], p[k])
		}
	}
	return min, max
}

// Transform returns a copy of the mesh with positions mapped by mat and
// normals by its inverse transpose, renormalized. UVs and indices are
// copied unchanged.
func (m *Mesh) Transform(mat mgl32.Mat4) *Mesh {
	normalMat := mat.Mat3().Inv().Transpose()
	out := &Mesh{
		Positions: make([]mgl32.Vec3, len(m.Positions)),
		Normals:   make([]mgl32.Vec3, len(m.Normals)),
		UVs:       make([]mgl32.Vec2, len(m.UVs)),
		Indices:   make([]uint32, len(m.Indices)),
		PartName:  m.PartName,
	}
	for i, p := range m.Positions {
		out.Positions[i] = mgl32.TransformCoordinate(p, mat)
	}
	for i, n := range m.Normals {
		out.Normals[i] = normalMat.Mul3x1(n).Normalize()
	}
	copy(out.UVs, m.UVs)
	copy(out.Indices, m.Indices)
	// A mirroring transform turns the winding inside out.
	if mat.Mat3().Det() < 0 {
		for k := 0; k+2 < len(out.Indices); k += 3 {
			out.Indices[k+1], out.Indices[k+2] = out.Indices[k+2], out.Indices[k+1]
		}
	}
	return out
}

// NormalTolerance is the allowed deviation of a normal's length from 1.
const NormalTolerance = 1e-4

// Validate checks that the per-vertex arrays agree in length, that every
// index is in range, that the index count is a multiple of three and that
// every normal is finite and unit length.
func (m *Mesh) Validate() error {
	nv := len(m.Positions)
	if len(m.Normals) != nv {
		return fmt.Errorf("kernel: %d normals for %d positions", len(m.Normals), nv)
	}
	if len(m.UVs) != nv {
		return fmt.Errorf("kernel: %d uvs for %d positions", len(m.UVs), nv)
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("kernel: index count %d is not a multiple of 3", len(m.Indices))
	}
	for k, idx := range m.Indices {
		if int(idx) >= nv {
			return fmt.Errorf("kernel: index %d at position %d out of range [0,%d)", idx, k, nv)
		}
	}
	for i, n := range m.Normals {
		for _, c := range n {
			if math32.IsNaN(c) || math32.IsInf(c, 0) {
				return fmt.Errorf("kernel: normal %d is not finite: %v", i, n)
			}
		}
		if l := n.Len(); math32.Abs(l-1) > NormalTolerance {
			return fmt.Errorf("kernel: normal %d has length %g", i, l)
		}
	}
	return nil
}
