package parametric

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// errDegenerate marks a tangent or normal too short to normalize. It never
// leaves this package: estimateNormals recovers from it.
var errDegenerate = errors.New("parametric: degenerate geometry")

// relativeTolerance scales with the size of the profile so that tiny and
// huge meshes classify degeneracy the same way.
const relativeTolerance = 1e-12

// tolerance returns the absolute length below which a vector of this
// lattice counts as zero.
func (l *lattice) tolerance() float64 {
	var scale float64
	for j := range l.point {
		for _, n := range [2]float64{l.point[j].Len(), l.tangent[j].Len()} {
			if !math.IsNaN(n) && !math.IsInf(n, 0) {
				scale = math.Max(scale, n)
			}
		}
	}
	return relativeTolerance * scale
}

// unit normalizes v, reporting errDegenerate for short or non-finite input.
func unit(v mgl64.Vec3, eps float64) (mgl64.Vec3, error) {
	n := v.Len()
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= eps {
		return mgl64.Vec3{}, errDegenerate
	}
	return v.Mul(1 / n), nil
}

// surfaceNormal is the normalized cross product of the profile tangent and
// the revolution tangent at node (i, j).
func (l *lattice) surfaceNormal(i, j int, orient, eps float64) (mgl64.Vec3, error) {
	p, d := l.point[j], l.tangent[j]
	s, c := l.sin[i], l.cos[i]

	du := mgl64.Vec3{-p.X() * s, 0, p.X() * c}.Mul(2 * math.Pi)
	dv := mgl64.Vec3{d.X() * c, d.Y(), d.X() * s}
	lu, lv := du.Len(), dv.Len()
	if lu <= eps || lv <= eps {
		return mgl64.Vec3{}, errDegenerate
	}
	return unit(dv.Cross(du).Mul(orient), relativeTolerance*lu*lv)
}

// profileNormal rotates the 2D normal of the profile curve by θ. It equals
// surfaceNormal wherever the radius is positive and stays defined on the
// axis, where the revolution tangent vanishes.
func (l *lattice) profileNormal(i, j int, orient, eps float64) (mgl64.Vec3, error) {
	d := l.tangent[j]
	s, c := l.sin[i], l.cos[i]
	return unit(mgl64.Vec3{d.Y() * c, -d.X(), d.Y() * s}.Mul(orient), eps)
}

// axisNormal is the last resort for a column without a single usable
// normal: the revolution axis, pointing away from the nearer profile end.
func (l *lattice) axisNormal(j int, orient float64) mgl64.Vec3 {
	if 2*j < l.h {
		return mgl64.Vec3{0, -orient, 0}
	}
	return mgl64.Vec3{0, orient, 0}
}

// estimateNormals returns one unit normal per lattice node and the number
// of nodes whose surface normal was degenerate and had to be recovered.
func estimateNormals(l *lattice, orient float64) ([]mgl32.Vec3, int) {
	eps := l.tolerance()
	normals := make([]mgl64.Vec3, (l.w+1)*(l.h+1))
	valid := make([]bool, len(normals))
	recovered := 0

	for j := 0; j <= l.h; j++ {
		for i := 0; i <= l.w; i++ {
			n, err := l.surfaceNormal(i, j, orient, eps)
			if err != nil {
				recovered++
				n, err = l.profileNormal(i, j, orient, eps)
			}
			if err == nil {
				k := l.index(i, j)
				normals[k], valid[k] = n, true
			}
		}
	}

	// Nodes where even the profile tangent vanished borrow the nearest
	// usable normal of their column.
	if recovered > 0 {
		for j := 0; j <= l.h; j++ {
			for i := 0; i <= l.w; i++ {
				k := l.index(i, j)
				if valid[k] {
					continue
				}
				normals[k] = l.nearestInColumn(normals, valid, i, j, orient)
			}
		}
	}

	out := make([]mgl32.Vec3, len(normals))
	for k, n := range normals {
		out[k] = mgl32.Vec3{float32(n[0]), float32(n[1]), float32(n[2])}.Normalize()
	}
	return out, recovered
}

// nearestInColumn searches rows j±1, j±2, ... of column i for a valid
// normal and falls back to the axis direction.
func (l *lattice) nearestInColumn(normals []mgl64.Vec3, valid []bool, i, j int, orient float64) mgl64.Vec3 {
	for off := 1; off <= l.h; off++ {
		for _, jj := range [2]int{j - off, j + off} {
			if jj < 0 || jj > l.h {
				continue
			}
			if k := l.index(i, jj); valid[k] {
				return normals[k]
			}
		}
	}
	return l.axisNormal(j, orient)
}
