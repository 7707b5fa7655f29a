// Package parametric generates triangle meshes for surfaces of revolution.
//
// A profile curve f: [0,1] -> (radius, height) is revolved a full turn
// about the Y axis and sampled on a (W+1)×(H+1) lattice. Node (i, j) sits
// at revolution fraction u = i/W and profile fraction v = j/H and is stored
// at index j*(W+1) + i. Column i = W duplicates column i = 0 so the
// texture seam gets its own uv.x = 1 vertices.
//
// Generate is a pure function: every call allocates and returns its own
// arrays, and calls may run concurrently.
package parametric

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/logging"
	"github.com/chazu/lathe/pkg/profile"
)

// ErrInvalidArgument is returned, wrapped with detail, when Generate is
// called with a nil profile or a segment count below one.
var ErrInvalidArgument = errors.New("parametric: invalid argument")

// orientationSamples is the profile sampling density used to decide which
// side of the profile is outside.
const orientationSamples = 64

// Counts returns the vertex and index counts of a W×H lattice.
func Counts(widthSegments, heightSegments int) (numVertex, numIndex int) {
	numVertex = (widthSegments + 1) * (heightSegments + 1)
	numIndex = 6 * widthSegments * heightSegments
	return
}

// checkArgs validates the generator preconditions before anything is
// allocated.
func checkArgs(p profile.Profile, widthSegments, heightSegments int) error {
	if p == nil {
		return fmt.Errorf("%w: nil profile", ErrInvalidArgument)
	}
	if widthSegments < 1 {
		return fmt.Errorf("%w: widthSegments must be >= 1, got %d", ErrInvalidArgument, widthSegments)
	}
	if heightSegments < 1 {
		return fmt.Errorf("%w: heightSegments must be >= 1, got %d", ErrInvalidArgument, heightSegments)
	}
	// Every vertex must be addressable by a uint32 index.
	w, h := uint64(widthSegments), uint64(heightSegments)
	if w >= math.MaxUint32 || h >= math.MaxUint32 || (w+1)*(h+1) > math.MaxUint32 {
		return fmt.Errorf("%w: %d×%d lattice exceeds uint32 indices", ErrInvalidArgument, widthSegments, heightSegments)
	}
	return nil
}

// Generate revolves p around the Y axis and returns the mesh with
// (W+1)×(H+1) vertices and 6·W·H indices. Normals point out of the solid
// and triangles are wound to match them. widthSegments is W, the number
// of steps around the axis; heightSegments is H, the number of steps
// along the profile.
func Generate(p profile.Profile, widthSegments, heightSegments int) (*kernel.Mesh, error) {
	if err := checkArgs(p, widthSegments, heightSegments); err != nil {
		return nil, err
	}

	orient := profile.Orientation(p, max(orientationSamples, heightSegments))
	if orient == 0 {
		// Zero-area profiles (a line along the axis, a flat disk) have no
		// inside. Keep the counter-clockwise convention.
		orient = 1
	}

	l := sampleGrid(p, widthSegments, heightSegments)
	normals, recovered := estimateNormals(l, orient)
	if recovered > 0 {
		logging.Logger().Debug("parametric: recovered degenerate normals",
			"count", recovered, "width", widthSegments, "height", heightSegments)
	}

	return &kernel.Mesh{
		Positions: l.positions(),
		Normals:   normals,
		UVs:       mapUVs(widthSegments, heightSegments),
		Indices:   buildIndices(widthSegments, heightSegments, orient < 0),
	}, nil
}
