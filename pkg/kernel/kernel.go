// Package kernel defines the abstract geometry kernel interface.
// Implementations (lattice, sdfx) turn a revolved profile into a solid and
// the solid into a triangle mesh. The kernel abstraction allows swapping
// backends without changing the rest of the system.
package kernel

import (
	"errors"

	"github.com/chazu/lathe/pkg/profile"
)

// ErrForeignSolid is returned when a kernel is handed a Solid created by a
// different kernel.
var ErrForeignSolid = errors.New("kernel: solid was not created by this kernel")

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Revolve sweeps p a full turn around the Y axis. The segment counts
	// are the resolution hints of the revolution and profile directions.
	Revolve(p profile.Profile, widthSegments, heightSegments int) (Solid, error)

	// ToMesh converts a solid to a triangle mesh in object space.
	ToMesh(s Solid) (*Mesh, error)
}
