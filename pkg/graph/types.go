package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// NodeID is a content-addressed identifier for graph nodes: the SHA-256 of
// the node's path in the source program.
type NodeID [sha256.Size]byte

// ZeroID is the unset NodeID.
var ZeroID NodeID

// NewNodeID derives the ID for a node path such as "defshape/wheel".
func NewNodeID(path string) NodeID {
	return sha256.Sum256([]byte(path))
}

func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first 6 bytes in hex, for messages.
func (id NodeID) Short() string {
	return hex.EncodeToString(id[:6])
}

func (id NodeID) IsZero() bool {
	return id == ZeroID
}

// MarshalText lets NodeID key JSON objects.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *NodeID) UnmarshalText(b []byte) error {
	if hex.DecodedLen(len(b)) != len(id) {
		return fmt.Errorf("graph: node id %q has %d hex digits, want %d", b, len(b), 2*len(id))
	}
	_, err := hex.Decode(id[:], b)
	return err
}

// Vec2 is a point in the (radius, height) profile plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Mgl() mgl64.Vec2 { return mgl64.Vec2{v.X, v.Y} }

// Vec3 is a 3D vector in scene units.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

func (v Vec3) String() string { return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z) }

func (v Vec3) Mgl() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

func (v Vec3) IsZero() bool { return v == Vec3{} }
