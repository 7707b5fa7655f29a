package tessellate_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/chazu/lathe/pkg/graph"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/kernel/lattice"
	"github.com/chazu/lathe/pkg/tessellate"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingKernel wraps the lattice kernel and counts ToMesh calls.
type countingKernel struct {
	kernel.Kernel
	meshed atomic.Int32
	fail   error
}

func newKernel() *countingKernel {
	return &countingKernel{Kernel: lattice.New()}
}

func (k *countingKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	k.meshed.Add(1)
	if k.fail != nil {
		return nil, k.fail
	}
	return k.Kernel.ToMesh(s)
}

// makeSphere creates a named half-circle shape node.
func makeSphere(name string, radius float64) *graph.Node {
	return &graph.Node{
		ID:   graph.NewNodeID(name),
		Kind: graph.NodeShape,
		Name: name,
		Data: graph.ShapeData{
			Profile:        graph.ProfileSpec{Kind: graph.ProfileHalfCircle, Radius: radius},
			WidthSegments:  8,
			HeightSegments: 4,
		},
	}
}

// makePlaceTransform creates a transform node with a translation.
func makePlaceTransform(name string, tx, ty, tz float64, children ...graph.NodeID) *graph.Node {
	t := graph.Vec3{X: tx, Y: ty, Z: tz}
	return &graph.Node{
		ID:       graph.NewNodeID(name),
		Kind:     graph.NodeTransform,
		Children: children,
		Data:     graph.TransformData{Translation: &t},
	}
}

// makeGroup creates a group node with children.
func makeGroup(name string, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID(name),
		Kind:     graph.NodeGroup,
		Name:     name,
		Children: children,
		Data:     graph.GroupData{Description: name},
	}
}

func buildGraph(roots []graph.NodeID, nodes ...*graph.Node) *graph.SceneGraph {
	g := graph.New()
	for _, n := range nodes {
		g.AddNode(n)
	}
	for _, r := range roots {
		g.AddRoot(r)
	}
	return g
}

func translation(m mgl32.Mat4) mgl32.Vec3 {
	return m.Col(3).Vec3()
}

func TestTessellateNilGraph(t *testing.T) {
	items, err := tessellate.Tessellate(context.Background(), nil, newKernel())
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestTessellateEmptyGraph(t *testing.T) {
	items, err := tessellate.Tessellate(context.Background(), graph.New(), newKernel())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTessellateSingleShape(t *testing.T) {
	ball := makeSphere("ball", 1)
	g := buildGraph([]graph.NodeID{ball.ID}, ball)

	items, err := tessellate.Tessellate(context.Background(), g, newKernel())
	require.NoError(t, err)
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, "ball", it.Shape)
	assert.Equal(t, ball.ID, it.NodeID)
	assert.Equal(t, mgl32.Ident4(), it.Transform, "root shape transform")
	assert.Equal(t, 9*5, it.Mesh.VertexCount())
	assert.NoError(t, it.Mesh.Validate())
}

func TestTessellateSharedShape(t *testing.T) {
	wheel := makeSphere("wheel", 0.5)
	left := makePlaceTransform("left", -2, 0, 0, wheel.ID)
	right := makePlaceTransform("right", 2, 0, 0, wheel.ID)
	// A second shape with the same profile and resolution reuses the mesh.
	twin := makeSphere("twin", 0.5)
	root := makeGroup("rover", left.ID, right.ID, twin.ID)
	g := buildGraph([]graph.NodeID{root.ID}, wheel, left, right, twin, root)

	k := newKernel()
	items, err := tessellate.Tessellate(context.Background(), g, k)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, int32(1), k.meshed.Load(), "ToMesh calls")
	assert.Same(t, items[0].Mesh, items[1].Mesh, "instances of one shape must share the mesh")
	assert.Same(t, items[1].Mesh, items[2].Mesh, "instances of one shape must share the mesh")

	assert.Equal(t, mgl32.Vec3{-2, 0, 0}, translation(items[0].Transform))
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, translation(items[1].Transform))
	assert.Equal(t, "twin", items[2].Shape)
}

func TestTessellateNestedTransforms(t *testing.T) {
	ball := makeSphere("ball", 1)
	inner := makePlaceTransform("inner", 0, 1, 0, ball.ID)
	outer := makePlaceTransform("outer", 10, 0, 0, inner.ID)
	rot := graph.Vec3{Y: 90}
	outer.Data = graph.TransformData{Translation: &graph.Vec3{X: 10}, Rotation: &rot}
	g := buildGraph([]graph.NodeID{outer.ID}, ball, inner, outer)

	items, err := tessellate.Tessellate(context.Background(), g, newKernel())
	require.NoError(t, err)
	require.Len(t, items, 1)

	// outer·inner applied to the origin: up 1, turned about Y, then moved
	// to x=10.
	p := mgl32.TransformCoordinate(mgl32.Vec3{}, items[0].Transform)
	assert.Less(t, p.Sub(mgl32.Vec3{10, 1, 0}).Len(), float32(1e-5), "origin maps to %v", p)
	// +X turns to -Z under a 90° Y rotation.
	q := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, items[0].Transform)
	assert.Less(t, q.Sub(mgl32.Vec3{10, 1, -1}).Len(), float32(1e-5), "+X maps to %v", q)
}

func TestTessellateResolvesDefaults(t *testing.T) {
	ball := makeSphere("ball", 1)
	ball.Data = graph.ShapeData{
		Profile: graph.ProfileSpec{Kind: graph.ProfileHalfCircle, Radius: 1},
	}
	g := buildGraph([]graph.NodeID{ball.ID}, ball)
	g.Defaults.WidthSegments = 6
	g.Defaults.HeightSegments = 3
	g.Defaults.Material = graph.MaterialSpec{Color: "#ffffff"}

	items, err := tessellate.Tessellate(context.Background(), g, newKernel())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7*4, items[0].Mesh.VertexCount())
	assert.Equal(t, "#ffffff", items[0].Material.Color)
}

func TestTessellateCycle(t *testing.T) {
	a := makePlaceTransform("a", 0, 0, 0)
	b := makePlaceTransform("b", 0, 0, 0, a.ID)
	a.Children = []graph.NodeID{b.ID}
	g := buildGraph([]graph.NodeID{a.ID}, a, b)

	_, err := tessellate.Tessellate(context.Background(), g, newKernel())
	assert.ErrorContains(t, err, "cycle")
}

func TestTessellateKernelError(t *testing.T) {
	ball := makeSphere("ball", 1)
	g := buildGraph([]graph.NodeID{ball.ID}, ball)

	boom := errors.New("boom")
	k := newKernel()
	k.fail = boom
	_, err := tessellate.Tessellate(context.Background(), g, k)
	assert.ErrorIs(t, err, boom)
}

func TestTessellateBadProfile(t *testing.T) {
	line := &graph.Node{
		ID:   graph.NewNodeID("line"),
		Kind: graph.NodeShape,
		Data: graph.ShapeData{
			Profile:        graph.ProfileSpec{Kind: graph.ProfilePolyline},
			WidthSegments:  4,
			HeightSegments: 4,
		},
	}
	g := buildGraph([]graph.NodeID{line.ID}, line)

	_, err := tessellate.Tessellate(context.Background(), g, newKernel())
	assert.Error(t, err, "polyline without points")
}

func TestTessellateCancelled(t *testing.T) {
	ball := makeSphere("ball", 1)
	g := buildGraph([]graph.NodeID{ball.ID}, ball)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tessellate.Tessellate(ctx, g, newKernel())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTessellateDoesNotMutateGraph(t *testing.T) {
	ball := makeSphere("ball", 1)
	place := makePlaceTransform("place", 1, 2, 3, ball.ID)
	g := buildGraph([]graph.NodeID{place.ID}, ball, place)

	before := g.NodeCount()
	_, err := tessellate.Tessellate(context.Background(), g, newKernel())
	require.NoError(t, err)
	assert.Equal(t, before, g.NodeCount())
	assert.Equal(t, 8, g.Get(ball.ID).Data.(graph.ShapeData).WidthSegments, "shape data changed")
}

func TestBake(t *testing.T) {
	ball := makeSphere("ball", 1)
	place := makePlaceTransform("place", 5, 0, 0, ball.ID)
	g := buildGraph([]graph.NodeID{place.ID}, ball, place)

	items, err := tessellate.Tessellate(context.Background(), g, newKernel())
	require.NoError(t, err)
	baked := tessellate.Bake(items)
	require.Len(t, baked, 1)
	require.NotSame(t, items[0].Mesh, baked[0], "Bake must copy the shared mesh")
	assert.Equal(t, "ball", baked[0].PartName)

	lo, hi := baked[0].Bounds()
	assert.InDelta(t, 4, lo.X(), 1e-5)
	assert.InDelta(t, 6, hi.X(), 1e-5)
	// The shared mesh stays in object space.
	olo, _ := items[0].Mesh.Bounds()
	assert.InDelta(t, -1, olo.X(), 1e-5, "object-space mesh moved")
}
