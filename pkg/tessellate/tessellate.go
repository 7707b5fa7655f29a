// Package tessellate walks a scene graph and produces a draw list using a
// geometry kernel. Each distinct shape is meshed once; every placement of it
// shares that mesh and carries its own world transform.
package tessellate

import (
	"context"
	"fmt"
	"runtime"

	"github.com/chazu/lathe/pkg/graph"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/logging"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// DrawItem is one shape instance ready to render: a shared object-space
// mesh plus the world transform and material of this instance.
type DrawItem struct {
	Shape     string // node name, or short ID for anonymous shapes
	NodeID    graph.NodeID
	Mesh      *kernel.Mesh
	Transform mgl32.Mat4
	Material  graph.MaterialSpec
}

// transformStack accumulates spatial transforms during graph traversal.
// The top is the product of every matrix pushed so far.
type transformStack struct {
	mats []mgl64.Mat4
}

func newTransformStack() *transformStack {
	return &transformStack{mats: []mgl64.Mat4{mgl64.Ident4()}}
}

func (ts *transformStack) push(m mgl64.Mat4) {
	ts.mats = append(ts.mats, ts.top().Mul4(m))
}

func (ts *transformStack) pop() {
	if len(ts.mats) > 1 {
		ts.mats = ts.mats[:len(ts.mats)-1]
	}
}

func (ts *transformStack) top() mgl64.Mat4 {
	return ts.mats[len(ts.mats)-1]
}

// instance is a shape node reached by the walk, before meshing.
type instance struct {
	node  *graph.Node
	shape graph.ShapeData
	world mgl64.Mat4
}

// walker carries the traversal state of one Tessellate call.
type walker struct {
	g         *graph.SceneGraph
	ts        *transformStack
	onPath    map[graph.NodeID]bool
	instances []instance
}

// Tessellate walks the scene graph and returns one draw item per shape
// instance, in traversal order. The tessellator is read-only and never
// mutates the graph. Shapes with equal mesh keys are generated once,
// concurrently, and share the resulting *kernel.Mesh.
func Tessellate(ctx context.Context, g *graph.SceneGraph, k kernel.Kernel) ([]DrawItem, error) {
	if g == nil {
		return nil, nil
	}

	w := &walker{g: g, ts: newTransformStack(), onPath: make(map[graph.NodeID]bool)}
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		if err := w.walkNode(root); err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
	}

	meshes, err := generate(ctx, k, w.instances)
	if err != nil {
		return nil, err
	}

	items := lo.Map(w.instances, func(in instance, _ int) DrawItem {
		return DrawItem{
			Shape:     shapeName(in.node),
			NodeID:    in.node.ID,
			Mesh:      meshes[in.shape.MeshKey()],
			Transform: toMat32(in.world),
			Material:  in.shape.Material,
		}
	})
	logging.Logger().Debug("tessellate: draw list built",
		"instances", len(items), "meshes", len(meshes))
	return items, nil
}

// generate meshes every distinct shape once, in parallel.
func generate(ctx context.Context, k kernel.Kernel, instances []instance) (map[string]*kernel.Mesh, error) {
	unique := lo.UniqBy(instances, func(in instance) string { return in.shape.MeshKey() })
	results := make([]*kernel.Mesh, len(unique))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, in := range unique {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mesh, err := meshShape(k, in.shape)
			if err != nil {
				return fmt.Errorf("tessellate: shape %s: %w", shapeName(in.node), err)
			}
			results[i] = mesh
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	meshes := make(map[string]*kernel.Mesh, len(unique))
	for i, in := range unique {
		meshes[in.shape.MeshKey()] = results[i]
	}
	return meshes, nil
}

// meshShape builds the profile, revolves it and meshes the solid.
func meshShape(k kernel.Kernel, sd graph.ShapeData) (*kernel.Mesh, error) {
	p, err := sd.Profile.Build()
	if err != nil {
		return nil, err
	}
	solid, err := k.Revolve(p, sd.WidthSegments, sd.HeightSegments)
	if err != nil {
		return nil, err
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed: %w", err)
	}
	mesh.PartName = sd.MeshKey()
	return mesh, nil
}

// walkNode recursively traverses a node and its children, collecting shape
// instances.
func (w *walker) walkNode(n *graph.Node) error {
	if w.onPath[n.ID] {
		return fmt.Errorf("cycle through node %s", n.ID.Short())
	}
	w.onPath[n.ID] = true
	defer delete(w.onPath, n.ID)

	switch n.Kind {
	case graph.NodeShape:
		return w.handleShape(n)

	case graph.NodeTransform:
		return w.handleTransform(n)

	case graph.NodeGroup:
		return w.handleGroup(n)

	default:
		return fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// handleShape records an instance of the shape under the current transform.
func (w *walker) handleShape(n *graph.Node) error {
	sd, ok := n.Data.(graph.ShapeData)
	if !ok {
		return fmt.Errorf("shape node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	w.instances = append(w.instances, instance{
		node:  n,
		shape: w.g.Resolved(sd),
		world: w.ts.top(),
	})
	return nil
}

// handleTransform pushes the transform, recurses into children, then pops.
func (w *walker) handleTransform(n *graph.Node) error {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	w.ts.push(td.Matrix())
	defer w.ts.pop()

	for _, child := range w.g.Children(n) {
		if err := w.walkNode(child); err != nil {
			return err
		}
	}
	return nil
}

// handleGroup recurses into children transparently.
func (w *walker) handleGroup(n *graph.Node) error {
	for _, child := range w.g.Children(n) {
		if err := w.walkNode(child); err != nil {
			return err
		}
	}
	return nil
}

// Bake returns one world-space mesh per draw item, for consumers that
// cannot instance.
func Bake(items []DrawItem) []*kernel.Mesh {
	return lo.Map(items, func(it DrawItem, _ int) *kernel.Mesh {
		m := it.Mesh.Transform(it.Transform)
		m.PartName = it.Shape
		return m
	})
}

func shapeName(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

func toMat32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}
