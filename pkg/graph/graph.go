package graph

import (
	"fmt"
	"sort"
)

// Default lattice resolution for shapes that do not set their own.
const (
	DefaultWidthSegments  = 32
	DefaultHeightSegments = 16
)

// GlobalDefaults contains graph-wide default settings.
type GlobalDefaults struct {
	WidthSegments  int          `json:"width_segments"`
	HeightSegments int          `json:"height_segments"`
	Material       MaterialSpec `json:"material"` // applied when a shape sets none
}

// SceneGraph is the top-level immutable data structure produced by Lisp
// evaluation. It is never mutated in place; each evaluation produces a new
// graph.
type SceneGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  GlobalDefaults    `json:"defaults"`
}

// New creates an empty SceneGraph with default settings.
func New() *SceneGraph {
	return &SceneGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults: GlobalDefaults{
			WidthSegments:  DefaultWidthSegments,
			HeightSegments: DefaultHeightSegments,
		},
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *SceneGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *SceneGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *SceneGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *SceneGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *SceneGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Shapes returns all shape nodes, ordered by ID so callers see a stable
// order.
func (g *SceneGraph) Shapes() []*Node {
	var shapes []*Node
	for _, n := range g.Nodes {
		if n.Kind == NodeShape {
			shapes = append(shapes, n)
		}
	}
	sort.Slice(shapes, func(i, j int) bool {
		return shapes[i].ID.String() < shapes[j].ID.String()
	})
	return shapes
}

// Children returns the child nodes of the given node.
func (g *SceneGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *SceneGraph) NodeCount() int {
	return len(g.Nodes)
}

// Resolved returns d with zero segment counts and an empty material
// replaced by the graph defaults.
func (g *SceneGraph) Resolved(d ShapeData) ShapeData {
	if d.WidthSegments == 0 {
		d.WidthSegments = g.Defaults.WidthSegments
	}
	if d.HeightSegments == 0 {
		d.HeightSegments = g.Defaults.HeightSegments
	}
	if d.Material == (MaterialSpec{}) {
		d.Material = g.Defaults.Material
	}
	return d
}
