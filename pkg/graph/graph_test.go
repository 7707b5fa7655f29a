package graph

import (
	"encoding/json"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sphereShape returns shape data for a sphere of radius r.
func sphereShape(r float64) ShapeData {
	return ShapeData{
		Profile:        ProfileSpec{Kind: ProfileHalfCircle, Radius: r},
		WidthSegments:  16,
		HeightSegments: 8,
	}
}

func TestNewSceneGraph(t *testing.T) {
	g := New()
	require.NotNil(t, g.Nodes)
	require.NotNil(t, g.NameIndex)
	assert.Equal(t, DefaultWidthSegments, g.Defaults.WidthSegments)
	assert.Equal(t, DefaultHeightSegments, g.Defaults.HeightSegments)
	assert.Zero(t, g.NodeCount())
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()

	id := NewNodeID("defshape/head")
	g.AddNode(&Node{ID: id, Kind: NodeShape, Name: "head", Data: sphereShape(1)})
	g.AddRoot(id)

	assert.Equal(t, 1, g.NodeCount())

	found := g.Lookup("head")
	require.NotNil(t, found)
	assert.Equal(t, id, found.ID)
	assert.Equal(t, id, g.MustLookup("head").ID)
	assert.Nil(t, g.Lookup("nonexistent"))

	got := g.Get(id)
	require.NotNil(t, got)
	assert.Equal(t, "head", got.Name)
	assert.Equal(t, []NodeID{id}, g.Roots)
}

func TestMustLookupPanics(t *testing.T) {
	assert.Panics(t, func() { New().MustLookup("missing") })
}

func TestShapesAreSorted(t *testing.T) {
	g := New()
	for _, name := range []string{"a", "b", "c", "d"} {
		g.AddNode(&Node{ID: NewNodeID("defshape/" + name), Kind: NodeShape, Name: name, Data: sphereShape(1)})
	}
	g.AddNode(&Node{ID: NewNodeID("scene/x"), Kind: NodeGroup, Data: GroupData{}})

	shapes := g.Shapes()
	require.Len(t, shapes, 4)
	for i := 1; i < len(shapes); i++ {
		assert.Less(t, shapes[i-1].ID.String(), shapes[i].ID.String(), "Shapes() not ordered at %d", i)
	}
}

func TestChildren(t *testing.T) {
	g := New()

	childID := NewNodeID("defshape/wheel")
	parentID := NewNodeID("scene/rover")

	g.AddNode(&Node{ID: childID, Kind: NodeShape, Name: "wheel", Data: sphereShape(1)})
	g.AddNode(&Node{
		ID: parentID, Kind: NodeGroup, Name: "rover",
		Children: []NodeID{childID, NewNodeID("missing")},
		Data:     GroupData{},
	})

	children := g.Children(g.Get(parentID))
	require.Len(t, children, 1, "missing children are skipped")
	assert.Equal(t, "wheel", children[0].Name)
}

func TestResolvedAppliesDefaults(t *testing.T) {
	g := New()
	g.Defaults.Material = MaterialSpec{Color: "#ff0000"}

	d := g.Resolved(ShapeData{Profile: ProfileSpec{Kind: ProfileHalfCircle, Radius: 1}})
	assert.Equal(t, DefaultWidthSegments, d.WidthSegments)
	assert.Equal(t, DefaultHeightSegments, d.HeightSegments)
	assert.Equal(t, "#ff0000", d.Material.Color)

	own := g.Resolved(ShapeData{WidthSegments: 5, HeightSegments: 7, Material: MaterialSpec{Color: "#00ff00"}})
	assert.Equal(t, 5, own.WidthSegments)
	assert.Equal(t, 7, own.HeightSegments)
	assert.Equal(t, "#00ff00", own.Material.Color)
}

func TestNodeID(t *testing.T) {
	a := NewNodeID("defshape/head")
	assert.Equal(t, a, NewNodeID("defshape/head"), "same path should produce same NodeID")
	assert.NotEqual(t, a, NewNodeID("defshape/body"))

	var zero NodeID
	assert.True(t, zero.IsZero())
	assert.False(t, a.IsZero())
	assert.Len(t, a.Short(), 12)
}

func TestNodeIDText(t *testing.T) {
	id := NewNodeID("defshape/head")
	text, err := id.MarshalText()
	require.NoError(t, err)

	var back NodeID
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, id, back)
	assert.Error(t, back.UnmarshalText([]byte("abc")), "short id")
}

func TestGraphJSONUsesHexKeys(t *testing.T) {
	g := New()
	id := NewNodeID("defshape/head")
	g.AddNode(&Node{ID: id, Kind: NodeShape, Name: "head", Data: sphereShape(1)})

	data, err := json.Marshal(g)
	require.NoError(t, err)
	var decoded struct {
		NameIndex map[string]string `json:"name_index"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id.String(), decoded.NameIndex["head"])
}

func TestVec3(t *testing.T) {
	a := Vec3{1, 2, 3}
	assert.Equal(t, Vec3{5, 7, 9}, a.Add(Vec3{4, 5, 6}))
	assert.Equal(t, Vec3{2, 4, 6}, a.Scale(2))
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, a.Mgl())
	assert.True(t, Vec3{}.IsZero())
	assert.False(t, a.IsZero())
	assert.Equal(t, "(1.5, 2.5, 3.5)", Vec3{1.5, 2.5, 3.5}.String())
}

func TestTransformMatrix(t *testing.T) {
	tr := Vec3{10, 0, 0}
	rot := Vec3{0, 90, 0}
	scale := Vec3{2, 2, 2}

	tests := []struct {
		name string
		data TransformData
		in   mgl64.Vec3
		want mgl64.Vec3
	}{
		{"identity", TransformData{}, mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 2, 3}},
		{"translate", TransformData{Translation: &tr}, mgl64.Vec3{1, 2, 3}, mgl64.Vec3{11, 2, 3}},
		{"rotate y", TransformData{Rotation: &rot}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, -1}},
		{"scale then translate", TransformData{Translation: &tr, Scale: &scale}, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{12, 2, 2}},
		{"rotate then translate", TransformData{Translation: &tr, Rotation: &rot}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{10, 0, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mgl64.TransformCoordinate(tt.in, tt.data.Matrix())
			// cos(90°) is 6e-17, not 0, so compare by distance.
			assert.Less(t, got.Sub(tt.want).Len(), 1e-9, "Matrix() maps %v to %v, want %v", tt.in, got, tt.want)
		})
	}
}

func TestProfileSpecBuild(t *testing.T) {
	tests := []struct {
		name string
		spec ProfileSpec
		at   float64
		want mgl64.Vec2
	}{
		{"half circle", ProfileSpec{Kind: ProfileHalfCircle, Radius: 2}, 0, mgl64.Vec2{0, -2}},
		{"circle", ProfileSpec{Kind: ProfileCircle, Center: Vec2{3, 1}, Radius: 1}, 0, mgl64.Vec2{4, 1}},
		{"polyline", ProfileSpec{Kind: ProfilePolyline, Points: []Vec2{{0, 0}, {2, 0}, {2, 4}}}, 1, mgl64.Vec2{2, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.spec.Build()
			require.NoError(t, err)
			got := p.At(tt.at)
			assert.Less(t, got.Sub(tt.want).Len(), 1e-12, "At(%v) = %v, want %v", tt.at, got, tt.want)
		})
	}

	_, err := ProfileSpec{Kind: ProfilePolyline, Points: []Vec2{{1, 1}}}.Build()
	assert.Error(t, err, "one-point polyline")
	_, err = ProfileSpec{Kind: ProfileKind(42)}.Build()
	assert.Error(t, err, "unknown kind")
}

func TestMeshKey(t *testing.T) {
	a := sphereShape(1)
	b := sphereShape(1)
	b.Material = MaterialSpec{Color: "#123456"}
	assert.Equal(t, a.MeshKey(), b.MeshKey(), "material must not affect the mesh key")

	c := sphereShape(1)
	c.WidthSegments = 17
	assert.NotEqual(t, a.MeshKey(), c.MeshKey(), "segment counts must affect the mesh key")
	assert.NotEqual(t, a.MeshKey(), sphereShape(2).MeshKey(), "radius must affect the mesh key")

	p1 := ShapeData{Profile: ProfileSpec{Kind: ProfilePolyline, Points: []Vec2{{0, 0}, {1, 1}}}}
	p2 := ShapeData{Profile: ProfileSpec{Kind: ProfilePolyline, Points: []Vec2{{0, 0}, {1, 2}}}}
	assert.NotEqual(t, p1.MeshKey(), p2.MeshKey(), "polyline points must affect the mesh key")
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#4A90D9", color.RGBA{R: 0x4a, G: 0x90, B: 0xd9, A: 0xff}},
		{"#f80", color.RGBA{R: 0xff, G: 0x88, B: 0x00, A: 0xff}},
		{"#11223380", color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x80}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "4A90D9", "#12", "#zzzzzz", "#12345g", "#1234567"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, "ParseColor(%q)", bad)
	}
}

func TestNodeDataInterface(t *testing.T) {
	var _ NodeData = ShapeData{}
	var _ NodeData = TransformData{}
	var _ NodeData = GroupData{}
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "shape", NodeShape.String())
	assert.Equal(t, "circle", ProfileCircle.String())
	assert.Equal(t, "unknown", NodeKind(9).String())
}
