package graph

import (
	"fmt"
	"image/color"
	"strings"

	"cogentcore.org/core/colors"
	"github.com/go-gl/mathgl/mgl64"
)

// ---------------------------------------------------------------------------
// Material
// ---------------------------------------------------------------------------

// MaterialSpec describes how a shape is shaded. It never affects geometry.
type MaterialSpec struct {
	Name    string `json:"name,omitempty"`
	Color   string `json:"color,omitempty"`   // "#rrggbb", empty = palette
	Texture string `json:"texture,omitempty"` // image sampled with the mesh uvs
}

// ParseColor decodes a "#rgb", "#rrggbb" or "#rrggbbaa" color.
func ParseColor(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("color %q must start with #", s)
	}
	// colors.FromHex scans with Sscanf and ignores stray characters.
	if strings.Trim(hex, "0123456789abcdefABCDEF") != "" {
		return color.RGBA{}, fmt.Errorf("color %q has non-hex digits", s)
	}
	c, err := colors.FromHex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q must have 3, 6 or 8 hex digits: %w", s, err)
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Shape
// ---------------------------------------------------------------------------

// ShapeData is a profile revolved around the local Y axis. Segment counts
// of zero select the evaluator's defaults.
type ShapeData struct {
	Profile        ProfileSpec  `json:"profile"`
	WidthSegments  int          `json:"width_segments"`
	HeightSegments int          `json:"height_segments"`
	Material       MaterialSpec `json:"material"`
}

func (ShapeData) nodeData() {}

// MeshKey identifies the mesh a shape generates. Shapes with equal keys
// share one mesh regardless of material.
func (d ShapeData) MeshKey() string {
	return fmt.Sprintf("%s@%dx%d", d.Profile.Key(), d.WidthSegments, d.HeightSegments)
}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to child nodes.
// Created by the (place ...) form. The matrix is T·Rz·Ry·Rx·S.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
	Scale       *Vec3 `json:"scale,omitempty"`
}

func (TransformData) nodeData() {}

// Matrix returns the local-to-parent matrix.
func (d TransformData) Matrix() mgl64.Mat4 {
	m := mgl64.Ident4()
	if d.Translation != nil {
		m = mgl64.Translate3D(d.Translation.X, d.Translation.Y, d.Translation.Z)
	}
	if d.Rotation != nil {
		r := d.Rotation
		m = m.Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(r.Z))).
			Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(r.Y))).
			Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(r.X)))
	}
	if d.Scale != nil {
		m = m.Mul4(mgl64.Scale3D(d.Scale.X, d.Scale.Y, d.Scale.Z))
	}
	return m
}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping. Created by the (scene ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
