package graph

import (
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Tier 2: geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// minUsefulWidth is the revolution resolution below which a surface no
// longer looks round.
const minUsefulWidth = 3

// validateGeometry runs all Tier 2 geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *SceneGraph, maxSegments int) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	segErrs, segWarnings := validateSegments(g, maxSegments)
	errs = append(errs, segErrs...)
	warnings = append(warnings, segWarnings...)

	profErrs, profWarnings := validateProfiles(g)
	errs = append(errs, profErrs...)
	warnings = append(warnings, profWarnings...)

	errs = append(errs, validateScale(g)...)

	return errs, warnings
}

// validateSegments checks the lattice resolution of every shape after
// defaults are applied.
func validateSegments(g *SceneGraph, maxSegments int) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		sd, ok := node.Data.(ShapeData)
		if !ok {
			continue
		}
		if sd.WidthSegments < 0 || sd.HeightSegments < 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("segment counts %d×%d must not be negative", sd.WidthSegments, sd.HeightSegments),
				Severity: SeverityError,
			})
			continue
		}

		sd = g.Resolved(sd)
		if sd.WidthSegments < 1 || sd.HeightSegments < 1 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("segment counts %d×%d must be at least 1", sd.WidthSegments, sd.HeightSegments),
				Severity: SeverityError,
			})
			continue
		}
		if maxSegments > 0 && (sd.WidthSegments > maxSegments || sd.HeightSegments > maxSegments) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("segment counts %d×%d exceed the limit of %d", sd.WidthSegments, sd.HeightSegments, maxSegments),
				Severity: SeverityError,
			})
			continue
		}
		if sd.WidthSegments < minUsefulWidth {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("width segments %d: the surface will be flat", sd.WidthSegments),
			})
		}
	}

	return errs, warnings
}

// validateProfiles checks profile parameters: positive radii, enough
// polyline points and nothing on the negative side of the axis.
func validateProfiles(g *SceneGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		sd, ok := node.Data.(ShapeData)
		if !ok {
			continue
		}
		p := sd.Profile

		switch p.Kind {
		case ProfileHalfCircle, ProfileCircle:
			if !(p.Radius > 0) || math.IsInf(p.Radius, 0) {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("%s radius is %.4f, must be positive", p.Kind, p.Radius),
					Severity: SeverityError,
				})
				continue
			}
			if p.Kind == ProfileCircle && p.Center.X < p.Radius {
				warnings = append(warnings, ValidationWarning{
					NodeID:  node.ID,
					Message: fmt.Sprintf("circle centered %.4f from the axis with radius %.4f crosses the axis", p.Center.X, p.Radius),
				})
			}
		case ProfilePolyline:
			if len(p.Points) < 2 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("polyline has %d points, needs at least 2", len(p.Points)),
					Severity: SeverityError,
				})
				continue
			}
			for i, pt := range p.Points {
				if pt.X < 0 {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("polyline point %d has negative radius %.4f", i, pt.X),
						Severity: SeverityError,
					})
				}
			}
		default:
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("unknown profile kind %d", int(p.Kind)),
				Severity: SeverityError,
			})
		}
	}

	return errs, warnings
}

// validateScale rejects transforms that scale an axis to zero, which would
// collapse every normal below them.
func validateScale(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		td, ok := node.Data.(TransformData)
		if !ok || td.Scale == nil {
			continue
		}
		s := td.Scale
		if s.X == 0 || s.Y == 0 || s.Z == 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("scale (%.4f, %.4f, %.4f) has a zero axis", s.X, s.Y, s.Z),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// ---------------------------------------------------------------------------
// Tier 3: material warnings (advisory only)
// ---------------------------------------------------------------------------

// validateMaterial runs all Tier 3 material checks.
func validateMaterial(g *SceneGraph) []ValidationWarning {
	var warnings []ValidationWarning

	check := func(id NodeID, m MaterialSpec) {
		if m.Color == "" {
			return
		}
		if _, err := ParseColor(m.Color); err != nil {
			warnings = append(warnings, ValidationWarning{
				NodeID:  id,
				Message: fmt.Sprintf("material %q: %v, using the palette", m.Name, err),
			})
		}
	}

	check(ZeroID, g.Defaults.Material)
	for _, node := range g.Nodes {
		if sd, ok := node.Data.(ShapeData); ok {
			check(node.ID, sd.Material)
		}
	}

	return warnings
}
