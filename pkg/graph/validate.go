package graph

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
)

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Validate runs all Tier 1 structural validation checks on the scene graph
// and returns a slice of validation errors. An empty slice means the graph is
// valid. This function is read-only and never mutates the graph.
func Validate(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateKinds(g)...)
	return errs
}

// ValidateAll runs all validation tiers (structural, geometric, material)
// and returns a ValidationResult with separated errors and warnings.
// maxSegments caps the lattice size per axis; zero disables the cap.
func ValidateAll(g *SceneGraph, maxSegments int) ValidationResult {
	tier1 := Validate(g)
	tier2Errs, tier2Warnings := validateGeometry(g, maxSegments)
	tier3Warnings := validateMaterial(g)

	// Separate Tier 1 findings into errors and warnings.
	var result ValidationResult
	for _, e := range tier1 {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	result.Errors = append(result.Errors, tier2Errs...)
	result.Warnings = append(result.Warnings, tier2Warnings...)
	result.Warnings = append(result.Warnings, tier3Warnings...)

	return result
}

// label names a node in messages: its user name when it has one.
func label(g *SceneGraph, id NodeID) string {
	if n := g.Nodes[id]; n != nil && n.Name != "" {
		return n.Name
	}
	return id.Short()
}

// sortedIDs returns the node IDs in a stable order so findings come out
// the same way on every run.
func sortedIDs(g *SceneGraph) []NodeID {
	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b NodeID) int { return bytes.Compare(a[:], b[:]) })
	return ids
}

// validateDAG reports the first cycle through Children edges, spelled out
// as the chain of nodes that closes it. Roots are searched first so the
// chain starts where the user's scene does.
func validateDAG(g *SceneGraph) []ValidationError {
	done := make(map[NodeID]bool)
	onPath := make(map[NodeID]int) // index into path
	var path []NodeID

	var visit func(id NodeID) []NodeID
	visit = func(id NodeID) []NodeID {
		if done[id] {
			return nil
		}
		if at, ok := onPath[id]; ok {
			return append(slices.Clone(path[at:]), id)
		}
		n := g.Nodes[id]
		if n == nil {
			return nil // dangling, reported by validateReferences
		}
		onPath[id] = len(path)
		path = append(path, id)
		for _, c := range n.Children {
			if loop := visit(c); loop != nil {
				return loop
			}
		}
		path = path[:len(path)-1]
		delete(onPath, id)
		done[id] = true
		return nil
	}

	for _, id := range append(slices.Clone(g.Roots), sortedIDs(g)...) {
		loop := visit(id)
		if loop == nil {
			continue
		}
		names := make([]string, len(loop))
		for i, l := range loop {
			names[i] = label(g, l)
		}
		return []ValidationError{{
			NodeID:   loop[0],
			Message:  "cycle detected: " + strings.Join(names, " -> "),
			Severity: SeverityError,
		}}
	}
	return nil
}

// validateReferences checks every child edge. A missing child is an error.
// A scene placed under another node is a warning: it is a root of its own,
// so it gets drawn once standalone and again at the placement.
func validateReferences(g *SceneGraph) []ValidationError {
	roots := make(map[NodeID]bool, len(g.Roots))
	for _, r := range g.Roots {
		roots[r] = true
	}

	var errs []ValidationError
	for _, id := range sortedIDs(g) {
		n := g.Nodes[id]
		for _, c := range n.Children {
			child, ok := g.Nodes[c]
			switch {
			case !ok:
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("child reference %s of %q does not exist", c.Short(), label(g, id)),
					Severity: SeverityError,
				})
			case roots[c] && child.Kind == NodeGroup:
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("scene %q is placed under %q and will be drawn twice", label(g, c), label(g, id)),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}

// validateNames checks the name index against the nodes. Every entry must
// point at an existing node carrying that name, and no two nodes may share
// a name; place and shape resolve references through the index, so any
// mismatch would silently pick the wrong node.
func validateNames(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	names := make([]string, 0, len(g.NameIndex))
	for name := range g.NameIndex {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		id := g.NameIndex[name]
		n, ok := g.Nodes[id]
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		case n.Name != name:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("name index entry %q points at node named %q", name, n.Name),
				Severity: SeverityError,
			})
		}
	}

	owners := make(map[string]int)
	for _, n := range g.Nodes {
		if n.Name != "" {
			owners[n.Name]++
		}
	}
	var dups []string
	for name, count := range owners {
		if count > 1 {
			dups = append(dups, name)
		}
	}
	slices.Sort(dups)
	for _, name := range dups {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, owners[name]),
			Severity: SeverityError,
		})
	}
	return errs
}

// validateRoots checks that roots exist and warns about nodes no scene
// draws, typically a defshape that is never placed.
func validateRoots(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	reachable := make(map[NodeID]bool, len(g.Nodes))
	var mark func(id NodeID)
	mark = func(id NodeID) {
		if reachable[id] {
			return
		}
		n := g.Nodes[id]
		if n == nil {
			return
		}
		reachable[id] = true
		for _, c := range n.Children {
			mark(c)
		}
	}
	for _, r := range g.Roots {
		if _, ok := g.Nodes[r]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", r.Short()),
				Severity: SeverityError,
			})
			continue
		}
		mark(r)
	}

	for _, id := range sortedIDs(g) {
		if reachable[id] {
			continue
		}
		msg := fmt.Sprintf("node %q is not reachable from any root (orphan)", label(g, id))
		if g.Nodes[id].Kind == NodeShape && g.Nodes[id].Name != "" {
			msg = fmt.Sprintf("shape %q is defined but never placed in a scene (orphan)", label(g, id))
		}
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  msg,
			Severity: SeverityWarning,
		})
	}
	return errs
}

// validateKinds checks that every node carries the payload its kind calls
// for and that only transforms and groups have children.
func validateKinds(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, id := range sortedIDs(g) {
		node := g.Nodes[id]
		var ok bool
		switch node.Kind {
		case NodeShape:
			_, ok = node.Data.(ShapeData)
			if len(node.Children) > 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("shape has %d children, shapes are leaves", len(node.Children)),
					Severity: SeverityError,
				})
			}
		case NodeTransform:
			_, ok = node.Data.(TransformData)
			if len(node.Children) == 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  "transform has no children",
					Severity: SeverityWarning,
				})
			}
		case NodeGroup:
			_, ok = node.Data.(GroupData)
		default:
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("unknown node kind %d", int(node.Kind)),
				Severity: SeverityError,
			})
			continue
		}
		if !ok {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s node carries %T data", node.Kind, node.Data),
				Severity: SeverityError,
			})
		}
	}

	return errs
}
