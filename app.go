package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/chazu/lathe/pkg/config"
	"github.com/chazu/lathe/pkg/engine"
	"github.com/chazu/lathe/pkg/export"
	"github.com/chazu/lathe/pkg/graph"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/kernel/lattice"
	"github.com/chazu/lathe/pkg/kernel/sdfx"
	"github.com/chazu/lathe/pkg/logging"
	"github.com/chazu/lathe/pkg/parametric"
	"github.com/chazu/lathe/pkg/profile"
	"github.com/chazu/lathe/pkg/tessellate"
	"github.com/samber/lo"
)

// colorPalette is a default palette used to assign distinct colors to
// instances whose material sets no color.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// presets are the profiles the Generate binding accepts by name.
var presets = map[string]profile.Profile{
	"sphere": profile.UnitHalfCircle,
	"torus":  profile.Ring(1, 0.25),
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	cfg    config.Config
	engine *engine.Engine
	kernel kernel.Kernel
	log    *slog.Logger

	// mu serializes evaluations; zygomys keeps global state that is not
	// safe for concurrent sandbox creation.
	mu   sync.Mutex
	last []tessellate.DrawItem
}

// MeshData is one distinct mesh in the layout the frontend uploads: an
// interleaved pos|normal|uv vertex buffer and an index buffer.
type MeshData struct {
	Key          string    `json:"key"`
	Vertices     []float32 `json:"vertices"`
	Stride       int       `json:"stride"`
	Indices      []uint32  `json:"indices"`
	ElementCount int       `json:"elementCount"`
}

// InstanceData places one mesh in the scene.
type InstanceData struct {
	PartName  string      `json:"partName"`
	Mesh      int         `json:"mesh"`      // index into EvalResult.Meshes
	Transform [16]float32 `json:"transform"` // column-major
	Color     string      `json:"color"`
	Texture   string      `json:"texture,omitempty"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// Bounds is the world-space box of the scene, for camera framing.
type Bounds struct {
	Min [3]float32 `json:"min"`
	Max [3]float32 `json:"max"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes    []MeshData      `json:"meshes"`
	Instances []InstanceData  `json:"instances"`
	Bounds    Bounds          `json:"bounds"`
	Errors    []EvalErrorData `json:"errors"`
	Warnings  []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with an engine and the kernel cfg selects.
func NewApp(cfg config.Config) *App {
	var k kernel.Kernel
	switch cfg.Kernel {
	case config.KernelSDFX:
		k = sdfx.New(cfg.SDF.Cells)
	default:
		k = lattice.New()
	}
	return &App{
		ctx: context.Background(),
		cfg: cfg,
		engine: engine.NewEngine(
			engine.WithTimeout(time.Duration(cfg.EvalTimeout)),
			engine.WithDefaults(cfg.Defaults()),
			engine.WithMaxSegments(cfg.Generator.MaxSegments),
		),
		kernel: k,
		log:    logging.Logger(),
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes Lisp source and returns mesh data + errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := EvalResult{
		Meshes:    []MeshData{},
		Instances: []InstanceData{},
		Errors:    []EvalErrorData{},
		Warnings:  []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a validated scene graph.
	res, err := a.engine.Run(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate: fatal error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors and warnings to the frontend format.
	result.Warnings = append(result.Warnings, lo.Map(res.Warnings, func(w engine.EvalWarning, _ int) EvalErrorData {
		return EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message}
	})...)
	if len(res.Errors) > 0 {
		result.Errors = append(result.Errors, lo.Map(res.Errors, func(e engine.EvalError, _ int) EvalErrorData {
			return EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
		})...)
		return result
	}

	// Step 3: Tessellate the scene graph into a draw list.
	items, err := tessellate.Tessellate(a.ctx, res.Graph, a.kernel)
	if err != nil {
		a.log.Error("evaluate: tessellation failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}
	a.last = items

	// Step 4: Convert the draw list to the frontend format. Shared meshes
	// are sent once.
	index := make(map[*kernel.Mesh]int)
	for i, it := range items {
		mi, ok := index[it.Mesh]
		if !ok {
			mi = len(result.Meshes)
			index[it.Mesh] = mi
			result.Meshes = append(result.Meshes, meshData(it.Mesh))
		}
		result.Instances = append(result.Instances, InstanceData{
			PartName:  it.Shape,
			Mesh:      mi,
			Transform: it.Transform,
			Color:     instanceColor(it.Material, i),
			Texture:   it.Material.Texture,
		})
	}
	result.Bounds = sceneBounds(items)

	return result
}

// Generate meshes a named preset profile at the given resolution. It backs
// the frontend's preview gallery.
func (a *App) Generate(preset string, widthSegments, heightSegments int) (MeshData, error) {
	p, ok := presets[preset]
	if !ok {
		return MeshData{}, fmt.Errorf("unknown preset %q, want one of %v", preset, presetNames())
	}
	if limit := a.cfg.Generator.MaxSegments; limit > 0 && (widthSegments > limit || heightSegments > limit) {
		return MeshData{}, fmt.Errorf("%w: %d×%d segments exceed max_segments %d",
			parametric.ErrInvalidArgument, widthSegments, heightSegments, limit)
	}
	solid, err := a.kernel.Revolve(p, widthSegments, heightSegments)
	if err != nil {
		return MeshData{}, err
	}
	m, err := a.kernel.ToMesh(solid)
	if err != nil {
		return MeshData{}, err
	}
	m.PartName = preset
	return meshData(m), nil
}

// ExportSTL writes the last successfully evaluated scene to an STL file
// and returns the number of triangles written. Relative paths resolve
// against the configured export directory.
func (a *App) ExportSTL(path string) (int, error) {
	a.mu.Lock()
	items := a.last
	a.mu.Unlock()

	if !filepath.IsAbs(path) {
		path = filepath.Join(a.cfg.Export.Dir, path)
	}
	parts := lo.Map(items, func(it tessellate.DrawItem, _ int) export.Part {
		return export.Part{Mesh: it.Mesh, Transform: it.Transform}
	})
	n, err := export.WriteSTL(path, parts...)
	if err != nil {
		return 0, err
	}
	a.log.Info("exported STL", "path", path, "triangles", n)
	return n, nil
}

func meshData(m *kernel.Mesh) MeshData {
	return MeshData{
		Key:          m.PartName,
		Vertices:     m.Interleave(),
		Stride:       kernel.InterleavedStride,
		Indices:      m.Indices,
		ElementCount: m.ElementCount(),
	}
}

// instanceColor uses the material color when it parses and the palette
// otherwise.
func instanceColor(m graph.MaterialSpec, i int) string {
	if m.Color != "" {
		if _, err := graph.ParseColor(m.Color); err == nil {
			return m.Color
		}
	}
	return colorPalette[i%len(colorPalette)]
}

func sceneBounds(items []tessellate.DrawItem) Bounds {
	var b Bounds
	first := true
	for _, m := range tessellate.Bake(items) {
		if m.IsEmpty() {
			continue
		}
		lower, upper := m.Bounds()
		for k := 0; k < 3; k++ {
			if first || lower[k] < b.Min[k] {
				b.Min[k] = lower[k]
			}
			if first || upper[k] > b.Max[k] {
				b.Max[k] = upper[k]
			}
		}
		first = false
	}
	return b
}

func presetNames() []string {
	names := lo.Keys(presets)
	sort.Strings(names)
	return names
}
