package export

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/parametric"
	"github.com/chazu/lathe/pkg/profile"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sphere(t *testing.T) *kernel.Mesh {
	t.Helper()
	m, err := parametric.Generate(profile.UnitHalfCircle, 4, 4)
	require.NoError(t, err)
	return m
}

func TestTrianglesSkipsPoleSlivers(t *testing.T) {
	m := sphere(t)
	tris := Triangles(m, mgl32.Ident4())
	// 32 triangles, one sliver per cell in each pole row.
	assert.Len(t, tris, 32-8)
}

func TestTrianglesAppliesTransform(t *testing.T) {
	m := sphere(t)
	tris := Triangles(m, mgl32.Translate3D(10, 0, 0))
	for _, tri := range tris {
		for _, v := range tri {
			assert.InDelta(t, 10, v.X, 1.0001)
		}
	}
}

func TestWriteSTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.stl")
	m := sphere(t)
	n, err := WriteSTL(path,
		Part{Mesh: m, Transform: mgl32.Ident4()},
		Part{Mesh: m, Transform: mgl32.Translate3D(3, 0, 0)},
		Part{},
	)
	require.NoError(t, err)
	assert.Equal(t, 48, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 84+50*n)
	assert.Equal(t, uint32(n), binary.LittleEndian.Uint32(data[80:84]))
}

func TestWriteSTLNothingToExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.stl")
	_, err := WriteSTL(path, Part{Mesh: &kernel.Mesh{}, Transform: mgl32.Ident4()})
	assert.ErrorIs(t, err, ErrNothingToExport)
	assert.NoFileExists(t, path)
}
