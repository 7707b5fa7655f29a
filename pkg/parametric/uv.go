package parametric

import "github.com/go-gl/mathgl/mgl32"

// mapUVs assigns uv = (i/W, j/H) to every node in lattice order. The seam
// column i = W gets u = 1 while sharing its position with column 0.
func mapUVs(w, h int) []mgl32.Vec2 {
	uvs := make([]mgl32.Vec2, 0, (w+1)*(h+1))
	for j := 0; j <= h; j++ {
		v := float32(j) / float32(h)
		for i := 0; i <= w; i++ {
			uvs = append(uvs, mgl32.Vec2{float32(i) / float32(w), v})
		}
	}
	return uvs
}
