package parametric

// buildIndices emits two triangles per lattice cell, cells in row-major
// order. With corners a=(i,j), b=(i+1,j), c=(i,j+1), d=(i+1,j+1) a
// counter-clockwise profile produces (a,c,b) and (b,c,d), which wind
// clockwise seen from outside. flip reverses both triangles for profiles
// traced clockwise.
//
// Cells touching the axis still emit both triangles. One of them collapses
// to a zero-area sliver, which keeps the index count at 6·W·H.
func buildIndices(w, h int, flip bool) []uint32 {
	indices := make([]uint32, 0, 6*w*h)
	stride := uint32(w + 1)
	for j := 0; j < h; j++ {
		row := uint32(j) * stride
		for i := 0; i < w; i++ {
			a := row + uint32(i)
			b := a + 1
			c := a + stride
			d := c + 1
			if flip {
				indices = append(indices, a, b, c, b, d, c)
			} else {
				indices = append(indices, a, c, b, b, c, d)
			}
		}
	}
	return indices
}
