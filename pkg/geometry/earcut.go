package geometry

// EarCut triangulates a polygon-like shape by ear clipping. It returns
// vertex indices in groups of three; index i refers to the i-th vertex of
// the shape's ring. Every triangle is oriented like a positive-area ring.
//
// Ears are convex vertices whose triangle holds no other remaining vertex.
// Collinear vertices are dropped without emitting a triangle. When no ear
// exists, as happens for self-intersecting input, the sharpest convex
// vertex is clipped anyway so the result is best-effort but always ends.
func EarCut(s Shape) []int {
	ring, ok := ringOf(s)
	if !ok || len(ring) < 4 {
		return nil
	}
	verts := ring[:len(ring)-1]
	n := len(verts)
	if n < 3 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if ringSignedArea(ring) < 0 {
		reverseInts(idx)
	}

	out := make([]int, 0, 3*(n-2))
	for len(idx) > 3 {
		ear := findEar(verts, idx)
		m := len(idx)
		if ear < 0 {
			ear = fallbackEar(verts, idx)
		}
		prev, cur, next := idx[(ear-1+m)%m], idx[ear], idx[(ear+1)%m]
		if orientation(verts[prev], verts[cur], verts[next]) != 0 {
			out = append(out, prev, cur, next)
		}
		idx = append(idx[:ear], idx[ear+1:]...)
	}
	if orientation(verts[idx[0]], verts[idx[1]], verts[idx[2]]) != 0 {
		out = append(out, idx[0], idx[1], idx[2])
	}
	return out
}

// EarCutToTriangles returns the triangles produced by EarCut.
func EarCutToTriangles(s Shape) []*Triangle {
	ring, ok := ringOf(s)
	if !ok {
		return nil
	}
	idx := EarCut(s)
	out := make([]*Triangle, 0, len(idx)/3)
	for i := 0; i+2 < len(idx); i += 3 {
		out = append(out, NewTriangle(ring[idx[i]], ring[idx[i+1]], ring[idx[i+2]]))
	}
	return out
}

func findEar(verts []Point, idx []int) int {
	m := len(idx)
	for i := 0; i < m; i++ {
		a, b, c := verts[idx[(i-1+m)%m]], verts[idx[i]], verts[idx[(i+1)%m]]
		switch orientation(a, b, c) {
		case 0:
			// collinear vertices are always safe to drop
			return i
		case -1:
			continue
		}
		if !earBlocked(verts, idx, i, a, b, c) {
			return i
		}
	}
	return -1
}

// earBlocked reports whether any remaining vertex other than the ear's own
// corners lies in triangle abc.
func earBlocked(verts []Point, idx []int, i int, a, b, c Point) bool {
	m := len(idx)
	for j := 0; j < m; j++ {
		if j == i || j == (i-1+m)%m || j == (i+1)%m {
			continue
		}
		p := verts[idx[j]]
		if p.Equal(a) || p.Equal(b) || p.Equal(c) {
			continue
		}
		if IsInsideTriangle(p, a, b, c, true) {
			return true
		}
	}
	return false
}

func fallbackEar(verts []Point, idx []int) int {
	m := len(idx)
	best, bestAngle := 0, 4.0
	for i := 0; i < m; i++ {
		a, b, c := verts[idx[(i-1+m)%m]], verts[idx[i]], verts[idx[(i+1)%m]]
		if orientation(a, b, c) < 0 {
			continue
		}
		if ang := Angle(a, b, c); ang < bestAngle {
			best, bestAngle = i, ang
		}
	}
	return best
}

func reverseInts(v []int) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}
