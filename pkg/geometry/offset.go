package geometry

import "math"

// maxSplitDepth bounds the recursion that separates a self-intersecting
// offset ring into simple loops.
const maxSplitDepth = 64

// edgeNormal returns the unit normal on the outer side of edge ab for a
// positive-area ring.
func edgeNormal(a, b Point) Vector {
	d := b.Sub(a).Normalize()
	return Vector{X: d.Y, Y: -d.X}
}

// miterPoint joins the offsets of edges (prev, cur) and (cur, next).
func miterPoint(prev, cur, next Point, d float64) Point {
	n0 := edgeNormal(prev, cur).Mul(d)
	n1 := edgeNormal(cur, next).Mul(d)
	p, ok := SegmentIntersection(prev.Add(n0), cur.Add(n0), cur.Add(n1), next.Add(n1), true)
	if !ok {
		return cur.Add(n0)
	}
	return p
}

// OffsetLine shifts the segment by d along its normal. Positive d moves it
// to the side that is outside for a positive-area ring.
func OffsetLine(l *Line, d float64) *Line {
	if l.Front.Equal(l.Back) {
		return NewLine(l.Front, l.Back)
	}
	n := edgeNormal(l.Front, l.Back).Mul(d)
	return NewLine(l.Front.Add(n), l.Back.Add(n))
}

// OffsetPolyline shifts every edge by d and joins neighbours with mitered
// corners. The result is not repaired.
func OffsetPolyline(pl *Polyline, d float64) *Polyline {
	pts := dropRepeats(pl.pts)
	switch len(pts) {
	case 0:
		return NewPolyline()
	case 1:
		return NewPolyline(pts[0])
	}
	out := make([]Point, len(pts))
	out[0] = pts[0].Add(edgeNormal(pts[0], pts[1]).Mul(d))
	last := len(pts) - 1
	out[last] = pts[last].Add(edgeNormal(pts[last-1], pts[last]).Mul(d))
	for i := 1; i < last; i++ {
		out[i] = miterPoint(pts[i-1], pts[i], pts[i+1], d)
	}
	return NewPolyline(out...)
}

// OffsetRect grows the box by d on every side.
func OffsetRect(r AABBRect, d float64) AABBRect {
	return r.Expand(d)
}

// OffsetCircle changes the radius by d. The radius never drops below zero.
func OffsetCircle(c *Circle, d float64) *Circle {
	return &Circle{Center: c.Center, Radius: math.Max(0, c.Radius+d)}
}

// OffsetPolygon moves every edge of a polygon-like shape outwards by d, or
// inwards for negative d. Self-intersections of the mitered ring are cut
// into simple loops; loops that run backwards or come closer than |d| to
// the source outline are discarded. A shrink past the polygon's width
// therefore returns nothing, and a narrow waist may yield several polygons.
func OffsetPolygon(s Shape, d float64) []*Polygon {
	verts := dropCollinear(normalizedVertices(s))
	if len(verts) < 3 {
		return nil
	}
	if d == 0 {
		return []*Polygon{NewPolygon(verts...)}
	}
	n := len(verts)
	raw := make([]Point, n)
	for i := range verts {
		raw[i] = miterPoint(verts[(i-1+n)%n], verts[i], verts[(i+1)%n], d)
	}

	source := closeRing(verts)
	tol := 1e-6 * math.Max(1, math.Abs(d))
	var out []*Polygon
	for _, loop := range splitLoops(raw, 0) {
		if len(loop) < 3 {
			continue
		}
		ring := closeRing(loop)
		area := ringSignedArea(ring)
		if area <= 0 || nearZero(area, 1) {
			continue
		}
		keep := true
		for _, p := range loop {
			if distanceToChain(p, source) < math.Abs(d)-tol {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, NewPolygon(loop...))
		}
	}
	return out
}

// splitLoops cuts a closed vertex list at its first self-intersection and
// recurses on both halves.
func splitLoops(verts []Point, depth int) [][]Point {
	n := len(verts)
	if n < 4 || depth >= maxSplitDepth {
		return [][]Point{verts}
	}
	for i := 0; i < n; i++ {
		a0, a1 := verts[i], verts[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			b0, b1 := verts[j], verts[(j+1)%n]
			p, ok := SegmentIntersection(a0, a1, b0, b1, false)
			if !ok {
				continue
			}
			first := make([]Point, 0, n)
			first = append(first, verts[:i+1]...)
			first = appendDistinct(first, p)
			for _, v := range verts[j+1:] {
				first = appendDistinct(first, v)
			}
			second := []Point{p}
			for _, v := range verts[i+1 : j+1] {
				second = appendDistinct(second, v)
			}
			first = trimClosing(first)
			second = trimClosing(second)
			if len(first) == n && len(second) < 3 || len(second) == n && len(first) < 3 {
				// touching at a vertex without a real cut
				continue
			}
			return append(splitLoops(first, depth+1), splitLoops(second, depth+1)...)
		}
	}
	return [][]Point{verts}
}

func appendDistinct(pts []Point, p Point) []Point {
	if len(pts) > 0 && pts[len(pts)-1].Equal(p) {
		return pts
	}
	return append(pts, p)
}

func trimClosing(pts []Point) []Point {
	for len(pts) > 1 && pts[0].Equal(pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}
	return pts
}

func dropRepeats(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		out = appendDistinct(out, p)
	}
	return out
}

// dropCollinear removes vertices lying on the segment between their
// neighbours.
func dropCollinear(verts []Point) []Point {
	out := make([]Point, 0, len(verts))
	out = append(out, verts...)
	for changed := true; changed && len(out) >= 3; {
		changed = false
		n := len(out)
		for i := 0; i < n; i++ {
			if orientation(out[(i-1+n)%n], out[i], out[(i+1)%n]) == 0 {
				out = append(out[:i], out[i+1:]...)
				changed = true
				break
			}
		}
	}
	return out
}
