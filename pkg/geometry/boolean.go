package geometry

import (
	"cmp"
	"math"
	"slices"
)

type boolOp int

const (
	opIntersection boolOp = iota
	opUnion
	opDifference
)

// Fragment classes relative to the other ring.
const (
	fragOutside = iota
	fragInside
	// on the other boundary, both interiors on the same side
	fragShared
	// on the other boundary, interiors on opposite sides
	fragOpposed
)

// splitNode is a vertex of a working ring split at every point shared
// with the other ring.
type splitNode struct {
	MarkedPoint
	// t orders inserted points along their edge
	t float64
}

type splitRing struct {
	nodes []*splitNode
	// pending points per edge, keyed by the edge's start vertex
	edges [][]*splitNode
}

func newSplitRing(verts []Point) *splitRing {
	r := &splitRing{edges: make([][]*splitNode, len(verts))}
	for _, v := range verts {
		r.nodes = append(r.nodes, &splitNode{MarkedPoint: MarkedPoint{Point: v, Original: true, Active: true}})
	}
	return r
}

func (r *splitRing) vertex(i int) Point {
	return r.nodes[i%len(r.nodes)].Point
}

// insert records p at parameter t on edge i unless a vertex or an earlier
// point of the edge already sits there.
func (r *splitRing) insert(i int, t float64, p Point) {
	n := len(r.nodes)
	if p.Equal(r.nodes[i].Point) || p.Equal(r.nodes[(i+1)%n].Point) {
		return
	}
	for _, e := range r.edges[i] {
		if e.Point.Equal(p) {
			return
		}
	}
	r.edges[i] = append(r.edges[i], &splitNode{MarkedPoint: MarkedPoint{Point: p, Active: true}, t: t})
}

// flatten splices pending points into the ring order.
func (r *splitRing) flatten() {
	var out []*splitNode
	for i, v := range r.nodes {
		out = append(out, v)
		pending := r.edges[i]
		slices.SortFunc(pending, func(a, b *splitNode) int { return cmp.Compare(a.t, b.t) })
		out = append(out, pending...)
	}
	r.nodes = out
	r.edges = nil
}

// fragment is one edge piece of a split ring. It never crosses the other
// ring, so a single sample classifies all of it.
type fragment struct {
	from, to Point
	used     bool
}

func (f *fragment) dir() Vector { return f.to.Sub(f.from) }

// classify sets each node's Value to the class of the fragment starting
// at it and returns the fragments.
func (r *splitRing) classify(other []Point) []*fragment {
	frags := make([]*fragment, len(r.nodes))
	for i, n := range r.nodes {
		next := r.nodes[(i+1)%len(r.nodes)]
		f := &fragment{from: n.Point, to: next.Point}
		n.Value = classifyFragment(f, other)
		frags[i] = f
	}
	return frags
}

func classifyFragment(f *fragment, ring []Point) int {
	mid := f.from.Add(f.to).Mul(0.5)
	if insideRing(mid, ring, false) {
		return fragInside
	}
	if !insideRing(mid, ring, true) {
		return fragOutside
	}
	d := f.dir()
	for i := 1; i < len(ring); i++ {
		a, b := ring[i-1], ring[i]
		if IsInsideSegment(mid, a, b, false) && IsColinear(a, b, f.from) && IsColinear(a, b, f.to) {
			if d.Dot(b.Sub(a)) > 0 {
				return fragShared
			}
			return fragOpposed
		}
	}
	// touches the boundary only at the sample: a crossing missed by
	// rounding, decided by a point a little further along
	if insideRing(f.from.Add(d.Mul(0.75)), ring, false) {
		return fragInside
	}
	return fragOutside
}

func normalizedVertices(s Shape) []Point {
	ring, ok := ringOf(s)
	if !ok || len(ring) < 4 {
		return nil
	}
	verts := make([]Point, 0, len(ring)-1)
	for _, p := range ring[:len(ring)-1] {
		if len(verts) > 0 && verts[len(verts)-1].Equal(p) {
			continue
		}
		verts = append(verts, p)
	}
	if len(verts) > 1 && verts[0].Equal(verts[len(verts)-1]) {
		verts = verts[:len(verts)-1]
	}
	if len(verts) < 3 {
		return nil
	}
	area := ringSignedArea(closeRing(verts))
	if nearZero(area, 1) {
		return nil
	}
	if area < 0 {
		reversePoints(verts)
	}
	return verts
}

// PolygonIntersection returns the regions covered by both shapes.
func PolygonIntersection(a, b Shape) []*Polygon {
	return polygonBoolean(a, b, opIntersection)
}

// PolygonUnion returns the regions covered by either shape.
func PolygonUnion(a, b Shape) []*Polygon {
	return polygonBoolean(a, b, opUnion)
}

// PolygonDifference returns the regions of a not covered by b. When b lies
// strictly inside a the result is a and b as a hole, the hole ring
// oriented opposite to the outer ring.
func PolygonDifference(a, b Shape) []*Polygon {
	return polygonBoolean(a, b, opDifference)
}

// polygonBoolean splits both outlines at every shared point, keeps the
// fragments that bound the result and links them back into rings. Edges
// shared by both outlines are kept once, from a.
func polygonBoolean(sa, sb Shape, op boolOp) []*Polygon {
	va := normalizedVertices(sa)
	vb := normalizedVertices(sb)
	switch {
	case va == nil && vb == nil:
		return nil
	case vb == nil:
		if op == opIntersection {
			return nil
		}
		return []*Polygon{NewPolygon(va...)}
	case va == nil:
		if op == opUnion {
			return []*Polygon{NewPolygon(vb...)}
		}
		return nil
	}

	ra, rb := newSplitRing(va), newSplitRing(vb)
	na, nb := len(va), len(vb)
	for i := 0; i < na; i++ {
		a0, a1 := ra.vertex(i), ra.vertex(i+1)
		for j := 0; j < nb; j++ {
			b0, b1 := rb.vertex(j), rb.vertex(j+1)
			for _, p := range SegmentIntersections(a0, a1, b0, b1) {
				ra.insert(i, segmentParam(p, a0, a1), p)
				rb.insert(j, segmentParam(p, b0, b1), p)
			}
		}
	}
	ra.flatten()
	rb.flatten()
	fa := ra.classify(closeRing(va))
	fb := rb.classify(closeRing(vb))

	var keep []*fragment
	for i, f := range fa {
		switch ra.nodes[i].Value {
		case fragOutside:
			if op != opIntersection {
				keep = append(keep, f)
			}
		case fragInside:
			if op == opIntersection {
				keep = append(keep, f)
			}
		case fragShared:
			if op != opDifference {
				keep = append(keep, f)
			}
		case fragOpposed:
			if op == opDifference {
				keep = append(keep, f)
			}
		}
	}
	for i, f := range fb {
		switch rb.nodes[i].Value {
		case fragOutside:
			if op == opUnion {
				keep = append(keep, f)
			}
		case fragInside:
			switch op {
			case opIntersection:
				keep = append(keep, f)
			case opDifference:
				f.from, f.to = f.to, f.from
				keep = append(keep, f)
			}
		}
	}

	out := linkFragments(keep)
	orientRings(out)
	return out
}

// linkFragments chains fragments end to start into closed rings. Where
// several fragments leave the same point the sharpest left turn wins,
// which keeps rings that only touch at a vertex apart.
func linkFragments(frags []*fragment) []*Polygon {
	var out []*Polygon
	for _, first := range frags {
		if first.used {
			continue
		}
		first.used = true
		pts := []Point{first.from}
		cur := first
		closed := false
		for steps := 0; steps < len(frags); steps++ {
			if cur.to.Equal(first.from) {
				closed = true
				break
			}
			pts = append(pts, cur.to)
			next := nextFragment(frags, cur)
			if next == nil {
				break
			}
			next.used = true
			cur = next
		}
		if !closed {
			continue
		}
		pts = dropColinear(pts)
		if len(pts) < 3 {
			continue
		}
		poly := NewPolygon(pts...)
		if !nearZero(poly.SignedArea(), 1) {
			out = append(out, poly)
		}
	}
	return out
}

func nextFragment(frags []*fragment, cur *fragment) *fragment {
	var best *fragment
	bestTurn := math.Inf(-1)
	din := cur.dir()
	for _, f := range frags {
		if f.used || !f.from.Equal(cur.to) {
			continue
		}
		dout := f.dir()
		turn := math.Atan2(din.Cross(dout), din.Dot(dout))
		if turn > bestTurn {
			best, bestTurn = f, turn
		}
	}
	return best
}

// dropColinear removes ring vertices lying on the segment joining their
// neighbours.
func dropColinear(pts []Point) []Point {
	for changed := true; changed && len(pts) >= 3; {
		changed = false
		for i := range pts {
			prev := pts[(i-1+len(pts))%len(pts)]
			next := pts[(i+1)%len(pts)]
			if IsInsideSegment(pts[i], prev, next, false) {
				pts = slices.Delete(pts, i, i+1)
				changed = true
				break
			}
		}
	}
	return pts
}

// orientRings makes outer rings positive and rings enclosed by another
// output ring negative.
func orientRings(rings []*Polygon) {
	for _, r := range rings {
		if r.SignedArea() < 0 {
			r.Reverse()
		}
	}
	for i, r := range rings {
		probe := r.Centroid()
		if !insideRing(probe, r.pts, false) {
			probe = r.pts[0]
		}
		for j, o := range rings {
			if i != j && o.Area() > r.Area() && insideRing(probe, o.pts, false) {
				r.Reverse()
				break
			}
		}
	}
}

// closeRing returns a copy of verts with the first point repeated at the end.
func closeRing(verts []Point) []Point {
	out := make([]Point, len(verts), len(verts)+1)
	copy(out, verts)
	if len(verts) == 0 {
		return out
	}
	return append(out, verts[0])
}
