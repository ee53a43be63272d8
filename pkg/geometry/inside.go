package geometry

import (
	"cmp"
	"math"
	"slices"
)

// MarkedPoint annotates a point in the working lists of the ray casting
// and polygon boolean routines.
type MarkedPoint struct {
	Point
	// Original is set for true polygon vertices, clear for computed
	// intersections.
	Original bool
	// Active marks points still eligible for traversal or counting.
	Active bool
	// Value is the signed crossing value (-1, 0 or +1).
	Value int
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// IsInside reports whether p lies inside s. Boundary points count only
// when coincide is set; shapes without interior (points, lines, polylines
// and curves) therefore only contain points when coincide is set.
func IsInside(p Point, s Shape, coincide bool) bool {
	switch v := s.(type) {
	case *Point:
		return coincide && p.Equal(*v)
	case *Line:
		return coincide && IsInsideSegment(p, v.Front, v.Back, false)
	case *Polyline:
		return coincide && insideChain(p, v.pts)
	case *Bezier:
		return coincide && insideChain(p, v.samples)
	case *Circle:
		return IsInsideCircle(p, v, coincide)
	case *AABBRect:
		return IsInsideRect(p, *v, coincide)
	case *Triangle:
		return IsInsideTriangle(p, v.pts[0], v.pts[1], v.pts[2], coincide)
	}
	if ring, ok := ringOf(s); ok {
		return insideRing(p, ring, coincide)
	}
	return false
}

// IsInsideSegment reports whether p lies on segment ab, or on the infinite
// line through a and b.
func IsInsideSegment(p, a, b Point, infinite bool) bool {
	if a.Equal(b) {
		return p.Equal(a)
	}
	if !IsColinear(a, b, p) {
		return false
	}
	return infinite || onSegmentBox(p, a, b)
}

// IsInsidePolyline reports whether p lies on the chain.
func IsInsidePolyline(p Point, pl *Polyline) bool {
	return insideChain(p, pl.pts)
}

func insideChain(p Point, pts []Point) bool {
	if len(pts) == 1 {
		return p.Equal(pts[0])
	}
	for i := 1; i < len(pts); i++ {
		if IsInsideSegment(p, pts[i-1], pts[i], false) {
			return true
		}
	}
	return false
}

// IsInsideCircle reports whether p lies in the disc.
func IsInsideCircle(p Point, c *Circle, coincide bool) bool {
	d := p.Distance(c.Center)
	if almostEqual(d, c.Radius) {
		return coincide
	}
	return d < c.Radius
}

// IsInsideRect reports whether p lies in the axis-aligned box.
func IsInsideRect(p Point, r AABBRect, coincide bool) bool {
	return r.ContainsPoint(p, coincide)
}

// IsInsideTriangle reports whether p lies in triangle abc of either
// orientation.
func IsInsideTriangle(p, a, b, c Point, coincide bool) bool {
	d1 := orientation(a, b, p)
	d2 := orientation(b, c, p)
	d3 := orientation(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	if hasNeg && hasPos {
		return false
	}
	if d1 == 0 || d2 == 0 || d3 == 0 {
		if !hasNeg && !hasPos {
			// degenerate triangle
			return coincide && (IsInsideSegment(p, a, b, false) ||
				IsInsideSegment(p, b, c, false) || IsInsideSegment(p, c, a, false))
		}
		return coincide
	}
	return true
}

// IsInsidePolygon reports whether p lies in the polygon.
func IsInsidePolygon(p Point, poly *Polygon, coincide bool) bool {
	return insideRing(p, poly.pts, coincide)
}

// insideRing casts a ray from p towards +x and counts signed crossings.
// Crossings through a vertex are reported once per incident edge and
// merged by summing their values, so a pass-through vertex counts once and
// a touching vertex not at all. Edges lying on the ray are collapsed with
// the crossings at their ends before the parity decision.
func insideRing(p Point, ring []Point, coincide bool) bool {
	if len(ring) < 4 {
		return false
	}
	bounds := boundsOf(ring)
	if !bounds.ContainsPoint(p, true) {
		return false
	}
	for i := 1; i < len(ring); i++ {
		if IsInsideSegment(p, ring[i-1], ring[i], false) {
			return coincide
		}
	}

	var marks []MarkedPoint
	type span struct{ lo, hi float64 }
	var flats []span
	for i := 1; i < len(ring); i++ {
		a, b := ring[i-1], ring[i]
		if a.Y == b.Y {
			if a.Y == p.Y && min(a.X, b.X) > p.X {
				flats = append(flats, span{min(a.X, b.X), max(a.X, b.X)})
				marks = append(marks,
					MarkedPoint{Point: a, Original: true, Active: true},
					MarkedPoint{Point: b, Original: true, Active: true})
			}
			continue
		}
		if p.Y < min(a.Y, b.Y) || p.Y > max(a.Y, b.Y) {
			continue
		}
		var x float64
		original := false
		switch p.Y {
		case a.Y:
			x, original = a.X, true
		case b.Y:
			x, original = b.X, true
		default:
			x = a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		}
		if x <= p.X {
			continue
		}
		value := -1
		if b.Y > a.Y {
			value = 1
		}
		marks = append(marks, MarkedPoint{
			Point:    Point{X: x, Y: p.Y},
			Original: original,
			Active:   true,
			Value:    value,
		})
	}

	slices.SortStableFunc(marks, func(m, n MarkedPoint) int {
		return cmp.Compare(m.X, n.X)
	})

	// merge coincident vertex hits
	for i := 0; i < len(marks); i++ {
		if !marks[i].Active {
			continue
		}
		for j := i + 1; j < len(marks) && marks[j].X == marks[i].X; j++ {
			if marks[j].Active && marks[j].Original && marks[i].Original {
				marks[i].Value += marks[j].Value
				marks[j].Active = false
			}
		}
		marks[i].Value = sign(marks[i].Value)
	}

	// collapse runs of edges lying on the ray
	if len(flats) > 0 {
		slices.SortFunc(flats, func(a, b span) int { return cmp.Compare(a.lo, b.lo) })
		merged := flats[:1]
		for _, f := range flats[1:] {
			last := &merged[len(merged)-1]
			if f.lo <= last.hi {
				last.hi = math.Max(last.hi, f.hi)
				continue
			}
			merged = append(merged, f)
		}
		for _, f := range merged {
			first := -1
			sum := 0
			for i := range marks {
				if !marks[i].Active || marks[i].X < f.lo || marks[i].X > f.hi {
					continue
				}
				sum += marks[i].Value
				if first < 0 {
					first = i
				} else {
					marks[i].Active = false
				}
			}
			if first >= 0 {
				marks[first].Value = sign(sum)
			}
		}
	}

	count := 0
	for _, m := range marks {
		if m.Active && m.Value != 0 {
			count++
		}
	}
	return count%2 == 1
}
