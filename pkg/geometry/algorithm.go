package geometry

import (
	"cmp"
	"math"
	"slices"
)

// Cross returns the z component of v0 x v1.
func Cross(v0, v1 Vector) float64 {
	return v0.X*v1.Y - v0.Y*v1.X
}

// Dot returns v0 . v1.
func Dot(v0, v1 Vector) float64 {
	return v0.X*v1.X + v0.Y*v1.Y
}

// CrossSegments returns (a1-a0) x (b1-b0).
func CrossSegments(a0, a1, b0, b1 Point) float64 {
	return Cross(a1.Sub(a0), b1.Sub(b0))
}

// Distance returns the Euclidean distance between two points.
func Distance(p0, p1 Point) float64 {
	return p0.Distance(p1)
}

// segmentParam returns t such that a + t(b-a) is the foot of p.
func segmentParam(p, a, b Point) float64 {
	d := b.Sub(a)
	l2 := d.LengthSquared()
	if l2 == 0 {
		return 0
	}
	return p.Sub(a).Dot(d) / l2
}

// FootPoint returns the foot of the perpendicular from p onto the line
// through a and b. When infinite is false and the foot falls outside the
// segment, the clamped endpoint is returned together with false.
func FootPoint(a, b, p Point, infinite bool) (Point, bool) {
	t := segmentParam(p, a, b)
	if !infinite && (t < 0 || t > 1) {
		t = math.Max(0, math.Min(1, t))
		return a.Add(b.Sub(a).Mul(t)), false
	}
	return a.Add(b.Sub(a).Mul(t)), true
}

// DistanceToSegment returns the distance from p to the segment ab, or to
// the infinite line through a and b.
func DistanceToSegment(p, a, b Point, infinite bool) float64 {
	if a.Equal(b) {
		return p.Distance(a)
	}
	if infinite {
		d := b.Sub(a)
		return math.Abs(Cross(d, p.Sub(a))) / d.Length()
	}
	foot, _ := FootPoint(a, b, p, false)
	return p.Distance(foot)
}

// SegmentDistance returns the distance between two finite segments.
func SegmentDistance(a0, a1, b0, b1 Point) float64 {
	if IsIntersectedSegments(a0, a1, b0, b1) {
		return 0
	}
	return min(
		DistanceToSegment(a0, b0, b1, false),
		DistanceToSegment(a1, b0, b1, false),
		DistanceToSegment(b0, a0, a1, false),
		DistanceToSegment(b1, a0, a1, false),
	)
}

func distanceToChain(p Point, pts []Point) float64 {
	if len(pts) == 0 {
		return math.Inf(1)
	}
	if len(pts) == 1 {
		return p.Distance(pts[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		best = min(best, DistanceToSegment(p, pts[i-1], pts[i], false))
	}
	return best
}

// DistanceToShape returns the distance from p to the outline of s. Points
// inside a closed shape have a positive distance to its boundary.
func DistanceToShape(p Point, s Shape) float64 {
	switch v := s.(type) {
	case *Point:
		return p.Distance(*v)
	case *Circle:
		return math.Abs(p.Distance(v.Center) - v.Radius)
	}
	if ring, ok := ringOf(s); ok {
		return distanceToChain(p, ring)
	}
	if chain, ok := chainOf(s); ok {
		return distanceToChain(p, chain)
	}
	return math.Inf(1)
}

// IsParallel reports whether segments a and b have parallel directions.
// Zero-length segments are parallel to everything.
func IsParallel(a0, a1, b0, b1 Point) bool {
	da, db := a1.Sub(a0), b1.Sub(b0)
	return nearZero(Cross(da, db), da.Length()*db.Length())
}

// IsColinear reports whether p lies on the infinite line through a and b.
func IsColinear(a, b, p Point) bool {
	d := b.Sub(a)
	return nearZero(Cross(d, p.Sub(a)), d.Length()*p.Sub(a).Length())
}

// IsCoincide reports whether two segments lie on the same line and share
// a stretch of positive length.
func IsCoincide(a0, a1, b0, b1 Point) bool {
	if !IsParallel(a0, a1, b0, b1) || !IsColinear(a0, a1, b0) || !IsColinear(a0, a1, b1) {
		return false
	}
	d := a1.Sub(a0)
	l2 := d.LengthSquared()
	if l2 == 0 {
		return false
	}
	t0 := b0.Sub(a0).Dot(d) / l2
	t1 := b1.Sub(a0).Dot(d) / l2
	lo, hi := max(0, min(t0, t1)), min(1, max(t0, t1))
	return hi-lo > Epsilon
}

// Angle returns the unsigned angle aob in radians, in [0, pi].
func Angle(a, o, b Point) float64 {
	return math.Abs(AngleBetween(a.Sub(o), b.Sub(o)))
}

// AngleBetween returns the signed angle that turns v0 onto v1.
func AngleBetween(v0, v1 Vector) float64 {
	return math.Atan2(Cross(v0, v1), Dot(v0, v1))
}

// orientation returns the sign of (b-a) x (c-a) with tolerance.
func orientation(a, b, c Point) int {
	ab, ac := b.Sub(a), c.Sub(a)
	v := Cross(ab, ac)
	if nearZero(v, ab.Length()*ac.Length()) {
		return 0
	}
	if v > 0 {
		return 1
	}
	return -1
}

// onSegmentBox reports whether a colinear point p lies within segment ab.
func onSegmentBox(p, a, b Point) bool {
	return p.X >= min(a.X, b.X)-Epsilon && p.X <= max(a.X, b.X)+Epsilon &&
		p.Y >= min(a.Y, b.Y)-Epsilon && p.Y <= max(a.Y, b.Y)+Epsilon
}

// IsIntersectedSegments reports whether two finite segments share at least
// one point, endpoints included.
func IsIntersectedSegments(a0, a1, b0, b1 Point) bool {
	o1 := orientation(a0, a1, b0)
	o2 := orientation(a0, a1, b1)
	o3 := orientation(b0, b1, a0)
	o4 := orientation(b0, b1, a1)
	if o1 != o2 && o3 != o4 && o1*o2 <= 0 && o3*o4 <= 0 {
		return true
	}
	switch {
	case o1 == 0 && onSegmentBox(b0, a0, a1):
		return true
	case o2 == 0 && onSegmentBox(b1, a0, a1):
		return true
	case o3 == 0 && onSegmentBox(a0, b0, b1):
		return true
	case o4 == 0 && onSegmentBox(a1, b0, b1):
		return true
	}
	return false
}

// SegmentIntersection returns the crossing point of two segments, or of
// the infinite lines through them when infinite is set. Colinear
// overlapping segments report the first shared endpoint.
func SegmentIntersection(a0, a1, b0, b1 Point, infinite bool) (Point, bool) {
	da, db := a1.Sub(a0), b1.Sub(b0)
	den := Cross(da, db)
	if nearZero(den, da.Length()*db.Length()) {
		if infinite || !IsColinear(a0, a1, b0) {
			return Point{}, false
		}
		for _, p := range [...]Point{b0, b1} {
			if onSegmentBox(p, a0, a1) {
				return p, true
			}
		}
		for _, p := range [...]Point{a0, a1} {
			if onSegmentBox(p, b0, b1) {
				return p, true
			}
		}
		return Point{}, false
	}
	w := b0.Sub(a0)
	t := Cross(w, db) / den
	u := Cross(w, da) / den
	if !infinite {
		const tol = 1e-9
		if t < -tol || t > 1+tol || u < -tol || u > 1+tol {
			return Point{}, false
		}
	}
	return a0.Add(da.Mul(t)), true
}

// SegmentIntersections returns every shared point of two segments: none,
// a single crossing, or both ends of a colinear overlap.
func SegmentIntersections(a0, a1, b0, b1 Point) []Point {
	if !IsIntersectedSegments(a0, a1, b0, b1) {
		return nil
	}
	if !IsParallel(a0, a1, b0, b1) {
		p, ok := SegmentIntersection(a0, a1, b0, b1, false)
		if !ok {
			return nil
		}
		return []Point{p}
	}
	var out []Point
	add := func(p Point) {
		for _, q := range out {
			if q.Equal(p) {
				return
			}
		}
		out = append(out, p)
	}
	for _, p := range [...]Point{b0, b1} {
		if onSegmentBox(p, a0, a1) {
			add(p)
		}
	}
	for _, p := range [...]Point{a0, a1} {
		if onSegmentBox(p, b0, b1) {
			add(p)
		}
	}
	return out
}

// SegmentCircleIntersections returns the points where segment ab crosses
// the circle outline.
func SegmentCircleIntersections(a, b Point, c *Circle) []Point {
	d := b.Sub(a)
	f := a.Sub(c.Center)
	qa := d.Dot(d)
	if qa == 0 {
		if almostEqual(f.Length(), c.Radius) {
			return []Point{a}
		}
		return nil
	}
	qb := 2 * f.Dot(d)
	qc := f.Dot(f) - c.Radius*c.Radius
	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		if nearZero(disc, qb*qb) {
			disc = 0
		} else {
			return nil
		}
	}
	sq := math.Sqrt(disc)
	var out []Point
	for _, t := range [...]float64{(-qb - sq) / (2 * qa), (-qb + sq) / (2 * qa)} {
		if t < -Epsilon || t > 1+Epsilon {
			continue
		}
		p := a.Add(d.Mul(t))
		if len(out) == 1 && out[0].Equal(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ConvexHull returns the hull of pts as a closed counter-clockwise ring
// (in a y-up frame) using Andrew's monotone chain.
func ConvexHull(pts []Point) []Point {
	if len(pts) < 3 {
		out := make([]Point, len(pts))
		copy(out, pts)
		return out
	}
	sorted := make([]Point, len(pts))
	copy(sorted, pts)
	sortPoints(sorted)
	hull := make([]Point, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && Cross(hull[len(hull)-1].Sub(hull[len(hull)-2]), p.Sub(hull[len(hull)-2])) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && Cross(hull[len(hull)-1].Sub(hull[len(hull)-2]), p.Sub(hull[len(hull)-2])) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull
}

func sortPoints(pts []Point) {
	slices.SortFunc(pts, func(a, b Point) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Y, b.Y)
	})
}
