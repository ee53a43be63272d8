package geometry

import "fmt"

// IntersectFunc tests a pair of shapes. When inside is set, one shape
// lying entirely within the other counts as an intersection; otherwise
// only shared boundary points do.
type IntersectFunc func(a, b Shape, inside bool) bool

// category groups kinds that share an intersection routine.
type category int

const (
	catPoint category = iota
	catChain
	catRing
	catCircle
)

var kindCategory = [kindCount]category{
	KindPoint:     catPoint,
	KindLine:      catChain,
	KindPolyline:  catChain,
	KindBezier:    catChain,
	KindPolygon:   catRing,
	KindAABBRect:  catRing,
	KindRectangle: catRing,
	KindSquare:    catRing,
	KindTriangle:  catRing,
	KindCircle:    catCircle,
}

var intersectTable [kindCount][kindCount]IntersectFunc

func init() {
	routines := map[[2]category]IntersectFunc{
		{catPoint, catPoint}:   pointPoint,
		{catPoint, catChain}:   pointChain,
		{catPoint, catRing}:    pointRing,
		{catPoint, catCircle}:  pointCircle,
		{catChain, catChain}:   chainChain,
		{catChain, catRing}:    chainRing,
		{catChain, catCircle}:  chainCircle,
		{catRing, catRing}:     ringRing,
		{catRing, catCircle}:   ringCircle,
		{catCircle, catCircle}: circleCircle,
	}
	for a := Kind(0); a < kindCount; a++ {
		for b := Kind(0); b < kindCount; b++ {
			ca, cb := kindCategory[a], kindCategory[b]
			if fn, ok := routines[[2]category{ca, cb}]; ok {
				intersectTable[a][b] = fn
			} else if fn, ok := routines[[2]category{cb, ca}]; ok {
				intersectTable[a][b] = swapped(fn)
			}
		}
	}
	if missing := MissingIntersections(); len(missing) > 0 {
		panic(fmt.Sprintf("geometry: no intersection routine for %v", missing))
	}
}

func swapped(fn IntersectFunc) IntersectFunc {
	return func(a, b Shape, inside bool) bool { return fn(b, a, inside) }
}

// MissingIntersections lists kind pairs without an intersection routine.
// It is empty for a correctly initialized package.
func MissingIntersections() [][2]Kind {
	var out [][2]Kind
	for a := Kind(0); a < kindCount; a++ {
		for b := Kind(0); b < kindCount; b++ {
			if intersectTable[a][b] == nil {
				out = append(out, [2]Kind{a, b})
			}
		}
	}
	return out
}

// IsIntersected reports whether two shapes touch or overlap. Empty shapes
// never intersect.
func IsIntersected(a, b Shape, inside bool) bool {
	if a == nil || b == nil || isBlank(a) || isBlank(b) {
		return false
	}
	if !a.BoundingRect().Intersects(b.BoundingRect()) {
		return false
	}
	return intersectTable[a.Kind()][b.Kind()](a, b, inside)
}

// isBlank reports shapes with no geometry at all. Unlike Empty it keeps
// points at the origin and zero-length lines, which are valid inputs.
func isBlank(s Shape) bool {
	switch v := s.(type) {
	case *Point, *Line:
		return false
	case *Circle:
		return v.Radius < 0
	case *Polygon:
		return v.VertexCount() < 1
	case *Polyline:
		return len(v.pts) == 0
	case *Bezier:
		return len(v.samples) == 0
	}
	return false
}

func asPoint(s Shape) Point {
	return *s.(*Point)
}

func pointPoint(a, b Shape, _ bool) bool {
	return asPoint(a).Equal(asPoint(b))
}

func pointChain(a, b Shape, _ bool) bool {
	chain, _ := chainOf(b)
	return insideChain(asPoint(a), chain)
}

func pointRing(a, b Shape, inside bool) bool {
	ring, _ := ringOf(b)
	p := asPoint(a)
	if distanceToChain(p, ring) <= Epsilon {
		return true
	}
	return inside && insideRing(p, ring, false)
}

func pointCircle(a, b Shape, inside bool) bool {
	c := b.(*Circle)
	d := asPoint(a).Distance(c.Center)
	if almostEqual(d, c.Radius) {
		return true
	}
	return inside && d < c.Radius
}

func chainsCross(a, b []Point) bool {
	if len(a) == 1 {
		return insideChain(a[0], b)
	}
	if len(b) == 1 {
		return insideChain(b[0], a)
	}
	for i := 1; i < len(a); i++ {
		for j := 1; j < len(b); j++ {
			if IsIntersectedSegments(a[i-1], a[i], b[j-1], b[j]) {
				return true
			}
		}
	}
	return false
}

func chainChain(a, b Shape, _ bool) bool {
	ca, _ := chainOf(a)
	cb, _ := chainOf(b)
	return chainsCross(ca, cb)
}

func chainRing(a, b Shape, inside bool) bool {
	chain, _ := chainOf(a)
	ring, _ := ringOf(b)
	if chainsCross(chain, ring) {
		return true
	}
	return inside && len(chain) > 0 && insideRing(chain[0], ring, false)
}

// chainTouchesCircle reports whether any segment reaches the outline.
func chainTouchesCircle(chain []Point, c *Circle) bool {
	if len(chain) == 1 {
		return almostEqual(chain[0].Distance(c.Center), c.Radius)
	}
	for i := 1; i < len(chain); i++ {
		a, b := chain[i-1], chain[i]
		near := DistanceToSegment(c.Center, a, b, false)
		far := max(a.Distance(c.Center), b.Distance(c.Center))
		if near <= c.Radius+Epsilon && far >= c.Radius-Epsilon {
			return true
		}
	}
	return false
}

func chainCircle(a, b Shape, inside bool) bool {
	chain, _ := chainOf(a)
	c := b.(*Circle)
	if chainTouchesCircle(chain, c) {
		return true
	}
	return inside && len(chain) > 0 && chain[0].Distance(c.Center) < c.Radius
}

func ringRing(a, b Shape, inside bool) bool {
	ra, _ := ringOf(a)
	rb, _ := ringOf(b)
	if chainsCross(ra, rb) {
		return true
	}
	if !inside || len(ra) == 0 || len(rb) == 0 {
		return false
	}
	return insideRing(ra[0], rb, false) || insideRing(rb[0], ra, false)
}

func ringCircle(a, b Shape, inside bool) bool {
	ring, _ := ringOf(a)
	c := b.(*Circle)
	if chainTouchesCircle(ring, c) {
		return true
	}
	if !inside || len(ring) == 0 {
		return false
	}
	return insideRing(c.Center, ring, false) || ring[0].Distance(c.Center) < c.Radius
}

func circleCircle(a, b Shape, inside bool) bool {
	ca, cb := a.(*Circle), b.(*Circle)
	d := ca.Center.Distance(cb.Center)
	sum := ca.Radius + cb.Radius
	diff := ca.Radius - cb.Radius
	if diff < 0 {
		diff = -diff
	}
	if d > sum+Epsilon {
		return false
	}
	if d >= diff-Epsilon {
		return true
	}
	return inside
}
