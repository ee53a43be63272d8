package geometry

import "math"

// Polygon is a closed ring of points. The first point is repeated at the
// end of the ring after every mutation.
type Polygon struct {
	pts []Point
}

// NewPolygon creates a polygon from its vertices. The ring is closed
// automatically when the last point differs from the first.
func NewPolygon(pts ...Point) *Polygon {
	p := &Polygon{pts: make([]Point, len(pts), len(pts)+1)}
	copy(p.pts, pts)
	p.close()
	return p
}

// PolygonFrom builds a polygon from the ring of any polygon-like shape
// (rectangles, squares, triangles and polygons).
func PolygonFrom(s Shape) (*Polygon, bool) {
	ring, ok := ringOf(s)
	if !ok {
		return nil, false
	}
	return NewPolygon(ring...), true
}

func (p *Polygon) close() {
	if len(p.pts) == 0 {
		return
	}
	if !p.pts[0].Equal(p.pts[len(p.pts)-1]) || len(p.pts) == 1 {
		p.pts = append(p.pts, p.pts[0])
		return
	}
	p.pts[len(p.pts)-1] = p.pts[0]
}

func (p *Polygon) vertices() []Point {
	if len(p.pts) == 0 {
		return nil
	}
	return p.pts[:len(p.pts)-1]
}

func (p *Polygon) rebuild(verts []Point) {
	p.pts = make([]Point, len(verts), len(verts)+1)
	copy(p.pts, verts)
	p.close()
}

// Points returns a copy of the closed ring.
func (p *Polygon) Points() []Point {
	out := make([]Point, len(p.pts))
	copy(out, p.pts)
	return out
}

// Len returns the number of ring points, closing point included.
func (p *Polygon) Len() int { return len(p.pts) }

// VertexCount returns the number of distinct vertices.
func (p *Polygon) VertexCount() int {
	if len(p.pts) == 0 {
		return 0
	}
	return len(p.pts) - 1
}

// At returns the i-th ring point. It panics when i is out of range.
func (p *Polygon) At(i int) Point { return p.pts[i] }

// Vertex returns vertex i modulo the vertex count, so negative indexes
// walk backwards.
func (p *Polygon) Vertex(i int) Point {
	n := p.VertexCount()
	return p.pts[((i%n)+n)%n]
}

// Set replaces vertex i and keeps the ring closed.
func (p *Polygon) Set(i int, pt Point) {
	verts := p.vertices()
	verts[i] = pt
	p.rebuild(verts)
}

// Append adds vertices before the closing point.
func (p *Polygon) Append(pts ...Point) {
	verts := append(p.Points()[:p.VertexCount()], pts...)
	p.rebuild(verts)
}

// Insert places pt before vertex i.
func (p *Polygon) Insert(i int, pt Point) {
	verts := p.Points()[:p.VertexCount()]
	verts = append(verts, Point{})
	copy(verts[i+1:], verts[i:])
	verts[i] = pt
	p.rebuild(verts)
}

// Remove deletes vertex i.
func (p *Polygon) Remove(i int) {
	verts := p.Points()[:p.VertexCount()]
	verts = append(verts[:i], verts[i+1:]...)
	if len(verts) == 0 {
		p.pts = p.pts[:0]
		return
	}
	p.rebuild(verts)
}

// Reverse flips the orientation of the ring.
func (p *Polygon) Reverse() {
	reversePoints(p.pts)
}

// SignedArea returns the shoelace area; positive for rings that turn
// counter-clockwise in a y-up frame.
func (p *Polygon) SignedArea() float64 {
	return ringSignedArea(p.pts)
}

// Area returns the absolute enclosed area.
func (p *Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Centroid returns the area centroid, or the vertex mean for degenerate
// rings.
func (p *Polygon) Centroid() Point {
	return ringCentroid(p.pts)
}

// IsConvex reports whether every turn of the ring has the same sign.
func (p *Polygon) IsConvex() bool {
	n := p.VertexCount()
	if n < 3 {
		return false
	}
	sign := 0
	for i := 0; i < n; i++ {
		c := Cross(p.Vertex(i+1).Sub(p.Vertex(i)), p.Vertex(i+2).Sub(p.Vertex(i+1)))
		if nearZero(c, 1) {
			continue
		}
		s := 1
		if c < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}
	return sign != 0
}

func (p *Polygon) Kind() Kind { return KindPolygon }

func (p *Polygon) BoundingRect() AABBRect { return boundsOf(p.pts) }

func (p *Polygon) Clone() Shape {
	c := &Polygon{pts: make([]Point, len(p.pts))}
	copy(c.pts, p.pts)
	return c
}

func (p *Polygon) Transform(a, b, c, d, e, f float64) {
	for i := range p.pts {
		p.pts[i] = transformPoint(p.pts[i], a, b, c, d, e, f)
	}
}

func (p *Polygon) Translate(tx, ty float64) {
	for i := range p.pts {
		p.pts[i].Translate(tx, ty)
	}
}

func (p *Polygon) Rotate(x, y, rad float64) {
	for i := range p.pts {
		p.pts[i] = rotatePoint(p.pts[i], x, y, rad)
	}
	p.close()
}

func (p *Polygon) Scale(x, y, k float64) {
	for i := range p.pts {
		p.pts[i] = scalePoint(p.pts[i], x, y, k)
	}
}

// Length returns the perimeter.
func (p *Polygon) Length() float64 { return chainLength(p.pts) }

// Empty reports a ring with fewer than three vertices.
func (p *Polygon) Empty() bool { return p.VertexCount() < 3 }

func ringSignedArea(ring []Point) float64 {
	var sum float64
	for i := 1; i < len(ring); i++ {
		sum += ring[i-1].Cross(ring[i])
	}
	return sum / 2
}

func ringCentroid(ring []Point) Point {
	area := ringSignedArea(ring)
	if nearZero(area, 1) {
		var c Point
		n := len(ring) - 1
		if n <= 0 {
			return c
		}
		for _, pt := range ring[:n] {
			c = c.Add(pt)
		}
		return c.Mul(1 / float64(n))
	}
	var cx, cy float64
	for i := 1; i < len(ring); i++ {
		f := ring[i-1].Cross(ring[i])
		cx += (ring[i-1].X + ring[i].X) * f
		cy += (ring[i-1].Y + ring[i].Y) * f
	}
	return Point{X: cx / (6 * area), Y: cy / (6 * area)}
}
