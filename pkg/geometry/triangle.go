package geometry

import "math"

// Triangle is defined by three vertices.
type Triangle struct {
	pts [3]Point
}

// NewTriangle creates a triangle.
func NewTriangle(a, b, c Point) *Triangle {
	return &Triangle{pts: [3]Point{a, b, c}}
}

// Vertex returns vertex i (0..2).
func (t *Triangle) Vertex(i int) Point { return t.pts[i] }

// Points returns the three vertices.
func (t *Triangle) Points() []Point {
	return []Point{t.pts[0], t.pts[1], t.pts[2]}
}

func (t *Triangle) ring() []Point {
	return []Point{t.pts[0], t.pts[1], t.pts[2], t.pts[0]}
}

// SignedArea is positive when the vertices turn counter-clockwise in a
// y-up frame.
func (t *Triangle) SignedArea() float64 {
	return Cross(t.pts[1].Sub(t.pts[0]), t.pts[2].Sub(t.pts[0])) / 2
}

func (t *Triangle) Area() float64 { return math.Abs(t.SignedArea()) }

func (t *Triangle) Kind() Kind { return KindTriangle }

func (t *Triangle) BoundingRect() AABBRect { return boundsOf(t.pts[:]) }

func (t *Triangle) Clone() Shape {
	c := *t
	return &c
}

func (t *Triangle) Transform(a, b, c, d, e, f float64) {
	for i := range t.pts {
		t.pts[i] = transformPoint(t.pts[i], a, b, c, d, e, f)
	}
}

func (t *Triangle) Translate(tx, ty float64) {
	for i := range t.pts {
		t.pts[i].Translate(tx, ty)
	}
}

func (t *Triangle) Rotate(x, y, rad float64) {
	for i := range t.pts {
		t.pts[i] = rotatePoint(t.pts[i], x, y, rad)
	}
}

func (t *Triangle) Scale(x, y, k float64) {
	for i := range t.pts {
		t.pts[i] = scalePoint(t.pts[i], x, y, k)
	}
}

// Length returns the perimeter.
func (t *Triangle) Length() float64 { return chainLength(t.ring()) }

// Empty reports a degenerate triangle.
func (t *Triangle) Empty() bool { return nearZero(t.SignedArea(), 1) }
