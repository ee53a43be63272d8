// Package geometry provides the 2D primitives and the exact predicates used
// by the collision subsystem: distance, containment, intersection, polygon
// boolean operations, ear-cut triangulation and offsetting.
//
// Coordinates follow screen conventions: x grows to the right and y grows
// downwards, so the top edge of a rectangle has the smaller y.
package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"
)

// Epsilon is the tolerance used when comparing coordinates.
const Epsilon = 1e-10

// Kind identifies the concrete type behind a Shape.
type Kind int

// Shape kinds
const (
	KindPoint Kind = iota
	KindLine
	KindPolyline
	KindPolygon
	KindAABBRect
	KindRectangle
	KindSquare
	KindCircle
	KindTriangle
	KindBezier

	kindCount
)

var kindNames = [kindCount]string{
	KindPoint:     "point",
	KindLine:      "line",
	KindPolyline:  "polyline",
	KindPolygon:   "polygon",
	KindAABBRect:  "aabbrect",
	KindRectangle: "rectangle",
	KindSquare:    "square",
	KindCircle:    "circle",
	KindTriangle:  "triangle",
	KindBezier:    "bezier",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// Kinds returns every shape kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Shape is implemented by every geometric primitive. All mutators work in
// place, so indexes holding a Shape must be told about the change through
// their Update method.
type Shape interface {
	Kind() Kind
	BoundingRect() AABBRect
	Clone() Shape
	// Transform applies x' = a*x + b*y + c, y' = d*x + e*y + f.
	Transform(a, b, c, d, e, f float64)
	Translate(tx, ty float64)
	// Rotate turns the shape by rad radians around (x, y).
	Rotate(x, y, rad float64)
	// Scale scales the shape by k around (x, y).
	Scale(x, y, k float64)
	Length() float64
	Empty() bool
}

func almostEqual(a, b float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, Epsilon, Epsilon)
}

// nearZero reports whether v is negligible relative to scale.
func nearZero(v, scale float64) bool {
	if scale < 1 {
		scale = 1
	}
	return v <= Epsilon*scale && v >= -Epsilon*scale
}

// Vertices returns the defining points of s: the closed ring for
// polygon-like shapes, the sampled chain for curves and the endpoints of a
// line. Circles have no vertices and return nil.
func Vertices(s Shape) []Point {
	switch v := s.(type) {
	case *Point:
		return []Point{*v}
	case *Line:
		return []Point{v.Front, v.Back}
	case *Polyline:
		return v.Points()
	case *Bezier:
		return v.Points()
	case *Circle:
		return nil
	}
	if ring, ok := ringOf(s); ok {
		out := make([]Point, len(ring))
		copy(out, ring)
		return out
	}
	return nil
}

// ringOf returns the closed ring of polygon-like shapes without copying.
func ringOf(s Shape) ([]Point, bool) {
	switch v := s.(type) {
	case *Polygon:
		return v.pts, true
	case *AABBRect:
		return v.pts[:], true
	case *Rectangle:
		return v.pts[:], true
	case *Square:
		return v.pts[:], true
	case *Triangle:
		return v.ring(), true
	}
	return nil, false
}

// chainOf returns the open chain of line-like shapes without copying.
func chainOf(s Shape) ([]Point, bool) {
	switch v := s.(type) {
	case *Line:
		return []Point{v.Front, v.Back}, true
	case *Polyline:
		return v.pts, true
	case *Bezier:
		return v.samples, true
	}
	return nil, false
}

func transformPoint(p Point, a, b, c, d, e, f float64) Point {
	return Point{X: a*p.X + b*p.Y + c, Y: d*p.X + e*p.Y + f}
}

func rotatePoint(p Point, x, y, rad float64) Point {
	return p.Sub(Point{X: x, Y: y}).Rotated(rad).Add(Point{X: x, Y: y})
}

func scalePoint(p Point, x, y, k float64) Point {
	return Point{X: x + (p.X-x)*k, Y: y + (p.Y-y)*k}
}

func boundsOf(pts []Point) AABBRect {
	if len(pts) == 0 {
		return AABBRect{}
	}
	l, t, r, b := pts[0].X, pts[0].Y, pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		l = min(l, p.X)
		r = max(r, p.X)
		t = min(t, p.Y)
		b = max(b, p.Y)
	}
	return NewAABBRect(l, t, r, b)
}

func chainLength(pts []Point) float64 {
	var sum float64
	for i := 1; i < len(pts); i++ {
		sum += pts[i].Distance(pts[i-1])
	}
	return sum
}
