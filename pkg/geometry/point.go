// pkg/geometry/point.go
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point represents a 2D point or vector with x and y components
type Point struct {
	X float64
	Y float64
}

// Vector is a Point used as a displacement
type Vector = Point

// FromR2 converts a gonum vector into a Point
func FromR2(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// R2 converts the point into a gonum vector
func (p Point) R2() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Add returns the sum of two vectors
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference between two vectors
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Mul multiplies the vector by a scalar value
func (p Point) Mul(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// Dot returns the dot product of two vectors
func (p Point) Dot(other Point) float64 {
	return p.X*other.X + p.Y*other.Y
}

// Cross returns the z component of the cross product p x other
func (p Point) Cross(other Point) float64 {
	return p.X*other.Y - p.Y*other.X
}

// Length returns the magnitude of the vector. For a point used as a
// shape this is its distance from the origin.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// LengthSquared returns magnitude squared (optimization for comparisons)
func (p Point) LengthSquared() float64 {
	return p.X*p.X + p.Y*p.Y
}

// Normalize returns a unit vector in the same direction. The zero vector
// normalizes to itself.
func (p Point) Normalize() Point {
	length := p.Length()
	if length == 0 {
		return Point{}
	}
	return Point{X: p.X / length, Y: p.Y / length}
}

// Distance returns the distance between two points
func (p Point) Distance(other Point) float64 {
	return p.Sub(other).Length()
}

// Angle returns the angle of the vector in radians
func (p Point) Angle() float64 {
	return math.Atan2(p.Y, p.X)
}

// Perp returns the vector rotated by +90 degrees
func (p Point) Perp() Point {
	return Point{X: -p.Y, Y: p.X}
}

// Rotated returns the vector rotated by angle (in radians)
func (p Point) Rotated(angle float64) Point {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Point{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

// Equal reports whether two points coincide within Epsilon
func (p Point) Equal(other Point) bool {
	return almostEqual(p.X, other.X) && almostEqual(p.Y, other.Y)
}

// FromAngle creates a vector from an angle and magnitude
func FromAngle(angle float64, magnitude float64) Point {
	return Point{
		X: magnitude * math.Cos(angle),
		Y: magnitude * math.Sin(angle),
	}
}

func (p *Point) Kind() Kind { return KindPoint }

func (p *Point) BoundingRect() AABBRect {
	return NewAABBRect(p.X, p.Y, p.X, p.Y)
}

func (p *Point) Clone() Shape {
	c := *p
	return &c
}

func (p *Point) Transform(a, b, c, d, e, f float64) {
	*p = transformPoint(*p, a, b, c, d, e, f)
}

func (p *Point) Translate(tx, ty float64) {
	p.X += tx
	p.Y += ty
}

func (p *Point) Rotate(x, y, rad float64) {
	*p = rotatePoint(*p, x, y, rad)
}

func (p *Point) Scale(x, y, k float64) {
	*p = scalePoint(*p, x, y, k)
}

// Empty reports whether the point sits on the origin.
func (p *Point) Empty() bool {
	return p.X == 0 && p.Y == 0
}
