// pkg/geometry/circle.go
package geometry

import "math"

// Circle represents a circular collision shape
type Circle struct {
	Center Point
	Radius float64
}

// NewCircle creates a circle centered at (x, y).
func NewCircle(x, y, radius float64) *Circle {
	return &Circle{Center: Point{X: x, Y: y}, Radius: radius}
}

// Area returns the enclosed area.
func (c *Circle) Area() float64 { return math.Pi * c.Radius * c.Radius }

func (c *Circle) Kind() Kind { return KindCircle }

func (c *Circle) BoundingRect() AABBRect {
	return NewAABBRect(c.Center.X-c.Radius, c.Center.Y-c.Radius,
		c.Center.X+c.Radius, c.Center.Y+c.Radius)
}

func (c *Circle) Clone() Shape {
	cp := *c
	return &cp
}

// Transform maps the center and scales the radius by the square root of
// the determinant, which is exact for similarity transforms.
func (c *Circle) Transform(a, b, cc, d, e, f float64) {
	c.Center = transformPoint(c.Center, a, b, cc, d, e, f)
	c.Radius *= math.Sqrt(math.Abs(a*e - b*d))
}

func (c *Circle) Translate(tx, ty float64) {
	c.Center.Translate(tx, ty)
}

func (c *Circle) Rotate(x, y, rad float64) {
	c.Center = rotatePoint(c.Center, x, y, rad)
}

func (c *Circle) Scale(x, y, k float64) {
	c.Center = scalePoint(c.Center, x, y, k)
	c.Radius *= math.Abs(k)
}

// Length returns the circumference.
func (c *Circle) Length() float64 { return 2 * math.Pi * c.Radius }

func (c *Circle) Empty() bool { return c.Radius <= 0 }
