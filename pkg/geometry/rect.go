package geometry

import "gonum.org/v1/gonum/spatial/r2"

// AABBRect is an axis-aligned box stored as the closed ring
// top-left, top-right, bottom-right, bottom-left, top-left.
type AABBRect struct {
	pts [5]Point
}

// NewAABBRect creates a box from two opposite corners in any order.
func NewAABBRect(x0, y0, x1, y1 float64) AABBRect {
	l, r := min(x0, x1), max(x0, x1)
	t, b := min(y0, y1), max(y0, y1)
	var rect AABBRect
	rect.set(l, t, r, b)
	return rect
}

// NewAABBRectSize creates a box from its top-left corner and size.
func NewAABBRectSize(x, y, w, h float64) AABBRect {
	return NewAABBRect(x, y, x+w, y+h)
}

// AABBFromBox converts a gonum box.
func AABBFromBox(b r2.Box) AABBRect {
	return NewAABBRect(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
}

func (r *AABBRect) set(l, t, rt, b float64) {
	r.pts[0] = Point{X: l, Y: t}
	r.pts[1] = Point{X: rt, Y: t}
	r.pts[2] = Point{X: rt, Y: b}
	r.pts[3] = Point{X: l, Y: b}
	r.pts[4] = r.pts[0]
}

func (r AABBRect) Left() float64   { return r.pts[0].X }
func (r AABBRect) Top() float64    { return r.pts[0].Y }
func (r AABBRect) Right() float64  { return r.pts[2].X }
func (r AABBRect) Bottom() float64 { return r.pts[2].Y }

func (r AABBRect) Width() float64  { return r.Right() - r.Left() }
func (r AABBRect) Height() float64 { return r.Bottom() - r.Top() }

func (r AABBRect) Center() Point {
	return Point{X: (r.Left() + r.Right()) / 2, Y: (r.Top() + r.Bottom()) / 2}
}

// Box converts the rectangle into a gonum box.
func (r AABBRect) Box() r2.Box {
	return r2.Box{Min: r.pts[0].R2(), Max: r.pts[2].R2()}
}

// Points returns the closed ring.
func (r AABBRect) Points() []Point {
	out := make([]Point, 5)
	copy(out, r.pts[:])
	return out
}

// Area returns width times height.
func (r AABBRect) Area() float64 { return r.Width() * r.Height() }

// ContainsPoint reports whether p lies inside; borders count when
// coincide is set.
func (r AABBRect) ContainsPoint(p Point, coincide bool) bool {
	if coincide {
		return p.X >= r.Left() && p.X <= r.Right() && p.Y >= r.Top() && p.Y <= r.Bottom()
	}
	return p.X > r.Left() && p.X < r.Right() && p.Y > r.Top() && p.Y < r.Bottom()
}

// ContainsRect reports whether o lies within r, borders included.
func (r AABBRect) ContainsRect(o AABBRect) bool {
	return o.Left() >= r.Left() && o.Right() <= r.Right() &&
		o.Top() >= r.Top() && o.Bottom() <= r.Bottom()
}

// Intersects reports whether the boxes overlap or touch.
func (r AABBRect) Intersects(o AABBRect) bool {
	return !(o.Left() > r.Right() || o.Right() < r.Left() ||
		o.Top() > r.Bottom() || o.Bottom() < r.Top())
}

// Union returns the smallest box covering both.
func (r AABBRect) Union(o AABBRect) AABBRect {
	return NewAABBRect(min(r.Left(), o.Left()), min(r.Top(), o.Top()),
		max(r.Right(), o.Right()), max(r.Bottom(), o.Bottom()))
}

// Expand grows the box by d on every side. Negative values shrink it down
// to its center line.
func (r AABBRect) Expand(d float64) AABBRect {
	cx, cy := r.Center().X, r.Center().Y
	hw := max(r.Width()/2+d, 0)
	hh := max(r.Height()/2+d, 0)
	return NewAABBRect(cx-hw, cy-hh, cx+hw, cy+hh)
}

func (r *AABBRect) Kind() Kind { return KindAABBRect }

func (r *AABBRect) BoundingRect() AABBRect { return *r }

func (r *AABBRect) Clone() Shape {
	c := *r
	return &c
}

// Transform maps the corners and keeps their axis-aligned bounds.
func (r *AABBRect) Transform(a, b, c, d, e, f float64) {
	var pts [4]Point
	for i := range pts {
		pts[i] = transformPoint(r.pts[i], a, b, c, d, e, f)
	}
	*r = boundsOf(pts[:])
}

func (r *AABBRect) Translate(tx, ty float64) {
	for i := range r.pts {
		r.pts[i].Translate(tx, ty)
	}
}

// Rotate turns the corners and keeps their axis-aligned bounds.
func (r *AABBRect) Rotate(x, y, rad float64) {
	var pts [4]Point
	for i := range pts {
		pts[i] = rotatePoint(r.pts[i], x, y, rad)
	}
	*r = boundsOf(pts[:])
}

func (r *AABBRect) Scale(x, y, k float64) {
	p0 := scalePoint(r.pts[0], x, y, k)
	p2 := scalePoint(r.pts[2], x, y, k)
	*r = NewAABBRect(p0.X, p0.Y, p2.X, p2.Y)
}

// Length returns the perimeter.
func (r *AABBRect) Length() float64 { return 2 * (r.Width() + r.Height()) }

// Empty reports a box without area.
func (r *AABBRect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Rectangle is an oriented rectangle stored as a closed five point ring.
type Rectangle struct {
	pts [5]Point
}

// NewRectangle creates an axis-aligned rectangle that may later be rotated.
func NewRectangle(x, y, w, h float64) *Rectangle {
	r := &Rectangle{}
	aabb := NewAABBRectSize(x, y, w, h)
	r.pts = aabb.pts
	return r
}

// RectangleFromCorners rebuilds a rectangle from its four corners in ring
// order. The corners are taken as given.
func RectangleFromCorners(a, b, c, d Point) *Rectangle {
	return &Rectangle{pts: [5]Point{a, b, c, d, a}}
}

// Points returns the closed ring.
func (r *Rectangle) Points() []Point {
	out := make([]Point, 5)
	copy(out, r.pts[:])
	return out
}

// Vertex returns corner i (0..3).
func (r *Rectangle) Vertex(i int) Point { return r.pts[i] }

func (r *Rectangle) Width() float64  { return r.pts[0].Distance(r.pts[1]) }
func (r *Rectangle) Height() float64 { return r.pts[1].Distance(r.pts[2]) }

func (r *Rectangle) Center() Point {
	return r.pts[0].Add(r.pts[2]).Mul(0.5)
}

// Angle returns the orientation of the top edge.
func (r *Rectangle) Angle() float64 {
	return r.pts[1].Sub(r.pts[0]).Angle()
}

func (r *Rectangle) Area() float64 { return r.Width() * r.Height() }

func (r *Rectangle) Kind() Kind { return KindRectangle }

func (r *Rectangle) BoundingRect() AABBRect { return boundsOf(r.pts[:4]) }

func (r *Rectangle) Clone() Shape {
	c := *r
	return &c
}

func (r *Rectangle) Transform(a, b, c, d, e, f float64) {
	for i := 0; i < 4; i++ {
		r.pts[i] = transformPoint(r.pts[i], a, b, c, d, e, f)
	}
	r.pts[4] = r.pts[0]
}

func (r *Rectangle) Translate(tx, ty float64) {
	for i := range r.pts {
		r.pts[i].Translate(tx, ty)
	}
}

func (r *Rectangle) Rotate(x, y, rad float64) {
	for i := 0; i < 4; i++ {
		r.pts[i] = rotatePoint(r.pts[i], x, y, rad)
	}
	r.pts[4] = r.pts[0]
}

func (r *Rectangle) Scale(x, y, k float64) {
	for i := range r.pts {
		r.pts[i] = scalePoint(r.pts[i], x, y, k)
	}
}

func (r *Rectangle) Length() float64 { return 2 * (r.Width() + r.Height()) }

func (r *Rectangle) Empty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Square is a Rectangle with equal sides. Non-uniform Transform calls can
// break that property; the remaining mutators preserve it.
type Square struct {
	Rectangle
}

// NewSquare creates an axis-aligned square with its top-left corner at (x, y).
func NewSquare(x, y, side float64) *Square {
	return &Square{Rectangle: *NewRectangle(x, y, side, side)}
}

// SquareFromCorners is RectangleFromCorners for squares.
func SquareFromCorners(a, b, c, d Point) *Square {
	return &Square{Rectangle: *RectangleFromCorners(a, b, c, d)}
}

// Side returns the side length.
func (s *Square) Side() float64 { return s.Width() }

func (s *Square) Kind() Kind { return KindSquare }

func (s *Square) Clone() Shape {
	c := *s
	return &c
}
