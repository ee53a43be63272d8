package geometry

// Line is a finite segment from Front to Back.
type Line struct {
	Front Point
	Back  Point
}

// NewLine creates a segment between two points.
func NewLine(front, back Point) *Line {
	return &Line{Front: front, Back: back}
}

// Direction returns Back - Front.
func (l *Line) Direction() Vector {
	return l.Back.Sub(l.Front)
}

// Center returns the midpoint of the segment.
func (l *Line) Center() Point {
	return l.Front.Add(l.Back).Mul(0.5)
}

func (l *Line) Kind() Kind { return KindLine }

func (l *Line) BoundingRect() AABBRect {
	return NewAABBRect(l.Front.X, l.Front.Y, l.Back.X, l.Back.Y)
}

func (l *Line) Clone() Shape {
	c := *l
	return &c
}

func (l *Line) Transform(a, b, c, d, e, f float64) {
	l.Front = transformPoint(l.Front, a, b, c, d, e, f)
	l.Back = transformPoint(l.Back, a, b, c, d, e, f)
}

func (l *Line) Translate(tx, ty float64) {
	l.Front.Translate(tx, ty)
	l.Back.Translate(tx, ty)
}

func (l *Line) Rotate(x, y, rad float64) {
	l.Front = rotatePoint(l.Front, x, y, rad)
	l.Back = rotatePoint(l.Back, x, y, rad)
}

func (l *Line) Scale(x, y, k float64) {
	l.Front = scalePoint(l.Front, x, y, k)
	l.Back = scalePoint(l.Back, x, y, k)
}

func (l *Line) Length() float64 {
	return l.Front.Distance(l.Back)
}

// Empty reports a zero-length segment.
func (l *Line) Empty() bool {
	return l.Front.Equal(l.Back)
}
