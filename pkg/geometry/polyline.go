package geometry

// Polyline is an ordered, open chain of points.
type Polyline struct {
	pts []Point
}

// NewPolyline creates a polyline from the given points.
func NewPolyline(pts ...Point) *Polyline {
	p := &Polyline{pts: make([]Point, len(pts))}
	copy(p.pts, pts)
	return p
}

// Points returns a copy of the chain.
func (p *Polyline) Points() []Point {
	out := make([]Point, len(p.pts))
	copy(out, p.pts)
	return out
}

// Len returns the number of points.
func (p *Polyline) Len() int { return len(p.pts) }

// At returns the i-th point. It panics when i is out of range.
func (p *Polyline) At(i int) Point { return p.pts[i] }

// Set replaces the i-th point.
func (p *Polyline) Set(i int, pt Point) { p.pts[i] = pt }

func (p *Polyline) Front() Point { return p.pts[0] }

func (p *Polyline) Back() Point { return p.pts[len(p.pts)-1] }

// Append adds points at the end of the chain.
func (p *Polyline) Append(pts ...Point) {
	p.pts = append(p.pts, pts...)
}

// Insert inserts pt before index i.
func (p *Polyline) Insert(i int, pt Point) {
	p.pts = append(p.pts, Point{})
	copy(p.pts[i+1:], p.pts[i:])
	p.pts[i] = pt
}

// Remove deletes the i-th point.
func (p *Polyline) Remove(i int) {
	p.pts = append(p.pts[:i], p.pts[i+1:]...)
}

// Reverse flips the direction of the chain.
func (p *Polyline) Reverse() {
	reversePoints(p.pts)
}

func (p *Polyline) Kind() Kind { return KindPolyline }

func (p *Polyline) BoundingRect() AABBRect { return boundsOf(p.pts) }

func (p *Polyline) Clone() Shape { return NewPolyline(p.pts...) }

func (p *Polyline) Transform(a, b, c, d, e, f float64) {
	for i := range p.pts {
		p.pts[i] = transformPoint(p.pts[i], a, b, c, d, e, f)
	}
}

func (p *Polyline) Translate(tx, ty float64) {
	for i := range p.pts {
		p.pts[i].Translate(tx, ty)
	}
}

func (p *Polyline) Rotate(x, y, rad float64) {
	for i := range p.pts {
		p.pts[i] = rotatePoint(p.pts[i], x, y, rad)
	}
}

func (p *Polyline) Scale(x, y, k float64) {
	for i := range p.pts {
		p.pts[i] = scalePoint(p.pts[i], x, y, k)
	}
}

func (p *Polyline) Length() float64 { return chainLength(p.pts) }

func (p *Polyline) Empty() bool { return len(p.pts) == 0 }

func reversePoints(pts []Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
