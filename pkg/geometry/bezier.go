package geometry

// DefaultBezierSteps is the number of samples taken per curve segment.
const DefaultBezierSteps = 24

// Bezier is a piecewise Bezier curve. Every segment uses Order+1 control
// points and shares its last control point with the next segment. The
// curve is sampled into a polyline that all predicates operate on.
type Bezier struct {
	controls []Point
	order    int
	steps    int
	samples  []Point
}

// NewBezier creates a curve of the given order (2 for quadratic, 3 for
// cubic segments). Control points left over after the last complete
// segment are ignored; fewer than order+1 points form a single segment
// of lower degree.
func NewBezier(controls []Point, order int) *Bezier {
	if order < 1 {
		order = 1
	}
	b := &Bezier{
		controls: make([]Point, len(controls)),
		order:    order,
		steps:    DefaultBezierSteps,
	}
	copy(b.controls, controls)
	b.resample()
	return b
}

// Order returns the degree of each segment.
func (b *Bezier) Order() int { return b.order }

// Controls returns a copy of the control points.
func (b *Bezier) Controls() []Point {
	out := make([]Point, len(b.controls))
	copy(out, b.controls)
	return out
}

// Points returns a copy of the sampled polyline.
func (b *Bezier) Points() []Point {
	out := make([]Point, len(b.samples))
	copy(out, b.samples)
	return out
}

// SetSteps changes the sampling density per segment.
func (b *Bezier) SetSteps(steps int) {
	if steps < 1 {
		steps = 1
	}
	b.steps = steps
	b.resample()
}

func (b *Bezier) resample() {
	b.samples = b.samples[:0]
	n := len(b.controls)
	switch {
	case n == 0:
		return
	case n == 1:
		b.samples = append(b.samples, b.controls[0])
		return
	case n <= b.order:
		b.sampleSegment(b.controls, true)
		return
	}
	first := true
	for start := 0; start+b.order < n; start += b.order {
		b.sampleSegment(b.controls[start:start+b.order+1], first)
		first = false
	}
}

func (b *Bezier) sampleSegment(ctrl []Point, withStart bool) {
	i := 1
	if withStart {
		i = 0
	}
	work := make([]Point, len(ctrl))
	for ; i <= b.steps; i++ {
		b.samples = append(b.samples, deCasteljau(ctrl, work, float64(i)/float64(b.steps)))
	}
}

func deCasteljau(ctrl, work []Point, t float64) Point {
	copy(work, ctrl)
	for k := len(work) - 1; k > 0; k-- {
		for i := 0; i < k; i++ {
			work[i] = work[i].Mul(1 - t).Add(work[i+1].Mul(t))
		}
	}
	return work[0]
}

func (b *Bezier) Kind() Kind { return KindBezier }

func (b *Bezier) BoundingRect() AABBRect { return boundsOf(b.samples) }

func (b *Bezier) Clone() Shape {
	c := &Bezier{
		controls: make([]Point, len(b.controls)),
		order:    b.order,
		steps:    b.steps,
		samples:  make([]Point, len(b.samples)),
	}
	copy(c.controls, b.controls)
	copy(c.samples, b.samples)
	return c
}

func (b *Bezier) Transform(a, bb, c, d, e, f float64) {
	for i := range b.controls {
		b.controls[i] = transformPoint(b.controls[i], a, bb, c, d, e, f)
	}
	b.resample()
}

func (b *Bezier) Translate(tx, ty float64) {
	for i := range b.controls {
		b.controls[i].Translate(tx, ty)
	}
	for i := range b.samples {
		b.samples[i].Translate(tx, ty)
	}
}

func (b *Bezier) Rotate(x, y, rad float64) {
	for i := range b.controls {
		b.controls[i] = rotatePoint(b.controls[i], x, y, rad)
	}
	b.resample()
}

func (b *Bezier) Scale(x, y, k float64) {
	for i := range b.controls {
		b.controls[i] = scalePoint(b.controls[i], x, y, k)
	}
	b.resample()
}

// Length returns the length of the sampled polyline.
func (b *Bezier) Length() float64 { return chainLength(b.samples) }

func (b *Bezier) Empty() bool { return len(b.controls) == 0 }
