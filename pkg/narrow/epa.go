package narrow

import (
	"math"

	"github.com/opd-ai/go-collide/pkg/geometry"
)

// EPA returns the penetration depth of a and b together with the vector
// that separates them: translating b by vec moves it out of a. It returns
// -1 and a zero vector when the shapes do not overlap. Shapes that only
// touch report depth 0.
func EPA(a, b geometry.Shape) (float64, geometry.Vector) { return DefaultSolver.EPA(a, b) }

// EPAContacts is EPA reporting the deepest points of each shape instead of
// the separating vector. onA - onB equals the vector EPA would return.
func EPAContacts(a, b geometry.Shape) (depth float64, onA, onB geometry.Point) {
	return DefaultSolver.EPAContacts(a, b)
}

func (s Solver) EPA(a, b geometry.Shape) (float64, geometry.Vector) {
	pen, ok := s.penetrate(a, b)
	if !ok {
		return -1, geometry.Vector{}
	}
	return pen.depth, pen.normal.Mul(pen.depth)
}

func (s Solver) EPAContacts(a, b geometry.Shape) (float64, geometry.Point, geometry.Point) {
	pen, ok := s.penetrate(a, b)
	if !ok {
		return -1, geometry.Point{}, geometry.Point{}
	}
	return pen.depth, pen.onA, pen.onB
}

type penetration struct {
	depth    float64
	normal   geometry.Vector
	onA, onB geometry.Point
}

func (s Solver) penetrate(sa, sb geometry.Shape) (penetration, bool) {
	if !hasGeometry(sa) || !hasGeometry(sb) {
		return penetration{}, false
	}
	ca, okA := sa.(*geometry.Circle)
	cb, okB := sb.(*geometry.Circle)
	if okA && okB {
		return circlePenetration(ca, cb)
	}
	tri, ok := s.simplex(sa, sb)
	if !ok {
		return penetration{}, false
	}
	epaTests.Inc()
	poly, ok := s.seedPolytope(sa, sb, tri)
	if !ok {
		// the difference is flat: the shapes only touch
		return penetration{onA: tri[0].a, onB: tri[0].b}, true
	}
	return s.expand(sa, sb, poly), true
}

func circlePenetration(a, b *geometry.Circle) (penetration, bool) {
	delta := b.Center.Sub(a.Center)
	dist := delta.Length()
	sum := a.Radius + b.Radius
	if dist > sum+geometry.Epsilon*math.Max(1, sum) {
		return penetration{}, false
	}
	n := delta.Normalize()
	if n == (geometry.Vector{}) {
		n = geometry.Vector{X: 1}
	}
	return penetration{
		depth:  math.Max(0, sum-dist),
		normal: n,
		onA:    a.Center.Add(n.Mul(a.Radius)),
		onB:    b.Center.Sub(n.Mul(b.Radius)),
	}, true
}

// seedPolytope turns the GJK result into a positively oriented triangle,
// pushing out degenerate simplices with extra support queries.
func (s Solver) seedPolytope(sa, sb geometry.Shape, tri [3]vertex) ([]vertex, bool) {
	v0, v1, v2 := tri[0], tri[1], tri[2]
	if v1.p.Equal(v0.p) {
		v1 = v2
	}
	if v1.p.Equal(v0.p) {
		// single point: probe along the axes for a second one
		for _, d := range []geometry.Vector{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			if c := minkowski(sa, sb, d); !c.p.Equal(v0.p) {
				v1 = c
				break
			}
		}
		if v1.p.Equal(v0.p) {
			return nil, false
		}
	}
	if area := geometry.Cross(v1.p.Sub(v0.p), v2.p.Sub(v0.p)); math.Abs(area) <= progressTol(v1.p.Sub(v0.p), v2.p.Sub(v0.p)) {
		perp := v1.p.Sub(v0.p).Perp()
		found := false
		for _, d := range []geometry.Vector{perp, perp.Mul(-1)} {
			c := minkowski(sa, sb, d)
			if c.p.Sub(v0.p).Dot(d) > progressTol(c.p, d) {
				v2, found = c, true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	if geometry.Cross(v1.p.Sub(v0.p), v2.p.Sub(v0.p)) < 0 {
		v1, v2 = v2, v1
	}
	return []vertex{v0, v1, v2}, true
}

// expand grows the polytope towards the boundary of the Minkowski
// difference until the closest edge stops moving.
func (s Solver) expand(sa, sb geometry.Shape, poly []vertex) penetration {
	var (
		edge   int
		normal geometry.Vector
		dist   float64
	)
	for iter := 0; ; iter++ {
		edge, normal, dist = closestEdge(poly)
		if iter >= s.EPAMaxIterations {
			epaCapHits.Inc()
			break
		}
		c := minkowski(sa, sb, normal)
		if c.p.Dot(normal)-dist <= s.Tolerance*math.Max(1, dist) {
			break
		}
		poly = append(poly, vertex{})
		copy(poly[edge+2:], poly[edge+1:])
		poly[edge+1] = c
	}

	v0, v1 := poly[edge], poly[(edge+1)%len(poly)]
	e := v1.p.Sub(v0.p)
	t := 0.0
	if l2 := e.LengthSquared(); l2 > 0 {
		t = math.Max(0, math.Min(1, -v0.p.Dot(e)/l2))
	}
	return penetration{
		depth:  math.Max(0, dist),
		normal: normal,
		onA:    v0.a.Add(v1.a.Sub(v0.a).Mul(t)),
		onB:    v0.b.Add(v1.b.Sub(v0.b).Mul(t)),
	}
}

// closestEdge returns the polytope edge nearest the origin with its
// outward normal and distance.
func closestEdge(poly []vertex) (int, geometry.Vector, float64) {
	best, bestDist := 0, math.Inf(1)
	var bestNormal geometry.Vector
	for i := range poly {
		a, b := poly[i].p, poly[(i+1)%len(poly)].p
		e := b.Sub(a)
		n := geometry.Vector{X: e.Y, Y: -e.X}.Normalize()
		if n == (geometry.Vector{}) {
			continue
		}
		if d := n.Dot(a); d < bestDist {
			best, bestDist, bestNormal = i, d, n
		}
	}
	return best, bestNormal, bestDist
}
