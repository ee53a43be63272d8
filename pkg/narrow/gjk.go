package narrow

import (
	"math"

	"github.com/opd-ai/go-collide/pkg/geometry"
	"github.com/opd-ai/go-collide/pkg/metrics"
)

// Default iteration caps and convergence tolerance.
const (
	DefaultMaxIterations    = 64
	DefaultEPAMaxIterations = 64
	DefaultTolerance        = 1e-9
)

var (
	gjkTests   = metrics.NarrowTestsTotal.WithLabelValues("gjk")
	epaTests   = metrics.NarrowTestsTotal.WithLabelValues("epa")
	gjkCapHits = metrics.IterationCapHitsTotal.WithLabelValues("gjk")
	epaCapHits = metrics.IterationCapHitsTotal.WithLabelValues("epa")
)

// Solver carries the limits of the iterative algorithms. The zero value
// is not usable; start from DefaultSolver.
type Solver struct {
	// MaxIterations bounds the GJK loop. A run that reaches it reports no
	// collision.
	MaxIterations int
	// EPAMaxIterations bounds polytope expansion. A run that reaches it
	// returns the closest edge found so far.
	EPAMaxIterations int
	// Tolerance is the minimum progress EPA must make to keep expanding.
	Tolerance float64
}

// DefaultSolver is used by the package-level functions.
var DefaultSolver = Solver{
	MaxIterations:    DefaultMaxIterations,
	EPAMaxIterations: DefaultEPAMaxIterations,
	Tolerance:        DefaultTolerance,
}

// GJK reports whether the convex hulls of a and b touch or overlap.
func GJK(a, b geometry.Shape) bool { return DefaultSolver.GJK(a, b) }

// Collide is the run-time dispatched narrow test. Points are answered by
// containment, circle pairs analytically and everything else by GJK.
func Collide(a, b geometry.Shape) bool { return DefaultSolver.Collide(a, b) }

func (s Solver) GJK(a, b geometry.Shape) bool {
	if !hasGeometry(a) || !hasGeometry(b) {
		return false
	}
	_, ok := s.simplex(a, b)
	return ok
}

func (s Solver) Collide(a, b geometry.Shape) bool {
	if !hasGeometry(a) || !hasGeometry(b) {
		return false
	}
	if !a.BoundingRect().Intersects(b.BoundingRect()) {
		return false
	}
	if p, ok := a.(*geometry.Point); ok {
		return geometry.IsInside(*p, b, true)
	}
	if p, ok := b.(*geometry.Point); ok {
		return geometry.IsInside(*p, a, true)
	}
	if ca, ok := a.(*geometry.Circle); ok {
		if cb, ok := b.(*geometry.Circle); ok {
			return circlesOverlap(ca, cb)
		}
	}
	_, ok := s.simplex(a, b)
	return ok
}

func circlesOverlap(a, b *geometry.Circle) bool {
	sum := a.Radius + b.Radius
	return a.Center.Distance(b.Center) <= sum+geometry.Epsilon*math.Max(1, sum)
}

// progressTol is the slack allowed when a support point only reaches the
// origin's side of the search line because of rounding.
func progressTol(p, d geometry.Vector) float64 {
	return 1e-9 * math.Max(1, p.Length()*d.Length())
}

// simplex runs GJK and returns the final triangle when the origin lies in
// the Minkowski difference a - b. The triangle may be degenerate when the
// shapes only touch.
func (s Solver) simplex(sa, sb geometry.Shape) ([3]vertex, bool) {
	gjkTests.Inc()
	var origin geometry.Point

	d := sa.BoundingRect().Center().Sub(sb.BoundingRect().Center())
	if d == (geometry.Vector{}) {
		d = geometry.Vector{X: 1}
	}
	v0 := minkowski(sa, sb, d)
	if v0.p.Equal(origin) {
		return [3]vertex{v0, v0, v0}, true
	}
	d = v0.p.Mul(-1)
	v1 := minkowski(sa, sb, d)
	if v1.p.Dot(d) < -progressTol(v1.p, d) {
		return [3]vertex{}, false
	}

	prev0, prev1 := v0.p, v1.p
	for i := 0; i < s.MaxIterations; i++ {
		ab := v1.p.Sub(v0.p)
		if ab.LengthSquared() == 0 {
			d = v0.p.Mul(-1)
		} else {
			if geometry.IsInsideSegment(origin, v0.p, v1.p, false) {
				return [3]vertex{v0, v1, v1}, true
			}
			d = ab.Perp()
			if d.Dot(v0.p) > 0 {
				d = d.Mul(-1)
			}
		}

		v2 := minkowski(sa, sb, d)
		if v2.p.Dot(d) < -progressTol(v2.p, d) {
			return [3]vertex{}, false
		}
		if geometry.IsInsideTriangle(origin, v0.p, v1.p, v2.p, true) {
			return [3]vertex{v0, v1, v2}, true
		}
		if v2.p.Equal(v0.p) || v2.p.Equal(v1.p) {
			return [3]vertex{}, false
		}

		// keep the edge nearest the origin
		d0 := geometry.DistanceToSegment(origin, v0.p, v2.p, false)
		d1 := geometry.DistanceToSegment(origin, v1.p, v2.p, false)
		if d0 < d1 {
			v1 = v2
		} else {
			v0 = v2
		}
		if v0.p.Equal(prev0) && v1.p.Equal(prev1) || v0.p.Equal(prev1) && v1.p.Equal(prev0) {
			return [3]vertex{}, false
		}
		prev0, prev1 = v0.p, v1.p
	}
	gjkCapHits.Inc()
	return [3]vertex{}, false
}
