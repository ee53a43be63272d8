package narrow

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/opd-ai/go-collide/pkg/geometry"
)

func rect(x0, y0, x1, y1 float64) *geometry.AABBRect {
	r := geometry.NewAABBRect(x0, y0, x1, y1)
	return &r
}

func TestSupport(t *testing.T) {
	tests := []struct {
		name     string
		shape    geometry.Shape
		dir      geometry.Vector
		expected geometry.Point
	}{
		{name: "point", shape: &geometry.Point{X: 3, Y: 4}, dir: geometry.Vector{X: -1}, expected: geometry.Point{X: 3, Y: 4}},
		{name: "circle_up", shape: geometry.NewCircle(1, 1, 2), dir: geometry.Vector{Y: 5}, expected: geometry.Point{X: 1, Y: 3}},
		{name: "circle_zero_dir", shape: geometry.NewCircle(1, 1, 2), dir: geometry.Vector{}, expected: geometry.Point{X: 3, Y: 1}},
		{name: "line_back", shape: geometry.NewLine(geometry.Point{}, geometry.Point{X: 4, Y: 1}), dir: geometry.Vector{X: 1}, expected: geometry.Point{X: 4, Y: 1}},
		{name: "rect_corner", shape: rect(0, 0, 10, 5), dir: geometry.Vector{X: 1, Y: 1}, expected: geometry.Point{X: 10, Y: 5}},
		{
			name:     "triangle_apex",
			shape:    geometry.NewTriangle(geometry.Point{}, geometry.Point{X: 4, Y: 0}, geometry.Point{X: 2, Y: -3}),
			dir:      geometry.Vector{Y: -1},
			expected: geometry.Point{X: 2, Y: -3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Support(tt.shape, tt.dir); !got.Equal(tt.expected) {
				t.Errorf("Support() = %v, expected %v", got, tt.expected)
			}
		})
	}

	got := FurthestPoint(rect(0, 0, 10, 5), geometry.Point{X: 5, Y: 5}, geometry.Point{X: 0, Y: 0})
	if !got.Equal(geometry.Point{}) {
		t.Errorf("FurthestPoint() = %v, expected origin corner", got)
	}
}

func TestCollide(t *testing.T) {
	tests := []struct {
		name     string
		a, b     geometry.Shape
		expected bool
	}{
		{name: "circles_touching", a: geometry.NewCircle(0, 0, 5), b: geometry.NewCircle(10, 0, 5), expected: true},
		{name: "circles_apart", a: geometry.NewCircle(0, 0, 5), b: geometry.NewCircle(10.5, 0, 5), expected: false},
		{name: "rects_overlapping", a: rect(0, 0, 2, 2), b: rect(1, 1, 3, 3), expected: true},
		{name: "rects_apart", a: rect(0, 0, 2, 2), b: rect(5, 0, 7, 2), expected: false},
		{name: "rect_contains_rect", a: rect(0, 0, 10, 10), b: rect(4, 4, 5, 5), expected: true},
		{name: "point_inside", a: &geometry.Point{X: 1, Y: 1}, b: rect(0, 0, 2, 2), expected: true},
		{name: "point_on_border", a: rect(0, 0, 2, 2), b: &geometry.Point{X: 2, Y: 1}, expected: true},
		{name: "point_outside", a: &geometry.Point{X: 3, Y: 3}, b: rect(0, 0, 2, 2), expected: false},
		{name: "circle_rect_corner_gap", a: geometry.NewCircle(0, 0, 1), b: rect(0.8, 0.8, 2, 2), expected: false},
		{name: "circle_rect_overlap", a: geometry.NewCircle(0, 0, 1), b: rect(0.5, -0.5, 2, 0.5), expected: true},
		{
			name:     "triangles_crossing",
			a:        geometry.NewTriangle(geometry.Point{}, geometry.Point{X: 4, Y: 0}, geometry.Point{X: 2, Y: 4}),
			b:        geometry.NewTriangle(geometry.Point{X: 0, Y: 3}, geometry.Point{X: 4, Y: 3}, geometry.Point{X: 2, Y: -1}),
			expected: true,
		},
		{name: "empty_polygon", a: geometry.NewPolygon(), b: rect(0, 0, 2, 2), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Collide(tt.a, tt.b); got != tt.expected {
				t.Errorf("Collide() = %v, expected %v", got, tt.expected)
			}
			if got := Collide(tt.b, tt.a); got != tt.expected {
				t.Errorf("Collide() swapped = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestGJK_Symmetry(t *testing.T) {
	spun := geometry.NewRectangle(1, 1, 2, 2)
	spun.Rotate(2, 2, math.Pi/5)
	shapes := []geometry.Shape{
		rect(0, 0, 4, 4),
		geometry.NewCircle(5, 2, 1.5),
		geometry.NewTriangle(geometry.Point{X: 10, Y: 10}, geometry.Point{X: 14, Y: 10}, geometry.Point{X: 12, Y: 14}),
		spun,
		geometry.NewLine(geometry.Point{X: -1, Y: -1}, geometry.Point{X: 5, Y: 5}),
		geometry.NewPolygon(
			geometry.Point{X: 20, Y: 0}, geometry.Point{X: 22, Y: 0}, geometry.Point{X: 23, Y: 2},
			geometry.Point{X: 22, Y: 4}, geometry.Point{X: 20, Y: 4}, geometry.Point{X: 19, Y: 2},
		),
		geometry.NewCircle(12, 11, 1),
	}
	for i, a := range shapes {
		for j, b := range shapes {
			if GJK(a, b) != GJK(b, a) {
				t.Errorf("GJK(%d, %d) is not symmetric", i, j)
			}
		}
	}
	if !GJK(shapes[0], shapes[1]) {
		t.Error("rect and circle should overlap")
	}
	if !GJK(shapes[2], shapes[6]) {
		t.Error("triangle and circle should overlap")
	}
	if GJK(shapes[0], shapes[5]) {
		t.Error("rect and hexagon are apart")
	}
}

func TestEPA_Circles(t *testing.T) {
	tests := []struct {
		name   string
		a, b   *geometry.Circle
		depth  float64
		direct geometry.Vector
	}{
		{name: "axis", a: geometry.NewCircle(0, 0, 3), b: geometry.NewCircle(4, 0, 2), depth: 1, direct: geometry.Vector{X: 1}},
		{name: "diagonal", a: geometry.NewCircle(0, 0, 3), b: geometry.NewCircle(3, 4, 3), depth: 1, direct: geometry.Vector{X: 0.6, Y: 0.8}},
		{name: "reversed", a: geometry.NewCircle(4, 0, 2), b: geometry.NewCircle(0, 0, 3), depth: 1, direct: geometry.Vector{X: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			depth, vec := EPA(tt.a, tt.b)
			if math.Abs(depth-tt.depth) > 1e-12 {
				t.Errorf("depth = %v, expected %v", depth, tt.depth)
			}
			if !vec.Normalize().Equal(tt.direct) {
				t.Errorf("direction = %v, expected %v", vec.Normalize(), tt.direct)
			}
			if math.Abs(vec.Length()-depth) > 1e-12 {
				t.Errorf("|vec| = %v, expected %v", vec.Length(), depth)
			}
		})
	}
}

func TestEPA_Rects(t *testing.T) {
	a := rect(0, 0, 2, 2)
	b := rect(1.5, 0.5, 3.5, 2.5)

	depth, vec := EPA(a, b)
	if math.Abs(depth-0.5) > 1e-9 {
		t.Fatalf("depth = %v, expected 0.5", depth)
	}
	if !vec.Equal(geometry.Vector{X: 0.5}) {
		t.Errorf("vec = %v, expected (0.5, 0)", vec)
	}

	d, onA, onB := EPAContacts(a, b)
	if math.Abs(d-depth) > 1e-12 {
		t.Errorf("EPAContacts depth = %v, expected %v", d, depth)
	}
	if !onA.Sub(onB).Equal(vec) {
		t.Errorf("onA - onB = %v, expected %v", onA.Sub(onB), vec)
	}
	if !geometry.IsInside(onA, b, true) || !geometry.IsInside(onB, a, true) {
		t.Errorf("contacts %v, %v are not in the overlap", onA, onB)
	}

	b.Translate(vec.X, vec.Y)
	if depth, _ := EPA(a, b); depth > 1e-9 {
		t.Errorf("after separation depth = %v, expected 0", depth)
	}
}

func TestEPA_ColinearSimplex(t *testing.T) {
	// GJK ends on a segment through the origin for this pair
	depth, vec := EPA(rect(0, 0, 2, 2), rect(1, 1, 3, 3))
	if math.Abs(depth-1) > 1e-9 {
		t.Errorf("depth = %v, expected 1", depth)
	}
	if math.Abs(vec.Length()-1) > 1e-9 {
		t.Errorf("|vec| = %v, expected 1", vec.Length())
	}
}

func TestEPA_NoOverlap(t *testing.T) {
	depth, vec := EPA(rect(0, 0, 1, 1), geometry.NewCircle(5, 5, 1))
	if depth != -1 || vec != (geometry.Vector{}) {
		t.Errorf("EPA() = %v, %v, expected -1 and zero vector", depth, vec)
	}
	if depth, _ := EPA(geometry.NewCircle(0, 0, 1), geometry.NewCircle(3, 0, 1)); depth != -1 {
		t.Errorf("circle EPA() = %v, expected -1", depth)
	}
}

func TestPenetration(t *testing.T) {
	t.Run("no_collision", func(t *testing.T) {
		result := Penetration(geometry.NewCircle(0, 0, 5), geometry.NewCircle(15, 0, 5))
		if result.Collided {
			t.Error("Expected no collision, but got collision")
		}
	})

	t.Run("collision_with_penetration", func(t *testing.T) {
		result := Penetration(geometry.NewCircle(0, 0, 5), geometry.NewCircle(8, 0, 5))
		if !result.Collided {
			t.Fatal("Expected collision, but got no collision")
		}
		if result.Penetration != 2 {
			t.Errorf("Expected penetration 2, got %v", result.Penetration)
		}
		if !result.Normal.Equal(geometry.Vector{X: 1}) {
			t.Errorf("Expected normal (1, 0), got %v", result.Normal)
		}
		if !result.ContactPoint.Equal(geometry.Point{X: 5}) {
			t.Errorf("Expected contact point (5, 0), got %v", result.ContactPoint)
		}
		if !result.Separation().Equal(geometry.Vector{X: 2}) {
			t.Errorf("Expected separation (2, 0), got %v", result.Separation())
		}
	})
}

func TestSolver_IterationCaps(t *testing.T) {
	a, b := rect(0, 0, 2, 2), rect(1.5, 0.5, 3.5, 2.5)

	t.Run("gjk_cap_reports_no_collision", func(t *testing.T) {
		before := testutil.ToFloat64(gjkCapHits)
		s := Solver{MaxIterations: 0, EPAMaxIterations: 8, Tolerance: DefaultTolerance}
		if s.GJK(a, b) {
			t.Error("capped GJK should report no collision")
		}
		if got := testutil.ToFloat64(gjkCapHits) - before; got != 1 {
			t.Errorf("cap hits = %v, expected 1", got)
		}
	})

	t.Run("epa_cap_returns_best_edge", func(t *testing.T) {
		before := testutil.ToFloat64(epaCapHits)
		s := Solver{MaxIterations: DefaultMaxIterations, EPAMaxIterations: 0, Tolerance: DefaultTolerance}
		depth, _ := s.EPA(a, b)
		if depth < 0 {
			t.Errorf("capped EPA depth = %v, expected a best-effort depth", depth)
		}
		if got := testutil.ToFloat64(epaCapHits) - before; got != 1 {
			t.Errorf("cap hits = %v, expected 1", got)
		}
	})
}
