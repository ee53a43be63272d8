package geometry

import (
	"math"
	"testing"
)

func totalArea(polys []*Polygon) float64 {
	var sum float64
	for _, p := range polys {
		sum += p.SignedArea()
	}
	return sum
}

func TestPolygonBoolean_OverlappingSquares(t *testing.T) {
	a := NewAABBRect(0, 0, 2, 2)
	b := NewAABBRect(1, 1, 3, 3)

	tests := []struct {
		name  string
		op    func(a, b Shape) []*Polygon
		rings int
		area  float64
	}{
		{name: "intersection", op: PolygonIntersection, rings: 1, area: 1},
		{name: "union", op: PolygonUnion, rings: 1, area: 7},
		{name: "difference", op: PolygonDifference, rings: 1, area: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.op(&a, &b)
			if len(out) != tt.rings {
				t.Fatalf("got %d rings, expected %d", len(out), tt.rings)
			}
			if got := totalArea(out); math.Abs(got-tt.area) > 1e-9 {
				t.Errorf("area = %v, expected %v", got, tt.area)
			}
		})
	}
}

func TestPolygonBoolean_Containment(t *testing.T) {
	outer := NewAABBRect(0, 0, 10, 10)
	inner := NewAABBRect(2, 2, 4, 4)

	t.Run("intersection_is_inner", func(t *testing.T) {
		out := PolygonIntersection(&outer, &inner)
		if len(out) != 1 || math.Abs(out[0].Area()-4) > 1e-9 {
			t.Errorf("PolygonIntersection() = %v", out)
		}
	})

	t.Run("union_is_outer", func(t *testing.T) {
		out := PolygonUnion(&inner, &outer)
		if len(out) != 1 || math.Abs(out[0].Area()-100) > 1e-9 {
			t.Errorf("PolygonUnion() = %v", out)
		}
	})

	t.Run("difference_has_hole", func(t *testing.T) {
		out := PolygonDifference(&outer, &inner)
		if len(out) != 2 {
			t.Fatalf("got %d rings, expected outer ring and hole", len(out))
		}
		if out[0].SignedArea() <= 0 || out[1].SignedArea() >= 0 {
			t.Errorf("ring orientations = %v, %v", out[0].SignedArea(), out[1].SignedArea())
		}
		if got := totalArea(out); math.Abs(got-96) > 1e-9 {
			t.Errorf("net area = %v, expected 96", got)
		}
	})

	t.Run("difference_inside_is_empty", func(t *testing.T) {
		if out := PolygonDifference(&inner, &outer); len(out) != 0 {
			t.Errorf("PolygonDifference() = %v, expected nothing", out)
		}
	})
}

func TestPolygonBoolean_Disjoint(t *testing.T) {
	a := NewAABBRect(0, 0, 1, 1)
	b := NewAABBRect(5, 5, 6, 6)
	if out := PolygonIntersection(&a, &b); len(out) != 0 {
		t.Errorf("PolygonIntersection() = %v, expected nothing", out)
	}
	if out := PolygonUnion(&a, &b); len(out) != 2 {
		t.Errorf("PolygonUnion() returned %d rings, expected 2", len(out))
	}
}

func TestPolygonBoolean_Degenerate(t *testing.T) {
	flat := NewPolygon(Point{X: 0, Y: 0}, Point{X: 5, Y: 0}, Point{X: 10, Y: 0})
	rect := NewAABBRect(0, 0, 2, 2)
	if out := PolygonIntersection(flat, &rect); len(out) != 0 {
		t.Errorf("zero-area input produced %v", out)
	}
	if out := PolygonUnion(flat, &rect); len(out) != 1 {
		t.Errorf("union with zero-area input returned %d rings", len(out))
	}
}

func TestPolygonBoolean_TriangleOverRect(t *testing.T) {
	rect := NewAABBRect(0, 0, 4, 4)
	tri := NewTriangle(Point{X: 1, Y: 1}, Point{X: 6, Y: 2}, Point{X: 1, Y: 3})

	inter := totalArea(PolygonIntersection(&rect, tri))
	union := totalArea(PolygonUnion(&rect, tri))
	diff := totalArea(PolygonDifference(&rect, tri))

	if math.Abs(inter-4.2) > 1e-9 {
		t.Errorf("|A∩B| = %v, expected 4.2", inter)
	}
	if math.Abs(inter+union-(rect.Area()+tri.Area())) > 1e-9 {
		t.Errorf("inclusion-exclusion broken: |A∩B|=%v |A∪B|=%v", inter, union)
	}
	if math.Abs(diff-(rect.Area()-inter)) > 1e-9 {
		t.Errorf("|A-B| = %v, expected %v", diff, rect.Area()-inter)
	}
}

func TestPolygonBoolean_ColinearEdges(t *testing.T) {
	sq := func(x0, y0, x1, y1 float64) Shape {
		r := NewAABBRect(x0, y0, x1, y1)
		return &r
	}

	tests := []struct {
		name  string
		a, b  Shape
		op    func(a, b Shape) []*Polygon
		rings int
		area  float64
	}{
		{name: "sliding_intersection", a: sq(0, 0, 2, 2), b: sq(1, 0, 3, 2), op: PolygonIntersection, rings: 1, area: 2},
		{name: "sliding_union", a: sq(0, 0, 2, 2), b: sq(1, 0, 3, 2), op: PolygonUnion, rings: 1, area: 6},
		{name: "sliding_difference", a: sq(0, 0, 2, 2), b: sq(1, 0, 3, 2), op: PolygonDifference, rings: 1, area: 2},
		{name: "shared_bottom_intersection", a: sq(0, 0, 4, 4), b: sq(1, 0, 3, 2), op: PolygonIntersection, rings: 1, area: 4},
		{name: "shared_bottom_union", a: sq(0, 0, 4, 4), b: sq(1, 0, 3, 2), op: PolygonUnion, rings: 1, area: 16},
		{name: "shared_bottom_difference", a: sq(0, 0, 4, 4), b: sq(1, 0, 3, 2), op: PolygonDifference, rings: 1, area: 12},
		{name: "neighbours_union", a: sq(0, 0, 1, 1), b: sq(1, 0, 2, 1), op: PolygonUnion, rings: 1, area: 2},
		{name: "neighbours_intersection", a: sq(0, 0, 1, 1), b: sq(1, 0, 2, 1), op: PolygonIntersection, rings: 0, area: 0},
		{name: "neighbours_difference", a: sq(0, 0, 1, 1), b: sq(1, 0, 2, 1), op: PolygonDifference, rings: 1, area: 1},
		{name: "identical_intersection", a: sq(0, 0, 2, 2), b: sq(0, 0, 2, 2), op: PolygonIntersection, rings: 1, area: 4},
		{name: "identical_union", a: sq(0, 0, 2, 2), b: sq(0, 0, 2, 2), op: PolygonUnion, rings: 1, area: 4},
		{name: "identical_difference", a: sq(0, 0, 2, 2), b: sq(0, 0, 2, 2), op: PolygonDifference, rings: 0, area: 0},
		{name: "corner_touch_union", a: sq(0, 0, 1, 1), b: sq(1, 1, 2, 2), op: PolygonUnion, rings: 2, area: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.op(tt.a, tt.b)
			if len(out) != tt.rings {
				t.Fatalf("got %d rings, expected %d: %v", len(out), tt.rings, out)
			}
			if got := totalArea(out); math.Abs(got-tt.area) > 1e-9 {
				t.Errorf("area = %v, expected %v", got, tt.area)
			}
		})
	}
}

func TestPolygonBoolean_ColinearRingShape(t *testing.T) {
	a := NewAABBRect(0, 0, 2, 2)
	b := NewAABBRect(1, 0, 3, 2)
	out := PolygonUnion(&a, &b)
	if len(out) != 1 {
		t.Fatalf("got %d rings, expected 1", len(out))
	}
	if n := out[0].VertexCount(); n != 4 {
		t.Errorf("union ring has %d vertices, expected the 4 corners of (0,0)-(3,2)", n)
	}
	if bounds := out[0].BoundingRect(); bounds.Left() != 0 || bounds.Right() != 3 || bounds.Bottom() != 2 {
		t.Errorf("union bounds = %v", bounds.Points())
	}
}
