package spatial

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/geometry"
)

func box(x0, y0, x1, y1 float64) *geometry.AABBRect {
	r := geometry.NewAABBRect(x0, y0, x1, y1)
	return &r
}

func sameShapes(got, want []geometry.Shape) bool {
	if len(got) != len(want) {
		return false
	}
	set := make(map[geometry.Shape]int)
	for _, s := range got {
		set[s]++
	}
	for _, s := range want {
		if set[s] != 1 {
			return false
		}
	}
	return true
}

func TestGridMap_Empty(t *testing.T) {
	g := NewGridMap(DefaultGridParams())

	if g.Len() != 0 || g.CellCount() != 1 {
		t.Fatalf("empty grid has %d objects and %d cells", g.Len(), g.CellCount())
	}
	if b := g.Bounds(); b.Left() != 0 || b.Top() != 0 || b.Right() != 100 || b.Bottom() != 100 {
		t.Errorf("Bounds() = %v, expected the 100x100 placeholder", b.Points())
	}
	if got := g.SelectPoint(geometry.Point{X: 50, Y: 50}, nil); len(got) != 0 {
		t.Errorf("SelectPoint() on empty grid = %v", got)
	}
	stranger := box(0, 0, 1, 1)
	if g.Remove(stranger) || g.Update(stranger) || g.Has(stranger) {
		t.Error("unknown shapes must be silent no-ops")
	}
}

func TestGridMap_Scenario(t *testing.T) {
	r1, r2, r3 := box(0, 0, 10, 10), box(5, 5, 15, 15), box(100, 100, 110, 110)
	g := NewGridMap(DefaultGridParams())
	g.Build([]geometry.Shape{r1, r2, r3})

	if cols, rows := g.Dims(); cols != 1 || rows != 1 {
		t.Errorf("Dims() = %dx%d, expected a single cell for 3 objects", cols, rows)
	}

	pairs := g.FindCollisionPairs(nil, true)
	if len(pairs) != 1 || pairs[0].A != r1 || pairs[0].B != r2 {
		t.Fatalf("FindCollisionPairs() = %v, expected only (R1, R2)", pairs)
	}

	got := g.SelectPoint(geometry.Point{X: 7, Y: 7}, nil)
	if !sameShapes(got, []geometry.Shape{r1, r2}) {
		t.Errorf("SelectPoint(7, 7) = %v, expected R1 and R2", got)
	}

	objs := g.FindCollisionObjects(r1, nil, true)
	if !sameShapes(objs, []geometry.Shape{r2}) {
		t.Errorf("FindCollisionObjects(R1) = %v, expected R2", objs)
	}
	if objs := g.FindCollisionObjects(r3, nil, true); len(objs) != 0 {
		t.Errorf("FindCollisionObjects(R3) = %v, expected none", objs)
	}

	// existing contents are kept when a query finds nothing
	out := []geometry.Shape{r3}
	if got := g.SelectPoint(geometry.Point{X: 50, Y: 50}, out); len(got) != 1 {
		t.Errorf("SelectPoint() appended to a miss: %v", got)
	}
}

func TestGridMap_SplitDecision(t *testing.T) {
	tests := []struct {
		name     string
		objs     func() []geometry.Shape
		expected int
	}{
		{
			name: "few_narrow_objects",
			objs: func() []geometry.Shape {
				return []geometry.Shape{box(0, 0, 10, 10), box(700, 0, 710, 10)}
			},
			expected: 1,
		},
		{
			name: "wide_envelope",
			objs: func() []geometry.Shape {
				return []geometry.Shape{box(0, 0, 10, 10), box(900, 0, 910, 10)}
			},
			expected: 32,
		},
		{
			name: "many_objects",
			objs: func() []geometry.Shape {
				var out []geometry.Shape
				for i := 0; i < 41; i++ {
					x := float64(i * 5)
					out = append(out, box(x, 0, x+2, 2))
				}
				return out
			},
			expected: 32,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGridMap(DefaultGridParams())
			g.Build(tt.objs())
			if g.CellCount() != tt.expected {
				t.Errorf("CellCount() = %d, expected %d", g.CellCount(), tt.expected)
			}
		})
	}
}

func TestGridMap_PatchOrRebuild(t *testing.T) {
	g := NewGridMap(DefaultGridParams())
	a, b := box(0, 0, 10, 10), box(90, 90, 100, 100)
	g.Build([]geometry.Shape{a, b})

	rebuilds := testutil.ToFloat64(gridRebuilds)
	patches := testutil.ToFloat64(gridPatches)

	inner := box(40, 40, 50, 50)
	g.Append(inner)
	if testutil.ToFloat64(gridRebuilds) != rebuilds || testutil.ToFloat64(gridPatches) != patches+1 {
		t.Error("an append inside the envelope should patch in place")
	}
	if got := g.SelectPoint(geometry.Point{X: 45, Y: 45}, nil); !sameShapes(got, []geometry.Shape{inner}) {
		t.Errorf("patched shape not found: %v", got)
	}

	inner.Translate(20, 0)
	g.Update(inner)
	if testutil.ToFloat64(gridRebuilds) != rebuilds {
		t.Error("an update inside the envelope should not rebuild")
	}
	if got := g.SelectPoint(geometry.Point{X: 45, Y: 45}, nil); len(got) != 0 {
		t.Errorf("stale cell entry after update: %v", got)
	}
	if got := g.SelectPoint(geometry.Point{X: 65, Y: 45}, nil); !sameShapes(got, []geometry.Shape{inner}) {
		t.Errorf("moved shape not found: %v", got)
	}

	outer := box(200, 200, 210, 210)
	g.Append(outer)
	if testutil.ToFloat64(gridRebuilds) != rebuilds+1 {
		t.Error("an append outside the envelope should rebuild")
	}
	if b := g.Bounds(); b.Right() != 210 || b.Bottom() != 210 {
		t.Errorf("envelope not grown: %v", b.Points())
	}

	a.Translate(-50, 0)
	g.Update(a)
	if testutil.ToFloat64(gridRebuilds) != rebuilds+2 {
		t.Error("an update leaving the envelope should rebuild")
	}
	if got := g.SelectPoint(geometry.Point{X: -45, Y: 5}, nil); !sameShapes(got, []geometry.Shape{a}) {
		t.Errorf("rebuilt grid lost the moved shape: %v", got)
	}
}

func TestGridMap_Norepeat(t *testing.T) {
	// the envelope is wider than SplitWidth, so both bars span many cells
	a, b := box(0, 0, 1000, 10), box(0, 5, 1000, 15)
	g := NewGridMap(DefaultGridParams())
	g.Build([]geometry.Shape{a, b})

	if got := g.FindCollisionPairs(nil, false); len(got) != 16 {
		t.Errorf("FindCollisionPairs(norepeat=false) returned %d pairs, expected one per shared cell (16)", len(got))
	}
	if got := g.FindCollisionPairs(nil, true); len(got) != 1 {
		t.Errorf("FindCollisionPairs(norepeat=true) returned %d pairs, expected 1", len(got))
	}
	if got := g.FindCollisionObjects(a, nil, false); len(got) != 16 {
		t.Errorf("FindCollisionObjects(norepeat=false) returned %d objects, expected 16", len(got))
	}
	if got := g.FindCollisionObjects(a, nil, true); !sameShapes(got, []geometry.Shape{b}) {
		t.Errorf("FindCollisionObjects(norepeat=true) = %v", got)
	}
}

func TestGridMap_SelectRect(t *testing.T) {
	inside := box(12, 12, 14, 14)
	crossing := geometry.NewCircle(20, 5, 3)
	far := box(80, 80, 90, 90)
	line := geometry.NewLine(geometry.Point{X: 0, Y: 30}, geometry.Point{X: 30, Y: 30})

	g := NewGridMap(DefaultGridParams())
	g.Build([]geometry.Shape{inside, crossing, far, line})

	got := g.SelectRect(geometry.NewAABBRect(10, 0, 18, 20), nil)
	if !sameShapes(got, []geometry.Shape{inside, crossing}) {
		t.Errorf("SelectRect() = %v, expected the contained box and the circle", got)
	}
	got = g.SelectRect(geometry.NewAABBRect(0, 30, 5, 40), nil)
	if !sameShapes(got, []geometry.Shape{line}) {
		t.Errorf("SelectRect() on a border = %v, expected the line", got)
	}
	if got := g.SelectRect(geometry.NewAABBRect(500, 500, 600, 600), nil); len(got) != 0 {
		t.Errorf("SelectRect() outside the envelope = %v", got)
	}
}

func TestGridMap_RemoveAndClear(t *testing.T) {
	bus := event.NewEventBus()
	rebuilt := 0
	bus.Subscribe(event.IndexRebuilt, func(e event.Event) {
		if ie, ok := e.(*event.IndexEvent); ok && ie.Index == "grid" {
			rebuilt++
		}
	})

	a, b := box(0, 0, 10, 10), box(5, 5, 15, 15)
	g := NewGridMap(DefaultGridParams())
	g.SetEventBus(bus)
	g.Build([]geometry.Shape{a, b})
	if rebuilt != 1 {
		t.Errorf("rebuild events = %d, expected 1", rebuilt)
	}

	if !g.Remove(a) || g.Remove(a) {
		t.Error("Remove() should succeed once")
	}
	if got := g.FindCollisionPairs(nil, true); len(got) != 0 {
		t.Errorf("removed shape still paired: %v", got)
	}
	if got := g.SelectPoint(geometry.Point{X: 2, Y: 2}, nil); len(got) != 0 {
		t.Errorf("removed shape still selected: %v", got)
	}

	g.Remove(b)
	if g.Len() != 0 || g.CellCount() != 1 || g.Bounds().Right() != 100 {
		t.Error("removing the last shape should return to the placeholder cell")
	}

	g.Build([]geometry.Shape{a, b, a, nil})
	if g.Len() != 2 {
		t.Errorf("Build() kept %d shapes, expected duplicates and nil dropped", g.Len())
	}
	g.Clear()
	if g.Len() != 0 || g.Has(a) {
		t.Error("Clear() left shapes behind")
	}
}

func TestGridMap_PatchKeepsLayoutPastSplitCount(t *testing.T) {
	g := NewGridMap(DefaultGridParams())
	g.Build([]geometry.Shape{box(0, 0, 10, 10), box(190, 190, 200, 200)})
	if g.CellCount() != 1 {
		t.Fatalf("CellCount() = %d, expected a single cell", g.CellCount())
	}
	rebuilds := testutil.ToFloat64(gridRebuilds)

	var added []geometry.Shape
	for i := 0; i < 45; i++ {
		x := float64(20 + i*3)
		s := box(x, 50, x+2, 52)
		added = append(added, s)
		g.Append(s)
	}
	if g.Len() <= DefaultGridParams().SplitCount {
		t.Fatalf("Len() = %d, expected more than the split count", g.Len())
	}
	if testutil.ToFloat64(gridRebuilds) != rebuilds || g.CellCount() != 1 {
		t.Errorf("appends inside the envelope rebuilt the grid: cells=%d", g.CellCount())
	}
	if got := g.SelectRect(geometry.NewAABBRect(15, 45, 160, 55), nil); !sameShapes(got, added) {
		t.Errorf("SelectRect() found %d of %d patched shapes", len(got), len(added))
	}

	g.Append(box(300, 300, 310, 310))
	if g.CellCount() != 32 {
		t.Errorf("rebuild past the envelope: CellCount() = %d, expected 32", g.CellCount())
	}
}
