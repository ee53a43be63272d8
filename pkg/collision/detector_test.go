package collision

import (
	"errors"
	"math"
	"testing"

	"github.com/opd-ai/go-collide/pkg/config"
	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/geometry"
	"github.com/opd-ai/go-collide/pkg/narrow"
	"github.com/opd-ai/go-collide/pkg/spatial"
)

func box(x0, y0, x1, y1 float64) *geometry.AABBRect {
	r := geometry.NewAABBRect(x0, y0, x1, y1)
	return &r
}

// pusher is the part of Detector the translate tests drive.
type pusher interface {
	Build(objs []geometry.Shape)
	SetEventBus(b *event.Bus)
	FindCollisionPairs(out []spatial.Pair, norepeat bool) []spatial.Pair
	CollisionTranslate(obj geometry.Shape, tx, ty float64) []geometry.Shape
}

func detectors() map[string]func() pusher {
	return map[string]func() pusher{
		"grid":     func() pusher { return NewGridDetector(spatial.DefaultGridParams()) },
		"quadtree": func() pusher { return NewQuadTreeDetector(spatial.DefaultQuadParams()) },
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestDetector_Forwarding(t *testing.T) {
	r1, r2, r3 := box(0, 0, 10, 10), box(5, 5, 15, 15), box(100, 100, 110, 110)

	d := NewQuadTreeDetector(spatial.DefaultQuadParams())
	d.Build([]geometry.Shape{r1, r2, r3})

	if d.Len() != 3 || !d.Has(r3) || d.Index().Len() != 3 {
		t.Fatalf("detector holds %d shapes", d.Len())
	}
	if got := d.SelectPoint(geometry.Point{X: 7, Y: 7}, nil); len(got) != 2 {
		t.Errorf("SelectPoint() returned %d shapes, expected 2", len(got))
	}
	if got := d.SelectRect(geometry.NewAABBRect(99, 99, 101, 101), nil); len(got) != 1 || got[0] != r3 {
		t.Errorf("SelectRect() = %v, expected R3", got)
	}
	if got := d.FindCollisionObjects(r2, nil, true); len(got) != 1 || got[0] != r1 {
		t.Errorf("FindCollisionObjects(R2) = %v, expected R1", got)
	}

	r3.Translate(-95, -95)
	if !d.Update(r3) {
		t.Fatal("Update() = false")
	}
	if got := d.FindCollisionPairs(nil, true); len(got) != 3 {
		t.Errorf("after moving R3 onto the others: %d pairs, expected 3", len(got))
	}
	if !d.Remove(r1) || d.Remove(r1) {
		t.Error("Remove() should succeed once")
	}
	d.Append(r1)
	if d.Len() != 3 {
		t.Errorf("Len() = %d after re-append", d.Len())
	}
	d.Clear()
	if d.Len() != 0 || len(d.Objects()) != 0 {
		t.Error("Clear() left shapes behind")
	}
}

func TestDetector_PairEvents(t *testing.T) {
	for name, newDetector := range detectors() {
		t.Run(name, func(t *testing.T) {
			r1, r2, r3 := box(0, 0, 10, 10), box(5, 5, 15, 15), box(100, 100, 110, 110)
			bus := event.NewEventBus()
			var seen []*event.PairEvent
			bus.Subscribe(event.CollisionDetected, func(e event.Event) {
				seen = append(seen, e.(*event.PairEvent))
			})

			d := newDetector()
			d.SetEventBus(bus)
			d.Build([]geometry.Shape{r1, r2, r3})

			prior := []spatial.Pair{{A: r3, B: r3}}
			got := d.FindCollisionPairs(prior, true)
			if len(got) != 2 {
				t.Fatalf("FindCollisionPairs() returned %d pairs, expected the prior one plus (R1, R2)", len(got))
			}
			if len(seen) != 1 || seen[0].A != r1 || seen[0].B != r2 {
				t.Errorf("CollisionDetected events = %v, expected only (R1, R2)", seen)
			}
		})
	}
}

func TestDetector_CollisionTranslateChain(t *testing.T) {
	for name, newDetector := range detectors() {
		t.Run(name, func(t *testing.T) {
			a := box(0, 0, 10, 10)
			b := box(10.5, 0, 20.5, 10)
			c := box(21, 0, 31, 10)
			behind := box(-8, 0, 2, 10)
			above := box(0, -30, 10, -20)

			bus := event.NewEventBus()
			var pushes []*event.PushEvent
			bus.Subscribe(event.ObjectPushed, func(e event.Event) {
				pushes = append(pushes, e.(*event.PushEvent))
			})

			d := newDetector()
			d.SetEventBus(bus)
			d.Build([]geometry.Shape{a, b, c, behind, above})

			pushed := d.CollisionTranslate(a, 5, 0)
			if len(pushed) != 2 || pushed[0] != b || pushed[1] != c {
				t.Fatalf("CollisionTranslate() pushed %v, expected B then C", pushed)
			}
			if !near(a.Left(), 5) {
				t.Errorf("mover at x=%v, expected 5", a.Left())
			}
			if !near(b.Left(), 15) || !near(c.Left(), 25) {
				t.Errorf("B at x=%v and C at x=%v, expected 15 and 25", b.Left(), c.Left())
			}
			if !near(behind.Left(), -8) || !near(above.Top(), -30) {
				t.Error("shapes not ahead of the move were pushed")
			}
			if len(pushes) != 2 || pushes[0].Pusher != a || pushes[1].Pusher != b {
				t.Errorf("ObjectPushed events = %v", pushes)
			}
			if !near(pushes[0].Offset.X, 4.5) || !near(pushes[0].Offset.Y, 0) {
				t.Errorf("first push offset = %v, expected (4.5, 0)", pushes[0].Offset)
			}

			for _, p := range d.FindCollisionPairs(nil, true) {
				if depth, _ := narrow.EPA(p.A, p.B); depth > 1e-6 {
					t.Errorf("pair %v still overlaps by %v", p, depth)
				}
			}
		})
	}
}

func TestDetector_CollisionTranslateEdges(t *testing.T) {
	tests := []struct {
		name     string
		run      func(d *Detector[*spatial.GridMap]) []geometry.Shape
		minCount int
		maxCount int
	}{
		{
			name: "zero_move",
			run: func(d *Detector[*spatial.GridMap]) []geometry.Shape {
				a, b := box(0, 0, 10, 10), box(5, 0, 15, 10)
				d.Build([]geometry.Shape{a, b})
				return d.CollisionTranslate(a, 0, 0)
			},
		},
		{
			name: "unregistered",
			run: func(d *Detector[*spatial.GridMap]) []geometry.Shape {
				a, b := box(0, 0, 10, 10), box(5, 0, 15, 10)
				d.Build([]geometry.Shape{b})
				return d.CollisionTranslate(a, 3, 0)
			},
		},
		{
			name: "nil",
			run: func(d *Detector[*spatial.GridMap]) []geometry.Shape {
				return d.CollisionTranslate(nil, 3, 0)
			},
		},
		{
			name: "coincident_stack",
			run: func(d *Detector[*spatial.GridMap]) []geometry.Shape {
				var objs []geometry.Shape
				for i := 0; i < 6; i++ {
					objs = append(objs, box(0, 0, 10, 10))
				}
				d.Build(objs)
				return d.CollisionTranslate(objs[0], 1, 0)
			},
			maxCount: 5,
		},
		{
			name: "circle_pushes_circle",
			run: func(d *Detector[*spatial.GridMap]) []geometry.Shape {
				a, b := geometry.NewCircle(0, 0, 5), geometry.NewCircle(11, 0, 5)
				d.Build([]geometry.Shape{a, b})
				return d.CollisionTranslate(a, 3, 0)
			},
			minCount: 1,
			maxCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewGridDetector(spatial.DefaultGridParams())
			if got := tt.run(d); len(got) < tt.minCount || len(got) > tt.maxCount {
				t.Errorf("CollisionTranslate() pushed %d shapes, expected %d to %d", len(got), tt.minCount, tt.maxCount)
			}
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		index   string
		wantErr bool
	}{
		{name: "grid", index: config.IndexGrid},
		{name: "quadtree", index: config.IndexQuadTree},
		{name: "unknown", index: "rtree", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Index = tt.index
			cfg.Solver.MaxIterations = 12
			d, err := NewFromConfig(cfg)
			if tt.wantErr {
				if !errors.Is(err, config.ErrInvalidConfig) {
					t.Errorf("NewFromConfig() error = %v, expected ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFromConfig() error = %v", err)
			}
			if d.Solver().MaxIterations != 12 {
				t.Errorf("solver not applied: %+v", d.Solver())
			}
			switch d.Index().(type) {
			case *spatial.GridMap:
				if tt.index != config.IndexGrid {
					t.Errorf("got a grid for %q", tt.index)
				}
			case *spatial.QuadTree:
				if tt.index != config.IndexQuadTree {
					t.Errorf("got a quadtree for %q", tt.index)
				}
			}
		})
	}
}
