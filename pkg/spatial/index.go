// Package spatial holds the broad-phase indexes: a uniform bucket grid and
// an adaptive quadtree. Both keep non-owning references to caller shapes,
// keyed by identity, and cache each shape's bounding rect until Update is
// called for it.
//
// Indexes are not safe for concurrent use. Every mutation is applied
// before the call returns, so a later query in the same frame sees it.
package spatial

import (
	"context"
	"math"

	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/geometry"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/narrow"
)

// Pair is two colliding shapes. A was registered before B at the time of
// the scan.
type Pair struct {
	A, B geometry.Shape
}

// Tester is the narrow-phase test run on broad-phase candidates.
type Tester func(a, b geometry.Shape) bool

// Index is implemented by GridMap and QuadTree.
//
// Query methods append to out and return the extended slice; a query
// matched something iff the result is longer than out.
type Index interface {
	Build(objs []geometry.Shape)
	Append(obj geometry.Shape)
	Remove(obj geometry.Shape) bool
	Update(obj geometry.Shape) bool
	Has(obj geometry.Shape) bool
	Len() int
	Clear()
	Objects() []geometry.Shape
	Bounds() geometry.AABBRect

	SelectPoint(p geometry.Point, out []geometry.Shape) []geometry.Shape
	SelectRect(r geometry.AABBRect, out []geometry.Shape) []geometry.Shape
	FindCollisionObjects(obj geometry.Shape, out []geometry.Shape, norepeat bool) []geometry.Shape
	FindCollisionPairs(out []Pair, norepeat bool) []Pair

	SetTester(t Tester)
	SetLogger(l *logging.Logger)
	SetEventBus(b *event.Bus)
}

var (
	_ Index = (*GridMap)(nil)
	_ Index = (*QuadTree)(nil)
)

// placeholder is the region an empty index reports.
var placeholder = geometry.NewAABBRect(0, 0, 100, 100)

func finiteRect(r geometry.AABBRect) bool {
	for _, v := range [4]float64{r.Left(), r.Top(), r.Right(), r.Bottom()} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type entry struct {
	obj  geometry.Shape
	rect geometry.AABBRect
}

// store is the flat snapshot both indexes rebuild from.
type store struct {
	entries []entry
	index   map[geometry.Shape]int
}

func newStore() store {
	return store{index: make(map[geometry.Shape]int)}
}

func (s *store) len() int { return len(s.entries) }

func (s *store) has(obj geometry.Shape) bool {
	_, ok := s.index[obj]
	return ok
}

// add registers obj. Shapes with non-finite bounds are refused.
func (s *store) add(obj geometry.Shape) (geometry.AABBRect, bool) {
	if obj == nil || s.has(obj) {
		return geometry.AABBRect{}, false
	}
	r := obj.BoundingRect()
	if !finiteRect(r) {
		return geometry.AABBRect{}, false
	}
	s.index[obj] = len(s.entries)
	s.entries = append(s.entries, entry{obj: obj, rect: r})
	return r, true
}

func (s *store) remove(obj geometry.Shape) (geometry.AABBRect, bool) {
	i, ok := s.index[obj]
	if !ok {
		return geometry.AABBRect{}, false
	}
	r := s.entries[i].rect
	last := len(s.entries) - 1
	if i != last {
		s.entries[i] = s.entries[last]
		s.index[s.entries[i].obj] = i
	}
	s.entries[last] = entry{}
	s.entries = s.entries[:last]
	delete(s.index, obj)
	return r, true
}

// refresh re-reads the bounding rect of obj and returns the cached one
// it replaced. Non-finite bounds are returned but not cached.
func (s *store) refresh(obj geometry.Shape) (old, cur geometry.AABBRect, ok bool) {
	i, ok := s.index[obj]
	if !ok {
		return old, cur, false
	}
	old = s.entries[i].rect
	cur = obj.BoundingRect()
	if finiteRect(cur) {
		s.entries[i].rect = cur
	}
	return old, cur, true
}

func (s *store) rect(obj geometry.Shape) (geometry.AABBRect, bool) {
	i, ok := s.index[obj]
	if !ok {
		return geometry.AABBRect{}, false
	}
	return s.entries[i].rect, true
}

// order ranks registered shapes so pairs come out in a stable orientation.
func (s *store) order(obj geometry.Shape) int { return s.index[obj] }

func (s *store) envelope() geometry.AABBRect {
	if len(s.entries) == 0 {
		return placeholder
	}
	env := s.entries[0].rect
	for _, e := range s.entries[1:] {
		env = env.Union(e.rect)
	}
	return env
}

func (s *store) objects() []geometry.Shape {
	out := make([]geometry.Shape, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.obj
	}
	return out
}

func (s *store) reset() {
	s.entries = nil
	s.index = make(map[geometry.Shape]int)
}

// hooks carries the collaborators shared by both indexes.
type hooks struct {
	tester Tester
	logger *logging.Logger
	bus    *event.Bus
}

func newHooks() hooks {
	return hooks{tester: narrow.Collide, logger: logging.Nop()}
}

// SetTester replaces the narrow-phase test. nil restores narrow.Collide.
func (h *hooks) SetTester(t Tester) {
	if t == nil {
		t = narrow.Collide
	}
	h.tester = t
}

// SetLogger attaches a logger. nil silences the index.
func (h *hooks) SetLogger(l *logging.Logger) {
	if l == nil {
		l = logging.Nop()
	}
	h.logger = l
}

// SetEventBus attaches a bus that receives structural index events.
func (h *hooks) SetEventBus(b *event.Bus) { h.bus = b }

func (h *hooks) debug(msg string, args ...any) {
	ctx := context.Background()
	if h.logger.DebugEnabled(ctx) {
		h.logger.Debug(ctx, msg, args...)
	}
}

func (h *hooks) publishIndex(t event.Type, source interface{}, index string, objects, cells int, bounds geometry.AABBRect) {
	if h.bus.HasSubscribers(t) {
		h.bus.Publish(event.NewIndexEvent(t, source, index, objects, cells, bounds))
	}
}

// pairScan runs the narrow test once per unordered pair and remembers the
// answer, so shapes sharing several cells are not tested repeatedly.
type pairScan struct {
	store    *store
	tester   Tester
	norepeat bool
	tested   map[[2]geometry.Shape]bool
}

func newPairScan(s *store, t Tester, norepeat bool) *pairScan {
	return &pairScan{store: s, tester: t, norepeat: norepeat, tested: make(map[[2]geometry.Shape]bool)}
}

// visit tests a and b and appends the pair when they collide. With
// norepeat a pair already visited is skipped.
func (ps *pairScan) visit(a, b geometry.Shape, out []Pair) []Pair {
	if ps.store.order(b) < ps.store.order(a) {
		a, b = b, a
	}
	key := [2]geometry.Shape{a, b}
	hit, seen := ps.tested[key]
	if seen && ps.norepeat {
		return out
	}
	if !seen {
		hit = ps.tester(a, b)
		ps.tested[key] = hit
	}
	if hit {
		out = append(out, Pair{A: a, B: b})
	}
	return out
}

// scanCell appends the colliding pairs among objs.
func (ps *pairScan) scanCell(objs []geometry.Shape, out []Pair) []Pair {
	for i := 0; i < len(objs); i++ {
		for j := i + 1; j < len(objs); j++ {
			out = ps.visit(objs[i], objs[j], out)
		}
	}
	return out
}

// objectScan is pairScan for a single probe shape.
type objectScan struct {
	probe    geometry.Shape
	tester   Tester
	norepeat bool
	tested   map[geometry.Shape]bool
}

func newObjectScan(probe geometry.Shape, t Tester, norepeat bool) *objectScan {
	return &objectScan{probe: probe, tester: t, norepeat: norepeat, tested: make(map[geometry.Shape]bool)}
}

func (sc *objectScan) scanCell(objs []geometry.Shape, out []geometry.Shape) []geometry.Shape {
	for _, other := range objs {
		if other == sc.probe {
			continue
		}
		hit, seen := sc.tested[other]
		if seen && sc.norepeat {
			continue
		}
		if !seen {
			hit = sc.tester(sc.probe, other)
			sc.tested[other] = hit
		}
		if hit {
			out = append(out, other)
		}
	}
	return out
}

// selector de-duplicates select results across cells.
type selector struct {
	seen map[geometry.Shape]struct{}
}

func newSelector() *selector {
	return &selector{seen: make(map[geometry.Shape]struct{})}
}

func (s *selector) selectPoint(p geometry.Point, objs []geometry.Shape, out []geometry.Shape) []geometry.Shape {
	for _, obj := range objs {
		if _, dup := s.seen[obj]; dup {
			continue
		}
		if geometry.IsInside(p, obj, true) {
			s.seen[obj] = struct{}{}
			out = append(out, obj)
		}
	}
	return out
}

func (s *selector) selectRect(r *geometry.AABBRect, objs []geometry.Shape, out []geometry.Shape) []geometry.Shape {
	for _, obj := range objs {
		if _, dup := s.seen[obj]; dup {
			continue
		}
		if geometry.IsIntersected(r, obj, true) {
			s.seen[obj] = struct{}{}
			out = append(out, obj)
		}
	}
	return out
}

func removeShape(objs []geometry.Shape, obj geometry.Shape) []geometry.Shape {
	for i, o := range objs {
		if o == obj {
			copy(objs[i:], objs[i+1:])
			objs[len(objs)-1] = nil
			return objs[:len(objs)-1]
		}
	}
	return objs
}
