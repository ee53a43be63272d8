// Package collision wraps a spatial index with the narrow phase and adds
// cascading push resolution for moving shapes.
package collision

import (
	"context"
	"fmt"

	"github.com/opd-ai/go-collide/pkg/config"
	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/geometry"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/metrics"
	"github.com/opd-ai/go-collide/pkg/narrow"
	"github.com/opd-ai/go-collide/pkg/spatial"
)

// Detector forwards to a spatial index and owns the narrow-phase solver
// used by both the index and CollisionTranslate.
type Detector[I spatial.Index] struct {
	index  I
	solver narrow.Solver
	logger *logging.Logger
	bus    *event.Bus
}

// NewDetector wraps idx. The index keeps its own tester until SetSolver is
// called.
func NewDetector[I spatial.Index](idx I) *Detector[I] {
	return &Detector[I]{index: idx, solver: narrow.DefaultSolver, logger: logging.Nop()}
}

// NewGridDetector creates a detector over an empty GridMap.
func NewGridDetector(params spatial.GridParams) *Detector[*spatial.GridMap] {
	return NewDetector(spatial.NewGridMap(params))
}

// NewQuadTreeDetector creates a detector over an empty QuadTree.
func NewQuadTreeDetector(params spatial.QuadParams) *Detector[*spatial.QuadTree] {
	return NewDetector(spatial.NewQuadTree(params))
}

// NewFromConfig builds the index named by cfg.Index and applies the
// configured solver limits.
func NewFromConfig(cfg *config.Config) (*Detector[spatial.Index], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var idx spatial.Index
	switch cfg.Index {
	case config.IndexGrid:
		idx = spatial.NewGridMap(cfg.GridParams())
	case config.IndexQuadTree:
		idx = spatial.NewQuadTree(cfg.QuadParams())
	default:
		return nil, fmt.Errorf("unknown index %q", cfg.Index)
	}
	d := NewDetector(idx)
	d.SetSolver(cfg.NarrowSolver())
	return d, nil
}

// Index returns the wrapped index.
func (d *Detector[I]) Index() I { return d.index }

// Solver returns the narrow-phase limits in use.
func (d *Detector[I]) Solver() narrow.Solver { return d.solver }

// SetSolver replaces the narrow-phase limits and installs s.Collide as the
// index tester.
func (d *Detector[I]) SetSolver(s narrow.Solver) {
	d.solver = s
	d.index.SetTester(s.Collide)
}

// SetLogger attaches l to the detector and its index.
func (d *Detector[I]) SetLogger(l *logging.Logger) {
	if l == nil {
		l = logging.Nop()
	}
	d.logger = l
	d.index.SetLogger(l)
}

// SetEventBus attaches b to the detector and its index.
func (d *Detector[I]) SetEventBus(b *event.Bus) {
	d.bus = b
	d.index.SetEventBus(b)
}

func (d *Detector[I]) Build(objs []geometry.Shape)    { d.index.Build(objs) }
func (d *Detector[I]) Append(obj geometry.Shape)      { d.index.Append(obj) }
func (d *Detector[I]) Remove(obj geometry.Shape) bool { return d.index.Remove(obj) }
func (d *Detector[I]) Update(obj geometry.Shape) bool { return d.index.Update(obj) }
func (d *Detector[I]) Has(obj geometry.Shape) bool    { return d.index.Has(obj) }
func (d *Detector[I]) Len() int                       { return d.index.Len() }
func (d *Detector[I]) Clear()                         { d.index.Clear() }
func (d *Detector[I]) Objects() []geometry.Shape      { return d.index.Objects() }
func (d *Detector[I]) Bounds() geometry.AABBRect      { return d.index.Bounds() }

func (d *Detector[I]) SelectPoint(p geometry.Point, out []geometry.Shape) []geometry.Shape {
	return d.index.SelectPoint(p, out)
}

func (d *Detector[I]) SelectRect(r geometry.AABBRect, out []geometry.Shape) []geometry.Shape {
	return d.index.SelectRect(r, out)
}

func (d *Detector[I]) FindCollisionObjects(obj geometry.Shape, out []geometry.Shape, norepeat bool) []geometry.Shape {
	return d.index.FindCollisionObjects(obj, out, norepeat)
}

// FindCollisionPairs forwards to the index and publishes a
// CollisionDetected event for every pair it appended.
func (d *Detector[I]) FindCollisionPairs(out []spatial.Pair, norepeat bool) []spatial.Pair {
	n := len(out)
	out = d.index.FindCollisionPairs(out, norepeat)
	if d.bus.HasSubscribers(event.CollisionDetected) {
		for _, p := range out[n:] {
			d.bus.Publish(event.NewPairEvent(d, p.A, p.B))
		}
	}
	return out
}

// CollisionTranslate moves obj by (tx, ty) and resolves the contacts it
// causes. Every shape whose penetration vector with its pusher has a
// positive component along the move is pushed out by that vector and
// becomes a pusher in turn, breadth first. Each ordered pusher/pushed pair
// is resolved at most once and the cascade stops after len(objects)²
// steps. It returns the pushed shapes in the order they first moved; obj
// is not included. A shape the index does not hold is moved but pushes
// nothing.
func (d *Detector[I]) CollisionTranslate(obj geometry.Shape, tx, ty float64) []geometry.Shape {
	if obj == nil {
		return nil
	}
	obj.Translate(tx, ty)
	if !d.index.Update(obj) {
		return nil
	}
	dir := geometry.Vector{X: tx, Y: ty}
	if dir.X == 0 && dir.Y == 0 {
		return nil
	}

	limit := d.index.Len() * d.index.Len()
	steps := 0
	processed := make(map[[2]geometry.Shape]struct{})
	moved := make(map[geometry.Shape]struct{})
	var pushed, candidates []geometry.Shape

	queue := []geometry.Shape{obj}
	for len(queue) > 0 && steps < limit {
		pusher := queue[0]
		queue = queue[1:]

		candidates = d.index.FindCollisionObjects(pusher, candidates[:0], true)
		for _, other := range candidates {
			if other == obj {
				continue
			}
			key := [2]geometry.Shape{pusher, other}
			if _, done := processed[key]; done {
				continue
			}
			processed[key] = struct{}{}
			steps++

			depth, vec := d.solver.EPA(pusher, other)
			if depth <= 0 || geometry.Dot(vec, dir) <= 0 {
				continue
			}
			other.Translate(vec.X, vec.Y)
			d.index.Update(other)
			if _, again := moved[other]; !again {
				moved[other] = struct{}{}
				pushed = append(pushed, other)
			}
			queue = append(queue, other)
			if d.bus.HasSubscribers(event.ObjectPushed) {
				d.bus.Publish(event.NewPushEvent(d, other, pusher, vec))
			}
			if steps >= limit {
				break
			}
		}
	}

	metrics.PushCascadeSize.Observe(float64(len(pushed)))
	ctx := context.Background()
	if d.logger.DebugEnabled(ctx) {
		d.logger.Debug(ctx, "collision translate resolved",
			"tx", tx, "ty", ty, "pushed", len(pushed), "steps", steps)
	}
	return pushed
}
