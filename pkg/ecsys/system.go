// Package ecsys plugs the collision detector into an EngoEngine/ecs world.
package ecsys

import (
	"context"
	"slices"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-collide/pkg/collision"
	"github.com/opd-ai/go-collide/pkg/config"
	"github.com/opd-ai/go-collide/pkg/geometry"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/spatial"
)

// DefaultPriority runs the collision system after ordinary systems, which
// keep the default priority of 0, have moved their entities.
const DefaultPriority = -10

// CollisionComponent attaches a shape to an entity. The shape is owned by
// the entity; the system only references it.
type CollisionComponent struct {
	Shape geometry.Shape
}

// GetCollisionComponent returns the component itself.
func (c *CollisionComponent) GetCollisionComponent() *CollisionComponent { return c }

// CollisionFace is implemented by anything embedding CollisionComponent.
type CollisionFace interface {
	GetCollisionComponent() *CollisionComponent
}

// Collidable is an entity the system can pick up through AddByInterface.
type Collidable interface {
	ecs.BasicFace
	CollisionFace
}

// Contact is a colliding pair of entities found during the last Update.
type Contact struct {
	A, B *ecs.BasicEntity
}

// Handler is called once per contact.
type Handler func(c Contact)

type collisionEntity struct {
	*ecs.BasicEntity
	*CollisionComponent
}

type move struct {
	id     uint64
	tx, ty float64
}

// CollisionSystem keeps a detector in step with its entities. Moves queued
// with Move are applied at the start of Update through CollisionTranslate;
// the resulting contacts are then reported to every handler.
type CollisionSystem struct {
	detector *collision.Detector[spatial.Index]
	norepeat bool
	priority int
	logger   *logging.Logger

	entities map[uint64]collisionEntity
	owners   map[geometry.Shape]uint64
	moves    []move
	handlers []Handler
	contacts []Contact
	pairs    []spatial.Pair
}

// NewCollisionSystem wraps d. Pairs are reported once each when norepeat
// is set.
func NewCollisionSystem(d *collision.Detector[spatial.Index], norepeat bool) *CollisionSystem {
	return &CollisionSystem{
		detector: d,
		norepeat: norepeat,
		priority: DefaultPriority,
		logger:   logging.Nop(),
		entities: make(map[uint64]collisionEntity),
		owners:   make(map[geometry.Shape]uint64),
	}
}

// NewCollisionSystemFromConfig builds the detector described by cfg.
func NewCollisionSystemFromConfig(cfg *config.Config) (*CollisionSystem, error) {
	d, err := collision.NewFromConfig(cfg)
	if err != nil {
		return nil, logging.WrapError(err, "failed to create collision detector")
	}
	return NewCollisionSystem(d, cfg.NoRepeat), nil
}

// Detector returns the wrapped detector.
func (cs *CollisionSystem) Detector() *collision.Detector[spatial.Index] { return cs.detector }

// SetLogger attaches l to the system and its detector.
func (cs *CollisionSystem) SetLogger(l *logging.Logger) {
	if l == nil {
		l = logging.Nop()
	}
	cs.logger = l
	cs.detector.SetLogger(l)
}

// Priority satisfies ecs.Prioritizer.
func (cs *CollisionSystem) Priority() int { return cs.priority }

// SetPriority changes the order of the system within its world. It must
// be called before the system is added.
func (cs *CollisionSystem) SetPriority(p int) { cs.priority = p }

// Add registers an entity and its shape. Entities without a shape are
// ignored.
func (cs *CollisionSystem) Add(basic *ecs.BasicEntity, comp *CollisionComponent) {
	if basic == nil || comp == nil || comp.Shape == nil {
		return
	}
	if old, ok := cs.entities[basic.ID()]; ok {
		cs.detector.Remove(old.Shape)
		delete(cs.owners, old.Shape)
	}
	cs.entities[basic.ID()] = collisionEntity{basic, comp}
	cs.owners[comp.Shape] = basic.ID()
	cs.detector.Append(comp.Shape)
}

// AddByInterface satisfies ecs.SystemAddByInterfacer.
func (cs *CollisionSystem) AddByInterface(i ecs.Identifier) {
	o, ok := i.(Collidable)
	if !ok {
		return
	}
	cs.Add(o.GetBasicEntity(), o.GetCollisionComponent())
}

// Remove satisfies the ecs.System interface
func (cs *CollisionSystem) Remove(basic ecs.BasicEntity) {
	e, ok := cs.entities[basic.ID()]
	if !ok {
		return
	}
	cs.detector.Remove(e.Shape)
	delete(cs.owners, e.Shape)
	delete(cs.entities, basic.ID())
}

// Len returns the number of registered entities.
func (cs *CollisionSystem) Len() int { return len(cs.entities) }

// Move queues a translation of the entity's shape for the next Update.
func (cs *CollisionSystem) Move(basic ecs.BasicEntity, tx, ty float64) {
	cs.moves = append(cs.moves, move{id: basic.ID(), tx: tx, ty: ty})
}

// Refresh tells the detector the entity's shape was changed in place.
func (cs *CollisionSystem) Refresh(basic ecs.BasicEntity) bool {
	e, ok := cs.entities[basic.ID()]
	if !ok {
		return false
	}
	return cs.detector.Update(e.Shape)
}

// OnCollision registers h for every contact found by Update.
func (cs *CollisionSystem) OnCollision(h Handler) {
	cs.handlers = append(cs.handlers, h)
}

// Contacts returns a copy of the contacts found by the last Update.
func (cs *CollisionSystem) Contacts() []Contact { return slices.Clone(cs.contacts) }

// Update applies queued moves and reports contacts.
func (cs *CollisionSystem) Update(dt float32) {
	ctx := context.Background()
	for _, m := range cs.moves {
		e, ok := cs.entities[m.id]
		if !ok {
			continue
		}
		pushed := cs.detector.CollisionTranslate(e.Shape, m.tx, m.ty)
		if len(pushed) > 0 && cs.logger.DebugEnabled(ctx) {
			cs.logger.Debug(ctx, "entity move pushed others", "entity", m.id, "pushed", len(pushed))
		}
	}
	cs.moves = cs.moves[:0]

	cs.pairs = cs.detector.FindCollisionPairs(cs.pairs[:0], cs.norepeat)
	cs.contacts = cs.contacts[:0]
	for _, p := range cs.pairs {
		a, okA := cs.entities[cs.owners[p.A]]
		b, okB := cs.entities[cs.owners[p.B]]
		if !okA || !okB {
			continue
		}
		cs.contacts = append(cs.contacts, Contact{A: a.BasicEntity, B: b.BasicEntity})
	}
	for _, c := range cs.contacts {
		for _, h := range cs.handlers {
			h(c)
		}
	}
}
