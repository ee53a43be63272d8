// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-collide/pkg/geometry"
)

// Type represents the type of event
type Type string

// Collision event types
const (
	CollisionDetected Type = "collision_detected"
	ObjectPushed      Type = "object_pushed"
	IndexRebuilt      Type = "index_rebuilt"
	NodeSplit         Type = "node_split"
	NodeMerged        Type = "node_merged"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Type   Type
	Cancel func()
}

type entry struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine.
type Bus struct {
	handlers map[Type][]entry
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]entry),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], entry{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Type:   eventType,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.handlers[eventType]
	for i, e := range handlers {
		if e.id == id {
			b.handlers[eventType] = append(handlers[:i:i], handlers[i+1:]...)
			break
		}
	}
	if len(b.handlers[eventType]) == 0 {
		delete(b.handlers, eventType)
	}
}

// HasSubscribers reports whether any handler listens for eventType, so
// publishers can skip building events nobody reads.
func (b *Bus) HasSubscribers(eventType Type) bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType]) > 0
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, e := range handlers {
		e.handler(event)
	}
}

// PairEvent reports two shapes found in contact.
type PairEvent struct {
	BaseEvent
	A, B geometry.Shape
}

// NewPairEvent creates a CollisionDetected event
func NewPairEvent(source interface{}, a, b geometry.Shape) *PairEvent {
	return &PairEvent{
		BaseEvent: BaseEvent{EventType: CollisionDetected, Source: source},
		A:         a,
		B:         b,
	}
}

// PushEvent reports an object moved out of another during a collision
// translate.
type PushEvent struct {
	BaseEvent
	Object geometry.Shape
	// Pusher is the object that caused the move.
	Pusher geometry.Shape
	Offset geometry.Vector
}

// NewPushEvent creates an ObjectPushed event
func NewPushEvent(source interface{}, object, pusher geometry.Shape, offset geometry.Vector) *PushEvent {
	return &PushEvent{
		BaseEvent: BaseEvent{EventType: ObjectPushed, Source: source},
		Object:    object,
		Pusher:    pusher,
		Offset:    offset,
	}
}

// IndexEvent describes a structural change of a spatial index.
type IndexEvent struct {
	BaseEvent
	Index   string
	Objects int
	// Cells is the number of grid cells or quadtree nodes afterwards.
	Cells  int
	Bounds geometry.AABBRect
}

// NewIndexEvent creates an index event of the given type
func NewIndexEvent(eventType Type, source interface{}, index string, objects, cells int, bounds geometry.AABBRect) *IndexEvent {
	return &IndexEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		Index:     index,
		Objects:   objects,
		Cells:     cells,
		Bounds:    bounds,
	}
}
