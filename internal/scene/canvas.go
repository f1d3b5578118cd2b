package scene

import (
	"context"
	"fmt"
	"sync"
)

// EventType identifies transform-lifecycle events dispatched by the canvas.
type EventType int

const (
	// EventObjectMoving fires continuously while a drag translates the target.
	EventObjectMoving EventType = iota
	// EventObjectScaling fires continuously while a drag scales the target.
	EventObjectScaling
	// EventObjectRotating fires continuously while a drag rotates the target.
	EventObjectRotating
	// EventObjectModified fires once when a gesture completes.
	EventObjectModified
	// EventObjectAdded fires after an object enters the canvas.
	EventObjectAdded
	// EventObjectRemoved fires after an object leaves the canvas.
	EventObjectRemoved
)

// Event carries a transform-lifecycle notification. Exactly one of
// Target and Selection is set: single-object gestures carry Target,
// multi-object gestures carry the aggregate Selection.
type Event struct {
	Type      EventType
	Target    *Object
	Selection *ActiveSelection
}

// EventListener is called when an event is dispatched.
type EventListener func(Event)

// CloneInterceptor lets callers veto or fail a clone, mimicking a host
// that refuses duplication. Returning a non-nil error aborts the clone.
type CloneInterceptor func(src *Object) error

// Canvas is the headless scene graph root. All mutation happens on the
// UI goroutine; the mutex only guards the listener table, which follows
// the same registration pattern as the rest of the application state.
type Canvas struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventListener
	muted     int

	objects []*Object
	nextID  int

	renderRequests int
	onRender       func()

	cloneInterceptor CloneInterceptor
}

// New creates an empty canvas.
func New() *Canvas {
	return &Canvas{
		listeners: make(map[EventType][]EventListener),
	}
}

// NewID mints a canvas-unique object id with the given prefix.
func (c *Canvas) NewID(prefix string) string {
	c.nextID++
	return fmt.Sprintf("%s-%d", prefix, c.nextID)
}

// On registers an event listener for the specified event type.
func (c *Canvas) On(event EventType, listener EventListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners[event] = append(c.listeners[event], listener)
}

// Emit dispatches an event to all listeners registered for its type.
// Dispatch is skipped while the canvas is muted.
func (c *Canvas) Emit(ev Event) {
	c.mu.RLock()
	muted := c.muted > 0
	listeners := c.listeners[ev.Type]
	c.mu.RUnlock()

	if muted {
		return
	}
	for _, listener := range listeners {
		listener(ev)
	}
}

// Mute suppresses event dispatch until the returned function is called.
// Transient mutations that must not reach listeners, like the clones
// the exporter inserts and removes around serialization, run inside a
// Mute window. Calls nest.
func (c *Canvas) Mute() (resume func()) {
	c.mu.Lock()
	c.muted++
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.muted--
		c.mu.Unlock()
	}
}

// Add inserts objects into the canvas.
func (c *Canvas) Add(objs ...*Object) {
	for _, o := range objs {
		if o.ID == "" {
			o.ID = c.NewID("obj")
		}
		c.objects = append(c.objects, o)
		c.Emit(Event{Type: EventObjectAdded, Target: o})
	}
}

// Remove deletes an object from the canvas. Unknown objects are ignored.
func (c *Canvas) Remove(obj *Object) {
	for i, o := range c.objects {
		if o == obj {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			c.Emit(Event{Type: EventObjectRemoved, Target: o})
			return
		}
	}
}

// Contains reports whether the object is currently in the canvas.
func (c *Canvas) Contains(obj *Object) bool {
	for _, o := range c.objects {
		if o == obj {
			return true
		}
	}
	return false
}

// Objects returns the objects in z-order. The slice is a copy; the
// objects are shared.
func (c *Canvas) Objects() []*Object {
	out := make([]*Object, len(c.objects))
	copy(out, c.objects)
	return out
}

// ObjectByID returns the object with the given id, or nil.
func (c *Canvas) ObjectByID(id string) *Object {
	for _, o := range c.objects {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// Clone asynchronously duplicates an object. The duplicate gets a fresh
// id, carries no tiling metadata, and is not added to the canvas.
func (c *Canvas) Clone(ctx context.Context, src *Object) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.cloneInterceptor != nil {
		if err := c.cloneInterceptor(src); err != nil {
			return nil, err
		}
	}
	return src.copyWithID(c.NewID(string(src.Kind))), nil
}

// SetCloneInterceptor installs a hook consulted before every clone.
func (c *Canvas) SetCloneInterceptor(fn CloneInterceptor) {
	c.cloneInterceptor = fn
}

// RequestRender asks the display layer to redraw.
func (c *Canvas) RequestRender() {
	c.renderRequests++
	if c.onRender != nil {
		c.onRender()
	}
}

// OnRender installs the display callback invoked by RequestRender.
func (c *Canvas) OnRender(fn func()) {
	c.onRender = fn
}

// RenderRequests returns how many renders have been requested.
func (c *Canvas) RenderRequests() int {
	return c.renderRequests
}
