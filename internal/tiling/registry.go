package tiling

import (
	"fmt"
	"strconv"
	"strings"

	"pattern-tiler/internal/scene"
)

// Sequence produces monotonically increasing values for id generation.
// It is owned by whoever constructs the registry, never a package
// global, so documents cannot share or race on a counter.
type Sequence interface {
	Next() uint64
}

// CounterSequence is the default Sequence: a plain in-memory counter.
type CounterSequence struct {
	n uint64
}

// Next returns the next counter value, starting at 1.
func (s *CounterSequence) Next() uint64 {
	s.n++
	return s.n
}

// Bump raises the counter so future values exceed n. Used when adopting
// externally minted ids on import.
func (s *CounterSequence) Bump(n uint64) {
	if n > s.n {
		s.n = n
	}
}

const groupIDPrefix = "mg-"

// Registry associates mirror-group ids with their member entities.
// In the physical strategy a group holds all 25 grid copies; in the
// canonical strategy it holds the single canonical entity.
type Registry struct {
	canvas  *scene.Canvas
	seq     Sequence
	members map[string][]*scene.Object
}

// NewRegistry creates a registry over the given canvas. A nil sequence
// gets a fresh CounterSequence.
func NewRegistry(canvas *scene.Canvas, seq Sequence) *Registry {
	if seq == nil {
		seq = &CounterSequence{}
	}
	return &Registry{
		canvas:  canvas,
		seq:     seq,
		members: make(map[string][]*scene.Object),
	}
}

// Create mints a new globally unique mirror-group id. Uniqueness rests
// on the injected sequence, so rapid successive calls within the same
// millisecond cannot collide.
func (r *Registry) Create() string {
	return fmt.Sprintf("%s%d", groupIDPrefix, r.seq.Next())
}

// Adopt records an externally minted group id (typically from a project
// import) so later Create calls cannot collide with it.
func (r *Registry) Adopt(groupID string) {
	bumper, ok := r.seq.(*CounterSequence)
	if !ok {
		return
	}
	raw, found := strings.CutPrefix(groupID, groupIDPrefix)
	if !found {
		return
	}
	if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
		bumper.Bump(n)
	}
}

// Register adds an entity to a group's membership.
func (r *Registry) Register(groupID string, obj *scene.Object) {
	r.members[groupID] = append(r.members[groupID], obj)
}

// MembersOf returns the entities registered under a group id. The
// result is the live slice; callers must not mutate it.
func (r *Registry) MembersOf(groupID string) []*scene.Object {
	return r.members[groupID]
}

// PrimaryOf returns the first member with IsMirror unset, or nil. It is
// informational only: no member carries synchronization authority.
func (r *Registry) PrimaryOf(groupID string) *scene.Object {
	for _, o := range r.members[groupID] {
		if o.Tiled != nil && !o.Tiled.IsMirror {
			return o
		}
	}
	return nil
}

// Groups returns every registered group id.
func (r *Registry) Groups() []string {
	out := make([]string, 0, len(r.members))
	for id := range r.members {
		out = append(out, id)
	}
	return out
}

// RemoveGroup removes every member from the canvas and drops the group.
// Unknown group ids are a no-op: deletion races are expected.
func (r *Registry) RemoveGroup(groupID string) {
	for _, o := range r.members[groupID] {
		r.canvas.Remove(o)
	}
	delete(r.members, groupID)
}

// Drop forgets a group without touching the canvas.
func (r *Registry) Drop(groupID string) {
	delete(r.members, groupID)
}
