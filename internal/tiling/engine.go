package tiling

import (
	"context"

	"pattern-tiler/internal/scene"
	"pattern-tiler/pkg/geometry"
)

// Mode selects the active replication strategy. A document imports or
// authors groups under one strategy at a time; a single mirror group is
// never mixed.
type Mode int

const (
	// ModePhysical materializes 25 real copies per shape.
	ModePhysical Mode = iota
	// ModeVirtual stores one canonical entity per shape and delegates
	// the neighbor copies to a render-time ghost overlay.
	ModeVirtual
)

// Engine is the tile-mirroring synchronization engine. It subscribes
// to the canvas transform-lifecycle events and routes them, as explicit
// sync commands, to whichever strategy owns the event target.
type Engine struct {
	canvas   *scene.Canvas
	registry *Registry
	tileSize float64
	mode     Mode

	physical  *PhysicalEngine
	canonical *CanonicalEngine
	proxies   *ProxyManager
}

// NewEngine creates an engine in physical mode and subscribes it to the
// canvas transform events. A nil sequence gets a fresh counter.
func NewEngine(canvas *scene.Canvas, seq Sequence, tileSize float64) (*Engine, error) {
	if tileSize <= 0 {
		return nil, ErrInvalidTileSize
	}
	e := &Engine{
		canvas:   canvas,
		registry: NewRegistry(canvas, seq),
		tileSize: tileSize,
		mode:     ModePhysical,
	}
	e.physical = NewPhysicalEngine(canvas, e.registry, e.TileSize)

	for _, ev := range []scene.EventType{
		scene.EventObjectMoving,
		scene.EventObjectScaling,
		scene.EventObjectRotating,
		scene.EventObjectModified,
	} {
		canvas.On(ev, e.handleTransform)
	}
	return e, nil
}

// EnableVirtualTiling switches the engine into canonical mode. The
// store and proxy manager become the owners of all subsequently created
// groups; existing physical groups keep synchronizing as before.
func (e *Engine) EnableVirtualTiling(store *CanonicalStore, proxies *ProxyManager) {
	e.proxies = proxies
	e.canonical = NewCanonicalEngine(e.canvas, e.registry, store, proxies, e.TileSize)
	e.mode = ModeVirtual
}

// Mode returns the active strategy.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Registry exposes the shared mirror-group registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Canvas returns the scene graph the engine operates on.
func (e *Engine) Canvas() *scene.Canvas {
	return e.canvas
}

// TileSize returns the periodic repeat distance in scene units.
func (e *Engine) TileSize() float64 {
	return e.tileSize
}

// SetTileSize changes the repeat distance. The change applies only to
// synchronization computed afterwards; existing absolute positions are
// not rescaled here.
func (e *Engine) SetTileSize(v float64) error {
	if v <= 0 {
		return ErrInvalidTileSize
	}
	e.tileSize = v
	return nil
}

// CreateTiledObject replicates a shape through the physical strategy.
// Available in both modes: legacy projects import physical groups even
// when new shapes are authored canonically.
func (e *Engine) CreateTiledObject(ctx context.Context, source *scene.Object, click geometry.Point2D, layerID, existingGroupID string) ([]*scene.Object, error) {
	return e.physical.CreateTiledObject(ctx, source, click, layerID, existingGroupID)
}

// RemoveObjectGroup removes a physical group entirely. Unknown ids are
// a no-op.
func (e *Engine) RemoveObjectGroup(groupID string) {
	e.physical.RemoveGroup(groupID)
}

// CreateCanonicalObject registers a shape under the canonical strategy.
// Calling it before EnableVirtualTiling is a precondition violation.
func (e *Engine) CreateCanonicalObject(source *scene.Object, position geometry.Point2D, layerID, existingGroupID string) (string, error) {
	if e.canonical == nil {
		return "", ErrVirtualTilingDisabled
	}
	return e.canonical.CreateCanonicalObject(source, position, layerID, existingGroupID), nil
}

// RemoveCanonicalObject deletes a canonical group. Unknown ids are a
// no-op; calling before EnableVirtualTiling is a precondition violation.
func (e *Engine) RemoveCanonicalObject(groupID string) error {
	if e.canonical == nil {
		return ErrVirtualTilingDisabled
	}
	e.canonical.RemoveCanonicalObject(groupID)
	return nil
}

// RemoveGroup deletes a group through whichever strategy owns it.
// Physical groups imported before virtual tiling was enabled stay
// removable afterwards. Unknown ids are a no-op.
func (e *Engine) RemoveGroup(groupID string) {
	if e.isPhysicalGroup(groupID) {
		e.physical.RemoveGroup(groupID)
		return
	}
	e.canonical.RemoveCanonicalObject(groupID)
}

// SelectGroup acquires the interactive stand-in for a canonical group.
func (e *Engine) SelectGroup(groupID string) (*scene.Object, error) {
	if e.canonical == nil {
		return nil, ErrVirtualTilingDisabled
	}
	return e.proxies.Acquire(groupID), nil
}

// DeselectGroup destroys the group's proxy, if any.
func (e *Engine) DeselectGroup(groupID string) {
	if e.proxies != nil {
		e.proxies.Discard(groupID)
	}
}

// SetGhostRenderer attaches the virtual strategy's display collaborator.
func (e *Engine) SetGhostRenderer(g GhostRenderer) {
	if e.canonical != nil {
		e.canonical.SetGhostRenderer(g)
	}
}

// handleTransform routes one transform-lifecycle event to the strategy
// that owns its target.
func (e *Engine) handleTransform(ev scene.Event) {
	if ev.Selection != nil {
		e.syncSelection(ev.Selection)
		return
	}
	if ev.Target == nil {
		return
	}
	if e.proxies != nil {
		if _, ok := e.proxies.IsProxy(ev.Target); ok {
			e.canonical.SyncProxy(ev.Target)
			return
		}
	}
	if ev.Target.Tiled != nil && e.isPhysicalGroup(ev.Target.Tiled.MirrorGroupID) {
		e.physical.SyncFromObject(ev.Target)
	}
}

func (e *Engine) syncSelection(sel *scene.ActiveSelection) {
	if e.proxies != nil {
		for _, m := range sel.Members() {
			if _, ok := e.proxies.IsProxy(m); ok {
				world := sel.MemberWorldTransform(m).Decompose()
				e.canonical.SyncProxyFields(m, absoluteFields(m.TRS, world))
			}
		}
	}
	e.physical.SyncFromSelection(sel)
}

// isPhysicalGroup reports whether a group belongs to the physical
// strategy. Canonical groups are synchronized through their proxy only.
func (e *Engine) isPhysicalGroup(groupID string) bool {
	if e.canonical == nil {
		return true
	}
	return e.canonical.store.Get(groupID) == nil
}
