package tiling

import (
	"context"
	"fmt"

	"pattern-tiler/internal/scene"
	"pattern-tiler/pkg/geometry"
)

// PhysicalEngine is the legacy replication strategy: every logical
// shape is materialized as 25 real entities in a 5x5 grid of tile
// offsets, kept transform-consistent by the synchronization protocol.
type PhysicalEngine struct {
	canvas   *scene.Canvas
	registry *Registry
	tileSize func() float64
}

// NewPhysicalEngine wires the strategy to its shared collaborators.
// tileSize is read at call time so resolution changes apply to all
// subsequent math without retroactive repositioning.
func NewPhysicalEngine(canvas *scene.Canvas, registry *Registry, tileSize func() float64) *PhysicalEngine {
	return &PhysicalEngine{canvas: canvas, registry: registry, tileSize: tileSize}
}

// CreateTiledObject replicates the source entity across the full grid.
// The click position is normalized to a tile-local offset; the source
// plus 24 clones are placed one per offset pair in {-2..2} x {-2..2}.
// existingGroupID preserves mirror-group identity on import; pass ""
// to mint a new group.
//
// Creation is all-or-nothing: every clone is awaited before any tiling
// metadata is registered, so a failed clone leaves no partial group.
func (p *PhysicalEngine) CreateTiledObject(ctx context.Context, source *scene.Object, click geometry.Point2D, layerID, existingGroupID string) ([]*scene.Object, error) {
	ts := p.tileSize()
	local := NormalizePoint(click, ts)

	groupID := existingGroupID
	if groupID == "" {
		groupID = p.registry.Create()
	} else {
		p.registry.Adopt(groupID)
	}

	offsets := GridOffsets(GridRadius)
	entities := make([]*scene.Object, 0, len(offsets))
	for _, off := range offsets {
		if off.X == 0 && off.Y == 0 {
			entities = append(entities, source)
			continue
		}
		dup, err := p.canvas.Clone(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("%w: offset (%d,%d): %v", ErrCloneFailed, off.X, off.Y, err)
		}
		entities = append(entities, dup)
	}

	for i, off := range offsets {
		e := entities[i]
		e.SetPosition(AbsolutePosition(off, local, ts))
		e.Selectable = true
		e.LayerID = layerID
		e.Tiled = &scene.TiledMetadata{
			IsMirror:      false,
			MirrorGroupID: groupID,
			TilePosition:  off,
		}
		e.SetCoords()
		p.registry.Register(groupID, e)
		if !p.canvas.Contains(e) {
			p.canvas.Add(e)
		}
	}

	p.canvas.RequestRender()
	return entities, nil
}

// RemoveGroup removes every member of a physical group from the canvas.
// Unknown ids are a no-op.
func (p *PhysicalEngine) RemoveGroup(groupID string) {
	p.registry.RemoveGroup(groupID)
}

// syncCommand is one computed sibling update: position derived from the
// source entity's current state, non-positional fields copied verbatim.
type syncCommand struct {
	target *scene.Object
	fields geometry.TRS
}

// commandsFor recomputes every sibling's transform from the source
// entity's absolute state and known tile offset. Positions are
// re-derived from current source state on every call, never
// accumulated, so rapid successive drag events cannot drift. The
// source itself is excluded: during a group drag its raw fields belong
// to the selection frame and must not be overwritten.
func (p *PhysicalEngine) commandsFor(source *scene.Object, fields geometry.TRS) []syncCommand {
	ts := p.tileSize()
	sourceOffset := source.Tiled.TilePosition
	members := p.registry.MembersOf(source.Tiled.MirrorGroupID)
	cmds := make([]syncCommand, 0, len(members))
	for _, m := range members {
		if m == source || m.Tiled == nil {
			continue
		}
		delta := m.Tiled.TilePosition.Sub(sourceOffset)
		sibling := fields
		sibling.X = fields.X + float64(delta.X)*ts
		sibling.Y = fields.Y + float64(delta.Y)*ts
		cmds = append(cmds, syncCommand{target: m, fields: sibling})
	}
	return cmds
}

// apply pushes the computed transforms onto the siblings and refreshes
// their interaction bounds. No render is requested here: the host
// already redraws after dispatching the transform event.
func (p *PhysicalEngine) apply(cmds []syncCommand) {
	for _, cmd := range cmds {
		t := cmd.target
		t.SetPosition(geometry.Point2D{X: cmd.fields.X, Y: cmd.fields.Y})
		t.CopyTransformFrom(cmd.fields)
		t.SetCoords()
	}
}

// SyncFromObject propagates a single entity's current transform to its
// whole mirror group.
func (p *PhysicalEngine) SyncFromObject(obj *scene.Object) {
	if obj.Tiled == nil {
		return
	}
	p.apply(p.commandsFor(obj, obj.TRS))
}

// SyncFromSelection propagates transforms for every tiled member of an
// aggregate selection. Member raw fields are relative to the selection
// frame during a group drag, so each member's true absolute state is
// derived from its composed transform matrix instead.
func (p *PhysicalEngine) SyncFromSelection(sel *scene.ActiveSelection) {
	selected := make(map[*scene.Object]bool, len(sel.Members()))
	for _, m := range sel.Members() {
		selected[m] = true
	}
	for _, m := range sel.Members() {
		if m.Tiled == nil {
			continue
		}
		world := sel.MemberWorldTransform(m).Decompose()
		cmds := p.commandsFor(m, absoluteFields(m.TRS, world))
		kept := cmds[:0]
		for _, cmd := range cmds {
			// Siblings inside the same selection keep their relative
			// fields; the frame already carries them.
			if !selected[cmd.target] {
				kept = append(kept, cmd)
			}
		}
		p.apply(kept)
	}
}

// absoluteFields converts a decomposed world matrix into entity
// transform fields. A reflection in the matrix folds into a flip flag.
func absoluteFields(raw, world geometry.TRS) geometry.TRS {
	fields := world
	if fields.ScaleY < 0 {
		fields.ScaleY = -fields.ScaleY
		fields.FlipY = true
	}
	fields.SkewY = raw.SkewY
	return fields
}
