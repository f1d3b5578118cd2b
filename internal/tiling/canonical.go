package tiling

import (
	"pattern-tiler/internal/scene"
	"pattern-tiler/pkg/geometry"
)

// CanonicalStore owns the mapping from mirror-group id to the single
// canonical entity of the virtual strategy. An entry exists from the
// moment a shape is drawn until it is deleted.
type CanonicalStore struct {
	entries map[string]*scene.Object
}

// NewCanonicalStore creates an empty store.
func NewCanonicalStore() *CanonicalStore {
	return &CanonicalStore{entries: make(map[string]*scene.Object)}
}

// Put registers the canonical entity for a group.
func (s *CanonicalStore) Put(groupID string, obj *scene.Object) {
	s.entries[groupID] = obj
}

// Get returns the canonical entity for a group, or nil.
func (s *CanonicalStore) Get(groupID string) *scene.Object {
	return s.entries[groupID]
}

// Delete drops a group's entry.
func (s *CanonicalStore) Delete(groupID string) {
	delete(s.entries, groupID)
}

// Len returns the number of registered groups.
func (s *CanonicalStore) Len() int {
	return len(s.entries)
}

// Each visits every (groupID, entity) pair.
func (s *CanonicalStore) Each(fn func(groupID string, obj *scene.Object)) {
	for id, o := range s.entries {
		fn(id, o)
	}
}

// GhostRenderer is the render-time collaborator of the virtual
// strategy: given the canonical entity set it produces the visual
// illusion of the eight neighbor copies without mutating canonical
// state. The engine notifies it whenever canonical content changes.
type GhostRenderer interface {
	InvalidateGhosts()
}

// nopGhosts is used until a display layer attaches.
type nopGhosts struct{}

func (nopGhosts) InvalidateGhosts() {}

// CanonicalEngine is the successor strategy: exactly one canonical
// entity per logical shape, manipulated indirectly through a transient
// proxy. Synchronization cost is O(1) per gesture regardless of tile
// count because no sibling entities exist.
type CanonicalEngine struct {
	canvas   *scene.Canvas
	registry *Registry
	store    *CanonicalStore
	proxies  *ProxyManager
	ghosts   GhostRenderer
	tileSize func() float64
}

// NewCanonicalEngine wires the strategy to its collaborators.
func NewCanonicalEngine(canvas *scene.Canvas, registry *Registry, store *CanonicalStore, proxies *ProxyManager, tileSize func() float64) *CanonicalEngine {
	return &CanonicalEngine{
		canvas:   canvas,
		registry: registry,
		store:    store,
		proxies:  proxies,
		ghosts:   nopGhosts{},
		tileSize: tileSize,
	}
}

// SetGhostRenderer attaches the display-layer collaborator.
func (c *CanonicalEngine) SetGhostRenderer(g GhostRenderer) {
	if g == nil {
		g = nopGhosts{}
	}
	c.ghosts = g
}

// CreateCanonicalObject registers the source entity as the single
// canonical member of a mirror group. Its position is normalized into
// the center tile on both axes and it is made non-interactive: user
// gestures go through a proxy instead. Returns the group id.
func (c *CanonicalEngine) CreateCanonicalObject(source *scene.Object, position geometry.Point2D, layerID, existingGroupID string) string {
	ts := c.tileSize()

	groupID := existingGroupID
	if groupID == "" {
		groupID = c.registry.Create()
	} else {
		c.registry.Adopt(groupID)
	}

	source.SetPosition(geometry.Point2D{
		X: NormalizeToCenterTile(position.X, ts),
		Y: NormalizeToCenterTile(position.Y, ts),
	})
	source.Selectable = false
	source.LayerID = layerID
	source.Tiled = &scene.TiledMetadata{
		IsMirror:      false,
		MirrorGroupID: groupID,
		TilePosition:  geometry.PointInt{},
	}
	source.SetCoords()

	c.store.Put(groupID, source)
	c.registry.Register(groupID, source)
	if !c.canvas.Contains(source) {
		c.canvas.Add(source)
	}
	c.canvas.RequestRender()
	c.ghosts.InvalidateGhosts()
	return groupID
}

// RemoveCanonicalObject deletes a group's canonical entity from the
// scene graph and the store, and discards any live proxy bound to it.
// Unknown group ids are a no-op.
func (c *CanonicalEngine) RemoveCanonicalObject(groupID string) {
	obj := c.store.Get(groupID)
	if obj == nil {
		return
	}
	c.canvas.Remove(obj)
	c.store.Delete(groupID)
	c.registry.Drop(groupID)
	c.proxies.Discard(groupID)
	c.canvas.RequestRender()
	c.ghosts.InvalidateGhosts()
}

// SyncProxy propagates a proxy's transform onto its bound canonical
// entity. The canonical entity is the single source of truth; the
// neighbor copies are redrawn by the ghost renderer, so no sibling
// position math happens here.
func (c *CanonicalEngine) SyncProxy(proxy *scene.Object) {
	if c.proxies.SyncToCanonical(proxy) {
		c.ghosts.InvalidateGhosts()
	}
}

// SyncProxyFields is SyncProxy with pre-derived absolute fields, used
// when the proxy sits inside an aggregate selection.
func (c *CanonicalEngine) SyncProxyFields(proxy *scene.Object, fields geometry.TRS) {
	if c.proxies.SyncFields(proxy, fields) {
		c.ghosts.InvalidateGhosts()
	}
}
