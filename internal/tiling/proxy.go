package tiling

import (
	"pattern-tiler/internal/scene"
	"pattern-tiler/pkg/geometry"
)

// ProxyManager owns the transient interactive stand-ins of the virtual
// strategy. A proxy is created on selection, destroyed on deselection,
// carries no drawing content, and exists purely to receive user
// transform gestures which are then propagated onto the canonical
// entity it is bound to.
type ProxyManager struct {
	canvas   *scene.Canvas
	store    *CanonicalStore
	tileSize func() float64

	byGroup map[string]*scene.Object
	groupOf map[*scene.Object]string
}

// NewProxyManager creates a manager over the given canvas and store.
func NewProxyManager(canvas *scene.Canvas, store *CanonicalStore, tileSize func() float64) *ProxyManager {
	return &ProxyManager{
		canvas:   canvas,
		store:    store,
		tileSize: tileSize,
		byGroup:  make(map[string]*scene.Object),
		groupOf:  make(map[*scene.Object]string),
	}
}

// Acquire returns the live proxy for a group, creating one positioned
// over the canonical entity if none exists. Returns nil for unknown
// groups.
func (pm *ProxyManager) Acquire(groupID string) *scene.Object {
	if proxy, ok := pm.byGroup[groupID]; ok {
		return proxy
	}
	canonical := pm.store.Get(groupID)
	if canonical == nil {
		return nil
	}

	proxy := scene.NewObject(pm.canvas.NewID("proxy"), canonical.Kind, canonical.Width, canonical.Height)
	proxy.TRS = canonical.TRS
	proxy.Fill = canonical.Fill
	proxy.Opacity = 0 // no drawing content of its own
	proxy.PathD = canonical.PathD
	proxy.Decoration = true
	proxy.Selectable = true
	proxy.SetCoords()

	pm.byGroup[groupID] = proxy
	pm.groupOf[proxy] = groupID
	pm.canvas.Add(proxy)
	return proxy
}

// IsProxy reports whether an object is a registered proxy and, if so,
// which group it is bound to.
func (pm *ProxyManager) IsProxy(obj *scene.Object) (string, bool) {
	groupID, ok := pm.groupOf[obj]
	return groupID, ok
}

// Discard destroys the live proxy for a group, if any.
func (pm *ProxyManager) Discard(groupID string) {
	proxy, ok := pm.byGroup[groupID]
	if !ok {
		return
	}
	pm.canvas.Remove(proxy)
	delete(pm.byGroup, groupID)
	delete(pm.groupOf, proxy)
}

// DiscardAll destroys every live proxy.
func (pm *ProxyManager) DiscardAll() {
	for groupID := range pm.byGroup {
		pm.Discard(groupID)
	}
}

// Live returns the number of live proxies.
func (pm *ProxyManager) Live() int {
	return len(pm.byGroup)
}

// SyncToCanonical copies the proxy's transform onto its bound canonical
// entity, renormalizing the position into the center tile so the
// canonical entity never leaves it. Reports whether a sync happened.
func (pm *ProxyManager) SyncToCanonical(proxy *scene.Object) bool {
	return pm.SyncFields(proxy, proxy.TRS)
}

// SyncFields is SyncToCanonical with explicit absolute transform
// fields, for proxies inside an aggregate selection whose raw fields
// are relative to the selection frame.
func (pm *ProxyManager) SyncFields(proxy *scene.Object, fields geometry.TRS) bool {
	groupID, ok := pm.groupOf[proxy]
	if !ok {
		return false
	}
	canonical := pm.store.Get(groupID)
	if canonical == nil {
		return false
	}

	ts := pm.tileSize()
	canonical.SetPosition(geometry.Point2D{
		X: NormalizeToCenterTile(fields.X, ts),
		Y: NormalizeToCenterTile(fields.Y, ts),
	})
	canonical.CopyTransformFrom(fields)
	canonical.SetCoords()
	return true
}
