// Package scene provides a headless retained scene graph: drawable
// objects with affine transforms, transform-lifecycle events, cloning,
// and SVG serialization. The tiling engine consumes it the way an
// editor canvas would.
package scene

import (
	"fmt"
	"image/color"

	"pattern-tiler/pkg/geometry"
)

// Kind identifies the drawable primitive an Object renders as.
type Kind string

const (
	KindRect    Kind = "rect"
	KindEllipse Kind = "ellipse"
	KindPath    Kind = "path"
)

// TiledMetadata links an object to its mirror group within the repeat grid.
type TiledMetadata struct {
	IsMirror      bool              `json:"is_mirror"`
	MirrorGroupID string            `json:"mirror_group_id"`
	TilePosition  geometry.PointInt `json:"tile_position"`
}

// Object is a drawable primitive owned by the canvas.
//
// The embedded TRS carries the mutable transform fields (X, Y, ScaleX,
// ScaleY, Angle, FlipX, FlipY, SkewX, SkewY). Position is the object's
// untransformed top-left corner.
type Object struct {
	geometry.TRS

	ID      string
	Kind    Kind
	Width   float64
	Height  float64
	PathD   string // SVG path data, KindPath only
	Fill    color.RGBA
	Opacity float64

	LayerID    string
	Visible    bool
	Selectable bool

	// Decoration marks non-content helpers (grid guides, proxies) that
	// exports must hide rather than serialize.
	Decoration bool

	// Tiled is nil for objects outside any mirror group.
	Tiled *TiledMetadata

	bounds geometry.Rect
}

// NewObject creates a visible, selectable object with unit scale.
func NewObject(id string, kind Kind, width, height float64) *Object {
	o := &Object{
		ID:      id,
		Kind:    kind,
		Width:   width,
		Height:  height,
		Fill:    color.RGBA{0, 0, 0, 255},
		Opacity: 1,
		TRS: geometry.TRS{
			ScaleX: 1,
			ScaleY: 1,
		},
		Visible:    true,
		Selectable: true,
	}
	o.SetCoords()
	return o
}

// Position returns the object's position as a point.
func (o *Object) Position() geometry.Point2D {
	return geometry.Point2D{X: o.X, Y: o.Y}
}

// SetPosition moves the object without touching the other transform fields.
func (o *Object) SetPosition(p geometry.Point2D) {
	o.X = p.X
	o.Y = p.Y
}

// Transform returns the composed local-to-world matrix.
func (o *Object) Transform() geometry.AffineTransform {
	return o.TRS.Matrix()
}

// SetCoords recomputes the cached interaction bounds from the current
// transform. Synchronization must call this after mutating siblings so
// hit-testing stays consistent with what is drawn.
func (o *Object) SetCoords() {
	m := o.Transform()
	corners := []geometry.Point2D{
		m.Apply(geometry.Point2D{X: 0, Y: 0}),
		m.Apply(geometry.Point2D{X: o.Width, Y: 0}),
		m.Apply(geometry.Point2D{X: o.Width, Y: o.Height}),
		m.Apply(geometry.Point2D{X: 0, Y: o.Height}),
	}
	o.bounds = geometry.BoundingBox(corners)
}

// Bounds returns the interaction bounds computed by the last SetCoords.
func (o *Object) Bounds() geometry.Rect {
	return o.bounds
}

// CopyTransformFrom copies every non-positional transform field from src.
func (o *Object) CopyTransformFrom(src geometry.TRS) {
	o.ScaleX = src.ScaleX
	o.ScaleY = src.ScaleY
	o.Angle = src.Angle
	o.FlipX = src.FlipX
	o.FlipY = src.FlipY
	o.SkewX = src.SkewX
	o.SkewY = src.SkewY
}

// copyWithID duplicates the object under a new id. Tiling metadata is
// not carried over; the caller decides group membership.
func (o *Object) copyWithID(id string) *Object {
	dup := *o
	dup.ID = id
	dup.Tiled = nil
	dup.SetCoords()
	return &dup
}

func (o *Object) String() string {
	return fmt.Sprintf("%s %s at (%.1f, %.1f)", o.Kind, o.ID, o.X, o.Y)
}
