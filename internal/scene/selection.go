package scene

import (
	"pattern-tiler/pkg/geometry"
)

// ActiveSelection aggregates several objects under one interactive
// frame. While the selection is live, each member's raw X/Y fields are
// relative to the selection origin; a member's true world placement is
// only available through MemberWorldTransform.
type ActiveSelection struct {
	geometry.TRS

	members []*Object
}

// NewActiveSelection groups objects under a shared frame anchored at
// the top-left of their combined bounds. Member positions are rewritten
// relative to that frame, mirroring how interactive canvases hold
// grouped objects during a drag.
func NewActiveSelection(objs []*Object) *ActiveSelection {
	sel := &ActiveSelection{
		TRS:     geometry.TRS{ScaleX: 1, ScaleY: 1},
		members: objs,
	}
	if len(objs) == 0 {
		return sel
	}

	var box geometry.Rect
	for i, o := range objs {
		o.SetCoords()
		if i == 0 {
			box = o.Bounds()
		} else {
			box = box.Union(o.Bounds())
		}
	}
	sel.X = box.X
	sel.Y = box.Y

	for _, o := range objs {
		o.X -= sel.X
		o.Y -= sel.Y
	}
	return sel
}

// Members returns the grouped objects.
func (s *ActiveSelection) Members() []*Object {
	return s.members
}

// MemberWorldTransform composes the selection frame with a member's
// local matrix, yielding the member's absolute transform.
func (s *ActiveSelection) MemberWorldTransform(o *Object) geometry.AffineTransform {
	return s.TRS.Matrix().Compose(o.TRS.Matrix())
}

// Dissolve writes absolute transforms back onto the members and
// detaches them from the selection frame.
func (s *ActiveSelection) Dissolve() {
	for _, o := range s.members {
		world := s.MemberWorldTransform(o)
		dec := world.Decompose()
		o.X = dec.X
		o.Y = dec.Y
		o.Angle = dec.Angle
		o.ScaleX = dec.ScaleX
		o.ScaleY = dec.ScaleY
		o.FlipX = false
		o.FlipY = false
		if o.ScaleY < 0 {
			o.ScaleY = -o.ScaleY
			o.FlipY = true
		}
		o.SkewX = dec.SkewX
		o.SkewY = 0
		o.SetCoords()
	}
	s.members = nil
}
