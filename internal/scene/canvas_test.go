package scene

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"pattern-tiler/pkg/geometry"
)

func TestAddRemoveContains(t *testing.T) {
	c := New()
	o := NewObject("", KindRect, 10, 10)
	c.Add(o)

	if !c.Contains(o) {
		t.Fatal("canvas should contain added object")
	}
	if o.ID == "" {
		t.Error("Add should assign an id")
	}

	c.Remove(o)
	if c.Contains(o) {
		t.Error("canvas should not contain removed object")
	}
	if got := len(c.Objects()); got != 0 {
		t.Errorf("object count = %d, want 0", got)
	}

	// Removing twice is harmless.
	c.Remove(o)
}

func TestEventDispatch(t *testing.T) {
	c := New()
	o := NewObject("r1", KindRect, 10, 10)

	var moving, modified int
	c.On(EventObjectMoving, func(ev Event) {
		moving++
		if ev.Target != o {
			t.Errorf("event target = %v, want %v", ev.Target, o)
		}
	})
	c.On(EventObjectModified, func(Event) { modified++ })

	c.Emit(Event{Type: EventObjectMoving, Target: o})
	c.Emit(Event{Type: EventObjectMoving, Target: o})
	c.Emit(Event{Type: EventObjectModified, Target: o})

	if moving != 2 || modified != 1 {
		t.Errorf("moving = %d, modified = %d, want 2 and 1", moving, modified)
	}
}

func TestMuteSuppressesDispatch(t *testing.T) {
	c := New()

	var added int
	c.On(EventObjectAdded, func(Event) { added++ })

	outer := c.Mute()
	inner := c.Mute()
	c.Add(NewObject("r1", KindRect, 10, 10))
	inner()
	c.Add(NewObject("r2", KindRect, 10, 10))
	outer()
	if added != 0 {
		t.Errorf("added events during mute = %d, want 0", added)
	}

	c.Add(NewObject("r3", KindRect, 10, 10))
	if added != 1 {
		t.Errorf("added events after resume = %d, want 1", added)
	}
	if got := len(c.Objects()); got != 3 {
		t.Errorf("object count = %d, want 3", got)
	}
}

func TestClone(t *testing.T) {
	c := New()
	src := NewObject("src", KindEllipse, 30, 20)
	src.X, src.Y = 15, 25
	src.Angle = 45
	src.Tiled = &TiledMetadata{MirrorGroupID: "mg-1"}

	dup, err := c.Clone(context.Background(), src)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if dup.ID == src.ID {
		t.Error("clone should get a fresh id")
	}
	if dup.X != src.X || dup.Angle != src.Angle || dup.Kind != src.Kind {
		t.Error("clone should copy geometry and transform")
	}
	if dup.Tiled != nil {
		t.Error("clone must not inherit tiling metadata")
	}
	if c.Contains(dup) {
		t.Error("clone must not be auto-inserted")
	}
}

func TestCloneInterceptor(t *testing.T) {
	c := New()
	refuse := errors.New("host refused")
	c.SetCloneInterceptor(func(*Object) error { return refuse })

	_, err := c.Clone(context.Background(), NewObject("x", KindRect, 1, 1))
	if !errors.Is(err, refuse) {
		t.Errorf("err = %v, want %v", err, refuse)
	}
}

func TestCloneCancelledContext(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Clone(ctx, NewObject("x", KindRect, 1, 1)); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestActiveSelectionWorldTransform(t *testing.T) {
	a := NewObject("a", KindRect, 10, 10)
	a.X, a.Y = 100, 100
	b := NewObject("b", KindRect, 10, 10)
	b.X, b.Y = 150, 120

	sel := NewActiveSelection([]*Object{a, b})

	// Raw fields are now relative to the selection frame.
	if a.X != 0 || a.Y != 0 {
		t.Errorf("member a relative position = (%g, %g), want (0, 0)", a.X, a.Y)
	}

	// Before any gesture the composed transform restores absolutes.
	pos := sel.MemberWorldTransform(b).Translation2D()
	if pos.X != 150 || pos.Y != 120 {
		t.Errorf("member b world position = %+v, want (150, 120)", pos)
	}

	// Dragging the frame moves every member.
	sel.X += 32
	sel.Y -= 8
	pos = sel.MemberWorldTransform(a).Translation2D()
	if pos.X != 132 || pos.Y != 92 {
		t.Errorf("member a world position after drag = %+v, want (132, 92)", pos)
	}
}

func TestActiveSelectionDissolve(t *testing.T) {
	a := NewObject("a", KindRect, 10, 10)
	a.X, a.Y = 40, 60

	sel := NewActiveSelection([]*Object{a})
	sel.X += 10
	sel.Angle = 90
	sel.Dissolve()

	if math.Abs(a.Angle-90) > 1e-6 {
		t.Errorf("angle = %g, want 90", a.Angle)
	}
	if math.Abs(a.X-50) > 1e-6 || math.Abs(a.Y-60) > 1e-6 {
		t.Errorf("position = (%g, %g), want (50, 60)", a.X, a.Y)
	}
}

func TestSetCoordsBounds(t *testing.T) {
	o := NewObject("r", KindRect, 10, 20)
	o.X, o.Y = 5, 5
	o.Angle = 90
	o.SetCoords()

	b := o.Bounds()
	if math.Abs(b.Width-20) > 1e-9 || math.Abs(b.Height-10) > 1e-9 {
		t.Errorf("rotated bounds = %+v, want 20x10", b)
	}
}

func TestToSVG(t *testing.T) {
	c := New()
	o := NewObject("r", KindRect, 64, 64)
	o.X, o.Y = 96, 96

	guide := NewObject("guide", KindRect, 256, 256)
	guide.Decoration = true

	hidden := NewObject("h", KindEllipse, 10, 10)
	hidden.Visible = false

	c.Add(o, guide, hidden)

	svg, err := c.ToSVG(geometry.NewRect(0, 0, 256, 256), geometry.Size{Width: 256, Height: 256})
	if err != nil {
		t.Fatalf("ToSVG: %v", err)
	}

	if !strings.Contains(svg, `viewBox="0 0 256 256"`) {
		t.Errorf("missing viewBox in %q", svg)
	}
	if !strings.Contains(svg, "<rect") {
		t.Error("content rect missing from markup")
	}
	if strings.Count(svg, "<rect") != 1 {
		t.Error("decoration rect should not be serialized")
	}
	if strings.Contains(svg, "<ellipse") {
		t.Error("hidden object should not be serialized")
	}
}
