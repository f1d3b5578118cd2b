package export

import (
	"context"
	"errors"
	"image/color"
	"io"
	"strings"
	"testing"

	"pattern-tiler/internal/scene"
	"pattern-tiler/internal/tiling"
	"pattern-tiler/pkg/geometry"
)

func virtualDoc(t *testing.T) (*tiling.Engine, *scene.Canvas) {
	t.Helper()
	canvas := scene.New()
	eng, err := tiling.NewEngine(canvas, nil, 256)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	store := tiling.NewCanonicalStore()
	eng.EnableVirtualTiling(store, tiling.NewProxyManager(canvas, store, eng.TileSize))
	return eng, canvas
}

func virtualOpts() Options {
	return Options{
		TileSize: 256,
		Origin:   geometry.Point2D{X: 256, Y: 256},
		BaseFill: color.RGBA{255, 255, 255, 255},
	}
}

func TestEmptyTileSVG(t *testing.T) {
	_, canvas := virtualDoc(t)
	r := NewReconstructor(canvas)

	markup, err := r.GenerateCenterTileSVG(context.Background(), virtualOpts())
	if err != nil {
		t.Fatalf("GenerateCenterTileSVG: %v", err)
	}
	if !strings.Contains(markup, `viewBox="256 256 256 256"`) {
		t.Errorf("missing viewBox: %q", markup)
	}
	if !strings.Contains(markup, `fill="#ffffff"`) {
		t.Error("base fill missing from minimal markup")
	}
	if strings.Contains(markup, "<ellipse") || strings.Contains(markup, "<path") {
		t.Error("minimal markup must not contain content")
	}
}

func TestGenerateClonesNeighborsAndRestores(t *testing.T) {
	eng, canvas := virtualDoc(t)

	src := scene.NewObject("s", scene.KindEllipse, 40, 40)
	src.Fill = color.RGBA{200, 30, 30, 255}
	if _, err := eng.CreateCanonicalObject(src, geometry.Point2D{X: 300, Y: 300}, "l", ""); err != nil {
		t.Fatalf("CreateCanonicalObject: %v", err)
	}

	guide := scene.NewObject("guide", scene.KindRect, 768, 768)
	guide.Decoration = true
	canvas.Add(guide)

	before := len(canvas.Objects())
	r := NewReconstructor(canvas)
	markup, err := r.GenerateCenterTileSVG(context.Background(), virtualOpts())
	if err != nil {
		t.Fatalf("GenerateCenterTileSVG: %v", err)
	}

	// Canonical entity plus eight neighbor clones.
	if got := strings.Count(markup, "<ellipse"); got != 9 {
		t.Errorf("ellipse count = %d, want 9", got)
	}
	// The decoration stays hidden during serialization.
	if strings.Contains(markup, `width="768"`) {
		t.Error("grid guide leaked into export markup")
	}

	// Live document fully restored.
	if after := len(canvas.Objects()); after != before {
		t.Errorf("object count %d -> %d, must be unchanged", before, after)
	}
	if !guide.Visible {
		t.Error("decoration visibility not restored")
	}
	if !src.Visible {
		t.Error("content visibility changed")
	}
}

func TestGenerateCleansUpOnSerializeFailure(t *testing.T) {
	eng, canvas := virtualDoc(t)

	src := scene.NewObject("s", scene.KindRect, 40, 40)
	if _, err := eng.CreateCanonicalObject(src, geometry.Point2D{X: 300, Y: 300}, "l", ""); err != nil {
		t.Fatalf("CreateCanonicalObject: %v", err)
	}
	guide := scene.NewObject("guide", scene.KindRect, 768, 768)
	guide.Decoration = true
	canvas.Add(guide)

	boom := errors.New("serializer exploded")
	r := NewReconstructor(canvas)
	r.serialize = func(io.Writer) error { return boom }

	before := len(canvas.Objects())
	_, err := r.GenerateCenterTileSVG(context.Background(), virtualOpts())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}

	if after := len(canvas.Objects()); after != before {
		t.Errorf("stray clones: object count %d -> %d", before, after)
	}
	if !guide.Visible {
		t.Error("decoration left hidden after failed export")
	}
}

func TestGenerateCloneFailureCleansUp(t *testing.T) {
	eng, canvas := virtualDoc(t)

	src := scene.NewObject("s", scene.KindRect, 40, 40)
	if _, err := eng.CreateCanonicalObject(src, geometry.Point2D{X: 300, Y: 300}, "l", ""); err != nil {
		t.Fatalf("CreateCanonicalObject: %v", err)
	}

	calls := 0
	canvas.SetCloneInterceptor(func(*scene.Object) error {
		calls++
		if calls == 5 {
			return errors.New("refused")
		}
		return nil
	})

	before := len(canvas.Objects())
	r := NewReconstructor(canvas)
	if _, err := r.GenerateCenterTileSVG(context.Background(), virtualOpts()); err == nil {
		t.Fatal("expected clone failure")
	}
	if after := len(canvas.Objects()); after != before {
		t.Errorf("partial clones left behind: %d -> %d", before, after)
	}
}

func TestPhysicalModeExportsPrimariesOnly(t *testing.T) {
	canvas := scene.New()
	eng, err := tiling.NewEngine(canvas, nil, 256)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	src := scene.NewObject("", scene.KindRect, 40, 40)
	if _, err := eng.CreateTiledObject(context.Background(), src, geometry.Point2D{X: 10, Y: 10}, "l", ""); err != nil {
		t.Fatalf("CreateTiledObject: %v", err)
	}

	r := NewReconstructor(canvas)
	markup, err := r.GenerateCenterTileSVG(context.Background(), Options{
		TileSize: 256,
		BaseFill: color.RGBA{0, 0, 0, 255},
	})
	if err != nil {
		t.Fatalf("GenerateCenterTileSVG: %v", err)
	}

	// One primary plus eight clones; the 24 mirror copies are hidden,
	// not serialized twice.
	if got := strings.Count(markup, "<rect") - 1; got != 9 { // minus base fill
		t.Errorf("content rect count = %d, want 9", got)
	}

	// All 25 members visible again afterwards.
	visible := 0
	for _, o := range canvas.Objects() {
		if o.Visible {
			visible++
		}
	}
	if visible != 25 {
		t.Errorf("visible members = %d, want 25", visible)
	}
}

func TestExportMutationsInvisibleToListeners(t *testing.T) {
	eng, canvas := virtualDoc(t)

	src := scene.NewObject("s", scene.KindEllipse, 40, 40)
	if _, err := eng.CreateCanonicalObject(src, geometry.Point2D{X: 300, Y: 300}, "l", ""); err != nil {
		t.Fatalf("CreateCanonicalObject: %v", err)
	}

	r := NewReconstructor(canvas)

	// A listener that re-runs the export on every insertion, the way
	// the live preview re-renders on pattern changes. The exporter's
	// transient clones must never reach listeners; if they did, each
	// export would trigger another without bound.
	var depth, events int
	canvas.On(scene.EventObjectAdded, func(scene.Event) {
		events++
		if depth > 2 {
			return
		}
		depth++
		defer func() { depth-- }()
		if _, err := r.GenerateCenterTileSVG(context.Background(), virtualOpts()); err != nil {
			t.Errorf("re-entrant export: %v", err)
		}
	})
	canvas.On(scene.EventObjectRemoved, func(scene.Event) { events++ })

	markup, err := r.GenerateCenterTileSVG(context.Background(), virtualOpts())
	if err != nil {
		t.Fatalf("GenerateCenterTileSVG: %v", err)
	}
	if got := strings.Count(markup, "<ellipse"); got != 9 {
		t.Errorf("ellipse count = %d, want 9", got)
	}
	if events != 0 {
		t.Errorf("listeners saw %d add/remove events during export, want 0", events)
	}
}

func TestBackgroundsAscendingOrder(t *testing.T) {
	_, canvas := virtualDoc(t)
	r := NewReconstructor(canvas)

	opts := virtualOpts()
	opts.Backgrounds = []Background{
		{Order: 2, Color: color.RGBA{0, 0, 255, 255}, Alpha: 0.5},
		{Order: 1, Color: color.RGBA{0, 255, 0, 255}, Alpha: 1},
	}
	markup, err := r.GenerateCenterTileSVG(context.Background(), opts)
	if err != nil {
		t.Fatalf("GenerateCenterTileSVG: %v", err)
	}

	green := strings.Index(markup, "#00ff00")
	blue := strings.Index(markup, "#0000ff")
	if green < 0 || blue < 0 || green > blue {
		t.Errorf("backgrounds out of order: green at %d, blue at %d", green, blue)
	}
}
