package project

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pattern-tiler/internal/scene"
	"pattern-tiler/internal/tiling"
	"pattern-tiler/pkg/geometry"
)

func physicalEngine(t *testing.T) (*tiling.Engine, *scene.Canvas) {
	t.Helper()
	canvas := scene.New()
	eng, err := tiling.NewEngine(canvas, nil, 256)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng, canvas
}

func virtualEngine(t *testing.T) (*tiling.Engine, *scene.Canvas) {
	t.Helper()
	eng, canvas := physicalEngine(t)
	store := tiling.NewCanonicalStore()
	eng.EnableVirtualTiling(store, tiling.NewProxyManager(canvas, store, eng.TileSize))
	return eng, canvas
}

func TestSaveLoadRoundTrip(t *testing.T) {
	doc := New("weave", 256, ModePhysical)
	doc.Layers = []Layer{{ID: "l1", Name: "Base", Visible: true}}
	doc.Entities = []Entity{{
		ID:      "e1",
		Tiled:   scene.TiledMetadata{MirrorGroupID: "mg-1"},
		LayerID: "l1",
		Kind:    "rect", Width: 40, Height: 20,
		Fill: Color{R: 255, A: 255}, Opacity: 1,
		X: 10, Y: 30, ScaleX: 2, ScaleY: 1, Angle: 45,
	}}

	path := filepath.Join(t.TempDir(), "weave.ptproj")
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name != "weave" || loaded.TileSize != 256 || loaded.Mode != ModePhysical {
		t.Errorf("header mismatch: %+v", loaded)
	}
	if len(loaded.Entities) != 1 || loaded.Entities[0] != doc.Entities[0] {
		t.Errorf("entities mismatch: %+v", loaded.Entities)
	}
	if loaded.Modified.Before(loaded.Created) {
		t.Error("modified timestamp not refreshed on save")
	}
}

func TestSaveWritesTiledMetadata(t *testing.T) {
	eng, _ := physicalEngine(t)
	a := scene.NewObject("a", scene.KindRect, 40, 40)
	if _, err := eng.CreateTiledObject(context.Background(), a, geometry.Point2D{X: 10, Y: 20}, "l1", ""); err != nil {
		t.Fatalf("CreateTiledObject: %v", err)
	}

	doc := Snapshot("p", eng, nil)
	path := filepath.Join(t.TempDir(), "p.ptproj")
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, key := range []string{`"tiled_metadata"`, `"is_mirror"`, `"mirror_group_id"`, `"tile_position"`} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("serialized entity missing %s", key)
		}
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := loaded.Entities[0].Tiled
	if got != doc.Entities[0].Tiled {
		t.Errorf("metadata round trip: %+v != %+v", got, doc.Entities[0].Tiled)
	}
	if got.IsMirror || got.TilePosition != (geometry.PointInt{}) {
		t.Errorf("own-tile entity tagged as mirror: %+v", got)
	}
}

func TestImportRejectsMirrorEntities(t *testing.T) {
	doc := New("p", 256, ModePhysical)
	doc.Entities = []Entity{
		{
			ID:    "copy",
			Tiled: scene.TiledMetadata{IsMirror: true, MirrorGroupID: "mg-1", TilePosition: geometry.PointInt{X: 1, Y: -1}},
			Kind:  "rect", Width: 10, Height: 10, ScaleX: 1, ScaleY: 1, Opacity: 1,
		},
		{
			ID:    "own",
			Tiled: scene.TiledMetadata{MirrorGroupID: "mg-1"},
			Kind:  "rect", Width: 10, Height: 10, ScaleX: 1, ScaleY: 1, Opacity: 1,
		},
	}

	dst, canvas := physicalEngine(t)
	n, err := Import(context.Background(), dst, doc)
	if err == nil || !strings.Contains(err.Error(), "copy") {
		t.Fatalf("err = %v, want failure naming the mirror entity", err)
	}
	if n != 1 {
		t.Errorf("imported = %d, want own-tile entity only", n)
	}
	// One group of 25, not a doubled grid.
	if got := len(canvas.Objects()); got != 25 {
		t.Errorf("object count = %d", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.ptproj")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSnapshotPhysical(t *testing.T) {
	eng, _ := physicalEngine(t)

	a := scene.NewObject("a", scene.KindRect, 40, 40)
	a.Fill = color.RGBA{R: 200, A: 255}
	if _, err := eng.CreateTiledObject(context.Background(), a, geometry.Point2D{X: 10, Y: 20}, "l1", ""); err != nil {
		t.Fatalf("CreateTiledObject: %v", err)
	}
	b := scene.NewObject("b", scene.KindEllipse, 30, 30)
	if _, err := eng.CreateTiledObject(context.Background(), b, geometry.Point2D{X: 100, Y: 100}, "l1", ""); err != nil {
		t.Fatalf("CreateTiledObject: %v", err)
	}

	doc := Snapshot("p", eng, nil)
	if doc.Mode != ModePhysical {
		t.Errorf("mode = %q", doc.Mode)
	}
	if len(doc.Entities) != 2 {
		t.Fatalf("entity count = %d, want one per group", len(doc.Entities))
	}
	byID := map[string]Entity{}
	for _, e := range doc.Entities {
		byID[e.ID] = e
	}
	ea, ok := byID["a"]
	if !ok {
		t.Fatal("source entity a not captured")
	}
	if !strings.HasPrefix(ea.Tiled.MirrorGroupID, "mg-") {
		t.Errorf("group id = %q", ea.Tiled.MirrorGroupID)
	}
	if ea.Tiled.IsMirror || ea.Tiled.TilePosition != (geometry.PointInt{}) {
		t.Errorf("stored entity tagged as mirror: %+v", ea.Tiled)
	}
	if ea.X != 10 || ea.Y != 20 {
		t.Errorf("position = (%v,%v), want normalized click", ea.X, ea.Y)
	}
	if ea.Fill != (Color{R: 200, A: 255}) {
		t.Errorf("fill = %+v", ea.Fill)
	}
}

func TestSnapshotVirtual(t *testing.T) {
	eng, _ := virtualEngine(t)

	src := scene.NewObject("c", scene.KindRect, 64, 64)
	groupID, err := eng.CreateCanonicalObject(src, geometry.Point2D{X: 300, Y: 300}, "l1", "")
	if err != nil {
		t.Fatalf("CreateCanonicalObject: %v", err)
	}

	doc := Snapshot("p", eng, nil)
	if doc.Mode != ModeVirtual {
		t.Errorf("mode = %q", doc.Mode)
	}
	if len(doc.Entities) != 1 {
		t.Fatalf("entity count = %d", len(doc.Entities))
	}
	if doc.Entities[0].Tiled.MirrorGroupID != groupID {
		t.Errorf("group id = %q, want %q", doc.Entities[0].Tiled.MirrorGroupID, groupID)
	}
}

func TestImportPhysicalRebuildsGrid(t *testing.T) {
	src, _ := physicalEngine(t)
	a := scene.NewObject("a", scene.KindRect, 40, 40)
	a.Angle = 30
	if _, err := src.CreateTiledObject(context.Background(), a, geometry.Point2D{X: 10, Y: 20}, "l1", ""); err != nil {
		t.Fatalf("CreateTiledObject: %v", err)
	}
	doc := Snapshot("p", src, nil)

	dst, canvas := physicalEngine(t)
	n, err := Import(context.Background(), dst, doc)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 1 {
		t.Errorf("imported = %d, want 1", n)
	}
	if got := len(canvas.Objects()); got != 25 {
		t.Errorf("object count = %d, want full grid", got)
	}

	groups := dst.Registry().Groups()
	if len(groups) != 1 || groups[0] != doc.Entities[0].Tiled.MirrorGroupID {
		t.Errorf("groups = %v, want preserved id %q", groups, doc.Entities[0].Tiled.MirrorGroupID)
	}
	for _, m := range dst.Registry().MembersOf(groups[0]) {
		if m.Angle != 30 {
			t.Errorf("member %s angle = %v, want 30", m.ID, m.Angle)
		}
	}
}

func TestImportVirtual(t *testing.T) {
	src, _ := virtualEngine(t)
	c := scene.NewObject("c", scene.KindEllipse, 50, 50)
	if _, err := src.CreateCanonicalObject(c, geometry.Point2D{X: 300, Y: 300}, "l1", ""); err != nil {
		t.Fatalf("CreateCanonicalObject: %v", err)
	}
	doc := Snapshot("p", src, nil)

	dst, canvas := virtualEngine(t)
	n, err := Import(context.Background(), dst, doc)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 1 {
		t.Errorf("imported = %d, want 1", n)
	}
	if got := len(canvas.Objects()); got != 1 {
		t.Errorf("object count = %d, want single canonical entity", got)
	}
	if got := dst.Registry().Groups(); len(got) != 1 || got[0] != doc.Entities[0].Tiled.MirrorGroupID {
		t.Errorf("groups = %v", got)
	}
}

func TestImportSkipsBadEntities(t *testing.T) {
	doc := New("p", 256, ModePhysical)
	doc.Entities = []Entity{
		{ID: "bad", Tiled: scene.TiledMetadata{MirrorGroupID: "mg-1"}, Kind: "hexagon", ScaleX: 1, ScaleY: 1, Opacity: 1},
		{ID: "ok", Tiled: scene.TiledMetadata{MirrorGroupID: "mg-2"}, Kind: "rect", Width: 10, Height: 10, ScaleX: 1, ScaleY: 1, Opacity: 1},
	}

	dst, canvas := physicalEngine(t)
	n, err := Import(context.Background(), dst, doc)
	if err == nil {
		t.Fatal("expected joined error for bad entity")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error does not name failed entity: %v", err)
	}
	if n != 1 {
		t.Errorf("imported = %d, want the good entity only", n)
	}
	if got := len(canvas.Objects()); got != 25 {
		t.Errorf("object count = %d", got)
	}
}

func TestImportPreservedIDsDoNotCollide(t *testing.T) {
	doc := New("p", 256, ModePhysical)
	doc.Entities = []Entity{
		{ID: "e1", Tiled: scene.TiledMetadata{MirrorGroupID: "mg-7"}, Kind: "rect", Width: 10, Height: 10, ScaleX: 1, ScaleY: 1, Opacity: 1},
	}

	dst, canvas := physicalEngine(t)
	if _, err := Import(context.Background(), dst, doc); err != nil {
		t.Fatalf("Import: %v", err)
	}

	// New groups minted after import must not reuse mg-7.
	fresh := scene.NewObject("f", scene.KindRect, 10, 10)
	if _, err := dst.CreateTiledObject(context.Background(), fresh, geometry.Point2D{}, "l1", ""); err != nil {
		t.Fatalf("CreateTiledObject: %v", err)
	}
	if fresh.Tiled.MirrorGroupID == "mg-7" {
		t.Error("minted group id collided with imported id")
	}
	if got := len(canvas.Objects()); got != 50 {
		t.Errorf("object count = %d", got)
	}
}
