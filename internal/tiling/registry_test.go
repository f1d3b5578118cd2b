package tiling

import (
	"testing"

	"pattern-tiler/internal/scene"
)

func TestCreateUniqueIDs(t *testing.T) {
	r := NewRegistry(scene.New(), nil)

	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		id := r.Create()
		if seen[id] {
			t.Fatalf("duplicate group id %q after %d creations", id, i)
		}
		seen[id] = true
	}
}

func TestAdoptPreventsCollision(t *testing.T) {
	r := NewRegistry(scene.New(), nil)

	r.Adopt("mg-500")
	if id := r.Create(); id != "mg-501" {
		t.Errorf("Create after Adopt = %q, want mg-501", id)
	}

	// Ids that don't match the generated form are ignored.
	r.Adopt("legacy-group")
	if id := r.Create(); id != "mg-502" {
		t.Errorf("Create after foreign Adopt = %q, want mg-502", id)
	}
}

func TestPrimaryOf(t *testing.T) {
	r := NewRegistry(scene.New(), nil)
	id := r.Create()

	mirror := scene.NewObject("m", scene.KindRect, 1, 1)
	mirror.Tiled = &scene.TiledMetadata{IsMirror: true, MirrorGroupID: id}
	primary := scene.NewObject("p", scene.KindRect, 1, 1)
	primary.Tiled = &scene.TiledMetadata{IsMirror: false, MirrorGroupID: id}

	r.Register(id, mirror)
	r.Register(id, primary)

	if got := r.PrimaryOf(id); got != primary {
		t.Errorf("PrimaryOf = %v, want %v", got, primary)
	}
	if got := r.PrimaryOf("mg-absent"); got != nil {
		t.Errorf("PrimaryOf unknown group = %v, want nil", got)
	}
}

func TestRemoveGroup(t *testing.T) {
	canvas := scene.New()
	r := NewRegistry(canvas, nil)
	id := r.Create()

	for i := 0; i < 3; i++ {
		o := scene.NewObject("", scene.KindRect, 1, 1)
		o.Tiled = &scene.TiledMetadata{MirrorGroupID: id}
		canvas.Add(o)
		r.Register(id, o)
	}

	r.RemoveGroup(id)
	if len(canvas.Objects()) != 0 {
		t.Errorf("canvas still has %d objects", len(canvas.Objects()))
	}
	if r.MembersOf(id) != nil {
		t.Error("group should be dropped")
	}

	// Unknown ids don't panic and change nothing.
	r.RemoveGroup("mg-absent")
}
