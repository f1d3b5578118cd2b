// Package project provides project file handling and persistence.
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"time"

	"pattern-tiler/internal/scene"
	"pattern-tiler/internal/tiling"
	"pattern-tiler/pkg/geometry"
)

// Document represents a pattern project file (.ptproj). Only one
// entity per mirror group is stored; the grid is rebuilt on import.
type Document struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	TileSize float64  `json:"tile_size"`
	Mode     string   `json:"mode"`
	Layers   []Layer  `json:"layers,omitempty"`
	Entities []Entity `json:"entities"`
}

// Layer describes a drawing layer referenced by entities.
type Layer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Visible    bool   `json:"visible"`
	Locked     bool   `json:"locked,omitempty"`
	Background *Color `json:"background,omitempty"`
}

// Color is the serialized form of an RGBA color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// RGBA converts back to an image color.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// FromRGBA converts an image color for serialization.
func FromRGBA(c color.RGBA) Color {
	return Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Entity is one stored shape together with its tiling metadata. Stored
// entities are always the group's own-tile member, so IsMirror is false
// and TilePosition is (0,0) in well-formed files; both are serialized
// so external consumers see the full tag.
type Entity struct {
	ID      string              `json:"id"`
	Tiled   scene.TiledMetadata `json:"tiled_metadata"`
	LayerID string              `json:"layer_id"`

	Kind    string  `json:"kind"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	PathD   string  `json:"path_d,omitempty"`
	Fill    Color   `json:"fill"`
	Opacity float64 `json:"opacity"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	ScaleX float64 `json:"scale_x"`
	ScaleY float64 `json:"scale_y"`
	Angle  float64 `json:"angle"`
	FlipX  bool    `json:"flip_x,omitempty"`
	FlipY  bool    `json:"flip_y,omitempty"`
	SkewX  float64 `json:"skew_x,omitempty"`
	SkewY  float64 `json:"skew_y,omitempty"`
}

const (
	// Mode values stored in the project file.
	ModePhysical = "physical"
	ModeVirtual  = "virtual"
)

// New creates an empty project document.
func New(name string, tileSize float64, mode string) *Document {
	now := time.Now()
	return &Document{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
		TileSize: tileSize,
		Mode:     mode,
	}
}

// Load loads a project from a .ptproj file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Save saves the project to a file.
func (d *Document) Save(path string) error {
	d.Modified = time.Now()

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func modeString(m tiling.Mode) string {
	if m == tiling.ModeVirtual {
		return ModeVirtual
	}
	return ModePhysical
}

// Snapshot captures the engine's current pattern into a document. For
// every mirror group only the member at the group's own tile is
// stored; in virtual mode that is the canonical entity itself.
func Snapshot(name string, eng *tiling.Engine, layers []Layer) *Document {
	doc := New(name, eng.TileSize(), modeString(eng.Mode()))
	doc.Layers = layers

	reg := eng.Registry()
	for _, groupID := range reg.Groups() {
		for _, m := range reg.MembersOf(groupID) {
			if m.Tiled == nil || m.Tiled.TilePosition != (geometry.PointInt{}) {
				continue
			}
			doc.Entities = append(doc.Entities, snapshotEntity(m, groupID))
		}
	}
	return doc
}

func snapshotEntity(obj *scene.Object, groupID string) Entity {
	return Entity{
		ID: obj.ID,
		Tiled: scene.TiledMetadata{
			IsMirror:      obj.Tiled.IsMirror,
			MirrorGroupID: groupID,
			TilePosition:  obj.Tiled.TilePosition,
		},
		LayerID: obj.LayerID,
		Kind:    string(obj.Kind),
		Width:   obj.Width,
		Height:  obj.Height,
		PathD:   obj.PathD,
		Fill:    FromRGBA(obj.Fill),
		Opacity: obj.Opacity,
		X:       obj.X,
		Y:       obj.Y,
		ScaleX:  obj.ScaleX,
		ScaleY:  obj.ScaleY,
		Angle:   obj.Angle,
		FlipX:   obj.FlipX,
		FlipY:   obj.FlipY,
		SkewX:   obj.SkewX,
		SkewY:   obj.SkewY,
	}
}

// Import rebuilds the pattern on the given engine. Entities that fail
// to import are skipped; the joined error reports every failure while
// the count reflects what actually made it in.
func Import(ctx context.Context, eng *tiling.Engine, doc *Document) (int, error) {
	var (
		imported int
		errs     []error
	)
	for _, e := range doc.Entities {
		// Only own-tile members are stored; mirror copies are rebuilt,
		// never imported, or the grid would double up.
		if e.Tiled.IsMirror || e.Tiled.TilePosition != (geometry.PointInt{}) {
			errs = append(errs, fmt.Errorf("entity %s: tagged as mirror copy at tile (%d,%d)",
				e.ID, e.Tiled.TilePosition.X, e.Tiled.TilePosition.Y))
			continue
		}
		obj, err := entityObject(e)
		if err != nil {
			errs = append(errs, fmt.Errorf("entity %s: %w", e.ID, err))
			continue
		}
		click := geometry.Point2D{X: e.X, Y: e.Y}

		switch doc.Mode {
		case ModeVirtual:
			_, err = eng.CreateCanonicalObject(obj, click, e.LayerID, e.Tiled.MirrorGroupID)
		default:
			_, err = eng.CreateTiledObject(ctx, obj, click, e.LayerID, e.Tiled.MirrorGroupID)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("entity %s: %w", e.ID, err))
			continue
		}
		imported++
	}
	return imported, errors.Join(errs...)
}

func entityObject(e Entity) (*scene.Object, error) {
	kind := scene.Kind(e.Kind)
	switch kind {
	case scene.KindRect, scene.KindEllipse, scene.KindPath:
	default:
		return nil, fmt.Errorf("unknown entity kind %q", e.Kind)
	}

	obj := scene.NewObject(e.ID, kind, e.Width, e.Height)
	obj.PathD = e.PathD
	obj.Fill = e.Fill.RGBA()
	obj.Opacity = e.Opacity
	obj.TRS = geometry.TRS{
		X:      e.X,
		Y:      e.Y,
		ScaleX: e.ScaleX,
		ScaleY: e.ScaleY,
		Angle:  e.Angle,
		FlipX:  e.FlipX,
		FlipY:  e.FlipY,
		SkewX:  e.SkewX,
		SkewY:  e.SkewY,
	}
	obj.SetCoords()
	return obj, nil
}
