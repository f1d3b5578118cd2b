// Package export reconstructs a seamless single-tile image from the
// canonical pattern content: canonical entities are transiently cloned
// into the eight neighboring tile offsets, the composite is serialized
// to SVG restricted to the center tile, and the live document is
// restored regardless of the outcome. Separate steps rasterize the
// markup and encode the bitmap.
package export

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"sort"
	"strings"

	"pattern-tiler/internal/scene"
	"pattern-tiler/internal/tiling"
	"pattern-tiler/pkg/colorutil"
	"pattern-tiler/pkg/geometry"
)

// Background is one per-layer fill composited beneath the content.
type Background struct {
	Order int
	Color color.RGBA
	Alpha float64
}

// Options configures tile reconstruction.
type Options struct {
	// TileSize is the repeat distance; the output covers one tile.
	TileSize float64
	// Origin is the top-left corner of the center tile: (0,0) for
	// physical-strategy documents, (tileSize, tileSize) for virtual.
	Origin geometry.Point2D
	// BaseFill sits beneath everything. A zero alpha keeps the tile
	// transparent where nothing is drawn.
	BaseFill color.RGBA
	// Backgrounds are composited in ascending Order above the base
	// fill and beneath the content.
	Backgrounds []Background
}

// Reconstructor builds center-tile SVG documents from a canvas.
type Reconstructor struct {
	canvas *scene.Canvas

	// serialize writes the content elements; overridable in tests to
	// exercise the failure path.
	serialize func(io.Writer) error
}

// NewReconstructor creates a reconstructor over the given canvas.
func NewReconstructor(canvas *scene.Canvas) *Reconstructor {
	return &Reconstructor{
		canvas:    canvas,
		serialize: canvas.WriteSVGElements,
	}
}

// GenerateCenterTileSVG produces seamless single-tile vector markup.
//
// Canonical content (entities tagged with tiling metadata at tile
// offset (0,0)) is cloned into the eight neighboring offsets so shapes
// crossing a tile edge reappear on the opposite edge. Decorations and
// mirror copies are hidden for the duration. Every temporary mutation
// is reverted before returning, on failure as well as success.
func (r *Reconstructor) GenerateCenterTileSVG(ctx context.Context, opts Options) (markup string, err error) {
	ts := opts.TileSize
	if ts <= 0 {
		return "", fmt.Errorf("export: tile size %g must be positive", ts)
	}

	content := r.contentEntities()
	if len(content) == 0 {
		return r.emptyTileSVG(opts), nil
	}

	// The clone insertions below are scaffolding the canvas never
	// keeps. Muting stops their add/remove events from reaching
	// listeners, which would otherwise observe a half-exported scene
	// or trigger another export from inside this one.
	resume := r.canvas.Mute()
	defer resume()

	// Hide decorations (grid guides, proxies) and the physical
	// strategy's mirror copies; the clones below stand in for them.
	var hidden []*scene.Object
	for _, o := range r.canvas.Objects() {
		if !o.Visible {
			continue
		}
		if o.Decoration || (o.Tiled != nil && o.Tiled.TilePosition != (geometry.PointInt{})) {
			o.Visible = false
			hidden = append(hidden, o)
		}
	}
	defer func() {
		for _, o := range hidden {
			o.Visible = true
		}
	}()

	var clones []*scene.Object
	defer func() {
		for _, c := range clones {
			r.canvas.Remove(c)
		}
	}()

	for _, off := range tiling.NeighborOffsets {
		for _, src := range content {
			dup, cloneErr := r.canvas.Clone(ctx, src)
			if cloneErr != nil {
				return "", fmt.Errorf("export: clone for offset (%d,%d): %w", off.X, off.Y, cloneErr)
			}
			dup.X += float64(off.X) * ts
			dup.Y += float64(off.Y) * ts
			dup.SetCoords()
			r.canvas.Add(dup)
			clones = append(clones, dup)
		}
	}

	var b strings.Builder
	r.writeHeader(&b, opts)
	if err := r.serialize(&b); err != nil {
		return "", fmt.Errorf("export: serialize: %w", err)
	}
	b.WriteString("</svg>\n")
	return b.String(), nil
}

// contentEntities returns the canonical/primary entities: tagged with
// tiling metadata, sitting in the center tile, not decorations.
func (r *Reconstructor) contentEntities() []*scene.Object {
	var out []*scene.Object
	for _, o := range r.canvas.Objects() {
		if o.Decoration || o.Tiled == nil {
			continue
		}
		if o.Tiled.TilePosition == (geometry.PointInt{}) {
			out = append(out, o)
		}
	}
	return out
}

// emptyTileSVG is the minimal markup for a pattern with no content:
// just the base fill and layer backgrounds at tile size.
func (r *Reconstructor) emptyTileSVG(opts Options) string {
	var b strings.Builder
	r.writeHeader(&b, opts)
	b.WriteString("</svg>\n")
	return b.String()
}

func (r *Reconstructor) writeHeader(b *strings.Builder, opts Options) {
	ts := opts.TileSize
	fmt.Fprintf(b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="%g %g %g %g">`+"\n",
		ts, ts, opts.Origin.X, opts.Origin.Y, ts, ts)

	if opts.BaseFill.A > 0 {
		fmt.Fprintf(b, `  <rect x="%g" y="%g" width="%g" height="%g" fill="%s" fill-opacity="%g"/>`+"\n",
			opts.Origin.X, opts.Origin.Y, ts, ts,
			colorutil.Hex(opts.BaseFill), colorutil.Alpha(opts.BaseFill))
	}

	for _, bg := range sortedBackgrounds(opts.Backgrounds) {
		if bg.Alpha <= 0 {
			continue
		}
		fmt.Fprintf(b, `  <rect x="%g" y="%g" width="%g" height="%g" fill="%s" fill-opacity="%g"/>`+"\n",
			opts.Origin.X, opts.Origin.Y, ts, ts, colorutil.Hex(bg.Color), bg.Alpha)
	}
}

func sortedBackgrounds(in []Background) []Background {
	out := make([]Background, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
