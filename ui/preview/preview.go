// Package preview renders the repeating pattern, ghost copies
// included, as a tiled image.
package preview

import (
	"context"
	"image"
	"image/draw"
	"log"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"

	"pattern-tiler/internal/app"
	"pattern-tiler/internal/export"
)

const tileResolution = 256

// TilePreview shows the center tile repeated in a grid so seams and
// wrapped copies are visible while editing.
type TilePreview struct {
	state  *app.State
	repeat int
	img    *fynecanvas.Image
}

// New creates a preview repeating the tile repeat times per axis.
func New(state *app.State, repeat int) *TilePreview {
	if repeat < 1 {
		repeat = 1
	}
	p := &TilePreview{
		state:  state,
		repeat: repeat,
		img:    fynecanvas.NewImageFromImage(blank(repeat)),
	}
	p.img.FillMode = fynecanvas.ImageFillContain
	p.img.ScaleMode = fynecanvas.ImageScalePixels
	return p
}

func blank(repeat int) image.Image {
	side := tileResolution * repeat
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

// Container returns the preview as a layout element.
func (p *TilePreview) Container() fyne.CanvasObject {
	return container.NewStack(p.img)
}

// InvalidateGhosts re-renders the preview. Registered with the tiling
// engine so canonical edits refresh the wrapped copies.
func (p *TilePreview) InvalidateGhosts() {
	p.Refresh()
}

// Refresh regenerates the tile and repaints the repeated grid.
func (p *TilePreview) Refresh() {
	markup, err := p.state.ExportTile(context.Background())
	if err != nil {
		log.Printf("preview: tile export failed: %v", err)
		return
	}
	tile, err := export.Rasterize(markup, tileResolution, export.SmoothingNone)
	if err != nil {
		log.Printf("preview: rasterize failed: %v", err)
		return
	}

	side := tileResolution * p.repeat
	grid := image.NewRGBA(image.Rect(0, 0, side, side))
	for ty := 0; ty < p.repeat; ty++ {
		for tx := 0; tx < p.repeat; tx++ {
			at := image.Rect(tx*tileResolution, ty*tileResolution,
				(tx+1)*tileResolution, (ty+1)*tileResolution)
			draw.Draw(grid, at, tile, image.Point{}, draw.Src)
		}
	}

	p.img.Image = grid
	p.img.Refresh()
}
