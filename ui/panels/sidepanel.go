// Package panels provides the editing controls beside the preview.
package panels

import (
	"context"
	"fmt"
	"image/color"
	"sort"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"pattern-tiler/internal/app"
	"pattern-tiler/internal/scene"
	"pattern-tiler/internal/tiling"
	"pattern-tiler/pkg/colorutil"
	"pattern-tiler/pkg/geometry"
)

const nudgeStep = 8

var palette = []color.RGBA{
	{R: 0xD7, G: 0x26, B: 0x3B, A: 0xFF},
	{R: 0x00, G: 0x7A, B: 0xCC, A: 0xFF},
	{R: 0x2E, G: 0x7D, B: 0x32, A: 0xFF},
	{R: 0xF5, G: 0xA6, B: 0x23, A: 0xFF},
}

// SidePanel holds the shape tools, group selector, and transform
// controls.
type SidePanel struct {
	state  *app.State
	window fyne.Window

	groupSelect *widget.Select
	tileSize    *widget.Entry
	status      *widget.Label

	selectedGroup string
	// Target of transform controls: a real member in physical mode,
	// the group's proxy in virtual mode.
	target    *scene.Object
	nextColor int

	root fyne.CanvasObject
}

// New creates the side panel.
func New(state *app.State) *SidePanel {
	p := &SidePanel{state: state}
	p.buildUI()

	state.On(app.EventPatternChanged, func(interface{}) { p.refreshGroups() })
	state.On(app.EventProjectLoaded, func(interface{}) { p.refreshGroups() })
	return p
}

// SetWindow attaches the dialog parent.
func (p *SidePanel) SetWindow(w fyne.Window) {
	p.window = w
}

// Container returns the panel as a layout element.
func (p *SidePanel) Container() fyne.CanvasObject {
	return p.root
}

func (p *SidePanel) buildUI() {
	p.status = widget.NewLabel("")
	p.status.Wrapping = fyne.TextWrapWord

	addRect := widget.NewButton("Add Rectangle", func() {
		p.addShape(scene.KindRect, 96, 64)
	})
	addEllipse := widget.NewButton("Add Ellipse", func() {
		p.addShape(scene.KindEllipse, 80, 80)
	})

	p.groupSelect = widget.NewSelect(nil, p.onGroupSelected)
	p.groupSelect.PlaceHolder = "(no group)"

	deleteBtn := widget.NewButton("Delete Group", p.onDeleteGroup)

	p.tileSize = widget.NewEntry()
	p.tileSize.SetText(strconv.FormatFloat(p.state.Engine.TileSize(), 'f', -1, 64))
	applySize := widget.NewButton("Apply", p.onApplyTileSize)

	nudge := container.NewGridWithColumns(4,
		widget.NewButton("←", func() { p.moveTarget(-nudgeStep, 0) }),
		widget.NewButton("→", func() { p.moveTarget(nudgeStep, 0) }),
		widget.NewButton("↑", func() { p.moveTarget(0, -nudgeStep) }),
		widget.NewButton("↓", func() { p.moveTarget(0, nudgeStep) }),
	)
	rotate := container.NewGridWithColumns(2,
		widget.NewButton("⟲ 15°", func() { p.rotateTarget(-15) }),
		widget.NewButton("⟳ 15°", func() { p.rotateTarget(15) }),
	)
	scale := container.NewGridWithColumns(2,
		widget.NewButton("Smaller", func() { p.scaleTarget(1 / 1.1) }),
		widget.NewButton("Larger", func() { p.scaleTarget(1.1) }),
	)

	p.root = container.NewVBox(
		widget.NewLabelWithStyle("Shapes", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		addRect,
		addEllipse,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Groups", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.groupSelect,
		deleteBtn,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Transform", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nudge,
		rotate,
		scale,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Tile Size", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, nil, applySize, p.tileSize),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Background", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.backgroundRow(),
		p.status,
	)
}

func (p *SidePanel) backgroundRow() fyne.CanvasObject {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("#rrggbb")
	apply := widget.NewButton("Set", func() {
		c, err := colorutil.ParseHex(entry.Text)
		if err != nil {
			p.showError(err)
			return
		}
		p.state.SetLayerBackground(p.state.ActiveLayer(), c)
		p.state.Emit(app.EventPatternChanged, nil)
	})
	return container.NewBorder(nil, nil, nil, apply, entry)
}

func (p *SidePanel) addShape(kind scene.Kind, w, h float64) {
	fill := palette[p.nextColor%len(palette)]
	p.nextColor++

	ts := p.state.Engine.TileSize()
	at := geometry.Point2D{X: ts / 2, Y: ts / 2}
	if err := p.state.AddShape(context.Background(), kind, w, h, fill, at); err != nil {
		p.showError(err)
		return
	}
	p.refreshGroups()
}

func (p *SidePanel) refreshGroups() {
	groups := p.state.Engine.Registry().Groups()
	sort.Strings(groups)
	p.groupSelect.Options = groups
	p.groupSelect.Refresh()

	if p.selectedGroup != "" && !contains(groups, p.selectedGroup) {
		p.clearSelection()
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (p *SidePanel) onGroupSelected(groupID string) {
	p.clearSelection()
	if groupID == "" {
		return
	}
	p.selectedGroup = groupID

	if p.state.Mode() == tiling.ModeVirtual {
		proxy, err := p.state.Engine.SelectGroup(groupID)
		if err == nil && proxy != nil {
			p.target = proxy
			p.status.SetText("Editing " + groupID + " via proxy")
			return
		}
	}
	// Physical groups are edited through any real member.
	members := p.state.Engine.Registry().MembersOf(groupID)
	if len(members) > 0 {
		p.target = members[0]
		p.status.SetText("Editing " + groupID)
	}
}

func (p *SidePanel) clearSelection() {
	if p.selectedGroup != "" && p.state.Mode() == tiling.ModeVirtual {
		p.state.Engine.DeselectGroup(p.selectedGroup)
	}
	p.selectedGroup = ""
	p.target = nil
	p.status.SetText("")
}

func (p *SidePanel) onDeleteGroup() {
	if p.selectedGroup == "" {
		return
	}
	groupID := p.selectedGroup
	p.clearSelection()

	// The engine routes to the owning strategy; a legacy physical group
	// stays deletable after virtual mode is enabled.
	p.state.Engine.RemoveGroup(groupID)
	p.refreshGroups()
}

func (p *SidePanel) onApplyTileSize() {
	v, err := strconv.ParseFloat(p.tileSize.Text, 64)
	if err != nil {
		p.showError(fmt.Errorf("tile size: %w", err))
		return
	}
	if err := p.state.SetTileSize(v); err != nil {
		p.showError(err)
	}
}

func (p *SidePanel) moveTarget(dx, dy float64) {
	if p.target == nil {
		return
	}
	pos := p.target.Position()
	p.target.SetPosition(geometry.Point2D{X: pos.X + dx, Y: pos.Y + dy})
	p.target.SetCoords()
	p.emitTransform(scene.EventObjectMoving)
}

func (p *SidePanel) rotateTarget(deg float64) {
	if p.target == nil {
		return
	}
	p.target.Angle += deg
	p.target.SetCoords()
	p.emitTransform(scene.EventObjectRotating)
}

func (p *SidePanel) scaleTarget(factor float64) {
	if p.target == nil {
		return
	}
	p.target.ScaleX *= factor
	p.target.ScaleY *= factor
	p.target.SetCoords()
	p.emitTransform(scene.EventObjectScaling)
}

func (p *SidePanel) emitTransform(ev scene.EventType) {
	p.state.Canvas.Emit(scene.Event{Type: ev, Target: p.target})
	p.state.Canvas.Emit(scene.Event{Type: scene.EventObjectModified, Target: p.target})
}

func (p *SidePanel) showError(err error) {
	if p.window != nil {
		dialog.ShowError(err, p.window)
		return
	}
	p.status.SetText(err.Error())
}
