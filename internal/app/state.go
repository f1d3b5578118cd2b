// Package app provides application lifecycle management, configuration, and events.
package app

import (
	"context"
	"fmt"
	"image/color"
	"sync"

	"pattern-tiler/internal/config"
	"pattern-tiler/internal/export"
	"pattern-tiler/internal/project"
	"pattern-tiler/internal/scene"
	"pattern-tiler/internal/tiling"
	"pattern-tiler/pkg/geometry"
)

// EventType identifies different application events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventModified
	EventTileSizeChanged
	EventLayersChanged
	EventPatternChanged
	EventSelectionChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Layer is a drawing layer shapes are assigned to.
type Layer struct {
	ID         string
	Name       string
	Visible    bool
	Locked     bool
	Background *color.RGBA
}

// State holds the application state: the live document, the tiling
// engine driving it, and the layer list.
type State struct {
	mu sync.RWMutex

	Canvas *scene.Canvas
	Engine *tiling.Engine
	Config config.Config

	ProjectPath string
	ProjectName string
	Modified    bool

	layers  []Layer
	nextLay int
	mode    tiling.Mode

	listeners map[EventType][]EventListener
}

// NewState creates the application state with one default layer. The
// engine starts in physical mode; call EnableVirtualMode to switch new
// shapes to canonical storage.
func NewState(cfg config.Config) (*State, error) {
	canvas := scene.New()
	eng, err := tiling.NewEngine(canvas, nil, cfg.TileSize)
	if err != nil {
		return nil, err
	}

	s := &State{
		Canvas:      canvas,
		Engine:      eng,
		Config:      cfg,
		ProjectName: "untitled",
		listeners:   make(map[EventType][]EventListener),
	}
	s.AddLayer("Base")
	s.watchCanvas(canvas)
	return s, nil
}

func (s *State) watchCanvas(canvas *scene.Canvas) {
	touched := func(scene.Event) {
		s.SetModified(true)
		s.Emit(EventPatternChanged, nil)
	}
	canvas.On(scene.EventObjectModified, touched)
	canvas.On(scene.EventObjectAdded, touched)
	canvas.On(scene.EventObjectRemoved, touched)
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	changed := s.Modified != modified
	s.Modified = modified
	s.mu.Unlock()
	if changed {
		s.Emit(EventModified, modified)
	}
}

// EnableVirtualMode switches the engine so new shapes are stored
// canonically instead of as replicated grids.
func (s *State) EnableVirtualMode() {
	store := tiling.NewCanonicalStore()
	s.Engine.EnableVirtualTiling(store, tiling.NewProxyManager(s.Canvas, store, s.Engine.TileSize))
	s.mu.Lock()
	s.mode = tiling.ModeVirtual
	s.mu.Unlock()
}

// Mode reports how new shapes are tiled.
func (s *State) Mode() tiling.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetTileSize changes the tile size for future shapes. Existing groups
// keep their spacing.
func (s *State) SetTileSize(size float64) error {
	if err := s.Engine.SetTileSize(size); err != nil {
		return err
	}
	s.SetModified(true)
	s.Emit(EventTileSizeChanged, size)
	return nil
}

// AddLayer appends a visible layer and returns its id.
func (s *State) AddLayer(name string) string {
	s.mu.Lock()
	s.nextLay++
	id := fmt.Sprintf("layer-%d", s.nextLay)
	s.layers = append(s.layers, Layer{ID: id, Name: name, Visible: true})
	s.mu.Unlock()

	s.Emit(EventLayersChanged, nil)
	return id
}

// Layers returns a copy of the layer list.
func (s *State) Layers() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// ActiveLayer returns the id of the layer new shapes go to.
func (s *State) ActiveLayer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.layers) == 0 {
		return ""
	}
	return s.layers[len(s.layers)-1].ID
}

// SetLayerBackground sets a layer's fill used behind exported tiles.
func (s *State) SetLayerBackground(layerID string, c color.RGBA) {
	s.mu.Lock()
	for i := range s.layers {
		if s.layers[i].ID == layerID {
			s.layers[i].Background = &c
		}
	}
	s.mu.Unlock()
	s.Emit(EventLayersChanged, nil)
}

// Backgrounds converts layer fills to export background entries in
// layer order.
func (s *State) Backgrounds() []export.Background {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []export.Background
	for i, l := range s.layers {
		if l.Background == nil {
			continue
		}
		out = append(out, export.Background{
			Order: i,
			Color: *l.Background,
			Alpha: float64(l.Background.A) / 255,
		})
	}
	return out
}

// AddShape creates a shape at the given point and tiles it according
// to the current mode.
func (s *State) AddShape(ctx context.Context, kind scene.Kind, width, height float64, fill color.RGBA, at geometry.Point2D) error {
	obj := scene.NewObject(s.Canvas.NewID(string(kind)), kind, width, height)
	obj.Fill = fill
	layerID := s.ActiveLayer()

	var err error
	if s.Mode() == tiling.ModeVirtual {
		_, err = s.Engine.CreateCanonicalObject(obj, at, layerID, "")
	} else {
		_, err = s.Engine.CreateTiledObject(ctx, obj, at, layerID, "")
	}
	return err
}

// NewProject clears the document back to an empty pattern in
// physical mode.
func (s *State) NewProject() error {
	canvas := scene.New()
	eng, err := tiling.NewEngine(canvas, nil, s.Config.TileSize)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Canvas = canvas
	s.Engine = eng
	s.mode = tiling.ModePhysical
	s.layers = nil
	s.nextLay = 0
	s.ProjectPath = ""
	s.ProjectName = "untitled"
	s.Modified = false
	s.mu.Unlock()

	s.AddLayer("Base")
	s.watchCanvas(canvas)
	s.Emit(EventLayersChanged, nil)
	s.Emit(EventPatternChanged, nil)
	return nil
}

// ExportTile produces the center tile as SVG markup. The exporter
// temporarily mutates the canvas, so the modified flag is restored
// afterwards.
func (s *State) ExportTile(ctx context.Context) (string, error) {
	s.mu.RLock()
	wasModified := s.Modified
	s.mu.RUnlock()

	origin := geometry.Point2D{}
	if s.Mode() == tiling.ModeVirtual {
		ts := s.Engine.TileSize()
		origin = geometry.Point2D{X: ts, Y: ts}
	}
	r := export.NewReconstructor(s.Canvas)
	markup, err := r.GenerateCenterTileSVG(ctx, export.Options{
		TileSize:    s.Engine.TileSize(),
		Origin:      origin,
		Backgrounds: s.Backgrounds(),
	})

	s.mu.Lock()
	s.Modified = wasModified
	s.mu.Unlock()
	return markup, err
}

// LoadProject replaces the current document with the saved one.
func (s *State) LoadProject(ctx context.Context, path string) error {
	doc, err := project.Load(path)
	if err != nil {
		return err
	}

	canvas := scene.New()
	eng, err := tiling.NewEngine(canvas, nil, doc.TileSize)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Canvas = canvas
	s.Engine = eng
	s.mode = tiling.ModePhysical
	s.layers = nil
	for _, l := range doc.Layers {
		layer := Layer{ID: l.ID, Name: l.Name, Visible: l.Visible, Locked: l.Locked}
		if l.Background != nil {
			c := l.Background.RGBA()
			layer.Background = &c
		}
		s.layers = append(s.layers, layer)
	}
	s.nextLay = len(s.layers)
	s.mu.Unlock()
	s.watchCanvas(canvas)

	if doc.Mode == project.ModeVirtual {
		s.EnableVirtualMode()
	}
	if len(s.Layers()) == 0 {
		s.AddLayer("Base")
	}

	imported, err := project.Import(ctx, s.Engine, doc)
	if err != nil && imported == 0 {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.ProjectName = doc.Name
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventLayersChanged, nil)
	s.Emit(EventProjectLoaded, path)
	// Partial imports keep the loaded entities but report what failed.
	return err
}

// SaveProject snapshots the document to the given path.
func (s *State) SaveProject(path string) error {
	s.mu.RLock()
	name := s.ProjectName
	layers := make([]project.Layer, len(s.layers))
	for i, l := range s.layers {
		layers[i] = project.Layer{ID: l.ID, Name: l.Name, Visible: l.Visible, Locked: l.Locked}
		if l.Background != nil {
			c := project.FromRGBA(*l.Background)
			layers[i].Background = &c
		}
	}
	s.mu.RUnlock()

	doc := project.Snapshot(name, s.Engine, layers)
	if err := doc.Save(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventProjectSaved, path)
	return nil
}
