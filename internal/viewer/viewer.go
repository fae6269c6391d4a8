// Package viewer scrolls a camera over a tiled map. It implements
// render.Game, so any render.Engine can run it.
package viewer

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"chosenoffset.com/tiledmap/internal/geometry"
	"chosenoffset.com/tiledmap/internal/maploader"
	"chosenoffset.com/tiledmap/internal/render"
	"chosenoffset.com/tiledmap/internal/tiledmap"
)

// ErrQuit is returned from Update when the user asks to leave.
var ErrQuit = errors.New("viewer closed")

// TextFunc draws one line of overlay text.
type TextFunc func(dst render.Image, str string, x, y int)

// Config holds everything a Viewer needs
type Config struct {
	Registry    *maploader.Registry
	MapName     string
	Options     tiledmap.Options
	Camera      geometry.Point // Initial camera position
	ScrollSpeed float64        // Canvas pixels per tick
	Width       int
	Height      int
	Text        TextFunc // Overlay text; nil disables the overlay
	Logger      *zap.Logger
}

// Viewer is the map viewer's main loop state.
type Viewer struct {
	cfg      Config
	renderer render.Renderer
	input    render.InputManager
	loader   render.ResourceLoader
	log      *zap.Logger

	tm     *tiledmap.TiledMap
	cam    geometry.Point
	width  int
	height int

	clicking bool
}

// New creates a viewer. The map is built on the first Update, once the
// backend can create images.
func New(cfg Config, r render.Renderer, input render.InputManager, loader render.ResourceLoader) *Viewer {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.ScrollSpeed <= 0 {
		cfg.ScrollSpeed = 4
	}
	return &Viewer{
		cfg:      cfg,
		renderer: r,
		input:    input,
		loader:   loader,
		log:      log,
		cam:      cfg.Camera,
		width:    cfg.Width,
		height:   cfg.Height,
	}
}

// Map returns the displayed map, nil before the first Update.
func (v *Viewer) Map() *tiledmap.TiledMap {
	return v.tm
}

// Camera returns the camera position, in the units of the position mode.
func (v *Viewer) Camera() geometry.Point {
	return v.cam
}

// Update handles input.
func (v *Viewer) Update() error {
	if v.tm == nil {
		opts := v.cfg.Options
		opts.Logger = v.log
		tm, err := tiledmap.Load(v.cfg.Registry, v.cfg.MapName, v.renderer, v.loader, opts)
		if err != nil {
			return fmt.Errorf("failed to open map %s: %w", v.cfg.MapName, err)
		}
		tm.SetCamSize(float64(v.width), float64(v.height))
		v.tm = tm
	}

	if v.input.IsKeyJustPressed(render.KeyEscape) {
		return ErrQuit
	}
	if v.input.IsKeyJustPressed(render.KeyM) {
		v.togglePositionMode()
	}
	if v.input.IsKeyJustPressed(render.KeyC) {
		v.toggleDrawMode()
	}
	if v.input.IsKeyJustPressed(render.KeySpace) {
		v.cam = v.cfg.Camera
	}

	v.scroll()
	v.inspect()
	return nil
}

// scroll moves the camera. Canvas positions scroll smoothly while keys are
// held; map positions step one cell per press.
func (v *Viewer) scroll() {
	var dx, dy float64
	held := v.input.IsKeyPressed
	if v.tm.PositionMode() == tiledmap.PositionMap {
		held = v.input.IsKeyJustPressed
	}
	if held(render.KeyA) || held(render.KeyLeft) {
		dx--
	}
	if held(render.KeyD) || held(render.KeyRight) {
		dx++
	}
	if held(render.KeyW) || held(render.KeyUp) {
		dy--
	}
	if held(render.KeyS) || held(render.KeyDown) {
		dy++
	}
	if v.tm.PositionMode() == tiledmap.PositionCanvas {
		dx *= v.cfg.ScrollSpeed
		dy *= v.cfg.ScrollSpeed
	}
	v.cam = v.cam.Add(geometry.Pt(dx, dy))
}

// inspect logs the cell under the cursor on click
func (v *Viewer) inspect() {
	pressed := v.input.IsMouseButtonPressed(render.MouseButtonLeft)
	defer func() { v.clicking = pressed }()
	if !pressed || v.clicking {
		return
	}

	x, y := v.input.GetCursorPosition()
	cell := v.tm.CamToMapXY(float64(x), float64(y))
	col, row := int(math.Round(cell.X)), int(math.Round(cell.Y))
	fields := []zap.Field{
		zap.Int("cursor_x", x),
		zap.Int("cursor_y", y),
		zap.Int("col", col),
		zap.Int("row", row),
	}
	for n := 0; n < v.tm.LayerCount(); n++ {
		gid, ok, err := v.tm.TileIndex(n, col, row)
		if err != nil || !ok || gid == 0 {
			continue
		}
		name, _ := v.tm.LayerName(n)
		fields = append(fields, zap.Uint32(name, gid))
	}
	v.log.Info("cell", fields...)
}

// togglePositionMode switches between canvas and map positions, keeping the
// camera where it is.
func (v *Viewer) togglePositionMode() {
	canvas := v.toCanvas(v.cam)
	if v.tm.PositionMode() == tiledmap.PositionCanvas {
		v.tm.SetPositionMode(tiledmap.PositionMap)
	} else {
		v.tm.SetPositionMode(tiledmap.PositionCanvas)
	}
	v.cam = v.fromCanvas(canvas)
	v.log.Debug("position mode", zap.Stringer("mode", v.tm.PositionMode()))
}

// toggleDrawMode switches between corner and center cameras, keeping the
// view where it is.
func (v *Viewer) toggleDrawMode() {
	canvas := v.toCanvas(v.cam)
	half := geometry.Pt(float64(v.width)/2, float64(v.height)/2)
	if v.tm.DrawMode() == tiledmap.DrawCorner {
		v.tm.SetDrawMode(tiledmap.DrawCenter)
		canvas = canvas.Add(half)
	} else {
		v.tm.SetDrawMode(tiledmap.DrawCorner)
		canvas = canvas.Sub(half)
	}
	v.cam = v.fromCanvas(canvas)
	v.log.Debug("draw mode", zap.Stringer("mode", v.tm.DrawMode()))
}

func (v *Viewer) toCanvas(p geometry.Point) geometry.Point {
	if v.tm.PositionMode() == tiledmap.PositionMap {
		return v.tm.MapToCanvas(p)
	}
	return p
}

func (v *Viewer) fromCanvas(p geometry.Point) geometry.Point {
	if v.tm.PositionMode() == tiledmap.PositionMap {
		return v.tm.CanvasToMap(p)
	}
	return p
}

// Draw draws the map and the overlay.
func (v *Viewer) Draw(screen render.Image) {
	if v.tm == nil {
		return
	}
	screen.Fill(v.tm.BackgroundColor())

	if !v.tm.IsReady() {
		v.text(screen, "Loading "+v.tm.Name()+"...", 8, 8)
		return
	}
	if err := v.tm.Draw(v.cam.X, v.cam.Y, screen); err != nil {
		v.log.Error("draw failed", zap.Error(err))
	}

	corner := v.tm.CamCorner()
	v.text(screen, fmt.Sprintf("%s (%s) %s/%s", v.tm.Name(), v.tm.Orientation(), v.tm.DrawMode(), v.tm.PositionMode()), 8, 8)
	v.text(screen, fmt.Sprintf("camera %.1f,%.1f  corner %.1f,%.1f", v.cam.X, v.cam.Y, corner.X, corner.Y), 8, 24)
	v.text(screen, "WASD/arrows scroll  M position mode  C draw mode  Space reset  Esc quit", 8, 40)
}

func (v *Viewer) text(screen render.Image, s string, x, y int) {
	if v.cfg.Text != nil {
		v.cfg.Text(screen, s, x, y)
	}
}

// Layout follows the window size.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.width, v.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
