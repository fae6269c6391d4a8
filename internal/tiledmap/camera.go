package tiledmap

import (
	"chosenoffset.com/tiledmap/internal/geometry"
)

// Camera state is the state of the last draw. Between draws the getters
// keep returning it.

// CamCorner returns the top-left of the last camera, in map units when the
// position mode is PositionMap and canvas pixels otherwise.
func (t *TiledMap) CamCorner() geometry.Point {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inPositionMode(geometry.Pt(t.camLeft, t.camTop))
}

// CamCenter returns the center of the last camera, in the units of the
// position mode.
func (t *TiledMap) CamCenter() geometry.Point {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inPositionMode(geometry.Pt(t.camLeft+t.camWidth/2, t.camTop+t.camHeight/2))
}

// Position returns CamCorner or CamCenter, following the draw mode.
func (t *TiledMap) Position() geometry.Point {
	if t.DrawMode() == DrawCenter {
		return t.CamCenter()
	}
	return t.CamCorner()
}

func (t *TiledMap) inPositionMode(p geometry.Point) geometry.Point {
	if t.positionMode == PositionMap {
		return t.geo.CanvasToMap(p)
	}
	return p
}

// CamSize returns the size of the last drawing surface.
func (t *TiledMap) CamSize() (width, height float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.camWidth, t.camHeight
}

// SetCamSize overrides the camera size until the next draw, for
// calculations made before drawing.
func (t *TiledMap) SetCamSize(width, height float64) {
	t.mu.Lock()
	t.camWidth, t.camHeight = width, height
	t.mu.Unlock()
}

// DrawMargin returns the number of tiles drawn past the viewport.
func (t *TiledMap) DrawMargin() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.drawMargin
}

// SetDrawMargin sets the number of tiles drawn past the viewport.
func (t *TiledMap) SetDrawMargin(n float64) {
	t.mu.Lock()
	t.drawMargin = n
	t.mu.Unlock()
}

// DrawMode returns the draw mode.
func (t *TiledMap) DrawMode() DrawMode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.drawMode
}

// SetDrawMode sets the draw mode. Unknown modes are ignored.
func (t *TiledMap) SetDrawMode(m DrawMode) {
	if !m.valid() {
		return
	}
	t.mu.Lock()
	t.drawMode = m
	t.mu.Unlock()
}

// PositionMode returns the position mode.
func (t *TiledMap) PositionMode() PositionMode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.positionMode
}

// SetPositionMode sets the position mode. Unknown modes are ignored.
func (t *TiledMap) SetPositionMode(m PositionMode) {
	if !m.valid() {
		return
	}
	t.mu.Lock()
	t.positionMode = m
	t.mu.Unlock()
}

// MapToCanvas returns the canvas pixel at the center of map coordinate p.
func (t *TiledMap) MapToCanvas(p geometry.Point) geometry.Point {
	return t.geo.MapToCanvas(p)
}

// MapToCanvasXY is MapToCanvas for separate coordinates.
func (t *TiledMap) MapToCanvasXY(x, y float64) geometry.Point {
	return t.MapToCanvas(geometry.Pt(x, y))
}

// CanvasToMap returns the map coordinate at canvas pixel p.
func (t *TiledMap) CanvasToMap(p geometry.Point) geometry.Point {
	return t.geo.CanvasToMap(p)
}

// CanvasToMapXY is CanvasToMap for separate coordinates.
func (t *TiledMap) CanvasToMapXY(x, y float64) geometry.Point {
	return t.CanvasToMap(geometry.Pt(x, y))
}

// CamToCanvas converts a position relative to the last camera to canvas pixels.
func (t *TiledMap) CamToCanvas(p geometry.Point) geometry.Point {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.camToCanvas(p)
}

// CamToCanvasXY is CamToCanvas for separate coordinates.
func (t *TiledMap) CamToCanvasXY(x, y float64) geometry.Point {
	return t.CamToCanvas(geometry.Pt(x, y))
}

// CanvasToCam converts canvas pixels to a position relative to the last camera.
func (t *TiledMap) CanvasToCam(p geometry.Point) geometry.Point {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.canvasToCam(p)
}

// CanvasToCamXY is CanvasToCam for separate coordinates.
func (t *TiledMap) CanvasToCamXY(x, y float64) geometry.Point {
	return t.CanvasToCam(geometry.Pt(x, y))
}

// MapToCam returns the center of map coordinate p relative to the last camera.
func (t *TiledMap) MapToCam(p geometry.Point) geometry.Point {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mapToCam(p)
}

// MapToCamXY is MapToCam for separate coordinates.
func (t *TiledMap) MapToCamXY(x, y float64) geometry.Point {
	return t.MapToCam(geometry.Pt(x, y))
}

// CamToMap returns the map coordinate under a position relative to the last
// camera.
func (t *TiledMap) CamToMap(p geometry.Point) geometry.Point {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.geo.CanvasToMap(t.camToCanvas(p))
}

// CamToMapXY is CamToMap for separate coordinates.
func (t *TiledMap) CamToMapXY(x, y float64) geometry.Point {
	return t.CamToMap(geometry.Pt(x, y))
}

func (t *TiledMap) camToCanvas(p geometry.Point) geometry.Point {
	return geometry.Pt(p.X+t.camLeft, p.Y+t.camTop)
}

func (t *TiledMap) canvasToCam(p geometry.Point) geometry.Point {
	return geometry.Pt(p.X-t.camLeft, p.Y-t.camTop)
}

func (t *TiledMap) mapToCam(p geometry.Point) geometry.Point {
	return t.canvasToCam(t.geo.MapToCanvas(p))
}
