// Package geometry implements the map<->canvas transforms and visible tile
// culling for orthogonal, isometric and staggered/hexagonal tile maps.
//
// Every transform places a map coordinate at the pixel center of its tile:
// integer map coordinates name tiles and MapToCanvas(x, y) is the center of
// tile (x, y). CanvasToMap is the exact inverse.
package geometry

import (
	"math"

	"chosenoffset.com/tiledmap/internal/maploader"
)

// Point is a 2-component coordinate in either map or canvas space
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Params are the geometry parameters of a map
type Params struct {
	Orientation   maploader.Orientation
	TileWidth     float64 // Pixels
	TileHeight    float64 // Pixels
	MapWidth      int     // Tiles
	MapHeight     int     // Tiles
	StaggerAxis   maploader.StaggerAxis
	StaggerIndex  maploader.StaggerIndex
	HexSideLength float64 // Pixels, hexagonal only
}

// ParamsFromMap extracts the geometry parameters of m.
func ParamsFromMap(m *maploader.Map) Params {
	return Params{
		Orientation:   m.Orientation,
		TileWidth:     float64(m.TileWidth),
		TileHeight:    float64(m.TileHeight),
		MapWidth:      m.Width,
		MapHeight:     m.Height,
		StaggerAxis:   m.StaggerAxis,
		StaggerIndex:  m.StaggerIndex,
		HexSideLength: float64(m.HexSideLength),
	}
}

// Transform converts between map and canvas coordinates and plans which
// tiles cover a viewport.
type Transform interface {
	// MapToCanvas returns the canvas pixel at the center of map coordinate p.
	MapToCanvas(p Point) Point
	// CanvasToMap is the inverse of MapToCanvas.
	CanvasToMap(p Point) Point
	// VisibleRange returns the tiles to visit to cover the viewport
	// expanded by margin tiles. The range is not clamped to the map.
	VisibleRange(left, top, width, height, margin float64) Range
	// Params returns the parameters the transform was built from.
	Params() Params
}

// New selects the transform for the orientation once, so the draw loop
// never branches on geometry per tile.
func New(p Params) Transform {
	switch p.Orientation {
	case maploader.Isometric:
		return &Isometric{p: p}
	case maploader.Staggered, maploader.Hexagonal:
		if p.Orientation == maploader.Staggered {
			// Staggered maps are hexagonal maps with zero side length.
			p.HexSideLength = 0
		}
		if p.StaggerAxis == maploader.StaggerY {
			return &StaggeredY{p: p, index: staggerIndex(p.StaggerIndex)}
		}
		return &StaggeredX{p: p, index: staggerIndex(p.StaggerIndex)}
	default:
		return &Orthogonal{p: p}
	}
}

// staggerIndex is 1 for "even" and 0 otherwise
func staggerIndex(si maploader.StaggerIndex) float64 {
	if si == maploader.StaggerEven {
		return 1
	}
	return 0
}

// PixelSize returns the size in pixels of the whole map canvas.
func PixelSize(p Params) (width, height float64) {
	w, h := float64(p.MapWidth), float64(p.MapHeight)
	switch p.Orientation {
	case maploader.Isometric:
		return (w + h) * p.TileWidth / 2, (w + h) * p.TileHeight / 2
	case maploader.Staggered, maploader.Hexagonal:
		side := p.HexSideLength
		if p.Orientation == maploader.Staggered {
			side = 0
		}
		if p.StaggerAxis == maploader.StaggerY {
			width = w*p.TileWidth + p.TileWidth/2
			height = h*(p.TileHeight+side)/2 + (p.TileHeight-side)/2
			return width, height
		}
		width = w*(p.TileWidth+side)/2 + (p.TileWidth-side)/2
		height = h*p.TileHeight + p.TileHeight/2
		return width, height
	default:
		return w * p.TileWidth, h * p.TileHeight
	}
}

// cornerBounds maps the four corners of the viewport to map space and
// returns the tiles whose footprint meets their enclosing box grown by
// margin. Tile c spans map coordinates [c-0.5, c+0.5).
func cornerBounds(t Transform, left, top, width, height, margin float64) (xstart, xstop, ystart, ystop int) {
	corners := [4]Point{
		t.CanvasToMap(Pt(left, top)),
		t.CanvasToMap(Pt(left+width, top)),
		t.CanvasToMap(Pt(left, top+height)),
		t.CanvasToMap(Pt(left+width, top+height)),
	}

	minX, maxX := corners[0].X, corners[0].X
	minY, maxY := corners[0].Y, corners[0].Y
	for _, c := range corners[1:] {
		minX = math.Min(minX, c.X)
		maxX = math.Max(maxX, c.X)
		minY = math.Min(minY, c.Y)
		maxY = math.Max(maxY, c.Y)
	}

	xstart = int(math.Floor(minX + 0.5 - margin))
	xstop = int(math.Ceil(maxX + 0.5 + margin))
	ystart = int(math.Floor(minY + 0.5 - margin))
	ystop = int(math.Ceil(maxY + 0.5 + margin))
	return xstart, xstop, ystart, ystop
}

// emptyViewport reports whether the viewport covers no pixels
func emptyViewport(width, height float64) bool {
	return !(width > 0) || !(height > 0)
}

// parityWave is 1 on even and 0 on odd integers, linear in between.
func parityWave(v float64) float64 {
	return math.Abs(math.Mod(math.Abs(v), 2) - 1)
}
