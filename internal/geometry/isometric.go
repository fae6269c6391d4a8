package geometry

// Isometric is the diamond projection. Tile (0, 0) sits at the top apex,
// horizontally centered on the map canvas.
type Isometric struct {
	p Params
}

// originX is the canvas x of the diamond apex
func (i *Isometric) originX() float64 {
	return float64(i.p.MapWidth+i.p.MapHeight) * i.p.TileWidth / 4
}

// MapToCanvas implements Transform.
func (i *Isometric) MapToCanvas(p Point) Point {
	return Point{
		X: i.originX() + (p.X-p.Y)*i.p.TileWidth/2,
		Y: (p.X + p.Y + 1) * i.p.TileHeight / 2,
	}
}

// CanvasToMap implements Transform by solving the 2x2 projection for (x, y).
func (i *Isometric) CanvasToMap(p Point) Point {
	u := p.Y / i.p.TileHeight
	v := (p.X - i.originX()) / i.p.TileWidth
	return Point{
		X: u + v - 0.5,
		Y: u - v - 0.5,
	}
}

// VisibleRange implements Transform. The viewport maps to a rotated square
// in map space; the plan scans its enclosing box row by row.
func (i *Isometric) VisibleRange(left, top, width, height, margin float64) Range {
	if emptyViewport(width, height) {
		return Range{}
	}
	xstart, xstop, ystart, ystop := cornerBounds(i, left, top, width, height, margin)
	return Range{XStart: xstart, XStop: xstop, YStart: ystart, YStop: ystop}
}

// Params implements Transform.
func (i *Isometric) Params() Params {
	return i.p
}
