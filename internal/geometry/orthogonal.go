package geometry

// Orthogonal is the rectangular grid geometry
type Orthogonal struct {
	p Params
}

// MapToCanvas implements Transform.
func (o *Orthogonal) MapToCanvas(p Point) Point {
	return Point{
		X: (p.X + 0.5) * o.p.TileWidth,
		Y: (p.Y + 0.5) * o.p.TileHeight,
	}
}

// CanvasToMap implements Transform.
func (o *Orthogonal) CanvasToMap(p Point) Point {
	return Point{
		X: p.X/o.p.TileWidth - 0.5,
		Y: p.Y/o.p.TileHeight - 0.5,
	}
}

// VisibleRange implements Transform with a plain rectangular scan.
func (o *Orthogonal) VisibleRange(left, top, width, height, margin float64) Range {
	if emptyViewport(width, height) {
		return Range{}
	}
	xstart, xstop, ystart, ystop := cornerBounds(o, left, top, width, height, margin)
	return Range{XStart: xstart, XStop: xstop, YStart: ystart, YStop: ystop}
}

// Params implements Transform.
func (o *Orthogonal) Params() Params {
	return o.p
}
