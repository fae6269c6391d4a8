package geometry

// StaggeredX is the staggered/hexagonal geometry with alternating columns
// shifted by half a tile height. A zero HexSideLength gives the plain
// staggered layout.
type StaggeredX struct {
	p     Params
	index float64 // 1 when even columns are shifted down, 0 when odd
}

// MapToCanvas implements Transform.
func (s *StaggeredX) MapToCanvas(p Point) Point {
	th := s.p.TileHeight
	return Point{
		X: (p.X*(s.p.HexSideLength+s.p.TileWidth) + s.p.TileWidth) / 2,
		Y: (p.Y+0.5+s.index/2)*th + (s.index*2-1)*(parityWave(p.X)-1)*th/2,
	}
}

// CanvasToMap implements Transform.
func (s *StaggeredX) CanvasToMap(p Point) Point {
	nx := (p.X*2 - s.p.TileWidth) / (s.p.HexSideLength + s.p.TileWidth)
	var ny float64
	if s.index == 0 {
		ny = p.Y/s.p.TileHeight - 1 + parityWave(nx)/2
	} else {
		ny = p.Y/s.p.TileHeight - 0.5 - parityWave(nx)/2
	}
	return Point{X: nx, Y: ny}
}

// VisibleRange implements Transform. Columns are planned in even/odd pairs
// starting from an even column so the shift parity stays explicit in the
// loop instead of being tested per tile.
func (s *StaggeredX) VisibleRange(left, top, width, height, margin float64) Range {
	if emptyViewport(width, height) {
		return Range{}
	}
	xstart, xstop, ystart, ystop := cornerBounds(s, left, top, width, height, margin)
	xstart -= xstart % 2
	return Range{
		XStart: xstart,
		XStop:  xstop,
		YStart: ystart,
		YStop:  ystop,
		paired: true,
		index:  int(s.index),
		limit:  s.p.MapWidth,
	}
}

// Params implements Transform.
func (s *StaggeredX) Params() Params {
	return s.p
}

// StaggeredY is the transposed case: alternating rows are shifted by half a
// tile width. Parity lives in the per-tile transform, so the plan is a
// plain rectangular scan.
type StaggeredY struct {
	p     Params
	index float64 // 1 when even rows are shifted right, 0 when odd
}

// MapToCanvas implements Transform.
func (s *StaggeredY) MapToCanvas(p Point) Point {
	tw := s.p.TileWidth
	return Point{
		X: (p.X+0.5+s.index/2)*tw + (s.index*2-1)*(parityWave(p.Y)-1)*tw/2,
		Y: p.Y*(s.p.HexSideLength+s.p.TileHeight)/2 + s.p.TileHeight/2,
	}
}

// CanvasToMap implements Transform.
func (s *StaggeredY) CanvasToMap(p Point) Point {
	ny := (p.Y*2 - s.p.TileHeight) / (s.p.HexSideLength + s.p.TileHeight)
	var nx float64
	if s.index == 0 {
		nx = p.X/s.p.TileWidth - 1 + parityWave(ny)/2
	} else {
		nx = p.X/s.p.TileWidth - 0.5 - parityWave(ny)/2
	}
	return Point{X: nx, Y: ny}
}

// VisibleRange implements Transform.
func (s *StaggeredY) VisibleRange(left, top, width, height, margin float64) Range {
	if emptyViewport(width, height) {
		return Range{}
	}
	xstart, xstop, ystart, ystop := cornerBounds(s, left, top, width, height, margin)
	return Range{XStart: xstart, XStop: xstop, YStart: ystart, YStop: ystop}
}

// Params implements Transform.
func (s *StaggeredY) Params() Params {
	return s.p
}
