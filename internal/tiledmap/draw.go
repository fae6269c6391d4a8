package tiledmap

import (
	"fmt"
	"image/color"
	"math"

	"chosenoffset.com/tiledmap/internal/atlas"
	"chosenoffset.com/tiledmap/internal/geometry"
	"chosenoffset.com/tiledmap/internal/maploader"
	"chosenoffset.com/tiledmap/internal/render"
)

// Draw draws every visible layer, in order, with the camera at
// (camLeft, camTop) interpreted per the draw and position modes. A nil
// target draws to the default target. The target is not cleared first.
// Layer opacity is not applied by Draw.
func (t *TiledMap) Draw(camLeft, camTop float64, target render.Image) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	dst, err := t.resolveTarget(target)
	if err != nil {
		return err
	}
	for n := range t.m.Layers {
		if !t.m.Layers[n].Visible {
			continue
		}
		t.drawLayer(n, camLeft, camTop, dst, 1)
	}
	return nil
}

// DrawLayer draws layer n regardless of its visibility. A nil target draws
// to the default target. On any other target a layer opacity below 1 caps
// the alpha of every target pixel at the opacity afterwards; the default
// target is left as drawn.
func (t *TiledMap) DrawLayer(n int, x, y float64, target render.Image) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.layer(n); err != nil {
		return err
	}
	dst, err := t.resolveTarget(target)
	if err != nil {
		return err
	}
	opacity := t.m.Layers[n].Opacity
	if dst == t.target {
		opacity = 1
	}
	t.drawLayer(n, x, y, dst, opacity)
	return nil
}

func (t *TiledMap) resolveTarget(target render.Image) (render.Image, error) {
	if target != nil {
		return target, nil
	}
	if t.target == nil {
		return nil, ErrNoTarget
	}
	return t.target, nil
}

// drawLayer places the camera and draws one layer. Callers hold the write
// lock.
func (t *TiledMap) drawLayer(n int, x, y float64, dst render.Image, opacity float64) {
	w, h := dst.Size()
	t.camWidth, t.camHeight = float64(w), float64(h)

	if t.positionMode == PositionMap {
		p := t.geo.MapToCanvas(geometry.Pt(x, y))
		x, y = p.X, p.Y
	}
	if t.drawMode == DrawCenter {
		x -= t.camWidth / 2
		y -= t.camHeight / 2
	}
	t.camLeft, t.camTop = x, y

	layer := &t.m.Layers[n]
	switch layer.Type {
	case maploader.TileLayer:
		t.drawTileLayer(layer, dst)
	case maploader.ImageLayer:
		if img := t.layerImages[n]; img != nil {
			g := t.renderer.NewGeoM()
			g.Translate(-t.camLeft+layer.OffsetX, -t.camTop+layer.OffsetY)
			dst.DrawImage(img, &render.DrawImageOptions{GeoM: g})
		}
	case maploader.ObjectGroup:
		t.drawObjectGroup(layer, dst)
	}

	if opacity < 1 {
		capAlpha(dst, opacity)
	}
}

// drawTileLayer blits every tile of the visible range, bottom-aligned on
// its cell.
func (t *TiledMap) drawTileLayer(layer *maploader.Layer, dst render.Image) {
	p := t.geo.Params()
	tw, th := p.TileWidth, p.TileHeight

	r := t.geo.VisibleRange(t.camLeft, t.camTop, t.camWidth, t.camHeight, t.drawMargin)
	r.Clamp(p.MapWidth, p.MapHeight).Each(func(col, row int) {
		raw := layer.Data[col+row*p.MapWidth]
		if atlas.GID(raw) == 0 {
			return
		}
		tile := t.atlas.Resolve(raw)

		c := t.mapToCam(geometry.Pt(float64(col), float64(row)))
		g := tileGeoM(t.renderer.NewGeoM(), tile.Image, raw)
		_, ih := flippedSize(tile.Image, raw)
		g.Translate(
			c.X-tw/2+tile.OffsetX+layer.OffsetX,
			c.Y-th/2+tile.OffsetY+layer.OffsetY+(th-ih))
		dst.DrawImage(tile.Image, &render.DrawImageOptions{GeoM: g})
	})
}

// tileGeoM appends the flips encoded in raw to g. The flipped image still
// occupies [0,w')x[0,h') where (w',h') is its flipped size.
func tileGeoM(g render.GeoM, img render.Image, raw uint32) render.GeoM {
	horizontal, vertical, diagonal := atlas.Flips(raw)
	w, h := flippedSize(img, raw)
	if diagonal {
		// Transpose: (x, y) -> (y, x)
		g.Scale(1, -1)
		g.Rotate(math.Pi / 2)
	}
	if horizontal {
		g.Scale(-1, 1)
		g.Translate(w, 0)
	}
	if vertical {
		g.Scale(1, -1)
		g.Translate(0, h)
	}
	return g
}

func flippedSize(img render.Image, raw uint32) (w, h float64) {
	iw, ih := img.Size()
	if _, _, diagonal := atlas.Flips(raw); diagonal {
		return float64(ih), float64(iw)
	}
	return float64(iw), float64(ih)
}

// drawObjectGroup draws the visible objects in declaration order, filled
// and stroked with the layer color.
func (t *TiledMap) drawObjectGroup(layer *maploader.Layer, dst render.Image) {
	clr := maploader.ColorOr(layer.Color, color.NRGBA{A: 255})
	const strokeWidth = 1

	for i := range layer.Objects {
		o := &layer.Objects[i]
		if !o.Visible {
			continue
		}
		ox := o.X - layer.OffsetX - t.camLeft
		oy := o.Y - layer.OffsetY - t.camTop
		rad := o.Rotation * math.Pi / 180

		// Object space -> cam space: rotate about the object origin, then move there.
		g := t.renderer.NewGeoM()
		g.Rotate(rad)
		g.Translate(ox, oy)

		switch o.Shape() {
		case maploader.ShapeEllipse:
			path := render.EllipsePath(0, 0, o.Width, o.Height)
			t.renderer.FillPath(dst, path, g, clr)
			t.renderer.StrokePath(dst, path, g, strokeWidth, clr)
		case maploader.ShapePolyline:
			t.renderer.StrokePath(dst, render.PolyPath(vecs(o.Polyline), false), g, strokeWidth, clr)
		case maploader.ShapePolygon:
			path := render.PolyPath(vecs(o.Polygon), true)
			t.renderer.FillPath(dst, path, g, clr)
			t.renderer.StrokePath(dst, path, g, strokeWidth, clr)
		case maploader.ShapeTile:
			t.drawTileObject(o, ox, oy, rad, dst)
		default:
			t.renderer.StrokePath(dst, render.RectPath(0, 0, o.Width, o.Height), g, strokeWidth, clr)
		}
	}
}

// drawTileObject draws the object's tile scaled to the object size. The
// image is lifted by its own height before rotating so it sits on the
// object origin and turns about it.
func (t *TiledMap) drawTileObject(o *maploader.Object, ox, oy, rad float64, dst render.Image) {
	tile := t.atlas.Resolve(o.GID)
	iw, ih := tile.Image.Size()
	w, h := o.Width, o.Height
	if w == 0 {
		w = float64(iw)
	}
	if h == 0 {
		h = float64(ih)
	}

	g := tileGeoM(t.renderer.NewGeoM(), tile.Image, o.GID)
	fw, fh := flippedSize(tile.Image, o.GID)
	g.Scale(w/fw, h/fh)
	g.Translate(tile.OffsetX, tile.OffsetY)
	g.Rotate(rad)
	g.Translate(0, -float64(ih))
	g.Translate(ox, oy)
	dst.DrawImage(tile.Image, &render.DrawImageOptions{GeoM: g})
}

func vecs(pts []maploader.Point) []render.Vec2 {
	out := make([]render.Vec2, len(pts))
	for i, p := range pts {
		out[i] = render.Vec2{X: p.X, Y: p.Y}
	}
	return out
}

// capAlpha lowers every pixel alpha of img above opacity*255 to it.
func capAlpha(img render.Image, opacity float64) {
	limit := uint8(math.Round(math.Max(0, opacity) * 255))
	w, h := img.Size()
	pix := make([]byte, w*h*4)
	img.ReadPixels(pix)
	for i := 3; i < len(pix); i += 4 {
		if pix[i] > limit {
			pix[i] = limit
		}
	}
	img.WritePixels(pix)
}

// String describes the map for logs.
func (t *TiledMap) String() string {
	return fmt.Sprintf("%s (%s %dx%d)", t.m.Name, t.m.Orientation, t.m.Width, t.m.Height)
}
