// Package software is a headless render backend. Surfaces are gogpu/gg
// pixmaps; shapes go through a gg context, image blits through an affine
// nearest-neighbour transform so unscaled draws stay pixel exact.
package software

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"chosenoffset.com/tiledmap/internal/render"
)

// Renderer implements render.Renderer without a window or GPU.
type Renderer struct{}

// NewRenderer creates a new software renderer.
func NewRenderer() render.Renderer {
	return &Renderer{}
}

// NewImage creates a new transparent image with the given dimensions.
func (r *Renderer) NewImage(width, height int) render.Image {
	return newImage(max(width, 1), max(height, 1))
}

// NewGeoM creates a new geometric transformation matrix.
func (r *Renderer) NewGeoM() render.GeoM {
	return NewGeoM()
}

// FillPath fills the path on the destination image.
func (r *Renderer) FillPath(dst render.Image, p render.Path, geoM render.GeoM, clr color.Color) {
	if len(p.Points) < 3 {
		return
	}
	img := dst.(*Image)
	dc := img.begin(geoM, clr)
	tracePath(dc, p, true)
	_ = dc.Fill()
	img.end()
}

// StrokePath strokes the path on the destination image.
func (r *Renderer) StrokePath(dst render.Image, p render.Path, geoM render.GeoM, strokeWidth float64, clr color.Color) {
	if p.Empty() {
		return
	}
	img := dst.(*Image)
	dc := img.begin(geoM, clr)
	dc.SetLineWidth(strokeWidth)
	tracePath(dc, p, p.Closed)
	_ = dc.Stroke()
	img.end()
}

func tracePath(dc *gg.Context, p render.Path, closed bool) {
	dc.ClearPath()
	dc.MoveTo(p.Points[0].X, p.Points[0].Y)
	for _, pt := range p.Points[1:] {
		dc.LineTo(pt.X, pt.Y)
	}
	if closed {
		dc.ClosePath()
	}
}

// Image is a software surface backed by a gg pixmap. The pixmap holds
// premultiplied RGBA, as gg's rasterizer writes it; the pixel accessors
// convert to and from non-premultiplied RGBA.
type Image struct {
	pm *gg.Pixmap
	dc *gg.Context
}

func newImage(width, height int) *Image {
	return &Image{pm: gg.NewPixmap(width, height)}
}

// FromImage copies img into a new software image.
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	out := newImage(b.Dx(), b.Dy())
	xdraw.Draw(out.rgba(), out.Bounds(), img, b.Min, xdraw.Src)
	return out
}

// begin returns the gg context of the image, set up for one shape.
func (i *Image) begin(geoM render.GeoM, clr color.Color) *gg.Context {
	if i.dc == nil {
		i.dc = gg.NewContext(i.pm.Width(), i.pm.Height(), gg.WithPixmap(i.pm))
	}
	m := gg.Identity()
	if geoM != nil {
		m = matrixOf(geoM)
	}
	i.dc.SetTransform(m)
	c := color.NRGBAModel.Convert(clr).(color.NRGBA)
	i.dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
	return i.dc
}

func (i *Image) end() {
	i.dc.SetTransform(gg.Identity())
}

// rgba views the pixmap as an *image.RGBA without copying.
func (i *Image) rgba() *image.RGBA {
	w, h := i.pm.Width(), i.pm.Height()
	return &image.RGBA{Pix: i.pm.Data(), Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
}

// Bounds returns the bounds of the image.
func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.pm.Width(), i.pm.Height())
}

// Size returns the width and height of the image.
func (i *Image) Size() (width, height int) {
	return i.pm.Width(), i.pm.Height()
}

// SubImage returns a copy of the region r.
func (i *Image) SubImage(r image.Rectangle) render.Image {
	r = r.Intersect(i.Bounds())
	if r.Empty() {
		return newImage(1, 1)
	}
	out := newImage(r.Dx(), r.Dy())
	xdraw.Copy(out.rgba(), image.Point{}, i.rgba(), r, xdraw.Src, nil)
	return out
}

// Fill fills the entire image with the given color.
func (i *Image) Fill(clr color.Color) {
	xdraw.Draw(i.rgba(), i.Bounds(), image.NewUniform(clr), image.Point{}, xdraw.Src)
}

// Clear clears the image to transparent.
func (i *Image) Clear() {
	i.pm.Clear(gg.Transparent)
}

// Dispose releases the image resources.
func (i *Image) Dispose() {
	i.dc = nil
}

// DrawImage composites src over this image through opts.GeoM.
func (i *Image) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	s := src.(*Image)
	m := gg.Identity()
	if opts != nil && opts.GeoM != nil {
		m = matrixOf(opts.GeoM)
	}
	s2d := f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
	xdraw.NearestNeighbor.Transform(i.rgba(), s2d, s.rgba(), s.Bounds(), xdraw.Over, nil)
}

// ReadPixels reads the image as non-premultiplied RGBA.
func (i *Image) ReadPixels(pixels []byte) {
	dst := &image.NRGBA{Pix: pixels, Stride: i.pm.Width() * 4, Rect: i.Bounds()}
	xdraw.Draw(dst, dst.Rect, i.rgba(), image.Point{}, xdraw.Src)
}

// WritePixels replaces the image content with non-premultiplied RGBA.
func (i *Image) WritePixels(pixels []byte) {
	src := &image.NRGBA{Pix: pixels, Stride: i.pm.Width() * 4, Rect: i.Bounds()}
	xdraw.Draw(i.rgba(), i.Bounds(), src, image.Point{}, xdraw.Src)
}

// At returns the non-premultiplied color of the pixel at (x, y).
func (i *Image) At(x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(i.rgba().RGBAAt(x, y)).(color.NRGBA)
}

// ToNRGBA returns a non-premultiplied copy of the image.
func (i *Image) ToNRGBA() *image.NRGBA {
	return imaging.Clone(i.rgba())
}

// Save encodes the image to path; the format follows the file extension.
func (i *Image) Save(path string) error {
	if err := imaging.Save(i.ToNRGBA(), path); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// GeoM is an affine matrix with the same post-multiply semantics as the
// ebiten backend's.
type GeoM struct {
	m gg.Matrix
}

// NewGeoM creates a new identity matrix.
func NewGeoM() render.GeoM {
	return &GeoM{m: gg.Identity()}
}

// Translate shifts the image by (tx, ty).
func (g *GeoM) Translate(tx, ty float64) {
	g.m = gg.Translate(tx, ty).Multiply(g.m)
}

// Scale scales the image by (sx, sy).
func (g *GeoM) Scale(sx, sy float64) {
	g.m = gg.Scale(sx, sy).Multiply(g.m)
}

// Rotate rotates the image by the given angle in radians.
func (g *GeoM) Rotate(angle float64) {
	g.m = gg.Rotate(angle).Multiply(g.m)
}

// Reset resets the matrix to identity.
func (g *GeoM) Reset() {
	g.m = gg.Identity()
}

// Apply transforms the point (x, y).
func (g *GeoM) Apply(x, y float64) (float64, float64) {
	p := g.m.TransformPoint(gg.Pt(x, y))
	return p.X, p.Y
}

// Element returns the matrix element at (i, j).
func (g *GeoM) Element(i, j int) float64 {
	row := [2][3]float64{{g.m.A, g.m.B, g.m.C}, {g.m.D, g.m.E, g.m.F}}
	return row[i][j]
}

// matrixOf reads any render.GeoM into a gg matrix.
func matrixOf(geoM render.GeoM) gg.Matrix {
	if g, ok := geoM.(*GeoM); ok {
		return g.m
	}
	return gg.Matrix{
		A: geoM.Element(0, 0), B: geoM.Element(0, 1), C: geoM.Element(0, 2),
		D: geoM.Element(1, 0), E: geoM.Element(1, 1), F: geoM.Element(1, 2),
	}
}

// ResourceLoader decodes images from disk into software images.
type ResourceLoader struct{}

// NewResourceLoader creates a new software resource loader.
func NewResourceLoader() render.ResourceLoader {
	return &ResourceLoader{}
}

// LoadImage loads an image from the specified file path.
func (l *ResourceLoader) LoadImage(path string) (render.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}
