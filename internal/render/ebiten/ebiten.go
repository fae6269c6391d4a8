package ebiten

import (
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"chosenoffset.com/tiledmap/internal/render"
)

// EbitenRenderer implements the Renderer interface using Ebiten.
type EbitenRenderer struct {
	whiteOnce sync.Once
	whiteImg  *ebiten.Image
}

// NewRenderer creates a new Ebiten-based renderer.
func NewRenderer() render.Renderer {
	return &EbitenRenderer{}
}

// NewImage creates a new image with the given dimensions.
func (r *EbitenRenderer) NewImage(width, height int) render.Image {
	return &EbitenImage{img: ebiten.NewImage(max(width, 1), max(height, 1))}
}

// NewGeoM creates a new geometric transformation matrix.
func (r *EbitenRenderer) NewGeoM() render.GeoM {
	return NewGeoM()
}

// white returns the 1x1 source image shapes are textured with.
func (r *EbitenRenderer) white() *ebiten.Image {
	r.whiteOnce.Do(func() {
		r.whiteImg = ebiten.NewImage(1, 1)
		r.whiteImg.Fill(color.White)
	})
	return r.whiteImg
}

// FillPath fills the path on the destination image.
func (r *EbitenRenderer) FillPath(dst render.Image, p render.Path, geoM render.GeoM, clr color.Color) {
	if len(p.Points) < 3 {
		return
	}
	path := toVectorPath(p.Transform(geoM), true)
	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	r.drawShape(dst, vs, is, clr)
}

// StrokePath strokes the path on the destination image.
func (r *EbitenRenderer) StrokePath(dst render.Image, p render.Path, geoM render.GeoM, strokeWidth float64, clr color.Color) {
	if p.Empty() {
		return
	}
	path := toVectorPath(p.Transform(geoM), p.Closed)
	vs, is := path.AppendVerticesAndIndicesForStroke(nil, nil, &vector.StrokeOptions{
		Width:    float32(strokeWidth),
		LineJoin: vector.LineJoinMiter,
	})
	r.drawShape(dst, vs, is, clr)
}

// drawShape colors the triangulated vertices and draws them.
func (r *EbitenRenderer) drawShape(dst render.Image, vs []ebiten.Vertex, is []uint16, clr color.Color) {
	c := color.NRGBAModel.Convert(clr).(color.NRGBA)
	for i := range vs {
		vs[i].SrcX = 0
		vs[i].SrcY = 0
		vs[i].ColorR = float32(c.R) / 255
		vs[i].ColorG = float32(c.G) / 255
		vs[i].ColorB = float32(c.B) / 255
		vs[i].ColorA = float32(c.A) / 255
	}
	dst.(*EbitenImage).img.DrawTriangles(vs, is, r.white(), &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
	})
}

// toVectorPath converts an already transformed path to a vector.Path.
func toVectorPath(p render.Path, closed bool) *vector.Path {
	path := &vector.Path{}
	path.MoveTo(float32(p.Points[0].X), float32(p.Points[0].Y))
	for _, pt := range p.Points[1:] {
		path.LineTo(float32(pt.X), float32(pt.Y))
	}
	if closed {
		path.Close()
	}
	return path
}

// EbitenImage wraps an ebiten.Image to implement the render.Image interface.
type EbitenImage struct {
	img *ebiten.Image
}

// Bounds returns the bounds of the image.
func (i *EbitenImage) Bounds() image.Rectangle {
	return i.img.Bounds()
}

// Size returns the width and height of the image.
func (i *EbitenImage) Size() (width, height int) {
	return i.img.Bounds().Dx(), i.img.Bounds().Dy()
}

// SubImage returns a sub-image of the image.
func (i *EbitenImage) SubImage(r image.Rectangle) render.Image {
	return &EbitenImage{img: i.img.SubImage(r).(*ebiten.Image)}
}

// Fill fills the entire image with the given color.
func (i *EbitenImage) Fill(clr color.Color) {
	i.img.Fill(clr)
}

// Clear clears the image to transparent.
func (i *EbitenImage) Clear() {
	i.img.Clear()
}

// Dispose releases the image resources.
func (i *EbitenImage) Dispose() {
	if i.img != nil {
		i.img.Dispose()
	}
}

// DrawImage draws the source image onto this image.
func (i *EbitenImage) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	srcImg := src.(*EbitenImage).img

	if opts == nil || opts.GeoM == nil {
		i.img.DrawImage(srcImg, nil)
		return
	}

	ebitenOpts := &ebiten.DrawImageOptions{}
	ebitenOpts.GeoM = opts.GeoM.(*EbitenGeoM).geoM
	i.img.DrawImage(srcImg, ebitenOpts)
}

// ReadPixels reads the image as non-premultiplied RGBA.
// Ebiten only serves pixel reads once the main loop is running.
func (i *EbitenImage) ReadPixels(pixels []byte) {
	i.img.ReadPixels(pixels)
	unpremultiply(pixels)
}

// WritePixels replaces the image content with non-premultiplied RGBA.
func (i *EbitenImage) WritePixels(pixels []byte) {
	buf := make([]byte, len(pixels))
	copy(buf, pixels)
	premultiply(buf)
	i.img.WritePixels(buf)
}

// GetEbitenImage returns the underlying ebiten.Image.
// This is useful for interop with ebiten-specific code.
func (i *EbitenImage) GetEbitenImage() *ebiten.Image {
	return i.img
}

// WrapEbitenImage wraps an existing ebiten.Image as a render.Image.
func WrapEbitenImage(img *ebiten.Image) render.Image {
	return &EbitenImage{img: img}
}

// DebugPrint draws a line of debug text at (x, y).
func DebugPrint(dst render.Image, str string, x, y int) {
	ebitenutil.DebugPrintAt(dst.(*EbitenImage).img, str, x, y)
}

func premultiply(pix []byte) {
	for j := 0; j+3 < len(pix); j += 4 {
		a := uint16(pix[j+3])
		pix[j] = byte(uint16(pix[j]) * a / 255)
		pix[j+1] = byte(uint16(pix[j+1]) * a / 255)
		pix[j+2] = byte(uint16(pix[j+2]) * a / 255)
	}
}

func unpremultiply(pix []byte) {
	for j := 0; j+3 < len(pix); j += 4 {
		a := uint16(pix[j+3])
		if a == 0 || a == 255 {
			continue
		}
		pix[j] = byte(min(uint16(pix[j])*255/a, 255))
		pix[j+1] = byte(min(uint16(pix[j+1])*255/a, 255))
		pix[j+2] = byte(min(uint16(pix[j+2])*255/a, 255))
	}
}

// EbitenGeoM wraps ebiten's GeoM to implement the render.GeoM interface.
type EbitenGeoM struct {
	geoM ebiten.GeoM
}

// NewGeoM creates a new geometric transformation matrix.
func NewGeoM() render.GeoM {
	return &EbitenGeoM{geoM: ebiten.GeoM{}}
}

// Translate shifts the image by (tx, ty).
func (g *EbitenGeoM) Translate(tx, ty float64) {
	g.geoM.Translate(tx, ty)
}

// Scale scales the image by (sx, sy).
func (g *EbitenGeoM) Scale(sx, sy float64) {
	g.geoM.Scale(sx, sy)
}

// Rotate rotates the image by the given angle in radians.
func (g *EbitenGeoM) Rotate(angle float64) {
	g.geoM.Rotate(angle)
}

// Reset resets the matrix to identity.
func (g *EbitenGeoM) Reset() {
	g.geoM.Reset()
}

// Apply transforms the point (x, y).
func (g *EbitenGeoM) Apply(x, y float64) (float64, float64) {
	return g.geoM.Apply(x, y)
}

// Element returns the matrix element at (i, j).
func (g *EbitenGeoM) Element(i, j int) float64 {
	return g.geoM.Element(i, j)
}

// EbitenInputManager implements the InputManager interface using Ebiten.
type EbitenInputManager struct{}

// NewInputManager creates a new Ebiten-based input manager.
func NewInputManager() render.InputManager {
	return &EbitenInputManager{}
}

// IsKeyPressed returns whether the specified key is currently pressed.
func (m *EbitenInputManager) IsKeyPressed(key render.Key) bool {
	return ebiten.IsKeyPressed(keyToEbitenKey(key))
}

// IsKeyJustPressed returns whether the specified key was just pressed this frame.
func (m *EbitenInputManager) IsKeyJustPressed(key render.Key) bool {
	return inpututil.IsKeyJustPressed(keyToEbitenKey(key))
}

// GetCursorPosition returns the current cursor position.
func (m *EbitenInputManager) GetCursorPosition() (x, y int) {
	return ebiten.CursorPosition()
}

// IsMouseButtonPressed returns whether the specified mouse button is currently pressed.
func (m *EbitenInputManager) IsMouseButtonPressed(button render.MouseButton) bool {
	return ebiten.IsMouseButtonPressed(mouseButtonToEbiten(button))
}

// keyToEbitenKey converts a render.Key to an ebiten.Key.
func keyToEbitenKey(key render.Key) ebiten.Key {
	switch key {
	case render.KeyW:
		return ebiten.KeyW
	case render.KeyA:
		return ebiten.KeyA
	case render.KeyS:
		return ebiten.KeyS
	case render.KeyD:
		return ebiten.KeyD
	case render.KeyUp:
		return ebiten.KeyArrowUp
	case render.KeyDown:
		return ebiten.KeyArrowDown
	case render.KeyLeft:
		return ebiten.KeyArrowLeft
	case render.KeyRight:
		return ebiten.KeyArrowRight
	case render.KeyM:
		return ebiten.KeyM
	case render.KeyC:
		return ebiten.KeyC
	case render.KeySpace:
		return ebiten.KeySpace
	case render.KeyEscape:
		return ebiten.KeyEscape
	default:
		return 0
	}
}

// mouseButtonToEbiten converts a render.MouseButton to an ebiten.MouseButton.
func mouseButtonToEbiten(button render.MouseButton) ebiten.MouseButton {
	switch button {
	case render.MouseButtonLeft:
		return ebiten.MouseButtonLeft
	case render.MouseButtonRight:
		return ebiten.MouseButtonRight
	case render.MouseButtonMiddle:
		return ebiten.MouseButtonMiddle
	default:
		return ebiten.MouseButtonLeft
	}
}

// EbitenResourceLoader implements the ResourceLoader interface using Ebiten.
type EbitenResourceLoader struct{}

// NewResourceLoader creates a new Ebiten-based resource loader.
func NewResourceLoader() render.ResourceLoader {
	return &EbitenResourceLoader{}
}

// LoadImage loads an image from the specified file path.
func (l *EbitenResourceLoader) LoadImage(path string) (render.Image, error) {
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		return nil, err
	}
	return &EbitenImage{img: img}, nil
}

// EbitenEngine implements the Engine interface using Ebiten.
type EbitenEngine struct{}

// NewEngine creates a new Ebiten-based engine.
func NewEngine() render.Engine {
	return &EbitenEngine{}
}

// SetWindowSize sets the window size in pixels.
func (e *EbitenEngine) SetWindowSize(width, height int) {
	ebiten.SetWindowSize(width, height)
}

// SetWindowTitle sets the window title.
func (e *EbitenEngine) SetWindowTitle(title string) {
	ebiten.SetWindowTitle(title)
}

// SetWindowResizable enables or disables window resizing.
func (e *EbitenEngine) SetWindowResizable(resizable bool) {
	if resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
}

// RunGame runs the main loop with the provided game.
func (e *EbitenEngine) RunGame(game render.Game) error {
	return ebiten.RunGame(&gameAdapter{game: game})
}

// gameAdapter adapts a render.Game to ebiten.Game interface.
type gameAdapter struct {
	game render.Game
}

// Update implements ebiten.Game.
func (a *gameAdapter) Update() error {
	return a.game.Update()
}

// Draw implements ebiten.Game.
func (a *gameAdapter) Draw(screen *ebiten.Image) {
	a.game.Draw(&EbitenImage{img: screen})
}

// Layout implements ebiten.Game.
func (a *gameAdapter) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.game.Layout(outsideWidth, outsideHeight)
}
