package render

import (
	"image"
	"image/color"
)

// Renderer is the drawing-surface abstraction the map renderer draws
// through. This allows swapping rendering backends (windowed ebiten,
// headless software) without changing map logic.
type Renderer interface {
	// Image operations
	NewImage(width, height int) Image

	// NewGeoM creates an identity transformation matrix for this backend.
	NewGeoM() GeoM

	// Vector operations (for drawing shapes). Path points are transformed by
	// geoM before rasterizing; a nil geoM means identity.
	FillPath(dst Image, path Path, geoM GeoM, clr color.Color)
	StrokePath(dst Image, path Path, geoM GeoM, strokeWidth float64, clr color.Color)
}

// Image represents a renderable image surface that can be drawn to or drawn from.
// It abstracts the underlying image implementation.
type Image interface {
	// Properties
	Bounds() image.Rectangle
	Size() (width, height int)

	// SubImage returns the region r of the image. Drawing the result
	// places r.Min at the destination origin.
	SubImage(r image.Rectangle) Image

	// Fill operations
	Fill(clr color.Color)
	Clear()

	// Drawing operations
	DrawImage(src Image, opts *DrawImageOptions)

	// Pixel access. Buffers hold width*height*4 bytes of non-premultiplied
	// RGBA, row-major.
	ReadPixels(pixels []byte)
	WritePixels(pixels []byte)

	// Resource management
	Dispose()
}

// DrawImageOptions contains options for drawing an image.
type DrawImageOptions struct {
	GeoM GeoM
}

// GeoM represents a geometric transformation matrix. Operations
// post-multiply: each call applies after the ones before it.
type GeoM interface {
	// Translate shifts the image by (tx, ty).
	Translate(tx, ty float64)

	// Scale scales the image by (sx, sy).
	Scale(sx, sy float64)

	// Rotate rotates the image by the given angle in radians.
	Rotate(angle float64)

	// Reset resets the matrix to identity.
	Reset()

	// Apply transforms the point (x, y).
	Apply(x, y float64) (float64, float64)

	// Element returns the matrix element at row i, column j
	// (i in [0,1], j in [0,2]).
	Element(i, j int) float64
}

// InputManager handles input from the user (keyboard, mouse, etc).
type InputManager interface {
	IsKeyPressed(key Key) bool
	IsKeyJustPressed(key Key) bool
	GetCursorPosition() (x, y int)
	IsMouseButtonPressed(button MouseButton) bool
}

// Key represents a keyboard key.
type Key int

// Key constants for the viewer controls
const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyM // Toggle position mode
	KeyC // Toggle draw mode
	KeySpace
	KeyEscape
)

// MouseButton represents a mouse button.
type MouseButton int

// Mouse button constants
const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// ResourceLoader handles loading resources like images from disk.
// Implementations must be safe for concurrent use.
type ResourceLoader interface {
	LoadImage(path string) (Image, error)
}

// Game represents the game interface that the engine will call.
// This is typically implemented by the viewer's main struct.
type Game interface {
	// Update updates the viewer state. It is called every tick (typically 60 times per second).
	Update() error

	// Draw draws the screen. It is called every frame.
	Draw(screen Image)

	// Layout accepts the outside size (e.g., window size) and returns the logical screen size.
	// The logical screen size is used for rendering and input coordinates.
	Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int)
}

// Engine represents the game engine that manages the main loop and window.
type Engine interface {
	// SetWindowSize sets the window size in pixels.
	SetWindowSize(width, height int)

	// SetWindowTitle sets the window title.
	SetWindowTitle(title string)

	// SetWindowResizable enables or disables window resizing.
	SetWindowResizable(resizable bool)

	// RunGame runs the main loop with the provided game.
	// This is a blocking call that runs until the game ends.
	RunGame(game Game) error
}
