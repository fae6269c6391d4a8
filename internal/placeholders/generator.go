// Package placeholders generates demo tilesets and maps for every map
// orientation, so the viewer and exporter have something to draw.
package placeholders

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// KeyColor fills everything in a sheet that should come out transparent
var KeyColor = color.NRGBA{255, 0, 255, 255}

// KeyColorHex is KeyColor as a Tiled color string
const KeyColorHex = "#ff00ff"

// ColorPalette defines the terrain colors, one per demo tile
var ColorPalette = []color.NRGBA{
	{90, 160, 70, 255},   // Grass
	{60, 110, 200, 255},  // Water
	{220, 200, 130, 255}, // Sand
	{130, 125, 115, 255}, // Stone
	{120, 85, 55, 255},   // Dirt
	{235, 240, 245, 255}, // Snow
	{220, 80, 30, 255},   // Lava
	{150, 110, 70, 255},  // Wood
}

// patterns cycle over the palette so neighbouring tiles differ
var patterns = []string{"", "grid", "dots", "cross", "diagonal"}

// CreateSolidTile creates a simple solid-colored tile
func CreateSolidTile(w, h int, col color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{col}, image.Point{}, draw.Src)
	return img
}

// CreateBorderedTile creates a tile with a border
func CreateBorderedTile(w, h int, fillColor, borderColor color.NRGBA, borderWidth int) *image.NRGBA {
	img := CreateSolidTile(w, h, fillColor)
	for i := 0; i < borderWidth; i++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, i, borderColor)
			img.SetNRGBA(x, h-1-i, borderColor)
		}
		for y := 0; y < h; y++ {
			img.SetNRGBA(i, y, borderColor)
			img.SetNRGBA(w-1-i, y, borderColor)
		}
	}
	return img
}

// Pattern paints a simple pattern over img, wherever mask allows
func Pattern(img *image.NRGBA, patternColor color.NRGBA, pattern string, mask func(x, y int) bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	set := func(x, y int) {
		if mask == nil || mask(x, y) {
			img.SetNRGBA(x, y, patternColor)
		}
	}

	switch pattern {
	case "grid":
		for y := 0; y < h; y += 4 {
			for x := 0; x < w; x++ {
				set(x, y)
			}
		}
		for x := 0; x < w; x += 4 {
			for y := 0; y < h; y++ {
				set(x, y)
			}
		}
	case "dots":
		for _, p := range []image.Point{{w / 4, h / 4}, {3 * w / 4, h / 4}, {w / 4, 3 * h / 4}, {3 * w / 4, 3 * h / 4}} {
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					set(p.X+dx, p.Y+dy)
				}
			}
		}
	case "cross":
		for x := 2; x < w-2; x++ {
			set(x, h/2)
		}
		for y := 2; y < h-2; y++ {
			set(w/2, y)
		}
	case "diagonal":
		for x := 0; x < w; x++ {
			y := x * h / w
			set(x, y)
			set(x, h-1-y)
		}
	}
}

// CreateShapeTile fills the pixels inside reports true for with fillColor,
// outlines them with outlineColor and leaves the rest KeyColor.
func CreateShapeTile(w, h int, fillColor, outlineColor color.NRGBA, inside func(x, y int) bool) *image.NRGBA {
	img := CreateSolidTile(w, h, KeyColor)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !inside(x, y) {
				continue
			}
			if edge(x, y, w, h, inside) {
				img.SetNRGBA(x, y, outlineColor)
			} else {
				img.SetNRGBA(x, y, fillColor)
			}
		}
	}
	return img
}

// edge reports whether an inside pixel has a 4-neighbour outside the shape
func edge(x, y, w, h int, inside func(x, y int) bool) bool {
	for _, d := range [4]image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		nx, ny := x+d.X, y+d.Y
		if nx < 0 || ny < 0 || nx >= w || ny >= h || !inside(nx, ny) {
			return true
		}
	}
	return false
}

// Diamond reports the pixels of the isometric diamond inscribed in w x h
func Diamond(w, h int) func(x, y int) bool {
	return func(x, y int) bool {
		// Pixel centers, measured from the tile center in half-tile units.
		dx := abs(2*x+1-w) * h
		dy := abs(2*y+1-h) * w
		return dx+dy <= w*h
	}
}

// Hexagon reports the pixels of a hexagon inscribed in w x h whose flat
// sides have length side. Columns staggered along x have flat tops;
// rows staggered along y have pointy tops.
func Hexagon(w, h, side int, staggerX bool) func(x, y int) bool {
	if !staggerX {
		rot := Hexagon(h, w, side, true)
		return func(x, y int) bool { return rot(y, x) }
	}
	return func(x, y int) bool {
		// Doubled coordinates keep the slanted edges exact.
		cx := abs(2*x + 1 - w)
		cy := abs(2*y + 1 - h)
		slant := w - side // Doubled width of each slanted part
		if cx <= side {
			return true
		}
		return (cx-side)*h <= (h-cy)*slant
	}
}

// CreateAtlas lays tiles out row-major with margin and spacing, filling
// the gaps with background.
func CreateAtlas(tiles []*image.NRGBA, columns, tileW, tileH, margin, spacing int, background color.NRGBA) *image.NRGBA {
	rows := (len(tiles) + columns - 1) / columns
	width := 2*margin + columns*tileW + (columns-1)*spacing
	height := 2*margin + rows*tileH + (rows-1)*spacing

	atlas := CreateSolidTile(width, height, background)
	for i, tile := range tiles {
		if tile == nil {
			continue
		}
		x := margin + (i%columns)*(tileW+spacing)
		y := margin + (i/columns)*(tileH+spacing)
		draw.Draw(atlas, image.Rect(x, y, x+tileW, y+tileH), tile, tile.Bounds().Min, draw.Src)
	}
	return atlas
}

// SavePNG saves an image to a PNG file
func SavePNG(img image.Image, path string) error {
	return imaging.Save(img, path)
}

// Darken returns a darker version of a color
func Darken(c color.NRGBA, factor float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// Lighten returns a lighter version of a color
func Lighten(c color.NRGBA, factor float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(c.R) + (255-float64(c.R))*factor),
		G: uint8(float64(c.G) + (255-float64(c.G))*factor),
		B: uint8(float64(c.B) + (255-float64(c.B))*factor),
		A: c.A,
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
