package atlas

import (
	"image/color"

	"chosenoffset.com/tiledmap/internal/render"
)

// DefaultTransparentOffset is the per-channel tolerance of color keying
const DefaultTransparentOffset = 4

// ApplyTransparentColor makes every pixel of img whose red, green and blue
// each differ from key by less than offset fully transparent. Only alpha is
// changed.
func ApplyTransparentColor(img render.Image, key color.NRGBA, offset int) {
	w, h := img.Size()
	pix := make([]byte, w*h*4)
	img.ReadPixels(pix)
	if keyPixels(pix, key, offset) > 0 {
		img.WritePixels(pix)
	}
}

// keyPixels clears the alpha of matching pixels and returns how many matched
func keyPixels(pix []byte, key color.NRGBA, offset int) int {
	n := 0
	for i := 0; i+3 < len(pix); i += 4 {
		if near(pix[i], key.R, offset) && near(pix[i+1], key.G, offset) && near(pix[i+2], key.B, offset) {
			pix[i+3] = 0
			n++
		}
	}
	return n
}

func near(a, b uint8, offset int) bool {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d < offset
}
