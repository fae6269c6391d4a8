// Package atlas resolves global tile ids to tile images.
package atlas

import (
	"sync"

	"chosenoffset.com/tiledmap/internal/render"
)

// Tiled stores flip flags in the high bits of a gid
const (
	FlipHorizontal uint32 = 0x80000000
	FlipVertical   uint32 = 0x40000000
	FlipDiagonal   uint32 = 0x20000000
	RotatedHex120  uint32 = 0x10000000

	flagMask = FlipHorizontal | FlipVertical | FlipDiagonal | RotatedHex120
)

// GID strips the flip flags from a raw tile id.
func GID(raw uint32) uint32 {
	return raw &^ flagMask
}

// Flips returns the flip flags of a raw tile id
func Flips(raw uint32) (horizontal, vertical, diagonal bool) {
	return raw&FlipHorizontal != 0, raw&FlipVertical != 0, raw&FlipDiagonal != 0
}

// Tile is a renderable tile image plus the pixel offset of its tileset
type Tile struct {
	Image   render.Image
	OffsetX float64
	OffsetY float64
}

// Atlas maps global tile ids to tiles. Id 0 is a 1x1 transparent
// placeholder and every unknown id resolves to it.
// An Atlas is safe for concurrent use.
type Atlas struct {
	mu          sync.RWMutex
	tiles       map[uint32]Tile
	placeholder Tile
}

// New creates an atlas holding only the placeholder tile.
func New(r render.Renderer) *Atlas {
	return &Atlas{
		tiles:       make(map[uint32]Tile),
		placeholder: Tile{Image: r.NewImage(1, 1)},
	}
}

// Resolve returns the tile for a raw tile id. Flip flags are ignored.
func (a *Atlas) Resolve(raw uint32) Tile {
	gid := GID(raw)
	if gid == 0 {
		return a.placeholder
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if t, ok := a.tiles[gid]; ok {
		return t
	}
	return a.placeholder
}

// Has reports whether gid resolves to a loaded tile.
func (a *Atlas) Has(raw uint32) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.tiles[GID(raw)]
	return ok
}

// Placeholder returns the reserved empty tile.
func (a *Atlas) Placeholder() Tile {
	return a.placeholder
}

// Len returns the number of loaded tiles, not counting the placeholder.
func (a *Atlas) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.tiles)
}

// Set stores t under gid. Setting gid 0 is ignored.
func (a *Atlas) Set(gid uint32, t Tile) {
	gid = GID(gid)
	if gid == 0 {
		return
	}
	a.mu.Lock()
	a.tiles[gid] = t
	a.mu.Unlock()
}

// setAll stores a tileset's tiles under one lock
func (a *Atlas) setAll(tiles map[uint32]Tile) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for gid, t := range tiles {
		a.tiles[gid] = t
	}
}
