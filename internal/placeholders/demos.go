package placeholders

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"chosenoffset.com/tiledmap/internal/atlas"
	"chosenoffset.com/tiledmap/internal/maploader"
)

// Sheet layout shared by every demo tileset
const (
	sheetColumns = 4
	sheetMargin  = 1
	sheetSpacing = 2
)

// Demo is a generated map plus the images it references, keyed by file name
type Demo struct {
	Map    *maploader.Map
	Images map[string]*image.NRGBA
}

// Demos returns one demo map per orientation.
func Demos() []Demo {
	return []Demo{
		orthogonalDemo(),
		isometricDemo(),
		staggeredDemo(),
		hexagonalDemo(),
	}
}

// CreateTerrainSheet draws one tile per palette color, each clipped to
// inside, and lays them out with key-colored gutters.
func CreateTerrainSheet(w, h int, inside func(x, y int) bool) *image.NRGBA {
	tiles := make([]*image.NRGBA, len(ColorPalette))
	for i, c := range ColorPalette {
		tile := CreateShapeTile(w, h, c, Darken(c, 0.6), inside)
		Pattern(tile, Darken(c, 0.8), patterns[i%len(patterns)], func(x, y int) bool {
			return inside(x, y) && !edge(x, y, w, h, inside)
		})
		tiles[i] = tile
	}
	return CreateAtlas(tiles, sheetColumns, w, h, sheetMargin, sheetSpacing, KeyColor)
}

// terrainTileset describes a sheet made by CreateTerrainSheet
func terrainTileset(name, file string, sheet *image.NRGBA, w, h int) maploader.Tileset {
	b := sheet.Bounds()
	return maploader.Tileset{
		FirstGID:         1,
		Name:             name,
		Image:            file,
		ImageWidth:       b.Dx(),
		ImageHeight:      b.Dy(),
		TileWidth:        w,
		TileHeight:       h,
		Margin:           sheetMargin,
		Spacing:          sheetSpacing,
		Columns:          sheetColumns,
		TileCount:        len(ColorPalette),
		TransparentColor: KeyColorHex,
	}
}

// terrain returns a smooth, deterministic tile choice for cell (x, y)
func terrain(x, y int) uint32 {
	v := math.Sin(float64(x)*0.45) + math.Cos(float64(y)*0.35) + math.Sin(float64(x+y)*0.2)
	n := len(ColorPalette)
	i := int(math.Floor((v + 3) / 6 * float64(n)))
	return uint32(min(max(i, 0), n-1)) + 1
}

func groundLayer(w, h int) maploader.Layer {
	data := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			data[x+y*w] = terrain(x, y)
		}
	}
	return maploader.Layer{
		Type:    maploader.TileLayer,
		Name:    "ground",
		Visible: true,
		Opacity: 1,
		Data:    data,
	}
}

func newMap(name string, o maploader.Orientation, w, h, tw, th int) *maploader.Map {
	return &maploader.Map{
		Name:         name,
		Version:      "1.10",
		TiledVersion: "1.10.2",
		Orientation:  o,
		RenderOrder:  "right-down",
		Width:        w,
		Height:       h,
		TileWidth:    tw,
		TileHeight:   th,
		StaggerAxis:  maploader.StaggerX,
		StaggerIndex: maploader.StaggerOdd,
	}
}

func orthogonalDemo() Demo {
	const w, h, tw, th = 24, 18, 32, 32
	m := newMap("orthogonal", maploader.Orthogonal, w, h, tw, th)
	m.BackgroundColor = "#202428"

	sheet := CreateTerrainSheet(tw, th, func(x, y int) bool { return true })
	m.Tilesets = []maploader.Tileset{terrainTileset("terrain", "orthogonal_tiles.png", sheet, tw, th)}

	// A sparse, partly flipped detail layer over the ground.
	details := make([]uint32, w*h)
	for y := 1; y < h; y += 4 {
		for x := 1; x < w; x += 5 {
			gid := uint32(8)
			if (x+y)%2 == 0 {
				gid |= atlas.FlipHorizontal
			}
			details[x+y*w] = gid
		}
	}

	m.Layers = []maploader.Layer{
		{
			Type: maploader.ImageLayer, Name: "backdrop", Visible: true, Opacity: 1,
			Image: "backdrop.png", OffsetX: 32, OffsetY: 32,
		},
		groundLayer(w, h),
		{
			Type: maploader.TileLayer, Name: "details", Visible: true, Opacity: 0.8,
			Data: details, Properties: maploader.Properties{"solid": true},
		},
		{
			Type: maploader.ObjectGroup, Name: "markers", Visible: true, Opacity: 1, Color: "#ffcc00",
			Objects: []maploader.Object{
				{ID: 1, Name: "spawn", X: 64, Y: 64, Width: 64, Height: 32, Visible: true},
				{ID: 2, Name: "pond", X: 200, Y: 96, Width: 80, Height: 48, Visible: true, Ellipse: true},
				{ID: 3, Name: "road", X: 320, Y: 64, Visible: true, Polyline: []maploader.Point{
					{X: 0, Y: 0}, {X: 64, Y: 32}, {X: 96, Y: 128}, {X: 192, Y: 160},
				}},
				{ID: 4, Name: "field", X: 96, Y: 320, Visible: true, Polygon: []maploader.Point{
					{X: 0, Y: 0}, {X: 96, Y: -32}, {X: 160, Y: 48}, {X: 32, Y: 96},
				}},
				{ID: 5, Name: "crate", X: 480, Y: 384, Width: 32, Height: 32, Visible: true, GID: 8},
				{ID: 6, Name: "sign", X: 600, Y: 200, Width: 48, Height: 16, Visible: true, Rotation: 30},
				{ID: 7, Name: "hidden", X: 10, Y: 10, Width: 8, Height: 8, Visible: false},
			},
		},
	}

	return Demo{Map: m, Images: map[string]*image.NRGBA{
		"orthogonal_tiles.png": sheet,
		"backdrop.png":         CreateBackdrop(w*tw-64, h*th-64),
	}}
}

func isometricDemo() Demo {
	const w, h, tw, th = 14, 14, 64, 32
	m := newMap("isometric", maploader.Isometric, w, h, tw, th)

	sheet := CreateTerrainSheet(tw, th, Diamond(tw, th))
	m.Tilesets = []maploader.Tileset{terrainTileset("diamonds", "isometric_tiles.png", sheet, tw, th)}
	m.Layers = []maploader.Layer{groundLayer(w, h)}

	return Demo{Map: m, Images: map[string]*image.NRGBA{"isometric_tiles.png": sheet}}
}

func staggeredDemo() Demo {
	const w, h, tw, th = 16, 24, 64, 32
	m := newMap("staggered", maploader.Staggered, w, h, tw, th)
	m.StaggerIndex = maploader.StaggerEven

	sheet := CreateTerrainSheet(tw, th, Diamond(tw, th))
	m.Tilesets = []maploader.Tileset{terrainTileset("diamonds", "staggered_tiles.png", sheet, tw, th)}
	m.Layers = []maploader.Layer{groundLayer(w, h)}

	return Demo{Map: m, Images: map[string]*image.NRGBA{"staggered_tiles.png": sheet}}
}

func hexagonalDemo() Demo {
	const w, h, tw, th, side = 16, 16, 32, 32, 16
	m := newMap("hexagonal", maploader.Hexagonal, w, h, tw, th)
	m.StaggerAxis = maploader.StaggerY
	m.HexSideLength = side

	sheet := CreateTerrainSheet(tw, th, Hexagon(tw, th, side, false))
	m.Tilesets = []maploader.Tileset{terrainTileset("hexes", "hexagonal_tiles.png", sheet, tw, th)}
	m.Layers = []maploader.Layer{groundLayer(w, h)}

	return Demo{Map: m, Images: map[string]*image.NRGBA{"hexagonal_tiles.png": sheet}}
}

// CreateBackdrop creates a vertical gradient for image layers
func CreateBackdrop(w, h int) *image.NRGBA {
	top := color.NRGBA{40, 60, 90, 255}
	bottom := color.NRGBA{15, 20, 30, 255}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		t := float64(y) / float64(max(h-1, 1))
		c := color.NRGBA{
			R: uint8(float64(top.R) + (float64(bottom.R)-float64(top.R))*t),
			G: uint8(float64(top.G) + (float64(bottom.G)-float64(top.G))*t),
			B: uint8(float64(top.B) + (float64(bottom.B)-float64(top.B))*t),
			A: 255,
		}
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// GenerateAndSave writes every demo map as Tiled JSON, with its images,
// into dir. It returns the paths of the written maps.
func GenerateAndSave(dir string, log *zap.Logger) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create demo directory: %w", err)
	}

	var paths []string
	for _, d := range Demos() {
		for name, img := range d.Images {
			path := filepath.Join(dir, name)
			if err := SavePNG(img, path); err != nil {
				return paths, fmt.Errorf("failed to save %s: %w", name, err)
			}
			b := img.Bounds()
			log.Debug("generated image", zap.String("path", path), zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
		}

		data, err := json.MarshalIndent(d.Map, "", "  ")
		if err != nil {
			return paths, fmt.Errorf("failed to encode map %s: %w", d.Map.Name, err)
		}
		path := filepath.Join(dir, d.Map.Name+".json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("failed to save %s: %w", path, err)
		}
		log.Info("generated map",
			zap.String("path", path),
			zap.String("orientation", string(d.Map.Orientation)),
			zap.Int("width", d.Map.Width),
			zap.Int("height", d.Map.Height))
		paths = append(paths, path)
	}
	return paths, nil
}
