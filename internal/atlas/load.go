package atlas

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chosenoffset.com/tiledmap/internal/maploader"
	"chosenoffset.com/tiledmap/internal/render"
)

// ErrTilesetImage is returned (joined) for every tileset image that failed to load
var ErrTilesetImage = errors.New("tileset image failed to load")

// LoadOptions control how tileset images are located and keyed
type LoadOptions struct {
	ImagePath         string // Directory tileset image paths are relative to
	TransparentOffset int    // Color key tolerance; 0 means DefaultTransparentOffset
	Concurrency       int    // Maximum tilesets loading at once; 0 means no limit
	Logger            *zap.Logger
}

// ResolvePath joins an image path from the map with the image directory.
func ResolvePath(dir, rel string) string {
	if dir == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(dir, rel)
}

// Load resolves every tileset into the atlas, concurrently. A tileset that
// fails does not stop the others; Load returns once all of them finished,
// with the failures joined into the error.
func (a *Atlas) Load(loader render.ResourceLoader, tilesets []maploader.Tileset, opts LoadOptions) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.TransparentOffset <= 0 {
		opts.TransparentOffset = DefaultTransparentOffset
	}

	errs := make([]error, len(tilesets))
	var g errgroup.Group
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i := range tilesets {
		ts := &tilesets[i]
		g.Go(func() error {
			log.Debug("loading tileset",
				zap.Int("index", i),
				zap.String("name", ts.Name),
				zap.Uint32("firstgid", ts.FirstGID))

			tiles, err := loadTileset(loader, ts, opts)
			a.setAll(tiles)
			if err != nil {
				log.Warn("tileset failed to load",
					zap.Int("index", i),
					zap.String("name", ts.Name),
					zap.Uint32("firstgid", ts.FirstGID),
					zap.Error(err))
				errs[i] = err
				return nil
			}
			log.Debug("tileset loaded", zap.String("name", ts.Name), zap.Int("tiles", len(tiles)))
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// loadTileset returns the tiles of one tileset keyed by gid. For image
// collections the tiles that did load are returned alongside the error.
func loadTileset(loader render.ResourceLoader, ts *maploader.Tileset, opts LoadOptions) (map[uint32]Tile, error) {
	offX, offY := ts.Offset()
	tiles := make(map[uint32]Tile)

	if ts.IsCollection() {
		var errs []error
		for _, tt := range ts.Tiles {
			if tt.Image == "" {
				continue
			}
			path := ResolvePath(opts.ImagePath, tt.Image)
			img, err := loader.LoadImage(path)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: tileset %s tile %d (%s): %w", ErrTilesetImage, ts.Name, tt.ID, path, err))
				continue
			}
			tiles[ts.FirstGID+uint32(tt.ID)] = Tile{Image: img, OffsetX: offX, OffsetY: offY}
		}
		return tiles, errors.Join(errs...)
	}

	if ts.Image == "" {
		return tiles, nil
	}

	path := ResolvePath(opts.ImagePath, ts.Image)
	sheet, err := loader.LoadImage(path)
	if err != nil {
		return tiles, fmt.Errorf("%w: tileset %s (%s): %w", ErrTilesetImage, ts.Name, path, err)
	}

	if ts.TransparentColor != "" {
		key, err := maploader.ParseColor(ts.TransparentColor)
		if err != nil {
			return tiles, fmt.Errorf("tileset %s: %w", ts.Name, err)
		}
		ApplyTransparentColor(sheet, key, opts.TransparentOffset)
	}

	origin := sheet.Bounds().Min
	w, h := sheet.Size()
	for m, r := range gridRects(w, h, ts) {
		tiles[ts.FirstGID+uint32(m)] = Tile{
			Image:   sheet.SubImage(r.Add(origin)),
			OffsetX: offX,
			OffsetY: offY,
		}
	}
	return tiles, nil
}

// gridRects returns the source rectangle of every tile of a grid tileset
// whose sheet is w x h pixels, in local index order. Tiles falling outside
// the sheet are left out.
func gridRects(w, h int, ts *maploader.Tileset) map[int]image.Rectangle {
	tw, th := ts.TileWidth, ts.TileHeight
	stepX, stepY := tw+ts.Spacing, th+ts.Spacing

	cols := ts.Columns
	if cols <= 0 {
		cols = (w - 2*ts.Margin + ts.Spacing) / stepX
	}
	count := ts.TileCount
	if count <= 0 {
		count = cols * ((h - 2*ts.Margin + ts.Spacing) / stepY)
	}
	if cols <= 0 || count <= 0 {
		return nil
	}

	bounds := image.Rect(0, 0, w, h)
	rects := make(map[int]image.Rectangle, count)
	for m := 0; m < count; m++ {
		x := ts.Margin + (m%cols)*stepX
		y := ts.Margin + (m/cols)*stepY
		r := image.Rect(x, y, x+tw, y+th)
		if !r.In(bounds) {
			continue
		}
		rects[m] = r
	}
	return rects
}
