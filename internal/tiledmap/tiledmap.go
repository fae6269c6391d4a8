// Package tiledmap draws Tiled maps through a render backend. A TiledMap
// owns a private copy of its map, resolves the tileset and image layer
// images in the background, and keeps the camera state of the last draw.
package tiledmap

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chosenoffset.com/tiledmap/internal/atlas"
	"chosenoffset.com/tiledmap/internal/geometry"
	"chosenoffset.com/tiledmap/internal/maploader"
	"chosenoffset.com/tiledmap/internal/render"
)

var (
	// ErrLayerOutOfRange is returned for a layer index the map does not have
	ErrLayerOutOfRange = errors.New("layer index out of range")
	// ErrNoTarget is returned when a draw has neither an explicit nor a default target
	ErrNoTarget = errors.New("no drawing target")
	// ErrLayerImage is joined into LoadErr for every image layer that failed to load
	ErrLayerImage = errors.New("layer image failed to load")
)

// DefaultDrawMargin is the number of tiles drawn past each viewport edge
const DefaultDrawMargin = 2

// DrawMode selects whether draw coordinates name the camera corner or center
type DrawMode int

// Draw modes
const (
	DrawCorner DrawMode = iota
	DrawCenter
)

// String returns the mode name.
func (m DrawMode) String() string {
	switch m {
	case DrawCorner:
		return "corner"
	case DrawCenter:
		return "center"
	default:
		return fmt.Sprintf("DrawMode(%d)", int(m))
	}
}

func (m DrawMode) valid() bool {
	return m == DrawCorner || m == DrawCenter
}

// ParseDrawMode parses "corner" or "center", ignoring case.
func ParseDrawMode(s string) (DrawMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "corner":
		return DrawCorner, nil
	case "center":
		return DrawCenter, nil
	}
	return DrawCorner, fmt.Errorf("unknown draw mode %q", s)
}

// PositionMode selects whether draw coordinates are canvas pixels or map tiles
type PositionMode int

// Position modes
const (
	PositionCanvas PositionMode = iota
	PositionMap
)

// String returns the mode name.
func (m PositionMode) String() string {
	switch m {
	case PositionCanvas:
		return "canvas"
	case PositionMap:
		return "map"
	default:
		return fmt.Sprintf("PositionMode(%d)", int(m))
	}
}

func (m PositionMode) valid() bool {
	return m == PositionCanvas || m == PositionMap
}

// ParsePositionMode parses "canvas" or "map", ignoring case.
func ParsePositionMode(s string) (PositionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "canvas":
		return PositionCanvas, nil
	case "map":
		return PositionMap, nil
	}
	return PositionCanvas, fmt.Errorf("unknown position mode %q", s)
}

// Options configure a TiledMap
type Options struct {
	ImagePath         string            // Directory image paths in the map are relative to
	TransparentOffset int               // Color key tolerance; 0 means atlas.DefaultTransparentOffset
	DrawMargin        float64           // Tiles past the viewport; 0 means DefaultDrawMargin
	DrawMode          DrawMode          // Initial draw mode
	PositionMode      PositionMode      // Initial position mode
	Target            render.Image      // Default drawing surface, may be nil
	OnReady           func(t *TiledMap) // Called once, after every image resolved or failed
	Concurrency       int               // Maximum tilesets loading at once; 0 means no limit
	Logger            *zap.Logger
}

// TiledMap is a loaded map plus its camera state. All methods are safe for
// concurrent use; a draw never observes a half-applied layer mutation.
type TiledMap struct {
	mu sync.RWMutex

	m        *maploader.Map
	geo      geometry.Transform
	atlas    *atlas.Atlas
	renderer render.Renderer
	target   render.Image

	layerImages []render.Image // Indexed like m.Layers; nil until loaded

	camLeft, camTop     float64
	camWidth, camHeight float64
	drawMargin          float64
	drawMode            DrawMode
	positionMode        PositionMode

	ready   chan struct{}
	loadErr error
	log     *zap.Logger
}

// New validates m and starts resolving its images with loader. The map is
// deep-copied; later changes to m do not reach the TiledMap.
func New(m *maploader.Map, r render.Renderer, loader render.ResourceLoader, opts Options) (*TiledMap, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil map", maploader.ErrInvalidMap)
	}
	if err := maploader.Validate(m); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.DrawMargin <= 0 {
		opts.DrawMargin = DefaultDrawMargin
	}
	if !opts.DrawMode.valid() {
		opts.DrawMode = DrawCorner
	}
	if !opts.PositionMode.valid() {
		opts.PositionMode = PositionCanvas
	}

	mc := m.Clone()
	t := &TiledMap{
		m:            mc,
		geo:          geometry.New(geometry.ParamsFromMap(mc)),
		atlas:        atlas.New(r),
		renderer:     r,
		target:       opts.Target,
		layerImages:  make([]render.Image, len(mc.Layers)),
		drawMargin:   opts.DrawMargin,
		drawMode:     opts.DrawMode,
		positionMode: opts.PositionMode,
		ready:        make(chan struct{}),
		log:          log.With(zap.String("map", mc.Name)),
	}
	if opts.Target != nil {
		w, h := opts.Target.Size()
		t.camWidth, t.camHeight = float64(w), float64(h)
	}

	go t.load(loader, opts)
	return t, nil
}

// Load looks name up in reg and creates a TiledMap for it. An unknown name
// fails with maploader.ErrMapNotFound.
func Load(reg *maploader.Registry, name string, r render.Renderer, loader render.ResourceLoader, opts Options) (*TiledMap, error) {
	m, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	return New(m, r, loader, opts)
}

// imageLayer is an image layer waiting for its image
type imageLayer struct {
	index int
	path  string
}

// load resolves every tileset and image layer image, then signals readiness.
// Failures are collected; nothing is retried.
func (t *TiledMap) load(loader render.ResourceLoader, opts Options) {
	// Tilesets and layer image paths never change after New.
	tilesets := t.m.Tilesets
	var images []imageLayer
	for i := range t.m.Layers {
		l := &t.m.Layers[i]
		if l.Type == maploader.ImageLayer && l.Image != "" {
			images = append(images, imageLayer{index: i, path: atlas.ResolvePath(opts.ImagePath, l.Image)})
		}
	}

	t.log.Debug("loading map",
		zap.Int("tilesets", len(tilesets)),
		zap.Int("image_layers", len(images)))

	var g errgroup.Group
	var tilesetErr error
	g.Go(func() error {
		tilesetErr = t.atlas.Load(loader, tilesets, atlas.LoadOptions{
			ImagePath:         opts.ImagePath,
			TransparentOffset: opts.TransparentOffset,
			Concurrency:       opts.Concurrency,
			Logger:            t.log,
		})
		return nil
	})

	imageErrs := make([]error, len(images))
	for k, il := range images {
		g.Go(func() error {
			img, err := loader.LoadImage(il.path)
			if err != nil {
				t.log.Warn("layer image failed to load",
					zap.Int("layer", il.index),
					zap.String("path", il.path),
					zap.Error(err))
				imageErrs[k] = fmt.Errorf("%w: layer %d (%s): %w", ErrLayerImage, il.index, il.path, err)
				return nil
			}
			t.mu.Lock()
			t.layerImages[il.index] = img
			t.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(append([]error{tilesetErr}, imageErrs...)...)
	t.mu.Lock()
	t.loadErr = err
	t.mu.Unlock()

	t.log.Info("map ready",
		zap.Int("tiles", t.atlas.Len()),
		zap.Int("failures", countFailures(tilesetErr, imageErrs)))

	close(t.ready)
	if opts.OnReady != nil {
		opts.OnReady(t)
	}
}

// countFailures counts failed tilesets and image layers. tilesetErr is the
// join of one error per failed tileset.
func countFailures(tilesetErr error, imageErrs []error) int {
	n := 0
	if j, ok := tilesetErr.(interface{ Unwrap() []error }); ok {
		n = len(j.Unwrap())
	} else if tilesetErr != nil {
		n = 1
	}
	for _, err := range imageErrs {
		if err != nil {
			n++
		}
	}
	return n
}

// Ready returns a channel that is closed once every image resolved or failed.
func (t *TiledMap) Ready() <-chan struct{} {
	return t.ready
}

// Wait blocks until the map is ready or ctx is done.
func (t *TiledMap) Wait(ctx context.Context) error {
	select {
	case <-t.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsReady reports whether loading has finished.
func (t *TiledMap) IsReady() bool {
	select {
	case <-t.ready:
		return true
	default:
		return false
	}
}

// LoadErr returns the joined image load failures. It is nil before the map
// is ready and when everything loaded.
func (t *TiledMap) LoadErr() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loadErr
}

// Atlas returns the tile atlas of the map.
func (t *TiledMap) Atlas() *atlas.Atlas {
	return t.atlas
}

// Target returns the default drawing surface.
func (t *TiledMap) Target() render.Image {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.target
}

// SetTarget replaces the default drawing surface.
func (t *TiledMap) SetTarget(img render.Image) {
	t.mu.Lock()
	t.target = img
	t.mu.Unlock()
}

// Name returns the map name.
func (t *TiledMap) Name() string {
	return t.m.Name
}

// Version returns the map format version.
func (t *TiledMap) Version() string {
	return string(t.m.Version)
}

// Orientation returns the map orientation.
func (t *TiledMap) Orientation() maploader.Orientation {
	return t.m.Orientation
}

// BackgroundColor returns the map background, opaque white when unset.
func (t *TiledMap) BackgroundColor() color.NRGBA {
	return maploader.ColorOr(t.m.BackgroundColor, color.NRGBA{255, 255, 255, 255})
}

// MapSize returns the map size in tiles.
func (t *TiledMap) MapSize() (width, height int) {
	return t.m.Width, t.m.Height
}

// TileSize returns the tile size in pixels.
func (t *TiledMap) TileSize() (width, height int) {
	return t.m.TileWidth, t.m.TileHeight
}

// HexSideLength returns the side length used by the geometry, which is 0
// for staggered maps.
func (t *TiledMap) HexSideLength() float64 {
	return t.geo.Params().HexSideLength
}

// PixelSize returns the size of the whole map canvas.
func (t *TiledMap) PixelSize() (width, height float64) {
	return geometry.PixelSize(t.geo.Params())
}
