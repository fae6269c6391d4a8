// Package export renders tiled maps headlessly with the software backend.
package export

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"chosenoffset.com/tiledmap/internal/geometry"
	"chosenoffset.com/tiledmap/internal/maploader"
	"chosenoffset.com/tiledmap/internal/render"
	"chosenoffset.com/tiledmap/internal/render/software"
	"chosenoffset.com/tiledmap/internal/tiledmap"
)

// Options selects what to render
type Options struct {
	Map        tiledmap.Options
	Layer      int            // Layer to draw alone; -1 draws every visible layer
	Width      int            // 0 means the map's pixel width
	Height     int            // 0 means the map's pixel height
	Camera     geometry.Point // In the units of the position mode
	Background bool           // Fill with the map background color before a full draw
}

// Render draws m into a new image. Images that fail to load are logged and
// drawn as placeholders.
func Render(ctx context.Context, m *maploader.Map, loader render.ResourceLoader, opts Options) (*software.Image, error) {
	log := opts.Map.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := software.NewRenderer()
	tm, err := tiledmap.New(m, r, loader, opts.Map)
	if err != nil {
		return nil, err
	}
	if err := tm.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for %s images: %w", tm.Name(), err)
	}
	if err := tm.LoadErr(); err != nil {
		log.Warn("some images failed to load", zap.String("map", tm.Name()), zap.Error(err))
	}

	w, h := opts.Width, opts.Height
	pw, ph := tm.PixelSize()
	if w == 0 {
		w = int(math.Ceil(pw))
	}
	if h == 0 {
		h = int(math.Ceil(ph))
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid export size %dx%d", w, h)
	}

	target := r.NewImage(w, h).(*software.Image)
	if opts.Layer < 0 {
		if opts.Background {
			target.Fill(tm.BackgroundColor())
		}
		err = tm.Draw(opts.Camera.X, opts.Camera.Y, target)
	} else {
		err = tm.DrawLayer(opts.Layer, opts.Camera.X, opts.Camera.Y, target)
	}
	if err != nil {
		return nil, err
	}

	log.Info("rendered map",
		zap.Stringer("map", tm),
		zap.Int("layer", opts.Layer),
		zap.Int("width", w),
		zap.Int("height", h))
	return target, nil
}
