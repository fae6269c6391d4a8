package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"chosenoffset.com/tiledmap/internal/config"
	"chosenoffset.com/tiledmap/internal/export"
	"chosenoffset.com/tiledmap/internal/geometry"
	"chosenoffset.com/tiledmap/internal/logger"
	"chosenoffset.com/tiledmap/internal/maploader"
	"chosenoffset.com/tiledmap/internal/render/software"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	mapPath := flag.String("map", "", "Tiled JSON map to render (overrides the config)")
	imageDir := flag.String("images", "", "Directory map image paths are relative to (overrides the config)")
	out := flag.String("out", "", "Output image (overrides the config)")
	layer := flag.Int("layer", -2, "Layer to render alone, -1 for the whole map (overrides the config)")
	background := flag.Bool("background", true, "Fill the map background color before drawing the whole map")
	timeout := flag.Duration("timeout", 30*time.Second, "How long to wait for images to load")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			exit(err)
		}
		cfg = loaded
	}
	if *mapPath != "" {
		cfg.Map = *mapPath
	}
	if *imageDir != "" {
		cfg.ImageDir = *imageDir
	}
	if *out != "" {
		cfg.Export.Output = *out
	}
	if *layer != -2 {
		cfg.Export.Layer = *layer
	}
	if cfg.Map == "" {
		exit(errors.New("no map given; use -map or set map in the config"))
	}
	if err := cfg.Validate(); err != nil {
		exit(err)
	}

	log := logger.New(cfg.LoggerConfig())
	defer log.Sync()

	m, err := maploader.LoadMap(cfg.Map)
	if err != nil {
		log.Fatal("failed to load map", zap.String("path", cfg.Map), zap.Error(err))
	}

	opts := cfg.MapOptions(filepath.Dir(cfg.Map))
	opts.Logger = log

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	img, err := export.Render(ctx, m, software.NewResourceLoader(), export.Options{
		Map:        opts,
		Layer:      cfg.Export.Layer,
		Width:      cfg.Export.Width,
		Height:     cfg.Export.Height,
		Camera:     geometry.Pt(cfg.Camera.X, cfg.Camera.Y),
		Background: *background,
	})
	if err != nil {
		log.Fatal("failed to render map", zap.String("map", m.Name), zap.Error(err))
	}
	if err := img.Save(cfg.Export.Output); err != nil {
		log.Fatal("failed to save image", zap.Error(err))
	}
	log.Info("saved image", zap.String("path", cfg.Export.Output))
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
