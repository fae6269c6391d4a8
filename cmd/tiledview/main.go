package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"chosenoffset.com/tiledmap/internal/config"
	"chosenoffset.com/tiledmap/internal/geometry"
	"chosenoffset.com/tiledmap/internal/logger"
	"chosenoffset.com/tiledmap/internal/maploader"
	"chosenoffset.com/tiledmap/internal/mapscanner"
	ebitenrender "chosenoffset.com/tiledmap/internal/render/ebiten"
	"chosenoffset.com/tiledmap/internal/viewer"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	mapPath := flag.String("map", "", "Tiled JSON map, or directory of maps, to open (overrides the config)")
	mapName := flag.String("name", "", "Map to open when -map is a directory; defaults to the first found")
	imageDir := flag.String("images", "", "Directory map image paths are relative to (overrides the config)")
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
	if cfg.Map == "" {
		exit(errors.New("no map given; use -map or set map in the config"))
	}
	if err := cfg.Validate(); err != nil {
		exit(err)
	}

	log := logger.New(cfg.LoggerConfig())
	defer log.Sync()

	reg := maploader.NewRegistry()
	m, imageBase, err := openMaps(reg, cfg.Map, *mapName, log)
	if err != nil {
		log.Fatal("failed to load map", zap.String("path", cfg.Map), zap.Error(err))
	}
	log.Info("loaded map",
		zap.String("name", m.Name),
		zap.String("orientation", string(m.Orientation)),
		zap.Int("layers", len(m.Layers)),
		zap.Int("tilesets", len(m.Tilesets)))

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	loader := ebitenrender.NewResourceLoader()
	engine := ebitenrender.NewEngine()

	v := viewer.New(viewer.Config{
		Registry:    reg,
		MapName:     m.Name,
		Options:     cfg.MapOptions(imageBase),
		Camera:      geometry.Pt(cfg.Camera.X, cfg.Camera.Y),
		ScrollSpeed: cfg.Camera.ScrollSpeed,
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
		Text:        ebitenrender.DebugPrint,
		Logger:      log,
	}, renderer, inputMgr, loader)

	engine.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	engine.SetWindowTitle(cfg.Window.Title + " - " + m.Name)
	engine.SetWindowResizable(true)

	log.Info("starting viewer")
	if err := engine.RunGame(v); err != nil && !errors.Is(err, viewer.ErrQuit) {
		log.Fatal("viewer failed", zap.Error(err))
	}
}

// openMaps registers the map at path, or every map under it when path is
// a directory, and returns the one to show with its image directory.
func openMaps(reg *maploader.Registry, path, name string, log *zap.Logger) (*maploader.Map, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", err
	}
	if !info.IsDir() {
		m, err := reg.LoadFile(path)
		return m, filepath.Dir(path), err
	}

	entries, err := mapscanner.ScanDirectory(path)
	if err != nil {
		return nil, "", err
	}
	names, err := mapscanner.RegisterAll(reg, entries, log)
	if len(names) == 0 {
		return nil, "", fmt.Errorf("no maps found in %s: %w", path, err)
	}
	log.Info("found maps", zap.Strings("names", reg.Names()))

	if name == "" {
		name = names[0]
	}
	m, err := reg.Lookup(name)
	if err != nil {
		return nil, "", err
	}
	for _, e := range entries {
		if e.Name == name {
			return m, filepath.Dir(e.Path), nil
		}
	}
	return m, path, nil
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
