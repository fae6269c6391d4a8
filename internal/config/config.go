// Package config handles the configuration of the map viewer and exporter.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"chosenoffset.com/tiledmap/internal/logger"
	"chosenoffset.com/tiledmap/internal/tiledmap"
)

// Config holds all settings.
type Config struct {
	Map               string        `yaml:"map"`       // Tiled JSON export to open
	ImageDir          string        `yaml:"image_dir"` // Empty means the map's directory
	TransparentOffset int           `yaml:"transparent_offset"`
	DrawMargin        float64       `yaml:"draw_margin"`
	DrawMode          string        `yaml:"draw_mode"`     // corner or center
	PositionMode      string        `yaml:"position_mode"` // canvas or map
	Window            WindowConfig  `yaml:"window"`
	Camera            CameraConfig  `yaml:"camera"`
	Export            ExportConfig  `yaml:"export"`
	Logging           LoggingConfig `yaml:"logging"`
}

// WindowConfig holds viewer window settings.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// CameraConfig holds the initial camera and scrolling speed.
type CameraConfig struct {
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	ScrollSpeed float64 `yaml:"scroll_speed"` // Pixels per tick
}

// ExportConfig holds PNG export settings.
type ExportConfig struct {
	Output string `yaml:"output"`
	Layer  int    `yaml:"layer"`  // -1 draws the whole map
	Width  int    `yaml:"width"`  // 0 means the map's pixel width
	Height int    `yaml:"height"` // 0 means the map's pixel height
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		TransparentOffset: 4,
		DrawMargin:        tiledmap.DefaultDrawMargin,
		DrawMode:          "corner",
		PositionMode:      "canvas",
		Window: WindowConfig{
			Width:  800,
			Height: 600,
			Title:  "Tiled Map Viewer",
		},
		Camera: CameraConfig{
			ScrollSpeed: 4,
		},
		Export: ExportConfig{
			Output: "map.png",
			Layer:  -1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. A missing file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.TransparentOffset < 0 {
		errs = append(errs, fmt.Errorf("transparent_offset must not be negative, got %d", c.TransparentOffset))
	}
	if c.DrawMargin < 0 {
		errs = append(errs, fmt.Errorf("draw_margin must not be negative, got %v", c.DrawMargin))
	}
	if _, err := tiledmap.ParseDrawMode(c.DrawMode); err != nil {
		errs = append(errs, err)
	}
	if _, err := tiledmap.ParsePositionMode(c.PositionMode); err != nil {
		errs = append(errs, err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Camera.ScrollSpeed <= 0 {
		errs = append(errs, fmt.Errorf("scroll_speed must be positive, got %v", c.Camera.ScrollSpeed))
	}
	if c.Export.Layer < -1 {
		errs = append(errs, fmt.Errorf("export layer must be -1 or an index, got %d", c.Export.Layer))
	}
	if c.Export.Width < 0 || c.Export.Height < 0 {
		errs = append(errs, fmt.Errorf("invalid export size %dx%d", c.Export.Width, c.Export.Height))
	}
	if !logger.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}

// MapOptions converts the rendering settings into tiledmap options. The
// config must be valid.
func (c *Config) MapOptions(imageDir string) tiledmap.Options {
	dm, _ := tiledmap.ParseDrawMode(c.DrawMode)
	pm, _ := tiledmap.ParsePositionMode(c.PositionMode)
	if c.ImageDir != "" {
		imageDir = c.ImageDir
	}
	return tiledmap.Options{
		ImagePath:         imageDir,
		TransparentOffset: c.TransparentOffset,
		DrawMargin:        c.DrawMargin,
		DrawMode:          dm,
		PositionMode:      pm,
	}
}

// LoggerConfig converts the logging settings for logger.New.
func (c *Config) LoggerConfig() logger.Config {
	cfg := logger.Config{Level: c.Logging.Level, Console: true}
	if c.Logging.LogFile != "" {
		cfg.File = logger.DefaultFileConfig(c.Logging.LogFile)
	}
	return cfg
}
