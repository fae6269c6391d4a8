package maploader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidMap is wrapped by every validation failure
	ErrInvalidMap = errors.New("invalid map")
	// ErrMapNotFound is returned when a map name has no registered map
	ErrMapNotFound = errors.New("map not found")
)

// LoadMap loads a map from a Tiled JSON export. The map is named after the
// file name without its extension.
func LoadMap(mapPath string) (*Map, error) {
	data, err := os.ReadFile(mapPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file %s: %w", mapPath, err)
	}

	name := strings.TrimSuffix(filepath.Base(mapPath), filepath.Ext(mapPath))
	m, err := ParseMap(name, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mapPath, err)
	}
	return m, nil
}

// ParseMap decodes and validates a Tiled JSON export.
func ParseMap(name string, data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse map %s: %w", name, err)
	}
	m.Name = name

	applyDefaults(&m)
	if err := Validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// applyDefaults fills in the values Tiled omits for default settings
func applyDefaults(m *Map) {
	if m.Orientation == "" {
		m.Orientation = Orthogonal
	}
	if m.StaggerAxis == "" {
		m.StaggerAxis = StaggerX
	}
	if m.StaggerIndex == "" {
		m.StaggerIndex = StaggerOdd
	}
}

// Validate checks that the map can be rendered. Render code relies on these
// guarantees instead of checking them per draw.
func Validate(m *Map) error {
	switch m.Orientation {
	case Orthogonal, Isometric, Staggered, Hexagonal:
	default:
		return fmt.Errorf("%w: unknown orientation %q", ErrInvalidMap, m.Orientation)
	}

	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: invalid map dimensions: %dx%d", ErrInvalidMap, m.Width, m.Height)
	}

	if m.TileWidth <= 0 || m.TileHeight <= 0 {
		return fmt.Errorf("%w: invalid tile size: %dx%d", ErrInvalidMap, m.TileWidth, m.TileHeight)
	}

	if m.Infinite {
		return fmt.Errorf("%w: infinite maps are not supported", ErrInvalidMap)
	}

	if m.StaggerAxis != StaggerX && m.StaggerAxis != StaggerY {
		return fmt.Errorf("%w: unknown stagger axis %q", ErrInvalidMap, m.StaggerAxis)
	}

	if m.StaggerIndex != StaggerEven && m.StaggerIndex != StaggerOdd {
		return fmt.Errorf("%w: unknown stagger index %q", ErrInvalidMap, m.StaggerIndex)
	}

	if m.HexSideLength < 0 {
		return fmt.Errorf("%w: negative hex side length %d", ErrInvalidMap, m.HexSideLength)
	}

	for i := range m.Layers {
		if err := validateLayer(m, i); err != nil {
			return err
		}
	}

	for i := range m.Tilesets {
		if err := validateTileset(&m.Tilesets[i], i); err != nil {
			return err
		}
	}

	return nil
}

func validateLayer(m *Map, i int) error {
	layer := &m.Layers[i]
	switch layer.Type {
	case TileLayer:
		if layer.Encoding != "" && layer.Encoding != "csv" {
			return fmt.Errorf("%w: layer %d (%s): unsupported encoding %q", ErrInvalidMap, i, layer.Name, layer.Encoding)
		}
		if len(layer.Data) != m.Width*m.Height {
			return fmt.Errorf("%w: layer %d (%s): data length mismatch: expected %d, got %d",
				ErrInvalidMap, i, layer.Name, m.Width*m.Height, len(layer.Data))
		}
	case ImageLayer, ObjectGroup:
	default:
		return fmt.Errorf("%w: layer %d (%s): unsupported layer type %q", ErrInvalidMap, i, layer.Name, layer.Type)
	}
	return nil
}

func validateTileset(ts *Tileset, i int) error {
	if ts.Source != "" {
		return fmt.Errorf("%w: tileset %d: external tileset %s must be embedded", ErrInvalidMap, i, ts.Source)
	}
	if ts.FirstGID == 0 {
		return fmt.Errorf("%w: tileset %d (%s): firstgid must be positive", ErrInvalidMap, i, ts.Name)
	}
	if ts.Image != "" && (ts.TileWidth <= 0 || ts.TileHeight <= 0) {
		return fmt.Errorf("%w: tileset %d (%s): invalid tile size: %dx%d",
			ErrInvalidMap, i, ts.Name, ts.TileWidth, ts.TileHeight)
	}
	if ts.Margin < 0 || ts.Spacing < 0 || ts.Columns < 0 || ts.TileCount < 0 {
		return fmt.Errorf("%w: tileset %d (%s): negative grid parameter", ErrInvalidMap, i, ts.Name)
	}
	return nil
}

// Clone returns a deep copy of the map, so mutable layer state is never
// shared between two renderers of the same map.
func (m *Map) Clone() *Map {
	c := *m
	c.Properties = cloneProperties(m.Properties)

	c.Layers = make([]Layer, len(m.Layers))
	for i := range m.Layers {
		c.Layers[i] = m.Layers[i].clone()
	}

	c.Tilesets = make([]Tileset, len(m.Tilesets))
	for i := range m.Tilesets {
		ts := m.Tilesets[i]
		if ts.TileOffset != nil {
			off := *ts.TileOffset
			ts.TileOffset = &off
		}
		ts.Tiles = append([]TilesetTile(nil), ts.Tiles...)
		c.Tilesets[i] = ts
	}
	return &c
}

func (l *Layer) clone() Layer {
	c := *l
	c.Properties = cloneProperties(l.Properties)
	if l.Data != nil {
		c.Data = append([]uint32(nil), l.Data...)
	}
	if l.Objects != nil {
		c.Objects = make([]Object, len(l.Objects))
		for i := range l.Objects {
			c.Objects[i] = l.Objects[i].Clone()
		}
	}
	return c
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() Object {
	c := *o
	c.Properties = cloneProperties(o.Properties)
	if o.Polyline != nil {
		c.Polyline = append([]Point{}, o.Polyline...)
	}
	if o.Polygon != nil {
		c.Polygon = append([]Point{}, o.Polygon...)
	}
	return c
}

func cloneProperties(p Properties) Properties {
	if p == nil {
		return nil
	}
	c := make(Properties, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}
