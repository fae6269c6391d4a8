package maploader

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Orientation is the tile geometry of a map
type Orientation string

// Supported orientations
const (
	Orthogonal Orientation = "orthogonal"
	Isometric  Orientation = "isometric"
	Staggered  Orientation = "staggered"
	Hexagonal  Orientation = "hexagonal"
)

// StaggerAxis selects whether columns ("x") or rows ("y") are offset
type StaggerAxis string

// Stagger axes
const (
	StaggerX StaggerAxis = "x"
	StaggerY StaggerAxis = "y"
)

// StaggerIndex selects which parity of row/column is shifted
type StaggerIndex string

// Stagger indices
const (
	StaggerEven StaggerIndex = "even"
	StaggerOdd  StaggerIndex = "odd"
)

// LayerType identifies the variant of a Layer
type LayerType string

// Layer types as written by the Tiled JSON export
const (
	TileLayer   LayerType = "tilelayer"
	ImageLayer  LayerType = "imagelayer"
	ObjectGroup LayerType = "objectgroup"
)

// ShapeKind is the drawable shape of a MapObject
type ShapeKind int

// Object shapes, in dispatch priority order
const (
	ShapeRectangle ShapeKind = iota
	ShapeEllipse
	ShapePolyline
	ShapePolygon
	ShapeTile
)

// String returns the shape name.
func (s ShapeKind) String() string {
	switch s {
	case ShapeEllipse:
		return "ellipse"
	case ShapePolyline:
		return "polyline"
	case ShapePolygon:
		return "polygon"
	case ShapeTile:
		return "tile"
	default:
		return "rectangle"
	}
}

// Point is a pixel position relative to its owning object
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Version holds the map format version, which Tiled writes either as a
// number (old exports) or as a string.
type Version string

// UnmarshalJSON accepts both numeric and string versions.
func (v *Version) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Version(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("version must be a string or number: %w", err)
	}
	*v = Version(n.String())
	return nil
}

// Properties holds the custom properties of a map element
type Properties map[string]interface{}

// property is the array form used by Tiled 1.2 and later
type property struct {
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// UnmarshalJSON accepts both the array form and the legacy object form.
func (p *Properties) UnmarshalJSON(data []byte) error {
	var list []property
	if err := json.Unmarshal(data, &list); err == nil {
		props := make(Properties, len(list))
		for _, prop := range list {
			props[prop.Name] = prop.Value
		}
		*p = props
		return nil
	}
	var legacy map[string]interface{}
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("properties must be an array or object: %w", err)
	}
	*p = Properties(legacy)
	return nil
}

// GetString retrieves a string property
func (p Properties) GetString(key string, defaultVal string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return defaultVal
}

// GetBool retrieves a boolean property
func (p Properties) GetBool(key string, defaultVal bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return defaultVal
}

// GetFloat retrieves a numeric property
func (p Properties) GetFloat(key string, defaultVal float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// Object is a single entry of an object group
type Object struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	X          float64    `json:"x"`        // Pixel position
	Y          float64    `json:"y"`        // Pixel position
	Width      float64    `json:"width"`    // Pixel size
	Height     float64    `json:"height"`   // Pixel size
	Rotation   float64    `json:"rotation"` // Degrees, clockwise
	Visible    bool       `json:"visible"`
	Ellipse    bool       `json:"ellipse"`
	Polyline   []Point    `json:"polyline"`
	Polygon    []Point    `json:"polygon"`
	GID        uint32     `json:"gid"` // Non-zero for tile objects
	Properties Properties `json:"properties"`
}

// UnmarshalJSON decodes an object, defaulting visible to true when absent.
func (o *Object) UnmarshalJSON(data []byte) error {
	type plain Object
	aux := struct {
		*plain
		Visible *bool `json:"visible"`
	}{plain: (*plain)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	o.Visible = aux.Visible == nil || *aux.Visible
	return nil
}

// Shape returns the shape discriminant of the object. Exactly one shape
// applies; a rectangle is the fallback.
func (o *Object) Shape() ShapeKind {
	switch {
	case o.Ellipse:
		return ShapeEllipse
	case o.Polyline != nil:
		return ShapePolyline
	case o.Polygon != nil:
		return ShapePolygon
	case o.GID != 0:
		return ShapeTile
	default:
		return ShapeRectangle
	}
}

// Layer is one drawable plane of the map. Only the fields of its Type are set.
type Layer struct {
	Type       LayerType  `json:"type"`
	Name       string     `json:"name"`
	Visible    bool       `json:"visible"`
	Opacity    float64    `json:"opacity"` // 0..1
	OffsetX    float64    `json:"offsetx"` // Pixel offset
	OffsetY    float64    `json:"offsety"` // Pixel offset
	Encoding   string     `json:"encoding"`
	Data       []uint32   `json:"data"`    // Tile layer: row-major gids, 0 = empty
	Image      string     `json:"image"`   // Image layer: image path
	Objects    []Object   `json:"objects"` // Object group
	Color      string     `json:"color"`   // Object group color, "#rrggbb" or "#aarrggbb"
	Properties Properties `json:"properties"`
}

// UnmarshalJSON decodes a layer, defaulting visible and opacity when absent.
func (l *Layer) UnmarshalJSON(data []byte) error {
	type plain Layer
	aux := struct {
		*plain
		Visible *bool    `json:"visible"`
		Opacity *float64 `json:"opacity"`
	}{plain: (*plain)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.Visible = aux.Visible == nil || *aux.Visible
	l.Opacity = 1
	if aux.Opacity != nil {
		l.Opacity = *aux.Opacity
	}
	return nil
}

// TileOffset is a pixel nudge applied to every tile of a tileset
type TileOffset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TilesetTile is one entry of an image-collection tileset
type TilesetTile struct {
	ID          int    `json:"id"`    // Local tile index
	Image       string `json:"image"` // Image path
	ImageWidth  int    `json:"imagewidth"`
	ImageHeight int    `json:"imageheight"`
}

// Tileset is either a single-image grid (Image set) or an image collection
// (Tiles set). External tilesets (Source set) are not supported.
type Tileset struct {
	FirstGID         uint32        `json:"firstgid"`
	Name             string        `json:"name"`
	Source           string        `json:"source"`
	Image            string        `json:"image"`
	ImageWidth       int           `json:"imagewidth"`
	ImageHeight      int           `json:"imageheight"`
	TileWidth        int           `json:"tilewidth"`
	TileHeight       int           `json:"tileheight"`
	Margin           int           `json:"margin"`
	Spacing          int           `json:"spacing"`
	Columns          int           `json:"columns"`   // 0 = derive from image width
	TileCount        int           `json:"tilecount"` // 0 = derive from image size
	TransparentColor string        `json:"transparentcolor"`
	TileOffset       *TileOffset   `json:"tileoffset"`
	Tiles            []TilesetTile `json:"tiles"`
}

// IsCollection reports whether the tileset is a per-tile image collection.
func (ts *Tileset) IsCollection() bool {
	return ts.Image == "" && len(ts.Tiles) > 0
}

// Offset returns the draw-time pixel nudge of the tileset.
func (ts *Tileset) Offset() (x, y float64) {
	if ts.TileOffset == nil {
		return 0, 0
	}
	return ts.TileOffset.X, ts.TileOffset.Y
}

// Map is the in-memory map description. It is immutable during rendering
// except for layer Visible/Opacity and tile layer Data.
type Map struct {
	Name            string       `json:"-"` // Registry key, not part of the export
	Version         Version      `json:"version"`
	TiledVersion    string       `json:"tiledversion"`
	Orientation     Orientation  `json:"orientation"`
	RenderOrder     string       `json:"renderorder"` // Informational; always drawn right-down
	Width           int          `json:"width"`       // Tiles
	Height          int          `json:"height"`      // Tiles
	TileWidth       int          `json:"tilewidth"`   // Pixels
	TileHeight      int          `json:"tileheight"`  // Pixels
	Infinite        bool         `json:"infinite"`
	StaggerAxis     StaggerAxis  `json:"staggeraxis"`
	StaggerIndex    StaggerIndex `json:"staggerindex"`
	HexSideLength   int          `json:"hexsidelength"`
	BackgroundColor string       `json:"backgroundcolor"`
	Layers          []Layer      `json:"layers"`
	Tilesets        []Tileset    `json:"tilesets"`
	Properties      Properties   `json:"properties"`
}

// Layer returns the layer at index n, or false when n is out of range.
func (m *Map) Layer(n int) (*Layer, bool) {
	if n < 0 || n >= len(m.Layers) {
		return nil, false
	}
	return &m.Layers[n], true
}

// InBounds reports whether (x, y) is a cell of the map.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}
