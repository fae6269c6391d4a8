package tiledmap

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"testing"
	"time"

	"chosenoffset.com/tiledmap/internal/atlas"
	"chosenoffset.com/tiledmap/internal/geometry"
	"chosenoffset.com/tiledmap/internal/maploader"
	"chosenoffset.com/tiledmap/internal/render"
	"chosenoffset.com/tiledmap/internal/render/software"
)

// fakeImage records what is drawn onto it
type fakeImage struct {
	name    string
	w, h    int
	pix     []byte
	draws   []drawCall
	fills   []render.Path
	strokes []render.Path
}

type drawCall struct {
	src  *fakeImage
	geoM render.GeoM
}

// at returns where the source pixel corner (x, y) lands
func (d drawCall) at(x, y float64) geometry.Point {
	px, py := d.geoM.Apply(x, y)
	return geometry.Pt(px, py)
}

func newFakeImage(name string, w, h int) *fakeImage {
	return &fakeImage{name: name, w: w, h: h, pix: make([]byte, w*h*4)}
}

func (i *fakeImage) Bounds() image.Rectangle  { return image.Rect(0, 0, i.w, i.h) }
func (i *fakeImage) Size() (int, int)         { return i.w, i.h }
func (i *fakeImage) Fill(color.Color)         {}
func (i *fakeImage) Clear()                   {}
func (i *fakeImage) Dispose()                 {}
func (i *fakeImage) ReadPixels(pixels []byte) { copy(pixels, i.pix) }
func (i *fakeImage) WritePixels(pix []byte)   { copy(i.pix, pix) }

func (i *fakeImage) SubImage(r image.Rectangle) render.Image {
	return newFakeImage(fmt.Sprintf("%s@%d,%d", i.name, r.Min.X, r.Min.Y), r.Dx(), r.Dy())
}

func (i *fakeImage) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	g := software.NewGeoM()
	if opts != nil && opts.GeoM != nil {
		g = opts.GeoM
	}
	i.draws = append(i.draws, drawCall{src: src.(*fakeImage), geoM: g})
}

// fakeRenderer records shapes on fake images
type fakeRenderer struct{}

func (fakeRenderer) NewImage(w, h int) render.Image { return newFakeImage("new", w, h) }
func (fakeRenderer) NewGeoM() render.GeoM           { return software.NewGeoM() }

func (fakeRenderer) FillPath(dst render.Image, p render.Path, g render.GeoM, _ color.Color) {
	d := dst.(*fakeImage)
	d.fills = append(d.fills, p.Transform(g))
}

func (fakeRenderer) StrokePath(dst render.Image, p render.Path, g render.GeoM, _ float64, _ color.Color) {
	d := dst.(*fakeImage)
	d.strokes = append(d.strokes, p.Transform(g))
}

// memLoader serves images from memory. A non-nil gate holds every load
// until it is closed.
type memLoader struct {
	mu     sync.Mutex
	images map[string]render.Image
	gate   chan struct{}
}

func (l *memLoader) LoadImage(path string) (render.Image, error) {
	if l.gate != nil {
		<-l.gate
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	img, ok := l.images[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return img, nil
}

func orthoMap(w, h int, data []uint32) *maploader.Map {
	return &maploader.Map{
		Name:         "test",
		Orientation:  maploader.Orthogonal,
		Width:        w,
		Height:       h,
		TileWidth:    16,
		TileHeight:   16,
		StaggerAxis:  maploader.StaggerX,
		StaggerIndex: maploader.StaggerOdd,
		Layers: []maploader.Layer{
			{Type: maploader.TileLayer, Name: "ground", Visible: true, Opacity: 1, Data: data},
		},
		Tilesets: []maploader.Tileset{
			{FirstGID: 1, Name: "sheet", Image: "sheet.png", TileWidth: 16, TileHeight: 16},
		},
	}
}

func sheetLoader() *memLoader {
	return &memLoader{images: map[string]render.Image{"sheet.png": newFakeImage("sheet", 32, 16)}}
}

// ready creates a TiledMap and waits for it to finish loading
func ready(t *testing.T, m *maploader.Map, r render.Renderer, loader render.ResourceLoader, opts Options) *TiledMap {
	t.Helper()
	tm, err := New(m, r, loader, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tm.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	return tm
}

func near(a, b geometry.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestNewRejectsInvalidMap(t *testing.T) {
	if _, err := New(nil, fakeRenderer{}, sheetLoader(), Options{}); !errors.Is(err, maploader.ErrInvalidMap) {
		t.Errorf("New(nil) error = %v, want ErrInvalidMap", err)
	}
	m := orthoMap(2, 2, []uint32{1})
	if _, err := New(m, fakeRenderer{}, sheetLoader(), Options{}); !errors.Is(err, maploader.ErrInvalidMap) {
		t.Errorf("New() with short data error = %v, want ErrInvalidMap", err)
	}
}

func TestLoadUnknownMap(t *testing.T) {
	reg := maploader.NewRegistry()
	_, err := Load(reg, "nowhere", fakeRenderer{}, sheetLoader(), Options{})
	if !errors.Is(err, maploader.ErrMapNotFound) {
		t.Fatalf("Load() error = %v, want ErrMapNotFound", err)
	}

	if err := reg.Register(orthoMap(1, 1, []uint32{1})); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	tm, err := Load(reg, "test", fakeRenderer{}, sheetLoader(), Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tm.Name() != "test" {
		t.Errorf("Name() = %q, want test", tm.Name())
	}
}

func TestNewCopiesMap(t *testing.T) {
	m := orthoMap(2, 1, []uint32{1, 2})
	tm := ready(t, m, fakeRenderer{}, sheetLoader(), Options{})

	m.Layers[0].Data[0] = 9
	if gid, _, _ := tm.TileIndex(0, 0, 0); gid != 1 {
		t.Errorf("TileIndex() = %d after changing the source map, want 1", gid)
	}
	if err := tm.SetVisible(0, false); err != nil {
		t.Fatal(err)
	}
	if !m.Layers[0].Visible {
		t.Error("SetVisible() reached the source map")
	}
}

func TestReadySignalsOnce(t *testing.T) {
	loader := sheetLoader()
	loader.gate = make(chan struct{})

	calls := make(chan *TiledMap, 2)
	tm, err := New(orthoMap(1, 1, []uint32{1}), fakeRenderer{}, loader, Options{
		OnReady: func(t *TiledMap) { calls <- t },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if tm.IsReady() {
		t.Fatal("map ready before its tileset loaded")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := tm.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}

	close(loader.gate)
	select {
	case got := <-calls:
		if got != tm {
			t.Error("OnReady got a different map")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnReady was not called")
	}
	if !tm.IsReady() {
		t.Error("IsReady() = false after OnReady")
	}
	if tm.LoadErr() != nil {
		t.Errorf("LoadErr() = %v, want nil", tm.LoadErr())
	}
	select {
	case <-calls:
		t.Error("OnReady called twice")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestLoadFailuresDoNotBlockReadiness(t *testing.T) {
	m := orthoMap(1, 1, []uint32{1})
	m.Tilesets = append(m.Tilesets, maploader.Tileset{
		FirstGID: 3, Name: "lost", Image: "lost.png", TileWidth: 16, TileHeight: 16,
	})
	m.Layers = append(m.Layers, maploader.Layer{
		Type: maploader.ImageLayer, Name: "sky", Visible: true, Opacity: 1, Image: "sky.png",
	})

	tm := ready(t, m, fakeRenderer{}, sheetLoader(), Options{})

	err := tm.LoadErr()
	if !errors.Is(err, atlas.ErrTilesetImage) {
		t.Errorf("LoadErr() = %v, want ErrTilesetImage", err)
	}
	if !errors.Is(err, ErrLayerImage) {
		t.Errorf("LoadErr() = %v, want ErrLayerImage", err)
	}
	if !tm.Atlas().Has(1) {
		t.Error("good tileset did not load")
	}

	target := newFakeImage("target", 16, 16)
	if err := tm.Draw(0, 0, target); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if len(target.draws) != 1 {
		t.Errorf("got %d draws, want only the ground tile", len(target.draws))
	}
}

func TestDrawPlacesTiles(t *testing.T) {
	tm := ready(t, orthoMap(2, 2, []uint32{1, 0, 0, 2}), fakeRenderer{}, sheetLoader(), Options{})
	target := newFakeImage("target", 32, 32)

	if err := tm.Draw(0, 0, target); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if len(target.draws) != 2 {
		t.Fatalf("got %d draws, want 2", len(target.draws))
	}
	want := []struct {
		src string
		at  geometry.Point
	}{
		{"sheet@0,0", geometry.Pt(0, 0)},
		{"sheet@16,0", geometry.Pt(16, 16)},
	}
	for i, w := range want {
		d := target.draws[i]
		if d.src.name != w.src {
			t.Errorf("draw %d source = %s, want %s", i, d.src.name, w.src)
		}
		if got := d.at(0, 0); !near(got, w.at) {
			t.Errorf("draw %d at %v, want %v", i, got, w.at)
		}
	}
}

func TestDrawEndToEnd(t *testing.T) {
	r := software.NewRenderer()
	red := color.NRGBA{255, 0, 0, 255}
	blue := color.NRGBA{0, 0, 255, 255}

	sheet := r.NewImage(32, 16)
	pix := make([]byte, 32*16*4)
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			c := red
			if x >= 16 {
				c = blue
			}
			i := (y*32 + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	sheet.WritePixels(pix)

	loader := &memLoader{images: map[string]render.Image{"sheet.png": sheet}}
	tm := ready(t, orthoMap(2, 2, []uint32{1, 0, 0, 2}), r, loader, Options{})

	target := r.NewImage(32, 32).(*software.Image)
	if err := tm.Draw(0, 0, target); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{0, 0, red}, {15, 15, red},
		{16, 16, blue}, {31, 31, blue},
		{24, 8, color.NRGBA{}}, {8, 24, color.NRGBA{}},
	}
	for _, tt := range tests {
		if got := target.At(tt.x, tt.y); got != tt.want {
			t.Errorf("At(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDrawSkipsInvisibleLayers(t *testing.T) {
	m := orthoMap(1, 1, []uint32{1})
	m.Layers = append(m.Layers, maploader.Layer{
		Type: maploader.TileLayer, Name: "hidden", Visible: false, Opacity: 1, Data: []uint32{2},
	})
	tm := ready(t, m, fakeRenderer{}, sheetLoader(), Options{})

	target := newFakeImage("target", 16, 16)
	if err := tm.Draw(0, 0, target); err != nil {
		t.Fatal(err)
	}
	if len(target.draws) != 1 {
		t.Fatalf("got %d draws, want 1", len(target.draws))
	}

	// DrawLayer ignores visibility.
	target.draws = nil
	if err := tm.DrawLayer(1, 0, 0, target); err != nil {
		t.Fatal(err)
	}
	if len(target.draws) != 1 || target.draws[0].src.name != "sheet@16,0" {
		t.Errorf("DrawLayer(hidden) drew %d images", len(target.draws))
	}
}

func TestDrawErrors(t *testing.T) {
	tm := ready(t, orthoMap(1, 1, []uint32{1}), fakeRenderer{}, sheetLoader(), Options{})

	if err := tm.Draw(0, 0, nil); !errors.Is(err, ErrNoTarget) {
		t.Errorf("Draw(nil) error = %v, want ErrNoTarget", err)
	}
	if err := tm.DrawLayer(3, 0, 0, newFakeImage("t", 1, 1)); !errors.Is(err, ErrLayerOutOfRange) {
		t.Errorf("DrawLayer(3) error = %v, want ErrLayerOutOfRange", err)
	}
	if err := tm.DrawLayer(-1, 0, 0, nil); !errors.Is(err, ErrLayerOutOfRange) {
		t.Errorf("DrawLayer(-1) error = %v, want ErrLayerOutOfRange", err)
	}

	def := newFakeImage("default", 16, 16)
	tm.SetTarget(def)
	if err := tm.Draw(0, 0, nil); err != nil {
		t.Fatalf("Draw(nil) with a default target error = %v", err)
	}
	if len(def.draws) != 1 {
		t.Errorf("default target got %d draws, want 1", len(def.draws))
	}
}

func TestDrawCulling(t *testing.T) {
	data := make([]uint32, 100*100)
	for i := range data {
		data[i] = 1
	}
	tm := ready(t, orthoMap(100, 100, data), fakeRenderer{}, sheetLoader(), Options{})

	target := newFakeImage("target", 32, 32)
	if err := tm.Draw(0, 0, target); err != nil {
		t.Fatal(err)
	}
	// Two visible tiles plus the two-tile margin, per axis.
	if len(target.draws) != 16 {
		t.Errorf("got %d draws, want 16", len(target.draws))
	}

	target.draws = nil
	tm.SetDrawMargin(0)
	if err := tm.Draw(800, 800, target); err != nil {
		t.Fatal(err)
	}
	if len(target.draws) != 4 {
		t.Errorf("got %d draws at margin 0, want 4", len(target.draws))
	}

	// Half a tile off the grid the viewport meets three tiles per axis.
	target.draws = nil
	if err := tm.Draw(808, 808, target); err != nil {
		t.Fatal(err)
	}
	if len(target.draws) != 9 {
		t.Errorf("got %d draws for an unaligned camera, want 9", len(target.draws))
	}
}

func TestCameraModes(t *testing.T) {
	tm := ready(t, orthoMap(10, 10, make([]uint32, 100)), fakeRenderer{}, sheetLoader(), Options{})
	target := newFakeImage("target", 32, 32)

	if err := tm.DrawLayer(0, 10, 20, target); err != nil {
		t.Fatal(err)
	}
	if got := tm.CamCorner(); got != geometry.Pt(10, 20) {
		t.Errorf("corner mode CamCorner() = %v, want (10,20)", got)
	}
	if got := tm.CamCenter(); got != geometry.Pt(26, 36) {
		t.Errorf("CamCenter() = %v, want (26,36)", got)
	}
	if w, h := tm.CamSize(); w != 32 || h != 32 {
		t.Errorf("CamSize() = %vx%v, want 32x32", w, h)
	}

	tm.SetDrawMode(DrawCenter)
	if err := tm.DrawLayer(0, 100, 50, target); err != nil {
		t.Fatal(err)
	}
	if got := tm.CamCorner(); got != geometry.Pt(84, 34) {
		t.Errorf("center mode CamCorner() = %v, want (84,34)", got)
	}
	if got := tm.Position(); got != geometry.Pt(100, 50) {
		t.Errorf("center mode Position() = %v, want (100,50)", got)
	}

	tm.SetDrawMode(DrawCorner)
	tm.SetPositionMode(PositionMap)
	if err := tm.DrawLayer(0, 2, 3, target); err != nil {
		t.Fatal(err)
	}
	// Map coordinates name tile centers.
	if got := tm.CanvasToCamXY(40, 56); got != geometry.Pt(0, 0) {
		t.Errorf("map mode camera corner is %v from canvas (40,56)", got)
	}
	if got := tm.CamCorner(); !near(got, geometry.Pt(2, 3)) {
		t.Errorf("map mode CamCorner() = %v, want (2,3)", got)
	}
}

func TestModeSettersIgnoreUnknownValues(t *testing.T) {
	tm := ready(t, orthoMap(1, 1, []uint32{1}), fakeRenderer{}, sheetLoader(), Options{DrawMode: DrawCenter})

	tm.SetDrawMode(DrawMode(7))
	if tm.DrawMode() != DrawCenter {
		t.Errorf("DrawMode() = %v, want center", tm.DrawMode())
	}
	tm.SetPositionMode(PositionMode(-1))
	if tm.PositionMode() != PositionCanvas {
		t.Errorf("PositionMode() = %v, want canvas", tm.PositionMode())
	}

	if m, err := ParseDrawMode(" CENTER "); err != nil || m != DrawCenter {
		t.Errorf("ParseDrawMode(CENTER) = %v, %v", m, err)
	}
	if _, err := ParseDrawMode("middle"); err == nil {
		t.Error("ParseDrawMode(middle) returned no error")
	}
	if m, err := ParsePositionMode("map"); err != nil || m != PositionMap {
		t.Errorf("ParsePositionMode(map) = %v, %v", m, err)
	}
}

func TestCoordinateConversions(t *testing.T) {
	tm := ready(t, orthoMap(10, 10, make([]uint32, 100)), fakeRenderer{}, sheetLoader(), Options{})
	if err := tm.DrawLayer(0, 10, 20, newFakeImage("target", 32, 32)); err != nil {
		t.Fatal(err)
	}

	if got := tm.MapToCanvasXY(0, 0); got != geometry.Pt(8, 8) {
		t.Errorf("MapToCanvas(0,0) = %v, want (8,8)", got)
	}
	if got := tm.CanvasToMapXY(8, 8); got != geometry.Pt(0, 0) {
		t.Errorf("CanvasToMap(8,8) = %v, want (0,0)", got)
	}
	if got := tm.CamToCanvasXY(1, 2); got != geometry.Pt(11, 22) {
		t.Errorf("CamToCanvas(1,2) = %v, want (11,22)", got)
	}
	if got := tm.CanvasToCamXY(11, 22); got != geometry.Pt(1, 2) {
		t.Errorf("CanvasToCam(11,22) = %v, want (1,2)", got)
	}
	if got := tm.MapToCamXY(1, 1); got != geometry.Pt(14, 4) {
		t.Errorf("MapToCam(1,1) = %v, want (14,4)", got)
	}
	if got := tm.CamToMap(geometry.Pt(14, 4)); !near(got, geometry.Pt(1, 1)) {
		t.Errorf("CamToMap(14,4) = %v, want (1,1)", got)
	}
}

func TestTallTileAnchorsOnBottom(t *testing.T) {
	m := orthoMap(2, 2, []uint32{0, 0, 0, 5})
	m.Layers[0].OffsetX, m.Layers[0].OffsetY = 1, 2
	m.Tilesets = []maploader.Tileset{{
		FirstGID:   5,
		Name:       "props",
		TileOffset: &maploader.TileOffset{X: 3, Y: 4},
		Tiles:      []maploader.TilesetTile{{ID: 0, Image: "tree.png"}},
	}}
	loader := &memLoader{images: map[string]render.Image{"tree.png": newFakeImage("tree", 16, 40)}}
	tm := ready(t, m, fakeRenderer{}, loader, Options{})

	target := newFakeImage("target", 32, 32)
	if err := tm.Draw(0, 0, target); err != nil {
		t.Fatal(err)
	}
	if len(target.draws) != 1 {
		t.Fatalf("got %d draws, want 1", len(target.draws))
	}
	// Cell (1,1) spans 16..32; the 40 pixel tall image ends on its bottom edge.
	want := geometry.Pt(16+3+1, 32-40+4+2)
	if got := target.draws[0].at(0, 0); !near(got, want) {
		t.Errorf("tree drawn at %v, want %v", got, want)
	}
}

func TestFlippedTiles(t *testing.T) {
	tests := []struct {
		name  string
		flags uint32
		src   geometry.Point // a source corner
		want  geometry.Point // where it lands
	}{
		{"none", 0, geometry.Pt(0, 0), geometry.Pt(0, 0)},
		{"horizontal", atlas.FlipHorizontal, geometry.Pt(0, 0), geometry.Pt(16, 0)},
		{"vertical", atlas.FlipVertical, geometry.Pt(0, 0), geometry.Pt(0, 16)},
		{"diagonal", atlas.FlipDiagonal, geometry.Pt(16, 0), geometry.Pt(0, 16)},
		{"rotated 90", atlas.FlipDiagonal | atlas.FlipHorizontal, geometry.Pt(0, 0), geometry.Pt(16, 0)},
		{"rotated 180", atlas.FlipHorizontal | atlas.FlipVertical, geometry.Pt(0, 0), geometry.Pt(16, 16)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := ready(t, orthoMap(1, 1, []uint32{1 | tt.flags}), fakeRenderer{}, sheetLoader(), Options{})
			target := newFakeImage("target", 16, 16)
			if err := tm.Draw(0, 0, target); err != nil {
				t.Fatal(err)
			}
			if len(target.draws) != 1 {
				t.Fatalf("got %d draws, want 1", len(target.draws))
			}
			if got := target.draws[0].at(tt.src.X, tt.src.Y); !near(got, tt.want) {
				t.Errorf("corner %v lands at %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestImageLayer(t *testing.T) {
	m := orthoMap(1, 1, []uint32{0})
	m.Layers = []maploader.Layer{{
		Type: maploader.ImageLayer, Name: "sky", Visible: true, Opacity: 1,
		Image: "sky.png", OffsetX: 5, OffsetY: 6,
	}}
	sky := newFakeImage("sky", 64, 64)
	loader := &memLoader{images: map[string]render.Image{"bg/sky.png": sky}}
	tm := ready(t, m, fakeRenderer{}, loader, Options{ImagePath: "bg"})

	if img, err := tm.LayerImage(0); err != nil || img != sky {
		t.Fatalf("LayerImage(0) = %v, %v", img, err)
	}

	target := newFakeImage("target", 32, 32)
	if err := tm.Draw(1, 2, target); err != nil {
		t.Fatal(err)
	}
	if len(target.draws) != 1 || target.draws[0].src != sky {
		t.Fatalf("got %d draws, want the sky image", len(target.draws))
	}
	if got := target.draws[0].at(0, 0); !near(got, geometry.Pt(4, 4)) {
		t.Errorf("sky drawn at %v, want (4,4)", got)
	}
}

func TestObjectGroup(t *testing.T) {
	m := orthoMap(4, 4, make([]uint32, 16))
	m.Layers = []maploader.Layer{{
		Type: maploader.ObjectGroup, Name: "things", Visible: true, Opacity: 1,
		OffsetX: 1, OffsetY: 1,
		Objects: []maploader.Object{
			{X: 10, Y: 20, Width: 4, Height: 6, Visible: true},
			{X: 10, Y: 20, Width: 4, Height: 6, Visible: true, Rotation: 90},
			{X: 0, Y: 0, Width: 8, Height: 8, Visible: true, Ellipse: true},
			{X: 5, Y: 5, Visible: true, Polyline: []maploader.Point{{X: 0, Y: 0}, {X: 3, Y: 0}}},
			{X: 5, Y: 5, Visible: true, Polygon: []maploader.Point{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 0, Y: 3}}},
			{X: 50, Y: 50, Width: 4, Height: 4, Visible: false},
			{X: 11, Y: 31, Width: 32, Height: 16, Visible: true, GID: 1},
		},
	}}
	tm := ready(t, m, fakeRenderer{}, sheetLoader(), Options{})

	target := newFakeImage("target", 64, 64)
	if err := tm.Draw(0, 0, target); err != nil {
		t.Fatal(err)
	}

	// Rectangles and polylines are stroked; ellipses and polygons filled too.
	if len(target.strokes) != 5 {
		t.Fatalf("got %d strokes, want 5", len(target.strokes))
	}
	if len(target.fills) != 2 {
		t.Fatalf("got %d fills, want 2", len(target.fills))
	}

	rect := target.strokes[0]
	if p := rect.Points[0]; p.X != 9 || p.Y != 19 {
		t.Errorf("rectangle origin = %v, want (9,19)", p)
	}
	turned := target.strokes[1]
	if p := turned.Points[1]; math.Abs(p.X-9) > 1e-9 || math.Abs(p.Y-23) > 1e-9 {
		t.Errorf("rotated rectangle corner = %v, want (9,23)", p)
	}
	if poly := target.fills[1]; !poly.Closed || len(poly.Points) != 3 {
		t.Errorf("polygon fill = %+v, want a closed triangle", poly)
	}
	if line := target.strokes[3]; line.Closed {
		t.Error("polyline stroke is closed")
	}

	if len(target.draws) != 1 {
		t.Fatalf("got %d image draws, want the tile object", len(target.draws))
	}
	d := target.draws[0]
	// Bottom-left anchored at the object position, scaled to 32x16.
	if got := d.at(0, 0); !near(got, geometry.Pt(10, 14)) {
		t.Errorf("tile object top-left at %v, want (10,14)", got)
	}
	if got := d.at(16, 16); !near(got, geometry.Pt(42, 30)) {
		t.Errorf("tile object bottom-right at %v, want (42,30)", got)
	}
}

func TestOpacityCap(t *testing.T) {
	r := software.NewRenderer()
	red := color.NRGBA{255, 0, 0, 255}
	loader := &memLoader{images: map[string]render.Image{"sheet.png": r.NewImage(32, 16)}}

	def := r.NewImage(4, 4).(*software.Image)
	def.Fill(red)
	m := orthoMap(1, 1, []uint32{0})
	m.Layers[0].Opacity = 0.5
	tm := ready(t, m, r, loader, Options{Target: def})

	off := r.NewImage(4, 4).(*software.Image)
	off.Fill(red)
	if err := tm.DrawLayer(0, 0, 0, off); err != nil {
		t.Fatal(err)
	}
	if got := off.At(1, 1).A; got != 128 {
		t.Errorf("off-screen alpha = %d, want 128", got)
	}

	if err := tm.DrawLayer(0, 0, 0, nil); err != nil {
		t.Fatal(err)
	}
	if got := def.At(1, 1).A; got != 255 {
		t.Errorf("default target alpha = %d, want 255", got)
	}

	other := r.NewImage(4, 4).(*software.Image)
	other.Fill(red)
	if err := tm.Draw(0, 0, other); err != nil {
		t.Fatal(err)
	}
	if got := other.At(1, 1).A; got != 255 {
		t.Errorf("Draw() applied opacity: alpha = %d", got)
	}
	if op, _ := tm.Opacity(0); op != 0.5 {
		t.Errorf("Opacity() = %v after Draw, want 0.5", op)
	}
}

func TestSetOpacityClamps(t *testing.T) {
	tm := ready(t, orthoMap(1, 1, []uint32{1}), fakeRenderer{}, sheetLoader(), Options{})

	// NaN keeps the previous value.
	tests := []struct{ in, want float64 }{{-1, 0}, {5, 1}, {0.25, 0.25}, {math.NaN(), 0.25}}
	for _, tt := range tests {
		if err := tm.SetOpacity(0, tt.in); err != nil {
			t.Fatal(err)
		}
		if got, _ := tm.Opacity(0); got != tt.want {
			t.Errorf("SetOpacity(%v) stored %v, want %v", tt.in, got, tt.want)
		}
	}
	if err := tm.SetOpacity(1, 1); !errors.Is(err, ErrLayerOutOfRange) {
		t.Errorf("SetOpacity(1) error = %v, want ErrLayerOutOfRange", err)
	}
}

func TestTileIndex(t *testing.T) {
	m := orthoMap(3, 2, make([]uint32, 6))
	m.Layers = append(m.Layers, maploader.Layer{Type: maploader.ObjectGroup, Name: "things", Visible: true, Opacity: 1})
	tm := ready(t, m, fakeRenderer{}, sheetLoader(), Options{})

	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			gid := uint32(10 + x + y*3)
			if err := tm.SetTileIndex(0, x, y, gid); err != nil {
				t.Fatal(err)
			}
			if got, ok, err := tm.TileIndex(0, x, y); err != nil || !ok || got != gid {
				t.Errorf("TileIndex(0,%d,%d) = %d, %v, %v; want %d", x, y, got, ok, err, gid)
			}
		}
	}

	for _, c := range [][2]int{{-1, 0}, {3, 0}, {0, 2}, {0, -1}} {
		if err := tm.SetTileIndex(0, c[0], c[1], 99); err != nil {
			t.Errorf("SetTileIndex(%v) error = %v", c, err)
		}
		if _, ok, err := tm.TileIndex(0, c[0], c[1]); ok || err != nil {
			t.Errorf("TileIndex(%v) = ok %v, err %v; want no value", c, ok, err)
		}
	}
	data, _ := tm.Data(0)
	for _, gid := range data {
		if gid == 99 {
			t.Error("out-of-bounds SetTileIndex changed the data")
		}
	}

	if _, ok, err := tm.TileIndex(1, 0, 0); ok || err != nil {
		t.Errorf("TileIndex on an object group = ok %v, err %v", ok, err)
	}
	if _, _, err := tm.TileIndex(2, 0, 0); !errors.Is(err, ErrLayerOutOfRange) {
		t.Errorf("TileIndex(2) error = %v, want ErrLayerOutOfRange", err)
	}
}

func TestLayerQueries(t *testing.T) {
	m := orthoMap(1, 1, []uint32{1})
	m.BackgroundColor = "#336699"
	m.Layers[0].Properties = maploader.Properties{"solid": true}
	m.Layers = append(m.Layers, maploader.Layer{
		Type: maploader.ObjectGroup, Name: "things", Visible: true, Opacity: 1, Color: "#80ff0000",
		Objects: []maploader.Object{{Name: "door", Visible: true}},
	})
	tm := ready(t, m, fakeRenderer{}, sheetLoader(), Options{})

	if tm.LayerCount() != 2 {
		t.Errorf("LayerCount() = %d, want 2", tm.LayerCount())
	}
	if n, ok := tm.LayerIndex("things"); !ok || n != 1 {
		t.Errorf("LayerIndex(things) = %d, %v", n, ok)
	}
	if typ, _ := tm.LayerType(1); typ != maploader.ObjectGroup {
		t.Errorf("LayerType(1) = %s", typ)
	}
	if c, _ := tm.ObjectsColor(1); c != (color.NRGBA{255, 0, 0, 128}) {
		t.Errorf("ObjectsColor(1) = %v", c)
	}
	if c, _ := tm.ObjectsColor(0); c != (color.NRGBA{A: 255}) {
		t.Errorf("ObjectsColor(0) = %v, want opaque black", c)
	}
	if c := tm.BackgroundColor(); c != (color.NRGBA{0x33, 0x66, 0x99, 255}) {
		t.Errorf("BackgroundColor() = %v", c)
	}

	objs, _ := tm.Objects(1)
	objs[0].Name = "window"
	if again, _ := tm.Objects(1); again[0].Name != "door" {
		t.Error("Objects() returned shared state")
	}
	props, _ := tm.CustomProperties(0)
	if !props.GetBool("solid", false) {
		t.Errorf("CustomProperties(0) = %v", props)
	}

	if _, err := tm.Visible(5); !errors.Is(err, ErrLayerOutOfRange) {
		t.Errorf("Visible(5) error = %v, want ErrLayerOutOfRange", err)
	}
}

func TestBackgroundColorDefault(t *testing.T) {
	tm := ready(t, orthoMap(1, 1, []uint32{1}), fakeRenderer{}, sheetLoader(), Options{})
	if c := tm.BackgroundColor(); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("BackgroundColor() = %v, want opaque white", c)
	}
}

func TestStaggeredHexSideLength(t *testing.T) {
	m := orthoMap(4, 4, make([]uint32, 16))
	m.Orientation = maploader.Staggered
	m.HexSideLength = 6
	tm := ready(t, m, fakeRenderer{}, sheetLoader(), Options{})
	if got := tm.HexSideLength(); got != 0 {
		t.Errorf("HexSideLength() = %v for a staggered map, want 0", got)
	}
}
