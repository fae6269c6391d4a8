package tiledmap

import (
	"fmt"
	"image/color"
	"maps"
	"math"

	"chosenoffset.com/tiledmap/internal/maploader"
	"chosenoffset.com/tiledmap/internal/render"
)

// layer returns layer n or ErrLayerOutOfRange. Callers hold the lock.
func (t *TiledMap) layer(n int) (*maploader.Layer, error) {
	l, ok := t.m.Layer(n)
	if !ok {
		return nil, fmt.Errorf("%w: map %s has no layer %d (%d layers)", ErrLayerOutOfRange, t.m.Name, n, len(t.m.Layers))
	}
	return l, nil
}

// LayerCount returns the number of layers.
func (t *TiledMap) LayerCount() int {
	return len(t.m.Layers)
}

// LayerIndex returns the index of the first layer named name.
func (t *TiledMap) LayerIndex(name string) (int, bool) {
	for i := range t.m.Layers {
		if t.m.Layers[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// LayerName returns the name of layer n.
func (t *TiledMap) LayerName(n int) (string, error) {
	l, err := t.layer(n)
	if err != nil {
		return "", err
	}
	return l.Name, nil
}

// LayerType returns the type of layer n.
func (t *TiledMap) LayerType(n int) (maploader.LayerType, error) {
	l, err := t.layer(n)
	if err != nil {
		return "", err
	}
	return l.Type, nil
}

// Visible reports whether Draw draws layer n.
func (t *TiledMap) Visible(n int) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	l, err := t.layer(n)
	if err != nil {
		return false, err
	}
	return l.Visible, nil
}

// SetVisible shows or hides layer n.
func (t *TiledMap) SetVisible(n int, visible bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, err := t.layer(n)
	if err != nil {
		return err
	}
	l.Visible = visible
	return nil
}

// LayerImage returns the image of image layer n, or nil when n is another
// kind of layer or its image has not loaded.
func (t *TiledMap) LayerImage(n int) (render.Image, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, err := t.layer(n); err != nil {
		return nil, err
	}
	return t.layerImages[n], nil
}

// Objects returns a copy of the objects of layer n.
func (t *TiledMap) Objects(n int) ([]maploader.Object, error) {
	l, err := t.layer(n)
	if err != nil {
		return nil, err
	}
	if l.Objects == nil {
		return nil, nil
	}
	objs := make([]maploader.Object, len(l.Objects))
	for i := range l.Objects {
		objs[i] = l.Objects[i].Clone()
	}
	return objs, nil
}

// ObjectsColor returns the draw color of layer n, opaque black when unset.
func (t *TiledMap) ObjectsColor(n int) (color.NRGBA, error) {
	l, err := t.layer(n)
	if err != nil {
		return color.NRGBA{}, err
	}
	return maploader.ColorOr(l.Color, color.NRGBA{A: 255}), nil
}

// Data returns a copy of the tile ids of layer n, nil for other layer types.
func (t *TiledMap) Data(n int) ([]uint32, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	l, err := t.layer(n)
	if err != nil {
		return nil, err
	}
	if l.Data == nil {
		return nil, nil
	}
	return append([]uint32(nil), l.Data...), nil
}

// CustomProperties returns a copy of the properties of layer n.
func (t *TiledMap) CustomProperties(n int) (maploader.Properties, error) {
	l, err := t.layer(n)
	if err != nil {
		return nil, err
	}
	return maps.Clone(l.Properties), nil
}

// Opacity returns the opacity of layer n.
func (t *TiledMap) Opacity(n int) (float64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	l, err := t.layer(n)
	if err != nil {
		return 0, err
	}
	return l.Opacity, nil
}

// SetOpacity sets the opacity of layer n, clamped to [0, 1]. NaN leaves it
// unchanged.
func (t *TiledMap) SetOpacity(n int, opacity float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, err := t.layer(n)
	if err != nil {
		return err
	}
	if math.IsNaN(opacity) {
		return nil
	}
	l.Opacity = min(max(opacity, 0), 1)
	return nil
}

// TileIndex returns the raw tile id at (x, y) of layer n. ok is false when
// the cell is outside the map or the layer is not a tile layer.
func (t *TiledMap) TileIndex(n, x, y int) (gid uint32, ok bool, err error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	l, err := t.layer(n)
	if err != nil {
		return 0, false, err
	}
	if l.Type != maploader.TileLayer || !t.m.InBounds(x, y) {
		return 0, false, nil
	}
	return l.Data[x+y*t.m.Width], true, nil
}

// SetTileIndex stores gid at (x, y) of layer n. Cells outside the map and
// layers other than tile layers are left alone.
func (t *TiledMap) SetTileIndex(n, x, y int, gid uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, err := t.layer(n)
	if err != nil {
		return err
	}
	if l.Type != maploader.TileLayer || !t.m.InBounds(x, y) {
		return nil
	}
	l.Data[x+y*t.m.Width] = gid
	return nil
}
