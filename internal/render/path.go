package render

import "math"

// ellipseSegments is the number of line segments an ellipse is flattened to
const ellipseSegments = 64

// Vec2 is a point of a Path
type Vec2 struct {
	X, Y float64
}

// Path is a polyline, optionally closed back to its first point.
type Path struct {
	Points []Vec2
	Closed bool
}

// Empty reports whether the path has nothing to rasterize.
func (p Path) Empty() bool {
	return len(p.Points) < 2
}

// RectPath returns the closed outline of the w x h rectangle at (x, y).
func RectPath(x, y, w, h float64) Path {
	return Path{
		Points: []Vec2{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}},
		Closed: true,
	}
}

// EllipsePath returns the closed outline of the ellipse inscribed in the
// w x h box at (x, y).
func EllipsePath(x, y, w, h float64) Path {
	rx, ry := w/2, h/2
	cx, cy := x+rx, y+ry
	pts := make([]Vec2, ellipseSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / ellipseSegments
		pts[i] = Vec2{cx + rx*math.Cos(a), cy + ry*math.Sin(a)}
	}
	return Path{Points: pts, Closed: true}
}

// PolyPath returns a path through pts.
func PolyPath(pts []Vec2, closed bool) Path {
	return Path{Points: append([]Vec2(nil), pts...), Closed: closed}
}

// Transform returns the path with every point passed through geoM.
// A nil geoM returns p unchanged.
func (p Path) Transform(geoM GeoM) Path {
	if geoM == nil {
		return p
	}
	out := Path{Points: make([]Vec2, len(p.Points)), Closed: p.Closed}
	for i, v := range p.Points {
		x, y := geoM.Apply(v.X, v.Y)
		out.Points[i] = Vec2{x, y}
	}
	return out
}
