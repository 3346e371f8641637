package engine

import (
	"math"

	"github.com/inamate/inkoverlay/internal/ink"
)

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["Q", cx, cy, x, y].
type PathCommand []interface{}

// SmoothPath converts the raw samples of a stroke into a quadratic midpoint
// path. Each raw sample acts as the control point of a curve ending halfway
// to the next sample, and the path finishes with a straight segment onto the
// last sample. Strokes with fewer than two points produce no path.
func SmoothPath(s ink.Stroke) []PathCommand {
	n := len(s)
	if n < 2 {
		return nil
	}

	path := make([]PathCommand, 0, n+1)
	p1, p2 := s[0], s[1]
	path = append(path, PathCommand{"M", p1.X, p1.Y})

	for i := 1; i < n; i++ {
		mid := ink.Midpoint(p1, p2)
		path = append(path, PathCommand{"Q", p1.X, p1.Y, mid.X, mid.Y})
		p1 = s[i]
		// On the last iteration there is no next sample; p2 keeps its value.
		if i+1 < n {
			p2 = s[i+1]
		}
	}

	path = append(path, PathCommand{"L", p1.X, p1.Y})
	return path
}

// ReplayPath issues path commands against a painter.
func ReplayPath(p Painter, path []PathCommand) {
	for _, cmd := range path {
		if len(cmd) == 0 {
			continue
		}
		op, ok := cmd[0].(string)
		if !ok {
			continue
		}
		switch op {
		case "M":
			if len(cmd) >= 3 {
				p.MoveTo(toFloat64(cmd[1]), toFloat64(cmd[2]))
			}
		case "L":
			if len(cmd) >= 3 {
				p.LineTo(toFloat64(cmd[1]), toFloat64(cmd[2]))
			}
		case "Q":
			if len(cmd) >= 5 {
				p.QuadraticTo(toFloat64(cmd[1]), toFloat64(cmd[2]), toFloat64(cmd[3]), toFloat64(cmd[4]))
			}
		}
	}
}

// PathBounds computes the axis-aligned bounding box of a path, including
// control points.
func PathBounds(path []PathCommand) Rect {
	var minX, minY, maxX, maxY float64
	first := true

	include := func(x, y float64) {
		if first {
			minX, maxX = x, x
			minY, maxY = y, y
			first = false
			return
		}
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}

	for _, cmd := range path {
		if len(cmd) == 0 {
			continue
		}
		op, ok := cmd[0].(string)
		if !ok {
			continue
		}

		switch op {
		case "M", "L":
			if len(cmd) >= 3 {
				include(toFloat64(cmd[1]), toFloat64(cmd[2]))
			}
		case "Q":
			if len(cmd) >= 5 {
				include(toFloat64(cmd[1]), toFloat64(cmd[2]))
				include(toFloat64(cmd[3]), toFloat64(cmd[4]))
			}
		}
	}

	if first {
		return Rect{}
	}

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// DrawingBounds returns the area covered by every visible stroke, grown by
// half the pen width so round caps are included.
func DrawingBounds(d ink.Drawing, width float64) Rect {
	var r Rect
	for _, s := range d {
		path := SmoothPath(s)
		if len(path) == 0 {
			continue
		}
		b := PathBounds(path).Inset(width / 2)
		r = r.Union(b)
	}
	return r
}

// toFloat64 converts an interface{} to float64.
func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
