package engine

// Matrix2D is an affine transform in CanvasRenderingContext2D.setTransform
// order: [a, b, c, d, e, f] maps (x, y) to (a*x + c*y + e, b*x + d*y + f).
//
// Strokes are stored in CSS pixels; backing stores may be larger by the
// device pixel ratio or an export scale.
type Matrix2D [6]float64

func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale maps CSS pixels onto a backing store sx by sy times larger.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Multiply returns m applied after other.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

func (m Matrix2D) TransformPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// TransformRect returns the axis-aligned bounds of r after the transform.
func (m Matrix2D) TransformRect(r Rect) Rect {
	xs := [4]float64{}
	ys := [4]float64{}
	xs[0], ys[0] = m.TransformPoint(r.X, r.Y)
	xs[1], ys[1] = m.TransformPoint(r.X+r.Width, r.Y)
	xs[2], ys[2] = m.TransformPoint(r.X+r.Width, r.Y+r.Height)
	xs[3], ys[3] = m.TransformPoint(r.X, r.Y+r.Height)

	minX, maxX := min(xs[0], xs[1], xs[2], xs[3]), max(xs[0], xs[1], xs[2], xs[3])
	minY, maxY := min(ys[0], ys[1], ys[2], ys[3]), max(ys[0], ys[1], ys[2], ys[3])
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Args returns the matrix as setTransform arguments.
func (m Matrix2D) Args() []any {
	return []any{m[0], m[1], m[2], m[3], m[4], m[5]}
}
