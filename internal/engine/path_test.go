package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inamate/inkoverlay/internal/ink"
)

func TestSmoothPath(t *testing.T) {
	tests := []struct {
		name   string
		stroke ink.Stroke
		want   []PathCommand
	}{
		{
			name:   "empty",
			stroke: nil,
			want:   nil,
		},
		{
			name:   "single point is invisible",
			stroke: ink.Stroke{{X: 3, Y: 4}},
			want:   nil,
		},
		{
			name:   "two points",
			stroke: ink.Stroke{{X: 0, Y: 0}, {X: 10, Y: 20}},
			want: []PathCommand{
				{"M", 0.0, 0.0},
				{"Q", 0.0, 0.0, 5.0, 10.0},
				{"L", 10.0, 20.0},
			},
		},
		{
			name:   "three points",
			stroke: ink.Stroke{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
			want: []PathCommand{
				{"M", 0.0, 0.0},
				{"Q", 0.0, 0.0, 5.0, 0.0},
				{"Q", 10.0, 0.0, 10.0, 5.0},
				{"L", 10.0, 10.0},
			},
		},
		{
			name:   "four points holds the last neighbour",
			stroke: ink.Stroke{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
			want: []PathCommand{
				{"M", 0.0, 0.0},
				{"Q", 0.0, 0.0, 5.0, 0.0},
				{"Q", 10.0, 0.0, 10.0, 5.0},
				{"Q", 10.0, 10.0, 5.0, 10.0},
				{"L", 0.0, 10.0},
			},
		},
		{
			name:   "repeated samples",
			stroke: ink.Stroke{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}},
			want: []PathCommand{
				{"M", 1.0, 1.0},
				{"Q", 1.0, 1.0, 1.0, 1.0},
				{"Q", 1.0, 1.0, 1.0, 1.0},
				{"L", 1.0, 1.0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SmoothPath(tt.stroke))
		})
	}
}

func TestSmoothPathEndsOnLastSample(t *testing.T) {
	s := ink.Stroke{{X: 1, Y: 2}, {X: 4, Y: 8}, {X: 9, Y: 3}, {X: 12, Y: 12}, {X: 20, Y: 1}}
	path := SmoothPath(s)

	assert.Len(t, path, len(s)+1)
	assert.Equal(t, PathCommand{"M", 1.0, 2.0}, path[0])
	assert.Equal(t, PathCommand{"L", 20.0, 1.0}, path[len(path)-1])
}

func TestPathBounds(t *testing.T) {
	path := SmoothPath(ink.Stroke{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}})
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 10, Height: 10}, PathBounds(path))
	assert.Equal(t, Rect{}, PathBounds(nil))
}

func TestDrawingBounds(t *testing.T) {
	d := ink.Drawing{
		{{X: 10, Y: 10}, {X: 20, Y: 10}},
		{{X: 5, Y: 5}},
		{{X: 30, Y: 40}, {X: 32, Y: 44}},
	}
	assert.Equal(t, Rect{X: 8, Y: 8, Width: 26, Height: 38}, DrawingBounds(d, 4))
	assert.True(t, DrawingBounds(ink.Drawing{{{X: 1, Y: 1}}}, 4).IsEmpty())
}

func TestRect(t *testing.T) {
	r := Rect{X: 1, Y: 1, Width: 4, Height: 2}
	assert.True(t, r.Contains(5, 3))
	assert.False(t, r.Contains(6, 3))
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 6, Height: 4}, r.Inset(1))

	w, h := Rect{X: 0.5, Y: 1, Width: 10.2, Height: 3}.Ceil()
	assert.Equal(t, 11, w)
	assert.Equal(t, 4, h)
}

func TestMatrix(t *testing.T) {
	m := Translate(10, 5).Multiply(Scale(2, 2))
	x, y := m.TransformPoint(1, 1)
	assert.Equal(t, 12.0, x)
	assert.Equal(t, 7.0, y)
	assert.Equal(t, Rect{X: 10, Y: 5, Width: 4, Height: 2}, m.TransformRect(Rect{Width: 2, Height: 1}))
	assert.Equal(t, []any{2.0, 0.0, 0.0, 2.0, 10.0, 5.0}, m.Args())
}
