package engine

import (
	"fmt"

	"github.com/inamate/inkoverlay/internal/ink"
	"github.com/inamate/inkoverlay/internal/pen"
)

// Painter is an immediate-mode drawing target with Canvas2D semantics.
// Opacity is a property of the surface, not of the painter, so SetStyle
// only consumes the color and width of the pen.
type Painter interface {
	Clear()
	SetStyle(s pen.Style)
	BeginPath()
	MoveTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	LineTo(x, y float64)
	Stroke() error
}

// Flusher is implemented by painters that buffer work until the frame ends.
type Flusher interface {
	Flush() error
}

// Render repaints the whole drawing from scratch with the current pen.
// Every stroke shares the same style regardless of when it was drawn.
func Render(p Painter, d ink.Drawing, style pen.Style) error {
	p.Clear()
	p.SetStyle(style)

	for i, s := range d {
		path := SmoothPath(s)
		if len(path) == 0 {
			continue
		}
		p.BeginPath()
		ReplayPath(p, path)
		if err := p.Stroke(); err != nil {
			return fmt.Errorf("stroke %d: %w", i, err)
		}
	}

	if f, ok := p.(Flusher); ok {
		return f.Flush()
	}
	return nil
}
