//go:build js && wasm

// Package dom binds the overlay to a browser page.
package dom

import (
	"fmt"
	"syscall/js"

	"github.com/inamate/inkoverlay/internal/engine"
	"github.com/inamate/inkoverlay/internal/pen"
	"github.com/inamate/inkoverlay/internal/surface"
)

// Canvas is an HTML canvas laid over the content element. Coordinates are
// CSS pixels; the backing store is scaled by devicePixelRatio.
type Canvas struct {
	el    js.Value
	ctx   js.Value
	size  surface.Geometry
	ratio float64
	style pen.Style
}

// NewCanvas creates the canvas and appends it to container.
func NewCanvas(container js.Value) (*Canvas, error) {
	if container.IsUndefined() || container.IsNull() {
		return nil, fmt.Errorf("no content element to draw over")
	}
	doc := js.Global().Get("document")
	el := doc.Call("createElement", "canvas")
	el.Set("className", "ink-overlay")

	st := el.Get("style")
	st.Set("position", "absolute")
	st.Set("top", "0")
	st.Set("left", "0")
	st.Set("zIndex", "999")
	st.Set("touchAction", "none")
	st.Set("pointerEvents", "auto")

	ratio := js.Global().Get("devicePixelRatio").Float()
	if ratio <= 0 {
		ratio = 1
	}

	container.Call("appendChild", el)
	return &Canvas{
		el:    el,
		ctx:   el.Call("getContext", "2d"),
		ratio: ratio,
		style: pen.Default(),
	}, nil
}

// Element is the underlying canvas element.
func (c *Canvas) Element() js.Value { return c.el }

// Remove takes the canvas out of the page.
func (c *Canvas) Remove() { c.el.Call("remove") }

func (c *Canvas) Size() surface.Geometry { return c.size }

// SetSize resizes the backing store. Doing so resets the 2D context, so the
// transform and pen are applied again.
func (c *Canvas) SetSize(g surface.Geometry) error {
	c.size = g
	c.el.Set("width", int(float64(g.Width)*c.ratio))
	c.el.Set("height", int(float64(g.Height)*c.ratio))
	st := c.el.Get("style")
	st.Set("width", fmt.Sprintf("%dpx", g.Width))
	st.Set("height", fmt.Sprintf("%dpx", g.Height))

	c.ctx.Call("setTransform", engine.Scale(c.ratio, c.ratio).Args()...)
	c.SetStyle(c.style)
	return nil
}

func (c *Canvas) SetVisible(visible bool) {
	display := "none"
	if visible {
		display = "block"
	}
	c.el.Get("style").Set("display", display)
}

func (c *Canvas) SetOpacity(opacity float64) {
	c.el.Get("style").Set("opacity", opacity)
}

func (c *Canvas) Clear() {
	c.ctx.Call("clearRect", 0, 0, c.size.Width, c.size.Height)
}

func (c *Canvas) SetStyle(s pen.Style) {
	c.style = s
	c.ctx.Set("strokeStyle", s.Color)
	c.ctx.Set("lineWidth", s.Width)
	c.ctx.Set("lineCap", "round")
	c.ctx.Set("lineJoin", "round")
}

func (c *Canvas) BeginPath()          { c.ctx.Call("beginPath") }
func (c *Canvas) MoveTo(x, y float64) { c.ctx.Call("moveTo", x, y) }
func (c *Canvas) LineTo(x, y float64) { c.ctx.Call("lineTo", x, y) }

func (c *Canvas) QuadraticTo(cx, cy, x, y float64) {
	c.ctx.Call("quadraticCurveTo", cx, cy, x, y)
}

func (c *Canvas) Stroke() error {
	c.ctx.Call("stroke")
	return nil
}
