package engine

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/gogpu/gg"

	"github.com/inamate/inkoverlay/internal/pen"
	"github.com/inamate/inkoverlay/internal/surface"
)

// RasterPainter paints into an in-memory pixmap with gogpu/gg. Strokes are
// drawn into a layer that is composited at the surface opacity when the
// frame is flushed, which matches a CSS-opacity canvas in the browser.
type RasterPainter struct {
	dc        *gg.Context
	size      surface.Geometry
	transform Matrix2D
	scale     float64
	style     pen.Style
	opacity   float64
	visible   bool
	layered   bool
}

var (
	_ Painter        = (*RasterPainter)(nil)
	_ Flusher        = (*RasterPainter)(nil)
	_ surface.Target = (*RasterPainter)(nil)
)

// NewRasterPainter creates a painter for a surface of g CSS pixels backed by
// scale device pixels per CSS pixel.
func NewRasterPainter(g surface.Geometry, scale float64) *RasterPainter {
	if scale <= 0 {
		scale = 1
	}
	w, h := backing(g, scale)
	return &RasterPainter{
		dc:        gg.NewContext(w, h),
		size:      g,
		transform: Scale(scale, scale),
		scale:     scale,
		opacity:   1,
		visible:   true,
	}
}

func backing(g surface.Geometry, scale float64) (int, int) {
	w := int(math.Ceil(float64(max(g.Width, 1)) * scale))
	h := int(math.Ceil(float64(max(g.Height, 1)) * scale))
	return w, h
}

func (r *RasterPainter) Clear() {
	r.popLayer()
	r.dc.Clear()
	r.dc.PushLayer(gg.BlendNormal, r.opacity)
	r.layered = true
}

func (r *RasterPainter) SetStyle(s pen.Style) {
	r.style = s
	r.applyStyle()
}

func (r *RasterPainter) applyStyle() {
	if r.style.Color == "" {
		return
	}
	r.dc.SetHexColor(r.style.Color)
	r.dc.SetLineWidth(r.style.Width * r.scale)
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.SetLineJoin(gg.LineJoinRound)
}

func (r *RasterPainter) BeginPath() {
	r.dc.ClearPath()
}

func (r *RasterPainter) MoveTo(x, y float64) {
	r.dc.MoveTo(r.transform.TransformPoint(x, y))
}

func (r *RasterPainter) QuadraticTo(cx, cy, x, y float64) {
	tcx, tcy := r.transform.TransformPoint(cx, cy)
	tx, ty := r.transform.TransformPoint(x, y)
	r.dc.QuadraticTo(tcx, tcy, tx, ty)
}

func (r *RasterPainter) LineTo(x, y float64) {
	r.dc.LineTo(r.transform.TransformPoint(x, y))
}

func (r *RasterPainter) Stroke() error {
	return r.dc.Stroke()
}

// Flush composites the stroke layer onto the pixmap.
func (r *RasterPainter) Flush() error {
	r.popLayer()
	return nil
}

func (r *RasterPainter) popLayer() {
	if r.layered {
		r.dc.PopLayer()
		r.layered = false
	}
}

func (r *RasterPainter) Size() surface.Geometry {
	return r.size
}

// SetSize reallocates the backing pixmap. Like a canvas element, resizing
// drops the painted content and the paint state.
func (r *RasterPainter) SetSize(g surface.Geometry) error {
	r.popLayer()
	w, h := backing(g, r.scale)
	if err := r.dc.Resize(w, h); err != nil {
		return err
	}
	r.size = g
	r.dc.Clear()
	return nil
}

func (r *RasterPainter) SetVisible(v bool) {
	r.visible = v
}

// SetOpacity takes effect from the next frame.
func (r *RasterPainter) SetOpacity(o float64) {
	r.opacity = pen.ClampOpacity(o)
}

// Image returns the composited frame. A hidden surface yields a transparent
// image of the same size.
func (r *RasterPainter) Image() image.Image {
	r.popLayer()
	if !r.visible {
		return image.NewNRGBA(image.Rect(0, 0, r.dc.Width(), r.dc.Height()))
	}
	return r.dc.Image()
}

// EncodePNG writes img as PNG at the fastest compression level.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Close releases the drawing context.
func (r *RasterPainter) Close() error {
	return r.dc.Close()
}
