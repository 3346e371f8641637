package engine

import (
	"fmt"
	"strings"

	"github.com/inamate/inkoverlay/internal/pen"
	"github.com/inamate/inkoverlay/internal/surface"
)

// Call is one recorded painter or surface call.
type Call struct {
	Op   string
	Args []float64
	Text string
}

func (c Call) String() string {
	var b strings.Builder
	b.WriteString(c.Op)
	if c.Text != "" {
		fmt.Fprintf(&b, " %s", c.Text)
	}
	for _, a := range c.Args {
		fmt.Fprintf(&b, " %g", a)
	}
	return b.String()
}

// Recorder is an in-memory surface that records every call it receives.
// It backs headless overlays and tests.
type Recorder struct {
	Calls []Call

	size    surface.Geometry
	visible bool
	opacity float64
	style   pen.Style
}

// NewRecorder creates a visible recorder with the given geometry.
func NewRecorder(g surface.Geometry) *Recorder {
	return &Recorder{size: g, visible: true, opacity: 1}
}

func (r *Recorder) record(op string, args ...float64) {
	r.Calls = append(r.Calls, Call{Op: op, Args: args})
}

func (r *Recorder) Clear() { r.record("clear") }

func (r *Recorder) SetStyle(s pen.Style) {
	r.style = s
	r.Calls = append(r.Calls, Call{Op: "style", Text: s.Color, Args: []float64{s.Width}})
}

func (r *Recorder) BeginPath() { r.record("begin") }

func (r *Recorder) MoveTo(x, y float64) { r.record("M", x, y) }

func (r *Recorder) QuadraticTo(cx, cy, x, y float64) { r.record("Q", cx, cy, x, y) }

func (r *Recorder) LineTo(x, y float64) { r.record("L", x, y) }

func (r *Recorder) Stroke() error {
	r.record("stroke")
	return nil
}

func (r *Recorder) Size() surface.Geometry { return r.size }

func (r *Recorder) SetSize(g surface.Geometry) error {
	r.size = g
	r.record("resize", float64(g.Width), float64(g.Height))
	return nil
}

func (r *Recorder) SetVisible(v bool) {
	r.visible = v
	r.Calls = append(r.Calls, Call{Op: "visible", Text: fmt.Sprint(v)})
}

func (r *Recorder) SetOpacity(o float64) {
	r.opacity = o
	r.record("opacity", o)
}

// Visible reports the last visibility set.
func (r *Recorder) Visible() bool { return r.visible }

// Opacity reports the last surface opacity set.
func (r *Recorder) Opacity() float64 { return r.opacity }

// Style reports the last pen applied.
func (r *Recorder) Style() pen.Style { return r.style }

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// LastFrame returns the calls since the most recent clear, which is the
// content currently on the surface.
func (r *Recorder) LastFrame() []Call {
	for i := len(r.Calls) - 1; i >= 0; i-- {
		if r.Calls[i].Op == "clear" {
			return r.Calls[i:]
		}
	}
	return nil
}

// Reset forgets every recorded call.
func (r *Recorder) Reset() {
	r.Calls = nil
}
