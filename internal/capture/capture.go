package capture

import (
	"errors"
	"log/slog"

	"github.com/inamate/inkoverlay/internal/ink"
)

// State is the pointer state of the overlay.
type State int

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	default:
		return "unknown"
	}
}

// Primary pointer button, as reported by PointerEvent.button and
// PointerEvent.buttons respectively.
const (
	primaryButton  = 0
	primaryButtons = 1
)

// PointerEvent is a pointer sample in surface-local coordinates.
type PointerEvent struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Button  int     `json:"button"`
	Buttons int     `json:"buttons"`
}

// Point returns the event position.
func (e PointerEvent) Point() ink.Point {
	return ink.Point{X: e.X, Y: e.Y}
}

// KeyEvent is a key release.
type KeyEvent struct {
	Key     string `json:"key"`
	KeyCode int    `json:"keyCode"`
	Alt     bool   `json:"altKey"`
}

// IsUndo reports whether the event is the Alt+Z undo shortcut.
func (e KeyEvent) IsUndo() bool {
	if !e.Alt {
		return false
	}
	return e.Key == "z" || e.Key == "Z" || e.KeyCode == 90 || e.KeyCode == 122
}

// Hooks are called back into the owner while handling input.
type Hooks struct {
	// Redraw repaints the whole drawing.
	Redraw func()
	// ApplyStyle reapplies the current pen before a stroke begins.
	ApplyStyle func()
}

// Capture turns pointer gestures into strokes. It is not safe for concurrent
// use; the owner serialises calls.
type Capture struct {
	store   *ink.Store
	hooks   Hooks
	logger  *slog.Logger
	state   State
	enabled bool
	// active is set while the current gesture owns the last stroke.
	active bool
}

// New creates a capture writing into store. Capture starts disabled.
func New(store *ink.Store, hooks Hooks, logger *slog.Logger) *Capture {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capture{store: store, hooks: hooks, logger: logger}
}

// State returns the current pointer state.
func (c *Capture) State() State {
	return c.state
}

// Enabled reports whether gestures produce strokes.
func (c *Capture) Enabled() bool {
	return c.enabled
}

// SetEnabled gates stroke production. Pointer state keeps tracking the
// button either way.
func (c *Capture) SetEnabled(enabled bool) {
	c.enabled = enabled
}

// Reset returns to Idle without touching the drawing.
func (c *Capture) Reset() {
	c.state = Idle
	c.active = false
}

// PointerDown begins a gesture. It reports whether the host should suppress
// the default action of the event.
func (c *Capture) PointerDown(ev PointerEvent) bool {
	if ev.Button != primaryButton {
		return false
	}
	c.state = Drawing
	c.active = false
	if !c.enabled {
		return false
	}

	c.store.StartStroke()
	c.active = true
	c.addPoint(ev.Point())
	call(c.hooks.ApplyStyle)
	return true
}

// PointerMove extends the current stroke while the primary button is held.
func (c *Capture) PointerMove(ev PointerEvent) {
	if c.state != Drawing || !c.enabled || !c.active {
		return
	}
	if ev.Buttons&primaryButtons == 0 {
		return
	}
	c.addPoint(ev.Point())
	call(c.hooks.Redraw)
}

// PointerUp ends the gesture wherever the pointer was released.
func (c *Capture) PointerUp(PointerEvent) {
	c.Reset()
}

// KeyUp handles the undo shortcut. It reports whether the key was consumed.
func (c *Capture) KeyUp(ev KeyEvent) bool {
	if !ev.IsUndo() {
		return false
	}
	// An undo mid-gesture removes the stroke being drawn.
	c.active = false
	c.store.UndoLastStroke()
	call(c.hooks.Redraw)
	return true
}

func (c *Capture) addPoint(p ink.Point) {
	if err := c.store.AddPoint(p); err != nil {
		if errors.Is(err, ink.ErrNoActiveStroke) {
			c.logger.Debug("dropped pointer sample", "x", p.X, "y", p.Y, "error", err)
			return
		}
		c.logger.Warn("add point", "error", err)
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
