package overlay

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/inkoverlay/internal/capture"
	"github.com/inamate/inkoverlay/internal/engine"
	"github.com/inamate/inkoverlay/internal/ink"
	"github.com/inamate/inkoverlay/internal/pen"
	"github.com/inamate/inkoverlay/internal/settings"
	"github.com/inamate/inkoverlay/internal/surface"
)

// Surface is the drawing surface laid over the review content.
type Surface interface {
	engine.Painter
	surface.Target
	SetVisible(visible bool)
	SetOpacity(opacity float64)
}

// Status is a snapshot of the controller, reported to the host.
type Status struct {
	Attached  bool             `json:"attached"`
	Enabled   bool             `json:"enabled"`
	Visible   bool             `json:"visible"`
	Capturing bool             `json:"capturing"`
	Strokes   int              `json:"strokes"`
	Points    int              `json:"points"`
	CanUndo   bool             `json:"canUndo"`
	Geometry  surface.Geometry `json:"geometry"`
	Pen       pen.Style        `json:"pen"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithInterval sets the periodic re-layout interval used while enabled.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithStyle sets the initial pen.
func WithStyle(s pen.Style) Option {
	return func(c *Controller) {
		if n, err := s.Normalize(); err == nil {
			c.style = n
		}
	}
}

// Controller owns one overlay: its drawing, pen, input state and surface.
// All methods are safe for concurrent use.
//
// Pen and on/off state survive Detach and apply to the next attached
// surface. Operations that need a surface (drawing input, undo, clear,
// resize) do nothing while detached.
type Controller struct {
	mu       sync.Mutex
	logger   *slog.Logger
	interval time.Duration

	store   *ink.Store
	capture *capture.Capture
	style   pen.Style
	enabled bool
	visible bool

	canvas   Surface
	manager  *surface.Manager
	geometry surface.Geometry

	onUndo func(canUndo bool)
}

// New creates a disabled, detached controller with the default pen.
func New(opts ...Option) *Controller {
	c := &Controller{
		logger:   slog.Default(),
		interval: surface.DefaultInterval,
		store:    ink.NewStore(),
		style:    pen.Default(),
		visible:  true,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.capture = capture.New(c.store, capture.Hooks{
		Redraw:     c.redrawLocked,
		ApplyStyle: c.applyStyleLocked,
	}, c.logger)

	c.store.SetEmptyHandler(func(empty bool) {
		if c.onUndo != nil {
			c.onUndo(!empty)
		}
	})
	return c
}

// SetUndoHandler registers fn to be told whether undo is possible whenever
// that changes. fn runs with the controller locked and must not call back
// into it.
func (c *Controller) SetUndoHandler(fn func(canUndo bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUndo = fn
}

// Attach binds the controller to a surface measured through m. A previously
// attached surface is detached first. The drawing is kept.
func (c *Controller) Attach(s Surface, m surface.Measurer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.detachLocked()
	c.attachLocked(s, m)
}

// Detach releases the surface and stops periodic re-layout.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detachLocked()
}

// OnContentReplaced moves the overlay onto freshly rendered review content.
// The previous drawing belongs to the old content and is discarded.
func (c *Controller) OnContentReplaced(s Surface, m surface.Measurer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.detachLocked()
	c.store.Clear()
	c.attachLocked(s, m)
}

// OnResize re-measures the content and resizes the surface if needed.
func (c *Controller) OnResize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resizeLocked()
}

func (c *Controller) attachLocked(s Surface, m surface.Measurer) {
	c.canvas = s
	c.manager = surface.NewManager(m, surface.WithInterval(c.interval))
	c.geometry = s.Size()

	s.SetOpacity(c.style.Opacity)
	c.applyVisibilityLocked()
	c.resizeLocked()

	if c.enabled {
		c.manager.Start(c.OnResize)
	}
	c.logger.Debug("overlay attached", "width", c.geometry.Width, "height", c.geometry.Height)
}

func (c *Controller) detachLocked() {
	if c.canvas == nil {
		return
	}
	c.manager.Detach()
	c.manager = nil
	c.canvas = nil
	c.capture.Reset()
	c.logger.Debug("overlay detached")
}

func (c *Controller) resizeLocked() {
	if c.canvas == nil {
		return
	}
	g, err := c.manager.Resize(c.canvas)
	if errors.Is(err, surface.ErrDetached) {
		return
	}
	if err != nil {
		c.logger.Warn("resize overlay", "error", err)
		return
	}
	if g != c.geometry {
		c.logger.Debug("overlay resized", "width", g.Width, "height", g.Height)
		c.geometry = g
	}
	c.redrawLocked()
}

// Enable shows the surface and starts capturing. Enabling an enabled
// overlay does nothing.
func (c *Controller) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enableLocked()
}

// Disable hides the surface and stops capturing. The drawing is kept and
// shows again on the next Enable.
func (c *Controller) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disableLocked()
}

func (c *Controller) enableLocked() {
	if c.enabled {
		return
	}
	c.enabled = true
	c.visible = true
	c.applyVisibilityLocked()
	if c.manager != nil {
		c.manager.Start(c.OnResize)
	}
	c.redrawLocked()
}

func (c *Controller) disableLocked() {
	if !c.enabled {
		return
	}
	c.enabled = false
	c.applyVisibilityLocked()
	if c.manager != nil {
		c.manager.Stop()
	}
}

// ToggleVisibility shows or hides the drawing without disabling the
// overlay. Capture follows visibility so hidden ink cannot be extended.
// It returns the new visibility.
func (c *Controller) ToggleVisibility() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.visible = !c.visible
	c.applyVisibilityLocked()
	return c.visible
}

func (c *Controller) applyVisibilityLocked() {
	on := c.enabled && c.visible
	c.capture.SetEnabled(on)
	if c.canvas != nil {
		c.canvas.SetVisible(on)
	}
}

// SetColor changes the pen color. An invalid color is rejected and the
// current one kept.
func (c *Controller) SetColor(hex string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	color, err := pen.ParseColor(hex)
	if err != nil {
		c.logger.Warn("rejected pen color", "color", hex, "keep", c.style.Color)
		return err
	}
	c.style.Color = color
	c.redrawLocked()
	return nil
}

// SetWidth changes the pen width, clamping it into range. It returns the
// width applied.
func (c *Controller) SetWidth(w float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	applied := pen.ClampWidth(w)
	if applied != w {
		c.logger.Warn("pen width out of range", "width", w, "applied", applied)
	}
	c.style.Width = applied
	c.redrawLocked()
	return applied
}

// SetOpacity changes the surface opacity, clamping it into [0, 1]. It
// returns the opacity applied.
func (c *Controller) SetOpacity(o float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	applied := pen.ClampOpacity(o)
	if applied != o {
		c.logger.Warn("opacity out of range", "opacity", o, "applied", applied)
	}
	c.style.Opacity = applied
	if c.canvas != nil {
		c.canvas.SetOpacity(applied)
	}
	c.redrawLocked()
	return applied
}

// ClearAll erases the drawing.
func (c *Controller) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.canvas == nil {
		return
	}
	c.store.Clear()
	c.redrawLocked()
}

// Undo removes the most recent stroke and reports whether there was one.
func (c *Controller) Undo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.canvas == nil {
		return false
	}
	removed := c.store.UndoLastStroke()
	c.redrawLocked()
	return removed
}

// PointerDown reports whether the host should prevent the default action.
func (c *Controller) PointerDown(ev capture.PointerEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.canvas == nil {
		return false
	}
	return c.capture.PointerDown(ev)
}

func (c *Controller) PointerMove(ev capture.PointerEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.canvas == nil {
		return
	}
	c.capture.PointerMove(ev)
}

func (c *Controller) PointerUp(ev capture.PointerEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capture.PointerUp(ev)
}

// KeyUp reports whether the key was handled.
func (c *Controller) KeyUp(ev capture.KeyEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.canvas == nil {
		return false
	}
	return c.capture.KeyUp(ev)
}

// Settings returns the current preferences for persisting.
func (c *Controller) Settings() settings.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return settings.FromStyle(c.enabled, c.style)
}

// ApplySettings loads stored preferences. Invalid values are replaced and
// reported through the returned *pen.ConfigError; the rest still applies.
func (c *Controller) ApplySettings(s settings.Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := s.Normalize()
	if err != nil {
		c.logger.Warn("stored settings corrected", "error", err)
	}

	c.style = n.Style()
	if c.canvas != nil {
		c.canvas.SetOpacity(c.style.Opacity)
	}
	if n.Enabled {
		c.enableLocked()
	} else {
		c.disableLocked()
	}
	c.redrawLocked()
	return err
}

// Status returns a snapshot for reporting.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		Attached:  c.canvas != nil,
		Enabled:   c.enabled,
		Visible:   c.enabled && c.visible,
		Capturing: c.capture.Enabled(),
		Strokes:   c.store.Len(),
		Points:    c.store.All().Points(),
		CanUndo:   !c.store.Empty(),
		Geometry:  c.geometry,
		Pen:       c.style,
	}
}

// Drawing returns the current strokes.
func (c *Controller) Drawing() ink.Drawing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.All()
}

// DrawCommands compiles the current frame for JSON consumers.
func (c *Controller) DrawCommands() []engine.DrawCommand {
	c.mu.Lock()
	defer c.mu.Unlock()
	return engine.CompileDrawCommands(c.store.All(), c.style)
}

func (c *Controller) applyStyleLocked() {
	if c.canvas != nil {
		c.canvas.SetStyle(c.style)
	}
}

func (c *Controller) redrawLocked() {
	if c.canvas == nil {
		return
	}
	if err := engine.Render(c.canvas, c.store.All(), c.style); err != nil {
		c.logger.Warn("redraw overlay", "error", err)
	}
}
