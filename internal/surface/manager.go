package surface

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultInterval is how often layout is re-measured while active, to catch
	// content that grows after asynchronous loads.
	DefaultInterval = 750 * time.Millisecond

	// DefaultInset is subtracted from measured sizes so the surface itself never
	// pushes the document into showing a scrollbar.
	DefaultInset = 1
)

// ErrDetached is returned once the manager has been torn down.
var ErrDetached = errors.New("surface detached")

// Geometry is the pixel size of the drawing surface's backing store.
type Geometry struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Metrics are the layout measurements of the content the surface covers.
type Metrics struct {
	DocumentScrollWidth  int `json:"documentScrollWidth"`
	DocumentScrollHeight int `json:"documentScrollHeight"`
	BodyClientHeight     int `json:"bodyClientHeight"`
	ViewportHeight       int `json:"viewportHeight"`
	ContentScrollWidth   int `json:"contentScrollWidth"`
	ContentScrollHeight  int `json:"contentScrollHeight"`
}

// Measurer reads the current layout of the content area.
type Measurer interface {
	Measure() (Metrics, error)
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func() (Metrics, error)

func (f MeasureFunc) Measure() (Metrics, error) { return f() }

// Target is anything with a resizable backing store.
type Target interface {
	Size() Geometry
	SetSize(g Geometry) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithInterval sets the periodic re-layout interval.
func WithInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithInset sets the number of pixels subtracted from measured sizes.
func WithInset(px int) Option {
	return func(m *Manager) {
		if px >= 0 {
			m.inset = px
		}
	}
}

// Manager keeps a surface sized to the content underneath it.
type Manager struct {
	measurer Measurer
	interval time.Duration
	inset    int

	mu       sync.Mutex
	cancel   context.CancelFunc
	detached bool
}

// NewManager creates a manager measuring through m.
func NewManager(m Measurer, opts ...Option) *Manager {
	mgr := &Manager{
		measurer: m,
		interval: DefaultInterval,
		inset:    DefaultInset,
	}
	for _, opt := range opts {
		opt(mgr)
	}
	return mgr
}

// Interval returns the periodic re-layout interval.
func (m *Manager) Interval() time.Duration {
	return m.interval
}

// Compute derives the surface geometry from layout metrics. The width follows
// the scrollable document, the height the tallest of the candidate
// measurements, both less the inset and never below one pixel.
func (m *Manager) Compute(mt Metrics) Geometry {
	w := max(mt.DocumentScrollWidth, mt.ContentScrollWidth) - m.inset
	h := max(
		mt.BodyClientHeight,
		mt.ViewportHeight,
		mt.DocumentScrollHeight,
		mt.ContentScrollHeight,
	) - m.inset

	return Geometry{Width: max(w, 1), Height: max(h, 1)}
}

// Resize measures the content and applies the resulting geometry to t. The
// backing store is only touched when the geometry changed.
func (m *Manager) Resize(t Target) (Geometry, error) {
	m.mu.Lock()
	detached := m.detached
	m.mu.Unlock()
	if detached {
		return Geometry{}, ErrDetached
	}

	mt, err := m.measurer.Measure()
	if err != nil {
		return Geometry{}, fmt.Errorf("measure content: %w", err)
	}

	g := m.Compute(mt)
	if t.Size() != g {
		if err := t.SetSize(g); err != nil {
			return Geometry{}, fmt.Errorf("apply geometry %dx%d: %w", g.Width, g.Height, err)
		}
	}
	return g, nil
}

// Start calls fn once on the next scheduler turn and then every interval
// until Stop or Detach. Starting a running manager is a no-op.
func (m *Manager) Start(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.detached || m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.run(ctx, fn)
}

func (m *Manager) run(ctx context.Context, fn func()) {
	if ctx.Err() != nil {
		return
	}
	fn()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			fn()
		}
	}
}

// Stop cancels the periodic re-layout. It does not wait for an in-flight
// call to finish, so it is safe to call from inside fn's callers.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Running reports whether the periodic re-layout is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// Detach stops the manager for good. Further Resize calls return ErrDetached
// and Start does nothing.
func (m *Manager) Detach() {
	m.Stop()

	m.mu.Lock()
	m.detached = true
	m.mu.Unlock()
}
