//go:build js && wasm

package dom

import (
	"fmt"
	"sync"
	"syscall/js"

	"github.com/inamate/inkoverlay/internal/overlay"
)

// Page keeps one controller attached to whatever element currently matches
// a CSS selector. Host callbacks and the relay goroutine both drive it, so
// every method holds mu; mu is always taken before the controller's lock.
type Page struct {
	mu       sync.Mutex
	ctrl     *overlay.Controller
	selector string
	toolbar  *Toolbar

	canvas   *Canvas
	bindings *Bindings
}

// NewPage creates a page binding for ctrl. Nothing is attached until Mount.
func NewPage(ctrl *overlay.Controller, selector string) *Page {
	return &Page{ctrl: ctrl, selector: selector}
}

// SetSelector changes the element the overlay covers. It takes effect on
// the next Mount or Replace.
func (p *Page) SetSelector(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selector = selector
}

// Mount attaches to the current content element, keeping the drawing.
func (p *Page) Mount() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	canvas, m, err := p.buildLocked()
	if err != nil {
		return err
	}
	p.ctrl.Attach(canvas, m)
	p.afterAttachLocked()
	return nil
}

// Replace moves onto freshly rendered content and discards the drawing.
func (p *Page) Replace() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	canvas, m, err := p.buildLocked()
	if err != nil {
		p.ctrl.Detach()
		return err
	}
	p.ctrl.OnContentReplaced(canvas, m)
	p.afterAttachLocked()
	return nil
}

// Unmount detaches and removes everything the page added.
func (p *Page) Unmount() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ctrl.Detach()
	p.releaseLocked()
	if p.toolbar != nil {
		p.toolbar.Remove()
		p.toolbar = nil
	}
}

// SyncToolbar brings the toolbar in line with the controller.
func (p *Page) SyncToolbar() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncToolbarLocked()
}

func (p *Page) syncToolbarLocked() {
	if p.toolbar != nil {
		st := p.ctrl.Status()
		p.toolbar.Sync(st.Enabled, st.Visible)
	}
}

func (p *Page) buildLocked() (*Canvas, Measurer, error) {
	content := js.Global().Get("document").Call("querySelector", p.selector)
	if content.IsNull() {
		return nil, Measurer{}, fmt.Errorf("no element matches %q", p.selector)
	}
	if content.Get("style").Get("position").String() == "" {
		content.Get("style").Set("position", "relative")
	}

	p.releaseLocked()
	canvas, err := NewCanvas(content)
	if err != nil {
		return nil, Measurer{}, err
	}
	p.canvas = canvas
	p.bindings = Bind(p.ctrl, canvas)
	return canvas, Measurer{Content: content}, nil
}

func (p *Page) afterAttachLocked() {
	if p.toolbar == nil {
		p.toolbar = NewToolbar(p.ctrl)
	}
	p.syncToolbarLocked()
}

func (p *Page) releaseLocked() {
	if p.bindings != nil {
		p.bindings.Release()
		p.bindings = nil
	}
	if p.canvas != nil {
		p.canvas.Remove()
		p.canvas = nil
	}
}
