//go:build js && wasm

package dom

import (
	"fmt"
	"syscall/js"

	"github.com/inamate/inkoverlay/internal/surface"
)

// Measurer reads layout from the page and the content element.
type Measurer struct {
	Content js.Value
}

func (m Measurer) Measure() (surface.Metrics, error) {
	doc := js.Global().Get("document")
	root := doc.Get("documentElement")
	body := doc.Get("body")
	if root.IsNull() || body.IsNull() {
		return surface.Metrics{}, fmt.Errorf("document not ready")
	}
	if m.Content.IsUndefined() || m.Content.IsNull() || !m.Content.Get("isConnected").Bool() {
		return surface.Metrics{}, fmt.Errorf("content element detached")
	}

	win := js.Global()
	return surface.Metrics{
		DocumentScrollWidth:  root.Get("scrollWidth").Int(),
		DocumentScrollHeight: root.Get("scrollHeight").Int(),
		BodyClientHeight:     body.Get("clientHeight").Int(),
		ViewportHeight:       win.Get("innerHeight").Int(),
		ContentScrollWidth:   m.Content.Get("scrollWidth").Int(),
		ContentScrollHeight:  m.Content.Get("scrollHeight").Int(),
	}, nil
}
