//go:build js && wasm

package dom

import (
	"syscall/js"

	"github.com/inamate/inkoverlay/internal/overlay"
)

// Toolbar is the small control strip shown next to the content: hide/show,
// undo and clear.
type Toolbar struct {
	el       js.Value
	toggle   js.Value
	undo     js.Value
	bindings *Bindings
}

// NewToolbar builds the toolbar and wires its buttons to ctrl.
func NewToolbar(ctrl *overlay.Controller) *Toolbar {
	doc := js.Global().Get("document")
	t := &Toolbar{bindings: &Bindings{}}

	t.el = doc.Call("createElement", "div")
	t.el.Set("className", "ink-overlay-toolbar")
	st := t.el.Get("style")
	st.Set("position", "fixed")
	st.Set("right", "8px")
	st.Set("bottom", "8px")
	st.Set("zIndex", "1000")

	t.toggle = t.button(doc, toggleLabel(true))
	t.bindings.on(t.toggle, "click", func(js.Value) {
		t.toggle.Set("textContent", toggleLabel(ctrl.ToggleVisibility()))
	})

	t.undo = t.button(doc, "Undo")
	t.undo.Set("disabled", !ctrl.Status().CanUndo)
	t.bindings.on(t.undo, "click", func(js.Value) { ctrl.Undo() })

	clearBtn := t.button(doc, "Clear")
	t.bindings.on(clearBtn, "click", func(js.Value) { ctrl.ClearAll() })

	ctrl.SetUndoHandler(func(canUndo bool) {
		t.undo.Set("disabled", !canUndo)
	})

	doc.Get("body").Call("appendChild", t.el)
	return t
}

func (t *Toolbar) button(doc js.Value, label string) js.Value {
	b := doc.Call("createElement", "button")
	b.Set("type", "button")
	b.Set("textContent", label)
	t.el.Call("appendChild", b)
	return b
}

// Sync shows the toolbar only while the overlay is enabled and relabels the
// toggle, since Enable makes the ink visible again.
func (t *Toolbar) Sync(enabled, visible bool) {
	display := "none"
	if enabled {
		display = "flex"
	}
	t.el.Get("style").Set("display", display)
	t.toggle.Set("textContent", toggleLabel(visible))
}

func (t *Toolbar) Remove() {
	t.bindings.Release()
	t.el.Call("remove")
}
