//go:build js && wasm

package dom

import (
	"syscall/js"

	"github.com/inamate/inkoverlay/internal/capture"
	"github.com/inamate/inkoverlay/internal/overlay"
)

type listener struct {
	target js.Value
	event  string
	fn     js.Func
}

// Bindings are the DOM listeners feeding one canvas into a controller.
type Bindings struct {
	listeners []listener
}

// Bind routes pointer, key and window resize events to ctrl. Pointer-down
// and move come from the canvas; release and keys are caught anywhere so a
// gesture that leaves the canvas still ends.
func Bind(ctrl *overlay.Controller, canvas *Canvas) *Bindings {
	b := &Bindings{}
	win := js.Global()
	doc := win.Get("document")
	el := canvas.Element()

	b.on(el, "pointerdown", func(ev js.Value) {
		if ctrl.PointerDown(pointerEvent(ev)) {
			ev.Call("preventDefault")
			el.Call("setPointerCapture", ev.Get("pointerId"))
		}
	})
	b.on(el, "pointermove", func(ev js.Value) {
		ctrl.PointerMove(pointerEvent(ev))
	})
	b.on(win, "pointerup", func(ev js.Value) {
		ctrl.PointerUp(pointerEvent(ev))
	})
	b.on(win, "pointercancel", func(ev js.Value) {
		ctrl.PointerUp(pointerEvent(ev))
	})
	b.on(doc, "keyup", func(ev js.Value) {
		k := capture.KeyEvent{
			Key:     ev.Get("key").String(),
			KeyCode: ev.Get("keyCode").Int(),
			Alt:     ev.Get("altKey").Bool(),
		}
		if ctrl.KeyUp(k) {
			ev.Call("preventDefault")
		}
	})
	b.on(win, "resize", func(js.Value) {
		ctrl.OnResize()
	})
	return b
}

func (b *Bindings) on(target js.Value, event string, handle func(ev js.Value)) {
	fn := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) > 0 {
			handle(args[0])
		}
		return nil
	})
	target.Call("addEventListener", event, fn)
	b.listeners = append(b.listeners, listener{target: target, event: event, fn: fn})
}

// Release removes every listener and frees the callbacks.
func (b *Bindings) Release() {
	for _, l := range b.listeners {
		l.target.Call("removeEventListener", l.event, l.fn)
		l.fn.Release()
	}
	b.listeners = nil
}

func pointerEvent(ev js.Value) capture.PointerEvent {
	return capture.PointerEvent{
		X:       ev.Get("offsetX").Float(),
		Y:       ev.Get("offsetY").Float(),
		Button:  ev.Get("button").Int(),
		Buttons: ev.Get("buttons").Int(),
	}
}
