//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"syscall/js"

	"github.com/inamate/inkoverlay/internal/dom"
	"github.com/inamate/inkoverlay/internal/engine"
	"github.com/inamate/inkoverlay/internal/overlay"
	"github.com/inamate/inkoverlay/internal/relay"
	"github.com/inamate/inkoverlay/internal/settings"
)

const defaultSelector = "#qa"

var (
	ctrl   *overlay.Controller
	page   *dom.Page
	client *relay.Client
	cancel context.CancelFunc
)

func main() {
	ctrl = overlay.New()
	page = dom.NewPage(ctrl, defaultSelector)

	// Create the overlay API object
	inkOverlay := js.Global().Get("Object").New()

	// --- Commands (host → overlay) ---
	inkOverlay.Set("mount", js.FuncOf(mount))
	inkOverlay.Set("unmount", js.FuncOf(unmount))
	inkOverlay.Set("enable", js.FuncOf(enable))
	inkOverlay.Set("disable", js.FuncOf(disable))
	inkOverlay.Set("setColor", js.FuncOf(setColor))
	inkOverlay.Set("setWidth", js.FuncOf(setWidth))
	inkOverlay.Set("setOpacity", js.FuncOf(setOpacity))
	inkOverlay.Set("clearAll", js.FuncOf(clearAll))
	inkOverlay.Set("undo", js.FuncOf(undo))
	inkOverlay.Set("toggleVisibility", js.FuncOf(toggleVisibility))
	inkOverlay.Set("onContentReplaced", js.FuncOf(onContentReplaced))
	inkOverlay.Set("onResize", js.FuncOf(onResize))
	inkOverlay.Set("applySettings", js.FuncOf(applySettings))
	inkOverlay.Set("connect", js.FuncOf(connect))
	inkOverlay.Set("disconnect", js.FuncOf(disconnect))

	// --- Queries (host ← overlay) ---
	inkOverlay.Set("status", js.FuncOf(status))
	inkOverlay.Set("drawCommands", js.FuncOf(drawCommands))
	inkOverlay.Set("settings", js.FuncOf(getSettings))

	js.Global().Set("inkOverlay", inkOverlay)
	js.Global().Set("inkOverlayWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func toJSON(v any) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

func mount(this js.Value, args []js.Value) interface{} {
	if len(args) > 0 && args[0].Type() == js.TypeString {
		page.SetSelector(args[0].String())
	}
	if err := page.Mount(); err != nil {
		return fail(err)
	}
	return ok()
}

func unmount(this js.Value, args []js.Value) interface{} {
	page.Unmount()
	return nil
}

func enable(this js.Value, args []js.Value) interface{} {
	ctrl.Enable()
	page.SyncToolbar()
	return nil
}

func disable(this js.Value, args []js.Value) interface{} {
	ctrl.Disable()
	page.SyncToolbar()
	return nil
}

func setColor(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing color"})
	}
	if err := ctrl.SetColor(args[0].String()); err != nil {
		return fail(err)
	}
	return ok()
}

func setWidth(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	return js.ValueOf(ctrl.SetWidth(args[0].Float()))
}

func setOpacity(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	return js.ValueOf(ctrl.SetOpacity(args[0].Float()))
}

func clearAll(this js.Value, args []js.Value) interface{} {
	ctrl.ClearAll()
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ctrl.Undo())
}

func toggleVisibility(this js.Value, args []js.Value) interface{} {
	visible := ctrl.ToggleVisibility()
	page.SyncToolbar()
	return js.ValueOf(visible)
}

func onContentReplaced(this js.Value, args []js.Value) interface{} {
	if err := page.Replace(); err != nil {
		return fail(err)
	}
	return ok()
}

func onResize(this js.Value, args []js.Value) interface{} {
	ctrl.OnResize()
	return nil
}

func applySettings(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing settings JSON"})
	}
	var s settings.Settings
	if err := json.Unmarshal([]byte(args[0].String()), &s); err != nil {
		return fail(err)
	}
	err := ctrl.ApplySettings(s)
	page.SyncToolbar()
	if err != nil {
		return fail(err)
	}
	return ok()
}

// connect dials the review relay in the background. The url carries the
// session path and token.
func connect(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing relay url"})
	}
	url := args[0].String()
	disconnect(js.Undefined(), nil)

	var ctx context.Context
	ctx, cancel = context.WithCancel(context.Background())
	go func() {
		c, err := relay.Dial(ctx, url, ctrl, func(*overlay.Controller) {
			if err := page.Replace(); err != nil {
				slog.Warn("reattach overlay", "error", err)
			}
			page.SyncToolbar()
		}, slog.Default())
		if err != nil {
			slog.Warn("connect relay", "error", err)
			return
		}
		client = c
		if err := c.Run(ctx); err != nil {
			slog.Warn("relay stopped", "error", err)
		}
	}()
	return nil
}

func disconnect(this js.Value, args []js.Value) interface{} {
	if cancel != nil {
		cancel()
		cancel = nil
	}
	if client != nil {
		client.Close()
		client = nil
	}
	return nil
}

// --- Query Handlers ---

func status(this js.Value, args []js.Value) interface{} {
	return toJSON(ctrl.Status())
}

func drawCommands(this js.Value, args []js.Value) interface{} {
	out, err := engine.DrawCommandsToJSON(ctrl.DrawCommands())
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(out)
}

func getSettings(this js.Value, args []js.Value) interface{} {
	return toJSON(ctrl.Settings())
}
