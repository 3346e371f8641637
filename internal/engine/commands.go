package engine

import (
	"encoding/json"

	"github.com/inamate/inkoverlay/internal/ink"
	"github.com/inamate/inkoverlay/internal/pen"
)

// DrawCommand represents a single drawing operation for a Canvas2D frontend.
// A frame is a "clear" followed by one "path" per visible stroke.
type DrawCommand struct {
	Op          string        `json:"op"`                    // Operation: "clear", "path"
	Stroke      *int          `json:"stroke,omitempty"`      // Index of the stroke in the drawing, on "path"
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" ops
	Color       string        `json:"color,omitempty"`       // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	LineCap     string        `json:"lineCap,omitempty"`     // Always "round"
	LineJoin    string        `json:"lineJoin,omitempty"`    // Always "round"
	Opacity     *float64      `json:"opacity,omitempty"`     // Surface opacity, on "clear"
}

// CompileDrawCommands generates the draw command buffer for a drawing.
// Commands are in painter's order (oldest stroke first).
func CompileDrawCommands(d ink.Drawing, style pen.Style) []DrawCommand {
	opacity := style.Opacity
	commands := []DrawCommand{{Op: "clear", Opacity: &opacity}}

	for i, s := range d {
		path := SmoothPath(s)
		if len(path) == 0 {
			continue
		}
		commands = append(commands, DrawCommand{
			Op:          "path",
			Stroke:      &i,
			Path:        path,
			Color:       style.Color,
			StrokeWidth: style.Width,
			LineCap:     "round",
			LineJoin:    "round",
		})
	}

	return commands
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
