package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inkoverlay/internal/ink"
	"github.com/inamate/inkoverlay/internal/pen"
	"github.com/inamate/inkoverlay/internal/surface"
)

func callStrings(calls []Call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

func TestRenderScenarioA(t *testing.T) {
	rec := NewRecorder(surface.Geometry{Width: 100, Height: 100})
	d := ink.Drawing{{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}}

	require.NoError(t, Render(rec, d, pen.Style{Color: "#000000", Width: 2, Opacity: 1}))

	assert.Equal(t, []string{
		"clear",
		"style #000000 2",
		"begin",
		"M 0 0",
		"Q 0 0 5 0",
		"Q 10 0 10 5",
		"L 10 10",
		"stroke",
	}, callStrings(rec.Calls))
}

func TestRenderSkipsInvisibleStrokes(t *testing.T) {
	rec := NewRecorder(surface.Geometry{Width: 10, Height: 10})
	d := ink.Drawing{{}, {{X: 1, Y: 1}}, {{X: 0, Y: 0}, {X: 2, Y: 2}}}

	require.NoError(t, Render(rec, d, pen.Default()))

	assert.Equal(t, 1, rec.Count("begin"))
	assert.Equal(t, 1, rec.Count("stroke"))
}

func TestRenderUsesCurrentStyleForEveryStroke(t *testing.T) {
	rec := NewRecorder(surface.Geometry{Width: 10, Height: 10})
	d := ink.Drawing{{{X: 0, Y: 0}, {X: 1, Y: 1}}, {{X: 2, Y: 2}, {X: 3, Y: 3}}}

	require.NoError(t, Render(rec, d, pen.Style{Color: "#111111", Width: 1, Opacity: 1}))
	require.NoError(t, Render(rec, d, pen.Style{Color: "#ff0000", Width: 6, Opacity: 1}))

	frame := rec.LastFrame()
	require.NotEmpty(t, frame)
	assert.Equal(t, 1, countOp(frame, "style"))
	assert.Equal(t, "style #ff0000 6", frame[1].String())
	assert.Equal(t, 2, countOp(frame, "stroke"))
}

func TestRenderIsIdempotent(t *testing.T) {
	rec := NewRecorder(surface.Geometry{Width: 10, Height: 10})
	d := ink.Drawing{{{X: 0, Y: 0}, {X: 4, Y: 4}, {X: 8, Y: 0}}}

	require.NoError(t, Render(rec, d, pen.Default()))
	first := callStrings(rec.LastFrame())
	require.NoError(t, Render(rec, d, pen.Default()))
	assert.Equal(t, first, callStrings(rec.LastFrame()))
}

type failingPainter struct{ *Recorder }

func (failingPainter) Stroke() error { return errors.New("no backing store") }

func TestRenderReportsStrokeError(t *testing.T) {
	p := failingPainter{NewRecorder(surface.Geometry{Width: 1, Height: 1})}
	err := Render(p, ink.Drawing{{{X: 0, Y: 0}, {X: 1, Y: 1}}}, pen.Default())
	assert.ErrorContains(t, err, "stroke 0")
}

func countOp(calls []Call, op string) int {
	n := 0
	for _, c := range calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func TestCompileDrawCommands(t *testing.T) {
	d := ink.Drawing{{{X: 0, Y: 0}, {X: 10, Y: 20}}, {{X: 5, Y: 5}}}
	cmds := CompileDrawCommands(d, pen.Style{Color: "#abcdef", Width: 3, Opacity: 0.5})

	require.Len(t, cmds, 2)
	assert.Equal(t, "clear", cmds[0].Op)
	require.NotNil(t, cmds[0].Opacity)
	assert.Equal(t, 0.5, *cmds[0].Opacity)
	assert.Nil(t, cmds[0].Stroke)
	assert.Equal(t, "path", cmds[1].Op)
	require.NotNil(t, cmds[1].Stroke)
	assert.Equal(t, 0, *cmds[1].Stroke)
	assert.Nil(t, cmds[1].Opacity)
	assert.Equal(t, "round", cmds[1].LineCap)

	out, err := DrawCommandsToJSON(cmds)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, []any{"M", 0.0, 0.0}, decoded[1]["path"].([]any)[0])
	assert.Equal(t, []any{"L", 10.0, 20.0}, decoded[1]["path"].([]any)[2])
	assert.Equal(t, "#abcdef", decoded[1]["color"])
}

func TestDrawCommandsJSONKeepsZeroValues(t *testing.T) {
	d := ink.Drawing{{{X: 1, Y: 1}, {X: 4, Y: 4}}, {{X: 2, Y: 2}, {X: 8, Y: 3}}}
	out, err := DrawCommandsToJSON(CompileDrawCommands(d, pen.Style{Color: "#000000", Width: 2, Opacity: 0}))
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 3)

	opacity, ok := decoded[0]["opacity"]
	require.True(t, ok, "clear op must carry opacity 0: %s", out)
	assert.Equal(t, 0.0, opacity)
	assert.NotContains(t, decoded[0], "stroke")

	stroke, ok := decoded[1]["stroke"]
	require.True(t, ok, "first path op must carry stroke 0: %s", out)
	assert.Equal(t, 0.0, stroke)
	assert.Equal(t, 1.0, decoded[2]["stroke"])
	assert.NotContains(t, decoded[1], "opacity")
}

func TestRasterPainter(t *testing.T) {
	tests := []struct {
		name      string
		opacity   float64
		visible   bool
		wantAlpha uint32
	}{
		{"opaque", 1, true, 255},
		{"half opacity", 0.5, true, 128},
		{"hidden", 1, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRasterPainter(surface.Geometry{Width: 20, Height: 20}, 1)
			defer func() { _ = r.Close() }()
			r.SetOpacity(tt.opacity)
			r.SetVisible(tt.visible)

			d := ink.Drawing{{{X: 2, Y: 10}, {X: 18, Y: 10}}}
			require.NoError(t, Render(r, d, pen.Style{Color: "#ff0000", Width: 4, Opacity: tt.opacity}))

			img := r.Image()
			_, _, _, a := img.At(10, 10).RGBA()
			assert.InDelta(t, tt.wantAlpha, a>>8, 3)

			_, _, _, corner := img.At(0, 0).RGBA()
			assert.Zero(t, corner)
		})
	}
}

func TestRasterPainterColorAndScale(t *testing.T) {
	r := NewRasterPainter(surface.Geometry{Width: 10, Height: 10}, 2)
	defer func() { _ = r.Close() }()

	require.NoError(t, Render(r, ink.Drawing{{{X: 1, Y: 5}, {X: 9, Y: 5}}}, pen.Style{Color: "#0000ff", Width: 2, Opacity: 1}))

	img := r.Image()
	assert.Equal(t, 20, img.Bounds().Dx())
	c := color.NRGBAModel.Convert(img.At(10, 10)).(color.NRGBA)
	assert.Greater(t, c.B, uint8(200))
	assert.Less(t, c.R, uint8(50))
}

func TestRasterPainterResizeDropsContent(t *testing.T) {
	r := NewRasterPainter(surface.Geometry{Width: 20, Height: 20}, 1)
	defer func() { _ = r.Close() }()

	require.NoError(t, Render(r, ink.Drawing{{{X: 2, Y: 10}, {X: 18, Y: 10}}}, pen.Style{Color: "#000000", Width: 4, Opacity: 1}))
	require.NoError(t, r.SetSize(surface.Geometry{Width: 30, Height: 25}))

	assert.Equal(t, surface.Geometry{Width: 30, Height: 25}, r.Size())
	img := r.Image()
	assert.Equal(t, 30, img.Bounds().Dx())
	_, _, _, a := img.At(10, 10).RGBA()
	assert.Zero(t, a)
}

func TestEncodePNG(t *testing.T) {
	r := NewRasterPainter(surface.Geometry{Width: 16, Height: 8}, 1)
	defer func() { _ = r.Close() }()
	require.NoError(t, Render(r, ink.Drawing{{{X: 2, Y: 4}, {X: 14, Y: 4}}}, pen.Style{Color: "#00ff00", Width: 2, Opacity: 1}))

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, r.Image()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
	c := color.NRGBAModel.Convert(img.At(8, 4)).(color.NRGBA)
	assert.Greater(t, c.G, uint8(200))
}
