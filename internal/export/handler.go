package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/image/draw"

	"github.com/inamate/inkoverlay/internal/engine"
	"github.com/inamate/inkoverlay/internal/ink"
	"github.com/inamate/inkoverlay/internal/pen"
	"github.com/inamate/inkoverlay/internal/surface"
)

const (
	maxBodySize  = 8 << 20 // 8MB
	maxDimension = 8192
	maxScale     = 4
)

var ErrInvalidSnapshot = errors.New("invalid snapshot request")

// Request is a drawing posted for rasterising.
type Request struct {
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Scale   float64     `json:"scale,omitempty"`
	Style   pen.Style   `json:"style"`
	Strokes ink.Drawing `json:"strokes"`
	// Crop trims the image to the inked area.
	Crop bool `json:"crop,omitempty"`
	// MaxSide downscales the result so neither side exceeds it.
	MaxSide int    `json:"maxSide,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Validate checks the request and fills in defaults.
func (req *Request) Validate() error {
	if req.Width <= 0 || req.Height <= 0 {
		return fmt.Errorf("%w: width and height must be positive", ErrInvalidSnapshot)
	}
	if req.Scale == 0 {
		req.Scale = 1
	}
	if req.Scale < 0 || req.Scale > maxScale || math.IsNaN(req.Scale) {
		return fmt.Errorf("%w: scale must be in (0, %d]", ErrInvalidSnapshot, maxScale)
	}
	if float64(req.Width)*req.Scale > maxDimension || float64(req.Height)*req.Scale > maxDimension {
		return fmt.Errorf("%w: image larger than %dpx", ErrInvalidSnapshot, maxDimension)
	}
	if req.MaxSide < 0 {
		return fmt.Errorf("%w: maxSide must not be negative", ErrInvalidSnapshot)
	}
	if req.Name == "" {
		req.Name = "ink"
	}
	return nil
}

// Render rasterises the drawing. Invalid pen values are corrected the same
// way the overlay corrects them.
func Render(req Request) (image.Image, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	style, err := req.Style.Normalize()
	if err != nil {
		slog.Warn("snapshot pen corrected", "error", err)
	}

	g := surface.Geometry{Width: req.Width, Height: req.Height}
	painter := engine.NewRasterPainter(g, req.Scale)
	defer painter.Close()
	painter.SetOpacity(style.Opacity)

	if err := engine.Render(painter, req.Strokes, style); err != nil {
		return nil, fmt.Errorf("render drawing: %w", err)
	}

	img := cloneImage(painter.Image())
	if req.Crop {
		img = crop(img, engine.DrawingBounds(req.Strokes, style.Width), req.Scale)
	}
	if req.MaxSide > 0 {
		img = fit(img, req.MaxSide)
	}
	return img, nil
}

func cloneImage(src image.Image) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

func crop(img *image.NRGBA, bounds engine.Rect, scale float64) *image.NRGBA {
	if bounds.IsEmpty() {
		return img
	}
	px := engine.Scale(scale, scale).TransformRect(bounds)
	r := image.Rect(
		int(math.Floor(px.X)),
		int(math.Floor(px.Y)),
		int(math.Ceil(px.X+px.Width)),
		int(math.Ceil(px.Y+px.Height)),
	).Intersect(img.Bounds())
	if r.Empty() {
		return img
	}

	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

func fit(img *image.NRGBA, maxSide int) *image.NRGBA {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if longest <= maxSide {
		return img
	}

	ratio := float64(maxSide) / float64(longest)
	w := max(1, int(math.Round(float64(b.Dx())*ratio)))
	h := max(1, int(math.Round(float64(b.Dy())*ratio)))

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// ExportPNG renders a posted drawing and streams it back as PNG.
func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	img, err := Render(req)
	if err != nil {
		if errors.Is(err, ErrInvalidSnapshot) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		slog.Error("render snapshot", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := engine.EncodePNG(&buf, img); err != nil {
		slog.Error("encode snapshot", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	name := sanitize(req.Name)
	if name == "" {
		name = "ink"
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.png"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)

	slog.Info("snapshot exported", "strokes", len(req.Strokes), "bytes", buf.Len())
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
