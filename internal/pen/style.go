package pen

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	DefaultColor   = "#272828"
	DefaultWidth   = 4.0
	DefaultOpacity = 0.7

	// MaxWidth bounds absurd widths coming from stored settings.
	MaxWidth = 200.0
)

// ErrInvalidColor is returned for colors that are not #rgb or #rrggbb hex.
var ErrInvalidColor = errors.New("invalid hex color")

// Style is the pen applied to every stroke at render time.
type Style struct {
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
}

// Default returns the built-in pen.
func Default() Style {
	return Style{Color: DefaultColor, Width: DefaultWidth, Opacity: DefaultOpacity}
}

// FieldError describes one corrected field.
type FieldError struct {
	Field    string
	Value    any
	Replaced any
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %v replaced by %v", e.Field, e.Value, e.Replaced)
}

// ConfigError lists every field Normalize had to correct.
type ConfigError struct {
	Fields []FieldError
}

func (e *ConfigError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return "invalid pen configuration: " + strings.Join(parts, "; ")
}

// Normalize returns a valid copy of s. Widths are clamped to (0, MaxWidth],
// opacities to [0, 1] and unparsable colors fall back to the default. The
// returned error is a *ConfigError when anything was corrected; the style
// is usable either way.
func (s Style) Normalize() (Style, error) {
	var fixes []FieldError

	if c, err := ParseColor(s.Color); err != nil {
		fixes = append(fixes, FieldError{Field: "color", Value: s.Color, Replaced: DefaultColor})
		s.Color = DefaultColor
	} else {
		s.Color = c
	}

	if w := ClampWidth(s.Width); w != s.Width {
		fixes = append(fixes, FieldError{Field: "width", Value: s.Width, Replaced: w})
		s.Width = w
	}

	if o := ClampOpacity(s.Opacity); o != s.Opacity {
		fixes = append(fixes, FieldError{Field: "opacity", Value: s.Opacity, Replaced: o})
		s.Opacity = o
	}

	if len(fixes) > 0 {
		return s, &ConfigError{Fields: fixes}
	}
	return s, nil
}

// ClampWidth maps w into (0, MaxWidth]. Non-positive and NaN widths become
// DefaultWidth.
func ClampWidth(w float64) float64 {
	if math.IsNaN(w) || w <= 0 {
		return DefaultWidth
	}
	return math.Min(w, MaxWidth)
}

// ClampOpacity maps o into [0, 1]. NaN becomes DefaultOpacity.
func ClampOpacity(o float64) float64 {
	if math.IsNaN(o) {
		return DefaultOpacity
	}
	return math.Max(0, math.Min(o, 1))
}

// ParseColor validates a CSS hex color and returns it lower-cased with its
// leading '#'.
func ParseColor(hex string) (string, error) {
	h := strings.TrimSpace(hex)
	h = strings.TrimPrefix(h, "#")
	if len(h) != 3 && len(h) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	for _, r := range h {
		if !isHexDigit(r) {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, hex)
		}
	}
	return "#" + strings.ToLower(h), nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
