package settings

import (
	"github.com/inamate/inkoverlay/internal/pen"
)

// Settings are the per-profile overlay preferences.
type Settings struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
}

// Default returns the settings of a profile that never saved any.
func Default() Settings {
	return FromStyle(false, pen.Default())
}

// FromStyle builds settings from an on/off flag and a pen.
func FromStyle(enabled bool, s pen.Style) Settings {
	return Settings{Enabled: enabled, Color: s.Color, Width: s.Width, Opacity: s.Opacity}
}

// Style returns the pen part of the settings.
func (s Settings) Style() pen.Style {
	return pen.Style{Color: s.Color, Width: s.Width, Opacity: s.Opacity}
}

// Normalize returns a valid copy of s and a *pen.ConfigError describing any
// substituted values.
func (s Settings) Normalize() (Settings, error) {
	style, err := s.Style().Normalize()
	return FromStyle(s.Enabled, style), err
}
