package pen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        Style
		want      Style
		wantFixed []string
	}{
		{"valid", Style{"#FF00ff", 3, 0.5}, Style{"#ff00ff", 3, 0.5}, nil},
		{"short color", Style{"f0f", 1, 1}, Style{"#f0f", 1, 1}, nil},
		{"opacity above one", Style{"#000", 2, 1.5}, Style{"#000", 2, 1}, []string{"opacity"}},
		{"negative opacity", Style{"#000", 2, -0.2}, Style{"#000", 2, 0}, []string{"opacity"}},
		{"zero width", Style{"#000", 0, 0.5}, Style{"#000", DefaultWidth, 0.5}, []string{"width"}},
		{"huge width", Style{"#000", 1e6, 0.5}, Style{"#000", MaxWidth, 0.5}, []string{"width"}},
		{"bad color", Style{"red", 2, 0.5}, Style{DefaultColor, 2, 0.5}, []string{"color"}},
		{"everything", Style{"", -1, math.NaN()}, Default(), []string{"color", "width", "opacity"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize()
			assert.Equal(t, tt.want, got)
			if tt.wantFixed == nil {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			fields := make([]string, len(cfgErr.Fields))
			for i, f := range cfgErr.Fields {
				fields[i] = f.Field
			}
			assert.Equal(t, tt.wantFixed, fields)
		})
	}
}

func TestClampOpacityNeverExceedsOne(t *testing.T) {
	assert.Equal(t, 1.0, ClampOpacity(150.0/100))
	assert.Equal(t, 0.5, ClampOpacity(0.5))
	assert.Equal(t, 0.0, ClampOpacity(-3))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor(" #ABCDEF ")
	require.NoError(t, err)
	assert.Equal(t, "#abcdef", c)

	for _, bad := range []string{"", "#", "#12", "#12345", "#ggg", "rgb(0,0,0)"} {
		_, err := ParseColor(bad)
		assert.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}
