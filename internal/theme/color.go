// Package theme derives the dashboard UI palette from a single base color.
package theme

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/starford/echonotes/internal/apperr"
)

// Text colors picked by base brightness.
const (
	DarkText        = "#1A1A26"
	LightText       = "#f8f8f2"
	DarkMutedText   = "#292933"
	LightMutedText  = "#c8c8c2"
	brightnessLimit = 128
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$`)

// RGB is an opaque 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// Hex formats c as a lower-case #rrggbb string.
func (c RGB) Hex() string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// ParseColor parses #RRGGBB or #RRGGBBAA. The returned alpha is in [0,1] and
// is 1 for the six-digit form.
func ParseColor(s string) (RGB, float64, error) {
	if !hexColorRe.MatchString(s) {
		return RGB{}, 0, fmt.Errorf("%w: %q", apperr.ErrInvalidColor, s)
	}
	c, err := colorful.Hex(s[:7])
	if err != nil {
		return RGB{}, 0, fmt.Errorf("%w: %q: %v", apperr.ErrInvalidColor, s, err)
	}
	r, g, b := c.RGB255()
	alpha := 1.0
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:9], 16, 8)
		if err != nil {
			return RGB{}, 0, fmt.Errorf("%w: %q: %v", apperr.ErrInvalidColor, s, err)
		}
		alpha = float64(a) / 255
	}
	return RGB{R: r, G: g, B: b}, alpha, nil
}

func (c RGB) brightness() float64 {
	return float64(int(c.R)*299+int(c.G)*587+int(c.B)*114) / 1000
}

func (c RGB) adjust(percent float64) RGB {
	shift := percent / 100 * 255
	return RGB{R: clampChannel(float64(c.R) + shift), G: clampChannel(float64(c.G) + shift), B: clampChannel(float64(c.B) + shift)}
}

func (c RGB) complement() RGB {
	return RGB{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B}
}

// clampChannel rounds half up and clamps to [0,255].
func clampChannel(v float64) uint8 {
	v = math.Floor(v + 0.5)
	return uint8(math.Max(0, math.Min(255, v)))
}

// Brightness returns the weighted luminance 0.299R + 0.587G + 0.114B.
func Brightness(color string) (float64, error) {
	c, _, err := ParseColor(color)
	if err != nil {
		return 0, err
	}
	return c.brightness(), nil
}

// TextColor returns the readable foreground for text drawn over color.
func TextColor(color string) (string, error) {
	b, err := Brightness(color)
	if err != nil {
		return "", err
	}
	if b > brightnessLimit {
		return DarkText, nil
	}
	return LightText, nil
}

// AdjustBrightness shifts every channel by percent/100*255. Negative values
// darken. A zero shift returns color unchanged.
func AdjustBrightness(color string, percent float64) (string, error) {
	c, _, err := ParseColor(color)
	if err != nil {
		return "", err
	}
	if percent == 0 {
		return color, nil
	}
	return c.adjust(percent).Hex(), nil
}

// Complement inverts every channel of color.
func Complement(color string) (string, error) {
	c, _, err := ParseColor(color)
	if err != nil {
		return "", err
	}
	return c.complement().Hex(), nil
}

// WithOpacity returns color unchanged when opacity is 1, otherwise an
// rgba(r, g, b, a) string.
func WithOpacity(color string, opacity float64) (string, error) {
	c, _, err := ParseColor(color)
	if err != nil {
		return "", err
	}
	return withOpacity(color, c, opacity), nil
}

func withOpacity(hex string, c RGB, opacity float64) string {
	if opacity == 1 {
		return hex
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(opacity, 'f', -1, 64))
}
