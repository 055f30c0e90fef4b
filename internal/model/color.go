package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB color with channels in [0,1].
type Color = colorful.Color

const DefaultColorHex = "#007AFF"

// EncodeHex renders c as #RRGGBB. Each channel is scaled to 0..255 and truncated,
// so the encoding is not bit-exact but DecodeHex(EncodeHex(c)) stays within 1/255 of c.
func EncodeHex(c Color) string {
	c = c.Clamped()
	return fmt.Sprintf("#%02X%02X%02X", channelByte(c.R), channelByte(c.G), channelByte(c.B))
}

func channelByte(v float64) uint8 {
	n := int(v * 255)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

// DecodeHex parses RRGGBB with an optional leading '#'.
func DecodeHex(s string) (Color, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(raw) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: expected 6 hex digits", s)
	}
	n, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{
		R: float64((n>>16)&0xFF) / 255.0,
		G: float64((n>>8)&0xFF) / 255.0,
		B: float64(n&0xFF) / 255.0,
	}, nil
}

// CanonicalHex normalizes any accepted hex spelling to #RRGGBB (uppercase).
func CanonicalHex(s string) (string, error) {
	c, err := DecodeHex(s)
	if err != nil {
		return "", err
	}
	return EncodeHex(c), nil
}

// ContrastText picks black or white text for content drawn on top of c.
func ContrastText(c Color) Color {
	l, _, _ := c.Clamped().Lab()
	if l > 0.6 {
		return Color{R: 0, G: 0, B: 0}
	}
	return Color{R: 1, G: 1, B: 1}
}

// Dim blends c toward base by t (0 keeps c, 1 yields base).
func Dim(c, base Color, t float64) Color {
	return c.BlendRgb(base, t).Clamped()
}

var palette = map[string]string{
	"red":    "#FF3B30",
	"orange": "#FF9500",
	"yellow": "#FFCC00",
	"green":  "#34C759",
	"teal":   "#30B0C7",
	"blue":   DefaultColorHex,
	"purple": "#AF52DE",
	"pink":   "#FF2D55",
	"gray":   "#8E8E93",
}

// PaletteNames returns the named accent colors in display order.
func PaletteNames() []string {
	return []string{"red", "orange", "yellow", "green", "teal", "blue", "purple", "pink", "gray"}
}

// ResolveColor accepts a palette name or a hex string and returns canonical #RRGGBB.
func ResolveColor(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultColorHex, nil
	}
	if hex, ok := palette[strings.ToLower(s)]; ok {
		return hex, nil
	}
	hex, err := CanonicalHex(s)
	if err != nil {
		names := PaletteNames()
		sort.Strings(names)
		return "", fmt.Errorf("%w (or one of: %s)", err, strings.Join(names, ", "))
	}
	return hex, nil
}

// PaletteName returns the palette name for hex, if any.
func PaletteName(hex string) (string, bool) {
	canon, err := CanonicalHex(hex)
	if err != nil {
		return "", false
	}
	for name, h := range palette {
		if h == canon {
			return name, true
		}
	}
	return "", false
}
