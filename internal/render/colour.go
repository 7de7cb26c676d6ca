package render

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ErrColourNotFound is returned when a colour name cannot be resolved.
var ErrColourNotFound = errors.New("colour not found")

// x11Names covers the names where the X11 colour database disagrees with SVG.
var x11Names = map[string]color.RGBA{
	"green":  {R: 0x00, G: 0xFF, B: 0x00, A: 0xFF},
	"gray":   {R: 0xBE, G: 0xBE, B: 0xBE, A: 0xFF},
	"grey":   {R: 0xBE, G: 0xBE, B: 0xBE, A: 0xFF},
	"maroon": {R: 0xB0, G: 0x30, B: 0x60, A: 0xFF},
	"purple": {R: 0xA0, G: 0x20, B: 0xF0, A: 0xFF},
}

// ResolveColour parses a colour name, "#rgb", "#rrggbb" or "rgb:r/g/b".
// On failure it returns Fallback together with an error.
func ResolveColour(name string) (color.RGBA, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	switch {
	case key == "":
	case strings.HasPrefix(key, "#"):
		if c, ok := parseHash(key[1:]); ok {
			return c, nil
		}
	case strings.HasPrefix(key, "rgb:"):
		if c, ok := parseRGBSpec(key[4:]); ok {
			return c, nil
		}
	default:
		if c, ok := x11Names[key]; ok {
			return c, nil
		}
		if c, ok := colornames.Map[key]; ok {
			return c, nil
		}
	}
	return Fallback, fmt.Errorf("%w: %q", ErrColourNotFound, name)
}

func parseHash(hex string) (color.RGBA, bool) {
	switch len(hex) {
	case 3:
		r, okR := parseChannel(hex[0:1])
		g, okG := parseChannel(hex[1:2])
		b, okB := parseChannel(hex[2:3])
		return color.RGBA{R: r, G: g, B: b, A: 0xFF}, okR && okG && okB
	case 6:
		r, okR := parseChannel(hex[0:2])
		g, okG := parseChannel(hex[2:4])
		b, okB := parseChannel(hex[4:6])
		return color.RGBA{R: r, G: g, B: b, A: 0xFF}, okR && okG && okB
	}
	return color.RGBA{}, false
}

func parseRGBSpec(spec string) (color.RGBA, bool) {
	parts := strings.Split(spec, "/")
	if len(parts) != 3 {
		return color.RGBA{}, false
	}
	var out [3]uint8
	for i, p := range parts {
		if len(p) < 1 || len(p) > 4 {
			return color.RGBA{}, false
		}
		v, ok := parseChannel(p)
		if !ok {
			return color.RGBA{}, false
		}
		out[i] = v
	}
	return color.RGBA{R: out[0], G: out[1], B: out[2], A: 0xFF}, true
}

// parseChannel scales a 1-4 digit hex value to 8 bits.
func parseChannel(hex string) (uint8, bool) {
	v, err := strconv.ParseUint(hex, 16, 16)
	if err != nil {
		return 0, false
	}
	max := uint64(1)<<(4*uint(len(hex))) - 1
	return uint8(v * 0xFF / max), true
}

// Colour16 expands an 8-bit colour to the 16-bit channels X reports.
func Colour16(c color.RGBA) (r, g, b uint16) {
	return uint16(c.R) * 0x101, uint16(c.G) * 0x101, uint16(c.B) * 0x101
}
