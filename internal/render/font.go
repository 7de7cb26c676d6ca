package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ErrFontNotFound is returned when a font spec names nothing loadable.
var ErrFontNotFound = errors.New("font not found")

const defaultPointSize = 13

// FontMetrics are the extents the layout needs, in pixels.
type FontMetrics struct {
	Ascent int
	Height int
}

// Font is a loaded face plus its metrics.
type Font struct {
	Spec    string
	Face    font.Face
	Metrics FontMetrics
}

// Measure returns the advance width of s.
func (f *Font) Measure(s string) int {
	return font.MeasureString(f.Face, s).Ceil()
}

// LoadFont resolves a font spec:
//
//	""  "fixed"  XLFD ("-misc-fixed-...")  built-in 7x13 bitmap, or a Go font
//	                                      when the XLFD family asks for one
//	mono[:size] sans[:size] sans-bold[:size]  embedded Go fonts
//	/path/face.ttf[:size] /path/face.otf[:size]
func LoadFont(spec string) (*Font, error) {
	spec = strings.TrimSpace(spec)
	face, err := loadFace(spec)
	if err != nil {
		return nil, err
	}
	m := face.Metrics()
	return &Font{
		Spec: spec,
		Face: face,
		Metrics: FontMetrics{
			Ascent: m.Ascent.Ceil(),
			Height: m.Ascent.Ceil() + m.Descent.Ceil(),
		},
	}, nil
}

func loadFace(spec string) (font.Face, error) {
	switch {
	case spec == "" || spec == "fixed":
		return basicfont.Face7x13, nil
	case strings.HasPrefix(spec, "-"):
		return loadXLFD(spec)
	}

	name, size, err := splitSize(spec)
	if err != nil {
		return nil, err
	}
	switch name {
	case "mono":
		return embeddedFace(gomono.TTF, size)
	case "sans":
		return embeddedFace(goregular.TTF, size)
	case "sans-bold":
		return embeddedFace(gobold.TTF, size)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontNotFound, err)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf":
		tt, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrFontNotFound, name, err)
		}
		return truetype.NewFace(tt, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
	case ".otf":
		ot, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrFontNotFound, name, err)
		}
		face, err := opentype.NewFace(ot, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return nil, fmt.Errorf("%w: face %s: %v", ErrFontNotFound, name, err)
		}
		return face, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrFontNotFound, spec)
}

// loadXLFD maps an X logical font description onto the fonts available
// here. Only the family, weight and pixel size fields are honoured.
func loadXLFD(spec string) (font.Face, error) {
	fields := strings.Split(spec, "-")
	// fields[0] is empty: -foundry-family-weight-slant-setwidth-style-pixels-...
	if len(fields) < 8 {
		return nil, fmt.Errorf("%w: malformed XLFD %q", ErrFontNotFound, spec)
	}
	family := strings.ToLower(fields[2])
	weight := strings.ToLower(fields[3])
	size := float64(defaultPointSize)
	if px, err := strconv.Atoi(fields[7]); err == nil && px > 0 {
		size = float64(px)
	}

	switch {
	case family == "fixed" || family == "*" || family == "":
		return basicfont.Face7x13, nil
	case strings.Contains(family, "mono") || strings.Contains(family, "courier"):
		return embeddedFace(gomono.TTF, size)
	case weight == "bold":
		return embeddedFace(gobold.TTF, size)
	default:
		return embeddedFace(goregular.TTF, size)
	}
}

func splitSize(spec string) (string, float64, error) {
	i := strings.LastIndex(spec, ":")
	if i < 0 {
		return spec, defaultPointSize, nil
	}
	size, err := strconv.ParseFloat(spec[i+1:], 64)
	if err != nil || size <= 0 {
		return "", 0, fmt.Errorf("%w: bad size in %q", ErrFontNotFound, spec)
	}
	return spec[:i], size, nil
}

func embeddedFace(ttf []byte, size float64) (font.Face, error) {
	tt, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontNotFound, err)
	}
	return truetype.NewFace(tt, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}
