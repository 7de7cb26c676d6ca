// Package layout holds the pure geometry of the overlay: where lines,
// bars and the surface itself go for a given style.
package layout

import (
	"fmt"
	"image"
	"strings"
)

// XOffset is the gap kept between left/right aligned content and the edge.
const XOffset = 10

// Segment scales of a bar, relative to the segment pitch.
var (
	SliderScale   = 0.8
	SliderScaleOn = 0.7
)

// Alignment is the horizontal placement of lines and of the surface.
type Alignment int

const (
	Left Alignment = iota
	Center
	Right
)

func (a Alignment) String() string {
	switch a {
	case Left:
		return "left"
	case Center:
		return "center"
	case Right:
		return "right"
	}
	return "unknown"
}

// Position is the vertical placement of the surface.
type Position int

const (
	Top Position = iota
	Bottom
	Middle
)

func (p Position) String() string {
	switch p {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Middle:
		return "middle"
	}
	return "unknown"
}

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// TextX returns the start x of a text line textWidth pixels wide.
func TextX(align Alignment, screenWidth, textWidth int) int {
	switch align {
	case Center:
		return (screenWidth - textWidth) / 2
	case Right:
		return screenWidth - textWidth - XOffset
	}
	return XOffset
}

// WindowOrigin places a surface of the given height on screen. Offsets are
// relative to the screen's edges, so stacked heads work too.
func WindowOrigin(align Alignment, pos Position, screen image.Rectangle, height, hoffset, voffset int) image.Point {
	var p image.Point
	switch align {
	case Right:
		p.X = screen.Min.X - hoffset
	default:
		p.X = screen.Min.X + hoffset
	}
	switch pos {
	case Bottom:
		p.Y = screen.Max.Y - height - voffset
	case Middle:
		p.Y = screen.Min.Y + (screen.Dy()-height)/2 - voffset
	default:
		p.Y = screen.Min.Y + voffset
	}
	return p
}

// LineHeight returns the pitch of one line.
func LineHeight(fontHeight, shadowOffset, outlineOffset int) int {
	return fontHeight + shadowOffset + 2*outlineOffset
}

// ShadowDelta returns the shadow displacement for a direction. Direction 0
// keeps the classic down-right shadow; 1..7 step clockwise from up-right.
func ShadowDelta(direction, offset int) image.Point {
	switch direction {
	case 1:
		return image.Pt(offset, -offset)
	case 2:
		return image.Pt(offset, 0)
	case 3:
		return image.Pt(offset, offset)
	case 4:
		return image.Pt(0, offset)
	case 5:
		return image.Pt(-offset, offset)
	case 6:
		return image.Pt(-offset, 0)
	case 7:
		return image.Pt(-offset, -offset)
	}
	return image.Pt(offset, offset)
}

// OutlineDeltas returns every neighbour displacement drawn for an outline
// of the given width, innermost ring first.
func OutlineDeltas(offset int) []image.Point {
	if offset <= 0 {
		return nil
	}
	out := make([]image.Point, 0, 8*offset)
	for i := 1; i <= offset; i++ {
		for j := 0; j < 9; j++ {
			if j == 4 {
				continue
			}
			out = append(out, image.Pt((j/3-1)*i, (j%3-1)*i))
		}
	}
	return out
}

// ParseAlignment accepts "left", "center" (or "centre") and "right".
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "":
		return Left, nil
	case "center", "centre":
		return Center, nil
	case "right":
		return Right, nil
	}
	return Left, fmt.Errorf("unknown alignment %q", s)
}

// ParsePosition accepts "top", "bottom" and "middle".
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top", "":
		return Top, nil
	case "bottom":
		return Bottom, nil
	case "middle":
		return Middle, nil
	}
	return Top, fmt.Errorf("unknown position %q", s)
}
