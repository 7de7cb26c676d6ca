package render

import (
	"image"
	"image/color"

	"github.com/rook-computer/hud/internal/lines"
	"github.com/rook-computer/hud/internal/render/layout"
)

// Style is everything line drawing needs, copied out of the session by the
// worker before a redraw.
type Style struct {
	Font       *Font
	Width      int
	LineHeight int

	Align     layout.Alignment
	BarLength int

	Colour  color.RGBA
	Shadow  color.RGBA
	Outline color.RGBA

	ShadowOffset    int
	ShadowDirection int
	OutlineOffset   int
}

// DrawLine renders line index into the canvas. Text lines must already
// carry a measured width.
func DrawLine(c *Canvas, st *Style, index int, l lines.Line) {
	switch l.Kind {
	case lines.Text:
		drawText(c, st, index, l)
	case lines.Percentage, lines.Slider:
		drawBar(c, st, index, l)
	}
}

func drawText(c *Canvas, st *Style, index int, l lines.Line) {
	x := layout.TextX(st.Align, st.Width, l.Width)
	y := st.LineHeight*index + st.Font.Metrics.Ascent
	face := st.Font.Face

	if st.ShadowOffset > 0 {
		d := layout.ShadowDelta(st.ShadowDirection, st.ShadowOffset)
		c.DrawString(face, l.Text, x+d.X, y+d.Y, st.Shadow)
	}
	for _, d := range layout.OutlineDeltas(st.OutlineOffset) {
		c.DrawString(face, l.Text, x+d.X, y+d.Y, st.Outline)
	}
	c.DrawString(face, l.Text, x, y, st.Colour)
}

func drawBar(c *Canvas, st *Style, index int, l lines.Line) {
	bar := layout.NewBar(st.Align, st.Width, st.Font.Metrics.Ascent, st.BarLength, l.Value, l.Kind == lines.Slider)
	top := st.LineHeight * index

	if o := st.OutlineOffset; o > 0 {
		fillAll(c, bar.Segments(top, layout.Grow{X: -o, Y: -o, W: 2 * o, H: 2 * o}), st.Outline)
	}
	if s := st.ShadowOffset; s > 0 {
		fillAll(c, bar.Segments(top, layout.Grow{X: s, Y: s}), st.Shadow)
	}
	fillAll(c, bar.Segments(top, layout.Grow{}), st.Colour)
}

func fillAll(c *Canvas, rects []image.Rectangle, col color.Color) {
	for _, r := range rects {
		c.Fill(r, col)
	}
}
