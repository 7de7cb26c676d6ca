package render

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Canvas is the pair of off-screen compose buffers: a coverage mask that
// defines the visible shape, and the colour content copied to the surface.
type Canvas struct {
	Mask  *image.Alpha
	Color *image.RGBA
}

// NewCanvas allocates both buffers.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// Resize reallocates both buffers; previous content is discarded.
func (c *Canvas) Resize(width, height int) {
	r := image.Rect(0, 0, max(width, 0), max(height, 0))
	c.Mask = image.NewAlpha(r)
	c.Color = image.NewRGBA(r)
}

// Bounds returns the buffer rectangle.
func (c *Canvas) Bounds() image.Rectangle { return c.Color.Bounds() }

// ClearMask makes r fully transparent in the mask and the colour buffer.
func (c *Canvas) ClearMask(r image.Rectangle) {
	xdraw.Draw(c.Mask, r, image.Transparent, image.Point{}, xdraw.Src)
	xdraw.Draw(c.Color, r, image.Transparent, image.Point{}, xdraw.Src)
}

// Fill paints r opaque in the mask and col in the colour buffer.
func (c *Canvas) Fill(r image.Rectangle, col color.Color) {
	xdraw.Draw(c.Mask, r, image.Opaque, image.Point{}, xdraw.Src)
	xdraw.Draw(c.Color, r, image.NewUniform(col), image.Point{}, xdraw.Src)
}

// DrawString draws s with its baseline at (x, y) into both buffers.
func (c *Canvas) DrawString(face font.Face, s string, x, y int, col color.Color) {
	dot := fixed.P(x, y)
	mask := &font.Drawer{Dst: c.Mask, Src: image.Opaque, Face: face, Dot: dot}
	mask.DrawString(s)
	fg := &font.Drawer{Dst: c.Color, Src: image.NewUniform(col), Face: face, Dot: dot}
	fg.DrawString(s)
}
