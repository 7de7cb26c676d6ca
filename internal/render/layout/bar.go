package layout

import "image"

// Bar is the resolved geometry of a percentage or slider line.
type Bar struct {
	X      int // left edge of the first segment
	Pitch  int // horizontal distance between segments
	Height int // height of an "on" segment
	Count  int
	On     int
	Slider bool
}

// Grow adjusts every segment rectangle, used for outline and shadow passes.
type Grow struct {
	X, Y, W, H int
}

// NewBar lays out a bar. barLength -1 picks the count from the screen width.
func NewBar(align Alignment, screenWidth, ascent, barLength, value int, slider bool) Bar {
	b := Bar{X: XOffset, Pitch: ascent / 2, Height: ascent, Slider: slider}
	if b.Pitch <= 0 {
		b.Pitch = 1
	}
	width := float64(screenWidth)
	if barLength == -1 {
		b.Count = int(width * SliderScale / float64(b.Pitch))
		switch align {
		case Center:
			b.X = int(width * ((1 - SliderScale) / 2))
		case Right:
			b.X = int(width * (1 - SliderScale))
		}
	} else {
		b.Count = barLength
		switch align {
		case Center:
			b.X = (screenWidth - b.Count*b.Pitch) / 2
		case Right:
			b.X = screenWidth - b.Count*b.Pitch - b.X
		}
	}
	isSlider := 0
	if slider {
		isSlider = 1
	}
	b.On = (b.Count - isSlider) * value / 100
	return b
}

// Lit reports whether segment i is drawn highlighted.
func (b Bar) Lit(i int) bool {
	if b.Slider {
		return i == b.On
	}
	return i < b.On
}

// Segments returns one rectangle per segment for a bar whose line starts at
// top. Off segments are a thin strip a third of the way down; lit segments
// fill the whole height.
func (b Bar) Segments(top int, g Grow) []image.Rectangle {
	pitch := float64(b.Pitch)
	offW := int(float64(g.W) + pitch*SliderScale)
	onW := int(float64(g.W) + pitch*SliderScaleOn)
	offH := g.H + b.Height/3
	onH := g.H + b.Height

	out := make([]image.Rectangle, 0, max(b.Count, 0))
	x := g.X + b.X
	for i := 0; i < b.Count; i++ {
		if b.Lit(i) {
			y := g.Y + top
			out = append(out, image.Rect(x, y, x+onW, y+onH))
		} else {
			y := g.Y + top + b.Height/3
			out = append(out, image.Rect(x, y, x+offW, y+offH))
		}
		x += b.Pitch
	}
	return out
}
