package layout

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextX(t *testing.T) {
	assert.Equal(t, XOffset, TextX(Left, 800, 100))
	assert.Equal(t, 350, TextX(Center, 800, 100))
	assert.Equal(t, 800-100-XOffset, TextX(Right, 800, 100))
}

func TestWindowOrigin(t *testing.T) {
	screen := image.Rect(1920, 0, 3840, 1080)
	tests := []struct {
		name  string
		align Alignment
		pos   Position
		want  image.Point
	}{
		{"top left", Left, Top, image.Pt(1920+5, 7)},
		{"top center", Center, Top, image.Pt(1920+5, 7)},
		{"top right", Right, Top, image.Pt(1920-5, 7)},
		{"bottom", Left, Bottom, image.Pt(1925, 1080-100-7)},
		{"middle", Left, Middle, image.Pt(1925, (1080-100)/2-7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WindowOrigin(tt.align, tt.pos, screen, 100, 5, 7))
		})
	}
}

func TestWindowOriginStackedHead(t *testing.T) {
	lower := image.Rect(0, 768, 1024, 1536)
	assert.Equal(t, image.Pt(5, 768+7), WindowOrigin(Left, Top, lower, 100, 5, 7))
	assert.Equal(t, image.Pt(5, 1536-100-7), WindowOrigin(Left, Bottom, lower, 100, 5, 7))
	assert.Equal(t, image.Pt(5, 768+(768-100)/2-7), WindowOrigin(Left, Middle, lower, 100, 5, 7))
}

func TestShadowDelta(t *testing.T) {
	assert.Equal(t, image.Pt(3, 3), ShadowDelta(0, 3))
	assert.Equal(t, image.Pt(3, -3), ShadowDelta(1, 3))
	assert.Equal(t, image.Pt(0, 3), ShadowDelta(4, 3))
	assert.Equal(t, image.Pt(-3, -3), ShadowDelta(7, 3))
}

func TestOutlineDeltas(t *testing.T) {
	assert.Nil(t, OutlineDeltas(0))
	d := OutlineDeltas(2)
	require.Len(t, d, 16)
	assert.NotContains(t, d, image.Pt(0, 0))
	assert.Equal(t, image.Pt(-1, -1), d[0])
	assert.Contains(t, d, image.Pt(2, 2))
}

func TestAutomaticBar(t *testing.T) {
	b := NewBar(Left, 1000, 20, -1, 50, false)
	assert.Equal(t, 10, b.Pitch)
	assert.Equal(t, 80, b.Count)
	assert.Equal(t, XOffset, b.X)
	assert.Equal(t, 40, b.On)

	// the float scale truncates just below the round figure
	c := NewBar(Center, 1000, 20, -1, 50, false)
	assert.Equal(t, 99, c.X)

	r := NewBar(Right, 1000, 20, -1, 50, false)
	assert.Equal(t, 199, r.X)
}

func TestExplicitBar(t *testing.T) {
	b := NewBar(Center, 1000, 20, 10, 100, true)
	assert.Equal(t, 10, b.Count)
	assert.Equal(t, (1000-100)/2, b.X)
	assert.Equal(t, 9, b.On)

	r := NewBar(Right, 1000, 20, 10, 0, false)
	assert.Equal(t, 1000-100-XOffset, r.X)
	assert.Equal(t, 0, r.On)
}

func TestSegments(t *testing.T) {
	pct := NewBar(Left, 1000, 30, 4, 50, false)
	segs := pct.Segments(100, Grow{})
	require.Len(t, segs, 4)
	// two lit, two off
	assert.Equal(t, 30, segs[0].Dy())
	assert.Equal(t, 30, segs[1].Dy())
	assert.Equal(t, 10, segs[2].Dy())
	assert.Equal(t, 110, segs[2].Min.Y)
	assert.Equal(t, pct.Pitch, segs[1].Min.X-segs[0].Min.X)

	slider := NewBar(Left, 1000, 30, 4, 50, true)
	lit := 0
	for i := 0; i < slider.Count; i++ {
		if slider.Lit(i) {
			lit++
		}
	}
	assert.Equal(t, 1, lit)
	assert.True(t, slider.Lit(1))

	grown := pct.Segments(100, Grow{X: -2, Y: -2, W: 4, H: 4})
	assert.Equal(t, segs[0].Min.X-2, grown[0].Min.X)
	assert.Equal(t, segs[0].Dy()+4, grown[0].Dy())
}

func TestMaskRuns(t *testing.T) {
	m := image.NewAlpha(image.Rect(0, 0, 10, 4))
	fill := func(r image.Rectangle) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				m.Pix[m.PixOffset(x, y)] = 0xFF
			}
		}
	}
	fill(image.Rect(1, 0, 4, 3))
	fill(image.Rect(6, 1, 8, 2))

	runs := MaskRuns(m, 0x7F)
	assert.ElementsMatch(t, []image.Rectangle{
		image.Rect(1, 0, 4, 3),
		image.Rect(6, 1, 8, 2),
	}, runs)

	assert.Empty(t, MaskRuns(image.NewAlpha(image.Rect(0, 0, 3, 3)), 0x7F))
}

func TestParse(t *testing.T) {
	a, err := ParseAlignment("Centre")
	require.NoError(t, err)
	assert.Equal(t, Center, a)
	_, err = ParseAlignment("diagonal")
	assert.Error(t, err)

	p, err := ParsePosition("bottom")
	require.NoError(t, err)
	assert.Equal(t, Bottom, p)
	assert.Equal(t, "bottom", p.String())
	_, err = ParsePosition("side")
	assert.Error(t, err)
}
