package fbdev

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	blue = color.RGBA{B: 0xFF, A: 0xFF}
	red  = color.RGBA{R: 0xFF, A: 0xFF}
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func newBackend(t *testing.T) (*Backend, *image.RGBA) {
	t.Helper()
	screen := solid(40, 30, blue)
	b := New(screen, nil)
	require.NoError(t, b.Resize(10, 4))
	require.NoError(t, b.Move(5, 6))
	require.NoError(t, b.SetShape([]image.Rectangle{image.Rect(0, 0, 3, 1), image.Rect(2, 2, 4, 3)}))
	require.NoError(t, b.Copy(solid(10, 4, red), image.Rect(0, 0, 10, 4)))
	return b, screen
}

func TestMapPaintsShapeOnly(t *testing.T) {
	b, screen := newBackend(t)
	assert.Equal(t, blue, screen.RGBAAt(5, 6), "unmapped surface must not draw")

	require.NoError(t, b.Map())
	assert.Equal(t, red, screen.RGBAAt(5, 6))
	assert.Equal(t, red, screen.RGBAAt(7, 6))
	assert.Equal(t, blue, screen.RGBAAt(8, 6))
	assert.Equal(t, red, screen.RGBAAt(8, 8))
	assert.Equal(t, blue, screen.RGBAAt(5, 7))
}

func TestUnmapRestoresBackground(t *testing.T) {
	b, screen := newBackend(t)
	require.NoError(t, b.Map())
	require.NoError(t, b.Unmap())
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			require.Equal(t, blue, screen.RGBAAt(x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestMoveWhileMapped(t *testing.T) {
	b, screen := newBackend(t)
	require.NoError(t, b.Map())
	require.NoError(t, b.Move(20, 20))

	assert.Equal(t, blue, screen.RGBAAt(5, 6))
	assert.Equal(t, red, screen.RGBAAt(20, 20))

	require.NoError(t, b.Close())
	assert.Equal(t, blue, screen.RGBAAt(20, 20))
	assert.ErrorIs(t, b.Map(), ErrClosed)
	_, ok := <-b.Events()
	assert.False(t, ok)
}

func TestMonitorsUnsupported(t *testing.T) {
	b := New(image.NewRGBA(image.Rect(0, 0, 8, 8)), nil)
	_, err := b.Monitors()
	assert.ErrorIs(t, err, ErrNoMonitors)
	assert.Equal(t, image.Rect(0, 0, 8, 8), b.Geometry())
}
