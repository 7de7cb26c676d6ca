package x11

import (
	"image"
	"image/color"
	"testing"

	"github.com/BurntSushi/xgbutil/xgraphics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/hud/internal/render"
)

func TestOpenWithoutServer(t *testing.T) {
	// No server listens on display 987 in a test environment.
	_, err := Open(":987", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":987")

	_, err = Opener(":987", nil)()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, render.ErrUnsupported)
}

func newImage(w, h int) *xgraphics.Image {
	return &xgraphics.Image{Pix: make([]uint8, 4*w*h), Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
}

func TestStageConvertsOnlyDamage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF})
		}
	}
	dst := newImage(8, 4)

	sub := stage(dst, src, image.Rect(2, 1, 5, 3))
	require.NotNil(t, sub)
	assert.Equal(t, image.Rect(2, 1, 5, 3), sub.Bounds())
	assert.True(t, sub.Subimg)

	assert.Equal(t, xgraphics.BGRA{B: 0x30, G: 0x20, R: 0x10, A: 0xFF}, dst.At(3, 2))
	assert.Equal(t, xgraphics.BGRA{}, dst.At(0, 0))
	assert.Equal(t, xgraphics.BGRA{}, dst.At(5, 1))
}

func TestStageClipsToBothImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	dst := newImage(6, 6)

	sub := stage(dst, src, image.Rect(4, 2, 20, 20))
	require.NotNil(t, sub)
	assert.Equal(t, image.Rect(4, 2, 6, 4), sub.Bounds())

	assert.Nil(t, stage(dst, src, image.Rect(10, 10, 12, 12)))
}
