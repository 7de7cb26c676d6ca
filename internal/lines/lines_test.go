package lines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBufferIsBlank(t *testing.T) {
	b := NewBuffer(4)
	require.Equal(t, 4, b.Len())
	for _, l := range b.Snapshot() {
		assert.Equal(t, Blank, l.Kind)
	}
}

func TestBarLineClamps(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-50, 0},
		{0, 0},
		{42, 42},
		{100, 100},
		{250, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BarLine(Percentage, tt.in).Value)
		assert.Equal(t, tt.want, BarLine(Slider, tt.in).Value)
	}
	assert.Equal(t, Blank, BarLine(Text, 10).Kind)
}

func TestTextLineEmptyIsBlank(t *testing.T) {
	assert.Equal(t, Blank, TextLine("").Kind)
	l := TextLine("hi")
	assert.Equal(t, Text, l.Kind)
	assert.Equal(t, -1, l.Width)
}

func TestSetOutOfRange(t *testing.T) {
	b := NewBuffer(2)
	assert.ErrorIs(t, b.Set(-1, TextLine("x")), ErrIndexOutOfRange)
	assert.ErrorIs(t, b.Set(2, TextLine("x")), ErrIndexOutOfRange)
	_, err := b.At(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSetReplacesDescriptor(t *testing.T) {
	b := NewBuffer(1)
	require.NoError(t, b.Set(0, TextLine("old")))
	require.NoError(t, b.Set(0, Line{Kind: Percentage, Value: 140}))

	l, err := b.At(0)
	require.NoError(t, err)
	assert.Equal(t, Percentage, l.Kind)
	assert.Equal(t, 100, l.Value)
	assert.Empty(t, l.Text)
}

func TestScroll(t *testing.T) {
	before := []Line{TextLine("a"), BarLine(Slider, 30), TextLine("c"), BarLine(Percentage, 70), TextLine("e")}
	for n := 1; n <= len(before); n++ {
		b := NewBuffer(len(before))
		for i, l := range before {
			require.NoError(t, b.Set(i, l))
		}
		require.NoError(t, b.Scroll(n))

		after := b.Snapshot()
		for i := 0; i < len(before)-n; i++ {
			assert.Equal(t, before[i+n], after[i], "n=%d line %d", n, i)
		}
		for i := len(before) - n; i < len(before); i++ {
			assert.Equal(t, Blank, after[i].Kind, "n=%d line %d", n, i)
		}
	}
}

func TestScrollRejectsBadCounts(t *testing.T) {
	b := NewBuffer(3)
	assert.ErrorIs(t, b.Scroll(0), ErrScrollRange)
	assert.ErrorIs(t, b.Scroll(-1), ErrScrollRange)
	assert.ErrorIs(t, b.Scroll(4), ErrScrollRange)
}

func TestInvalidateAndMeasure(t *testing.T) {
	b := NewBuffer(2)
	require.NoError(t, b.Set(0, TextLine("abcd")))
	require.NoError(t, b.Set(1, BarLine(Slider, 5)))

	calls := 0
	measure := func(s string) int { calls++; return len(s) * 7 }

	assert.Equal(t, 28, b.Measure(0, measure).Width)
	assert.Equal(t, 28, b.Measure(0, measure).Width)
	assert.Equal(t, 1, calls)

	b.Invalidate()
	l, _ := b.At(0)
	assert.Equal(t, -1, l.Width)
	b.Measure(1, measure)
	assert.Equal(t, 1, calls)
}

func TestReleaseIsIdempotent(t *testing.T) {
	b := NewBuffer(2)
	require.NoError(t, b.Set(0, TextLine("x")))
	b.Release()
	b.Release()
	for _, l := range b.Snapshot() {
		assert.Equal(t, Blank, l.Kind)
	}
}
