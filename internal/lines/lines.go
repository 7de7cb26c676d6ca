// Package lines holds the fixed-capacity line buffer an overlay renders.
//
// A Buffer has no locking of its own; callers serialize access through the
// overlay's ownership gate.
package lines

import (
	"errors"
	"fmt"
)

// Kind tags a Line.
type Kind int

const (
	Blank Kind = iota
	Text
	Percentage
	Slider
)

func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Text:
		return "text"
	case Percentage:
		return "percentage"
	case Slider:
		return "slider"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsBar reports whether the kind is drawn as a segmented bar.
func (k Kind) IsBar() bool { return k == Percentage || k == Slider }

// ErrIndexOutOfRange is returned for line indexes outside [0, Len()).
var ErrIndexOutOfRange = errors.New("line index out of range")

// ErrScrollRange is returned by Scroll for counts outside [1, Len()].
var ErrScrollRange = errors.New("scroll count out of range")

// Line is one line descriptor. Only the fields matching Kind are meaningful:
// Text and Width for Text lines, Value for bar lines.
type Line struct {
	Kind  Kind
	Text  string
	Width int // cached pixel width, -1 until measured
	Value int // 0..100
}

// BlankLine returns an empty line.
func BlankLine() Line { return Line{Kind: Blank} }

// TextLine returns a text line, or a blank line for an empty string.
func TextLine(s string) Line {
	if s == "" {
		return BlankLine()
	}
	return Line{Kind: Text, Text: s, Width: -1}
}

// BarLine returns a percentage or slider line with value clamped to [0,100].
// Any other kind yields a blank line.
func BarLine(kind Kind, value int) Line {
	if !kind.IsBar() {
		return BlankLine()
	}
	return Line{Kind: kind, Value: Clamp(value)}
}

// Clamp limits a bar value to [0,100].
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Buffer is an ordered sequence of exactly Len() lines.
type Buffer struct {
	lines []Line
}

// NewBuffer allocates n blank lines.
func NewBuffer(n int) *Buffer {
	if n < 0 {
		n = 0
	}
	return &Buffer{lines: make([]Line, n)}
}

// Len returns the fixed capacity.
func (b *Buffer) Len() int { return len(b.lines) }

func (b *Buffer) check(i int) error {
	if i < 0 || i >= len(b.lines) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, len(b.lines))
	}
	return nil
}

// At returns a copy of line i.
func (b *Buffer) At(i int) (Line, error) {
	if err := b.check(i); err != nil {
		return Line{}, err
	}
	return b.lines[i], nil
}

// Set replaces line i. The previous text is dropped before the new line is
// installed, so a descriptor is never shared between two slots.
func (b *Buffer) Set(i int, l Line) error {
	if err := b.check(i); err != nil {
		return err
	}
	release(&b.lines[i])
	if l.Kind == Text && l.Text == "" {
		l = BlankLine()
	}
	if l.Kind.IsBar() {
		l.Value = Clamp(l.Value)
	}
	b.lines[i] = l
	return nil
}

// Scroll drops the first n lines, moves the rest up by n and blanks the tail.
func (b *Buffer) Scroll(n int) error {
	if n <= 0 || n > len(b.lines) {
		return fmt.Errorf("%w: %d not in [1,%d]", ErrScrollRange, n, len(b.lines))
	}
	for i := 0; i < n; i++ {
		release(&b.lines[i])
	}
	copy(b.lines, b.lines[n:])
	for i := len(b.lines) - n; i < len(b.lines); i++ {
		b.lines[i] = BlankLine()
	}
	return nil
}

// Invalidate marks every text width stale.
func (b *Buffer) Invalidate() {
	for i := range b.lines {
		if b.lines[i].Kind == Text {
			b.lines[i].Width = -1
		}
	}
}

// Measure fills in stale text widths with measure and returns the line.
func (b *Buffer) Measure(i int, measure func(string) int) Line {
	l := &b.lines[i]
	if l.Kind == Text && l.Width < 0 {
		l.Width = measure(l.Text)
	}
	return *l
}

// Snapshot copies the current lines.
func (b *Buffer) Snapshot() []Line {
	out := make([]Line, len(b.lines))
	copy(out, b.lines)
	return out
}

// Release blanks every line. Calling it twice is harmless.
func (b *Buffer) Release() {
	for i := range b.lines {
		release(&b.lines[i])
	}
}

func release(l *Line) {
	*l = BlankLine()
}
