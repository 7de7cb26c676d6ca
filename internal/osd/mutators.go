package osd

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/rook-computer/hud/internal/lines"
	"github.com/rook-computer/hud/internal/render"
	"github.com/rook-computer/hud/internal/render/layout"
)

// lock acquires the gate for a caller. It fails, without holding the gate,
// once the session is destroyed or its worker has stopped.
func (s *Session) lock() error {
	s.gate.Acquire()
	switch {
	case s.closed.Load():
		s.gate.Release()
		return setLastError(ErrClosed)
	case s.exited.Load():
		s.gate.Release()
		return failf(ErrResourceUnavailable, "display connection lost")
	}
	return nil
}

// unlock releases the gate. When a show is pending it then waits until the
// worker has mapped the overlay.
func (s *Session) unlock() {
	gen, update := s.generation.Load(), s.update
	s.gate.Release()
	if update.Has(UpdateShow) {
		s.waitForUpdate(gen &^ 1)
	}
}

// mutate runs f under the gate and schedules bits once it succeeds.
func (s *Session) mutate(bits Update, f func() error) error {
	if err := s.lock(); err != nil {
		return err
	}
	if f != nil {
		if err := f(); err != nil {
			s.unlock()
			if !isKind(err) {
				err = fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}
			return setLastError(err)
		}
	}
	s.update |= bits
	s.unlock()
	return nil
}

func (s *Session) checkLine(i int) error {
	if i < 0 || i >= s.lines.Len() {
		return failf(ErrInvalidArgument, "line %d: %v", i, lines.ErrIndexOutOfRange)
	}
	return nil
}

// Display installs l as line i and shows the overlay. It returns the text
// length in bytes, or the clamped bar value.
func (s *Session) Display(i int, l lines.Line) (int, error) {
	if err := s.checkLine(i); err != nil {
		return -1, err
	}
	var ret int
	switch l.Kind {
	case lines.Text:
		l = lines.TextLine(l.Text)
		ret = len(l.Text)
	case lines.Percentage, lines.Slider:
		l = lines.BarLine(l.Kind, l.Value)
		ret = l.Value
	case lines.Blank:
		l = lines.BlankLine()
	default:
		return -1, failf(ErrInvalidArgument, "unknown line kind %d", int(l.Kind))
	}
	err := s.mutate(UpdateContent|UpdateTimer|UpdateShow, func() error {
		return s.lines.Set(i, l)
	})
	if err != nil {
		return -1, err
	}
	return ret, nil
}

// SetText shows text on line i. Empty text blanks the line.
func (s *Session) SetText(i int, text string) (int, error) {
	return s.Display(i, lines.TextLine(text))
}

// Printf formats a line like fmt.Sprintf. Output of MaxPrintfBuffer bytes
// or more is rejected and the line is left unchanged.
func (s *Session) Printf(i int, format string, args ...any) (int, error) {
	if err := s.checkLine(i); err != nil {
		return -1, err
	}
	text := fmt.Sprintf(format, args...)
	if len(text) >= MaxPrintfBuffer {
		return -1, failf(ErrInvalidArgument, "printf: buffer too small for %d bytes", len(text))
	}
	return s.Display(i, lines.TextLine(text))
}

// SetPercentage shows a percentage bar; v is clamped to [0,100].
func (s *Session) SetPercentage(i, v int) (int, error) {
	return s.Display(i, lines.BarLine(lines.Percentage, v))
}

// SetSlider shows a slider; v is clamped to [0,100].
func (s *Session) SetSlider(i, v int) (int, error) {
	return s.Display(i, lines.BarLine(lines.Slider, v))
}

// Scroll moves every line up by n, blanking the bottom n lines.
func (s *Session) Scroll(n int) error {
	if n <= 0 || n > s.lines.Len() {
		return failf(ErrInvalidArgument, "scroll %d: %v", n, lines.ErrScrollRange)
	}
	return s.mutate(UpdateContent, func() error { return s.lines.Scroll(n) })
}

// SetFont switches to another font. On failure the current font stays.
func (s *Session) SetFont(spec string) error {
	f, err := render.LoadFont(spec)
	if err != nil {
		return setLastError(fmt.Errorf("%w: requested font: %w", ErrNotFound, err))
	}
	return s.mutate(UpdateFont, func() error {
		s.font = f
		return nil
	})
}

func (s *Session) SetColour(name string) error {
	return s.setColour(name, &s.style.colour)
}

func (s *Session) SetShadowColour(name string) error {
	return s.setColour(name, &s.style.shadowColour)
}

func (s *Session) SetOutlineColour(name string) error {
	return s.setColour(name, &s.style.outlineColour)
}

// setColour installs the resolved colour, or the fallback when name is
// unknown, and redraws either way.
func (s *Session) setColour(name string, dst *color.RGBA) error {
	c, resolveErr := render.ResolveColour(name)
	err := s.mutate(UpdateLines, func() error {
		*dst = c
		return nil
	})
	if err != nil {
		return err
	}
	if resolveErr != nil {
		return setLastError(fmt.Errorf("%w: %w", ErrNotFound, resolveErr))
	}
	return nil
}

// Colour returns the text colour as 16-bit channels.
func (s *Session) Colour() (r, g, b uint16, err error) {
	if err := s.lock(); err != nil {
		return 0, 0, 0, err
	}
	c := s.style.colour
	s.gate.Release()
	r, g, b = render.Colour16(c)
	return r, g, b, nil
}

// SetTimeout sets the seconds the overlay stays up after a change. Zero or
// a negative value disables auto-hide.
func (s *Session) SetTimeout(seconds int) error {
	return s.mutate(UpdateTimer, func() error {
		s.timeout = seconds
		return nil
	})
}

func (s *Session) SetShadowOffset(px int) error {
	if px < 0 {
		return failf(ErrInvalidArgument, "shadow offset %d is negative", px)
	}
	return s.mutate(UpdateFont, func() error {
		s.style.shadowOffset = px
		return nil
	})
}

// SetShadowDirection picks one of eight shadow directions. 0 is the
// classic down-right shadow, 1..7 go clockwise starting up-right.
func (s *Session) SetShadowDirection(dir int) error {
	if dir < 0 || dir > 7 {
		return failf(ErrInvalidArgument, "shadow direction %d outside 0..7", dir)
	}
	return s.mutate(UpdateFont, func() error {
		s.style.shadowDirection = dir
		return nil
	})
}

func (s *Session) SetOutlineOffset(px int) error {
	if px < 0 {
		return failf(ErrInvalidArgument, "outline offset %d is negative", px)
	}
	return s.mutate(UpdateFont, func() error {
		s.style.outlineOffset = px
		return nil
	})
}

func (s *Session) SetHorizontalOffset(px int) error {
	return s.mutate(UpdatePosition, func() error {
		s.style.hoffset = px
		return nil
	})
}

func (s *Session) SetVerticalOffset(px int) error {
	return s.mutate(UpdatePosition, func() error {
		s.style.voffset = px
		return nil
	})
}

func (s *Session) SetPosition(p Position) error {
	if p < layout.Top || p > layout.Middle {
		return failf(ErrInvalidArgument, "unknown position %d", int(p))
	}
	return s.mutate(UpdatePosition, func() error {
		s.style.pos = p
		return nil
	})
}

// SetAlignment moves the lines and the surface. Right alignment measures
// text, so the content is redrawn.
func (s *Session) SetAlignment(a Alignment) error {
	if a < layout.Left || a > layout.Right {
		return failf(ErrInvalidArgument, "unknown alignment %d", int(a))
	}
	return s.mutate(UpdateContent|UpdatePosition, func() error {
		s.style.align = a
		return nil
	})
}

// SetBarLength fixes the number of bar segments. n must be positive; a
// rejected value leaves the current length.
func (s *Session) SetBarLength(n int) error {
	if n <= 0 {
		return failf(ErrInvalidArgument, "bar length %d must be positive", n)
	}
	return s.setBarLength(n)
}

// ResetBarLength goes back to sizing bars from the screen width.
func (s *Session) ResetBarLength() error { return s.setBarLength(-1) }

func (s *Session) setBarLength(n int) error {
	return s.mutate(UpdateContent, func() error {
		s.style.barLength = n
		return nil
	})
}

// BarLength returns the configured segment count, -1 for automatic.
func (s *Session) BarLength() (int, error) {
	if err := s.lock(); err != nil {
		return 0, err
	}
	n := s.style.barLength
	s.gate.Release()
	return n, nil
}

// Show maps the overlay again and restarts its timeout. It returns once
// the overlay is visible.
func (s *Session) Show() error {
	if s.closed.Load() {
		return setLastError(ErrClosed)
	}
	if s.generation.Load()&1 == 1 {
		return setLastError(ErrAlreadyShown)
	}
	return s.mutate(UpdateShow|UpdateTimer, func() error {
		s.update &^= UpdateHide
		return nil
	})
}

// Hide unmaps the overlay without touching its content.
func (s *Session) Hide() error {
	if s.closed.Load() {
		return setLastError(ErrClosed)
	}
	if s.generation.Load()&1 == 0 {
		return setLastError(ErrAlreadyHidden)
	}
	return s.mutate(UpdateHide, func() error {
		s.update &^= UpdateShow
		return nil
	})
}

// Lines returns a copy of the current line content.
func (s *Session) Lines() ([]lines.Line, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	snap := s.lines.Snapshot()
	s.gate.Release()
	return snap, nil
}

// Timeout returns the auto-hide delay in seconds.
func (s *Session) Timeout() (int, error) {
	if err := s.lock(); err != nil {
		return 0, err
	}
	t := s.timeout
	s.gate.Release()
	return t, nil
}

// isKind reports whether err carries one of this package's error kinds.
func isKind(err error) bool {
	for _, k := range []error{ErrInvalidArgument, ErrResourceUnavailable, ErrUnsupported, ErrNotFound, ErrClosed} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
