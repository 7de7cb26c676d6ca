package osd

import (
	"fmt"
	"image"
)

// SelectMonitor moves the overlay to head index, counted from 1. When the
// back-end cannot describe that head the overlay falls back to the whole
// display and an error is returned; the session stays usable either way.
// The surface is resized to the new head's width and placed relative to
// the head's top-left corner.
func (s *Session) SelectMonitor(index int) error {
	if err := s.lock(); err != nil {
		return err
	}
	err := s.lookupMonitor(index)
	s.update |= UpdateFont
	s.unlock()
	return setLastError(err)
}

// MonitorCount returns the number of heads found by the last monitor
// lookup, or -1 if that lookup could not query them.
func (s *Session) MonitorCount() int {
	if err := s.lock(); err != nil {
		return -1
	}
	n := s.style.nscreens
	s.gate.Release()
	if n == 0 {
		return -1
	}
	return n
}

// lookupMonitor sets the screen geometry for head index. The caller owns
// the back-end: either the gate is held or the worker has not started.
func (s *Session) lookupMonitor(index int) error {
	heads, err := s.backend.Monitors()
	s.style.nscreens = len(heads)
	if err != nil {
		s.style.nscreens = 0
	}
	if err == nil && index >= 1 && index <= len(heads) {
		s.style.screen = heads[index-1]
		return nil
	}
	s.style.screen = s.backend.Geometry()
	if err != nil {
		return fmt.Errorf("%w: monitor %d: %w", ErrResourceUnavailable, index, err)
	}
	return fmt.Errorf("%w: monitor %d of %d", ErrResourceUnavailable, index, len(heads))
}

// Screen returns the geometry of the head the overlay is placed on.
func (s *Session) Screen() (image.Rectangle, error) {
	if err := s.lock(); err != nil {
		return image.Rectangle{}, err
	}
	r := s.style.screen
	s.gate.Release()
	return r, nil
}
