package osd

import (
	"image"
	"time"

	"github.com/rook-computer/hud/internal/render"
	"github.com/rook-computer/hud/internal/render/layout"
)

// maskThreshold is the coverage above which a mask pixel is part of the
// shape.
const maskThreshold = 0x7F

// run is the worker loop. It holds the gate for its whole life, parking
// only in the final select, and is the only goroutine that talks to the
// back-end once started.
func (s *Session) run() {
	defer close(s.workerDone)
	s.gate.Hold()

	events := s.backend.Events()
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	s.update |= UpdateSize | UpdatePosition | UpdateMask
	for !s.done {
		s.metrics.RecordIteration()
		visible := s.generation.Load()&1 == 1
		if s.update != UpdateNone {
			s.log.Debugf("worker", "%s: update %s", s.id, s.update)
		}

		if s.update.Has(UpdateHide) && visible {
			s.check("unmap", s.backend.Unmap())
			s.generation.Add(1)
			visible = false
			s.metrics.RecordTransition(false)
		}
		if s.update.Has(UpdateSize) {
			s.resize()
		}
		if s.update.Has(UpdatePosition) {
			origin := layout.WindowOrigin(s.style.align, s.style.pos, s.style.screen, s.canvas.Bounds().Dy(), s.style.hoffset, s.style.voffset)
			s.check("move", s.backend.Move(origin.X, origin.Y))
		}
		if s.update.Has(UpdateContent) {
			s.redraw(s.update.Has(UpdateMask))
		}
		if s.update.Has(UpdateShow) && !visible {
			s.generation.Add(1)
			visible = true
			s.check("map", s.backend.Map())
			s.metrics.RecordTransition(true)
		}
		if visible && s.update.Has(UpdateSize|UpdatePosition|UpdateLines|UpdateShow) {
			s.check("copy", s.backend.Copy(s.canvas.Color, s.canvas.Bounds()))
		}
		if s.update&^UpdateTimer != 0 {
			s.check("flush", s.backend.Flush())
			s.update &= UpdateTimer
		}
		if s.update.Has(UpdateTimer) {
			s.update = UpdateNone
			if visible && s.timeout > 0 {
				s.deadline = time.Now().Add(time.Duration(s.timeout) * time.Second)
			} else {
				s.deadline = time.Time{}
			}
		}

		var expired <-chan time.Time
		if !s.deadline.IsZero() {
			remaining := time.Until(s.deadline)
			if remaining <= 0 {
				s.deadline = time.Time{}
				if visible {
					s.update |= UpdateHide
				}
				// Hide before waiting again.
				continue
			}
			timer.Reset(remaining)
			expired = timer.C
		} else {
			timer.Stop()
		}

		s.broadcast()

		select {
		case <-s.gate.Requests():
			s.gate.Yield()
		case ev, ok := <-events:
			if !ok {
				s.log.Errorf("worker", "%s: display connection lost", s.id)
				s.done = true
				break
			}
			s.dispatch(ev)
		case <-expired:
		}
	}

	s.gate.Drop()
	s.syncMu.Lock()
	s.exited.Store(true)
	s.syncCond.Broadcast()
	s.syncMu.Unlock()
	s.log.Debugf("worker", "%s: stopped", s.id)
}

// resize recomputes the line pitch and reallocates the surface and the
// compose buffers. Cached text widths become stale.
func (s *Session) resize() {
	st := &s.style
	s.lineHeight = layout.LineHeight(s.font.Metrics.Height, st.shadowOffset, st.outlineOffset)
	width, height := st.screen.Dx(), s.lineHeight*s.lines.Len()
	s.lines.Invalidate()
	s.check("resize", s.backend.Resize(width, height))
	s.canvas.Resize(width, height)
}

// redraw renders every line into the compose buffers. With mask set, each
// line's rows are cleared first and the surface shape is rebuilt.
func (s *Session) redraw(mask bool) {
	st := s.drawStyle()
	width := s.canvas.Bounds().Dx()
	for i := 0; i < s.lines.Len(); i++ {
		if mask {
			top := s.lineHeight * i
			s.canvas.ClearMask(image.Rect(0, top, width, top+s.lineHeight))
		}
		l := s.lines.Measure(i, s.font.Measure)
		render.DrawLine(s.canvas, st, i, l)
	}
	if mask {
		s.check("shape", s.backend.SetShape(layout.MaskRuns(s.canvas.Mask, maskThreshold)))
	}
}

func (s *Session) drawStyle() *render.Style {
	st := &s.style
	return &render.Style{
		Font:            s.font,
		Width:           s.canvas.Bounds().Dx(),
		LineHeight:      s.lineHeight,
		Align:           st.align,
		BarLength:       st.barLength,
		Colour:          st.colour,
		Shadow:          st.shadowColour,
		Outline:         st.outlineColour,
		ShadowOffset:    st.shadowOffset,
		ShadowDirection: st.shadowDirection,
		OutlineOffset:   st.outlineOffset,
	}
}

// dispatch handles one back-end event. Only repaints do anything.
func (s *Session) dispatch(ev render.Event) {
	switch ev.Kind {
	case render.EventRepaint:
		s.log.Debugf("worker", "%s: repaint %v", s.id, ev.Rect)
		s.check("copy", s.backend.Copy(s.canvas.Color, ev.Rect))
		s.check("flush", s.backend.Flush())
		s.metrics.RecordRepaint()
	default:
		s.log.Debugf("worker", "%s: ignored event %d", s.id, ev.Kind)
	}
}

func (s *Session) check(op string, err error) {
	if err != nil {
		s.log.Errorf("worker", "%s: %s: %v", s.id, op, err)
	}
}
