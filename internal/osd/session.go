// Package osd implements a transient, auto-hiding overlay on top of a
// rendering connection that only one goroutine may use at a time.
//
// Each Session owns a worker goroutine that holds the connection and runs
// the redraw loop. Mutators hand their changes to the worker through the
// gate and a set of Update bits; calls that make the overlay visible return
// only after the worker has actually mapped it.
package osd

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rook-computer/hud/internal/gate"
	"github.com/rook-computer/hud/internal/lines"
	"github.com/rook-computer/hud/internal/logging"
	"github.com/rook-computer/hud/internal/metrics"
	"github.com/rook-computer/hud/internal/render"
	"github.com/rook-computer/hud/internal/render/layout"
)

// Position and Alignment re-export the layout enums for callers.
type (
	Position  = layout.Position
	Alignment = layout.Alignment
)

const (
	Top    = layout.Top
	Bottom = layout.Bottom
	Middle = layout.Middle

	Left   = layout.Left
	Center = layout.Center
	Right  = layout.Right
)

// style is the part of a session that Clone copies.
type style struct {
	align     layout.Alignment
	pos       layout.Position
	hoffset   int
	voffset   int
	barLength int

	colour        color.RGBA
	shadowColour  color.RGBA
	outlineColour color.RGBA

	shadowOffset    int
	shadowDirection int
	outlineOffset   int

	// monitor geometry
	screen   image.Rectangle
	nscreens int
}

// Session is one overlay. All methods are safe for concurrent use.
type Session struct {
	id      string
	opener  render.Opener
	backend render.Backend
	gate    *gate.Gate
	log     logging.Logger
	metrics *metrics.Metrics

	// Guarded by the gate. The worker holds it except while parked.
	lines   *lines.Buffer
	update  Update
	done    bool
	font    *render.Font
	timeout int
	style   style

	// Worker-owned.
	canvas     *render.Canvas
	lineHeight int
	deadline   time.Time

	// generation counts visibility transitions; odd means mapped.
	generation atomic.Uint64
	closed     atomic.Bool
	exited     atomic.Bool
	syncMu     sync.Mutex
	syncCond   *sync.Cond
	workerDone chan struct{}
}

// Create opens a back-end connection and starts an overlay with n blank
// lines. The connection comes from WithBackend.
func Create(n int, opts ...Option) (*Session, error) {
	o := buildOptions(opts)
	s, err := create(n, o, nil)
	if err != nil {
		return nil, err
	}
	if err := o.apply(s); err != nil {
		_ = s.Destroy()
		return nil, err
	}
	return s, nil
}

// create builds and starts a session. prepare, when set, runs before the
// worker starts and may adjust the style.
func create(n int, o *options, prepare func(*Session)) (*Session, error) {
	if n < 1 {
		return nil, failf(ErrInvalidArgument, "number of lines %d must be positive", n)
	}
	if o.opener == nil {
		return nil, failf(ErrResourceUnavailable, "no display back-end configured")
	}
	b, err := o.opener()
	if err != nil {
		kind := ErrResourceUnavailable
		if errors.Is(err, render.ErrUnsupported) {
			kind = ErrUnsupported
		}
		return nil, setLastError(fmt.Errorf("%w: open display: %w", kind, err))
	}
	font, err := render.LoadFont(render.DefaultFont)
	if err != nil {
		_ = b.Close()
		return nil, setLastError(fmt.Errorf("%w: default font: %w", ErrNotFound, err))
	}
	colour, _ := render.ResolveColour(render.DefaultColour)

	s := &Session{
		id:         uuid.NewString(),
		opener:     o.opener,
		backend:    b,
		gate:       gate.New(),
		log:        o.log,
		metrics:    o.metrics,
		lines:      lines.NewBuffer(n),
		font:       font,
		timeout:    -1,
		canvas:     render.NewCanvas(0, 0),
		lineHeight: render.InitialLineHeight,
		workerDone: make(chan struct{}),
		style: style{
			align:         layout.Left,
			pos:           layout.Top,
			barLength:     -1,
			colour:        colour,
			shadowColour:  render.Black,
			outlineColour: render.Black,
		},
	}
	s.syncCond = sync.NewCond(&s.syncMu)
	if s.metrics != nil {
		s.gate.Observe = s.metrics.ObserveGateWait
	}
	// The first head is used when the back-end can name one.
	_ = s.lookupMonitor(1)
	if prepare != nil {
		prepare(s)
	}

	go s.run()
	s.metrics.SessionOpened()
	s.log.Infof("osd", "session %s created with %d lines on %dx%d", s.id, n, s.style.screen.Dx(), s.style.screen.Dy())
	return s, nil
}

// Clone creates a new overlay with the same number of lines and the same
// style as s: alignment, position, offsets, colours, shadow, outline, bar
// length and monitor. The font, the timeout and the line content are not
// copied; every line of the clone starts blank.
func (s *Session) Clone() (*Session, error) {
	s.gate.Acquire()
	if s.closed.Load() {
		s.gate.Release()
		return nil, setLastError(ErrClosed)
	}
	st := s.style
	n := s.lines.Len()
	o := &options{opener: s.opener, log: s.log, metrics: s.metrics}
	s.gate.Release()

	return create(n, o, func(c *Session) { c.style = st })
}

// Destroy stops the worker and releases the connection. It can be called
// more than once; later calls do nothing.
func (s *Session) Destroy() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.gate.Acquire()
	s.done = true
	s.gate.Release()

	<-s.workerDone

	s.gate.Acquire()
	s.lines.Release()
	s.gate.Release()

	err := s.backend.Close()
	s.metrics.SessionClosed()
	s.log.Infof("osd", "session %s destroyed", s.id)
	if err != nil {
		return setLastError(fmt.Errorf("%w: close display: %w", ErrResourceUnavailable, err))
	}
	return nil
}

// ID identifies the session in logs and over the control API.
func (s *Session) ID() string { return s.id }

// NumberOfLines returns the fixed line capacity.
func (s *Session) NumberOfLines() int { return s.lines.Len() }

// IsOnscreen reports whether the overlay is currently mapped. A session
// whose worker stopped reports hidden.
func (s *Session) IsOnscreen() (bool, error) {
	if s.closed.Load() {
		return false, setLastError(ErrClosed)
	}
	if s.exited.Load() {
		return false, nil
	}
	return s.generation.Load()&1 == 1, nil
}

// WaitUntilHidden blocks while the overlay is shown. It returns on the next
// visibility change after the call, which for a quick hide and re-show may
// find the overlay visible again.
func (s *Session) WaitUntilHidden() error {
	if s.closed.Load() {
		return setLastError(ErrClosed)
	}
	if gen := s.generation.Load(); gen&1 == 1 {
		s.waitForUpdate(gen)
	}
	return nil
}

// waitForUpdate blocks until the generation moves away from gen or the
// worker is gone.
func (s *Session) waitForUpdate(gen uint64) {
	s.syncMu.Lock()
	for s.generation.Load() == gen && !s.exited.Load() {
		s.syncCond.Wait()
	}
	s.syncMu.Unlock()
}

// broadcast wakes every waitForUpdate caller so it can re-check.
func (s *Session) broadcast() {
	s.syncMu.Lock()
	s.syncCond.Broadcast()
	s.syncMu.Unlock()
}
