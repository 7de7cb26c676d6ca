// Package headless is an in-memory render.Backend. It keeps a screen image
// and composites the mapped surface into it, so tests and the simulator can
// look at what a real display would show.
package headless

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/rook-computer/hud/internal/render"
)

// ErrDisconnected is returned by every operation after Disconnect or Close.
var ErrDisconnected = errors.New("headless: disconnected")

// ErrNoMonitors is returned by Monitors when the display has no heads
// configured.
var ErrNoMonitors = errors.New("headless: no monitor information")

// State is a copy of the surface attributes.
type State struct {
	Mapped  bool
	Origin  image.Point
	Size    image.Point
	Shape   []image.Rectangle
	Copies  int
	Flushes int
	Maps    int
	Unmaps  int
	Closed  bool
}

// Backend implements render.Backend without a display.
type Backend struct {
	mu       sync.Mutex
	geometry image.Rectangle
	monitors []image.Rectangle

	surface *image.RGBA
	state   State

	// Background is what the screen shows where the surface is not.
	Background color.Color

	events    chan render.Event
	quit      chan struct{}
	sendMu    sync.RWMutex
	closeOnce sync.Once
	gone      bool
}

// New returns a backend for a width x height display with the given heads.
// Without heads, Monitors reports ErrNoMonitors.
func New(width, height int, monitors ...image.Rectangle) *Backend {
	return &Backend{
		geometry:   image.Rect(0, 0, width, height),
		monitors:   append([]image.Rectangle(nil), monitors...),
		surface:    image.NewRGBA(image.Rectangle{}),
		Background: color.Black,
		events:     make(chan render.Event, 16),
		quit:       make(chan struct{}),
	}
}

// Opener returns an opener that hands out b.
func (b *Backend) Opener() render.Opener {
	return func() (render.Backend, error) { return b, nil }
}

// Factory returns an opener creating a fresh backend per call and reporting
// each one to created, when non-nil.
func Factory(width, height int, created func(*Backend), monitors ...image.Rectangle) render.Opener {
	return func() (render.Backend, error) {
		b := New(width, height, monitors...)
		if created != nil {
			created(b)
		}
		return b, nil
	}
}

func (b *Backend) Geometry() image.Rectangle { return b.geometry }

func (b *Backend) Monitors() ([]image.Rectangle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gone {
		return nil, ErrDisconnected
	}
	if len(b.monitors) == 0 {
		return nil, ErrNoMonitors
	}
	return append([]image.Rectangle(nil), b.monitors...), nil
}

func (b *Backend) Events() <-chan render.Event { return b.events }

func (b *Backend) Resize(width, height int) error {
	return b.op(func() {
		old := b.surface
		b.surface = image.NewRGBA(image.Rect(0, 0, width, height))
		xdraw.Draw(b.surface, old.Bounds(), old, image.Point{}, xdraw.Src)
		b.state.Size = image.Pt(width, height)
	})
}

func (b *Backend) Move(x, y int) error {
	return b.op(func() { b.state.Origin = image.Pt(x, y) })
}

func (b *Backend) Map() error {
	return b.op(func() {
		b.state.Mapped = true
		b.state.Maps++
	})
}

func (b *Backend) Unmap() error {
	return b.op(func() {
		b.state.Mapped = false
		b.state.Unmaps++
	})
}

func (b *Backend) SetShape(rects []image.Rectangle) error {
	return b.op(func() { b.state.Shape = append([]image.Rectangle(nil), rects...) })
}

func (b *Backend) Copy(src *image.RGBA, r image.Rectangle) error {
	return b.op(func() {
		r = r.Intersect(b.surface.Bounds()).Intersect(src.Bounds())
		xdraw.Draw(b.surface, r, src, r.Min, xdraw.Src)
		b.state.Copies++
	})
}

func (b *Backend) Flush() error {
	return b.op(func() { b.state.Flushes++ })
}

func (b *Backend) Close() error {
	b.mu.Lock()
	b.state.Closed = true
	b.mu.Unlock()
	b.hangUp()
	return nil
}

// hangUp marks the connection gone and closes the event stream once.
func (b *Backend) hangUp() {
	b.mu.Lock()
	b.gone = true
	b.mu.Unlock()
	b.closeOnce.Do(func() {
		close(b.quit)
		b.sendMu.Lock()
		close(b.events)
		b.sendMu.Unlock()
	})
}

func (b *Backend) send(ev render.Event) bool {
	b.sendMu.RLock()
	defer b.sendMu.RUnlock()
	select {
	case <-b.quit:
		return false
	default:
	}
	select {
	case b.events <- ev:
		return true
	case <-b.quit:
		return false
	}
}

func (b *Backend) op(f func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gone {
		return ErrDisconnected
	}
	f()
	return nil
}

// Expose queues a repaint event for r, as a window system does when part of
// the surface is uncovered. It reports false once the backend is gone.
func (b *Backend) Expose(r image.Rectangle) bool {
	return b.send(render.Event{Kind: render.EventRepaint, Rect: r})
}

// Notify queues an event the worker is expected to ignore.
func (b *Backend) Notify() bool {
	return b.send(render.Event{Kind: render.EventOther})
}

// Disconnect simulates losing the display connection.
func (b *Backend) Disconnect() { b.hangUp() }

// State returns a copy of the current surface attributes.
func (b *Backend) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.state
	st.Shape = append([]image.Rectangle(nil), b.state.Shape...)
	return st
}

// Snapshot renders the display: the background, plus the surface clipped
// to its shape when mapped.
func (b *Backend) Snapshot() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	screen := image.NewRGBA(b.geometry)
	xdraw.Draw(screen, screen.Bounds(), image.NewUniform(b.Background), image.Point{}, xdraw.Src)
	if !b.state.Mapped {
		return screen
	}
	origin := b.state.Origin
	for _, r := range b.state.Shape {
		r = r.Intersect(b.surface.Bounds())
		dst := r.Add(origin)
		xdraw.Draw(screen, dst, b.surface, r.Min, xdraw.Src)
	}
	return screen
}

func (b *Backend) String() string {
	return fmt.Sprintf("headless %dx%d", b.geometry.Dx(), b.geometry.Dy())
}
