// Package fbdev draws the overlay straight onto a Linux framebuffer.
//
// There is no window system to keep what lies under the surface, so Map
// saves those pixels and Unmap puts them back. Only pixels inside the
// shape are ever written.
package fbdev

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	fb "github.com/gonutz/framebuffer"
	xdraw "golang.org/x/image/draw"

	"github.com/rook-computer/hud/internal/logging"
	"github.com/rook-computer/hud/internal/render"
)

// DefaultDevice is the framebuffer opened when no path is configured.
const DefaultDevice = "/dev/fb0"

// ErrNoMonitors is returned by Monitors; a framebuffer is a single head.
var ErrNoMonitors = errors.New("fbdev: no monitor information")

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("fbdev: closed")

// Backend composites one surface onto a framebuffer.
type Backend struct {
	screen  draw.Image
	release func()
	log     logging.Logger

	surface *image.RGBA
	shape   []image.Rectangle
	origin  image.Point
	mapped  bool
	// saved holds the screen pixels under the surface while mapped.
	saved *image.RGBA

	events chan render.Event
	once   sync.Once
	closed bool
}

// Opener returns an opener for the framebuffer at path.
func Opener(path string, log logging.Logger) render.Opener {
	return func() (render.Backend, error) { return Open(path, log) }
}

// Open maps the framebuffer device at path, DefaultDevice when empty.
func Open(path string, log logging.Logger) (*Backend, error) {
	if path == "" {
		path = DefaultDevice
	}
	dev, err := fb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fbdev: open %s: %w", path, err)
	}
	b := New(dev, log)
	b.release = func() { dev.Close() }
	b.log.Infof("fb", "framebuffer %s open, bounds=%dx%d", path, dev.Bounds().Dx(), dev.Bounds().Dy())
	return b, nil
}

// New wraps any drawable screen. Close does not release it.
func New(screen draw.Image, log logging.Logger) *Backend {
	if log == nil {
		log = logging.NoopLogger{}
	}
	return &Backend{
		screen:  screen,
		release: func() {},
		log:     log,
		surface: image.NewRGBA(image.Rectangle{}),
		events:  make(chan render.Event),
	}
}

func (b *Backend) Geometry() image.Rectangle { return b.screen.Bounds() }

func (b *Backend) Monitors() ([]image.Rectangle, error) { return nil, ErrNoMonitors }

// Events never delivers anything; the channel closes with the backend.
func (b *Backend) Events() <-chan render.Event { return b.events }

func (b *Backend) Resize(width, height int) error {
	return b.relayout(func() {
		old := b.surface
		b.surface = image.NewRGBA(image.Rect(0, 0, width, height))
		xdraw.Draw(b.surface, old.Bounds(), old, image.Point{}, xdraw.Src)
	})
}

func (b *Backend) Move(x, y int) error {
	return b.relayout(func() { b.origin = image.Pt(x, y) })
}

func (b *Backend) SetShape(rects []image.Rectangle) error {
	return b.relayout(func() { b.shape = append(b.shape[:0], rects...) })
}

// relayout applies f with the surface taken off the screen and puts it back
// afterwards when it was mapped.
func (b *Backend) relayout(f func()) error {
	if b.closed {
		return ErrClosed
	}
	wasMapped := b.mapped
	if wasMapped {
		b.restore()
	}
	f()
	if wasMapped {
		b.save()
		b.mapped = true
		b.paint(b.surface.Bounds())
	}
	return nil
}

func (b *Backend) Map() error {
	if b.closed {
		return ErrClosed
	}
	if b.mapped {
		return nil
	}
	b.save()
	b.mapped = true
	b.paint(b.surface.Bounds())
	return nil
}

func (b *Backend) Unmap() error {
	if b.closed {
		return ErrClosed
	}
	if b.mapped {
		b.restore()
	}
	return nil
}

func (b *Backend) Copy(src *image.RGBA, r image.Rectangle) error {
	if b.closed {
		return ErrClosed
	}
	r = r.Intersect(src.Bounds()).Intersect(b.surface.Bounds())
	xdraw.Draw(b.surface, r, src, r.Min, xdraw.Src)
	if b.mapped {
		b.paint(r)
	}
	return nil
}

// Flush does nothing: writes land in mapped device memory directly.
func (b *Backend) Flush() error {
	if b.closed {
		return ErrClosed
	}
	return nil
}

func (b *Backend) Close() error {
	b.once.Do(func() {
		if b.mapped {
			b.restore()
		}
		b.closed = true
		close(b.events)
		b.release()
	})
	return nil
}

// save copies the screen under the surface.
func (b *Backend) save() {
	area := b.surface.Bounds().Add(b.origin)
	b.saved = image.NewRGBA(area)
	xdraw.Draw(b.saved, area, b.screen, area.Min, xdraw.Src)
}

// restore puts the saved pixels back and marks the surface unmapped.
func (b *Backend) restore() {
	if b.saved != nil {
		b.drawShaped(b.saved, b.saved.Bounds(), b.origin)
		b.saved = nil
	}
	b.mapped = false
}

// paint writes the part of r inside the shape from the surface to the
// screen.
func (b *Backend) paint(r image.Rectangle) {
	b.drawShaped(b.surface, r.Add(b.origin), image.Point{})
}

// drawShaped copies src onto the screen within clip, a screen rectangle,
// limited to the shape. shift is added to a surface point to get its
// position in src.
func (b *Backend) drawShaped(src image.Image, clip image.Rectangle, shift image.Point) {
	screen := b.screen.Bounds()
	for _, s := range b.shape {
		dst := s.Add(b.origin).Intersect(clip).Intersect(screen)
		if dst.Empty() {
			continue
		}
		sp := dst.Min.Sub(b.origin).Add(shift)
		xdraw.Draw(b.screen, dst, src, sp, xdraw.Src)
	}
}

var _ render.Backend = (*Backend)(nil)
