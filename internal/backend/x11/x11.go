// Package x11 is the render.Backend for an X server. The surface is an
// override-redirect window cut to the drawn pixels with the shape
// extension. Xinerama, when active, describes the monitors.
package x11

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xinerama"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xgraphics"

	"github.com/rook-computer/hud/internal/logging"
	"github.com/rook-computer/hud/internal/render"
)

// ErrNoXinerama is returned by Monitors when the server has no active
// xinerama extension.
var ErrNoXinerama = errors.New("x11: xinerama not active")

// WindowName is set as WM_NAME and WM_CLASS of every surface.
const WindowName = "hud"

// Backend is one X connection with one surface window.
type Backend struct {
	xu  *xgbutil.XUtil
	win xproto.Window
	gc  xproto.Gcontext
	log logging.Logger

	// img mirrors the window contents server side.
	img  *xgraphics.Image
	size image.Point

	xinerama bool
	events   chan render.Event
	quit     chan struct{}
	pump     sync.WaitGroup
	once     sync.Once
}

// Opener returns an opener that connects to display, or to $DISPLAY when
// display is empty.
func Opener(display string, log logging.Logger) render.Opener {
	return func() (render.Backend, error) { return Open(display, log) }
}

// Open connects to the X server and creates the (unmapped) surface window.
func Open(display string, log logging.Logger) (*Backend, error) {
	if log == nil {
		log = logging.NoopLogger{}
	}
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("x11: connect %q: %w", display, err)
	}
	c := xu.Conn()

	if err := shape.Init(c); err != nil {
		c.Close()
		return nil, fmt.Errorf("x11: shape extension: %w: %v", render.ErrUnsupported, err)
	}
	if _, err := shape.QueryVersion(c).Reply(); err != nil {
		c.Close()
		return nil, fmt.Errorf("x11: shape extension: %w: %v", render.ErrUnsupported, err)
	}

	b := &Backend{
		xu:     xu,
		log:    log,
		size:   image.Pt(1, 1),
		events: make(chan render.Event, 32),
		quit:   make(chan struct{}),
	}
	if err := xinerama.Init(c); err == nil {
		if reply, err := xinerama.IsActive(c).Reply(); err == nil && reply.State != 0 {
			b.xinerama = true
		}
	}

	if err := b.createWindow(); err != nil {
		c.Close()
		return nil, err
	}

	b.pump.Add(1)
	go b.readEvents()
	log.Infof("x11", "connected to %q, screen %dx%d, xinerama=%t", display, xu.Screen().WidthInPixels, xu.Screen().HeightInPixels, b.xinerama)
	return b, nil
}

func (b *Backend) createWindow() error {
	c := b.xu.Conn()
	win, err := xproto.NewWindowId(c)
	if err != nil {
		return fmt.Errorf("x11: window id: %w", err)
	}
	screen := b.xu.Screen()
	err = xproto.CreateWindowChecked(c, screen.RootDepth, win, screen.Root,
		0, 0, uint16(b.size.X), uint16(b.size.Y), 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{
			screen.BlackPixel,
			1,
			xproto.EventMaskExposure | xproto.EventMaskVisibilityChange,
		}).Check()
	if err != nil {
		return fmt.Errorf("x11: create window: %w", err)
	}
	b.win = win

	gc, err := xproto.NewGcontextId(c)
	if err != nil {
		return fmt.Errorf("x11: gc id: %w", err)
	}
	if err := xproto.CreateGCChecked(c, gc, xproto.Drawable(win), 0, nil).Check(); err != nil {
		return fmt.Errorf("x11: create gc: %w", err)
	}
	b.gc = gc

	// Hints only; an override-redirect window is not managed.
	if err := icccm.WmNameSet(b.xu, win, WindowName); err != nil {
		b.log.Debugf("x11", "WM_NAME: %v", err)
	}
	if err := icccm.WmClassSet(b.xu, win, &icccm.WmClass{Instance: WindowName, Class: WindowName}); err != nil {
		b.log.Debugf("x11", "WM_CLASS: %v", err)
	}
	if err := ewmh.WmWindowTypeSet(b.xu, win, []string{"_NET_WM_WINDOW_TYPE_NOTIFICATION"}); err != nil {
		b.log.Debugf("x11", "_NET_WM_WINDOW_TYPE: %v", err)
	}
	if err := ewmh.WmStateSet(b.xu, win, []string{"_NET_WM_STATE_ABOVE", "_NET_WM_STATE_SKIP_TASKBAR"}); err != nil {
		b.log.Debugf("x11", "_NET_WM_STATE: %v", err)
	}
	return b.newImage()
}

// newImage replaces the server-side image with one of the current size.
func (b *Backend) newImage() error {
	if b.img != nil {
		b.img.Destroy()
	}
	b.img = xgraphics.New(b.xu, image.Rect(0, 0, b.size.X, b.size.Y))
	if err := b.img.XSurfaceSet(b.win); err != nil {
		return fmt.Errorf("x11: surface: %w", err)
	}
	return nil
}

// readEvents turns X events into render events until the connection dies.
func (b *Backend) readEvents() {
	defer b.pump.Done()
	defer close(b.events)
	c := b.xu.Conn()
	for {
		ev, xerr := c.WaitForEvent()
		if ev == nil && xerr == nil {
			return
		}
		if xerr != nil {
			b.log.Errorf("x11", "protocol error: %v", xerr)
			continue
		}
		out := render.Event{Kind: render.EventOther}
		if e, ok := ev.(xproto.ExposeEvent); ok && e.Window == b.win {
			out = render.Event{
				Kind: render.EventRepaint,
				Rect: image.Rect(int(e.X), int(e.Y), int(e.X)+int(e.Width), int(e.Y)+int(e.Height)),
			}
		}
		select {
		case b.events <- out:
		case <-b.quit:
			return
		}
	}
}

func (b *Backend) Geometry() image.Rectangle {
	s := b.xu.Screen()
	return image.Rect(0, 0, int(s.WidthInPixels), int(s.HeightInPixels))
}

func (b *Backend) Monitors() ([]image.Rectangle, error) {
	if !b.xinerama {
		return nil, ErrNoXinerama
	}
	reply, err := xinerama.QueryScreens(b.xu.Conn()).Reply()
	if err != nil {
		return nil, fmt.Errorf("x11: xinerama screens: %w", err)
	}
	heads := make([]image.Rectangle, 0, len(reply.ScreenInfo))
	for _, si := range reply.ScreenInfo {
		x, y := int(si.XOrg), int(si.YOrg)
		heads = append(heads, image.Rect(x, y, x+int(si.Width), y+int(si.Height)))
	}
	return heads, nil
}

func (b *Backend) Events() <-chan render.Event { return b.events }

func (b *Backend) Resize(width, height int) error {
	// X forbids zero-sized windows.
	width, height = max(width, 1), max(height, 1)
	b.size = image.Pt(width, height)
	xproto.ConfigureWindow(b.xu.Conn(), b.win,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(width), uint32(height)})
	return b.newImage()
}

func (b *Backend) Move(x, y int) error {
	xproto.ConfigureWindow(b.xu.Conn(), b.win,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))})
	return nil
}

func (b *Backend) Map() error {
	c := b.xu.Conn()
	xproto.MapWindow(c, b.win)
	xproto.ConfigureWindow(c, b.win, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
	return nil
}

func (b *Backend) Unmap() error {
	xproto.UnmapWindow(b.xu.Conn(), b.win)
	return nil
}

func (b *Backend) SetShape(rects []image.Rectangle) error {
	xr := make([]xproto.Rectangle, 0, len(rects))
	for _, r := range rects {
		xr = append(xr, xproto.Rectangle{
			X: int16(r.Min.X), Y: int16(r.Min.Y),
			Width: uint16(r.Dx()), Height: uint16(r.Dy()),
		})
	}
	shape.Rectangles(b.xu.Conn(), shape.SoSet, shape.SkBounding, xproto.ClipOrderingUnsorted, b.win, 0, 0, xr)
	return nil
}

// Copy converts r of src into the server-side image, uploads that part of
// it and paints it into the window.
func (b *Backend) Copy(src *image.RGBA, r image.Rectangle) error {
	damaged := stage(b.img, src, r)
	if damaged == nil {
		return nil
	}
	damaged.XDraw()
	r = damaged.Bounds()
	xproto.CopyArea(b.xu.Conn(), xproto.Drawable(b.img.Pixmap), xproto.Drawable(b.win), b.gc,
		int16(r.Min.X), int16(r.Min.Y), int16(r.Min.X), int16(r.Min.Y),
		uint16(r.Dx()), uint16(r.Dy()))
	return nil
}

// stage converts the pixels of src inside r into dst and returns the
// sub-image covering them, sharing dst's pixmap. It returns nil when r
// misses both images.
func stage(dst *xgraphics.Image, src *image.RGBA, r image.Rectangle) *xgraphics.Image {
	r = r.Intersect(src.Bounds()).Intersect(dst.Bounds())
	if r.Empty() {
		return nil
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := src.RGBAAt(x, y)
			dst.SetBGRA(x, y, xgraphics.BGRA{B: c.B, G: c.G, R: c.R, A: 0xFF})
		}
	}
	sub, _ := dst.SubImage(r).(*xgraphics.Image)
	return sub
}

// Flush waits for the server to process everything sent so far. It fails
// once the connection is gone.
func (b *Backend) Flush() error {
	if _, err := xproto.GetInputFocus(b.xu.Conn()).Reply(); err != nil {
		return fmt.Errorf("x11: sync: %w", err)
	}
	return nil
}

func (b *Backend) Close() error {
	b.once.Do(func() {
		close(b.quit)
		c := b.xu.Conn()
		if b.img != nil {
			b.img.Destroy()
		}
		xproto.FreeGC(c, b.gc)
		xproto.DestroyWindow(c, b.win)
		c.Close()
		b.pump.Wait()
	})
	return nil
}

var _ render.Backend = (*Backend)(nil)
