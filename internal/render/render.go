package render

import (
	"errors"
	"image"
)

// ErrUnsupported is returned by a back-end whose display lacks a required
// capability, such as the shape extension.
var ErrUnsupported = errors.New("unsupported display capability")

// Backend is one rendering connection plus the single surface drawn on it.
//
// A Backend is not safe for concurrent use. The overlay worker is the only
// goroutine that calls into it, except for configuration queries made while
// the worker has handed off ownership through the gate.
type Backend interface {
	// Geometry returns the whole-display rectangle.
	Geometry() image.Rectangle
	// Monitors lists the physical heads, in server order.
	Monitors() ([]image.Rectangle, error)

	// Events delivers surface events. It is closed when the connection is lost.
	Events() <-chan Event

	Resize(width, height int) error
	Move(x, y int) error
	// Map shows the surface above other windows.
	Map() error
	Unmap() error
	// SetShape limits the visible part of the surface to rects.
	SetShape(rects []image.Rectangle) error
	// Copy transfers r from the compose buffer to the surface.
	Copy(src *image.RGBA, r image.Rectangle) error
	// Flush pushes any buffered requests to the display.
	Flush() error

	Close() error
}

// Opener connects a new Backend. Each overlay opens its own connection.
type Opener func() (Backend, error)

// EventKind classifies surface events.
type EventKind int

const (
	// EventRepaint asks for Rect to be copied again from the compose buffer.
	EventRepaint EventKind = iota
	// EventOther is observed and discarded.
	EventOther
)

// Event is one surface event delivered by a back-end.
type Event struct {
	Kind EventKind
	Rect image.Rectangle
}
