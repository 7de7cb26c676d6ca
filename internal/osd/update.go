package osd

import "strings"

// Update is the set of pending work for the worker. Bits set by several
// callers before the worker wakes are simply merged.
type Update uint16

const (
	UpdateHide Update = 1 << iota
	UpdateShow
	UpdateTimer
	UpdatePosition
	UpdateLines
	UpdateMask
	UpdateSize

	// UpdateContent redraws every line and rebuilds the shape.
	UpdateContent = UpdateMask | UpdateLines
	// UpdateFont is everything that follows from a change of line metrics.
	UpdateFont = UpdateSize | UpdateContent | UpdatePosition

	UpdateNone Update = 0
)

var updateNames = []struct {
	bit  Update
	name string
}{
	{UpdateHide, "hide"},
	{UpdateShow, "show"},
	{UpdateTimer, "timer"},
	{UpdatePosition, "position"},
	{UpdateLines, "lines"},
	{UpdateMask, "mask"},
	{UpdateSize, "size"},
}

func (u Update) String() string {
	if u == UpdateNone {
		return "none"
	}
	var parts []string
	for _, n := range updateNames {
		if u&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Has reports whether any bit of mask is set.
func (u Update) Has(mask Update) bool { return u&mask != 0 }
