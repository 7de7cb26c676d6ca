package render

import "image/color"

// Global render defaults for new overlays.
var (
	// DefaultFont is the font spec every overlay starts with.
	DefaultFont = "-misc-fixed-medium-r-semicondensed--*-*-*-*-c-*-*-*"
	// DefaultColour is the initial text and bar colour.
	DefaultColour = "green"

	// Fallback is installed when a colour name cannot be resolved.
	Fallback = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	// Black is the initial shadow and outline colour.
	Black = color.RGBA{A: 0xFF}

	// Surface size used until the first size pass knows the font.
	InitialLineHeight = 10
)
