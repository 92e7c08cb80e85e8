package ui

import "image/color"

// Theme styles the diagnostic overlay. Sizes are in device-independent
// pixels and scaled by the window's device scale factor.
type Theme struct {
	Panel     color.RGBA
	Border    color.RGBA
	Text      color.RGBA
	MarginDp  int
	PaddingDp int
	BorderDp  int
}

func DefaultTheme() Theme {
	return Theme{
		Panel:     color.RGBA{0x00, 0x00, 0x00, 0xA0},
		Border:    color.RGBA{0x2B, 0x57, 0x9A, 0xFF},
		Text:      color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
		MarginDp:  8,
		PaddingDp: 8,
		BorderDp:  1,
	}
}
