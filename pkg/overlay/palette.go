package overlay

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/bft-labs/vpxview/internal/domain"
)

// modeLabels holds the short label of each prediction mode.
var modeLabels = [domain.PredictionModeCount]string{
	domain.ModeDC:        "DC",
	domain.ModeV:         "V",
	domain.ModeH:         "H",
	domain.ModeD45:       "D45",
	domain.ModeD135:      "D135",
	domain.ModeD117:      "D117",
	domain.ModeD153:      "D153",
	domain.ModeD207:      "D207",
	domain.ModeD63:       "D63",
	domain.ModeTM:        "TM",
	domain.ModeNearestMV: "NRST",
	domain.ModeNearMV:    "NEAR",
	domain.ModeZeroMV:    "ZERO",
	domain.ModeNewMV:     "NEW",
}

// modeHues places intra modes on the warm half of the wheel and inter
// modes on the cool half.
var modeHues = [domain.PredictionModeCount]float64{
	domain.ModeDC:        0,
	domain.ModeV:         14,
	domain.ModeH:         28,
	domain.ModeD45:       42,
	domain.ModeD135:      56,
	domain.ModeD117:      70,
	domain.ModeD153:      84,
	domain.ModeD207:      98,
	domain.ModeD63:       112,
	domain.ModeTM:        330,
	domain.ModeNearestMV: 170,
	domain.ModeNearMV:    200,
	domain.ModeZeroMV:    230,
	domain.ModeNewMV:     270,
}

var (
	outlineColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	// One color per motion vector slot of a compound block.
	arrowColors = [2]color.RGBA{
		{R: 255, G: 214, B: 0, A: 255},
		{R: 0, G: 230, B: 255, A: 255},
	}
)

// ModeLabel returns the short label of m, or "?" for unknown modes.
func ModeLabel(m domain.PredictionMode) string {
	if !m.Valid() {
		return "?"
	}
	return modeLabels[m]
}

// ModeColor returns the opaque fill color of m. Unknown modes are grey.
func ModeColor(m domain.PredictionMode) color.RGBA {
	if !m.Valid() {
		return color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}
	r, g, b := colorful.Hsv(modeHues[m], 0.85, 0.95).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// withAlpha returns c scaled to alpha a, keeping it premultiplied.
func withAlpha(c color.RGBA, a uint8) color.RGBA {
	scale := func(v uint8) uint8 { return uint8(uint16(v) * uint16(a) / 255) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: a}
}
