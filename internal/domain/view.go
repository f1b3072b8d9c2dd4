package domain

import "strings"

// OverlayFlags selects the optional overlay layers. Block outlines are
// always drawn.
type OverlayFlags struct {
	Fills   bool `json:"fills"`
	Vectors bool `json:"vectors"`
	Labels  bool `json:"labels"`
}

// DefaultOverlayFlags shows motion vectors over the outlines.
func DefaultOverlayFlags() OverlayFlags {
	return OverlayFlags{Vectors: true}
}

// ViewState is the navigation position owned by the controller.
// Invariant: 0 <= Index < Total whenever Total > 0.
type ViewState struct {
	Index   int          `json:"index"`
	Total   int          `json:"total"`
	Overlay OverlayFlags `json:"overlay"`
}

// CanRetreat reports whether a previous frame exists.
func (v ViewState) CanRetreat() bool {
	return v.Index > 0
}

// CanAdvance reports whether a next frame exists.
func (v ViewState) CanAdvance() bool {
	return v.Index+1 < v.Total
}

// Clamp returns v with Index moved into [0, Total).
func (v ViewState) Clamp() ViewState {
	if v.Index >= v.Total {
		v.Index = v.Total - 1
	}
	if v.Index < 0 {
		v.Index = 0
	}
	return v
}

// Key is an input event delivered to the navigation controller.
type Key uint8

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyQuit
	KeyEscape
	KeyToggleFills
	KeyToggleVectors
	KeyToggleLabels

	// KeyReload is synthesized when the container file changes on disk.
	KeyReload
)

var keyNames = map[Key]string{
	KeyNone:          "none",
	KeyLeft:          "left",
	KeyRight:         "right",
	KeyQuit:          "q",
	KeyEscape:        "escape",
	KeyToggleFills:   "f",
	KeyToggleVectors: "m",
	KeyToggleLabels:  "l",
	KeyReload:        "reload",
}

func (k Key) String() string {
	if n, ok := keyNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseKey maps a key name to a Key. It accepts the DOM names sent by
// browsers ("ArrowLeft", "Escape") as well as the short names used by
// String. Unknown names map to KeyNone.
func ParseKey(name string) Key {
	switch strings.ToLower(name) {
	case "left", "arrowleft":
		return KeyLeft
	case "right", "arrowright":
		return KeyRight
	case "q":
		return KeyQuit
	case "esc", "escape":
		return KeyEscape
	case "f":
		return KeyToggleFills
	case "m":
		return KeyToggleVectors
	case "l":
		return KeyToggleLabels
	case "reload":
		return KeyReload
	default:
		return KeyNone
	}
}
