package overlay

import (
	"fmt"
	"image"
	"image/color"
)

// Kind identifies a draw primitive.
type Kind uint8

const (
	KindPicture Kind = iota
	KindOutline
	KindFill
	KindArrow
	KindText
)

var kindNames = [...]string{
	KindPicture: "picture",
	KindOutline: "outline",
	KindFill:    "fill",
	KindArrow:   "arrow",
	KindText:    "text",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Point is a position in picture coordinates. Arrow ends are fractional.
type Point struct {
	X, Y float64
}

// Primitive is one draw operation. Rect is used by pictures, outlines, fills
// and text; From and To by arrows.
type Primitive struct {
	Kind  Kind
	Rect  image.Rectangle
	From  Point
	To    Point
	Color color.RGBA
	Text  string
}

// Scene is the ordered draw list for one frame, back to front.
type Scene struct {
	// Picture is the decoded frame. It is shared with the decoder session
	// and must be treated as read-only.
	Picture image.Image

	// Bounds is the picture rectangle.
	Bounds image.Rectangle

	Primitives []Primitive

	// Banner is a per-frame message shown on top of the scene, empty when
	// the frame rendered cleanly.
	Banner string
}

// Count returns the number of primitives of kind k.
func (s Scene) Count(k Kind) int {
	n := 0
	for i := range s.Primitives {
		if s.Primitives[i].Kind == k {
			n++
		}
	}
	return n
}

// WithBanner returns a copy of s carrying banner. The primitive list is
// shared.
func (s Scene) WithBanner(banner string) Scene {
	s.Banner = banner
	return s
}

// Empty reports whether the scene has nothing to show.
func (s Scene) Empty() bool {
	return s.Picture == nil && len(s.Primitives) == 0
}
