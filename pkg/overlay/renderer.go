package overlay

import (
	"fmt"
	"image"
	"strings"

	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/pkg/partition"
)

// Params tune the renderer.
type Params struct {
	// MVScale is the arrow length in picture pixels per 1/8-pel motion
	// vector unit. The default 1 draws vectors eight times their true
	// length so sub-pixel motion stays visible; 0.125 draws true length.
	MVScale float64

	// LabelMinSize is the narrowest clipped block width, in pixels, that
	// still gets a text label.
	LabelMinSize int

	// FillAlpha is the opacity of mode fills.
	FillAlpha uint8
}

// DefaultParams returns the default renderer parameters.
func DefaultParams() Params {
	return Params{
		MVScale:      1.0,
		LabelMinSize: 16,
		FillAlpha:    96,
	}
}

// Renderer builds scenes. It holds no per-frame state and may be shared.
type Renderer struct {
	params Params
}

// NewRenderer returns a Renderer. Zero fields of p take their defaults.
func NewRenderer(p Params) *Renderer {
	d := DefaultParams()
	if p.MVScale <= 0 {
		p.MVScale = d.MVScale
	}
	if p.LabelMinSize <= 0 {
		p.LabelMinSize = d.LabelMinSize
	}
	if p.FillAlpha == 0 {
		p.FillAlpha = d.FillAlpha
	}
	return &Renderer{params: p}
}

// Params returns the effective parameters.
func (r *Renderer) Params() Params {
	return r.params
}

// Render composes the scene of one frame. A nil model yields the picture
// alone. Neither the picture nor the model is modified.
func (r *Renderer) Render(picture image.Image, m *partition.Model, flags domain.OverlayFlags) Scene {
	var s Scene
	if picture != nil {
		s.Picture = picture
		s.Bounds = picture.Bounds()
		s.Primitives = append(s.Primitives, Primitive{Kind: KindPicture, Rect: s.Bounds})
	}
	if m == nil {
		return s
	}
	if picture == nil {
		s.Bounds = m.Bounds()
	}

	for n := range m.LeafNodes() {
		if n.Clip.Empty() {
			continue
		}
		s.Primitives = append(s.Primitives, Primitive{Kind: KindOutline, Rect: n.Clip, Color: outlineColor})
	}

	if flags.Fills {
		for n := range m.LeafNodes() {
			a, ok := m.Attributes(n)
			if !ok || n.Clip.Empty() {
				continue
			}
			s.Primitives = append(s.Primitives, Primitive{
				Kind:  KindFill,
				Rect:  n.Clip,
				Color: withAlpha(ModeColor(a.Mode), r.params.FillAlpha),
			})
		}
	}

	if flags.Vectors {
		for n := range m.LeafNodes() {
			a, ok := m.Attributes(n)
			if !ok || n.Clip.Empty() || !a.Mode.IsInter() {
				continue
			}
			from := center(n.Clip)
			for i, mv := range a.MotionVectors() {
				if mv.IsZero() {
					continue
				}
				s.Primitives = append(s.Primitives, Primitive{
					Kind: KindArrow,
					From: from,
					To: Point{
						X: from.X + float64(mv.X)*r.params.MVScale,
						Y: from.Y + float64(mv.Y)*r.params.MVScale,
					},
					Color: arrowColors[i],
				})
			}
		}
	}

	if flags.Labels {
		for n := range m.LeafNodes() {
			a, ok := m.Attributes(n)
			if !ok || n.Clip.Dx() < r.params.LabelMinSize || n.Clip.Empty() {
				continue
			}
			s.Primitives = append(s.Primitives, Primitive{
				Kind:  KindText,
				Rect:  n.Clip,
				Color: textColor,
				Text:  Label(a),
			})
		}
	}
	return s
}

// Label formats the text label of a leaf: mode, transform size, "S" when
// skipped and the segment id, e.g. "NEW 16x16 S s2".
func Label(a *domain.LeafAttributes) string {
	var b strings.Builder
	b.WriteString(ModeLabel(a.Mode))
	b.WriteByte(' ')
	b.WriteString(a.TxSize.String())
	if a.Skip {
		b.WriteString(" S")
	}
	fmt.Fprintf(&b, " s%d", a.Segment)
	return b.String()
}

func center(r image.Rectangle) Point {
	return Point{
		X: float64(r.Min.X+r.Max.X) / 2,
		Y: float64(r.Min.Y+r.Max.Y) / 2,
	}
}
