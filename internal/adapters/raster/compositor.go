// Package raster composites overlay scenes into images with gg.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/bft-labs/vpxview/pkg/overlay"
)

const (
	// MaxZoom bounds the integer picture magnification.
	MaxZoom = 8

	labelSize  = 10
	bannerSize = 13
	arrowHead  = 5.0
)

var (
	bannerBackground = color.RGBA{R: 24, G: 24, B: 24, A: 220}
	bannerText       = color.RGBA{R: 255, G: 96, B: 96, A: 255}
	shadow           = color.RGBA{A: 200}
)

// Compositor paints scenes onto an upscaled copy of the picture. It is not
// safe for concurrent use; the navigation loop owns it.
type Compositor struct {
	zoom   int
	label  font.Face
	banner font.Face
}

// NewCompositor returns a compositor magnifying pictures by zoom.
func NewCompositor(zoom int) (*Compositor, error) {
	if zoom < 1 || zoom > MaxZoom {
		return nil, fmt.Errorf("zoom %d outside [1, %d]", zoom, MaxZoom)
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Compositor{
		zoom:   zoom,
		label:  truetype.NewFace(f, &truetype.Options{Size: labelSize}),
		banner: truetype.NewFace(f, &truetype.Options{Size: bannerSize}),
	}, nil
}

// Zoom returns the magnification factor.
func (c *Compositor) Zoom() int {
	return c.zoom
}

// Compose renders s back to front. The scene picture is not modified.
func (c *Compositor) Compose(s overlay.Scene) image.Image {
	z := float64(c.zoom)
	dc := c.base(s)

	for _, p := range s.Primitives {
		switch p.Kind {
		case overlay.KindOutline:
			r := p.Rect
			dc.SetColor(p.Color)
			dc.SetLineWidth(1)
			dc.DrawRectangle(float64(r.Min.X)*z+0.5, float64(r.Min.Y)*z+0.5,
				float64(r.Dx())*z-1, float64(r.Dy())*z-1)
			dc.Stroke()
		case overlay.KindFill:
			r := p.Rect
			dc.SetColor(p.Color)
			dc.DrawRectangle(float64(r.Min.X)*z, float64(r.Min.Y)*z, float64(r.Dx())*z, float64(r.Dy())*z)
			dc.Fill()
		case overlay.KindArrow:
			drawArrow(dc, p.From.X*z, p.From.Y*z, p.To.X*z, p.To.Y*z, p.Color)
		case overlay.KindText:
			dc.SetFontFace(c.label)
			x := float64(p.Rect.Min.X)*z + 2
			y := float64(p.Rect.Min.Y)*z + labelSize + 1
			dc.SetColor(shadow)
			dc.DrawString(p.Text, x+1, y+1)
			dc.SetColor(p.Color)
			dc.DrawString(p.Text, x, y)
		}
	}

	if s.Banner != "" {
		dc.SetFontFace(c.banner)
		h := float64(bannerSize + 8)
		dc.SetColor(bannerBackground)
		dc.DrawRectangle(0, 0, float64(dc.Width()), h)
		dc.Fill()
		dc.SetColor(bannerText)
		dc.DrawString(s.Banner, 4, bannerSize+2)
	}
	return dc.Image()
}

// base returns a context holding the magnified picture, or a black canvas
// when the scene has none.
func (c *Compositor) base(s overlay.Scene) *gg.Context {
	if s.Picture == nil {
		w, h := s.Bounds.Dx()*c.zoom, s.Bounds.Dy()*c.zoom
		if w == 0 || h == 0 {
			w, h = 480, 64
		}
		dc := gg.NewContext(w, h)
		dc.SetColor(color.Black)
		dc.Clear()
		return dc
	}
	b := s.Picture.Bounds()
	var pic *image.NRGBA
	if c.zoom == 1 {
		pic = imaging.Clone(s.Picture)
	} else {
		pic = imaging.Resize(s.Picture, b.Dx()*c.zoom, b.Dy()*c.zoom, imaging.NearestNeighbor)
	}
	return gg.NewContextForImage(pic)
}

func drawArrow(dc *gg.Context, x1, y1, x2, y2 float64, col color.Color) {
	dc.SetColor(col)
	dc.SetLineWidth(1.5)
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()

	length := math.Hypot(x2-x1, y2-y1)
	if length < 1 {
		return
	}
	head := math.Min(arrowHead, length/2)
	angle := math.Atan2(y2-y1, x2-x1)
	for _, side := range []float64{-1, 1} {
		a := angle + math.Pi - side*math.Pi/7
		dc.DrawLine(x2, y2, x2+head*math.Cos(a), y2+head*math.Sin(a))
	}
	dc.Stroke()
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}

// WritePNG writes img to path atomically (temp file, then rename).
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := EncodePNG(f, img); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
