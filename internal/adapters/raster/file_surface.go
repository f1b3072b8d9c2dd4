package raster

import (
	"github.com/bft-labs/vpxview/internal/ports"
	"github.com/bft-labs/vpxview/pkg/overlay"
)

// FileSurface implements ports.Surface by writing every presented scene to
// a PNG file. Image viewers that reload on change show it live.
type FileSurface struct {
	compositor *Compositor
	path       string
	logger     ports.Logger
}

// NewFileSurface creates a surface writing to path.
func NewFileSurface(c *Compositor, path string, logger ports.Logger) *FileSurface {
	return &FileSurface{compositor: c, path: path, logger: logger}
}

// Present composes scene and replaces the output file.
func (s *FileSurface) Present(scene overlay.Scene, title string) error {
	if err := WritePNG(s.path, s.compositor.Compose(scene)); err != nil {
		return err
	}
	s.logger.Debug("frame written",
		ports.String("path", s.path),
		ports.String("title", title))
	return nil
}

// Path returns the output file.
func (s *FileSurface) Path() string {
	return s.path
}
