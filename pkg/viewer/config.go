package viewer

import (
	"fmt"

	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/pkg/overlay"
	"github.com/bft-labs/vpxview/pkg/vpx"
)

// Config holds the configuration of a Viewer.
type Config struct {
	// Input is the IVF container to inspect. Required.
	Input string

	// Internals is the block-internals dump. Default: Input + ".blocks.jsonl".
	Internals string

	// Overlay is the initial layer selection. Block outlines are always drawn.
	Overlay OverlayFlags

	// Resume restores the last view of Input from the state repository.
	Resume bool

	// StateDir holds saved views. Empty disables persistence unless a
	// repository is given with WithStateRepository.
	StateDir string

	// Render tunes the overlay renderer. Zero fields take defaults.
	Render overlay.Params
}

// SetDefaults fills derived and zero fields.
func (c *Config) SetDefaults() {
	if c.Internals == "" && c.Input != "" {
		c.Internals = c.Input + vpx.DumpSuffix
	}
	d := overlay.DefaultParams()
	if c.Render.MVScale == 0 {
		c.Render.MVScale = d.MVScale
	}
	if c.Render.LabelMinSize == 0 {
		c.Render.LabelMinSize = d.LabelMinSize
	}
	if c.Render.FillAlpha == 0 {
		c.Render.FillAlpha = d.FillAlpha
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("%w: input container is required", domain.ErrInvalidConfig)
	}
	if c.Render.MVScale < 0 {
		return fmt.Errorf("%w: mv scale must not be negative", domain.ErrInvalidConfig)
	}
	if c.Render.LabelMinSize < 0 {
		return fmt.Errorf("%w: label min size must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}
