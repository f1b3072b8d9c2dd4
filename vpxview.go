// Package vpxview is a frame-internals inspector for VP9 and VP8 streams.
//
// Example usage:
//
//	cfg := vpxview.Config{Input: "/path/to/clip.ivf"}
//	cfg.Overlay.Vectors = true
//	if err := vpxview.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// For displays, plugins and events use package pkg/viewer directly.
package vpxview

import (
	"context"

	"github.com/bft-labs/vpxview/pkg/viewer"
)

// Config holds the configuration of a viewer.
type Config = viewer.Config

// Viewer is an embeddable inspector instance.
type Viewer = viewer.Viewer

// New creates a Viewer. See viewer.New.
func New(cfg Config, opts ...viewer.Option) (*Viewer, error) {
	return viewer.New(cfg, opts...)
}

// Run creates a viewer and blocks until it quits or ctx is cancelled.
// Without viewer.WithDisplay the viewer runs headless.
func Run(ctx context.Context, cfg Config, opts ...viewer.Option) error {
	v, err := viewer.New(cfg, opts...)
	if err != nil {
		return err
	}
	return v.Run(ctx)
}

// Version is the version of the viewer module.
const Version = viewer.Version
