package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/internal/ports"
	"github.com/bft-labs/vpxview/pkg/overlay"
	"github.com/bft-labs/vpxview/pkg/partition"
)

// NavState is the state of the navigation loop.
type NavState int

const (
	// NavIdle shows frame View().Index and waits for a key.
	NavIdle NavState = iota
	// NavQuitting is terminal.
	NavQuitting
)

// String returns a human-readable representation of the state.
func (s NavState) String() string {
	switch s {
	case NavIdle:
		return "Idle"
	case NavQuitting:
		return "Quitting"
	default:
		return "Unknown"
	}
}

// ControllerConfig contains configuration for the navigation loop.
type ControllerConfig struct {
	// Overlay is the initial layer selection.
	Overlay domain.OverlayFlags

	// Resume restores the saved view of the container, if any.
	Resume bool

	// Render tunes the overlay renderer.
	Render overlay.Params
}

// FrameEventEmitter is called after every attempt to show a frame.
type FrameEventEmitter interface {
	OnFrameShown(view domain.ViewState, info domain.FrameInfo)
	OnFrameError(index int, err error)
}

// Controller runs the single-threaded navigation loop. It owns the view
// state, the frame source, the decoder, the model builder and the current
// scene; nothing else touches them.
type Controller struct {
	config   ControllerConfig
	open     ports.Opener
	surface  ports.Surface
	repo     ports.ViewRepository
	logger   ports.Logger
	emitter  FrameEventEmitter
	builder  *partition.Builder
	renderer *overlay.Renderer

	source  ports.FrameSource
	decoder ports.Decoder

	state  NavState
	view   domain.ViewState
	frame  *domain.DecodedFrame
	model  *partition.Model
	banner string
	scene  overlay.Scene
}

// NewController creates a controller. repo and emitter may be nil.
func NewController(
	config ControllerConfig,
	open ports.Opener,
	surface ports.Surface,
	repo ports.ViewRepository,
	logger ports.Logger,
	emitter FrameEventEmitter,
) *Controller {
	return &Controller{
		config:   config,
		open:     open,
		surface:  surface,
		repo:     repo,
		logger:   logger,
		emitter:  emitter,
		builder:  partition.NewBuilder(),
		renderer: overlay.NewRenderer(config.Render),
		view:     domain.ViewState{Overlay: config.Overlay},
	}
}

// Open opens the container and shows the first frame (or the resumed one).
// Container errors are returned; a frame that fails to decode is not an
// error here, it is shown as a banner.
func (c *Controller) Open(ctx context.Context) error {
	source, decoder, err := c.open(ctx)
	if err != nil {
		return err
	}
	if source.Len() == 0 {
		_ = source.Close()
		return fmt.Errorf("%w: no frames", domain.ErrFormat)
	}
	c.source, c.decoder = source, decoder
	c.state = NavIdle
	c.view.Total = source.Len()
	c.view.Index = 0

	if c.config.Resume && c.repo != nil {
		saved, ok, err := c.repo.Load(ctx, source.Path())
		switch {
		case err != nil:
			c.logger.Warn("failed to load view state", ports.Err(err))
		case ok:
			c.view.Index = saved.Index
			c.view.Overlay = saved.Overlay
			c.view = c.view.Clamp()
			c.logger.Info("resumed view",
				ports.Int("index", c.view.Index),
				ports.Int("total", c.view.Total))
		}
	}

	_ = c.show(c.view.Index)
	return nil
}

// Run opens the container unless Open was already called, then handles keys
// until quit or ctx is done. The view state is saved on the way out either way.
func (c *Controller) Run(ctx context.Context, keys ports.KeySource) error {
	if c.source == nil {
		if err := c.Open(ctx); err != nil {
			return err
		}
	}
	defer func() { _ = c.Close() }()

	for c.state != NavQuitting {
		key, err := keys.NextKey(ctx)
		if err != nil {
			c.quit(context.WithoutCancel(ctx))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		_ = c.Handle(ctx, key)
	}
	return nil
}

// Handle applies one key. The returned error is informational: the
// controller has already logged it and updated the scene.
func (c *Controller) Handle(ctx context.Context, key domain.Key) error {
	if c.state == NavQuitting {
		return nil
	}
	c.logger.Debug("key", ports.String("key", key.String()), ports.Int("index", c.view.Index))

	switch key {
	case domain.KeyLeft:
		if !c.view.CanRetreat() {
			return nil
		}
		return c.show(c.view.Index - 1)
	case domain.KeyRight:
		if !c.view.CanAdvance() {
			return nil
		}
		return c.show(c.view.Index + 1)
	case domain.KeyQuit, domain.KeyEscape:
		c.quit(ctx)
		return nil
	case domain.KeyToggleFills:
		c.view.Overlay.Fills = !c.view.Overlay.Fills
		c.render()
	case domain.KeyToggleVectors:
		c.view.Overlay.Vectors = !c.view.Overlay.Vectors
		c.render()
	case domain.KeyToggleLabels:
		c.view.Overlay.Labels = !c.view.Overlay.Labels
		c.render()
	case domain.KeyReload:
		return c.reload(ctx)
	}
	return nil
}

// State returns the navigation state.
func (c *Controller) State() NavState {
	return c.state
}

// View returns the current view state.
func (c *Controller) View() domain.ViewState {
	return c.view
}

// Scene returns the scene last presented.
func (c *Controller) Scene() overlay.Scene {
	return c.scene
}

// Model returns the partition model of the current frame, or nil when the
// frame has none.
func (c *Controller) Model() *partition.Model {
	return c.model
}

// show runs frame_at -> decode -> build -> render -> present for frame i.
// On a decode failure the index and the previous frame stay; on an
// internals failure the index moves and the picture is shown bare.
func (c *Controller) show(i int) error {
	f, err := c.source.FrameAt(i)
	if err != nil {
		c.logger.Error("frame lookup failed", ports.Int("index", i), ports.Err(err))
		return err
	}

	payload, err := c.source.Payload(f)
	if err == nil {
		var df *domain.DecodedFrame
		df, err = c.decoder.Decode(payload)
		if err == nil {
			c.frame = df
		}
	}
	if err != nil {
		c.logger.Warn("frame decode failed",
			ports.Int("index", i),
			ports.Int64("offset", f.Offset),
			ports.Err(err))
		c.banner = fmt.Sprintf("frame %d: %v", i+1, err)
		c.scene = c.scene.WithBanner(c.banner)
		c.present()
		if c.emitter != nil {
			c.emitter.OnFrameError(i, err)
		}
		return err
	}

	c.view.Index = i
	m, buildErr := c.builder.Build(c.frame.Superblocks, c.frame.Width, c.frame.Height)
	if buildErr != nil {
		c.logger.Warn("frame internals rejected, showing picture only",
			ports.Int("index", i),
			ports.Err(buildErr))
		c.model = nil
		c.banner = fmt.Sprintf("frame %d: %v", i+1, buildErr)
	} else {
		c.model = m
		c.banner = ""
	}

	c.render()
	if c.emitter != nil {
		if buildErr != nil {
			c.emitter.OnFrameError(i, buildErr)
		} else {
			c.emitter.OnFrameShown(c.view, c.frame.Info)
		}
	}
	return buildErr
}

// render rebuilds the scene from the current frame without decoding.
func (c *Controller) render() {
	if c.frame == nil {
		c.scene = overlay.Scene{Banner: c.banner}
	} else {
		c.scene = c.renderer.Render(c.frame.Picture, c.model, c.view.Overlay)
		c.scene.Banner = c.banner
	}
	c.present()
}

func (c *Controller) present() {
	if err := c.surface.Present(c.scene, c.title()); err != nil {
		c.logger.Error("present failed", ports.Err(err))
	}
}

func (c *Controller) title() string {
	return fmt.Sprintf("vpxview - %s - %d/%d",
		filepath.Base(c.source.Path()), c.view.Index+1, c.view.Total)
}

// reload reopens the container, clamps the index and shows it again. The
// old container stays in use if the reopen fails.
func (c *Controller) reload(ctx context.Context) error {
	source, decoder, err := c.open(ctx)
	if err == nil && source.Len() == 0 {
		_ = source.Close()
		err = fmt.Errorf("%w: no frames", domain.ErrFormat)
	}
	if err != nil {
		c.logger.Warn("reload failed, keeping current container", ports.Err(err))
		c.banner = fmt.Sprintf("reload: %v", err)
		c.scene = c.scene.WithBanner(c.banner)
		c.present()
		return err
	}

	if err := c.source.Close(); err != nil {
		c.logger.Warn("failed to close previous container", ports.Err(err))
	}
	c.source, c.decoder = source, decoder
	c.frame, c.model = nil, nil
	c.view.Total = source.Len()
	c.view = c.view.Clamp()

	c.logger.Info("container reloaded",
		ports.Int("frames", c.view.Total),
		ports.Int("index", c.view.Index))
	return c.show(c.view.Index)
}

func (c *Controller) quit(ctx context.Context) {
	c.state = NavQuitting
	if c.repo == nil || c.source == nil {
		return
	}
	if err := c.repo.Save(ctx, c.source.Path(), c.view); err != nil {
		c.logger.Error("failed to save view state", ports.Err(err))
	}
}

// Close releases the container. Run calls it on return; a later Run opens
// the container again.
func (c *Controller) Close() error {
	if c.source == nil {
		return nil
	}
	err := c.source.Close()
	c.source = nil
	if err != nil {
		c.logger.Warn("failed to close container", ports.Err(err))
	}
	return err
}
