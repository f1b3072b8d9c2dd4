package viewer

import (
	"context"

	"github.com/bft-labs/vpxview/internal/ports"
	"github.com/bft-labs/vpxview/pkg/log"
	"github.com/bft-labs/vpxview/pkg/overlay"
	"github.com/bft-labs/vpxview/pkg/vpx"
)

// CodecFactory creates the decoder for a container. internals is the
// configured internals dump path.
type CodecFactory func(info StreamInfo, internals string, logger Logger) (vpx.Codec, error)

// DumpCodecFactory decodes pictures with the built-in decoders and takes
// block internals from the dump at internals.
func DumpCodecFactory(info StreamInfo, internals string, logger Logger) (vpx.Codec, error) {
	c, err := vpx.NewDumpCodec(info, internals, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Option configures optional behavior of a Viewer.
type Option func(*options)

// options holds the optional configuration for a Viewer.
type options struct {
	logger       Logger
	display      Display
	eventHandler EventHandler
	plugins      []Plugin
	repo         ViewRepository
	codec        CodecFactory
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		codec:  DumpCodecFactory,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDisplay sets the display that presents scenes and reads keys.
// If not provided, the viewer runs headless.
func WithDisplay(d Display) Option {
	return func(o *options) {
		o.display = d
	}
}

// WithEventHandler sets a handler for viewer events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the viewer starts.
// Plugins are initialized in registration order and shut down in reverse
// order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithStateRepository overrides where views are saved. It takes precedence
// over Config.StateDir.
func WithStateRepository(repo ViewRepository) Option {
	return func(o *options) {
		o.repo = repo
	}
}

// WithCodec replaces the decoder used for every open and reload.
func WithCodec(factory CodecFactory) Option {
	return func(o *options) {
		o.codec = factory
	}
}

// headless discards scenes and waits for cancellation.
type headless struct{}

func (headless) Present(overlay.Scene, string) error { return nil }

func (headless) Serve(ctx context.Context, _ ports.KeySink) error {
	<-ctx.Done()
	return nil
}
