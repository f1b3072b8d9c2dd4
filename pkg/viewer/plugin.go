package viewer

import "context"

// Plugin extends a Viewer. Initialize is called from Start before the
// navigation loop runs; a failing plugin aborts Start. Shutdown is called
// when the viewer stops, in reverse registration order.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// PluginConfig is handed to plugins on Initialize.
type PluginConfig struct {
	// Input is the absolute path of the container being viewed.
	Input string

	// Internals is the path of the internals dump.
	Internals string

	StateDir string

	// Keys feeds commands into the navigation loop.
	Keys KeySink

	Logger Logger
}

// BasePlugin implements Plugin with no-ops. Embed it and override what the
// plugin needs.
type BasePlugin struct{}

func (BasePlugin) Name() string                                   { return "base" }
func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }
func (BasePlugin) Shutdown(context.Context) error                 { return nil }
