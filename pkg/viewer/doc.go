// Package viewer provides an embeddable VP9/VP8 frame-internals inspector.
//
// A Viewer opens an IVF container, decodes one frame at a time and presents
// the picture with its partition overlay on a Display. Navigation keys come
// from the display, from plugins or from [Viewer.Send].
//
// # Basic Usage
//
//	cfg := viewer.Config{Input: "/path/to/clip.ivf"}
//
//	v, err := viewer.New(cfg, viewer.WithDisplay(myDisplay))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Run blocks until the user quits or ctx is cancelled.
//	if err := v.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration
//
// Create a [Config] with at minimum Input. The internals dump defaults to
// Input + ".blocks.jsonl"; a missing dump leaves every frame without an
// overlay. Other fields get defaults from [Config.SetDefaults].
//
// # Displays
//
// A [Display] presents scenes and pumps keys into a [KeySink] until its
// context is done. Without [WithDisplay] the viewer runs headless: scenes are
// discarded and keys only arrive through [Viewer.Send] or plugins.
//
// # Event Handling
//
// Implement [EventHandler] (embed [BaseEventHandler] for no-op defaults) and
// pass it via [WithEventHandler]. Frame events are called synchronously from
// the navigation goroutine and should return quickly.
//
// # Plugins
//
// Plugins are initialized in registration order when the viewer starts and
// shut down in reverse order when it stops:
//
//	import "github.com/bft-labs/vpxview/plugins/filewatcher"
//
//	v, err := viewer.New(cfg, filewatcher.WithFileWatcher(filewatcher.DefaultConfig()))
//
// # Lifecycle States
//
// A Viewer is in one of [StateStopped], [StateStarting], [StateRunning],
// [StateStopping] or [StateCrashed]. Use [Viewer.Status] to query it.
package viewer
