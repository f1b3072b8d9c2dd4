package filewatcher

import "github.com/bft-labs/vpxview/pkg/viewer"

// WithFileWatcher returns a viewer Option that reloads the container when it
// or its internals dump changes.
//
// Usage:
//
//	v, err := viewer.New(cfg,
//	    filewatcher.WithFileWatcher(filewatcher.Config{
//	        DebounceDelay: 500 * time.Millisecond,
//	    }),
//	)
func WithFileWatcher(cfg Config) viewer.Option {
	return viewer.WithPlugin(New(cfg))
}

// WithDefaultFileWatcher enables file watching with default settings.
func WithDefaultFileWatcher() viewer.Option {
	return WithFileWatcher(DefaultConfig())
}
