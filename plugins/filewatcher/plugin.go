// Package filewatcher reloads the viewer when the container or its internals
// dump changes on disk. Encoders that rewrite the file in place or replace it
// by rename are both picked up; bursts of events collapse into one reload.
package filewatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/vpxview/pkg/log"
	"github.com/bft-labs/vpxview/pkg/viewer"
)

// Plugin sends viewer.KeyReload when a watched file is written or created.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	debounceDelay time.Duration

	// Runtime state
	files    map[string]bool
	keys     viewer.KeySink
	logger   viewer.Logger
	watcher  *fsnotify.Watcher
	debounce func(func())
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	reloads  int
}

// Config holds configuration options for the file watcher plugin.
type Config struct {
	// DebounceDelay is the quiet period after the last change before a
	// reload is sent.
	// Default: 250 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{DebounceDelay: 250 * time.Millisecond}
}

// New creates a new file watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultConfig().DebounceDelay
	}
	return &Plugin{debounceDelay: cfg.DebounceDelay}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "filewatcher"
}

// Initialize starts watching the directories of the container and of the
// internals dump.
func (p *Plugin) Initialize(ctx context.Context, cfg viewer.PluginConfig) error {
	if cfg.Logger == nil {
		cfg.Logger = log.NewNoopLogger()
	}
	if cfg.Input == "" || cfg.Keys == nil {
		cfg.Logger.Warn("file watcher disabled: no input or key sink configured")
		return nil
	}

	files := map[string]bool{}
	dirs := map[string]bool{}
	for _, f := range []string{cfg.Input, cfg.Internals} {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("file watcher: %w", err)
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("file watcher: %w", err)
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("file watcher: watch %s: %w", dir, err)
		}
	}

	watchCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	p.files = files
	p.keys = cfg.Keys
	p.logger = cfg.Logger
	p.watcher = watcher
	p.debounce = debounce.New(p.debounceDelay)
	p.cancel = cancel
	p.mu.Unlock()

	cfg.Logger.Info("file watcher started",
		log.String("input", cfg.Input),
		log.Duration("debounce", p.debounceDelay))

	p.wg.Add(1)
	go p.watchLoop(watchCtx)
	return nil
}

// Shutdown stops the watcher. A reload still pending is dropped.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	p.wg.Wait()
	return nil
}

// Reloads returns the number of reloads sent so far.
func (p *Plugin) Reloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()
	defer p.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if !p.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.logger.Debug("watched file changed",
				log.String("file", event.Name),
				log.String("op", event.Op.String()))
			p.debounce(func() { p.reload(ctx) })

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("file watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if !p.keys.Send(viewer.KeyReload) {
		p.logger.Warn("reload dropped: key queue full")
		return
	}
	p.mu.Lock()
	p.reloads++
	p.mu.Unlock()
	p.logger.Info("container changed, reload requested")
}

// Ensure Plugin implements viewer.Plugin.
var _ viewer.Plugin = (*Plugin)(nil)
