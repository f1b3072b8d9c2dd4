package viewer

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"

	"github.com/bft-labs/vpxview/internal/adapters/fs"
	"github.com/bft-labs/vpxview/internal/app"
	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/internal/ports"
	"github.com/bft-labs/vpxview/pkg/ivf"
	"github.com/bft-labs/vpxview/pkg/log"
	"github.com/bft-labs/vpxview/pkg/vpx"
)

// Viewer is a frame-internals inspector that can be embedded in other
// applications. Use New() to create an instance, then Start() or Run().
type Viewer struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	emitter   *eventEmitterWrapper
	logger    Logger

	mu      sync.RWMutex
	keys    *app.KeyQueue
	stopped chan struct{}
	runErr  error
}

// New creates a Viewer in StateStopped. The container is not opened until
// Start. Returns an error if the configuration is invalid.
func New(cfg Config, opts ...Option) (*Viewer, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNoopLogger()
	}
	if o.display == nil {
		o.display = headless{}
	}
	if o.codec == nil {
		o.codec = DumpCodecFactory
	}
	if o.repo == nil && cfg.StateDir != "" {
		o.repo = fs.NewViewFileRepository(cfg.StateDir)
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	return &Viewer{
		config:    cfg,
		opts:      o,
		lifecycle: app.NewLifecycle(o.logger, emitter),
		emitter:   emitter,
		logger:    o.logger,
	}, nil
}

// Start opens the container, initializes plugins and runs the display and
// the navigation loop in the background. Container errors (ErrFormat) and
// plugin failures are returned here and leave the viewer Crashed.
func (v *Viewer) Start(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}

	if err := v.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx := v.lifecycle.Begin(ctx)
	keys := app.NewKeyQueue(app.DefaultKeyQueueSize)
	controller := app.NewController(
		app.ControllerConfig{
			Overlay: v.config.Overlay,
			Resume:  v.config.Resume,
			Render:  v.config.Render,
		},
		v.open,
		v.opts.display,
		v.opts.repo,
		v.logger,
		v.emitter,
	)

	if err := controller.Open(runCtx); err != nil {
		v.logger.Error("failed to open container",
			log.String("path", v.config.Input),
			log.Err(err))
		v.abort("open failed")
		return err
	}

	input, err := filepath.Abs(v.config.Input)
	if err != nil {
		input = v.config.Input
	}
	pluginCfg := PluginConfig{
		Input:     input,
		Internals: v.config.Internals,
		StateDir:  v.config.StateDir,
		Keys:      keys,
		Logger:    v.logger,
	}
	for i, p := range v.opts.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			v.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			v.shutdownPlugins(v.opts.plugins[:i])
			_ = controller.Close()
			v.abort("plugin init failed: " + p.Name())
			return err
		}
		v.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	display := v.opts.display
	v.lifecycle.Go(func() error {
		return display.Serve(runCtx, keys)
	})
	v.lifecycle.Go(func() error {
		// Quitting ends the display too.
		defer v.lifecycle.Cancel()
		return controller.Run(runCtx, keys)
	})

	v.keys = keys
	v.stopped = make(chan struct{})
	v.runErr = nil
	if err := v.lifecycle.TransitionTo(app.StateRunning, "navigation started"); err != nil {
		v.logger.Error("failed to transition to running", log.Err(err))
	}
	v.lifecycle.Seal()
	go v.supervise(v.stopped)

	return nil
}

// Stop cancels the display and the navigation loop, saves the view and
// shuts plugins down. Returns ErrNotRunning if the viewer already stopped
// and ErrShutdownTimeout if its goroutines do not return in time.
func (v *Viewer) Stop() error {
	v.mu.Lock()

	if !v.lifecycle.CanStop() {
		v.mu.Unlock()
		return domain.ErrNotRunning
	}

	if err := v.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		v.mu.Unlock()
		return err
	}

	v.lifecycle.Cancel()
	stopped := v.stopped
	v.mu.Unlock()

	if err := v.lifecycle.WaitWithTimeout(app.ShutdownTimeout); errors.Is(err, domain.ErrShutdownTimeout) {
		_ = v.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
		return err
	}
	<-stopped
	return nil
}

// Wait blocks until the viewer has stopped, by quit, Stop or failure, and
// returns the error that ended it.
func (v *Viewer) Wait() error {
	v.mu.RLock()
	stopped := v.stopped
	v.mu.RUnlock()

	if stopped == nil {
		return domain.ErrNotRunning
	}
	<-stopped

	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.runErr
}

// Run starts the viewer and blocks until the user quits or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	if err := v.Start(ctx); err != nil {
		return err
	}
	return v.Wait()
}

// Send queues a key for the navigation loop. It reports false when the
// viewer is not running or the queue is full.
func (v *Viewer) Send(key Key) bool {
	v.mu.RLock()
	keys := v.keys
	v.mu.RUnlock()

	if keys == nil {
		return false
	}
	return keys.Send(key)
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (v *Viewer) Status() State {
	return convertState(v.lifecycle.State())
}

// open is the controller's Opener: it opens the container and a fresh
// decoder session for it. Reload calls it again.
func (v *Viewer) open(ctx context.Context) (ports.FrameSource, ports.Decoder, error) {
	d, err := ivf.Open(v.config.Input, v.logger)
	if err != nil {
		return nil, nil, err
	}
	codec, err := v.opts.codec(d.Info(), v.config.Internals, v.logger)
	if err != nil {
		return nil, nil, multierr.Append(err, d.Close())
	}
	return d, vpx.NewSession(codec, v.logger), nil
}

// supervise finishes a run once every goroutine of the group has returned.
func (v *Viewer) supervise(stopped chan struct{}) {
	<-v.lifecycle.Done()
	err := v.lifecycle.Err()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	v.mu.Lock()
	if v.lifecycle.State() == app.StateRunning {
		_ = v.lifecycle.TransitionTo(app.StateStopping, "navigation ended")
	}
	v.keys = nil
	v.mu.Unlock()

	v.shutdownPlugins(v.opts.plugins)

	if err != nil {
		v.logger.Error("viewer error", log.Err(err))
		_ = v.lifecycle.TransitionTo(app.StateCrashed, err.Error())
	} else {
		_ = v.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}

	v.mu.Lock()
	v.runErr = err
	v.mu.Unlock()
	close(stopped)
}

func (v *Viewer) abort(reason string) {
	v.lifecycle.Cancel()
	_ = v.lifecycle.TransitionTo(app.StateCrashed, reason)
}

// shutdownPlugins shuts plugins down in reverse order. Failures are logged
// and do not stop the others.
func (v *Viewer) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			v.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
		} else {
			v.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnFrameShown(view domain.ViewState, info domain.FrameInfo) {
	if e.handler == nil {
		return
	}
	e.handler.OnFrameShown(FrameShownEvent{View: view, Info: info})
}

func (e *eventEmitterWrapper) OnFrameError(index int, err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnFrameError(FrameErrorEvent{Index: index, Error: err})
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
