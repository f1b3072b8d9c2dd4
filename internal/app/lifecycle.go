package app

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/internal/ports"
)

// ShutdownTimeout is the maximum time to wait for the viewer goroutines to
// return after cancellation.
const ShutdownTimeout = 5 * time.Second

// State represents the lifecycle state of the viewer.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// Lifecycle manages the state machine of a viewer and the goroutines it
// runs: the navigation loop, the display and any plugins.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	cancel       context.CancelFunc
	group        *errgroup.Group
	done         chan struct{}
	err          error
	logger       ports.Logger
	eventEmitter EventEmitter
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// NewLifecycle creates a new lifecycle manager.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateStopped,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
// Returns an error if the transition is not valid.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	switch oldState {
	case StateStopped:
		if newState != StateStarting {
			l.mu.Unlock()
			return domain.ErrNotRunning
		}
	case StateStarting:
		if newState != StateRunning && newState != StateStopping && newState != StateCrashed {
			l.mu.Unlock()
			return domain.ErrAlreadyRunning
		}
	case StateRunning:
		if newState != StateStopping && newState != StateCrashed {
			l.mu.Unlock()
			return domain.ErrAlreadyRunning
		}
	case StateStopping:
		if newState != StateStopped && newState != StateCrashed {
			l.mu.Unlock()
			return domain.ErrAlreadyRunning
		}
	case StateCrashed:
		if newState != StateStarting && newState != StateStopped {
			l.mu.Unlock()
			return domain.ErrNotRunning
		}
	}

	l.state = newState
	l.mu.Unlock()

	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Info("state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)

	return nil
}

// CanStart returns true if Start() can be called.
func (l *Lifecycle) CanStart() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateStopped || l.state == StateCrashed
}

// CanStop returns true if Stop() can be called.
func (l *Lifecycle) CanStop() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateRunning || l.state == StateStarting
}

// Begin derives the run context from parent and prepares a fresh goroutine
// group bound to it. The first goroutine to fail cancels the others.
func (l *Lifecycle) Begin(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	g, gctx := errgroup.WithContext(ctx)

	l.mu.Lock()
	l.cancel = cancel
	l.group = g
	l.done = make(chan struct{})
	l.err = nil
	l.mu.Unlock()
	return gctx
}

// Go runs fn in the current group.
func (l *Lifecycle) Go(fn func() error) {
	l.mu.RLock()
	g := l.group
	l.mu.RUnlock()
	g.Go(fn)
}

// Seal starts waiting for the group once every goroutine has been added.
// Done is closed when they have all returned.
func (l *Lifecycle) Seal() {
	l.mu.RLock()
	g, done := l.group, l.done
	l.mu.RUnlock()

	go func() {
		err := g.Wait()
		l.mu.Lock()
		l.err = err
		l.mu.Unlock()
		close(done)
	}()
}

// Done returns a channel closed when the sealed group has returned.
func (l *Lifecycle) Done() <-chan struct{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.done
}

// Err returns the first error of the group once Done is closed.
func (l *Lifecycle) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Cancel triggers graceful shutdown.
func (l *Lifecycle) Cancel() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// WaitWithTimeout waits for the sealed group with a timeout.
// Returns ErrShutdownTimeout if the timeout expires.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := l.Done()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return l.Err()
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, forcing exit",
			ports.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
