package viewer

// State is the lifecycle state of a Viewer.
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

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// FrameShownEvent is emitted after a frame has been presented with its
// overlay.
type FrameShownEvent struct {
	View ViewState
	Info FrameInfo
}

// FrameErrorEvent is emitted when a frame could not be decoded (ErrDecode)
// or its internals were rejected (ErrInternals).
type FrameErrorEvent struct {
	Index int
	Error error
}

// EventHandler receives viewer events.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnFrameShown(event FrameShownEvent)
	OnFrameError(event FrameErrorEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnFrameShown(FrameShownEvent)   {}
func (BaseEventHandler) OnFrameError(FrameErrorEvent)   {}
