package domain

import "errors"

// Domain errors represent error conditions in the vpxview domain.
// They are wrapped with context by the producing component and can be
// checked with errors.Is.
var (
	// ErrFormat is returned when the container header or frame directory is malformed.
	ErrFormat = errors.New("vpxview: malformed container")

	// ErrRange is returned when a frame index is outside the frame directory.
	ErrRange = errors.New("vpxview: frame index out of range")

	// ErrDecode is returned when the decoder rejects a frame payload.
	ErrDecode = errors.New("vpxview: frame rejected by decoder")

	// ErrInternals is returned when decoder-reported block internals violate
	// the partition grammar.
	ErrInternals = errors.New("vpxview: inconsistent block internals")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("vpxview: invalid configuration")

	// ErrClosed is returned when an operation is attempted on a closed resource.
	ErrClosed = errors.New("vpxview: closed")

	// ErrAlreadyRunning is returned when Start() is called on a running viewer.
	ErrAlreadyRunning = errors.New("vpxview: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped viewer.
	ErrNotRunning = errors.New("vpxview: not running")

	// ErrShutdownTimeout is returned when the viewer goroutines do not
	// return within the shutdown timeout.
	ErrShutdownTimeout = errors.New("vpxview: shutdown timeout")
)
