package viewer

import (
	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/internal/ports"
	"github.com/bft-labs/vpxview/pkg/log"
)

// Re-exported types so embedders never import internal packages.
type (
	// Logger is the interface for structured logging.
	Logger = log.Logger

	// LogField is a structured log field.
	LogField = log.Field

	// Key is a navigation or overlay command.
	Key = domain.Key

	// OverlayFlags selects the optional overlay layers.
	OverlayFlags = domain.OverlayFlags

	// ViewState is the current frame index, frame count and layer selection.
	ViewState = domain.ViewState

	// FrameInfo is the header of a decoded frame.
	FrameInfo = domain.FrameInfo

	// StreamInfo is the container header.
	StreamInfo = domain.StreamInfo

	// Display presents scenes and pumps keys until its context is done.
	Display = ports.Display

	// KeySink accepts keys from displays and plugins.
	KeySink = ports.KeySink

	// ViewRepository loads and saves the view of a container.
	ViewRepository = ports.ViewRepository
)

// Keys understood by the viewer.
const (
	KeyLeft          = domain.KeyLeft
	KeyRight         = domain.KeyRight
	KeyQuit          = domain.KeyQuit
	KeyEscape        = domain.KeyEscape
	KeyToggleFills   = domain.KeyToggleFills
	KeyToggleVectors = domain.KeyToggleVectors
	KeyToggleLabels  = domain.KeyToggleLabels
	KeyReload        = domain.KeyReload
)

// Errors returned by the viewer. Match them with errors.Is.
var (
	ErrFormat          = domain.ErrFormat
	ErrDecode          = domain.ErrDecode
	ErrInternals       = domain.ErrInternals
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
)
