package ports

import (
	"context"

	"github.com/bft-labs/vpxview/internal/domain"
)

// FrameSource provides random access to the frames of one container.
// *ivf.Demuxer satisfies this interface.
type FrameSource interface {
	// Path returns the container path.
	Path() string

	// Info returns the parsed container header.
	Info() domain.StreamInfo

	// Len returns the number of frames in the directory.
	Len() int

	// FrameAt returns the directory entry of frame i.
	// Returns an error wrapping domain.ErrRange when i is out of bounds.
	FrameAt(i int) (domain.ContainerFrame, error)

	// Payload returns the encoded bytes of f. The slice may alias a
	// read-only mapping and must not be modified.
	Payload(f domain.ContainerFrame) ([]byte, error)

	// Close releases the container.
	Close() error
}

// Decoder decodes payloads into the single active decoded frame.
// *vpx.Session satisfies this interface.
type Decoder interface {
	// Decode returns the new active frame. A returned frame stays valid
	// until the next successful Decode. Failures wrap domain.ErrDecode and
	// leave the previous frame active.
	Decode(payload []byte) (*domain.DecodedFrame, error)
}

// Opener opens a container and a fresh decoder for it. It is called once at
// startup and again on every reload.
type Opener func(ctx context.Context) (FrameSource, Decoder, error)
