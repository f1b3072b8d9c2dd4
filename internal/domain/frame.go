package domain

import "fmt"

// Codec identifies the compression format by its container FourCC.
type Codec string

const (
	CodecVP8 Codec = "VP80"
	CodecVP9 Codec = "VP90"
)

// Valid reports whether the codec is one the viewer understands.
func (c Codec) Valid() bool {
	return c == CodecVP8 || c == CodecVP9
}

// Name returns the short human-readable codec name.
func (c Codec) Name() string {
	switch c {
	case CodecVP8:
		return "VP8"
	case CodecVP9:
		return "VP9"
	default:
		return fmt.Sprintf("unknown(%q)", string(c))
	}
}

// StreamInfo describes a container as recorded in its header.
type StreamInfo struct {
	// Codec is the FourCC of the stream.
	Codec Codec `json:"codec"`

	// Width and Height are the nominal picture dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// TimebaseNum and TimebaseDen give the duration of one timestamp tick
	// as TimebaseNum/TimebaseDen seconds.
	TimebaseNum uint32 `json:"timebase_num"`
	TimebaseDen uint32 `json:"timebase_den"`

	// DeclaredFrames is the frame count written by the muxer. It is advisory
	// only; several muxers leave it at zero.
	DeclaredFrames uint32 `json:"declared_frames"`
}

// ContainerFrame locates one encoded frame payload within the container.
// Container order is decode order.
type ContainerFrame struct {
	// Index is the zero-based position in container order.
	Index int `json:"index"`

	// Offset is the byte offset of the payload (after the record header).
	Offset int64 `json:"offset"`

	// Length is the payload length in bytes.
	Length uint32 `json:"length"`

	// Timestamp is the presentation timestamp in timebase units.
	Timestamp uint64 `json:"timestamp"`
}

// End returns the offset one past the last payload byte.
func (f ContainerFrame) End() int64 {
	return f.Offset + int64(f.Length)
}
