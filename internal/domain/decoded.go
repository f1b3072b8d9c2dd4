package domain

import "image"

// SuperblockSize is the side of a superblock in pixels.
const SuperblockSize = 64

// MinBlockSize is the smallest block side the partition grammar allows.
const MinBlockSize = 4

// FrameInfo is what the frame header probe learned about a payload.
type FrameInfo struct {
	Codec     Codec `json:"codec"`
	KeyFrame  bool  `json:"key_frame"`
	IntraOnly bool  `json:"intra_only,omitempty"`
	Shown     bool  `json:"shown"`

	// ShowExisting is set for VP9 frames that only re-display a reference.
	ShowExisting bool `json:"show_existing,omitempty"`

	Profile  uint8 `json:"profile"`
	BitDepth uint8 `json:"bit_depth"`

	// Width and Height are the coded size when the header carries one
	// (key frames and intra-only frames), zero otherwise.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// SubFrames is the number of frames packed in a VP9 superframe, 1 otherwise.
	SubFrames int `json:"sub_frames"`
}

// SuperblockRecord is the pointerless form of one superblock's partition
// tree: the partition codes in pre-order and the leaf attributes in the
// order their leaves are visited.
type SuperblockRecord struct {
	Partitions []PartitionKind  `json:"partitions"`
	Leaves     []LeafAttributes `json:"leaves"`
}

// DecodedFrame is the result of decoding one payload. At most one decoded
// frame is live at a time: it stays valid until the next successful decode
// on the session that produced it.
type DecodedFrame struct {
	// Seq increases with every successful decode on a session.
	Seq uint64

	// Picture is the reconstructed image, owned by the session.
	Picture image.Image

	// Width and Height are the picture dimensions.
	Width  int
	Height int

	Info FrameInfo

	// Superblocks are in raster order, one per 64x64 superblock.
	Superblocks []SuperblockRecord
}

// SuperblockGrid returns the number of superblock columns and rows needed to
// cover a picture of the given size.
func SuperblockGrid(width, height int) (cols, rows int) {
	cols = (width + SuperblockSize - 1) / SuperblockSize
	rows = (height + SuperblockSize - 1) / SuperblockSize
	return cols, rows
}
