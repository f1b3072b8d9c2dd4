package vpx

import (
	"image"

	"github.com/bft-labs/vpxview/internal/domain"
)

// Codec is an external VP8/VP9 decoder that exports its per-block decisions.
//
// After Decode returns nil, Info, Picture and Superblocks describe that frame
// until the next call to Decode. The returned values may alias decoder
// memory; callers must copy what they keep.
type Codec interface {
	// Decode decodes one container payload.
	Decode(payload []byte) error

	// Info returns the frame header of the last decoded payload.
	Info() domain.FrameInfo

	// Picture returns the reconstructed picture.
	Picture() image.Image

	// Superblocks returns one record per 64x64 superblock in raster order.
	Superblocks() []BlockRecord
}

// BlockRecord is the decoder's nested description of one block: either a
// leaf with attributes (Partition == PartitionNone) or a split with children.
type BlockRecord struct {
	Partition domain.PartitionKind
	Children  []BlockRecord
	Leaf      domain.LeafAttributes
}

// Leaf returns a leaf record.
func Leaf(attrs domain.LeafAttributes) BlockRecord {
	return BlockRecord{Partition: domain.PartitionNone, Leaf: attrs}
}

// Split returns a non-leaf record.
func Split(kind domain.PartitionKind, children ...BlockRecord) BlockRecord {
	return BlockRecord{Partition: kind, Children: children}
}
