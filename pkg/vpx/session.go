package vpx

import (
	"errors"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/pkg/log"
)

// maxNesting bounds how deep Session follows BlockRecord children. A 64x64
// superblock reaches the 4x4 minimum in four splits; anything deeper is cut
// off and left for the model builder to reject.
const maxNesting = 8

// Session owns one Codec and the single decoded frame produced from it.
// It is not safe for concurrent use.
type Session struct {
	codec  Codec
	logger log.Logger

	seq     uint64
	current *domain.DecodedFrame

	// Flattened storage reused across frames.
	parts  []domain.PartitionKind
	leaves []domain.LeafAttributes
	sbs    []domain.SuperblockRecord
	bounds []sbBounds
}

type sbBounds struct {
	parts, leaves [2]int
}

// NewSession wraps codec.
func NewSession(codec Codec, logger log.Logger) *Session {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Session{codec: codec, logger: logger}
}

// Decode decodes raw and returns the new active frame. Any frame returned by
// an earlier Decode becomes invalid. On failure the error wraps
// domain.ErrDecode and the previous frame stays active.
func (s *Session) Decode(raw []byte) (*domain.DecodedFrame, error) {
	if s.codec == nil {
		return nil, fmt.Errorf("%w: no codec", domain.ErrDecode)
	}
	if err := s.codec.Decode(raw); err != nil {
		if errors.Is(err, domain.ErrDecode) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	pic := s.codec.Picture()
	if pic == nil || pic.Bounds().Empty() {
		return nil, fmt.Errorf("%w: decoder produced no picture", domain.ErrDecode)
	}

	s.flatten(s.codec.Superblocks())

	b := pic.Bounds()
	s.seq++
	s.current = &domain.DecodedFrame{
		Seq:         s.seq,
		Picture:     imaging.Clone(pic),
		Width:       b.Dx(),
		Height:      b.Dy(),
		Info:        s.codec.Info(),
		Superblocks: s.sbs,
	}

	s.logger.Debug("frame decoded",
		log.Uint64("seq", s.seq),
		log.Int("width", b.Dx()),
		log.Int("height", b.Dy()),
		log.Int("superblocks", len(s.sbs)),
		log.Bool("key_frame", s.current.Info.KeyFrame))

	return s.current, nil
}

// Current returns the active decoded frame, or nil before the first
// successful Decode.
func (s *Session) Current() *domain.DecodedFrame {
	return s.current
}

// Seq returns the sequence number of the active frame.
func (s *Session) Seq() uint64 {
	return s.seq
}

// flatten converts nested records into pre-order partition codes and leaf
// slots, copying every attribute out of decoder memory.
func (s *Session) flatten(blocks []BlockRecord) {
	s.parts = s.parts[:0]
	s.leaves = s.leaves[:0]
	s.bounds = s.bounds[:0]

	for i := range blocks {
		var b sbBounds
		b.parts[0], b.leaves[0] = len(s.parts), len(s.leaves)
		s.walk(&blocks[i], 0)
		b.parts[1], b.leaves[1] = len(s.parts), len(s.leaves)
		s.bounds = append(s.bounds, b)
	}

	// Slice only after all appends so no record aliases a stale array.
	s.sbs = s.sbs[:0]
	for _, b := range s.bounds {
		s.sbs = append(s.sbs, domain.SuperblockRecord{
			Partitions: s.parts[b.parts[0]:b.parts[1]:b.parts[1]],
			Leaves:     s.leaves[b.leaves[0]:b.leaves[1]:b.leaves[1]],
		})
	}
}

func (s *Session) walk(b *BlockRecord, depth int) {
	s.parts = append(s.parts, b.Partition)
	if b.Partition == domain.PartitionNone {
		s.leaves = append(s.leaves, b.Leaf)
		return
	}
	if depth >= maxNesting {
		return
	}
	for i := range b.Children {
		s.walk(&b.Children[i], depth+1)
	}
}
