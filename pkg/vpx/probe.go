package vpx

import (
	"errors"
	"fmt"

	"github.com/bft-labs/vpxview/internal/domain"
)

var (
	errEmptyPayload = errors.New("empty payload")
	errFrameMarker  = errors.New("vp9: invalid frame marker")
	errSyncCode     = errors.New("vp9: invalid sync code")
	errReservedBit  = errors.New("vp9: reserved bit set")
	errStartCode    = errors.New("vp8: invalid key frame start code")
	errVP8Version   = errors.New("vp8: unsupported version")
)

const (
	vp9FrameMarker = 2
	vp9SyncCode    = 0x498342
	vp9ColorSRGB   = 7
)

// Probe parses the frame header of payload for the given codec.
func Probe(codec domain.Codec, payload []byte) (domain.FrameInfo, error) {
	switch codec {
	case domain.CodecVP9:
		return ProbeVP9(payload)
	case domain.CodecVP8:
		return ProbeVP8(payload)
	default:
		return domain.FrameInfo{}, fmt.Errorf("unsupported codec %q", string(codec))
	}
}

// ProbeVP9 parses the uncompressed header of a VP9 payload. Superframes are
// split first; the returned info describes the last frame, with the coded
// size taken from the last frame that carries one.
func ProbeVP9(payload []byte) (domain.FrameInfo, error) {
	frames, err := SplitSuperframe(payload)
	if err != nil {
		return domain.FrameInfo{}, err
	}

	var info domain.FrameInfo
	width, height := 0, 0
	for i, frame := range frames {
		fi, err := parseVP9Header(frame)
		if err != nil {
			return domain.FrameInfo{}, fmt.Errorf("frame %d of %d: %w", i+1, len(frames), err)
		}
		if fi.Width > 0 {
			width, height = fi.Width, fi.Height
		}
		info = fi
	}
	info.Width, info.Height = width, height
	info.SubFrames = len(frames)
	return info, nil
}

func parseVP9Header(b []byte) (domain.FrameInfo, error) {
	info := domain.FrameInfo{Codec: domain.CodecVP9, BitDepth: 8, SubFrames: 1}
	r := &bitReader{data: b}

	marker, err := r.f(2)
	if err != nil {
		return info, err
	}
	if marker != vp9FrameMarker {
		return info, errFrameMarker
	}
	low, err := r.f(1)
	if err != nil {
		return info, err
	}
	high, err := r.f(1)
	if err != nil {
		return info, err
	}
	info.Profile = uint8(high<<1 | low)
	if info.Profile == 3 {
		reserved, err := r.f(1)
		if err != nil {
			return info, err
		}
		if reserved != 0 {
			return info, errReservedBit
		}
	}

	showExisting, err := r.f(1)
	if err != nil {
		return info, err
	}
	if showExisting == 1 {
		info.ShowExisting = true
		info.Shown = true
		return info, r.skip(3)
	}

	frameType, err := r.f(1)
	if err != nil {
		return info, err
	}
	show, err := r.f(1)
	if err != nil {
		return info, err
	}
	errorResilient, err := r.f(1)
	if err != nil {
		return info, err
	}
	info.KeyFrame = frameType == 0
	info.Shown = show == 1

	if info.KeyFrame {
		if err := readSyncCode(r); err != nil {
			return info, err
		}
		if err := readColorConfig(r, &info); err != nil {
			return info, err
		}
		return info, readFrameSize(r, &info)
	}

	if !info.Shown {
		intraOnly, err := r.f(1)
		if err != nil {
			return info, err
		}
		info.IntraOnly = intraOnly == 1
	}
	if errorResilient == 0 {
		// reset_frame_context
		if err := r.skip(2); err != nil {
			return info, err
		}
	}
	if !info.IntraOnly {
		return info, nil
	}

	if err := readSyncCode(r); err != nil {
		return info, err
	}
	if info.Profile > 0 {
		if err := readColorConfig(r, &info); err != nil {
			return info, err
		}
	}
	// refresh_frame_flags
	if err := r.skip(8); err != nil {
		return info, err
	}
	return info, readFrameSize(r, &info)
}

func readSyncCode(r *bitReader) error {
	code, err := r.f(24)
	if err != nil {
		return err
	}
	if code != vp9SyncCode {
		return errSyncCode
	}
	return nil
}

func readColorConfig(r *bitReader, info *domain.FrameInfo) error {
	if info.Profile >= 2 {
		twelve, err := r.f(1)
		if err != nil {
			return err
		}
		info.BitDepth = 10
		if twelve == 1 {
			info.BitDepth = 12
		}
	}
	colorSpace, err := r.f(3)
	if err != nil {
		return err
	}
	odd := info.Profile == 1 || info.Profile == 3
	if colorSpace != vp9ColorSRGB {
		// color_range
		if err := r.skip(1); err != nil {
			return err
		}
		if odd {
			// subsampling_x, subsampling_y
			if err := r.skip(2); err != nil {
				return err
			}
			reserved, err := r.f(1)
			if err != nil {
				return err
			}
			if reserved != 0 {
				return errReservedBit
			}
		}
		return nil
	}
	if odd {
		reserved, err := r.f(1)
		if err != nil {
			return err
		}
		if reserved != 0 {
			return errReservedBit
		}
	}
	return nil
}

func readFrameSize(r *bitReader, info *domain.FrameInfo) error {
	w, err := r.f(16)
	if err != nil {
		return err
	}
	h, err := r.f(16)
	if err != nil {
		return err
	}
	info.Width = int(w) + 1
	info.Height = int(h) + 1
	return nil
}

// SplitSuperframe returns the frames packed in a VP9 superframe, or the
// payload itself when it carries no superframe index.
func SplitSuperframe(payload []byte) ([][]byte, error) {
	n := len(payload)
	if n == 0 {
		return nil, errEmptyPayload
	}
	marker := payload[n-1]
	if marker&0xe0 != 0xc0 {
		return [][]byte{payload}, nil
	}
	count := int(marker&0x7) + 1
	mag := int(marker>>3&0x3) + 1
	indexSize := 2 + mag*count
	if n < indexSize || payload[n-indexSize] != marker {
		return [][]byte{payload}, nil
	}

	data := n - indexSize
	pos := n - indexSize + 1
	frames := make([][]byte, 0, count)
	off := 0
	for range count {
		size := 0
		for b := range mag {
			size |= int(payload[pos+b]) << (8 * b)
		}
		pos += mag
		if size == 0 {
			continue
		}
		if off+size > data {
			return nil, fmt.Errorf("vp9: superframe index overruns payload (%d+%d > %d)", off, size, data)
		}
		frames = append(frames, payload[off:off+size])
		off += size
	}
	if len(frames) == 0 {
		return nil, errors.New("vp9: superframe index lists no frames")
	}
	return frames, nil
}

// ProbeVP8 parses the VP8 frame tag and, for key frames, the start code and
// picture size.
func ProbeVP8(payload []byte) (domain.FrameInfo, error) {
	info := domain.FrameInfo{Codec: domain.CodecVP8, BitDepth: 8, SubFrames: 1}
	if len(payload) == 0 {
		return info, errEmptyPayload
	}
	if len(payload) < 3 {
		return info, errShortHeader
	}
	tag := uint32(payload[0]) | uint32(payload[1])<<8 | uint32(payload[2])<<16
	info.KeyFrame = tag&1 == 0
	info.Profile = uint8(tag >> 1 & 0x7)
	info.Shown = tag>>4&1 == 1
	firstPartition := int(tag >> 5)

	if info.Profile > 3 {
		return info, errVP8Version
	}

	headerLen := 3
	if info.KeyFrame {
		headerLen = 10
		if len(payload) < headerLen {
			return info, errShortHeader
		}
		if payload[3] != 0x9d || payload[4] != 0x01 || payload[5] != 0x2a {
			return info, errStartCode
		}
		info.Width = int(uint16(payload[6])|uint16(payload[7])<<8) & 0x3fff
		info.Height = int(uint16(payload[8])|uint16(payload[9])<<8) & 0x3fff
		if info.Width == 0 || info.Height == 0 {
			return info, fmt.Errorf("vp8: invalid key frame size %dx%d", info.Width, info.Height)
		}
	}
	if firstPartition > len(payload)-headerLen {
		return info, fmt.Errorf("vp8: first partition of %d bytes overruns %d-byte payload", firstPartition, len(payload))
	}
	return info, nil
}
