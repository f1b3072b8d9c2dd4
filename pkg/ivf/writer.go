package ivf

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/bft-labs/vpxview/internal/domain"
)

// Writer produces an IVF container from encoded payloads.
type Writer struct {
	w      io.Writer
	frames int
}

// NewWriter writes the container header for info to w.
// A zero timebase is written as 1/30.
func NewWriter(w io.Writer, info domain.StreamInfo) (*Writer, error) {
	if !info.Codec.Valid() {
		return nil, fmt.Errorf("ivf: unsupported codec %q", string(info.Codec))
	}
	if info.Width <= 0 || info.Width > 0xffff || info.Height <= 0 || info.Height > 0xffff {
		return nil, fmt.Errorf("ivf: invalid dimensions %dx%d", info.Width, info.Height)
	}
	if info.TimebaseNum == 0 || info.TimebaseDen == 0 {
		info.TimebaseNum, info.TimebaseDen = 1, 30
	}

	var hdr [FileHeaderSize]byte
	copy(hdr[0:4], "DKIF")
	binary.LittleEndian.PutUint16(hdr[4:6], 0)
	binary.LittleEndian.PutUint16(hdr[6:8], FileHeaderSize)
	copy(hdr[8:12], string(info.Codec))
	binary.LittleEndian.PutUint16(hdr[12:14], uint16(info.Width))
	binary.LittleEndian.PutUint16(hdr[14:16], uint16(info.Height))
	binary.LittleEndian.PutUint32(hdr[16:20], info.TimebaseDen)
	binary.LittleEndian.PutUint32(hdr[20:24], info.TimebaseNum)
	binary.LittleEndian.PutUint32(hdr[24:28], info.DeclaredFrames)

	if _, err := w.Write(hdr[:]); err != nil {
		return nil, fmt.Errorf("ivf: write header: %w", err)
	}
	return &Writer{w: w}, nil
}

// WriteFrame appends one record.
func (w *Writer) WriteFrame(timestamp uint64, payload []byte) error {
	if uint64(len(payload)) > 0xffffffff {
		return fmt.Errorf("ivf: frame of %d bytes exceeds record limit", len(payload))
	}
	var rec [FrameHeaderSize]byte
	binary.LittleEndian.PutUint32(rec[0:4], uint32(len(payload)))
	binary.LittleEndian.PutUint64(rec[4:12], timestamp)
	if _, err := w.w.Write(rec[:]); err != nil {
		return fmt.Errorf("ivf: write frame header: %w", err)
	}
	if _, err := w.w.Write(payload); err != nil {
		return fmt.Errorf("ivf: write frame: %w", err)
	}
	w.frames++
	return nil
}

// Frames returns the number of records written so far.
func (w *Writer) Frames() int {
	return w.frames
}

// WriteFile creates a container at path holding payloads with timestamps
// 0, 1, 2, ... The declared frame count is set to len(payloads).
func WriteFile(path string, info domain.StreamInfo, payloads [][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	info.DeclaredFrames = uint32(len(payloads))
	w, err := NewWriter(f, info)
	if err != nil {
		_ = f.Close()
		return err
	}
	for i, p := range payloads {
		if err := w.WriteFrame(uint64(i), p); err != nil {
			_ = f.Close()
			return err
		}
	}
	return f.Close()
}
