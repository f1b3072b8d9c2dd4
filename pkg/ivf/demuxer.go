package ivf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"iter"
	"os"
	"sync"

	"github.com/pion/webrtc/v4/pkg/media/ivfreader"
	"go.uber.org/multierr"

	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/pkg/log"
)

const (
	// FileHeaderSize is the size of the container header in bytes.
	FileHeaderSize = 32

	// FrameHeaderSize is the size of each record header in bytes.
	FrameHeaderSize = 12
)

// Demuxer provides random access to the frame payloads of one container.
// The frame directory is immutable after Open; FrameAt and Payload are safe
// for concurrent use until Close.
type Demuxer struct {
	path      string
	info      domain.StreamInfo
	frames    []domain.ContainerFrame
	truncated bool
	mapped    bool

	mu     sync.RWMutex
	src    source
	closed bool

	logger log.Logger
}

// Open validates the container header at path and scans its frame directory.
// A malformed header or an empty stream fails with domain.ErrFormat.
func Open(path string, logger log.Logger) (*Demuxer, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	src, mapped := openSource(f, st.Size())
	d := &Demuxer{
		path:   path,
		src:    src,
		mapped: mapped,
		logger: logger,
	}

	headerSize, err := d.readHeader(st.Size())
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	if err := d.scan(headerSize, st.Size()); err != nil {
		_ = src.Close()
		return nil, err
	}

	logger.Debug("container opened",
		log.String("path", path),
		log.String("codec", d.info.Codec.Name()),
		log.Int("width", d.info.Width),
		log.Int("height", d.info.Height),
		log.Int("frames", len(d.frames)),
		log.Bool("mmap", mapped))

	return d, nil
}

// readHeader parses the fixed header and returns the offset of the first record.
func (d *Demuxer) readHeader(size int64) (int64, error) {
	var raw [FileHeaderSize]byte
	if size < FileHeaderSize {
		return 0, fmt.Errorf("%w: %s: file is %d bytes, shorter than the %d-byte header",
			domain.ErrFormat, d.path, size, FileHeaderSize)
	}
	if _, err := d.src.ReadAt(raw[:], 0); err != nil {
		return 0, fmt.Errorf("%w: %s: read header: %v", domain.ErrFormat, d.path, err)
	}

	// Signature and version checks.
	_, hdr, err := ivfreader.NewWith(bytes.NewReader(raw[:]))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrFormat, d.path, err)
	}

	headerSize := int64(binary.LittleEndian.Uint16(raw[6:8]))
	if headerSize < FileHeaderSize || headerSize > size {
		return 0, fmt.Errorf("%w: %s: header size %d", domain.ErrFormat, d.path, headerSize)
	}

	codec := domain.Codec(hdr.FourCC)
	if !codec.Valid() {
		return 0, fmt.Errorf("%w: %s: unsupported codec %q", domain.ErrFormat, d.path, hdr.FourCC)
	}
	if hdr.Width == 0 || hdr.Height == 0 {
		return 0, fmt.Errorf("%w: %s: invalid dimensions %dx%d", domain.ErrFormat, d.path, hdr.Width, hdr.Height)
	}

	d.info = domain.StreamInfo{
		Codec:          codec,
		Width:          int(hdr.Width),
		Height:         int(hdr.Height),
		TimebaseNum:    hdr.TimebaseNumerator,
		TimebaseDen:    hdr.TimebaseDenominator,
		DeclaredFrames: hdr.NumFrames,
	}
	return headerSize, nil
}

// scan walks the record headers from off to the end of the file.
func (d *Demuxer) scan(off, size int64) error {
	var rec [FrameHeaderSize]byte
	for off < size {
		if size-off < FrameHeaderSize {
			d.truncated = true
			break
		}
		if _, err := d.src.ReadAt(rec[:], off); err != nil {
			return fmt.Errorf("%w: %s: read frame header at %d: %v", domain.ErrFormat, d.path, off, err)
		}
		length := binary.LittleEndian.Uint32(rec[0:4])
		payloadOff := off + FrameHeaderSize
		if int64(length) > size-payloadOff {
			d.truncated = true
			break
		}
		d.frames = append(d.frames, domain.ContainerFrame{
			Index:     len(d.frames),
			Offset:    payloadOff,
			Length:    length,
			Timestamp: binary.LittleEndian.Uint64(rec[4:12]),
		})
		off = payloadOff + int64(length)
	}

	if d.truncated {
		d.logger.Warn("container ends with a truncated frame record",
			log.String("path", d.path),
			log.Int("frames", len(d.frames)))
	}
	if d.info.DeclaredFrames != 0 && int(d.info.DeclaredFrames) != len(d.frames) {
		d.logger.Warn("container header frame count differs from scanned directory",
			log.String("path", d.path),
			log.Int("declared", int(d.info.DeclaredFrames)),
			log.Int("scanned", len(d.frames)))
	}
	if len(d.frames) == 0 {
		return fmt.Errorf("%w: %s: no frames", domain.ErrFormat, d.path)
	}
	return nil
}

// Path returns the container path given to Open.
func (d *Demuxer) Path() string {
	return d.path
}

// Info returns the parsed container header.
func (d *Demuxer) Info() domain.StreamInfo {
	return d.info
}

// Len returns the number of frames in the directory.
func (d *Demuxer) Len() int {
	return len(d.frames)
}

// Truncated reports whether scanning stopped at an incomplete trailing record.
func (d *Demuxer) Truncated() bool {
	return d.truncated
}

// FrameAt returns the directory entry of frame i.
func (d *Demuxer) FrameAt(i int) (domain.ContainerFrame, error) {
	if i < 0 || i >= len(d.frames) {
		return domain.ContainerFrame{}, fmt.Errorf("%w: %d not in [0,%d)", domain.ErrRange, i, len(d.frames))
	}
	return d.frames[i], nil
}

// Payload returns a copy of the encoded bytes of f. The copy stays valid
// after Close and after the file changes on disk.
func (d *Demuxer) Payload(f domain.ContainerFrame) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, domain.ErrClosed
	}
	data, err := d.src.Slice(f.Offset, int64(f.Length))
	if err != nil {
		return nil, fmt.Errorf("read frame %d: %w", f.Index, err)
	}
	return data, nil
}

// ReadFrame is FrameAt followed by Payload.
func (d *Demuxer) ReadFrame(i int) (domain.ContainerFrame, []byte, error) {
	f, err := d.FrameAt(i)
	if err != nil {
		return f, nil, err
	}
	data, err := d.Payload(f)
	return f, data, err
}

// Frames yields the directory in container order. Each call starts over.
func (d *Demuxer) Frames() iter.Seq2[int, domain.ContainerFrame] {
	return func(yield func(int, domain.ContainerFrame) bool) {
		for i, f := range d.frames {
			if !yield(i, f) {
				return
			}
		}
	}
}

// Close releases the mapping or file handle. It is safe to call twice.
func (d *Demuxer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var err error
	if d.src != nil {
		err = multierr.Append(err, d.src.Close())
	}
	return err
}
