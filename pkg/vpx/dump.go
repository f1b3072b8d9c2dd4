package vpx

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	json "github.com/goccy/go-json"
	"golang.org/x/image/vp8"

	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/pkg/log"
)

// DumpSuffix is appended to a container path to find its default internals dump.
const DumpSuffix = ".blocks.jsonl"

// DumpFormatVersion is the newest dump line format ReadDump accepts.
const DumpFormatVersion = 1

// neutralLuma is the grey level of pictures the codec cannot reconstruct.
const neutralLuma = 0x80

// DumpFrame is one line of an internals dump.
type DumpFrame struct {
	// Version is the line format. Zero is read as 1.
	Version int `json:"version,omitempty"`

	// CRC32 is the IEEE CRC-32 of the container payload the line describes.
	CRC32 uint32 `json:"crc32"`

	// Frame is the container index the dump was written for. Informational.
	Frame int `json:"frame"`

	// Width and Height override the picture size when non-zero.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// Picture names the reconstructed picture (PNG, JPEG, BMP or TIFF) the
	// decoder wrote for this frame. Relative names resolve against the
	// directory of the dump file.
	Picture string `json:"picture,omitempty"`

	Superblocks []DumpBlock `json:"superblocks"`
}

// DumpBlock is the JSON form of a BlockRecord.
type DumpBlock struct {
	Partition string      `json:"partition"`
	Children  []DumpBlock `json:"children,omitempty"`

	Mode    string     `json:"mode,omitempty"`
	Refs    []int8     `json:"refs,omitempty"`
	MVs     [][2]int16 `json:"mvs,omitempty"`
	Tx      string     `json:"tx,omitempty"`
	Skip    bool       `json:"skip,omitempty"`
	Segment uint8      `json:"segment,omitempty"`
}

// DumpFromRecord converts a BlockRecord to its JSON form.
func DumpFromRecord(b BlockRecord) DumpBlock {
	d := DumpBlock{Partition: b.Partition.String()}
	if b.Partition != domain.PartitionNone {
		for _, c := range b.Children {
			d.Children = append(d.Children, DumpFromRecord(c))
		}
		return d
	}
	d.Mode = b.Leaf.Mode.String()
	d.Tx = b.Leaf.TxSize.String()
	d.Skip = b.Leaf.Skip
	d.Segment = b.Leaf.Segment
	for _, r := range b.Leaf.Refs {
		if r != domain.RefNone {
			d.Refs = append(d.Refs, int8(r))
		}
	}
	for _, mv := range b.Leaf.MotionVectors() {
		d.MVs = append(d.MVs, [2]int16{mv.X, mv.Y})
	}
	return d
}

// Record converts the JSON form back to a BlockRecord. Unknown names become
// out-of-table enumeration values.
func (d DumpBlock) Record() BlockRecord {
	kind := domain.ParsePartitionKind(d.Partition)
	if kind != domain.PartitionNone {
		b := BlockRecord{Partition: kind}
		if len(d.Children) > 0 {
			b.Children = make([]BlockRecord, len(d.Children))
			for i, c := range d.Children {
				b.Children[i] = c.Record()
			}
		}
		return b
	}

	leaf := domain.LeafAttributes{
		Mode:    domain.ParsePredictionMode(d.Mode),
		Refs:    [2]domain.RefFrame{domain.RefNone, domain.RefNone},
		TxSize:  domain.ParseTxSize(d.Tx),
		Skip:    d.Skip,
		Segment: d.Segment,
		NumMVs:  uint8(min(len(d.MVs), 255)),
	}
	for i := 0; i < len(d.Refs) && i < len(leaf.Refs); i++ {
		leaf.Refs[i] = domain.RefFrame(d.Refs[i])
	}
	for i := 0; i < len(d.MVs) && i < len(leaf.MVs); i++ {
		leaf.MVs[i] = domain.MotionVector{X: d.MVs[i][0], Y: d.MVs[i][1]}
	}
	return Leaf(leaf)
}

// ReadDump parses a JSON-lines internals dump. Later lines replace earlier
// lines with the same CRC.
func ReadDump(r io.Reader) (map[uint32]DumpFrame, error) {
	frames := make(map[uint32]DumpFrame)
	dec := json.NewDecoder(r)
	for line := 1; ; line++ {
		var f DumpFrame
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return frames, nil
			}
			return nil, fmt.Errorf("internals dump record %d: %w", line, err)
		}
		if f.Version > DumpFormatVersion {
			return nil, fmt.Errorf("internals dump record %d: format version %d, this build reads up to %d",
				line, f.Version, DumpFormatVersion)
		}
		frames[f.CRC32] = f
	}
}

// WriteDump writes frames as JSON lines, stamping lines without a version
// with DumpFormatVersion.
func WriteDump(w io.Writer, frames []DumpFrame) error {
	enc := json.NewEncoder(w)
	for _, f := range frames {
		if f.Version == 0 {
			f.Version = DumpFormatVersion
		}
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return nil
}

// PayloadCRC returns the key under which a payload's internals are dumped.
func PayloadCRC(payload []byte) uint32 {
	return crc32.ChecksumIEEE(payload)
}

// DumpCodec is a Codec whose block internals come from an internals dump.
type DumpCodec struct {
	codec  domain.Codec
	frames map[uint32]DumpFrame
	dir    string
	logger log.Logger

	// Size of the last frame that carried one, initially the stream size.
	width, height int

	info    domain.FrameInfo
	picture image.Image
	blocks  []BlockRecord
}

// NewDumpCodec creates a codec for a stream described by info. dumpPath may be
// empty or name a missing file, in which case every frame decodes without
// internals.
func NewDumpCodec(info domain.StreamInfo, dumpPath string, logger log.Logger) (*DumpCodec, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	c := &DumpCodec{
		codec:  info.Codec,
		frames: map[uint32]DumpFrame{},
		logger: logger,
		width:  info.Width,
		height: info.Height,
	}
	if dumpPath == "" {
		return c, nil
	}
	c.dir = filepath.Dir(dumpPath)

	f, err := os.Open(dumpPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("internals dump not found; overlays unavailable", log.String("path", dumpPath))
			return c, nil
		}
		return nil, err
	}
	defer f.Close()

	frames, err := ReadDump(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dumpPath, err)
	}
	c.frames = frames
	logger.Info("internals dump loaded", log.String("path", dumpPath), log.Int("frames", len(frames)))
	return c, nil
}

// NewDumpCodecFrames creates a codec over an in-memory set of dump records.
func NewDumpCodecFrames(info domain.StreamInfo, frames []DumpFrame, logger log.Logger) *DumpCodec {
	c, _ := NewDumpCodec(info, "", logger)
	for _, f := range frames {
		c.frames[f.CRC32] = f
	}
	return c
}

// Decode probes the payload header, reconstructs what it can of the picture
// and looks up the payload's internals.
func (c *DumpCodec) Decode(payload []byte) error {
	info, err := Probe(c.codec, payload)
	if err != nil {
		return err
	}
	if info.Width > 0 && info.Height > 0 {
		c.width, c.height = info.Width, info.Height
	}

	width, height := c.width, c.height
	rec, ok := c.frames[PayloadCRC(payload)]
	if ok && rec.Width > 0 && rec.Height > 0 {
		width, height = rec.Width, rec.Height
	}

	var pic image.Image
	switch {
	case ok && rec.Picture != "":
		pic, err = c.loadPicture(rec.Picture, width, height)
	case c.codec == domain.CodecVP8 && info.KeyFrame:
		pic, err = decodeVP8Key(payload)
	default:
		pic = neutralPicture(width, height)
	}
	if err != nil {
		return err
	}

	var blocks []BlockRecord
	if ok {
		blocks = make([]BlockRecord, len(rec.Superblocks))
		for i, sb := range rec.Superblocks {
			blocks[i] = sb.Record()
		}
	} else {
		c.logger.Debug("no internals recorded for payload", log.Int("bytes", len(payload)))
	}

	c.info = info
	c.picture = pic
	c.blocks = blocks
	return nil
}

// Info implements Codec.
func (c *DumpCodec) Info() domain.FrameInfo { return c.info }

// Picture implements Codec.
func (c *DumpCodec) Picture() image.Image { return c.picture }

// Superblocks implements Codec.
func (c *DumpCodec) Superblocks() []BlockRecord { return c.blocks }

// loadPicture reads a recorded picture and scales it to width x height when
// the decoder wrote it at another size.
func (c *DumpCodec) loadPicture(name string, width, height int) (image.Image, error) {
	path := name
	if !filepath.IsAbs(path) && c.dir != "" {
		path = filepath.Join(c.dir, path)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reconstructed picture: %w", err)
	}
	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		c.logger.Debug("scaling reconstructed picture",
			log.String("path", path),
			log.Int("width", b.Dx()),
			log.Int("height", b.Dy()))
		return imaging.Resize(img, width, height, imaging.Linear), nil
	}
	return img, nil
}

func decodeVP8Key(payload []byte) (image.Image, error) {
	d := vp8.NewDecoder()
	d.Init(bytes.NewReader(payload), len(payload))
	if _, err := d.DecodeFrameHeader(); err != nil {
		return nil, err
	}
	img, err := d.DecodeFrame()
	if err != nil {
		return nil, err
	}
	return img, nil
}

func neutralPicture(width, height int) image.Image {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = neutralLuma
	}
	return img
}

var _ Codec = (*DumpCodec)(nil)
