package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/pkg/ivf"
	"github.com/bft-labs/vpxview/pkg/log"
	"github.com/bft-labs/vpxview/pkg/overlay"
	"github.com/bft-labs/vpxview/pkg/partition"
	"github.com/bft-labs/vpxview/pkg/vpx"
)

type inspectReport struct {
	Path      string            `json:"path"`
	Header    domain.StreamInfo `json:"header"`
	Frames    []frameEntry      `json:"frames"`
	Truncated bool              `json:"truncated,omitempty"`
	Model     *modelReport      `json:"model,omitempty"`
}

type frameEntry struct {
	domain.ContainerFrame
	Info  *domain.FrameInfo `json:"info,omitempty"`
	Error string            `json:"error,omitempty"`
}

type modelReport struct {
	Frame       int          `json:"frame"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Superblocks int          `json:"superblocks"`
	Leaves      []leafReport `json:"leaves,omitempty"`
	Error       string       `json:"error,omitempty"`
}

type leafReport struct {
	X       int        `json:"x"`
	Y       int        `json:"y"`
	W       int        `json:"w"`
	H       int        `json:"h"`
	Depth   uint8      `json:"depth"`
	Label   string     `json:"label"`
	Refs    []string   `json:"refs"`
	MVs     [][2]int16 `json:"mvs,omitempty"`
	Skip    bool       `json:"skip,omitempty"`
	Segment uint8      `json:"segment,omitempty"`
}

// inspect writes the container header and directory of path as JSON. When
// frame is not negative it also decodes that frame and reports its model.
func inspect(w io.Writer, path, internals string, frame int, logger log.Logger) error {
	d, err := ivf.Open(path, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	rep := inspectReport{
		Path:      d.Path(),
		Header:    d.Info(),
		Truncated: d.Truncated(),
	}
	for _, f := range d.Frames() {
		e := frameEntry{ContainerFrame: f}
		payload, err := d.Payload(f)
		if err == nil {
			var info domain.FrameInfo
			if info, err = vpx.Probe(d.Info().Codec, payload); err == nil {
				e.Info = &info
			}
		}
		if err != nil {
			e.Error = err.Error()
		}
		rep.Frames = append(rep.Frames, e)
	}

	if frame >= 0 {
		m, err := inspectModel(d, frame, internals, logger)
		if err != nil {
			return err
		}
		rep.Model = m
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// inspectModel decodes frame i on its own. Decode and internals failures are
// reported in the model, not returned.
func inspectModel(d *ivf.Demuxer, i int, internals string, logger log.Logger) (*modelReport, error) {
	f, payload, err := d.ReadFrame(i)
	if err != nil {
		return nil, err
	}
	codec, err := vpx.NewDumpCodec(d.Info(), internals, logger)
	if err != nil {
		return nil, fmt.Errorf("load internals: %w", err)
	}

	rep := &modelReport{Frame: f.Index}
	df, err := vpx.NewSession(codec, logger).Decode(payload)
	if err != nil {
		rep.Error = err.Error()
		return rep, nil
	}
	rep.Width, rep.Height = df.Width, df.Height

	m, err := partition.NewBuilder().Build(df.Superblocks, df.Width, df.Height)
	if err != nil {
		rep.Error = err.Error()
		return rep, nil
	}
	rep.Superblocks = len(m.Roots)
	for n := range m.LeafNodes() {
		a, _ := m.Attributes(n)
		l := leafReport{
			X:       n.Clip.Min.X,
			Y:       n.Clip.Min.Y,
			W:       n.Clip.Dx(),
			H:       n.Clip.Dy(),
			Depth:   n.Depth,
			Label:   overlay.Label(a),
			Skip:    a.Skip,
			Segment: a.Segment,
		}
		for _, r := range a.Refs {
			if r != domain.RefNone {
				l.Refs = append(l.Refs, r.String())
			}
		}
		for k := range a.NumMVs {
			l.MVs = append(l.MVs, [2]int16{a.MVs[k].X, a.MVs[k].Y})
		}
		rep.Leaves = append(rep.Leaves, l)
	}
	return rep, nil
}
