package app

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"

	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/internal/ports"
	"github.com/bft-labs/vpxview/pkg/ivf"
	"github.com/bft-labs/vpxview/pkg/overlay"
	"github.com/bft-labs/vpxview/pkg/vpx"
)

var (
	// Shown 64x64 VP9 key frame, profile 0.
	vp9Key = []byte{0x82, 0x49, 0x83, 0x42, 0x20, 0x03, 0xf0, 0x03, 0xf0, 0x00}
	// Shown VP9 inter frame header.
	vp9Inter = []byte{0x86, 0x00, 0x00, 0x00}
	// Payload with a bad frame marker.
	corrupt = []byte{0x00, 0x01, 0x02}
)

// interFrame returns a distinct inter payload per n so each one has its own
// dump entry.
func interFrame(n byte) []byte {
	return append(append([]byte(nil), vp9Inter...), n)
}

func intraInternals() []vpx.DumpBlock {
	return []vpx.DumpBlock{vpx.DumpFromRecord(vpx.Leaf(domain.LeafAttributes{
		Mode:   domain.ModeDC,
		Refs:   [2]domain.RefFrame{domain.RefIntra, domain.RefNone},
		TxSize: domain.Tx32x32,
	}))}
}

func splitNewMVInternals() []vpx.DumpBlock {
	leaf := vpx.Leaf(domain.LeafAttributes{
		Mode:   domain.ModeNewMV,
		Refs:   [2]domain.RefFrame{domain.RefLast, domain.RefNone},
		MVs:    [2]domain.MotionVector{{X: 4, Y: -2}},
		NumMVs: 1,
		TxSize: domain.Tx16x16,
	})
	return []vpx.DumpBlock{vpx.DumpFromRecord(vpx.Split(domain.PartitionSplit, leaf, leaf, leaf, leaf))}
}

type presentation struct {
	scene overlay.Scene
	title string
}

type recordingSurface struct {
	presented []presentation
}

func (s *recordingSurface) Present(scene overlay.Scene, title string) error {
	s.presented = append(s.presented, presentation{scene, title})
	return nil
}

func (s *recordingSurface) last() presentation {
	return s.presented[len(s.presented)-1]
}

type memRepo struct {
	views map[string]domain.ViewState
}

func (r *memRepo) Load(ctx context.Context, path string) (domain.ViewState, bool, error) {
	v, ok := r.views[path]
	return v, ok, nil
}

func (r *memRepo) Save(ctx context.Context, path string, view domain.ViewState) error {
	if r.views == nil {
		r.views = map[string]domain.ViewState{}
	}
	r.views[path] = view
	return nil
}

// countingDecoder counts decodes on top of a real session.
type countingDecoder struct {
	ports.Decoder
	calls int
}

func (d *countingDecoder) Decode(payload []byte) (*domain.DecodedFrame, error) {
	d.calls++
	return d.Decoder.Decode(payload)
}

type fixture struct {
	path     string
	surface  *recordingSurface
	decoders []*countingDecoder
	dump     []vpx.DumpFrame
}

// newFixture writes a 64x64 VP9 container of payloads. internals maps a
// payload index to its dumped superblocks; payloads without an entry have
// no internals.
func newFixture(t *testing.T, payloads [][]byte, internals map[int][]vpx.DumpBlock) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.ivf")
	info := domain.StreamInfo{Codec: domain.CodecVP9, Width: 64, Height: 64}
	if err := ivf.WriteFile(path, info, payloads); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f := &fixture{path: path, surface: &recordingSurface{}}
	for i, sbs := range internals {
		f.dump = append(f.dump, vpx.DumpFrame{CRC32: vpx.PayloadCRC(payloads[i]), Superblocks: sbs})
	}
	return f
}

func (f *fixture) open(ctx context.Context) (ports.FrameSource, ports.Decoder, error) {
	d, err := ivf.Open(f.path, nil)
	if err != nil {
		return nil, nil, err
	}
	dec := &countingDecoder{Decoder: vpx.NewSession(vpx.NewDumpCodecFrames(d.Info(), f.dump, nil), nil)}
	f.decoders = append(f.decoders, dec)
	return d, dec, nil
}

func (f *fixture) controller(t *testing.T, config ControllerConfig, repo ports.ViewRepository) *Controller {
	t.Helper()
	c := NewController(config, f.open, f.surface, repo, &mockLogger{}, nil)
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func defaultConfig() ControllerConfig {
	return ControllerConfig{Overlay: domain.DefaultOverlayFlags(), Render: overlay.DefaultParams()}
}

func arrowDeltas(s overlay.Scene) [][2]float64 {
	var out [][2]float64
	for _, p := range s.Primitives {
		if p.Kind == overlay.KindArrow {
			out = append(out, [2]float64{p.To.X - p.From.X, p.To.Y - p.From.Y})
		}
	}
	return out
}

func TestController_TwoFrameScenario(t *testing.T) {
	f := newFixture(t, [][]byte{vp9Key, interFrame(1)}, map[int][]vpx.DumpBlock{
		0: intraInternals(),
		1: splitNewMVInternals(),
	})
	c := f.controller(t, defaultConfig(), nil)

	s := c.Scene()
	if got := s.Count(overlay.KindOutline); got != 1 {
		t.Errorf("frame 0 outlines = %d, want 1", got)
	}
	if got := s.Count(overlay.KindArrow); got != 0 {
		t.Errorf("frame 0 arrows = %d, want 0", got)
	}
	if s.Banner != "" {
		t.Errorf("frame 0 banner = %q, want empty", s.Banner)
	}

	if err := c.Handle(context.Background(), domain.KeyRight); err != nil {
		t.Fatalf("Handle(RIGHT) error = %v", err)
	}
	s = c.Scene()
	if got := s.Count(overlay.KindOutline); got != 4 {
		t.Errorf("frame 1 outlines = %d, want 4", got)
	}
	want := [][2]float64{{4, -2}, {4, -2}, {4, -2}, {4, -2}}
	if diff := cmp.Diff(want, arrowDeltas(s)); diff != "" {
		t.Errorf("frame 1 arrows mismatch (-want +got):\n%s", diff)
	}
	if got := f.surface.last().title; got != "vpxview - clip.ivf - 2/2" {
		t.Errorf("title = %q", got)
	}
}

func TestController_OverlayOnRecordedPicture(t *testing.T) {
	payloads := [][]byte{vp9Key, interFrame(1)}
	f := newFixture(t, payloads, map[int][]vpx.DumpBlock{0: intraInternals()})

	orange := color.NRGBA{R: 0xe0, G: 0x70, B: 0x10, A: 0xff}
	pic := filepath.Join(t.TempDir(), "frame1.png")
	if err := imaging.Save(imaging.New(64, 64, orange), pic); err != nil {
		t.Fatal(err)
	}
	f.dump = append(f.dump, vpx.DumpFrame{
		CRC32:       vpx.PayloadCRC(payloads[1]),
		Picture:     pic,
		Superblocks: splitNewMVInternals(),
	})
	c := f.controller(t, defaultConfig(), nil)

	if err := c.Handle(context.Background(), domain.KeyRight); err != nil {
		t.Fatalf("Handle(RIGHT) error = %v", err)
	}
	s := c.Scene()
	if s.Picture == nil {
		t.Fatal("scene has no picture")
	}
	if got := color.NRGBAModel.Convert(s.Picture.At(40, 40)); got != orange {
		t.Errorf("picture pixel = %v, want the recorded %v", got, orange)
	}
	if got := s.Count(overlay.KindOutline); got != 4 {
		t.Errorf("outlines = %d, want 4", got)
	}
	if got := s.Count(overlay.KindArrow); got != 4 {
		t.Errorf("arrows = %d, want 4", got)
	}
}

func TestController_Boundaries(t *testing.T) {
	f := newFixture(t, [][]byte{vp9Key, interFrame(1), interFrame(2)}, map[int][]vpx.DumpBlock{
		0: intraInternals(),
		1: splitNewMVInternals(),
		2: splitNewMVInternals(),
	})
	c := f.controller(t, defaultConfig(), nil)
	ctx := context.Background()

	presented := len(f.surface.presented)
	if err := c.Handle(ctx, domain.KeyLeft); err != nil {
		t.Fatalf("Handle(LEFT) error = %v", err)
	}
	if c.View().Index != 0 || len(f.surface.presented) != presented {
		t.Errorf("LEFT at 0: index %d, presents %d, want no-op", c.View().Index, len(f.surface.presented))
	}

	for range 2 {
		if err := c.Handle(ctx, domain.KeyRight); err != nil {
			t.Fatalf("Handle(RIGHT) error = %v", err)
		}
	}
	if c.View().Index != 2 {
		t.Fatalf("index = %d, want 2", c.View().Index)
	}
	presented = len(f.surface.presented)
	decodes := f.decoders[0].calls
	if err := c.Handle(ctx, domain.KeyRight); err != nil {
		t.Fatalf("Handle(RIGHT) error = %v", err)
	}
	if c.View().Index != 2 || len(f.surface.presented) != presented || f.decoders[0].calls != decodes {
		t.Error("RIGHT at the last frame should be a no-op")
	}
}

func TestController_RightThenLeftRestoresScene(t *testing.T) {
	f := newFixture(t, [][]byte{vp9Key, interFrame(1)}, map[int][]vpx.DumpBlock{
		0: intraInternals(),
		1: splitNewMVInternals(),
	})
	c := f.controller(t, ControllerConfig{Overlay: domain.OverlayFlags{Fills: true, Vectors: true, Labels: true}}, nil)
	ctx := context.Background()

	before := c.Scene()
	_ = c.Handle(ctx, domain.KeyRight)
	_ = c.Handle(ctx, domain.KeyLeft)

	if c.View().Index != 0 {
		t.Fatalf("index = %d, want 0", c.View().Index)
	}
	if diff := cmp.Diff(before, c.Scene()); diff != "" {
		t.Errorf("scene mismatch after RIGHT, LEFT (-before +after):\n%s", diff)
	}
}

func TestController_CorruptFrameKeepsPrevious(t *testing.T) {
	f := newFixture(t, [][]byte{vp9Key, corrupt, interFrame(2)}, map[int][]vpx.DumpBlock{
		0: intraInternals(),
	})
	c := f.controller(t, defaultConfig(), nil)
	before := c.Scene()

	err := c.Handle(context.Background(), domain.KeyRight)
	if !errors.Is(err, domain.ErrDecode) {
		t.Fatalf("Handle(RIGHT) error = %v, want ErrDecode", err)
	}
	if c.View().Index != 0 {
		t.Errorf("index = %d, want 0", c.View().Index)
	}

	after := c.Scene()
	if after.Banner == "" {
		t.Error("banner should report the decode failure")
	}
	if diff := cmp.Diff(before.Primitives, after.Primitives); diff != "" {
		t.Errorf("frame 0 scene replaced (-before +after):\n%s", diff)
	}
	if got := f.surface.last().scene.Banner; got != after.Banner {
		t.Errorf("presented banner = %q, want %q", got, after.Banner)
	}

	// Revisiting decodes again and fails again.
	if err := c.Handle(context.Background(), domain.KeyRight); !errors.Is(err, domain.ErrDecode) {
		t.Errorf("second Handle(RIGHT) error = %v, want ErrDecode", err)
	}
	if f.decoders[0].calls != 3 {
		t.Errorf("decodes = %d, want 3", f.decoders[0].calls)
	}
}

func TestController_InternalsErrorShowsPicture(t *testing.T) {
	f := newFixture(t, [][]byte{vp9Key, interFrame(1)}, map[int][]vpx.DumpBlock{
		0: intraInternals(),
	})
	c := f.controller(t, defaultConfig(), nil)

	err := c.Handle(context.Background(), domain.KeyRight)
	if !errors.Is(err, domain.ErrInternals) {
		t.Fatalf("Handle(RIGHT) error = %v, want ErrInternals", err)
	}
	if c.View().Index != 1 {
		t.Errorf("index = %d, want 1", c.View().Index)
	}
	s := c.Scene()
	if len(s.Primitives) != 1 || s.Primitives[0].Kind != overlay.KindPicture {
		t.Errorf("primitives = %+v, want the picture only", s.Primitives)
	}
	if s.Banner == "" {
		t.Error("banner should report the internals failure")
	}
	if c.Model() != nil {
		t.Error("Model() should be nil after an internals failure")
	}

	// Back on a clean frame the banner clears.
	_ = c.Handle(context.Background(), domain.KeyLeft)
	if c.Scene().Banner != "" {
		t.Errorf("banner = %q after a clean frame, want empty", c.Scene().Banner)
	}
}

func TestController_TogglesRerenderWithoutDecoding(t *testing.T) {
	f := newFixture(t, [][]byte{vp9Key, interFrame(1)}, map[int][]vpx.DumpBlock{
		0: intraInternals(),
		1: splitNewMVInternals(),
	})
	c := f.controller(t, defaultConfig(), nil)
	ctx := context.Background()
	_ = c.Handle(ctx, domain.KeyRight)
	decodes := f.decoders[0].calls

	tests := []struct {
		key    domain.Key
		kind   overlay.Kind
		want   int
		enable bool
	}{
		{domain.KeyToggleFills, overlay.KindFill, 4, true},
		{domain.KeyToggleLabels, overlay.KindText, 4, true},
		{domain.KeyToggleVectors, overlay.KindArrow, 0, false},
		{domain.KeyToggleVectors, overlay.KindArrow, 4, true},
		{domain.KeyToggleFills, overlay.KindFill, 0, false},
	}
	for _, tt := range tests {
		if err := c.Handle(ctx, tt.key); err != nil {
			t.Fatalf("Handle(%v) error = %v", tt.key, err)
		}
		if got := c.Scene().Count(tt.kind); got != tt.want {
			t.Errorf("after %v: %v count = %d, want %d", tt.key, tt.kind, got, tt.want)
		}
	}
	if f.decoders[0].calls != decodes {
		t.Errorf("toggles decoded %d frames, want 0", f.decoders[0].calls-decodes)
	}
	if c.Scene().Count(overlay.KindOutline) != 4 {
		t.Error("outlines should survive every toggle")
	}
}

func TestController_QuitSavesView(t *testing.T) {
	f := newFixture(t, [][]byte{vp9Key, interFrame(1)}, map[int][]vpx.DumpBlock{
		0: intraInternals(),
		1: splitNewMVInternals(),
	})
	repo := &memRepo{}
	c := f.controller(t, defaultConfig(), repo)
	ctx := context.Background()

	_ = c.Handle(ctx, domain.KeyRight)
	_ = c.Handle(ctx, domain.KeyToggleLabels)
	_ = c.Handle(ctx, domain.KeyEscape)

	if c.State() != NavQuitting {
		t.Fatalf("state = %v, want Quitting", c.State())
	}
	want := domain.ViewState{Index: 1, Total: 2, Overlay: domain.OverlayFlags{Vectors: true, Labels: true}}
	if diff := cmp.Diff(want, repo.views[f.path]); diff != "" {
		t.Errorf("saved view mismatch (-want +got):\n%s", diff)
	}

	// Keys after quit are ignored.
	presented := len(f.surface.presented)
	_ = c.Handle(ctx, domain.KeyLeft)
	if len(f.surface.presented) != presented || c.View().Index != 1 {
		t.Error("keys after quit should be ignored")
	}
}

func TestController_Resume(t *testing.T) {
	f := newFixture(t, [][]byte{vp9Key, interFrame(1)}, map[int][]vpx.DumpBlock{
		0: intraInternals(),
		1: splitNewMVInternals(),
	})

	tests := []struct {
		name   string
		resume bool
		saved  int
		want   int
	}{
		{name: "resume", resume: true, saved: 1, want: 1},
		{name: "clamped", resume: true, saved: 7, want: 1},
		{name: "disabled", resume: false, saved: 1, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memRepo{views: map[string]domain.ViewState{
				f.path: {Index: tt.saved, Total: 8, Overlay: domain.OverlayFlags{Fills: true}},
			}}
			config := defaultConfig()
			config.Resume = tt.resume
			c := f.controller(t, config, repo)
			if c.View().Index != tt.want {
				t.Errorf("index = %d, want %d", c.View().Index, tt.want)
			}
			if c.View().Total != 2 {
				t.Errorf("total = %d, want 2", c.View().Total)
			}
			if c.View().Overlay.Fills != tt.resume {
				t.Errorf("fills = %v, want %v", c.View().Overlay.Fills, tt.resume)
			}
		})
	}
}

func TestController_Reload(t *testing.T) {
	payloads := [][]byte{vp9Key, interFrame(1), interFrame(2)}
	f := newFixture(t, payloads, map[int][]vpx.DumpBlock{
		0: intraInternals(),
		1: splitNewMVInternals(),
		2: splitNewMVInternals(),
	})
	c := f.controller(t, defaultConfig(), nil)
	ctx := context.Background()
	_ = c.Handle(ctx, domain.KeyRight)
	_ = c.Handle(ctx, domain.KeyRight)

	// Replace the container with a shorter one; rename keeps the old
	// mapping valid until the controller closes it.
	tmp := f.path + ".new"
	info := domain.StreamInfo{Codec: domain.CodecVP9, Width: 64, Height: 64}
	if err := ivf.WriteFile(tmp, info, payloads[:2]); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		t.Fatal(err)
	}

	if err := c.Handle(ctx, domain.KeyReload); err != nil {
		t.Fatalf("Handle(reload) error = %v", err)
	}
	if v := c.View(); v.Index != 1 || v.Total != 2 {
		t.Errorf("view = %+v, want index 1 of 2", v)
	}
	if len(f.decoders) != 2 {
		t.Errorf("opened %d decoders, want 2", len(f.decoders))
	}
	if got := c.Scene().Count(overlay.KindArrow); got != 4 {
		t.Errorf("arrows after reload = %d, want 4", got)
	}

	// A broken container is rejected and the current one stays.
	if err := os.WriteFile(tmp, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		t.Fatal(err)
	}
	if err := c.Handle(ctx, domain.KeyReload); !errors.Is(err, domain.ErrFormat) {
		t.Fatalf("Handle(reload) error = %v, want ErrFormat", err)
	}
	if c.View().Total != 2 || c.Scene().Banner == "" {
		t.Errorf("failed reload: view %+v, banner %q", c.View(), c.Scene().Banner)
	}
}

func TestController_Run(t *testing.T) {
	f := newFixture(t, [][]byte{vp9Key, interFrame(1)}, map[int][]vpx.DumpBlock{
		0: intraInternals(),
		1: splitNewMVInternals(),
	})

	t.Run("quit key", func(t *testing.T) {
		repo := &memRepo{}
		c := NewController(defaultConfig(), f.open, f.surface, repo, &mockLogger{}, nil)
		q := NewKeyQueue(4)
		q.Send(domain.KeyRight)
		q.Send(domain.KeyQuit)

		if err := c.Run(context.Background(), q); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if v, ok := repo.views[f.path]; !ok || v.Index != 1 {
			t.Errorf("saved view = %+v, %v, want index 1", v, ok)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		repo := &memRepo{}
		c := NewController(defaultConfig(), f.open, f.surface, repo, &mockLogger{}, nil)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- c.Run(ctx, NewKeyQueue(1)) }()
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run() error = %v, want nil on cancel", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Run() did not return after cancel")
		}
		if _, ok := repo.views[f.path]; !ok {
			t.Error("view should be saved on cancel")
		}
	})

	t.Run("open failure", func(t *testing.T) {
		boom := errors.New("no such container")
		open := func(ctx context.Context) (ports.FrameSource, ports.Decoder, error) {
			return nil, nil, boom
		}
		c := NewController(defaultConfig(), open, f.surface, nil, &mockLogger{}, nil)
		if err := c.Run(context.Background(), NewKeyQueue(1)); !errors.Is(err, boom) {
			t.Errorf("Run() error = %v, want %v", err, boom)
		}
	})
}

func TestKeyQueue(t *testing.T) {
	q := NewKeyQueue(2)
	if q.Send(domain.KeyNone) {
		t.Error("Send(KeyNone) should be dropped")
	}
	if !q.Send(domain.KeyLeft) || !q.Send(domain.KeyRight) {
		t.Fatal("Send() dropped a key below capacity")
	}
	if q.Send(domain.KeyQuit) {
		t.Error("Send() on a full queue should drop")
	}

	ctx := context.Background()
	for _, want := range []domain.Key{domain.KeyLeft, domain.KeyRight} {
		got, err := q.NextKey(ctx)
		if err != nil || got != want {
			t.Errorf("NextKey() = %v, %v, want %v", got, err, want)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := q.NextKey(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("NextKey() error = %v, want context.Canceled", err)
	}
}

func TestNavState_String(t *testing.T) {
	tests := []struct {
		state NavState
		want  string
	}{
		{NavIdle, "Idle"},
		{NavQuitting, "Quitting"},
		{NavState(9), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("NavState(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}
