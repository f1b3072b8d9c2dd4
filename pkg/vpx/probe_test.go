package vpx

import (
	"errors"
	"testing"

	"github.com/bft-labs/vpxview/internal/domain"
)

// bitWriter builds MSB-first headers for tests.
type bitWriter struct {
	buf []byte
	n   int
}

func (w *bitWriter) put(v uint32, bits int) {
	for i := bits - 1; i >= 0; i-- {
		if w.n%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if v>>uint(i)&1 == 1 {
			w.buf[len(w.buf)-1] |= 0x80 >> uint(w.n%8)
		}
		w.n++
	}
}

// vp9KeyFrame returns a VP9 key frame header followed by padding.
func vp9KeyFrame(profile uint32, width, height int) []byte {
	var w bitWriter
	w.put(2, 2)
	w.put(profile&1, 1)
	w.put(profile>>1, 1)
	if profile == 3 {
		w.put(0, 1)
	}
	w.put(0, 1) // show_existing_frame
	w.put(0, 1) // key frame
	w.put(1, 1) // show_frame
	w.put(0, 1) // error_resilient_mode
	w.put(vp9SyncCode, 24)
	if profile >= 2 {
		w.put(1, 1) // 12 bit
	}
	w.put(1, 3) // color space BT.601
	w.put(0, 1) // color range
	if profile == 1 || profile == 3 {
		w.put(0, 3)
	}
	w.put(uint32(width-1), 16)
	w.put(uint32(height-1), 16)
	w.put(0, 1) // render_and_frame_size_different
	return append(w.buf, 0, 0, 0, 0)
}

// vp9InterFrame returns a shown VP9 inter frame header.
func vp9InterFrame() []byte {
	var w bitWriter
	w.put(2, 2)
	w.put(0, 2) // profile 0
	w.put(0, 1) // show_existing_frame
	w.put(1, 1) // inter
	w.put(1, 1) // show_frame
	w.put(0, 1) // error_resilient_mode
	w.put(0, 2) // reset_frame_context
	return append(w.buf, 0, 0, 0)
}

func superframe(frames ...[]byte) []byte {
	marker := byte(0xc0 | (4-1)<<3 | (len(frames) - 1))
	var out []byte
	for _, f := range frames {
		out = append(out, f...)
	}
	out = append(out, marker)
	for _, f := range frames {
		n := len(f)
		out = append(out, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	}
	return append(out, marker)
}

func TestProbeVP9(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    domain.FrameInfo
		wantErr error
	}{
		{
			name:    "profile 0 key frame",
			payload: vp9KeyFrame(0, 64, 48),
			want: domain.FrameInfo{Codec: domain.CodecVP9, KeyFrame: true, Shown: true,
				BitDepth: 8, Width: 64, Height: 48, SubFrames: 1},
		},
		{
			name:    "profile 2 key frame is high bit depth",
			payload: vp9KeyFrame(2, 1920, 1080),
			want: domain.FrameInfo{Codec: domain.CodecVP9, KeyFrame: true, Shown: true,
				Profile: 2, BitDepth: 12, Width: 1920, Height: 1080, SubFrames: 1},
		},
		{
			name:    "profile 1 key frame",
			payload: vp9KeyFrame(1, 320, 240),
			want: domain.FrameInfo{Codec: domain.CodecVP9, KeyFrame: true, Shown: true,
				Profile: 1, BitDepth: 8, Width: 320, Height: 240, SubFrames: 1},
		},
		{
			name:    "inter frame has no size",
			payload: vp9InterFrame(),
			want:    domain.FrameInfo{Codec: domain.CodecVP9, Shown: true, BitDepth: 8, SubFrames: 1},
		},
		{
			name:    "show existing frame",
			payload: []byte{0x88, 0x00},
			want: domain.FrameInfo{Codec: domain.CodecVP9, Shown: true, ShowExisting: true,
				BitDepth: 8, SubFrames: 1},
		},
		{
			name:    "superframe takes size from hidden key frame",
			payload: superframe(vp9KeyFrame(0, 64, 64), vp9InterFrame()),
			want: domain.FrameInfo{Codec: domain.CodecVP9, Shown: true, BitDepth: 8,
				Width: 64, Height: 64, SubFrames: 2},
		},
		{
			name:    "bad frame marker",
			payload: []byte{0x00, 0x49, 0x83, 0x42},
			wantErr: errFrameMarker,
		},
		{
			name:    "bad sync code",
			payload: []byte{0x82, 0x49, 0x83, 0x43, 0x00, 0x00, 0x00, 0x00},
			wantErr: errSyncCode,
		},
		{
			name:    "truncated key frame",
			payload: vp9KeyFrame(0, 64, 64)[:3],
			wantErr: errShortHeader,
		},
		{
			name:    "empty payload",
			payload: nil,
			wantErr: errEmptyPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProbeVP9(tt.payload)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ProbeVP9() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ProbeVP9() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ProbeVP9() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSplitSuperframe(t *testing.T) {
	t.Run("no index", func(t *testing.T) {
		frames, err := SplitSuperframe([]byte{1, 2, 3})
		if err != nil {
			t.Fatalf("SplitSuperframe() error = %v", err)
		}
		if len(frames) != 1 || len(frames[0]) != 3 {
			t.Errorf("SplitSuperframe() = %v, want the payload itself", frames)
		}
	})

	t.Run("two frames with one-byte sizes", func(t *testing.T) {
		payload := []byte{0xa, 0xb, 0xc, 0xd, 0xe, 0xc1, 3, 2, 0xc1}
		frames, err := SplitSuperframe(payload)
		if err != nil {
			t.Fatalf("SplitSuperframe() error = %v", err)
		}
		if len(frames) != 2 {
			t.Fatalf("len(frames) = %d, want 2", len(frames))
		}
		if len(frames[0]) != 3 || frames[0][0] != 0xa {
			t.Errorf("frames[0] = %v", frames[0])
		}
		if len(frames[1]) != 2 || frames[1][0] != 0xd {
			t.Errorf("frames[1] = %v", frames[1])
		}
	})

	t.Run("marker byte without matching index is a plain frame", func(t *testing.T) {
		frames, err := SplitSuperframe([]byte{0x82, 0x00, 0xc1})
		if err != nil {
			t.Fatalf("SplitSuperframe() error = %v", err)
		}
		if len(frames) != 1 {
			t.Errorf("len(frames) = %d, want 1", len(frames))
		}
	})

	t.Run("overrunning index", func(t *testing.T) {
		payload := []byte{0xa, 0xb, 0xc1, 9, 2, 0xc1}
		if _, err := SplitSuperframe(payload); err == nil {
			t.Error("SplitSuperframe() expected error but got nil")
		}
	})
}

func TestProbeVP8(t *testing.T) {
	key := []byte{0x10, 0x00, 0x00, 0x9d, 0x01, 0x2a, 0x10, 0x00, 0x0c, 0x00}

	tests := []struct {
		name    string
		payload []byte
		want    domain.FrameInfo
		wantErr bool
	}{
		{
			name:    "key frame",
			payload: key,
			want: domain.FrameInfo{Codec: domain.CodecVP8, KeyFrame: true, Shown: true,
				BitDepth: 8, Width: 16, Height: 12, SubFrames: 1},
		},
		{
			name:    "inter frame",
			payload: []byte{0x31, 0x00, 0x00, 0xff},
			want:    domain.FrameInfo{Codec: domain.CodecVP8, Shown: true, BitDepth: 8, SubFrames: 1},
		},
		{
			name:    "bad start code",
			payload: []byte{0x10, 0x00, 0x00, 0x9d, 0x01, 0x2b, 0x10, 0x00, 0x10, 0x00},
			wantErr: true,
		},
		{
			name:    "short key frame",
			payload: key[:6],
			wantErr: true,
		},
		{
			name:    "unsupported version",
			payload: []byte{0x1f, 0x00, 0x00},
			wantErr: true,
		},
		{
			name:    "first partition overruns payload",
			payload: []byte{0xf1, 0x00, 0x00, 0x00},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProbeVP8(tt.payload)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ProbeVP8() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ProbeVP8() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ProbeVP8() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
