package log

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"", zerolog.InfoLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"trace", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestZerologAdapter_LevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZerologAdapterLevel(&buf, "warn")
	if err != nil {
		t.Fatalf("NewZerologAdapterLevel() error = %v", err)
	}

	logger.Info("hidden", String("k", "v"))
	logger.Warn("frame decode failed",
		Int("index", 3),
		Err(errors.New("bad marker")),
		Any("rect", image.Rect(0, 0, 8, 8)))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %q", out)
	}
	for _, want := range []string{"frame decode failed", "index=3", "bad marker", "(0,0)-(8,8)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
