package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Backend:       "file",
				Zoom:          4,
				MVScale:       0.5,
				Labels:        &trueVal,
				WatchDebounce: "1s",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Backend:       "file",
				Zoom:          4,
				MVScale:       0.5,
				Labels:        true,
				WatchDebounce: time.Second,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Backend: "file",
				Addr:    "0.0.0.0:9000",
			},
			changed: map[string]bool{"backend": true},
			initial: Config{Backend: "http"},
			expected: Config{
				Backend: "http", // unchanged because flag was set
				Addr:    "0.0.0.0:9000",
			},
		},
		{
			name: "explicit false overrides a true default",
			fileConfig: FileConfig{
				Vectors: &falseVal,
			},
			changed:  map[string]bool{},
			initial:  Config{Vectors: true},
			expected: Config{},
		},
		{
			name: "non-positive numbers are ignored",
			fileConfig: FileConfig{
				Zoom:    -1,
				MVScale: 0,
			},
			changed:  map[string]bool{},
			initial:  Config{Zoom: 2, MVScale: 1},
			expected: Config{Zoom: 2, MVScale: 1},
		},
		{
			name: "invalid duration",
			fileConfig: FileConfig{
				WatchDebounce: "soon",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "handles all field types correctly",
			fileConfig: FileConfig{
				Internals:     "/dumps/a.jsonl",
				Backend:       "file",
				Addr:          ":8000",
				Out:           "/tmp/a.png",
				Zoom:          3,
				MVScale:       2,
				LabelMinSize:  32,
				Fills:         &trueVal,
				Vectors:       &falseVal,
				Labels:        &trueVal,
				Resume:        &trueVal,
				Watch:         &trueVal,
				WatchDebounce: "100ms",
				StateDir:      "/state",
				LogLevel:      "debug",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Internals:     "/dumps/a.jsonl",
				Backend:       "file",
				Addr:          ":8000",
				Out:           "/tmp/a.png",
				Zoom:          3,
				MVScale:       2,
				LabelMinSize:  32,
				Fills:         true,
				Vectors:       false,
				Labels:        true,
				Resume:        true,
				Watch:         true,
				WatchDebounce: 100 * time.Millisecond,
				StateDir:      "/state",
				LogLevel:      "debug",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyFileConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyFileConfig() unexpected error: %v", err)
				return
			}
			if !tt.wantErr {
				if diff := cmp.Diff(tt.expected, cfg); diff != "" {
					t.Errorf("ApplyFileConfig() mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "config.toml",
			content: `
backend = "file"
zoom = 4
mv_scale = 0.5
labels = true
watch_debounce = "1s"
`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `
backend: file
zoom: 4
mv_scale: 0.5
labels: true
watch_debounce: 1s
`,
		},
		{
			name: "yml",
			file: "config.yml",
			content: `
backend: file
zoom: 4
mv_scale: 0.5
labels: true
watch_debounce: 1s
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to create test config file: %v", err)
			}

			fc, err := LoadFileConfig(path)
			if err != nil {
				t.Fatalf("LoadFileConfig() error = %v", err)
			}

			if fc.Backend != "file" {
				t.Errorf("Backend = %v, want file", fc.Backend)
			}
			if fc.Zoom != 4 {
				t.Errorf("Zoom = %v, want 4", fc.Zoom)
			}
			if fc.MVScale != 0.5 {
				t.Errorf("MVScale = %v, want 0.5", fc.MVScale)
			}
			if fc.Labels == nil || !*fc.Labels {
				t.Errorf("Labels = %v, want true", fc.Labels)
			}
			if fc.Fills != nil {
				t.Errorf("Fills = %v, want nil", fc.Fills)
			}
			if fc.WatchDebounce != "1s" {
				t.Errorf("WatchDebounce = %v, want 1s", fc.WatchDebounce)
			}
		})
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_Invalid(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		file    string
		content string
	}{
		{"invalid.toml", "backend = \"file\"\nthis is not valid toml\n"},
		{"invalid.yaml", "backend: [file\n"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to create test config file: %v", err)
			}
			if _, err := LoadFileConfig(path); err == nil {
				t.Errorf("LoadFileConfig(%s) expected error", tt.file)
			}
		})
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".vpxview") {
		t.Errorf("DefaultConfigPath() = %v, should contain .vpxview", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
