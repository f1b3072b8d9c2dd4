package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config but uses strings for durations to make TOML and
// YAML friendly. Pointers distinguish an absent bool from false.
type FileConfig struct {
	Internals     string  `toml:"internals" yaml:"internals"`
	Backend       string  `toml:"backend" yaml:"backend"`
	Addr          string  `toml:"addr" yaml:"addr"`
	Out           string  `toml:"out" yaml:"out"`
	Zoom          int     `toml:"zoom" yaml:"zoom"`
	MVScale       float64 `toml:"mv_scale" yaml:"mv_scale"`
	LabelMinSize  int     `toml:"label_min_size" yaml:"label_min_size"`
	Fills         *bool   `toml:"fills" yaml:"fills"`
	Vectors       *bool   `toml:"vectors" yaml:"vectors"`
	Labels        *bool   `toml:"labels" yaml:"labels"`
	Resume        *bool   `toml:"resume" yaml:"resume"`
	Watch         *bool   `toml:"watch" yaml:"watch"`
	WatchDebounce string  `toml:"watch_debounce" yaml:"watch_debounce"`
	StateDir      string  `toml:"state_dir" yaml:"state_dir"`
	LogLevel      string  `toml:"log_level" yaml:"log_level"`
}

// LoadFileConfig reads and parses a config file from the given path. Files
// ending in .yaml or .yml are YAML; anything else is TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = toml.Unmarshal(b, &fc)
	}
	if err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.vpxview/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".vpxview", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("internals", fc.Internals, &cfg.Internals)
	s.setString("backend", fc.Backend, &cfg.Backend)
	s.setString("addr", fc.Addr, &cfg.Addr)
	s.setString("out", fc.Out, &cfg.Out)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("watch-debounce", fc.WatchDebounce, &cfg.WatchDebounce); err != nil {
		return err
	}

	s.setFloat("mv-scale", fc.MVScale, &cfg.MVScale)

	s.setInt("zoom", fc.Zoom, &cfg.Zoom)
	s.setInt("label-min-size", fc.LabelMinSize, &cfg.LabelMinSize)

	s.setBool("fills", fc.Fills, &cfg.Fills)
	s.setBool("vectors", fc.Vectors, &cfg.Vectors)
	s.setBool("labels", fc.Labels, &cfg.Labels)
	s.setBool("resume", fc.Resume, &cfg.Resume)
	s.setBool("watch", fc.Watch, &cfg.Watch)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
