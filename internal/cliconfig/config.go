package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/vpxview/internal/adapters/raster"
	"github.com/bft-labs/vpxview/internal/domain"
	"github.com/bft-labs/vpxview/pkg/log"
	"github.com/bft-labs/vpxview/pkg/vpx"
)

// Display backends.
const (
	BackendHTTP = "http"
	BackendFile = "file"
)

// DefaultAddr is the default listen address of the browser display.
const DefaultAddr = "127.0.0.1:8089"

// Config holds CLI configuration for vpxview.
type Config struct {
	// Input is the container to inspect.
	Input string

	// Internals is the block-internals dump. Derived from Input when empty.
	Internals string

	Backend string
	Addr    string
	Out     string

	Zoom         int
	MVScale      float64
	LabelMinSize int

	Fills   bool
	Vectors bool
	Labels  bool

	Resume        bool
	Watch         bool
	WatchDebounce time.Duration
	StateDir      string
	LogLevel      string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Backend:       BackendHTTP,
		Addr:          DefaultAddr,
		Zoom:          2,
		MVScale:       1.0,
		LabelMinSize:  16,
		Vectors:       true,
		WatchDebounce: 250 * time.Millisecond,
		LogLevel:      "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("%w: input file is required", domain.ErrInvalidConfig)
	}

	switch c.Backend {
	case BackendHTTP:
		if c.Addr == "" {
			c.Addr = DefaultAddr
		}
	case BackendFile:
		if c.Out == "" {
			c.Out = strings.TrimSuffix(c.Input, filepath.Ext(c.Input)) + ".overlay.png"
		}
	default:
		return fmt.Errorf("%w: unknown backend %q (want %s or %s)",
			domain.ErrInvalidConfig, c.Backend, BackendHTTP, BackendFile)
	}

	if c.Internals == "" {
		c.Internals = c.Input + vpx.DumpSuffix
	}

	if c.StateDir == "" {
		if h, err := os.UserHomeDir(); err == nil {
			c.StateDir = filepath.Join(h, ".vpxview", "state")
		} else {
			c.StateDir = filepath.Join(os.TempDir(), "vpxview")
		}
	}

	if c.Zoom < 1 || c.Zoom > raster.MaxZoom {
		return fmt.Errorf("%w: zoom must be between 1 and %d", domain.ErrInvalidConfig, raster.MaxZoom)
	}
	if c.MVScale <= 0 {
		return fmt.Errorf("%w: mv scale must be positive", domain.ErrInvalidConfig)
	}
	if c.LabelMinSize <= 0 {
		return fmt.Errorf("%w: label min size must be positive", domain.ErrInvalidConfig)
	}
	if c.Watch && c.WatchDebounce <= 0 {
		return fmt.Errorf("%w: watch debounce must be positive", domain.ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	return nil
}

// Overlay returns the initial overlay layer selection.
func (c *Config) Overlay() domain.OverlayFlags {
	return domain.OverlayFlags{Fills: c.Fills, Vectors: c.Vectors, Labels: c.Labels}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
