package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (VPXVIEW_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("internals", os.Getenv("VPXVIEW_INTERNALS"), &cfg.Internals)
	s.setString("backend", os.Getenv("VPXVIEW_BACKEND"), &cfg.Backend)
	s.setString("addr", os.Getenv("VPXVIEW_ADDR"), &cfg.Addr)
	s.setString("out", os.Getenv("VPXVIEW_OUT"), &cfg.Out)
	s.setString("state-dir", os.Getenv("VPXVIEW_STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", os.Getenv("VPXVIEW_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("watch-debounce", os.Getenv("VPXVIEW_WATCH_DEBOUNCE"), &cfg.WatchDebounce); err != nil {
		return err
	}

	if err := s.setFloatFromString("mv-scale", os.Getenv("VPXVIEW_MV_SCALE"), &cfg.MVScale); err != nil {
		return err
	}

	if err := s.setIntFromString("zoom", os.Getenv("VPXVIEW_ZOOM"), &cfg.Zoom); err != nil {
		return err
	}
	if err := s.setIntFromString("label-min-size", os.Getenv("VPXVIEW_LABEL_MIN_SIZE"), &cfg.LabelMinSize); err != nil {
		return err
	}

	s.setBoolFromString("fills", os.Getenv("VPXVIEW_FILLS"), &cfg.Fills)
	s.setBoolFromString("vectors", os.Getenv("VPXVIEW_VECTORS"), &cfg.Vectors)
	s.setBoolFromString("labels", os.Getenv("VPXVIEW_LABELS"), &cfg.Labels)
	s.setBoolFromString("resume", os.Getenv("VPXVIEW_RESUME"), &cfg.Resume)
	s.setBoolFromString("watch", os.Getenv("VPXVIEW_WATCH"), &cfg.Watch)

	return nil
}
