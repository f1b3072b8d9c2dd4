package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	httpAdapter "github.com/bft-labs/vpxview/internal/adapters/http"
	"github.com/bft-labs/vpxview/internal/adapters/raster"
	termAdapter "github.com/bft-labs/vpxview/internal/adapters/term"
	"github.com/bft-labs/vpxview/internal/cliconfig"
	"github.com/bft-labs/vpxview/pkg/log"
	"github.com/bft-labs/vpxview/pkg/overlay"
	"github.com/bft-labs/vpxview/pkg/viewer"
	"github.com/bft-labs/vpxview/pkg/vpx"
	"github.com/bft-labs/vpxview/plugins/filewatcher"
)

const helpDescription = `
Step through a VP9 or VP8 stream one frame at a time and see how the encoder
carved each picture: partition outlines, prediction modes, motion vectors and
transform sizes drawn over the decoded image.

Block internals come from a dump written next to the container
(<file>.blocks.jsonl, one JSON line per frame). Without one the pictures are
shown bare.

Keys:
  LEFT / RIGHT   previous / next frame
  F / M / L      toggle mode fills, motion vectors, labels
  Q / ESC        quit (the current view is saved for --resume)
`

var exampleUsage = strings.TrimSpace(`
  vpxview clip.ivf
  vpxview --backend file --out /tmp/frame.png --labels clip.ivf
  vpxview --resume --watch --config $HOME/.vpxview/config.yaml clip.ivf
  vpxview inspect --frame 3 clip.ivf
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	bootLog := log.NewZerologAdapter()

	root := &cobra.Command{
		Use:           "vpxview [flags] <file.ivf>",
		Short:         "Inspect the block internals of VP9/VP8 frames",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Input = args[0]
			if err := loadConfig(cmd, cfgPath, &cfg); err != nil {
				return err
			}

			logger, err := log.NewZerologAdapterLevel(os.Stderr, cfg.LogLevel)
			if err != nil {
				return err
			}
			logger.Debug("configuration", log.Any("config", cfg))

			return run(cfg, logger)
		},
	}

	// Flags
	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file, TOML or YAML (default: $HOME/.vpxview/config.toml)")
	f.StringVar(&cfg.Internals, "internals", cfg.Internals, "block internals dump (default: <file>"+vpx.DumpSuffix+")")
	f.StringVar(&cfg.Backend, "backend", cfg.Backend, "display backend: http (browser) or file (PNG + terminal keys)")
	f.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address of the http backend")
	f.StringVar(&cfg.Out, "out", cfg.Out, "output image of the file backend (default: <file>.overlay.png)")
	f.IntVar(&cfg.Zoom, "zoom", cfg.Zoom, fmt.Sprintf("integer zoom factor, 1 to %d", raster.MaxZoom))
	f.Float64Var(&cfg.MVScale, "mv-scale", cfg.MVScale, "arrow pixels per 1/8-pel motion vector unit (0.125: true length)")
	f.IntVar(&cfg.LabelMinSize, "label-min-size", cfg.LabelMinSize, "smallest block width in pixels that gets a label")
	f.BoolVar(&cfg.Fills, "fills", cfg.Fills, "start with prediction mode fills on")
	f.BoolVar(&cfg.Vectors, "vectors", cfg.Vectors, "start with motion vectors on")
	f.BoolVar(&cfg.Labels, "labels", cfg.Labels, "start with block labels on")
	f.BoolVar(&cfg.Resume, "resume", cfg.Resume, "reopen at the frame and layers saved on the last quit")
	f.BoolVar(&cfg.Watch, "watch", cfg.Watch, "reload when the container or its dump changes")
	f.DurationVar(&cfg.WatchDebounce, "watch-debounce", cfg.WatchDebounce, "quiet period before a watched change reloads")
	f.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for saved views (default: $HOME/.vpxview/state)")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")

	root.AddCommand(newInspectCommand())

	if err := root.Execute(); err != nil {
		bootLog.Error("vpxview", log.Err(err))
		os.Exit(1)
	}
}

// loadConfig layers the config file, then VPXVIEW_* variables, under the
// flags set on cmd, and validates the result.
func loadConfig(cmd *cobra.Command, cfgPath string, cfg *cliconfig.Config) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	// Build set of changed flags
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	} else if cfgPath != "" {
		return fmt.Errorf("load config: %s does not exist", cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}

	return cfg.Validate()
}

func run(cfg cliconfig.Config, logger *log.ZerologAdapter) error {
	compositor, err := raster.NewCompositor(cfg.Zoom)
	if err != nil {
		return err
	}

	var display viewer.Display
	switch cfg.Backend {
	case cliconfig.BackendHTTP:
		display = httpAdapter.NewDisplay(cfg.Addr, compositor, logger)
		logger.Info("open the viewer in a browser", log.String("url", "http://"+cfg.Addr+"/"))
	case cliconfig.BackendFile:
		surface := raster.NewFileSurface(compositor, cfg.Out, logger)
		display = termAdapter.NewDisplay(surface, os.Stdin, os.Stdout, logger)
		logger.Info("writing frames", log.String("out", cfg.Out))
	}

	opts := []viewer.Option{
		viewer.WithLogger(logger),
		viewer.WithDisplay(display),
	}
	if cfg.Watch {
		opts = append(opts, filewatcher.WithFileWatcher(filewatcher.Config{DebounceDelay: cfg.WatchDebounce}))
	}

	v, err := viewer.New(viewer.Config{
		Input:     cfg.Input,
		Internals: cfg.Internals,
		Overlay:   cfg.Overlay(),
		Resume:    cfg.Resume,
		StateDir:  cfg.StateDir,
		Render: overlay.Params{
			MVScale:      cfg.MVScale,
			LabelMinSize: cfg.LabelMinSize,
		},
	}, opts...)
	if err != nil {
		return fmt.Errorf("create viewer: %w", err)
	}

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := v.Run(ctx); err != nil {
		return err
	}
	logger.Info("bye")
	return nil
}

func newInspectCommand() *cobra.Command {
	var internals, logLevel string
	frame := -1

	cmd := &cobra.Command{
		Use:   "inspect [flags] <file.ivf>",
		Short: "Print the container header, frame directory and optionally one frame's model as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := log.NewZerologAdapterLevel(os.Stderr, logLevel)
			if err != nil {
				return err
			}
			if internals == "" {
				internals = args[0] + vpx.DumpSuffix
			}
			return inspect(cmd.OutOrStdout(), args[0], internals, frame, logger)
		},
	}

	cmd.Flags().IntVar(&frame, "frame", frame, "zero-based frame whose partition model is printed (-1: none)")
	cmd.Flags().StringVar(&internals, "internals", "", "block internals dump (default: <file>"+vpx.DumpSuffix+")")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	return cmd
}
