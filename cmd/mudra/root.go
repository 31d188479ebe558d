package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/bus"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/consumer"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/engine"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mudra",
	Short: "Mudra - hand gesture event pipeline",
	Long: `Mudra watches a camera for hands, debounces finger states, detects
directional swipes, and streams stable gesture events to one or more
consumers (stdout, an HTTP endpoint, a live window, a status server).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	defaults := config.Default()

	rootCmd.Flags().StringVar(&configPath, "config", "", "path to TOML config file")
	rootCmd.Flags().Int("camera", defaults.CameraID, "capture device index")
	rootCmd.Flags().String("consumer", defaults.Consumer, "output consumer (stdout or http)")
	rootCmd.Flags().String("url", "", "URL for the http consumer")
	rootCmd.Flags().Bool("show-window", false, "display the live camera feed")
	rootCmd.Flags().Int("frame-skip", defaults.FrameSkip, "process every Nth frame")
	rootCmd.Flags().Int("buffer-size", defaults.BufferSize, "frames to buffer for smoothing")
	rootCmd.Flags().Float64("gesture-threshold", defaults.GestureThreshold, "minimum movement to detect a swipe")
	rootCmd.Flags().Int("grace-frames", defaults.GraceFrames, "frames a hand may be missing before its state is dropped")
	rootCmd.Flags().String("listen", "", "serve status and websocket events on this address")
	rootCmd.Flags().String("record", "", "record emitted events to this sqlite database")
	rootCmd.Flags().Bool("lossless", false, "deliver every snapshot to the primary consumer")
	rootCmd.Flags().Bool("tray", false, "run under a system tray control")
}

// loadConfig merges the optional config file with any explicitly set flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("camera") {
		cfg.CameraID, _ = flags.GetInt("camera")
	}
	if flags.Changed("consumer") {
		cfg.Consumer, _ = flags.GetString("consumer")
	}
	if flags.Changed("url") {
		cfg.URL, _ = flags.GetString("url")
	}
	if flags.Changed("show-window") {
		cfg.ShowWindow, _ = flags.GetBool("show-window")
	}
	if flags.Changed("frame-skip") {
		cfg.FrameSkip, _ = flags.GetInt("frame-skip")
	}
	if flags.Changed("buffer-size") {
		cfg.BufferSize, _ = flags.GetInt("buffer-size")
	}
	if flags.Changed("gesture-threshold") {
		cfg.GestureThreshold, _ = flags.GetFloat64("gesture-threshold")
	}
	if flags.Changed("grace-frames") {
		cfg.GraceFrames, _ = flags.GetInt("grace-frames")
	}
	if flags.Changed("listen") {
		cfg.Listen, _ = flags.GetString("listen")
	}
	if flags.Changed("record") {
		cfg.RecordPath, _ = flags.GetString("record")
	}
	if flags.Changed("lossless") {
		cfg.Lossless, _ = flags.GetBool("lossless")
	}
	if flags.Changed("tray") {
		cfg.Tray, _ = flags.GetBool("tray")
	}

	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Hand detection: MediaPipe when available, mock otherwise so the
	// pipeline can still be exercised without the Python service.
	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		det = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		det = detector.NewMockDetector()
	}

	dispatcher := bus.New(bus.WithShutdownGrace(time.Duration(cfg.ShutdownGraceSeconds) * time.Second))

	// Primary consumer per --consumer.
	var primaryOpts []bus.RegisterOption
	if cfg.Lossless {
		primaryOpts = append(primaryOpts, bus.WithLossless())
	}
	switch cfg.Consumer {
	case config.ConsumerHTTP:
		if _, err := dispatcher.Register(consumer.NewHTTP(cfg.URL), primaryOpts...); err != nil {
			return err
		}
	default:
		if _, err := dispatcher.Register(consumer.NewStdout(), primaryOpts...); err != nil {
			return err
		}
	}

	var window *consumer.Window
	if cfg.ShowWindow {
		window = consumer.NewWindow("")
		if _, err := dispatcher.Register(window); err != nil {
			return err
		}
	}

	if cfg.RecordPath != "" {
		st, err := store.New(cfg.RecordPath)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		if _, err := dispatcher.Register(store.NewRecorder(st), bus.WithLossless()); err != nil {
			return err
		}
	}

	if cfg.Listen != "" {
		srv := server.New(cfg.Listen)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("start status server: %w", err)
		}
		if _, err := dispatcher.Register(srv); err != nil {
			return err
		}
		log.Printf("Status server listening on %s", cfg.Listen)
	}

	processor := engine.New(engine.Options{
		FrameSkip:        cfg.FrameSkip,
		BufferSize:       cfg.BufferSize,
		GestureThreshold: cfg.GestureThreshold,
		GraceFrames:      cfg.GraceFrames,
	})

	pipeline := app.New(app.Config{
		Camera:     capture.NewCamera(cfg.CameraID),
		Detector:   det,
		Processor:  processor,
		Dispatcher: dispatcher,
		Window:     window,
		Mirror:     true,
	})

	// Console interrupt and termination signal behave identically: the
	// context cancels, the loop stops, the dispatcher drains, exit 0.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tray {
		return runWithTray(ctx, stop, pipeline, processor, dispatcher)
	}
	return pipeline.Run(ctx)
}

// runWithTray runs the pipeline in the background while the tray loop
// owns the foreground, as the systray framework requires.
func runWithTray(ctx context.Context, stop context.CancelFunc, pipeline *app.App, processor *engine.Processor, dispatcher *bus.Dispatcher) error {
	t := tray.New()
	t.OnToggle(processor.SetEnabled)
	t.OnQuit(stop)
	if _, err := dispatcher.Register(tray.NewUpdater(t)); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- pipeline.Run(ctx)
		t.Quit()
	}()

	t.Run()
	return <-errCh
}
