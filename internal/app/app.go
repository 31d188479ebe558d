// Package app wires the capture loop, hand detection, the processing
// engine, and the dispatcher into a running pipeline.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/ayusman/mudra/internal/bus"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/consumer"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/engine"
	"gocv.io/x/gocv"
)

// Config holds the collaborators for a pipeline run.
type Config struct {
	Camera     capture.Camera
	Detector   detector.Detector
	Processor  *engine.Processor
	Dispatcher *bus.Dispatcher

	// Window, when set, receives a copy of every captured frame for its
	// independent repaint loop.
	Window *consumer.Window

	// Mirror flips frames horizontally for a natural selfie view.
	Mirror bool
}

// App runs the frame acquisition loop. The loop is strictly sequential:
// per-hand histories are owned by the processor and must advance in frame
// order, so detection and processing never overlap between frames.
type App struct {
	cfg Config
}

// New creates an App with the given collaborators.
func New(cfg Config) *App {
	return &App{cfg: cfg}
}

// Run opens the camera and processes frames until the context is
// canceled or the source is exhausted, then drains the dispatcher.
// A camera that cannot be opened is a fatal startup error.
func (a *App) Run(ctx context.Context) error {
	if err := a.cfg.Camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	defer func() {
		a.cfg.Dispatcher.Shutdown()
		if err := a.cfg.Camera.Close(); err != nil {
			log.Printf("error closing camera: %v", err)
		}
		if err := a.cfg.Detector.Close(); err != nil {
			log.Printf("error closing detector: %v", err)
		}
	}()

	log.Println("Pipeline started")

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutdown signal received, stopping pipeline")
			return nil
		default:
		}

		frame, err := a.cfg.Camera.ReadFrame()
		if err != nil {
			// The source is gone (camera unplugged or playback ended).
			log.Printf("frame source ended: %v", err)
			return nil
		}

		a.processFrame(frame)
	}
}

// processFrame runs one frame through detection and the engine. The frame
// is always closed before returning.
func (a *App) processFrame(frame *gocv.Mat) {
	defer frame.Close()

	if a.cfg.Mirror {
		gocv.Flip(*frame, frame, 1)
	}

	if a.cfg.Window != nil {
		a.cfg.Window.SetFrame(frame)
	}

	hands, err := a.cfg.Detector.Detect(frame)
	if err != nil {
		// Malformed or failed detection skips the frame, the feed goes on.
		log.Printf("skipping frame: %v", err)
		return
	}

	snap, changed := a.cfg.Processor.Process(hands)
	if changed {
		a.cfg.Dispatcher.Publish(snap)
	}
}
