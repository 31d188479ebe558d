// Package config holds the pipeline configuration: capture, smoothing,
// gesture, and consumer options, loadable from a TOML file and
// overridable by CLI flags.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Consumer kinds selectable via the consumer option.
const (
	ConsumerStdout = "stdout"
	ConsumerHTTP   = "http"
)

// Config is the full application configuration.
type Config struct {
	// CameraID is the capture device index.
	CameraID int `toml:"camera_id"`

	// FrameSkip processes every Nth captured frame. Histories advance
	// only on processed frames, so higher values raise the effective
	// smoothing latency.
	FrameSkip int `toml:"frame_skip"`

	// BufferSize is the per-hand history depth, in processed frames.
	// 1 disables smoothing.
	BufferSize int `toml:"buffer_size"`

	// GestureThreshold is the normalized displacement a swipe must cover.
	GestureThreshold float64 `toml:"gesture_threshold"`

	// GraceFrames is how many processed frames a hand may be missing
	// before its state is dropped.
	GraceFrames int `toml:"grace_frames"`

	// Consumer selects the primary output: stdout or http.
	Consumer string `toml:"consumer"`

	// URL is the endpoint for the http consumer.
	URL string `toml:"url"`

	// ShowWindow enables the live display window.
	ShowWindow bool `toml:"show_window"`

	// Listen enables the status server on the given address when set.
	Listen string `toml:"listen"`

	// RecordPath enables the sqlite event log at the given path when set.
	RecordPath string `toml:"record_path"`

	// Lossless makes the primary consumer's queue unbounded so every
	// snapshot is delivered, at the cost of memory under backpressure.
	Lossless bool `toml:"lossless"`

	// ShutdownGraceSeconds bounds how long shutdown waits for consumers.
	ShutdownGraceSeconds int `toml:"shutdown_grace_seconds"`

	// Tray runs the pipeline under a system tray control.
	Tray bool `toml:"tray"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		CameraID:             0,
		FrameSkip:            1,
		BufferSize:           5,
		GestureThreshold:     0.1,
		GraceFrames:          10,
		Consumer:             ConsumerStdout,
		ShutdownGraceSeconds: 5,
	}
}

// Load reads a TOML config file over the defaults. The path is always
// user-supplied, so a file that cannot be read is an error rather than a
// silent fallback to defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
