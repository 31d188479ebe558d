package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable. Any error here is fatal
// and reported before processing begins.
func (c *Config) Validate() error {
	if c.FrameSkip < 1 {
		return errors.New("frame_skip must be at least 1")
	}
	if c.BufferSize < 1 {
		return errors.New("buffer_size must be at least 1")
	}
	if c.GestureThreshold <= 0 {
		return errors.New("gesture_threshold must be greater than 0")
	}
	if c.GraceFrames < 0 {
		return errors.New("grace_frames must not be negative")
	}
	if c.ShutdownGraceSeconds < 1 {
		return errors.New("shutdown_grace_seconds must be at least 1")
	}

	switch c.Consumer {
	case ConsumerStdout:
		// URL is ignored for stdout
	case ConsumerHTTP:
		if c.URL == "" {
			return errors.New("url is required when consumer is http")
		}
		u, err := url.Parse(c.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("url %q is not a valid absolute URL", c.URL)
		}
	default:
		return fmt.Errorf("unknown consumer %q (want %s or %s)", c.Consumer, ConsumerStdout, ConsumerHTTP)
	}

	return nil
}
