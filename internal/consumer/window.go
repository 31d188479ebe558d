package consumer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/fingers"
	"gocv.io/x/gocv"
)

// WindowRefreshInterval paces the repaint loop at roughly 15 FPS.
const WindowRefreshInterval = 66 * time.Millisecond

// Window displays the live camera feed with the latest stable hand states
// overlaid. Accept only stores the snapshot; an internal ticker repaints
// continuously, so the display cadence is decoupled from event cadence and
// the dispatcher handoff never waits on rendering.
type Window struct {
	name string

	mu    sync.Mutex
	snap  event.Snapshot
	frame gocv.Mat
	dirty bool

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewWindow creates a Window consumer and starts its repaint loop.
func NewWindow(name string) *Window {
	if name == "" {
		name = "Gesture Detector"
	}
	w := &Window{
		name:  name,
		frame: gocv.NewMat(),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Accept stores the latest snapshot for the repaint loop.
func (w *Window) Accept(_ context.Context, snap event.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snap = snap
	return nil
}

// SetFrame stores a copy of the latest raw camera frame. Called by the
// capture loop, not through the dispatcher.
func (w *Window) SetFrame(frame *gocv.Mat) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.frame.Empty() {
		w.frame.Close()
	}
	w.frame = frame.Clone()
	w.dirty = true
}

// run owns the window handle. All HighGUI calls stay on this goroutine.
func (w *Window) run() {
	defer close(w.done)

	window := gocv.NewWindow(w.name)
	defer window.Close()

	ticker := time.NewTicker(WindowRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.paint(window)
		}
	}
}

func (w *Window) paint(window *gocv.Window) {
	w.mu.Lock()
	if w.frame.Empty() {
		w.mu.Unlock()
		return
	}
	canvas := w.frame.Clone()
	snap := w.snap
	w.mu.Unlock()
	defer canvas.Close()

	blue := color.RGBA{B: 255}
	for i, hand := range snap.Hands {
		text := fmt.Sprintf("%s - %s", hand.Label, fingers.PoseName(hand.Fingers))
		if hand.Gesture != event.GestureNone {
			text = fmt.Sprintf("%s (%s)", text, hand.Gesture)
		}
		gocv.PutText(&canvas, text, image.Pt(10, 50+40*i), gocv.FontHersheySimplex, 1, blue, 2)
	}

	window.IMShow(canvas)
	window.WaitKey(1)
}

// Close stops the repaint loop and releases the window and frame buffer.
func (w *Window) Close() error {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	<-w.done

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.frame.Empty() {
		w.frame.Close()
	}
	return nil
}

// Name identifies the consumer in dispatcher logs.
func (w *Window) Name() string {
	return "window"
}
