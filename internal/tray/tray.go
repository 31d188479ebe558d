// Package tray provides an optional system tray control for the pipeline:
// a pause/resume toggle and a quit item.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray controls.
type Tray struct {
	onToggle func(enabled bool)
	onQuit   func()
	enabled  bool
	last     string
	mu       sync.RWMutex

	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a new Tray instance with processing enabled by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback invoked when the pause/resume item is clicked.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnQuit sets the callback invoked when the quit item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// SetLastGesture updates the informational "last gesture" menu entry.
// Safe to call before the tray is ready; the value is applied once the
// menu exists.
func (t *Tray) SetLastGesture(name string) {
	t.mu.Lock()
	t.last = name
	item := t.menuLast
	t.mu.Unlock()
	if item != nil {
		item.SetTitle("Last: " + name)
	}
}

// Run starts the system tray. This blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit tears the tray down and unblocks Run.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra Gesture Events")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem("● Running", "Pause or resume gesture processing")
	systray.AddSeparator()
	lastTitle := "Last: none"
	if t.last != "" {
		lastTitle = "Last: " + t.last
	}
	t.menuLast = systray.AddMenuItem(lastTitle, "Last detected gesture")
	t.menuLast.Disable()
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Stop the pipeline and exit")
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.toggle()
			case <-menuQuit.ClickedCh:
				t.mu.RLock()
				onQuit := t.onQuit
				t.mu.RUnlock()
				if onQuit != nil {
					onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) toggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	onToggle := t.onToggle
	item := t.menuToggle
	t.mu.Unlock()

	if enabled {
		item.SetTitle("● Running")
	} else {
		item.SetTitle("○ Paused")
	}
	if onToggle != nil {
		onToggle(enabled)
	}
}

func (t *Tray) onExit() {}
