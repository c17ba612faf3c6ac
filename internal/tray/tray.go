// Package tray shows the interaction status in the system tray.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/handgraph/internal/interact"
)

// Tray is the system tray menu. It implements the app status sink.
type Tray struct {
	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()
	enabled    bool
	status     interact.Status
	mu         sync.RWMutex

	menuToggle     *systray.MenuItem
	menuState      *systray.MenuItem
	menuAction     *systray.MenuItem
	menuConfidence *systray.MenuItem
}

// New creates a Tray reflecting the given enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
		status:  interact.Status{State: interact.StateInactive, Action: "No hands detected", Confidence: "-"},
	}
}

// OnToggle sets the callback for the enable toggle.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback for "Open Settings...".
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. It blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit stops the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Handgraph")
	systray.SetTooltip("Handgraph hand interaction")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand tracking")
	systray.AddSeparator()

	t.menuState = systray.AddMenuItem(t.status.State, "Tracking state")
	t.menuState.Disable()
	t.menuAction = systray.AddMenuItem(t.status.Action, "Current action")
	t.menuAction.Disable()
	t.menuConfidence = systray.AddMenuItem(t.status.Confidence, "Gesture confidence")
	t.menuConfidence.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Handgraph")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// outside the lock: the callback publishes a status back to us
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	systray.Quit()
}

// UpdateStatus mirrors the three status channels into the menu.
func (t *Tray) UpdateStatus(s interact.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = s
	if t.menuState == nil {
		return
	}
	t.menuState.SetTitle(s.State)
	t.menuAction.SetTitle(s.Action)
	t.menuConfidence.SetTitle(s.Confidence)
}

// Status returns the last status received.
func (t *Tray) Status() interact.Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// IsEnabled returns the toggle state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
