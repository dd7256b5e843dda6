// Package input owns the global input hook.
//
// libuiohook allows a single hook per process, so the Hub starts it once
// and serves both consumers: pointer sampling for gesture detection and
// key events for the global shortcut.
package input

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-vgo/robotgo"
	hook "github.com/robotn/gohook"

	"go.aimuz.me/refiner/gesture"
)

// ErrNotStarted is returned by Sample before Start.
var ErrNotStarted = errors.New("input hook not started")

// buttonSlots covers libuiohook button ids 1..5; index 0 is unused.
const buttonSlots = 6

const stopTimeout = time.Second

// KeyListener receives key events from the hook goroutine.
type KeyListener func(hook.Event)

// Hub tracks mouse button state from the hook event stream and forwards
// key events to listeners.
type Hub struct {
	mu      sync.RWMutex
	buttons [buttonSlots]bool
	pos     gesture.Point

	listenersMu sync.RWMutex
	listeners   []KeyListener

	running atomic.Bool
	done    chan struct{}

	// locate queries the cursor position. Defaults to robotgo.Location.
	locate func() (int, int)
}

// NewHub returns a stopped Hub.
func NewHub() *Hub {
	return &Hub{locate: robotgo.Location}
}

// Start installs the global hook. It returns immediately.
func (h *Hub) Start() error {
	if !h.running.CompareAndSwap(false, true) {
		return nil
	}

	events := hook.Start()
	if events == nil {
		h.running.Store(false)
		return errors.New("start input hook: nil event channel")
	}

	h.done = make(chan struct{})
	go h.consume(events, h.done)
	slog.Info("input hook started")
	return nil
}

// Stop removes the global hook and waits briefly for the event goroutine.
func (h *Hub) Stop() {
	if !h.running.CompareAndSwap(true, false) {
		return
	}
	hook.End()
	select {
	case <-h.done:
	case <-time.After(stopTimeout):
		slog.Warn("input hook did not drain", "timeout", stopTimeout)
	}
	slog.Info("input hook stopped")
}

// OnKey registers a listener for key events.
func (h *Hub) OnKey(fn KeyListener) {
	h.listenersMu.Lock()
	h.listeners = append(h.listeners, fn)
	h.listenersMu.Unlock()
}

// Sample implements gesture.Sampler. Button state comes from the hook;
// the position is queried from the OS on each call.
func (h *Hub) Sample() (gesture.PointerSample, error) {
	if !h.running.Load() {
		return gesture.PointerSample{}, ErrNotStarted
	}

	x, y := h.locate()

	h.mu.Lock()
	h.pos = gesture.Point{X: x, Y: y}
	buttons := make([]bool, buttonSlots)
	copy(buttons, h.buttons[:])
	h.mu.Unlock()

	return gesture.PointerSample{Position: gesture.Point{X: x, Y: y}, Buttons: buttons}, nil
}

// Location returns the last known cursor position, querying the OS when
// the hook is not running.
func (h *Hub) Location() (int, int) {
	if !h.running.Load() {
		return h.locate()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.pos.X, h.pos.Y
}

func (h *Hub) consume(events chan hook.Event, done chan struct{}) {
	defer close(done)
	for ev := range events {
		h.apply(ev)
	}
}

// apply folds one hook event into the hub state.
//
// gohook names follow libuiohook event ids: MouseHold is the press and
// MouseDown the release. KeyHold is the key press and KeyUp its release.
func (h *Hub) apply(ev hook.Event) {
	switch ev.Kind {
	case hook.MouseHold:
		h.setButton(ev, true)
	case hook.MouseDown:
		h.setButton(ev, false)
	case hook.MouseMove, hook.MouseDrag:
		h.mu.Lock()
		h.pos = gesture.Point{X: int(ev.X), Y: int(ev.Y)}
		h.mu.Unlock()
	case hook.KeyDown, hook.KeyHold, hook.KeyUp:
		h.listenersMu.RLock()
		listeners := h.listeners
		h.listenersMu.RUnlock()
		for _, fn := range listeners {
			fn(ev)
		}
	}
}

func (h *Hub) setButton(ev hook.Event, pressed bool) {
	b := int(ev.Button)
	if b <= 0 || b >= buttonSlots {
		return
	}
	h.mu.Lock()
	h.buttons[b] = pressed
	h.pos = gesture.Point{X: int(ev.X), Y: int(ev.Y)}
	h.mu.Unlock()
}
