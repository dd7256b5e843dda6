// Package hotkey detects a global key combination from the input hook.
package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	hook "github.com/robotn/gohook"

	"go.aimuz.me/refiner/gesture"
	"go.aimuz.me/refiner/input"
)

// ErrInvalidCombo is returned for combos that cannot be parsed.
var ErrInvalidCombo = errors.New("invalid hotkey combo")

// DefaultDebounce suppresses repeated triggers from key auto-repeat and
// quick double presses.
const DefaultDebounce = 300 * time.Millisecond

// modifierKeys maps modifier names to the gohook key names of both sides.
var modifierKeys = map[string][]string{
	"ctrl":    {"ctrl", "rctrl"},
	"control": {"ctrl", "rctrl"},
	"alt":     {"alt", "ralt"},
	"option":  {"alt", "ralt"},
	"shift":   {"shift", "rshift"},
	"cmd":     {"cmd", "rcmd"},
	"command": {"cmd", "rcmd"},
	"super":   {"cmd", "rcmd"},
	"win":     {"cmd", "rcmd"},
	"meta":    {"cmd", "rcmd"},
}

// Combo is a parsed key combination: every modifier group must have one
// key held when Key goes down.
type Combo struct {
	Modifiers [][]uint16
	Key       uint16
	text      string
}

func (c Combo) String() string { return c.text }

// ParseCombo parses strings like "cmd+shift+e".
func ParseCombo(s string) (Combo, error) {
	combo := Combo{text: strings.ToLower(strings.TrimSpace(s))}
	if combo.text == "" {
		return Combo{}, fmt.Errorf("%w: empty", ErrInvalidCombo)
	}

	var key string
	for _, part := range strings.Split(combo.text, "+") {
		part = strings.TrimSpace(part)
		if names, ok := modifierKeys[part]; ok {
			var codes []uint16
			for _, name := range names {
				if code, ok := hook.Keycode[name]; ok {
					codes = append(codes, code)
				}
			}
			if len(codes) == 0 {
				return Combo{}, fmt.Errorf("%w: unsupported modifier %q", ErrInvalidCombo, part)
			}
			combo.Modifiers = append(combo.Modifiers, codes)
			continue
		}
		if key != "" {
			return Combo{}, fmt.Errorf("%w: more than one key in %q", ErrInvalidCombo, s)
		}
		key = part
	}

	if key == "" {
		return Combo{}, fmt.Errorf("%w: no key in %q", ErrInvalidCombo, s)
	}
	code, ok := hook.Keycode[key]
	if !ok {
		return Combo{}, fmt.Errorf("%w: unknown key %q", ErrInvalidCombo, key)
	}
	combo.Key = code
	return combo, nil
}

// Manager calls a function when its combo is pressed.
type Manager struct {
	combo    Combo
	callback func()
	debounce *gesture.Debouncer

	enabled atomic.Bool

	mu      sync.Mutex
	pressed map[uint16]bool

	now func() time.Time
	// run starts the callback; it must not block the hook goroutine.
	run func(func())
}

// NewManager returns an enabled Manager for combo.
func NewManager(combo string, callback func()) (*Manager, error) {
	c, err := ParseCombo(combo)
	if err != nil {
		return nil, err
	}
	m := &Manager{
		combo:    c,
		callback: callback,
		debounce: gesture.NewDebouncer(DefaultDebounce),
		pressed:  make(map[uint16]bool),
		now:      time.Now,
		run:      func(fn func()) { go fn() },
	}
	m.enabled.Store(true)
	return m, nil
}

// Attach subscribes the manager to key events from hub.
func (m *Manager) Attach(hub *input.Hub) {
	hub.OnKey(m.handle)
	slog.Info("hotkey registered", "combo", m.Combo())
}

// SetEnabled turns the shortcut on or off without detaching it.
func (m *Manager) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// Combo returns the parsed combination.
func (m *Manager) Combo() Combo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.combo
}

// SetCombo replaces the combination. Keys currently held are forgotten.
func (m *Manager) SetCombo(combo string) error {
	c, err := ParseCombo(combo)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.combo = c
	clear(m.pressed)
	m.mu.Unlock()
	slog.Info("hotkey changed", "combo", c)
	return nil
}

func (m *Manager) handle(ev hook.Event) {
	switch ev.Kind {
	case hook.KeyHold:
		if m.press(ev.Keycode) && m.enabled.Load() && m.debounce.ShouldEmit(m.now()) {
			slog.Debug("hotkey triggered", "combo", m.Combo())
			m.run(m.callback)
		}
	case hook.KeyUp:
		m.mu.Lock()
		delete(m.pressed, ev.Keycode)
		m.mu.Unlock()
	}
}

// press records a key going down and reports whether it completes the combo.
// Auto-repeat of a held key does not count.
func (m *Manager) press(code uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pressed[code] {
		return false
	}
	m.pressed[code] = true

	if code != m.combo.Key {
		return false
	}
	for _, group := range m.combo.Modifiers {
		held := false
		for _, c := range group {
			if m.pressed[c] {
				held = true
				break
			}
		}
		if !held {
			return false
		}
	}
	return true
}
