package input

import (
	"errors"
	"testing"

	hook "github.com/robotn/gohook"

	"go.aimuz.me/refiner/gesture"
)

func newTestHub(x, y int) *Hub {
	h := &Hub{locate: func() (int, int) { return x, y }}
	h.running.Store(true)
	return h
}

func TestHub_SampleBeforeStart(t *testing.T) {
	h := &Hub{locate: func() (int, int) { return 0, 0 }}
	if _, err := h.Sample(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Sample() error = %v, want ErrNotStarted", err)
	}
}

func TestHub_ButtonState(t *testing.T) {
	h := newTestHub(120, 80)

	h.apply(hook.Event{Kind: hook.MouseHold, Button: 1, X: 100, Y: 100})
	s, err := h.Sample()
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if !s.Pressed(gesture.PrimaryButton) {
		t.Error("primary not pressed after MouseHold")
	}
	if s.Position != (gesture.Point{X: 120, Y: 80}) {
		t.Errorf("Position = %+v, want queried (120,80)", s.Position)
	}

	h.apply(hook.Event{Kind: hook.MouseHold, Button: 2})
	h.apply(hook.Event{Kind: hook.MouseDown, Button: 1})
	s, _ = h.Sample()
	if s.Pressed(1) || !s.Pressed(2) {
		t.Errorf("Buttons = %v, want only right pressed", s.Buttons)
	}
}

func TestHub_IgnoresUnknownButtons(t *testing.T) {
	h := newTestHub(0, 0)

	h.apply(hook.Event{Kind: hook.MouseHold, Button: 0})
	h.apply(hook.Event{Kind: hook.MouseHold, Button: 42})

	s, _ := h.Sample()
	for i, p := range s.Buttons {
		if p {
			t.Errorf("button %d pressed, want none", i)
		}
	}
}

func TestHub_SampleIsCopy(t *testing.T) {
	h := newTestHub(0, 0)
	h.apply(hook.Event{Kind: hook.MouseHold, Button: 1})

	s, _ := h.Sample()
	h.apply(hook.Event{Kind: hook.MouseDown, Button: 1})

	if !s.Pressed(1) {
		t.Error("earlier sample changed after later event")
	}
}

func TestHub_KeyListeners(t *testing.T) {
	h := newTestHub(0, 0)

	var got []uint8
	h.OnKey(func(ev hook.Event) { got = append(got, ev.Kind) })

	h.apply(hook.Event{Kind: hook.KeyHold, Keycode: 18})
	h.apply(hook.Event{Kind: hook.MouseMove, X: 5, Y: 6})
	h.apply(hook.Event{Kind: hook.KeyUp, Keycode: 18})

	if len(got) != 2 || got[0] != hook.KeyHold || got[1] != hook.KeyUp {
		t.Errorf("listener kinds = %v, want [KeyHold KeyUp]", got)
	}
	if x, y := h.Location(); x != 5 || y != 6 {
		t.Errorf("Location() = (%d,%d), want (5,6)", x, y)
	}
}
