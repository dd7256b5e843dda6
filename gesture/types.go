// Package gesture turns polled pointer state into selection gestures.
//
// A Service samples the pointer on a fixed cadence, classifies button edges
// into clicks, double-clicks and drags, and reports the result to a single
// handler running on the sampling goroutine.
package gesture

import (
	"context"
	"fmt"
)

// PrimaryButton is the selection button id (left button in libuiohook numbering).
const PrimaryButton = 1

// Point is a screen position in pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PointerSample is one snapshot of pointer position and button state.
// Buttons is indexed by button id; index 0 is unused.
type PointerSample struct {
	Position Point
	Buttons  []bool
}

// Pressed reports whether button is held in the sample.
func (s PointerSample) Pressed(button int) bool {
	return button >= 0 && button < len(s.Buttons) && s.Buttons[button]
}

// Edge is the direction of a button transition.
type Edge int

const (
	Pressed Edge = iota + 1
	Released
)

func (e Edge) String() string {
	switch e {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	default:
		return "unknown"
	}
}

// Transition is a button edge found between two consecutive samples.
type Transition struct {
	Button int
	Edge   Edge
}

// Diff returns the button transitions from prev to cur in ascending button order.
// A button missing from one sample counts as released.
func Diff(prev, cur PointerSample) []Transition {
	n := max(len(prev.Buttons), len(cur.Buttons))
	var out []Transition
	for i := 0; i < n; i++ {
		was, is := prev.Pressed(i), cur.Pressed(i)
		switch {
		case !was && is:
			out = append(out, Transition{Button: i, Edge: Pressed})
		case was && !is:
			out = append(out, Transition{Button: i, Edge: Released})
		}
	}
	return out
}

// EventKind identifies a gesture event.
type EventKind int

const (
	EventButtonPressed EventKind = iota + 1
	EventButtonReleased
	EventMove
	EventTextSelected
	EventClickOutsideIcon
)

func (k EventKind) String() string {
	switch k {
	case EventButtonPressed:
		return "button-pressed"
	case EventButtonReleased:
		return "button-released"
	case EventMove:
		return "move"
	case EventTextSelected:
		return "text-selected"
	case EventClickOutsideIcon:
		return "click-outside-icon"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is the only output of the service.
//
// Button is set for press/release events, Text for TextSelected.
// Position is the pointer position at the time the event was produced.
type Event struct {
	Kind     EventKind
	Button   int
	Position Point
	Text     string
}

// Handler receives gesture events on the sampling goroutine.
type Handler func(Event)

// TextReader reads the text currently selected in the foreground application.
type TextReader interface {
	ReadSelectedText(ctx context.Context) (string, error)
}

// TextReaderFunc adapts a function to TextReader.
type TextReaderFunc func(ctx context.Context) (string, error)

func (f TextReaderFunc) ReadSelectedText(ctx context.Context) (string, error) {
	return f(ctx)
}

// EnabledFunc reports whether gesture-triggered extraction is enabled.
// An error is treated as disabled.
type EnabledFunc func(ctx context.Context) (bool, error)

// AlwaysEnabled is an EnabledFunc that never disables extraction.
func AlwaysEnabled(context.Context) (bool, error) { return true, nil }
