package gesture

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDoubleClickWindow is the maximum gap between two primary presses
// that still counts as a double-click.
const DefaultDoubleClickWindow = 500 * time.Millisecond

type checkKind int

const (
	checkNone checkKind = iota
	checkDoubleClick
	checkDrag
)

func (k checkKind) String() string {
	switch k {
	case checkDoubleClick:
		return "double-click"
	case checkDrag:
		return "drag"
	default:
		return "none"
	}
}

// step is one classifier output: either an event to dispatch or a
// selection-check to run, in the order they must happen.
type step struct {
	event Event
	check checkKind
}

// classifier is the primary-button state machine.
// Only the sampling loop calls classify; the atomics and mutexes let other
// goroutines read the state.
type classifier struct {
	primary           int
	doubleClickWindow time.Duration
	dragSelect        bool
	doubleClickSelect bool
	icon              *IconRegistry

	// DragExtent
	active atomic.Bool
	dragMu sync.Mutex
	start  Point

	// ClickTiming
	clickMu   sync.Mutex
	lastClick time.Time
	hasClick  bool
}

func newClassifier(cfg Config, icon *IconRegistry) *classifier {
	return &classifier{
		primary:           cfg.PrimaryButton,
		doubleClickWindow: cfg.DoubleClickWindow,
		dragSelect:        cfg.DragSelect,
		doubleClickSelect: cfg.DoubleClickSelect,
		icon:              icon,
	}
}

// classify compares two consecutive samples taken at now.
func (c *classifier) classify(prev, cur PointerSample, now time.Time) []step {
	wasActive := c.active.Load()

	var steps []step
	for _, tr := range Diff(prev, cur) {
		switch tr.Edge {
		case Pressed:
			steps = append(steps, eventStep(EventButtonPressed, tr.Button, cur.Position))
			if tr.Button == c.primary {
				steps = c.press(steps, cur.Position, now)
			}
		case Released:
			steps = append(steps, eventStep(EventButtonReleased, tr.Button, cur.Position))
			if tr.Button == c.primary {
				steps = c.release(steps, cur.Position)
			}
		}
	}

	// Move needs the button held across both samples; the press tick and
	// the release tick carry their position on the button event itself.
	if wasActive && c.active.Load() && cur.Position != prev.Position {
		steps = append(steps, step{event: Event{Kind: EventMove, Position: cur.Position}})
	}
	return steps
}

func (c *classifier) press(steps []step, pos Point, now time.Time) []step {
	c.dragMu.Lock()
	c.start = pos
	c.dragMu.Unlock()
	c.active.Store(true)

	if c.icon.Visible() && !c.icon.Contains(pos.X, pos.Y) {
		steps = append(steps, step{event: Event{Kind: EventClickOutsideIcon, Position: pos}})
	}

	if c.registerClick(now) && c.doubleClickSelect {
		steps = append(steps, step{check: checkDoubleClick})
	}
	return steps
}

// registerClick records a primary press and reports whether it completes
// a double-click. The second press of a pair clears the click time so a
// third press starts a new pair.
func (c *classifier) registerClick(now time.Time) bool {
	c.clickMu.Lock()
	defer c.clickMu.Unlock()

	if c.hasClick && now.Sub(c.lastClick) < c.doubleClickWindow {
		c.hasClick = false
		c.lastClick = time.Time{}
		return true
	}
	c.lastClick = now
	c.hasClick = true
	return false
}

func (c *classifier) release(steps []step, pos Point) []step {
	// A release without a recorded press (button held when sampling began)
	// has no drag extent to evaluate.
	if !c.active.Swap(false) {
		return steps
	}

	c.dragMu.Lock()
	start := c.start
	c.dragMu.Unlock()

	if start != pos && c.dragSelect {
		steps = append(steps, step{check: checkDrag})
	}
	return steps
}

func (c *classifier) selecting() bool {
	return c.active.Load()
}

func eventStep(kind EventKind, button int, pos Point) step {
	return step{event: Event{Kind: kind, Button: button, Position: pos}}
}
