package gesture

import (
	"sync"
	"sync/atomic"
)

// IconBounds is the screen rectangle of the selection indicator.
type IconBounds struct {
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Width   int  `json:"width"`
	Height  int  `json:"height"`
	Visible bool `json:"visible"`
}

// IconRegistry records where the selection indicator is shown.
// The UI layer writes it; the sampling loop reads it.
type IconRegistry struct {
	mu                  sync.RWMutex
	x, y, width, height int

	visible atomic.Bool
}

// SetBounds updates the indicator rectangle.
func (r *IconRegistry) SetBounds(x, y, width, height int) {
	r.mu.Lock()
	r.x, r.y, r.width, r.height = x, y, width, height
	r.mu.Unlock()
}

// SetVisible marks the indicator as shown or hidden.
func (r *IconRegistry) SetVisible(visible bool) {
	r.visible.Store(visible)
}

// Visible reports whether the indicator is shown.
func (r *IconRegistry) Visible() bool {
	return r.visible.Load()
}

// Contains reports whether (px, py) lies inside the visible indicator.
// All four edges are inclusive. A hidden indicator contains nothing.
func (r *IconRegistry) Contains(px, py int) bool {
	if !r.visible.Load() {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return px >= r.x && px <= r.x+r.width &&
		py >= r.y && py <= r.y+r.height
}

// Bounds returns a snapshot of the indicator geometry.
func (r *IconRegistry) Bounds() IconBounds {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return IconBounds{
		X:       r.x,
		Y:       r.y,
		Width:   r.width,
		Height:  r.height,
		Visible: r.visible.Load(),
	}
}
