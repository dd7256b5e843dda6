package gesture

import (
	"sync"
	"time"
)

// DefaultDebounceInterval is the minimum gap between two selection emissions.
const DefaultDebounceInterval = 300 * time.Millisecond

// Debouncer allows at most one emission per interval.
// It is safe for concurrent use.
type Debouncer struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
	set  bool
}

// NewDebouncer returns a Debouncer with the given interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// ShouldEmit reports whether an emission at now is allowed and, if so,
// records now as the last emission in the same critical section.
func (d *Debouncer) ShouldEmit(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	// A clock stepping backwards yields a negative gap and is rejected,
	// so last never decreases.
	if d.set && now.Sub(d.last) < d.interval {
		return false
	}
	d.last = now
	d.set = true
	return true
}

// LastEmitted returns the last allowed emission time, if any.
func (d *Debouncer) LastEmitted() (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.set
}

// Interval returns the configured window.
func (d *Debouncer) Interval() time.Duration {
	return d.interval
}
