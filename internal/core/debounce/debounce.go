// Package debounce delays an action until its trigger has been quiet for a
// fixed window.
package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer keeps at most one pending call. Trigger replaces it, Stop drops it.
type Debouncer struct {
	clock  clockwork.Clock
	window time.Duration
	fn     func()

	mu      sync.Mutex
	timer   clockwork.Timer
	gen     uint64
	stopped bool
}

func New(clock clockwork.Clock, window time.Duration, fn func()) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Debouncer{
		clock:  clock,
		window: window,
		fn:     fn,
	}
}

// Trigger cancels the pending call, if any, and schedules a new one after the
// full window. It is a no-op after Stop.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.window, func() { d.fire(gen) })
}

// Pending reports whether a call is scheduled and not yet run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.timer != nil
}

// Stop cancels the pending call and disables the debouncer for good.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A timer that could not be stopped in time is superseded by a newer one.
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}
