package engine

import "time"

// Timer is a one-shot countdown advanced by explicit ticks rather than the
// wall clock. A cancelled or fired timer stays idle until Schedule is called
// again.
type Timer struct {
	remaining time.Duration
	pending   bool
}

// Schedule arms the timer to fire after d, replacing any earlier schedule.
func (t *Timer) Schedule(d time.Duration) {
	if d < 0 {
		d = 0
	}
	t.remaining = d
	t.pending = true
}

// Advance subtracts dt and reports whether the timer fired on this call.
// It fires at most once per Schedule.
func (t *Timer) Advance(dt time.Duration) bool {
	if !t.pending {
		return false
	}
	t.remaining -= dt
	if t.remaining > 0 {
		return false
	}
	t.remaining = 0
	t.pending = false
	return true
}

// Cancel disarms the timer.
func (t *Timer) Cancel() {
	t.pending = false
	t.remaining = 0
}

// Pending reports whether the timer is armed.
func (t *Timer) Pending() bool { return t.pending }

// Remaining returns the time left before the timer fires, zero when idle.
func (t *Timer) Remaining() time.Duration { return t.remaining }
