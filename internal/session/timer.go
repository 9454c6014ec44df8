package session

import (
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultBudget is the reservation window of a session.
	DefaultBudget = 15 * time.Minute
	// UrgentThreshold is when the countdown is worth highlighting.
	UrgentThreshold = 5 * time.Minute
)

// Timer is the session countdown. It ticks once per second on its clock;
// the session loop calls Tick for every value received from C.
type Timer struct {
	clock     clockwork.Clock
	deadline  time.Time
	remaining int
	ticker    clockwork.Ticker
}

// NewTimer starts a countdown of budget, rounded up to whole seconds.
func NewTimer(clock clockwork.Clock, budget time.Duration) *Timer {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Timer{
		clock:     clock,
		deadline:  clock.Now().Add(budget),
		remaining: ceilSeconds(budget),
		ticker:    clock.NewTicker(time.Second),
	}
}

// C delivers ticks. It is nil once the timer is stopped, so a select on it
// never fires again.
func (t *Timer) C() <-chan time.Time {
	if t.ticker == nil {
		return nil
	}
	return t.ticker.Chan()
}

// Tick updates the countdown from the clock and reports whether it reached
// zero. Ticks dropped by a slow receiver are caught up here, and the
// countdown never increases.
func (t *Timer) Tick() bool {
	if t.ticker == nil {
		return t.remaining == 0
	}
	left := ceilSeconds(t.deadline.Sub(t.clock.Now()))
	if left >= t.remaining {
		left = t.remaining - 1
	}
	if left < 0 {
		left = 0
	}
	t.remaining = left
	if t.remaining == 0 {
		t.Stop()
		return true
	}
	return false
}

// Remaining is the countdown in whole seconds.
func (t *Timer) Remaining() int {
	return t.remaining
}

func (t *Timer) Urgent() bool {
	return time.Duration(t.remaining)*time.Second < UrgentThreshold
}

// Stop releases the ticker. It is safe to call more than once.
func (t *Timer) Stop() {
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
}

func (t *Timer) Stopped() bool {
	return t.ticker == nil
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
