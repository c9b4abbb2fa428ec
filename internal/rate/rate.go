// Package rate implements the per-sensor rate controller (§4.9, C9): a
// fixed-hz pacer with bounded catch-up, so a producer that falls behind
// under load resynchronizes instead of accumulating unbounded sleep
// debt.
package rate

import (
	"time"

	"tinyskpub/internal/clock"
)

// Controller paces calls to Sleep at a target rate. The zero value is
// not usable; use New.
type Controller struct {
	intervalMs int64
	start      int64
	now        func() int64
}

// New builds a Controller for hz samples per second. hz must be > 0.
func New(hz int) *Controller {
	return newWithClock(hz, clock.MonotonicNowMs)
}

func newWithClock(hz int, now func() int64) *Controller {
	return &Controller{
		intervalMs: int64(1000 / hz),
		start:      now(),
		now:        now,
	}
}

// remainingMs runs the §4.9 algorithm and returns the number of
// milliseconds the caller should sleep before its next tick (0 if it is
// already at or behind the nominal schedule).
func (c *Controller) remainingMs() int64 {
	expectedEnd := c.start + c.intervalMs
	actualEnd := c.now()

	if actualEnd < c.start {
		// Clock went backwards; rebase the period from now.
		expectedEnd = actualEnd + c.intervalMs
	}
	c.start = expectedEnd

	if actualEnd > expectedEnd {
		if actualEnd > expectedEnd+c.intervalMs {
			// Fell behind by more than one period: resynchronize instead
			// of accumulating sleep debt.
			c.start = actualEnd
		}
		return 0
	}
	return expectedEnd - actualEnd
}

// Sleep blocks for the remainder of the current period, or returns
// immediately without sleeping if the caller has fallen behind (with
// bounded catch-up per §4.9). stop, if non-nil, preempts the wait so a
// shutdown signal can interrupt a long sleep (§5: every thread checks a
// shared stop flag at least once per sample period).
func (c *Controller) Sleep(stop <-chan struct{}) {
	d := c.remainingMs()
	if d <= 0 {
		return
	}
	if stop == nil {
		time.Sleep(time.Duration(d) * time.Millisecond)
		return
	}
	select {
	case <-time.After(time.Duration(d) * time.Millisecond):
	case <-stop:
	}
}
