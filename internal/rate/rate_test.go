package rate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for deterministic algorithm
// tests (property 4 / scenario S5 don't need a real sleep to verify the
// catch-up math).
type fakeClock struct {
	ms int64
}

func (f *fakeClock) now() int64 { return f.ms }
func (f *fakeClock) advance(d int64) int64 {
	f.ms += d
	return f.ms
}

func TestSteadyCadenceNoDrift(t *testing.T) {
	fc := &fakeClock{ms: 0}
	c := newWithClock(10, fc.now) // 100ms interval

	for i := 0; i < 5; i++ {
		fc.advance(100) // exactly on schedule
		d := c.remainingMs()
		require.Equal(t, int64(0), d)
	}
}

func TestWorkWithinPeriodSleepsRemainder(t *testing.T) {
	fc := &fakeClock{ms: 0}
	c := newWithClock(10, fc.now) // 100ms interval

	fc.advance(60) // work took 60ms, well within the period
	d := c.remainingMs()
	require.Equal(t, int64(40), d)
}

func TestCatchUpAfterStallResyncsWithoutUnboundedDebt(t *testing.T) {
	fc := &fakeClock{ms: 0}
	c := newWithClock(10, fc.now) // 100ms interval

	// A stall of 350ms is more than one period (100ms) past the nominal
	// end of the first period; the controller must resync to "now"
	// instead of trying to sleep off the backlog.
	fc.advance(350)
	d := c.remainingMs()
	require.Equal(t, int64(0), d)
	require.Equal(t, int64(350), c.start)

	// The next period starts fresh from the resync point.
	fc.advance(100)
	d = c.remainingMs()
	require.Equal(t, int64(0), d)
}

func TestClockGoingBackwardsRebasesInterval(t *testing.T) {
	fc := &fakeClock{ms: 1000}
	c := newWithClock(10, fc.now)

	fc.ms = 500 // clock stepped backwards
	d := c.remainingMs()
	require.Equal(t, int64(100), d)
}
