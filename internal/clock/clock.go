// Package clock provides the two time sources the pipeline needs: a
// wall-clock reading for frame timestamps, and a monotonic reading for
// pacing that must not be perturbed by clock steps (NTP slews, manual
// date changes).
package clock

import (
	"time"

	"golang.org/x/sys/unix"
)

// WallNowNs returns the current wall-clock time as nanoseconds since the
// Unix epoch. This is the source for Frame.TimestampNs (§3): it is
// portable across processes and machines, unlike a monotonic reading.
func WallNowNs() uint64 {
	return uint64(time.Now().UnixNano())
}

// MonotonicNowMs returns a monotonic clock reading in milliseconds,
// suitable only for measuring elapsed time within this process. It must
// never be used as a frame timestamp.
func MonotonicNowMs() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// Falls back to wall-clock milliseconds from time.Now (not
		// monotonic); this never fails in practice on supported platforms,
		// but a rate controller must never panic on a clock read.
		return time.Now().UnixMilli()
	}
	return ts.Sec*1000 + ts.Nsec/1_000_000
}
