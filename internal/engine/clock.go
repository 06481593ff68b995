package engine

import "time"

// Clock is the loop's source of wall time.
//
// The loop only ever reads Now and asks to Sleep, so tests can substitute a
// clock that advances deterministically (see testutil.FakeClock) and get
// exact deltas.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// NewClock returns the wall clock.
func NewClock() Clock {
	return SystemClock{}
}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
