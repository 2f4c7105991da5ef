package common

import "time"

// Clock returns the current time. Production code uses SystemClock; tests pin it.
type Clock func() time.Time

// SystemClock reads the real wall clock in the process location.
func SystemClock() time.Time {
	return time.Now()
}

// FixedClock always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// Now is nil-safe: a nil clock falls back to the system clock.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
