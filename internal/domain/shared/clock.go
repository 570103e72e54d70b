package shared

import "time"

// Clock abstracts the time source so duration-based rules (backup retention,
// sales windows, depletion forecasts) stay testable with fixed timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the ambient system time
type SystemClock struct{}

// Now returns the current system time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant. Intended for tests.
type FixedClock struct {
	Instant time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time {
	return c.Instant
}
