package guard

import "time"

// Clock supplies the current time. The guard's window arithmetic is
// the only time-sensitive logic in the service, so it takes the clock
// as an explicit dependency instead of calling time.Now directly.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock used in production wiring.
func SystemClock() Clock { return systemClock{} }
