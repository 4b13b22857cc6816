package clock

import "time"

// Clock abstracts time so services stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

// Now returns the current time in UTC; cache metadata timestamps
// must never carry a local offset.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
