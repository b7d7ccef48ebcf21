package parking

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}
