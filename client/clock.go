package client

import "time"

// Stopper cancels a pending callback.
type Stopper interface {
	Stop() bool
}

// Clock is the time source used for scheduling.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}
