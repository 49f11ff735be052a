// Package clock abstracts deferred callbacks so timers can be driven by a
// virtual clock in tests.
package clock

import "time"

// CancelFunc stops a scheduled callback. It reports true if the call
// prevented the callback from running.
type CancelFunc func() bool

// Scheduler runs fn once after d.
type Scheduler interface {
	After(d time.Duration, fn func()) CancelFunc
}

type realScheduler struct{}

// Real returns a Scheduler backed by time.AfterFunc.
func Real() Scheduler { return realScheduler{} }

func (realScheduler) After(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return t.Stop
}
