package toast

import "time"

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

func (realScheduler) Now() time.Time { return time.Now() }

// RealScheduler uses the time package.
func RealScheduler() Scheduler { return realScheduler{} }
