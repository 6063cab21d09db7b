package adapter

import "time"

// Timer is a cancellable one-shot timer.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Executor runs f on the goroutine that owns the list. A terminal UI
// passes a function that posts f into its event loop.
type Executor func(f func())

type timeScheduler struct {
	exec Executor
}

// NewScheduler returns a Scheduler backed by time.AfterFunc. Expired
// callbacks are handed to exec, which must run them on the list's owner.
// It panics when exec is nil.
func NewScheduler(exec Executor) Scheduler {
	if exec == nil {
		panic("adapter: NewScheduler needs an executor")
	}
	return timeScheduler{exec: exec}
}

func (s timeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, func() { s.exec(f) })
}
