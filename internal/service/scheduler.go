package service

import "time"

// Scheduler schedules fire-and-forget delayed tasks. Scheduled tasks
// are not cancellable; their effect applies to the underlying match
// state regardless of what is currently visible.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// TimerScheduler schedules tasks on real wall-clock timers.
type TimerScheduler struct{}

// AfterFunc runs f after d on its own goroutine.
func (TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
