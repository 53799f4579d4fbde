// Package schedule registers the single deferred continuation that chains
// ticks together. The contract is replace-don't-stack: at most one
// continuation is pending at any time.
package schedule

import (
	"sync"
	"time"
)

// Scheduler defers one invocation of the traversal entry point.
type Scheduler interface {
	// Replace cancels any pending continuation and registers a new one
	// after d.
	Replace(d time.Duration)
	// Cancel drops the pending continuation, if any.
	Cancel()
}

// TimerScheduler fires a callback once per Replace via time.AfterFunc.
type TimerScheduler struct {
	mu    sync.Mutex
	timer *time.Timer
	fn    func()
}

// NewTimer creates a scheduler invoking fn when a continuation fires.
func NewTimer(fn func()) *TimerScheduler {
	return &TimerScheduler{fn: fn}
}

func (s *TimerScheduler) Replace(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, s.fn)
}

func (s *TimerScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

var _ Scheduler = (*TimerScheduler)(nil)
