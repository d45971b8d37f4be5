package session

import (
	"sync"
	"time"
)

// IdleTimer fires a callback after a configurable duration unless stopped.
// It is safe for concurrent use.
type IdleTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewIdleTimer creates and starts a timer that calls onFire after duration.
// onFire is called in a separate goroutine.
//
// Precondition: duration > 0; onFire must not be nil.
// Postcondition: Returns a running IdleTimer; onFire will be called unless Stop is called first.
func NewIdleTimer(duration time.Duration, onFire func()) *IdleTimer {
	it := &IdleTimer{}
	it.timer = time.AfterFunc(duration, it.guard(onFire))
	return it
}

func (it *IdleTimer) guard(onFire func()) func() {
	return func() {
		it.mu.Lock()
		stopped := it.stopped
		it.mu.Unlock()
		if !stopped {
			onFire()
		}
	}
}

// Reset cancels the current countdown and starts a new one of duration.
//
// Precondition: duration > 0; onFire must not be nil.
// Postcondition: onFire will be called after duration from now unless Stop is called first.
func (it *IdleTimer) Reset(duration time.Duration, onFire func()) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.timer.Stop()
	it.stopped = false
	it.timer = time.AfterFunc(duration, it.guard(onFire))
}

// Stop prevents the callback from firing. Safe to call multiple times.
//
// Postcondition: onFire will not be called after Stop returns.
func (it *IdleTimer) Stop() {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.stopped = true
	it.timer.Stop()
}
