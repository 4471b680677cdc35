package core

import "sync"

// busyFlag gates chat turns: at most one may be in flight.
type busyFlag struct {
	mu   sync.Mutex
	busy bool
}

// tryAcquire sets the flag and reports whether it was previously clear.
func (b *busyFlag) tryAcquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.busy {
		return false
	}
	b.busy = true
	return true
}

func (b *busyFlag) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.busy = false
}

func (b *busyFlag) isBusy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.busy
}
