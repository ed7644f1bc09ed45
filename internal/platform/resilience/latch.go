package resilience

import (
	"sync"
	"time"
)

// Latch is a one-way switch. Once tripped it stays tripped for the lifetime
// of the value; there is no reset.
type Latch struct {
	mu      sync.Mutex
	tripped bool
	reason  error
	at      time.Time
	hooks   []func(reason error)
}

// Trip records the reason and runs registered hooks. Only the first call has
// any effect; it reports whether this call tripped the latch.
func (l *Latch) Trip(reason error, at time.Time) bool {
	l.mu.Lock()
	if l.tripped {
		l.mu.Unlock()
		return false
	}
	l.tripped = true
	l.reason = reason
	l.at = at
	hooks := l.hooks
	l.hooks = nil
	l.mu.Unlock()

	for _, hook := range hooks {
		hook(reason)
	}
	return true
}

func (l *Latch) Tripped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tripped
}

// Reason is nil until the latch trips.
func (l *Latch) Reason() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reason
}

func (l *Latch) At() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.at
}

// OnTrip registers fn to run once when the latch trips. If it already
// tripped, fn runs immediately.
func (l *Latch) OnTrip(fn func(reason error)) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if !l.tripped {
		l.hooks = append(l.hooks, fn)
		l.mu.Unlock()
		return
	}
	reason := l.reason
	l.mu.Unlock()
	fn(reason)
}
