package auth

import (
	"sync"
	"time"
)

const (
	// DefaultMaxFailures is the number of failed attempts before an account
	// is temporarily locked.
	DefaultMaxFailures = 5
	// DefaultLockoutWindow is how long a locked account stays locked. The
	// lock auto-clears afterwards and the failure counter resets.
	DefaultLockoutWindow = 5 * time.Minute
)

type lockoutEntry struct {
	failures    int
	lockedUntil time.Time
}

// LockoutTracker counts failed login attempts per account.
type LockoutTracker struct {
	mu          sync.Mutex
	entries     map[string]*lockoutEntry
	maxFailures int
	window      time.Duration
	now         func() time.Time
}

func NewLockoutTracker(maxFailures int, window time.Duration) *LockoutTracker {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if window <= 0 {
		window = DefaultLockoutWindow
	}
	return &LockoutTracker{
		entries:     make(map[string]*lockoutEntry),
		maxFailures: maxFailures,
		window:      window,
		now:         time.Now,
	}
}

// Locked reports whether the account is currently locked and, if so, how long
// until the lock clears.
func (t *LockoutTracker) Locked(username string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[username]
	if !ok {
		return false, 0
	}
	now := t.now()
	if entry.lockedUntil.IsZero() {
		return false, 0
	}
	if now.Before(entry.lockedUntil) {
		return true, entry.lockedUntil.Sub(now)
	}
	// Lock elapsed: clear it and reset the counter.
	delete(t.entries, username)
	return false, 0
}

// Fail records a failed attempt and reports whether it tripped the lock.
func (t *LockoutTracker) Fail(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[username]
	if !ok {
		entry = &lockoutEntry{}
		t.entries[username] = entry
	}
	entry.failures++
	if entry.failures >= t.maxFailures {
		entry.lockedUntil = t.now().Add(t.window)
		return true
	}
	return false
}

// Clear resets the failure counter after a successful login.
func (t *LockoutTracker) Clear(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, username)
}
