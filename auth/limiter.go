package auth

import (
	"sync"
	"time"
)

const (
	maxFailedAttempts = 5
	lockoutWindow     = 15 * time.Minute
)

type attempt struct {
	count int
	first time.Time
}

// attemptLimiter tracks failed password attempts per email and locks an
// identity out after maxFailedAttempts inside the window. State is
// in-memory; a restart clears it.
type attemptLimiter struct {
	mu    sync.Mutex
	seen  map[string]attempt
	clock func() time.Time
}

func newAttemptLimiter() *attemptLimiter {
	return &attemptLimiter{seen: make(map[string]attempt), clock: time.Now}
}

func (l *attemptLimiter) locked(email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.seen[email]
	if !ok {
		return false
	}
	if l.clock().Sub(a.first) > lockoutWindow {
		delete(l.seen, email)
		return false
	}
	return a.count >= maxFailedAttempts
}

func (l *attemptLimiter) record(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.seen[email]
	if !ok || l.clock().Sub(a.first) > lockoutWindow {
		l.seen[email] = attempt{count: 1, first: l.clock()}
		return
	}
	a.count++
	l.seen[email] = a
}

func (l *attemptLimiter) reset(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.seen, email)
}
