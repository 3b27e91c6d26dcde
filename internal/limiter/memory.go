package limiter

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process limiter for the file-store mode, where no SQL
// backend is available. Same window/lockout semantics as the PG limiter;
// state does not survive a restart.
type Memory struct {
	mu        sync.Mutex
	entries   map[string]*memEntry
	window    time.Duration
	maxFails  int
	blockFor  time.Duration
	lastPrune time.Time
}

type memEntry struct {
	failCount    int
	blockedUntil time.Time
	updatedAt    time.Time
}

// NewMemory constructs an in-memory limiter.
func NewMemory(window time.Duration, maxFails int, blockFor time.Duration) *Memory {
	return &Memory{
		entries:  make(map[string]*memEntry),
		window:   window,
		maxFails: maxFails,
		blockFor: blockFor,
	}
}

func memKey(email string, ipHash []byte) string {
	return email + "\x00" + string(ipHash)
}

// pruneLocked drops entries whose window and block have both expired, so
// attempts against junk emails do not accumulate for the process lifetime.
// Sweeps at most once per window; callers hold the mutex.
func (l *Memory) pruneLocked(now time.Time) {
	if now.Sub(l.lastPrune) < l.window {
		return
	}
	l.lastPrune = now
	for k, e := range l.entries {
		if now.Sub(e.updatedAt) > l.window && !e.blockedUntil.After(now) {
			delete(l.entries, k)
		}
	}
}

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *Memory) Allow(_ context.Context, email string, ipHash []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(time.Now())
	e, ok := l.entries[memKey(email, ipHash)]
	if !ok {
		return true, 0, nil
	}
	if e.blockedUntil.After(time.Now()) {
		return false, time.Until(e.blockedUntil), nil
	}
	return true, 0, nil
}

// Success resets counters for (email, ip).
func (l *Memory) Success(_ context.Context, email string, ipHash []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, memKey(email, ipHash))
	return nil
}

// Failure records a failed attempt; may set a block until a future time.
func (l *Memory) Failure(_ context.Context, email string, ipHash []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	l.pruneLocked(now)
	key := memKey(email, ipHash)
	e, ok := l.entries[key]
	if !ok || now.Sub(e.updatedAt) > l.window {
		e = &memEntry{}
		l.entries[key] = e
		e.failCount = 0
	}
	e.failCount++
	e.updatedAt = now
	if e.failCount >= l.maxFails {
		e.blockedUntil = now.Add(l.blockFor)
		return true, l.blockFor, nil
	}
	return false, 0, nil
}
