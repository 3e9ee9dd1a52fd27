package signal

import (
	"sync"
	"time"

	"github.com/dkeye/Composite/internal/app"
)

// IntentRateLimiter allows at most limit intents per session in any
// sliding interval.
type IntentRateLimiter struct {
	mu       sync.Mutex
	history  map[app.SessionID][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewIntentRateLimiter(limit int, interval time.Duration) *IntentRateLimiter {
	return &IntentRateLimiter{
		history:  make(map[app.SessionID][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *IntentRateLimiter) Allow(sid app.SessionID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[sid]
	fresh := attempts[:0]
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[sid] = fresh
		return false
	}
	rl.history[sid] = append(fresh, now)
	return true
}

// Forget drops the history of a session that went away.
func (rl *IntentRateLimiter) Forget(sid app.SessionID) {
	rl.mu.Lock()
	delete(rl.history, sid)
	rl.mu.Unlock()
}
