package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Bucket sweep tuning. Limiter keys are owner UUIDs (step sync) and client
// IPs (auth), both rate-limited on minute windows, so a bucket untouched for
// five minutes carries no useful state and is dropped.
const (
	sweepInterval = 30 * time.Second
	idleAfter     = 5 * time.Minute
)

// tokenBucket tracks the spendable tokens for one key. remaining is
// fractional: refill accrues continuously rather than in whole-token steps.
type tokenBucket struct {
	remaining float64
	refreshed time.Time
}

// MemoryLimiter is a per-key token bucket held in process memory. It backs
// the step-sync and auth limits on single-instance deployments where no
// cross-instance coordination is needed; configure REDIS_URL to get the
// shared RedisLimiter instead.
//
// Each key earns rate tokens per second up to the burst capacity, and every
// allowed request spends one. A background sweeper drops idle buckets so
// abandoned owners and one-off IPs do not accumulate.
type MemoryLimiter struct {
	rate     float64 // tokens earned per second
	capacity float64 // burst ceiling

	mu      sync.Mutex
	entries map[string]*tokenBucket

	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryLimiter creates a limiter sustaining rate requests per second per
// key with bursts up to burst. Call Close to stop the background sweeper.
func NewMemoryLimiter(rate float64, burst int) *MemoryLimiter {
	m := &MemoryLimiter{
		rate:     rate,
		capacity: float64(burst),
		entries:  make(map[string]*tokenBucket),
		done:     make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Allow spends one token from key's bucket, reporting whether one was
// available. A key seen for the first time starts with a full bucket.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.entries[key]
	if !ok {
		b = &tokenBucket{remaining: m.capacity, refreshed: now}
		m.entries[key] = b
	} else {
		earned := now.Sub(b.refreshed).Seconds() * m.rate
		b.remaining += earned
		if b.remaining > m.capacity {
			b.remaining = m.capacity
		}
		b.refreshed = now
	}

	if b.remaining < 1 {
		return false, nil
	}
	b.remaining--
	return true, nil
}

// Close stops the sweeper goroutine. Safe to call more than once.
func (m *MemoryLimiter) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	return nil
}

func (m *MemoryLimiter) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.dropIdle(now)
		}
	}
}

// dropIdle removes every bucket not refreshed since now minus the idle
// threshold. A dropped key simply starts over with a full bucket, which is
// strictly more permissive, never less.
func (m *MemoryLimiter) dropIdle(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, b := range m.entries {
		if now.Sub(b.refreshed) > idleAfter {
			delete(m.entries, key)
		}
	}
}
