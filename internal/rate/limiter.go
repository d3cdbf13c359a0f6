package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds limiter tuning parameters. MaxAttempts is the bucket burst;
// the bucket refills fully over Cooldown.
type Config struct {
	Enabled     bool
	MaxAttempts int
	Cooldown    time.Duration
}

// Limiter enforces per-key login attempt budgets.
type Limiter struct {
	cfg Config

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// New creates a [Limiter]. Returns nil when cfg.Enabled is false; a nil
// Limiter allows every attempt.
func New(cfg Config) *Limiter {
	if !cfg.Enabled {
		return nil
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}
	return &Limiter{
		cfg:     cfg,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Allow consumes one attempt for key and reports whether it was within
// budget.
func (l *Limiter) Allow(key string) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		refill := rate.Every(l.cfg.Cooldown / time.Duration(l.cfg.MaxAttempts))
		bucket = rate.NewLimiter(refill, l.cfg.MaxAttempts)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	return bucket.Allow()
}

// Reset clears the budget for key. Called after a successful login.
func (l *Limiter) Reset(key string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
}
