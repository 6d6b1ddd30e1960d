package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vinhng/gatewatch/internal/fault"
	redisclient "github.com/vinhng/gatewatch/internal/infra/redis"
)

// RateLimitConfig bounds per-client request rates.
type RateLimitConfig struct {
	Enabled     bool
	MaxRequests int
	Window      time.Duration
}

// DefaultRateLimitConfig returns sensible defaults.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:     true,
		MaxRequests: 60,
		Window:      time.Minute,
	}
}

type bucket struct {
	count       int
	windowStart time.Time
}

// RateLimiter tracks per-client request counts over a fixed window. When a
// Redis client is supplied the counters live there and survive restarts;
// otherwise an in-memory map is used.
type RateLimiter struct {
	cfg   RateLimitConfig
	redis *redisclient.Client
	log   *slog.Logger

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewRateLimiter creates a limiter. redis may be nil.
func NewRateLimiter(cfg RateLimitConfig, redis *redisclient.Client, log *slog.Logger) *RateLimiter {
	if log == nil {
		log = slog.Default()
	}
	return &RateLimiter{
		cfg:     cfg,
		redis:   redis,
		log:     log,
		buckets: make(map[string]*bucket),
	}
}

// Allow records one request for the client and returns a classified
// rate-limit error when the budget is exceeded.
func (l *RateLimiter) Allow(ctx context.Context, clientID string) error {
	if !l.cfg.Enabled {
		return nil
	}

	if l.redis != nil {
		count, err := l.redis.IncrWindow(ctx, clientID, l.cfg.Window)
		if err == nil {
			if count > int64(l.cfg.MaxRequests) {
				return fault.RateLimited(clientID, l.cfg.MaxRequests)
			}
			return nil
		}
		// Redis trouble must not turn into denied requests. Classify,
		// log, fall through to the in-memory path.
		fault.LogFailure(l.log, fault.Classify(err, fault.Context{Dependency: "redis"}), "ratelimit")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[clientID]
	if !ok || now.Sub(b.windowStart) >= l.cfg.Window {
		l.buckets[clientID] = &bucket{count: 1, windowStart: now}
		return nil
	}

	b.count++
	if b.count > l.cfg.MaxRequests {
		return fault.RateLimited(clientID, l.cfg.MaxRequests)
	}
	return nil
}

// CleanupExpired evicts buckets whose window has passed and returns how
// many were removed. Redis-side counters expire on their own TTL.
func (l *RateLimiter) CleanupExpired() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, b := range l.buckets {
		if now.Sub(b.windowStart) >= l.cfg.Window {
			delete(l.buckets, id)
			removed++
		}
	}
	return removed
}

// TrackedClients returns the number of clients with live buckets.
func (l *RateLimiter) TrackedClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
