package worker

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter implements per-host rate limiting with an optional fixed delay
// before every call
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
	preDelay     time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewLimiter creates a new rate limiter. A non-positive rate disables the
// token bucket and leaves only the pre-delay.
func NewLimiter(requestsPerSecond float64, burst int, preDelay time.Duration) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
		preDelay:     preDelay,
		sleep:        sleepContext,
	}
}

// Wait waits for rate limit clearance for the given URL
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host, err := extractHost(rawURL)
	if err != nil {
		return err
	}

	return l.getLimiter(host).Wait(ctx)
}

// Throttle sleeps the fixed pre-delay and then waits for the host's rate
// limit. It is applied before every listing request.
func (l *Limiter) Throttle(ctx context.Context, rawURL string) error {
	if err := l.sleep(ctx, l.preDelay); err != nil {
		return err
	}
	return l.Wait(ctx, rawURL)
}

// getLimiter returns the rate limiter for a host
func (l *Limiter) getLimiter(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[host]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[host] = limiter

	return limiter
}

// SetHostDelay lowers a host's rate to one request per delay, as asked by
// its robots.txt crawl-delay. A delay that is not stricter than the
// current rate is ignored.
func (l *Limiter) SetHostDelay(host string, delay time.Duration) {
	if delay <= 0 {
		return
	}
	limit := rate.Every(delay)

	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.defaultRate
	if existing, ok := l.limiters[host]; ok {
		current = existing.Limit()
	}
	if current <= limit {
		return
	}
	l.limiters[host] = rate.NewLimiter(limit, 1)
}

// extractHost extracts the host from a URL
func extractHost(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return parsed.Host, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
