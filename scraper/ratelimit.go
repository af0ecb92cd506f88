package scraper

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// domainLimiter paces outbound requests per target domain with token
// buckets. Waiting for one domain never blocks scrapes of another.
type domainLimiter struct {
	enabled  bool
	interval time.Duration
	burst    int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newDomainLimiter(enabled bool, interval time.Duration, burst int) *domainLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &domainLimiter{
		enabled:  enabled,
		interval: interval,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait suspends until the domain's bucket has capacity, or the context
// is done. It returns immediately when the limiter is disabled.
func (dl *domainLimiter) Wait(ctx context.Context, domain string) error {
	if !dl.enabled {
		return nil
	}
	return dl.limiterFor(domain).Wait(ctx)
}

// wouldBlock reports whether a request for domain would have to wait,
// without consuming a token.
func (dl *domainLimiter) wouldBlock(domain string) bool {
	if !dl.enabled {
		return false
	}
	return dl.limiterFor(domain).Tokens() < 1
}

func (dl *domainLimiter) limiterFor(domain string) *rate.Limiter {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	limiter, ok := dl.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(dl.interval), dl.burst)
		dl.limiters[domain] = limiter
	}
	return limiter
}
