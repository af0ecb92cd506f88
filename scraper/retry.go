package scraper

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/marketlens/go-scrape-products/fetch"
	"github.com/marketlens/go-scrape-products/models"
)

// retryPolicy wraps one logical fetch with bounded retries and
// exponential backoff. Every transient failure (fetch error or attempt
// timeout) consumes one attempt; maxRetries+1 attempts total.
type retryPolicy struct {
	maxRetries int
	backoff    time.Duration
	backoffMax time.Duration
	metrics    *Metrics
}

func newRetryPolicy(maxRetries int, backoff, backoffMax time.Duration, metrics *Metrics) *retryPolicy {
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	return &retryPolicy{
		maxRetries: maxRetries,
		backoff:    backoff,
		backoffMax: backoffMax,
		metrics:    metrics,
	}
}

// fetchWithRetry returns the fetched content and the number of attempts
// made. Exhausting the budget yields ErrFetchFailed wrapping the last
// failure reason.
func (rp *retryPolicy) fetchWithRetry(ctx context.Context, fetcher fetch.Fetcher, url string, opts fetch.Options) (*models.FetchedContent, int, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= rp.maxRetries; attempt++ {
		attempts++
		content, err := rp.attempt(ctx, fetcher, url, opts)
		if err == nil {
			return content, attempts, nil
		}
		lastErr = err

		slog.Debug("fetch attempt failed",
			slog.String("url", url),
			slog.Int("attempt", attempts),
			slog.Any("error", err),
		)

		if ctx.Err() != nil || attempt == rp.maxRetries {
			break
		}

		rp.metrics.IncRetries()
		if err := sleepCtx(ctx, rp.delay(attempt)); err != nil {
			break
		}
	}

	return nil, attempts, ErrFetchFailed{URL: url, Attempts: attempts, Err: lastErr}
}

// attempt runs a single fetch bounded by the per-attempt timeout.
func (rp *retryPolicy) attempt(ctx context.Context, fetcher fetch.Fetcher, url string, opts fetch.Options) (*models.FetchedContent, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return fetcher.Fetch(ctx, url, opts)
}

// delay is base*2^attempt capped at backoffMax, with jitter between half
// and the full value to keep concurrent retries from aligning.
func (rp *retryPolicy) delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := rp.backoff
	for i := 0; i < attempt && delay < rp.backoffMax; i++ {
		delay *= 2
	}
	if rp.backoffMax > 0 && delay > rp.backoffMax {
		delay = rp.backoffMax
	}
	half := delay / 2
	if half <= 0 {
		return delay
	}
	return half + rand.N(half)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
