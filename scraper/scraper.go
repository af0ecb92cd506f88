// Package scraper implements the product scrape agent: URL
// classification, rate-limited and retried fetching, extraction, and
// usage statistics behind a single facade.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/marketlens/go-scrape-products/config"
	"github.com/marketlens/go-scrape-products/fetch"
	"github.com/marketlens/go-scrape-products/models"
	"github.com/marketlens/go-scrape-products/sources"
)

// Agent is the public entry point of the acquisition pipeline. It is
// safe for concurrent use; stats and rate-limiter state are the only
// mutable state shared across in-flight scrapes.
type Agent struct {
	cfg      *config.Config
	fetcher  fetch.Fetcher
	registry *sources.Registry
	limiter  *domainLimiter
	retry    *retryPolicy
	cache    *resultCache
	Metrics  *Metrics

	totalRequests     atomic.Int64
	successfulScrapes atomic.Int64
	failedScrapes     atomic.Int64
}

// NewAgent builds an agent from cfg. A nil fetcher selects the default:
// the fetch-service client when an API key is configured, the direct
// fetcher otherwise.
func NewAgent(cfg *config.Config, fetcher fetch.Fetcher) (*Agent, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if fetcher == nil {
		if cfg.FetchServiceAPIKey != "" {
			fetcher = fetch.NewClient(cfg.FetchServiceBaseURL, cfg.FetchServiceAPIKey, cfg.UserAgent, cfg.DefaultTimeout)
		} else {
			fetcher = fetch.NewDirect(cfg.UserAgent, cfg.DefaultTimeout)
		}
	}

	metrics := NewMetrics()
	return &Agent{
		cfg:      cfg,
		fetcher:  fetcher,
		registry: sources.Default(),
		limiter:  newDomainLimiter(cfg.RespectRateLimit, cfg.RateLimitInterval, cfg.RateLimitBurst),
		retry:    newRetryPolicy(cfg.MaxRetries, cfg.RetryBackoff, cfg.RetryBackoffMax, metrics),
		cache:    newResultCache(cfg.CacheSize),
		Metrics:  metrics,
	}, nil
}

// ScrapeProduct runs the full pipeline for one request. Every failure
// mode is folded into the returned result; it never panics and the
// result always satisfies the Data/Error invariant.
func (a *Agent) ScrapeProduct(ctx context.Context, req models.ScrapingRequest) *models.ScrapingResult {
	if ctx == nil {
		ctx = context.Background()
	}

	a.totalRequests.Add(1)
	a.Metrics.IncRequest("started")

	result := a.scrape(ctx, req)
	if result.Success {
		a.successfulScrapes.Add(1)
		a.Metrics.IncRequest("succeeded")
	} else {
		a.failedScrapes.Add(1)
		a.Metrics.IncRequest("failed")
	}
	return result
}

// Process is the generic entry point used by callers that hold untyped
// input. Only a URL string is accepted; anything else fails immediately
// with ErrInvalidInput, before any classification or network activity.
func (a *Agent) Process(ctx context.Context, input any) (*models.ScrapingResult, error) {
	url, ok := input.(string)
	if !ok {
		return nil, fmt.Errorf("%w, got %T", ErrInvalidInput, input)
	}
	return a.ScrapeProduct(ctx, models.ScrapingRequest{URL: url, Priority: "normal"}), nil
}

// IsURLSupported reports whether url belongs to a registered source.
func (a *Agent) IsURLSupported(url string) bool {
	return a.registry.IsSupported(url)
}

// SupportedSources returns the read-only source registry keyed by id.
func (a *Agent) SupportedSources() map[string]models.SourceDescriptor {
	return a.registry.Supported()
}

// Stats returns a snapshot of the lifetime counters.
func (a *Agent) Stats() models.ScrapingStats {
	return models.ScrapingStats{
		TotalRequests:     a.totalRequests.Load(),
		SuccessfulScrapes: a.successfulScrapes.Load(),
		FailedScrapes:     a.failedScrapes.Load(),
	}
}

// ResetStats zeroes all counters. In-flight requests still record their
// eventual outcome against the fresh counters.
func (a *Agent) ResetStats() {
	a.totalRequests.Store(0)
	a.successfulScrapes.Store(0)
	a.failedScrapes.Store(0)
}

func (a *Agent) scrape(ctx context.Context, req models.ScrapingRequest) *models.ScrapingResult {
	source, err := a.registry.Classify(req.URL)
	if err != nil {
		a.Metrics.IncError(errorTypeLabel(err))
		slog.Debug("request rejected",
			slog.String("url", req.URL),
			slog.Any("error", err),
		)
		return models.FailureResult(models.CodeScrapingFailed, err.Error())
	}

	opts := models.DefaultScrapeOptions()
	if req.Options != nil {
		opts = *req.Options
	}

	if cached, ok := a.cache.get(req.URL); ok {
		a.Metrics.IncCacheHits()
		slog.Debug("cache hit", slog.String("url", req.URL))
		return models.SuccessResult(cached)
	}

	host, _ := sources.Host(req.URL)
	if a.limiter.wouldBlock(host) {
		a.Metrics.IncRateLimitWaits()
		slog.Debug("waiting for domain capacity",
			slog.String("url", req.URL),
			slog.String("domain", host),
		)
	}
	if err := a.limiter.Wait(ctx, host); err != nil {
		a.Metrics.IncError(errorTypeLabel(err))
		return models.FailureResult(models.CodeScrapingFailed, fmt.Sprintf("rate limit wait: %v", err))
	}

	fetchOpts := fetch.Options{
		Formats:         fetch.DefaultFormats,
		OnlyMainContent: opts.ExtractContent,
		Timeout:         a.cfg.DefaultTimeout,
	}

	start := time.Now()
	content, attempts, err := a.retry.fetchWithRetry(ctx, a.fetcher, req.URL, fetchOpts)
	a.Metrics.ObserveFetchDuration(time.Since(start))
	if err != nil {
		a.Metrics.IncError(errorTypeLabel(err))
		slog.Error("scrape failed",
			slog.String("url", req.URL),
			slog.String("source", source.ID),
			slog.Int("attempts", attempts),
			slog.Any("error", err),
		)
		return models.FailureResult(models.CodeScrapingFailed, err.Error())
	}

	extract := buildExtract(content, source, req.URL, opts)
	a.Metrics.IncExtracts()
	a.cache.add(req.URL, extract)

	slog.Debug("product extracted",
		slog.String("url", req.URL),
		slog.String("source", source.ID),
		slog.Int("attempts", attempts),
		slog.String("fetcher", a.fetcher.Name()),
	)
	return models.SuccessResult(extract)
}
