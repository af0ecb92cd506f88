package scraper

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/marketlens/go-scrape-products/models"
)

// ScrapeMultipleProducts runs all requests under a bounded worker pool.
// Results keep the input order regardless of completion order, and one
// item's failure never affects its siblings: per-item errors live inside
// the corresponding result, so the batch itself cannot fail.
func (a *Agent) ScrapeMultipleProducts(ctx context.Context, requests []models.ScrapingRequest) []*models.ScrapingResult {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]*models.ScrapingResult, len(requests))
	if len(requests) == 0 {
		return results
	}

	slog.Debug("starting batch",
		slog.Int("requests", len(requests)),
		slog.Int("workers", a.cfg.Concurrency),
	)

	var group errgroup.Group
	group.SetLimit(a.cfg.Concurrency)
	for i, req := range requests {
		group.Go(func() error {
			results[i] = a.ScrapeProduct(ctx, req)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes completion.
	_ = group.Wait()

	return results
}
