// Package fetch defines the content-fetching contract the agent depends
// on, plus two implementations: an HTTP client for a hosted
// content-extraction service and a direct fetcher that parses pages
// itself. The agent only ever sees the Fetcher interface.
package fetch

import (
	"context"
	"time"

	"github.com/marketlens/go-scrape-products/models"
)

// Options shape a single fetch attempt.
type Options struct {
	// Formats requested from the backend, e.g. "markdown", "html".
	Formats []string
	// OnlyMainContent strips navigation, footers, and other boilerplate.
	OnlyMainContent bool
	// Timeout bounds this attempt end to end.
	Timeout time.Duration
}

// DefaultFormats are requested when the caller does not specify any.
var DefaultFormats = []string{"markdown", "html"}

// Fetcher retrieves raw page content for a URL. Implementations must be
// safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts Options) (*models.FetchedContent, error)
	Name() string
}
