package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/marketlens/go-scrape-products/sources"
)

// ErrInvalidInput is returned by Process for non-URL input, before any
// classification or network activity.
var ErrInvalidInput = errors.New("invalid input: expected a URL string")

// ErrFetchFailed indicates the fetch capability kept failing until the
// retry budget ran out.
type ErrFetchFailed struct {
	URL      string
	Attempts int
	Err      error
}

func (e ErrFetchFailed) Error() string {
	return fmt.Sprintf("fetch failed after %d attempts for %s: %v", e.Attempts, e.URL, e.Err)
}

func (e ErrFetchFailed) Unwrap() error {
	return e.Err
}

func errorTypeLabel(err error) string {
	switch {
	case err == nil:
		return "unknown"
	case errors.Is(err, sources.ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, sources.ErrUnsupportedSource):
		return "unsupported_domain"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		var fetchErr ErrFetchFailed
		if errors.As(err, &fetchErr) {
			return "fetch_failed"
		}
		return "other"
	}
}
