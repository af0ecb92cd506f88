package scraper

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/marketlens/go-scrape-products/models"
)

// resultCache keeps recent successful extracts keyed by URL so repeated
// scrapes of the same listing skip the network. Entries are treated as
// immutable once stored.
type resultCache struct {
	entries *lru.Cache[string, *models.ProductExtract]
}

func newResultCache(size int) *resultCache {
	if size <= 0 {
		return &resultCache{}
	}
	entries, err := lru.New[string, *models.ProductExtract](size)
	if err != nil {
		return &resultCache{}
	}
	return &resultCache{entries: entries}
}

func (rc *resultCache) get(url string) (*models.ProductExtract, bool) {
	if rc.entries == nil {
		return nil, false
	}
	return rc.entries.Get(url)
}

func (rc *resultCache) add(url string, extract *models.ProductExtract) {
	if rc.entries == nil || extract == nil {
		return
	}
	rc.entries.Add(url, extract)
}
