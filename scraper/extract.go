package scraper

import (
	"strings"

	"github.com/marketlens/go-scrape-products/models"
	"github.com/marketlens/go-scrape-products/parser"
)

const maxImages = 10

// buildExtract turns fetched content plus the matched source descriptor
// into a normalized product record. Missing fields degrade to empty
// values; extraction itself never fails.
func buildExtract(content *models.FetchedContent, source models.SourceDescriptor, url string, opts models.ScrapeOptions) *models.ProductExtract {
	extract := &models.ProductExtract{
		Source:   source.DisplayName,
		URL:      url,
		Features: []string{},
	}
	if content == nil {
		return extract
	}

	title := ""
	description := ""
	if opts.IncludeMetadata {
		title = strings.TrimSpace(content.Metadata.Title)
		description = strings.TrimSpace(content.Metadata.Description)
	}
	if title == "" {
		title = parser.FirstHeading(content.Markdown)
	}
	if description == "" {
		description = parser.FirstParagraph(content.Markdown)
	}
	extract.Title = title
	extract.Description = description

	extract.Pricing = parser.ParsePricing(content.Markdown)
	extract.Features = parser.ExtractFeatures(content.Markdown, parser.MaxFeatures)

	if opts.IncludeImages {
		extract.Images = parser.ImageLinks(content.Markdown, maxImages)
	}

	extract.Category = parser.GuessCategory(title, description, url)

	return extract
}
