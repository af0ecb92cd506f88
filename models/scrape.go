package models

// SourceDescriptor identifies a recognized product platform. Descriptors
// are loaded once at startup and never mutated afterwards.
type SourceDescriptor struct {
	ID             string   `yaml:"id" json:"id"`
	DisplayName    string   `yaml:"display_name" json:"display_name"`
	DomainPatterns []string `yaml:"domain_patterns" json:"domain_patterns"`
}

// ScrapeOptions tune what a single scrape extracts.
type ScrapeOptions struct {
	IncludeImages   bool `json:"include_images"`
	IncludeMetadata bool `json:"include_metadata"`
	ExtractContent  bool `json:"extract_content"`
}

// DefaultScrapeOptions are applied when a request carries no options.
func DefaultScrapeOptions() ScrapeOptions {
	return ScrapeOptions{
		IncludeImages:   false,
		IncludeMetadata: true,
		ExtractContent:  true,
	}
}

// ScrapingRequest is one unit of work for the agent.
type ScrapingRequest struct {
	URL      string         `json:"url"`
	Options  *ScrapeOptions `json:"options,omitempty"`
	Priority string         `json:"priority"`
}

// PageMetadata is the metadata block returned by the fetch service.
type PageMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
}

// FetchedContent is the raw page content produced by a Fetcher. It lives
// only for the duration of one extraction and is never retained.
type FetchedContent struct {
	Markdown string       `json:"markdown,omitempty"`
	HTML     string       `json:"html,omitempty"`
	Metadata PageMetadata `json:"metadata"`
}

// CodeScrapingFailed is the single error code surfaced by the agent.
// Failure causes are distinguished by the error message.
const CodeScrapingFailed = "SCRAPING_FAILED"

// ScrapeError carries a machine-readable code and a human-readable reason.
type ScrapeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapingResult is the uniform outcome of every scrape. Data is present
// iff Success is true; Error is present iff Success is false.
type ScrapingResult struct {
	Success bool            `json:"success"`
	Data    *ProductExtract `json:"data,omitempty"`
	Error   *ScrapeError    `json:"error,omitempty"`
}

// SuccessResult wraps a product extract in a successful result.
func SuccessResult(data *ProductExtract) *ScrapingResult {
	return &ScrapingResult{Success: true, Data: data}
}

// FailureResult builds a failed result with the given code and message.
func FailureResult(code, message string) *ScrapingResult {
	return &ScrapingResult{
		Success: false,
		Error:   &ScrapeError{Code: code, Message: message},
	}
}

// Validate checks the result invariant: Data present iff Success,
// Error present iff not.
func (r *ScrapingResult) Validate() error {
	if r == nil {
		return errInvariant("result is nil")
	}
	if r.Success {
		if r.Data == nil {
			return errInvariant("successful result missing data")
		}
		if r.Error != nil {
			return errInvariant("successful result carries an error")
		}
		return nil
	}
	if r.Error == nil {
		return errInvariant("failed result missing error")
	}
	if r.Data != nil {
		return errInvariant("failed result carries data")
	}
	return nil
}

type errInvariant string

func (e errInvariant) Error() string { return string(e) }

// ScrapingStats are process-lifetime counters owned by one agent.
type ScrapingStats struct {
	TotalRequests     int64 `json:"total_requests"`
	SuccessfulScrapes int64 `json:"successful_scrapes"`
	FailedScrapes     int64 `json:"failed_scrapes"`
}
