package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/marketlens/go-scrape-products/models"
)

const scrapeEndpoint = "/v1/scrape"

// Client calls a hosted content-extraction service over its JSON API.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

// NewClient builds a service client. timeout is the transport-level
// ceiling; per-attempt deadlines still come from Options.Timeout.
func NewClient(baseURL, apiKey, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// Name identifies this fetcher in logs and results.
func (c *Client) Name() string { return "scrape-api" }

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	Timeout         int64    `json:"timeout,omitempty"` // milliseconds
}

type scrapeResponse struct {
	Success bool                   `json:"success"`
	Data    *models.FetchedContent `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Fetch posts one scrape job and decodes the returned document.
func (c *Client) Fetch(ctx context.Context, url string, opts Options) (*models.FetchedContent, error) {
	formats := opts.Formats
	if len(formats) == 0 {
		formats = DefaultFormats
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(scrapeRequest{
		URL:             url,
		Formats:         formats,
		OnlyMainContent: opts.OnlyMainContent,
		Timeout:         opts.Timeout.Milliseconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+scrapeEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read scrape response: %w", err)
	}

	var decoded scrapeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode scrape response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if decoded.Error != "" {
			return nil, fmt.Errorf("fetch service: %s (status %d)", decoded.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("fetch service: http status %d", resp.StatusCode)
	}
	if !decoded.Success || decoded.Data == nil {
		reason := decoded.Error
		if reason == "" {
			reason = "no content returned"
		}
		return nil, fmt.Errorf("fetch service: %s", reason)
	}

	return decoded.Data, nil
}
