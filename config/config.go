// Package config holds agent configuration and its validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds scrape agent configuration.
type Config struct {
	// Fetch service credentials. When APIKey is empty the agent falls
	// back to fetching pages directly.
	FetchServiceAPIKey  string
	FetchServiceBaseURL string

	DefaultTimeout  time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	RetryBackoffMax time.Duration

	RespectRateLimit  bool
	RateLimitInterval time.Duration // minimum spacing between requests to one domain
	RateLimitBurst    int

	Concurrency int // batch worker-pool size
	CacheSize   int // recent-result LRU entries, 0 disables caching

	PipelineBufferSize int
	BatchSize          int

	UserAgent    string
	OutputFile   string
	OutputFormat string // jsonl, csv, or dual
	MetricsAddr  string
	Verbose      bool
}

// DefaultConfig returns conservative defaults.
func DefaultConfig() *Config {
	return &Config{
		FetchServiceBaseURL: "https://api.firecrawl.dev",
		DefaultTimeout:      30 * time.Second,
		MaxRetries:          3,
		RetryBackoff:        time.Second,
		RetryBackoffMax:     30 * time.Second,
		RespectRateLimit:    true,
		RateLimitInterval:   time.Second,
		RateLimitBurst:      1,
		Concurrency:         5,
		CacheSize:           256,
		PipelineBufferSize:  512,
		BatchSize:           64,
		UserAgent:           "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		OutputFile:          "output/products.jsonl",
		OutputFormat:        "jsonl",
		MetricsAddr:         "",
		Verbose:             false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.FetchServiceAPIKey != "" {
		if c.FetchServiceBaseURL == "" {
			return fmt.Errorf("fetch service base URL cannot be empty when an API key is set")
		}
		parsed, err := url.Parse(c.FetchServiceBaseURL)
		if err != nil {
			return fmt.Errorf("invalid fetch service base URL: %w", err)
		}
		if parsed.Host == "" {
			return fmt.Errorf("fetch service base URL must include a host")
		}
	}

	if c.DefaultTimeout <= 0 {
		return fmt.Errorf("default timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.RespectRateLimit {
		if c.RateLimitInterval <= 0 {
			return fmt.Errorf("rate limit interval must be positive")
		}
		if c.RateLimitBurst <= 0 {
			return fmt.Errorf("rate limit burst must be positive")
		}
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.PipelineBufferSize <= 0 {
		return fmt.Errorf("pipeline buffer size must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "jsonl" && c.OutputFormat != "csv" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be jsonl, csv, or dual")
	}

	return nil
}

// EnvString reads an environment variable, reporting whether it is set.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	return value, ok
}

// EnvInt reads an integer environment variable.
func EnvInt(key string) (int, bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// EnvBool reads a boolean environment variable.
func EnvBool(key string) (bool, bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return false, false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, true, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}
