package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/marketlens/go-scrape-products/config"
	"github.com/marketlens/go-scrape-products/models"
	"github.com/marketlens/go-scrape-products/pipeline"
	"github.com/marketlens/go-scrape-products/scraper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	defaultCfg := config.DefaultConfig()

	apiKeyDefault := ""
	if value, ok := config.EnvString("SCRAPER_API_KEY"); ok {
		apiKeyDefault = value
	}
	apiURLDefault := defaultCfg.FetchServiceBaseURL
	if value, ok := config.EnvString("SCRAPER_API_URL"); ok {
		apiURLDefault = value
	}
	outputDefault := defaultCfg.OutputFile
	if value, ok := config.EnvString("SCRAPER_OUTPUT"); ok {
		outputDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SCRAPER_METRICS_ADDR"); ok {
		metricsDefault = value
	}
	concurrencyDefault := defaultCfg.Concurrency
	if value, ok, err := config.EnvInt("SCRAPER_CONCURRENCY"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_CONCURRENCY: %v\n", err)
		os.Exit(1)
	} else if ok {
		concurrencyDefault = value
	}

	apiKey := flag.String("api-key", apiKeyDefault, "Fetch service API key (empty selects the direct fetcher)")
	apiURL := flag.String("api-url", apiURLDefault, "Fetch service base URL")
	concurrency := flag.Int("concurrency", concurrencyDefault, "Number of concurrent scrapes")
	timeoutMs := flag.Int("timeout", int(defaultCfg.DefaultTimeout/time.Millisecond), "Per-attempt fetch timeout (milliseconds)")
	maxRetries := flag.Int("max-retries", defaultCfg.MaxRetries, "Maximum retry attempts per URL")
	retryBackoffMs := flag.Int("retry-backoff", int(defaultCfg.RetryBackoff/time.Millisecond), "Initial retry backoff (milliseconds)")
	retryBackoffMaxMs := flag.Int("retry-backoff-max", int(defaultCfg.RetryBackoffMax/time.Millisecond), "Maximum retry backoff (milliseconds)")
	rateLimit := flag.Bool("rate-limit", defaultCfg.RespectRateLimit, "Pace requests per target domain")
	rateIntervalMs := flag.Int("rate-interval", int(defaultCfg.RateLimitInterval/time.Millisecond), "Minimum spacing per domain (milliseconds)")
	includeImages := flag.Bool("images", false, "Collect image links into the extracts")
	inputFile := flag.String("input", "", "File with one URL per line (args are used otherwise)")
	outputFile := flag.String("output", outputDefault, "Output file path")
	outputFormat := flag.String("format", defaultCfg.OutputFormat, "Output format: jsonl, csv, or dual")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := defaultCfg
	cfg.FetchServiceAPIKey = *apiKey
	cfg.FetchServiceBaseURL = *apiURL
	cfg.Concurrency = *concurrency
	cfg.DefaultTimeout = time.Duration(*timeoutMs) * time.Millisecond
	cfg.MaxRetries = *maxRetries
	cfg.RetryBackoff = time.Duration(*retryBackoffMs) * time.Millisecond
	cfg.RetryBackoffMax = time.Duration(*retryBackoffMaxMs) * time.Millisecond
	cfg.RespectRateLimit = *rateLimit
	cfg.RateLimitInterval = time.Duration(*rateIntervalMs) * time.Millisecond
	cfg.OutputFile = *outputFile
	cfg.OutputFormat = strings.ToLower(*outputFormat)
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	urls, err := collectURLs(*inputFile, flag.Args())
	if err != nil {
		slog.Error("reading input", slog.Any("error", err))
		os.Exit(1)
	}
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: scraper [flags] <url> [<url> ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	agent, err := scraper.NewAgent(cfg, nil)
	if err != nil {
		slog.Error("initialising agent", slog.Any("error", err))
		os.Exit(1)
	}

	writer, err := createWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("close writer", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, waiting for in-flight work to finish")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && agent.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(agent.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	p := pipeline.NewPipeline(ctx, writer, cfg)
	p.Start(2)
	if cfg.Verbose {
		p.StartMetricsReporting(10 * time.Second)
	}

	slog.Info("starting scrape",
		slog.Int("urls", len(urls)),
		slog.Int("workers", cfg.Concurrency),
		slog.Bool("rate_limit", cfg.RespectRateLimit),
	)

	requests := make([]models.ScrapingRequest, len(urls))
	for i, url := range urls {
		requests[i] = models.ScrapingRequest{
			URL:      url,
			Priority: "normal",
			Options: &models.ScrapeOptions{
				IncludeImages:   *includeImages,
				IncludeMetadata: true,
				ExtractContent:  true,
			},
		}
	}

	startTime := time.Now()
	results := agent.ScrapeMultipleProducts(ctx, requests)

	records := make([]*pipeline.Record, len(results))
	for i, result := range results {
		records[i] = pipeline.NewRecord(requests[i].URL, result)
	}
	if err := p.Process(records...); err != nil {
		slog.Error("recording results", slog.Any("error", err))
	}

	if err := p.Close(); err != nil {
		slog.Error("pipeline shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(agent.Stats(), time.Since(startTime), cfg.OutputFile, p.GetMetrics())
}

func collectURLs(inputFile string, args []string) ([]string, error) {
	urls := append([]string(nil), args...)
	if inputFile == "" {
		return urls, nil
	}

	f, err := os.Open(inputFile)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	return urls, nil
}

func createWriter(format, filename string) (pipeline.OutputWriter, error) {
	switch format {
	case "jsonl":
		return pipeline.NewJSONLWriter(filename)
	case "csv":
		return pipeline.NewCSVWriter(filename)
	case "dual":
		jsonlFilename := strings.TrimSuffix(filename, ".csv") + ".jsonl"
		return pipeline.NewDualWriter(filename, jsonlFilename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func printSummary(stats models.ScrapingStats, duration time.Duration, outputFile string, metrics map[string]interface{}) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Scrape complete")

	fmt.Printf("  Total requests: %d\n", stats.TotalRequests)
	fmt.Printf("  Succeeded:      %d\n", stats.SuccessfulScrapes)
	fmt.Printf("  Failed:         %d\n", stats.FailedScrapes)
	successRate := 0.0
	if stats.TotalRequests > 0 {
		successRate = float64(stats.SuccessfulScrapes) / float64(stats.TotalRequests) * 100
	}
	fmt.Printf("  Success rate:   %.2f%%\n", successRate)
	if valErrors, ok := metrics["validation_errors"].(map[string]int); ok && len(valErrors) > 0 {
		fmt.Printf("  Audit skips:    %v\n", valErrors)
	}
	fmt.Printf("  Duration:       %v\n", duration)
	fmt.Printf("  Output file:    %s\n", outputFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
