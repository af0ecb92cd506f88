package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marketlens/go-scrape-products/config"
	"github.com/marketlens/go-scrape-products/models"
)

type mockWriter struct {
	mu       sync.Mutex
	batches  [][]*Record
	writeErr error
	closed   bool
}

func (w *mockWriter) Write(records []*Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeErr != nil {
		return w.writeErr
	}
	batch := make([]*Record, len(records))
	copy(batch, records)
	w.batches = append(w.batches, batch)
	return nil
}

func (w *mockWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *mockWriter) Validate() error { return nil }

func (w *mockWriter) total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, batch := range w.batches {
		n += len(batch)
	}
	return n
}

func (w *mockWriter) batchSizes() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	sizes := make([]int, len(w.batches))
	for i, batch := range w.batches {
		sizes[i] = len(batch)
	}
	return sizes
}

// blockingWriter parks every Write until release is closed.
type blockingWriter struct {
	release chan struct{}
}

func (w *blockingWriter) Write([]*Record) error {
	<-w.release
	return nil
}

func (w *blockingWriter) Close() error    { return nil }
func (w *blockingWriter) Validate() error { return nil }

func successRecord(url string) *Record {
	return NewRecord(url, models.SuccessResult(&models.ProductExtract{
		Title:    "Product",
		Source:   "Gumroad",
		URL:      url,
		Features: []string{},
	}))
}

func TestPipelineWritesRecords(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(context.Background(), writer, nil)
	p.Start(2)

	for i := 0; i < 10; i++ {
		record := successRecord(fmt.Sprintf("https://gumroad.com/l/item-%d", i))
		if err := p.Process(record); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := writer.total(); got != 10 {
		t.Fatalf("written records = %d, want 10", got)
	}

	snapshot := p.GetMetrics()
	if processed := snapshot["processed_results"].(int64); processed != 10 {
		t.Fatalf("processed = %d, want 10", processed)
	}
}

func TestPipelineDeduplicatesURLs(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(context.Background(), writer, nil)
	p.Start(1)

	if err := p.Process(
		successRecord("https://gumroad.com/l/dup"),
		successRecord("https://gumroad.com/l/dup"),
		successRecord("https://gumroad.com/l/unique"),
	); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := writer.total(); got != 2 {
		t.Fatalf("written records = %d, want 2 after de-duplication", got)
	}

	validation := p.GetMetrics()["validation_errors"].(map[string]int)
	if validation["duplicate_url"] != 1 {
		t.Fatalf("validation errors = %v, want one duplicate_url", validation)
	}
}

func TestPipelineDropsInvalidRecords(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(context.Background(), writer, nil)
	p.Start(1)

	invalid := &Record{
		URL:       "https://gumroad.com/l/bad",
		Result:    &models.ScrapingResult{Success: true}, // success without data
		ScrapedAt: time.Now().UTC(),
	}
	noURL := successRecord("")

	if err := p.Process(invalid, noURL, successRecord("https://gumroad.com/l/ok")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := writer.total(); got != 1 {
		t.Fatalf("written records = %d, want 1", got)
	}
	validation := p.GetMetrics()["validation_errors"].(map[string]int)
	if validation["invalid_record"] != 2 {
		t.Fatalf("validation errors = %v, want two invalid_record", validation)
	}
}

func TestPipelineFlushesOnBatchSize(t *testing.T) {
	writer := &mockWriter{}
	cfg := config.DefaultConfig()
	cfg.BatchSize = 4
	p := NewPipeline(context.Background(), writer, cfg)
	p.Start(1)

	for i := 0; i < 9; i++ {
		if err := p.Process(successRecord(fmt.Sprintf("https://gumroad.com/l/b-%d", i))); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	sizes := writer.batchSizes()
	if len(sizes) != 3 || sizes[0] != 4 || sizes[1] != 4 || sizes[2] != 1 {
		t.Fatalf("batch sizes = %v, want [4 4 1]", sizes)
	}
}

func TestPipelineProcessAfterClose(t *testing.T) {
	p := NewPipeline(context.Background(), &mockWriter{}, nil)
	p.Start(1)

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Process(successRecord("https://gumroad.com/l/late")); !errors.Is(err, ErrPipelineClosed) {
		t.Fatalf("Process after Close = %v, want ErrPipelineClosed", err)
	}
}

func TestPipelineContextCancelStopsIntake(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPipeline(ctx, &mockWriter{}, nil)
	p.Start(1)

	cancel()
	// The shutdown signal propagates through a goroutine.
	deadline := time.Now().Add(time.Second)
	for {
		err := p.Process(successRecord("https://gumroad.com/l/x"))
		if errors.Is(err, ErrPipelineClosed) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Process still accepting records after context cancel")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPipelineSurfacesWriterError(t *testing.T) {
	writer := &mockWriter{writeErr: errors.New("disk full")}
	p := NewPipeline(context.Background(), writer, nil)
	p.Start(1)

	if err := p.Process(successRecord("https://gumroad.com/l/x")); err != nil {
		t.Fatalf("process: %v", err)
	}

	err := p.Close()
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("close = %v, want the writer error surfaced", err)
	}
	if p.Err() == nil {
		t.Fatalf("Err() should report the failed batch write")
	}
}

func BenchmarkPipelineThroughput(b *testing.B) {
	writer := &mockWriter{}
	p := NewPipeline(context.Background(), writer, nil)
	p.Start(2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := p.Process(successRecord(fmt.Sprintf("https://gumroad.com/l/bench-%d", i))); err != nil {
			b.Fatalf("process: %v", err)
		}
	}
	b.StopTimer()

	if err := p.Close(); err != nil {
		b.Fatalf("close: %v", err)
	}
	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "records/sec")
}

func TestPipelineCloseTimeout(t *testing.T) {
	old := drainTimeout
	drainTimeout = 25 * time.Millisecond
	defer func() { drainTimeout = old }()

	writer := &blockingWriter{release: make(chan struct{})}
	cfg := config.DefaultConfig()
	cfg.BatchSize = 1
	p := NewPipeline(context.Background(), writer, cfg)
	p.Start(1)

	if err := p.Process(successRecord("https://gumroad.com/l/slow")); err != nil {
		t.Fatalf("process: %v", err)
	}

	err := p.Close()
	if !errors.Is(err, ErrPipelineCloseTimeout) {
		t.Fatalf("close = %v, want ErrPipelineCloseTimeout", err)
	}
	close(writer.release)
}
