package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/marketlens/go-scrape-products/models"
)

func pricedRecord(url string) *Record {
	amount := 29.99
	return NewRecord(url, models.SuccessResult(&models.ProductExtract{
		Title:  "Go Course Bundle",
		Source: "Gumroad",
		Pricing: models.Pricing{
			Amount:   &amount,
			Currency: "USD",
			Type:     models.PricingSubscription,
			Interval: models.IntervalMonthly,
		},
		Features: []string{"40 video lessons", "Source code included"},
		Category: "course",
		URL:      url,
	}))
}

func TestCSVWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "products.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("new csv writer: %v", err)
	}

	records := []*Record{
		pricedRecord("https://gumroad.com/l/go-course"),
		NewRecord("https://gumroad.com/l/broken", models.FailureResult(models.CodeScrapingFailed, "fetch failed")),
	}
	if err := writer.Write(records); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2 records", len(rows))
	}
	if rows[0][0] != "url" || rows[0][5] != "price_amount" {
		t.Fatalf("header = %v", rows[0])
	}

	success := rows[1]
	if success[0] != "https://gumroad.com/l/go-course" || success[1] != "true" {
		t.Fatalf("success row = %v", success)
	}
	if success[5] != "29.99" || success[6] != "USD" || success[7] != "subscription" || success[8] != "monthly" {
		t.Fatalf("pricing columns = %v", success[5:9])
	}
	if success[9] != "40 video lessons; Source code included" {
		t.Fatalf("features column = %q", success[9])
	}

	failure := rows[2]
	if failure[1] != "false" || failure[10] != "fetch failed" {
		t.Fatalf("failure row = %v", failure)
	}
}

func TestJSONLWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.jsonl")

	writer, err := NewJSONLWriter(path)
	if err != nil {
		t.Fatalf("new jsonl writer: %v", err)
	}
	if err := writer.Write([]*Record{pricedRecord("https://gumroad.com/l/go-course")}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var decoded Record
	if err := json.NewDecoder(f).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.URL != "https://gumroad.com/l/go-course" {
		t.Fatalf("url = %q", decoded.URL)
	}
	if !decoded.Result.Success || decoded.Result.Data == nil {
		t.Fatalf("result = %+v", decoded.Result)
	}
	if decoded.Result.Data.Pricing.Amount == nil || *decoded.Result.Data.Pricing.Amount != 29.99 {
		t.Fatalf("pricing = %+v", decoded.Result.Data.Pricing)
	}
}

func TestJSONLWriterValidateEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")

	writer, err := NewJSONLWriter(path)
	if err != nil {
		t.Fatalf("new jsonl writer: %v", err)
	}
	defer writer.Close()

	if err := writer.Validate(); err == nil {
		t.Fatalf("Validate on an empty file should fail")
	}
}

func TestDualWriterWritesBoth(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "products.csv")
	jsonlPath := filepath.Join(dir, "products.jsonl")

	writer, err := NewDualWriter(csvPath, jsonlPath)
	if err != nil {
		t.Fatalf("new dual writer: %v", err)
	}
	if err := writer.Write([]*Record{pricedRecord("https://gumroad.com/l/go-course")}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, path := range []string{csvPath, jsonlPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", path)
		}
	}
}
