package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
)

func newTestClient(transport http.RoundTripper) *Client {
	client := NewClient("https://api.test", "secret-key", "test-agent", 5*time.Second)
	client.httpClient.Transport = transport
	return client
}

func TestClientFetchSuccess(t *testing.T) {
	transport := httpmock.NewMockTransport()

	var gotAuth string
	var gotBody scrapeRequest
	transport.RegisterResponder("POST", "https://api.test/v1/scrape",
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			payload, err := io.ReadAll(req.Body)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(payload, &gotBody); err != nil {
				return nil, err
			}
			return httpmock.NewJsonResponse(200, map[string]any{
				"success": true,
				"data": map[string]any{
					"markdown": "# Product\n\nGreat stuff",
					"html":     "<h1>Product</h1>",
					"metadata": map[string]any{
						"title":       "Product",
						"description": "Great stuff",
						"language":    "en",
					},
				},
			})
		},
	)

	client := newTestClient(transport)
	content, err := client.Fetch(context.Background(), "https://gumroad.com/l/x", Options{
		OnlyMainContent: true,
		Timeout:         2 * time.Second,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Fatalf("authorization = %q, want bearer key", gotAuth)
	}
	if gotBody.URL != "https://gumroad.com/l/x" {
		t.Fatalf("request url = %q", gotBody.URL)
	}
	if !gotBody.OnlyMainContent {
		t.Fatalf("onlyMainContent should be forwarded")
	}
	if len(gotBody.Formats) == 0 {
		t.Fatalf("default formats should be requested")
	}
	if gotBody.Timeout != 2000 {
		t.Fatalf("timeout = %d ms, want 2000", gotBody.Timeout)
	}

	if content.Markdown == "" || content.Metadata.Title != "Product" {
		t.Fatalf("unexpected content: %+v", content)
	}
	if content.Metadata.Language != "en" {
		t.Fatalf("language = %q, want en", content.Metadata.Language)
	}
}

func TestClientFetchServiceFailure(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", "https://api.test/v1/scrape",
		httpmock.NewStringResponder(200, `{"success": false, "error": "page blocked by anti-bot"}`),
	)

	client := newTestClient(transport)
	_, err := client.Fetch(context.Background(), "https://gumroad.com/l/x", Options{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "page blocked by anti-bot") {
		t.Fatalf("error should carry the service reason, got %v", err)
	}
}

func TestClientFetchHTTPError(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", "https://api.test/v1/scrape",
		httpmock.NewStringResponder(500, `{"success": false, "error": "internal error"}`),
	)

	client := newTestClient(transport)
	_, err := client.Fetch(context.Background(), "https://gumroad.com/l/x", Options{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Fatalf("error should mention the status, got %v", err)
	}
}

func TestClientFetchDecodeError(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", "https://api.test/v1/scrape",
		httpmock.NewStringResponder(200, "<html>not json</html>"),
	)

	client := newTestClient(transport)
	_, err := client.Fetch(context.Background(), "https://gumroad.com/l/x", Options{})
	if err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestClientFetchSuccessWithoutData(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", "https://api.test/v1/scrape",
		httpmock.NewStringResponder(200, `{"success": true}`),
	)

	client := newTestClient(transport)
	_, err := client.Fetch(context.Background(), "https://gumroad.com/l/x", Options{})
	if err == nil || !strings.Contains(err.Error(), "no content") {
		t.Fatalf("expected missing-content error, got %v", err)
	}
}
