package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/marketlens/go-scrape-products/models"
)

// Direct fetches pages itself and reduces the DOM to the markdown/html
// shape the extraction engine expects. It is the fallback used when no
// fetch-service API key is configured.
type Direct struct {
	userAgent string
	timeout   time.Duration

	// transport overrides the collector transport; used by tests.
	transport http.RoundTripper
}

// NewDirect builds a direct fetcher with the given defaults.
func NewDirect(userAgent string, timeout time.Duration) *Direct {
	return &Direct{userAgent: userAgent, timeout: timeout}
}

// Name identifies this fetcher in logs and results.
func (d *Direct) Name() string { return "direct" }

// Fetch downloads the page and converts it to FetchedContent.
func (d *Direct) Fetch(ctx context.Context, rawURL string, opts Options) (*models.FetchedContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = d.timeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}

	collector := colly.NewCollector(colly.UserAgent(d.userAgent))
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(timeout)
	if d.transport != nil {
		collector.WithTransport(d.transport)
	}

	var body []byte
	var fetchErr error
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		if status != 0 {
			fetchErr = fmt.Errorf("direct fetch: http status %d: %w", status, err)
			return
		}
		fetchErr = fmt.Errorf("direct fetch: %w", err)
	})

	if err := collector.Visit(rawURL); err != nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, fmt.Errorf("direct fetch: %w", err)
	}
	collector.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("direct fetch: empty response body")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("direct fetch: parse html: %w", err)
	}

	content := &models.FetchedContent{
		HTML: string(body),
		Metadata: models.PageMetadata{
			Title:       strings.TrimSpace(doc.Find("title").First().Text()),
			Description: metaContent(doc, "description"),
			Language:    langOf(doc),
		},
	}

	root := doc.Find("body")
	if opts.OnlyMainContent {
		if main := doc.Find("main, article").First(); main.Length() > 0 {
			root = main
		}
	}
	content.Markdown = renderMarkdown(root)

	return content, nil
}

func metaContent(doc *goquery.Document, name string) string {
	value, _ := doc.Find(`meta[name="` + name + `"]`).First().Attr("content")
	return strings.TrimSpace(value)
}

func langOf(doc *goquery.Document) string {
	lang, _ := doc.Find("html").First().Attr("lang")
	return strings.TrimSpace(lang)
}

// renderMarkdown flattens headings, paragraphs, list items, and images
// into the markdown dialect the downstream parsers understand. It is a
// rough projection, not a general HTML-to-markdown converter.
func renderMarkdown(root *goquery.Selection) string {
	var b strings.Builder
	prevList := false

	root.Find("h1, h2, h3, h4, h5, h6, p, li, img").Each(func(_ int, node *goquery.Selection) {
		tag := goquery.NodeName(node)
		if prevList && tag != "li" {
			b.WriteString("\n")
		}
		prevList = tag == "li"

		switch tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			text := strings.TrimSpace(node.Text())
			if text == "" {
				return
			}
			level := int(tag[1] - '0')
			b.WriteString(strings.Repeat("#", level) + " " + text + "\n\n")
		case "p":
			// Skip paragraphs that wrap a list; their text shows up via li.
			if node.Find("li").Length() > 0 {
				return
			}
			text := strings.TrimSpace(node.Text())
			if text == "" {
				return
			}
			b.WriteString(text + "\n\n")
		case "li":
			text := strings.TrimSpace(node.Text())
			if text == "" {
				return
			}
			b.WriteString("- " + text + "\n")
		case "img":
			src, ok := node.Attr("src")
			if !ok || src == "" {
				return
			}
			alt, _ := node.Attr("alt")
			fmt.Fprintf(&b, "![%s](%s)\n\n", alt, src)
		}
	})

	return strings.TrimSpace(b.String())
}
