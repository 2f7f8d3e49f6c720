// ABOUTME: Web page fetching and visible-text extraction
// ABOUTME: Browser-like headers are a functional requirement: many sites block default Go clients
package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/secondbrain-labs/cerebro/internal/models"
)

// browserHeaders mimics a real browser. Sites that reject obvious bots
// frequently serve these requests fine.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"DNT":                       "1",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// skippedTags hold no visible content worth indexing
var skippedTags = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"footer": true,
	"header": true,
}

// WebExtractor fetches a document's source URL and extracts visible text
type WebExtractor struct {
	client *http.Client
}

// NewWebExtractor creates a WebExtractor with the given fetch timeout
func NewWebExtractor(timeout time.Duration) *WebExtractor {
	return &WebExtractor{
		client: &http.Client{Timeout: timeout},
	}
}

// Extract fetches the document's source URL and returns its visible text.
// 403, 404, and timeout produce distinct failure messages because the
// remediation differs for each (copy manually / fix URL / retry later).
func (e *WebExtractor) Extract(ctx context.Context, doc *models.Document, _ []byte) (string, error) {
	if doc.SourceURL == "" {
		return "", fmt.Errorf("missing source URL for document %q", doc.Title)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, doc.SourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid URL %s: %w", doc.SourceURL, err)
	}
	for key, value := range browserHeaders {
		req.Header.Set(key, value)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("request timed out: the website %s took too long to respond", doc.SourceURL)
		}
		return "", fmt.Errorf("failed to fetch URL %s: %w", doc.SourceURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("access forbidden (403): the website %s blocks automated access", doc.SourceURL)
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("page not found (404): the URL %s does not exist", doc.SourceURL)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", fmt.Errorf("HTTP error %d fetching %s", resp.StatusCode, doc.SourceURL)
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML from %s: %w", doc.SourceURL, err)
	}

	text := visibleText(root)
	if text == "" {
		return "", fmt.Errorf("page %s contains no extractable text", doc.SourceURL)
	}
	return text, nil
}

// visibleText walks the DOM collecting text nodes, skipping markup that
// carries no content, preserving line breaks and collapsing blank lines.
func visibleText(root *html.Node) string {
	var lines []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if line := strings.TrimSpace(n.Data); line != "" {
				lines = append(lines, line)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return strings.Join(lines, "\n")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
