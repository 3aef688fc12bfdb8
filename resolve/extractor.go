package resolve

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/poiesic/recommendit/core"
)

const (
	// DefaultTimeout bounds the whole fetch.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is sent with every fetch. Some job boards reject
	// requests without a browser-like agent.
	DefaultUserAgent = "Mozilla/5.0"

	// DefaultMaxChars caps the extracted text, in runes.
	DefaultMaxChars = 1000

	maxBodyBytes = 5 << 20
)

// TextExtractor turns a URL into the visible text of the page.
// Implementations must be thread-safe for concurrent use.
type TextExtractor interface {
	// Extract fetches url and returns its visible text.
	// Any failure is reported as an error wrapping core.ErrExtractionFailed.
	Extract(ctx context.Context, url string) (string, error)
}

// HTMLExtractor fetches a page over HTTP and extracts its visible text.
type HTMLExtractor struct {
	client    *http.Client
	userAgent string
	maxChars  int
	logger    *slog.Logger
}

var _ TextExtractor = (*HTMLExtractor)(nil)

// ExtractorOption configures an HTMLExtractor.
type ExtractorOption func(*HTMLExtractor)

// WithHTTPClient sets the client used for fetches.
// The client's Timeout replaces DefaultTimeout.
func WithHTTPClient(client *http.Client) ExtractorOption {
	return func(e *HTMLExtractor) {
		if client != nil {
			e.client = client
		}
	}
}

// WithTimeout sets the fetch timeout.
func WithTimeout(timeout time.Duration) ExtractorOption {
	return func(e *HTMLExtractor) {
		client := *e.client
		client.Timeout = timeout
		e.client = &client
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ExtractorOption {
	return func(e *HTMLExtractor) {
		e.userAgent = ua
	}
}

// WithMaxChars sets the text cap in runes. Values below 1 disable the cap.
func WithMaxChars(n int) ExtractorOption {
	return func(e *HTMLExtractor) {
		e.maxChars = n
	}
}

// NewHTMLExtractor creates an extractor with a 10s timeout, a browser-like
// User-Agent and a 1000 character cap.
func NewHTMLExtractor(opts ...ExtractorOption) *HTMLExtractor {
	e := &HTMLExtractor{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		maxChars:  DefaultMaxChars,
		logger:    slog.Default().With("component", "html-extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches url and returns its visible text. Only a 200 response is
// accepted. Text inside script, style, noscript, template and head elements
// is dropped, whitespace runs collapse to one space, and the result is cut
// to the configured number of runes. An empty result is a failure.
func (e *HTMLExtractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrExtractionFailed, err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Warn("fetch failed", "url", url, "err", err)
		return "", fmt.Errorf("%w: %w", core.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.logger.Warn("fetch returned non-200 status", "url", url, "status", resp.StatusCode)
		return "", fmt.Errorf("%w: %s returned status %d", core.ErrExtractionFailed, url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrExtractionFailed, err)
	}

	text := strings.TrimSpace(Truncate(VisibleText(doc), e.maxChars))
	if text == "" {
		return "", fmt.Errorf("%w: %s has no visible text", core.ErrExtractionFailed, url)
	}
	e.logger.Debug("extracted page text", "url", url, "chars", len([]rune(text)))
	return text, nil
}

// VisibleText returns the text a reader would see, one space between text nodes.
func VisibleText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, template, head").Remove()

	var parts []string
	collectText(doc.Selection, &parts)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			if t := strings.TrimSpace(c.Text()); t != "" {
				*parts = append(*parts, t)
			}
			return
		}
		collectText(c, parts)
	})
}

// Truncate cuts s to at most n runes. n < 1 returns s unchanged.
func Truncate(s string, n int) string {
	if n < 1 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
