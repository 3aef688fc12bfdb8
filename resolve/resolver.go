package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/poiesic/recommendit/core"
	"github.com/poiesic/recommendit/metrics"
)

// ErrExtractorRequired is returned when a text extractor is not provided.
var ErrExtractorRequired = errors.New("text extractor required")

var urlPattern = regexp.MustCompile(`https?://\S+`)

// FindURL returns the first http or https URL in s.
func FindURL(s string) (string, bool) {
	url := urlPattern.FindString(s)
	return url, url != ""
}

// Resolver turns raw user input into the text to embed.
type Resolver struct {
	extractor TextExtractor
	logger    *slog.Logger
}

// NewResolver creates a resolver that fetches URLs with extractor.
func NewResolver(extractor TextExtractor, logger *slog.Logger) (*Resolver, error) {
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		extractor: extractor,
		logger:    logger.With("component", "resolver"),
	}, nil
}

// Resolve returns raw unchanged unless it contains a URL, in which case it
// returns the visible text of the first URL's page. Only the page text is
// returned; the rest of the input is dropped.
func (r *Resolver) Resolve(ctx context.Context, raw string) (string, error) {
	url, ok := FindURL(raw)
	if !ok {
		return raw, nil
	}

	r.logger.Debug("resolving URL input", "url", url)
	text, err := r.extractor.Extract(ctx, url)
	if err != nil {
		metrics.URLFetches.WithLabelValues("failed").Inc()
		if !errors.Is(err, core.ErrExtractionFailed) {
			err = fmt.Errorf("%w: %w", core.ErrExtractionFailed, err)
		}
		return "", err
	}
	metrics.URLFetches.WithLabelValues("ok").Inc()
	return text, nil
}
