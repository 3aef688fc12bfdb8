package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/recommendit/ai"
	"github.com/poiesic/recommendit/core"
	"github.com/poiesic/recommendit/metrics"
	"github.com/poiesic/recommendit/resolve"
	"github.com/poiesic/recommendit/storage"
)

// Messages carried by sentinel results.
const (
	MessageExtractionFailed = "Unable to extract job description from the link."
	MessageNoMatches        = "No matching assessments found."
)

// QueryResolver turns raw input into the text to embed.
// *resolve.Resolver is the production implementation.
type QueryResolver interface {
	Resolve(ctx context.Context, raw string) (string, error)
}

var _ QueryResolver = (*resolve.Resolver)(nil)

// Recommender ranks catalog assessments against a hiring need.
// It is safe for concurrent use.
type Recommender struct {
	collection storage.Collection
	embedder   ai.Embedder
	modelID    string
	resolver   QueryResolver
	logger     *slog.Logger
}

// Option configures a Recommender.
type Option func(*Recommender) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recommender) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRecommender creates a recommender over collection. Queries are embedded
// with the provider's embedder, which must be the model the index was built with.
func NewRecommender(
	collection storage.Collection,
	provider ai.AIProvider,
	resolver QueryResolver,
	opts ...Option,
) (*Recommender, error) {
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if resolver == nil {
		return nil, ErrResolverRequired
	}

	r := &Recommender{
		collection: collection,
		embedder:   provider.Embedder(),
		modelID:    provider.ModelID(),
		resolver:   resolver,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "recommender")

	return r, nil
}

// CheckManifest reads the index manifest and warns when it was built with a
// different embedding model than the one this recommender queries with.
// A missing manifest is reported as (nil, nil).
func (r *Recommender) CheckManifest(ctx context.Context) (*core.Manifest, error) {
	manifest, err := r.collection.Manifest(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		r.logger.Warn("index has no manifest", "collection", r.collection.Name())
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if manifest.ModelID != r.modelID {
		r.logger.Warn("index was built with a different embedding model, rebuild it",
			"indexModel", manifest.ModelID, "queryModel", r.modelID)
	}
	return manifest, nil
}

// Recommend returns up to topK assessments closest to raw, best first.
func (r *Recommender) Recommend(ctx context.Context, raw string, topK int) ([]core.QueryResult, error) {
	return r.RecommendWithMonitor(ctx, raw, topK, nil)
}

// RecommendWithMonitor is Recommend with callbacks at each stage.
//
// An unreadable link yields a single extraction sentinel and an empty index
// a single no-matches sentinel; neither is an error. Embedding and store
// failures are returned as errors.
func (r *Recommender) RecommendWithMonitor(ctx context.Context, raw string, topK int, monitor RecommendMonitor) (results []core.QueryResult, err error) {
	if err := core.ValidateTopK(topK); err != nil {
		return nil, err
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	start := time.Now()
	outcome := metrics.ResultError
	defer func() {
		metrics.RecommendRequests.WithLabelValues(outcome).Inc()
		metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	}()

	monitor.Start(raw, topK)

	// 1. Resolve links to page text
	text, err := r.resolver.Resolve(ctx, raw)
	if errors.Is(err, core.ErrExtractionFailed) {
		r.logger.Warn("could not extract job description", "err", err)
		outcome = metrics.ResultExtractionFailed
		results = []core.QueryResult{sentinel(core.ResultExtractionFailed, MessageExtractionFailed)}
		monitor.Finish(results)
		return results, nil
	}
	if err != nil {
		r.logger.Error("error resolving query", "err", err)
		return nil, err
	}
	_, fromURL := resolve.FindURL(raw)
	monitor.AfterResolve(text, fromURL)

	// 2. Embed with the index model
	vector, err := r.embedder.EmbedText(ctx, text)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	monitor.AfterEmbed(vector)

	// 3. Nearest neighbours, ascending distance
	matches, err := r.collection.Query(ctx, vector, topK)
	if err != nil {
		r.logger.Error("error querying index", "err", err)
		return nil, fmt.Errorf("querying index: %w", err)
	}
	monitor.AfterQuery(matches)

	if len(matches) == 0 {
		outcome = metrics.ResultNoMatches
		results = []core.QueryResult{sentinel(core.ResultNoMatches, MessageNoMatches)}
		monitor.Finish(results)
		return results, nil
	}

	results = make([]core.QueryResult, 0, len(matches))
	for i, m := range matches {
		results = append(results, core.QueryResult{
			Kind:     core.ResultMatch,
			Rank:     i + 1,
			ID:       m.ID,
			Metadata: m.Metadata,
			Distance: m.Distance,
		})
	}
	outcome = metrics.ResultMatched
	monitor.Finish(results)

	r.logger.Debug("recommendation complete", "results", len(results), "elapsed", time.Since(start))
	return results, nil
}

func sentinel(kind core.ResultKind, message string) core.QueryResult {
	return core.QueryResult{Kind: kind, Message: message}
}

// Format renders a result as the markdown block shown to users.
// Sentinel results render as their message.
func Format(result core.QueryResult) string {
	if result.IsSentinel() {
		return result.Message
	}
	md := result.Metadata
	var b strings.Builder
	fmt.Fprintf(&b, "### %d. %s\n", result.Rank, md.Name)
	fmt.Fprintf(&b, "- **Test Type**: %s\n", md.TestType)
	fmt.Fprintf(&b, "- **Duration**: %s\n", md.Duration)
	fmt.Fprintf(&b, "- **Remote Testing**: %s\n", md.RemoteTesting)
	fmt.Fprintf(&b, "- **Adaptive/IRT**: %s\n", md.AdaptiveIRT)
	fmt.Fprintf(&b, "- **URL**: [Link](%s)\n", md.URL)
	return b.String()
}

// FormatAll renders every result, separated by a blank line.
func FormatAll(results []core.QueryResult) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, Format(r))
	}
	return strings.Join(blocks, "\n")
}
