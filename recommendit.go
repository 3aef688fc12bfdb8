// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package recommendit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/recommendit/ai"
	"github.com/poiesic/recommendit/ai/ollama"
	"github.com/poiesic/recommendit/ai/openai"
	"github.com/poiesic/recommendit/core"
	"github.com/poiesic/recommendit/ingestion"
	"github.com/poiesic/recommendit/metrics"
	"github.com/poiesic/recommendit/recommend"
	"github.com/poiesic/recommendit/resolve"
	"github.com/poiesic/recommendit/storage/badger"
)

// ErrConfigRequired is returned when Open is called without a configuration.
var ErrConfigRequired = errors.New("engine config required")

// Config configures an Engine.
type Config struct {
	// AI selects the embedding backend and model. Ignored when a provider
	// is passed with WithProvider.
	AI *ai.Config

	// Build controls where the catalog and index live and how the index is built.
	Build *ingestion.Config
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		AI:    ai.DefaultConfig(),
		Build: ingestion.DefaultConfig(),
	}
}

// Engine owns the long-lived pieces of a recommendation service: the
// embedding provider, the live index and the recommender over it.
type Engine struct {
	config       *Config
	provider     ai.AIProvider
	ownsProvider bool
	builder      *ingestion.Builder
	live         *liveCollection
	recommender  *recommend.Recommender
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions) error

type engineOptions struct {
	provider  ai.AIProvider
	extractor resolve.TextExtractor
	progress  io.Writer
	logger    *slog.Logger
}

// WithProvider uses provider instead of creating one from Config.AI.
// The caller keeps ownership; Close does not close it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *engineOptions) error {
		if provider == nil {
			return errors.New("provider cannot be nil")
		}
		o.provider = provider
		return nil
	}
}

// WithExtractor sets how linked job postings are read.
// Default is resolve.NewHTMLExtractor().
func WithExtractor(extractor resolve.TextExtractor) Option {
	return func(o *engineOptions) error {
		if extractor == nil {
			return errors.New("extractor cannot be nil")
		}
		o.extractor = extractor
		return nil
	}
}

// WithProgress sets where build progress is written.
func WithProgress(w io.Writer) Option {
	return func(o *engineOptions) error {
		o.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewProvider creates the AI provider for the configured backend.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Backend {
	case ai.BackendOllama:
		return ollama.NewProvider(config)
	default:
		return openai.NewProvider(config)
	}
}

// Open prepares an engine. If the index directory is missing or empty the
// index is built from the catalog first; a build failure fails Open.
func Open(ctx context.Context, config *Config, opts ...Option) (*Engine, error) {
	if config == nil || config.Build == nil {
		return nil, ErrConfigRequired
	}

	options := &engineOptions{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		config: config,
		logger: options.logger.With("component", "engine"),
	}

	// Create AI provider with configured settings
	e.provider = options.provider
	if e.provider == nil {
		provider, err := NewProvider(config.AI)
		if err != nil {
			return nil, err
		}
		e.provider = provider
		e.ownsProvider = true
	}

	builder, err := ingestion.NewBuilder(config.Build, e.provider,
		ingestion.WithLogger(options.logger),
		ingestion.WithProgress(options.progress),
		ingestion.WithCommitHook(e.swapLive),
	)
	if err != nil {
		e.closeProvider()
		return nil, err
	}
	e.builder = builder

	if _, err := builder.Build(ctx); err != nil {
		e.closeProvider()
		return nil, fmt.Errorf("building index: %w", err)
	}

	coll, err := badger.OpenCollection(config.Build.IndexDir, config.Build.Collection)
	if err != nil {
		e.closeProvider()
		return nil, err
	}
	e.live = &liveCollection{
		coll: coll,
		open: func() error {
			c, err := badger.OpenCollection(config.Build.IndexDir, config.Build.Collection)
			if err != nil {
				return err
			}
			e.live.coll = c
			return nil
		},
	}

	extractor := options.extractor
	if extractor == nil {
		extractor = resolve.NewHTMLExtractor()
	}
	resolver, err := resolve.NewResolver(extractor, options.logger)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.recommender, err = recommend.NewRecommender(e.live, e.provider, resolver, recommend.WithLogger(options.logger))
	if err != nil {
		e.Close()
		return nil, err
	}

	if _, err := e.recommender.CheckManifest(ctx); err != nil {
		e.logger.Warn("could not read index manifest", "err", err)
	}
	if count, err := e.live.Count(ctx); err == nil {
		metrics.IndexEntries.Set(float64(count))
		e.logger.Info("engine ready", "dir", config.Build.IndexDir, "entries", count, "model", e.provider.ModelID())
	}

	return e, nil
}

// swapLive closes the live collection around the directory swap and
// reopens it afterwards. Queries wait while the swap is in progress.
func (e *Engine) swapLive(ctx context.Context, commit func() error) error {
	if e.live == nil {
		return commit()
	}
	e.live.mu.Lock()
	defer e.live.mu.Unlock()

	if e.live.coll != nil {
		if err := e.live.coll.Close(); err != nil {
			e.logger.Warn("error closing live collection before swap", "err", err)
		}
		e.live.coll = nil
	}

	commitErr := commit()
	// Reopen whatever is now in place, the new index or the old one.
	if err := e.live.open(); err != nil {
		e.logger.Error("failed to reopen index after swap", "err", err)
		return errors.Join(commitErr, err)
	}
	return commitErr
}

// Recommend returns up to topK assessments for raw, best first.
func (e *Engine) Recommend(ctx context.Context, raw string, topK int) ([]core.QueryResult, error) {
	return e.recommender.Recommend(ctx, raw, topK)
}

// RecommendWithMonitor is Recommend with stage callbacks.
func (e *Engine) RecommendWithMonitor(ctx context.Context, raw string, topK int, monitor recommend.RecommendMonitor) ([]core.QueryResult, error) {
	return e.recommender.RecommendWithMonitor(ctx, raw, topK, monitor)
}

// Format renders a result as markdown.
func (e *Engine) Format(result core.QueryResult) string {
	return recommend.Format(result)
}

// Rebuild re-embeds the catalog into a fresh index and swaps it in.
// Queries keep using the old index until the swap.
func (e *Engine) Rebuild(ctx context.Context) (*ingestion.BuildReport, error) {
	report, err := e.builder.Rebuild(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := e.recommender.CheckManifest(ctx); err != nil {
		e.logger.Warn("could not read index manifest", "err", err)
	}
	return report, nil
}

// Manifest returns the live index manifest.
func (e *Engine) Manifest(ctx context.Context) (*core.Manifest, error) {
	return e.live.Manifest(ctx)
}

// Recommender returns the recommender over the live index.
func (e *Engine) Recommender() *recommend.Recommender {
	return e.recommender
}

// Provider returns the embedding provider.
func (e *Engine) Provider() ai.AIProvider {
	return e.provider
}

func (e *Engine) Close() error {
	var errs []error
	if e.live != nil {
		if err := e.live.Close(); err != nil {
			e.logger.Error("error closing index", "err", err)
			errs = append(errs, err)
		}
	}
	if err := e.closeProvider(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (e *Engine) closeProvider() error {
	if !e.ownsProvider || e.provider == nil {
		return nil
	}
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
		return err
	}
	return nil
}
