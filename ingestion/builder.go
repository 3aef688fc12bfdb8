package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recommendit/ai"
	"github.com/poiesic/recommendit/catalog"
	"github.com/poiesic/recommendit/core"
	"github.com/poiesic/recommendit/metrics"
	"github.com/poiesic/recommendit/storage"
	"github.com/poiesic/recommendit/storage/badger"
)

// Config holds configuration for index builds.
type Config struct {
	// CatalogPath is the source catalog CSV.
	CatalogPath string

	// IndexDir is the directory holding the live index.
	IndexDir string

	// EnrichedPath receives a copy of the catalog with an embedding column.
	// Empty disables the export.
	EnrichedPath string

	// Collection is the collection name inside the index.
	Collection string

	// ReuseEmbeddings uses vectors from the catalog's embedding column
	// instead of re-embedding those rows. One row is always embedded to
	// check the column against the configured model.
	ReuseEmbeddings bool

	// BatchSize is the number of descriptions sent per embedding call
	BatchSize int

	// PoolSize is the number of concurrent embedding calls
	PoolSize int

	// MaxRetries is the maximum number of attempts per embedding batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// ReportInterval is how often to report progress (number of descriptions)
	ReportInterval int

	// LockTimeout is how long to wait for another process's build to finish.
	LockTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	return &Config{
		CatalogPath:     "SHL_Product_Catalog.csv",
		IndexDir:        "shl_db",
		EnrichedPath:    "SHL_Product_Catalog_With_Embeddings.csv",
		Collection:      "assessments",
		ReuseEmbeddings: false,
		BatchSize:       32,
		PoolSize:        poolSize,
		MaxRetries:      3,
		RetryDelay:      1 * time.Second,
		ReportInterval:  50,
		LockTimeout:     5 * time.Minute,
	}
}

func (c *Config) validate() error {
	if c.CatalogPath == "" {
		return ErrCatalogPathRequired
	}
	if c.IndexDir == "" {
		return ErrIndexDirRequired
	}
	if c.Collection == "" {
		return storage.ErrCollectionNameRequired
	}
	if c.MaxRetries <= 0 {
		return ErrInvalidMaxAttempts
	}
	if c.BatchSize < 1 {
		c.BatchSize = 1
	}
	if c.PoolSize < 1 {
		c.PoolSize = 1
	}
	if c.ReportInterval < 1 {
		c.ReportInterval = 1
	}
	return nil
}

// CollectionOpener opens the named collection in dir.
type CollectionOpener func(dir, name string) (storage.Collection, error)

// CommitHook wraps the final swap of a freshly built index into place.
// It must call commit exactly once and return its error. Owners of an open
// collection on the live directory use it to close and reopen around the swap.
type CommitHook func(ctx context.Context, commit func() error) error

// BuildReport summarizes a Build or Rebuild call.
type BuildReport struct {
	// Skipped is true when the index already existed and nothing was written.
	Skipped bool

	// Entries is the number of entries written.
	Entries int

	// Embedded is the number of descriptions sent to the model.
	Embedded int

	// Reused is the number of vectors taken from the catalog's embedding column.
	Reused int

	// Manifest describes the new index. Nil when Skipped.
	Manifest *core.Manifest

	// Duration is the wall time of the build.
	Duration time.Duration
}

// Builder populates the vector index from the catalog.
type Builder struct {
	config   *Config
	provider ai.AIProvider
	open     CollectionOpener
	commit   CommitHook
	progress io.Writer
	logger   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// WithProgress sets where embedding progress is written.
// Default is io.Discard.
func WithProgress(w io.Writer) Option {
	return func(b *Builder) error {
		if w == nil {
			w = io.Discard
		}
		b.progress = w
		return nil
	}
}

// WithCollectionOpener overrides how the staging collection is opened.
// Default is badger.OpenCollection.
func WithCollectionOpener(open CollectionOpener) Option {
	return func(b *Builder) error {
		if open == nil {
			return errors.New("collection opener cannot be nil")
		}
		b.open = open
		return nil
	}
}

// WithCommitHook sets a hook around the final swap.
func WithCommitHook(hook CommitHook) Option {
	return func(b *Builder) error {
		b.commit = hook
		return nil
	}
}

// NewBuilder creates a new index builder.
func NewBuilder(config *Config, provider ai.AIProvider, opts ...Option) (*Builder, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	cfg := *config
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	b := &Builder{
		config:   &cfg,
		provider: provider,
		open:     badger.OpenCollection,
		progress: io.Discard,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.logger = b.logger.With("component", "builder")
	return b, nil
}

// Build creates the index if the index directory is missing or empty.
// Otherwise it returns a report with Skipped set and writes nothing.
func (b *Builder) Build(ctx context.Context) (*BuildReport, error) {
	exists, err := IndexExists(b.config.IndexDir)
	if err != nil {
		return nil, err
	}
	if exists {
		b.logger.Info("index already exists, skipping build", "dir", b.config.IndexDir)
		return &BuildReport{Skipped: true}, nil
	}

	unlock, err := acquireBuildLock(ctx, b.config.IndexDir, b.config.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Another process may have finished a build while we waited.
	exists, err = IndexExists(b.config.IndexDir)
	if err != nil {
		return nil, err
	}
	if exists {
		b.logger.Info("index built by another process, skipping build", "dir", b.config.IndexDir)
		return &BuildReport{Skipped: true}, nil
	}

	return b.build(ctx)
}

// Rebuild builds a fresh index and swaps it over the existing one.
// The live index stays in place until the new one is complete.
func (b *Builder) Rebuild(ctx context.Context) (*BuildReport, error) {
	unlock, err := acquireBuildLock(ctx, b.config.IndexDir, b.config.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return b.build(ctx)
}

func (b *Builder) build(ctx context.Context) (*BuildReport, error) {
	start := time.Now()

	cat, err := catalog.Load(b.config.CatalogPath)
	if err != nil {
		return nil, err
	}
	b.logger.Info("loaded catalog", "path", b.config.CatalogPath, "records", cat.Len())

	vectors, embedded, reused, err := b.embedCatalog(ctx, cat)
	if err != nil {
		return nil, err
	}

	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: row %d has %d values, row 0 has %d", core.ErrDimensionMismatch, i, len(v), dim)
		}
	}

	manifest := &core.Manifest{
		Collection:  b.config.Collection,
		ModelID:     b.provider.ModelID(),
		Dimension:   dim,
		Metric:      core.MetricCosine,
		EntryCount:  cat.Len(),
		Fingerprint: cat.Fingerprint(),
		CreatedAt:   time.Now().UTC(),
	}

	staging, err := newStagingDir(b.config.IndexDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrIndexWriteFailed, err)
	}
	committed := false
	defer func() {
		if !committed {
			if rmErr := os.RemoveAll(staging); rmErr != nil {
				b.logger.Warn("failed to remove staging directory", "dir", staging, "err", rmErr)
			}
		}
	}()

	if err := b.writeIndex(ctx, staging, cat, vectors, manifest); err != nil {
		return nil, err
	}

	swap := func() error {
		return AtomicSwap(staging, b.config.IndexDir)
	}
	if b.commit != nil {
		err = b.commit(ctx, swap)
	} else {
		err = swap()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to move index into place: %w", core.ErrIndexWriteFailed, err)
	}
	committed = true

	if b.config.EnrichedPath != "" {
		if err := catalog.WriteEnriched(b.config.EnrichedPath, cat, vectors); err != nil {
			b.logger.Warn("failed to write enriched catalog", "path", b.config.EnrichedPath, "err", err)
		}
	}

	report := &BuildReport{
		Entries:  cat.Len(),
		Embedded: embedded,
		Reused:   reused,
		Manifest: manifest,
		Duration: time.Since(start),
	}
	metrics.BuildDuration.Observe(report.Duration.Seconds())
	metrics.IndexEntries.Set(float64(report.Entries))
	b.logger.Info("index built",
		"dir", b.config.IndexDir,
		"entries", report.Entries,
		"embedded", report.Embedded,
		"reused", report.Reused,
		"model", manifest.ModelID,
		"dimension", manifest.Dimension,
		"elapsed", report.Duration.Round(time.Millisecond))
	return report, nil
}

// reuseTolerance is the largest cosine distance at which a cached vector
// still counts as the configured model's embedding of its row.
const reuseTolerance = 1e-3

// embedCatalog returns one vector per record in row order, embedding only
// the rows without a reusable vector.
func (b *Builder) embedCatalog(ctx context.Context, cat *catalog.Catalog) ([][]float32, int, int, error) {
	retry, err := newRetryPolicy(b.config, b.logger)
	if err != nil {
		return nil, 0, 0, err
	}

	vectors := make([][]float32, cat.Len())
	reuse := false
	checked := 0
	if b.config.ReuseEmbeddings {
		sample, ok, err := b.checkReusable(ctx, cat, retry, vectors)
		if err != nil {
			return nil, 0, 0, err
		}
		if sample >= 0 {
			checked = 1
		}
		reuse = ok
	}

	var (
		texts []string
		idx   []int
	)
	for i, record := range cat.Records {
		if vectors[i] != nil {
			continue
		}
		if reuse && cat.HasVector(i) {
			vectors[i] = cat.Vectors[i]
			continue
		}
		texts = append(texts, record.Description)
		idx = append(idx, i)
	}
	embedded := len(texts) + checked
	reused := cat.Len() - embedded
	if reused > 0 {
		b.logger.Info("reusing embeddings from catalog", "rows", reused)
	}
	if len(texts) == 0 {
		return vectors, embedded, reused, nil
	}

	pool, err := ants.NewPool(b.config.PoolSize)
	if err != nil {
		return nil, 0, 0, err
	}
	defer pool.Release()

	progress := newBuildProgress(b.progress, cat.Len(), len(texts), reused, b.config.ReportInterval)
	be := &batchEmbedder{
		embedder: b.provider.Embedder(),
		pool:     pool,
		config:   b.config,
		retry:    retry,
		progress: progress,
	}
	if err := be.embed(ctx, texts, idx, vectors); err != nil {
		return nil, 0, 0, err
	}
	progress.finish()

	return vectors, embedded, reused, nil
}

// checkReusable embeds the first row that carries a cached vector and
// stores the fresh vector in vectors. Cached vectors whose length differs
// from the model's output fail with core.ErrDimensionMismatch. A sample that
// does not match its cached vector means the column came from another model,
// and ok is false so every row gets embedded. sample is -1 when no row has a
// cached vector.
func (b *Builder) checkReusable(ctx context.Context, cat *catalog.Catalog, retry *retryPolicy, vectors [][]float32) (sample int, ok bool, err error) {
	sample = -1
	for i := range cat.Records {
		if cat.HasVector(i) {
			sample = i
			break
		}
	}
	if sample < 0 {
		return -1, false, nil
	}

	embedder := b.provider.Embedder()
	fresh, err := embedWithRetry(ctx, retry, fmt.Sprintf("row %d", sample), func(ctx context.Context) ([]float32, error) {
		return embedder.EmbedText(ctx, cat.Records[sample].Description)
	})
	if err != nil {
		return sample, false, fmt.Errorf("failed to embed row %d: %w", sample, err)
	}
	metrics.EmbeddedTexts.Inc()
	vectors[sample] = fresh

	model := b.provider.ModelID()
	for i := range cat.Records {
		if cat.HasVector(i) && len(cat.Vectors[i]) != len(fresh) {
			return sample, false, fmt.Errorf("%w: catalog row %d has %d values, %s produces %d",
				core.ErrDimensionMismatch, i, len(cat.Vectors[i]), model, len(fresh))
		}
	}
	if d := badger.CosineDistance(fresh, cat.Vectors[sample]); d > reuseTolerance {
		b.logger.Warn("catalog embeddings were not produced by this model, embedding every row",
			"model", model, "row", sample, "distance", d)
		return sample, false, nil
	}
	return sample, true, nil
}

// writeIndex writes every entry and then the manifest into a collection in dir.
func (b *Builder) writeIndex(ctx context.Context, dir string, cat *catalog.Catalog, vectors [][]float32, manifest *core.Manifest) error {
	coll, err := b.open(dir, b.config.Collection)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrIndexWriteFailed, err)
	}

	write := func() error {
		entries := make([]*core.IndexedEntry, 0, b.config.BatchSize)
		for i, record := range cat.Records {
			entries = append(entries, core.NewIndexedEntry(record, vectors[i]))
			if len(entries) == b.config.BatchSize || i == cat.Len()-1 {
				if err := coll.Upsert(ctx, entries...); err != nil {
					return err
				}
				entries = entries[:0]
			}
		}
		return coll.SetManifest(ctx, manifest)
	}

	err = write()
	if closeErr := coll.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrIndexWriteFailed, err)
	}
	return nil
}
