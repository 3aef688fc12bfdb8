package ingestion

import "errors"

var (
	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrConfigRequired is returned when a builder config is not provided.
	ErrConfigRequired = errors.New("builder config required")

	// ErrCatalogPathRequired is returned when the catalog path is empty.
	ErrCatalogPathRequired = errors.New("catalog path required")

	// ErrIndexDirRequired is returned when the index directory is empty.
	ErrIndexDirRequired = errors.New("index directory required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmbeddingCountMismatch is returned when the embedder returns a different number of vectors than texts.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// ErrBuildInProgress is returned when another process holds the build lock.
	ErrBuildInProgress = errors.New("another build is in progress")
)
