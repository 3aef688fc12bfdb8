package storage

import (
	"context"

	"github.com/poiesic/recommendit/core"
)

// Collection is a named set of indexed entries with nearest-neighbour lookup.
// Implementations must be thread-safe and support concurrent access.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Upsert writes one or more entries, replacing any entry with the same ID.
	// Every vector must have the collection's dimension; the first write
	// fixes the dimension of an empty collection.
	// Returns core.ErrDimensionMismatch when a vector has the wrong length.
	Upsert(ctx context.Context, entries ...*core.IndexedEntry) error

	// Query returns up to k entries closest to vector, ordered by ascending
	// cosine distance. Ties are broken by ascending ID.
	// Returns an empty slice when the collection is empty.
	Query(ctx context.Context, vector []float32, k int) ([]*core.Match, error)

	// Get retrieves a single entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.IndexedEntry, error)

	// Count returns the number of entries in the collection.
	Count(ctx context.Context) (int, error)

	// Manifest returns the collection manifest.
	// Returns ErrNotFound if no manifest has been written.
	Manifest(ctx context.Context) (*core.Manifest, error)

	// SetManifest stores the collection manifest, replacing any previous one.
	SetManifest(ctx context.Context, manifest *core.Manifest) error

	// Close releases the underlying store.
	Close() error
}
