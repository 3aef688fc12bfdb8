package badger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recommendit/core"
	"github.com/poiesic/recommendit/storage"
)

// Collection implements storage.Collection on top of a Backend.
// Queries are an exact scan over all entries; catalogs are small enough
// that an approximate index would not pay for itself.
type Collection struct {
	backend     *Backend
	name        string
	ownsBackend bool
	entryPrefix []byte
	dimKey      []byte
	manifestKey []byte
}

var _ storage.Collection = (*Collection)(nil)

// NewCollection creates a Collection sharing an existing backend.
// The caller keeps ownership of the backend.
func NewCollection(backend *Backend, name string) (*Collection, error) {
	if name == "" {
		return nil, storage.ErrCollectionNameRequired
	}
	return &Collection{
		backend:     backend,
		name:        name,
		entryPrefix: makeEntryPrefix(name),
		dimKey:      makeDimKey(name),
		manifestKey: makeManifestKey(name),
	}, nil
}

// OpenCollection opens (or creates) the on-disk store in dir and returns the
// named collection. Closing the collection closes the store.
func OpenCollection(dir, name string) (storage.Collection, error) {
	if name == "" {
		return nil, storage.ErrCollectionNameRequired
	}
	backend, err := OpenBackend(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open index at %s: %w", dir, err)
	}
	coll, err := NewCollection(backend, name)
	if err != nil {
		backend.Close()
		return nil, err
	}
	coll.ownsBackend = true
	return coll, nil
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Close releases the backend if the collection owns it.
func (c *Collection) Close() error {
	if !c.ownsBackend || c.backend.IsClosed() {
		return nil
	}
	return c.backend.Close()
}

// Upsert writes entries in a single transaction.
func (c *Collection) Upsert(ctx context.Context, entries ...*core.IndexedEntry) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if len(entries) == 0 {
		return nil
	}
	return c.backend.WithTx(func(tx *badger.Txn) error {
		dim, err := readDimension(tx, c.dimKey)
		if err != nil {
			return err
		}
		if dim == 0 {
			dim = len(entries[0].Vector)
			if err := tx.Set(c.dimKey, storage.MarshalID(core.ID(dim))); err != nil {
				return err
			}
		}
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := core.ValidateEntry(entry, dim); err != nil {
				return err
			}
			if err := tx.Set(makeEntryKey(c.name, entry.ID), storage.MarshalEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Get retrieves a single entry by ID.
func (c *Collection) Get(ctx context.Context, id core.ID) (*core.IndexedEntry, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var entry *core.IndexedEntry
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEntryKey(c.name, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err = storage.UnmarshalEntry(val)
			return err
		})
	}, false)
	return entry, err
}

// Query scans every entry and returns the k closest by cosine distance.
func (c *Collection) Query(ctx context.Context, vector []float32, k int) ([]*core.Match, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", storage.ErrInvalidQuery, k)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", storage.ErrInvalidQuery)
	}

	matches := []*core.Match{}
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		dim, err := readDimension(tx, c.dimKey)
		if err != nil {
			return err
		}
		if dim == 0 {
			return nil
		}
		if len(vector) != dim {
			return fmt.Errorf("%w: query has %d values, index has %d", core.ErrDimensionMismatch, len(vector), dim)
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = c.entryPrefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var entry *core.IndexedEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			matches = append(matches, &core.Match{
				ID:       entry.ID,
				Metadata: entry.Metadata,
				Distance: CosineDistance(vector, entry.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Iteration is in ascending ID order, so a stable sort breaks ties by ID.
	slices.SortStableFunc(matches, func(a, b *core.Match) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Count returns the number of entries.
func (c *Collection) Count(ctx context.Context) (int, error) {
	if c.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	count := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = c.entryPrefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Manifest returns the stored manifest.
func (c *Collection) Manifest(ctx context.Context) (*core.Manifest, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var manifest *core.Manifest
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(c.manifestKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			manifest, err = storage.UnmarshalManifest(val)
			return err
		})
	}, false)
	return manifest, err
}

// SetManifest stores the manifest.
func (c *Collection) SetManifest(ctx context.Context, manifest *core.Manifest) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if manifest == nil {
		return fmt.Errorf("%w: manifest is nil", storage.ErrInvalidQuery)
	}
	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(c.manifestKey, storage.MarshalManifest(manifest)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readDimension returns the stored dimension, or 0 for an empty collection.
func readDimension(tx *badger.Txn, key []byte) (int, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var dim core.ID
	err = item.Value(func(val []byte) error {
		dim, err = storage.UnmarshalID(val)
		return err
	})
	return int(dim), err
}

// CosineDistance returns 1 - cosine similarity. A zero-length vector is at
// distance 1 from everything.
func CosineDistance(a, b []float32) float32 {
	var dot, normA, normB float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
