package recommendit

import (
	"context"
	"sync"

	"github.com/poiesic/recommendit/core"
	"github.com/poiesic/recommendit/storage"
)

// liveCollection is the collection on the live index directory. The
// underlying collection is replaced when a rebuild swaps directories.
type liveCollection struct {
	mu   sync.RWMutex
	coll storage.Collection
	open func() error // reopens coll; called with mu held
}

var _ storage.Collection = (*liveCollection)(nil)

func (l *liveCollection) current() (storage.Collection, func(), error) {
	l.mu.RLock()
	if l.coll == nil {
		l.mu.RUnlock()
		return nil, nil, storage.ErrStorageClosed
	}
	return l.coll, l.mu.RUnlock, nil
}

func (l *liveCollection) Name() string {
	c, done, err := l.current()
	if err != nil {
		return ""
	}
	defer done()
	return c.Name()
}

func (l *liveCollection) Upsert(ctx context.Context, entries ...*core.IndexedEntry) error {
	c, done, err := l.current()
	if err != nil {
		return err
	}
	defer done()
	return c.Upsert(ctx, entries...)
}

func (l *liveCollection) Query(ctx context.Context, vector []float32, k int) ([]*core.Match, error) {
	c, done, err := l.current()
	if err != nil {
		return nil, err
	}
	defer done()
	return c.Query(ctx, vector, k)
}

func (l *liveCollection) Get(ctx context.Context, id core.ID) (*core.IndexedEntry, error) {
	c, done, err := l.current()
	if err != nil {
		return nil, err
	}
	defer done()
	return c.Get(ctx, id)
}

func (l *liveCollection) Count(ctx context.Context) (int, error) {
	c, done, err := l.current()
	if err != nil {
		return 0, err
	}
	defer done()
	return c.Count(ctx)
}

func (l *liveCollection) Manifest(ctx context.Context) (*core.Manifest, error) {
	c, done, err := l.current()
	if err != nil {
		return nil, err
	}
	defer done()
	return c.Manifest(ctx)
}

func (l *liveCollection) SetManifest(ctx context.Context, manifest *core.Manifest) error {
	c, done, err := l.current()
	if err != nil {
		return err
	}
	defer done()
	return c.SetManifest(ctx, manifest)
}

func (l *liveCollection) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.coll == nil {
		return nil
	}
	err := l.coll.Close()
	l.coll = nil
	return err
}
