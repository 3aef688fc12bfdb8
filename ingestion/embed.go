package ingestion

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recommendit/ai"
	"github.com/poiesic/recommendit/metrics"
)

// batchEmbedder embeds texts in fixed-size batches on a worker pool.
// Results land at their input positions, so output order is row order
// regardless of which batch finishes first.
type batchEmbedder struct {
	embedder ai.Embedder
	pool     *ants.Pool
	config   *Config
	retry    *retryPolicy
	progress *buildProgress
}

// embed fills vectors[idx[i]] with the embedding of texts[i].
// The first failing batch cancels the remaining ones.
func (be *batchEmbedder) embed(ctx context.Context, texts []string, idx []int, vectors [][]float32) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for start := 0; start < len(texts); start += be.config.BatchSize {
		end := min(start+be.config.BatchSize, len(texts))
		batch := texts[start:end]
		positions := idx[start:end]

		wg.Add(1)
		err := be.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}

			what := fmt.Sprintf("rows %d-%d", positions[0], positions[len(positions)-1])
			out, err := embedWithRetry(ctx, be.retry, what, func(ctx context.Context) ([][]float32, error) {
				out, err := be.embedder.EmbedTexts(ctx, batch)
				if err != nil {
					return nil, err
				}
				if len(out) != len(batch) {
					return nil, fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingCountMismatch, len(batch), len(out))
				}
				return out, nil
			})
			if err != nil {
				fail(fmt.Errorf("failed to embed rows %d-%d after %d attempts: %w", positions[0], positions[len(positions)-1], be.config.MaxRetries, err))
				return
			}

			for i, pos := range positions {
				vectors[pos] = out[i]
			}
			metrics.EmbeddedTexts.Add(float64(len(batch)))
			be.progress.done(len(batch))
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("failed to submit embedding batch: %w", err))
			break
		}
	}

	wg.Wait()
	return firstErr
}
