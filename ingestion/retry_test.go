package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(t *testing.T, attempts int, delay time.Duration) *retryPolicy {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MaxRetries = attempts
	cfg.RetryDelay = delay
	p, err := newRetryPolicy(cfg, slog.Default())
	require.NoError(t, err)
	return p
}

// flakyBatch fails the first n calls and then returns one vector per text.
func flakyBatch(n int, texts []string) (func(context.Context) ([][]float32, error), *int) {
	calls := 0
	return func(ctx context.Context) ([][]float32, error) {
		calls++
		if calls <= n {
			return nil, fmt.Errorf("model busy (call %d)", calls)
		}
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{float32(i)}
		}
		return out, nil
	}, &calls
}

func TestNewRetryPolicy_RejectsNonPositiveAttempts(t *testing.T) {
	for _, n := range []int{0, -3} {
		cfg := DefaultConfig()
		cfg.MaxRetries = n
		_, err := newRetryPolicy(cfg, slog.Default())
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts, "attempts=%d", n)
	}
}

func TestRetryPolicy_DelayDoublesUpToCap(t *testing.T) {
	p := testPolicy(t, 10, 5*time.Second)
	assert.Equal(t, 5*time.Second, p.delay(1))
	assert.Equal(t, 10*time.Second, p.delay(2))
	assert.Equal(t, 20*time.Second, p.delay(3))
	assert.Equal(t, maxRetryDelay, p.delay(4))
	assert.Equal(t, maxRetryDelay, p.delay(9))
}

func TestEmbedWithRetry_RecoversFromBusyModel(t *testing.T) {
	texts := []string{"cognitive ability", "java programming"}
	call, calls := flakyBatch(2, texts)

	out, err := embedWithRetry(context.Background(), testPolicy(t, 3, time.Millisecond), "rows 0-1", call)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, 3, *calls)
}

func TestEmbedWithRetry_ReturnsLastFailure(t *testing.T) {
	call, calls := flakyBatch(5, []string{"personality"})

	_, err := embedWithRetry(context.Background(), testPolicy(t, 2, time.Millisecond), "rows 0-0", call)
	require.Error(t, err)
	assert.Equal(t, "model busy (call 2)", err.Error())
	assert.Equal(t, 2, *calls)
}

func TestEmbedWithRetry_CancelDuringWaitKeepsCause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	call := func(ctx context.Context) ([]float32, error) {
		calls++
		cancel()
		return nil, errors.New("connection refused")
	}

	_, err := embedWithRetry(ctx, testPolicy(t, 5, time.Hour), "row 0", call)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, calls)
}

func TestEmbedWithRetry_DeadlineStopsAttempts(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	calls := 0
	call := func(ctx context.Context) ([]float32, error) {
		calls++
		return nil, errors.New("timeout from server")
	}

	_, err := embedWithRetry(ctx, testPolicy(t, 100, 15*time.Millisecond), "row 0", call)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, calls, 100)
}

func TestEmbedWithRetry_CancellationFromCallIsFinal(t *testing.T) {
	calls := 0
	call := func(ctx context.Context) ([]float32, error) {
		calls++
		return nil, fmt.Errorf("embed request: %w", context.Canceled)
	}

	_, err := embedWithRetry(context.Background(), testPolicy(t, 4, time.Millisecond), "row 0", call)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestEmbedWithRetry_AlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	call, calls := flakyBatch(0, []string{"x"})

	_, err := embedWithRetry(ctx, testPolicy(t, 3, time.Millisecond), "rows 0-0", call)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, *calls)
}
