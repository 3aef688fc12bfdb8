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


package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// maxRetryDelay caps the doubling wait between embedding attempts.
const maxRetryDelay = 30 * time.Second

// retryPolicy is the attempt budget for one embedding call.
type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
	logger    *slog.Logger
}

func newRetryPolicy(config *Config, logger *slog.Logger) (*retryPolicy, error) {
	if config.MaxRetries <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	return &retryPolicy{
		attempts:  config.MaxRetries,
		baseDelay: config.RetryDelay,
		logger:    logger,
	}, nil
}

// delay is the wait after the given failed attempt (1-based).
func (p *retryPolicy) delay(attempt int) time.Duration {
	d := p.baseDelay
	for i := 1; i < attempt && d < maxRetryDelay; i++ {
		d *= 2
	}
	return min(d, maxRetryDelay)
}

// embedWithRetry runs call until it succeeds, the attempts run out, or ctx ends.
// Cancellation errors from call are returned at once. When ctx ends during a
// wait, the last embedding error is returned wrapped with the context error.
func embedWithRetry[T any](ctx context.Context, p *retryPolicy, what string, call func(context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, joinCtx(err, lastErr)
		}

		out, err := call(ctx)
		if err == nil {
			if attempt > 1 {
				p.logger.Debug("embedding recovered", "call", what, "attempt", attempt)
			}
			return out, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		lastErr = err
		if attempt == p.attempts {
			break
		}

		wait := p.delay(attempt)
		p.logger.Debug("embedding failed", "call", what, "attempt", attempt, "of", p.attempts, "wait", wait, "err", err)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, joinCtx(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}
	return zero, lastErr
}

func joinCtx(ctxErr, lastErr error) error {
	if lastErr == nil {
		return ctxErr
	}
	return errors.Join(ctxErr, lastErr)
}
