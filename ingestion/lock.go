package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 200 * time.Millisecond

// lockPath returns the lock file guarding builds of indexDir.
func lockPath(indexDir string) string {
	return filepath.Clean(indexDir) + ".lock"
}

// acquireBuildLock takes the cross-process build lock for indexDir, waiting
// up to timeout. A zero timeout fails immediately if the lock is held.
func acquireBuildLock(ctx context.Context, indexDir string, timeout time.Duration) (func(), error) {
	path := lockPath(indexDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	l := flock.New(path)
	var (
		locked bool
		err    error
	)
	if timeout <= 0 {
		locked, err = l.TryLock()
	} else {
		lockCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		locked, err = l.TryLockContext(lockCtx, lockRetryDelay)
	}
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil || !locked {
		return nil, fmt.Errorf("%w (lock: %s)", ErrBuildInProgress, path)
	}
	return func() { _ = l.Unlock() }, nil
}
