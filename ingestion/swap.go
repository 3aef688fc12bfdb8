package ingestion

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// IndexExists reports whether dir exists and holds at least one entry.
// A missing or empty directory means the index still has to be built.
func IndexExists(dir string) (bool, error) {
	f, err := os.Open(dir)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AtomicSwap replaces destDir with srcDir. An existing destDir is moved
// aside first and restored if the final rename fails, so destDir is always
// either the old or the new index.
func AtomicSwap(srcDir, destDir string) error {
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	backup := destDir + ".bak"
	_ = os.RemoveAll(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	_ = os.RemoveAll(backup)
	return nil
}

// newStagingDir creates an empty directory next to indexDir, on the same
// filesystem so the final rename is atomic.
func newStagingDir(indexDir string) (string, error) {
	parent := filepath.Dir(indexDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", err
	}
	return os.MkdirTemp(parent, filepath.Base(indexDir)+".staging-*")
}
