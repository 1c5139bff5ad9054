package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"stereomax/internal/services"
)

// ErrLocked reports that another process holds the lock.
var ErrLocked = errors.New("lock held by another process")

// Lock is an acquired advisory lock.
type Lock struct {
	path string
	fl   *flock.Flock
}

// OutputLockPath returns the lock file guarding writes to outputPath.
func OutputLockPath(outputPath string) string {
	return outputPath + ".stereomax.lock"
}

// WatchLockPath returns the lock file guarding a watched directory.
func WatchLockPath(dir string) string {
	return filepath.Join(dir, ".stereomax-watch.lock")
}

// Acquire takes the lock at path without blocking. A held lock yields an error
// matching both ErrLocked and services.ErrValidation.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", services.ErrValidation, ErrLocked, path)
	}
	return &Lock{path: path, fl: fl}, nil
}

// AcquireOutput locks outputPath for writing.
func AcquireOutput(outputPath string) (*Lock, error) {
	return Acquire(OutputLockPath(outputPath))
}

// Path reports the lock file location.
func (l *Lock) Path() string { return l.path }

// Release unlocks and removes the lock file.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock file %s: %w", l.path, err)
	}
	return nil
}
