package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrOutputLocked means another run holds the lock for the same output directory
var ErrOutputLocked = errors.New("output directory is in use by another conversion")

// OutputLock is an advisory lock guarding one output directory
type OutputLock struct {
	path string
	lock *flock.Flock
}

// LockPath returns the lock file used for outputDir. It lives next to the
// directory so it never shows up among the converted files.
func LockPath(outputDir string) string {
	clean := filepath.Clean(outputDir)
	return filepath.Join(filepath.Dir(clean), "."+filepath.Base(clean)+".lock")
}

// LockOutput acquires the lock for outputDir without blocking
func LockOutput(outputDir string) (*OutputLock, error) {
	path := LockPath(outputDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}

	l := flock.New(path)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, outputDir)
	}
	return &OutputLock{path: path, lock: l}, nil
}

// Path returns the lock file path
func (l *OutputLock) Path() string {
	return l.path
}

// Release unlocks the lock file. The file itself stays so every run locks the same inode.
func (l *OutputLock) Release() error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
