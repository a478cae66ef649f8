// Package filelock serializes writers of project snapshots. Two stackforge
// processes (an add run and the web exporter, say) never interleave writes to
// the same stackforge.yaml, and readers never see a half-written file.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// DefaultTimeout bounds how long LockAndWrite and LockAndUpdate wait for a
// competing writer
const DefaultTimeout = 10 * time.Second

// retryDelay is how often a waiting lock re-polls
const retryDelay = 50 * time.Millisecond

// ErrLockTimeout is returned when the lock is still held after the timeout
var ErrLockTimeout = errors.New("timed out waiting for file lock")

// FileLock wraps a flock file lock for coordinating access to files.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a new file lock for the given path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path
func (fl *FileLock) Path() string {
	return fl.path
}

// Lock acquires an exclusive lock on the file, blocking until the lock is available.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// TryLock attempts to acquire an exclusive lock on the file without blocking.
// Returns true if the lock was acquired, false if the lock is held elsewhere.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// LockContext polls for the lock until it is acquired or ctx is done.
// A context deadline is reported as ErrLockTimeout.
func (fl *FileLock) LockContext(ctx context.Context) error {
	acquired, err := fl.flock.TryLockContext(ctx, retryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrLockTimeout, fl.path)
		}
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	if !acquired {
		return fmt.Errorf("%w: %s", ErrLockTimeout, fl.path)
	}
	return nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// AtomicWrite writes data to a file atomically using a temp file in the
// target directory and a rename. If the operation fails at any point, the
// original file (if it exists) remains unchanged.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Same directory keeps the rename on one filesystem
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	// renamed; nothing to clean up
	tempFile = nil
	return nil
}

// LockAndWrite acquires the lock "<path>.lock", writes atomically and
// releases the lock. The lock file stays so waiters never hold a stale inode.
func LockAndWrite(path string, data []byte) error {
	return LockAndUpdate(path, func([]byte) ([]byte, error) {
		return data, nil
	})
}

// LockAndUpdate runs a read-modify-write cycle under the lock. update
// receives the current contents (nil when the file does not exist) and
// returns the new contents; an update error aborts without writing.
func LockAndUpdate(path string, update func(current []byte) ([]byte, error)) error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	lock := NewFileLock(path + ".lock")
	if err := lock.LockContext(ctx); err != nil {
		return err
	}
	defer lock.Unlock()

	current, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		current = nil
	}

	next, err := update(current)
	if err != nil {
		return err
	}

	return AtomicWrite(path, next)
}
