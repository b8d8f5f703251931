package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock is an advisory lock held for the duration of a live run over one
// directory. The lock file lives in the lock directory, not in the photo
// directory, so nothing is left behind next to the images.
type Lock struct {
	lock   *flock.Flock
	path   string
	logger *slog.Logger
}

// Acquire takes the lock for target. lockDir defaults to os.TempDir().
// It returns an error if another process already holds it.
func Acquire(target, lockDir string, logger *slog.Logger) (*Lock, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %s: %w", target, err)
	}

	if lockDir == "" {
		lockDir = os.TempDir()
	}
	if err := os.MkdirAll(lockDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create lock directory %s: %w", lockDir, err)
	}

	lockPath := filepath.Join(lockDir, LockFileName(abs))
	fileLock := flock.New(lockPath)

	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("could not acquire file lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("directory %s is being processed by another photostamp instance", abs)
	}

	logger.Debug("Acquired run lock.", "path", lockPath, "directory", abs)

	return &Lock{
		lock:   fileLock,
		path:   lockPath,
		logger: logger,
	}, nil
}

// LockFileName derives a stable lock file name from an absolute directory path.
func LockFileName(absDir string) string {
	sum := sha256.Sum256([]byte(absDir))
	return "photostamp-" + hex.EncodeToString(sum[:8]) + ".lock"
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Close releases the lock.
func (l *Lock) Close() {
	if err := l.lock.Unlock(); err != nil {
		l.logger.Error("Failed to release run lock.", "error", err)
	} else {
		l.logger.Debug("Released run lock.")
	}
	// The lock file itself is left behind, which is fine.
}
