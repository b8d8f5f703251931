package stamp

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
)

const tempDirPattern = ".photostamp-*"

// FileManager handles the temporary copies used by the fallback write path.
type FileManager struct {
	logger *slog.Logger
}

// NewFileManager creates a new FileManager
func NewFileManager(logger *slog.Logger) *FileManager {
	return &FileManager{
		logger: logger.With("component", "files"),
	}
}

// CreateSiblingTempDir creates a fresh temporary directory next to path.
func (fm *FileManager) CreateSiblingTempDir(path string) (string, error) {
	dir, err := os.MkdirTemp(filepath.Dir(path), tempDirPattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory next to %s: %w", path, err)
	}
	return dir, nil
}

// CopyFile copies src over dst, keeping src's permission bits.
func (fm *FileManager) CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source file %s: %w", src, err)
	}
	defer sourceFile.Close()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return fmt.Errorf("getting source file info: %w", err)
	}

	destFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, sourceInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating destination file %s: %w", dst, err)
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return fmt.Errorf("copying file content: %w", err)
	}
	if err := destFile.Close(); err != nil {
		return fmt.Errorf("closing destination file %s: %w", dst, err)
	}

	return os.Chmod(dst, sourceInfo.Mode().Perm())
}

// CleanupFile removes a file from the filesystem
func (fm *FileManager) CleanupFile(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to remove file %s: %w", filePath, err)
	}

	return nil
}

// RemoveTempDir removes dir if it is empty. A non-empty directory is left in
// place silently; any other failure is logged.
func (fm *FileManager) RemoveTempDir(dir string) {
	err := os.Remove(dir)
	switch {
	case err == nil, os.IsNotExist(err):
	case errors.Is(err, syscall.ENOTEMPTY), errors.Is(err, syscall.EEXIST):
		fm.logger.Debug("Temporary directory not empty, leaving it.", "dir", dir)
	default:
		fm.logger.Warn("Failed to remove temporary directory.", "dir", dir, "error", err)
	}
}
