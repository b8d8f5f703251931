package report

import (
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Compress gzips the finished report at sourcePath into sourcePath.gz and
// removes the original. It returns the path of the compressed file.
func Compress(sourcePath string, logger *slog.Logger) (string, error) {
	startTime := time.Now()

	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to open report for compression: %w", err)
	}
	defer sourceFile.Close()

	destPath := sourcePath + ".gz"
	destFile, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destPath, err)
	}

	gzipWriter := gzip.NewWriter(destFile)
	bytesCopied, err := io.Copy(gzipWriter, sourceFile)
	if err == nil {
		err = gzipWriter.Close()
	} else {
		gzipWriter.Close()
	}
	if closeErr := destFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to compress report: %w", err)
	}

	sourceFile.Close()
	if err := os.Remove(sourcePath); err != nil {
		logger.Warn("Failed to remove uncompressed report.", "path", sourcePath, "error", err)
	}

	logger.Debug("Compressed report.",
		"path", destPath,
		"original_size_bytes", bytesCopied,
		"duration", time.Since(startTime))
	return destPath, nil
}
