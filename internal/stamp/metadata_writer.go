package stamp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// fallbackBaseName is the name the file gets inside the temporary directory.
// It has no spaces, quotes or non-ASCII characters, which is what usually
// makes the in-place write fail.
const fallbackBaseName = "photostamp"

// WriteOptions controls a single MetadataWriter.Write call.
type WriteOptions struct {
	DryRun bool
	Verify bool
}

// MetadataWriter applies a timestamp to a file's embedded dates and its
// filesystem times. It never returns an error: every outcome is a
// ProcessResult.
type MetadataWriter struct {
	dates    DateWriter
	files    *FileManager
	verifier DateReader
	logger   *slog.Logger
}

// NewMetadataWriter creates a MetadataWriter. verifier may be nil, in which
// case verification and the dry-run current-date lookup are skipped.
func NewMetadataWriter(dates DateWriter, files *FileManager, verifier DateReader, logger *slog.Logger) *MetadataWriter {
	return &MetadataWriter{
		dates:    dates,
		files:    files,
		verifier: verifier,
		logger:   logger.With("component", "writer"),
	}
}

// Write updates path to ts. The embedded dates get ts's digits unchanged;
// the file times get the matching local instant.
func (w *MetadataWriter) Write(ctx context.Context, path string, ts Timestamp, opts WriteOptions) ProcessResult {
	name := filepath.Base(path)
	value := ts.Exif()
	instant := ts.Time()
	result := ProcessResult{
		Path:      path,
		Name:      name,
		Timestamp: instant,
		Value:     value,
	}

	if opts.DryRun {
		if w.verifier != nil {
			if current, err := w.verifier.ReadDate(path); err == nil {
				w.logger.Debug("Current capture date.", "path", path, "current", FormatExif(current), "target", value)
			}
		}
		result.Success = true
		result.Method = MethodDryRun
		result.Message = fmt.Sprintf("Would update timestamp for %s to %s", name, value)
		return result
	}

	result.Method = MethodPrimary
	primaryErr := w.dates.WriteDates(ctx, path, value)
	if primaryErr != nil {
		w.logger.Debug("Primary write failed, trying fallback.", "path", path, "error", primaryErr)
		result.Method = MethodFallback
		result.PrimaryErr = primaryErr

		if fallbackErr := w.writeViaFallback(ctx, path, value); fallbackErr != nil {
			msg := fmt.Sprintf("Error updating metadata: %v; fallback also failed: %v", primaryErr, fallbackErr)
			return failed(result, ErrorTypeFallback, msg, errors.Join(primaryErr, fallbackErr))
		}
	}

	if err := os.Chtimes(path, instant, instant); err != nil {
		msg := fmt.Sprintf("Updated metadata for %s but failed to set file times: %v", name, err)
		return failed(result, ErrorTypeFileTime, msg, err)
	}

	if opts.Verify && w.verifier != nil {
		if err := w.verify(path, value); err != nil {
			if errors.Is(err, ErrDateUnreadable) {
				w.logger.Debug("Skipping verification.", "path", path, "error", err)
			} else {
				msg := fmt.Sprintf("Verification failed for %s: %v", name, err)
				return failed(result, ErrorTypeVerify, msg, err)
			}
		}
	}

	result.Success = true
	result.Message = fmt.Sprintf("Updated metadata and file timestamps for %s to %s", name, value)
	if result.Method == MethodFallback {
		result.Message += " (using fallback method)"
	}
	return result
}

// writeViaFallback writes the dates on a copy in a temporary sibling
// directory and copies the result back over the original.
func (w *MetadataWriter) writeViaFallback(ctx context.Context, path, value string) error {
	tempDir, err := w.files.CreateSiblingTempDir(path)
	if err != nil {
		return err
	}
	defer w.files.RemoveTempDir(tempDir)

	tempPath := filepath.Join(tempDir, fallbackBaseName+filepath.Ext(path))
	defer func() {
		if err := w.files.CleanupFile(tempPath); err != nil {
			w.logger.Warn("Failed to remove temporary copy.", "path", tempPath, "error", err)
		}
	}()

	if err := w.files.CopyFile(path, tempPath); err != nil {
		return err
	}

	if err := w.dates.WriteDates(ctx, tempPath, value); err != nil {
		return err
	}

	if err := w.files.CopyFile(tempPath, path); err != nil {
		return fmt.Errorf("copying updated file back: %w", err)
	}

	return nil
}

func (w *MetadataWriter) verify(path, want string) error {
	got, err := w.verifier.ReadDate(path)
	if err != nil {
		return err
	}
	if FormatExif(got) != want {
		return fmt.Errorf("read back %s, expected %s", FormatExif(got), want)
	}
	return nil
}

func failed(result ProcessResult, errorType ErrorType, msg string, cause error) ProcessResult {
	result.Success = false
	result.Message = msg
	result.ErrorType = errorType
	result.Err = NewProcessingError(errorType, result.Path, msg, cause)
	return result
}
