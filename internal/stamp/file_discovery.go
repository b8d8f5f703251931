package stamp

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileDiscovery expands a directory into candidate image paths.
type FileDiscovery struct {
	logger *slog.Logger
	errors *ErrorHandler
}

// NewFileDiscovery creates a new FileDiscovery instance
func NewFileDiscovery(logger *slog.Logger, errors *ErrorHandler) *FileDiscovery {
	return &FileDiscovery{
		logger: logger.With("component", "discovery"),
		errors: errors,
	}
}

// Scan returns the regular files under root whose extension is in
// extensions, compared case-insensitively. Without recursive only direct
// children are considered. If root cannot be enumerated the error is
// reported and an empty list is returned.
func (fd *FileDiscovery) Scan(root string, recursive bool, extensions []string) []string {
	set := ProcessOptions{Extensions: extensions}.extensionSet()
	fd.logger.Debug("Scanning directory.", "root", root, "recursive", recursive, "extensions", extensions)

	var files []string
	var err error
	if recursive {
		files, err = fd.walk(root, set)
	} else {
		files, err = fd.list(root, set)
	}

	if err != nil {
		fd.errors.HandleError(NewProcessingError(ErrorTypeScan, root, "", err))
		return []string{}
	}

	fd.logger.Debug("Scan complete.", "root", root, "matches", len(files))
	return files
}

func (fd *FileDiscovery) list(root string, set map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if MatchesExtension(entry.Name(), set) && isRegularFile(path, entry) {
			files = append(files, path)
		}
	}
	return files, nil
}

func (fd *FileDiscovery) walk(root string, set map[string]bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Unreadable subdirectory: skip it, keep the rest of the tree.
			fd.logger.Warn("Skipping unreadable path.", "path", path, "error", err)
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if MatchesExtension(d.Name(), set) && isRegularFile(path, d) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return files, nil
}

// MatchesExtension reports whether name's extension, lowercased and without
// the dot, is in set.
func MatchesExtension(name string, set map[string]bool) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return false
	}
	return set[strings.ToLower(ext)]
}

// isRegularFile follows symlinks so a link to an image counts as an image.
func isRegularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
