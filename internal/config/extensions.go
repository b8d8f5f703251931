package config

import "strings"

// ParseExtensions splits a comma-separated extension list into lowercase
// entries without a leading dot. Blank and repeated entries are dropped and
// the input order is kept.
func ParseExtensions(csv string) []string {
	var exts []string
	seen := make(map[string]bool)

	for _, part := range strings.Split(csv, ",") {
		ext := strings.ToLower(strings.TrimSpace(part))
		ext = strings.TrimLeft(ext, ".")
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		exts = append(exts, ext)
	}

	return exts
}
