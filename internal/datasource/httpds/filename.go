package httpds

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"path"
	"regexp"
)

// filenameCleaner replaces sequences of characters that are unsafe in file
// names with "_".
var filenameCleaner = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// HashString returns a stable SHA1 hex digest of s. It is useful for
// generating deterministic filenames when a natural name is not available.
func HashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

// FilenameFromURL derives a filesystem-safe filename from a raw URL string.
// It uses the final path segment of the URL (which usually carries the
// archive name) but falls back to hashing the entire URL if:
//
//   - the URL cannot be parsed, or
//   - the cleaned path segment is empty.
//
// Unsafe characters in the chosen segment are replaced by underscores, and
// runs of such characters are collapsed into a single "_".
func FilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return HashString(rawURL)
	}

	base := path.Base(u.Path)
	if base == "." || base == "/" {
		base = ""
	}
	clean := filenameCleaner.ReplaceAllString(base, "_")
	if clean == "" || clean == "_" {
		return HashString(rawURL)
	}

	return clean
}
