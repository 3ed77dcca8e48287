// Package archive turns a gzip-compressed tar archive into discrete files in
// a destination directory, streaming entry-by-entry so that no dataset is
// ever buffered whole in memory.
//
// Extraction is idempotent across runs: a successful unpack writes a
// completion marker containing the xxh3 digest of the compressed archive.
// A later run with a matching marker skips the work entirely, while an
// interrupted run (no marker) or a replaced archive (stale digest) is
// re-extracted from scratch.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/xxh3"
)

// MarkerName is the completion marker file written into the destination
// directory after a successful extraction. Its contents are the hex xxh3
// digest of the compressed archive the directory was extracted from.
const MarkerName = ".extracted"

// Result reports what Extract did for one archive.
type Result struct {
	// Files is the number of regular files written (0 when Skipped).
	Files int

	// Bytes is the total uncompressed size written (0 when Skipped).
	Bytes int64

	// Skipped is true when a matching completion marker was found and no
	// unpack work was performed.
	Skipped bool
}

// EnsureDir makes sure the named directory exists, creating parents as
// needed. It is a no-op when the directory is already present.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("archive: ensure dir %s: %w", path, err)
	}
	return nil
}

// Extract decompresses and unpacks the gzip-compressed tar archive at src
// into destDir. Directory entries are created as needed; regular file
// entries are streamed to disk. Entries that would escape destDir are
// rejected.
//
// When destDir already carries a completion marker whose digest matches src,
// Extract reports a skip instead of re-extracting. All failure modes
// (unreadable source, unwritable destination, corrupt gzip stream, corrupt
// tar structure) surface as a single wrapped error.
func Extract(ctx context.Context, src, destDir string) (Result, error) {
	digest, err := archiveDigest(src)
	if err != nil {
		return Result{}, err
	}

	if markerMatches(destDir, digest) {
		log.Printf("archive: skip, %s already extracted to %s", filepath.Base(src), destDir)
		return Result{Skipped: true}, nil
	}

	if err := EnsureDir(destDir); err != nil {
		return Result{}, err
	}

	start := time.Now()

	f, err := os.Open(src)
	if err != nil {
		return Result{}, fmt.Errorf("archive: open source: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return Result{}, fmt.Errorf("archive: gzip reader: %w", err)
	}
	defer gz.Close()

	var res Result
	tr := tar.NewReader(gz)
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("archive: read tar entry: %w", err)
		}

		target, err := entryPath(destDir, hdr.Name)
		if err != nil {
			return res, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := EnsureDir(target); err != nil {
				return res, err
			}

		case tar.TypeReg:
			n, err := writeEntry(target, tr)
			if err != nil {
				return res, err
			}
			res.Files++
			res.Bytes += n

		default:
			// Symlinks, devices, and other entry types have no place in a
			// dataset archive.
			log.Printf("archive: ignoring entry %s (type %c)", hdr.Name, hdr.Typeflag)
		}
	}

	if err := writeMarker(destDir, digest); err != nil {
		return res, err
	}

	log.Printf("archive: extracted %d files (%s) from %s in %s",
		res.Files, humanize.Bytes(uint64(res.Bytes)), filepath.Base(src),
		time.Since(start).Truncate(time.Millisecond))

	return res, nil
}

// entryPath resolves a tar entry name inside destDir, rejecting absolute
// names and names that traverse outside the destination.
func entryPath(destDir, name string) (string, error) {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive: entry %q escapes destination", name)
	}
	return filepath.Join(destDir, clean), nil
}

// writeEntry streams one regular tar entry to target, creating parent
// directories as needed. Returns the number of bytes written.
func writeEntry(target string, r io.Reader) (int64, error) {
	if err := EnsureDir(filepath.Dir(target)); err != nil {
		return 0, err
	}

	out, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("archive: create %s: %w", target, err)
	}

	n, err := io.Copy(out, r)
	if err != nil {
		out.Close()
		return n, fmt.Errorf("archive: write %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("archive: close %s: %w", target, err)
	}
	return n, nil
}

// archiveDigest returns the hex xxh3 digest of the compressed archive bytes.
// Hashing the compressed stream keeps the check to one cheap read without
// decompressing anything.
func archiveDigest(src string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("archive: open source: %w", err)
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("archive: hash source: %w", err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// markerMatches reports whether destDir holds a completion marker recording
// the given digest.
func markerMatches(destDir, digest string) bool {
	b, err := os.ReadFile(filepath.Join(destDir, MarkerName))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(b)) == digest
}

// writeMarker records a successful extraction. The marker is written last so
// an interrupted run leaves no marker and is re-extracted next time.
func writeMarker(destDir, digest string) error {
	path := filepath.Join(destDir, MarkerName)
	if err := os.WriteFile(path, []byte(digest+"\n"), 0o644); err != nil {
		return fmt.Errorf("archive: write completion marker: %w", err)
	}
	return nil
}
