package httpds

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
)

// FetchResult reports what FetchFile did for one archive.
type FetchResult struct {
	// Path is the local file the archive lives at.
	Path string

	// Skipped is true when the destination already existed and no network
	// work was performed.
	Skipped bool

	// Bytes is the number of bytes written (0 when Skipped).
	Bytes int64
}

// FetchFile downloads url into dest, streaming the body to disk without
// buffering it in memory.
//
// The fetch is idempotent: when dest already exists, the download is skipped
// and the existing file is used as-is. The body is first written to a
// temporary file next to dest and renamed into place on success, so an
// interrupted download never leaves a partial file at dest.
func (c *Client) FetchFile(ctx context.Context, url, dest string) (FetchResult, error) {
	if dest == "" {
		return FetchResult{}, fmt.Errorf("httpds: fetch destination must not be empty")
	}

	if _, err := os.Stat(dest); err == nil {
		log.Printf("fetch: skip, %s already exists", dest)
		return FetchResult{Path: dest, Skipped: true}, nil
	} else if !os.IsNotExist(err) {
		return FetchResult{}, fmt.Errorf("httpds: stat %s: %w", dest, err)
	}

	start := time.Now()

	resp, err := c.Get(ctx, url)
	if err != nil {
		return FetchResult{}, fmt.Errorf("httpds: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FetchResult{}, fmt.Errorf("httpds: fetch %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".partial-*")
	if err != nil {
		return FetchResult{}, fmt.Errorf("httpds: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return FetchResult{}, fmt.Errorf("httpds: download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return FetchResult{}, fmt.Errorf("httpds: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return FetchResult{}, fmt.Errorf("httpds: move download into place: %w", err)
	}

	log.Printf("fetch: downloaded %s to %s in %s",
		humanize.Bytes(uint64(n)), dest, time.Since(start).Truncate(time.Millisecond))

	return FetchResult{Path: dest, Bytes: n}, nil
}
