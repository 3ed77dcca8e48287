// Package pipeline wires fetch, extraction, parsing, schema derivation, and
// batched loading into one run.
//
// Each eligible file in the extracted data directory gets its own
// independent pipeline; files run concurrently with no ordering guarantee
// between them. Failure is file-scoped: a failed source is logged and
// counted while its siblings run to completion, and the shared store
// connection is released exactly once on every exit path. Already-loaded
// tables are never rolled back; idempotent re-runs (skip-if-exists fetch
// and extraction, drop-and-recreate tables) are the recovery mechanism.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/WhirlyFan/large-data-parser/internal/archive"
	"github.com/WhirlyFan/large-data-parser/internal/config"
	"github.com/WhirlyFan/large-data-parser/internal/datasource/httpds"
	csvparser "github.com/WhirlyFan/large-data-parser/internal/parser/csv"
	"github.com/WhirlyFan/large-data-parser/internal/schema"
	"github.com/WhirlyFan/large-data-parser/internal/storage"
	"github.com/WhirlyFan/large-data-parser/pkg/records"
)

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	newRepositoryFn = storage.New

	fetchFileFn = func(ctx context.Context, url, dest string) (httpds.FetchResult, error) {
		return httpds.NewClient(httpds.Config{}).FetchFile(ctx, url, dest)
	}

	extractFn = archive.Extract
)

// counters holds cross-pipeline statistics for one run.
//
// All fields are updated atomically by the per-file goroutines.
type counters struct {
	loaded atomic.Int64 // record sources loaded to completion
	failed atomic.Int64 // record sources that hit a terminal error
	rows   atomic.Int64 // rows inserted across all sources
}

// Run executes a full ingest: fetch the archive (skip when already
// downloaded), extract it (skip when the completion marker matches),
// enumerate eligible files, and load each one into its own freshly
// recreated table.
//
// Run returns a non-nil error when any record source failed, after all
// sources have finished.
func Run(ctx context.Context, cfg config.Config) error {
	start := time.Now()

	if err := archive.EnsureDir(cfg.DataDir); err != nil {
		return err
	}

	dest := cfg.Archive.DownloadPath
	if dest == "" {
		dest = filepath.Join(cfg.DataDir, httpds.FilenameFromURL(cfg.Archive.URL))
	}

	fetched, err := fetchFileFn(ctx, cfg.Archive.URL, dest)
	if err != nil {
		return fmt.Errorf("pipeline: fetch archive: %w", err)
	}

	if _, err := extractFn(ctx, fetched.Path, cfg.DataDir); err != nil {
		return fmt.Errorf("pipeline: extract archive: %w", err)
	}

	files, err := listSources(cfg.DataDir, cfg.Files.Extension)
	if err != nil {
		return fmt.Errorf("pipeline: enumerate sources: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("pipeline: no %s files found under %s", cfg.Files.Extension, cfg.DataDir)
	}

	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind: cfg.Storage.Kind,
		DSN:  cfg.Storage.DSN,
	})
	if err != nil {
		return fmt.Errorf("pipeline: open store: %w", err)
	}
	defer repo.Close()

	// SQLite serializes writers at the file level but not gracefully under
	// concurrent transactions from one process; one weight-1 semaphore
	// shared by all loaders keeps bulk inserts strictly sequential.
	flushSem := semaphore.NewWeighted(1)

	deriver := schema.Deriver{Types: cfg.Types}

	var stats counters
	var g errgroup.Group

	// Plain errgroup (no WithContext): a failing source must not cancel its
	// siblings. Wait still reports the first failure.
	for _, path := range files {
		path := path
		g.Go(func() error {
			base := filepath.Base(path)
			n, err := runFile(ctx, repo, flushSem, deriver, cfg, path)
			stats.rows.Add(n)
			if err != nil {
				stats.failed.Add(1)
				log.Printf("pipeline: %s failed: %v", base, err)
				return fmt.Errorf("%s: %w", base, err)
			}
			stats.loaded.Add(1)
			return nil
		})
	}

	firstErr := g.Wait()

	log.Printf(
		"pipeline: summary sources=%d loaded=%d failed=%d rows=%d elapsed=%s",
		len(files),
		stats.loaded.Load(),
		stats.failed.Load(),
		stats.rows.Load(),
		time.Since(start).Truncate(time.Millisecond),
	)

	if firstErr != nil {
		return fmt.Errorf("pipeline: %d of %d sources failed: %w", stats.failed.Load(), len(files), firstErr)
	}
	return nil
}

// runFile executes one record source's pipeline to completion: derive the
// table name and schema from the file, drop and recreate the table, then
// stream records through the batch loader. Returns the number of rows
// inserted.
func runFile(
	ctx context.Context,
	repo storage.Repository,
	flushSem *semaphore.Weighted,
	deriver schema.Deriver,
	cfg config.Config,
	path string,
) (int64, error) {
	table := TableName(path)
	if table == "" {
		return 0, fmt.Errorf("pipeline: cannot derive a table name from %q", filepath.Base(path))
	}

	src, err := csvparser.Open(path, csvparser.Options{})
	if err != nil {
		return 0, err
	}
	defer src.Close()

	// Schema derivation happens exactly once per source, before any insert.
	cols, err := deriver.Derive(table, src.Header())
	if err != nil {
		return 0, err
	}

	if err := repo.Exec(ctx, schema.BuildDropTableSQL(table)); err != nil {
		return 0, fmt.Errorf("drop table %s: %w", table, err)
	}
	createSQL, err := schema.BuildCreateTableSQL(table, cols)
	if err != nil {
		return 0, err
	}
	if err := repo.Exec(ctx, createSQL); err != nil {
		return 0, fmt.Errorf("create table %s: %w", table, err)
	}

	// The bounded channel is the backpressure coupling: the parser blocks on
	// send whenever the loader is mid-flush and the buffer is full.
	fileCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan records.Record, cfg.Runtime.ChannelBuffer)

	var streamErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)
		if err := csvparser.Stream(fileCtx, src, out); err != nil {
			streamErr = err
			// Stop the loader without flushing rows from a failed source.
			cancel()
		}
	}()

	total, loadErr := storage.LoadBatches(fileCtx, out, storage.LoadConfig{
		Table:      table,
		Columns:    cols,
		BatchSize:  cfg.Runtime.BatchSize,
		DateLayout: cfg.Runtime.DateLayout,
		Flush:      flushSem,
	}, func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		return repo.CopyFrom(ctx, table, columns, rows)
	})
	if loadErr != nil {
		// Unblock the producer if it is parked on a full channel.
		cancel()
	}
	wg.Wait()

	// A parse failure cancels the loader too; report the root cause, not the
	// resulting context error.
	if streamErr != nil && !errors.Is(streamErr, context.Canceled) {
		return total, streamErr
	}
	if loadErr != nil {
		return total, loadErr
	}
	if streamErr != nil {
		return total, streamErr
	}

	log.Printf("pipeline: %s: loaded %d rows into table %s", filepath.Base(path), total, table)
	return total, nil
}

// TableName derives the destination table name from a source file path: the
// base name without extension, folded to a lower snake_case identifier.
func TableName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return csvparser.NormalizeName(base)
}

// listSources enumerates eligible record source files under dir: extension
// must match (case-insensitively) and hidden files and directories are
// excluded. Results are sorted for deterministic scheduling.
func listSources(dir, ext string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(name), ext) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
