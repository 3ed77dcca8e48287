// This file implements a generic, batched loader that drains parsed records
// from a channel, applies the per-column coercions, and invokes a provided
// bulk-insert function (CopyFn) per batch.
//
// Backpressure: the flush runs synchronously inside the consume loop, so
// while a batch is being inserted nothing is taken from 'in', so the producer
// blocks as soon as the channel fills, and peak memory stays at
// O(batchSize + channel capacity) records regardless of file size.
//
// Logging: on every successful flush, a concise progress line is emitted
// with running totals and instantaneous rows/sec since the previous flush.

package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/WhirlyFan/large-data-parser/internal/schema"
	"github.com/WhirlyFan/large-data-parser/internal/transform"
	"github.com/WhirlyFan/large-data-parser/pkg/records"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations
// should insert the provided rows (aligned to 'columns' order) and return
// the number of rows reported as inserted. The function should be safe for
// repeated calls and cancel promptly when ctx is done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadConfig carries the per-source settings for LoadBatches.
type LoadConfig struct {
	// Table names the destination, used for log lines only.
	Table string

	// Columns is the derived schema, including the synthesized key.
	Columns []schema.Column

	// BatchSize is the flush threshold; must be > 0.
	BatchSize int

	// DateLayout is the time.Parse layout for date-typed columns.
	DateLayout string

	// Flush optionally serializes bulk inserts across concurrent per-file
	// pipelines. SQLite does not interleave concurrent writers safely, so
	// the orchestrator passes a weight-1 semaphore shared by all loaders.
	Flush *semaphore.Weighted
}

// LoadBatches drains records from 'in', coerces each one against the derived
// schema, groups the coerced rows into batches of BatchSize, and calls
// copyFn for each non-empty batch. When the channel closes, any partial
// batch is flushed with one final call; completion is reported only after
// that terminal flush succeeds.
//
// A coercion failure is terminal for the record source: the first bad value
// stops the load and is returned. Sibling sources are unaffected (they run
// in their own pipelines); rows from earlier successful flushes remain in
// the store, consistent with the file-scoped, non-transactional failure
// model.
//
// Cancellation: returns (total, ctx.Err()) when canceled.
func LoadBatches(
	ctx context.Context,
	in <-chan records.Record,
	cfg LoadConfig,
	copyFn CopyFn,
) (int64, error) {
	if cfg.BatchSize <= 0 {
		return 0, fmt.Errorf("loader: batch size must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("loader: copyFn must not be nil")
	}

	columns := schema.InsertColumns(cfg.Columns)

	var (
		total       int64
		batches     int64
		batch       = make([][]any, 0, cfg.BatchSize)
		start       = time.Now()
		lastFlushTS = start
		lastTotal   int64
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		// Intake is suspended for the duration of the insert: nothing reads
		// from 'in' until copyFn returns.
		if cfg.Flush != nil {
			if err := cfg.Flush.Acquire(ctx, 1); err != nil {
				return err
			}
		}
		n, err := copyFn(ctx, columns, batch)
		if cfg.Flush != nil {
			cfg.Flush.Release(1)
		}
		total += n

		// Reuse allocated slice; keep capacity to avoid churn.
		batch = batch[:0]

		if err != nil {
			log.Printf("loader: %s: insert failed after=%d total=%d err=%v", cfg.Table, n, total, err)
			return err
		}

		// Progress log per successful batch.
		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		insertedSinceLast := total - lastTotal
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(insertedSinceLast) / sinceLast.Seconds()
		}
		log.Printf(
			"loader: %s batch #%d: rps=%.0f inserted=%d total_inserted=%d elapsed=%s",
			cfg.Table,
			batches,
			rps,
			n,
			total,
			now.Sub(start).Truncate(time.Millisecond),
		)
		lastFlushTS = now
		lastTotal = total

		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case rec, ok := <-in:
			if !ok {
				// Channel closed. A canceled context here means the producer
				// failed and closed the channel on its way out; do not flush
				// rows from a failed source.
				if err := ctx.Err(); err != nil {
					return total, err
				}
				if err := flush(); err != nil {
					return total, err
				}
				log.Printf("loader: %s: input closed, total_inserted=%d batches=%d", cfg.Table, total, batches)
				return total, nil
			}

			row, err := transform.CoerceRow(cfg.Columns, rec, cfg.DateLayout)
			if err != nil {
				return total, fmt.Errorf("loader: %s: %w", cfg.Table, err)
			}

			batch = append(batch, row)
			if len(batch) >= cfg.BatchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}
