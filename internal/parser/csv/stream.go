package csv

import (
	"context"
	"io"

	"github.com/WhirlyFan/large-data-parser/pkg/records"
)

// Stream drains src and sends each data record into out. The send blocks
// when out is full, which is the pipeline's backpressure point: while the
// batch loader is flushing, the parser cannot run ahead by more than the
// channel capacity.
//
// Returns nil on EOF, ctx.Err() on cancellation, or the first parse error.
// The caller owns out and is responsible for closing it after Stream
// returns.
func Stream(ctx context.Context, src *Source, out chan<- records.Record) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		select {
		case out <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
