// Package csv provides streaming CSV parsing for large files.
//
// A Source emits records row-by-row without whole-file buffering. The first
// row is the header and is never emitted as data; every later row becomes a
// records.Record keyed by the normalized header names. The sequence is
// forward-only, single-pass, and not restartable; consuming a file twice
// requires opening it twice.
//
// Parsing is fail-fast: a malformed row or a row with the wrong number of
// fields terminates the stream with an error rather than being skipped.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/WhirlyFan/large-data-parser/pkg/records"
)

// ErrNoHeader is returned by Open when the file contains no rows at all.
// It is distinct from I/O errors so callers can tell an empty dataset from
// an unreadable one.
var ErrNoHeader = errors.New("csv: no header available")

// Options configures parsing of one source file.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// KeepSpace disables the default trimming of surrounding whitespace
	// from every field.
	KeepSpace bool
}

// Source is a lazy, forward-only record sequence backed by one file.
type Source struct {
	f      *os.File
	r      *csv.Reader
	header []string
	trim   bool
	line   int
}

// Open opens path and reads its header row. The returned Source must be
// closed by the caller. An empty file (not even a header) yields ErrNoHeader.
func Open(path string, opts Options) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open source: %w", err)
	}

	r := csv.NewReader(f)
	if opts.Comma != 0 {
		r.Comma = opts.Comma
	}
	// Width is enforced after reading rows so the error can name the line.
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	h, err := r.Read()
	if err == io.EOF {
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoHeader, path)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	return &Source{
		f:      f,
		r:      r,
		header: normalizeHeader(h),
		trim:   !opts.KeepSpace,
		line:   1,
	}, nil
}

// Header returns the normalized column names, in file order. The slice is
// owned by the Source and must not be mutated.
func (s *Source) Header() []string { return s.header }

// Next returns the next data record, io.EOF at the end of the file, or a
// terminal error for a malformed row. After a non-EOF error the Source is
// poisoned and further calls are undefined.
func (s *Source) Next() (records.Record, error) {
	rec, err := s.r.Read()
	if err == io.EOF {
		return records.Record{}, io.EOF
	}
	s.line++
	if err != nil {
		return records.Record{}, fmt.Errorf("csv: line %d: %w", s.line, err)
	}
	if len(rec) != len(s.header) {
		return records.Record{}, fmt.Errorf(
			"csv: line %d: incorrect number of fields: expected %d, got %d",
			s.line, len(s.header), len(rec),
		)
	}

	fields := make(map[string]string, len(s.header))
	for i, name := range s.header {
		v := rec[i]
		if s.trim {
			v = strings.TrimSpace(v)
		}
		fields[name] = v
	}
	return records.Record{Line: s.line, Fields: fields}, nil
}

// Close releases the underlying file.
func (s *Source) Close() error { return s.f.Close() }
