// Package transform applies the fixed per-column coercions to parsed
// records before they are handed to the store.
//
// Exactly two coercions exist: integer columns are parsed with
// strconv.ParseInt and date columns with time.Parse. Text columns pass
// through unchanged, with the empty string standing in for missing values.
// An unparseable or missing value in an integer/date column is a row-level
// failure; the caller decides how far that failure propagates.
package transform

import (
	"fmt"
	"strconv"
	"time"

	"github.com/WhirlyFan/large-data-parser/internal/schema"
	"github.com/WhirlyFan/large-data-parser/pkg/records"
)

// CoerceRow converts one record into the ordered value slice for a bulk
// insert, aligned with schema.InsertColumns(cols). The synthesized key
// column is skipped; the store assigns it.
//
// Every non-key column is non-nullable, so integer and date columns reject
// empty values as well as unparseable ones. Errors name the line and column
// to keep batch failures diagnosable.
func CoerceRow(cols []schema.Column, rec records.Record, dateLayout string) ([]any, error) {
	out := make([]any, 0, len(cols)-1)

	for _, c := range cols {
		if c.Kind == schema.KindID {
			continue
		}
		raw := rec.Fields[c.Name]

		switch c.Kind {
		case schema.KindInteger:
			if raw == "" {
				return nil, coerceErr(rec.Line, c.Name, "empty value for integer column")
			}
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, coerceErr(rec.Line, c.Name, fmt.Sprintf("parse integer %q", raw))
			}
			out = append(out, n)

		case schema.KindDate:
			if raw == "" {
				return nil, coerceErr(rec.Line, c.Name, "empty value for date column")
			}
			t, err := time.Parse(dateLayout, raw)
			if err != nil {
				return nil, coerceErr(rec.Line, c.Name, fmt.Sprintf("parse date %q with layout %s", raw, dateLayout))
			}
			out = append(out, t)

		default:
			// Text columns accept anything, including the empty string.
			out = append(out, raw)
		}
	}
	return out, nil
}

func coerceErr(line int, column, msg string) error {
	return fmt.Errorf("coerce: line %d: column %q: %s", line, column, msg)
}
