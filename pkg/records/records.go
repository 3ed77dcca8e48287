// Package records defines the row representation shared by the parser,
// transform, and storage layers.
package records

// Record is one parsed data row. Fields maps normalized column names to the
// raw text values read from the source file; values stay raw until the batch
// loader applies the configured coercions.
//
// Records are ephemeral: they are consumed and discarded after insertion.
type Record struct {
	// Line is the 1-based line number in the source file. The header is
	// line 1, so the first data record is line 2.
	Line int

	// Fields maps column name -> raw text value.
	Fields map[string]string
}
