// Package schema derives per-table column schemas from a record source's
// header and a closed-world type lookup, and renders the SQLite DDL for
// them.
//
// Type assignment is deliberately a static lookup keyed by (table name,
// column name) rather than value sniffing: it keeps ingestion single-pass on
// arbitrarily large files, and adding a new dataset means adding lookup
// entries, not inference logic.
package schema

// Kind is the logical storage type of a column.
type Kind int

const (
	// KindText is the default for any column not present in the lookup.
	KindText Kind = iota

	// KindInteger marks a column whose raw values are coerced with
	// strconv.ParseInt before insert.
	KindInteger

	// KindDate marks a column whose raw values are coerced with time.Parse
	// before insert.
	KindDate

	// KindID is the synthesized auto-increment primary key. It never comes
	// from the source header and is never part of an insert.
	KindID
)

// String returns the logical type name used in configuration and logs.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDate:
		return "date"
	case KindID:
		return "id"
	default:
		return "text"
	}
}

// SQLType returns the SQLite column type for the kind. Dates are stored as
// TEXT; the coercion layer validates them before insert.
func (k Kind) SQLType() string {
	switch k {
	case KindInteger, KindID:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// Column is one entry of a derived table schema. Every non-key column is
// NOT NULL; nullability is not configurable in this model.
type Column struct {
	Name string
	Kind Kind
}

// InsertColumns returns the names of the columns that participate in
// inserts, i.e. everything except the synthesized key, in schema order.
func InsertColumns(cols []Column) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if c.Kind == KindID {
			continue
		}
		out = append(out, c.Name)
	}
	return out
}
