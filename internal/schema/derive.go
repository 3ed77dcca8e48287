package schema

import "fmt"

// KeyColumn is the name of the synthesized auto-increment primary key. It is
// always the first column of every derived schema.
const KeyColumn = "id"

// Deriver maps a record source's header onto an ordered column schema using
// a static (table, column) -> logical type lookup.
//
// The lookup is injected data, not code: table name -> column name ->
// "integer" or "date". Columns absent from the lookup default to text.
type Deriver struct {
	Types map[string]map[string]string
}

// Derive returns the ordered column schema for the named table given its
// normalized header. The synthesized primary key is always first and is not
// sourced from the header; a header that itself carries a column named "id"
// is rejected because the model reserves that name.
//
// Derivation is a pure lookup and must run exactly once per record source,
// before any batch for that source is flushed.
func (d Deriver) Derive(table string, header []string) ([]Column, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("schema: table %s: header must not be empty", table)
	}

	cols := make([]Column, 0, len(header)+1)
	cols = append(cols, Column{Name: KeyColumn, Kind: KindID})

	lookup := d.Types[table]
	for _, name := range header {
		if name == KeyColumn {
			return nil, fmt.Errorf("schema: table %s: header column %q collides with the synthesized key", table, KeyColumn)
		}
		cols = append(cols, Column{Name: name, Kind: kindOf(lookup[name])})
	}
	return cols, nil
}

// kindOf maps a configured logical type name onto a Kind. Unknown and empty
// names default to text; config validation flags unknown names before a run
// gets this far.
func kindOf(typ string) Kind {
	switch typ {
	case "integer":
		return KindInteger
	case "date":
		return KindDate
	default:
		return KindText
	}
}
