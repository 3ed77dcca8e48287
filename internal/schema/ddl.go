package schema

import (
	"fmt"
	"strings"
)

// BuildCreateTableSQL returns the SQLite CREATE TABLE statement for the
// given table and derived columns. The statement has the form:
//
//	CREATE TABLE "table" (
//	  "id" INTEGER PRIMARY KEY AUTOINCREMENT,
//	  "col1" TYPE NOT NULL,
//	  "col2" TYPE NOT NULL
//	);
//
// Tables are created fresh each run (the caller drops any existing table
// first), so no IF NOT EXISTS clause is emitted.
func BuildCreateTableSQL(table string, cols []Column) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("schema ddl: table name must not be empty")
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("schema ddl: at least one column is required")
	}

	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("schema ddl: column with empty name in table %s", table)
		}

		var sb strings.Builder
		sb.WriteString(quoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(c.Kind.SQLType())

		if c.Kind == KindID {
			sb.WriteString(" PRIMARY KEY AUTOINCREMENT")
		} else {
			sb.WriteString(" NOT NULL")
		}

		defs = append(defs, sb.String())
	}

	stmt := fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n);",
		quoteIdent(table),
		strings.Join(defs, ",\n  "),
	)
	return stmt, nil
}

// BuildDropTableSQL returns the statement that removes any pre-existing
// table of the same name, enabling the drop-and-recreate reload model.
func BuildDropTableSQL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", quoteIdent(table))
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
