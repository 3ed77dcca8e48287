package schema

import (
	"reflect"
	"strings"
	"testing"
)

/*
TestDerive validates schema derivation from a normalized header:
  - the synthesized key is always first and typed KindID,
  - looked-up columns get their configured kinds,
  - unlisted columns default to text,
  - an empty header and an "id" header column are rejected.
*/
func TestDerive(t *testing.T) {
	t.Parallel()

	types := map[string]map[string]string{
		"customers": {
			"index":             "integer",
			"subscription_date": "date",
		},
	}

	cases := []struct {
		name      string
		table     string
		header    []string
		want      []Column
		wantError string
	}{
		{
			name:   "customers",
			table:  "customers",
			header: []string{"index", "name", "subscription_date"},
			want: []Column{
				{Name: "id", Kind: KindID},
				{Name: "index", Kind: KindInteger},
				{Name: "name", Kind: KindText},
				{Name: "subscription_date", Kind: KindDate},
			},
		},
		{
			name:   "unknown_table_all_text",
			table:  "unlisted",
			header: []string{"a", "b"},
			want: []Column{
				{Name: "id", Kind: KindID},
				{Name: "a", Kind: KindText},
				{Name: "b", Kind: KindText},
			},
		},
		{
			name:      "empty_header",
			table:     "customers",
			header:    nil,
			wantError: "header must not be empty",
		},
		{
			name:      "id_collision",
			table:     "customers",
			header:    []string{"id", "name"},
			wantError: "collides with the synthesized key",
		},
	}

	d := Deriver{Types: types}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := d.Derive(tc.table, tc.header)
			if tc.wantError != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantError) {
					t.Fatalf("err=%v; want %q", err, tc.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("Derive: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Derive=%v; want %v", got, tc.want)
			}
		})
	}
}

// TestDeriveNilLookup checks a Deriver without any configured types.
func TestDeriveNilLookup(t *testing.T) {
	t.Parallel()

	got, err := Deriver{}.Derive("t", []string{"x"})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	want := []Column{{Name: "id", Kind: KindID}, {Name: "x", Kind: KindText}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Derive=%v; want %v", got, want)
	}
}

// TestKind pins the name and SQL type mappings.
func TestKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind    Kind
		name    string
		sqlType string
	}{
		{KindText, "text", "TEXT"},
		{KindInteger, "integer", "INTEGER"},
		{KindDate, "date", "TEXT"},
		{KindID, "id", "INTEGER"},
	}
	for _, tc := range cases {
		tc := tc
		if got := tc.kind.String(); got != tc.name {
			t.Errorf("%v.String()=%q; want %q", tc.kind, got, tc.name)
		}
		if got := tc.kind.SQLType(); got != tc.sqlType {
			t.Errorf("%s.SQLType()=%q; want %q", tc.name, got, tc.sqlType)
		}
	}
}

// TestInsertColumns checks that the synthesized key never participates in
// inserts.
func TestInsertColumns(t *testing.T) {
	t.Parallel()

	cols := []Column{
		{Name: "id", Kind: KindID},
		{Name: "index", Kind: KindInteger},
		{Name: "name", Kind: KindText},
	}
	want := []string{"index", "name"}
	if got := InsertColumns(cols); !reflect.DeepEqual(got, want) {
		t.Fatalf("InsertColumns=%v; want %v", got, want)
	}
}
