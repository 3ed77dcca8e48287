package csv

import (
	"reflect"
	"testing"
)

// TestNormalizeName covers folding to lower snake_case identifiers.
func TestNormalizeName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Index", "index"},
		{"Subscription Date", "subscription_date"},
		{"Customer Id", "customer_id"},
		{"  padded  ", "padded"},
		{"Číslo vozidla", "cislo_vozidla"},
		{"Größe", "gro_e"}, // ß has no combining-mark decomposition and separates
		{"a--b__c", "a_b_c"},
		{"2nd Column", "2nd_column"},
		{"(parens)", "parens"},
		{"___", ""},
		{"", ""},
	}

	for _, tc := range cases {
		tc := tc
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q)=%q; want %q", tc.in, got, tc.want)
		}
	}
}

/*
TestNormalizeHeader covers the full header treatment:
 1. every cell is normalized,
 2. duplicates after normalization get _N suffixes,
 3. empty or unusable cells become positional col_N names.
*/
func TestNormalizeHeader(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "plain",
			in:   []string{"Index", "First Name", "Last Name"},
			want: []string{"index", "first_name", "last_name"},
		},
		{
			name: "duplicates",
			in:   []string{"Name", "name", "NAME"},
			want: []string{"name", "name_2", "name_3"},
		},
		{
			name: "empty_cells_positional",
			in:   []string{"", "x", "??"},
			want: []string{"col_0", "x", "col_2"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := normalizeHeader(append([]string(nil), tc.in...))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("normalizeHeader(%v)=%v; want %v", tc.in, got, tc.want)
			}
		})
	}
}

// TestStripHeaderBOM checks the BOM is removed only from the first cell.
func TestStripHeaderBOM(t *testing.T) {
	t.Parallel()

	got := StripHeaderBOM([]string{"\uFEFF" + "Index", "\uFEFF" + "Name"})
	if got[0] != "Index" {
		t.Errorf("first cell=%q; want Index", got[0])
	}
	if got[1] != "\uFEFF"+"Name" {
		t.Errorf("second cell=%q; BOM beyond cell 0 must be untouched", got[1])
	}
	if out := StripHeaderBOM(nil); out != nil {
		t.Errorf("nil input returned %v", out)
	}
}
