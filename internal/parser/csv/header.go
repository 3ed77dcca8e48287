package csv

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const utf8BOM = "\uFEFF"

// stripMarks removes combining marks after NFD decomposition, folding
// accented characters to their ASCII base ("Čas" -> "Cas").
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
func StripHeaderBOM(headers []string) []string {
	if len(headers) == 0 {
		return headers
	}
	if strings.HasPrefix(headers[0], utf8BOM) {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}
	return headers
}

// NormalizeName folds a raw header cell (or file base name) into a stable
// lower snake_case identifier usable as a column or table name:
//
//	"Subscription Date" -> "subscription_date"
//	"Číslo vozidla"     -> "cislo_vozidla"
//
// Diacritics are folded to their base characters, runs of non-alphanumeric
// characters collapse into a single underscore, and leading/trailing
// underscores are trimmed. An input with no usable characters returns "".
func NormalizeName(raw string) string {
	s := strings.TrimSpace(raw)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := true // swallow leading separators
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// normalizeHeader turns the raw header row into normalized, unique column
// names. Empty or unusable cells become positional col_N names.
func normalizeHeader(raw []string) []string {
	raw = StripHeaderBOM(raw)
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, cell := range raw {
		name := NormalizeName(cell)
		if name == "" {
			name = positionalName(i)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = name + "_" + strconv.Itoa(n+1)
		} else {
			seen[name] = 1
		}
		out[i] = name
	}
	return out
}

func positionalName(i int) string {
	return "col_" + strconv.Itoa(i)
}
