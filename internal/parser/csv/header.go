package csv

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// headerNormalizer folds diacritics so headers exported from spreadsheet
// tools with decorated column names still match the canonical field names.
var headerNormalizer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeHeader canonicalizes one header cell: BOM stripped, diacritics
// folded, surrounding space removed, lowercased.
func NormalizeHeader(cell string) string {
	cell = strings.TrimPrefix(cell, utf8BOM)
	if folded, _, err := transform.String(headerNormalizer, cell); err == nil {
		cell = folded
	}
	return strings.ToLower(strings.TrimSpace(cell))
}
