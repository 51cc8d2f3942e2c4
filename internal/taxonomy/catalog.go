package taxonomy

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Entry is one species row from the reference source.
type Entry struct {
	Order     string `json:"order"`
	Family    string `json:"family"`
	Latin     string `json:"latin"`
	Localized string `json:"localized"`
}

// Genus returns the genus derived from the entry's latin name.
func (e Entry) Genus() string {
	return GenusOf(e.Latin)
}

// Catalog is an immutable, indexed set of reference entries.
type Catalog struct {
	Entries []Entry

	latinIndex map[string]int
}

// NewCatalog indexes entries by lowercased latin name. Later rows win when two
// rows share a latin name; Entries keeps both.
func NewCatalog(entries []Entry) *Catalog {
	index := make(map[string]int, len(entries))
	for i, entry := range entries {
		index[Normalize(entry.Latin)] = i
	}
	return &Catalog{Entries: entries, latinIndex: index}
}

// Lookup returns the index of the entry whose latin name matches, ignoring case.
func (c *Catalog) Lookup(latin string) (int, bool) {
	if c == nil {
		return 0, false
	}
	idx, ok := c.latinIndex[Normalize(latin)]
	return idx, ok
}

// Len returns the number of accepted rows.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}

// Entry returns the row at idx.
func (c *Catalog) Entry(idx int) (Entry, bool) {
	if c == nil || idx < 0 || idx >= len(c.Entries) {
		return Entry{}, false
	}
	return c.Entries[idx], true
}

// GenusOf returns the first whitespace-delimited token of a latin name.
func GenusOf(latin string) string {
	fields := strings.Fields(latin)
	if len(fields) == 0 {
		return "Unknown"
	}
	return fields[0]
}

// Normalize folds s for case-insensitive comparison: NFC composition followed
// by Unicode lowercasing. Filenames written on macOS arrive decomposed.
func Normalize(s string) string {
	// cases.Caser is stateful and must not be shared across goroutines.
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}
