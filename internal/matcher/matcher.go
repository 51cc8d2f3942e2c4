package matcher

import (
	"strings"
	"unicode"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"birdsort/internal/taxonomy"
)

// Matcher resolves filename stems to catalog entry indices.
type Matcher struct {
	latin     *index
	localized *index
}

// index is one leftmost-first automaton plus the entry index behind each
// pattern id. Empty names are left out of the automaton, so ids and entry
// indices diverge.
type index struct {
	ac      ahocorasick.AhoCorasick
	entries []int
}

// New builds a Matcher over entries. Patterns are registered in catalog row
// order, which decides ties between names starting at the same offset.
func New(entries []taxonomy.Entry) *Matcher {
	latin := make([]string, len(entries))
	localized := make([]string, len(entries))
	for i, entry := range entries {
		latin[i] = fold(entry.Latin)
		localized[i] = fold(entry.Localized)
	}
	return &Matcher{
		latin:     newIndex(latin),
		localized: newIndex(localized),
	}
}

func newIndex(names []string) *index {
	patterns := make([]string, 0, len(names))
	entries := make([]int, 0, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		patterns = append(patterns, name)
		entries = append(entries, i)
	}
	if len(patterns) == 0 {
		return nil
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		MatchKind: ahocorasick.LeftMostFirstMatch,
	})
	return &index{ac: builder.Build(patterns), entries: entries}
}

func (x *index) find(text string) (int, bool) {
	if x == nil || text == "" {
		return 0, false
	}
	match := x.ac.Iter(text).Next()
	if match == nil {
		return 0, false
	}
	return x.entries[match.Pattern()], true
}

// Match returns the entry index for the first species name found in stem.
// A latin hit anywhere in the stem takes precedence over any localized hit.
func (m *Matcher) Match(stem string) (int, bool) {
	if m == nil || stem == "" {
		return 0, false
	}
	text := fold(stem)
	if idx, ok := m.latin.find(text); ok {
		return idx, true
	}
	return m.localized.find(text)
}

// fold normalizes case and collapses runs of whitespace, underscores and
// hyphens to a single space, so "IMG_Turdus_merula" contains "turdus merula".
func fold(s string) string {
	return strings.Join(strings.FieldsFunc(taxonomy.Normalize(s), isSeparator), " ")
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}
