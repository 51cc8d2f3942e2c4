package taxonomy

import (
	"strings"
	"testing"
	"unicode"

	"pgregory.net/rapid"
)

func TestCatalogLookupLastWriteWins(t *testing.T) {
	catalog := NewCatalog([]Entry{
		{Order: "A", Family: "B", Latin: "Turdus merula"},
		{Order: "C", Family: "D", Latin: "turdus MERULA"},
	})

	if catalog.Len() != 2 {
		t.Fatalf("expected both rows retained, got %d", catalog.Len())
	}
	idx, ok := catalog.Lookup("Turdus merula")
	if !ok || idx != 1 {
		t.Fatalf("Lookup = %d, %v; want 1, true", idx, ok)
	}
}

func TestCatalogNil(t *testing.T) {
	var catalog *Catalog
	if catalog.Len() != 0 {
		t.Fatal("nil catalog should be empty")
	}
	if _, ok := catalog.Lookup("x"); ok {
		t.Fatal("nil catalog lookup should miss")
	}
	if _, ok := catalog.Entry(0); ok {
		t.Fatal("nil catalog entry should miss")
	}
}

func TestGenusOf(t *testing.T) {
	tests := map[string]string{
		"Turdus merula":         "Turdus",
		"  Parus   major ":      "Parus",
		"Corvus":                "Corvus",
		"Motacilla alba yarrel": "Motacilla",
		"":                      "Unknown",
		"   ":                   "Unknown",
	}
	for latin, want := range tests {
		if got := GenusOf(latin); got != want {
			t.Errorf("GenusOf(%q) = %q, want %q", latin, got, want)
		}
	}
	if got := (Entry{Latin: "Pica pica"}).Genus(); got != "Pica" {
		t.Errorf("Entry.Genus = %q", got)
	}
}

func TestNormalizeComposesAndLowers(t *testing.T) {
	decomposed := "Bu\u0308lbu\u0308l"
	if got := Normalize(decomposed); got != "b\u00fclb\u00fcl" {
		t.Fatalf("Normalize(%q) = %q", decomposed, got)
	}
	if got := Normalize("TURDUS Merula"); got != "turdus merula" {
		t.Fatalf("Normalize = %q", got)
	}
}

func TestCatalogLookupAnyCasing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[A-Za-z]{2,10}`), 1, 20).Draw(t, "latins")
		entries := make([]Entry, 0, len(words))
		seen := map[string]int{}
		for i, w := range words {
			latin := w + " " + strings.ToLower(w)
			entries = append(entries, Entry{Order: "O", Family: "F", Latin: latin})
			seen[strings.ToLower(latin)] = i
		}
		catalog := NewCatalog(entries)

		pick := rapid.IntRange(0, len(entries)-1).Draw(t, "pick")
		query := []rune(entries[pick].Latin)
		for i, r := range query {
			if rapid.Bool().Draw(t, "upper") {
				query[i] = unicode.ToUpper(r)
			} else {
				query[i] = unicode.ToLower(r)
			}
		}

		idx, ok := catalog.Lookup(string(query))
		if !ok {
			t.Fatalf("Lookup(%q) missed", string(query))
		}
		if want := seen[strings.ToLower(entries[pick].Latin)]; idx != want {
			t.Fatalf("Lookup(%q) = %d, want %d", string(query), idx, want)
		}
	})
}
