package matcher

import (
	"testing"

	"birdsort/internal/taxonomy"
)

func sampleEntries() []taxonomy.Entry {
	return []taxonomy.Entry{
		{Order: "Passeriformes", Family: "Turdidae", Latin: "Turdus merula", Localized: "乌鸫"},
		{Order: "Passeriformes", Family: "Paridae", Latin: "Parus major", Localized: "大山雀"},
		{Order: "Passeriformes", Family: "Corvidae", Latin: "Pica", Localized: ""},
		{Order: "Passeriformes", Family: "Corvidae", Latin: "Pica pica", Localized: "喜鹊"},
		{Order: "Accipitriformes", Family: "Accipitridae", Latin: "Aquila chrysaetos", Localized: "金雕"},
	}
}

func TestMatch(t *testing.T) {
	m := New(sampleEntries())

	tests := []struct {
		stem  string
		want  int
		found bool
	}{
		{"IMG_Turdus_merula_2020", 0, true},
		{"turdus-merula--02", 0, true},
		{"IMG Turdus merula 2020", 0, true},
		{"turdus merula", 0, true},
		{"TURDUS MERULA", 0, true},
		{"parus major at feeder", 1, true},
		{"pica pica nest", 2, true},
		{"2021_喜鹊", 3, true},
		{"金雕 and parus major", 1, true},
		{"Aquila chrysaetos 乌鸫", 4, true},
		{"unknown", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.stem, func(t *testing.T) {
			got, ok := m.Match(tt.stem)
			if ok != tt.found {
				t.Fatalf("Match(%q) found = %v, want %v", tt.stem, ok, tt.found)
			}
			if ok && got != tt.want {
				t.Fatalf("Match(%q) = %d, want %d", tt.stem, got, tt.want)
			}
		})
	}
}

func TestMatchSeparatorsInPattern(t *testing.T) {
	m := New([]taxonomy.Entry{
		{Order: "Passeriformes", Family: "Turdidae", Latin: "Turdus  merula"},
	})
	idx, ok := m.Match("IMG turdus_merula 2020")
	if !ok || idx != 0 {
		t.Fatalf("Match = %d, %v; want 0, true", idx, ok)
	}
}

func TestMatchLatinPrecedence(t *testing.T) {
	m := New([]taxonomy.Entry{
		{Order: "O", Family: "F", Latin: "Turdus merula", Localized: "blackbird"},
		{Order: "O", Family: "F", Latin: "Parus major", Localized: "tit"},
	})

	// The localized name appears first, but any latin hit wins.
	idx, ok := m.Match("blackbird with parus major")
	if !ok || idx != 1 {
		t.Fatalf("Match = %d, %v; want 1, true", idx, ok)
	}
	idx, ok = m.Match("blackbird with tit")
	if !ok || idx != 0 {
		t.Fatalf("Match = %d, %v; want 0, true", idx, ok)
	}
}

func TestMatchDecomposedFilename(t *testing.T) {
	m := New([]taxonomy.Entry{
		{Order: "O", Family: "F", Latin: "Pycnonotus", Localized: "B\u00fclb\u00fcl"},
	})
	idx, ok := m.Match("bu\u0308lbu\u0308l_2019")
	if !ok || idx != 0 {
		t.Fatalf("Match = %d, %v; want 0, true", idx, ok)
	}
}

func TestMatchNil(t *testing.T) {
	var m *Matcher
	if _, ok := m.Match("turdus merula"); ok {
		t.Fatal("nil matcher should not match")
	}
}
