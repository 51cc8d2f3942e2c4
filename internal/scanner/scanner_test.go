package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"birdsort/internal/matcher"
	"birdsort/internal/scancache"
	"birdsort/internal/taxonomy"
)

func blackbirdCatalog() *taxonomy.Catalog {
	return taxonomy.NewCatalog([]taxonomy.Entry{
		{Order: "Passeriformes", Family: "Turdidae", Latin: "Turdus merula", Localized: "乌鸫"},
		{Order: "Passeriformes", Family: "Paridae", Latin: "Parus major", Localized: "大山雀"},
	})
}

func writeFile(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

// countingMatcher records how often the matcher is consulted.
type countingMatcher struct {
	inner NameMatcher
	calls chan string
}

func (m *countingMatcher) Match(stem string) (int, bool) {
	m.calls <- stem
	return m.inner.Match(stem)
}

func (m *countingMatcher) drain() []string {
	var stems []string
	for {
		select {
		case s := <-m.calls:
			stems = append(stems, s)
		default:
			sort.Strings(stems)
			return stems
		}
	}
}

func newCountingMatcher(catalog *taxonomy.Catalog) *countingMatcher {
	return &countingMatcher{inner: matcher.New(catalog.Entries), calls: make(chan string, 1024)}
}

func scan(t *testing.T, opts Options) *Result {
	t.Helper()
	result, err := Scan(context.Background(), opts)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return result
}

func TestScanWorkedExample(t *testing.T) {
	root := t.TempDir()
	now := time.Unix(1700000000, 0)
	writeFile(t, filepath.Join(root, "turdus_merula_01.jpg"), now)
	writeFile(t, filepath.Join(root, "unknown.jpg"), now)

	catalog := taxonomy.NewCatalog([]taxonomy.Entry{
		{Order: "Passeriformes", Family: "Turdidae", Latin: "Turdus merula", Localized: "乌鸫"},
	})
	result := scan(t, Options{Roots: []string{root}, Catalog: catalog, Matcher: matcher.New(catalog.Entries)})

	want := Stats{Total: 2, Matched: 1, Unmatched: 1}
	if result.Stats != want {
		t.Fatalf("stats = %+v, want %+v", result.Stats, want)
	}
	if len(result.Matches) != 1 || result.Matches[0].FileName != "turdus_merula_01.jpg" || result.Matches[0].SpeciesIndex != 0 {
		t.Fatalf("unexpected matches: %+v", result.Matches)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}
	for _, r := range result.Records {
		if !filepath.IsAbs(r.Path) {
			t.Errorf("record path %q is not absolute", r.Path)
		}
		if r.MTime != now.Unix() {
			t.Errorf("record mtime = %d, want %d", r.MTime, now.Unix())
		}
	}
}

func TestScanFiltersUnsupportedEntries(t *testing.T) {
	root := t.TempDir()
	now := time.Unix(1700000000, 0)
	writeFile(t, filepath.Join(root, "Turdus merula.JPG"), now)
	writeFile(t, filepath.Join(root, "nested", "deep", "parus major.heic"), now)
	writeFile(t, filepath.Join(root, "turdus merula.txt"), now)
	writeFile(t, filepath.Join(root, "turdus merula"), now)
	writeFile(t, filepath.Join(root, ".jpg"), now)
	if err := os.MkdirAll(filepath.Join(root, "turdus merula.png"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Symlink(filepath.Join(root, "Turdus merula.JPG"), filepath.Join(root, "link turdus merula.jpg")); err != nil {
			t.Fatalf("symlink: %v", err)
		}
		if err := os.Symlink(filepath.Join(root, "missing.jpg"), filepath.Join(root, "broken.jpg")); err != nil {
			t.Fatalf("symlink: %v", err)
		}
	}

	catalog := blackbirdCatalog()
	result := scan(t, Options{Roots: []string{root}, Catalog: catalog, Matcher: matcher.New(catalog.Entries)})

	if result.Stats.Total != 2 || result.Stats.Matched != 2 {
		t.Fatalf("stats = %+v, want 2 total and 2 matched", result.Stats)
	}
	names := make([]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		names = append(names, m.FileName)
	}
	sort.Strings(names)
	if names[0] != "Turdus merula.JPG" || names[1] != "parus major.heic" {
		t.Fatalf("unexpected matches: %v", names)
	}
}

func TestScanCustomExtensions(t *testing.T) {
	root := t.TempDir()
	now := time.Unix(1700000000, 0)
	writeFile(t, filepath.Join(root, "turdus merula.jpg"), now)
	writeFile(t, filepath.Join(root, "turdus merula.webp"), now)

	catalog := blackbirdCatalog()
	result := scan(t, Options{
		Roots:      []string{root},
		Catalog:    catalog,
		Matcher:    matcher.New(catalog.Entries),
		Extensions: []string{".WEBP"},
	})
	if result.Stats.Total != 1 || result.Matches[0].FileName != "turdus merula.webp" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestScanReusesCacheOnExactMTime(t *testing.T) {
	root := t.TempDir()
	now := time.Unix(1700000000, 0)
	blackbird := filepath.Join(root, "turdus merula.jpg")
	unknown := filepath.Join(root, "unknown.jpg")
	stale := filepath.Join(root, "parus major.jpg")
	writeFile(t, blackbird, now)
	writeFile(t, unknown, now)
	writeFile(t, stale, now.Add(time.Second))

	catalog := blackbirdCatalog()
	cache := scancache.NewIndex([]scancache.Record{
		// Deliberately wrong species: reuse must not consult the matcher.
		{Path: blackbird, MTime: now.Unix(), MatchedLatin: "PARUS MAJOR"},
		{Path: unknown, MTime: now.Unix()},
		{Path: stale, MTime: now.Unix()},
	})
	counting := newCountingMatcher(catalog)

	result := scan(t, Options{Roots: []string{root}, Catalog: catalog, Matcher: counting, Cache: cache})

	if stems := counting.drain(); len(stems) != 1 || stems[0] != "parus major" {
		t.Fatalf("matcher consulted for %v, want only the stale file", stems)
	}
	if result.Stats.Reused != 2 || result.Stats.Matched != 2 || result.Stats.Unmatched != 1 {
		t.Fatalf("stats = %+v", result.Stats)
	}
	for _, m := range result.Matches {
		if m.Path == blackbird && m.SpeciesIndex != 1 {
			t.Fatalf("reused record should keep cached species, got index %d", m.SpeciesIndex)
		}
	}
	for _, r := range result.Records {
		if r.Path == blackbird && r.MatchedLatin != "PARUS MAJOR" {
			t.Fatalf("reused record was rewritten: %+v", r)
		}
		if r.Path == stale && (r.MatchedLatin != "Parus major" || r.MTime != now.Unix()+1) {
			t.Fatalf("stale record not refreshed: %+v", r)
		}
	}
}

func TestScanRematchesWhenCachedSpeciesIsGone(t *testing.T) {
	root := t.TempDir()
	now := time.Unix(1700000000, 0)
	path := filepath.Join(root, "turdus merula.jpg")
	writeFile(t, path, now)

	catalog := blackbirdCatalog()
	cache := scancache.NewIndex([]scancache.Record{
		{Path: path, MTime: now.Unix(), MatchedLatin: "Extinct bird"},
	})
	counting := newCountingMatcher(catalog)

	result := scan(t, Options{Roots: []string{root}, Catalog: catalog, Matcher: counting, Cache: cache})
	if stems := counting.drain(); len(stems) != 1 {
		t.Fatalf("expected the matcher to run once, ran for %v", stems)
	}
	if result.Stats.Reused != 0 || result.Records[0].MatchedLatin != "Turdus merula" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestScanOverlappingRoots(t *testing.T) {
	root := t.TempDir()
	now := time.Unix(1700000000, 0)
	writeFile(t, filepath.Join(root, "sub", "turdus merula.jpg"), now)

	catalog := blackbirdCatalog()
	result := scan(t, Options{
		Roots:   []string{root, filepath.Join(root, "sub"), root},
		Catalog: catalog,
		Matcher: matcher.New(catalog.Entries),
	})
	if result.Stats.Total != 1 || len(result.Records) != 1 {
		t.Fatalf("file counted more than once: %+v", result.Stats)
	}
}

func TestScanMissingRootIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "turdus merula.jpg"), time.Unix(1700000000, 0))

	catalog := blackbirdCatalog()
	result := scan(t, Options{
		Roots:   []string{filepath.Join(root, "does-not-exist"), root},
		Catalog: catalog,
		Matcher: matcher.New(catalog.Entries),
	})
	if result.Stats.Total != 1 {
		t.Fatalf("stats = %+v", result.Stats)
	}
}

func TestScanUnreadableDirectoryIsSkipped(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := t.TempDir()
	now := time.Unix(1700000000, 0)
	writeFile(t, filepath.Join(root, "turdus merula.jpg"), now)
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "parus major.jpg"), now)
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	catalog := blackbirdCatalog()
	result := scan(t, Options{Roots: []string{root}, Catalog: catalog, Matcher: matcher.New(catalog.Entries)})
	if result.Stats.Total != 1 {
		t.Fatalf("stats = %+v", result.Stats)
	}
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 50; i++ {
		writeFile(t, filepath.Join(root, fmt.Sprintf("dir%02d", i%5), fmt.Sprintf("turdus merula %02d.jpg", i)), time.Unix(1700000000, 0))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	catalog := blackbirdCatalog()
	_, err := Scan(ctx, Options{Roots: []string{root}, Catalog: catalog, Matcher: matcher.New(catalog.Entries)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScanRequiresCatalogAndMatcher(t *testing.T) {
	if _, err := Scan(context.Background(), Options{Matcher: matcher.New(nil)}); err == nil {
		t.Fatal("expected error without catalog")
	}
	if _, err := Scan(context.Background(), Options{Catalog: blackbirdCatalog()}); err == nil {
		t.Fatal("expected error without matcher")
	}
}

func TestSplitExt(t *testing.T) {
	tests := []struct {
		name, ext, stem string
		ok              bool
	}{
		{"a.jpg", "jpg", "a", true},
		{"IMG.Final.JPEG", "jpeg", "IMG.Final", true},
		{".jpg", "", "", false},
		{"noext", "", "", false},
		{"trailing.", "", "", false},
	}
	for _, tt := range tests {
		ext, stem, ok := splitExt(tt.name)
		if ext != tt.ext || stem != tt.stem || ok != tt.ok {
			t.Errorf("splitExt(%q) = %q, %q, %v", tt.name, ext, stem, ok)
		}
	}
}
