package scanner

import (
	"birdsort/internal/scancache"
	"birdsort/internal/taxonomy"
)

// classifier decides one file at a time. All fields are read-only while a
// scan runs.
type classifier struct {
	catalog *taxonomy.Catalog
	matcher NameMatcher
	cache   scancache.Index
}

func (c *classifier) classify(path, name, stem string, mtime int64) fileResult {
	if cached, ok := c.cache.Get(path); ok && cached.MTime == mtime {
		if !cached.Matched() {
			return fileResult{record: cached, reused: true}
		}
		if idx, ok := c.catalog.Lookup(cached.MatchedLatin); ok {
			return fileResult{
				record:  cached,
				match:   Match{Path: path, FileName: name, SpeciesIndex: idx},
				matched: true,
				reused:  true,
			}
		}
	}

	record := scancache.Record{Path: path, MTime: mtime}
	idx, ok := c.matcher.Match(stem)
	if !ok {
		return fileResult{record: record}
	}
	entry, ok := c.catalog.Entry(idx)
	if !ok {
		return fileResult{record: record}
	}
	record.MatchedLatin = entry.Latin
	return fileResult{
		record:  record,
		match:   Match{Path: path, FileName: name, SpeciesIndex: idx},
		matched: true,
	}
}
