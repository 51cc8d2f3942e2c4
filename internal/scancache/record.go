package scancache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// SnapshotVersion is the only snapshot layout this package reads or writes.
const SnapshotVersion = 1

// Record is the last known classification of one photo.
type Record struct {
	Path         string `json:"path"`
	MTime        int64  `json:"mtime"`
	MatchedLatin string `json:"matchedLatin,omitempty"`
}

// Matched reports whether the record carries a species.
func (r Record) Matched() bool {
	return r.MatchedLatin != ""
}

// Snapshot is the persisted form of a cache.
type Snapshot struct {
	Version              int      `json:"version"`
	ReferenceFingerprint string   `json:"referenceFingerprint"`
	Entries              []Record `json:"entries"`
}

// Info summarizes a stored snapshot without validating its fingerprint.
type Info struct {
	Path                 string `json:"path"`
	Exists               bool   `json:"exists"`
	Version              int    `json:"version,omitempty"`
	ReferenceFingerprint string `json:"referenceFingerprint,omitempty"`
	Records              int    `json:"records"`
	Matched              int    `json:"matched"`
}

// Store loads and saves cache snapshots.
type Store interface {
	// Load returns the stored records when the snapshot was written against
	// expected. Any failure yields an empty Index.
	Load(ctx context.Context, expected string) Index
	// Save replaces the stored snapshot.
	Save(ctx context.Context, fingerprint string, records []Record) error
	// Stat describes the stored snapshot.
	Stat(ctx context.Context) (Info, error)
	// Purge removes the stored snapshot. A missing snapshot is not an error.
	Purge() error
	// Path returns the backing file.
	Path() string
}

// Index is a read-only view of loaded records keyed by path.
type Index struct {
	records map[string]Record
}

// NewIndex builds an Index; later records win on duplicate paths.
func NewIndex(records []Record) Index {
	m := make(map[string]Record, len(records))
	for _, r := range records {
		m[r.Path] = r
	}
	return Index{records: m}
}

// Get returns the record stored for path.
func (i Index) Get(path string) (Record, bool) {
	r, ok := i.records[path]
	return r, ok
}

// Records returns every record sorted by path.
func (i Index) Records() []Record {
	out := make([]Record, 0, len(i.records))
	for _, r := range i.records {
		out = append(out, r)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Path < out[b].Path })
	return out
}

// Len returns the number of records.
func (i Index) Len() int {
	return len(i.records)
}

type fingerprint struct {
	MTime int64 `json:"mtime"`
	Size  int64 `json:"size"`
}

// Fingerprint digests the reference source's size and whole-second
// modification time as compact JSON, e.g. {"mtime":1700000000,"size":123}.
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat reference source: %w", err)
	}
	data, err := json.Marshal(fingerprint{MTime: info.ModTime().Unix(), Size: info.Size()})
	if err != nil {
		return "", fmt.Errorf("encode fingerprint: %w", err)
	}
	return string(data), nil
}
