package scancache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"birdsort/internal/logging"
)

// JSONStore keeps the snapshot in a single JSON file.
type JSONStore struct {
	path   string
	logger *slog.Logger
}

// NewJSONStore returns a store backed by path. The file is created on first Save.
func NewJSONStore(path string, logger *slog.Logger) *JSONStore {
	return &JSONStore{
		path:   path,
		logger: logging.NewComponentLogger(logger, "scancache"),
	}
}

// Path returns the cache file location.
func (s *JSONStore) Path() string { return s.path }

// Load implements Store.
func (s *JSONStore) Load(_ context.Context, expected string) Index {
	snapshot, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return NewIndex(nil)
	}
	if err != nil {
		logging.WarnWithContext(s.logger, "failed to load scan cache", "scancache_load_failed",
			logging.Error(err),
			logging.String("path", s.path),
			logging.String(logging.FieldErrorHint, "the cache will be rewritten after this scan"),
			logging.String(logging.FieldImpact, "every photo is matched again"))
		return NewIndex(nil)
	}
	if snapshot.Version != SnapshotVersion || snapshot.ReferenceFingerprint != expected {
		s.logger.Debug("scan cache invalidated",
			logging.String("path", s.path),
			logging.Int("version", snapshot.Version),
			logging.String("stored_fingerprint", snapshot.ReferenceFingerprint),
			logging.String("expected_fingerprint", expected))
		return NewIndex(nil)
	}

	s.logger.Debug("loaded scan cache",
		logging.Int("entry_count", len(snapshot.Entries)),
		logging.String("path", s.path))
	return NewIndex(snapshot.Entries)
}

func (s *JSONStore) read() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("parse cache file: %w", err)
	}
	return snapshot, nil
}

// Save writes the snapshot atomically via a temp file in the same directory.
func (s *JSONStore) Save(_ context.Context, fingerprint string, records []Record) error {
	entries := sortedRecords(records)
	data, err := json.Marshal(Snapshot{
		Version:              SnapshotVersion,
		ReferenceFingerprint: fingerprint,
		Entries:              entries,
	})
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	s.logger.Debug("saved scan cache",
		logging.Int("entry_count", len(entries)),
		logging.String("path", s.path))
	return nil
}

// Stat implements Store.
func (s *JSONStore) Stat(_ context.Context) (Info, error) {
	info := Info{Path: s.path}
	snapshot, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return info, err
	}
	info.Exists = true
	info.Version = snapshot.Version
	info.ReferenceFingerprint = snapshot.ReferenceFingerprint
	info.Records = len(snapshot.Entries)
	for _, r := range snapshot.Entries {
		if r.Matched() {
			info.Matched++
		}
	}
	return info, nil
}

// Purge removes the cache file.
func (s *JSONStore) Purge() error {
	return removeIfExists(s.path)
}

func sortedRecords(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
