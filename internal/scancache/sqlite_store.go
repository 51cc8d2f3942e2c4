package scancache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"birdsort/internal/logging"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS meta (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS records (
        path TEXT PRIMARY KEY,
        mtime INTEGER NOT NULL,
        matched_latin TEXT
    )`,
}

const (
	metaVersion     = "version"
	metaFingerprint = "reference_fingerprint"
)

// SQLiteStore keeps the snapshot in a SQLite database. Each Save replaces the
// whole snapshot in one transaction.
type SQLiteStore struct {
	path   string
	logger *slog.Logger
}

// NewSQLiteStore returns a store backed by the database at path. The database
// is created on first Save.
func NewSQLiteStore(path string, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{
		path:   path,
		logger: logging.NewComponentLogger(logger, "scancache"),
	}
}

// Path returns the database location.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return db, nil
}

func (s *SQLiteStore) exists() (bool, error) {
	_, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, expected string) Index {
	if ok, err := s.exists(); err == nil && !ok {
		return NewIndex(nil)
	}
	index, err := s.load(ctx, expected)
	if err != nil {
		logging.WarnWithContext(s.logger, "failed to load scan cache", "scancache_load_failed",
			logging.Error(err),
			logging.String("path", s.path),
			logging.String(logging.FieldErrorHint, "the cache will be rewritten after this scan"),
			logging.String(logging.FieldImpact, "every photo is matched again"))
		return NewIndex(nil)
	}
	return index
}

func (s *SQLiteStore) load(ctx context.Context, expected string) (Index, error) {
	db, err := s.open(ctx)
	if err != nil {
		return Index{}, err
	}
	defer db.Close()

	version, fingerprint, err := readMeta(ctx, db)
	if err != nil {
		return Index{}, err
	}
	if version != SnapshotVersion || fingerprint != expected {
		s.logger.Debug("scan cache invalidated",
			logging.String("path", s.path),
			logging.Int("version", version),
			logging.String("stored_fingerprint", fingerprint),
			logging.String("expected_fingerprint", expected))
		return NewIndex(nil), nil
	}

	rows, err := db.QueryContext(ctx, `SELECT path, mtime, matched_latin FROM records`)
	if err != nil {
		return Index{}, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			record Record
			latin  sql.NullString
		)
		if err := rows.Scan(&record.Path, &record.MTime, &latin); err != nil {
			return Index{}, fmt.Errorf("scan record: %w", err)
		}
		record.MatchedLatin = latin.String
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return Index{}, fmt.Errorf("iterate records: %w", err)
	}

	s.logger.Debug("loaded scan cache",
		logging.Int("entry_count", len(records)),
		logging.String("path", s.path))
	return NewIndex(records), nil
}

func readMeta(ctx context.Context, db *sql.DB) (int, string, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return 0, "", fmt.Errorf("query meta: %w", err)
	}
	defer rows.Close()

	var (
		version     int
		fingerprint string
	)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return 0, "", fmt.Errorf("scan meta: %w", err)
		}
		switch key {
		case metaVersion:
			v, convErr := strconv.Atoi(value)
			if convErr != nil {
				return 0, "", fmt.Errorf("parse snapshot version %q: %w", value, convErr)
			}
			version = v
		case metaFingerprint:
			fingerprint = value
		}
	}
	if err := rows.Err(); err != nil {
		return 0, "", fmt.Errorf("iterate meta: %w", err)
	}
	return version, fingerprint, nil
}

// Save replaces the snapshot inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, fingerprint string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{`DELETE FROM records`, `DELETE FROM meta`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear snapshot: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?), (?, ?)`,
		metaVersion, strconv.Itoa(SnapshotVersion),
		metaFingerprint, fingerprint,
	); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records (path, mtime, matched_latin) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer insert.Close()

	for _, record := range records {
		if _, err := insert.ExecContext(ctx, record.Path, record.MTime, nullableString(record.MatchedLatin)); err != nil {
			return fmt.Errorf("insert record %s: %w", record.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	s.logger.Debug("saved scan cache",
		logging.Int("entry_count", len(records)),
		logging.String("path", s.path))
	return nil
}

// Stat implements Store.
func (s *SQLiteStore) Stat(ctx context.Context) (Info, error) {
	info := Info{Path: s.path}
	ok, err := s.exists()
	if err != nil || !ok {
		return info, err
	}
	db, err := s.open(ctx)
	if err != nil {
		return info, err
	}
	defer db.Close()

	version, fingerprint, err := readMeta(ctx, db)
	if err != nil {
		return info, err
	}
	info.Exists = true
	info.Version = version
	info.ReferenceFingerprint = fingerprint
	row := db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(matched_latin) FROM records`)
	if err := row.Scan(&info.Records, &info.Matched); err != nil {
		return info, fmt.Errorf("count records: %w", err)
	}
	return info, nil
}

// Purge removes the database and its journal files.
func (s *SQLiteStore) Purge() error {
	for _, path := range []string{s.path, s.path + "-journal", s.path + "-wal", s.path + "-shm"} {
		if err := removeIfExists(path); err != nil {
			return err
		}
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
