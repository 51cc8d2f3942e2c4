package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"birdsort/internal/config"
	"birdsort/internal/logging"
	"birdsort/internal/matcher"
	"birdsort/internal/scancache"
	"birdsort/internal/scanner"
	"birdsort/internal/taxonomy"
	"birdsort/internal/taxontree"
)

// ErrCacheSave marks a scan whose results were computed but whose cache
// could not be written.
var ErrCacheSave = errors.New("save scan cache")

// Request names what to scan. Empty paths fall back to the service defaults.
type Request struct {
	Roots         []string `json:"roots"`
	ReferencePath string   `json:"referencePath,omitempty"`
	CachePath     string   `json:"cachePath,omitempty"`
}

// Response is the result of one scan.
type Response struct {
	Tree              taxontree.Tree `json:"tree"`
	Stats             scanner.Stats  `json:"stats"`
	TotalSpeciesCount int            `json:"totalSpeciesCount"`
}

// Options configures a Service.
type Options struct {
	Schema       taxonomy.Schema
	Extensions   []string
	Workers      int
	CacheBackend string
	Durable      bool
	// ReferencePath and CachePath are used when a Request leaves them empty.
	ReferencePath string
	CachePath     string
	Logger        *slog.Logger
}

// Reference is a loaded catalog with its matcher.
type Reference struct {
	Catalog     *taxonomy.Catalog
	Matcher     *matcher.Matcher
	Fingerprint string
}

// Service runs scans. It is safe for concurrent use.
type Service struct {
	opts   Options
	logger *slog.Logger

	references *gocache.Cache
	loads      singleflight.Group

	mu      sync.Mutex
	touched map[string]struct{}
}

// NewService builds a Service. A non-durable service purges its default cache
// immediately.
func NewService(opts Options) (*Service, error) {
	if err := scancache.ValidateBackend(opts.CacheBackend); err != nil {
		return nil, err
	}
	s := &Service{
		opts:       opts,
		logger:     logging.NewComponentLogger(opts.Logger, "classify"),
		references: gocache.New(gocache.NoExpiration, 0),
		touched:    make(map[string]struct{}),
	}
	if !opts.Durable && opts.CachePath != "" {
		if err := s.purge(opts.CachePath); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewServiceFromConfig builds a Service from configuration.
func NewServiceFromConfig(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	return NewService(Options{
		Schema:        cfg.Reference.Schema(),
		Extensions:    cfg.Scan.Extensions,
		Workers:       cfg.Scan.Workers,
		CacheBackend:  cfg.Cache.Backend,
		Durable:       cfg.Cache.Durable,
		ReferencePath: cfg.Paths.Reference,
		CachePath:     cfg.Paths.Cache,
		Logger:        logger,
	})
}

// Scan classifies every supported photo under req.Roots.
func (s *Service) Scan(ctx context.Context, req Request) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	referencePath := firstNonEmpty(req.ReferencePath, s.opts.ReferencePath)
	cachePath := firstNonEmpty(req.CachePath, s.opts.CachePath)
	if referencePath == "" {
		return nil, errors.New("reference path is required")
	}
	if cachePath == "" {
		return nil, errors.New("cache path is required")
	}

	ctx = logging.WithScanID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, s.logger)
	started := time.Now()
	logger.Info("scan started",
		logging.String(logging.FieldEventType, "scan_started"),
		logging.Strings("roots", req.Roots),
		logging.String("reference", referencePath),
		logging.String("cache", cachePath))

	ref, err := s.Reference(referencePath)
	if err != nil {
		logging.ErrorWithContext(logger, "reference load failed", "reference_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.reference and the reference column names"))
		return nil, err
	}

	store, err := scancache.Open(s.opts.CacheBackend, cachePath, logger)
	if err != nil {
		return nil, err
	}
	s.track(cachePath)

	lock, err := scancache.Lock(ctx, cachePath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("scan cancelled: %w", ctxErr)
		}
		logging.WarnWithContext(logger, "scan cache lock unavailable", "scancache_lock_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "avoid running scans against the same cache concurrently"),
			logging.String(logging.FieldImpact, "scan proceeds without serialization"))
	} else {
		defer func() {
			if unlockErr := lock.Unlock(); unlockErr != nil {
				logger.Debug("release scan cache lock failed", logging.Error(unlockErr))
			}
		}()
	}

	index := store.Load(ctx, ref.Fingerprint)

	result, err := scanner.Scan(ctx, scanner.Options{
		Roots:      req.Roots,
		Catalog:    ref.Catalog,
		Matcher:    ref.Matcher,
		Cache:      index,
		Extensions: s.opts.Extensions,
		Workers:    s.opts.Workers,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Tree:              taxontree.Build(ref.Catalog.Entries, result.Matches),
		Stats:             result.Stats,
		TotalSpeciesCount: ref.Catalog.Len(),
	}

	if err := store.Save(ctx, ref.Fingerprint, result.Records); err != nil {
		logging.ErrorWithContext(logger, "scan cache save failed", "scancache_save_failed",
			logging.Error(err),
			logging.String("cache", cachePath),
			logging.String(logging.FieldErrorHint, "check that the cache directory is writable"))
		return resp, fmt.Errorf("%w: %w", ErrCacheSave, err)
	}

	logger.Info("scan completed",
		logging.String(logging.FieldEventType, "scan_completed"),
		logging.Int("total_files", resp.Stats.Total),
		logging.Int("matched_files", resp.Stats.Matched),
		logging.Int("unmatched_files", resp.Stats.Unmatched),
		logging.Int("reused_records", resp.Stats.Reused),
		logging.Int("cached_records", index.Len()),
		logging.Duration("duration", time.Since(started)))
	return resp, nil
}

// Reference returns the catalog and matcher for path, parsing the source only
// when its fingerprint differs from the last load.
func (s *Service) Reference(path string) (*Reference, error) {
	if path == "" {
		path = s.opts.ReferencePath
	}
	fingerprint, err := scancache.Fingerprint(path)
	if err != nil {
		return nil, fmt.Errorf("load reference %s: %w", path, err)
	}
	key := path + "|" + fingerprint
	if cached, ok := s.references.Get(key); ok {
		return cached.(*Reference), nil
	}

	v, err, _ := s.loads.Do(key, func() (any, error) {
		if cached, ok := s.references.Get(key); ok {
			return cached, nil
		}
		started := time.Now()
		catalog, err := taxonomy.Load(path, s.schema())
		if err != nil {
			return nil, fmt.Errorf("load reference %s: %w", path, err)
		}
		ref := &Reference{
			Catalog:     catalog,
			Matcher:     matcher.New(catalog.Entries),
			Fingerprint: fingerprint,
		}
		s.evictStale(path, key)
		s.references.Set(key, ref, gocache.NoExpiration)
		s.logger.Info("reference loaded",
			logging.String(logging.FieldEventType, "reference_loaded"),
			logging.String("path", path),
			logging.Int("species", catalog.Len()),
			logging.Duration("duration", time.Since(started)))
		return ref, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Reference), nil
}

func (s *Service) schema() taxonomy.Schema {
	schema := s.opts.Schema
	defaults := taxonomy.DefaultSchema()
	schema.Sheet = firstNonEmpty(schema.Sheet, defaults.Sheet)
	schema.OrderColumn = firstNonEmpty(schema.OrderColumn, defaults.OrderColumn)
	schema.FamilyColumn = firstNonEmpty(schema.FamilyColumn, defaults.FamilyColumn)
	schema.LatinColumn = firstNonEmpty(schema.LatinColumn, defaults.LatinColumn)
	schema.LocalizedColumn = firstNonEmpty(schema.LocalizedColumn, defaults.LocalizedColumn)
	return schema
}

// evictStale drops memoized references for path built from other fingerprints.
func (s *Service) evictStale(path, keep string) {
	prefix := path + "|"
	for key := range s.references.Items() {
		if key != keep && strings.HasPrefix(key, prefix) {
			s.references.Delete(key)
		}
	}
}

// CacheStore returns the store for path, or the default cache when path is empty.
func (s *Service) CacheStore(path string) (scancache.Store, error) {
	return scancache.Open(s.opts.CacheBackend, firstNonEmpty(path, s.opts.CachePath), s.logger)
}

func (s *Service) track(cachePath string) {
	if s.opts.Durable {
		return
	}
	s.mu.Lock()
	s.touched[cachePath] = struct{}{}
	s.mu.Unlock()
}

func (s *Service) purge(cachePath string) error {
	store, err := scancache.Open(s.opts.CacheBackend, cachePath, s.logger)
	if err != nil {
		return err
	}
	if err := store.Purge(); err != nil {
		return fmt.Errorf("purge session cache: %w", err)
	}
	return nil
}

// Close removes session caches when the service is not durable.
func (s *Service) Close() error {
	if s.opts.Durable {
		return nil
	}
	s.mu.Lock()
	paths := make([]string, 0, len(s.touched)+1)
	for path := range s.touched {
		paths = append(paths, path)
	}
	s.touched = make(map[string]struct{})
	s.mu.Unlock()
	if s.opts.CachePath != "" {
		paths = append(paths, s.opts.CachePath)
	}

	var errs []error
	for _, path := range paths {
		if err := s.purge(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
