package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charlievieth/fastwalk"
	"golang.org/x/sync/errgroup"

	"birdsort/internal/logging"
	"birdsort/internal/scancache"
	"birdsort/internal/taxonomy"
)

// DefaultExtensions are the image types scanned when Options.Extensions is empty.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "heic"}

// NameMatcher resolves a filename stem to a catalog entry index.
type NameMatcher interface {
	Match(stem string) (int, bool)
}

// Options configures one scan.
type Options struct {
	Roots   []string
	Catalog *taxonomy.Catalog
	Matcher NameMatcher
	Cache   scancache.Index
	// Extensions lists lowercase extensions without the leading dot.
	Extensions []string
	// Workers bounds walk parallelism per root; zero uses runtime.NumCPU.
	Workers int
	Logger  *slog.Logger
}

// Match is a photo classified to a catalog entry.
type Match struct {
	Path         string `json:"path"`
	FileName     string `json:"fileName"`
	SpeciesIndex int    `json:"speciesIndex"`
}

// Stats counts the files examined by a scan.
type Stats struct {
	Total     int `json:"totalFiles"`
	Matched   int `json:"matchedFiles"`
	Unmatched int `json:"unmatchedFiles"`
	// Reused counts files whose cached classification was kept.
	Reused int `json:"-"`
}

// Result holds the unordered output of a scan.
type Result struct {
	Matches []Match
	Records []scancache.Record
	Stats   Stats
}

type fileResult struct {
	record  scancache.Record
	match   Match
	matched bool
	reused  bool
}

// Scan walks every root and classifies supported image files. Unreadable
// entries are skipped; only cancellation of ctx aborts the scan.
func Scan(ctx context.Context, opts Options) (*Result, error) {
	if opts.Catalog == nil {
		return nil, errors.New("scan: catalog is required")
	}
	if opts.Matcher == nil {
		return nil, errors.New("scan: matcher is required")
	}
	logger := logging.NewComponentLogger(opts.Logger, "scanner")

	roots, err := absoluteRoots(opts.Roots)
	if err != nil {
		return nil, err
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	supported := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		supported[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	c := &classifier{
		catalog: opts.Catalog,
		matcher: opts.Matcher,
		cache:   opts.Cache,
	}

	results := make(chan fileResult, workers*4)
	collected := make(chan *Result, 1)
	go collect(results, collected)

	group, groupCtx := errgroup.WithContext(ctx)
	for _, root := range roots {
		group.Go(func() error {
			conf := &fastwalk.Config{Follow: false, NumWorkers: workers}
			err := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, walkErr error) error {
				if walkErr != nil {
					logger.Debug("skipping unreadable entry",
						logging.String("path", path),
						logging.Error(walkErr))
					return nil
				}
				if err := groupCtx.Err(); err != nil {
					return err
				}
				if !d.Type().IsRegular() {
					return nil
				}
				name := d.Name()
				ext, stem, ok := splitExt(name)
				if !ok {
					return nil
				}
				if _, keep := supported[ext]; !keep {
					return nil
				}

				res := c.classify(path, name, stem, modTime(d))
				select {
				case results <- res:
					return nil
				case <-groupCtx.Done():
					return groupCtx.Err()
				}
			})
			if err != nil && groupCtx.Err() == nil {
				logger.Debug("skipping unreadable root",
					logging.String("root", root),
					logging.Error(err))
				return nil
			}
			return err
		})
	}

	walkErr := group.Wait()
	close(results)
	result := <-collected

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}
	if walkErr != nil {
		return nil, fmt.Errorf("walk roots: %w", walkErr)
	}

	logger.Debug("scan complete",
		logging.Int("roots", len(roots)),
		logging.Int("total_files", result.Stats.Total),
		logging.Int("matched_files", result.Stats.Matched),
		logging.Int("reused_records", result.Stats.Reused))
	return result, nil
}

// collect is the only goroutine that touches the result slices. A path reached
// through two overlapping roots is counted once.
func collect(results <-chan fileResult, out chan<- *Result) {
	result := &Result{}
	seen := make(map[string]struct{})
	for res := range results {
		if _, dup := seen[res.record.Path]; dup {
			continue
		}
		seen[res.record.Path] = struct{}{}

		result.Stats.Total++
		if res.reused {
			result.Stats.Reused++
		}
		if res.matched {
			result.Stats.Matched++
			result.Matches = append(result.Matches, res.match)
		}
		result.Records = append(result.Records, res.record)
	}
	result.Stats.Unmatched = result.Stats.Total - result.Stats.Matched
	out <- result
}

func absoluteRoots(roots []string) ([]string, error) {
	out := make([]string, 0, len(roots))
	seen := make(map[string]struct{}, len(roots))
	for _, root := range roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve root %q: %w", root, err)
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}
	return out, nil
}

// splitExt returns the lowercased extension and the stem. Names without a dot,
// or whose only dot is the first byte, have no extension.
func splitExt(name string) (ext, stem string, ok bool) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return "", "", false
	}
	return strings.ToLower(name[idx+1:]), name[:idx], true
}

func modTime(d fs.DirEntry) int64 {
	info, err := d.Info()
	if err != nil {
		return 0
	}
	return info.ModTime().Unix()
}
