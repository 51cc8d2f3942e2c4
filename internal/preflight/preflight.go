package preflight

import (
	"context"
	"fmt"

	"birdsort/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional results do not fail the overall check.
	Optional bool
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckReference(ctx, "Reference source", cfg))
	results = append(results, CheckCacheDirectory("Cache directory", cfg.Paths.Cache))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir, true))
	for i, root := range cfg.Scan.Roots {
		results = append(results, CheckDirectoryAccess(fmt.Sprintf("Scan root %d", i+1), root, false))
	}
	results = append(results, CheckLauncher())
	return results
}

// Passed reports whether every required result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return false
		}
	}
	return true
}
