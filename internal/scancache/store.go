package scancache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open returns the store for backend. An empty backend selects JSON.
func Open(backend, path string, logger *slog.Logger) (Store, error) {
	if path == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	if err := ValidateBackend(backend); err != nil {
		return nil, err
	}
	if backend == BackendSQLite {
		return NewSQLiteStore(path, logger), nil
	}
	return NewJSONStore(path, logger), nil
}

// ValidateBackend reports whether Open accepts backend.
func ValidateBackend(backend string) error {
	switch backend {
	case "", BackendJSON, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("unknown cache backend %q", backend)
	}
}

const lockRetryDelay = 50 * time.Millisecond

// Lock takes an exclusive advisory lock on <path>.lock, waiting until it is
// free or ctx is done. Callers release it with Unlock.
func Lock(ctx context.Context, path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire cache lock: %s is held by another scan", lock.Path())
	}
	return lock, nil
}
