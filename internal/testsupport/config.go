package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"birdsort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The reference path points at reference.csv under the base directory; use
// WithReference to write one.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Reference = filepath.Join(base, "reference.csv")
	cfgVal.Paths.Cache = filepath.Join(base, "cache", "scan_cache.json")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.Socket = filepath.Join(base, "birdsort.sock")
	cfgVal.Scan.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithReference writes entries as the config's CSV reference source.
func WithReference(entries ...Species) ConfigOption {
	return func(b *configBuilder) {
		WriteReferenceCSV(b.t, b.cfg.Paths.Reference, entries)
	}
}

// WithSQLiteCache switches the cache backend to SQLite.
func WithSQLiteCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = config.CacheBackendSQLite
		b.cfg.Paths.Cache = filepath.Join(b.baseDir, "cache", "scan_cache.db")
	}
}

// WithSessionCache disables cache durability.
func WithSessionCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Durable = false
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. Each stub appends its arguments to <name>.log in the
// stub directory. If names is empty, the file-manager launchers are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		StubBinaries(b.t, filepath.Join(b.baseDir, "bin"), names...)
	}
}

// StubBinaries writes recording stubs into binDir and prepends it to PATH.
func StubBinaries(t testing.TB, binDir string, names ...string) {
	t.Helper()
	if len(names) == 0 {
		names = []string{"xdg-open", "open"}
	}
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	for _, name := range names {
		target := filepath.Join(binDir, name)
		script := []byte("#!/bin/sh\necho \"$@\" >> \"" + target + ".log\"\nexit 0\n")
		if err := os.WriteFile(target, script, 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}

	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
