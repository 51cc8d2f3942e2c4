package config

const (
	defaultReferencePath   = "~/.local/share/birdsort/Multiling IOC 15.1_c.xlsx"
	defaultCacheFile       = "scan_cache.json"
	defaultLogDir          = "~/.local/share/birdsort/logs"
	defaultSheet           = "List"
	defaultOrderColumn     = "Order"
	defaultFamilyColumn    = "Family"
	defaultLatinColumn     = "IOC_15.1"
	defaultLocalizedColumn = "Chinese"
	defaultCacheBackend    = CacheBackendJSON
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Supported cache backends.
const (
	CacheBackendJSON   = "json"
	CacheBackendSQLite = "sqlite"
)

// DefaultExtensions lists the image formats scanned when none are configured.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "heic"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	exts := make([]string, len(DefaultExtensions))
	copy(exts, DefaultExtensions)
	return Config{
		Paths: Paths{
			Reference: defaultReferencePath,
			Cache:     defaultCachePath(),
			LogDir:    defaultLogDir,
		},
		Reference: Reference{
			Sheet:           defaultSheet,
			OrderColumn:     defaultOrderColumn,
			FamilyColumn:    defaultFamilyColumn,
			LatinColumn:     defaultLatinColumn,
			LocalizedColumn: defaultLocalizedColumn,
		},
		Scan: Scan{
			Extensions: exts,
		},
		Cache: Cache{
			Durable: true,
			Backend: defaultCacheBackend,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
