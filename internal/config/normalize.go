package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeReference()
	if err := c.normalizeScan(); err != nil {
		return err
	}
	c.normalizeCache()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("BIRDSORT_REFERENCE"); ok && strings.TrimSpace(value) != "" {
		c.Paths.Reference = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("BIRDSORT_CACHE"); ok && strings.TrimSpace(value) != "" {
		c.Paths.Cache = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.Cache) == "" {
		c.Paths.Cache = defaultCachePath()
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}

	var err error
	if c.Paths.Reference, err = expandPath(strings.TrimSpace(c.Paths.Reference)); err != nil {
		return fmt.Errorf("paths.reference: %w", err)
	}
	if c.Paths.Cache, err = expandPath(strings.TrimSpace(c.Paths.Cache)); err != nil {
		return fmt.Errorf("paths.cache: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.Socket, err = expandPath(strings.TrimSpace(c.Paths.Socket)); err != nil {
		return fmt.Errorf("paths.socket: %w", err)
	}
	return nil
}

func (c *Config) normalizeReference() {
	trimOr := func(value, fallback string) string {
		if v := strings.TrimSpace(value); v != "" {
			return v
		}
		return fallback
	}
	c.Reference.Sheet = trimOr(c.Reference.Sheet, defaultSheet)
	c.Reference.OrderColumn = trimOr(c.Reference.OrderColumn, defaultOrderColumn)
	c.Reference.FamilyColumn = trimOr(c.Reference.FamilyColumn, defaultFamilyColumn)
	c.Reference.LatinColumn = trimOr(c.Reference.LatinColumn, defaultLatinColumn)
	c.Reference.LocalizedColumn = trimOr(c.Reference.LocalizedColumn, defaultLocalizedColumn)
}

func (c *Config) normalizeScan() error {
	roots := make([]string, 0, len(c.Scan.Roots))
	for i, root := range c.Scan.Roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		expanded, err := expandPath(root)
		if err != nil {
			return fmt.Errorf("scan.roots[%d]: %w", i, err)
		}
		roots = append(roots, expanded)
	}
	c.Scan.Roots = roots

	seen := make(map[string]struct{}, len(c.Scan.Extensions))
	exts := make([]string, 0, len(c.Scan.Extensions))
	for _, ext := range c.Scan.Extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = append(exts, DefaultExtensions...)
	}
	c.Scan.Extensions = exts
	return nil
}

func (c *Config) normalizeCache() {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
