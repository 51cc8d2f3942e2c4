// Package config loads, normalizes, and validates birdsort configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BIRDSORT_REFERENCE and BIRDSORT_CACHE. The Config type centralizes the
// reference source location, the worksheet schema, scan extensions, cache
// durability, and logging so the CLI and the command server resolve them in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
