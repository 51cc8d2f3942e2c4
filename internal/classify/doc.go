// Package classify runs one photo classification from request to response.
//
// A Service resolves the reference source fingerprint, reuses a parsed
// catalog and matcher when the fingerprint is unchanged, locks and loads the
// scan cache, walks the requested roots, builds the taxon tree and saves the
// refreshed cache. Reference failures abort before any traversal. Cache load
// failures degrade to a cold scan. A cache save failure still returns the
// computed Response alongside an error wrapping ErrCacheSave.
//
// When the service is not durable, cache files are treated as session state:
// the configured cache is removed when the Service is created and every cache
// it wrote is removed again by Close.
package classify
